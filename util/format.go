package util

import (
	"fmt"
	"io"
	"time"

	"github.com/docker/go-units"
)

// binaryUnits are the 1024-based magnitude suffixes used for rates.
var binaryUnits = []string{"B", "KiB", "MiB", "GiB", "TiB", "PiB", "EiB", "ZiB", "YiB"}

// FormatDuration writes d as seconds with a truncated millisecond component,
// e.g. "1.500 s".
func FormatDuration(w io.Writer, d time.Duration) error {
	secs := int64(d / time.Second)
	millis := int64(d%time.Second) / int64(time.Millisecond)
	_, err := fmt.Fprintf(w, "%d.%03d s", secs, millis)
	return err
}

// BytesPerSecond estimates the rate of bytes transferred over d. Only whole
// seconds divide the byte count; under one second the integer part is zero.
func BytesPerSecond(bytes uint64, d time.Duration) float64 {
	var bps uint64
	if secs := uint64(d / time.Second); secs > 0 {
		bps = bytes / secs
	}
	// The remainder correction is truncated to whole seconds.
	correction := int64(d%time.Second) / int64(time.Second)
	return float64(bps) + float64(correction)
}

// FormatRate writes the rate of bytes over d scaled with binary prefixes,
// e.g. "512 B/s" or "2 KiB/s".
func FormatRate(w io.Writer, bytes uint64, d time.Duration) error {
	_, err := io.WriteString(w, units.CustomSize("%.0f %s/s", BytesPerSecond(bytes, d), 1024, binaryUnits))
	return err
}
