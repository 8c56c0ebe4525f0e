package monitor

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/pkg/errors"
	"go.viam.com/test"

	"github.com/dreamsxin/iorate/types"
)

const sampleIORecord = `rchar: 323934931
wchar: 323929600
syscr: 632687
syscw: 632675
read_bytes: 0
write_bytes: 0
cancelled_write_bytes: 0
`

func TestParseIOCounters(t *testing.T) {
	tests := []struct {
		name     string
		record   string
		expected types.Counters
	}{
		{"kernel layout", sampleIORecord, types.Counters{Read: 323934931, Write: 323929600}},
		{"read first", "rchar: 100\nwchar: 200\n", types.Counters{Read: 100, Write: 200}},
		{"write first", "wchar: 200\nrchar: 100\n", types.Counters{Read: 100, Write: 200}},
		{"other fields between", "syscr: 1\nwchar: 200\nsyscw: 2\nrchar: 100\n", types.Counters{Read: 100, Write: 200}},
		{"extra whitespace", "  rchar:\t100  \n\nwchar:   200", types.Counters{Read: 100, Write: 200}},
		{"stops once both found", "rchar: 100\nwchar: 200\nrchar: 999\nwchar: garbage\n", types.Counters{Read: 100, Write: 200}},
		{"max value", "rchar: 18446744073709551615\nwchar: 0\n", types.Counters{Read: 18446744073709551615, Write: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counters, err := parseIOCounters(strings.NewReader(tt.record))
			test.That(t, err, test.ShouldBeNil)
			test.That(t, counters, test.ShouldResemble, tt.expected)
		})
	}
}

func TestParseIOCountersMissingField(t *testing.T) {
	tests := []struct {
		name    string
		record  string
		missing string
	}{
		{"missing wchar", "rchar: 100\nsyscr: 3\n", "wchar"},
		{"missing rchar", "wchar: 100\n", "rchar"},
		{"empty record", "", "rchar"},
		{"wchar without value", "rchar: 100\nwchar:\n", "wchar"},
		{"wchar not a number", "rchar: 100\nwchar: lots\n", "wchar"},
		{"negative value", "rchar: -1\nwchar: 1\n", "rchar"},
		{"key without colon", "rchar 100\nwchar 200\n", "rchar"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseIOCounters(strings.NewReader(tt.record))
			test.That(t, err, test.ShouldNotBeNil)
			test.That(t, errors.Is(err, ErrNotFound), test.ShouldBeTrue)
			test.That(t, err.Error(), test.ShouldContainSubstring, "missing "+tt.missing)
		})
	}
}

func TestParseIOCountersShortCircuit(t *testing.T) {
	// Reading past the two fields would hit the error.
	r := io.MultiReader(strings.NewReader("wchar: 7\nrchar: 3\n"), iotest.ErrReader(errors.New("read past fields")))
	counters, err := parseIOCounters(r)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, counters, test.ShouldResemble, types.Counters{Read: 3, Write: 7})

	r = io.MultiReader(strings.NewReader("rchar: 3\n"), iotest.ErrReader(errors.New("device gone")))
	_, err = parseIOCounters(r)
	test.That(t, errors.Is(err, ErrNotFound), test.ShouldBeTrue)
	test.That(t, err.Error(), test.ShouldContainSubstring, "device gone")
}

func writeIORecord(t *testing.T, root, pid, record string) {
	t.Helper()
	dir := filepath.Join(root, pid)
	test.That(t, os.MkdirAll(dir, 0o755), test.ShouldBeNil)
	test.That(t, os.WriteFile(filepath.Join(dir, "io"), []byte(record), 0o644), test.ShouldBeNil)
}

func TestProcReader(t *testing.T) {
	root := t.TempDir()
	writeIORecord(t, root, "42", "wchar: 200\nrchar: 100\n")
	writeIORecord(t, root, "43", "rchar: 100\n")

	r := NewProcReader(root)

	counters, err := r.ReadCounters(42)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, counters, test.ShouldResemble, types.Counters{Read: 100, Write: 200})

	_, err = r.ReadCounters(43)
	test.That(t, errors.Is(err, ErrNotFound), test.ShouldBeTrue)
	test.That(t, err.Error(), test.ShouldContainSubstring, "pid 43")
	test.That(t, err.Error(), test.ShouldContainSubstring, "missing wchar")

	_, err = r.ReadCounters(44)
	test.That(t, errors.Is(err, ErrNotFound), test.ShouldBeTrue)
}

func TestProcReaderDefaultRoot(t *testing.T) {
	test.That(t, NewProcReader("").root, test.ShouldEqual, "/proc")
}

func TestProcReaderSelf(t *testing.T) {
	if _, err := os.Stat("/proc/self/io"); err != nil {
		t.Skip("process io accounting not available")
	}
	r := NewProcReader("")
	before, err := r.ReadCounters(os.Getpid())
	test.That(t, err, test.ShouldBeNil)

	_, err = os.ReadFile("/proc/self/stat")
	test.That(t, err, test.ShouldBeNil)

	after, err := r.ReadCounters(os.Getpid())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, after.Read, test.ShouldBeGreaterThan, before.Read)
}
