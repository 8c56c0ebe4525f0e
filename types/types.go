package types

import (
	"time"
)

// ProcessState is the lifecycle state of a monitored child process
type ProcessState int

const (
	// StateRunning means the child is alive and not paused by us
	StateRunning ProcessState = iota
	// StateStopped means the child was paused and the stop was confirmed
	StateStopped
	// StateExited is terminal; the child has been reaped
	StateExited
)

// String returns the state as a lowercase word
func (s ProcessState) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	case StateExited:
		return "exited"
	}
	return "unknown"
}

// Counters holds the cumulative byte counters of one process
type Counters struct {
	Read  uint64 `json:"read"`
	Write uint64 `json:"write"`
}

// Sample is a timestamped snapshot of a process's counters
type Sample struct {
	Time time.Time `json:"time"`
	Counters
}

// Report is the throughput observed between two consecutive samples
type Report struct {
	// Elapsed is measured from the start of monitoring.
	Elapsed time.Duration `json:"elapsed"`
	// Interval is measured from the previous sample.
	Interval   time.Duration `json:"interval"`
	ReadBytes  uint64        `json:"read_bytes"`
	WriteBytes uint64        `json:"write_bytes"`
}
