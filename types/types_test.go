package types

import (
	"testing"
	"time"

	"go.viam.com/test"
)

func TestProcessStateString(t *testing.T) {
	test.That(t, StateRunning.String(), test.ShouldEqual, "running")
	test.That(t, StateStopped.String(), test.ShouldEqual, "stopped")
	test.That(t, StateExited.String(), test.ShouldEqual, "exited")
	test.That(t, ProcessState(9).String(), test.ShouldEqual, "unknown")
}

func TestMonitorConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*MonitorConfig)
		wantErr string
	}{
		{"default", func(*MonitorConfig) {}, ""},
		{"longer interval", func(c *MonitorConfig) { c.Interval = 5 * time.Second }, ""},
		{"sub-second interval", func(c *MonitorConfig) { c.Interval = 500 * time.Millisecond }, "at least 1 second"},
		{"zero interval", func(c *MonitorConfig) { c.Interval = 0 }, "at least 1 second"},
		{"empty proc root", func(c *MonitorConfig) { c.ProcRoot = "" }, "proc root"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultMonitorConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				test.That(t, err, test.ShouldBeNil)
				return
			}
			test.That(t, err, test.ShouldNotBeNil)
			test.That(t, err.Error(), test.ShouldContainSubstring, tt.wantErr)
		})
	}
}

func TestDefaultMonitorConfig(t *testing.T) {
	cfg := DefaultMonitorConfig()
	test.That(t, cfg.Interval, test.ShouldEqual, time.Second)
	test.That(t, cfg.ProcRoot, test.ShouldEqual, "/proc")
	test.That(t, cfg.Storage, test.ShouldBeFalse)
}
