package types

import (
	"fmt"
	"time"

	"github.com/prometheus/procfs"
)

// DefaultInterval 默认采样间隔
const DefaultInterval = time.Second

// MonitorConfig 监控配置
type MonitorConfig struct {
	Interval time.Duration `json:"interval"`
	// Storage 为 true 时统计 read_bytes/write_bytes，否则统计 rchar/wchar
	Storage  bool   `json:"storage"`
	ProcRoot string `json:"proc_root"`
}

// DefaultMonitorConfig 返回默认监控配置
func DefaultMonitorConfig() MonitorConfig {
	return MonitorConfig{
		Interval: DefaultInterval,
		ProcRoot: procfs.DefaultMountPoint,
	}
}

// Validate 校验监控配置
func (c MonitorConfig) Validate() error {
	if c.Interval < time.Second {
		return fmt.Errorf("monitor interval must be at least 1 second")
	}
	if c.ProcRoot == "" {
		return fmt.Errorf("proc root must not be empty")
	}
	return nil
}
