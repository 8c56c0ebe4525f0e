package monitor

import (
	"bytes"
	"io"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/dreamsxin/iorate/metrics"
	"github.com/dreamsxin/iorate/types"
	"github.com/dreamsxin/iorate/util"
)

// Sampler 采样循环：定期暂停子进程，读取 I/O 计数，输出吞吐量后恢复子进程
type Sampler struct {
	proc     Process
	counters CounterReader
	out      io.Writer
	interval time.Duration

	clock   clock.Clock
	logger  *zap.SugaredLogger
	metrics *metrics.Recorder

	start   time.Time
	last    types.Sample
	reports int
	buf     bytes.Buffer
}

// Option 配置 Sampler
type Option func(*Sampler)

// WithClock 指定时间源
func WithClock(clk clock.Clock) Option {
	return func(s *Sampler) {
		s.clock = clk
	}
}

// WithLogger 指定诊断日志
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(s *Sampler) {
		s.logger = logger
	}
}

// WithMetrics 指定指标记录器
func WithMetrics(recorder *metrics.Recorder) Option {
	return func(s *Sampler) {
		s.metrics = recorder
	}
}

// NewSampler 创建采样循环，报告写入 out
func NewSampler(proc Process, counters CounterReader, out io.Writer, config types.MonitorConfig, opts ...Option) *Sampler {
	s := &Sampler{
		proc:     proc,
		counters: counters,
		out:      out,
		interval: config.Interval,
		clock:    clock.New(),
		logger:   zap.NewNop().Sugar(),
	}
	if s.interval <= 0 {
		s.interval = types.DefaultInterval
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Reports 返回已输出的报告数
func (s *Sampler) Reports() int {
	return s.reports
}

// Run 运行采样循环直到子进程退出；任何错误都会立即终止循环
func (s *Sampler) Run() error {
	s.start = s.clock.Now()
	// 基线从 (0, 0) 开始，第一次报告包含子进程启动以来的全部 I/O
	s.last = types.Sample{Time: s.start}

	for {
		s.clock.Sleep(s.interval)

		exited, err := s.proc.Poll()
		if err != nil {
			return err
		}
		if exited {
			s.logger.Debugw("child exited", "pid", s.proc.Pid(), "reports", s.reports)
			return nil
		}

		exited, err = s.proc.Pause()
		if err != nil {
			return err
		}
		if exited {
			s.logger.Debugw("child exited while pausing", "pid", s.proc.Pid(), "reports", s.reports)
			return nil
		}

		if err := s.sample(); err != nil {
			return err
		}

		if err := s.proc.Resume(); err != nil {
			return err
		}
	}
}

// sample 读取当前计数并输出一行报告，子进程此时必须处于暂停状态
func (s *Sampler) sample() error {
	interval := s.clock.Since(s.last.Time)
	current, err := s.counters.ReadCounters(s.proc.Pid())
	if err != nil {
		return err
	}

	report := types.Report{
		Elapsed:    s.clock.Since(s.start),
		Interval:   interval,
		ReadBytes:  s.delta("rchar", current.Read, s.last.Read),
		WriteBytes: s.delta("wchar", current.Write, s.last.Write),
	}
	if err := s.writeReport(report); err != nil {
		return errors.Wrap(err, "write report")
	}
	s.reports++
	s.metrics.Observe(report)

	// 恢复前重新取时间，暂停期间不计入下一个间隔
	s.last = types.Sample{Time: s.clock.Now(), Counters: current}
	return nil
}

// delta 计算计数增量，计数回退时饱和为 0
func (s *Sampler) delta(field string, current, previous uint64) uint64 {
	if current < previous {
		s.logger.Warnw("io counter went backwards", "field", field, "previous", previous, "current", current)
		return 0
	}
	return current - previous
}

// writeReport 以一次写入输出 "<elapsed>: <read-rate> read, <write-rate> write"
func (s *Sampler) writeReport(r types.Report) error {
	s.buf.Reset()
	util.FormatDuration(&s.buf, r.Elapsed)
	s.buf.WriteString(": ")
	util.FormatRate(&s.buf, r.ReadBytes, r.Interval)
	s.buf.WriteString(" read, ")
	util.FormatRate(&s.buf, r.WriteBytes, r.Interval)
	s.buf.WriteString(" write\n")

	_, err := s.out.Write(s.buf.Bytes())
	return err
}
