//go:build !windows

// Command iorate runs a command and prints its read and write throughput once
// per sampling interval until it exits.
package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/dreamsxin/iorate/logging"
	"github.com/dreamsxin/iorate/manager"
	"github.com/dreamsxin/iorate/metrics"
	"github.com/dreamsxin/iorate/monitor"
	"github.com/dreamsxin/iorate/types"
	"github.com/dreamsxin/iorate/util"
)

const (
	flagOutput      = "output"
	flagStorage     = "storage"
	flagInterval    = "interval"
	flagProcRoot    = "proc-root"
	flagMetricsAddr = "metrics-addr"
	flagDebug       = "debug"
)

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp(reports io.Writer) *cli.App {
	defaults := types.DefaultMonitorConfig()
	return &cli.App{
		Name:            "iorate",
		Usage:           "report a command's read and write throughput while it runs",
		UsageText:       "iorate [options] COMMAND [ARGS...]",
		HideHelpCommand: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagOutput,
				Aliases: []string{"o"},
				Usage:   "redirect the command's standard output to `FILE`",
			},
			&cli.BoolFlag{
				Name:    flagStorage,
				Usage:   "report bytes that reached the storage layer (read_bytes/write_bytes) instead of rchar/wchar",
				EnvVars: []string{"IORATE_STORAGE"},
			},
			&cli.DurationFlag{
				Name:    flagInterval,
				Value:   defaults.Interval,
				Usage:   "sampling interval, at least one second",
				EnvVars: []string{"IORATE_INTERVAL"},
			},
			&cli.StringFlag{
				Name:    flagProcRoot,
				Value:   defaults.ProcRoot,
				Usage:   "mount point of the proc filesystem",
				EnvVars: []string{"IORATE_PROC_ROOT"},
			},
			&cli.StringFlag{
				Name:    flagMetricsAddr,
				Usage:   "serve Prometheus metrics on `ADDR` while the command runs",
				EnvVars: []string{"IORATE_METRICS_ADDR"},
			},
			&cli.BoolFlag{
				Name:    flagDebug,
				Usage:   "log debug information to stderr",
				EnvVars: []string{"IORATE_DEBUG"},
			},
		},
		Action: func(c *cli.Context) error {
			return run(c, reports)
		},
	}
}

func run(c *cli.Context, reports io.Writer) (err error) {
	args := c.Args().Slice()
	if len(args) == 0 {
		return errors.New("no command specified")
	}

	config := types.MonitorConfig{
		Interval: c.Duration(flagInterval),
		Storage:  c.Bool(flagStorage),
		ProcRoot: c.String(flagProcRoot),
	}
	if err := config.Validate(); err != nil {
		return err
	}

	session := util.GenerateUUID()
	logger, err := logging.NewLogger("iorate", c.Bool(flagDebug))
	if err != nil {
		return errors.Wrap(err, "create logger")
	}
	logger = logger.With("session", session)
	defer logger.Sync() //nolint:errcheck

	counters, err := newCounterReader(config)
	if err != nil {
		return err
	}

	var recorder *metrics.Recorder
	if addr := c.String(flagMetricsAddr); addr != "" {
		registry := prometheus.NewRegistry()
		recorder, err = metrics.NewRecorder(registry, session)
		if err != nil {
			return errors.Wrap(err, "register metrics")
		}
		shutdown := serveMetrics(addr, registry, logger)
		defer func() {
			multierr.AppendInto(&err, shutdown())
		}()
	}

	var stdout *os.File
	if path := c.String(flagOutput); path != "" {
		stdout, err = os.OpenFile(path, os.O_WRONLY|os.O_CREATE, 0o644)
		if err != nil {
			return errors.Wrapf(err, "open %s", path)
		}
		defer func() {
			multierr.AppendInto(&err, stdout.Close())
		}()
	}

	child, err := manager.StartChild(args[0], args[1:], stdout)
	if err != nil {
		return err
	}
	defer func() {
		multierr.AppendInto(&err, child.Close())
	}()
	logger.Debugw("started child", "pid", child.Pid(), "command", args)

	sampler := monitor.NewSampler(child, counters, reports, config,
		monitor.WithLogger(logger),
		monitor.WithMetrics(recorder),
	)
	if err := sampler.Run(); err != nil {
		return err
	}
	logger.Debugw("child exited", "pid", child.Pid(), "status", child.ExitStatus(),
		"uptime", child.Uptime(), "reports", sampler.Reports())
	return nil
}

func newCounterReader(config types.MonitorConfig) (monitor.CounterReader, error) {
	if config.Storage {
		return monitor.NewStorageReader(config.ProcRoot)
	}
	return monitor.NewProcReader(config.ProcRoot), nil
}

// serveMetrics starts the metrics listener in the background and returns a
// function that stops it.
func serveMetrics(addr string, registry *prometheus.Registry, logger *zap.SugaredLogger) func() error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorw("metrics listener failed", "addr", addr, "error", err)
		}
	}()
	logger.Debugw("serving metrics", "addr", addr)

	return func() error {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}
