// Package metrics exposes the sampled throughput as Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dreamsxin/iorate/types"
	"github.com/dreamsxin/iorate/util"
)

const namespace = "iorate"

// Recorder publishes each interval report. A nil *Recorder discards everything.
type Recorder struct {
	readRate   prometheus.Gauge
	writeRate  prometheus.Gauge
	readBytes  prometheus.Counter
	writeBytes prometheus.Counter
	samples    prometheus.Counter
}

// NewRecorder creates the metrics for one monitoring session and registers them with reg.
func NewRecorder(reg prometheus.Registerer, session string) (*Recorder, error) {
	labels := prometheus.Labels{"session": session}
	r := &Recorder{
		readRate: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "read_bytes_per_second",
			Help:        "Read throughput of the child over the last sampling interval.",
			ConstLabels: labels,
		}),
		writeRate: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "write_bytes_per_second",
			Help:        "Write throughput of the child over the last sampling interval.",
			ConstLabels: labels,
		}),
		readBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "read_bytes_total",
			Help:        "Bytes read by the child since monitoring started.",
			ConstLabels: labels,
		}),
		writeBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "write_bytes_total",
			Help:        "Bytes written by the child since monitoring started.",
			ConstLabels: labels,
		}),
		samples: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "samples_total",
			Help:        "Number of interval reports emitted.",
			ConstLabels: labels,
		}),
	}
	for _, c := range []prometheus.Collector{r.readRate, r.writeRate, r.readBytes, r.writeBytes, r.samples} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Observe records one interval report.
func (r *Recorder) Observe(report types.Report) {
	if r == nil {
		return
	}
	r.readRate.Set(util.BytesPerSecond(report.ReadBytes, report.Interval))
	r.writeRate.Set(util.BytesPerSecond(report.WriteBytes, report.Interval))
	r.readBytes.Add(float64(report.ReadBytes))
	r.writeBytes.Add(float64(report.WriteBytes))
	r.samples.Inc()
}
