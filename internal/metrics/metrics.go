// Package metrics exports scan results in the Prometheus text format, for
// node_exporter's textfile collector.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"iecsize/internal/progress"
)

// Recorder holds scan gauges on a private registry.
type Recorder struct {
	reg        *prometheus.Registry
	pathBytes  *prometheus.GaugeVec
	pathFiles  *prometheus.GaugeVec
	scanErrors prometheus.Counter
}

// NewRecorder creates a Recorder with all collectors registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		reg: prometheus.NewRegistry(),
		pathBytes: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "iecsize_path_bytes",
				Help: "Total size in bytes of regular files below a scanned path.",
			},
			[]string{"path"},
		),
		pathFiles: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "iecsize_path_files",
				Help: "Number of regular files below a scanned path.",
			},
			[]string{"path"},
		),
		scanErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "iecsize_scan_errors_total",
				Help: "Number of scanned paths that failed.",
			},
		),
	}
	r.reg.MustRegister(r.pathBytes, r.pathFiles, r.scanErrors)
	return r
}

// Record stores one scan result. Failed paths only bump the error counter.
func (r *Recorder) Record(res progress.Result) {
	if res.Err != nil {
		r.scanErrors.Inc()
		return
	}
	r.pathBytes.WithLabelValues(res.Path).Set(float64(res.Bytes))
	r.pathFiles.WithLabelValues(res.Path).Set(float64(res.Files))
}

// Registry exposes the underlying registry as a Gatherer.
func (r *Recorder) Registry() prometheus.Gatherer {
	return r.reg
}

// WriteTextfile atomically writes every metric to filename.
func (r *Recorder) WriteTextfile(filename string) error {
	if err := prometheus.WriteToTextfile(filename, r.reg); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
