// Copyright (c) 2023 The KBase Project and its Contributors
// Copyright (c) 2023 Cohere Consulting, LLC
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies
// of the Software, and to permit persons to whom the Software is furnished to do
// so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// Package metrics exports the outcome of an import in the Prometheus textfile
// format, for collection by a node exporter's textfile collector.
package metrics

import (
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/phac-nml/irida-galaxy-import/transfers"
)

const namespace = "irida_import"

// file outcomes, used as values of the "outcome" label
const (
	OutcomeImported        = "imported"
	OutcomeSkipped         = "skipped"
	OutcomeMissingOrFailed = "missing_or_failed"
)

// Metrics holds the collectors describing imports, registered with their
// own registry.
type Metrics struct {
	Registry *prometheus.Registry
	// sample files handled, by outcome
	Files *prometheus.CounterVec
	// 1 if the last import failed, 0 if it succeeded
	RunFailed prometheus.Gauge
	// duration of the last import in seconds
	RunDuration prometheus.Gauge
	// time at which the last import finished (Unix seconds)
	LastRun prometheus.Gauge
}

// creates a new set of import metrics
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Files: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_total",
			Help:      "Sample files handled by imports, by outcome.",
		}, []string{"outcome"}),
		RunFailed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_failed",
			Help:      "Whether the last import failed (1) or succeeded (0).",
		}),
		RunDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of the last import.",
		}),
		LastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Time at which the last import finished.",
		}),
	}
	m.Registry.MustRegister(m.Files, m.RunFailed, m.RunDuration, m.LastRun)
	for _, outcome := range []string{OutcomeImported, OutcomeSkipped, OutcomeMissingOrFailed} {
		m.Files.WithLabelValues(outcome)
	}
	return m
}

// Records the outcome of the given (finished) import.
func (m *Metrics) Observe(rc *transfers.RunContext) {
	m.Files.WithLabelValues(OutcomeImported).Add(float64(len(rc.Imported)))
	m.Files.WithLabelValues(OutcomeSkipped).Add(float64(len(rc.Skipped)))
	m.Files.WithLabelValues(OutcomeMissingOrFailed).Add(float64(len(rc.MissingOrFailed)))
	if rc.Succeeded() {
		m.RunFailed.Set(0)
	} else {
		m.RunFailed.Set(1)
	}
	if !rc.StopTime.IsZero() {
		m.RunDuration.Set(rc.StopTime.Sub(rc.StartTime).Seconds())
		m.LastRun.Set(float64(rc.StopTime.Unix()))
	}
}

// Writes all metrics to the file at the given path in the Prometheus text
// format. The file is replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	err := prometheus.WriteToTextfile(path, m.Registry)
	if err != nil {
		return fmt.Errorf("Couldn't write metrics to %s: %w", path, err)
	}
	slog.Debug(fmt.Sprintf("Wrote import metrics to %s", path))
	return nil
}
