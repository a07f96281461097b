// Package metrics collects the counters of one propscan run in a private
// Prometheus registry and writes them in the node-exporter textfile format.
//
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/agentstation/propscan/pkg/dataset"
	"github.com/agentstation/propscan/pkg/errors"
)

const namespace = "propscan"

// Operation statuses.
const (
	StatusOK      = "ok"
	StatusError   = "error"
	StatusPlanned = "planned"
)

// Metrics holds the collectors of a run.
type Metrics struct {
	registry *prometheus.Registry

	filesScanned         *prometheus.CounterVec
	propertiesDiscovered prometheus.Counter
	operations           *prometheus.CounterVec
	requestDuration      *prometheus.HistogramVec
	runDuration          *prometheus.GaugeVec
	lastRun              *prometheus.GaugeVec
}

// New creates a Metrics with its own registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,

		filesScanned: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_scanned_total",
			Help:      "Total number of files opened during scans",
		}, []string{"outcome"}), // outcome: dataset, not-dataset, io-error

		propertiesDiscovered: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "properties_discovered_total",
			Help:      "Total number of dataset properties discovered",
		}),

		operations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Total number of reconciliation operations",
		}, []string{"operation", "status"}), // operation: create, skip, delete

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Duration of requests to the property service",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
		}, []string{"method", "code"}),

		runDuration: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of the last run",
		}, []string{"mode", "status"}),

		lastRun: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished",
		}, []string{"mode", "status"}),
	}
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// FileScanned counts one opened file.
func (m *Metrics) FileScanned(outcome dataset.Outcome) {
	if m == nil {
		return
	}
	m.filesScanned.WithLabelValues(outcome.String()).Inc()
}

// PropertiesDiscovered counts discovered properties.
func (m *Metrics) PropertiesDiscovered(n int) {
	if m == nil {
		return
	}
	m.propertiesDiscovered.Add(float64(n))
}

// Operation counts n operations of the given kind and status.
func (m *Metrics) Operation(operation, status string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.operations.WithLabelValues(operation, status).Add(float64(n))
}

// ObserveRequest records one request to the property service. A status of
// zero means no response was received.
func (m *Metrics) ObserveRequest(method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	code := strconv.Itoa(status)
	if status == 0 {
		code = "none"
	}
	m.requestDuration.WithLabelValues(method, code).Observe(elapsed.Seconds())
}

// RunFinished records the outcome of a run.
func (m *Metrics) RunFinished(mode string, finished time.Time, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	status := StatusOK
	if err != nil {
		status = StatusError
	}
	m.runDuration.WithLabelValues(mode, status).Set(elapsed.Seconds())
	m.lastRun.WithLabelValues(mode, status).Set(float64(finished.Unix()))
}

// WriteTextfile writes the registry to path in the textfile collector format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	return errors.WrapIO("write", path, prometheus.WriteToTextfile(path, m.registry))
}
