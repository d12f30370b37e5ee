// Package metrics exposes counters about the record store.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "opecbrain"

// Metrics groups the store collectors. A nil *Metrics is valid and records
// nothing, so the store can run without a registry.
type Metrics struct {
	upserts  *prometheus.CounterVec
	failures *prometheus.CounterVec
	records  prometheus.Gauge
}

// New builds the collectors and registers them on reg when reg is not nil.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		upserts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upserts_total",
			Help:      "Records written, by status.",
		}, []string{"status"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_failures_total",
			Help:      "Storage failures, by operation (init, read, write).",
		}, []string{"op"}),
		records: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "records",
			Help:      "Records in the collection after the last load or write.",
		}),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.upserts, m.failures, m.records} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) ObserveUpsert(status string) {
	if m == nil {
		return
	}
	if status == "" {
		status = "none"
	}
	m.upserts.WithLabelValues(status).Inc()
}

func (m *Metrics) ObserveFailure(op string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(op).Inc()
}

func (m *Metrics) SetRecords(n int) {
	if m == nil {
		return
	}
	m.records.Set(float64(n))
}
