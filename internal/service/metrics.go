package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Cascade kinds recorded by Metrics.
const (
	CascadePendingAdd    = "pending_add"
	CascadePendingRemove = "pending_remove"
	CascadeTaskUnassign  = "task_unassign"
	CascadeTaskAssign    = "task_assign"
)

// Metrics counts the writes the services perform. A nil *Metrics records
// nothing.
type Metrics struct {
	mutations *prometheus.CounterVec
	cascades  *prometheus.CounterVec
}

// NewMetrics creates the service collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		mutations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taskboard_mutations_total",
				Help: "Total number of create, update and delete operations",
			},
			[]string{"entity", "operation", "status"},
		),
		cascades: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taskboard_cascade_updates_total",
				Help: "Total number of documents changed by referential cascades",
			},
			[]string{"cascade"},
		),
	}
}

func (m *Metrics) mutation(entity, operation string, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.mutations.WithLabelValues(entity, operation, status).Inc()
}

func (m *Metrics) cascade(kind string, n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.cascades.WithLabelValues(kind).Add(float64(n))
}
