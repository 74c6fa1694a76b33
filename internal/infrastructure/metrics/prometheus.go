// Package metrics expone contadores Prometheus del libro de stock y de los documentos.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector implementa inventory.Observer y el DocumentObserver de compras y pedidos.
type Collector struct {
	movements *prometheus.CounterVec
	replays   *prometheus.CounterVec
	conflicts prometheus.Counter
	documents *prometheus.CounterVec
}

// NewCollector registra los contadores en reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		movements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nexus_stock_movements_total",
			Help: "Movimientos de stock aplicados por motivo.",
		}, []string{"motivo"}),
		replays: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nexus_stock_movement_replays_total",
			Help: "Movimientos repetidos resueltos por idempotencia.",
		}, []string{"motivo"}),
		conflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nexus_ledger_conflicts_total",
			Help: "Reintentos del libro de stock por conflicto de concurrencia.",
		}),
		documents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nexus_documents_total",
			Help: "Transiciones de compras y pedidos por estado.",
		}, []string{"tipo", "estado"}),
	}
	reg.MustRegister(c.movements, c.replays, c.conflicts, c.documents)
	return c
}

func (c *Collector) MovementApplied(reason string)  { c.movements.WithLabelValues(reason).Inc() }
func (c *Collector) MovementReplayed(reason string) { c.replays.WithLabelValues(reason).Inc() }
func (c *Collector) ConflictRetried()               { c.conflicts.Inc() }

func (c *Collector) DocumentTransition(kind, status string) {
	c.documents.WithLabelValues(kind, status).Inc()
}
