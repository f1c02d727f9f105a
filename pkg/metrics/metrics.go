package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"policylend/internal/domain/loan"
)

// Collector counts committed loan transitions and repayment volume. It owns
// its registry so tests can construct collectors without global state.
type Collector struct {
	registry        *prometheus.Registry
	loanTransitions *prometheus.CounterVec
	repaymentVolume *prometheus.CounterVec
}

func NewCollector() *Collector {
	registry := prometheus.NewRegistry()
	return &Collector{
		registry: registry,
		loanTransitions: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "loan_transitions_total",
			Help: "Committed loan state transitions by resulting status",
		}, []string{"status"}),
		repaymentVolume: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "loan_repayment_volume_total",
			Help: "Repaid amount in smallest token units",
		}, []string{"token"}),
	}
}

func (c *Collector) RecordTransition(status loan.Status) {
	c.loanTransitions.WithLabelValues(string(status)).Inc()
}

func (c *Collector) RecordRepayment(token string, amount int64) {
	c.repaymentVolume.WithLabelValues(token).Add(float64(amount))
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
