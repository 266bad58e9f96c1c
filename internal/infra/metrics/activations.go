package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		activationsTotal,
		refundsTotal,
	)
}

var (
	activationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_activations_total",
			Help: "Content activation attempts by service type and outcome.",
		},
		[]string{"service_type", "outcome"},
	)

	refundsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "refunds_total",
			Help: "Refund attempts by outcome (ok/failed). Failed refunds need manual reconciliation.",
		},
		[]string{"outcome"},
	)
)

func IncActivation(serviceType, outcome string) {
	activationsTotal.WithLabelValues(norm(serviceType), norm(outcome)).Inc()
}

func IncRefund(outcome string) {
	refundsTotal.WithLabelValues(norm(outcome)).Inc()
}
