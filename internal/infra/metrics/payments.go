package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		paymentsTotal,
		reviewsTotal,
	)
}

var (
	paymentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_total",
			Help: "Payment attempts by outcome (created/charge_failed/ledger_write_failed).",
		},
		[]string{"outcome"},
	)

	reviewsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_reviews_total",
			Help: "Admin review decisions (approved/rejected).",
		},
		[]string{"decision"},
	)
)

func IncPayment(outcome string) {
	paymentsTotal.WithLabelValues(norm(outcome)).Inc()
}

func IncReview(decision string) {
	reviewsTotal.WithLabelValues(norm(decision)).Inc()
}
