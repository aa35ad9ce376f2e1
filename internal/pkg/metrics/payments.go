package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		paymentRequestsTotal,
		paymentReviewsTotal,
		planActivationsTotal,
		planExpirationsTotal,
	)
}

var (
	paymentRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_requests_total",
			Help: "Offline payment requests submitted, labeled by plan key.",
		},
		[]string{"plan"},
	)

	paymentReviewsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_reviews_total",
			Help: "Payment reviews by action (approve/reject).",
		},
		[]string{"action"},
	)

	planActivationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plan_activations_total",
			Help: "Plans activated after payment approval.",
		},
		[]string{"plan"},
	)

	planExpirationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "plan_expirations_total",
			Help: "Plans moved to expired by the periodic sweep.",
		},
	)
)

func IncPaymentRequest(plan string) {
	paymentRequestsTotal.WithLabelValues(norm(plan)).Inc()
}

func IncPaymentReview(action string) {
	paymentReviewsTotal.WithLabelValues(norm(action)).Inc()
}

func IncPlanActivation(plan string) {
	planActivationsTotal.WithLabelValues(norm(plan)).Inc()
}

func AddPlanExpirations(n int64) {
	planExpirationsTotal.Add(float64(n))
}
