package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(emailDeliveriesTotal)
}

var emailDeliveriesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "email_deliveries_total",
		Help: "Queued emails processed by the worker (sent/requeued/dropped).",
	},
	[]string{"result"},
)

func IncEmailDelivery(result string) {
	emailDeliveriesTotal.WithLabelValues(norm(result)).Inc()
}
