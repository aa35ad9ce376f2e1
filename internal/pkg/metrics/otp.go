package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(otpChallengesTotal, otpVerificationsTotal)
}

var (
	otpChallengesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "otp_challenges_total",
			Help: "OTP challenges issued, labeled by outcome (issued/registered/delivery_failed).",
		},
		[]string{"result"},
	)

	otpVerificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "otp_verifications_total",
			Help: "OTP verification attempts by result (ok/not_found/expired/mismatch).",
		},
		[]string{"result"},
	)
)

func IncOTPChallenge(result string) {
	otpChallengesTotal.WithLabelValues(norm(result)).Inc()
}

func IncOTPVerification(result string) {
	otpVerificationsTotal.WithLabelValues(norm(result)).Inc()
}
