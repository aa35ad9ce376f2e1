package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(referralCodesIssuedTotal, referralRedemptionsTotal)
}

var (
	referralCodesIssuedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "referral_codes_issued_total",
			Help: "Referral codes created for authors.",
		},
	)

	referralRedemptionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "referral_redemptions_total",
			Help: "Referral redemption attempts by result (redeemed/rejected).",
		},
		[]string{"result"},
	)
)

func IncReferralIssued() {
	referralCodesIssuedTotal.Inc()
}

func IncReferralRedemption(result string) {
	referralRedemptionsTotal.WithLabelValues(norm(result)).Inc()
}
