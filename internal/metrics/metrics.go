package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Subscription outcomes: accepted, incomplete, security, spam, throttled, validation, duplicate, failed
	SubscriptionAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mailinglists_subscription_attempts_total",
		Help: "Total number of subscription form submissions by outcome",
	}, []string{"outcome"})

	MailSends = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mailinglists_mail_sends_total",
		Help: "Total number of individual email sends by provider and result",
	}, []string{"provider", "result"})

	BulkCampaigns = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mailinglists_bulk_campaigns_total",
		Help: "Total number of completed bulk email campaigns",
	})

	Exports = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mailinglists_exports_total",
		Help: "Total number of subscriber exports by format",
	}, []string{"format"})

	FloodLimited = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mailinglists_flood_limited_total",
		Help: "Total number of public requests rejected by the per-IP flood limiter",
	})
)

func init() {
	prometheus.MustRegister(SubscriptionAttempts)
	prometheus.MustRegister(MailSends)
	prometheus.MustRegister(BulkCampaigns)
	prometheus.MustRegister(Exports)
	prometheus.MustRegister(FloodLimited)
}
