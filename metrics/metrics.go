package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "amberlane_orders_created_total",
		Help: "Orders created through checkout or custom submission.",
	})

	OrderTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "amberlane_order_transitions_total",
		Help: "Order lifecycle transitions by action.",
	}, []string{"action"})

	PaymentLinksIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "amberlane_payment_links_issued_total",
		Help: "Payment links minted by admins.",
	})

	EmailsQueued = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "amberlane_emails_queued_total",
		Help: "Emails handed to the SMTP relay, by template.",
	}, []string{"template"})

	UpstreamErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "amberlane_upstream_errors_total",
		Help: "Failed calls to external collaborators.",
	}, []string{"collaborator"})
)
