package mailer

// Template names used across the handlers.
const (
	TemplatePaymentLink   = "payment_link"
	TemplateOrderAccepted = "order_accepted"
	TemplateOrderRejected = "order_rejected"
	TemplateOrderShipped  = "order_shipped"
	TemplateContactAck    = "contact_ack"
)

type templatePair struct {
	html string
	text string
}

// Templates are embedded so the binary is self-contained; data keys are the
// contract between handlers and copy.
var templates = map[string]templatePair{
	TemplatePaymentLink: {
		html: `<p>Hi {{.Name}},</p>
<p>Your Amberlane order <strong>{{.OrderNumber}}</strong> is ready for payment.</p>
<p>Total due: <strong>${{printf "%.2f" .Total}}</strong></p>
<p><a href="{{.PaymentURL}}">Complete your payment</a> — this link expires {{.Expiry}}.</p>`,
		text: `Hi {{.Name}},

Your Amberlane order {{.OrderNumber}} is ready for payment.
Total due: ${{printf "%.2f" .Total}}

Complete your payment: {{.PaymentURL}}
This link expires {{.Expiry}}.`,
	},
	TemplateOrderAccepted: {
		html: `<p>Hi {{.Name}},</p>
<p>Good news — your order <strong>{{.OrderNumber}}</strong> has been accepted. We'll follow up with payment details shortly.</p>`,
		text: `Hi {{.Name}},

Good news — your order {{.OrderNumber}} has been accepted. We'll follow up with payment details shortly.`,
	},
	TemplateOrderRejected: {
		html: `<p>Hi {{.Name}},</p>
<p>We're sorry — we couldn't take on your order <strong>{{.OrderNumber}}</strong>.{{if .Reason}} Reason: {{.Reason}}{{end}}</p>
<p>No payment has been collected.</p>`,
		text: `Hi {{.Name}},

We're sorry — we couldn't take on your order {{.OrderNumber}}.{{if .Reason}} Reason: {{.Reason}}{{end}}
No payment has been collected.`,
	},
	TemplateOrderShipped: {
		html: `<p>Hi {{.Name}},</p>
<p>Your order <strong>{{.OrderNumber}}</strong> is on its way!</p>
<p>Carrier: {{.Carrier}}<br>Tracking number: <strong>{{.Tracking}}</strong></p>`,
		text: `Hi {{.Name}},

Your order {{.OrderNumber}} is on its way!
Carrier: {{.Carrier}}
Tracking number: {{.Tracking}}`,
	},
	TemplateContactAck: {
		html: `<p>Hi {{.Name}},</p>
<p>Thanks for reaching out — we received your message and will reply within two business days.</p>`,
		text: `Hi {{.Name}},

Thanks for reaching out — we received your message and will reply within two business days.`,
	},
}
