package mailer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amberlane-studio/amberlane-backend-go/mailer"
)

func TestRenderPaymentLink(t *testing.T) {
	html, text, err := mailer.Render(mailer.TemplatePaymentLink, map[string]interface{}{
		"Name":        "Ada",
		"OrderNumber": "ORD-1700000000000-0042",
		"Total":       129.90,
		"PaymentURL":  "https://amberlane.studio/payment/abc?token=xyz",
		"Expiry":      "Jan 2, 2026 3:04 PM UTC",
	})
	require.NoError(t, err)

	assert.Contains(t, html, "ORD-1700000000000-0042")
	assert.Contains(t, html, "$129.90")
	assert.Contains(t, html, "https://amberlane.studio/payment/abc?token=xyz")
	assert.Contains(t, text, "ORD-1700000000000-0042")
	assert.Contains(t, text, "$129.90")
}

func TestRenderRejectedWithAndWithoutReason(t *testing.T) {
	html, _, err := mailer.Render(mailer.TemplateOrderRejected, map[string]interface{}{
		"Name":        "Ada",
		"OrderNumber": "ORD-1",
		"Reason":      "material unavailable",
	})
	require.NoError(t, err)
	assert.Contains(t, html, "material unavailable")

	html, _, err = mailer.Render(mailer.TemplateOrderRejected, map[string]interface{}{
		"Name":        "Ada",
		"OrderNumber": "ORD-1",
	})
	require.NoError(t, err)
	assert.NotContains(t, html, "Reason:")
}

func TestRenderUnknownTemplate(t *testing.T) {
	_, _, err := mailer.Render("no_such_template", nil)
	require.Error(t, err)
}
