// Package payments wraps the card processor. Intents are created with manual
// capture so money only moves when an admin approves the order.
package payments

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/paymentintent"

	"github.com/amberlane-studio/amberlane-backend-go/config"
	"github.com/amberlane-studio/amberlane-backend-go/models"
)

// Processor is the surface the order handlers depend on, kept narrow so tests
// can stub it.
type Processor interface {
	CreateIntent(amountCents int64, orderNumber, email string) (intentID string, err error)
	Capture(intentID string) error
	CancelIfCancelable(intentID string) error
	CreateCheckoutSession(o *models.Order, successURL, cancelURL string) (url string, err error)
}

type stripeProcessor struct{}

// New configures the global stripe client and returns the processor.
func New(secretKey string) Processor {
	stripe.Key = secretKey
	return &stripeProcessor{}
}

// AmountCents converts a two-decimal dollar amount to processor cents.
func AmountCents(dollars float64) int64 {
	return decimal.NewFromFloat(dollars).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

func (p *stripeProcessor) CreateIntent(amountCents int64, orderNumber, email string) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(amountCents),
		Currency:      stripe.String(string(stripe.CurrencyUSD)),
		CaptureMethod: stripe.String(string(stripe.PaymentIntentCaptureMethodManual)),
		ReceiptEmail:  stripe.String(email),
	}
	params.AddMetadata("orderNumber", orderNumber)

	pi, err := paymentintent.New(params)
	if err != nil {
		return "", fmt.Errorf("create payment intent: %w", err)
	}
	return pi.ID, nil
}

func (p *stripeProcessor) Capture(intentID string) error {
	_, err := paymentintent.Capture(intentID, &stripe.PaymentIntentCaptureParams{})
	if err != nil {
		return fmt.Errorf("capture payment intent %s: %w", intentID, err)
	}
	return nil
}

// cancelable lists the intent states the processor allows cancellation from.
var cancelable = map[stripe.PaymentIntentStatus]bool{
	stripe.PaymentIntentStatusRequiresPaymentMethod: true,
	stripe.PaymentIntentStatusRequiresConfirmation:  true,
	stripe.PaymentIntentStatusRequiresAction:        true,
	stripe.PaymentIntentStatusRequiresCapture:       true,
	stripe.PaymentIntentStatusProcessing:            true,
}

// CancelIfCancelable looks the intent up first and only cancels when the
// processor will accept it; an already-settled or missing intent is not an
// error for the caller.
func (p *stripeProcessor) CancelIfCancelable(intentID string) error {
	if intentID == "" {
		return nil
	}
	pi, err := paymentintent.Get(intentID, nil)
	if err != nil {
		return fmt.Errorf("look up payment intent %s: %w", intentID, err)
	}
	if !cancelable[pi.Status] {
		return nil
	}
	if _, err := paymentintent.Cancel(intentID, nil); err != nil {
		return fmt.Errorf("cancel payment intent %s: %w", intentID, err)
	}
	return nil
}

func (p *stripeProcessor) CreateCheckoutSession(o *models.Order, successURL, cancelURL string) (string, error) {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(o.Items)+2)
	for _, it := range o.Items {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(int64(it.Quantity)),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(string(stripe.CurrencyUSD)),
				UnitAmount: stripe.Int64(AmountCents(it.Price)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(it.Name),
				},
			},
		})
	}
	if o.ShippingCost > 0 {
		lineItems = append(lineItems, checkoutExtra("Shipping", o.ShippingCost))
	}
	if o.Tax > 0 {
		lineItems = append(lineItems, checkoutExtra("Tax", o.Tax))
	}

	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:     lineItems,
		SuccessURL:    stripe.String(successURL),
		CancelURL:     stripe.String(cancelURL),
		CustomerEmail: stripe.String(o.CustomerEmail),
	}
	params.AddMetadata("orderNumber", o.OrderNumber)

	s, err := session.New(params)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	return s.URL, nil
}

func checkoutExtra(name string, dollars float64) *stripe.CheckoutSessionLineItemParams {
	return &stripe.CheckoutSessionLineItemParams{
		Quantity: stripe.Int64(1),
		PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
			Currency:   stripe.String(string(stripe.CurrencyUSD)),
			UnitAmount: stripe.Int64(AmountCents(dollars)),
			ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
				Name: stripe.String(name),
			},
		},
	}
}

// Default is the processor handlers use; main replaces it once config is
// loaded. Keeping it a package variable mirrors how the database handle is
// shared and lets tests drop in a stub.
var Default Processor

func Init() {
	Default = New(config.GetEnv("STRIPE_SECRET_KEY", ""))
}
