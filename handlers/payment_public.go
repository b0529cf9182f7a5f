package handlers

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/amberlane-studio/amberlane-backend-go/config"
	"github.com/amberlane-studio/amberlane-backend-go/models"
	"github.com/amberlane-studio/amberlane-backend-go/payments"
	"github.com/amberlane-studio/amberlane-backend-go/utils"
)

// bearerToken pulls the payment token from the Authorization header or the
// token query parameter (the mailed link form).
func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get("Authorization")
	if parts := strings.Split(header, " "); len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return c.QueryParam("token")
}

// tokenAuthorizesOrder accepts either token kind: the opaque token stored on
// the order (checked for match and expiry) or the signed 7-day variant
// (checked for signature, expiry, order binding and a still-current total).
// Both fail after a price adjustment: the opaque token was cleared from the
// document, and the signed token's embedded total no longer matches.
func tokenAuthorizesOrder(token string, order *models.Order) bool {
	if token == "" {
		return false
	}
	if order.PaymentToken != "" &&
		subtle.ConstantTimeCompare([]byte(token), []byte(order.PaymentToken)) == 1 {
		return time.Now().Before(order.PaymentTokenExpiry)
	}
	_, err := utils.ValidatePaymentLinkToken(token, order.ID.Hex(), payments.AmountCents(order.Total))
	return err == nil
}

// redactedOrder is the customer-facing order view on the payment page: no
// audit trail, no admin notes, no internal identifiers.
type redactedOrder struct {
	OrderNumber  string             `json:"orderNumber"`
	Items        []models.OrderItem `json:"items"`
	Subtotal     float64            `json:"subtotal"`
	ShippingCost float64            `json:"shippingCost"`
	Tax          float64            `json:"tax"`
	Total        float64            `json:"total"`
	Status       string             `json:"status"`
}

// customerStatus maps internal statuses to the coarse text customers see.
func customerStatus(s models.OrderStatus) string {
	switch s {
	case models.OrderStatusPendingApproval:
		return "Pending Approval"
	case models.OrderStatusAccepted, models.OrderStatusApproved,
		models.OrderStatusPendingPayment, models.OrderStatusPendingAdjustment,
		models.OrderStatusShippingCalculated:
		return "Awaiting Payment"
	case models.OrderStatusProcessing:
		return "Processing"
	case models.OrderStatusShipped:
		return "Shipped"
	case models.OrderStatusDelivered:
		return "Delivered"
	case models.OrderStatusRejected, models.OrderStatusCancelled:
		return "Cancelled"
	default:
		return "Processing"
	}
}

// VerifyOrder is the unauthenticated endpoint behind the mailed payment
// link: it confirms the token is still valid and returns the redacted order.
func VerifyOrder(c echo.Context) error {
	ctx, cancel := dbCtx()
	defer cancel()

	order := orderByParam(c, ctx)
	if order == nil {
		return nil
	}

	if !tokenAuthorizesOrder(bearerToken(c), order) {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Payment link is invalid or has expired"})
	}

	return c.JSON(http.StatusOK, redactedOrder{
		OrderNumber:  order.OrderNumber,
		Items:        order.Items,
		Subtotal:     order.Subtotal,
		ShippingCost: order.ShippingCost,
		Tax:          order.Tax,
		Total:        order.Total,
		Status:       customerStatus(order.Status),
	})
}

// CreateCheckoutSession exchanges a valid payment token for a processor
// checkout session URL.
func CreateCheckoutSession(c echo.Context) error {
	ctx, cancel := dbCtx()
	defer cancel()

	order := orderByParam(c, ctx)
	if order == nil {
		return nil
	}

	if !tokenAuthorizesOrder(bearerToken(c), order) {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Payment link is invalid or has expired"})
	}

	base := config.GetEnv("BASE_URL", "http://localhost:3000")
	url, err := payments.Default.CreateCheckoutSession(order,
		base+"/payment/success?order="+order.OrderNumber,
		base+"/payment/"+order.ID.Hex())
	if err != nil {
		return c.JSON(http.StatusBadGateway, map[string]string{
			"error":   "Failed to create checkout session",
			"details": err.Error(),
		})
	}

	return c.JSON(http.StatusOK, map[string]string{"url": url})
}
