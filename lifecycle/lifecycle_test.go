package lifecycle_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amberlane-studio/amberlane-backend-go/lifecycle"
	"github.com/amberlane-studio/amberlane-backend-go/models"
	"github.com/amberlane-studio/amberlane-backend-go/pricing"
)

func newOrder(status models.OrderStatus) *models.Order {
	return &models.Order{
		OrderNumber:   "ORD-1700000000000-0001",
		Status:        status,
		PaymentStatus: models.PaymentStatusPendingApproval,
	}
}

func TestAccept(t *testing.T) {
	order := newOrder(models.OrderStatusPendingApproval)

	err := lifecycle.Apply(order, lifecycle.ActionAccept, "admin-1", "")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusAccepted, order.Status)
	assert.Equal(t, models.PaymentStatusPendingPayment, order.PaymentStatus)

	require.Len(t, order.Events, 1)
	assert.Equal(t, "accept", order.Events[0].Action)
	assert.Equal(t, models.OrderStatusPendingApproval, order.Events[0].From)
	assert.Equal(t, models.OrderStatusAccepted, order.Events[0].To)
	assert.Equal(t, "admin-1", order.Events[0].Actor)
}

func TestAccept_AlreadyAccepted(t *testing.T) {
	order := newOrder(models.OrderStatusAccepted)

	err := lifecycle.Apply(order, lifecycle.ActionAccept, "admin-1", "")
	require.Error(t, err)
	assert.EqualError(t, err, "Order is not pending approval. Current status: accepted")

	var conflict *lifecycle.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, models.OrderStatusAccepted, conflict.Current)

	// nothing applied
	assert.Equal(t, models.OrderStatusAccepted, order.Status)
	assert.Empty(t, order.Events)
}

func TestReject(t *testing.T) {
	order := newOrder(models.OrderStatusPendingApproval)

	require.NoError(t, lifecycle.Apply(order, lifecycle.ActionReject, "admin-1", "out of stock"))
	assert.Equal(t, models.OrderStatusRejected, order.Status)
	assert.Equal(t, models.PaymentStatusCancelled, order.PaymentStatus)
	assert.Equal(t, "out of stock", order.Events[0].Note)
}

func TestApprove(t *testing.T) {
	order := newOrder(models.OrderStatusPendingApproval)

	require.NoError(t, lifecycle.Apply(order, lifecycle.ActionApprove, "admin-1", ""))
	assert.Equal(t, models.OrderStatusProcessing, order.Status)
	assert.Equal(t, models.PaymentStatusCaptured, order.PaymentStatus)
}

func TestGenerateLink_IdempotentOnPendingPayment(t *testing.T) {
	order := newOrder(models.OrderStatusAccepted)

	require.NoError(t, lifecycle.Apply(order, lifecycle.ActionGenerateLink, "admin-1", ""))
	assert.Equal(t, models.OrderStatusPendingPayment, order.Status)

	// re-issuing from pending_payment keeps the status
	require.NoError(t, lifecycle.Apply(order, lifecycle.ActionGenerateLink, "admin-1", ""))
	assert.Equal(t, models.OrderStatusPendingPayment, order.Status)
	assert.Len(t, order.Events, 2)
}

func TestGenerateLink_AfterRateSelection(t *testing.T) {
	order := newOrder(models.OrderStatusAccepted)

	// a physical order needs a label before the link goes out, and buying one
	// moves the order through rate selection first
	require.NoError(t, lifecycle.Apply(order, lifecycle.ActionSelectRate, "admin-1", ""))
	assert.Equal(t, models.OrderStatusShippingCalculated, order.Status)

	require.NoError(t, lifecycle.Apply(order, lifecycle.ActionGenerateLink, "admin-1", ""))
	assert.Equal(t, models.OrderStatusPendingPayment, order.Status)
	assert.Equal(t, models.PaymentStatusPendingPayment, order.PaymentStatus)
}

func TestGenerateLink_IllegalFromProcessing(t *testing.T) {
	order := newOrder(models.OrderStatusProcessing)

	err := lifecycle.Apply(order, lifecycle.ActionGenerateLink, "admin-1", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Current status: processing")
}

func TestPriceAdjustment_WhileAwaitingPayment(t *testing.T) {
	order := newOrder(models.OrderStatusPendingPayment)
	order.PaymentStatus = models.PaymentStatusPendingPayment
	order.PaymentToken = "tok_abc"
	order.PaymentTokenExpiry = time.Now().Add(time.Hour)
	order.Items = []models.OrderItem{{Name: "Custom piece", Price: 0, Quantity: 1, IsCustom: true}}
	pricing.Recalculate(order)

	// admin reprices the custom item from $0 to $45
	order.Items[0].Price = 45
	require.NoError(t, lifecycle.ApplyPriceAdjustment(order, "admin-1", "custom item priced"))
	adjusted := pricing.Recalculate(order)
	require.True(t, adjusted)
	order.IsPriceAdjusted = true
	lifecycle.InvalidateToken(order)

	assert.Equal(t, models.OrderStatusPendingAdjustment, order.Status)
	assert.Equal(t, models.PaymentStatusPendingAdjustment, order.PaymentStatus)
	assert.True(t, order.IsPriceAdjusted)
	assert.Empty(t, order.PaymentToken)
	assert.True(t, order.PaymentTokenExpiry.IsZero())
	assert.Equal(t, 45.0, order.Total)
}

func TestPriceAdjustment_BeforePaymentKeepsStatus(t *testing.T) {
	order := newOrder(models.OrderStatusPendingApproval)

	require.NoError(t, lifecycle.ApplyPriceAdjustment(order, "admin-1", "tax set"))
	assert.Equal(t, models.OrderStatusPendingApproval, order.Status)
}

func TestPriceAdjustment_TerminalRejected(t *testing.T) {
	for _, status := range []models.OrderStatus{
		models.OrderStatusDelivered,
		models.OrderStatusRejected,
		models.OrderStatusCancelled,
	} {
		order := newOrder(status)
		err := lifecycle.ApplyPriceAdjustment(order, "admin-1", "")
		require.Error(t, err, "status %s", status)

		var conflict *lifecycle.ConflictError
		assert.ErrorAs(t, err, &conflict)
	}
}

func TestCanMarkShipped(t *testing.T) {
	order := newOrder(models.OrderStatusProcessing)
	order.PaymentStatus = models.PaymentStatusPendingPayment
	require.Error(t, lifecycle.CanMarkShipped(order), "uncaptured payment must block shipping")

	order.PaymentStatus = models.PaymentStatusCaptured
	require.Error(t, lifecycle.CanMarkShipped(order), "missing tracking must block shipping")

	order.ShippoShipment = &models.Shipment{TrackingNumber: "9400100000000000000000"}
	require.NoError(t, lifecycle.CanMarkShipped(order))

	// legacy "succeeded" payment status counts as captured
	order.PaymentStatus = "succeeded"
	require.NoError(t, lifecycle.CanMarkShipped(order))
}

func TestMarkShippedThenDelivered(t *testing.T) {
	order := newOrder(models.OrderStatusProcessing)

	require.NoError(t, lifecycle.Apply(order, lifecycle.ActionMarkShipped, "admin-1", ""))
	assert.Equal(t, models.OrderStatusShipped, order.Status)

	require.NoError(t, lifecycle.Apply(order, lifecycle.ActionMarkDelivered, "admin-1", ""))
	assert.Equal(t, models.OrderStatusDelivered, order.Status)

	// delivered is terminal
	err := lifecycle.Apply(order, lifecycle.ActionMarkDelivered, "admin-1", "")
	require.Error(t, err)
}
