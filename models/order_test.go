package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/amberlane-studio/amberlane-backend-go/models"
)

func TestNormalizePaymentStatus(t *testing.T) {
	assert.Equal(t, models.PaymentStatusCaptured, models.NormalizePaymentStatus("succeeded"))
	assert.Equal(t, models.PaymentStatusCaptured, models.NormalizePaymentStatus(models.PaymentStatusCaptured))
	assert.Equal(t, models.PaymentStatusPendingPayment, models.NormalizePaymentStatus(models.PaymentStatusPendingPayment))
}

func TestOrderStatusIsTerminal(t *testing.T) {
	terminal := []models.OrderStatus{
		models.OrderStatusDelivered,
		models.OrderStatusRejected,
		models.OrderStatusCancelled,
	}
	for _, s := range terminal {
		assert.True(t, s.IsTerminal(), string(s))
	}

	active := []models.OrderStatus{
		models.OrderStatusPendingApproval,
		models.OrderStatusAccepted,
		models.OrderStatusProcessing,
		models.OrderStatusShipped,
		models.OrderStatusPendingPayment,
		models.OrderStatusPendingAdjustment,
	}
	for _, s := range active {
		assert.False(t, s.IsTerminal(), string(s))
	}
}

func TestHasPhysicalItems(t *testing.T) {
	order := &models.Order{Items: []models.OrderItem{{Name: "Custom piece", IsCustom: true}}}
	assert.False(t, order.HasPhysicalItems())

	order.Items = append(order.Items, models.OrderItem{Name: "ring"})
	assert.True(t, order.HasPhysicalItems())
}

func TestLogEmail(t *testing.T) {
	order := &models.Order{}
	order.LogEmail("payment_link", "a@b.com", "Complete your payment")
	order.LogEmail("order_shipped", "a@b.com", "Shipped")

	assert.Len(t, order.EmailHistory, 2)
	assert.Equal(t, "payment_link", order.EmailHistory[0].Template)
	assert.Equal(t, "a@b.com", order.EmailHistory[0].To)
	assert.False(t, order.EmailHistory[0].SentAt.IsZero())
}
