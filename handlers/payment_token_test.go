package handlers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/amberlane-studio/amberlane-backend-go/lifecycle"
	"github.com/amberlane-studio/amberlane-backend-go/models"
	"github.com/amberlane-studio/amberlane-backend-go/payments"
	"github.com/amberlane-studio/amberlane-backend-go/utils"
)

func TestTokenAuthorizesOrder_Opaque(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	order := &models.Order{
		ID:                 primitive.NewObjectID(),
		PaymentToken:       "tok_live",
		PaymentTokenExpiry: time.Now().Add(time.Hour),
	}

	assert.True(t, tokenAuthorizesOrder("tok_live", order))
	assert.False(t, tokenAuthorizesOrder("tok_other", order))
	assert.False(t, tokenAuthorizesOrder("", order))
}

func TestTokenAuthorizesOrder_OpaqueExpired(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	order := &models.Order{
		ID:                 primitive.NewObjectID(),
		PaymentToken:       "tok_live",
		PaymentTokenExpiry: time.Now().Add(-time.Minute),
	}

	assert.False(t, tokenAuthorizesOrder("tok_live", order))
}

func TestTokenAuthorizesOrder_OpaqueClearedByPriceChange(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	order := &models.Order{
		ID:                 primitive.NewObjectID(),
		PaymentToken:       "tok_live",
		PaymentTokenExpiry: time.Now().Add(time.Hour),
	}
	require.True(t, tokenAuthorizesOrder("tok_live", order))

	// a price adjustment clears the stored token; the mailed one must stop
	// working even though it was valid a moment ago
	lifecycle.InvalidateToken(order)
	assert.False(t, tokenAuthorizesOrder("tok_live", order))
}

func TestTokenAuthorizesOrder_SignedStaleTotal(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	order := &models.Order{ID: primitive.NewObjectID(), Total: 45}

	token, err := utils.GeneratePaymentLinkToken(order.ID.Hex(), payments.AmountCents(order.Total))
	require.NoError(t, err)
	require.True(t, tokenAuthorizesOrder(token, order))

	order.Total = 52
	assert.False(t, tokenAuthorizesOrder(token, order))
}
