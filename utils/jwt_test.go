package utils_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amberlane-studio/amberlane-backend-go/models"
	"github.com/amberlane-studio/amberlane-backend-go/utils"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := utils.GenerateSessionToken("507f1f77bcf86cd799439011", models.RoleAdmin)
	require.NoError(t, err)

	claims, err := utils.ValidateSessionToken(token)
	require.NoError(t, err)
	assert.Equal(t, "507f1f77bcf86cd799439011", claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestSessionToken_WrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	token, err := utils.GenerateSessionToken("507f1f77bcf86cd799439011", models.RoleCustomer)
	require.NoError(t, err)

	t.Setenv("JWT_SECRET", "other-secret")
	_, err = utils.ValidateSessionToken(token)
	assert.Error(t, err)
}

func TestPaymentLinkToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := utils.GeneratePaymentLinkToken("order-1", 4500)
	require.NoError(t, err)

	claims, err := utils.ValidatePaymentLinkToken(token, "order-1", 4500)
	require.NoError(t, err)
	assert.Equal(t, int64(4500), claims.TotalCents)
}

func TestPaymentLinkToken_WrongOrder(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := utils.GeneratePaymentLinkToken("order-1", 4500)
	require.NoError(t, err)

	_, err = utils.ValidatePaymentLinkToken(token, "order-2", 4500)
	assert.Error(t, err)
}

func TestPaymentLinkToken_StaleAfterPriceChange(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := utils.GeneratePaymentLinkToken("order-1", 4500)
	require.NoError(t, err)

	// the order total moved; the embedded total no longer matches
	_, err = utils.ValidatePaymentLinkToken(token, "order-1", 5200)
	assert.ErrorIs(t, err, utils.ErrStaleTotal)
}
