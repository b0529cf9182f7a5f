package payments_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/amberlane-studio/amberlane-backend-go/payments"
)

func TestAmountCents(t *testing.T) {
	assert.Equal(t, int64(0), payments.AmountCents(0))
	assert.Equal(t, int64(4550), payments.AmountCents(45.50))
	assert.Equal(t, int64(13874), payments.AmountCents(138.74))
	// float noise must not shave a cent off
	assert.Equal(t, int64(1999), payments.AmountCents(19.99))
	assert.Equal(t, int64(10), payments.AmountCents(0.1))
}
