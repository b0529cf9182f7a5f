package pricing_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amberlane-studio/amberlane-backend-go/models"
	"github.com/amberlane-studio/amberlane-backend-go/pricing"
)

func pct(v float64) *models.SaleConfig {
	return &models.SaleConfig{Kind: models.SalePercentage, Value: v, Active: true}
}

func amt(v float64) *models.SaleConfig {
	return &models.SaleConfig{Kind: models.SaleAmount, Value: v, Active: true}
}

func TestEffectivePrice_Percentage(t *testing.T) {
	assert.Equal(t, 80.0, pricing.EffectivePrice(100, pct(20)))
	assert.Equal(t, 100.0, pricing.EffectivePrice(100, pct(0)))

	// clamped to [0,100] of list price
	assert.Equal(t, 0.0, pricing.EffectivePrice(100, pct(150)))
	assert.Equal(t, 100.0, pricing.EffectivePrice(100, pct(-10)))
}

func TestEffectivePrice_Amount(t *testing.T) {
	assert.Equal(t, 35.0, pricing.EffectivePrice(45, amt(10)))

	// never below zero
	assert.Equal(t, 0.0, pricing.EffectivePrice(45, amt(60)))
	assert.Equal(t, 45.0, pricing.EffectivePrice(45, amt(-5)))
}

func TestEffectivePrice_InactiveOrNil(t *testing.T) {
	inactive := &models.SaleConfig{Kind: models.SalePercentage, Value: 50, Active: false}
	assert.Equal(t, 88.5, pricing.EffectivePrice(88.5, inactive))
	assert.Equal(t, 88.5, pricing.EffectivePrice(88.5, nil))
}

func TestEffectivePrice_Bounds(t *testing.T) {
	list := 79.99
	for _, v := range []float64{0, 15, 50, 99, 100, 250} {
		p := pricing.EffectivePrice(list, pct(v))
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, list)
	}
	for _, v := range []float64{0, 10, 79.99, 500} {
		assert.GreaterOrEqual(t, pricing.EffectivePrice(list, amt(v)), 0.0)
	}
}

func TestResolveUnitPrice_UnitSaleWins(t *testing.T) {
	product := &models.Product{
		Price:      100,
		SaleConfig: pct(50),
		Units: []models.ProductUnit{
			{UnitID: "u1", Price: 80, SaleConfig: pct(25)},
			{UnitID: "u2", Price: 60},
		},
	}

	// unit-level sale beats the product-level one
	assert.Equal(t, 60.0, pricing.ResolveUnitPrice(product, &product.Units[0]))
	// no unit sale: product-level sale applies to the unit price
	assert.Equal(t, 30.0, pricing.ResolveUnitPrice(product, &product.Units[1]))
	// no unit at all: flat price with product sale
	assert.Equal(t, 50.0, pricing.ResolveUnitPrice(product, nil))
}

func TestTotalsInvariant(t *testing.T) {
	items := []models.OrderItem{
		{Name: "ring", Price: 45.50, Quantity: 2},
		{Name: "pendant", Price: 28.99, Quantity: 1},
	}

	subtotal, total := pricing.Totals(items, 8.50, 10.25)
	require.Equal(t, 119.99, subtotal)
	assert.Equal(t, 138.74, total)
}

func TestRecalculate_FlagsCentPlusDelta(t *testing.T) {
	order := &models.Order{
		Items: []models.OrderItem{{Name: "custom", Price: 0, Quantity: 1}},
	}
	adjusted := pricing.Recalculate(order)
	assert.False(t, adjusted, "zero total matches the zero-valued document")

	order.Items[0].Price = 45
	adjusted = pricing.Recalculate(order)
	assert.True(t, adjusted)
	assert.Equal(t, 45.0, order.Subtotal)
	assert.Equal(t, 45.0, order.Total)

	// re-running without changes is stable
	assert.False(t, pricing.Recalculate(order))
}

func TestFreeShippingScenario(t *testing.T) {
	// subtotal $120, threshold $100, chosen carrier rate $8.50
	threshold := decimal.NewFromInt(100)

	shipping := pricing.CustomerShippingCost(120, 8.50, threshold)
	require.Equal(t, 0.0, shipping)

	order := &models.Order{
		Items:        []models.OrderItem{{Name: "necklace", Price: 120, Quantity: 1}},
		ShippingCost: shipping,
		Tax:          9.90,
	}
	pricing.Recalculate(order)
	assert.Equal(t, 120.0, order.Subtotal)
	assert.Equal(t, 0.0, order.ShippingCost)
	assert.Equal(t, 129.90, order.Total)
}

func TestCustomerShippingCost_BelowThreshold(t *testing.T) {
	threshold := decimal.NewFromInt(100)
	assert.Equal(t, 8.50, pricing.CustomerShippingCost(99.99, 8.50, threshold))
	// exactly at threshold qualifies
	assert.Equal(t, 0.0, pricing.CustomerShippingCost(100, 8.50, threshold))
}
