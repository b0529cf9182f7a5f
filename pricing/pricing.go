// Package pricing owns every money computation in the storefront. All
// arithmetic goes through shopspring/decimal and is rounded half-up to two
// places before it touches a document, which is what keeps the
// total == subtotal + shipping + tax invariant checkable to the cent.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/amberlane-studio/amberlane-backend-go/models"
)

var cent = decimal.New(1, -2)

func round(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}

// EffectivePrice resolves the price a sale config yields for a list price.
// Percentage discounts are clamped to [0,100]; amount discounts are floored
// at zero. A nil or inactive config returns the list price unchanged.
func EffectivePrice(listPrice float64, sale *models.SaleConfig) float64 {
	list := decimal.NewFromFloat(listPrice)
	if sale == nil || !sale.Active {
		return round(list)
	}

	switch sale.Kind {
	case models.SalePercentage:
		pct := decimal.NewFromFloat(sale.Value)
		if pct.IsNegative() {
			pct = decimal.Zero
		}
		hundred := decimal.NewFromInt(100)
		if pct.GreaterThan(hundred) {
			pct = hundred
		}
		return round(list.Sub(list.Mul(pct).Div(hundred)))
	case models.SaleAmount:
		amt := decimal.NewFromFloat(sale.Value)
		if amt.IsNegative() {
			amt = decimal.Zero
		}
		p := list.Sub(amt)
		if p.IsNegative() {
			p = decimal.Zero
		}
		return round(p)
	default:
		return round(list)
	}
}

// ResolveUnitPrice applies the sale-resolution order: unit-level config
// first, then the product-level one, then the plain list price.
func ResolveUnitPrice(p *models.Product, unit *models.ProductUnit) float64 {
	if unit != nil {
		if unit.SaleConfig != nil && unit.SaleConfig.Active {
			return EffectivePrice(unit.Price, unit.SaleConfig)
		}
		return EffectivePrice(unit.Price, p.SaleConfig)
	}
	return EffectivePrice(p.Price, p.SaleConfig)
}

// Subtotal sums the line totals of an item snapshot.
func Subtotal(items []models.OrderItem) float64 {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return round(sum)
}

// Totals recomputes subtotal and total from the current items, shipping cost
// and tax.
func Totals(items []models.OrderItem, shippingCost, tax float64) (subtotal, total float64) {
	sub := decimal.NewFromFloat(Subtotal(items))
	tot := sub.Add(decimal.NewFromFloat(shippingCost)).Add(decimal.NewFromFloat(tax))
	return round(sub), round(tot)
}

// Recalculate re-asserts the money invariant on the order in place and
// reports whether the total moved by more than a cent against the previous
// value, which is the trigger for token invalidation and intent cancellation.
func Recalculate(o *models.Order) (adjusted bool) {
	prev := decimal.NewFromFloat(o.Total)
	o.Subtotal, o.Total = Totals(o.Items, o.ShippingCost, o.Tax)
	diff := decimal.NewFromFloat(o.Total).Sub(prev).Abs()
	return diff.GreaterThan(cent)
}

// CustomerShippingCost applies the free-shipping threshold: at or above it
// the chosen carrier rate is zeroed for the customer. The real carrier cost
// is retained separately on the shipment record.
func CustomerShippingCost(subtotal, carrierRate float64, threshold decimal.Decimal) float64 {
	if decimal.NewFromFloat(subtotal).GreaterThanOrEqual(threshold) {
		return 0
	}
	return round(decimal.NewFromFloat(carrierRate))
}
