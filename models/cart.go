package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartItem snapshots price and available stock at add time; the checkout
// re-resolves both against the live catalog.
type CartItem struct {
	ProductID     primitive.ObjectID `bson:"productId" json:"productId"`
	UnitID        string             `bson:"unitId,omitempty" json:"unitId,omitempty"`
	Name          string             `bson:"name" json:"name"`
	Size          string             `bson:"size,omitempty" json:"size,omitempty"`
	Color         string             `bson:"color,omitempty" json:"color,omitempty"`
	Quantity      int                `bson:"quantity" json:"quantity"`
	Price         float64            `bson:"price" json:"price"`
	StockAtAdd    int                `bson:"stockAtAdd" json:"stockAtAdd"`
	Image         string             `bson:"image,omitempty" json:"image,omitempty"`
	IsCustom      bool               `bson:"isCustom,omitempty" json:"isCustom,omitempty"`
	CustomDetails string             `bson:"customDetails,omitempty" json:"customDetails,omitempty"`
}

// Key disambiguates variants of the same product inside a cart.
func (i CartItem) Key() string {
	return CartItemKey(i.ProductID, i.UnitID)
}

func CartItemKey(productID primitive.ObjectID, unitID string) string {
	if unitID == "" {
		unitID = "default"
	}
	return productID.Hex() + "_" + unitID
}

type Cart struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Items     []CartItem         `bson:"items" json:"items"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// MergeItem folds one item into the list: an existing line with the same key
// gets the quantity added and its stock snapshot refreshed, anything else is
// appended.
func MergeItem(items []CartItem, add CartItem) []CartItem {
	for i := range items {
		if items[i].Key() == add.Key() {
			items[i].Quantity += add.Quantity
			items[i].StockAtAdd = add.StockAtAdd
			items[i].Price = add.Price
			return items
		}
	}
	return append(items, add)
}

// ReconcileCarts merges a client-held guest cart into the server cart. Policy:
// per key, the larger quantity wins; the server snapshot wins for price and
// stock fields when both sides carry the line.
func ReconcileCarts(server, client []CartItem) []CartItem {
	merged := make([]CartItem, len(server))
	copy(merged, server)

	index := make(map[string]int, len(merged))
	for i, it := range merged {
		index[it.Key()] = i
	}

	for _, it := range client {
		if pos, ok := index[it.Key()]; ok {
			if it.Quantity > merged[pos].Quantity {
				merged[pos].Quantity = it.Quantity
			}
			continue
		}
		index[it.Key()] = len(merged)
		merged = append(merged, it)
	}
	return merged
}
