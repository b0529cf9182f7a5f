package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/amberlane-studio/amberlane-backend-go/models"
)

func TestCartItemKey(t *testing.T) {
	id := primitive.NewObjectID()
	assert.Equal(t, id.Hex()+"_default", models.CartItemKey(id, ""))
	assert.Equal(t, id.Hex()+"_silver-7", models.CartItemKey(id, "silver-7"))
}

func TestMergeItem_SameKeySums(t *testing.T) {
	id := primitive.NewObjectID()
	items := []models.CartItem{}

	items = models.MergeItem(items, models.CartItem{ProductID: id, UnitID: "u1", Quantity: 1, Price: 40, StockAtAdd: 5})
	items = models.MergeItem(items, models.CartItem{ProductID: id, UnitID: "u1", Quantity: 2, Price: 38, StockAtAdd: 3})

	require.Len(t, items, 1, "same key must merge into one line")
	assert.Equal(t, 3, items[0].Quantity)
	// snapshot refreshed from the latest add
	assert.Equal(t, 38.0, items[0].Price)
	assert.Equal(t, 3, items[0].StockAtAdd)
}

func TestMergeItem_DifferentVariantsStaySeparate(t *testing.T) {
	id := primitive.NewObjectID()
	items := []models.CartItem{}

	items = models.MergeItem(items, models.CartItem{ProductID: id, UnitID: "u1", Quantity: 1})
	items = models.MergeItem(items, models.CartItem{ProductID: id, UnitID: "u2", Quantity: 1})
	items = models.MergeItem(items, models.CartItem{ProductID: id, Quantity: 1}) // _default

	assert.Len(t, items, 3)
}

func TestReconcileCarts_MaxQuantityWins(t *testing.T) {
	shared := primitive.NewObjectID()
	serverOnly := primitive.NewObjectID()
	clientOnly := primitive.NewObjectID()

	server := []models.CartItem{
		{ProductID: shared, Quantity: 2, Price: 50, StockAtAdd: 10},
		{ProductID: serverOnly, Quantity: 1},
	}
	client := []models.CartItem{
		{ProductID: shared, Quantity: 5, Price: 45, StockAtAdd: 2},
		{ProductID: clientOnly, Quantity: 1},
	}

	merged := models.ReconcileCarts(server, client)
	require.Len(t, merged, 3)

	byKey := map[string]models.CartItem{}
	for _, it := range merged {
		byKey[it.Key()] = it
	}

	got := byKey[models.CartItemKey(shared, "")]
	assert.Equal(t, 5, got.Quantity, "larger quantity wins")
	assert.Equal(t, 50.0, got.Price, "server snapshot wins for price")
	assert.Equal(t, 10, got.StockAtAdd, "server snapshot wins for stock")

	assert.Contains(t, byKey, models.CartItemKey(serverOnly, ""))
	assert.Contains(t, byKey, models.CartItemKey(clientOnly, ""))
}

func TestReconcileCarts_DoesNotMutateServerSlice(t *testing.T) {
	id := primitive.NewObjectID()
	server := []models.CartItem{{ProductID: id, Quantity: 1}}
	client := []models.CartItem{{ProductID: id, Quantity: 9}}

	_ = models.ReconcileCarts(server, client)
	assert.Equal(t, 1, server[0].Quantity)
}
