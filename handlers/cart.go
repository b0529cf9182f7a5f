package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/amberlane-studio/amberlane-backend-go/database"
	"github.com/amberlane-studio/amberlane-backend-go/models"
	"github.com/amberlane-studio/amberlane-backend-go/pricing"
)

// GetCart retrieves the user's cart, creating nothing; an absent document is
// an empty cart.
func GetCart(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "User not authenticated"})
	}

	ctx, cancel := dbCtx()
	defer cancel()

	var cart models.Cart
	err := database.DB.Collection("carts").FindOne(ctx, bson.M{"userId": userID}).Decode(&cart)
	if err == mongo.ErrNoDocuments {
		return c.JSON(http.StatusOK, models.Cart{UserID: userID, Items: []models.CartItem{}})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch cart"})
	}

	return c.JSON(http.StatusOK, cart)
}

type addToCartRequest struct {
	ProductID     string `json:"productId"`
	UnitID        string `json:"unitId"`
	Quantity      int    `json:"quantity"`
	IsCustom      bool   `json:"isCustom"`
	CustomDetails string `json:"customDetails"`
}

// AddToCart merges by (productId, unitId) key: an existing line gets the
// quantity summed and its stock snapshot refreshed, never a duplicate line.
func AddToCart(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "User not authenticated"})
	}

	var req addToCartRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}
	if req.Quantity <= 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Quantity must be positive"})
	}

	productID, err := primitive.ObjectIDFromHex(req.ProductID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid product ID"})
	}

	ctx, cancel := dbCtx()
	defer cancel()

	var product models.Product
	err = database.DB.Collection("products").FindOne(ctx, bson.M{"_id": productID}).Decode(&product)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Product not found"})
	}

	unit := product.Unit(req.UnitID)
	if req.UnitID != "" && unit == nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Unknown product variant"})
	}

	item := models.CartItem{
		ProductID:     productID,
		UnitID:        req.UnitID,
		Name:          product.Name,
		Quantity:      req.Quantity,
		Price:         pricing.ResolveUnitPrice(&product, unit),
		StockAtAdd:    product.Stock,
		IsCustom:      req.IsCustom,
		CustomDetails: req.CustomDetails,
	}
	if len(product.Images) > 0 {
		item.Image = product.Images[0]
	}
	if unit != nil {
		item.Size = unit.Size
		item.Color = unit.Color
		item.StockAtAdd = unit.Stock
	}

	carts := database.DB.Collection("carts")
	var cart models.Cart
	err = carts.FindOne(ctx, bson.M{"userId": userID}).Decode(&cart)
	if err == mongo.ErrNoDocuments {
		cart = models.Cart{
			ID:        primitive.NewObjectID(),
			UserID:    userID,
			Items:     []models.CartItem{item},
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		if _, err := carts.InsertOne(ctx, cart); err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update cart"})
		}
		return c.JSON(http.StatusOK, cart)
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch cart"})
	}

	cart.Items = models.MergeItem(cart.Items, item)
	cart.UpdatedAt = time.Now()
	if _, err := carts.ReplaceOne(ctx, bson.M{"_id": cart.ID}, cart); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update cart"})
	}

	return c.JSON(http.StatusOK, cart)
}

type updateCartRequest struct {
	ProductID string `json:"productId"`
	UnitID    string `json:"unitId"`
	Quantity  int    `json:"quantity"`
}

// UpdateCartItem sets a line's quantity; zero or below removes the line.
func UpdateCartItem(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "User not authenticated"})
	}

	var req updateCartRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}

	productID, err := primitive.ObjectIDFromHex(req.ProductID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid product ID"})
	}
	key := models.CartItemKey(productID, req.UnitID)

	ctx, cancel := dbCtx()
	defer cancel()

	carts := database.DB.Collection("carts")
	var cart models.Cart
	if err := carts.FindOne(ctx, bson.M{"userId": userID}).Decode(&cart); err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Cart not found"})
	}

	found := false
	items := cart.Items[:0]
	for _, it := range cart.Items {
		if it.Key() == key {
			found = true
			if req.Quantity <= 0 {
				continue // remove
			}
			it.Quantity = req.Quantity
		}
		items = append(items, it)
	}
	if !found {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Item not found in cart"})
	}

	cart.Items = items
	cart.UpdatedAt = time.Now()
	if _, err := carts.ReplaceOne(ctx, bson.M{"_id": cart.ID}, cart); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update cart"})
	}

	return c.JSON(http.StatusOK, cart)
}

// cartLinePull matches exactly one cart line: the named variant, or the
// default line (unitId absent or empty) when no variant is named. A bare
// productId match would also pull the product's variant lines.
func cartLinePull(productID primitive.ObjectID, unitID string) bson.M {
	if unitID == "" {
		return bson.M{"productId": productID, "unitId": bson.M{"$in": bson.A{nil, ""}}}
	}
	return bson.M{"productId": productID, "unitId": unitID}
}

// RemoveFromCart removes one line by key.
func RemoveFromCart(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "User not authenticated"})
	}

	productID, err := primitive.ObjectIDFromHex(c.Param("productId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid product ID"})
	}
	unitID := c.QueryParam("unitId")

	ctx, cancel := dbCtx()
	defer cancel()

	result, err := database.DB.Collection("carts").UpdateOne(
		ctx,
		bson.M{"userId": userID},
		bson.M{
			"$pull": bson.M{"items": cartLinePull(productID, unitID)},
			"$set":  bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update cart"})
	}
	if result.ModifiedCount == 0 {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Item not found in cart"})
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Item removed from cart"})
}

func ClearCart(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "User not authenticated"})
	}

	ctx, cancel := dbCtx()
	defer cancel()

	_, err := database.DB.Collection("carts").UpdateOne(
		ctx,
		bson.M{"userId": userID},
		bson.M{"$set": bson.M{"items": []models.CartItem{}, "updatedAt": time.Now()}},
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to clear cart"})
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Cart cleared"})
}

// SyncCart reconciles a client-held guest cart with the server cart on
// sign-in or app load. Merge policy (product default, not per-user): per
// line key the larger quantity wins; the server snapshot wins for price and
// stock when both sides have the line. Returns the merged cart so the client
// replaces its local copy.
func SyncCart(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "User not authenticated"})
	}

	var req struct {
		Items []models.CartItem `json:"items"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}

	ctx, cancel := dbCtx()
	defer cancel()

	carts := database.DB.Collection("carts")
	var cart models.Cart
	err := carts.FindOne(ctx, bson.M{"userId": userID}).Decode(&cart)
	if err == mongo.ErrNoDocuments {
		cart = models.Cart{
			ID:        primitive.NewObjectID(),
			UserID:    userID,
			Items:     []models.CartItem{},
			CreatedAt: time.Now(),
		}
	} else if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch cart"})
	}

	cart.Items = models.ReconcileCarts(cart.Items, req.Items)
	cart.UpdatedAt = time.Now()

	opts := bson.M{"$set": bson.M{
		"userId":    userID,
		"items":     cart.Items,
		"updatedAt": cart.UpdatedAt,
	}}
	if _, err := carts.UpdateOne(ctx, bson.M{"userId": userID}, opts, options.Update().SetUpsert(true)); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to sync cart"})
	}

	return c.JSON(http.StatusOK, cart)
}
