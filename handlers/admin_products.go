package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/amberlane-studio/amberlane-backend-go/database"
	"github.com/amberlane-studio/amberlane-backend-go/models"
)

func CreateProduct(c echo.Context) error {
	var product models.Product
	if err := c.Bind(&product); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}
	if product.Name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Product name is required"})
	}
	if product.Price < 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Price cannot be negative"})
	}

	product.ID = primitive.NewObjectID()
	product.CreatedAt = time.Now()
	product.UpdatedAt = time.Now()

	ctx, cancel := dbCtx()
	defer cancel()

	if _, err := database.DB.Collection("products").InsertOne(ctx, product); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create product"})
	}

	return c.JSON(http.StatusCreated, product)
}

func UpdateProduct(c echo.Context) error {
	objID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid product ID"})
	}

	var product models.Product
	if err := c.Bind(&product); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}
	if product.Price < 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Price cannot be negative"})
	}

	product.ID = objID
	product.UpdatedAt = time.Now()

	ctx, cancel := dbCtx()
	defer cancel()

	res, err := database.DB.Collection("products").ReplaceOne(ctx, bson.M{"_id": objID}, product)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update product"})
	}
	if res.MatchedCount == 0 {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Product not found"})
	}

	return c.JSON(http.StatusOK, product)
}

func DeleteProduct(c echo.Context) error {
	objID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid product ID"})
	}

	ctx, cancel := dbCtx()
	defer cancel()

	res, err := database.DB.Collection("products").DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to delete product"})
	}
	if res.DeletedCount == 0 {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Product not found"})
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Product deleted"})
}

// BulkSale applies or clears a sale config across a set of products in one
// pass, the back-office bulk mutation the catalog UI drives.
func BulkSale(c echo.Context) error {
	var req struct {
		ProductIDs []string           `json:"productIds"`
		SaleConfig *models.SaleConfig `json:"saleConfig"` // nil clears
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}
	if len(req.ProductIDs) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "No products selected"})
	}
	if req.SaleConfig != nil {
		if req.SaleConfig.Kind != models.SalePercentage && req.SaleConfig.Kind != models.SaleAmount {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Unknown sale kind"})
		}
		if req.SaleConfig.Value < 0 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Sale value cannot be negative"})
		}
	}

	ids := make([]primitive.ObjectID, 0, len(req.ProductIDs))
	for _, raw := range req.ProductIDs {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid product ID: " + raw})
		}
		ids = append(ids, id)
	}

	ctx, cancel := dbCtx()
	defer cancel()

	var update bson.M
	if req.SaleConfig == nil {
		update = bson.M{
			"$unset": bson.M{"saleConfig": ""},
			"$set":   bson.M{"updatedAt": time.Now()},
		}
	} else {
		update = bson.M{
			"$set": bson.M{"saleConfig": req.SaleConfig, "updatedAt": time.Now()},
		}
	}

	res, err := database.DB.Collection("products").UpdateMany(ctx, bson.M{"_id": bson.M{"$in": ids}}, update)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update products"})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"updated": res.ModifiedCount})
}
