package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/amberlane-studio/amberlane-backend-go/database"
	"github.com/amberlane-studio/amberlane-backend-go/models"
	"github.com/amberlane-studio/amberlane-backend-go/pricing"
)

// productView is a catalog entry with the computed effective prices attached;
// the definitive current price is never stored.
type productView struct {
	models.Product
	EffectivePrice float64            `json:"effectivePrice"`
	UnitPrices     map[string]float64 `json:"unitPrices,omitempty"`
}

func viewOf(p models.Product) productView {
	v := productView{Product: p, EffectivePrice: pricing.ResolveUnitPrice(&p, nil)}
	if len(p.Units) > 0 {
		v.UnitPrices = make(map[string]float64, len(p.Units))
		for i := range p.Units {
			v.UnitPrices[p.Units[i].UnitID] = pricing.ResolveUnitPrice(&p, &p.Units[i])
		}
	}
	return v
}

func GetProducts(c echo.Context) error {
	filter := bson.M{}
	if category := c.QueryParam("category"); category != "" {
		filter["category"] = category
	}
	if c.QueryParam("featured") == "true" {
		filter["featured"] = true
	}

	ctx, cancel := dbCtx()
	defer cancel()

	cursor, err := database.DB.Collection("products").Find(ctx, filter,
		options.Find().SetSort(bson.M{"createdAt": -1}))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch products"})
	}
	defer cursor.Close(ctx)

	views := []productView{}
	for cursor.Next(ctx) {
		var product models.Product
		if err := cursor.Decode(&product); err != nil {
			continue
		}
		views = append(views, viewOf(product))
	}

	return c.JSON(http.StatusOK, views)
}

func GetProduct(c echo.Context) error {
	objID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid product ID"})
	}

	var product models.Product
	err = database.DB.Collection("products").FindOne(c.Request().Context(), bson.M{"_id": objID}).Decode(&product)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Product not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch product"})
	}

	return c.JSON(http.StatusOK, viewOf(product))
}
