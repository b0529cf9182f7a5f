package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/amberlane-studio/amberlane-backend-go/database"
	"github.com/amberlane-studio/amberlane-backend-go/models"
)

// ErrVersionConflict means another write landed between our read and write.
var ErrVersionConflict = errors.New("order was modified by another request")

func dbCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}

func currentUserID(c echo.Context) (primitive.ObjectID, bool) {
	id, ok := c.Get("userID").(primitive.ObjectID)
	return id, ok
}

func actor(c echo.Context) string {
	if id, ok := currentUserID(c); ok {
		return id.Hex()
	}
	return "system"
}

func loadOrder(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	var order models.Order
	err := database.DB.Collection("orders").FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if err != nil {
		return nil, err
	}
	order.PaymentStatus = models.NormalizePaymentStatus(order.PaymentStatus)
	return &order, nil
}

// saveOrder writes the full document back under a compare-and-swap on the
// version field. A lost race returns ErrVersionConflict with nothing written.
func saveOrder(ctx context.Context, order *models.Order) error {
	previous := order.Version
	order.Version = previous + 1

	res, err := database.DB.Collection("orders").ReplaceOne(
		ctx,
		bson.M{"_id": order.ID, "version": previous},
		order,
	)
	if err != nil {
		order.Version = previous
		return err
	}
	if res.MatchedCount == 0 {
		order.Version = previous
		return ErrVersionConflict
	}
	return nil
}

// orderByParam binds the :id path parameter and loads the order, writing the
// error response itself. Returns nil when a response was already sent.
func orderByParam(c echo.Context, ctx context.Context) *models.Order {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		_ = c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid order ID"})
		return nil
	}

	order, err := loadOrder(ctx, id)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			_ = c.JSON(http.StatusNotFound, map[string]string{"error": "Order not found"})
		} else {
			_ = c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch order"})
		}
		return nil
	}
	return order
}
