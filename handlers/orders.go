package handlers

import (
	"fmt"
	"net/http"
	"net/mail"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/amberlane-studio/amberlane-backend-go/database"
	"github.com/amberlane-studio/amberlane-backend-go/logger"
	"github.com/amberlane-studio/amberlane-backend-go/metrics"
	"github.com/amberlane-studio/amberlane-backend-go/models"
	"github.com/amberlane-studio/amberlane-backend-go/payments"
	"github.com/amberlane-studio/amberlane-backend-go/pricing"
)

type createOrderRequest struct {
	CustomerName  string                  `json:"customerName"`
	CustomerEmail string                  `json:"customerEmail"`
	ShippingInfo  *models.ShipmentAddress `json:"shippingInfo"`
}

// CreateOrder turns the signed-in user's cart into an order awaiting admin
// approval. Line items are re-resolved against the live catalog (price and
// stock) and snapshotted onto the order, after which the catalog can change
// freely.
func CreateOrder(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "User not authenticated"})
	}

	var req createOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}
	if _, err := mail.ParseAddress(req.CustomerEmail); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid email format"})
	}

	ctx, cancel := dbCtx()
	defer cancel()

	var cart models.Cart
	err := database.DB.Collection("carts").FindOne(ctx, bson.M{"userId": userID}).Decode(&cart)
	if err == mongo.ErrNoDocuments || (err == nil && len(cart.Items) == 0) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Cart is empty"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch cart"})
	}

	products := database.DB.Collection("products")
	orderItems := make([]models.OrderItem, 0, len(cart.Items))
	for _, item := range cart.Items {
		if item.IsCustom {
			orderItems = append(orderItems, models.OrderItem{
				Name:          item.Name,
				Quantity:      item.Quantity,
				Price:         item.Price,
				IsCustom:      true,
				CustomDetails: item.CustomDetails,
			})
			continue
		}

		var product models.Product
		if err := products.FindOne(ctx, bson.M{"_id": item.ProductID}).Decode(&product); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": fmt.Sprintf("Product %s is no longer available", item.Name),
			})
		}

		unit := product.Unit(item.UnitID)
		stock := product.Stock
		if unit != nil {
			stock = unit.Stock
		}
		if stock < item.Quantity {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": fmt.Sprintf("Insufficient stock for %s", product.Name),
			})
		}

		orderItem := models.OrderItem{
			ProductID: product.ID,
			UnitID:    item.UnitID,
			Name:      product.Name,
			Quantity:  item.Quantity,
			Price:     pricing.ResolveUnitPrice(&product, unit),
			Image:     item.Image,
		}
		if unit != nil {
			orderItem.Size = unit.Size
			orderItem.Color = unit.Color
		}
		orderItems = append(orderItems, orderItem)
	}

	orderNumber, err := database.NextOrderNumber(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create order"})
	}

	order := models.Order{
		ID:            primitive.NewObjectID(),
		OrderNumber:   orderNumber,
		UserID:        userID,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		Items:         orderItems,
		Status:        models.OrderStatusPendingApproval,
		PaymentStatus: models.PaymentStatusPendingApproval,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	if req.ShippingInfo != nil {
		order.ShippoShipment = &models.Shipment{AddressTo: req.ShippingInfo}
	}
	pricing.Recalculate(&order)
	order.IsPriceAdjusted = false

	// Manual-capture intent: the card is authorized now, money moves only on
	// admin approval. A processor failure here is fatal to checkout.
	intentID, err := payments.Default.CreateIntent(
		payments.AmountCents(order.Total), order.OrderNumber, order.CustomerEmail)
	if err != nil {
		metrics.UpstreamErrors.WithLabelValues("stripe").Inc()
		logger.Log.Error("payment intent creation failed",
			zap.String("orderNumber", order.OrderNumber), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to initialize payment"})
	}
	order.PaymentIntentID = intentID

	if _, err := database.DB.Collection("orders").InsertOne(ctx, order); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create order"})
	}
	metrics.OrdersCreated.Inc()

	// Clear cart after successful order creation
	_, err = database.DB.Collection("carts").UpdateOne(
		ctx,
		bson.M{"userId": userID},
		bson.M{"$set": bson.M{"items": []models.CartItem{}, "updatedAt": time.Now()}},
	)
	if err != nil {
		logger.Log.Warn("failed to clear cart after order creation",
			zap.String("orderNumber", order.OrderNumber), zap.Error(err))
	}

	return c.JSON(http.StatusCreated, map[string]string{
		"orderId":     order.ID.Hex(),
		"orderNumber": order.OrderNumber,
	})
}

type customOrderRequest struct {
	CustomerName  string `json:"customerName"`
	CustomerEmail string `json:"customerEmail"`
	Description   string `json:"description"`
}

// CreateCustomOrder submits a bespoke piece request. It enters the same
// approval pipeline with a zero-priced custom line item; the admin quotes it
// via edit-custom-item.
func CreateCustomOrder(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "User not authenticated"})
	}

	var req customOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}
	if _, err := mail.ParseAddress(req.CustomerEmail); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid email format"})
	}
	if req.Description == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Description is required"})
	}

	orderNumber, err := database.NextCustomOrderNumber()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create order"})
	}

	order := models.Order{
		ID:            primitive.NewObjectID(),
		OrderNumber:   orderNumber,
		UserID:        userID,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		Items: []models.OrderItem{{
			Name:          "Custom piece",
			Quantity:      1,
			Price:         0,
			IsCustom:      true,
			CustomDetails: req.Description,
		}},
		Status:        models.OrderStatusPendingApproval,
		PaymentStatus: models.PaymentStatusPendingApproval,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	pricing.Recalculate(&order)
	order.IsPriceAdjusted = false

	ctx, cancel := dbCtx()
	defer cancel()

	if _, err := database.DB.Collection("orders").InsertOne(ctx, order); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create order"})
	}
	metrics.OrdersCreated.Inc()

	return c.JSON(http.StatusCreated, map[string]string{
		"orderId":     order.ID.Hex(),
		"orderNumber": order.OrderNumber,
	})
}

func ListMyOrders(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "User not authenticated"})
	}

	ctx, cancel := dbCtx()
	defer cancel()

	cursor, err := database.DB.Collection("orders").Find(
		ctx,
		bson.M{"userId": userID},
		options.Find().SetSort(bson.M{"createdAt": -1}),
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch orders"})
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	for cursor.Next(ctx) {
		var order models.Order
		if err := cursor.Decode(&order); err != nil {
			continue
		}
		orders = append(orders, order)
	}

	return c.JSON(http.StatusOK, orders)
}

func GetMyOrder(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "User not authenticated"})
	}

	ctx, cancel := dbCtx()
	defer cancel()

	order := orderByParam(c, ctx)
	if order == nil {
		return nil
	}
	if order.UserID != userID {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Order not found"})
	}

	return c.JSON(http.StatusOK, order)
}
