package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/amberlane-studio/amberlane-backend-go/config"
	"github.com/amberlane-studio/amberlane-backend-go/database"
	"github.com/amberlane-studio/amberlane-backend-go/lifecycle"
	"github.com/amberlane-studio/amberlane-backend-go/logger"
	"github.com/amberlane-studio/amberlane-backend-go/mailer"
	"github.com/amberlane-studio/amberlane-backend-go/metrics"
	"github.com/amberlane-studio/amberlane-backend-go/models"
	"github.com/amberlane-studio/amberlane-backend-go/payments"
	"github.com/amberlane-studio/amberlane-backend-go/pricing"
	"github.com/amberlane-studio/amberlane-backend-go/shipping"
	"github.com/amberlane-studio/amberlane-backend-go/utils"
)

// transitionError writes the right response for a lifecycle or save failure.
func transitionError(c echo.Context, err error) error {
	var conflict *lifecycle.ConflictError
	if errors.As(err, &conflict) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": conflict.Error()})
	}
	if errors.Is(err, ErrVersionConflict) {
		return c.JSON(http.StatusConflict, map[string]string{"error": "Order was modified by another admin; reload and retry"})
	}
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update order"})
}

func ListOrders(c echo.Context) error {
	filter := bson.M{}
	if status := c.QueryParam("status"); status != "" {
		filter["status"] = status
	}

	ctx, cancel := dbCtx()
	defer cancel()

	cursor, err := database.DB.Collection("orders").Find(ctx, filter,
		options.Find().SetSort(bson.M{"createdAt": -1}))
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

func AcceptOrder(c echo.Context) error {
	ctx, cancel := dbCtx()
	defer cancel()

	order := orderByParam(c, ctx)
	if order == nil {
		return nil
	}

	if err := lifecycle.Apply(order, lifecycle.ActionAccept, actor(c), ""); err != nil {
		return transitionError(c, err)
	}
	order.AdminApproval = &models.AdminApproval{ActedBy: actor(c), ActedAt: time.Now()}
	order.LogEmail(mailer.TemplateOrderAccepted, order.CustomerEmail, "Your Amberlane order was accepted")

	if err := saveOrder(ctx, order); err != nil {
		return transitionError(c, err)
	}
	metrics.OrderTransitions.WithLabelValues(string(lifecycle.ActionAccept)).Inc()

	mailer.Dispatch(mailer.TemplateOrderAccepted, order.CustomerEmail,
		"Your Amberlane order was accepted", map[string]interface{}{
			"Name":        order.CustomerName,
			"OrderNumber": order.OrderNumber,
		})

	return c.JSON(http.StatusOK, order)
}

func RejectOrder(c echo.Context) error {
	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}

	ctx, cancel := dbCtx()
	defer cancel()

	order := orderByParam(c, ctx)
	if order == nil {
		return nil
	}

	if err := lifecycle.Apply(order, lifecycle.ActionReject, actor(c), req.Reason); err != nil {
		return transitionError(c, err)
	}
	order.AdminApproval = &models.AdminApproval{ActedBy: actor(c), ActedAt: time.Now(), Reason: req.Reason}
	lifecycle.InvalidateToken(order)
	order.LogEmail(mailer.TemplateOrderRejected, order.CustomerEmail, "About your Amberlane order")

	if err := payments.Default.CancelIfCancelable(order.PaymentIntentID); err != nil {
		metrics.UpstreamErrors.WithLabelValues("stripe").Inc()
		logger.Log.Warn("intent cancel on reject failed",
			zap.String("orderNumber", order.OrderNumber), zap.Error(err))
		order.AdminApproval.Notes = append(order.AdminApproval.Notes,
			"payment intent cancellation failed: "+err.Error())
	}

	if err := saveOrder(ctx, order); err != nil {
		return transitionError(c, err)
	}
	metrics.OrderTransitions.WithLabelValues(string(lifecycle.ActionReject)).Inc()

	mailer.Dispatch(mailer.TemplateOrderRejected, order.CustomerEmail,
		"About your Amberlane order", map[string]interface{}{
			"Name":        order.CustomerName,
			"OrderNumber": order.OrderNumber,
			"Reason":      req.Reason,
		})

	return c.JSON(http.StatusOK, order)
}

// ApproveOrder is the legacy one-shot path: capture the authorized payment,
// decrement stock, and purchase a label if a rate was already chosen. Capture
// failure aborts and moves the order to a failed state; stock and label are
// best-effort with failures recorded in the approval notes so the admin can
// finish manually.
func ApproveOrder(c echo.Context) error {
	ctx, cancel := dbCtx()
	defer cancel()

	order := orderByParam(c, ctx)
	if order == nil {
		return nil
	}

	if err := lifecycle.Apply(order, lifecycle.ActionApprove, actor(c), ""); err != nil {
		return transitionError(c, err)
	}
	order.AdminApproval = &models.AdminApproval{ActedBy: actor(c), ActedAt: time.Now()}

	if err := payments.Default.Capture(order.PaymentIntentID); err != nil {
		metrics.UpstreamErrors.WithLabelValues("stripe").Inc()
		logger.Log.Error("payment capture failed",
			zap.String("orderNumber", order.OrderNumber), zap.Error(err))

		// Reload so the failed-capture write does not carry the approve
		// mutation, then record the failure state.
		failed := orderByParam(c, ctx)
		if failed != nil {
			_ = lifecycle.Apply(failed, lifecycle.ActionPaymentFailed, actor(c), err.Error())
			if saveErr := saveOrder(ctx, failed); saveErr != nil {
				logger.Log.Error("failed to record capture failure",
					zap.String("orderNumber", order.OrderNumber), zap.Error(saveErr))
			}
			return c.JSON(http.StatusBadGateway, map[string]string{
				"error":   "Payment capture failed",
				"details": err.Error(),
			})
		}
		return nil
	}

	decrementStock(ctx, order)

	if order.ShippoShipment != nil && order.ShippoShipment.RateID != "" && order.ShippoShipment.LabelURL == "" {
		label, err := shipping.Default.PurchaseLabel(ctx, order.ShippoShipment.RateID)
		if err != nil {
			metrics.UpstreamErrors.WithLabelValues("shippo").Inc()
			order.AdminApproval.Notes = append(order.AdminApproval.Notes,
				"label purchase failed: "+err.Error())
		} else {
			order.ShippoShipment.LabelURL = label.LabelURL
			order.ShippoShipment.TrackingNumber = label.TrackingNumber
		}
	}

	if err := saveOrder(ctx, order); err != nil {
		return transitionError(c, err)
	}
	metrics.OrderTransitions.WithLabelValues(string(lifecycle.ActionApprove)).Inc()

	return c.JSON(http.StatusOK, order)
}

// decrementStock is best-effort per line; a conditional $inc refuses to go
// negative and the miss is noted for manual follow-up.
func decrementStock(ctx context.Context, order *models.Order) {
	products := database.DB.Collection("products")
	for _, item := range order.Items {
		if item.IsCustom || item.ProductID.IsZero() {
			continue
		}

		var filter, update bson.M
		if item.UnitID != "" {
			filter = bson.M{
				"_id":   item.ProductID,
				"units": bson.M{"$elemMatch": bson.M{"unitId": item.UnitID, "stock": bson.M{"$gte": item.Quantity}}},
			}
			update = bson.M{"$inc": bson.M{"units.$.stock": -item.Quantity}}
		} else {
			filter = bson.M{"_id": item.ProductID, "stock": bson.M{"$gte": item.Quantity}}
			update = bson.M{"$inc": bson.M{"stock": -item.Quantity}}
		}

		res, err := products.UpdateOne(ctx, filter, update)
		if err != nil || res.ModifiedCount == 0 {
			note := fmt.Sprintf("stock decrement failed for %s x%d", item.Name, item.Quantity)
			if err != nil {
				note += ": " + err.Error()
			}
			order.AdminApproval.Notes = append(order.AdminApproval.Notes, note)
			logger.Log.Warn("stock decrement failed",
				zap.String("orderNumber", order.OrderNumber),
				zap.String("item", item.Name))
		}
	}
}

// GeneratePaymentLink mints the opaque bearer token mailed to the customer
// (24 hour expiry). Re-issuing on an order already pending payment only
// rotates the token. Requires tax to be explicitly set and, when the order
// contains physical items, a purchased label.
func GeneratePaymentLink(c echo.Context) error {
	ctx, cancel := dbCtx()
	defer cancel()

	order := orderByParam(c, ctx)
	if order == nil {
		return nil
	}

	if !order.TaxSet {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Set the tax amount before issuing a payment link"})
	}
	if order.HasPhysicalItems() && (order.ShippoShipment == nil || order.ShippoShipment.LabelURL == "") {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Purchase a shipping label before issuing a payment link"})
	}

	if err := lifecycle.Apply(order, lifecycle.ActionGenerateLink, actor(c), ""); err != nil {
		return transitionError(c, err)
	}

	order.PaymentToken = uuid.NewString()
	order.PaymentTokenExpiry = time.Now().Add(24 * time.Hour)
	order.LogEmail(mailer.TemplatePaymentLink, order.CustomerEmail, "Complete your Amberlane payment")

	if err := saveOrder(ctx, order); err != nil {
		return transitionError(c, err)
	}
	metrics.PaymentLinksIssued.Inc()

	paymentURL := fmt.Sprintf("%s/payment/%s?token=%s",
		config.GetEnv("BASE_URL", "http://localhost:3000"), order.ID.Hex(), order.PaymentToken)

	mailer.Dispatch(mailer.TemplatePaymentLink, order.CustomerEmail,
		"Complete your Amberlane payment", map[string]interface{}{
			"Name":        order.CustomerName,
			"OrderNumber": order.OrderNumber,
			"Total":       order.Total,
			"PaymentURL":  paymentURL,
			"Expiry":      order.PaymentTokenExpiry.Format("Jan 2, 2006 3:04 PM MST"),
		})

	return c.JSON(http.StatusOK, map[string]interface{}{
		"paymentUrl": paymentURL,
		"expiresAt":  order.PaymentTokenExpiry,
	})
}

// CreatePaymentLink is the signed-token variant: a 7-day JWT embedding the
// order total, so any later price adjustment invalidates it on verification.
// It does not change the order status.
func CreatePaymentLink(c echo.Context) error {
	ctx, cancel := dbCtx()
	defer cancel()

	order := orderByParam(c, ctx)
	if order == nil {
		return nil
	}

	switch order.Status {
	case models.OrderStatusApproved, models.OrderStatusPendingAdjustment, models.OrderStatusShippingCalculated:
	default:
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": fmt.Sprintf("Order is not ready for a payment link. Current status: %s", order.Status),
		})
	}

	token, err := utils.GeneratePaymentLinkToken(order.ID.Hex(), payments.AmountCents(order.Total))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to generate payment link"})
	}
	metrics.PaymentLinksIssued.Inc()

	return c.JSON(http.StatusOK, map[string]string{
		"paymentUrl": fmt.Sprintf("%s/payment/%s?token=%s",
			config.GetEnv("BASE_URL", "http://localhost:3000"), order.ID.Hex(), token),
	})
}

// applyMoneyChange recomputes totals after a mutation and, when the total
// moved by more than a cent, flags the adjustment, invalidates the
// outstanding token, and cancels a still-cancelable payment intent.
func applyMoneyChange(c echo.Context, order *models.Order, note string) error {
	if err := lifecycle.ApplyPriceAdjustment(order, actor(c), note); err != nil {
		return err
	}

	if pricing.Recalculate(order) {
		order.IsPriceAdjusted = true
		lifecycle.InvalidateToken(order)
		if err := payments.Default.CancelIfCancelable(order.PaymentIntentID); err != nil {
			metrics.UpstreamErrors.WithLabelValues("stripe").Inc()
			logger.Log.Warn("intent cancel on price change failed",
				zap.String("orderNumber", order.OrderNumber), zap.Error(err))
		}
	}
	return nil
}

// EditTax sets the explicit tax amount.
func EditTax(c echo.Context) error {
	var req struct {
		Tax *float64 `json:"tax"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}
	if req.Tax == nil || *req.Tax < 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Tax must be a non-negative number"})
	}

	ctx, cancel := dbCtx()
	defer cancel()

	order := orderByParam(c, ctx)
	if order == nil {
		return nil
	}

	order.Tax = *req.Tax
	order.TaxSet = true
	if err := applyMoneyChange(c, order, fmt.Sprintf("tax set to %.2f", *req.Tax)); err != nil {
		return transitionError(c, err)
	}

	if err := saveOrder(ctx, order); err != nil {
		return transitionError(c, err)
	}
	return c.JSON(http.StatusOK, order)
}

// EditCustomItem reprices a custom line item, typically from the zero quote
// it was submitted with.
func EditCustomItem(c echo.Context) error {
	var req struct {
		ItemIndex *int     `json:"itemIndex"`
		Price     *float64 `json:"price"`
		Details   string   `json:"details"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}
	if req.ItemIndex == nil || req.Price == nil || *req.Price < 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "itemIndex and a non-negative price are required"})
	}

	ctx, cancel := dbCtx()
	defer cancel()

	order := orderByParam(c, ctx)
	if order == nil {
		return nil
	}

	idx := *req.ItemIndex
	if idx < 0 || idx >= len(order.Items) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "No such line item"})
	}
	if !order.Items[idx].IsCustom {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Only custom items can be repriced"})
	}

	order.Items[idx].Price = *req.Price
	if req.Details != "" {
		order.Items[idx].CustomDetails = req.Details
	}

	note := fmt.Sprintf("custom item %q priced at %.2f", order.Items[idx].Name, *req.Price)
	if err := applyMoneyChange(c, order, note); err != nil {
		return transitionError(c, err)
	}

	if err := saveOrder(ctx, order); err != nil {
		return transitionError(c, err)
	}
	return c.JSON(http.StatusOK, order)
}

// UpdateShippingDetails overrides the customer-facing shipping cost and/or
// destination address.
func UpdateShippingDetails(c echo.Context) error {
	var req struct {
		ShippingCost *float64                `json:"shippingCost"`
		AddressTo    *models.ShipmentAddress `json:"addressTo"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}
	if req.ShippingCost != nil && *req.ShippingCost < 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Shipping cost cannot be negative"})
	}

	ctx, cancel := dbCtx()
	defer cancel()

	order := orderByParam(c, ctx)
	if order == nil {
		return nil
	}

	note := "shipping details updated"
	if req.ShippingCost != nil {
		order.ShippingCost = *req.ShippingCost
		note = fmt.Sprintf("shipping cost set to %.2f", *req.ShippingCost)
	}
	if req.AddressTo != nil {
		if order.ShippoShipment == nil {
			order.ShippoShipment = &models.Shipment{}
		}
		order.ShippoShipment.AddressTo = req.AddressTo
	}

	if err := applyMoneyChange(c, order, note); err != nil {
		return transitionError(c, err)
	}

	if err := saveOrder(ctx, order); err != nil {
		return transitionError(c, err)
	}
	return c.JSON(http.StatusOK, order)
}

func MarkShipped(c echo.Context) error {
	ctx, cancel := dbCtx()
	defer cancel()

	order := orderByParam(c, ctx)
	if order == nil {
		return nil
	}

	if err := lifecycle.CanMarkShipped(order); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if err := lifecycle.Apply(order, lifecycle.ActionMarkShipped, actor(c), ""); err != nil {
		return transitionError(c, err)
	}
	order.LogEmail(mailer.TemplateOrderShipped, order.CustomerEmail, "Your Amberlane order has shipped")

	if err := saveOrder(ctx, order); err != nil {
		return transitionError(c, err)
	}
	metrics.OrderTransitions.WithLabelValues(string(lifecycle.ActionMarkShipped)).Inc()

	mailer.Dispatch(mailer.TemplateOrderShipped, order.CustomerEmail,
		"Your Amberlane order has shipped", map[string]interface{}{
			"Name":        order.CustomerName,
			"OrderNumber": order.OrderNumber,
			"Carrier":     order.ShippoShipment.Carrier,
			"Tracking":    order.ShippoShipment.TrackingNumber,
		})

	return c.JSON(http.StatusOK, order)
}

func MarkDelivered(c echo.Context) error {
	ctx, cancel := dbCtx()
	defer cancel()

	order := orderByParam(c, ctx)
	if order == nil {
		return nil
	}

	if err := lifecycle.Apply(order, lifecycle.ActionMarkDelivered, actor(c), ""); err != nil {
		return transitionError(c, err)
	}
	if err := saveOrder(ctx, order); err != nil {
		return transitionError(c, err)
	}
	metrics.OrderTransitions.WithLabelValues(string(lifecycle.ActionMarkDelivered)).Inc()

	return c.JSON(http.StatusOK, order)
}

// RemoveOrder hard-deletes after a typed confirmation. The confirmation must
// be exactly "remove", case included.
func RemoveOrder(c echo.Context) error {
	var req struct {
		Confirmation string `json:"confirmation"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}
	if req.Confirmation != "remove" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": `Type "remove" to confirm deletion`})
	}

	ctx, cancel := dbCtx()
	defer cancel()

	order := orderByParam(c, ctx)
	if order == nil {
		return nil
	}

	if err := payments.Default.CancelIfCancelable(order.PaymentIntentID); err != nil {
		metrics.UpstreamErrors.WithLabelValues("stripe").Inc()
		logger.Log.Warn("intent cancel on remove failed",
			zap.String("orderNumber", order.OrderNumber), zap.Error(err))
	}

	if _, err := database.DB.Collection("orders").DeleteOne(ctx, bson.M{"_id": order.ID}); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to delete order"})
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Order removed"})
}
