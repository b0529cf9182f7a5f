package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/amberlane-studio/amberlane-backend-go/config"
	"github.com/amberlane-studio/amberlane-backend-go/lifecycle"
	"github.com/amberlane-studio/amberlane-backend-go/logger"
	"github.com/amberlane-studio/amberlane-backend-go/metrics"
	"github.com/amberlane-studio/amberlane-backend-go/models"
	"github.com/amberlane-studio/amberlane-backend-go/pricing"
	"github.com/amberlane-studio/amberlane-backend-go/shipping"
)

// ShippingRates validates the destination address and shops rates for the
// studio's standard parcel. The corrected address (with residential flag and
// any carrier messages) is written back to the order.
func ShippingRates(c echo.Context) error {
	ctx, cancel := dbCtx()
	defer cancel()

	order := orderByParam(c, ctx)
	if order == nil {
		return nil
	}
	if order.ShippoShipment == nil || order.ShippoShipment.AddressTo == nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Order has no shipping address"})
	}

	to := shipping.FromShipmentAddress(order.ShippoShipment.AddressTo)
	validation, err := shipping.Default.ValidateAddress(ctx, to)
	if err != nil {
		metrics.UpstreamErrors.WithLabelValues("shippo").Inc()
		logger.Log.Warn("address validation failed",
			zap.String("orderNumber", order.OrderNumber), zap.Error(err))
		return c.JSON(http.StatusBadGateway, map[string]string{
			"error":   "Address validation failed",
			"details": err.Error(),
		})
	}

	addr := order.ShippoShipment.AddressTo
	addr.Street1 = validation.Address.Street1
	addr.City = validation.Address.City
	addr.State = validation.Address.State
	addr.Zip = validation.Address.Zip
	addr.Residential = validation.Residential
	addr.Validated = validation.Valid
	addr.Messages = validation.Messages

	from := shipping.FromConfigAddress(config.GetShipFromAddress())
	rates, err := shipping.Default.GetRates(ctx, from, shipping.FromShipmentAddress(addr), shipping.DefaultParcel)
	if err != nil {
		metrics.UpstreamErrors.WithLabelValues("shippo").Inc()
		return c.JSON(http.StatusBadGateway, map[string]string{
			"error":   "Failed to fetch shipping rates",
			"details": err.Error(),
		})
	}

	if err := saveOrder(ctx, order); err != nil {
		return transitionError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"address": addr,
		"rates":   rates,
	})
}

type purchaseLabelRequest struct {
	RateID  string  `json:"rateId"`
	Carrier string  `json:"carrier"`
	Service string  `json:"service"`
	Amount  float64 `json:"amount"`
	Days    int     `json:"estimatedDays"`
}

// PurchaseShippingLabel buys the label for the chosen rate and applies the
// free-shipping rule: the customer-facing shipping cost is zeroed at or above
// the configured subtotal threshold while the real carrier cost stays on the
// shipment record.
func PurchaseShippingLabel(c echo.Context) error {
	var req purchaseLabelRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}
	if req.RateID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "rateId is required"})
	}
	if req.Amount < 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Rate amount cannot be negative"})
	}

	ctx, cancel := dbCtx()
	defer cancel()

	order := orderByParam(c, ctx)
	if order == nil {
		return nil
	}

	label, err := shipping.Default.PurchaseLabel(ctx, req.RateID)
	if err != nil {
		metrics.UpstreamErrors.WithLabelValues("shippo").Inc()
		logger.Log.Warn("label purchase failed",
			zap.String("orderNumber", order.OrderNumber), zap.Error(err))
		return c.JSON(http.StatusBadGateway, map[string]string{
			"error":   "Label purchase failed",
			"details": err.Error(),
		})
	}

	if order.ShippoShipment == nil {
		order.ShippoShipment = &models.Shipment{}
	}
	order.ShippoShipment.RateID = req.RateID
	order.ShippoShipment.Carrier = req.Carrier
	order.ShippoShipment.Service = req.Service
	order.ShippoShipment.CarrierCost = req.Amount
	order.ShippoShipment.EstimatedDays = req.Days
	order.ShippoShipment.LabelURL = label.LabelURL
	order.ShippoShipment.TrackingNumber = label.TrackingNumber

	order.ShippingCost = pricing.CustomerShippingCost(
		order.Subtotal, req.Amount, config.FreeShippingThreshold())

	if err := applyMoneyChange(c, order, "shipping rate selected: "+req.Carrier+" "+req.Service); err != nil {
		return transitionError(c, err)
	}
	if err := lifecycle.Apply(order, lifecycle.ActionSelectRate, actor(c), ""); err != nil {
		// Rate selection from an unexpected status is not fatal once the
		// label exists; the money change above already recorded the trail.
		logger.Log.Debug("rate-selection transition skipped",
			zap.String("orderNumber", order.OrderNumber), zap.Error(err))
	}

	if err := saveOrder(ctx, order); err != nil {
		return transitionError(c, err)
	}

	return c.JSON(http.StatusOK, order)
}
