// Package lifecycle is the single authority over order status transitions.
// Handlers never write Status or PaymentStatus directly; they ask Apply to
// move the order, which validates the source status, keeps the payment facet
// in step, and appends the transition trail entry. Illegal transitions come
// back as *ConflictError so the HTTP layer can answer 400 with the current
// status named.
package lifecycle

import (
	"fmt"
	"time"

	"github.com/amberlane-studio/amberlane-backend-go/models"
)

type Action string

const (
	ActionAccept         Action = "accept"
	ActionReject         Action = "reject"
	ActionApprove        Action = "approve"
	ActionGenerateLink   Action = "generate-payment-link"
	ActionSelectRate     Action = "select-shipping-rate"
	ActionPriceAdjust    Action = "price-adjust"
	ActionMarkShipped    Action = "mark-shipped"
	ActionMarkDelivered  Action = "mark-delivered"
	ActionPaymentFailed  Action = "payment-failed"
	ActionPaymentCapture Action = "payment-captured"
)

// ConflictError reports an action attempted from an illegal status.
type ConflictError struct {
	Action  Action
	Current models.OrderStatus
	msg     string
}

func (e *ConflictError) Error() string { return e.msg }

func conflict(a Action, requires string, current models.OrderStatus) *ConflictError {
	return &ConflictError{
		Action:  a,
		Current: current,
		msg:     fmt.Sprintf("Order is not %s. Current status: %s", requires, current),
	}
}

type rule struct {
	// from lists legal source statuses; empty means any non-terminal status.
	from []models.OrderStatus
	// requires names the expected source state in conflict messages.
	requires string
	// to is the destination; empty keeps the current status.
	to models.OrderStatus
	// payment is the facet value the transition implies; empty leaves it.
	payment models.PaymentStatus
}

var rules = map[Action]rule{
	ActionAccept: {
		from:     []models.OrderStatus{models.OrderStatusPendingApproval},
		requires: "pending approval",
		to:       models.OrderStatusAccepted,
		payment:  models.PaymentStatusPendingPayment,
	},
	ActionReject: {
		from:     []models.OrderStatus{models.OrderStatusPendingApproval},
		requires: "pending approval",
		to:       models.OrderStatusRejected,
		payment:  models.PaymentStatusCancelled,
	},
	ActionApprove: {
		from:     []models.OrderStatus{models.OrderStatusPendingApproval},
		requires: "pending approval",
		to:       models.OrderStatusProcessing,
		payment:  models.PaymentStatusCaptured,
	},
	ActionGenerateLink: {
		from: []models.OrderStatus{
			models.OrderStatusAccepted,
			models.OrderStatusShippingCalculated,
			models.OrderStatusPendingPayment,
		},
		requires: "awaiting payment",
		to:       models.OrderStatusPendingPayment,
		payment:  models.PaymentStatusPendingPayment,
	},
	ActionSelectRate: {
		from: []models.OrderStatus{
			models.OrderStatusAccepted,
			models.OrderStatusApproved,
			models.OrderStatusPendingPayment,
			models.OrderStatusPendingAdjustment,
		},
		requires: "awaiting shipping selection",
		to:       models.OrderStatusShippingCalculated,
	},
	ActionMarkShipped: {
		from:     []models.OrderStatus{models.OrderStatusProcessing},
		requires: "processing",
		to:       models.OrderStatusShipped,
	},
	ActionMarkDelivered: {
		from:     []models.OrderStatus{models.OrderStatusShipped},
		requires: "shipped",
		to:       models.OrderStatusDelivered,
	},
	ActionPaymentFailed: {
		to:      models.OrderStatusRejected,
		payment: models.PaymentStatusFailed,
	},
	ActionPaymentCapture: {
		payment: models.PaymentStatusCaptured,
	},
}

// Apply validates and performs a transition, recording the trail entry.
func Apply(o *models.Order, a Action, actor, note string) error {
	r, ok := rules[a]
	if !ok {
		return fmt.Errorf("unknown lifecycle action %q", a)
	}

	if len(r.from) > 0 {
		legal := false
		for _, s := range r.from {
			if o.Status == s {
				legal = true
				break
			}
		}
		if !legal {
			return conflict(a, r.requires, o.Status)
		}
	} else if o.Status.IsTerminal() && a != ActionPaymentFailed {
		return conflict(a, "active", o.Status)
	}

	from := o.Status
	if r.to != "" {
		o.Status = r.to
	}
	if r.payment != "" {
		o.PaymentStatus = r.payment
	}
	o.Events = append(o.Events, models.OrderEvent{
		Action: string(a),
		From:   from,
		To:     o.Status,
		Actor:  actor,
		Note:   note,
		At:     time.Now(),
	})
	o.UpdatedAt = time.Now()
	return nil
}

// ApplyPriceAdjustment handles the edit-custom-item / edit-tax /
// update-shipping-details family. Legal from any non-terminal status. When
// the order is already awaiting payment, it moves to
// pending_payment_adjustment; otherwise the status is left alone. The caller
// recomputes totals and decides token/intent invalidation separately.
func ApplyPriceAdjustment(o *models.Order, actor, note string) error {
	if o.Status.IsTerminal() {
		return conflict(ActionPriceAdjust, "active", o.Status)
	}

	from := o.Status
	awaitingPayment := o.Status == models.OrderStatusPendingPayment ||
		o.Status == models.OrderStatusPendingAdjustment
	if awaitingPayment {
		o.Status = models.OrderStatusPendingAdjustment
		o.PaymentStatus = models.PaymentStatusPendingAdjustment
	}

	o.Events = append(o.Events, models.OrderEvent{
		Action: string(ActionPriceAdjust),
		From:   from,
		To:     o.Status,
		Actor:  actor,
		Note:   note,
		At:     time.Now(),
	})
	o.UpdatedAt = time.Now()
	return nil
}

// CanMarkShipped gates the shipped transition on a captured payment and a
// known tracking number.
func CanMarkShipped(o *models.Order) error {
	if models.NormalizePaymentStatus(o.PaymentStatus) != models.PaymentStatusCaptured {
		return fmt.Errorf("payment has not been captured (payment status: %s)", o.PaymentStatus)
	}
	if o.ShippoShipment == nil || o.ShippoShipment.TrackingNumber == "" {
		return fmt.Errorf("no tracking number on file; purchase a label first")
	}
	return nil
}

// InvalidateToken clears the opaque payment token after a price change so a
// mailed link can no longer complete checkout at the stale total.
func InvalidateToken(o *models.Order) {
	o.PaymentToken = ""
	o.PaymentTokenExpiry = time.Time{}
}
