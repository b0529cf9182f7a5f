package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStatus string

const (
	OrderStatusPendingApproval    OrderStatus = "pending_approval"
	OrderStatusAccepted           OrderStatus = "accepted"
	OrderStatusApproved           OrderStatus = "approved"
	OrderStatusRejected           OrderStatus = "rejected"
	OrderStatusProcessing         OrderStatus = "processing"
	OrderStatusShipped            OrderStatus = "shipped"
	OrderStatusDelivered          OrderStatus = "delivered"
	OrderStatusCancelled          OrderStatus = "cancelled"
	OrderStatusPendingPayment     OrderStatus = "pending_payment"
	OrderStatusPendingAdjustment  OrderStatus = "pending_payment_adjustment"
	OrderStatusShippingCalculated OrderStatus = "shipping_calculated"
)

type PaymentStatus string

const (
	PaymentStatusPendingApproval   PaymentStatus = "pending_approval"
	PaymentStatusPendingPayment    PaymentStatus = "pending_payment"
	PaymentStatusCaptured          PaymentStatus = "captured"
	PaymentStatusFailed            PaymentStatus = "failed"
	PaymentStatusCancelled         PaymentStatus = "cancelled"
	PaymentStatusPendingAdjustment PaymentStatus = "pending_adjustment"
)

// NormalizePaymentStatus maps the legacy "succeeded" value, still present on
// older documents, onto the canonical "captured".
func NormalizePaymentStatus(s PaymentStatus) PaymentStatus {
	if s == "succeeded" {
		return PaymentStatusCaptured
	}
	return s
}

// IsTerminal reports whether no further lifecycle action may touch the order.
func (s OrderStatus) IsTerminal() bool {
	switch s {
	case OrderStatusDelivered, OrderStatusRejected, OrderStatusCancelled:
		return true
	}
	return false
}

// OrderItem is a snapshot of a purchased line item, intentionally decoupled
// from live product data so historical orders stay immutable when the catalog
// changes.
type OrderItem struct {
	ProductID     primitive.ObjectID `bson:"productId,omitempty" json:"productId,omitempty"`
	UnitID        string             `bson:"unitId,omitempty" json:"unitId,omitempty"`
	Name          string             `bson:"name" json:"name"`
	Size          string             `bson:"size,omitempty" json:"size,omitempty"`
	Color         string             `bson:"color,omitempty" json:"color,omitempty"`
	Quantity      int                `bson:"quantity" json:"quantity"`
	Price         float64            `bson:"price" json:"price"`
	Image         string             `bson:"image,omitempty" json:"image,omitempty"`
	IsCustom      bool               `bson:"isCustom,omitempty" json:"isCustom,omitempty"`
	CustomDetails string             `bson:"customDetails,omitempty" json:"customDetails,omitempty"`
}

// ShipmentAddress is the validated destination address.
type ShipmentAddress struct {
	Name        string   `bson:"name" json:"name"`
	Street1     string   `bson:"street1" json:"street1"`
	Street2     string   `bson:"street2,omitempty" json:"street2,omitempty"`
	City        string   `bson:"city" json:"city"`
	State       string   `bson:"state" json:"state"`
	Zip         string   `bson:"zip" json:"zip"`
	Country     string   `bson:"country" json:"country"`
	Phone       string   `bson:"phone,omitempty" json:"phone,omitempty"`
	Email       string   `bson:"email,omitempty" json:"email,omitempty"`
	Residential bool     `bson:"residential,omitempty" json:"residential,omitempty"`
	Validated   bool     `bson:"validated,omitempty" json:"validated,omitempty"`
	Messages    []string `bson:"messages,omitempty" json:"messages,omitempty"`
}

// Shipment is populated progressively: rate selected, then label purchased,
// then tracking known. CarrierCost keeps the real carrier rate even when the
// customer-facing shipping cost was zeroed by the free-shipping threshold.
type Shipment struct {
	AddressTo      *ShipmentAddress `bson:"addressTo,omitempty" json:"addressTo,omitempty"`
	RateID         string           `bson:"rateId,omitempty" json:"rateId,omitempty"`
	Carrier        string           `bson:"carrier,omitempty" json:"carrier,omitempty"`
	Service        string           `bson:"service,omitempty" json:"service,omitempty"`
	CarrierCost    float64          `bson:"carrierCost,omitempty" json:"carrierCost,omitempty"`
	EstimatedDays  int              `bson:"estimatedDays,omitempty" json:"estimatedDays,omitempty"`
	LabelURL       string           `bson:"labelUrl,omitempty" json:"labelUrl,omitempty"`
	TrackingNumber string           `bson:"trackingNumber,omitempty" json:"trackingNumber,omitempty"`
}

// AdminApproval records who acted on the order and why. Notes accumulate
// best-effort failure details (stock decrement, label purchase) so admins can
// finish fulfillment manually.
type AdminApproval struct {
	ActedBy string    `bson:"actedBy" json:"actedBy"`
	ActedAt time.Time `bson:"actedAt" json:"actedAt"`
	Reason  string    `bson:"reason,omitempty" json:"reason,omitempty"`
	Notes   []string  `bson:"notes,omitempty" json:"notes,omitempty"`
}

// EmailRecord logs that a notification was generated. It is not proof of
// delivery; the relay is fire-and-forget.
type EmailRecord struct {
	Template string    `bson:"template" json:"template"`
	To       string    `bson:"to" json:"to"`
	Subject  string    `bson:"subject" json:"subject"`
	SentAt   time.Time `bson:"sentAt" json:"sentAt"`
}

// OrderEvent is one entry of the append-only transition trail.
type OrderEvent struct {
	Action string      `bson:"action" json:"action"`
	From   OrderStatus `bson:"from" json:"from"`
	To     OrderStatus `bson:"to" json:"to"`
	Actor  string      `bson:"actor,omitempty" json:"actor,omitempty"`
	Note   string      `bson:"note,omitempty" json:"note,omitempty"`
	At     time.Time   `bson:"at" json:"at"`
}

type Order struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderNumber   string             `bson:"orderNumber" json:"orderNumber"`
	UserID        primitive.ObjectID `bson:"userId,omitempty" json:"userId,omitempty"`
	CustomerName  string             `bson:"customerName,omitempty" json:"customerName,omitempty"`
	CustomerEmail string             `bson:"customerEmail" json:"customerEmail"`

	Items []OrderItem `bson:"items" json:"items"`

	Subtotal        float64 `bson:"subtotal" json:"subtotal"`
	ShippingCost    float64 `bson:"shippingCost" json:"shippingCost"`
	Tax             float64 `bson:"tax" json:"tax"`
	TaxSet          bool    `bson:"taxSet" json:"taxSet"`
	Total           float64 `bson:"total" json:"total"`
	IsPriceAdjusted bool    `bson:"isPriceAdjusted,omitempty" json:"isPriceAdjusted,omitempty"`

	Status        OrderStatus   `bson:"status" json:"status"`
	PaymentStatus PaymentStatus `bson:"paymentStatus" json:"paymentStatus"`

	PaymentIntentID    string    `bson:"paymentIntentId,omitempty" json:"-"`
	PaymentToken       string    `bson:"paymentToken,omitempty" json:"-"`
	PaymentTokenExpiry time.Time `bson:"paymentTokenExpiry,omitempty" json:"-"`

	ShippoShipment *Shipment      `bson:"shippoShipment,omitempty" json:"shippoShipment,omitempty"`
	AdminApproval  *AdminApproval `bson:"adminApproval,omitempty" json:"adminApproval,omitempty"`
	EmailHistory   []EmailRecord  `bson:"emailHistory,omitempty" json:"emailHistory,omitempty"`
	Events         []OrderEvent   `bson:"events,omitempty" json:"events,omitempty"`

	// Version backs the compare-and-swap every admin write performs; a stale
	// write loses the race and surfaces as a 409 instead of clobbering.
	Version int64 `bson:"version" json:"version"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// HasPhysicalItems reports whether any line item needs a shipping label
// before a payment link may go out. Custom pieces are quoted and paid before
// they are made, so they don't count.
func (o *Order) HasPhysicalItems() bool {
	for _, it := range o.Items {
		if !it.IsCustom {
			return true
		}
	}
	return false
}

// LogEmail appends a notification record to the order's email history.
func (o *Order) LogEmail(template, to, subject string) {
	o.EmailHistory = append(o.EmailHistory, EmailRecord{
		Template: template,
		To:       to,
		Subject:  subject,
		SentAt:   time.Now(),
	})
}
