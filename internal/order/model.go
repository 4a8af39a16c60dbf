package order

import (
	"time"

	"lunchbox-be/internal/cart"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	StatusPendingPayment OrderStatus = "PENDING_PAYMENT"
	StatusPaid           OrderStatus = "PAID"
	StatusCancelled      OrderStatus = "CANCELLED"
)

type FulfillmentStatus string

const (
	FulfillmentPendingDelivery FulfillmentStatus = "PENDING_DELIVERY"
	FulfillmentDelivered       FulfillmentStatus = "DELIVERED"
)

// Order is a durable, paid-for (or payment-pending) meal order for one child
// on one date. Immutable once created except for the two status fields.
type Order struct {
	ID                  uint
	ExternalID          uuid.UUID
	ParentID            uint
	ChildID             uint
	ChildName           string
	OrderDate           time.Time
	TotalAmount         float64
	Status              OrderStatus
	FulfillmentStatus   FulfillmentStatus
	ProcessorPaymentRef *string
	IntentID            *uuid.UUID
	ProcessorSessionID  *string
	SpecialRequests     *string
	CreatedAt           time.Time

	Lines []OrderLine
}

// OrderLine freezes the price at order-creation time, independent of later
// catalog changes.
type OrderLine struct {
	ID           uint
	OrderID      uint
	MenuItemID   string
	MenuItemName string
	Quantity     int
	Portion      cart.PortionType
	UnitPrice    float64
}

type Filter struct {
	Status   *OrderStatus
	FromDate *time.Time
	ToDate   *time.Time
	Limit    int32
	Offset   int32
}

type CreateOrderItem struct {
	MenuItemID string           `json:"menuItemId"`
	Portion    cart.PortionType `json:"portionType"`
	Quantity   int              `json:"quantity"`
}

type CreateOrderInput struct {
	ChildID          uint              `json:"childId"`
	OrderDate        string            `json:"orderDate"`
	Items            []CreateOrderItem `json:"items"`
	SpecialRequests  *string           `json:"specialRequests"`
	PaymentSessionID *string           `json:"paymentSessionId"`
}

type MissingOrdersResult struct {
	MissingDates     []string `json:"missingDates"`
	OrderedDates     []string `json:"orderedDates"`
	HasMissingOrders bool     `json:"hasMissingOrders"`
}
