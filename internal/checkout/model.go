package checkout

import (
	"time"

	"lunchbox-be/internal/cart"
	"lunchbox-be/internal/pricing"

	"github.com/google/uuid"
)

type IntentStatus string

const (
	IntentOpen     IntentStatus = "OPEN"
	IntentConsumed IntentStatus = "CONSUMED"
	IntentExpired  IntentStatus = "EXPIRED"
)

// OrderDay is one (child, date) entry of a submitted cart. The lines carry
// the prices snapshotted at cart-add time; reconciliation never re-derives
// pricing from the live catalog.
type OrderDay struct {
	ChildID       uint        `json:"childId"`
	Date          string      `json:"date"`
	Lines         []cart.Line `json:"lines"`
	ComputedTotal float64     `json:"computedTotal"`
}

// Intent is the persisted record of what should be charged and which orders
// must result. It is the single source of truth for materialization: created
// before the processor is contacted, mutated only by the reconciler
// (OPEN -> CONSUMED) or the TTL sweeper (OPEN -> EXPIRED), never deleted
// while OPEN.
type Intent struct {
	ID     uuid.UUID
	UserID uint
	Status IntentStatus

	OrdersData []OrderDay

	Subtotal     float64
	SalesTax     float64
	ServiceFee   float64
	ProcessorFee float64
	TotalAmount  float64

	ProcessorSessionID *string

	CreatedAt  time.Time
	ExpiresAt  time.Time
	ConsumedAt *time.Time
}

// CheckoutResult is returned to the client after the hosted session exists.
type CheckoutResult struct {
	IntentID    uuid.UUID         `json:"intentId"`
	SessionID   string            `json:"sessionId"`
	RedirectURL string            `json:"url"`
	Breakdown   pricing.Breakdown `json:"breakdown"`
}

// MaterializeResult tells the webhook consumer how to acknowledge a
// payment-confirmed event.
type MaterializeResult int

const (
	// MaterializeCreated: orders were created and the intent consumed.
	MaterializeCreated MaterializeResult = iota
	// MaterializeAlreadyConsumed: idempotent no-op, a previous delivery won.
	MaterializeAlreadyConsumed
	// MaterializeIntentNotFound: no such intent; acknowledged, logged.
	MaterializeIntentNotFound
	// MaterializeExpiredAnomaly: late payment for an expired intent; needs
	// manual reconciliation, never silently materialized.
	MaterializeExpiredAnomaly
)
