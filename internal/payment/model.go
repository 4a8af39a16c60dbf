package payment

import (
	"encoding/json"
	"time"
)

const ProviderName = "HOSTED"

// Event types delivered on the webhook. Anything else lands in the
// unrecognized branch and is acknowledged without side effects.
const (
	EventCheckoutCompleted = "checkout.completed"
	EventCheckoutExpired   = "checkout.expired"
)

// Envelope is the outer shape every webhook delivery shares; Data stays raw
// until the type is known.
type Envelope struct {
	ID   string          `json:"id"`
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// CheckoutCompletedData is the payload of a checkout.completed event.
type CheckoutCompletedData struct {
	SessionID  string  `json:"session_id"`
	PaymentRef string  `json:"payment_ref"`
	Amount     float64 `json:"amount"`
	Status     string  `json:"status"`
	Metadata   struct {
		IntentID string `json:"intent_id"`
	} `json:"metadata"`
}

// Event is the tagged union over known webhook variants. Exactly one of the
// typed fields is set; unrecognized events keep only the raw payload.
type Event struct {
	ID        string
	Type      string
	Completed *CheckoutCompletedData
	Raw       json.RawMessage
}

// ParseEvent decodes a raw webhook payload into the tagged union. Unknown
// event types are not an error.
func ParseEvent(payload []byte) (*Event, error) {
	var env Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, err
	}

	ev := &Event{ID: env.ID, Type: env.Type, Raw: env.Data}

	if env.Type == EventCheckoutCompleted {
		var data CheckoutCompletedData
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return nil, err
		}
		ev.Completed = &data
	}

	return ev, nil
}

// ---- Gateway DTOs ----

// SummaryLine is one human-readable line on the hosted checkout page. The
// checkout manager sends one per order-day, not per menu item, to bound
// request size.
type SummaryLine struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

type CheckoutParams struct {
	ReferenceID   string
	CustomerEmail string
	Amount        float64
	Currency      string
	Lines         []SummaryLine
	SuccessURL    string
	CancelURL     string
	Metadata      map[string]string
}

// Session is the processor-issued hosted checkout session.
type Session struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type SessionStatus struct {
	Status     string     `json:"status"`
	PaymentRef string     `json:"payment_ref"`
	PaidAt     *time.Time `json:"paid_at"`
}

const SessionStatusPaid = "PAID"
