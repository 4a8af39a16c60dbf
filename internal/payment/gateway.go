package payment

import "context"

// Gateway is the outbound edge to the hosted payment processor. Only its
// session-creation API and webhook contract are in scope; the hosted checkout
// UI, card handling and fraud checks live on the processor's side.
type Gateway interface {
	CreateCustomer(ctx context.Context, email, name string) (string, error)
	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*Session, error)
	GetSessionStatus(ctx context.Context, sessionID string) (*SessionStatus, error)
	VerifySignature(payload []byte, signature string) error
}
