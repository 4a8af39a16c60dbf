package checkout

import "errors"

var (
	// -- Validation & Input --
	ErrEmptyCart     = errors.New("cart is empty")
	ErrTotalMismatch = errors.New("order total does not match line items")
	ErrBelowMinimum  = errors.New("total below minimum chargeable amount")
	ErrInvalidDate   = errors.New("invalid order date")

	// -- Resource State --
	ErrIntentNotFound = errors.New("checkout intent not found")
)
