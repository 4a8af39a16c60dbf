package order

import "errors"

var (
	// -- Authentication/Authorization --
	ErrUnauthorized = errors.New("cannot access another parent's order")

	// -- Validation & Input --
	ErrEmptyOrder     = errors.New("order has no items")
	ErrInvalidDate    = errors.New("invalid order date")
	ErrInvalidStatus  = errors.New("invalid status transition")
	ErrInvalidPortion = errors.New("invalid portion type")

	// -- Resource State --
	ErrOrderNotFound         = errors.New("order not found")
	ErrPaymentNotCompleted   = errors.New("payment not completed")
	ErrPaidWithoutPaymentRef = errors.New("cannot mark paid without a payment reference")
)
