package payment

import (
	"errors"
	"fmt"
)

var ErrInvalidSignature = errors.New("invalid webhook signature")

// RetryableError marks processor communication failures the caller may retry.
// Validation failures from the processor (4xx) are terminal and never wrapped.
type RetryableError struct {
	Err error
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable processor error: %v", e.Err)
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}
