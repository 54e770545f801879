package errors

import (
	"fmt"

	"github.com/jafarshop/restaurant/internal/domain"
)

// ErrNotFound is returned when a resource does not exist
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrUnauthorized is returned when credentials are missing or wrong
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	return "unauthorized: " + e.Message
}

// ErrInvalidStateTransition is returned for an order status change that is not allowed
type ErrInvalidStateTransition struct {
	From domain.OrderStatus
	To   domain.OrderStatus
}

func (e *ErrInvalidStateTransition) Error() string {
	return fmt.Sprintf("invalid state transition from %s to %s", e.From, e.To)
}

// ErrValidation is returned when a request is well-formed but not acceptable
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ErrCouponNotFound is returned when a code does not resolve to an active coupon
type ErrCouponNotFound struct {
	Code string
}

func (e *ErrCouponNotFound) Error() string {
	return fmt.Sprintf("coupon %q is not valid", e.Code)
}
