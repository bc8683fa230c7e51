package errors

import (
	"errors"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrEmptyCart            = errors.New("cart is empty")
	ErrNotAuthenticated     = errors.New("not authenticated")
	ErrForbidden            = errors.New("forbidden")
	ErrInvalidTransition    = errors.New("invalid order status transition")
	ErrNotFound             = errors.New("order not found")
	ErrTransitionInProgress = errors.New("order transition already in progress")
	ErrPaymentCanceled      = errors.New("payment canceled")
	ErrValidationFailed     = errors.New("validation failed")
	ErrUnknownOutcome       = errors.New("outcome unknown, re-query order status")

	ErrEmptyAuth    = errors.New("missing authorization")
	ErrTokenInvalid = errors.New("invalid token")
)

func HandleError(err error, span trace.Span) {
	if err == nil {
		return
	}
	span.AddEvent(err.Error())
	span.SetStatus(codes.Error, err.Error())
	span.RecordError(err)
}
