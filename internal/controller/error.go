package controller

import (
	stderrors "errors"
	"net/http"

	"github.com/rakapradana/storefront/internal/errors"
)

// statusCodeOf maps the storefront error taxonomy onto HTTP statuses for the
// UI. Every kind gets a distinct, non-silent response.
func statusCodeOf(err error) int {
	switch {
	case stderrors.Is(err, errors.ErrNotAuthenticated), stderrors.Is(err, errors.ErrEmptyAuth):
		return http.StatusUnauthorized
	case stderrors.Is(err, errors.ErrForbidden):
		return http.StatusForbidden
	case stderrors.Is(err, errors.ErrNotFound):
		return http.StatusNotFound
	case stderrors.Is(err, errors.ErrInvalidTransition),
		stderrors.Is(err, errors.ErrTransitionInProgress):
		return http.StatusConflict
	case stderrors.Is(err, errors.ErrEmptyCart),
		stderrors.Is(err, errors.ErrValidationFailed):
		return http.StatusBadRequest
	case stderrors.Is(err, errors.ErrPaymentCanceled):
		return http.StatusPaymentRequired
	case stderrors.Is(err, errors.ErrUnknownOutcome):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
