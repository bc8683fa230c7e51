package controller

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/rakapradana/storefront/internal/errors"
	inHttp "github.com/rakapradana/storefront/internal/http"
	"github.com/rakapradana/storefront/internal/log"
	"github.com/rakapradana/storefront/internal/otel"
	"github.com/rakapradana/storefront/internal/payment"
)

type PaymentController struct {
	broker *payment.Broker
}

// AttachPaymentController exposes the widget's single-shot callbacks. Each
// intent resolves at most once; a duplicate callback is acknowledged but
// ignored.
func AttachPaymentController(router *mux.Router, broker *payment.Broker) {
	controller := PaymentController{broker: broker}

	sub := router.PathPrefix("/payments").Subrouter()
	sub.HandleFunc("/{intentId}/success", controller.Success).Methods(http.MethodPost)
	sub.HandleFunc("/{intentId}/dismiss", controller.Dismiss).Methods(http.MethodPost)
}

func (t PaymentController) Success(w http.ResponseWriter, r *http.Request) {
	t.resolve(w, r, "PaymentController Success", payment.OutcomeSucceeded)
}

func (t PaymentController) Dismiss(w http.ResponseWriter, r *http.Request) {
	t.resolve(w, r, "PaymentController Dismiss", payment.OutcomeDismissed)
}

func (t PaymentController) resolve(
	w http.ResponseWriter,
	r *http.Request,
	tag string,
	outcome payment.Outcome,
) {
	c, span := otel.Tracer.Start(r.Context(), tag)
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, tag).
		Logger()

	intentId, err := uuid.Parse(mux.Vars(r)["intentId"])
	if err != nil {
		err = fmt.Errorf("failed parsing intentId with error=%w", err)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}

	logger = logger.With().
		Str(log.KeyProcess, "resolving payment attempt").
		Str(log.KeyPaymentIntentID, intentId.String()).
		Logger()
	logger.Info().Msg("resolving payment attempt")
	c = logger.WithContext(c)
	if err := t.broker.Resolve(c, intentId, outcome); err != nil {
		err = fmt.Errorf("failed resolving payment attempt with error=%w", err)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": statusCodeOf(err),
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("resolved payment attempt")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
	})
}
