package controller

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/rakapradana/storefront/internal/cart"
	"github.com/rakapradana/storefront/internal/errors"
	inHttp "github.com/rakapradana/storefront/internal/http"
	"github.com/rakapradana/storefront/internal/log"
	"github.com/rakapradana/storefront/internal/order"
	"github.com/rakapradana/storefront/internal/otel"
	"github.com/rakapradana/storefront/internal/session"
)

type OrderController struct {
	workflow *order.Workflow
	carts    *cart.Registry
}

func AttachOrderController(router *mux.Router, workflow *order.Workflow, carts *cart.Registry) {
	controller := OrderController{workflow: workflow, carts: carts}

	sub := router.PathPrefix("/orders").Subrouter()
	sub.HandleFunc("", controller.ListOrders).Methods(http.MethodGet)
	sub.HandleFunc("/checkout", controller.Checkout).Methods(http.MethodPost)
	sub.HandleFunc("/{orderId}/cancel", controller.Cancel).Methods(http.MethodPost)
	sub.HandleFunc("/{orderId}/progress", controller.Progress).Methods(http.MethodPost)
	sub.HandleFunc("/{orderId}/delivered", controller.MarkDelivered).Methods(http.MethodPost)
	sub.HandleFunc("/{orderId}/returned", controller.MarkReturned).Methods(http.MethodPost)
}

// Checkout submits the caller's cart and answers with the pending order plus
// the payment intent for the widget. The payment outcome is awaited in the
// background; the cart is cleared only once the success callback lands.
func (t OrderController) Checkout(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "OrderController Checkout")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderController Checkout").
		Logger()

	sess := session.FromContext(c)
	cookie, err := r.Cookie(cartCookie)
	if err != nil || cookie.Value == "" {
		err = fmt.Errorf("failed finding cart with error=%w", errors.ErrEmptyCart)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": statusCodeOf(err),
			"message":    err.Error(),
		})
		return
	}
	store := t.carts.ForKey(cookie.Value)

	logger = logger.With().Str(log.KeyProcess, "beginning checkout").Logger()
	logger.Info().Msg("beginning checkout")
	c = logger.WithContext(c)
	checkout, err := t.workflow.BeginCheckout(c, store, sess)
	if err != nil {
		err = fmt.Errorf("failed beginning checkout with error=%w", err)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": statusCodeOf(err),
			"message":    err.Error(),
		})
		return
	}
	logger = logger.With().
		Str(log.KeyOrderID, checkout.Order.ID.String()).
		Str(log.KeyPaymentIntentID, checkout.Intent.ID.String()).
		Logger()
	logger.Info().Msg("began checkout")

	// The widget's callback outlives this request; a never-arriving callback
	// leaves the order pending on the backend, which is the backend's to
	// reconcile.
	go func() {
		bg := logger.WithContext(context.WithoutCancel(c))
		if _, err := t.workflow.AwaitPayment(bg, checkout); err != nil {
			logger.Error().Err(err).Msg("checkout finished without payment success")
		}
	}()

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusAccepted,
		"data": map[string]interface{}{
			"order":          checkout.Order,
			"payment_intent": checkout.Intent,
		},
	})
}

func (t OrderController) ListOrders(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "OrderController ListOrders")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderController ListOrders").
		Logger()

	scope := order.Scope(r.URL.Query().Get("scope"))
	if scope == "" {
		scope = order.ScopeMine
	}

	logger = logger.With().
		Str(log.KeyProcess, "listing orders").
		Str(log.KeyScope, string(scope)).
		Logger()
	logger.Info().Msg("listing orders")
	c = logger.WithContext(c)
	orders, err := t.workflow.Refresh(c, session.FromContext(c), scope)
	if err != nil {
		err = fmt.Errorf("failed listing orders with error=%w", err)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": statusCodeOf(err),
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msgf("listed %d orders", len(orders))

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"data":       orders,
	})
}

func (t OrderController) Cancel(w http.ResponseWriter, r *http.Request) {
	t.transition(w, r, "OrderController Cancel", t.workflow.Cancel)
}

func (t OrderController) Progress(w http.ResponseWriter, r *http.Request) {
	t.transition(w, r, "OrderController Progress", t.workflow.Progress)
}

func (t OrderController) MarkDelivered(w http.ResponseWriter, r *http.Request) {
	t.transition(w, r, "OrderController MarkDelivered", t.workflow.MarkDelivered)
}

func (t OrderController) MarkReturned(w http.ResponseWriter, r *http.Request) {
	t.transition(w, r, "OrderController MarkReturned", t.workflow.MarkReturned)
}

func (t OrderController) transition(
	w http.ResponseWriter,
	r *http.Request,
	tag string,
	op func(context.Context, uuid.UUID, session.Session) (order.Order, error),
) {
	c, span := otel.Tracer.Start(r.Context(), tag)
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, tag).
		Logger()

	orderId, err := uuid.Parse(mux.Vars(r)["orderId"])
	if err != nil {
		err = fmt.Errorf("failed parsing orderId with error=%w", err)
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
		Str(log.KeyProcess, "transitioning order").
		Str(log.KeyOrderID, orderId.String()).
		Logger()
	logger.Info().Msg("transitioning order")
	c = logger.WithContext(c)
	ord, err := op(c, orderId, session.FromContext(c))
	if err != nil {
		err = fmt.Errorf("failed transitioning order with error=%w", err)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": statusCodeOf(err),
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Str(log.KeyOrderStatus, string(ord.Status)).Msg("transitioned order")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"data":       ord,
	})
}
