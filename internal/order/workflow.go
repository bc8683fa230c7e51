package order

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rakapradana/storefront/internal/cart"
	"github.com/rakapradana/storefront/internal/errors"
	"github.com/rakapradana/storefront/internal/log"
	"github.com/rakapradana/storefront/internal/otel"
	"github.com/rakapradana/storefront/internal/payment"
	"github.com/rakapradana/storefront/internal/role"
	"github.com/rakapradana/storefront/internal/session"
)

// Workflow coordinates cart submission, the payment round trip and role-gated
// status transitions. It keeps a local view of known orders that is only ever
// updated from backend-confirmed results; transition preconditions are checked
// against that view before a single backend request is issued.
type Workflow struct {
	gateway  Gateway
	provider payment.Provider

	mu       sync.Mutex
	orders   map[uuid.UUID]Order
	inflight map[uuid.UUID]struct{}
}

func NewWorkflow(gateway Gateway, provider payment.Provider) *Workflow {
	return &Workflow{
		gateway:  gateway,
		provider: provider,
		orders:   map[uuid.UUID]Order{},
		inflight: map[uuid.UUID]struct{}{},
	}
}

// Checkout is a checkout in flight: the pending order the backend created and
// the attempt awaiting the payment widget's single callback.
type Checkout struct {
	Order  Order
	Intent payment.Intent

	attempt *payment.Attempt
	store   *cart.Store
}

// BeginCheckout validates the session and cart locally, asks the backend to
// create the pending order plus payment intent, and hands the intent to the
// payment provider. The cart is left untouched until the payment succeeds.
func (w *Workflow) BeginCheckout(
	c context.Context,
	store *cart.Store,
	sess session.Session,
) (Checkout, error) {
	c, span := otel.Tracer.Start(c, "Workflow BeginCheckout")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Workflow BeginCheckout").
		Str(log.KeyUserID, sess.UserID.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "validating checkout preconditions").Logger()
	logger.Info().Msg("validating checkout preconditions")
	if !sess.Authenticated() {
		err := fmt.Errorf("failed validating session with error=%w", errors.ErrNotAuthenticated)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Checkout{}, err
	}
	snapshot := store.Snapshot()
	if snapshot.Empty() {
		err := fmt.Errorf("failed validating cart with error=%w", errors.ErrEmptyCart)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Checkout{}, err
	}
	logger = logger.With().
		Int(log.KeyCartItems, len(snapshot.Items)).
		Str(log.KeyCartTotal, snapshot.Total.String()).
		Logger()
	logger.Info().Msg("validated checkout preconditions")

	logger = logger.With().Str(log.KeyProcess, "creating order").Logger()
	logger.Info().Msg("creating order")
	created, err := w.gateway.CreateOrder(c, snapshot.Items, snapshot.Total, sess.Token)
	if err != nil {
		err = fmt.Errorf("failed creating order with error=%w", err)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Checkout{}, err
	}
	logger = logger.With().
		Str(log.KeyOrderID, created.Order.ID.String()).
		Str(log.KeyPaymentIntentID, created.Intent.ID.String()).
		Logger()
	logger.Info().Msg("created order")

	w.mu.Lock()
	w.orders[created.Order.ID] = created.Order
	w.mu.Unlock()

	logger = logger.With().Str(log.KeyProcess, "handing intent to payment provider").Logger()
	logger.Info().Msg("handing intent to payment provider")
	attempt, err := w.provider.Begin(c, created.Intent)
	if err != nil {
		err = fmt.Errorf("failed handing intent to payment provider with error=%w", err)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Checkout{}, err
	}
	logger.Info().Msg("handed intent to payment provider")

	return Checkout{
		Order:   created.Order,
		Intent:  created.Intent,
		attempt: attempt,
		store:   store,
	}, nil
}

// AwaitPayment blocks until the provider delivers its single outcome. Success
// clears the cart and reports the order; dismissal leaves the cart untouched
// and reports PaymentCanceled. The order stays pending on the backend either
// way; reconciliation of abandoned orders is the backend's concern.
func (w *Workflow) AwaitPayment(c context.Context, checkout Checkout) (Order, error) {
	c, span := otel.Tracer.Start(c, "Workflow AwaitPayment")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Workflow AwaitPayment").
		Str(log.KeyOrderID, checkout.Order.ID.String()).
		Str(log.KeyPaymentIntentID, checkout.Intent.ID.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "awaiting payment outcome").Logger()
	logger.Info().Msg("awaiting payment outcome")
	outcome, err := checkout.attempt.Wait(c)
	if err != nil {
		err = fmt.Errorf("failed awaiting payment outcome with error=%w", err)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Order{}, err
	}

	switch outcome {
	case payment.OutcomeSucceeded:
		checkout.store.Clear()
		logger.Info().Msg("payment succeeded, cleared cart")
		return checkout.Order, nil
	case payment.OutcomeDismissed:
		err = fmt.Errorf(
			"payment dismissed for orderId=%s with error=%w",
			checkout.Order.ID,
			errors.ErrPaymentCanceled,
		)
		errors.HandleError(err, span)
		logger.Info().Err(err).Msg(err.Error())
		return Order{}, err
	default:
		err = fmt.Errorf("unexpected payment outcome=%s", outcome)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Order{}, err
	}
}

// Checkout runs the full checkout protocol: precondition checks, order
// creation, payment handoff and outcome handling.
func (w *Workflow) Checkout(
	c context.Context,
	store *cart.Store,
	sess session.Session,
) (Order, error) {
	checkout, err := w.BeginCheckout(c, store, sess)
	if err != nil {
		return Order{}, err
	}
	return w.AwaitPayment(c, checkout)
}

// Cancel moves a pending or processing order to Canceled. Only the submitting
// customer may cancel, and only before the order reaches a terminal status.
func (w *Workflow) Cancel(c context.Context, orderID uuid.UUID, sess session.Session) (Order, error) {
	c, span := otel.Tracer.Start(c, "Workflow Cancel")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Workflow Cancel").
		Str(log.KeyOrderID, orderID.String()).
		Str(log.KeyUserID, sess.UserID.String()).
		Logger()
	c = logger.WithContext(c)

	return w.transition(c, orderID, sess, StatusCanceled, role.ActionCancel)
}

// Progress moves a pending order to Processing; delivery-admin only.
func (w *Workflow) Progress(c context.Context, orderID uuid.UUID, sess session.Session) (Order, error) {
	c, span := otel.Tracer.Start(c, "Workflow Progress")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Workflow Progress").
		Str(log.KeyOrderID, orderID.String()).
		Logger()
	c = logger.WithContext(c)

	return w.transition(c, orderID, sess, StatusProcessing, role.ActionProgress)
}

// MarkDelivered moves a processing order to Delivered; delivery-admin only.
func (w *Workflow) MarkDelivered(c context.Context, orderID uuid.UUID, sess session.Session) (Order, error) {
	c, span := otel.Tracer.Start(c, "Workflow MarkDelivered")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Workflow MarkDelivered").
		Str(log.KeyOrderID, orderID.String()).
		Logger()
	c = logger.WithContext(c)

	return w.transition(c, orderID, sess, StatusDelivered, role.ActionMarkDelivered)
}

// MarkReturned moves a processing order to Returned; delivery-admin only.
func (w *Workflow) MarkReturned(c context.Context, orderID uuid.UUID, sess session.Session) (Order, error) {
	c, span := otel.Tracer.Start(c, "Workflow MarkReturned")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Workflow MarkReturned").
		Str(log.KeyOrderID, orderID.String()).
		Logger()
	c = logger.WithContext(c)

	return w.transition(c, orderID, sess, StatusReturned, role.ActionMarkReturned)
}

// transition validates ownership, role and the status table against the local
// backend-confirmed view, then issues exactly one backend request. The view is
// only updated once the backend confirms; a timed-out request surfaces as
// Unknown and the caller must re-query instead of retrying.
func (w *Workflow) transition(
	c context.Context,
	orderID uuid.UUID,
	sess session.Session,
	to Status,
	action role.Action,
) (Order, error) {
	c, span := otel.Tracer.Start(c, "Workflow transition")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Workflow transition").
		Str(log.KeyOrderStatus, string(to)).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "validating transition").Logger()
	logger.Info().Msg("validating transition")
	w.mu.Lock()
	ord, ok := w.orders[orderID]
	if !ok {
		w.mu.Unlock()
		err := fmt.Errorf("failed finding orderId=%s with error=%w", orderID, errors.ErrNotFound)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Order{}, err
	}
	if !role.Permitted(sess, ord.UserID).Has(action) {
		w.mu.Unlock()
		err := fmt.Errorf(
			"failed validating action=%s for orderId=%s with error=%w",
			action,
			orderID,
			errors.ErrForbidden,
		)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Order{}, err
	}
	if !CanTransition(ord.Status, to) {
		w.mu.Unlock()
		err := fmt.Errorf(
			"failed validating transition from=%s to=%s with error=%w",
			ord.Status,
			to,
			errors.ErrInvalidTransition,
		)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Order{}, err
	}
	if _, busy := w.inflight[orderID]; busy {
		w.mu.Unlock()
		err := fmt.Errorf(
			"failed starting transition for orderId=%s with error=%w",
			orderID,
			errors.ErrTransitionInProgress,
		)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Order{}, err
	}
	w.inflight[orderID] = struct{}{}
	w.mu.Unlock()
	defer func() {
		w.mu.Lock()
		delete(w.inflight, orderID)
		w.mu.Unlock()
	}()
	logger.Info().Msg("validated transition")

	logger = logger.With().Str(log.KeyProcess, "requesting transition").Logger()
	logger.Info().Msg("requesting transition")
	var err error
	if to == StatusCanceled {
		err = w.gateway.CancelOrder(c, orderID, sess.Token)
	} else {
		err = w.gateway.UpdateOrderStatus(c, orderID, to, sess.Token)
	}
	if err != nil {
		err = fmt.Errorf(
			"failed transitioning orderId=%s to=%s with error=%w",
			orderID,
			to,
			err,
		)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Order{}, err
	}
	logger.Info().Msg("requested transition")

	w.mu.Lock()
	ord = w.orders[orderID]
	ord.Status = to
	w.orders[orderID] = ord
	w.mu.Unlock()
	logger.Info().Msgf("transitioned orderId=%s to=%s", orderID, to)

	return ord, nil
}

// Refresh pulls the caller's order list from the backend into the local view.
// Scope all requires the viewAllOrders permission.
func (w *Workflow) Refresh(c context.Context, sess session.Session, scope Scope) ([]Order, error) {
	c, span := otel.Tracer.Start(c, "Workflow Refresh")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Workflow Refresh").
		Str(log.KeyScope, string(scope)).
		Logger()

	if !sess.Authenticated() {
		err := fmt.Errorf("failed validating session with error=%w", errors.ErrNotAuthenticated)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	if scope == ScopeAll && !role.Permitted(sess, uuid.Nil).Has(role.ActionViewAllOrders) {
		err := fmt.Errorf(
			"failed validating scope=%s with error=%w",
			scope,
			errors.ErrForbidden,
		)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}

	logger = logger.With().Str(log.KeyProcess, "listing orders").Logger()
	logger.Info().Msg("listing orders")
	orders, err := w.gateway.ListOrders(c, sess.Token, scope)
	if err != nil {
		err = fmt.Errorf("failed listing orders with error=%w", err)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Msgf("listed %d orders", len(orders))

	w.mu.Lock()
	for _, ord := range orders {
		w.orders[ord.ID] = ord
	}
	w.mu.Unlock()

	return orders, nil
}

// Order returns the backend-confirmed view of a known order.
func (w *Workflow) Order(orderID uuid.UUID) (Order, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	ord, ok := w.orders[orderID]
	return ord, ok
}
