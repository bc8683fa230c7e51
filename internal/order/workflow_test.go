package order

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rakapradana/storefront/internal/cart"
	"github.com/rakapradana/storefront/internal/errors"
	"github.com/rakapradana/storefront/internal/payment"
	"github.com/rakapradana/storefront/internal/session"
)

type fakeGateway struct {
	createOrderFunc  func(c context.Context, items []cart.LineItem, totalPrice decimal.Decimal, authToken string) (CreatedOrder, error)
	updateStatusFunc func(c context.Context, orderID uuid.UUID, newStatus Status, authToken string) error
	cancelOrderFunc  func(c context.Context, orderID uuid.UUID, authToken string) error
	listOrdersFunc   func(c context.Context, authToken string, scope Scope) ([]Order, error)

	createOrderCalls  atomic.Int32
	updateStatusCalls atomic.Int32
	cancelOrderCalls  atomic.Int32
}

func (g *fakeGateway) CreateOrder(
	c context.Context,
	items []cart.LineItem,
	totalPrice decimal.Decimal,
	authToken string,
) (CreatedOrder, error) {
	g.createOrderCalls.Add(1)
	if g.createOrderFunc == nil {
		return CreatedOrder{}, nil
	}
	return g.createOrderFunc(c, items, totalPrice, authToken)
}

func (g *fakeGateway) UpdateOrderStatus(
	c context.Context,
	orderID uuid.UUID,
	newStatus Status,
	authToken string,
) error {
	g.updateStatusCalls.Add(1)
	if g.updateStatusFunc == nil {
		return nil
	}
	return g.updateStatusFunc(c, orderID, newStatus, authToken)
}

func (g *fakeGateway) CancelOrder(c context.Context, orderID uuid.UUID, authToken string) error {
	g.cancelOrderCalls.Add(1)
	if g.cancelOrderFunc == nil {
		return nil
	}
	return g.cancelOrderFunc(c, orderID, authToken)
}

func (g *fakeGateway) ListOrders(c context.Context, authToken string, scope Scope) ([]Order, error) {
	if g.listOrdersFunc == nil {
		return nil, nil
	}
	return g.listOrdersFunc(c, authToken, scope)
}

type fakeProvider struct {
	attempt *payment.Attempt
	err     error
}

func (p *fakeProvider) Begin(c context.Context, intent payment.Intent) (*payment.Attempt, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.attempt, nil
}

func customerSession() session.Session {
	return session.Session{Token: "customer-token", UserID: uuid.New()}
}

func deliveryAdminSession() session.Session {
	return session.Session{Token: "admin-token", UserID: uuid.New(), IsDeliveryAdmin: true}
}

func filledCart(t *testing.T) *cart.Store {
	t.Helper()
	store := cart.NewStore()
	store.Add(cart.Product{ID: uuid.New(), Name: "shirt", Price: decimal.NewFromInt(10)})
	store.Add(cart.Product{ID: uuid.New(), Name: "mug", Price: decimal.NewFromInt(5)})
	return store
}

// createdOrderFor builds the backend response for a checkout by the given
// session, echoing the submitted items and total.
func createdOrderFor(sess session.Session) func(
	c context.Context,
	items []cart.LineItem,
	totalPrice decimal.Decimal,
	authToken string,
) (CreatedOrder, error) {
	return func(
		c context.Context,
		items []cart.LineItem,
		totalPrice decimal.Decimal,
		authToken string,
	) (CreatedOrder, error) {
		return CreatedOrder{
			Order: Order{
				ID:         uuid.New(),
				UserID:     sess.UserID,
				Items:      items,
				TotalPrice: totalPrice,
				Status:     StatusPending,
				CreatedAt:  time.Now(),
			},
			Intent: payment.Intent{
				ID:       uuid.New(),
				Amount:   totalPrice,
				Currency: "USD",
			},
		}, nil
	}
}

// seedOrder installs an order into the workflow's backend-confirmed view
// through Refresh, the same path production code uses.
func seedOrder(t *testing.T, workflow *Workflow, gateway *fakeGateway, ord Order) {
	t.Helper()
	gateway.listOrdersFunc = func(c context.Context, authToken string, scope Scope) ([]Order, error) {
		return []Order{ord}, nil
	}
	_, err := workflow.Refresh(
		context.Background(),
		session.Session{Token: "seed-token", UserID: ord.UserID},
		ScopeMine,
	)
	require.NoError(t, err)
	gateway.listOrdersFunc = nil
}

func TestBeginCheckout(t *testing.T) {
	t.Run("given unauthenticated session should not call backend", func(t *testing.T) {
		gateway := &fakeGateway{}
		workflow := NewWorkflow(gateway, &fakeProvider{attempt: payment.NewAttempt()})

		_, err := workflow.BeginCheckout(context.Background(), filledCart(t), session.Session{})

		assert.ErrorIs(t, err, errors.ErrNotAuthenticated)
		assert.Equal(t, int32(0), gateway.createOrderCalls.Load())
	})

	t.Run("given empty cart should not call backend", func(t *testing.T) {
		gateway := &fakeGateway{}
		workflow := NewWorkflow(gateway, &fakeProvider{attempt: payment.NewAttempt()})

		_, err := workflow.BeginCheckout(context.Background(), cart.NewStore(), customerSession())

		assert.ErrorIs(t, err, errors.ErrEmptyCart)
		assert.Equal(t, int32(0), gateway.createOrderCalls.Load())
	})

	t.Run(
		"given filled cart should create pending order and keep cart intact",
		func(t *testing.T) {
			sess := customerSession()
			gateway := &fakeGateway{createOrderFunc: createdOrderFor(sess)}
			workflow := NewWorkflow(gateway, &fakeProvider{attempt: payment.NewAttempt()})
			store := filledCart(t)

			checkout, err := workflow.BeginCheckout(context.Background(), store, sess)

			require.NoError(t, err)
			assert.Equal(t, StatusPending, checkout.Order.Status)
			assert.Equal(t, sess.UserID, checkout.Order.UserID)
			assert.Len(t, checkout.Order.Items, 2)
			assert.False(t, store.Snapshot().Empty())

			known, ok := workflow.Order(checkout.Order.ID)
			assert.True(t, ok)
			assert.Equal(t, StatusPending, known.Status)
		},
	)
}

func TestAwaitPayment(t *testing.T) {
	t.Run("given payment success should clear cart and return order", func(t *testing.T) {
		sess := customerSession()
		attempt := payment.NewAttempt()
		gateway := &fakeGateway{createOrderFunc: createdOrderFor(sess)}
		workflow := NewWorkflow(gateway, &fakeProvider{attempt: attempt})
		store := filledCart(t)

		checkout, err := workflow.BeginCheckout(context.Background(), store, sess)
		require.NoError(t, err)

		require.True(t, attempt.Succeed())

		ord, err := workflow.AwaitPayment(context.Background(), checkout)
		require.NoError(t, err)
		assert.Equal(t, checkout.Order.ID, ord.ID)
		assert.True(t, store.Snapshot().Empty())
	})

	t.Run("given payment dismissed should keep cart unchanged", func(t *testing.T) {
		sess := customerSession()
		attempt := payment.NewAttempt()
		gateway := &fakeGateway{createOrderFunc: createdOrderFor(sess)}
		workflow := NewWorkflow(gateway, &fakeProvider{attempt: attempt})
		store := filledCart(t)
		before := store.Snapshot()

		checkout, err := workflow.BeginCheckout(context.Background(), store, sess)
		require.NoError(t, err)

		require.True(t, attempt.Dismiss())

		_, err = workflow.AwaitPayment(context.Background(), checkout)
		assert.ErrorIs(t, err, errors.ErrPaymentCanceled)

		after := store.Snapshot()
		assert.Equal(t, len(before.Items), len(after.Items))
		assert.True(t, before.Total.Equal(after.Total))
	})

	t.Run("given duplicate payment callbacks should honor only the first", func(t *testing.T) {
		sess := customerSession()
		attempt := payment.NewAttempt()
		gateway := &fakeGateway{createOrderFunc: createdOrderFor(sess)}
		workflow := NewWorkflow(gateway, &fakeProvider{attempt: attempt})
		store := filledCart(t)

		checkout, err := workflow.BeginCheckout(context.Background(), store, sess)
		require.NoError(t, err)

		assert.True(t, attempt.Succeed())
		assert.False(t, attempt.Dismiss())
		assert.False(t, attempt.Succeed())

		_, err = workflow.AwaitPayment(context.Background(), checkout)
		require.NoError(t, err)
		assert.True(t, store.Snapshot().Empty())
	})
}

func TestTransition(t *testing.T) {
	owner := customerSession()
	admin := deliveryAdminSession()
	stranger := customerSession()

	pendingOrder := func() Order {
		return Order{ID: uuid.New(), UserID: owner.UserID, Status: StatusPending}
	}
	processingOrder := func() Order {
		return Order{ID: uuid.New(), UserID: owner.UserID, Status: StatusProcessing}
	}
	deliveredOrder := func() Order {
		return Order{ID: uuid.New(), UserID: owner.UserID, Status: StatusDelivered}
	}

	tests := []struct {
		name          string
		order         func() Order
		run           func(w *Workflow, orderID uuid.UUID) (Order, error)
		expectedErr   error
		expectedCalls int32
		expected      Status
	}{
		{
			name:  "given owner canceling pending order should move to canceled",
			order: pendingOrder,
			run: func(w *Workflow, orderID uuid.UUID) (Order, error) {
				return w.Cancel(context.Background(), orderID, owner)
			},
			expectedCalls: 1,
			expected:      StatusCanceled,
		},
		{
			name:  "given stranger canceling order should return forbidden",
			order: pendingOrder,
			run: func(w *Workflow, orderID uuid.UUID) (Order, error) {
				return w.Cancel(context.Background(), orderID, stranger)
			},
			expectedErr: errors.ErrForbidden,
		},
		{
			name:  "given owner canceling delivered order should return invalid transition",
			order: deliveredOrder,
			run: func(w *Workflow, orderID uuid.UUID) (Order, error) {
				return w.Cancel(context.Background(), orderID, owner)
			},
			expectedErr: errors.ErrInvalidTransition,
		},
		{
			name:  "given delivery admin progressing pending order should move to processing",
			order: pendingOrder,
			run: func(w *Workflow, orderID uuid.UUID) (Order, error) {
				return w.Progress(context.Background(), orderID, admin)
			},
			expectedCalls: 1,
			expected:      StatusProcessing,
		},
		{
			name:  "given customer progressing own order should return forbidden",
			order: pendingOrder,
			run: func(w *Workflow, orderID uuid.UUID) (Order, error) {
				return w.Progress(context.Background(), orderID, owner)
			},
			expectedErr: errors.ErrForbidden,
		},
		{
			name:  "given delivery admin marking pending order delivered should return invalid transition",
			order: pendingOrder,
			run: func(w *Workflow, orderID uuid.UUID) (Order, error) {
				return w.MarkDelivered(context.Background(), orderID, admin)
			},
			expectedErr: errors.ErrInvalidTransition,
		},
		{
			name:  "given delivery admin marking processing order delivered should move to delivered",
			order: processingOrder,
			run: func(w *Workflow, orderID uuid.UUID) (Order, error) {
				return w.MarkDelivered(context.Background(), orderID, admin)
			},
			expectedCalls: 1,
			expected:      StatusDelivered,
		},
		{
			name:  "given delivery admin marking processing order returned should move to returned",
			order: processingOrder,
			run: func(w *Workflow, orderID uuid.UUID) (Order, error) {
				return w.MarkReturned(context.Background(), orderID, admin)
			},
			expectedCalls: 1,
			expected:      StatusReturned,
		},
		{
			name:  "given unknown order should return not found",
			order: pendingOrder,
			run: func(w *Workflow, orderID uuid.UUID) (Order, error) {
				return w.Cancel(context.Background(), uuid.New(), owner)
			},
			expectedErr: errors.ErrNotFound,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			gateway := &fakeGateway{}
			workflow := NewWorkflow(gateway, &fakeProvider{attempt: payment.NewAttempt()})
			ord := test.order()
			seedOrder(t, workflow, gateway, ord)

			got, err := test.run(workflow, ord.ID)

			backendCalls := gateway.updateStatusCalls.Load() + gateway.cancelOrderCalls.Load()
			if test.expectedErr != nil {
				assert.ErrorIs(t, err, test.expectedErr)
				assert.Equal(t, int32(0), backendCalls)
				known, ok := workflow.Order(ord.ID)
				require.True(t, ok)
				assert.Equal(t, ord.Status, known.Status)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.expected, got.Status)
			assert.Equal(t, test.expectedCalls, backendCalls)
			known, ok := workflow.Order(ord.ID)
			require.True(t, ok)
			assert.Equal(t, test.expected, known.Status)
		})
	}

	t.Run("given terminal order after return should reject cancel", func(t *testing.T) {
		gateway := &fakeGateway{}
		workflow := NewWorkflow(gateway, &fakeProvider{attempt: payment.NewAttempt()})
		ord := pendingOrder()
		seedOrder(t, workflow, gateway, ord)

		_, err := workflow.Progress(context.Background(), ord.ID, admin)
		require.NoError(t, err)
		_, err = workflow.MarkReturned(context.Background(), ord.ID, admin)
		require.NoError(t, err)

		_, err = workflow.Cancel(context.Background(), ord.ID, owner)
		assert.ErrorIs(t, err, errors.ErrInvalidTransition)
	})

	t.Run(
		"given concurrent transition on same order should reject the second",
		func(t *testing.T) {
			gateway := &fakeGateway{}
			entered := make(chan struct{})
			release := make(chan struct{})
			gateway.updateStatusFunc = func(c context.Context, orderID uuid.UUID, newStatus Status, authToken string) error {
				close(entered)
				<-release
				return nil
			}
			workflow := NewWorkflow(gateway, &fakeProvider{attempt: payment.NewAttempt()})
			ord := pendingOrder()
			seedOrder(t, workflow, gateway, ord)

			firstDone := make(chan error, 1)
			go func() {
				_, err := workflow.Progress(context.Background(), ord.ID, admin)
				firstDone <- err
			}()
			<-entered

			_, err := workflow.Progress(context.Background(), ord.ID, admin)
			assert.ErrorIs(t, err, errors.ErrTransitionInProgress)

			close(release)
			require.NoError(t, <-firstDone)

			known, ok := workflow.Order(ord.ID)
			require.True(t, ok)
			assert.Equal(t, StatusProcessing, known.Status)
		},
	)

	t.Run(
		"given backend timeout should surface unknown outcome and keep local view",
		func(t *testing.T) {
			gateway := &fakeGateway{}
			gateway.updateStatusFunc = func(c context.Context, orderID uuid.UUID, newStatus Status, authToken string) error {
				return stderrors.Join(
					fmt.Errorf("context deadline exceeded"),
					errors.ErrUnknownOutcome,
				)
			}
			workflow := NewWorkflow(gateway, &fakeProvider{attempt: payment.NewAttempt()})
			ord := pendingOrder()
			seedOrder(t, workflow, gateway, ord)

			_, err := workflow.Progress(context.Background(), ord.ID, admin)
			assert.ErrorIs(t, err, errors.ErrUnknownOutcome)

			known, ok := workflow.Order(ord.ID)
			require.True(t, ok)
			assert.Equal(t, StatusPending, known.Status)
		},
	)
}

func TestRefresh(t *testing.T) {
	t.Run("given unauthenticated session should return not authenticated", func(t *testing.T) {
		workflow := NewWorkflow(&fakeGateway{}, &fakeProvider{attempt: payment.NewAttempt()})

		_, err := workflow.Refresh(context.Background(), session.Session{}, ScopeMine)

		assert.ErrorIs(t, err, errors.ErrNotAuthenticated)
	})

	t.Run("given customer requesting scope all should return forbidden", func(t *testing.T) {
		workflow := NewWorkflow(&fakeGateway{}, &fakeProvider{attempt: payment.NewAttempt()})

		_, err := workflow.Refresh(context.Background(), customerSession(), ScopeAll)

		assert.ErrorIs(t, err, errors.ErrForbidden)
	})

	t.Run("given delivery admin requesting scope all should list orders", func(t *testing.T) {
		admin := deliveryAdminSession()
		expected := []Order{
			{ID: uuid.New(), UserID: uuid.New(), Status: StatusPending},
			{ID: uuid.New(), UserID: uuid.New(), Status: StatusProcessing},
		}
		gateway := &fakeGateway{
			listOrdersFunc: func(c context.Context, authToken string, scope Scope) ([]Order, error) {
				assert.Equal(t, ScopeAll, scope)
				assert.Equal(t, admin.Token, authToken)
				return expected, nil
			},
		}
		workflow := NewWorkflow(gateway, &fakeProvider{attempt: payment.NewAttempt()})

		orders, err := workflow.Refresh(context.Background(), admin, ScopeAll)

		require.NoError(t, err)
		assert.Len(t, orders, 2)
		for _, ord := range expected {
			known, ok := workflow.Order(ord.ID)
			assert.True(t, ok)
			assert.Equal(t, ord.Status, known.Status)
		}
	})
}
