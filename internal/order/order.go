package order

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rakapradana/storefront/internal/cart"
	"github.com/rakapradana/storefront/internal/payment"
)

// Order is the storefront's view of a submitted order. Items are a frozen
// copy of the cart taken at submission time; later cart mutations never show
// through. UserID is a lookup key for the submitting account, nothing more.
type Order struct {
	ID         uuid.UUID       `json:"id"`
	UserID     uuid.UUID       `json:"user_id"`
	Items      []cart.LineItem `json:"items"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Status     Status          `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
}

// CreatedOrder is what the backend returns on submission: the pending order it
// created plus the payment intent to hand to the widget. The backend is the
// source of truth for the id and the initial status.
type CreatedOrder struct {
	Order  Order          `json:"order"`
	Intent payment.Intent `json:"payment_intent"`
}

type Scope string

const (
	ScopeAll  Scope = "all"
	ScopeMine Scope = "mine"
)

// Gateway is the remote order service the workflow submits to. Implementations
// map their transport failures onto the error taxonomy in internal/errors and
// never reinterpret one backend error kind as another.
type Gateway interface {
	CreateOrder(
		c context.Context,
		items []cart.LineItem,
		totalPrice decimal.Decimal,
		authToken string,
	) (CreatedOrder, error)
	UpdateOrderStatus(c context.Context, orderID uuid.UUID, newStatus Status, authToken string) error
	CancelOrder(c context.Context, orderID uuid.UUID, authToken string) error
	ListOrders(c context.Context, authToken string, scope Scope) ([]Order, error)
}
