package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rakapradana/storefront/internal/cart"
	"github.com/rakapradana/storefront/internal/config"
	"github.com/rakapradana/storefront/internal/errors"
	"github.com/rakapradana/storefront/internal/order"
	"github.com/rakapradana/storefront/internal/payment"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := NewClient(config.Backend{BaseUrl: server.URL, TimeoutSeconds: 1})
	return client, server
}

func TestCreateOrder(t *testing.T) {
	t.Run(
		"given accepted order should return created order with payment intent",
		func(t *testing.T) {
			orderId := uuid.New()
			userId := uuid.New()
			intentId := uuid.New()
			items := []cart.LineItem{
				{
					ProductID: uuid.New(),
					Name:      "shirt",
					UnitPrice: decimal.NewFromInt(10),
					Quantity:  2,
				},
			}

			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/orders", r.URL.Path)
				assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))

				req := createOrderRequest{}
				require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
				assert.Len(t, req.Items, 1)
				assert.True(t, req.TotalPrice.Equal(decimal.NewFromInt(20)))

				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(order.CreatedOrder{
					Order: order.Order{
						ID:         orderId,
						UserID:     userId,
						Items:      req.Items,
						TotalPrice: req.TotalPrice,
						Status:     order.StatusPending,
						CreatedAt:  time.Now(),
					},
					Intent: payment.Intent{
						ID:           intentId,
						ClientSecret: "secret",
						Amount:       req.TotalPrice,
						Currency:     "USD",
					},
				})
			})

			created, err := client.CreateOrder(
				context.Background(),
				items,
				decimal.NewFromInt(20),
				"token",
			)

			require.NoError(t, err)
			assert.Equal(t, orderId, created.Order.ID)
			assert.Equal(t, order.StatusPending, created.Order.Status)
			assert.Equal(t, intentId, created.Intent.ID)
			assert.Equal(t, "secret", created.Intent.ClientSecret)
		},
	)

	t.Run("given backend validation rejection should map to validation failed", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"message":"total mismatch"}`, http.StatusUnprocessableEntity)
		})

		_, err := client.CreateOrder(context.Background(), nil, decimal.Zero, "token")

		assert.ErrorIs(t, err, errors.ErrValidationFailed)
	})
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name        string
		statusCode  int
		expectedErr error
	}{
		{"given 401 should map to not authenticated", http.StatusUnauthorized, errors.ErrNotAuthenticated},
		{"given 403 should map to forbidden", http.StatusForbidden, errors.ErrForbidden},
		{"given 404 should map to not found", http.StatusNotFound, errors.ErrNotFound},
		{"given 409 should map to invalid transition", http.StatusConflict, errors.ErrInvalidTransition},
		{"given 400 should map to validation failed", http.StatusBadRequest, errors.ErrValidationFailed},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(test.statusCode)
				json.NewEncoder(w).Encode(map[string]interface{}{
					"status":     "error",
					"statusCode": test.statusCode,
					"message":    "rejected",
				})
			})

			err := client.CancelOrder(context.Background(), uuid.New(), "token")

			assert.ErrorIs(t, err, test.expectedErr)
		})
	}

	t.Run("given unexpected 500 should not map to a taxonomy kind", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		err := client.CancelOrder(context.Background(), uuid.New(), "token")

		require.Error(t, err)
		assert.NotErrorIs(t, err, errors.ErrNotFound)
		assert.NotErrorIs(t, err, errors.ErrValidationFailed)
		assert.NotErrorIs(t, err, errors.ErrUnknownOutcome)
	})
}

func TestUpdateOrderStatus(t *testing.T) {
	t.Run("given accepted update should send status patch", func(t *testing.T) {
		orderId := uuid.New()
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPatch, r.Method)
			assert.Equal(t, "/orders/"+orderId.String()+"/status", r.URL.Path)

			req := updateOrderStatusRequest{}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, order.StatusProcessing, req.Status)

			w.WriteHeader(http.StatusOK)
		})

		err := client.UpdateOrderStatus(
			context.Background(),
			orderId,
			order.StatusProcessing,
			"token",
		)

		assert.NoError(t, err)
	})

	t.Run("given timed out update should surface unknown outcome", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(3 * time.Second):
			}
		})

		err := client.UpdateOrderStatus(
			context.Background(),
			uuid.New(),
			order.StatusProcessing,
			"token",
		)

		assert.ErrorIs(t, err, errors.ErrUnknownOutcome)
	})
}

func TestListOrders(t *testing.T) {
	t.Run("given scope should pass it as query parameter", func(t *testing.T) {
		expected := []order.Order{
			{ID: uuid.New(), UserID: uuid.New(), Status: order.StatusPending},
			{ID: uuid.New(), UserID: uuid.New(), Status: order.StatusDelivered},
		}
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/orders", r.URL.Path)
			assert.Equal(t, string(order.ScopeAll), r.URL.Query().Get("scope"))

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(expected)
		})

		orders, err := client.ListOrders(context.Background(), "token", order.ScopeAll)

		require.NoError(t, err)
		require.Len(t, orders, 2)
		assert.Equal(t, expected[0].ID, orders[0].ID)
		assert.Equal(t, expected[1].Status, orders[1].Status)
	})
}
