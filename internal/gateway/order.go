package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/rakapradana/storefront/internal/cart"
	"github.com/rakapradana/storefront/internal/errors"
	"github.com/rakapradana/storefront/internal/log"
	"github.com/rakapradana/storefront/internal/order"
	"github.com/rakapradana/storefront/internal/otel"
)

type createOrderRequest struct {
	Items      []cart.LineItem `json:"items"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

type updateOrderStatusRequest struct {
	Status order.Status `json:"status"`
}

func (g *Client) CreateOrder(
	c context.Context,
	items []cart.LineItem,
	totalPrice decimal.Decimal,
	authToken string,
) (order.CreatedOrder, error) {
	c, span := otel.Tracer.Start(c, "Client CreateOrder")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Client CreateOrder").
		Int(log.KeyCartItems, len(items)).
		Str(log.KeyCartTotal, totalPrice.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "creating order on backend").Logger()
	logger.Info().Msg("creating order on backend")
	created := order.CreatedOrder{}
	err := g.do(
		c,
		http.MethodPost,
		"/orders",
		authToken,
		createOrderRequest{Items: items, TotalPrice: totalPrice},
		&created,
		false,
	)
	if err != nil {
		err = fmt.Errorf("failed creating order on backend with error=%w", err)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return order.CreatedOrder{}, err
	}
	logger.Info().
		Str(log.KeyOrderID, created.Order.ID.String()).
		Msg("created order on backend")

	return created, nil
}

func (g *Client) UpdateOrderStatus(
	c context.Context,
	orderID uuid.UUID,
	newStatus order.Status,
	authToken string,
) error {
	c, span := otel.Tracer.Start(c, "Client UpdateOrderStatus")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Client UpdateOrderStatus").
		Str(log.KeyOrderID, orderID.String()).
		Str(log.KeyOrderStatus, string(newStatus)).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "updating order status").Logger()
	logger.Info().Msg("updating order status")
	err := g.do(
		c,
		http.MethodPatch,
		"/orders/"+orderID.String()+"/status",
		authToken,
		updateOrderStatusRequest{Status: newStatus},
		nil,
		true,
	)
	if err != nil {
		err = fmt.Errorf("failed updating order status with error=%w", err)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("updated order status")

	return nil
}

func (g *Client) CancelOrder(c context.Context, orderID uuid.UUID, authToken string) error {
	c, span := otel.Tracer.Start(c, "Client CancelOrder")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Client CancelOrder").
		Str(log.KeyOrderID, orderID.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "canceling order").Logger()
	logger.Info().Msg("canceling order")
	err := g.do(c, http.MethodPost, "/orders/"+orderID.String()+"/cancel", authToken, nil, nil, true)
	if err != nil {
		err = fmt.Errorf("failed canceling order with error=%w", err)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("canceled order")

	return nil
}

func (g *Client) ListOrders(
	c context.Context,
	authToken string,
	scope order.Scope,
) ([]order.Order, error) {
	c, span := otel.Tracer.Start(c, "Client ListOrders")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Client ListOrders").
		Str(log.KeyScope, string(scope)).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "listing orders").Logger()
	logger.Info().Msg("listing orders")
	orders := []order.Order{}
	err := g.do(c, http.MethodGet, "/orders?scope="+string(scope), authToken, nil, &orders, false)
	if err != nil {
		err = fmt.Errorf("failed listing orders with error=%w", err)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Msgf("listed %d orders", len(orders))

	return orders, nil
}
