package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rakapradana/storefront/internal/catalog"
	"github.com/rakapradana/storefront/internal/errors"
	"github.com/rakapradana/storefront/internal/log"
	"github.com/rakapradana/storefront/internal/otel"
)

func (g *Client) ListProducts(c context.Context) ([]catalog.Product, error) {
	c, span := otel.Tracer.Start(c, "Client ListProducts")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Client ListProducts").
		Logger()

	products := []catalog.Product{}
	err := g.do(c, http.MethodGet, "/products", "", nil, &products, false)
	if err != nil {
		err = fmt.Errorf("failed listing products with error=%w", err)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Msgf("listed %d products", len(products))

	return products, nil
}

func (g *Client) FindProduct(c context.Context, productID uuid.UUID) (catalog.Product, error) {
	c, span := otel.Tracer.Start(c, "Client FindProduct")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Client FindProduct").
		Str(log.KeyProductID, productID.String()).
		Logger()

	product := catalog.Product{}
	err := g.do(c, http.MethodGet, "/products/"+productID.String(), "", nil, &product, false)
	if err != nil {
		err = fmt.Errorf("failed finding productId=%s with error=%w", productID, err)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return catalog.Product{}, err
	}
	logger.Info().Msg("found product")

	return product, nil
}

func (g *Client) CreateProduct(
	c context.Context,
	product catalog.Product,
	authToken string,
) (catalog.Product, error) {
	c, span := otel.Tracer.Start(c, "Client CreateProduct")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Client CreateProduct").
		Logger()

	created := catalog.Product{}
	err := g.do(c, http.MethodPost, "/products", authToken, product, &created, false)
	if err != nil {
		err = fmt.Errorf("failed creating product with error=%w", err)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return catalog.Product{}, err
	}
	logger.Info().Str(log.KeyProductID, created.ID.String()).Msg("created product")

	return created, nil
}

func (g *Client) UpdateProduct(
	c context.Context,
	product catalog.Product,
	authToken string,
) (catalog.Product, error) {
	c, span := otel.Tracer.Start(c, "Client UpdateProduct")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Client UpdateProduct").
		Str(log.KeyProductID, product.ID.String()).
		Logger()

	updated := catalog.Product{}
	err := g.do(c, http.MethodPut, "/products/"+product.ID.String(), authToken, product, &updated, false)
	if err != nil {
		err = fmt.Errorf("failed updating productId=%s with error=%w", product.ID, err)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return catalog.Product{}, err
	}
	logger.Info().Msg("updated product")

	return updated, nil
}

func (g *Client) DeleteProduct(c context.Context, productID uuid.UUID, authToken string) error {
	c, span := otel.Tracer.Start(c, "Client DeleteProduct")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Client DeleteProduct").
		Str(log.KeyProductID, productID.String()).
		Logger()

	err := g.do(c, http.MethodDelete, "/products/"+productID.String(), authToken, nil, nil, false)
	if err != nil {
		err = fmt.Errorf("failed deleting productId=%s with error=%w", productID, err)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("deleted product")

	return nil
}
