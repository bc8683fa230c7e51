package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/rakapradana/storefront/internal/catalog"
	"github.com/rakapradana/storefront/internal/errors"
	inHttp "github.com/rakapradana/storefront/internal/http"
	"github.com/rakapradana/storefront/internal/log"
	"github.com/rakapradana/storefront/internal/otel"
	"github.com/rakapradana/storefront/internal/request"
	"github.com/rakapradana/storefront/internal/session"
)

type CatalogController struct {
	catalog *catalog.Service
}

func AttachCatalogController(router *mux.Router, service *catalog.Service) {
	controller := CatalogController{catalog: service}

	sub := router.PathPrefix("/products").Subrouter()
	sub.HandleFunc("", controller.ListProducts).Methods(http.MethodGet)
	sub.HandleFunc("", controller.CreateProduct).Methods(http.MethodPost)
	sub.HandleFunc("/{productId}", controller.FindProduct).Methods(http.MethodGet)
	sub.HandleFunc("/{productId}", controller.UpdateProduct).Methods(http.MethodPut)
	sub.HandleFunc("/{productId}", controller.DeleteProduct).Methods(http.MethodDelete)
}

func (t CatalogController) ListProducts(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CatalogController ListProducts")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CatalogController ListProducts").
		Str(log.KeyProcess, "listing products").
		Logger()

	logger.Info().Msg("listing products")
	c = logger.WithContext(c)
	products, err := t.catalog.List(c)
	if err != nil {
		err = fmt.Errorf("failed listing products with error=%w", err)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": statusCodeOf(err),
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msgf("listed %d products", len(products))

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"data":       products,
	})
}

func (t CatalogController) FindProduct(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CatalogController FindProduct")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CatalogController FindProduct").
		Logger()

	productId, err := uuid.Parse(mux.Vars(r)["productId"])
	if err != nil {
		err = fmt.Errorf("failed parsing productId with error=%w", err)
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
		Str(log.KeyProcess, "finding product").
		Str(log.KeyProductID, productId.String()).
		Logger()
	logger.Info().Msg("finding product")
	c = logger.WithContext(c)
	product, err := t.catalog.Find(c, productId)
	if err != nil {
		err = fmt.Errorf("failed finding product with error=%w", err)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": statusCodeOf(err),
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("found product")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"data":       product,
	})
}

func (t CatalogController) CreateProduct(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CatalogController CreateProduct")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CatalogController CreateProduct").
		Logger()

	reqBody, ok := t.decodeProduct(c, w, r, &logger)
	if !ok {
		return
	}

	logger = logger.With().Str(log.KeyProcess, "creating product").Logger()
	logger.Info().Msg("creating product")
	c = logger.WithContext(c)
	created, err := t.catalog.Create(c, catalog.Product{
		Name:        reqBody.Name,
		Description: reqBody.Description,
		Price:       reqBody.Price,
		ImageUrl:    reqBody.ImageUrl,
	}, session.FromContext(c))
	if err != nil {
		err = fmt.Errorf("failed creating product with error=%w", err)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": statusCodeOf(err),
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Str(log.KeyProductID, created.ID.String()).Msg("created product")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusCreated,
		"data":       created,
	})
}

func (t CatalogController) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CatalogController UpdateProduct")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CatalogController UpdateProduct").
		Logger()

	productId, err := uuid.Parse(mux.Vars(r)["productId"])
	if err != nil {
		err = fmt.Errorf("failed parsing productId with error=%w", err)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}

	reqBody, ok := t.decodeProduct(c, w, r, &logger)
	if !ok {
		return
	}

	logger = logger.With().
		Str(log.KeyProcess, "updating product").
		Str(log.KeyProductID, productId.String()).
		Logger()
	logger.Info().Msg("updating product")
	c = logger.WithContext(c)
	updated, err := t.catalog.Update(c, catalog.Product{
		ID:          productId,
		Name:        reqBody.Name,
		Description: reqBody.Description,
		Price:       reqBody.Price,
		ImageUrl:    reqBody.ImageUrl,
	}, session.FromContext(c))
	if err != nil {
		err = fmt.Errorf("failed updating product with error=%w", err)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": statusCodeOf(err),
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("updated product")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"data":       updated,
	})
}

func (t CatalogController) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CatalogController DeleteProduct")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CatalogController DeleteProduct").
		Logger()

	productId, err := uuid.Parse(mux.Vars(r)["productId"])
	if err != nil {
		err = fmt.Errorf("failed parsing productId with error=%w", err)
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
		Str(log.KeyProcess, "deleting product").
		Str(log.KeyProductID, productId.String()).
		Logger()
	logger.Info().Msg("deleting product")
	c = logger.WithContext(c)
	if err := t.catalog.Delete(c, productId, session.FromContext(c)); err != nil {
		err = fmt.Errorf("failed deleting product with error=%w", err)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": statusCodeOf(err),
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("deleted product")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
	})
}

func (t CatalogController) decodeProduct(
	c context.Context,
	w http.ResponseWriter,
	r *http.Request,
	logger *zerolog.Logger,
) (request.Product, bool) {
	lg := logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	lg.Info().Msg("decoding request body")
	reqBody := request.Product{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		lg.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return request.Product{}, false
	}
	lg.Info().Msg("decoded request body")

	lg = logger.With().Str(log.KeyProcess, "validating request body").Logger()
	lg.Info().Msg("validating request body")
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.StructCtx(c, reqBody); err != nil {
		err = fmt.Errorf("failed validating request body with error=%w", err)
		lg.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return request.Product{}, false
	}
	lg.Info().Msg("validated request body")

	return reqBody, true
}
