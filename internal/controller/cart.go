package controller

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/rakapradana/storefront/internal/cart"
	"github.com/rakapradana/storefront/internal/catalog"
	"github.com/rakapradana/storefront/internal/errors"
	inHttp "github.com/rakapradana/storefront/internal/http"
	"github.com/rakapradana/storefront/internal/log"
	"github.com/rakapradana/storefront/internal/otel"
	"github.com/rakapradana/storefront/internal/request"
)

const cartCookie = "cart_id"

type CartController struct {
	carts   *cart.Registry
	catalog *catalog.Service
}

func AttachCartController(router *mux.Router, carts *cart.Registry, catalog *catalog.Service) {
	controller := CartController{carts: carts, catalog: catalog}

	sub := router.PathPrefix("/carts").Subrouter()
	sub.HandleFunc("", controller.GetCart).Methods(http.MethodGet)
	sub.HandleFunc("", controller.ClearCart).Methods(http.MethodDelete)
	sub.HandleFunc("/items", controller.AddItem).Methods(http.MethodPost)
	sub.HandleFunc("/items/{productId}", controller.RemoveItem).Methods(http.MethodDelete)
}

// storeFor resolves the caller's cart, minting a cart cookie on first touch.
func (t CartController) storeFor(w http.ResponseWriter, r *http.Request) *cart.Store {
	cookie, err := r.Cookie(cartCookie)
	if err != nil || cookie.Value == "" {
		cookie = &http.Cookie{
			Name:     cartCookie,
			Value:    uuid.NewString(),
			Path:     "/",
			HttpOnly: true,
		}
		http.SetCookie(w, cookie)
	}
	return t.carts.ForKey(cookie.Value)
}

func (t CartController) AddItem(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController AddItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController AddItem").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	logger.Info().Msg("decoding request body")
	reqBody := request.AddCartItem{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("decoded request body")

	logger = logger.With().Str(log.KeyProcess, "validating request body").Logger()
	logger.Info().Msg("validating request body")
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.StructCtx(c, reqBody); err != nil {
		err = fmt.Errorf("failed validating request body with error=%w", err)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("validated request body")

	logger = logger.With().
		Str(log.KeyProcess, "finding product").
		Str(log.KeyProductID, reqBody.ProductId.String()).
		Logger()
	logger.Info().Msg("finding product")
	c = logger.WithContext(c)
	product, err := t.catalog.Find(c, reqBody.ProductId)
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

	logger = logger.With().Str(log.KeyProcess, "adding product to cart").Logger()
	logger.Info().Msg("adding product to cart")
	store := t.storeFor(w, r)
	store.Add(cart.Product{
		ID:       product.ID,
		Name:     product.Name,
		Price:    product.Price,
		ImageUrl: product.ImageUrl,
	})
	snapshot := store.Snapshot()
	logger.Info().
		Int(log.KeyCartItems, len(snapshot.Items)).
		Str(log.KeyCartTotal, snapshot.Total.String()).
		Msg("added product to cart")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"data":       snapshot,
	})
}

func (t CartController) RemoveItem(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController RemoveItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController RemoveItem").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "parsing productId").Logger()
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
		Str(log.KeyProcess, "removing product from cart").
		Str(log.KeyProductID, productId.String()).
		Logger()
	logger.Info().Msg("removing product from cart")
	store := t.storeFor(w, r)
	store.Remove(cart.Product{ID: productId})
	snapshot := store.Snapshot()
	logger.Info().
		Int(log.KeyCartItems, len(snapshot.Items)).
		Str(log.KeyCartTotal, snapshot.Total.String()).
		Msg("removed product from cart")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"data":       snapshot,
	})
}

func (t CartController) ClearCart(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController ClearCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController ClearCart").
		Str(log.KeyProcess, "clearing cart").
		Logger()

	logger.Info().Msg("clearing cart")
	store := t.storeFor(w, r)
	store.Clear()
	logger.Info().Msg("cleared cart")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"data":       store.Snapshot(),
	})
}

func (t CartController) GetCart(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController GetCart")
	defer span.End()

	store := t.storeFor(w, r)
	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"data":       store.Snapshot(),
	})
}
