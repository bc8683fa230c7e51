package catalog

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/rakapradana/storefront/internal/errors"
	"github.com/rakapradana/storefront/internal/log"
	"github.com/rakapradana/storefront/internal/otel"
	"github.com/rakapradana/storefront/internal/role"
	"github.com/rakapradana/storefront/internal/session"
)

const keyProducts = "storefront:products"

// Service fronts the backend catalog with a read-through redis cache. The
// cache is strictly best effort: a miss or a failed invalidation is logged and
// the backend result still wins.
type Service struct {
	backend Backend
	cache   *redis.Client
	ttl     time.Duration
}

func NewService(backend Backend, cache *redis.Client, ttl time.Duration) *Service {
	return &Service{backend: backend, cache: cache, ttl: ttl}
}

func (s *Service) List(c context.Context) ([]Product, error) {
	c, span := otel.Tracer.Start(c, "CatalogService List")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CatalogService List").
		Str(log.KeyCacheKey, keyProducts).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "reading products from cache").Logger()
	logger.Trace().Msg("reading products from cache")
	cached, err := s.cache.Get(c, keyProducts).Result()
	if err == nil {
		products := []Product{}
		if err := json.Unmarshal([]byte(cached), &products); err == nil {
			logger.Info().Msgf("read %d products from cache", len(products))
			return products, nil
		}
		logger.Error().Err(err).Msg("failed unmarshaling cached products")
	} else if !stderrors.Is(err, redis.Nil) {
		logger.Error().Err(err).Msg("failed reading products from cache")
	}

	logger = logger.With().Str(log.KeyProcess, "listing products from backend").Logger()
	logger.Info().Msg("listing products from backend")
	products, err := s.backend.ListProducts(c)
	if err != nil {
		err = fmt.Errorf("failed listing products with error=%w", err)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Msgf("listed %d products from backend", len(products))

	logger = logger.With().Str(log.KeyProcess, "writing products to cache").Logger()
	raw, err := json.Marshal(products)
	if err == nil {
		err = s.cache.Set(c, keyProducts, raw, s.ttl).Err()
	}
	if err != nil {
		logger.Error().Err(err).Msg("failed writing products to cache")
	} else {
		logger.Trace().Msg("wrote products to cache")
	}

	return products, nil
}

func (s *Service) Find(c context.Context, productID uuid.UUID) (Product, error) {
	c, span := otel.Tracer.Start(c, "CatalogService Find")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CatalogService Find").
		Str(log.KeyProductID, productID.String()).
		Logger()

	product, err := s.backend.FindProduct(c, productID)
	if err != nil {
		err = fmt.Errorf("failed finding productId=%s with error=%w", productID, err)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Product{}, err
	}
	return product, nil
}

func (s *Service) Create(c context.Context, product Product, sess session.Session) (Product, error) {
	c, span := otel.Tracer.Start(c, "CatalogService Create")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CatalogService Create").
		Logger()

	if err := s.gate(sess); err != nil {
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Product{}, err
	}
	created, err := s.backend.CreateProduct(c, product, sess.Token)
	if err != nil {
		err = fmt.Errorf("failed creating product with error=%w", err)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Product{}, err
	}
	s.invalidate(c)
	return created, nil
}

func (s *Service) Update(c context.Context, product Product, sess session.Session) (Product, error) {
	c, span := otel.Tracer.Start(c, "CatalogService Update")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CatalogService Update").
		Str(log.KeyProductID, product.ID.String()).
		Logger()

	if err := s.gate(sess); err != nil {
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Product{}, err
	}
	updated, err := s.backend.UpdateProduct(c, product, sess.Token)
	if err != nil {
		err = fmt.Errorf("failed updating productId=%s with error=%w", product.ID, err)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Product{}, err
	}
	s.invalidate(c)
	return updated, nil
}

func (s *Service) Delete(c context.Context, productID uuid.UUID, sess session.Session) error {
	c, span := otel.Tracer.Start(c, "CatalogService Delete")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CatalogService Delete").
		Str(log.KeyProductID, productID.String()).
		Logger()

	if err := s.gate(sess); err != nil {
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	if err := s.backend.DeleteProduct(c, productID, sess.Token); err != nil {
		err = fmt.Errorf("failed deleting productId=%s with error=%w", productID, err)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	s.invalidate(c)
	return nil
}

func (s *Service) gate(sess session.Session) error {
	if !sess.Authenticated() {
		return fmt.Errorf("failed validating session with error=%w", errors.ErrNotAuthenticated)
	}
	if !role.Permitted(sess, uuid.Nil).Has(role.ActionManageProducts) {
		return fmt.Errorf("failed validating role with error=%w", errors.ErrForbidden)
	}
	return nil
}

func (s *Service) invalidate(c context.Context) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CatalogService invalidate").
		Str(log.KeyCacheKey, keyProducts).
		Logger()
	if err := s.cache.Del(c, keyProducts).Err(); err != nil {
		logger.Error().Err(err).Msg("failed invalidating product cache")
		return
	}
	logger.Trace().Msg("invalidated product cache")
}
