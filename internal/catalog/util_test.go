package catalog

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	testRedis "github.com/testcontainers/testcontainers-go/modules/redis"
)

type fakeBackend struct {
	listProductsFunc func(c context.Context) ([]Product, error)
	findProductFunc  func(c context.Context, productID uuid.UUID) (Product, error)

	listProductsCalls  atomic.Int32
	createProductCalls atomic.Int32
	updateProductCalls atomic.Int32
	deleteProductCalls atomic.Int32
}

func (b *fakeBackend) ListProducts(c context.Context) ([]Product, error) {
	b.listProductsCalls.Add(1)
	if b.listProductsFunc == nil {
		return nil, nil
	}
	return b.listProductsFunc(c)
}

func (b *fakeBackend) FindProduct(c context.Context, productID uuid.UUID) (Product, error) {
	if b.findProductFunc == nil {
		return Product{}, nil
	}
	return b.findProductFunc(c, productID)
}

func (b *fakeBackend) CreateProduct(
	c context.Context,
	product Product,
	authToken string,
) (Product, error) {
	b.createProductCalls.Add(1)
	return product, nil
}

func (b *fakeBackend) UpdateProduct(
	c context.Context,
	product Product,
	authToken string,
) (Product, error) {
	b.updateProductCalls.Add(1)
	return product, nil
}

func (b *fakeBackend) DeleteProduct(c context.Context, productID uuid.UUID, authToken string) error {
	b.deleteProductCalls.Add(1)
	return nil
}

type (
	setupFunc    func(c context.Context, backend Backend, ttl time.Duration) (*redis.Client, *testRedis.RedisContainer, *Service)
	teardownFunc func(redisClient *redis.Client, redisContainer *testRedis.RedisContainer)
)

func setup(t *testing.T) setupFunc {
	return func(c context.Context, backend Backend, ttl time.Duration) (*redis.Client, *testRedis.RedisContainer, *Service) {
		redisContainer, err := testRedis.Run(c, "redis:7.4.2-alpine3.21")
		if err != nil {
			t.Fatalf("failed running redis container with error: %s", err)
		}

		redisConnStr, err := redisContainer.ConnectionString(c)
		if err != nil {
			t.Fatalf("failed getting redis connection string with error: %s", err)
		}

		redisOpt, err := redis.ParseURL(redisConnStr)
		if err != nil {
			t.Fatalf("failed parsing redis connection string with error: %s", err)
		}

		redisClient := redis.NewClient(redisOpt)
		if err = redisClient.Ping(c).Err(); err != nil {
			t.Fatalf("failed ping redis client with error: %s", err)
		}

		return redisClient, redisContainer, NewService(backend, redisClient, ttl)
	}
}

func teardown(t *testing.T) teardownFunc {
	return func(redisClient *redis.Client, redisContainer *testRedis.RedisContainer) {
		redisClient.Close()
		if err := testcontainers.TerminateContainer(redisContainer); err != nil {
			t.Fatalf("failed to terminate container: %s", err)
		}
	}
}
