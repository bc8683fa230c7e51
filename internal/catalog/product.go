package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Product struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageUrl    string          `json:"image_url"`
}

// Backend is the remote product catalog behind the storefront.
type Backend interface {
	ListProducts(c context.Context) ([]Product, error)
	FindProduct(c context.Context, productID uuid.UUID) (Product, error)
	CreateProduct(c context.Context, product Product, authToken string) (Product, error)
	UpdateProduct(c context.Context, product Product, authToken string) (Product, error)
	DeleteProduct(c context.Context, productID uuid.UUID, authToken string) error
}
