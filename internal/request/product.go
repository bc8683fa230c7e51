package request

import (
	"github.com/shopspring/decimal"
)

type Product struct {
	Name        string          `validate:"required"      json:"name"`
	Description string          `                          json:"description"`
	Price       decimal.Decimal `validate:"required"      json:"price"`
	ImageUrl    string          `validate:"omitempty,url" json:"image_url"`
}
