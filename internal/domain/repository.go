package domain

import (
	"context"
	"errors"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

// ProductRepository defines the contract for product storage.
// Records keep insertion order; failures are reported with the sentinel errors
// of this package and a zero Product.
type ProductRepository interface {
	Insert(ctx context.Context, in ProductInput) (Product, error)
	List(ctx context.Context) ([]Product, error)
	FindByID(ctx context.Context, id int) (Product, error)
	Update(ctx context.Context, id int, replacement Product) (Product, error)
	Delete(ctx context.Context, id int) (Product, error)
	SearchByCategory(ctx context.Context, category string) ([]Product, error)
}
