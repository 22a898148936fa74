package domain

import (
	"errors"
)

var (
	ErrProductNameRequired     = errors.New("product name is required")
	ErrProductCategoryRequired = errors.New("product category is required")
	ErrInvalidProductID        = errors.New("product id must be an integer")
)

// Product represents the product entity
type Product struct {
	ID       int
	Name     string
	Category string
	Price    float64
}

// ProductInput carries the fields of a product that does not have an ID yet
type ProductInput struct {
	Name     string
	Category string
	Price    float64
}

// NewProduct builds a product from input, validating the required fields.
// The ID is left at zero; the repository assigns it.
func NewProduct(in ProductInput) (Product, error) {
	product := Product{
		Name:     in.Name,
		Category: in.Category,
		Price:    in.Price,
	}

	if err := product.Validate(); err != nil {
		return Product{}, err
	}

	return product, nil
}

// Validate performs business validation on a new product.
// Price is deliberately not checked.
func (p Product) Validate() error {
	if p.Name == "" {
		return ErrProductNameRequired
	}
	if p.Category == "" {
		return ErrProductCategoryRequired
	}
	return nil
}

// ValidateReplacement checks a full replacement payload used by an update.
// Only the name is required.
func (p Product) ValidateReplacement() error {
	if p.Name == "" {
		return ErrProductNameRequired
	}
	return nil
}
