package dto

import (
	"github.com/mrops-br/products-repository-api/internal/domain"
)

// CreateProductRequest represents the request to create a product
type CreateProductRequest struct {
	Name     string  `json:"name" validate:"required"`
	Category string  `json:"category" validate:"required"`
	Price    float64 `json:"price"`
}

// UpdateProductRequest is the full replacement payload of an update.
// ID may differ from the ID in the path; the stored product adopts it.
type UpdateProductRequest struct {
	ID       int     `json:"id"`
	Name     string  `json:"name" validate:"required"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
}

// ProductResponse represents the product response
type ProductResponse struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
}

// ToProductInput converts a create request to domain input
func (r *CreateProductRequest) ToProductInput() domain.ProductInput {
	return domain.ProductInput{
		Name:     r.Name,
		Category: r.Category,
		Price:    r.Price,
	}
}

// ToProduct converts an update request to the replacement domain Product
func (r *UpdateProductRequest) ToProduct() domain.Product {
	return domain.Product{
		ID:       r.ID,
		Name:     r.Name,
		Category: r.Category,
		Price:    r.Price,
	}
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p domain.Product) *ProductResponse {
	return &ProductResponse{
		ID:       p.ID,
		Name:     p.Name,
		Category: p.Category,
		Price:    p.Price,
	}
}

// ToProductResponseList converts a list of domain Products to ProductResponse list
func ToProductResponseList(products []domain.Product) []*ProductResponse {
	responses := make([]*ProductResponse, len(products))
	for i, p := range products {
		responses[i] = ToProductResponse(p)
	}
	return responses
}
