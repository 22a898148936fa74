package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/mrops-br/products-repository-api/internal/app/dto"
	"github.com/mrops-br/products-repository-api/internal/domain"
	"github.com/mrops-br/products-repository-api/internal/infrastructure/http/response"
)

var errTrailingData = errors.New("request body must contain a single JSON object")

// ProductService is the set of use cases the handler exposes over HTTP
type ProductService interface {
	CreateProduct(ctx context.Context, req *dto.CreateProductRequest) (*dto.ProductResponse, error)
	GetProductByID(ctx context.Context, id int) (*dto.ProductResponse, error)
	ListProducts(ctx context.Context) ([]*dto.ProductResponse, error)
	UpdateProduct(ctx context.Context, id int, req *dto.UpdateProductRequest) (*dto.ProductResponse, error)
	DeleteProduct(ctx context.Context, id int) (*dto.ProductResponse, error)
	SearchProductsByCategory(ctx context.Context, category string) ([]*dto.ProductResponse, error)
}

// ProductHandler handles HTTP requests for products
type ProductHandler struct {
	service  ProductService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(service ProductService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger.With("component", "product_handler"),
	}
}

// CreateProduct handles POST /products
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateProductRequest
	if !h.decode(w, r, &req) {
		return
	}

	product, err := h.service.CreateProduct(r.Context(), &req)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	response.JSON(w, http.StatusCreated, product)
}

// GetProduct handles GET /products/{id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	product, err := h.service.GetProductByID(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, product)
}

// ListProducts handles GET /products, narrowing to one category when the
// category query parameter is present
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Has("category") {
		h.search(w, r, r.URL.Query().Get("category"))
		return
	}

	products, err := h.service.ListProducts(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, products)
}

// SearchByCategory handles GET /categories/{category}/products
func (h *ProductHandler) SearchByCategory(w http.ResponseWriter, r *http.Request) {
	h.search(w, r, chi.URLParam(r, "category"))
}

// UpdateProduct handles PUT /products/{id}
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	var req dto.UpdateProductRequest
	if !h.decode(w, r, &req) {
		return
	}

	product, err := h.service.UpdateProduct(r.Context(), id, &req)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, product)
}

// DeleteProduct handles DELETE /products/{id} and returns the removed product
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	product, err := h.service.DeleteProduct(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, product)
}

func (h *ProductHandler) search(w http.ResponseWriter, r *http.Request, category string) {
	products, err := h.service.SearchProductsByCategory(r.Context(), category)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, products)
}

func (h *ProductHandler) parseID(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Invalid product ID",
			slog.String("id", raw),
		)
		response.Error(w, http.StatusBadRequest, domain.ErrInvalidProductID)
		return 0, false
	}
	return id, true
}

// decode reads the JSON body into dst and validates it, writing a 400 on failure
func (h *ProductHandler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	err := dec.Decode(dst)
	if err == nil && !errors.Is(dec.Decode(&struct{}{}), io.EOF) {
		err = errTrailingData
	}
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to decode request body",
			slog.String("error", err.Error()),
		)
		response.Error(w, http.StatusBadRequest, err)
		return false
	}

	if err := h.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			response.Error(w, http.StatusBadRequest, err)
			return false
		}
		details := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, fmt.Sprintf("%s failed on '%s'", fe.Field(), fe.Tag()))
		}
		h.logger.WarnContext(r.Context(), "Request validation failed",
			slog.Any("details", details),
		)
		response.Error(w, http.StatusBadRequest, fieldError(verrs[0]), details...)
		return false
	}

	return true
}

// fieldError maps the first failing field to the matching domain error
func fieldError(fe validator.FieldError) error {
	switch fe.Field() {
	case "Name":
		return domain.ErrProductNameRequired
	case "Category":
		return domain.ErrProductCategoryRequired
	}
	return fmt.Errorf("invalid field %s", fe.Field())
}

func (h *ProductHandler) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrProductNotFound):
		response.Error(w, http.StatusNotFound, err)
	case errors.Is(err, domain.ErrProductNameRequired), errors.Is(err, domain.ErrProductCategoryRequired):
		response.Error(w, http.StatusBadRequest, err)
	default:
		h.logger.ErrorContext(r.Context(), "Unexpected service error",
			slog.String("error", err.Error()),
		)
		response.Error(w, http.StatusInternalServerError, err)
	}
}
