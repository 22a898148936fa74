package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mrops-br/products-repository-api/internal/app/dto"
	"github.com/mrops-br/products-repository-api/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Operation results recorded on the products.operations counter
const (
	resultSuccess  = "success"
	resultFailure  = "failure"
	resultInvalid  = "invalid"
	resultNotFound = "not_found"
)

// ProductService handles product use cases
type ProductService struct {
	repo                  domain.ProductRepository
	tracer                trace.Tracer
	logger                *slog.Logger
	productCreatedCounter metric.Int64Counter
	productDeletedCounter metric.Int64Counter
	productOperations     metric.Int64Counter
}

// NewProductService creates a new product service
func NewProductService(
	repo domain.ProductRepository,
	tracer trace.Tracer,
	meter metric.Meter,
	logger *slog.Logger,
) *ProductService {
	// Initialize metrics
	productCreatedCounter, _ := meter.Int64Counter(
		"products.created.total",
		metric.WithDescription("Total number of products created"),
	)

	productDeletedCounter, _ := meter.Int64Counter(
		"products.deleted.total",
		metric.WithDescription("Total number of products deleted"),
	)

	productOperations, _ := meter.Int64Counter(
		"products.operations",
		metric.WithDescription("Total number of product operations"),
	)

	return &ProductService{
		repo:                  repo,
		tracer:                tracer,
		logger:                logger,
		productCreatedCounter: productCreatedCounter,
		productDeletedCounter: productDeletedCounter,
		productOperations:     productOperations,
	}
}

// CreateProduct inserts a new product
func (s *ProductService) CreateProduct(ctx context.Context, req *dto.CreateProductRequest) (*dto.ProductResponse, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.CreateProduct")
	defer span.End()

	span.SetAttributes(
		attribute.String("product.name", req.Name),
		attribute.String("product.category", req.Category),
		attribute.Float64("product.price", req.Price),
	)

	s.logger.InfoContext(ctx, "Creating product",
		slog.String("name", req.Name),
		slog.String("category", req.Category),
		slog.Float64("price", req.Price),
	)

	product, err := s.repo.Insert(ctx, req.ToProductInput())
	if err != nil {
		s.fail(ctx, span, "create", err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("product.id", product.ID))

	s.productCreatedCounter.Add(ctx, 1)
	s.record(ctx, "create", resultSuccess)

	s.logger.InfoContext(ctx, "Product created successfully",
		slog.Int("product_id", product.ID),
	)

	span.SetStatus(codes.Ok, "Product created successfully")
	return dto.ToProductResponse(product), nil
}

// GetProductByID retrieves a product by ID
func (s *ProductService) GetProductByID(ctx context.Context, id int) (*dto.ProductResponse, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.GetProductByID")
	defer span.End()

	span.SetAttributes(attribute.Int("product.id", id))

	s.logger.InfoContext(ctx, "Getting product by ID",
		slog.Int("product_id", id),
	)

	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.fail(ctx, span, "read", err)
		return nil, err
	}

	s.record(ctx, "read", resultSuccess)

	s.logger.InfoContext(ctx, "Product retrieved successfully",
		slog.Int("product_id", id),
	)

	span.SetStatus(codes.Ok, "Product retrieved successfully")
	return dto.ToProductResponse(product), nil
}

// ListProducts retrieves all products in insertion order
func (s *ProductService) ListProducts(ctx context.Context) ([]*dto.ProductResponse, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.ListProducts")
	defer span.End()

	s.logger.InfoContext(ctx, "Listing all products")

	products, err := s.repo.List(ctx)
	if err != nil {
		s.fail(ctx, span, "list", err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("product.count", len(products)))

	s.record(ctx, "list", resultSuccess)

	s.logger.InfoContext(ctx, "Products listed successfully",
		slog.Int("count", len(products)),
	)

	span.SetStatus(codes.Ok, "Products listed successfully")
	return dto.ToProductResponseList(products), nil
}

// UpdateProduct replaces the product stored under id with the request payload
func (s *ProductService) UpdateProduct(ctx context.Context, id int, req *dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.UpdateProduct")
	defer span.End()

	span.SetAttributes(
		attribute.Int("product.id", id),
		attribute.Int("product.replacement_id", req.ID),
		attribute.String("product.name", req.Name),
	)

	s.logger.InfoContext(ctx, "Updating product",
		slog.Int("product_id", id),
		slog.Int("replacement_id", req.ID),
	)

	product, err := s.repo.Update(ctx, id, req.ToProduct())
	if err != nil {
		s.fail(ctx, span, "update", err)
		return nil, err
	}

	s.record(ctx, "update", resultSuccess)

	s.logger.InfoContext(ctx, "Product updated successfully",
		slog.Int("product_id", product.ID),
	)

	span.SetStatus(codes.Ok, "Product updated successfully")
	return dto.ToProductResponse(product), nil
}

// DeleteProduct removes a product and returns it
func (s *ProductService) DeleteProduct(ctx context.Context, id int) (*dto.ProductResponse, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.DeleteProduct")
	defer span.End()

	span.SetAttributes(attribute.Int("product.id", id))

	s.logger.InfoContext(ctx, "Deleting product",
		slog.Int("product_id", id),
	)

	product, err := s.repo.Delete(ctx, id)
	if err != nil {
		s.fail(ctx, span, "delete", err)
		return nil, err
	}

	s.productDeletedCounter.Add(ctx, 1)
	s.record(ctx, "delete", resultSuccess)

	s.logger.InfoContext(ctx, "Product deleted successfully",
		slog.Int("product_id", id),
	)

	span.SetStatus(codes.Ok, "Product deleted successfully")
	return dto.ToProductResponse(product), nil
}

// SearchProductsByCategory retrieves the products of one category
func (s *ProductService) SearchProductsByCategory(ctx context.Context, category string) ([]*dto.ProductResponse, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.SearchProductsByCategory")
	defer span.End()

	span.SetAttributes(attribute.String("product.category", category))

	s.logger.InfoContext(ctx, "Searching products by category",
		slog.String("category", category),
	)

	products, err := s.repo.SearchByCategory(ctx, category)
	if err != nil {
		s.fail(ctx, span, "search", err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("product.count", len(products)))

	s.record(ctx, "search", resultSuccess)

	s.logger.InfoContext(ctx, "Products searched successfully",
		slog.String("category", category),
		slog.Int("count", len(products)),
	)

	span.SetStatus(codes.Ok, "Products searched successfully")
	return dto.ToProductResponseList(products), nil
}

func (s *ProductService) record(ctx context.Context, operation, result string) {
	s.productOperations.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("result", result),
		),
	)
}

// fail classifies err, marks the span and records the failed operation
func (s *ProductService) fail(ctx context.Context, span trace.Span, operation string, err error) {
	span.RecordError(err)

	switch {
	case errors.Is(err, domain.ErrProductNotFound):
		span.SetStatus(codes.Error, "Product not found")
		s.logger.WarnContext(ctx, "Product not found",
			slog.String("operation", operation),
		)
		s.record(ctx, operation, resultNotFound)
	case errors.Is(err, domain.ErrProductNameRequired), errors.Is(err, domain.ErrProductCategoryRequired):
		span.SetStatus(codes.Error, "Validation failed")
		s.logger.WarnContext(ctx, "Product validation failed",
			slog.String("operation", operation),
			slog.String("error", err.Error()),
		)
		s.record(ctx, operation, resultInvalid)
	default:
		span.SetStatus(codes.Error, "Operation failed")
		s.logger.ErrorContext(ctx, "Product operation failed",
			slog.String("operation", operation),
			slog.String("error", err.Error()),
		)
		s.record(ctx, operation, resultFailure)
	}
}
