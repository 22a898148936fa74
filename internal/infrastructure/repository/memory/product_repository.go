package memory

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mrops-br/products-repository-api/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ProductRepository is an in-memory implementation of domain.ProductRepository.
// Products are kept in insertion order and looked up by linear scan.
type ProductRepository struct {
	mu       sync.RWMutex
	products []domain.Product
	nextID   int
	tracer   trace.Tracer
	logger   *slog.Logger
}

// NewProductRepository creates a new, empty in-memory product repository
func NewProductRepository(tracer trace.Tracer, logger *slog.Logger) *ProductRepository {
	return &ProductRepository{
		products: make([]domain.Product, 0),
		nextID:   1,
		tracer:   tracer,
		logger:   logger,
	}
}

// Insert validates the input, assigns the next sequential ID and appends the product
func (r *ProductRepository) Insert(ctx context.Context, in domain.ProductInput) (domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.Insert")
	defer span.End()

	span.SetAttributes(
		attribute.String("product.name", in.Name),
		attribute.String("product.category", in.Category),
	)

	product, err := domain.NewProduct(in)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Validation failed")
		r.logger.WarnContext(ctx, "Product rejected by repository",
			slog.String("error", err.Error()),
		)
		return domain.Product{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	product.ID = r.nextID
	r.nextID++
	r.products = append(r.products, product)

	span.SetAttributes(attribute.Int("product.id", product.ID))

	r.logger.InfoContext(ctx, "Product inserted in repository",
		slog.Int("product_id", product.ID),
		slog.String("product_name", product.Name),
	)

	span.SetStatus(codes.Ok, "Product inserted successfully")
	return product, nil
}

// List returns a snapshot of all products in insertion order
func (r *ProductRepository) List(ctx context.Context) ([]domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.List")
	defer span.End()

	r.mu.RLock()
	defer r.mu.RUnlock()

	products := make([]domain.Product, len(r.products))
	copy(products, r.products)

	span.SetAttributes(attribute.Int("product.count", len(products)))

	r.logger.DebugContext(ctx, "Products listed from repository",
		slog.Int("count", len(products)),
	)

	span.SetStatus(codes.Ok, "Products listed successfully")
	return products, nil
}

// FindByID returns the first product with the given ID
func (r *ProductRepository) FindByID(ctx context.Context, id int) (domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.FindByID")
	defer span.End()

	span.SetAttributes(attribute.Int("product.id", id))

	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexOf(id)
	if i < 0 {
		r.notFound(ctx, span, id)
		return domain.Product{}, domain.ErrProductNotFound
	}
	product := r.products[i]

	r.logger.DebugContext(ctx, "Product found in repository",
		slog.Int("product_id", id),
		slog.String("product_name", product.Name),
	)

	span.SetStatus(codes.Ok, "Product found")
	return product, nil
}

// Update overwrites the product stored under id with replacement, keeping its
// position. The replacement's own ID is adopted as is, even when it differs
// from id or collides with another record.
func (r *ProductRepository) Update(ctx context.Context, id int, replacement domain.Product) (domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.Update")
	defer span.End()

	span.SetAttributes(
		attribute.Int("product.id", id),
		attribute.Int("product.replacement_id", replacement.ID),
	)

	if err := replacement.ValidateReplacement(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Validation failed")
		r.logger.WarnContext(ctx, "Product update rejected by repository",
			slog.Int("product_id", id),
			slog.String("error", err.Error()),
		)
		return domain.Product{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		r.notFound(ctx, span, id)
		return domain.Product{}, domain.ErrProductNotFound
	}
	r.products[i] = replacement

	if replacement.ID != id {
		r.logger.WarnContext(ctx, "Product ID reassigned by update",
			slog.Int("product_id", id),
			slog.Int("new_product_id", replacement.ID),
		)
	}

	r.logger.InfoContext(ctx, "Product updated in repository",
		slog.Int("product_id", replacement.ID),
		slog.String("product_name", replacement.Name),
	)

	span.SetStatus(codes.Ok, "Product updated successfully")
	return replacement, nil
}

// Delete removes the first product with the given ID and returns it
func (r *ProductRepository) Delete(ctx context.Context, id int) (domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.Delete")
	defer span.End()

	span.SetAttributes(attribute.Int("product.id", id))

	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		r.notFound(ctx, span, id)
		return domain.Product{}, domain.ErrProductNotFound
	}
	removed := r.products[i]
	r.products = append(r.products[:i], r.products[i+1:]...)

	r.logger.InfoContext(ctx, "Product deleted from repository",
		slog.Int("product_id", id),
		slog.String("product_name", removed.Name),
	)

	span.SetStatus(codes.Ok, "Product deleted successfully")
	return removed, nil
}

// SearchByCategory returns, in insertion order, every product whose category
// matches exactly (case-sensitive)
func (r *ProductRepository) SearchByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.SearchByCategory")
	defer span.End()

	span.SetAttributes(attribute.String("product.category", category))

	r.mu.RLock()
	defer r.mu.RUnlock()

	products := make([]domain.Product, 0)
	for _, product := range r.products {
		if product.Category == category {
			products = append(products, product)
		}
	}

	span.SetAttributes(attribute.Int("product.count", len(products)))

	r.logger.DebugContext(ctx, "Products searched by category",
		slog.String("category", category),
		slog.Int("count", len(products)),
	)

	span.SetStatus(codes.Ok, "Products searched successfully")
	return products, nil
}

// indexOf must be called with r.mu held.
func (r *ProductRepository) indexOf(id int) int {
	for i, product := range r.products {
		if product.ID == id {
			return i
		}
	}
	return -1
}

func (r *ProductRepository) notFound(ctx context.Context, span trace.Span, id int) {
	span.RecordError(domain.ErrProductNotFound)
	span.SetStatus(codes.Error, "Product not found")
	r.logger.WarnContext(ctx, "Product not found",
		slog.Int("product_id", id),
	)
}
