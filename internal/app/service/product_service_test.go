package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/mrops-br/products-repository-api/internal/app/dto"
	"github.com/mrops-br/products-repository-api/internal/domain"
	"github.com/mrops-br/products-repository-api/internal/infrastructure/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/trace/noop"
)

// mockProductRepository is a mock implementation of domain.ProductRepository
type mockProductRepository struct {
	product  domain.Product
	products []domain.Product
	error    error
}

func (m *mockProductRepository) Insert(_ context.Context, _ domain.ProductInput) (domain.Product, error) {
	return m.product, m.error
}

func (m *mockProductRepository) List(_ context.Context) ([]domain.Product, error) {
	return m.products, m.error
}

func (m *mockProductRepository) FindByID(_ context.Context, _ int) (domain.Product, error) {
	return m.product, m.error
}

func (m *mockProductRepository) Update(_ context.Context, _ int, _ domain.Product) (domain.Product, error) {
	return m.product, m.error
}

func (m *mockProductRepository) Delete(_ context.Context, _ int) (domain.Product, error) {
	return m.product, m.error
}

func (m *mockProductRepository) SearchByCategory(_ context.Context, _ string) ([]domain.Product, error) {
	return m.products, m.error
}

type fixture struct {
	service *ProductService
	reader  *sdkmetric.ManualReader
}

func newFixture(repo domain.ProductRepository) fixture {
	reader := sdkmetric.NewManualReader()
	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test")
	tracer := noop.NewTracerProvider().Tracer("test")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return fixture{
		service: NewProductService(repo, tracer, meter, logger),
		reader:  reader,
	}
}

func newMemoryFixture() fixture {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return newFixture(memory.NewProductRepository(noop.NewTracerProvider().Tracer("test"), logger))
}

// counter returns the value of an int64 sum for the given attribute pairs, or 0
func (f fixture) counter(t *testing.T, name string, attrs ...attribute.KeyValue) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, f.reader.Collect(context.Background(), &rm))

	want := attribute.NewSet(attrs...)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "metric %s is not an int64 sum", name)
			for _, dp := range sum.DataPoints {
				if dp.Attributes.Equals(&want) {
					return dp.Value
				}
			}
		}
	}
	return 0
}

func op(operation, result string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("operation", operation),
		attribute.String("result", result),
	}
}

func Test_ProductService_CreateProduct(t *testing.T) {
	testCases := []struct {
		name        string
		request     dto.CreateProductRequest
		expected    *dto.ProductResponse
		expectError error
		result      string
	}{
		{
			name:     "Success - product created",
			request:  dto.CreateProductRequest{Name: "Arroz", Category: "alimento", Price: 4.0},
			expected: &dto.ProductResponse{ID: 1, Name: "Arroz", Category: "alimento", Price: 4.0},
			result:   resultSuccess,
		},
		{
			name:        "Error - missing category",
			request:     dto.CreateProductRequest{Name: "Massa", Price: 4.0},
			expectError: domain.ErrProductCategoryRequired,
			result:      resultInvalid,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			f := newMemoryFixture()

			// when
			created, err := f.service.CreateProduct(context.Background(), &tc.request)

			// then
			assert.Equal(t, int64(1), f.counter(t, "products.operations", op("create", tc.result)...))
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				assert.Nil(t, created)
				assert.Zero(t, f.counter(t, "products.created.total"))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, created)
			assert.Equal(t, int64(1), f.counter(t, "products.created.total"))
		})
	}
}

func Test_ProductService_GetProductByID(t *testing.T) {
	t.Run("Success - product found", func(t *testing.T) {
		// given
		f := newMemoryFixture()
		created, err := f.service.CreateProduct(context.Background(), &dto.CreateProductRequest{Name: "Feijao", Category: "alimento", Price: 7})
		require.NoError(t, err)

		// when
		found, err := f.service.GetProductByID(context.Background(), created.ID)

		// then
		require.NoError(t, err)
		assert.Equal(t, created, found)
		assert.Equal(t, int64(1), f.counter(t, "products.operations", op("read", resultSuccess)...))
	})

	t.Run("Error - product not found", func(t *testing.T) {
		// given
		f := newMemoryFixture()

		// when
		found, err := f.service.GetProductByID(context.Background(), 10)

		// then
		assert.ErrorIs(t, err, domain.ErrProductNotFound)
		assert.Nil(t, found)
		assert.Equal(t, int64(1), f.counter(t, "products.operations", op("read", resultNotFound)...))
	})
}

func Test_ProductService_UpdateProduct(t *testing.T) {
	// given
	f := newMemoryFixture()
	_, err := f.service.CreateProduct(context.Background(), &dto.CreateProductRequest{Name: "Arroz", Category: "alimento", Price: 4})
	require.NoError(t, err)

	// when
	updated, err := f.service.UpdateProduct(context.Background(), 1, &dto.UpdateProductRequest{ID: 5, Name: "Arroz branco", Category: "Alimento", Price: 5})

	// then
	require.NoError(t, err)
	assert.Equal(t, &dto.ProductResponse{ID: 5, Name: "Arroz branco", Category: "Alimento", Price: 5}, updated)

	_, err = f.service.UpdateProduct(context.Background(), 5, &dto.UpdateProductRequest{ID: 6, Category: "Alimento", Price: 10})
	assert.ErrorIs(t, err, domain.ErrProductNameRequired)
	assert.Equal(t, int64(1), f.counter(t, "products.operations", op("update", resultInvalid)...))

	list, err := f.service.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []*dto.ProductResponse{updated}, list)
}

func Test_ProductService_DeleteProduct(t *testing.T) {
	// given
	f := newMemoryFixture()
	created, err := f.service.CreateProduct(context.Background(), &dto.CreateProductRequest{Name: "Sabao", Category: "limpeza", Price: 3})
	require.NoError(t, err)

	// when
	removed, err := f.service.DeleteProduct(context.Background(), created.ID)

	// then
	require.NoError(t, err)
	assert.Equal(t, created, removed)
	assert.Equal(t, int64(1), f.counter(t, "products.deleted.total"))

	_, err = f.service.DeleteProduct(context.Background(), created.ID)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
	assert.Equal(t, int64(1), f.counter(t, "products.operations", op("delete", resultNotFound)...))
}

func Test_ProductService_SearchProductsByCategory(t *testing.T) {
	// given
	f := newMemoryFixture()
	for _, req := range []dto.CreateProductRequest{
		{Name: "Arroz", Category: "alimento", Price: 4},
		{Name: "Sabao", Category: "limpeza", Price: 3},
		{Name: "Feijao", Category: "alimento", Price: 7},
	} {
		_, err := f.service.CreateProduct(context.Background(), &req)
		require.NoError(t, err)
	}

	// when
	found, err := f.service.SearchProductsByCategory(context.Background(), "alimento")
	none, noneErr := f.service.SearchProductsByCategory(context.Background(), "alimento0")

	// then
	require.NoError(t, err)
	require.NoError(t, noneErr)
	assert.Equal(t, []*dto.ProductResponse{
		{ID: 1, Name: "Arroz", Category: "alimento", Price: 4},
		{ID: 3, Name: "Feijao", Category: "alimento", Price: 7},
	}, found)
	assert.Empty(t, none)
	assert.Equal(t, int64(2), f.counter(t, "products.operations", op("search", resultSuccess)...))
}

func Test_ProductService_RepositoryFailure(t *testing.T) {
	// given
	errUnavailable := errors.New("store unavailable")
	f := newFixture(&mockProductRepository{error: errUnavailable})

	// when
	list, err := f.service.ListProducts(context.Background())

	// then
	assert.ErrorIs(t, err, errUnavailable)
	assert.Nil(t, list)
	assert.Equal(t, int64(1), f.counter(t, "products.operations", op("list", resultFailure)...))
}
