package controllers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/agrilinkhq/agrilink-backend/api/middleware"
	productsvc "github.com/agrilinkhq/agrilink-backend/internal/products"
	"github.com/agrilinkhq/agrilink-backend/pkg/logger"
	"github.com/agrilinkhq/agrilink-backend/pkg/pagination"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
}

func decimalFromString(t *testing.T, raw string) decimal.Decimal {
	t.Helper()
	value, err := decimal.NewFromString(raw)
	if err != nil {
		t.Fatalf("parse decimal %q: %v", raw, err)
	}
	return value
}

type stubProductService struct {
	created *productsvc.CreateProductInput
	deleted bool
}

func (s *stubProductService) CreateProduct(ctx context.Context, farmerID uuid.UUID, input productsvc.CreateProductInput) (*productsvc.ProductDTO, error) {
	s.created = &input
	return &productsvc.ProductDTO{}, nil
}

func (s *stubProductService) UpdateProduct(ctx context.Context, farmerID, productID uuid.UUID, input productsvc.UpdateProductInput) (*productsvc.ProductDTO, error) {
	panic("unimplemented")
}

func (s *stubProductService) DeleteProduct(ctx context.Context, farmerID, productID uuid.UUID) error {
	s.deleted = true
	return nil
}

func (s *stubProductService) GetProduct(ctx context.Context, productID uuid.UUID) (*productsvc.ProductDTO, error) {
	panic("unimplemented")
}

func (s *stubProductService) ListProducts(ctx context.Context, input productsvc.ListProductsInput) ([]productsvc.ProductDTO, error) {
	panic("unimplemented")
}

func (s *stubProductService) ListFarmerProducts(ctx context.Context, farmerID uuid.UUID, page pagination.Params) ([]productsvc.ProductDTO, error) {
	panic("unimplemented")
}

func TestFarmerCreateProduct(t *testing.T) {
	logg := testLogger()
	farmerID := uuid.New()

	t.Run("missing user", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/farmer/products", strings.NewReader(`{}`))
		rec := httptest.NewRecorder()
		FarmerCreateProduct(&stubProductService{}, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 when user missing, got %d", rec.Code)
		}
	})

	t.Run("invalid category", func(t *testing.T) {
		body := `{"name":"Tomatoes","category":"gadgets","unit":"kg","price":"3.50","quantity":10}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/farmer/products", strings.NewReader(body))
		req = req.WithContext(middleware.WithUserID(req.Context(), farmerID.String()))
		rec := httptest.NewRecorder()
		FarmerCreateProduct(&stubProductService{}, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for unknown category, got %d", rec.Code)
		}
	})

	t.Run("invalid price", func(t *testing.T) {
		body := `{"name":"Tomatoes","category":"vegetables","unit":"kg","price":"abc","quantity":10}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/farmer/products", strings.NewReader(body))
		req = req.WithContext(middleware.WithUserID(req.Context(), farmerID.String()))
		rec := httptest.NewRecorder()
		FarmerCreateProduct(&stubProductService{}, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for malformed price, got %d", rec.Code)
		}
	})

	t.Run("success", func(t *testing.T) {
		body := `{"name":"Tomatoes","category":"vegetables","unit":"kg","price":"3.50","quantity":10}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/farmer/products", strings.NewReader(body))
		req = req.WithContext(middleware.WithUserID(req.Context(), farmerID.String()))

		stub := &stubProductService{}
		rec := httptest.NewRecorder()
		FarmerCreateProduct(stub, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201 on create, got %d", rec.Code)
		}
		if stub.created == nil {
			t.Fatalf("expected CreateProduct to be invoked")
		}
		if stub.created.Name != "Tomatoes" || !stub.created.Price.Equal(decimalFromString(t, "3.50")) {
			t.Fatalf("unexpected input forwarded: %+v", stub.created)
		}
	})
}

func TestFarmerDeleteProduct(t *testing.T) {
	logg := testLogger()
	farmerID := uuid.New()
	productID := uuid.New()

	t.Run("invalid product id", func(t *testing.T) {
		routeCtx := chi.NewRouteContext()
		routeCtx.URLParams.Add("productId", "not-a-uuid")
		ctx := context.WithValue(context.Background(), chi.RouteCtxKey, routeCtx)
		ctx = middleware.WithUserID(ctx, farmerID.String())
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/farmer/products/invalid", nil).WithContext(ctx)
		rec := httptest.NewRecorder()
		FarmerDeleteProduct(&stubProductService{}, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for invalid id, got %d", rec.Code)
		}
	})

	t.Run("success", func(t *testing.T) {
		routeCtx := chi.NewRouteContext()
		routeCtx.URLParams.Add("productId", productID.String())
		ctx := context.WithValue(context.Background(), chi.RouteCtxKey, routeCtx)
		ctx = middleware.WithUserID(ctx, farmerID.String())
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/farmer/products/"+productID.String(), nil).WithContext(ctx)

		stub := &stubProductService{}
		rec := httptest.NewRecorder()
		FarmerDeleteProduct(stub, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 on delete, got %d", rec.Code)
		}
		if !stub.deleted {
			t.Fatalf("expected DeleteProduct to be invoked")
		}
	})
}
