package product

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/agrilinkhq/agrilink-backend/pkg/enums"
	pkgerrors "github.com/agrilinkhq/agrilink-backend/pkg/errors"
)

func newTestService(t *testing.T) (Service, *Repository) {
	t.Helper()
	repo := NewRepository(newTestDB(t))
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, repo
}

func TestCreateProductDerivesStatus(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()
	farmerID := uuid.New()

	created, err := svc.CreateProduct(ctx, farmerID, CreateProductInput{
		Name:     "Basmati Rice",
		Category: enums.ProductCategoryGrains,
		Unit:     enums.ProductUnitKg,
		Price:    decimal.NewFromInt(85),
		Quantity: 0,
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	if created.Status != string(enums.ProductStatusSoldOut) {
		t.Fatalf("zero quantity listing must be sold_out, got %s", created.Status)
	}
	if created.Price != "85.00" {
		t.Fatalf("expected price 85.00, got %s", created.Price)
	}
}

func TestCreateProductRejectsNonPositivePrice(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)

	_, err := svc.CreateProduct(context.Background(), uuid.New(), CreateProductInput{
		Name:     "Free Lettuce",
		Category: enums.ProductCategoryVegetables,
		Unit:     enums.ProductUnitKg,
		Price:    decimal.Zero,
		Quantity: 10,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateProductEnforcesOwnership(t *testing.T) {
	t.Parallel()

	svc, repo := newTestService(t)
	ctx := context.Background()
	owner := uuid.New()

	created, err := svc.CreateProduct(ctx, owner, CreateProductInput{
		Name:     "Farm Eggs",
		Category: enums.ProductCategoryPoultry,
		Unit:     enums.ProductUnitDozen,
		Price:    decimal.NewFromInt(60),
		Quantity: 12,
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	_, err = svc.UpdateProduct(ctx, uuid.New(), created.ID, UpdateProductInput{})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for non-owner, got %v", err)
	}

	qty := 0
	updated, err := svc.UpdateProduct(ctx, owner, created.ID, UpdateProductInput{Quantity: &qty})
	if err != nil {
		t.Fatalf("owner update: %v", err)
	}
	if updated.Status != string(enums.ProductStatusSoldOut) {
		t.Fatalf("expected sold_out after quantity update, got %s", updated.Status)
	}

	stored, err := repo.FindByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if stored.Quantity != 0 || stored.Status != enums.ProductStatusSoldOut {
		t.Fatalf("unexpected stored state: %+v", stored)
	}
}

func TestDeleteProductEnforcesOwnership(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()
	owner := uuid.New()

	created, err := svc.CreateProduct(ctx, owner, CreateProductInput{
		Name:     "Raw Milk",
		Category: enums.ProductCategoryDairy,
		Unit:     enums.ProductUnitLiter,
		Price:    decimal.NewFromInt(55),
		Quantity: 20,
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	if err := svc.DeleteProduct(ctx, uuid.New(), created.ID); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for non-owner, got %v", err)
	}
	if err := svc.DeleteProduct(ctx, owner, created.ID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if _, err := svc.GetProduct(ctx, created.ID); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestGetProductMissing(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)

	_, err := svc.GetProduct(context.Background(), uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
