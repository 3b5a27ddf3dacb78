package product

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/agrilinkhq/agrilink-backend/pkg/enums"
	pkgerrors "github.com/agrilinkhq/agrilink-backend/pkg/errors"
	"github.com/agrilinkhq/agrilink-backend/pkg/pagination"
)

func TestReserveDecrementsAndDerivesStatus(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	farmerID := uuid.New()
	seeded := mustCreateTestProduct(t, conn, farmerID, 5)

	if err := repo.Reserve(ctx, seeded.ID, 3); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	got, err := repo.FindByID(ctx, seeded.ID)
	if err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if got.Quantity != 2 {
		t.Fatalf("expected quantity 2, got %d", got.Quantity)
	}
	if got.Status != enums.ProductStatusAvailable {
		t.Fatalf("expected available, got %s", got.Status)
	}

	if err := repo.Reserve(ctx, seeded.ID, 2); err != nil {
		t.Fatalf("reserve remainder: %v", err)
	}
	got, err = repo.FindByID(ctx, seeded.ID)
	if err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if got.Quantity != 0 {
		t.Fatalf("expected quantity 0, got %d", got.Quantity)
	}
	if got.Status != enums.ProductStatusSoldOut {
		t.Fatalf("expected sold_out, got %s", got.Status)
	}
}

func TestReserveInsufficientStockLeavesRowUntouched(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	seeded := mustCreateTestProduct(t, conn, uuid.New(), 2)

	err := repo.Reserve(ctx, seeded.ID, 3)
	if err == nil {
		t.Fatal("expected insufficient stock error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error: %v", err)
	}
	details, ok := typed.Details().(map[string]any)
	if !ok {
		t.Fatalf("expected details map, got %T", typed.Details())
	}
	if details["available"] != 2 || details["requested"] != 3 {
		t.Fatalf("unexpected shortfall details: %+v", details)
	}

	got, err := repo.FindByID(ctx, seeded.ID)
	if err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if got.Quantity != 2 {
		t.Fatalf("failed reserve must not change quantity, got %d", got.Quantity)
	}
}

func TestReserveMissingProduct(t *testing.T) {
	t.Parallel()

	repo := NewRepository(newTestDB(t))

	err := repo.Reserve(context.Background(), uuid.New(), 1)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestReserveRejectsNonPositiveQty(t *testing.T) {
	t.Parallel()

	repo := NewRepository(newTestDB(t))

	err := repo.Reserve(context.Background(), uuid.New(), 0)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestReleaseRestocksAndReopensListing(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	seeded := mustCreateTestProduct(t, conn, uuid.New(), 1)

	if err := repo.Reserve(ctx, seeded.ID, 1); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if err := repo.Release(ctx, seeded.ID, 1); err != nil {
		t.Fatalf("release: %v", err)
	}

	got, err := repo.FindByID(ctx, seeded.ID)
	if err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if got.Quantity != 1 {
		t.Fatalf("expected quantity 1, got %d", got.Quantity)
	}
	if got.Status != enums.ProductStatusAvailable {
		t.Fatalf("expected available after release, got %s", got.Status)
	}
}

func TestListFiltersByCategoryAndFarmer(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	farmerA := uuid.New()
	farmerB := uuid.New()
	mustCreateTestProduct(t, conn, farmerA, 5)
	other := mustCreateTestProduct(t, conn, farmerB, 5)
	other.Category = enums.ProductCategoryDairy
	if err := conn.Save(other).Error; err != nil {
		t.Fatalf("update category: %v", err)
	}

	dairy := enums.ProductCategoryDairy
	byCategory, err := repo.List(ctx, ListFilter{Category: &dairy}, pagination.Params{})
	if err != nil {
		t.Fatalf("list by category: %v", err)
	}
	if len(byCategory) != 1 || byCategory[0].FarmerID != farmerB {
		t.Fatalf("unexpected category filter result: %+v", byCategory)
	}

	byFarmer, err := repo.List(ctx, ListFilter{FarmerID: &farmerA}, pagination.Params{})
	if err != nil {
		t.Fatalf("list by farmer: %v", err)
	}
	if len(byFarmer) != 1 || byFarmer[0].FarmerID != farmerA {
		t.Fatalf("unexpected farmer filter result: %+v", byFarmer)
	}
}
