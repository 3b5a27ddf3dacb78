package product

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agrilinkhq/agrilink-backend/pkg/db/models"
	"github.com/agrilinkhq/agrilink-backend/pkg/enums"
	pkgerrors "github.com/agrilinkhq/agrilink-backend/pkg/errors"
	"github.com/agrilinkhq/agrilink-backend/pkg/pagination"
)

// ListFilter narrows catalog queries.
type ListFilter struct {
	Category *enums.ProductCategory
	FarmerID *uuid.UUID
}

// Repository wires product persistence, including the atomic stock
// reservation both checkout and direct order creation route through.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByID loads the product without associations.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// List returns a page of products matching the filter, newest first.
func (r *Repository) List(ctx context.Context, filter ListFilter, page pagination.Params) ([]models.Product, error) {
	page = page.Normalize()
	query := r.db.WithContext(ctx).Model(&models.Product{})
	if filter.Category != nil {
		query = query.Where("category = ?", *filter.Category)
	}
	if filter.FarmerID != nil {
		query = query.Where("farmer_id = ?", *filter.FarmerID)
	}

	var out []models.Product
	err := query.
		Order("created_at DESC").
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&out).
		Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Create inserts a new product row.
func (r *Repository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// Update saves an existing product row.
func (r *Repository) Update(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// Delete removes a product by ID.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Product{}).Error
}

// Reserve atomically checks and decrements on-hand quantity, keeping the
// derived status consistent in the same statement. The check and decrement
// cannot be separated by a concurrent reservation on the same row.
func (r *Repository) Reserve(ctx context.Context, productID uuid.UUID, qty int) error {
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "reservation quantity must be positive")
	}

	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND quantity >= ?", productID, qty).
		UpdateColumns(map[string]any{
			"quantity": gorm.Expr("quantity - ?", qty),
			"status": gorm.Expr(
				"CASE WHEN quantity - ? > 0 THEN ? ELSE ? END",
				qty, enums.ProductStatusAvailable, enums.ProductStatusSoldOut,
			),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	product, err := r.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return err
	}
	return ErrInsufficientStock(product.Name, product.Quantity, qty)
}

// Release returns reserved stock, e.g. when an order is cancelled.
func (r *Repository) Release(ctx context.Context, productID uuid.UUID, qty int) error {
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "release quantity must be positive")
	}
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumns(map[string]any{
			"quantity": gorm.Expr("quantity + ?", qty),
			"status":   enums.ProductStatusAvailable,
		}).
		Error
}

// ErrInsufficientStock carries the shortfall detail clients need to correct
// the request without a retry loop.
func ErrInsufficientStock(productName string, available, requested int) *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeValidation, "insufficient stock for "+productName).
		WithDetails(map[string]any{
			"product":   productName,
			"available": available,
			"requested": requested,
		})
}
