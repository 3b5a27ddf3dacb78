package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agrilinkhq/agrilink-backend/pkg/db/models"
	"github.com/agrilinkhq/agrilink-backend/pkg/pagination"
)

// Repository exposes persistence operations for the order ledger.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an order repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Create inserts the order with its line items in one statement batch.
func (r *Repository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// FindByID loads the order with its line items.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_items.created_at ASC")
		}).
		First(&order, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListByConsumer returns the consumer's orders, newest first.
func (r *Repository) ListByConsumer(ctx context.Context, consumerID uuid.UUID, page pagination.Params) ([]models.Order, error) {
	return r.list(ctx, "consumer_id = ?", consumerID, page)
}

// ListByFarmer returns orders addressed to the farmer, newest first.
func (r *Repository) ListByFarmer(ctx context.Context, farmerID uuid.UUID, page pagination.Params) ([]models.Order, error) {
	return r.list(ctx, "farmer_id = ?", farmerID, page)
}

func (r *Repository) list(ctx context.Context, cond string, id uuid.UUID, page pagination.Params) ([]models.Order, error) {
	page = page.Normalize()
	var out []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where(cond, id).
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

// Save persists status and cancel reason mutations.
func (r *Repository) Save(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Save(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}
