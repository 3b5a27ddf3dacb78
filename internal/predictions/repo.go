package prediction

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agrilinkhq/agrilink-backend/pkg/db/models"
	"github.com/agrilinkhq/agrilink-backend/pkg/pagination"
)

// Repository persists the per-farmer prediction history.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a history record.
func (r *Repository) Create(ctx context.Context, record *models.Prediction) (*models.Prediction, error) {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

// ListByFarmer returns the farmer's history page, newest first.
func (r *Repository) ListByFarmer(ctx context.Context, farmerID uuid.UUID, page pagination.Params) ([]models.Prediction, error) {
	page = page.Normalize()
	var out []models.Prediction
	err := r.db.WithContext(ctx).
		Where("farmer_id = ?", farmerID).
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
