package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/agrilinkhq/agrilink-backend/pkg/enums"
)

// Product is a farmer's listing. Status is derived from Quantity on every
// write and never accepted from clients.
type Product struct {
	ID          uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	FarmerID    uuid.UUID             `gorm:"column:farmer_id;type:uuid;not null;index"`
	Name        string                `gorm:"column:name;not null"`
	Description *string               `gorm:"column:description"`
	Category    enums.ProductCategory `gorm:"column:category;not null"`
	Unit        enums.ProductUnit     `gorm:"column:unit;not null"`
	Price       decimal.Decimal       `gorm:"column:price;type:numeric(12,2);not null"`
	Quantity    int                   `gorm:"column:quantity;not null"`
	Status      enums.ProductStatus   `gorm:"column:status;not null"`
	ImageURL    *string               `gorm:"column:image_url"`
	CreatedAt   time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
