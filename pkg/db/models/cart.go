package models

import (
	"time"

	"github.com/google/uuid"
)

// Cart is the per-consumer staging area. Exactly one row per consumer; the
// row survives checkout with its items removed.
type Cart struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ConsumerID uuid.UUID  `gorm:"column:consumer_id;type:uuid;not null;uniqueIndex"`
	Items      []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
