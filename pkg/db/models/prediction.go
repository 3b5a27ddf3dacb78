package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/agrilinkhq/agrilink-backend/pkg/enums"
)

// Prediction records every scoring attempt for a farmer, whether answered by
// the remote model service or the local fallback.
type Prediction struct {
	ID        uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	FarmerID  uuid.UUID            `gorm:"column:farmer_id;type:uuid;not null;index"`
	Kind      enums.PredictionKind `gorm:"column:kind;not null"`
	Input     map[string]any       `gorm:"column:input;type:jsonb;serializer:json"`
	Result    map[string]any       `gorm:"column:result;type:jsonb;serializer:json"`
	Mock      bool                 `gorm:"column:mock;not null;default:false"`
	CreatedAt time.Time            `gorm:"column:created_at;autoCreateTime"`
}
