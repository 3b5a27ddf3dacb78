package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/agrilinkhq/agrilink-backend/pkg/enums"
	"github.com/agrilinkhq/agrilink-backend/pkg/types"
)

// Order is scoped to exactly one farmer. A multi-farmer cart always splits
// into multiple orders at checkout. Only Status and CancelReason mutate after
// creation.
type Order struct {
	ID              uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ConsumerID      uuid.UUID             `gorm:"column:consumer_id;type:uuid;not null;index"`
	FarmerID        uuid.UUID             `gorm:"column:farmer_id;type:uuid;not null;index"`
	Items           []OrderItem           `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	TotalAmount     decimal.Decimal       `gorm:"column:total_amount;type:numeric(12,2);not null"`
	Status          enums.OrderStatus     `gorm:"column:status;not null;default:'pending'"`
	PaymentMethod   enums.PaymentMethod   `gorm:"column:payment_method;not null"`
	ShippingDetails types.ShippingDetails `gorm:"column:shipping_details;type:jsonb;serializer:json"`
	Notes           *string               `gorm:"column:notes"`
	CancelReason    *string               `gorm:"column:cancel_reason"`
	CreatedAt       time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
