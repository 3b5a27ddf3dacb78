package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/agrilinkhq/agrilink-backend/pkg/db/models"
	"github.com/agrilinkhq/agrilink-backend/pkg/types"
)

// OrderDTO is the ledger entry returned to consumers and farmers.
type OrderDTO struct {
	ID              uuid.UUID             `json:"id"`
	ConsumerID      uuid.UUID             `json:"consumer_id"`
	FarmerID        uuid.UUID             `json:"farmer_id"`
	Items           []OrderItemDTO        `json:"items"`
	TotalAmount     string                `json:"total_amount"`
	Status          string                `json:"status"`
	PaymentMethod   string                `json:"payment_method"`
	ShippingDetails types.ShippingDetails `json:"shipping_details"`
	Notes           *string               `json:"notes,omitempty"`
	CancelReason    *string               `json:"cancel_reason,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

// OrderItemDTO is a frozen product snapshot line.
type OrderItemDTO struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	UnitPrice   string    `json:"unit_price"`
	Quantity    int       `json:"quantity"`
	LineTotal   string    `json:"line_total"`
}

// NewOrderDTO builds a DTO from the persisted model.
func NewOrderDTO(order *models.Order) *OrderDTO {
	dto := &OrderDTO{
		ID:              order.ID,
		ConsumerID:      order.ConsumerID,
		FarmerID:        order.FarmerID,
		Items:           make([]OrderItemDTO, len(order.Items)),
		TotalAmount:     order.TotalAmount.StringFixed(2),
		Status:          string(order.Status),
		PaymentMethod:   string(order.PaymentMethod),
		ShippingDetails: order.ShippingDetails,
		Notes:           order.Notes,
		CancelReason:    order.CancelReason,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
	for i, item := range order.Items {
		dto.Items[i] = OrderItemDTO{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			UnitPrice:   item.UnitPrice.StringFixed(2),
			Quantity:    item.Quantity,
			LineTotal:   item.UnitPrice.Mul(decimalFromInt(item.Quantity)).StringFixed(2),
		}
	}
	return dto
}

// NewOrderDTOs maps a page of models.
func NewOrderDTOs(orders []models.Order) []OrderDTO {
	out := make([]OrderDTO, len(orders))
	for i := range orders {
		out[i] = *NewOrderDTO(&orders[i])
	}
	return out
}
