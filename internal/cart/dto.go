package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/agrilinkhq/agrilink-backend/pkg/db/models"
)

// CartDTO is the staging area returned to consumers. Total is recomputed
// from live listing prices on every read, never stored.
type CartDTO struct {
	ID         uuid.UUID     `json:"id"`
	ConsumerID uuid.UUID     `json:"consumer_id"`
	Items      []CartItemDTO `json:"items"`
	Total      string        `json:"total"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// CartItemDTO is one line with a live view of the underlying listing.
type CartItemDTO struct {
	ID          uuid.UUID `json:"id"`
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	FarmerID    uuid.UUID `json:"farmer_id"`
	Unit        string    `json:"unit"`
	UnitPrice   string    `json:"unit_price"`
	Quantity    int       `json:"quantity"`
	LineTotal   string    `json:"line_total"`
	Available   int       `json:"available"`
	Status      string    `json:"status"`
}

// NewCartDTO builds the response view. Lines whose product row no longer
// exists are skipped; checkout re-validates against the catalog anyway.
func NewCartDTO(cart *models.Cart) *CartDTO {
	dto := &CartDTO{
		ID:         cart.ID,
		ConsumerID: cart.ConsumerID,
		Items:      make([]CartItemDTO, 0, len(cart.Items)),
		UpdatedAt:  cart.UpdatedAt,
	}

	total := decimal.Zero
	for _, item := range cart.Items {
		if item.Product == nil {
			continue
		}
		lineTotal := item.Product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(lineTotal)
		dto.Items = append(dto.Items, CartItemDTO{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.Product.Name,
			FarmerID:    item.Product.FarmerID,
			Unit:        string(item.Product.Unit),
			UnitPrice:   item.Product.Price.StringFixed(2),
			Quantity:    item.Quantity,
			LineTotal:   lineTotal.StringFixed(2),
			Available:   item.Product.Quantity,
			Status:      string(item.Product.Status),
		})
	}
	dto.Total = total.StringFixed(2)
	return dto
}

// EmptyCartDTO is the view for a consumer who has no cart row yet.
func EmptyCartDTO(consumerID uuid.UUID) *CartDTO {
	return &CartDTO{
		ConsumerID: consumerID,
		Items:      []CartItemDTO{},
		Total:      decimal.Zero.StringFixed(2),
	}
}
