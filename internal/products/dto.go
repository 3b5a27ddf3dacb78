package product

import (
	"time"

	"github.com/google/uuid"

	"github.com/agrilinkhq/agrilink-backend/pkg/db/models"
)

// ProductDTO is the listing payload returned to clients. Price is serialized
// as a decimal string to avoid float drift on the wire.
type ProductDTO struct {
	ID          uuid.UUID `json:"id"`
	FarmerID    uuid.UUID `json:"farmer_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Category    string    `json:"category"`
	Unit        string    `json:"unit"`
	Price       string    `json:"price"`
	Quantity    int       `json:"quantity"`
	Status      string    `json:"status"`
	ImageURL    *string   `json:"image_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewProductDTO builds a DTO from the persisted model.
func NewProductDTO(product *models.Product) *ProductDTO {
	return &ProductDTO{
		ID:          product.ID,
		FarmerID:    product.FarmerID,
		Name:        product.Name,
		Description: product.Description,
		Category:    string(product.Category),
		Unit:        string(product.Unit),
		Price:       product.Price.StringFixed(2),
		Quantity:    product.Quantity,
		Status:      string(product.Status),
		ImageURL:    product.ImageURL,
		CreatedAt:   product.CreatedAt,
		UpdatedAt:   product.UpdatedAt,
	}
}

// NewProductDTOs maps a page of models.
func NewProductDTOs(products []models.Product) []ProductDTO {
	out := make([]ProductDTO, len(products))
	for i := range products {
		out[i] = *NewProductDTO(&products[i])
	}
	return out
}
