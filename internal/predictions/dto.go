package prediction

import (
	"time"

	"github.com/google/uuid"

	"github.com/agrilinkhq/agrilink-backend/pkg/db/models"
)

// PredictionDTO is the scoring result payload returned to clients.
type PredictionDTO struct {
	ID        uuid.UUID      `json:"id"`
	Kind      string         `json:"kind"`
	Input     map[string]any `json:"input"`
	Result    map[string]any `json:"result"`
	Mock      bool           `json:"mock"`
	CreatedAt time.Time      `json:"created_at"`
}

// NewPredictionDTO builds a DTO from the persisted history record.
func NewPredictionDTO(record *models.Prediction) *PredictionDTO {
	return &PredictionDTO{
		ID:        record.ID,
		Kind:      string(record.Kind),
		Input:     record.Input,
		Result:    record.Result,
		Mock:      record.Mock,
		CreatedAt: record.CreatedAt,
	}
}

// NewPredictionDTOs maps a history page.
func NewPredictionDTOs(records []models.Prediction) []PredictionDTO {
	out := make([]PredictionDTO, len(records))
	for i := range records {
		out[i] = *NewPredictionDTO(&records[i])
	}
	return out
}
