package prediction

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/agrilinkhq/agrilink-backend/pkg/config"
	"github.com/agrilinkhq/agrilink-backend/pkg/db/models"
	"github.com/agrilinkhq/agrilink-backend/pkg/enums"
	pkgerrors "github.com/agrilinkhq/agrilink-backend/pkg/errors"
	"github.com/agrilinkhq/agrilink-backend/pkg/pagination"
)

// Service exposes crop scoring backed by the external model service, with a
// local heuristic fallback when that service is unreachable.
type Service interface {
	Predict(ctx context.Context, farmerID uuid.UUID, kind enums.PredictionKind, input map[string]any) (*PredictionDTO, error)
	History(ctx context.Context, farmerID uuid.UUID, page pagination.Params) ([]PredictionDTO, error)
}

type gateway interface {
	Predict(ctx context.Context, kind enums.PredictionKind, payload map[string]any) (map[string]any, error)
}

type service struct {
	repo   *Repository
	client gateway
	cfg    config.PredictionConfig
}

// NewService constructs a prediction service instance.
func NewService(repo *Repository, client gateway, cfg config.PredictionConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("prediction repository required")
	}
	if client == nil {
		return nil, fmt.Errorf("prediction client required")
	}
	return &service{repo: repo, client: client, cfg: cfg}, nil
}

// Predict scores the input remotely, falling back to the local heuristic on
// connection failure or timeout when the fallback is enabled. Every result is
// written to the farmer's history before it is returned.
func (s *service) Predict(ctx context.Context, farmerID uuid.UUID, kind enums.PredictionKind, input map[string]any) (*PredictionDTO, error) {
	if !kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown prediction kind")
	}
	if len(input) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "prediction input is required")
	}

	result, err := s.client.Predict(ctx, kind, input)
	var mock bool
	switch {
	case err == nil:
		// The service may itself report a mock computation.
		mock, _ = result["mock"].(bool)
		result["mock"] = mock
	default:
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeUpstream {
			return nil, err
		}
		if !s.cfg.FallbackEnabled {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "prediction service unavailable")
		}
		result = Fallback(kind, input)
		mock = true
	}

	record := &models.Prediction{
		FarmerID: farmerID,
		Kind:     kind,
		Input:    input,
		Result:   result,
		Mock:     mock,
	}
	if _, err := s.repo.Create(ctx, record); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert prediction")
	}
	return NewPredictionDTO(record), nil
}

// History returns the farmer's past predictions, newest first.
func (s *service) History(ctx context.Context, farmerID uuid.UUID, page pagination.Params) ([]PredictionDTO, error) {
	records, err := s.repo.ListByFarmer(ctx, farmerID, page)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list predictions")
	}
	return NewPredictionDTOs(records), nil
}
