package controllers

import (
	"net/http"

	"github.com/agrilinkhq/agrilink-backend/api/responses"
	"github.com/agrilinkhq/agrilink-backend/api/validators"
	prediction "github.com/agrilinkhq/agrilink-backend/internal/predictions"
	"github.com/agrilinkhq/agrilink-backend/pkg/enums"
	"github.com/agrilinkhq/agrilink-backend/pkg/logger"
)

type predictionRequest struct {
	Input map[string]any `json:"input" validate:"required"`
}

// PredictDisease scores a crop health payload for the calling farmer.
func PredictDisease(svc prediction.Service, logg *logger.Logger) http.HandlerFunc {
	return predict(svc, logg, enums.PredictionKindDisease)
}

// PredictYield estimates harvest volume for the calling farmer.
func PredictYield(svc prediction.Service, logg *logger.Logger) http.HandlerFunc {
	return predict(svc, logg, enums.PredictionKindYield)
}

func predict(svc prediction.Service, logg *logger.Logger, kind enums.PredictionKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		farmerID, err := actorUUID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload predictionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Predict(r.Context(), farmerID, kind, payload.Input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// PredictionHistory serves the farmer's past predictions, newest first.
func PredictionHistory(svc prediction.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		farmerID, err := actorUUID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		history, err := svc.History(r.Context(), farmerID, page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, history)
	}
}
