package prediction

import (
	"math"
	"reflect"
	"testing"

	"github.com/agrilinkhq/agrilink-backend/pkg/enums"
)

func TestFallbackDeterministicForSameInput(t *testing.T) {
	t.Parallel()

	input := map[string]any{"crop": "tomato", "season": "monsoon", "weather": "humid"}
	first := Fallback(enums.PredictionKindDisease, input)
	second := Fallback(enums.PredictionKindDisease, input)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical results, got %+v vs %+v", first, second)
	}
}

func TestDiseaseFallbackUsesCropTable(t *testing.T) {
	t.Parallel()

	result := Fallback(enums.PredictionKindDisease, map[string]any{"crop": "Tomato"})
	disease, _ := result["disease"].(string)
	known := false
	for _, candidate := range cropDiseases["tomato"] {
		if candidate == disease {
			known = true
		}
	}
	if !known {
		t.Fatalf("expected a tomato disease, got %q", disease)
	}
	if mock, _ := result["mock"].(bool); !mock {
		t.Fatal("fallback must be marked mock")
	}
	confidence, _ := result["confidence"].(float64)
	if confidence < 0.30 || confidence > 0.95 {
		t.Fatalf("confidence out of range: %v", confidence)
	}
}

func TestYieldFallbackScalesWithArea(t *testing.T) {
	t.Parallel()

	result := Fallback(enums.PredictionKindYield, map[string]any{
		"crop":          "rice",
		"soil_type":     "alluvial",
		"area_hectares": 3.0,
	})
	perHectare, _ := result["yield_per_hectare_tonnes"].(float64)
	total, _ := result["estimated_yield_tonnes"].(float64)
	if perHectare <= 0 || total <= 0 {
		t.Fatalf("expected positive yields, got %+v", result)
	}
	if math.Abs(total-3*perHectare) > 0.05 {
		t.Fatalf("total %v must be area times per-hectare %v", total, perHectare)
	}
}
