package prediction

import (
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"sort"
	"strconv"
	"strings"

	"github.com/agrilinkhq/agrilink-backend/pkg/enums"
)

// Local heuristic tables. Values are rough agronomy ballparks, good enough to
// keep clients functional while the model service is down.
var cropDiseases = map[string][]string{
	"tomato": {"early blight", "late blight", "leaf curl virus"},
	"potato": {"late blight", "black scurf"},
	"rice":   {"blast", "bacterial leaf blight", "sheath blight"},
	"wheat":  {"leaf rust", "powdery mildew"},
	"maize":  {"northern leaf blight", "common rust"},
}

var defaultDiseases = []string{"leaf spot", "root rot", "powdery mildew"}

var diseaseRecommendations = map[string][]string{
	"early blight":          {"remove affected foliage", "apply a copper-based fungicide", "avoid overhead watering"},
	"late blight":           {"destroy infected plants", "apply fungicide before rain", "improve field drainage"},
	"leaf curl virus":       {"control whitefly vectors", "remove infected plants", "use resistant varieties"},
	"blast":                 {"apply tricyclazole", "avoid excess nitrogen", "maintain field water level"},
	"bacterial leaf blight": {"use certified seed", "drain the field", "apply balanced fertilizer"},
	"leaf rust":             {"apply propiconazole", "monitor neighboring fields", "plant resistant varieties next season"},
}

var defaultRecommendations = []string{"isolate affected plants", "consult a local extension officer", "monitor the crop daily"}

var seasonDiseaseRisk = map[string]float64{
	"monsoon": 0.15,
	"summer":  0.05,
	"spring":  0.0,
	"winter":  -0.05,
}

var weatherDiseaseRisk = map[string]float64{
	"humid": 0.10,
	"rainy": 0.10,
	"dry":   -0.05,
	"sunny": 0.0,
}

// Tonnes per hectare baselines.
var cropBaseYield = map[string]float64{
	"rice":   3.8,
	"wheat":  3.2,
	"maize":  5.5,
	"tomato": 24.0,
	"potato": 20.0,
	"onion":  16.0,
}

const defaultBaseYield = 4.0

var soilYieldFactor = map[string]float64{
	"alluvial": 1.15,
	"loamy":    1.10,
	"black":    1.05,
	"clay":     0.95,
	"red":      0.90,
	"sandy":    0.80,
}

var seasonYieldFactor = map[string]float64{
	"monsoon": 1.10,
	"winter":  1.05,
	"spring":  1.0,
	"summer":  0.90,
}

// Fallback computes a local heuristic result when the model service is
// unreachable. The same kind and input always produce the same result.
func Fallback(kind enums.PredictionKind, input map[string]any) map[string]any {
	rng := rand.New(rand.NewSource(fallbackSeed(kind, input)))
	switch kind {
	case enums.PredictionKindYield:
		return yieldFallback(input, rng)
	default:
		return diseaseFallback(input, rng)
	}
}

func diseaseFallback(input map[string]any, rng *rand.Rand) map[string]any {
	crop := stringField(input, "crop")
	candidates, ok := cropDiseases[crop]
	if !ok {
		candidates = defaultDiseases
	}
	disease := candidates[rng.Intn(len(candidates))]

	confidence := 0.55 + rng.Float64()*0.30
	confidence += seasonDiseaseRisk[stringField(input, "season")]
	confidence += weatherDiseaseRisk[stringField(input, "weather")]
	confidence = clamp(confidence, 0.30, 0.95)

	severity := "low"
	if confidence >= 0.75 {
		severity = "high"
	} else if confidence >= 0.55 {
		severity = "moderate"
	}

	recommendations, ok := diseaseRecommendations[disease]
	if !ok {
		recommendations = defaultRecommendations
	}

	return map[string]any{
		"disease":         disease,
		"confidence":      round2(confidence),
		"severity":        severity,
		"recommendations": recommendations,
		"mock":            true,
	}
}

func yieldFallback(input map[string]any, rng *rand.Rand) map[string]any {
	crop := stringField(input, "crop")
	base, ok := cropBaseYield[crop]
	if !ok {
		base = defaultBaseYield
	}

	perHectare := base
	if factor, ok := soilYieldFactor[stringField(input, "soil_type")]; ok {
		perHectare *= factor
	}
	if factor, ok := seasonYieldFactor[stringField(input, "season")]; ok {
		perHectare *= factor
	}
	perHectare *= 0.90 + rng.Float64()*0.20

	area := floatField(input, "area_hectares")
	if area <= 0 {
		area = 1
	}

	return map[string]any{
		"yield_per_hectare_tonnes": round2(perHectare),
		"estimated_yield_tonnes":   round2(perHectare * area),
		"area_hectares":            area,
		"confidence":               round2(clamp(0.50+rng.Float64()*0.25, 0.30, 0.95)),
		"mock":                     true,
	}
}

func fallbackSeed(kind enums.PredictionKind, input map[string]any) int64 {
	keys := make([]string, 0, len(input))
	for key := range input {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	h := fnv.New64a()
	_, _ = h.Write([]byte(kind))
	for _, key := range keys {
		_, _ = fmt.Fprintf(h, ";%s=%v", key, input[key])
	}
	return int64(h.Sum64())
}

func stringField(input map[string]any, key string) string {
	value, _ := input[key].(string)
	return strings.ToLower(strings.TrimSpace(value))
}

func floatField(input map[string]any, key string) float64 {
	switch value := input[key].(type) {
	case float64:
		return value
	case int:
		return float64(value)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}

func clamp(value, low, high float64) float64 {
	return math.Min(high, math.Max(low, value))
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
