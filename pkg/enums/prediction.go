package enums

import "fmt"

// PredictionKind selects which crop model a request targets.
type PredictionKind string

const (
	PredictionKindDisease PredictionKind = "disease"
	PredictionKindYield   PredictionKind = "yield"
)

var validPredictionKinds = []PredictionKind{
	PredictionKindDisease,
	PredictionKindYield,
}

// String implements fmt.Stringer.
func (p PredictionKind) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PredictionKind.
func (p PredictionKind) IsValid() bool {
	for _, candidate := range validPredictionKinds {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePredictionKind converts raw input into a PredictionKind.
func ParsePredictionKind(value string) (PredictionKind, error) {
	for _, candidate := range validPredictionKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid prediction kind %q", value)
}
