package types

import "strings"

// ShippingDetails is the delivery address captured at checkout and frozen on
// the resulting orders. Persisted as jsonb.
type ShippingDetails struct {
	FullName   string `json:"full_name"`
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Phone      string `json:"phone"`
}

// MissingFields lists the required shipping fields that are blank.
func (s ShippingDetails) MissingFields() []string {
	fields := []struct {
		name  string
		value string
	}{
		{"full_name", s.FullName},
		{"address", s.Address},
		{"city", s.City},
		{"state", s.State},
		{"postal_code", s.PostalCode},
		{"phone", s.Phone},
	}

	missing := []string{}
	for _, field := range fields {
		if strings.TrimSpace(field.value) == "" {
			missing = append(missing, field.name)
		}
	}
	return missing
}
