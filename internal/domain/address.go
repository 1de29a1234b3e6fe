package domain

import "strings"

type Address struct {
	Street       string `json:"street"`
	Number       string `json:"number"`
	Neighborhood string `json:"neighborhood"`
	Reference    string `json:"reference,omitempty"`
	ZipCode      string `json:"zip_code,omitempty"`
}

// Complete reports whether every field required for delivery is non-blank.
func (a Address) Complete() bool {
	return len(a.MissingFields()) == 0
}

func (a Address) MissingFields() []string {
	var missing []string
	if strings.TrimSpace(a.Street) == "" {
		missing = append(missing, "street")
	}
	if strings.TrimSpace(a.Number) == "" {
		missing = append(missing, "number")
	}
	if strings.TrimSpace(a.Neighborhood) == "" {
		missing = append(missing, "neighborhood")
	}
	return missing
}
