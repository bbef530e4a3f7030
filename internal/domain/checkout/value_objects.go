package checkout

import (
	"sort"
	"strings"
)

// Address is a shipping or billing address. Structural completeness (all
// required fields non-empty) gates wizard progression; deliverability
// checks are not this service's concern.
type Address struct {
	FullName   string `json:"full_name"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Phone      string `json:"phone"`
}

// FieldErrors maps field names to messages so the caller can surface
// per-field validation failures instead of one opaque form error.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return "invalid fields: " + strings.Join(fields, ", ")
}

// Validate reports every missing required field at once.
func (a Address) Validate() error {
	fields := FieldErrors{}
	if strings.TrimSpace(a.FullName) == "" {
		fields["full_name"] = "full name is required"
	}
	if strings.TrimSpace(a.Line1) == "" {
		fields["line1"] = "address line is required"
	}
	if strings.TrimSpace(a.City) == "" {
		fields["city"] = "city is required"
	}
	if strings.TrimSpace(a.PostalCode) == "" {
		fields["postal_code"] = "postal code is required"
	}
	if strings.TrimSpace(a.Country) == "" {
		fields["country"] = "country is required"
	}
	if strings.TrimSpace(a.Phone) == "" {
		fields["phone"] = "phone is required"
	}
	if len(fields) > 0 {
		return fields
	}
	return nil
}
