package catalog

import (
	"encoding/json"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/agentstation/catalogmirror/pkg/errors"
)

// Availability is the stock status of a product as reported by its manufacturer.
type Availability int

// Availability values. The numeric values are persisted in the available column.
const (
	AvailabilityUnknown Availability = iota
	AvailabilityOutOfStock
	AvailabilityLessThan10
	AvailabilityInStock
)

var availabilityNames = map[Availability]string{
	AvailabilityUnknown:    "UNKNOWN",
	AvailabilityOutOfStock: "OUT_OF_STOCK",
	AvailabilityLessThan10: "LESS_THAN_10",
	AvailabilityInStock:    "IN_STOCK",
}

// availabilityTokens maps the manufacturer feed's INSTOCKVALUE tokens.
var availabilityTokens = map[string]Availability{
	"INSTOCK":    AvailabilityInStock,
	"OUTOFSTOCK": AvailabilityOutOfStock,
	"LESSTHAN10": AvailabilityLessThan10,
}

var titleCaser = cases.Title(language.English)

// String returns the enum name, e.g. IN_STOCK.
func (a Availability) String() string {
	if name, ok := availabilityNames[a]; ok {
		return name
	}
	return availabilityNames[AvailabilityUnknown]
}

// Pretty returns a human-readable form, e.g. "In Stock".
func (a Availability) Pretty() string {
	return titleCaser.String(strings.ReplaceAll(strings.ToLower(a.String()), "_", " "))
}

// Valid reports whether a is one of the known values.
func (a Availability) Valid() bool {
	_, ok := availabilityNames[a]
	return ok
}

// AvailabilityFromToken maps a feed token to a status. Unrecognized tokens,
// including the empty string, map to AvailabilityUnknown.
func AvailabilityFromToken(token string) Availability {
	if a, ok := availabilityTokens[token]; ok {
		return a
	}
	return AvailabilityUnknown
}

// ParseAvailability parses an enum name such as IN_STOCK.
func ParseAvailability(s string) (Availability, bool) {
	for a, name := range availabilityNames {
		if strings.EqualFold(name, s) {
			return a, true
		}
	}
	return AvailabilityUnknown, false
}

// MarshalJSON encodes the status by name.
func (a Availability) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}

// UnmarshalJSON accepts the enum name.
func (a *Availability) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, ok := ParseAvailability(s)
	if !ok {
		return errors.NewValidationError("available", s, "unknown availability")
	}
	*a = v
	return nil
}

// MarshalYAML encodes the status by name.
func (a Availability) MarshalYAML() (any, error) {
	return a.String(), nil
}
