package sources

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/agentstation/catalogmirror/pkg/catalog"
	"github.com/agentstation/catalogmirror/pkg/errors"
)

var availabilityPattern = regexp.MustCompile(
	`^<AVAILABILITY>\n  <CODE>200</CODE>\n  <INSTOCKVALUE>(.+)</INSTOCKVALUE>\n</AVAILABILITY>\n?$`)

// ParseAvailability maps a manufacturer DATAPAYLOAD record to a status.
// Anything that does not match the grammar, or carries an unknown token, is
// AvailabilityUnknown.
func ParseAvailability(payload string) catalog.Availability {
	m := availabilityPattern.FindStringSubmatch(payload)
	if len(m) != 2 {
		return catalog.AvailabilityUnknown
	}
	return catalog.AvailabilityFromToken(m[1])
}

type categoryRecord struct {
	ID           string   `json:"id"`
	Type         string   `json:"type"`
	Name         string   `json:"name"`
	Color        []string `json:"color"`
	Price        int      `json:"price"`
	Manufacturer string   `json:"manufacturer"`
}

type manufacturerEnvelope struct {
	Code     *int            `json:"code"`
	Response json.RawMessage `json:"response"`
}

type availabilityRecord struct {
	ID      string `json:"id"`
	Payload string `json:"DATAPAYLOAD"`
}

// DecodeCategory parses a category listing payload. The body must be a JSON
// array; null or an object is a failed fetch, never an empty category.
func DecodeCategory(data []byte) (map[string]catalog.Item, error) {
	if !isJSONArray(data) {
		return nil, errors.NewParseError("json", "category payload", "body is not a list", nil)
	}
	var records []categoryRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, errors.WrapParse("json", "category payload", err)
	}
	items := make(map[string]catalog.Item, len(records))
	for _, r := range records {
		if r.ID == "" {
			return nil, errors.NewParseError("json", "category payload", "record without id", nil)
		}
		item := catalog.NewItem(r.ID, r.Name, r.Color, r.Price, r.Manufacturer)
		items[item.ID] = item
	}
	return items, nil
}

// DecodeManufacturer parses a manufacturer availability payload. The envelope
// must carry code 200 and a response list.
func DecodeManufacturer(data []byte) (map[string]catalog.Availability, error) {
	var env manufacturerEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, errors.WrapParse("json", "manufacturer payload", err)
	}
	if env.Code == nil || *env.Code != 200 {
		return nil, errors.NewParseError("json", "manufacturer payload", "envelope code is not 200", nil)
	}
	if !isJSONArray(env.Response) {
		return nil, errors.NewParseError("json", "manufacturer payload", "response is not a list", nil)
	}

	var records []availabilityRecord
	if err := json.Unmarshal(env.Response, &records); err != nil {
		return nil, errors.WrapParse("json", "manufacturer payload", err)
	}
	out := make(map[string]catalog.Availability, len(records))
	for _, r := range records {
		out[strings.ToLower(r.ID)] = ParseAvailability(r.Payload)
	}
	return out, nil
}

func isJSONArray(data []byte) bool {
	return strings.HasPrefix(strings.TrimSpace(string(data)), "[")
}
