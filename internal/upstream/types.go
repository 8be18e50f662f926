package upstream

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrXUIDNotFound means Grunt could not resolve the gamertag.
	ErrXUIDNotFound = errors.New("xuid not found for gamertag")
	// ErrInvalidJSON means a 2xx reply whose body is not a JSON object.
	ErrInvalidJSON = errors.New("invalid JSON from upstream")
)

// StatusError is returned when Grunt answers with a non-2xx status.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream %s returned status %d", e.Endpoint, e.StatusCode)
}

// Rating is a normalized Grunt rating reply. Nil fields were absent, null or
// unusable in the upstream body.
type Rating struct {
	CSR  *int
	Tier *string
}

type ratingBody struct {
	CSR  json.RawMessage `json:"csr"`
	Tier json.RawMessage `json:"tier"`
}

type xuidBody struct {
	XUID json.RawMessage `json:"xuid"`
}

// decodeObject unmarshals body into v, requiring a JSON object.
func decodeObject(body []byte, v any) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return ErrInvalidJSON
	}
	if err := json.Unmarshal(trimmed, v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidJSON, err)
	}
	return nil
}

func decodeRating(body []byte) (*Rating, error) {
	var raw ratingBody
	if err := decodeObject(body, &raw); err != nil {
		return nil, err
	}
	return &Rating{
		CSR:  parseCSR(raw.CSR),
		Tier: parseString(raw.Tier),
	}, nil
}

// parseCSR accepts a JSON number or a numeric string. Non-finite values and
// any other JSON type yield nil. Fractional ratings are rounded.
func parseCSR(raw json.RawMessage) *int {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var f float64
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil
		}
		f = v
	default:
		if err := json.Unmarshal(raw, &f); err != nil {
			return nil
		}
	}

	if math.IsNaN(f) || math.IsInf(f, 0) || f > math.MaxInt32 || f < math.MinInt32 {
		return nil
	}
	csr := int(math.Round(f))
	return &csr
}

// parseString returns the JSON string in raw, or nil for any other type.
func parseString(raw json.RawMessage) *string {
	if len(raw) == 0 || raw[0] != '"' {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	return &s
}

// parseXUID accepts the xuid as a JSON string or a bare number.
func parseXUID(raw json.RawMessage) string {
	if s := parseString(raw); s != nil {
		return strings.TrimSpace(*s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return ""
	}
	return n.String()
}
