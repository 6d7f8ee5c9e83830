package dto

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Number accepts a JSON number or a numeric string. Anything else decodes
// without error but leaves Valid false, so a batch can be rejected with a
// validation message instead of a parse failure.
type Number struct {
	Value float64
	Valid bool
}

func (n *Number) UnmarshalJSON(b []byte) error {
	n.Value, n.Valid = 0, false
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}

	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		n.Value, n.Valid = f, true
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	n.Value, n.Valid = f, true
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

func NewNumber(f float64) Number {
	return Number{Value: f, Valid: true}
}

type ThresholdInput struct {
	FieldName string  `json:"fieldName"`
	MinValue  Number  `json:"minValue"`
	MaxValue  Number  `json:"maxValue"`
	Unit      *string `json:"unit"`
}

type SaveThresholdsRequest struct {
	ChannelID  Number            `json:"channelId"`
	Thresholds *[]ThresholdInput `json:"thresholds"`
}

type SaveDefaultsRequest struct {
	Fields *[]ThresholdInput `json:"fields"`
}

type ThresholdResponse struct {
	FieldName string  `json:"fieldName"`
	MinValue  float64 `json:"minValue"`
	MaxValue  float64 `json:"maxValue"`
	Unit      *string `json:"unit"`
}

type ThresholdsResponse struct {
	Thresholds []ThresholdResponse `json:"thresholds"`
}

type DefaultsResponse struct {
	Fields []ThresholdResponse `json:"fields"`
}
