// ABOUTME: Collection payload decoding for remote fetch responses
// ABOUTME: Accepts both bare JSON arrays and an {"items": [...]} envelope
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DecodeCollection parses a collection response body. The backend returns
// either a bare array of records or an envelope with an "items" field; both
// shapes must be accepted.
func DecodeCollection[E any](data []byte) ([]E, error) {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []E
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("failed to decode collection array: %w", err)
		}
		return items, nil
	}

	var envelope struct {
		Items []E `json:"items"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode collection envelope: %w", err)
	}
	return envelope.Items, nil
}
