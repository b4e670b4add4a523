package storage

import (
	"encoding/json"

	"github.com/thexant/galaxygame/internal/entity"
)

// rowScanner is the part of sql.Row and sql.Rows the load helpers
// need, so single and multi row loads share one scan function.
type rowScanner interface {
	Scan(dest ...any) error
}

// rowValues turns an entity record into a column map for SetMap. The
// id never appears as a column value, and each named key is flattened
// to its JSON text. Keys listed in nullable that the record does not
// carry are written as NULL so a later save clears the column rather
// than leaving a stale value behind.
func rowValues(rec entity.Record, jsonKeys []string, nullable []string) map[string]any {
	vals := make(map[string]any, len(rec))
	for k, v := range rec {
		if k == "id" {
			continue
		}
		vals[k] = v
	}
	for _, k := range jsonKeys {
		vals[k] = jsonText(rec[k])
	}
	for _, k := range nullable {
		if _, ok := vals[k]; !ok {
			vals[k] = nil
		}
	}
	return vals
}

// jsonText marshals a record fragment for a TEXT column. A nil value
// becomes the literal "null", which decodeJSON maps back to nil.
func jsonText(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(data)
}

// decodeJSON rehydrates a JSON column into the loosely typed shapes
// the record accessors already tolerate: map[string]any, []any,
// float64, string, bool.
func decodeJSON(text string) any {
	if text == "" {
		return nil
	}
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil
	}
	return v
}
