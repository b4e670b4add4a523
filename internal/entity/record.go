package entity

import "time"

// Record is the flat, round-trippable snapshot form of an entity: field name
// to primitive, nested record slice, or string-keyed table. The accessors
// tolerate the numeric widening a trip through a SQL driver or JSON
// produces, so FromRecord constructors can stay free of type switches.
type Record map[string]any

// Has reports whether the key is present.
func (r Record) Has(key string) bool {
	_, ok := r[key]
	return ok
}

// Str returns the string under key, or "" when absent or not a string.
func (r Record) Str(key string) string {
	s, _ := r[key].(string)
	return s
}

// Int returns the value under key widened to int.
func (r Record) Int(key string) int {
	return int(toInt64(r[key]))
}

// Int64 returns the value under key widened to int64, zero when absent.
func (r Record) Int64(key string) int64 {
	return toInt64(r[key])
}

// Float returns the value under key widened to float64, zero when absent.
func (r Record) Float(key string) float64 {
	return toFloat(r[key])
}

// Bool returns the boolean under key. SQLite hands booleans back as
// integers, so non-zero numerics count as true.
func (r Record) Bool(key string) bool {
	switch v := r[key].(type) {
	case bool:
		return v
	case int64:
		return v != 0
	case int:
		return v != 0
	case float64:
		return v != 0
	}
	return false
}

// Time parses the RFC 3339 timestamp under key, accepting an in-memory
// time.Time as well. Returns the zero time when absent or malformed.
func (r Record) Time(key string) time.Time {
	switch v := r[key].(type) {
	case time.Time:
		return v
	case string:
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Records returns the nested record slice under key. JSON decoding yields
// []any of map[string]any; both shapes are accepted.
func (r Record) Records(key string) []Record {
	switch v := r[key].(type) {
	case []Record:
		return v
	case []any:
		out := make([]Record, 0, len(v))
		for _, el := range v {
			switch m := el.(type) {
			case Record:
				out = append(out, m)
			case map[string]any:
				out = append(out, Record(m))
			}
		}
		return out
	case []map[string]any:
		out := make([]Record, 0, len(v))
		for _, m := range v {
			out = append(out, Record(m))
		}
		return out
	}
	return nil
}

// Sub returns the nested record under key, or nil when absent.
func (r Record) Sub(key string) Record {
	switch v := r[key].(type) {
	case Record:
		return v
	case map[string]any:
		return Record(v)
	}
	return nil
}

// IntMap returns the string-to-int table under key.
func (r Record) IntMap(key string) map[string]int {
	out := make(map[string]int)
	switch v := r[key].(type) {
	case map[string]int:
		for k, n := range v {
			out[k] = n
		}
	case map[string]any:
		for k, raw := range v {
			out[k] = int(toInt64(raw))
		}
	}
	return out
}

// FloatMap returns the string-to-float table under key.
func (r Record) FloatMap(key string) map[string]float64 {
	out := make(map[string]float64)
	switch v := r[key].(type) {
	case map[string]float64:
		for k, f := range v {
			out[k] = f
		}
	case map[string]any:
		for k, raw := range v {
			out[k] = toFloat(raw)
		}
	}
	return out
}

// Int64s returns the integer slice under key.
func (r Record) Int64s(key string) []int64 {
	switch v := r[key].(type) {
	case []int64:
		return append([]int64(nil), v...)
	case []any:
		out := make([]int64, 0, len(v))
		for _, el := range v {
			out = append(out, toInt64(el))
		}
		return out
	}
	return nil
}

// Strs returns the string slice under key.
func (r Record) Strs(key string) []string {
	switch v := r[key].(type) {
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, el := range v {
			if s, ok := el.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case float64:
		return int64(n)
	case float32:
		return int64(n)
	}
	return 0
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return 0
}
