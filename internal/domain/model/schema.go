package model

import (
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"slices"
	"time"
)

// Kind is the semantic type of a provider field.
type Kind int

// Field kinds.
const (
	KindInteger Kind = iota
	KindString
	KindReal
	KindBool
	KindStringList
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindString:
		return "string"
	case KindReal:
		return "real"
	case KindBool:
		return "boolean"
	case KindStringList:
		return "list of string"
	default:
		return "unknown"
	}
}

// Field describes one public provider attribute.
type Field struct {
	Name string
	Kind Kind
}

// Rating bounds enforced at decode time.
const (
	MinRating = 0.0
	MaxRating = 5.0
)

// BirthDateLayout is the accepted birth_date format.
const BirthDateLayout = time.DateOnly

const (
	actualUnknown = "unknown key"
	actualMissing = "missing"
)

// fields is the expected-type table, in public serialization order.
var fields = []Field{
	{"id", KindInteger},
	{"first_name", KindString},
	{"last_name", KindString},
	{"sex", KindString},
	{"birth_date", KindString},
	{"rating", KindReal},
	{"primary_skills", KindStringList},
	{"secondary_skill", KindStringList},
	{"company", KindString},
	{"active", KindBool},
	{"country", KindString},
	{"language", KindString},
}

var fieldKinds = func() map[string]Kind {
	m := make(map[string]Kind, len(fields))
	for _, f := range fields {
		m[f.Name] = f.Kind
	}
	return m
}()

// Fields returns the provider schema in serialization order.
func Fields() []Field {
	out := make([]Field, len(fields))
	copy(out, fields)
	return out
}

// FieldNames returns the public attribute names in serialization order.
func FieldNames() []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.Name
	}
	return out
}

// FieldKind looks up the kind of a public attribute.
func FieldKind(name string) (Kind, bool) {
	k, ok := fieldKinds[name]
	return k, ok
}

// Decode validates one raw attribute map against the schema and builds a
// Provider. index is only used for error reporting.
func Decode(index int, raw map[string]any) (Provider, error) {
	for _, key := range slices.Sorted(maps.Keys(raw)) {
		v := raw[key]
		kind, ok := FieldKind(key)
		if !ok {
			return Provider{}, schemaError(index, key, "no such field", actualUnknown)
		}
		if !matches(kind, v) {
			return Provider{}, schemaError(index, key, kind.String(), describe(v))
		}
	}
	for _, f := range fields {
		if _, ok := raw[f.Name]; !ok {
			return Provider{}, schemaError(index, f.Name, f.Kind.String(), actualMissing)
		}
	}

	p := Provider{
		ID:             int(asInt(raw["id"])),
		FirstName:      raw["first_name"].(string),
		LastName:       raw["last_name"].(string),
		Sex:            raw["sex"].(string),
		BirthDate:      raw["birth_date"].(string),
		Rating:         asFloat(raw["rating"]),
		PrimarySkills:  asStrings(raw["primary_skills"]),
		SecondarySkill: asStrings(raw["secondary_skill"]),
		Company:        raw["company"].(string),
		Active:         raw["active"].(bool),
		Country:        raw["country"].(string),
		Language:       raw["language"].(string),
	}

	born, err := time.Parse(BirthDateLayout, p.BirthDate)
	if err != nil {
		return Provider{}, schemaError(index, "birth_date", "ISO date (YYYY-MM-DD)", fmt.Sprintf("%q", p.BirthDate))
	}
	p.born = born

	if math.IsNaN(p.Rating) || p.Rating < MinRating || p.Rating > MaxRating {
		return Provider{}, schemaError(index, "rating", fmt.Sprintf("real in [%g, %g]", MinRating, MaxRating), fmt.Sprintf("%g", p.Rating))
	}
	return p, nil
}

func matches(kind Kind, v any) bool {
	switch kind {
	case KindInteger:
		_, ok := toInt(v)
		return ok
	case KindString:
		_, ok := v.(string)
		return ok
	case KindReal:
		_, ok := toFloat(v)
		return ok
	case KindBool:
		_, ok := v.(bool)
		return ok
	case KindStringList:
		_, ok := toStrings(v)
		return ok
	}
	return false
}

// toInt accepts Go integers, integral json.Number values and integral
// float64 values (plain encoding/json decoding).
func toInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	case float64:
		// float64(math.MaxInt64) rounds up to 2^63, so the upper bound is exclusive.
		if n != math.Trunc(n) || n < math.MinInt64 || n >= math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func toStrings(v any) ([]string, bool) {
	switch l := v.(type) {
	case []string:
		return append([]string(nil), l...), true
	case []any:
		out := make([]string, 0, len(l))
		for _, item := range l {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}

func asInt(v any) int64 {
	n, _ := toInt(v)
	return n
}

func asFloat(v any) float64 {
	f, _ := toFloat(v)
	return f
}

func asStrings(v any) []string {
	l, _ := toStrings(v)
	return l
}

// describe names the dynamic type of a decoded value for error messages.
func describe(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case int, int32, int64, uint64:
		return "integer"
	case json.Number:
		if _, err := t.Int64(); err == nil {
			return "integer"
		}
		return "real"
	case float32, float64:
		return "real"
	case []any, []string:
		return "list"
	case map[string]any:
		return "object"
	}
	return fmt.Sprintf("%T", v)
}
