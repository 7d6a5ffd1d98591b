// Package traits implements the trait query language and the filter that
// evaluates it against provider records.
//
// A trait query is a comma separated list of clauses, each of the form
// key:value1|value2. Keys and values are case-insensitive. The synthetic key
// age accepts an integer or an inclusive range such as 30-40.
package traits

import (
	"slices"
	"strings"
)

// Spec maps a lower-cased trait name to its accepted lower-cased values.
type Spec map[string][]string

const (
	clauseSep = ","
	keySep    = ":"
	valueSep  = "|"

	clauseHint = "clauses look like key:value1|value2, separated by commas"
)

// Parse turns a trait query into a Spec. A blank query yields an empty Spec.
// Repeated keys merge their value sets.
func Parse(query string) (Spec, error) {
	spec := Spec{}
	if strings.TrimSpace(query) == "" {
		return spec, nil
	}
	for _, clause := range strings.Split(query, clauseSep) {
		if strings.Count(clause, keySep) != 1 {
			return nil, parseError(clause, "expected exactly one ':'", clauseHint)
		}
		rawKey, rawValues, _ := strings.Cut(clause, keySep)
		key := strings.ToLower(strings.TrimSpace(rawKey))
		if key == "" {
			return nil, parseError(clause, "empty key", clauseHint)
		}

		var values []string
		for _, v := range strings.Split(rawValues, valueSep) {
			v = strings.ToLower(strings.TrimSpace(v))
			if v != "" {
				values = append(values, v)
			}
		}
		if len(values) == 0 {
			return nil, parseError(clause, "empty value list", clauseHint)
		}

		for _, v := range values {
			if !slices.Contains(spec[key], v) {
				spec[key] = append(spec[key], v)
			}
		}
	}
	return spec, nil
}

// String renders the spec back into query form with keys sorted.
func (s Spec) String() string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	clauses := make([]string, 0, len(keys))
	for _, k := range keys {
		clauses = append(clauses, k+keySep+strings.Join(s[k], valueSep))
	}
	return strings.Join(clauses, clauseSep)
}
