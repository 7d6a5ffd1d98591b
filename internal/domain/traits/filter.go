package traits

import (
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/okian/providex/internal/domain/model"
)

// Filter evaluates trait specs against provider records. It holds no state
// besides its clock and is safe for concurrent use.
type Filter struct {
	now func() time.Time
}

// Option applies a configuration option to the Filter.
type Option func(*Filter)

// WithClock sets the time source used to compute ages.
func WithClock(now func() time.Time) Option {
	return func(f *Filter) {
		if now != nil {
			f.now = now
		}
	}
}

// NewFilter creates a Filter with configuration options.
func NewFilter(opts ...Option) *Filter {
	f := &Filter{now: time.Now}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

var defaultFilter = NewFilter()

// Evaluate filters records with the wall clock. See Filter.Evaluate.
func Evaluate(records []model.Provider, spec Spec) ([]model.Provider, error) {
	return defaultFilter.Evaluate(records, spec)
}

// predicate reports whether a record satisfies one trait.
type predicate func(p model.Provider, today time.Time) bool

// Evaluate returns the records satisfying every trait in spec, in input
// order. Keys are ANDed; values within a key are ORed. The whole spec is
// validated before any record is examined, so an error never comes with a
// partial result. records is not modified.
func (f *Filter) Evaluate(records []model.Provider, spec Spec) ([]model.Provider, error) {
	preds, err := compile(spec)
	if err != nil {
		return nil, err
	}

	today := f.now()
	out := make([]model.Provider, 0, len(records))
	for _, p := range records {
		if matchAll(p, today, preds) {
			out = append(out, p)
		}
	}
	return out, nil
}

func matchAll(p model.Provider, today time.Time, preds []predicate) bool {
	for _, pred := range preds {
		if !pred(p, today) {
			return false
		}
	}
	return true
}

// compile builds one predicate per key, in sorted key order so that the
// reported error is stable when several keys are invalid.
func compile(spec Spec) ([]predicate, error) {
	keys := make([]string, 0, len(spec))
	for k := range spec {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	preds := make([]predicate, 0, len(keys))
	for _, key := range keys {
		name := strings.ToLower(key)
		attr, err := lookup(name)
		if err != nil {
			return nil, err
		}
		values := lowerAll(spec[key])
		if len(values) == 0 {
			return nil, parseError(name+keySep, "empty value list", clauseHint)
		}

		var pred predicate
		switch attr.kind {
		case ageAttr:
			pred, err = agePredicate(values)
			if err != nil {
				return nil, err
			}
		case listAttr:
			pred = listPredicate(attr.list, values)
		default:
			pred = scalarPredicate(attr.scalar, values)
		}
		preds = append(preds, pred)
	}
	return preds, nil
}

func lowerAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToLower(strings.TrimSpace(v))
	}
	return out
}

// ageRange is an inclusive age interval; exact ages have min == max.
type ageRange struct {
	min, max int
}

func parseAge(token string) (ageRange, error) {
	const hint = "age takes a whole number such as 35 or an inclusive range such as 30-40"
	clause := AgeKey + keySep + token
	if lo, hi, ok := strings.Cut(token, "-"); ok {
		minAge, errLo := strconv.Atoi(strings.TrimSpace(lo))
		maxAge, errHi := strconv.Atoi(strings.TrimSpace(hi))
		if errLo != nil || errHi != nil {
			return ageRange{}, parseError(clause, "malformed age range", hint)
		}
		return ageRange{min: minAge, max: maxAge}, nil
	}
	age, err := strconv.Atoi(strings.TrimSpace(token))
	if err != nil {
		return ageRange{}, parseError(clause, "malformed age", hint)
	}
	return ageRange{min: age, max: age}, nil
}

func agePredicate(values []string) (predicate, error) {
	ranges := make([]ageRange, 0, len(values))
	for _, v := range values {
		r, err := parseAge(v)
		if err != nil {
			return nil, err
		}
		ranges = append(ranges, r)
	}
	return func(p model.Provider, today time.Time) bool {
		age := p.Age(today)
		for _, r := range ranges {
			if r.min <= age && age <= r.max {
				return true
			}
		}
		return false
	}, nil
}

func listPredicate(get func(model.Provider) []string, values []string) predicate {
	return func(p model.Provider, _ time.Time) bool {
		for _, item := range get(p) {
			if slices.Contains(values, strings.ToLower(item)) {
				return true
			}
		}
		return false
	}
}

// scalarPredicate compares numerically when every accepted value parses as
// a number and the stored value does too; otherwise it compares lower-cased
// strings.
func scalarPredicate(get func(model.Provider) string, values []string) predicate {
	numbers, numeric := parseNumbers(values)
	return func(p model.Provider, _ time.Time) bool {
		stored := get(p)
		if numeric {
			if n, err := strconv.ParseFloat(strings.TrimSpace(stored), 64); err == nil {
				return slices.Contains(numbers, n)
			}
		}
		return slices.Contains(values, strings.ToLower(stored))
	}
}

func parseNumbers(values []string) ([]float64, bool) {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, false
		}
		out = append(out, n)
	}
	return out, len(out) > 0
}
