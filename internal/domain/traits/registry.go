package traits

import (
	"slices"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/okian/providex/internal/domain/model"
)

// AgeKey is the synthetic trait computed from birth_date.
const AgeKey = "age"

type attrKind int

const (
	scalarAttr attrKind = iota
	listAttr
	ageAttr
)

// attribute is a typed accessor for one filterable trait. Scalars are
// rendered to their string form; numeric comparison is decided per query.
type attribute struct {
	kind   attrKind
	scalar func(model.Provider) string
	list   func(model.Provider) []string
}

var registry = map[string]attribute{
	"id":              scalar(func(p model.Provider) string { return strconv.Itoa(p.ID) }),
	"first_name":      scalar(func(p model.Provider) string { return p.FirstName }),
	"last_name":       scalar(func(p model.Provider) string { return p.LastName }),
	"sex":             scalar(func(p model.Provider) string { return p.Sex }),
	"birth_date":      scalar(func(p model.Provider) string { return p.BirthDate }),
	"rating":          scalar(func(p model.Provider) string { return strconv.FormatFloat(p.Rating, 'f', -1, 64) }),
	"primary_skills":  list(func(p model.Provider) []string { return p.PrimarySkills }),
	"secondary_skill": list(func(p model.Provider) []string { return p.SecondarySkill }),
	"company":         scalar(func(p model.Provider) string { return p.Company }),
	"active":          scalar(func(p model.Provider) string { return strconv.FormatBool(p.Active) }),
	"country":         scalar(func(p model.Provider) string { return p.Country }),
	"language":        scalar(func(p model.Provider) string { return p.Language }),
	AgeKey:            {kind: ageAttr},
}

func init() {
	if err := checkRegistry(model.Fields()); err != nil {
		panic(err)
	}
}

// checkRegistry verifies that every schema field has an accessor whose
// shape matches the field kind: string lists need a list accessor and every
// other kind a scalar one.
func checkRegistry(fields []model.Field) error {
	for _, f := range fields {
		attr, ok := registry[f.Name]
		if !ok {
			return errors.Newf("traits: no accessor for provider field %s", f.Name)
		}
		want := scalarAttr
		if f.Kind == model.KindStringList {
			want = listAttr
		}
		if attr.kind != want {
			return errors.Newf("traits: accessor for %s does not fit a %s field", f.Name, f.Kind)
		}
	}
	return nil
}

func scalar(fn func(model.Provider) string) attribute {
	return attribute{kind: scalarAttr, scalar: fn}
}

func list(fn func(model.Provider) []string) attribute {
	return attribute{kind: listAttr, list: fn}
}

// Names returns every filterable trait name, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func lookup(name string) (attribute, error) {
	attr, ok := registry[name]
	if !ok {
		return attribute{}, attributeNotFound(name)
	}
	return attr, nil
}
