package probe

import (
	"context"
	"encoding/json"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/okian/providex/internal/adapters/dataset"
	"github.com/okian/providex/internal/domain/model"
	"github.com/okian/providex/pkg/logger"
)

// Pools the synthetic catalog draws from.
//
//nolint:gochecknoglobals // read-only pools
var (
	firstNames = []string{"Ada", "Alan", "Grace", "Linus", "Margaret", "Ken", "Barbara", "Dennis", "Radia", "Edsger"}
	lastNames  = []string{"Lovelace", "Turing", "Hopper", "Torvalds", "Hamilton", "Thompson", "Liskov", "Ritchie"}
	skills     = []string{"Go", "Python", "Rust", "Java", "SQL", "Kubernetes", "Terraform", "React", "Swift"}
	secondary  = []string{"Writing", "Mentoring", "Design", "Testing", "Security", "Data"}
	companies  = []string{"Acme", "Globex", "Initech", "Umbrella", "Hooli", "Stark"}
	places     = []struct{ country, language string }{
		{"Spain", "Spanish"}, {"UK", "English"}, {"France", "French"},
		{"Germany", "German"}, {"Brazil", "Portuguese"}, {"Japan", "Japanese"},
	}
)

const (
	minAgeYears     = 21
	ageSpreadYears  = 45
	ratingSteps     = 10 // ratings are multiples of 0.5 in [0,5]
	activeOneIn     = 5  // one provider in five is inactive
	maxPrimarySkill = 3
)

// GenerateCatalog builds n valid raw provider records with ids 1..n. The
// same seed and today always yield the same catalog.
func GenerateCatalog(n int, seed uint64, today time.Time) []map[string]any {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) //nolint:gosec // synthetic data

	records := make([]map[string]any, n)
	for i := range records {
		place := places[r.IntN(len(places))]
		born := today.AddDate(-(minAgeYears + r.IntN(ageSpreadYears)), 0, -r.IntN(365))

		records[i] = map[string]any{
			"id":              i + 1,
			"first_name":      pick(r, firstNames),
			"last_name":       pick(r, lastNames),
			"sex":             pick(r, []string{"Female", "Male"}),
			"birth_date":      born.Format(model.BirthDateLayout),
			"rating":          float64(r.IntN(ratingSteps+1)) / 2,
			"primary_skills":  sample(r, skills, 1+r.IntN(maxPrimarySkill)),
			"secondary_skill": sample(r, secondary, r.IntN(2)+1),
			"company":         pick(r, companies),
			"active":          r.IntN(activeOneIn) != 0,
			"country":         place.country,
			"language":        place.language,
		}
	}
	return records
}

func pick(r *rand.Rand, pool []string) string { return pool[r.IntN(len(pool))] }

// sample returns k distinct items from pool in pool order.
func sample(r *rand.Rand, pool []string, k int) []any {
	idx := r.Perm(len(pool))[:min(k, len(pool))]
	out := make([]any, 0, len(idx))
	for i, s := range pool {
		for _, j := range idx {
			if i == j {
				out = append(out, s)
			}
		}
	}
	return out
}

// WriteCatalog writes records to path as JSON, or YAML for .yaml/.yml paths.
func WriteCatalog(ctx context.Context, path string, records []map[string]any) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return errors.Wrap(err, "create directory")
		}
	}

	file, err := os.Create(path) //nolint:gosec // operator-supplied path
	if err != nil {
		return errors.Wrap(err, "create catalog file")
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close file", logger.Error(err))
		}
	}()

	switch dataset.FormatFor(path) {
	case dataset.FormatYAML:
		enc := yaml.NewEncoder(file)
		enc.SetIndent(2)
		if err := enc.Encode(records); err != nil {
			return errors.Wrap(err, "encode yaml")
		}
		if err := enc.Close(); err != nil {
			return errors.Wrap(err, "flush yaml")
		}
	default:
		enc := json.NewEncoder(file)
		enc.SetIndent("", "  ")
		if err := enc.Encode(records); err != nil {
			return errors.Wrap(err, "encode json")
		}
	}

	logger.Get().Info(ctx, "catalog written", logger.String("path", path), logger.Int("providers", len(records)))
	return nil
}
