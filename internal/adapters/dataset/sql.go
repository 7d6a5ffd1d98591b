package dataset

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/cockroachdb/errors"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	_ "modernc.org/sqlite"             // pure go sqlite driver
)

// SQL driver names registered by the imports above.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

// DefaultTable is the table a SQL catalog is read from.
const DefaultTable = "providers"

// selectColumns lists the schema fields in serialization order. List fields
// are stored as JSON array text.
const selectColumns = `id, first_name, last_name, sex, birth_date, rating,
	primary_skills, secondary_skill, company, active, country, language`

// LoadSQL opens dsn with driver and reads every row of table.
func LoadSQL(ctx context.Context, driver, dsn, table string) ([]map[string]any, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, mark(errors.Wrapf(err, "open %s", driver))
	}
	defer func() { _ = db.Close() }()

	if err := db.PingContext(ctx); err != nil {
		return nil, mark(errors.Wrapf(err, "connect %s", driver))
	}
	return QueryRecords(ctx, db, table)
}

// QueryRecords reads the provider table through an open handle.
func QueryRecords(ctx context.Context, db *sql.DB, table string) ([]map[string]any, error) {
	if table == "" {
		table = DefaultTable
	}
	if !validIdentifier(table) {
		return nil, mark(errors.WithHint(errors.Newf("invalid table name %q", table), "use letters, digits and underscores only"))
	}

	rows, err := db.QueryContext(ctx, "SELECT "+selectColumns+" FROM "+table+" ORDER BY id") //nolint:gosec // identifier validated above
	if err != nil {
		return nil, mark(errors.Wrapf(err, "select %s", table))
	}
	defer func() { _ = rows.Close() }()

	records := []map[string]any{}
	for rows.Next() {
		var (
			id                                            int64
			first, last, sex, born, company, country, lng string
			rating                                        float64
			primary, secondary                            []byte
			active                                        bool
		)
		if err := rows.Scan(&id, &first, &last, &sex, &born, &rating,
			&primary, &secondary, &company, &active, &country, &lng); err != nil {
			return nil, mark(errors.Wrapf(err, "scan row %d", len(records)))
		}

		primarySkills, err := decodeList(primary)
		if err != nil {
			return nil, mark(errors.Wrapf(err, "row %d primary_skills", len(records)))
		}
		secondarySkill, err := decodeList(secondary)
		if err != nil {
			return nil, mark(errors.Wrapf(err, "row %d secondary_skill", len(records)))
		}

		records = append(records, map[string]any{
			"id":              id,
			"first_name":      first,
			"last_name":       last,
			"sex":             sex,
			"birth_date":      born,
			"rating":          rating,
			"primary_skills":  primarySkills,
			"secondary_skill": secondarySkill,
			"company":         company,
			"active":          active,
			"country":         country,
			"language":        lng,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, mark(errors.Wrap(err, "iterate rows"))
	}
	return records, nil
}

// decodeList parses a JSON array of strings. Empty text is an empty list.
func decodeList(raw []byte) ([]string, error) {
	if len(raw) == 0 {
		return []string{}, nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, errors.WithHint(errors.Wrap(err, "decode list"), `list columns hold JSON arrays such as ["go","sql"]`)
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}

func validIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
