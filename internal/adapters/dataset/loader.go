// Package dataset reads provider catalogs from local files, SQL databases and
// S3 into raw records for the repository.
package dataset

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ErrDataset marks every failure to read or parse a catalog file.
var ErrDataset = errors.New("dataset")

// Format identifies a catalog encoding.
type Format string

// Supported catalog encodings.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFor picks the encoding from a file extension. Unknown extensions read as JSON.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	default:
		return FormatJSON
	}
}

// LoadFile reads the catalog at path.
func LoadFile(ctx context.Context, path string) ([]map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(path) //nolint:gosec // operator-supplied path
	if err != nil {
		return nil, mark(errors.Wrapf(err, "open %s", path))
	}
	defer func() { _ = f.Close() }()

	records, err := Decode(f, FormatFor(path))
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	return records, nil
}

// Decode parses a top-level list of objects. JSON numbers are kept as
// json.Number so integer and real fields stay distinguishable.
func Decode(r io.Reader, format Format) ([]map[string]any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, mark(errors.Wrap(err, "read"))
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, mark(errors.WithHint(errors.New("empty catalog"), "a catalog is a list of provider objects; use [] for none"))
	}

	switch format {
	case FormatYAML:
		return decodeYAML(data)
	case FormatJSON:
		return decodeJSON(data)
	case FormatTOML:
		return decodeTOML(data)
	default:
		return nil, mark(errors.Newf("unsupported format %q", format))
	}
}

func decodeJSON(data []byte) ([]map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var records []map[string]any
	if err := dec.Decode(&records); err != nil {
		return nil, mark(errors.WithHint(errors.Wrap(err, "decode json"), "the catalog must be a JSON array of objects"))
	}
	if dec.More() {
		return nil, mark(errors.New("decode json: trailing data after catalog array"))
	}
	return nonNil(records), nil
}

func decodeYAML(data []byte) ([]map[string]any, error) {
	var records []map[string]any
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, mark(errors.WithHint(errors.Wrap(err, "decode yaml"), "the catalog must be a YAML sequence of mappings"))
	}
	return nonNil(records), nil
}

// tomlCatalog is the TOML layout: an array of tables named providers.
type tomlCatalog struct {
	Providers []map[string]any `toml:"providers"`
}

func decodeTOML(data []byte) ([]map[string]any, error) {
	var doc tomlCatalog
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, mark(errors.WithHint(errors.Wrap(err, "decode toml"), "the catalog must be a list of [[providers]] tables"))
	}
	// Unquoted TOML dates decode to toml.LocalDate; the schema wants text.
	for _, rec := range doc.Providers {
		for k, v := range rec {
			if d, ok := v.(toml.LocalDate); ok {
				rec[k] = d.String()
			}
		}
	}
	return nonNil(doc.Providers), nil
}

func nonNil(records []map[string]any) []map[string]any {
	if records == nil {
		return []map[string]any{}
	}
	return records
}

func mark(err error) error { return errors.Mark(err, ErrDataset) }
