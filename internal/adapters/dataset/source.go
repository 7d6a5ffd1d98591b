package dataset

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
)

// Location schemes understood by Open.
const (
	schemeS3         = "s3://"
	schemeSQLite     = "sqlite://"
	schemePostgres   = "postgres://"
	schemePostgreSQL = "postgresql://"
)

// Option configures Open.
type Option func(*options)

type options struct {
	table      string
	s3Region   string
	s3Endpoint string
	s3Client   ObjectGetter
}

// WithTable sets the table read from SQL catalogs.
func WithTable(table string) Option {
	return func(o *options) { o.table = table }
}

// WithS3Region sets the region used for s3:// catalogs.
func WithS3Region(region string) Option {
	return func(o *options) { o.s3Region = region }
}

// WithS3Endpoint points s3:// catalogs at an S3-compatible endpoint.
func WithS3Endpoint(endpoint string) Option {
	return func(o *options) { o.s3Endpoint = endpoint }
}

// WithS3Client overrides the client used for s3:// catalogs.
func WithS3Client(c ObjectGetter) Option {
	return func(o *options) { o.s3Client = c }
}

// Open reads a catalog from location, which is one of
//
//	s3://bucket/key.json            object in S3, decoded by the key's extension
//	postgres://user@host/db         PostgreSQL table
//	sqlite:///path/catalog.db       SQLite table (also any .db, .sqlite or .sqlite3 path)
//	providers.json|yaml|yml|toml    local file
func Open(ctx context.Context, location string, opts ...Option) ([]map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	o := options{table: DefaultTable}
	for _, opt := range opts {
		opt(&o)
	}

	switch {
	case strings.HasPrefix(location, schemeS3):
		return openS3(ctx, location, o)
	case strings.HasPrefix(location, schemePostgres), strings.HasPrefix(location, schemePostgreSQL):
		return LoadSQL(ctx, DriverPostgres, location, o.table)
	case strings.HasPrefix(location, schemeSQLite):
		return openSQLite(ctx, strings.TrimPrefix(location, schemeSQLite), o)
	case isSQLiteFile(location):
		return openSQLite(ctx, location, o)
	default:
		return LoadFile(ctx, location)
	}
}

func openS3(ctx context.Context, location string, o options) ([]map[string]any, error) {
	u, err := url.Parse(location)
	if err != nil {
		return nil, mark(errors.Wrapf(err, "parse %s", location))
	}
	client := o.s3Client
	if client == nil {
		c, err := NewS3Client(ctx, o.s3Region, o.s3Endpoint)
		if err != nil {
			return nil, err
		}
		client = c
	}
	return LoadS3(ctx, client, u.Host, strings.TrimPrefix(u.Path, "/"))
}

// openSQLite refuses missing files; the driver would otherwise create an
// empty database.
func openSQLite(ctx context.Context, path string, o options) ([]map[string]any, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, mark(errors.Wrapf(err, "open %s", path))
	}
	return LoadSQL(ctx, DriverSQLite, path, o.table)
}

func isSQLiteFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return true
	}
	return false
}
