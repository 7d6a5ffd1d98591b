package model

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// ErrSchema is the kind matched by every SchemaError.
var ErrSchema = errors.New("schema error")

// SchemaError reports a catalog record that does not match the provider
// schema. Index is the position of the record in the load source.
type SchemaError struct {
	Index    int
	Key      string
	Expected string
	Actual   string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("record %d: key %q: expected %s, got %s", e.Index, e.Key, e.Expected, e.Actual)
}

// Is reports whether target is ErrSchema.
func (e *SchemaError) Is(target error) bool { return target == ErrSchema }

func schemaError(index int, key, expected, actual string) error {
	err := error(&SchemaError{Index: index, Key: key, Expected: expected, Actual: actual})
	switch actual {
	case actualUnknown:
		return errors.WithHintf(err, "remove %q; known keys are %v", key, FieldNames())
	case actualMissing:
		return errors.WithHintf(err, "every record must carry %q", key)
	}
	return err
}
