package traits

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Sentinel kinds for trait filtering errors.
var (
	ErrFilterParse       = errors.New("filter parse error")
	ErrAttributeNotFound = errors.New("attribute not found")
)

// FilterParseError reports a malformed trait clause or value token.
type FilterParseError struct {
	Clause string
	Reason string
}

func (e *FilterParseError) Error() string {
	return fmt.Sprintf("invalid trait clause %q: %s", e.Clause, e.Reason)
}

// Is reports whether target is ErrFilterParse.
func (e *FilterParseError) Is(target error) bool { return target == ErrFilterParse }

// AttributeNotFoundError reports a trait key that names no provider attribute.
type AttributeNotFoundError struct {
	Name string
}

func (e *AttributeNotFoundError) Error() string {
	return fmt.Sprintf("unknown trait %q", e.Name)
}

// Is reports whether target is ErrAttributeNotFound.
func (e *AttributeNotFoundError) Is(target error) bool { return target == ErrAttributeNotFound }

func parseError(clause, reason, hint string) error {
	return errors.WithHint(&FilterParseError{Clause: clause, Reason: reason}, hint)
}

func attributeNotFound(name string) error {
	return errors.WithHintf(&AttributeNotFoundError{Name: name}, "known traits are %v", Names())
}
