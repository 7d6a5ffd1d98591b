package types

import (
	"github.com/cockroachdb/errors"
)

// ErrInvalidQuery marks query parameters that are malformed outside the
// trait language, such as a negative limit.
var ErrInvalidQuery = errors.New("invalid query")
