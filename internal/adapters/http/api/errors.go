package api

import (
	"net/http"

	"github.com/cockroachdb/errors"

	"github.com/okian/providex/internal/domain/traits"
	"github.com/okian/providex/internal/domain/types"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
)

// Error codes returned in ErrorBody.Code.
const (
	CodeFilterParse       = "filter_parse_error"
	CodeAttributeNotFound = "attribute_not_found"
	CodeBadRequest        = "bad_request"
	CodeMethodNotAllowed  = "method_not_allowed"
	CodeInternal          = "internal_error"
)

// classify maps a service error onto a status and error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, traits.ErrFilterParse):
		return http.StatusBadRequest, CodeFilterParse
	case errors.Is(err, traits.ErrAttributeNotFound):
		return http.StatusBadRequest, CodeAttributeNotFound
	case errors.Is(err, types.ErrInvalidQuery), errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, CodeBadRequest
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}
