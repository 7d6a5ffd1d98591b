package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/okian/providex/internal/domain/types"
	"github.com/okian/providex/pkg/logger"
)

// ProvidersHandler handles provider queries.
type ProvidersHandler struct {
	deps   Dependencies
	logger logger.Logger
}

// NewProvidersHandler creates a new providers handler.
func NewProvidersHandler(deps Dependencies, l logger.Logger) *ProvidersHandler {
	return &ProvidersHandler{deps: deps, logger: l}
}

// HandleGetProviders handles GET /providers?active=&traits=&limit= requests.
func (h *ProvidersHandler) HandleGetProviders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, http.StatusMethodNotAllowed, CodeMethodNotAllowed, nil)
		return
	}

	q, err := parseQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err)
		return
	}

	providers, err := h.deps.Query(r.Context(), q)
	if err != nil {
		status, code := classify(err)
		if status >= http.StatusInternalServerError {
			h.log(r.Context(), err)
		}
		writeError(w, status, code, err)
		return
	}

	writeJSON(w, http.StatusOK, types.ProviderList{Providers: providers})
}

func (h *ProvidersHandler) log(ctx context.Context, err error) {
	if h.logger != nil {
		h.logger.Error(ctx, "provider query failed", logger.Error(err))
	}
}

// parseQuery reads the query string. active is true only for a
// case-insensitive "true"; any other present value selects inactive providers.
func parseQuery(r *http.Request) (types.Query, error) {
	values := r.URL.Query()
	q := types.Query{Traits: values.Get("traits")}

	if values.Has("active") {
		q.Active = types.Bool(strings.EqualFold(strings.TrimSpace(values.Get("active")), "true"))
	}

	if raw := strings.TrimSpace(values.Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return types.Query{}, errors.WithHint(
				errors.Mark(errors.Newf("invalid limit %q", raw), ErrBadRequest),
				"limit must be a non-negative integer")
		}
		q.Limit = n
	}
	return q, nil
}
