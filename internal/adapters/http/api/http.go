// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/okian/providex/internal/domain/model"
	"github.com/okian/providex/internal/domain/types"
	"github.com/okian/providex/pkg/logger"
)

// Dependencies required by HTTP handlers.
type Dependencies interface {
	// Query filters and ranks the catalog. Every returned provider has had
	// its popularity bumped.
	Query(ctx context.Context, q types.Query) ([]model.Provider, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	providersHandler *ProvidersHandler
	logger           logger.Logger
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, l logger.Logger) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		providersHandler: NewProvidersHandler(deps, l),
		logger:           l,
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	route := func(path, endpoint string, h http.HandlerFunc) {
		mux.HandleFunc(path, RequestIDMiddleware(MetricsMiddleware(h, endpoint)))
	}
	route("/healthz", "healthz", s.healthHandler.HandleHealth)
	route("/stats", "stats", s.statsHandler.HandleStats)
	route("/providers", "providers", s.providersHandler.HandleGetProviders)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError renders err as an ErrorBody. Hints attached with
// errors.WithHint anywhere in the chain are joined into the hint field.
func writeError(w http.ResponseWriter, status int, code string, err error) {
	body := types.ErrorBody{Code: code, Message: http.StatusText(status)}
	if err != nil {
		body.Message = err.Error()
		body.Hint = strings.Join(errors.GetAllHints(err), "; ")
	}
	writeJSON(w, status, body)
}
