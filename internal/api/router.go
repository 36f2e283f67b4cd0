// Package api exposes the decision pipeline over HTTP: validation and
// decision endpoints behind bearer-key auth, plus unauthenticated project
// management for the dashboard.
package api

import (
	"net/http"
	"time"

	"github.com/sentra-sec/sentinel/internal/engine"
	"github.com/sentra-sec/sentinel/internal/pipeline"
	"github.com/sentra-sec/sentinel/internal/registry"
	"github.com/sentra-sec/sentinel/internal/storage"
	"github.com/sentra-sec/sentinel/internal/store"
	"go.uber.org/zap"
)

// Dependencies holds shared state injected into all HTTP handlers.
type Dependencies struct {
	Pipeline  *pipeline.Pipeline
	Detectors *registry.Registry[engine.Detector]
	Checkers  *registry.Registry[engine.Checker]
	Writer    storage.EventWriter
	Store     *store.Store // nil in local development: auth degrades to format checks
	Logger    *zap.Logger
	CacheTTL  time.Duration

	// BlockMessage is returned verbatim on every blocked decision.
	BlockMessage string
}

// NewRouter builds the HTTP mux with all routes wired up.
func NewRouter(deps *Dependencies) http.Handler {
	mux := http.NewServeMux()

	// Decision endpoints (auth required via Bearer ssk_ token)
	mux.HandleFunc("POST /v1/validate/input", deps.authMiddleware(deps.handleValidateInput))
	mux.HandleFunc("POST /v1/validate/output", deps.authMiddleware(deps.handleValidateOutput))
	mux.HandleFunc("POST /v1/decide", deps.authMiddleware(deps.handleDecide))
	mux.HandleFunc("GET /v1/components", deps.authMiddleware(deps.handleListComponents))
	mux.HandleFunc("GET /v1/stats", deps.authMiddleware(deps.handleStats))

	// Project CRUD. Unauthenticated for now; dashboard auth comes later.
	mux.HandleFunc("POST /api/sentinel/projects", deps.handleCreateProject)
	mux.HandleFunc("GET /api/sentinel/projects", deps.handleListProjects)
	mux.HandleFunc("DELETE /api/sentinel/projects/{project_id}", deps.handleDeleteProject)
	mux.HandleFunc("POST /api/sentinel/projects/{project_id}/rotate-key", deps.handleRotateKey)

	// Health check
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return requestLogging(mux, deps.Logger)
}
