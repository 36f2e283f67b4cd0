package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sentra-sec/sentinel/internal/engine"
	"github.com/sentra-sec/sentinel/internal/registry"
	"go.uber.org/zap"
)

// handleValidateInput implements POST /v1/validate/input: Gate 1 only.
func (d *Dependencies) handleValidateInput(w http.ResponseWriter, r *http.Request) {
	var req ValidateInputRequest
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "Invalid JSON body"})
		return
	}

	res := d.Pipeline.ValidateInput(r.Context(), req.Input)

	writeJSON(w, http.StatusOK, ValidateInputResponse{
		IsAttack:    res.IsAttack,
		AttackTypes: categoryStrings(res.AttackTypes),
		Confidence:  res.Confidence,
		Violations:  res.Violations,
		LatencyMs:   float64(res.Latency) / float64(time.Millisecond),
	})
}

// handleValidateOutput implements POST /v1/validate/output: Gate 2 only.
func (d *Dependencies) handleValidateOutput(w http.ResponseWriter, r *http.Request) {
	var req ValidateOutputRequest
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "Invalid JSON body"})
		return
	}
	if req.Output == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "output is required"})
		return
	}

	res := d.Pipeline.ValidateOutput(r.Context(), req.Output, req.Input)

	gates := make([]string, 0, len(res.GatesFailed))
	for _, g := range res.GatesFailed {
		gates = append(gates, string(g))
	}

	writeJSON(w, http.StatusOK, ValidateOutputResponse{
		SeedFailed:      res.SeedFailed,
		FailureTypes:    categoryStrings(res.FailureTypes),
		GatesFailed:     gates,
		PrimaryCategory: string(res.PrimaryCategory),
		Confidence:      res.Confidence,
		LatencyMs:       float64(res.Latency) / float64(time.Millisecond),
	})
}

// handleDecide implements POST /v1/decide: the full pipeline. The
// response is opaque by design; the decision event carries the detail.
func (d *Dependencies) handleDecide(w http.ResponseWriter, r *http.Request) {
	var req DecideRequest
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "Invalid JSON body"})
		return
	}
	if req.Input == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "input is required"})
		return
	}

	proj := projectFromContext(r.Context())
	if proj == nil {
		writeJSON(w, http.StatusInternalServerError, ErrorResp{Detail: "missing project context"})
		return
	}

	res := d.Pipeline.Decide(r.Context(), req.Input, req.Output)
	requestID := uuid.New().String()

	// Fire-and-forget: persist the full decision for audit
	d.writeDecisionEvent(requestID, proj.ID, req.Input, req.Output, res)

	resp := DecideResponse{
		Blocked:        res.Blocked,
		Allowed:        res.Allowed,
		RequestID:      requestID,
		Confidence:     res.Confidence,
		Gate3WasCalled: res.Gate3WasCalled,
		LatencyMs:      float64(res.Latency) / float64(time.Millisecond),
	}
	if res.Blocked {
		resp.Message = d.BlockMessage
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleListComponents implements GET /v1/components.
func (d *Dependencies) handleListComponents(w http.ResponseWriter, _ *http.Request) {
	resp := ComponentsResponse{
		Detectors: componentResps(d.Detectors.List()),
		Checkers:  componentResps(d.Checkers.List()),
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleStats implements GET /v1/stats.
func (d *Dependencies) handleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, d.Pipeline.Stats())
}

// --- Project CRUD ---

func (d *Dependencies) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	if d.Store == nil {
		writeJSON(w, http.StatusServiceUnavailable, ErrorResp{Detail: "project store not configured"})
		return
	}

	var req CreateProjectReq
	if err := readJSON(r, &req); err != nil || req.Name == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "name is required"})
		return
	}

	p, fullKey, err := d.Store.CreateProject(r.Context(), req.Name)
	if err != nil {
		d.Logger.Error("create project failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, ErrorResp{Detail: "failed to create project"})
		return
	}

	writeJSON(w, http.StatusCreated, CreateProjectResp{
		ID:           p.ID,
		Name:         p.Name,
		APIKey:       fullKey,
		APIKeyPrefix: p.APIKeyPrefix,
	})
}

func (d *Dependencies) handleListProjects(w http.ResponseWriter, r *http.Request) {
	if d.Store == nil {
		writeJSON(w, http.StatusServiceUnavailable, ErrorResp{Detail: "project store not configured"})
		return
	}

	projects, err := d.Store.ListProjects(r.Context())
	if err != nil {
		d.Logger.Error("list projects failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, ErrorResp{Detail: "failed to list projects"})
		return
	}

	resp := make([]ProjectResp, 0, len(projects))
	for _, p := range projects {
		resp = append(resp, ProjectResp{
			ID:           p.ID,
			Name:         p.Name,
			APIKeyPrefix: p.APIKeyPrefix,
			FailClosed:   p.FailClosed,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (d *Dependencies) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	if d.Store == nil {
		writeJSON(w, http.StatusServiceUnavailable, ErrorResp{Detail: "project store not configured"})
		return
	}

	if err := d.Store.DeleteProject(r.Context(), r.PathValue("project_id")); err != nil {
		writeJSON(w, http.StatusNotFound, ErrorResp{Detail: "project not found"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (d *Dependencies) handleRotateKey(w http.ResponseWriter, r *http.Request) {
	if d.Store == nil {
		writeJSON(w, http.StatusServiceUnavailable, ErrorResp{Detail: "project store not configured"})
		return
	}

	p, fullKey, err := d.Store.RotateAPIKey(r.Context(), r.PathValue("project_id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, ErrorResp{Detail: "project not found"})
		return
	}

	writeJSON(w, http.StatusOK, RotateKeyResp{
		APIKey:       fullKey,
		APIKeyPrefix: p.APIKeyPrefix,
	})
}

// --- helpers ---

func categoryStrings(cats []engine.Category) []string {
	out := make([]string, 0, len(cats))
	for _, c := range cats {
		out = append(out, string(c))
	}
	return out
}

func componentResps(infos []registry.Info) []ComponentResp {
	out := make([]ComponentResp, 0, len(infos))
	for _, i := range infos {
		out = append(out, ComponentResp{
			Name:    i.Name,
			Version: i.Version,
			Weight:  i.Weight,
			Enabled: i.Enabled,
		})
	}
	return out
}
