package api

// --- POST /v1/validate/input ---

// ValidateInputRequest is the JSON body for input screening.
type ValidateInputRequest struct {
	Input string `json:"input"`
}

// ValidateInputResponse exposes the Gate 1 result to integrators.
type ValidateInputResponse struct {
	IsAttack    bool     `json:"is_attack"`
	AttackTypes []string `json:"attack_types"`
	Confidence  float32  `json:"confidence"`
	Violations  []string `json:"violations"`
	LatencyMs   float64  `json:"latency_ms"`
}

// --- POST /v1/validate/output ---

// ValidateOutputRequest is the JSON body for output screening. The input
// is optional context for checkers that weigh the surrounding request.
type ValidateOutputRequest struct {
	Output string `json:"output"`
	Input  string `json:"input,omitempty"`
}

// ValidateOutputResponse exposes the Gate 2 result to integrators.
type ValidateOutputResponse struct {
	SeedFailed      bool     `json:"seed_failed"`
	FailureTypes    []string `json:"failure_types"`
	GatesFailed     []string `json:"gates_failed"`
	PrimaryCategory string   `json:"primary_category,omitempty"`
	Confidence      float32  `json:"confidence"`
	LatencyMs       float64  `json:"latency_ms"`
}

// --- POST /v1/decide ---

// DecideRequest is the JSON body for a full pipeline decision.
type DecideRequest struct {
	Input   string `json:"input"`
	Output  string `json:"output"`
	TraceID string `json:"trace_id,omitempty"`
}

// DecideResponse is deliberately opaque: callers get the verdict and a
// generic message. Which gate fired and on what pattern stays internal so
// the response cannot be used as an oracle for probing the rules.
type DecideResponse struct {
	Blocked        bool    `json:"blocked"`
	Allowed        bool    `json:"allowed"`
	Message        string  `json:"message,omitempty"`
	RequestID      string  `json:"request_id"`
	Confidence     float32 `json:"confidence"`
	Gate3WasCalled bool    `json:"gate3_was_called"`
	LatencyMs      float64 `json:"latency_ms"`
}

// --- GET /v1/components ---

// ComponentResp describes one registered detector or checker.
type ComponentResp struct {
	Name    string  `json:"name"`
	Version string  `json:"version"`
	Weight  float64 `json:"weight"`
	Enabled bool    `json:"enabled"`
}

// ComponentsResponse lists the registered components of both gates.
type ComponentsResponse struct {
	Detectors []ComponentResp `json:"detectors"`
	Checkers  []ComponentResp `json:"checkers"`
}

// --- Project CRUD ---

// CreateProjectReq is the JSON body for POST /api/sentinel/projects.
type CreateProjectReq struct {
	Name string `json:"name"`
}

// CreateProjectResp includes the plaintext API key (shown once).
type CreateProjectResp struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	APIKey       string `json:"api_key"`
	APIKeyPrefix string `json:"api_key_prefix"`
}

// ProjectResp never carries the plaintext key.
type ProjectResp struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	APIKeyPrefix string `json:"api_key_prefix"`
	FailClosed   bool   `json:"fail_closed"`
}

// RotateKeyResp includes the new plaintext API key (shown once).
type RotateKeyResp struct {
	APIKey       string `json:"api_key"`
	APIKeyPrefix string `json:"api_key_prefix"`
}

// ErrorResp is a standard error response body.
type ErrorResp struct {
	Detail string `json:"detail"`
}
