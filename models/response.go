package models

// HealthResponse is the response for GET /api/health.
type HealthResponse struct {
	Status          string       `json:"status"` // "healthy" or "degraded"
	Uptime          string       `json:"uptime"`
	EngineAvailable bool         `json:"engine_available"`
	SessionStats    SessionStats `json:"session_stats"`
	Version         string       `json:"version"`
}

// SessionStats reports rendering session usage. Launched and Released are
// monotonic; once the service is idle they must be equal.
type SessionStats struct {
	MaxSessions    int   `json:"max_sessions"`
	ActiveSessions int   `json:"active_sessions"`
	Launched       int64 `json:"launched"`
	Released       int64 `json:"released"`
	Rejected       int64 `json:"rejected"`
}
