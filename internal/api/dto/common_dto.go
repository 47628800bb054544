package dto

// ==============================================
// COMMON RESPONSE DTOs
// ==============================================

// ErrorResponse - standard error format
type ErrorResponse struct {
	Error   string `json:"error"`   // taxonomy or reason code
	Message string `json:"message"` // human-readable
}

// HealthResponse - API health check
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version,omitempty"`
}

// ==============================================
// SYNC JOB DTOs
// ==============================================

type StartSyncJobRequest struct {
	Kind string `json:"kind" binding:"required,oneof=cleanup"`
}

type SyncJobResponse struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	Status    string `json:"status"`
	Processed int    `json:"processed"`
	Error     string `json:"error,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}
