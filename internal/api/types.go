package api

// APIError is the structured error body every non-2xx response carries.
type APIError struct {
	Type      string                 `json:"type"`
	Message   string                 `json:"message"`
	Context   map[string]interface{} `json:"context,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
	Timestamp string                 `json:"timestamp,omitempty"`
}

// Error implements the error interface
func (e APIError) Error() string {
	return e.Message
}

// Error types beyond the submission rejection kinds, which come through on
// the wire as their score.Kind strings.
const (
	ErrTypeInvalidJSON  = "invalid_json"
	ErrTypeInvalidPack  = "invalid_content_pack"
	ErrTypeUnauthorized = "unauthorized"
	ErrTypeNotFound     = "not_found"
	ErrTypeInternal     = "internal_error"
)

// HealthResponse is the health check body.
type HealthResponse struct {
	Status        string `json:"status"`
	ServerVersion string `json:"server_version"`
	Timestamp     string `json:"timestamp"`
	Uptime        string `json:"uptime"`
}

// DailyResponse carries the deterministic daily seed and its UTC window.
type DailyResponse struct {
	Seed  string `json:"seed"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// AdminContentResponse acknowledges a content pack replacement.
type AdminContentResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}
