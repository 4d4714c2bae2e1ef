package response

type StandardApiResponse struct {
	Status     string      `json:"status"`           // "success" or "error"
	StatusCode int         `json:"status_code"`      // HTTP status code
	Message    string      `json:"message"`          // Human-readable message
	Code       string      `json:"code,omitempty"`   // Machine-readable error code
	Data       interface{} `json:"data,omitempty"`   // Payload for success
	Errors     interface{} `json:"errors,omitempty"` // Validation or error details
}

// Machine-readable error codes surfaced to API clients.
const (
	CodeNotFound      = "not_found"
	CodeValidation    = "validation"
	CodeClaimConflict = "claim_conflict"
	CodeInternal      = "internal"
)
