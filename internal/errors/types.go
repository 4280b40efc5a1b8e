package errors

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error        string `json:"error"`                  // error code (e.g., "unauthorized", "quota_exceeded")
	Message      string `json:"message,omitempty"`      // user-friendly message
	Details      string `json:"details,omitempty"`      // optional details (sanitized in production)
	NeedsUpgrade bool   `json:"needsUpgrade,omitempty"` // set when upgrading to pro would lift the restriction
	Remaining    *int   `json:"remaining,omitempty"`    // remaining free generations, on quota errors
}

type ErrorInfo struct {
	category  string
	sanitized string
}
