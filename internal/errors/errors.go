package errors

import (
	"net/http"
	"regexp"
	"strings"

	"codeberg.org/promptfotos/server/internal/logger"
	"github.com/gin-gonic/gin"
)

// Error Handling Guidelines:
//
// For HTTP REST handlers:
//   - Use errors.InternalError(), errors.UpstreamFailure(), errors.BadRequest(), etc.
//     These functions handle both logging and HTTP response automatically
//   - Use logger.ErrorErr() only for non-critical errors where processing continues
//     (e.g. storage upload fallback, usage counter write)
//   - Never call both logger.ErrorErr() and errors.InternalError() for the same error
//
// For services/repositories/internal packages:
//   - Return wrapped errors with context using fmt.Errorf("context: %w", err)
//   - Let the caller (handler) decide how to log and respond
//   - Do not log errors in non-handler code (avoid double logging)

// UUID format: xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx (36 characters)
var uuidRegex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// standard error codes
const (
	CodeUnauthorized     = "unauthorized"
	CodeForbidden        = "forbidden"
	CodeNotFound         = "not_found"
	CodeValidationError  = "validation_error"
	CodeServerError      = "server_error"
	CodeBadRequest       = "bad_request"
	CodeTooManyRequests  = "too_many_requests"
	CodeQuotaExceeded    = "quota_exceeded"
	CodeUpgradeRequired  = "upgrade_required"
	CodeGenerationFailed = "generation_failed"
	CodeInvalidSignature = "invalid_signature"
)

// returns a 401 unauthorized error
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "authentication required"
	}

	c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
		Error:   CodeUnauthorized,
		Message: message,
	})
}

// returns a 403 forbidden error
func Forbidden(c *gin.Context, message string) {
	if message == "" {
		message = "permission denied"
	}

	c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
		Error:   CodeForbidden,
		Message: message,
	})
}

// returns a 404 not found error
func NotFound(c *gin.Context, resource string) {
	message := "resource not found"

	if resource != "" {
		message = resource + " not found"
	}

	c.AbortWithStatusJSON(http.StatusNotFound, ErrorResponse{
		Error:   CodeNotFound,
		Message: message,
	})
}

// returns a 400 bad request error
func BadRequest(c *gin.Context, message string, err error) {
	if message == "" {
		message = "invalid request"
	}

	response := ErrorResponse{
		Error:   CodeBadRequest,
		Message: message,
	}

	if err != nil {
		response.Details = classifyError(err).sanitized
	}

	c.AbortWithStatusJSON(http.StatusBadRequest, response)
}

// returns a 400 bad request error for validation failures
func ValidationError(c *gin.Context, message string, err error) {
	if message == "" {
		message = "validation failed"
	}

	response := ErrorResponse{
		Error:   CodeValidationError,
		Message: message,
	}

	if err != nil {
		response.Details = classifyError(err).sanitized
	}

	c.AbortWithStatusJSON(http.StatusBadRequest, response)
}

// returns a 429 too many requests error
func TooManyRequests(c *gin.Context, message string) {
	if message == "" {
		message = "too many requests, please try again later"
	}

	c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{
		Error:   CodeTooManyRequests,
		Message: message,
	})
}

// returns a 403 when the free generation allowance is used up
func QuotaExceeded(c *gin.Context, remaining int) {
	c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
		Error:        CodeQuotaExceeded,
		Message:      "you have reached your free generation limit, upgrade to pro for unlimited generations",
		NeedsUpgrade: true,
		Remaining:    &remaining,
	})
}

// returns a 403 for features reserved to pro subscribers
func UpgradeRequired(c *gin.Context, message string) {
	if message == "" {
		message = "this feature requires a pro subscription"
	}

	c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
		Error:        CodeUpgradeRequired,
		Message:      message,
		NeedsUpgrade: true,
	})
}

// returns a 401 for webhook payloads whose signature does not verify
func InvalidSignature(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
		Error:   CodeInvalidSignature,
		Message: "invalid signature",
	})
}

// returns a generic 500 for failures of an external collaborator (image gateway, storage).
// the cause is logged but never echoed, so provider details do not leak to the caller
func UpstreamFailure(c *gin.Context, message string, err error) {
	if message == "" {
		message = "failed to generate image, please try again"
	}

	logger.FromContext(c.Request.Context()).Error(message,
		"error", err,
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
		"user_id", c.GetString("user_id"),
	)

	c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
		Error:   CodeGenerationFailed,
		Message: message,
	})
}

// returns a 500 internal server error
func InternalError(c *gin.Context, message string, err error) {
	if message == "" {
		message = "an error occurred"
	}

	info := classifyError(err)

	// log full error server-side with context
	logger.FromContext(c.Request.Context()).Error(message,
		"error", err,
		"category", info.category,
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
		"user_id", c.GetString("user_id"),
	)

	c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
		Error:   CodeServerError,
		Message: message,
		Details: info.sanitized,
	})
}

// turns panics into the standard envelope instead of a raw stack trace
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.FromContext(c.Request.Context()).Error("panic recovered",
			"panic", recovered,
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
		)

		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
			Error:   CodeServerError,
			Message: "internal server error",
		})
	})
}

// validates a UUID string format
func IsValidUUID(id string) bool {
	if id == "" {
		return false
	}

	return uuidRegex.MatchString(strings.ToLower(id))
}

// validates a UUID parameter from the request path
func ValidatePathUUID(c *gin.Context, paramName string) (string, bool) {
	id := c.Param(paramName)

	if id == "" {
		BadRequest(c, "missing "+paramName, nil)
		return "", false
	}

	if !IsValidUUID(id) {
		NotFound(c, "resource")
		return "", false
	}

	return id, true
}
