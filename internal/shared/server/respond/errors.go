package respond

import (
	"github.com/gin-gonic/gin"

	"hr-analytics/internal/shared/telemetry"
)

// ErrorResponse is the error body returned by every handler.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Error logs the failure and aborts with {"error": message}.
func Error(c *gin.Context, status int, message string) {
	fields := map[string]any{
		"status":     status,
		"message":    message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	}
	if email := c.GetString("userEmail"); email != "" {
		fields["user_email"] = email
	}
	telemetry.Error("http.error", fields)

	c.AbortWithStatusJSON(status, ErrorResponse{Error: message})
}
