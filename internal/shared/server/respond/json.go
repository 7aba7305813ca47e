package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// MessageResponse is the success body of the form and survey endpoints.
type MessageResponse struct {
	Message string `json:"message"`
}

// JSON writes a JSON response with the given status.
func JSON(c *gin.Context, status int, payload any) {
	c.JSON(status, payload)
}

// OK writes a 200 OK JSON response.
func OK(c *gin.Context, payload any) {
	JSON(c, http.StatusOK, payload)
}

// Message writes {"message": message}.
func Message(c *gin.Context, status int, message string) {
	JSON(c, status, MessageResponse{Message: message})
}
