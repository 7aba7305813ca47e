package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hr-analytics/internal/session"
)

const userEmailKey = "userEmail"

// RequireLogin redirects browsers without a logged-in session to loginPath.
func RequireLogin(loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !session.FromContext(c).LoggedIn {
			c.Redirect(http.StatusFound, loginPath)
			c.Abort()
			return
		}
		c.Next()
	}
}

// UserEmailFromContext fetches the email of the logged-in user, if any.
func UserEmailFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(userEmailKey)
	if email, ok := val.(string); ok {
		return email
	}
	return ""
}
