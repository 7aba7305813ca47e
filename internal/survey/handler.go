package survey

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"hr-analytics/internal/shared/server/respond"
	"hr-analytics/internal/shared/telemetry"
)

const subject = "Employee Satisfaction Survey"

type Handler struct {
	Mailer  Mailer
	FormURL string
}

func NewHandler(m Mailer, formURL string) *Handler {
	return &Handler{Mailer: m, FormURL: formURL}
}

func (h *Handler) RegisterRoutes(rg gin.IRoutes) {
	rg.POST("/send-survey", h.send)
}

type sendRequest struct {
	Email string `json:"email"`
}

func (h *Handler) send(c *gin.Context) {
	var req sendRequest
	_ = c.ShouldBindJSON(&req)
	email := strings.TrimSpace(req.Email)
	if email == "" {
		respond.Error(c, http.StatusBadRequest, "Email is required")
		return
	}

	if err := h.Mailer.Send(c.Request.Context(), email, subject, Body(h.FormURL)); err != nil {
		telemetry.Error("survey.send_failed", map[string]any{"recipient": email, "error": err.Error()})
		respond.Error(c, http.StatusInternalServerError, fmt.Sprintf("Email sending error: %s", err))
		return
	}
	telemetry.Info("survey.sent", map[string]any{"recipient": email})
	respond.Message(c, http.StatusOK, "Survey sent successfully!")
}

// Body is the survey invitation text.
func Body(formURL string) string {
	return "Dear Employee,\n\n" +
		"Please fill out this survey to provide feedback on your satisfaction and engagement:\n\n" +
		formURL + "\n\n" +
		"Best regards,\nHR Team\n"
}
