package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"hr-analytics/internal/session"
	"hr-analytics/internal/shared/server/respond"
	"hr-analytics/internal/shared/telemetry"
	"hr-analytics/internal/users"
)

// Handler serves the JSON side of signup, login, logout and token checks.
type Handler struct {
	Users     *users.Service
	Sessions  *session.Manager
	Verifier  IdentityVerifier
	LoginPath string
}

func NewHandler(svc *users.Service, sessions *session.Manager, verifier IdentityVerifier) *Handler {
	return &Handler{Users: svc, Sessions: sessions, Verifier: verifier, LoginPath: "/login"}
}

func (h *Handler) RegisterRoutes(rg gin.IRoutes) {
	rg.POST("/signup", h.signup)
	rg.POST("/login", h.login)
	rg.GET("/logout", h.logout)
	rg.POST("/logout", h.logout)
	rg.POST("/verify-token", h.verifyToken)
}

type credentials struct {
	IDToken  string  `json:"idToken"`
	Name     string  `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

func (h *Handler) signup(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "Invalid signup data")
		return
	}

	var email string
	switch {
	case req.IDToken != "":
		id, err := h.verifyEmail(c, req.IDToken)
		if err != nil {
			respond.Error(c, http.StatusUnauthorized, err.Error())
			return
		}
		email = id.Email
	case req.Name != "" && req.Email != nil && req.Password != nil:
		user, err := h.Users.Register(c.Request.Context(), req.Name, *req.Email, *req.Password)
		if errors.Is(err, users.ErrEmailTaken) {
			respond.Error(c, http.StatusBadRequest, "Email already registered. Please log in.")
			return
		}
		if err != nil {
			respond.Error(c, http.StatusUnauthorized, err.Error())
			return
		}
		email = user.Email
	default:
		respond.Error(c, http.StatusBadRequest, "Invalid signup data")
		return
	}

	if err := h.Sessions.Login(c, email); err != nil {
		respond.Error(c, http.StatusUnauthorized, err.Error())
		return
	}
	telemetry.Info("auth.signup", map[string]any{"user_email": email, "federated": req.IDToken != ""})
	respond.Message(c, http.StatusOK, "Signup successful")
}

func (h *Handler) login(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "No authentication method provided")
		return
	}

	var email string
	switch {
	case req.IDToken != "":
		id, err := h.verifyEmail(c, req.IDToken)
		if err != nil {
			respond.Error(c, http.StatusUnauthorized, err.Error())
			return
		}
		email = id.Email
	case req.Email != nil && *req.Email != "" && req.Password != nil && *req.Password != "":
		user, err := h.Users.Authenticate(c.Request.Context(), *req.Email, *req.Password)
		if errors.Is(err, users.ErrInvalidCredentials) {
			respond.Error(c, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		if err != nil {
			respond.Error(c, http.StatusUnauthorized, err.Error())
			return
		}
		email = user.Email
	default:
		respond.Error(c, http.StatusBadRequest, "No authentication method provided")
		return
	}

	if err := h.Sessions.Login(c, email); err != nil {
		respond.Error(c, http.StatusUnauthorized, err.Error())
		return
	}
	telemetry.Info("auth.login", map[string]any{"user_email": email, "federated": req.IDToken != ""})
	respond.Message(c, http.StatusOK, "Login successful")
}

func (h *Handler) logout(c *gin.Context) {
	if err := h.Sessions.Clear(c); err != nil {
		telemetry.Error("auth.logout_failed", map[string]any{"error": err.Error()})
	}
	c.Redirect(http.StatusFound, h.LoginPath)
}

type verifyRequest struct {
	IDToken string `json:"idToken"`
}

func (h *Handler) verifyToken(c *gin.Context) {
	var req verifyRequest
	_ = c.ShouldBindJSON(&req)
	id, err := h.verify(c, req.IDToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "uid": id.UID})
}

func (h *Handler) verify(c *gin.Context, idToken string) (Identity, error) {
	if h.Verifier == nil {
		return Identity{}, ErrNotConfigured
	}
	return h.Verifier.Verify(c.Request.Context(), idToken)
}

// verifyEmail is verify for flows that start a session, which needs an email.
func (h *Handler) verifyEmail(c *gin.Context, idToken string) (Identity, error) {
	id, err := h.verify(c, idToken)
	if err != nil {
		return Identity{}, err
	}
	if id.Email == "" {
		return Identity{}, errors.New("id token has no email claim")
	}
	return id, nil
}
