package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"hr-analytics/internal/shared/telemetry"
)

const (
	contextDataKey = "session"
	contextIDKey   = "sessionId"
	userEmailKey   = "userEmail"
)

// Options tune the session cookie.
type Options struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// Manager binds Store entries to a signed browser cookie.
type Manager struct {
	store  Store
	secret []byte
	opts   Options
}

// NewManager builds a Manager; secret signs the cookie value.
func NewManager(store Store, secret string, opts Options) *Manager {
	if opts.CookieName == "" {
		opts.CookieName = "session"
	}
	return &Manager{store: store, secret: []byte(secret), opts: opts}
}

// Middleware loads the session for the request cookie, if any.
func (m *Manager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie(m.opts.CookieName)
		if err != nil || raw == "" {
			c.Next()
			return
		}
		id, err := verifyID(raw, m.secret)
		if err != nil {
			c.Next()
			return
		}
		data, err := m.store.Load(c.Request.Context(), id)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				telemetry.Error("session.load_failed", map[string]any{"error": err.Error()})
			}
			c.Next()
			return
		}
		c.Set(contextIDKey, id)
		c.Set(contextDataKey, data)
		if data.LoggedIn && data.Email != "" {
			c.Set(userEmailKey, data.Email)
		}
		c.Next()
	}
}

// Login starts a fresh session marked as logged in for email.
func (m *Manager) Login(c *gin.Context, email string) error {
	if oldID := c.GetString(contextIDKey); oldID != "" {
		_ = m.store.Delete(c.Request.Context(), oldID)
	}
	id := uuid.NewString()
	data := Data{LoggedIn: true, Email: email}
	if err := m.store.Save(c.Request.Context(), id, data, m.opts.TTL); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	token, err := signID(id, m.secret, m.opts.TTL)
	if err != nil {
		return err
	}
	m.setCookie(c, token, int(m.opts.TTL/time.Second))
	c.Set(contextIDKey, id)
	c.Set(contextDataKey, data)
	c.Set(userEmailKey, email)
	return nil
}

// Clear removes the stored session and expires the cookie.
func (m *Manager) Clear(c *gin.Context) error {
	var err error
	if id := c.GetString(contextIDKey); id != "" {
		err = m.store.Delete(c.Request.Context(), id)
	}
	m.setCookie(c, "", -1)
	c.Set(contextDataKey, Data{})
	return err
}

func (m *Manager) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.opts.CookieName, value, maxAge, "/", "", m.opts.Secure, true)
}

// FromContext returns the session loaded by Middleware, or the zero Data.
func FromContext(c *gin.Context) Data {
	if c == nil {
		return Data{}
	}
	val, _ := c.Get(contextDataKey)
	if data, ok := val.(Data); ok {
		return data
	}
	return Data{}
}
