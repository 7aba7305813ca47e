package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"hr-analytics/internal/shared/config"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Config{
		Env:             "dev",
		CORSAllowOrigin: []string{"*"},
		SecretKey:       "test-secret",
	}
	cfg.Session.Store = "memory"
	cfg.Session.CookieName = "session"
	cfg.Session.TTL = time.Hour
	cfg.Users.Store = "memory"
	cfg.Predict.ArtifactsPath = "../retention/testdata/model.json"
	cfg.Predict.OpenAIModel = "gpt-4"
	cfg.Mail.Server = "smtp.example.com"
	cfg.Mail.Port = 587
	return cfg
}

func TestBuildServesSignupThenHome(t *testing.T) {
	app, err := Build(context.Background(), testConfig(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close(context.Background()) })

	signup := httptest.NewRequest(http.MethodPost, "/signup",
		strings.NewReader(`{"name":"Ana","email":"ana@example.com","password":"pw"}`))
	signup.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, signup)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	require.JSONEq(t, `{"message":"Signup successful"}`, resp.Body.String())

	var cookie *http.Cookie
	for _, c := range resp.Result().Cookies() {
		if c.Name == "session" {
			cookie = c
		}
	}
	require.NotNil(t, cookie)

	home := httptest.NewRequest(http.MethodGet, "/home", nil)
	home.AddCookie(cookie)
	resp = httptest.NewRecorder()
	app.Router.ServeHTTP(resp, home)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Contains(t, resp.Body.String(), "ana@example.com")
}

func TestBuildPredictWithoutOpenAIKey(t *testing.T) {
	app, err := Build(context.Background(), testConfig(t))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/predict",
		strings.NewReader(`{"satisfaction_level":0.2,"salary":"low","department":"sales"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	require.Contains(t, resp.Body.String(), "Error generating recommendations: OPENAI_API_KEY is required")
}

func TestBuildFailsWithoutModelArtifacts(t *testing.T) {
	cfg := testConfig(t)
	cfg.Predict.ArtifactsPath = t.TempDir() + "/missing.json"

	_, err := Build(context.Background(), cfg)
	require.Error(t, err)
}

func TestBuildRejectsUnknownStores(t *testing.T) {
	cfg := testConfig(t)
	cfg.Users.Store = "sqlite"
	_, err := Build(context.Background(), cfg)
	require.ErrorContains(t, err, "USER_STORE")

	cfg = testConfig(t)
	cfg.Session.Store = "memcached"
	_, err = Build(context.Background(), cfg)
	require.ErrorContains(t, err, "SESSION_STORE")
}

func TestCloseRunsClosersInReverse(t *testing.T) {
	app := &App{}
	var order []int
	app.onClose(func(context.Context) error { order = append(order, 1); return nil })
	app.onClose(func(context.Context) error { order = append(order, 2); return nil })

	require.NoError(t, app.Close(context.Background()))
	require.Equal(t, []int{2, 1}, order)
	require.NoError(t, app.Close(context.Background()))
	require.Len(t, order, 2)
}
