package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/json"
	"encoding/pem"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const testProject = "hr-analytics-test"

type certServer struct {
	key     *rsa.PrivateKey
	fetches atomic.Int32
	srv     *httptest.Server
}

func newCertServer(t *testing.T) *certServer {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "securetoken"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	certPEM := string(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}))

	cs := &certServer{key: key}
	cs.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cs.fetches.Add(1)
		w.Header().Set("Cache-Control", "public, max-age=3600, must-revalidate")
		_ = json.NewEncoder(w).Encode(map[string]string{"k1": certPEM})
	}))
	t.Cleanup(cs.srv.Close)
	return cs
}

func (cs *certServer) verifier() *FirebaseVerifier {
	v := NewFirebaseVerifier(testProject)
	v.certsURL = cs.srv.URL
	return v
}

func (cs *certServer) sign(t *testing.T, method jwt.SigningMethod, key any, kid string, mutate func(*firebaseClaims)) string {
	t.Helper()
	now := time.Now()
	claims := firebaseClaims{
		Email: "jane@example.com",
		Name:  "Jane",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "uid-123",
			Issuer:    "https://securetoken.google.com/" + testProject,
			Audience:  jwt.ClaimStrings{testProject},
			IssuedAt:  jwt.NewNumericDate(now.Add(-time.Minute)),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
	if mutate != nil {
		mutate(&claims)
	}
	tok := jwt.NewWithClaims(method, claims)
	tok.Header["kid"] = kid
	signed, err := tok.SignedString(key)
	require.NoError(t, err)
	return signed
}

func TestFirebaseVerifierAcceptsValidToken(t *testing.T) {
	cs := newCertServer(t)
	v := cs.verifier()

	id, err := v.Verify(context.Background(), cs.sign(t, jwt.SigningMethodRS256, cs.key, "k1", nil))
	require.NoError(t, err)
	require.Equal(t, Identity{UID: "uid-123", Email: "jane@example.com", Name: "Jane"}, id)

	_, err = v.Verify(context.Background(), cs.sign(t, jwt.SigningMethodRS256, cs.key, "k1", nil))
	require.NoError(t, err)
	require.EqualValues(t, 1, cs.fetches.Load())
}

func TestFirebaseVerifierRejects(t *testing.T) {
	cs := newCertServer(t)
	v := cs.verifier()

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "wrong audience", token: cs.sign(t, jwt.SigningMethodRS256, cs.key, "k1", func(c *firebaseClaims) {
			c.Audience = jwt.ClaimStrings{"other-project"}
		})},
		{name: "wrong issuer", token: cs.sign(t, jwt.SigningMethodRS256, cs.key, "k1", func(c *firebaseClaims) {
			c.Issuer = "https://accounts.google.com"
		})},
		{name: "expired", token: cs.sign(t, jwt.SigningMethodRS256, cs.key, "k1", func(c *firebaseClaims) {
			c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
		})},
		{name: "empty subject", token: cs.sign(t, jwt.SigningMethodRS256, cs.key, "k1", func(c *firebaseClaims) {
			c.Subject = ""
		})},
		{name: "unknown kid", token: cs.sign(t, jwt.SigningMethodRS256, cs.key, "k9", nil)},
		{name: "hmac signed", token: cs.sign(t, jwt.SigningMethodHS256, []byte("secret"), "k1", nil)},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(context.Background(), tt.token)
			require.Error(t, err)
		})
	}
}

func TestFirebaseVerifierRequiresProject(t *testing.T) {
	_, err := NewFirebaseVerifier("").Verify(context.Background(), "tok")
	require.ErrorIs(t, err, ErrNotConfigured)
}

func TestMaxAge(t *testing.T) {
	require.Equal(t, 19*time.Minute, maxAge("public, max-age=1140, must-revalidate"))
	require.Equal(t, defaultCertsTTL, maxAge(""))
	require.Equal(t, defaultCertsTTL, maxAge("max-age=abc"))
}
