package auth

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	firebaseCertsURL   = "https://www.googleapis.com/robot/v1/metadata/x509/securetoken@system.gserviceaccount.com"
	firebaseIssuerBase = "https://securetoken.google.com/"
	defaultCertsTTL    = time.Hour
)

// ErrNotConfigured is returned when no identity provider project is set.
var ErrNotConfigured = errors.New("identity provider not configured")

// Identity is the verified subject of an ID token.
type Identity struct {
	UID   string
	Email string
	Name  string
}

// IdentityVerifier checks a federated ID token.
type IdentityVerifier interface {
	Verify(ctx context.Context, idToken string) (Identity, error)
}

type firebaseClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// FirebaseVerifier validates Firebase Auth ID tokens against Google's
// published signing certificates.
type FirebaseVerifier struct {
	projectID  string
	certsURL   string
	httpClient *http.Client
	now        func() time.Time

	mu      sync.Mutex
	keys    map[string]*rsa.PublicKey
	expires time.Time
}

func NewFirebaseVerifier(projectID string) *FirebaseVerifier {
	return &FirebaseVerifier{
		projectID:  projectID,
		certsURL:   firebaseCertsURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		now:        time.Now,
	}
}

func (v *FirebaseVerifier) Verify(ctx context.Context, idToken string) (Identity, error) {
	if v == nil || v.projectID == "" {
		return Identity{}, ErrNotConfigured
	}
	if strings.TrimSpace(idToken) == "" {
		return Identity{}, errors.New("id token must be a non-empty string")
	}

	var claims firebaseClaims
	_, err := jwt.ParseWithClaims(idToken, &claims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("id token has no kid header")
		}
		return v.key(ctx, kid)
	},
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithAudience(v.projectID),
		jwt.WithIssuer(firebaseIssuerBase+v.projectID),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		return Identity{}, fmt.Errorf("verify id token: %w", err)
	}
	if claims.Subject == "" {
		return Identity{}, errors.New("verify id token: empty subject")
	}
	return Identity{UID: claims.Subject, Email: claims.Email, Name: claims.Name}, nil
}

func (v *FirebaseVerifier) key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.keys == nil || v.now().After(v.expires) {
		if err := v.refresh(ctx); err != nil {
			return nil, err
		}
	}
	key, ok := v.keys[kid]
	if !ok {
		return nil, fmt.Errorf("no signing certificate for kid %q", kid)
	}
	return key, nil
}

func (v *FirebaseVerifier) refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.certsURL, nil)
	if err != nil {
		return err
	}
	resp, err := v.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch signing certificates: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch signing certificates: status %d", resp.StatusCode)
	}

	var certs map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&certs); err != nil {
		return fmt.Errorf("decode signing certificates: %w", err)
	}
	keys := make(map[string]*rsa.PublicKey, len(certs))
	for kid, certPEM := range certs {
		key, err := parseCertKey(certPEM)
		if err != nil {
			return fmt.Errorf("certificate %s: %w", kid, err)
		}
		keys[kid] = key
	}
	v.keys = keys
	v.expires = v.now().Add(maxAge(resp.Header.Get("Cache-Control")))
	return nil
}

func parseCertKey(certPEM string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(certPEM))
	if block == nil {
		return nil, errors.New("invalid PEM")
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil, err
	}
	key, ok := cert.PublicKey.(*rsa.PublicKey)
	if !ok {
		return nil, errors.New("certificate key is not RSA")
	}
	return key, nil
}

func maxAge(cacheControl string) time.Duration {
	for _, part := range strings.Split(cacheControl, ",") {
		part = strings.TrimSpace(part)
		if raw, ok := strings.CutPrefix(part, "max-age="); ok {
			if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
				return time.Duration(secs) * time.Second
			}
		}
	}
	return defaultCertsTTL
}

var _ IdentityVerifier = (*FirebaseVerifier)(nil)
