package httptransport

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthProvider decorates outgoing requests with credentials
type AuthProvider interface {
	Apply(req *http.Request) error
}

// BearerToken is a static token credential
type BearerToken string

// Apply sets the Authorization header
func (t BearerToken) Apply(req *http.Request) error {
	req.Header.Set("Authorization", "Bearer "+string(t))
	return nil
}

// JWTAuth mints a short-lived HS256 token per request
type JWTAuth struct {
	secret []byte
	ttl    time.Duration
	claims map[string]any
}

// NewJWTAuth creates a JWT provider. The extra claims are merged into
// every token alongside iat/exp.
func NewJWTAuth(secret string, ttl time.Duration, claims map[string]any) *JWTAuth {
	return &JWTAuth{secret: []byte(secret), ttl: ttl, claims: claims}
}

// Apply signs a fresh token and sets the Authorization header
func (a *JWTAuth) Apply(req *http.Request) error {
	now := time.Now()
	claims := jwt.MapClaims{
		"iat": now.Unix(),
		"exp": now.Add(a.ttl).Unix(),
	}
	for k, v := range a.claims {
		claims[k] = v
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return err
	}

	req.Header.Set("Authorization", "Bearer "+signed)
	return nil
}
