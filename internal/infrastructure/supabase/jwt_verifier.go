package supabase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MicahParks/keyfunc"
	"github.com/golang-jwt/jwt/v4"

	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/internal/domain/entity"
	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/pkg/logger"
)

// Claims is the subset of a Supabase access token the engine reads.
type Claims struct {
	jwt.RegisteredClaims
	Role        string                 `json:"role"`
	AppMetadata map[string]interface{} `json:"app_metadata"`
}

// EffectiveRole prefers the app_metadata role set by admins over the
// Postgres role ("authenticated").
func (c *Claims) EffectiveRole() string {
	if r, ok := c.AppMetadata["role"].(string); ok && r != "" {
		return r
	}
	return c.Role
}

// JWTVerifier validates Supabase access tokens signed either with the
// project's shared secret (HS256) or with a key from its JWKS endpoint.
type JWTVerifier struct {
	keyfunc jwt.Keyfunc
	methods []string
	jwks    *keyfunc.JWKS
}

func NewSecretVerifier(secret string) *JWTVerifier {
	key := []byte(secret)
	return &JWTVerifier{
		keyfunc: func(*jwt.Token) (interface{}, error) { return key, nil },
		methods: []string{jwt.SigningMethodHS256.Alg()},
	}
}

func NewJWKSVerifier(jwksURL string) (*JWTVerifier, error) {
	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  5 * time.Minute,
		RefreshTimeout:    10 * time.Second,
		RefreshUnknownKID: true,
		RefreshErrorHandler: func(err error) {
			logger.Error("Failed to refresh Supabase JWKS: %v", err)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load JWKS from %s: %w", jwksURL, err)
	}
	return &JWTVerifier{
		keyfunc: jwks.Keyfunc,
		methods: []string{"RS256", "ES256"},
		jwks:    jwks,
	}, nil
}

func (v *JWTVerifier) VerifyToken(ctx context.Context, token string) (*entity.Principal, error) {
	claims := &Claims{}
	parser := jwt.NewParser(jwt.WithValidMethods(v.methods))
	if _, err := parser.ParseWithClaims(token, claims, v.keyfunc); err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	return &entity.Principal{ProfileID: claims.Subject, Role: claims.EffectiveRole()}, nil
}

// Close stops the JWKS background refresh.
func (v *JWTVerifier) Close() {
	if v.jwks != nil {
		v.jwks.EndBackground()
	}
}
