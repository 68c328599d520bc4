package supabase

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "super-secret-jwt-token-with-at-least-32-characters"

func sign(t *testing.T, claims Claims, secret string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestSecretVerifierAcceptsValidToken(t *testing.T) {
	v := NewSecretVerifier(testSecret)
	token := sign(t, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "8d0c6c1e-profile",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role:        "authenticated",
		AppMetadata: map[string]interface{}{"role": "admin"},
	}, testSecret)

	p, err := v.VerifyToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "8d0c6c1e-profile", p.ProfileID)
	assert.Equal(t, "admin", p.Role)
}

func TestSecretVerifierRejects(t *testing.T) {
	v := NewSecretVerifier(testSecret)
	ctx := context.Background()

	expired := sign(t, Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "p1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}}, testSecret)
	_, err := v.VerifyToken(ctx, expired)
	assert.Error(t, err)

	wrongKey := sign(t, Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "p1"}}, "another-secret")
	_, err = v.VerifyToken(ctx, wrongKey)
	assert.Error(t, err)

	noSubject := sign(t, Claims{Role: "authenticated"}, testSecret)
	_, err = v.VerifyToken(ctx, noSubject)
	assert.Error(t, err)

	_, err = v.VerifyToken(ctx, "not-a-jwt")
	assert.Error(t, err)
}

func TestEffectiveRoleFallsBackToPostgresRole(t *testing.T) {
	c := Claims{Role: "authenticated"}
	assert.Equal(t, "authenticated", c.EffectiveRole())
}
