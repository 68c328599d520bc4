package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/internal/domain/entity"
	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/internal/infrastructure/ratelimit"
	apperrors "github.com/MOODMNKY-LLC/mood-mnky-command-sub005/pkg/errors"
	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/pkg/logger"
)

type fakeVerifier struct{}

func (fakeVerifier) VerifyToken(ctx context.Context, token string) (*entity.Principal, error) {
	switch token {
	case "good":
		return &entity.Principal{ProfileID: "p1", Role: "authenticated"}, nil
	case "boss":
		return &entity.Principal{ProfileID: "p2", Role: "admin"}, nil
	}
	return nil, errors.New("bad token")
}

func run(mw echo.MiddlewareFunc, req *http.Request) (echo.Context, bool, error) {
	e := echo.New()
	c := e.NewContext(req, httptest.NewRecorder())
	called := false
	err := mw(func(c echo.Context) error {
		called = true
		return nil
	})(c)
	return c, called, err
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var httpErr *echo.HTTPError
	require.True(t, errors.As(err, &httpErr), "expected *echo.HTTPError, got %v", err)
	return httpErr.Code
}

func TestAuthenticate(t *testing.T) {
	m := NewAuthMiddleware(fakeVerifier{}, logger.Nop())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	c, called, err := run(m.Authenticate, req)
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, "p1", c.Get("uid"))
	assert.Equal(t, "authenticated", c.Get("role"))

	for _, header := range []string{"", "good", "Basic good", "Bearer", "Bearer bad"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		_, called, err := run(m.Authenticate, req)
		assert.False(t, called, header)
		assert.Equal(t, http.StatusUnauthorized, statusOf(t, err), header)
	}
}

func TestAuthenticateQueryToken(t *testing.T) {
	m := NewAuthMiddleware(fakeVerifier{}, logger.Nop())

	req := httptest.NewRequest(http.MethodGet, "/v1/ws?token=good", nil)
	_, called, err := run(m.Authenticate, req)
	assert.Error(t, err)
	assert.False(t, called)

	c, called, err := run(m.AuthenticateQuery, req)
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, "p1", c.Get("uid"))
}

func TestAdminOnly(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	m := NewAdminMiddleware(NewAuthMiddleware(fakeVerifier{}, logger.Nop()), "admin", string(hash))

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	_, called, err := run(m.AdminOnly, req)
	assert.False(t, called)
	assert.Equal(t, http.StatusForbidden, statusOf(t, err))

	req = httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "Bearer boss")
	_, called, err = run(m.AdminOnly, req)
	require.NoError(t, err)
	assert.True(t, called)

	req = httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set(ServiceKeyHeader, "s3cret")
	c, called, err := run(m.AdminOnly, req)
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, ServicePrincipal, c.Get("uid"))
}

func TestAdminOnlyWithoutServiceKeyConfigured(t *testing.T) {
	m := NewAdminMiddleware(NewAuthMiddleware(fakeVerifier{}, logger.Nop()), "admin", "")

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set(ServiceKeyHeader, "anything")
	_, called, err := run(m.AdminOnly, req)
	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
}

func TestProfileRateLimit(t *testing.T) {
	limiter := ratelimit.NewRateLimiter(ratelimit.Limit{PerMinute: 1, Burst: 1}, nil)
	mw := ProfileRateLimit(limiter, ratelimit.ActionRedeem, logger.Nop())

	e := echo.New()
	call := func() (*httptest.ResponseRecorder, bool, error) {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)
		c.Set("uid", "p1")
		called := false
		err := mw(func(echo.Context) error {
			called = true
			return nil
		})(c)
		return rec, called, err
	}

	_, called, err := call()
	require.NoError(t, err)
	assert.True(t, called)

	rec, called, err := call()
	assert.False(t, called)
	assert.True(t, apperrors.Is(err, apperrors.CodeTooManyRequests))
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
}
