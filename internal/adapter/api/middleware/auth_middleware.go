package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/internal/domain/entity"
	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/pkg/logger"
)

// TokenVerifier turns a bearer token into the caller's identity.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*entity.Principal, error)
}

type AuthMiddleware struct {
	verifier TokenVerifier
	logger   logger.Logger
}

func NewAuthMiddleware(verifier TokenVerifier, log logger.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
		logger:   log,
	}
}

func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return m.authenticate(next, false)
}

// AuthenticateQuery also accepts ?token=, since browsers cannot set headers
// on a WebSocket handshake.
func (m *AuthMiddleware) AuthenticateQuery(next echo.HandlerFunc) echo.HandlerFunc {
	return m.authenticate(next, true)
}

func (m *AuthMiddleware) authenticate(next echo.HandlerFunc, allowQuery bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, err := bearerToken(c.Request().Header.Get("Authorization"))
		if err != nil && allowQuery {
			if q := c.QueryParam("token"); q != "" {
				token, err = q, nil
			}
		}
		if err != nil {
			return err
		}

		principal, err := m.verifier.VerifyToken(c.Request().Context(), token)
		if err != nil {
			m.logger.Debug("token rejected", "path", c.Path(), "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
		}

		c.Set("uid", principal.ProfileID)
		c.Set("role", principal.Role)
		return next(c)
	}
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "Authorization header is required")
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "Invalid authorization format")
	}
	return parts[1], nil
}
