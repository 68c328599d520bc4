package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

const ServiceKeyHeader = "X-Service-Key"

// ServicePrincipal is the uid recorded for calls made with the service key.
const ServicePrincipal = "service"

type AdminMiddleware struct {
	auth           *AuthMiddleware
	adminRole      string
	serviceKeyHash []byte
}

// NewAdminMiddleware admits callers whose token carries adminRole, or
// internal services presenting a key matching serviceKeyHash (bcrypt).
// An empty hash disables the service key.
func NewAdminMiddleware(auth *AuthMiddleware, adminRole, serviceKeyHash string) *AdminMiddleware {
	m := &AdminMiddleware{auth: auth, adminRole: adminRole}
	if serviceKeyHash != "" {
		m.serviceKeyHash = []byte(serviceKeyHash)
	}
	return m
}

func (m *AdminMiddleware) AdminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	requireRole := m.auth.Authenticate(func(c echo.Context) error {
		role, _ := c.Get("role").(string)
		if role != m.adminRole {
			return echo.NewHTTPError(http.StatusForbidden, "Admin privileges required")
		}
		return next(c)
	})

	return func(c echo.Context) error {
		key := c.Request().Header.Get(ServiceKeyHeader)
		if key == "" {
			return requireRole(c)
		}
		if m.serviceKeyHash == nil || bcrypt.CompareHashAndPassword(m.serviceKeyHash, []byte(key)) != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid service key")
		}
		c.Set("uid", ServicePrincipal)
		c.Set("role", m.adminRole)
		return next(c)
	}
}
