package middleware

import (
	"math"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/internal/infrastructure/ratelimit"
	apperrors "github.com/MOODMNKY-LLC/mood-mnky-command-sub005/pkg/errors"
	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/pkg/logger"
)

// ProfileRateLimit throttles action per authenticated profile. It must run
// after Authenticate; requests without a uid fall back to the client IP.
func ProfileRateLimit(limiter *ratelimit.RateLimiter, action string, log logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key, ok := c.Get("uid").(string)
			if !ok || key == "" {
				key = "ip:" + c.RealIP()
			}

			allowed, wait := limiter.Allow(key, action)
			if allowed {
				return next(c)
			}

			retryAfter := int(math.Ceil(wait.Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}
			log.Warn("rate limit exceeded", "key", key, "action", action, "retryAfter", retryAfter)
			c.Response().Header().Set("Retry-After", strconv.Itoa(retryAfter))
			return apperrors.TooManyRequests("Too many requests, slow down", retryAfter)
		}
	}
}
