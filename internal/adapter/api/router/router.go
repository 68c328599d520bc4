package router

import (
	"github.com/labstack/echo/v4"

	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/internal/adapter/api/handler"
	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/internal/adapter/api/middleware"
	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/internal/infrastructure/ratelimit"
	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/pkg/logger"
)

func Setup(
	e *echo.Echo,
	authMiddleware *middleware.AuthMiddleware,
	adminMiddleware *middleware.AdminMiddleware,
	limiter *ratelimit.RateLimiter,
	healthHandler *handler.HealthHandler,
	wsHandler *handler.WebSocketHandler,
	log logger.Logger,
) {
	SetupHealthRouter(e, healthHandler)
	SetupQuestRouter(e, authMiddleware, limiter, log)
	SetupXPRouter(e, authMiddleware)
	SetupRewardRouter(e, authMiddleware, limiter, log)
	SetupAdminRouter(e, adminMiddleware)
	SetupWebSocketRouter(e, wsHandler, authMiddleware)
}
