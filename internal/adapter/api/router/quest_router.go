package router

import (
	"github.com/labstack/echo/v4"

	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/internal/adapter/api/handler"
	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/internal/adapter/api/middleware"
	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/internal/infrastructure/ratelimit"
	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/pkg/logger"
)

func SetupQuestRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, limiter *ratelimit.RateLimiter, log logger.Logger) {
	questHandler := handler.GetQuestHandler()

	quests := e.Group("/v1/quests")
	quests.Use(authMiddleware.Authenticate)

	quests.GET("", questHandler.ListQuests)
	quests.POST("/:id/claim", questHandler.ClaimQuest, middleware.ProfileRateLimit(limiter, ratelimit.ActionQuestClaim, log))
}
