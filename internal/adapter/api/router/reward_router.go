package router

import (
	"github.com/labstack/echo/v4"

	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/internal/adapter/api/handler"
	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/internal/adapter/api/middleware"
	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/internal/infrastructure/ratelimit"
	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/pkg/logger"
)

// RedeemPath answers failures with the flat error body.
const RedeemPath = "/v1/rewards/redeem"

func SetupRewardRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, limiter *ratelimit.RateLimiter, log logger.Logger) {
	rewardHandler := handler.GetRewardHandler()

	rewards := e.Group("/v1/rewards")
	rewards.Use(authMiddleware.Authenticate)

	rewards.GET("", rewardHandler.ListRewards)
	rewards.GET("/claims", rewardHandler.ListClaims)
	rewards.POST("/redeem", rewardHandler.Redeem, middleware.ProfileRateLimit(limiter, ratelimit.ActionRedeem, log))
}
