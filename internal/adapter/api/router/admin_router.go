package router

import (
	"github.com/labstack/echo/v4"

	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/internal/adapter/api/handler"
	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/internal/adapter/api/middleware"
)

// SetupAdminRouter mounts operator and service endpoints. AdminOnly
// authenticates on its own so service-key callers need no bearer token.
func SetupAdminRouter(e *echo.Echo, adminMiddleware *middleware.AdminMiddleware) {
	adminHandler := handler.GetAdminHandler()

	admin := e.Group("/v1/admin")
	admin.Use(adminMiddleware.AdminOnly)

	admin.POST("/xp/award", adminHandler.AwardXP)
}
