package router

import (
	"github.com/labstack/echo/v4"

	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/internal/adapter/api/handler"
	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/internal/adapter/api/middleware"
)

func SetupXPRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	xpHandler := handler.GetXPHandler()

	xp := e.Group("/v1/xp")
	xp.Use(authMiddleware.Authenticate)

	xp.GET("", xpHandler.GetBalance)
	xp.GET("/ledger", xpHandler.GetLedger)
}
