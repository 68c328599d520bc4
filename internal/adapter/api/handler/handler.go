package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/internal/usecase"
	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/pkg/logger"
)

var (
	questHandler  *QuestHandler
	xpHandler     *XPHandler
	rewardHandler *RewardHandler
	adminHandler  *AdminHandler
)

func Setup(
	questUseCase *usecase.QuestUseCase,
	xpUseCase *usecase.XPUseCase,
	rewardUseCase *usecase.RewardUseCase,
	log logger.Logger,
) {
	questHandler = NewQuestHandler(questUseCase, log)
	xpHandler = NewXPHandler(xpUseCase, log)
	rewardHandler = NewRewardHandler(rewardUseCase, log)
	adminHandler = NewAdminHandler(xpUseCase, log)
}

func GetQuestHandler() *QuestHandler {
	return questHandler
}

func GetXPHandler() *XPHandler {
	return xpHandler
}

func GetRewardHandler() *RewardHandler {
	return rewardHandler
}

func GetAdminHandler() *AdminHandler {
	return adminHandler
}

// getProfileID reads the profile id the auth middleware stored.
func getProfileID(c echo.Context) (string, error) {
	profileID, ok := c.Get("uid").(string)
	if !ok || profileID == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "Invalid session")
	}
	return profileID, nil
}
