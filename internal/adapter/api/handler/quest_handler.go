package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/internal/usecase"
	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/pkg/logger"
	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/pkg/response"
)

type QuestHandler struct {
	questUseCase *usecase.QuestUseCase
	logger       logger.Logger
}

func NewQuestHandler(questUseCase *usecase.QuestUseCase, log logger.Logger) *QuestHandler {
	return &QuestHandler{
		questUseCase: questUseCase,
		logger:       log,
	}
}

func (h *QuestHandler) ListQuests(c echo.Context) error {
	profileID, err := getProfileID(c)
	if err != nil {
		return err
	}

	quests, err := h.questUseCase.ListQuestsWithProgress(c.Request().Context(), profileID)
	if err != nil {
		h.logger.Error("failed to list quests", "profileId", profileID, "error", err)
		return response.Error(c, err)
	}

	return response.Success(c, quests)
}

func (h *QuestHandler) ClaimQuest(c echo.Context) error {
	profileID, err := getProfileID(c)
	if err != nil {
		return err
	}

	state, err := h.questUseCase.ClaimQuestReward(c.Request().Context(), profileID, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, state)
}
