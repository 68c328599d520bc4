package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/internal/domain/entity"
	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/internal/usecase"
	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/pkg/logger"
	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/pkg/response"
	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/pkg/utils"
)

type XPHandler struct {
	xpUseCase *usecase.XPUseCase
	logger    logger.Logger
}

func NewXPHandler(xpUseCase *usecase.XPUseCase, log logger.Logger) *XPHandler {
	return &XPHandler{
		xpUseCase: xpUseCase,
		logger:    log,
	}
}

func (h *XPHandler) GetBalance(c echo.Context) error {
	profileID, err := getProfileID(c)
	if err != nil {
		return err
	}

	balance, err := h.xpUseCase.GetBalance(c.Request().Context(), profileID)
	if err != nil {
		h.logger.Error("failed to load balance", "profileId", profileID, "error", err)
		return response.Error(c, err)
	}

	return response.Success(c, balance)
}

// GetLedger pages through the profile's ledger, newest first.
func (h *XPHandler) GetLedger(c echo.Context) error {
	profileID, err := getProfileID(c)
	if err != nil {
		return err
	}

	page := utils.ParsePage(c)
	entries, total, err := h.xpUseCase.GetLedger(c.Request().Context(), profileID, page.Offset, page.Size)
	if err != nil {
		h.logger.Error("failed to load ledger", "profileId", profileID, "error", err)
		return response.Error(c, err)
	}

	if entries == nil {
		entries = []entity.XPLedgerEntry{}
	}
	return response.Paginated(c, entries, total, page.Number, page.Size)
}
