package handler

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/internal/domain/entity"
	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/internal/usecase"
	apperrors "github.com/MOODMNKY-LLC/mood-mnky-command-sub005/pkg/errors"
	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/pkg/logger"
	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/pkg/response"
)

type AdminHandler struct {
	xpUseCase *usecase.XPUseCase
	logger    logger.Logger
}

func NewAdminHandler(xpUseCase *usecase.XPUseCase, log logger.Logger) *AdminHandler {
	return &AdminHandler{
		xpUseCase: xpUseCase,
		logger:    log,
	}
}

type awardXPRequest struct {
	ProfileID        string   `json:"profileId" validate:"required"`
	Source           string   `json:"source,omitempty" validate:"omitempty,max=64"`
	SourceRef        string   `json:"sourceRef,omitempty" validate:"omitempty,max=200"`
	XPDelta          int64    `json:"xpDelta" validate:"required"`
	Reason           string   `json:"reason,omitempty" validate:"omitempty,max=500"`
	PurchaseSubtotal *float64 `json:"purchaseSubtotal,omitempty" validate:"omitempty,min=0"`
}

// AwardXP appends a ledger entry on behalf of another subsystem (order
// webhooks, UGC moderation) or an operator. Redemption sources are reserved
// for the redeem flow.
func (h *AdminHandler) AwardXP(c echo.Context) error {
	var req awardXPRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, apperrors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	source := strings.TrimSpace(req.Source)
	switch source {
	case "":
		source = entity.SourceAdminGrant
	case entity.SourceRedemption, entity.SourceRedemptionRefund:
		return response.Error(c, apperrors.BadRequest("source "+source+" is reserved", nil))
	}

	actor, _ := c.Get("uid").(string)
	state, err := h.xpUseCase.AwardXP(c.Request().Context(), entity.XPAward{
		ProfileID:        req.ProfileID,
		Source:           source,
		SourceRef:        req.SourceRef,
		XPDelta:          req.XPDelta,
		Reason:           req.Reason,
		PurchaseSubtotal: req.PurchaseSubtotal,
	})
	if err != nil {
		return response.Error(c, err)
	}

	h.logger.Info("admin xp award", "actor", actor, "profileId", req.ProfileID, "source", source, "delta", req.XPDelta)
	return response.Created(c, state)
}
