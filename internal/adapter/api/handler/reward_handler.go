package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/internal/domain/entity"
	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/internal/usecase"
	apperrors "github.com/MOODMNKY-LLC/mood-mnky-command-sub005/pkg/errors"
	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/pkg/logger"
	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/pkg/response"
)

const (
	IdempotencyKeyHeader = "Idempotency-Key"
	maxIdempotencyKeyLen = 200
)

type RewardHandler struct {
	rewardUseCase *usecase.RewardUseCase
	logger        logger.Logger
}

func NewRewardHandler(rewardUseCase *usecase.RewardUseCase, log logger.Logger) *RewardHandler {
	return &RewardHandler{
		rewardUseCase: rewardUseCase,
		logger:        log,
	}
}

type redeemRequest struct {
	RewardID  string `json:"rewardId" validate:"required"`
	RequestID string `json:"requestId,omitempty"`
}

func (h *RewardHandler) ListRewards(c echo.Context) error {
	profileID, err := getProfileID(c)
	if err != nil {
		return err
	}

	rewards, err := h.rewardUseCase.ListRewards(c.Request().Context(), profileID)
	if err != nil {
		h.logger.Error("failed to list rewards", "profileId", profileID, "error", err)
		return response.Error(c, err)
	}

	return response.Success(c, rewards)
}

func (h *RewardHandler) ListClaims(c echo.Context) error {
	profileID, err := getProfileID(c)
	if err != nil {
		return err
	}

	claims, err := h.rewardUseCase.ListClaims(c.Request().Context(), profileID)
	if err != nil {
		h.logger.Error("failed to list claims", "profileId", profileID, "error", err)
		return response.Error(c, err)
	}
	if claims == nil {
		claims = []entity.RewardClaim{}
	}

	return response.Success(c, claims)
}

// Redeem answers with the bare result on success and the flat
// {error, code, ...} body on failure. The Idempotency-Key header wins
// over requestId in the body.
func (h *RewardHandler) Redeem(c echo.Context) error {
	profileID, err := getProfileID(c)
	if err != nil {
		return response.FlatError(c, err)
	}

	var req redeemRequest
	if err := c.Bind(&req); err != nil {
		return response.FlatError(c, apperrors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.FlatError(c, err)
	}

	key := strings.TrimSpace(c.Request().Header.Get(IdempotencyKeyHeader))
	if key == "" {
		key = strings.TrimSpace(req.RequestID)
	}
	if len(key) > maxIdempotencyKeyLen {
		return response.FlatError(c, apperrors.BadRequest("Idempotency key is too long", nil))
	}

	result, err := h.rewardUseCase.Redeem(c.Request().Context(), usecase.RedeemRequest{
		ProfileID:      profileID,
		RewardID:       req.RewardID,
		IdempotencyKey: key,
	})
	if err != nil {
		if appErr, ok := apperrors.As(err); !ok || appErr.Status >= http.StatusInternalServerError {
			h.logger.Error("redemption failed", "profileId", profileID, "rewardId", req.RewardID, "error", err)
		}
		return response.FlatError(c, err)
	}

	return c.JSON(http.StatusOK, result)
}
