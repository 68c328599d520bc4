package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/internal/domain/entity"
	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/internal/domain/repository"
	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/internal/domain/service"
	apperrors "github.com/MOODMNKY-LLC/mood-mnky-command-sub005/pkg/errors"
	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/pkg/logger"
)

// claimNamespace derives claim ids from (profile, idempotency key).
var claimNamespace = uuid.MustParse("6f1c1a52-3c1e-4b7e-9d0a-5b8f2e7c4a11")

// Work after the debit is detached from the caller so a dropped connection
// cannot strand a debit without its mint, refund or claim.
const settleTimeout = 45 * time.Second

type RedeemConfig struct {
	CodePrefix       string
	DiscountValidity time.Duration
}

type RedeemRequest struct {
	ProfileID      string
	RewardID       string
	IdempotencyKey string
}

type RedemptionResult struct {
	Claim    *entity.RewardClaim `json:"claim"`
	Code     string              `json:"code,omitempty"`
	Replayed bool                `json:"replayed,omitempty"`
}

type RewardUseCase struct {
	rewardRepo repository.RewardRepository
	xpRepo     repository.XPRepository
	xp         *XPUseCase
	discounts  service.DiscountService
	incidents  IncidentArchive
	cfg        RedeemConfig
	logger     logger.Logger

	now    func() time.Time
	random io.Reader
}

func NewRewardUseCase(
	rewardRepo repository.RewardRepository,
	xpRepo repository.XPRepository,
	xp *XPUseCase,
	discounts service.DiscountService,
	incidents IncidentArchive,
	cfg RedeemConfig,
	log logger.Logger,
) *RewardUseCase {
	if cfg.DiscountValidity <= 0 {
		cfg.DiscountValidity = 30 * 24 * time.Hour
	}
	if cfg.CodePrefix == "" {
		cfg.CodePrefix = entity.DefaultCodePrefix
	}
	return &RewardUseCase{
		rewardRepo: rewardRepo,
		xpRepo:     xpRepo,
		xp:         xp,
		discounts:  discounts,
		incidents:  incidents,
		cfg:        cfg,
		logger:     log,
		now:        time.Now,
	}
}

// Redeem runs one redemption: checks, conditional debit, external mint,
// claim. A failed mint refunds the debit. A retry carrying the same
// idempotency key returns the original claim instead of redeeming again.
func (uc *RewardUseCase) Redeem(ctx context.Context, req RedeemRequest) (*RedemptionResult, error) {
	if req.ProfileID == "" {
		return nil, apperrors.Unauthenticated("Sign in to redeem rewards")
	}
	req.RewardID = strings.TrimSpace(req.RewardID)
	if req.RewardID == "" {
		return nil, apperrors.BadRequest("rewardId is required", nil)
	}

	reward, err := uc.rewardRepo.GetRewardByID(ctx, req.RewardID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("Reward", err)
		}
		return nil, apperrors.Internal("Failed to load reward", err)
	}
	if !reward.Active {
		return nil, apperrors.NotFound("Reward", nil)
	}

	claimID := uc.claimID(req)
	if req.IdempotencyKey != "" {
		if result, err := uc.replay(ctx, claimID, reward.ID); result != nil || err != nil {
			return result, err
		}
	}

	state, err := uc.xp.State(ctx, req.ProfileID)
	if err != nil {
		return nil, err
	}

	// A level-gated reward reports LEVEL_TOO_LOW whatever the balance.
	if required := reward.RequiredLevel(); state.Level < required {
		return nil, apperrors.LevelTooLow(required, state.Level)
	}
	cost := reward.CostXP()
	if state.XPTotal < cost {
		return nil, apperrors.InsufficientXP(cost, state.XPTotal)
	}

	log := uc.logger.With("profileId", req.ProfileID, "rewardId", reward.ID, "claimId", claimID)

	if cost > 0 {
		debited, ok, err := uc.xpRepo.DebitIfAffordable(ctx, entity.XPAward{
			ProfileID: req.ProfileID,
			Source:    entity.SourceRedemption,
			SourceRef: claimID,
			XPDelta:   -cost,
			Reason:    fmt.Sprintf("Redeemed reward: %s", rewardLabel(reward)),
		})
		if err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return uc.duplicateAttempt(ctx, req.ProfileID, claimID, reward.ID)
			}
			return nil, apperrors.Internal("Failed to debit XP", err)
		}
		if !ok {
			// Lost a race with a concurrent redemption.
			return nil, apperrors.InsufficientXP(cost, debited.XPTotal)
		}
		uc.xp.notifier.NotifyXPChanged(req.ProfileID, debited)
	}

	settleCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), settleTimeout)
	defer cancel()

	var code string
	if reward.Type == entity.RewardTypeDiscountCode {
		code, err = uc.mint(settleCtx, reward)
		if err != nil {
			log.Warn("discount mint failed, refunding", "error", err)
			uc.refund(settleCtx, req.ProfileID, claimID, reward, cost)
			return nil, apperrors.ExternalMintFailed(err)
		}
	}

	claim := &entity.RewardClaim{
		ID:             claimID,
		ProfileID:      req.ProfileID,
		RewardID:       reward.ID,
		Status:         entity.ClaimStatusIssued,
		ExternalRef:    code,
		IdempotencyKey: req.IdempotencyKey,
		IssuedAt:       uc.now().UTC(),
	}
	if err := uc.rewardRepo.CreateClaim(settleCtx, claim); err != nil {
		if errors.Is(err, repository.ErrDuplicate) && req.IdempotencyKey != "" {
			if result, rerr := uc.replay(settleCtx, claimID, reward.ID); result != nil || rerr != nil {
				return result, rerr
			}
		}
		log.Error("claim not persisted after successful mint", "code", code, "costXp", cost, "error", err)
		uc.archive(settleCtx, entity.Incident{
			Kind:      entity.IncidentClaimNotPersisted,
			ProfileID: req.ProfileID,
			RewardID:  reward.ID,
			ClaimID:   claimID,
			Code:      code,
			CostXP:    cost,
			Error:     err.Error(),
		})
		return nil, apperrors.PersistFailed(err)
	}

	log.Info("reward redeemed", "costXp", cost, "code", code)
	return &RedemptionResult{Claim: claim, Code: code}, nil
}

func (uc *RewardUseCase) claimID(req RedeemRequest) string {
	if req.IdempotencyKey == "" {
		return uuid.NewString()
	}
	return uuid.NewSHA1(claimNamespace, []byte(req.ProfileID+":"+req.IdempotencyKey)).String()
}

// replay returns the stored result for an idempotent retry, or (nil, nil)
// when no claim exists yet.
func (uc *RewardUseCase) replay(ctx context.Context, claimID, rewardID string) (*RedemptionResult, error) {
	existing, err := uc.rewardRepo.GetClaimByID(ctx, claimID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Internal("Failed to look up previous redemption", err)
	}
	if existing.RewardID != rewardID {
		return nil, apperrors.Conflict("Idempotency key was already used for a different reward")
	}
	return &RedemptionResult{Claim: existing, Code: existing.ExternalRef, Replayed: true}, nil
}

// duplicateAttempt explains why the debit for claimID already exists.
func (uc *RewardUseCase) duplicateAttempt(ctx context.Context, profileID, claimID, rewardID string) (*RedemptionResult, error) {
	if result, err := uc.replay(ctx, claimID, rewardID); result != nil || err != nil {
		return result, err
	}
	_, err := uc.xpRepo.FindLedgerEntry(ctx, profileID, entity.SourceRedemptionRefund, claimID)
	if err == nil {
		return nil, apperrors.Conflict("A previous attempt with this idempotency key failed; retry with a new key")
	}
	return nil, apperrors.Conflict("A redemption with this idempotency key is already in progress")
}

func (uc *RewardUseCase) mint(ctx context.Context, reward *entity.Reward) (string, error) {
	code, err := entity.GenerateDiscountCode(reward.CodePrefix(uc.cfg.CodePrefix), uc.random)
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}

	start := uc.now().UTC()
	req := service.DiscountCodeRequest{
		Title:                  fmt.Sprintf("%s (%s)", rewardLabel(reward), code),
		Code:                   code,
		StartsAt:               start,
		EndsAt:                 start.Add(uc.cfg.DiscountValidity),
		AppliesOncePerCustomer: true,
	}

	value := reward.DiscountValue()
	switch reward.DiscountType() {
	case entity.DiscountFixedAmount:
		req.Amount = &value
	default:
		// Catalog values are whole percents.
		value = value / 100
		req.Percentage = &value
	}

	res, err := uc.discounts.CreateDiscountCode(ctx, req)
	if err != nil {
		return "", err
	}
	return res.Code, nil
}

func (uc *RewardUseCase) refund(ctx context.Context, profileID, claimID string, reward *entity.Reward, cost int64) {
	if cost <= 0 {
		return
	}
	state, err := uc.xpRepo.AwardXP(ctx, entity.XPAward{
		ProfileID: profileID,
		Source:    entity.SourceRedemptionRefund,
		SourceRef: claimID,
		XPDelta:   cost,
		Reason:    fmt.Sprintf("Refund: %s could not be issued", rewardLabel(reward)),
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return
	}
	if err != nil {
		uc.logger.Error("refund failed after mint failure",
			"profileId", profileID, "rewardId", reward.ID, "claimId", claimID, "costXp", cost, "error", err)
		uc.archive(ctx, entity.Incident{
			Kind:      entity.IncidentRefundFailed,
			ProfileID: profileID,
			RewardID:  reward.ID,
			ClaimID:   claimID,
			CostXP:    cost,
			Error:     err.Error(),
		})
		return
	}
	uc.xp.notifier.NotifyXPChanged(profileID, state)
}

func (uc *RewardUseCase) archive(ctx context.Context, incident entity.Incident) {
	if uc.incidents == nil {
		return
	}
	incident.ID = uuid.NewString()
	incident.OccurredAt = uc.now().UTC()
	if err := uc.incidents.Archive(ctx, incident); err != nil {
		uc.logger.Error("failed to archive incident", "kind", incident.Kind, "claimId", incident.ClaimID, "code", incident.Code, "error", err)
	}
}

// ListRewards returns the active catalog with per-profile availability, so
// clients can disable redeem before calling it.
func (uc *RewardUseCase) ListRewards(ctx context.Context, profileID string) ([]entity.RewardWithAvailability, error) {
	rewards, err := uc.rewardRepo.ListActiveRewards(ctx)
	if err != nil {
		return nil, apperrors.Internal("Failed to load rewards", err)
	}
	state, err := uc.xp.State(ctx, profileID)
	if err != nil {
		return nil, err
	}

	out := make([]entity.RewardWithAvailability, 0, len(rewards))
	for i := range rewards {
		r := &rewards[i]
		item := entity.RewardWithAvailability{
			Reward:        *r,
			CostXP:        r.CostXP(),
			RequiredLevel: r.RequiredLevel(),
			CanRedeem:     true,
		}
		switch {
		case state.Level < item.RequiredLevel:
			item.CanRedeem = false
			item.BlockedReason = apperrors.CodeLevelTooLow
		case state.XPTotal < item.CostXP:
			item.CanRedeem = false
			item.BlockedReason = apperrors.CodeInsufficientXP
		}
		out = append(out, item)
	}
	return out, nil
}

func (uc *RewardUseCase) ListClaims(ctx context.Context, profileID string) ([]entity.RewardClaim, error) {
	claims, err := uc.rewardRepo.ListClaimsByProfile(ctx, profileID)
	if err != nil {
		return nil, apperrors.Internal("Failed to load claims", err)
	}
	return claims, nil
}

func rewardLabel(r *entity.Reward) string {
	if r.Title != "" {
		return r.Title
	}
	return r.ID
}
