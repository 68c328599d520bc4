package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/internal/domain/entity"
	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/internal/domain/repository"
	apperrors "github.com/MOODMNKY-LLC/mood-mnky-command-sub005/pkg/errors"
	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/pkg/logger"
)

type XPUseCase struct {
	xpRepo    repository.XPRepository
	curve     entity.LevelCurve
	notifier  XPNotifier
	incidents IncidentArchive
	logger    logger.Logger
}

type XPBalance struct {
	entity.XPState
	NextLevelAt *int64 `json:"nextLevelAt,omitempty"`
}

func NewXPUseCase(xpRepo repository.XPRepository, curve entity.LevelCurve, notifier XPNotifier, incidents IncidentArchive, log logger.Logger) *XPUseCase {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &XPUseCase{
		xpRepo:    xpRepo,
		curve:     curve,
		notifier:  notifier,
		incidents: incidents,
		logger:    log,
	}
}

// AwardXP appends one ledger entry through the store's atomic award.
func (uc *XPUseCase) AwardXP(ctx context.Context, award entity.XPAward) (*entity.XPState, error) {
	if err := award.Validate(); err != nil {
		return nil, apperrors.BadRequest(err.Error(), err)
	}

	state, err := uc.xpRepo.AwardXP(ctx, award)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Conflict("XP for this source reference was already recorded")
		}
		return nil, apperrors.Internal("Failed to award XP", err)
	}

	uc.logger.Info("xp awarded",
		"profileId", award.ProfileID, "source", award.Source, "sourceRef", award.SourceRef,
		"delta", award.XPDelta, "xpTotal", state.XPTotal, "level", state.Level)
	uc.notifier.NotifyXPChanged(award.ProfileID, state)
	return state, nil
}

// State returns the profile's balance, 0 XP at level 1 when it has none yet.
func (uc *XPUseCase) State(ctx context.Context, profileID string) (*entity.XPState, error) {
	state, err := uc.xpRepo.GetXPState(ctx, profileID)
	if errors.Is(err, repository.ErrNotFound) {
		return entity.NewXPState(profileID), nil
	}
	if err != nil {
		return nil, apperrors.Internal("Failed to load XP balance", err)
	}
	return state, nil
}

func (uc *XPUseCase) GetBalance(ctx context.Context, profileID string) (*XPBalance, error) {
	state, err := uc.State(ctx, profileID)
	if err != nil {
		return nil, err
	}
	balance := &XPBalance{XPState: *state}
	if next, ok := uc.curve.NextLevelAt(state.XPTotal); ok {
		balance.NextLevelAt = &next
	}
	return balance, nil
}

func (uc *XPUseCase) GetLedger(ctx context.Context, profileID string, offset, limit int) ([]entity.XPLedgerEntry, int64, error) {
	entries, total, err := uc.xpRepo.ListLedger(ctx, profileID, offset, limit)
	if err != nil {
		return nil, 0, apperrors.Internal("Failed to load XP history", err)
	}
	return entries, total, nil
}

// AuditLedger reports every profile whose materialized total has drifted
// from its ledger and archives an incident for each.
func (uc *XPUseCase) AuditLedger(ctx context.Context) ([]entity.BalanceDrift, error) {
	drifts, err := uc.xpRepo.AuditBalances(ctx)
	if err != nil {
		return nil, err
	}

	for _, d := range drifts {
		uc.logger.Error("xp balance drift",
			"profileId", d.ProfileID, "xpTotal", d.XPTotal, "ledgerSum", d.LedgerSum)
		if uc.incidents == nil {
			continue
		}
		incident := entity.Incident{
			ID:         uuid.NewString(),
			Kind:       entity.IncidentBalanceDrift,
			ProfileID:  d.ProfileID,
			Data:       map[string]interface{}{"xpTotal": d.XPTotal, "ledgerSum": d.LedgerSum},
			OccurredAt: time.Now().UTC(),
		}
		if err := uc.incidents.Archive(ctx, incident); err != nil {
			uc.logger.Error("failed to archive drift incident", "profileId", d.ProfileID, "error", err)
		}
	}
	return drifts, nil
}
