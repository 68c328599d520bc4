package repository

import (
	"context"

	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/internal/domain/entity"
)

// XPRepository owns the ledger and the materialized balance. Every write
// appends a ledger entry and moves xp_state by the same delta atomically.
type XPRepository interface {
	// AwardXP appends award and returns the resulting state. It returns
	// ErrDuplicate when award uses a unique source whose sourceRef exists.
	AwardXP(ctx context.Context, award entity.XPAward) (*entity.XPState, error)
	// DebitIfAffordable appends the negative-delta debit only if the balance
	// covers it. ok is false, with the current state, when it does not.
	DebitIfAffordable(ctx context.Context, debit entity.XPAward) (state *entity.XPState, ok bool, err error)
	GetXPState(ctx context.Context, profileID string) (*entity.XPState, error)
	FindLedgerEntry(ctx context.Context, profileID, source, sourceRef string) (*entity.XPLedgerEntry, error)
	ListLedger(ctx context.Context, profileID string, offset, limit int) ([]entity.XPLedgerEntry, int64, error)
	// AuditBalances lists profiles whose xp_state total differs from their ledger sum.
	AuditBalances(ctx context.Context) ([]entity.BalanceDrift, error)
}
