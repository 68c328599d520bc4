package repository

import (
	"context"

	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/internal/domain/entity"
)

// FactRepository reads the fact tables that other subsystems append to.
type FactRepository interface {
	// HasQualifyingRead reports a completed read of issueID past the read thresholds.
	HasQualifyingRead(ctx context.Context, profileID, issueID string) (bool, error)
	// CountDiscordEvents counts ledger rows, optionally filtered by event type.
	// Counting may stop once atLeast rows were seen.
	CountDiscordEvents(ctx context.Context, profileID, eventType string, atLeast int) (int, error)
	// HasPassedQuiz reports a passed attempt, for any issue when issueID is empty.
	HasPassedQuiz(ctx context.Context, profileID, issueID string) (bool, error)
	HasLedgerSource(ctx context.Context, profileID, source string) (bool, error)
	SumXPBySource(ctx context.Context, profileID, source string) (int64, error)
	ListPurchaseEntries(ctx context.Context, profileID string) ([]entity.XPLedgerEntry, error)
}
