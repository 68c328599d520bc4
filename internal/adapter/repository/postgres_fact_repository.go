package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/internal/domain/entity"
	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/internal/domain/repository"
)

type postgresFactRepository struct {
	db *pgxpool.Pool
}

func NewPostgresFactRepository(db *pgxpool.Pool) repository.FactRepository {
	return &postgresFactRepository{db: db}
}

func (r *postgresFactRepository) exists(ctx context.Context, query string, args ...interface{}) (bool, error) {
	var ok bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (`+query+`)`, args...).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

func (r *postgresFactRepository) HasQualifyingRead(ctx context.Context, profileID, issueID string) (bool, error) {
	ok, err := r.exists(ctx, `
		SELECT 1 FROM mag_read_events
		WHERE profile_id = $1 AND issue_id = $2 AND completed
		  AND percent_read >= $3 AND active_seconds >= $4`,
		profileID, issueID, entity.ReadMinPercent, entity.ReadMinActiveSeconds)
	if err != nil {
		return false, fmt.Errorf("read events: %w", err)
	}
	return ok, nil
}

func (r *postgresFactRepository) CountDiscordEvents(ctx context.Context, profileID, eventType string, atLeast int) (int, error) {
	// The LIMIT lets the planner stop once the threshold is known to be met.
	var n int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM (
			SELECT 1 FROM discord_event_ledger
			WHERE profile_id = $1 AND ($2 = '' OR event_type = $2)
			LIMIT $3
		) t`,
		profileID, eventType, atLeast).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("discord events: %w", err)
	}
	return n, nil
}

func (r *postgresFactRepository) HasPassedQuiz(ctx context.Context, profileID, issueID string) (bool, error) {
	ok, err := r.exists(ctx, `
		SELECT 1 FROM mag_quiz_attempts
		WHERE profile_id = $1 AND ($2 = '' OR issue_id = $2) AND passed`,
		profileID, issueID)
	if err != nil {
		return false, fmt.Errorf("quiz attempts: %w", err)
	}
	return ok, nil
}

func (r *postgresFactRepository) HasLedgerSource(ctx context.Context, profileID, source string) (bool, error) {
	ok, err := r.exists(ctx, `SELECT 1 FROM xp_ledger WHERE profile_id = $1 AND source = $2`, profileID, source)
	if err != nil {
		return false, fmt.Errorf("ledger source: %w", err)
	}
	return ok, nil
}

func (r *postgresFactRepository) SumXPBySource(ctx context.Context, profileID, source string) (int64, error) {
	var sum int64
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(xp_delta), 0)::bigint FROM xp_ledger WHERE profile_id = $1 AND source = $2`,
		profileID, source).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sum ledger: %w", err)
	}
	return sum, nil
}

func (r *postgresFactRepository) ListPurchaseEntries(ctx context.Context, profileID string) ([]entity.XPLedgerEntry, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+ledgerColumns+` FROM xp_ledger WHERE profile_id = $1 AND source = $2 ORDER BY created_at`,
		profileID, entity.SourcePurchase)
	if err != nil {
		return nil, fmt.Errorf("purchase entries: %w", err)
	}
	return collectLedger(rows)
}
