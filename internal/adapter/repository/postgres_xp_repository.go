package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/internal/domain/entity"
	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/internal/domain/repository"
	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/internal/infrastructure/postgres"
)

type postgresXPRepository struct {
	db    *pgxpool.Pool
	curve entity.LevelCurve
}

// NewPostgresXPRepository writes through the award_xp and
// debit_xp_if_affordable functions so that every ledger append and its
// xp_state update commit together.
func NewPostgresXPRepository(db *pgxpool.Pool, curve entity.LevelCurve) repository.XPRepository {
	return &postgresXPRepository{db: db, curve: curve}
}

func (r *postgresXPRepository) AwardXP(ctx context.Context, award entity.XPAward) (*entity.XPState, error) {
	state := entity.XPState{ProfileID: award.ProfileID}
	err := r.db.QueryRow(ctx,
		`SELECT xp_total, level, updated_at FROM award_xp($1, $2, $3, $4, $5, $6, $7)`,
		award.ProfileID, award.Source, award.SourceRef, award.XPDelta, award.Reason,
		award.PurchaseSubtotal, r.curve.Thresholds(),
	).Scan(&state.XPTotal, &state.Level, &state.UpdatedAt)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return nil, repository.ErrDuplicate
		}
		return nil, fmt.Errorf("award_xp: %w", err)
	}
	return &state, nil
}

func (r *postgresXPRepository) DebitIfAffordable(ctx context.Context, debit entity.XPAward) (*entity.XPState, bool, error) {
	state := entity.XPState{ProfileID: debit.ProfileID}
	var ok bool
	err := r.db.QueryRow(ctx,
		`SELECT ok, xp_total, level, updated_at FROM debit_xp_if_affordable($1, $2, $3, $4, $5, $6)`,
		debit.ProfileID, debit.Source, debit.SourceRef, -debit.XPDelta, debit.Reason, r.curve.Thresholds(),
	).Scan(&ok, &state.XPTotal, &state.Level, &state.UpdatedAt)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return nil, false, repository.ErrDuplicate
		}
		return nil, false, fmt.Errorf("debit_xp_if_affordable: %w", err)
	}
	return &state, ok, nil
}

func (r *postgresXPRepository) GetXPState(ctx context.Context, profileID string) (*entity.XPState, error) {
	state := entity.XPState{ProfileID: profileID}
	err := r.db.QueryRow(ctx,
		`SELECT xp_total, level, updated_at FROM xp_state WHERE profile_id = $1`, profileID,
	).Scan(&state.XPTotal, &state.Level, &state.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get xp_state: %w", err)
	}
	return &state, nil
}

const ledgerColumns = `id::text, profile_id, source, source_ref, xp_delta, reason, purchase_subtotal::float8, created_at`

func scanLedgerEntry(row pgx.Row) (entity.XPLedgerEntry, error) {
	var e entity.XPLedgerEntry
	err := row.Scan(&e.ID, &e.ProfileID, &e.Source, &e.SourceRef, &e.XPDelta, &e.Reason, &e.PurchaseSubtotal, &e.CreatedAt)
	return e, err
}

func (r *postgresXPRepository) FindLedgerEntry(ctx context.Context, profileID, source, sourceRef string) (*entity.XPLedgerEntry, error) {
	e, err := scanLedgerEntry(r.db.QueryRow(ctx,
		`SELECT `+ledgerColumns+` FROM xp_ledger
		 WHERE profile_id = $1 AND source = $2 AND source_ref = $3
		 ORDER BY created_at LIMIT 1`,
		profileID, source, sourceRef))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find ledger entry: %w", err)
	}
	return &e, nil
}

func (r *postgresXPRepository) ListLedger(ctx context.Context, profileID string, offset, limit int) ([]entity.XPLedgerEntry, int64, error) {
	if offset < 0 {
		offset = 0
	}
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM xp_ledger WHERE profile_id = $1`, profileID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count ledger: %w", err)
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+ledgerColumns+` FROM xp_ledger
		 WHERE profile_id = $1
		 ORDER BY created_at DESC, id
		 OFFSET $2 LIMIT $3`,
		profileID, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list ledger: %w", err)
	}
	entries, err := collectLedger(rows)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func collectLedger(rows pgx.Rows) ([]entity.XPLedgerEntry, error) {
	defer rows.Close()
	entries := []entity.XPLedgerEntry{}
	for rows.Next() {
		e, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *postgresXPRepository) AuditBalances(ctx context.Context) ([]entity.BalanceDrift, error) {
	rows, err := r.db.Query(ctx, `
		SELECT COALESCE(s.profile_id, l.profile_id), COALESCE(s.xp_total, 0), COALESCE(l.total, 0)
		FROM xp_state s
		FULL OUTER JOIN (
			SELECT profile_id, SUM(xp_delta)::bigint AS total FROM xp_ledger GROUP BY profile_id
		) l ON l.profile_id = s.profile_id
		WHERE COALESCE(s.xp_total, 0) <> COALESCE(l.total, 0)
		ORDER BY 1
	`)
	if err != nil {
		return nil, fmt.Errorf("audit balances: %w", err)
	}
	defer rows.Close()

	var drifts []entity.BalanceDrift
	for rows.Next() {
		var d entity.BalanceDrift
		if err := rows.Scan(&d.ProfileID, &d.XPTotal, &d.LedgerSum); err != nil {
			return nil, err
		}
		drifts = append(drifts, d)
	}
	return drifts, rows.Err()
}
