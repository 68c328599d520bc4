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

type postgresRewardRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRewardRepository(db *pgxpool.Pool) repository.RewardRepository {
	return &postgresRewardRepository{db: db}
}

const rewardColumns = `id, type, title, description, payload, min_level, active, created_at`

func scanReward(row pgx.Row) (entity.Reward, error) {
	var rw entity.Reward
	err := row.Scan(&rw.ID, &rw.Type, &rw.Title, &rw.Description, &rw.Payload, &rw.MinLevel, &rw.Active, &rw.CreatedAt)
	return rw, err
}

func (r *postgresRewardRepository) GetRewardByID(ctx context.Context, rewardID string) (*entity.Reward, error) {
	rw, err := scanReward(r.db.QueryRow(ctx, `SELECT `+rewardColumns+` FROM rewards WHERE id = $1`, rewardID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get reward: %w", err)
	}
	return &rw, nil
}

func (r *postgresRewardRepository) ListActiveRewards(ctx context.Context) ([]entity.Reward, error) {
	rows, err := r.db.Query(ctx, `SELECT `+rewardColumns+` FROM rewards WHERE active ORDER BY min_level, id`)
	if err != nil {
		return nil, fmt.Errorf("list rewards: %w", err)
	}
	defer rows.Close()

	rewards := []entity.Reward{}
	for rows.Next() {
		rw, err := scanReward(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reward: %w", err)
		}
		rewards = append(rewards, rw)
	}
	return rewards, rows.Err()
}

func (r *postgresRewardRepository) CreateClaim(ctx context.Context, claim *entity.RewardClaim) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO reward_claims (id, profile_id, reward_id, status, external_ref, idempotency_key, issued_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		claim.ID, claim.ProfileID, claim.RewardID, string(claim.Status), claim.ExternalRef, claim.IdempotencyKey, claim.IssuedAt)
	if postgres.IsUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("insert claim: %w", err)
	}
	return nil
}

const claimColumns = `id::text, profile_id, reward_id, status, external_ref, idempotency_key, issued_at`

func scanClaim(row pgx.Row) (entity.RewardClaim, error) {
	var c entity.RewardClaim
	err := row.Scan(&c.ID, &c.ProfileID, &c.RewardID, &c.Status, &c.ExternalRef, &c.IdempotencyKey, &c.IssuedAt)
	return c, err
}

func (r *postgresRewardRepository) GetClaimByID(ctx context.Context, claimID string) (*entity.RewardClaim, error) {
	c, err := scanClaim(r.db.QueryRow(ctx, `SELECT `+claimColumns+` FROM reward_claims WHERE id = $1`, claimID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get claim: %w", err)
	}
	return &c, nil
}

func (r *postgresRewardRepository) ListClaimsByProfile(ctx context.Context, profileID string) ([]entity.RewardClaim, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+claimColumns+` FROM reward_claims WHERE profile_id = $1 ORDER BY issued_at DESC`, profileID)
	if err != nil {
		return nil, fmt.Errorf("list claims: %w", err)
	}
	defer rows.Close()

	claims := []entity.RewardClaim{}
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, fmt.Errorf("scan claim: %w", err)
		}
		claims = append(claims, c)
	}
	return claims, rows.Err()
}
