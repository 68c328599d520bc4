package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/internal/domain/entity"
	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/internal/domain/repository"
)

type postgresQuestRepository struct {
	db *pgxpool.Pool
}

func NewPostgresQuestRepository(db *pgxpool.Pool) repository.QuestRepository {
	return &postgresQuestRepository{db: db}
}

const questColumns = `id, title, description, rule, xp_reward, active, created_at, updated_at`

func scanQuest(row pgx.Row) (entity.Quest, error) {
	var q entity.Quest
	// rule is jsonb; pgx decodes it into the struct with encoding/json.
	err := row.Scan(&q.ID, &q.Title, &q.Description, &q.Rule, &q.XPReward, &q.Active, &q.CreatedAt, &q.UpdatedAt)
	return q, err
}

func (r *postgresQuestRepository) ListActiveQuests(ctx context.Context) ([]entity.Quest, error) {
	rows, err := r.db.Query(ctx, `SELECT `+questColumns+` FROM quests WHERE active ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list quests: %w", err)
	}
	defer rows.Close()

	quests := []entity.Quest{}
	for rows.Next() {
		q, err := scanQuest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan quest: %w", err)
		}
		quests = append(quests, q)
	}
	return quests, rows.Err()
}

func (r *postgresQuestRepository) GetQuestByID(ctx context.Context, questID string) (*entity.Quest, error) {
	q, err := scanQuest(r.db.QueryRow(ctx, `SELECT `+questColumns+` FROM quests WHERE id = $1`, questID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get quest: %w", err)
	}
	return &q, nil
}
