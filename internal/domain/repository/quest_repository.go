package repository

import (
	"context"

	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/internal/domain/entity"
)

type QuestRepository interface {
	ListActiveQuests(ctx context.Context) ([]entity.Quest, error)
	GetQuestByID(ctx context.Context, questID string) (*entity.Quest, error)
}
