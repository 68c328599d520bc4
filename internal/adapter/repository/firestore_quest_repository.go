package repository

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/internal/domain/entity"
	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/internal/domain/repository"
)

type firestoreQuestRepository struct {
	client *firestore.Client
}

func NewFirestoreQuestRepository(client *firestore.Client) repository.QuestRepository {
	return &firestoreQuestRepository{
		client: client,
	}
}

func (r *firestoreQuestRepository) ListActiveQuests(ctx context.Context) ([]entity.Quest, error) {
	iter := r.client.Collection("quests").Where("active", "==", true).Documents(ctx)
	defer iter.Stop()

	quests := []entity.Quest{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate quests: %w", err)
		}

		var quest entity.Quest
		if err := doc.DataTo(&quest); err != nil {
			return nil, fmt.Errorf("failed to decode quest %s: %w", doc.Ref.ID, err)
		}
		if quest.ID == "" {
			quest.ID = doc.Ref.ID
		}
		quests = append(quests, quest)
	}
	return quests, nil
}

func (r *firestoreQuestRepository) GetQuestByID(ctx context.Context, questID string) (*entity.Quest, error) {
	doc, err := r.client.Collection("quests").Doc(questID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get quest: %w", err)
	}

	var quest entity.Quest
	if err := doc.DataTo(&quest); err != nil {
		return nil, fmt.Errorf("failed to decode quest: %w", err)
	}
	if quest.ID == "" {
		quest.ID = doc.Ref.ID
	}
	return &quest, nil
}
