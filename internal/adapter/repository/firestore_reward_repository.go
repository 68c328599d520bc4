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

type firestoreRewardRepository struct {
	client *firestore.Client
}

func NewFirestoreRewardRepository(client *firestore.Client) repository.RewardRepository {
	return &firestoreRewardRepository{
		client: client,
	}
}

func (r *firestoreRewardRepository) GetRewardByID(ctx context.Context, rewardID string) (*entity.Reward, error) {
	doc, err := r.client.Collection("rewards").Doc(rewardID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get reward: %w", err)
	}

	var reward entity.Reward
	if err := doc.DataTo(&reward); err != nil {
		return nil, fmt.Errorf("failed to decode reward: %w", err)
	}
	if reward.ID == "" {
		reward.ID = doc.Ref.ID
	}
	return &reward, nil
}

func (r *firestoreRewardRepository) ListActiveRewards(ctx context.Context) ([]entity.Reward, error) {
	iter := r.client.Collection("rewards").Where("active", "==", true).Documents(ctx)
	defer iter.Stop()

	rewards := []entity.Reward{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate rewards: %w", err)
		}

		var reward entity.Reward
		if err := doc.DataTo(&reward); err != nil {
			return nil, fmt.Errorf("failed to decode reward %s: %w", doc.Ref.ID, err)
		}
		if reward.ID == "" {
			reward.ID = doc.Ref.ID
		}
		rewards = append(rewards, reward)
	}
	return rewards, nil
}

// CreateClaim uses Create so a second write for the same claim id fails
// instead of overwriting.
func (r *firestoreRewardRepository) CreateClaim(ctx context.Context, claim *entity.RewardClaim) error {
	_, err := r.client.Collection("reward_claims").Doc(claim.ID).Create(ctx, claim)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("failed to create claim: %w", err)
	}
	return nil
}

func (r *firestoreRewardRepository) GetClaimByID(ctx context.Context, claimID string) (*entity.RewardClaim, error) {
	doc, err := r.client.Collection("reward_claims").Doc(claimID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get claim: %w", err)
	}

	var claim entity.RewardClaim
	if err := doc.DataTo(&claim); err != nil {
		return nil, fmt.Errorf("failed to decode claim: %w", err)
	}
	return &claim, nil
}

func (r *firestoreRewardRepository) ListClaimsByProfile(ctx context.Context, profileID string) ([]entity.RewardClaim, error) {
	iter := r.client.Collection("reward_claims").
		Where("profileId", "==", profileID).
		OrderBy("issuedAt", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	claims := []entity.RewardClaim{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate claims: %w", err)
		}

		var claim entity.RewardClaim
		if err := doc.DataTo(&claim); err != nil {
			return nil, fmt.Errorf("failed to decode claim: %w", err)
		}
		claims = append(claims, claim)
	}
	return claims, nil
}
