package repository

import (
	"context"

	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/internal/domain/entity"
)

type RewardRepository interface {
	GetRewardByID(ctx context.Context, rewardID string) (*entity.Reward, error)
	ListActiveRewards(ctx context.Context) ([]entity.Reward, error)
	// CreateClaim returns ErrDuplicate when the claim id already exists.
	CreateClaim(ctx context.Context, claim *entity.RewardClaim) error
	GetClaimByID(ctx context.Context, claimID string) (*entity.RewardClaim, error)
	ListClaimsByProfile(ctx context.Context, profileID string) ([]entity.RewardClaim, error)
}
