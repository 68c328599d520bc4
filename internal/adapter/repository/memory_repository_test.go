package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/internal/domain/entity"
	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/internal/domain/repository"
)

func TestMemoryAwardKeepsStateEqualToLedger(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(entity.DefaultLevelCurve())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := store.AwardXP(ctx, entity.XPAward{ProfileID: "p1", Source: entity.SourcePurchase, XPDelta: int64(i % 7), Reason: "order"})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	state, err := store.GetXPState(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, store.LedgerSum("p1"), state.XPTotal)
	assert.Equal(t, entity.DefaultLevelCurve().LevelFor(state.XPTotal), state.Level)

	drifts, err := store.AuditBalances(ctx)
	require.NoError(t, err)
	assert.Empty(t, drifts)
}

func TestMemoryUniqueSourceRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(entity.DefaultLevelCurve())

	award := entity.XPAward{ProfileID: "p1", Source: entity.SourceQuest, SourceRef: "q1", XPDelta: 25}
	_, err := store.AwardXP(ctx, award)
	require.NoError(t, err)

	_, err = store.AwardXP(ctx, award)
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	// Non-unique sources may repeat.
	for i := 0; i < 2; i++ {
		_, err = store.AwardXP(ctx, entity.XPAward{ProfileID: "p1", Source: entity.SourcePurchase, SourceRef: "same", XPDelta: 1})
		require.NoError(t, err)
	}
	state, _ := store.GetXPState(ctx, "p1")
	assert.Equal(t, int64(27), state.XPTotal)
}

func TestMemoryDebitIfAffordableNeverOverspends(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(entity.DefaultLevelCurve())
	_, err := store.AwardXP(ctx, entity.XPAward{ProfileID: "p1", Source: entity.SourceAdminGrant, XPDelta: 100})
	require.NoError(t, err)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, ok, err := store.DebitIfAffordable(ctx, entity.XPAward{
				ProfileID: "p1", Source: entity.SourceRedemption, SourceRef: fmt.Sprintf("claim-%d", i), XPDelta: -30,
			})
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 3, succeeded)
	state, _ := store.GetXPState(ctx, "p1")
	assert.Equal(t, int64(10), state.XPTotal)
	assert.Equal(t, store.LedgerSum("p1"), state.XPTotal)
}

func TestMemoryDebitWithoutStateIsUnaffordable(t *testing.T) {
	store := NewMemoryStore(entity.DefaultLevelCurve())

	state, ok, err := store.DebitIfAffordable(context.Background(), entity.XPAward{
		ProfileID: "new", Source: entity.SourceRedemption, SourceRef: "c1", XPDelta: -1,
	})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, int64(0), state.XPTotal)
	assert.Equal(t, 1, state.Level)
}

func TestMemoryListLedgerNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(entity.DefaultLevelCurve())
	for i := 1; i <= 5; i++ {
		_, err := store.AwardXP(ctx, entity.XPAward{ProfileID: "p1", Source: "manual", XPDelta: int64(i)})
		require.NoError(t, err)
	}

	page, total, err := store.ListLedger(ctx, "p1", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, page, 2)
	assert.Equal(t, int64(4), page[0].XPDelta)
	assert.Equal(t, int64(3), page[1].XPDelta)

	empty, _, err := store.ListLedger(ctx, "p1", 10, 2)
	require.NoError(t, err)
	assert.Empty(t, empty)

	first, _, err := store.ListLedger(ctx, "p1", -20, 2)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, int64(5), first[0].XPDelta)
}

func TestMemoryClaimsAreUniqueByID(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(entity.DefaultLevelCurve())

	claim := &entity.RewardClaim{ID: "c1", ProfileID: "p1", RewardID: "r1", Status: entity.ClaimStatusIssued}
	require.NoError(t, store.CreateClaim(ctx, claim))
	assert.ErrorIs(t, store.CreateClaim(ctx, claim), repository.ErrDuplicate)

	_, err := store.GetClaimByID(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
