package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	memrepo "github.com/MOODMNKY-LLC/mood-mnky-command-sub005/internal/adapter/repository"
	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/internal/domain/entity"
)

func newEvaluatorStore(t *testing.T) (*memrepo.MemoryStore, *RequirementEvaluator) {
	t.Helper()
	store := memrepo.NewMemoryStore(entity.DefaultLevelCurve())
	return store, NewRequirementEvaluator(store)
}

func check(t *testing.T, ev *RequirementEvaluator, req entity.Requirement) bool {
	t.Helper()
	ok, err := ev.CheckRequirement(context.Background(), "p1", req)
	require.NoError(t, err)
	return ok
}

func TestCheckReadIssue(t *testing.T) {
	store, ev := newEvaluatorStore(t)
	store.RecordReadEvent(entity.ReadEvent{ProfileID: "p1", IssueID: "X", Completed: true, PercentRead: 85, ActiveSeconds: 120})
	store.RecordReadEvent(entity.ReadEvent{ProfileID: "p1", IssueID: "Y", Completed: true, PercentRead: 70, ActiveSeconds: 120})

	assert.True(t, check(t, ev, entity.ReadIssueRequirement{IssueID: "X"}))
	assert.False(t, check(t, ev, entity.ReadIssueRequirement{IssueID: "Y"}))
	assert.False(t, check(t, ev, entity.ReadIssueRequirement{IssueID: "Z"}))
}

func TestCheckXPSourceSumsDeltas(t *testing.T) {
	store, ev := newEvaluatorStore(t)
	ctx := context.Background()
	_, err := store.AwardXP(ctx, entity.XPAward{ProfileID: "p1", Source: entity.SourceUGCApproved, XPDelta: 10})
	require.NoError(t, err)
	_, err = store.AwardXP(ctx, entity.XPAward{ProfileID: "p1", Source: entity.SourceUGCApproved, XPDelta: 5})
	require.NoError(t, err)

	assert.True(t, check(t, ev, entity.XPSourceRequirement{Source: entity.SourceUGCApproved, MinTotal: 12}))
	assert.False(t, check(t, ev, entity.XPSourceRequirement{Source: entity.SourceUGCApproved, MinTotal: 20}))
	assert.True(t, check(t, ev, entity.UGCApprovedRequirement{}))
}

func TestCheckXPSourceOversizedThresholdNeverMet(t *testing.T) {
	_, ev := newEvaluatorStore(t)
	req, err := entity.ParseRequirement(map[string]interface{}{"type": "xp_source", "source": "ugc_approved", "minTotal": 1e19})
	require.NoError(t, err)

	assert.False(t, check(t, ev, req))
}

func TestCheckDiscordCountsRows(t *testing.T) {
	store, ev := newEvaluatorStore(t)
	store.RecordDiscordEvent(entity.DiscordEvent{ProfileID: "p1", EventType: "message"})
	store.RecordDiscordEvent(entity.DiscordEvent{ProfileID: "p1", EventType: "message"})
	store.RecordDiscordEvent(entity.DiscordEvent{ProfileID: "p1", EventType: "reaction"})
	store.RecordDiscordEvent(entity.DiscordEvent{ProfileID: "p2", EventType: "message"})

	assert.True(t, check(t, ev, entity.DiscordMessageRequirement{EventType: "message", Count: 2}))
	assert.False(t, check(t, ev, entity.DiscordMessageRequirement{EventType: "message", Count: 3}))
	assert.True(t, check(t, ev, entity.DiscordMessageRequirement{Count: 3}))
	assert.False(t, check(t, ev, entity.DiscordMessageRequirement{EventType: "voice", Count: 1}))
}

func TestCheckPurchaseUsesSubtotal(t *testing.T) {
	store, ev := newEvaluatorStore(t)
	ctx := context.Background()

	assert.False(t, check(t, ev, entity.PurchaseRequirement{MinSubtotal: 0}))

	_, err := store.AwardXP(ctx, entity.XPAward{ProfileID: "p1", Source: entity.SourcePurchase, XPDelta: 55, Reason: "Purchase XP for order #1001 ($54.99)"})
	require.NoError(t, err)

	assert.True(t, check(t, ev, entity.PurchaseRequirement{MinSubtotal: 0}))
	assert.True(t, check(t, ev, entity.PurchaseRequirement{MinSubtotal: 50}))
	assert.False(t, check(t, ev, entity.PurchaseRequirement{MinSubtotal: 60}))

	subtotal := 120.0
	_, err = store.AwardXP(ctx, entity.XPAward{ProfileID: "p1", Source: entity.SourcePurchase, XPDelta: 120, Reason: "Order #1002", PurchaseSubtotal: &subtotal})
	require.NoError(t, err)
	assert.True(t, check(t, ev, entity.PurchaseRequirement{MinSubtotal: 100}))
}

func TestCheckMagQuiz(t *testing.T) {
	store, ev := newEvaluatorStore(t)
	store.RecordQuizAttempt(entity.QuizAttempt{ProfileID: "p1", IssueID: "i1", Passed: true})
	store.RecordQuizAttempt(entity.QuizAttempt{ProfileID: "p1", IssueID: "i2", Passed: false})

	assert.True(t, check(t, ev, entity.MagQuizRequirement{IssueID: "i1"}))
	assert.False(t, check(t, ev, entity.MagQuizRequirement{IssueID: "i2"}))
	assert.True(t, check(t, ev, entity.MagQuizRequirement{}))
}

func TestCheckRequirementPropagatesStoreErrors(t *testing.T) {
	ev := NewRequirementEvaluator(failingFacts{})

	ok, err := ev.CheckRequirement(context.Background(), "p1", entity.ReadIssueRequirement{IssueID: "X"})
	assert.ErrorIs(t, err, errFactsDown)
	assert.False(t, ok)

	ok, err = ev.CheckRequirement(context.Background(), "p1", nil)
	assert.Error(t, err)
	assert.False(t, ok)
}
