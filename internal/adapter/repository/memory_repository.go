package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/internal/domain/entity"
	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/internal/domain/repository"
)

// MemoryStore keeps every table in process memory behind one mutex. It
// implements all engine repositories and is used for local runs and tests.
type MemoryStore struct {
	mu    sync.Mutex
	curve entity.LevelCurve
	now   func() time.Time

	ledger        []entity.XPLedgerEntry
	uniqueLedger  map[string]struct{}
	states        map[string]*entity.XPState
	readEvents    []entity.ReadEvent
	discordEvents []entity.DiscordEvent
	quizAttempts  []entity.QuizAttempt
	quests        map[string]entity.Quest
	rewards       map[string]entity.Reward
	claims        map[string]entity.RewardClaim
}

var (
	_ repository.FactRepository   = (*MemoryStore)(nil)
	_ repository.QuestRepository  = (*MemoryStore)(nil)
	_ repository.XPRepository     = (*MemoryStore)(nil)
	_ repository.RewardRepository = (*MemoryStore)(nil)
)

func NewMemoryStore(curve entity.LevelCurve) *MemoryStore {
	return &MemoryStore{
		curve:        curve,
		now:          time.Now,
		uniqueLedger: make(map[string]struct{}),
		states:       make(map[string]*entity.XPState),
		quests:       make(map[string]entity.Quest),
		rewards:      make(map[string]entity.Reward),
		claims:       make(map[string]entity.RewardClaim),
	}
}

// Seeding, as done by the subsystems that own these tables.

func (s *MemoryStore) PutQuest(q entity.Quest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quests[q.ID] = q
}

func (s *MemoryStore) PutReward(r entity.Reward) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rewards[r.ID] = r
}

func (s *MemoryStore) RecordReadEvent(e entity.ReadEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readEvents = append(s.readEvents, e)
}

func (s *MemoryStore) RecordDiscordEvent(e entity.DiscordEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.discordEvents = append(s.discordEvents, e)
}

func (s *MemoryStore) RecordQuizAttempt(a entity.QuizAttempt) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quizAttempts = append(s.quizAttempts, a)
}

// Facts

func (s *MemoryStore) HasQualifyingRead(ctx context.Context, profileID, issueID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.readEvents {
		if e.ProfileID == profileID && e.IssueID == issueID && e.Qualifies() {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) CountDiscordEvents(ctx context.Context, profileID, eventType string, atLeast int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, e := range s.discordEvents {
		if e.ProfileID != profileID || (eventType != "" && e.EventType != eventType) {
			continue
		}
		count++
		if atLeast > 0 && count >= atLeast {
			break
		}
	}
	return count, nil
}

func (s *MemoryStore) HasPassedQuiz(ctx context.Context, profileID, issueID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.quizAttempts {
		if a.ProfileID == profileID && a.Passed && (issueID == "" || a.IssueID == issueID) {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) HasLedgerSource(ctx context.Context, profileID, source string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.ledger {
		if e.ProfileID == profileID && e.Source == source {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) SumXPBySource(ctx context.Context, profileID, source string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var sum int64
	for _, e := range s.ledger {
		if e.ProfileID == profileID && e.Source == source {
			sum += e.XPDelta
		}
	}
	return sum, nil
}

func (s *MemoryStore) ListPurchaseEntries(ctx context.Context, profileID string) ([]entity.XPLedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.XPLedgerEntry
	for _, e := range s.ledger {
		if e.ProfileID == profileID && e.Source == entity.SourcePurchase {
			out = append(out, e)
		}
	}
	return out, nil
}

// Quests

func (s *MemoryStore) ListActiveQuests(ctx context.Context) ([]entity.Quest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.Quest, 0, len(s.quests))
	for _, q := range s.quests {
		if q.Active {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) GetQuestByID(ctx context.Context, questID string) (*entity.Quest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.quests[questID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &q, nil
}

// XP

func uniqueKey(profileID, source, sourceRef string) string {
	return profileID + "\x00" + source + "\x00" + sourceRef
}

// appendLocked applies award; the caller holds s.mu.
func (s *MemoryStore) appendLocked(award entity.XPAward) (*entity.XPState, error) {
	if entity.IsUniqueSource(award.Source) {
		key := uniqueKey(award.ProfileID, award.Source, award.SourceRef)
		if _, exists := s.uniqueLedger[key]; exists {
			return nil, repository.ErrDuplicate
		}
		s.uniqueLedger[key] = struct{}{}
	}

	now := s.now()
	s.ledger = append(s.ledger, award.Entry(uuid.NewString(), now))

	state, ok := s.states[award.ProfileID]
	if !ok {
		state = entity.NewXPState(award.ProfileID)
		s.states[award.ProfileID] = state
	}
	state.XPTotal += award.XPDelta
	state.Level = s.curve.LevelFor(state.XPTotal)
	state.UpdatedAt = now

	out := *state
	return &out, nil
}

func (s *MemoryStore) AwardXP(ctx context.Context, award entity.XPAward) (*entity.XPState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendLocked(award)
}

func (s *MemoryStore) DebitIfAffordable(ctx context.Context, debit entity.XPAward) (*entity.XPState, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := entity.NewXPState(debit.ProfileID)
	if st, ok := s.states[debit.ProfileID]; ok {
		c := *st
		current = &c
	}
	if current.XPTotal+debit.XPDelta < 0 {
		return current, false, nil
	}

	state, err := s.appendLocked(debit)
	if err != nil {
		return nil, false, err
	}
	return state, true, nil
}

func (s *MemoryStore) GetXPState(ctx context.Context, profileID string) (*entity.XPState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[profileID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *st
	return &out, nil
}

func (s *MemoryStore) FindLedgerEntry(ctx context.Context, profileID, source, sourceRef string) (*entity.XPLedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.ledger {
		if e.ProfileID == profileID && e.Source == source && e.SourceRef == sourceRef {
			out := e
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *MemoryStore) ListLedger(ctx context.Context, profileID string, offset, limit int) ([]entity.XPLedgerEntry, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var mine []entity.XPLedgerEntry
	for i := len(s.ledger) - 1; i >= 0; i-- {
		if s.ledger[i].ProfileID == profileID {
			mine = append(mine, s.ledger[i])
		}
	}
	total := int64(len(mine))
	if offset < 0 {
		offset = 0
	}
	if offset >= len(mine) {
		return []entity.XPLedgerEntry{}, total, nil
	}
	end := len(mine)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return mine[offset:end], total, nil
}

func (s *MemoryStore) AuditBalances(ctx context.Context) ([]entity.BalanceDrift, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sums := make(map[string]int64)
	for _, e := range s.ledger {
		sums[e.ProfileID] += e.XPDelta
	}

	var drifts []entity.BalanceDrift
	for id, st := range s.states {
		if sums[id] != st.XPTotal {
			drifts = append(drifts, entity.BalanceDrift{ProfileID: id, XPTotal: st.XPTotal, LedgerSum: sums[id]})
		}
	}
	for id, sum := range sums {
		if _, ok := s.states[id]; !ok {
			drifts = append(drifts, entity.BalanceDrift{ProfileID: id, LedgerSum: sum})
		}
	}
	sort.Slice(drifts, func(i, j int) bool { return drifts[i].ProfileID < drifts[j].ProfileID })
	return drifts, nil
}

// Rewards

func (s *MemoryStore) GetRewardByID(ctx context.Context, rewardID string) (*entity.Reward, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rewards[rewardID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &r, nil
}

func (s *MemoryStore) ListActiveRewards(ctx context.Context) ([]entity.Reward, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.Reward, 0, len(s.rewards))
	for _, r := range s.rewards {
		if r.Active {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) CreateClaim(ctx context.Context, claim *entity.RewardClaim) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.claims[claim.ID]; exists {
		return repository.ErrDuplicate
	}
	s.claims[claim.ID] = *claim
	return nil
}

func (s *MemoryStore) GetClaimByID(ctx context.Context, claimID string) (*entity.RewardClaim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.claims[claimID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (s *MemoryStore) ListClaimsByProfile(ctx context.Context, profileID string) ([]entity.RewardClaim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.RewardClaim
	for _, c := range s.claims {
		if c.ProfileID == profileID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IssuedAt.After(out[j].IssuedAt) })
	return out, nil
}

// LedgerSum is the sum of a profile's ledger deltas.
func (s *MemoryStore) LedgerSum(profileID string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var sum int64
	for _, e := range s.ledger {
		if e.ProfileID == profileID {
			sum += e.XPDelta
		}
	}
	return sum
}

// ClaimCount is the number of claims held by a profile.
func (s *MemoryStore) ClaimCount(profileID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.claims {
		if c.ProfileID == profileID {
			n++
		}
	}
	return n
}
