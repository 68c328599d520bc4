package usecase

import (
	"context"
	"errors"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/internal/domain/entity"
	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/internal/domain/service"
)

type mockDiscountService struct {
	mock.Mock
}

func (m *mockDiscountService) CreateDiscountCode(ctx context.Context, req service.DiscountCodeRequest) (*service.DiscountCodeResult, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*service.DiscountCodeResult)
	return res, args.Error(1)
}

// echoDiscountService accepts every request and returns the generated code.
type echoDiscountService struct {
	mu    sync.Mutex
	calls int
}

func (s *echoDiscountService) CreateDiscountCode(ctx context.Context, req service.DiscountCodeRequest) (*service.DiscountCodeResult, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return &service.DiscountCodeResult{Code: req.Code}, nil
}

type recordingArchive struct {
	mu        sync.Mutex
	incidents []entity.Incident
}

func (a *recordingArchive) Archive(ctx context.Context, incident entity.Incident) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.incidents = append(a.incidents, incident)
	return nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	states map[string]entity.XPState
	calls  int
}

func (n *recordingNotifier) NotifyXPChanged(profileID string, state *entity.XPState) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.states == nil {
		n.states = make(map[string]entity.XPState)
	}
	n.states[profileID] = *state
	n.calls++
}

// failingFacts fails every query.
type failingFacts struct{}

var errFactsDown = errors.New("facts store unavailable")

func (failingFacts) HasQualifyingRead(context.Context, string, string) (bool, error) {
	return false, errFactsDown
}
func (failingFacts) CountDiscordEvents(context.Context, string, string, int) (int, error) {
	return 0, errFactsDown
}
func (failingFacts) HasPassedQuiz(context.Context, string, string) (bool, error) {
	return false, errFactsDown
}
func (failingFacts) HasLedgerSource(context.Context, string, string) (bool, error) {
	return false, errFactsDown
}
func (failingFacts) SumXPBySource(context.Context, string, string) (int64, error) {
	return 0, errFactsDown
}
func (failingFacts) ListPurchaseEntries(context.Context, string) ([]entity.XPLedgerEntry, error) {
	return nil, errFactsDown
}
