package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/internal/domain/entity"
	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/pkg/logger"
)

type countingAuditor struct {
	runs atomic.Int32
	err  error
}

func (a *countingAuditor) AuditLedger(ctx context.Context) ([]entity.BalanceDrift, error) {
	a.runs.Add(1)
	return nil, a.err
}

func TestSchedulerRunsAudit(t *testing.T) {
	auditor := &countingAuditor{}
	s := NewScheduler(auditor, "@every 1s", logger.Nop())
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	assert.Eventually(t, func() bool { return auditor.runs.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)
}

func TestSchedulerRejectsBadSpec(t *testing.T) {
	s := NewScheduler(&countingAuditor{}, "every now and then", logger.Nop())
	assert.Error(t, s.Start(context.Background()))
}

func TestRunAuditSurvivesErrors(t *testing.T) {
	auditor := &countingAuditor{err: errors.New("db down")}
	s := NewScheduler(auditor, "@hourly", logger.Nop())
	s.runAudit(context.Background())
	assert.Equal(t, int32(1), auditor.runs.Load())
}
