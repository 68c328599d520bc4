// Package jobs runs the engine's background work on a cron schedule.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/internal/domain/entity"
	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/pkg/logger"
)

const auditTimeout = 5 * time.Minute

// LedgerAuditor compares xp_state against the ledger.
type LedgerAuditor interface {
	AuditLedger(ctx context.Context) ([]entity.BalanceDrift, error)
}

type Scheduler struct {
	cron    *cron.Cron
	auditor LedgerAuditor
	spec    string
	logger  logger.Logger
}

// NewScheduler builds a UTC scheduler. Overlapping runs of the audit are
// skipped rather than queued.
func NewScheduler(auditor LedgerAuditor, auditSpec string, log logger.Logger) *Scheduler {
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	return &Scheduler{
		cron:    c,
		auditor: auditor,
		spec:    auditSpec,
		logger:  log,
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.runAudit(ctx) }); err != nil {
		return fmt.Errorf("invalid LEDGER_AUDIT_SCHEDULE %q: %w", s.spec, err)
	}
	s.cron.Start()
	s.logger.Info("scheduler started", "ledgerAudit", s.spec)
	return nil
}

func (s *Scheduler) runAudit(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, auditTimeout)
	defer cancel()

	start := time.Now()
	drifts, err := s.auditor.AuditLedger(ctx)
	if err != nil {
		s.logger.Error("ledger audit failed", "error", err)
		return
	}
	s.logger.Info("ledger audit finished", "drifts", len(drifts), "took", time.Since(start).String())
}

// Stop waits for a running audit to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}
