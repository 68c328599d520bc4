package usecase

import (
	"context"
	"fmt"

	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/internal/domain/entity"
	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/internal/domain/repository"
)

// RequirementEvaluator answers one requirement for one profile against the
// fact tables. Each requirement type maps to a single query.
type RequirementEvaluator struct {
	facts repository.FactRepository
}

func NewRequirementEvaluator(facts repository.FactRepository) *RequirementEvaluator {
	return &RequirementEvaluator{facts: facts}
}

func (e *RequirementEvaluator) CheckRequirement(ctx context.Context, profileID string, req entity.Requirement) (bool, error) {
	switch r := req.(type) {
	case entity.ReadIssueRequirement:
		return e.facts.HasQualifyingRead(ctx, profileID, r.IssueID)

	case entity.DiscordMessageRequirement:
		// Counts rows, not XP.
		n, err := e.facts.CountDiscordEvents(ctx, profileID, r.EventType, r.Count)
		if err != nil {
			return false, err
		}
		return n >= r.Count, nil

	case entity.PurchaseRequirement:
		// Any single qualifying purchase; subtotals are not summed.
		entries, err := e.facts.ListPurchaseEntries(ctx, profileID)
		if err != nil {
			return false, err
		}
		for _, entry := range entries {
			subtotal, _ := entry.Subtotal()
			if subtotal >= r.MinSubtotal {
				return true, nil
			}
		}
		return false, nil

	case entity.MagQuizRequirement:
		return e.facts.HasPassedQuiz(ctx, profileID, r.IssueID)

	case entity.UGCApprovedRequirement:
		return e.facts.HasLedgerSource(ctx, profileID, entity.SourceUGCApproved)

	case entity.XPSourceRequirement:
		sum, err := e.facts.SumXPBySource(ctx, profileID, r.Source)
		if err != nil {
			return false, err
		}
		return sum >= r.MinTotal, nil

	case nil:
		return false, fmt.Errorf("nil requirement")
	}

	return false, nil
}
