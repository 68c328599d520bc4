package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/internal/domain/entity"
	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/internal/domain/repository"
	apperrors "github.com/MOODMNKY-LLC/mood-mnky-command-sub005/pkg/errors"
	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/pkg/logger"
)

const questConcurrency = 8

type QuestUseCase struct {
	questRepo repository.QuestRepository
	evaluator *RequirementEvaluator
	xp        *XPUseCase
	logger    logger.Logger
	flights   singleflight.Group
}

func NewQuestUseCase(questRepo repository.QuestRepository, evaluator *RequirementEvaluator, xp *XPUseCase, log logger.Logger) *QuestUseCase {
	return &QuestUseCase{
		questRepo: questRepo,
		evaluator: evaluator,
		xp:        xp,
		logger:    log,
	}
}

// GetProgress evaluates every quest for profileID. Requirement checks run
// concurrently. A check that errors counts as unmet and is logged; only
// cancellation of ctx fails the call.
func (uc *QuestUseCase) GetProgress(ctx context.Context, profileID string, quests []entity.Quest) ([]entity.ProgressItem, error) {
	items := make([]entity.ProgressItem, len(quests))

	var g errgroup.Group
	g.SetLimit(questConcurrency)
	for i := range quests {
		i := i
		g.Go(func() error {
			items[i] = uc.questProgress(ctx, profileID, &quests[i])
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (uc *QuestUseCase) questProgress(ctx context.Context, profileID string, quest *entity.Quest) entity.ProgressItem {
	reqs := uc.requirements(quest)
	met := make([]bool, len(reqs))

	var g errgroup.Group
	for i, req := range reqs {
		i, req := i, req
		g.Go(func() error {
			ok, err := uc.evaluator.CheckRequirement(ctx, profileID, req)
			if err != nil {
				uc.logger.Warn("requirement check failed",
					"questId", quest.ID, "profileId", profileID, "type", req.Type(), "error", err)
				return nil
			}
			met[i] = ok
			return nil
		})
	}
	_ = g.Wait()

	count := 0
	for _, ok := range met {
		if ok {
			count++
		}
	}

	return entity.ProgressItem{
		QuestID:           quest.ID,
		Completed:         len(reqs) > 0 && count == len(reqs),
		MetCount:          count,
		TotalRequirements: len(reqs),
	}
}

func (uc *QuestUseCase) requirements(quest *entity.Quest) []entity.Requirement {
	reqs, errs := entity.ParseRequirements(quest.Rule.Requirements)
	for _, err := range errs {
		uc.logger.Warn("dropping malformed quest requirement", "questId", quest.ID, "error", err)
	}
	return reqs
}

// ListQuestsWithProgress returns the active quests annotated for profileID.
// Concurrent calls for the same profile share one evaluation.
func (uc *QuestUseCase) ListQuestsWithProgress(ctx context.Context, profileID string) ([]entity.QuestWithProgress, error) {
	v, err, _ := uc.flights.Do(profileID, func() (interface{}, error) {
		return uc.listQuestsWithProgress(context.WithoutCancel(ctx), profileID)
	})
	if err != nil {
		return nil, err
	}
	return v.([]entity.QuestWithProgress), nil
}

func (uc *QuestUseCase) listQuestsWithProgress(ctx context.Context, profileID string) ([]entity.QuestWithProgress, error) {
	quests, err := uc.questRepo.ListActiveQuests(ctx)
	if err != nil {
		return nil, apperrors.Internal("Failed to load quests", err)
	}

	progress, err := uc.GetProgress(ctx, profileID, quests)
	if err != nil {
		return nil, err
	}

	out := make([]entity.QuestWithProgress, len(quests))
	for i, q := range quests {
		status := entity.QuestStatusInProgress
		if progress[i].Completed {
			status = entity.QuestStatusCompleted
		}
		reqs, _ := entity.ParseRequirements(q.Rule.Requirements)
		var cta *entity.CTA
		if len(reqs) > 0 {
			cta = CallToAction(reqs[0])
		}
		out[i] = entity.QuestWithProgress{
			Quest:        q,
			ProgressItem: progress[i],
			Status:       status,
			CTA:          cta,
		}
	}
	return out, nil
}

// ClaimQuestReward awards a completed quest's xpReward, once per profile.
func (uc *QuestUseCase) ClaimQuestReward(ctx context.Context, profileID, questID string) (*entity.XPState, error) {
	quest, err := uc.questRepo.GetQuestByID(ctx, questID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("Quest", err)
		}
		return nil, apperrors.Internal("Failed to load quest", err)
	}
	if !quest.Active {
		return nil, apperrors.NotFound("Quest", nil)
	}
	if quest.XPReward <= 0 {
		return nil, apperrors.BadRequest("Quest has no XP reward", nil)
	}

	progress := uc.questProgress(ctx, profileID, quest)
	if !progress.Completed {
		return nil, apperrors.QuestIncomplete(questID)
	}

	state, err := uc.xp.AwardXP(ctx, entity.XPAward{
		ProfileID: profileID,
		Source:    entity.SourceQuest,
		SourceRef: quest.ID,
		XPDelta:   quest.XPReward,
		Reason:    fmt.Sprintf("Quest completed: %s", quest.Title),
	})
	if apperrors.Is(err, apperrors.CodeConflict) {
		return nil, apperrors.Conflict("Quest reward already claimed")
	}
	return state, err
}

// CallToAction maps a quest's first requirement to the page that helps
// the member complete it.
func CallToAction(req entity.Requirement) *entity.CTA {
	switch r := req.(type) {
	case entity.ReadIssueRequirement:
		return &entity.CTA{Href: "/dojo/verse/issues/" + url.PathEscape(r.IssueID), Label: "Read issue"}
	case entity.MagQuizRequirement:
		if r.IssueID != "" {
			return &entity.CTA{Href: "/dojo/verse/issues/" + url.PathEscape(r.IssueID) + "/quiz", Label: "Take quiz"}
		}
		return &entity.CTA{Href: "/dojo/verse/issues", Label: "Take quiz"}
	case entity.PurchaseRequirement:
		return &entity.CTA{Href: "/shop", Label: "Shop now"}
	case entity.UGCApprovedRequirement:
		return &entity.CTA{Href: "/dojo/ugc", Label: "Submit UGC"}
	case entity.DiscordMessageRequirement:
		return &entity.CTA{Href: "/dojo/community", Label: "Join Discord"}
	}
	return nil
}
