package usecase

import (
	"context"

	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/internal/domain/entity"
)

// XPNotifier is told about every balance change so connected clients can refresh.
type XPNotifier interface {
	NotifyXPChanged(profileID string, state *entity.XPState)
}

// IncidentArchive stores records that need a human to reconcile.
type IncidentArchive interface {
	Archive(ctx context.Context, incident entity.Incident) error
}

type nopNotifier struct{}

func (nopNotifier) NotifyXPChanged(string, *entity.XPState) {}
