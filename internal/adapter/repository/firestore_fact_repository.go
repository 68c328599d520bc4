package repository

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/internal/domain/entity"
	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/internal/domain/repository"
)

const (
	collectionReadEvents    = "mag_read_events"
	collectionDiscordEvents = "discord_event_ledger"
	collectionQuizAttempts  = "mag_quiz_attempts"
)

type firestoreFactRepository struct {
	client *firestore.Client
}

func NewFirestoreFactRepository(client *firestore.Client) repository.FactRepository {
	return &firestoreFactRepository{
		client: client,
	}
}

// anyDocument reports whether q matches at least one document.
func anyDocument(ctx context.Context, q firestore.Query) (bool, error) {
	iter := q.Limit(1).Documents(ctx)
	defer iter.Stop()

	_, err := iter.Next()
	if err == iterator.Done {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *firestoreFactRepository) HasQualifyingRead(ctx context.Context, profileID, issueID string) (bool, error) {
	// Firestore allows range filters on one field only, so percent and
	// active time are checked client side.
	iter := r.client.Collection(collectionReadEvents).
		Where("profileId", "==", profileID).
		Where("issueId", "==", issueID).
		Where("completed", "==", true).
		Documents(ctx)
	defer iter.Stop()

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("failed to query read events: %w", err)
		}
		var ev entity.ReadEvent
		if err := doc.DataTo(&ev); err != nil {
			return false, fmt.Errorf("failed to decode read event: %w", err)
		}
		if ev.Qualifies() {
			return true, nil
		}
	}
}

func (r *firestoreFactRepository) CountDiscordEvents(ctx context.Context, profileID, eventType string, atLeast int) (int, error) {
	q := r.client.Collection(collectionDiscordEvents).Where("profileId", "==", profileID)
	if eventType != "" {
		q = q.Where("eventType", "==", eventType)
	}
	if atLeast > 0 {
		q = q.Limit(atLeast)
	}
	n, err := countQuery(ctx, q)
	if err != nil {
		return 0, fmt.Errorf("failed to count discord events: %w", err)
	}
	return int(n), nil
}

func (r *firestoreFactRepository) HasPassedQuiz(ctx context.Context, profileID, issueID string) (bool, error) {
	q := r.client.Collection(collectionQuizAttempts).
		Where("profileId", "==", profileID).
		Where("passed", "==", true)
	if issueID != "" {
		q = q.Where("issueId", "==", issueID)
	}
	ok, err := anyDocument(ctx, q)
	if err != nil {
		return false, fmt.Errorf("failed to query quiz attempts: %w", err)
	}
	return ok, nil
}

func (r *firestoreFactRepository) HasLedgerSource(ctx context.Context, profileID, source string) (bool, error) {
	ok, err := anyDocument(ctx, r.client.Collection(collectionXPLedger).
		Where("profileId", "==", profileID).
		Where("source", "==", source))
	if err != nil {
		return false, fmt.Errorf("failed to query ledger: %w", err)
	}
	return ok, nil
}

func (r *firestoreFactRepository) SumXPBySource(ctx context.Context, profileID, source string) (int64, error) {
	entries, err := decodeLedger(r.client.Collection(collectionXPLedger).
		Where("profileId", "==", profileID).
		Where("source", "==", source).
		Select("xpDelta").
		Documents(ctx))
	if err != nil {
		return 0, err
	}
	var sum int64
	for _, e := range entries {
		sum += e.XPDelta
	}
	return sum, nil
}

func (r *firestoreFactRepository) ListPurchaseEntries(ctx context.Context, profileID string) ([]entity.XPLedgerEntry, error) {
	return decodeLedger(r.client.Collection(collectionXPLedger).
		Where("profileId", "==", profileID).
		Where("source", "==", entity.SourcePurchase).
		Documents(ctx))
}
