package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/firestore/apiv1/firestorepb"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/internal/domain/entity"
	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/internal/domain/repository"
)

const (
	collectionXPLedger = "xp_ledger"
	collectionXPState  = "xp_state"
)

// ledgerNamespace derives document ids for unique-source entries, so the
// unique key is enforced by the document id itself.
var ledgerNamespace = uuid.MustParse("0b6c3f1e-8a57-4d0f-b1a2-94e0c5d7e311")

type firestoreXPRepository struct {
	client *firestore.Client
	curve  entity.LevelCurve
}

func NewFirestoreXPRepository(client *firestore.Client, curve entity.LevelCurve) repository.XPRepository {
	return &firestoreXPRepository{
		client: client,
		curve:  curve,
	}
}

func ledgerDocID(award entity.XPAward) string {
	if entity.IsUniqueSource(award.Source) {
		return uuid.NewSHA1(ledgerNamespace, []byte(award.ProfileID+"\x00"+award.Source+"\x00"+award.SourceRef)).String()
	}
	return uuid.NewString()
}

// apply appends award inside one transaction. When guard is set the append
// only happens if guard(current) holds; apply then reports false.
func (r *firestoreXPRepository) apply(ctx context.Context, award entity.XPAward, guard func(current entity.XPState) bool) (*entity.XPState, bool, error) {
	stateRef := r.client.Collection(collectionXPState).Doc(award.ProfileID)
	ledgerRef := r.client.Collection(collectionXPLedger).Doc(ledgerDocID(award))

	var (
		result  entity.XPState
		applied bool
	)
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		applied = false

		current := *entity.NewXPState(award.ProfileID)
		doc, err := tx.Get(stateRef)
		switch {
		case status.Code(err) == codes.NotFound:
		case err != nil:
			return err
		default:
			if err := doc.DataTo(&current); err != nil {
				return fmt.Errorf("failed to decode xp_state: %w", err)
			}
		}

		if entity.IsUniqueSource(award.Source) {
			_, err := tx.Get(ledgerRef)
			if err == nil {
				return repository.ErrDuplicate
			}
			if status.Code(err) != codes.NotFound {
				return err
			}
		}

		if guard != nil && !guard(current) {
			result = current
			return nil
		}

		now := time.Now().UTC()
		entry := award.Entry(ledgerRef.ID, now)
		if err := tx.Create(ledgerRef, entry); err != nil {
			return err
		}

		current.XPTotal += award.XPDelta
		current.Level = r.curve.LevelFor(current.XPTotal)
		current.UpdatedAt = now
		if err := tx.Set(stateRef, current); err != nil {
			return err
		}

		result = current
		applied = true
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) || status.Code(err) == codes.AlreadyExists {
			return nil, false, repository.ErrDuplicate
		}
		return nil, false, fmt.Errorf("failed to append ledger entry: %w", err)
	}
	return &result, applied, nil
}

func (r *firestoreXPRepository) AwardXP(ctx context.Context, award entity.XPAward) (*entity.XPState, error) {
	state, _, err := r.apply(ctx, award, nil)
	return state, err
}

func (r *firestoreXPRepository) DebitIfAffordable(ctx context.Context, debit entity.XPAward) (*entity.XPState, bool, error) {
	return r.apply(ctx, debit, func(current entity.XPState) bool {
		return current.XPTotal+debit.XPDelta >= 0
	})
}

func (r *firestoreXPRepository) GetXPState(ctx context.Context, profileID string) (*entity.XPState, error) {
	doc, err := r.client.Collection(collectionXPState).Doc(profileID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get xp_state: %w", err)
	}

	var state entity.XPState
	if err := doc.DataTo(&state); err != nil {
		return nil, fmt.Errorf("failed to decode xp_state: %w", err)
	}
	return &state, nil
}

func (r *firestoreXPRepository) FindLedgerEntry(ctx context.Context, profileID, source, sourceRef string) (*entity.XPLedgerEntry, error) {
	iter := r.client.Collection(collectionXPLedger).
		Where("profileId", "==", profileID).
		Where("source", "==", source).
		Where("sourceRef", "==", sourceRef).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger: %w", err)
	}

	var entry entity.XPLedgerEntry
	if err := doc.DataTo(&entry); err != nil {
		return nil, fmt.Errorf("failed to decode ledger entry: %w", err)
	}
	return &entry, nil
}

func (r *firestoreXPRepository) ListLedger(ctx context.Context, profileID string, offset, limit int) ([]entity.XPLedgerEntry, int64, error) {
	if offset < 0 {
		offset = 0
	}
	base := r.client.Collection(collectionXPLedger).Where("profileId", "==", profileID)

	total, err := countQuery(ctx, base)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count ledger: %w", err)
	}

	q := base.OrderBy("createdAt", firestore.Desc).Offset(offset)
	if limit > 0 {
		q = q.Limit(limit)
	}
	entries, err := decodeLedger(q.Documents(ctx))
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func decodeLedger(iter *firestore.DocumentIterator) ([]entity.XPLedgerEntry, error) {
	defer iter.Stop()

	entries := []entity.XPLedgerEntry{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate ledger: %w", err)
		}

		var entry entity.XPLedgerEntry
		if err := doc.DataTo(&entry); err != nil {
			return nil, fmt.Errorf("failed to decode ledger entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// countQuery runs a server-side COUNT aggregation.
func countQuery(ctx context.Context, q firestore.Query) (int64, error) {
	res, err := q.NewAggregationQuery().WithCount("all").Get(ctx)
	if err != nil {
		return 0, err
	}
	v, ok := res["all"].(*firestorepb.Value)
	if !ok {
		return 0, fmt.Errorf("unexpected count result %T", res["all"])
	}
	return v.GetIntegerValue(), nil
}

// AuditBalances scans both collections. It is meant for the periodic audit
// job, not for request paths.
func (r *firestoreXPRepository) AuditBalances(ctx context.Context) ([]entity.BalanceDrift, error) {
	sums := make(map[string]int64)
	entries, err := decodeLedger(r.client.Collection(collectionXPLedger).Select("profileId", "xpDelta").Documents(ctx))
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		sums[e.ProfileID] += e.XPDelta
	}

	totals := make(map[string]int64)
	iter := r.client.Collection(collectionXPState).Documents(ctx)
	defer iter.Stop()
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate xp_state: %w", err)
		}
		var state entity.XPState
		if err := doc.DataTo(&state); err != nil {
			return nil, fmt.Errorf("failed to decode xp_state: %w", err)
		}
		totals[doc.Ref.ID] = state.XPTotal
	}

	var drifts []entity.BalanceDrift
	for id, total := range totals {
		if sums[id] != total {
			drifts = append(drifts, entity.BalanceDrift{ProfileID: id, XPTotal: total, LedgerSum: sums[id]})
		}
	}
	for id, sum := range sums {
		if _, ok := totals[id]; !ok && sum != 0 {
			drifts = append(drifts, entity.BalanceDrift{ProfileID: id, LedgerSum: sum})
		}
	}
	sort.Slice(drifts, func(i, j int) bool { return drifts[i].ProfileID < drifts[j].ProfileID })
	return drifts, nil
}
