package entity

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Ledger sources written or read by the engine. Other subsystems may append
// entries under their own source names.
const (
	SourceRedemption       = "redemption"
	SourceRedemptionRefund = "redemption_refund"
	SourceQuest            = "quest"
	SourcePurchase         = "purchase"
	SourceUGCApproved      = "ugc_approved"
	SourceAdminGrant       = "admin_grant"
)

// IsUniqueSource reports whether (profile, source, sourceRef) must be unique
// in the ledger for this source.
func IsUniqueSource(source string) bool {
	switch source {
	case SourceRedemption, SourceRedemptionRefund, SourceQuest:
		return true
	}
	return false
}

type XPLedgerEntry struct {
	ID               string    `json:"id" firestore:"id"`
	ProfileID        string    `json:"profileId" firestore:"profileId"`
	Source           string    `json:"source" firestore:"source"`
	SourceRef        string    `json:"sourceRef,omitempty" firestore:"sourceRef,omitempty"`
	XPDelta          int64     `json:"xpDelta" firestore:"xpDelta"`
	Reason           string    `json:"reason" firestore:"reason"`
	PurchaseSubtotal *float64  `json:"purchaseSubtotal,omitempty" firestore:"purchaseSubtotal,omitempty"`
	CreatedAt        time.Time `json:"createdAt" firestore:"createdAt"`
}

var dollarAmount = regexp.MustCompile(`\$\s?([0-9][0-9,]*(?:\.[0-9]+)?)`)

// Subtotal returns the purchase subtotal recorded on the entry. Entries
// written before the structured field existed carry it as "$12.34" inside
// the reason text.
func (e XPLedgerEntry) Subtotal() (float64, bool) {
	if e.PurchaseSubtotal != nil {
		return *e.PurchaseSubtotal, true
	}
	return SubtotalFromReason(e.Reason)
}

func SubtotalFromReason(reason string) (float64, bool) {
	m := dollarAmount.FindStringSubmatch(reason)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

type XPState struct {
	ProfileID string    `json:"profileId" firestore:"profileId"`
	XPTotal   int64     `json:"xpTotal" firestore:"xpTotal"`
	Level     int       `json:"level" firestore:"level"`
	UpdatedAt time.Time `json:"updatedAt" firestore:"updatedAt"`
}

// NewXPState is the balance of a profile that has never earned XP.
func NewXPState(profileID string) *XPState {
	return &XPState{ProfileID: profileID, XPTotal: 0, Level: 1}
}

// XPAward is one ledger append request.
type XPAward struct {
	ProfileID        string
	Source           string
	SourceRef        string
	XPDelta          int64
	Reason           string
	PurchaseSubtotal *float64
}

func (a XPAward) Validate() error {
	switch {
	case strings.TrimSpace(a.ProfileID) == "":
		return errors.New("profileId is required")
	case strings.TrimSpace(a.Source) == "":
		return errors.New("source is required")
	case IsUniqueSource(a.Source) && a.SourceRef == "":
		return errors.New("sourceRef is required for source " + a.Source)
	}
	return nil
}

func (a XPAward) Entry(id string, now time.Time) XPLedgerEntry {
	return XPLedgerEntry{
		ID:               id,
		ProfileID:        a.ProfileID,
		Source:           a.Source,
		SourceRef:        a.SourceRef,
		XPDelta:          a.XPDelta,
		Reason:           a.Reason,
		PurchaseSubtotal: a.PurchaseSubtotal,
		CreatedAt:        now,
	}
}

// BalanceDrift is a profile whose materialized total disagrees with its ledger.
type BalanceDrift struct {
	ProfileID string `json:"profileId"`
	XPTotal   int64  `json:"xpTotal"`
	LedgerSum int64  `json:"ledgerSum"`
}

// Fact rows written by other subsystems and read by the evaluator.

type ReadEvent struct {
	ProfileID     string    `json:"profileId" firestore:"profileId"`
	IssueID       string    `json:"issueId" firestore:"issueId"`
	Completed     bool      `json:"completed" firestore:"completed"`
	PercentRead   float64   `json:"percentRead" firestore:"percentRead"`
	ActiveSeconds int       `json:"activeSeconds" firestore:"activeSeconds"`
	CreatedAt     time.Time `json:"createdAt" firestore:"createdAt"`
}

func (e ReadEvent) Qualifies() bool {
	return e.Completed && e.PercentRead >= ReadMinPercent && e.ActiveSeconds >= ReadMinActiveSeconds
}

type DiscordEvent struct {
	ProfileID string    `json:"profileId" firestore:"profileId"`
	EventType string    `json:"eventType" firestore:"eventType"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
}

type QuizAttempt struct {
	ProfileID string    `json:"profileId" firestore:"profileId"`
	IssueID   string    `json:"issueId" firestore:"issueId"`
	Passed    bool      `json:"passed" firestore:"passed"`
	Score     float64   `json:"score" firestore:"score"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
}
