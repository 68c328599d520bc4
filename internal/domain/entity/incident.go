package entity

import "time"

type IncidentKind string

const (
	// IncidentClaimNotPersisted: a code was minted and XP debited but the claim row was not written.
	IncidentClaimNotPersisted IncidentKind = "claim_not_persisted"
	// IncidentRefundFailed: a compensating refund could not be appended.
	IncidentRefundFailed IncidentKind = "refund_failed"
	// IncidentBalanceDrift: xp_state disagrees with the ledger.
	IncidentBalanceDrift IncidentKind = "balance_drift"
)

// Incident is a record kept for manual reconciliation.
type Incident struct {
	ID         string                 `json:"id"`
	Kind       IncidentKind           `json:"kind"`
	ProfileID  string                 `json:"profileId,omitempty"`
	RewardID   string                 `json:"rewardId,omitempty"`
	ClaimID    string                 `json:"claimId,omitempty"`
	Code       string                 `json:"code,omitempty"`
	CostXP     int64                  `json:"costXp,omitempty"`
	Error      string                 `json:"error,omitempty"`
	Data       map[string]interface{} `json:"data,omitempty"`
	OccurredAt time.Time              `json:"occurredAt"`
}
