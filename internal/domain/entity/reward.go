package entity

import (
	"crypto/rand"
	"errors"
	"io"
	"strings"
	"time"
)

type RewardType string

const (
	RewardTypeDiscountCode RewardType = "discount_code"
)

type DiscountType string

const (
	DiscountPercentage  DiscountType = "percentage"
	DiscountFixedAmount DiscountType = "fixed_amount"
)

const DefaultCodePrefix = "MNKY"

type Reward struct {
	ID          string                 `json:"id" firestore:"id"`
	Type        RewardType             `json:"type" firestore:"type"`
	Title       string                 `json:"title" firestore:"title"`
	Description string                 `json:"description,omitempty" firestore:"description,omitempty"`
	Payload     map[string]interface{} `json:"payload" firestore:"payload"`
	MinLevel    int                    `json:"minLevel,omitempty" firestore:"minLevel,omitempty"`
	Active      bool                   `json:"active" firestore:"active"`
	CreatedAt   time.Time              `json:"createdAt" firestore:"createdAt"`
}

// CostXP is the payload cost, 0 when unset or malformed.
func (r *Reward) CostXP() int64 {
	n := numberField(r.Payload, 0, "costXp", "cost_xp")
	if n < 0 {
		return 0
	}
	return clampInt64(n)
}

// RequiredLevel is MinLevel, defaulting to 1.
func (r *Reward) RequiredLevel() int {
	if r.MinLevel < 1 {
		return 1
	}
	return r.MinLevel
}

func (r *Reward) DiscountType() DiscountType {
	s, _ := stringField(r.Payload, "discountType", "discount_type")
	switch DiscountType(s) {
	case DiscountFixedAmount, "fixed", "amount":
		return DiscountFixedAmount
	}
	return DiscountPercentage
}

func (r *Reward) DiscountValue() float64 {
	return numberField(r.Payload, 0, "discountValue", "discount_value")
}

func (r *Reward) CodePrefix(fallback string) string {
	if s, ok := stringField(r.Payload, "codePrefix", "code_prefix"); ok {
		return strings.ToUpper(s)
	}
	if fallback != "" {
		return fallback
	}
	return DefaultCodePrefix
}

type ClaimStatus string

// Issued is the only status today. Refunded or revoked claims would be added
// here as further terminal states.
const (
	ClaimStatusIssued ClaimStatus = "issued"
)

type RewardClaim struct {
	ID             string      `json:"id" firestore:"id"`
	ProfileID      string      `json:"profileId" firestore:"profileId"`
	RewardID       string      `json:"rewardId" firestore:"rewardId"`
	Status         ClaimStatus `json:"status" firestore:"status"`
	ExternalRef    string      `json:"externalRef,omitempty" firestore:"externalRef,omitempty"`
	IdempotencyKey string      `json:"-" firestore:"idempotencyKey,omitempty"`
	IssuedAt       time.Time   `json:"issuedAt" firestore:"issuedAt"`
}

// RewardWithAvailability annotates a catalog entry for one profile.
type RewardWithAvailability struct {
	Reward
	CostXP        int64  `json:"costXp"`
	RequiredLevel int    `json:"requiredLevel"`
	CanRedeem     bool   `json:"canRedeem"`
	BlockedReason string `json:"blockedReason,omitempty"`
}

// CodeAlphabet leaves out 0/O and 1/I/L so codes survive being read aloud.
const CodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

const codeRandomLength = 6

// GenerateDiscountCode returns PREFIX-XXXXXX using random bytes from src,
// or crypto/rand when src is nil.
func GenerateDiscountCode(prefix string, src io.Reader) (string, error) {
	if src == nil {
		src = rand.Reader
	}
	if prefix == "" {
		prefix = DefaultCodePrefix
	}

	// Largest multiple of len(CodeAlphabet) below 256, to avoid modulo bias.
	limit := byte(256 - 256%len(CodeAlphabet))
	out := make([]byte, 0, codeRandomLength)
	buf := make([]byte, 16)
	for len(out) < codeRandomLength {
		n, err := src.Read(buf)
		if err != nil && n == 0 {
			return "", err
		}
		if n == 0 {
			return "", errors.New("random source returned no data")
		}
		for _, b := range buf[:n] {
			if b >= limit {
				continue
			}
			out = append(out, CodeAlphabet[int(b)%len(CodeAlphabet)])
			if len(out) == codeRandomLength {
				break
			}
		}
	}
	return prefix + "-" + string(out), nil
}
