package entity

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

type RequirementType string

const (
	RequirementReadIssue      RequirementType = "read_issue"
	RequirementDiscordMessage RequirementType = "discord_message"
	RequirementPurchase       RequirementType = "purchase"
	RequirementMagQuiz        RequirementType = "mag_quiz"
	RequirementUGCApproved    RequirementType = "ugc_approved"
	RequirementXPSource       RequirementType = "xp_source"
)

// A read event qualifies for read_issue only past both thresholds.
const (
	ReadMinPercent       = 80
	ReadMinActiveSeconds = 90
)

// Requirement is one leaf condition of a quest rule. The concrete types
// below are the only implementations.
type Requirement interface {
	Type() RequirementType
}

type ReadIssueRequirement struct {
	IssueID string `json:"issueId"`
}

type DiscordMessageRequirement struct {
	EventType string `json:"eventType,omitempty"` // empty matches any event type
	Count     int    `json:"count"`
}

type PurchaseRequirement struct {
	MinSubtotal float64 `json:"minSubtotal"`
}

type MagQuizRequirement struct {
	IssueID string `json:"issueId,omitempty"` // empty matches any issue
}

type UGCApprovedRequirement struct{}

type XPSourceRequirement struct {
	Source   string `json:"source"`
	MinTotal int64  `json:"minTotal"`
}

func (ReadIssueRequirement) Type() RequirementType      { return RequirementReadIssue }
func (DiscordMessageRequirement) Type() RequirementType { return RequirementDiscordMessage }
func (PurchaseRequirement) Type() RequirementType       { return RequirementPurchase }
func (MagQuizRequirement) Type() RequirementType        { return RequirementMagQuiz }
func (UGCApprovedRequirement) Type() RequirementType    { return RequirementUGCApproved }
func (XPSourceRequirement) Type() RequirementType       { return RequirementXPSource }

// RequirementParseError explains why a persisted requirement was rejected.
type RequirementParseError struct {
	Type   string
	Reason string
}

func (e *RequirementParseError) Error() string {
	if e.Type == "" {
		return "invalid requirement: " + e.Reason
	}
	return fmt.Sprintf("invalid %s requirement: %s", e.Type, e.Reason)
}

// ParseRequirement converts a loosely typed requirement object, as stored by
// the admin tooling, into a Requirement. Both camelCase and snake_case keys are
// accepted. Numeric fields that fail to parse fall back to their defaults.
func ParseRequirement(raw interface{}) (Requirement, error) {
	m, err := asObject(raw)
	if err != nil {
		return nil, err
	}

	typ, _ := stringField(m, "type")
	switch RequirementType(typ) {
	case RequirementReadIssue:
		issueID, ok := stringField(m, "issueId", "issue_id")
		if !ok {
			return nil, &RequirementParseError{Type: typ, Reason: "issueId is required"}
		}
		return ReadIssueRequirement{IssueID: issueID}, nil

	case RequirementDiscordMessage:
		eventType, _ := stringField(m, "eventType", "event_type")
		count := clampInt(numberField(m, 1, "count"))
		if count < 1 {
			count = 1
		}
		return DiscordMessageRequirement{EventType: eventType, Count: count}, nil

	case RequirementPurchase:
		return PurchaseRequirement{MinSubtotal: numberField(m, 0, "minSubtotal", "min_subtotal")}, nil

	case RequirementMagQuiz:
		issueID, _ := stringField(m, "issueId", "issue_id")
		return MagQuizRequirement{IssueID: issueID}, nil

	case RequirementUGCApproved:
		return UGCApprovedRequirement{}, nil

	case RequirementXPSource:
		source, ok := stringField(m, "source")
		if !ok {
			return nil, &RequirementParseError{Type: typ, Reason: "source is required"}
		}
		return XPSourceRequirement{
			Source:   source,
			MinTotal: clampInt64(numberField(m, 1, "minTotal", "min_total")),
		}, nil

	case "":
		return nil, &RequirementParseError{Reason: "missing type"}
	}

	return nil, &RequirementParseError{Type: typ, Reason: "unknown type"}
}

// NormalizeRequirement is ParseRequirement with failures collapsed to nil.
func NormalizeRequirement(raw interface{}) Requirement {
	req, err := ParseRequirement(raw)
	if err != nil {
		return nil
	}
	return req
}

// ParseRequirements parses a rule's requirement list, returning the valid
// requirements in order and one error per dropped entry.
func ParseRequirements(raws []interface{}) ([]Requirement, []error) {
	reqs := make([]Requirement, 0, len(raws))
	var errs []error
	for i, raw := range raws {
		req, err := ParseRequirement(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("requirement %d: %w", i, err))
			continue
		}
		reqs = append(reqs, req)
	}
	return reqs, errs
}

func asObject(raw interface{}) (map[string]interface{}, error) {
	switch v := raw.(type) {
	case map[string]interface{}:
		return v, nil
	case json.RawMessage:
		return decodeObject(v)
	case []byte:
		return decodeObject(v)
	case string:
		return decodeObject([]byte(v))
	case nil:
		return nil, &RequirementParseError{Reason: "null requirement"}
	}
	return nil, &RequirementParseError{Reason: fmt.Sprintf("expected object, got %T", raw)}
}

func decodeObject(b []byte) (map[string]interface{}, error) {
	var m map[string]interface{}
	if err := json.Unmarshal(b, &m); err != nil || m == nil {
		return nil, &RequirementParseError{Reason: "not a JSON object"}
	}
	return m, nil
}

func stringField(m map[string]interface{}, keys ...string) (string, bool) {
	for _, key := range keys {
		switch v := m[key].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s, true
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64), true
		case int64:
			return strconv.FormatInt(v, 10), true
		case int:
			return strconv.Itoa(v), true
		}
	}
	return "", false
}

// clampInt64 saturates instead of wrapping, so oversized thresholds stay
// unreachable rather than turning negative.
func clampInt64(f float64) int64 {
	switch {
	case f >= math.MaxInt64:
		return math.MaxInt64
	case f <= math.MinInt64:
		return math.MinInt64
	}
	return int64(f)
}

func clampInt(f float64) int {
	switch {
	case f >= math.MaxInt:
		return math.MaxInt
	case f <= math.MinInt:
		return math.MinInt
	}
	return int(f)
}

func numberField(m map[string]interface{}, def float64, keys ...string) float64 {
	for _, key := range keys {
		v, ok := m[key]
		if !ok || v == nil {
			continue
		}
		if n, ok := toNumber(v); ok {
			return n
		}
		return def
	}
	return def
}

func toNumber(v interface{}) (float64, bool) {
	var n float64
	switch t := v.(type) {
	case float64:
		n = t
	case float32:
		n = float64(t)
	case int:
		n = float64(t)
	case int32:
		n = float64(t)
	case int64:
		n = float64(t)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, false
		}
		n = f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		n = f
	default:
		return 0, false
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}
