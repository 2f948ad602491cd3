package rules

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Clock returns the current time. Minted ids are derived from it.
type Clock func() time.Time

var defaultClock Clock = time.Now

// NormalizeOnRead converts a wire record into a Rule using the wall clock.
func NormalizeOnRead(rec Record) Rule {
	return normalizeOnRead(rec, defaultClock)
}

func normalizeOnRead(rec Record, now Clock) Rule {
	id, ok := parseNumber(rec.ID)
	minted := false
	if !ok {
		id = now().UnixMilli()
		minted = true
	}

	return Rule{
		ID:             id,
		IDMinted:       minted,
		RuleCode:       strings.TrimSpace(rec.RuleCode),
		RuleName:       strings.TrimSpace(rec.RuleName),
		Description:    rec.Description,
		TargetEntity:   rec.TargetEntity,
		TargetField:    strings.TrimSpace(rec.TargetField),
		ValidationType: ValidationType(strings.ToUpper(strings.TrimSpace(rec.ValidationType))),
		Severity:       normalizeSeverity(rec.Severity),
		Category:       Category(strings.ToUpper(strings.TrimSpace(rec.Category))),
		Active:         activeOrDefault(rec.Active),
		DisplayOrder:   rec.DisplayOrder,
		Condition:      derefString(rec.Condition),
		ErrorMessage:   rec.ErrorMessage,
		Parameters:     cloneParams(rec.Parameters),
	}
}

// NormalizeBeforeWrite converts a rule into the record sent to the backend.
// A zero id is omitted and Condition is always present.
func NormalizeBeforeWrite(rule Rule) Record {
	var id any
	if rule.ID != 0 {
		id = rule.ID
	}
	active := rule.Active
	condition := rule.Condition

	return Record{
		ID:             id,
		RuleCode:       rule.RuleCode,
		RuleName:       rule.RuleName,
		Description:    rule.Description,
		TargetEntity:   rule.TargetEntity,
		TargetField:    rule.TargetField,
		ValidationType: string(rule.ValidationType),
		Severity:       rule.Severity,
		Category:       string(rule.Category),
		Active:         &active,
		DisplayOrder:   rule.DisplayOrder,
		Condition:      &condition,
		ErrorMessage:   rule.ErrorMessage,
		Parameters:     cloneParams(rule.Parameters),
	}
}

// ParseID coerces a loosely typed id to a positive integer. Zero, negative
// and fractional values are rejected.
func ParseID(raw any) (int64, bool) {
	id, ok := parseNumber(raw)
	if !ok || id <= 0 {
		return 0, false
	}
	return id, true
}

// parseNumber coerces a loosely typed id to an integer of any sign.
func parseNumber(raw any) (int64, bool) {
	var id int64
	switch v := raw.(type) {
	case int:
		id = int64(v)
	case int32:
		id = int64(v)
	case int64:
		id = v
	case uint64:
		if v > math.MaxInt64 {
			return 0, false
		}
		id = int64(v)
	case float64:
		if v != math.Trunc(v) || v >= math.MaxInt64 || v < math.MinInt64 {
			return 0, false
		}
		id = int64(v)
	case json.Number:
		return parseNumber(string(v))
	case string:
		s := strings.TrimSpace(v)
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			f, ferr := strconv.ParseFloat(s, 64)
			if ferr != nil {
				return 0, false
			}
			return parseNumber(f)
		}
		id = n
	case fmt.Stringer:
		return parseNumber(v.String())
	default:
		return 0, false
	}
	return id, true
}

func normalizeSeverity(raw string) string {
	severity := strings.ToLower(strings.TrimSpace(raw))
	if severity == "" {
		return SeverityDefault
	}
	return severity
}

func activeOrDefault(active *bool) bool {
	return active == nil || *active
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func cloneParams(params []Parameter) []Parameter {
	out := make([]Parameter, 0, len(params))
	for _, p := range params {
		out = append(out, Parameter{Name: strings.TrimSpace(p.Name), Value: p.Value})
	}
	return out
}
