package engine

import (
	"encoding/json"

	"github.com/sigalit/guide-scheduler-api/pkg/models"
)

// Known coordinator rule types.
const (
	RuleNoWeekends       = "NO_WEEKENDS"
	RuleMaxWeekendShifts = "MAX_WEEKEND_SHIFTS"
)

// RuleSpec is the decoded form of a CoordinatorRule. Each known rule type has
// its own variant with typed parameters; anything else decodes to UnknownRule
// and is ignored, so new rule types can be rolled out ahead of engine support.
type RuleSpec interface {
	ruleSpec()
}

// NoWeekendsRule blocks the listed guides on Friday and Saturday.
type NoWeekendsRule struct {
	GuideIDs []string `json:"guideIds"`
}

// MaxWeekendShiftsRule caps how many weekend shifts any guide of the house may
// work in one calendar month.
type MaxWeekendShiftsRule struct {
	MaxPerMonth int `json:"maxPerMonth"`
}

// UnknownRule preserves the tag of an unrecognised rule type.
type UnknownRule struct {
	Type string
}

func (NoWeekendsRule) ruleSpec()       {}
func (MaxWeekendShiftsRule) ruleSpec() {}
func (UnknownRule) ruleSpec()          {}

// DecodeRule turns a stored CoordinatorRule into its typed variant. Malformed
// parameters degrade to UnknownRule rather than failing the availability
// check; a broken rule row should never make every guide evaluation error.
func DecodeRule(r models.CoordinatorRule) RuleSpec {
	switch r.RuleType {
	case RuleNoWeekends:
		var spec NoWeekendsRule
		if err := json.Unmarshal([]byte(r.Parameters), &spec); err != nil {
			return UnknownRule{Type: r.RuleType}
		}
		return spec
	case RuleMaxWeekendShifts:
		var spec MaxWeekendShiftsRule
		if err := json.Unmarshal([]byte(r.Parameters), &spec); err != nil || spec.MaxPerMonth <= 0 {
			return UnknownRule{Type: r.RuleType}
		}
		return spec
	default:
		return UnknownRule{Type: r.RuleType}
	}
}

// EncodeRuleParams marshals typed rule parameters for storage.
func EncodeRuleParams(spec RuleSpec) (string, error) {
	raw, err := json.Marshal(spec)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
