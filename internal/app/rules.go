package app

import (
	"strings"

	"staybook/internal/domain"
)

// RuleKey is the stable identifier an eligibility rule is registered under.
// Keys are derived from promotion titles through NormalizeRuleKey, which is
// the single place display text is interpreted; everything downstream
// dispatches on the normalized key.
type RuleKey string

const (
	RuleSeniorCitizen RuleKey = "SENIOR_CITIZEN_DISCOUNT"
	RuleKduMember     RuleKey = "KDU_MEMBERSHIP_DISCOUNT"
	RuleLongWeekend   RuleKey = "LONG_WEEKEND_DISCOUNT"
	RuleMilitary      RuleKey = "MILITARY_PERSONNEL_DISCOUNT"
	RuleUpfront       RuleKey = "UPFRONT_PAYMENT_DISCOUNT"
	RuleWeekend       RuleKey = "WEEKEND_DISCOUNT"
)

// EligibilityRule decides whether a stay qualifies for a promotion. The
// minimum-stay check runs before dispatch, so rules only see stays long
// enough for the promotion.
type EligibilityRule func(c domain.EligibilityCriteria) bool

// NormalizeRuleKey collapses a display title to a stable key: uppercased,
// with non-alphanumeric runs folded to single underscores. "Weekend discount"
// and "WEEKEND_DISCOUNT" map to the same key, so a cosmetic title edit does
// not silently disable a rule.
func NormalizeRuleKey(title string) RuleKey {
	var b strings.Builder
	b.Grow(len(title))
	pendingSep := false
	for _, r := range strings.ToUpper(strings.TrimSpace(title)) {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
		default:
			pendingSep = true
		}
	}
	return RuleKey(b.String())
}

// RuleRegistry maps rule keys to predicates. Unknown keys are eligible by the
// minimum-stay check alone.
type RuleRegistry struct {
	rules map[RuleKey]EligibilityRule
}

// NewRuleRegistry returns a registry pre-loaded with the built-in rules.
func NewRuleRegistry() *RuleRegistry {
	r := &RuleRegistry{rules: make(map[RuleKey]EligibilityRule, 8)}
	r.Register(RuleSeniorCitizen, func(c domain.EligibilityCriteria) bool {
		return c.Seniors > 0
	})
	r.Register(RuleKduMember, func(c domain.EligibilityCriteria) bool {
		return c.Member
	})
	r.Register(RuleLongWeekend, func(c domain.EligibilityCriteria) bool {
		return c.Stay.Nights() >= 3 && c.Stay.HasFullWeekend()
	})
	r.Register(RuleMilitary, func(c domain.EligibilityCriteria) bool {
		return c.Military
	})
	r.Register(RuleUpfront, func(c domain.EligibilityCriteria) bool {
		return c.Upfront
	})
	r.Register(RuleWeekend, func(c domain.EligibilityCriteria) bool {
		return c.Stay.Nights() >= 2 && c.Stay.TouchesWeekend()
	})
	return r
}

func (r *RuleRegistry) Register(key RuleKey, rule EligibilityRule) {
	r.rules[key] = rule
}

// Eligible applies the minimum-stay gate, then the registered rule for the
// promotion's key, if any.
func (r *RuleRegistry) Eligible(p domain.MergedPromotion, c domain.EligibilityCriteria) bool {
	if c.Stay.Nights() < p.MinNights {
		return false
	}
	rule, ok := r.rules[NormalizeRuleKey(p.Title)]
	if !ok {
		return true
	}
	return rule(c)
}
