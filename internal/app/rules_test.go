package app_test

import (
	"testing"

	"staybook/internal/app"
	"staybook/internal/domain"
)

func TestNormalizeRuleKey(t *testing.T) {
	cases := map[string]app.RuleKey{
		"Weekend discount":            app.RuleWeekend,
		"WEEKEND_DISCOUNT":            app.RuleWeekend,
		"  weekend   discount  ":      app.RuleWeekend,
		"KDU Membership Discount":     app.RuleKduMember,
		"SENIOR_CITIZEN_DISCOUNT":     app.RuleSeniorCitizen,
		"Long weekend discount":       app.RuleLongWeekend,
		"Military personnel discount": app.RuleMilitary,
		"Upfront payment discount":    app.RuleUpfront,
	}
	for title, want := range cases {
		if got := app.NormalizeRuleKey(title); got != want {
			t.Errorf("NormalizeRuleKey(%q) = %q, want %q", title, got, want)
		}
	}
}

func TestRegistry_CustomRule(t *testing.T) {
	reg := app.NewRuleRegistry()
	reg.Register("FAMILY_DISCOUNT", func(c domain.EligibilityCriteria) bool {
		return c.Children > 0
	})

	promo := domain.MergedPromotion{ID: 1, Title: "Family discount"}
	stay := span(t, "2024-06-10", "2024-06-12")

	if reg.Eligible(promo, domain.EligibilityCriteria{Stay: stay, Adults: 2}) {
		t.Fatalf("no children, must not be eligible")
	}
	if !reg.Eligible(promo, domain.EligibilityCriteria{Stay: stay, Adults: 2, Children: 1}) {
		t.Fatalf("expected eligible with a child")
	}
}

func TestRegistry_MinStayGate(t *testing.T) {
	reg := app.NewRuleRegistry()
	promo := domain.MergedPromotion{ID: 1, Title: "Upfront payment discount", MinNights: 4}
	c := domain.EligibilityCriteria{Stay: span(t, "2024-06-10", "2024-06-12"), Upfront: true}
	if reg.Eligible(promo, c) {
		t.Fatalf("3-night stay must fail a 4-night minimum even when the rule matches")
	}
}

func TestCriteria_TotalGuestsPrecedence(t *testing.T) {
	c := domain.EligibilityCriteria{Adults: 2, Seniors: 1, Children: 1}
	if c.GuestCount() != 4 {
		t.Fatalf("sum of categories = %d, want 4", c.GuestCount())
	}
	c.TotalGuests = ptr(2)
	if c.GuestCount() != 2 {
		t.Fatalf("explicit total must win, got %d", c.GuestCount())
	}
}
