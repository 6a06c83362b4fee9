package finance

import "tendo-schools/app/models"

// RuleSet resolves the expected fee for a class/term/year from a school's
// range rules and its class order. Resolution is a pure function of the rule
// set: the same inputs always produce the same amount.
type RuleSet struct {
	order *ClassOrder
	rules []*models.FeeRule
}

// NewRuleSet builds a RuleSet over a school's class order and fee rules.
func NewRuleSet(order *ClassOrder, rules []*models.FeeRule) *RuleSet {
	return &RuleSet{order: order, rules: rules}
}

// ExpectedFee returns the amount a student in classLevel owes for the given
// term and academic year.
//
// Rule ranges are inclusive and may be authored in either direction; from/to
// indices are normalized with min/max before the membership test. When several
// rules cover the same class and term, the last matching rule in iteration
// order wins; overlapping ranges are a configuration mistake the resolver does
// not detect. No matching rule, or an unknown class name, resolves to 0.
func (rs *RuleSet) ExpectedFee(classLevel, academicYear string, term models.Term) float64 {
	classIdx := rs.order.Index(classLevel)
	if classIdx < 0 {
		return 0
	}

	var amount float64
	for _, r := range rs.rules {
		if r.AcademicYear != academicYear || r.Term != term {
			continue
		}
		from := rs.order.Index(r.FromClass)
		to := rs.order.Index(r.ToClass)
		if from < 0 || to < 0 {
			continue
		}
		if from > to {
			from, to = to, from
		}
		if classIdx >= from && classIdx <= to {
			amount = r.Amount
		}
	}
	return amount
}
