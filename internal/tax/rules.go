package tax

import "github.com/deductfinder/backend/internal/model"

// Policy classifies how a category's deductible amount is derived.
type Policy string

const (
	// PolicyPercent deducts a fixed percentage of the amount.
	PolicyPercent Policy = "percent"
	// PolicyVaries means the real rule depends on a method election the
	// engine does not model (standard vs actual vehicle expense, logbook
	// home office); a conservative default multiplier stands in.
	PolicyVaries Policy = "varies"
	// PolicyReview means no automatic deduction; the expense is surfaced
	// for manual categorization.
	PolicyReview Policy = "review"
)

// VariesDefaultMultiplier is the conservative stand-in applied to "varies"
// categories when no method-specific ratio is supplied. It approximates
// method-dependent rules and may be overridden per table.
const VariesDefaultMultiplier = 0.70

// Rule is one jurisdiction's deductibility policy for a category.
type Rule struct {
	Policy     Policy
	Percent    float64 // 0-100, meaningful for PolicyPercent
	Notes      string
	Citation   string
	LedgerLine string // Schedule C line (US) or ATO item label (AU)
}

// IRS deduction rules keyed by category, with Schedule C lines.
var usRules = map[model.Category]Rule{
	model.CategoryOfficeSupplies:       {Policy: PolicyPercent, Percent: 100, Notes: "Fully deductible", Citation: "IRS Pub 535", LedgerLine: "18"},
	model.CategoryTravel:               {Policy: PolicyPercent, Percent: 100, Notes: "Business travel fully deductible", Citation: "IRS Pub 463", LedgerLine: "24a"},
	model.CategoryMeals:                {Policy: PolicyPercent, Percent: 50, Notes: "50% deductible, must be business-related", Citation: "IRS Pub 463", LedgerLine: "24b"},
	model.CategoryVehicle:              {Policy: PolicyVaries, Notes: "Standard mileage or actual expenses; keep logs", Citation: "IRS Pub 463", LedgerLine: "9"},
	model.CategoryHomeOffice:           {Policy: PolicyVaries, Notes: "Regular and exclusive use required", Citation: "IRS Pub 587", LedgerLine: "30"},
	model.CategoryProfessionalServices: {Policy: PolicyPercent, Percent: 100, Notes: "Fully deductible", Citation: "IRS Pub 535", LedgerLine: "17"},
	model.CategoryMarketing:            {Policy: PolicyPercent, Percent: 100, Notes: "Fully deductible", Citation: "IRS Pub 535", LedgerLine: "8"},
	model.CategoryTechnology:           {Policy: PolicyPercent, Percent: 100, Notes: "Fully deductible", Citation: "IRS Pub 535", LedgerLine: "18"},
	model.CategoryEducation:            {Policy: PolicyPercent, Percent: 100, Notes: "Must maintain current skills, not qualify a new trade", Citation: "IRS Pub 970", LedgerLine: "27a"},
	model.CategoryInsurance:            {Policy: PolicyPercent, Percent: 100, Notes: "Fully deductible", Citation: "IRS Pub 535", LedgerLine: "15"},
	model.CategoryOther:                {Policy: PolicyReview, Notes: "Individual assessment required", Citation: "IRS Pub 535", LedgerLine: "27a"},
}

// ATO deduction rules for the same category set, with D-item labels.
var auRules = map[model.Category]Rule{
	model.CategoryOfficeSupplies:       {Policy: PolicyPercent, Percent: 100, Notes: "Work-related consumables", Citation: "ATO Other work-related expenses", LedgerLine: "D5"},
	model.CategoryTravel:               {Policy: PolicyPercent, Percent: 100, Notes: "Work-related travel", Citation: "ATO Work-related travel", LedgerLine: "D2"},
	model.CategoryMeals:                {Policy: PolicyPercent, Percent: 0, Notes: "Entertainment is generally not deductible", Citation: "ATO TR 97/17", LedgerLine: "D5"},
	model.CategoryVehicle:              {Policy: PolicyVaries, Notes: "Cents-per-km or logbook method", Citation: "ATO Work-related car expenses", LedgerLine: "D1"},
	model.CategoryHomeOffice:           {Policy: PolicyVaries, Notes: "Fixed-rate or actual-cost method", Citation: "ATO PCG 2023/1", LedgerLine: "D5"},
	model.CategoryProfessionalServices: {Policy: PolicyPercent, Percent: 100, Notes: "Cost of managing tax affairs", Citation: "ATO Cost of managing tax affairs", LedgerLine: "D10"},
	model.CategoryMarketing:            {Policy: PolicyPercent, Percent: 100, Notes: "Advertising for business income", Citation: "ATO Business deductions", LedgerLine: "P8"},
	model.CategoryTechnology:           {Policy: PolicyPercent, Percent: 100, Notes: "Work-related software and devices", Citation: "ATO Other work-related expenses", LedgerLine: "D5"},
	model.CategoryEducation:            {Policy: PolicyPercent, Percent: 100, Notes: "Self-education connected to current work", Citation: "ATO Self-education expenses", LedgerLine: "D4"},
	model.CategoryInsurance:            {Policy: PolicyPercent, Percent: 100, Notes: "Income protection premiums", Citation: "ATO Income protection insurance", LedgerLine: "D15"},
	model.CategoryOther:                {Policy: PolicyReview, Notes: "Individual assessment required", Citation: "ATO Other deductions", LedgerLine: "D15"},
}

// RuleTable resolves deduction rules for one jurisdiction.
type RuleTable struct {
	jurisdiction model.Jurisdiction
	rules        map[model.Category]Rule
	variesMult   float64
}

// NewRuleTable returns the built-in rule table for a jurisdiction.
func NewRuleTable(j model.Jurisdiction) (*RuleTable, error) {
	var rules map[model.Category]Rule
	switch j {
	case model.JurisdictionUS:
		rules = usRules
	case model.JurisdictionAU:
		rules = auRules
	default:
		return nil, newError(ErrUnknownJurisdiction, "no rule table for jurisdiction %q", j)
	}
	return &RuleTable{jurisdiction: j, rules: rules, variesMult: VariesDefaultMultiplier}, nil
}

// WithVariesMultiplier returns a copy of the table using a method-specific
// ratio (e.g. a logbook business-use percentage) instead of the default.
func (t *RuleTable) WithVariesMultiplier(mult float64) *RuleTable {
	cp := *t
	cp.variesMult = mult
	return &cp
}

// Lookup returns the rule for a category.
func (t *RuleTable) Lookup(category model.Category) (Rule, error) {
	rule, ok := t.rules[category]
	if !ok {
		return Rule{}, newError(ErrUnknownCategory, "unknown category %q for jurisdiction %s", category, t.jurisdiction)
	}
	return rule, nil
}

// DeductibleAmount applies a rule to an amount already normalized to the
// reporting currency. Review-policy categories yield 0; the caller surfaces
// them as requiring manual categorization.
func (t *RuleTable) DeductibleAmount(rule Rule, amount float64) float64 {
	switch rule.Policy {
	case PolicyPercent:
		return amount * rule.Percent / 100
	case PolicyVaries:
		return amount * t.variesMult
	default:
		return 0
	}
}
