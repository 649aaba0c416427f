package tax

import (
	"sort"

	"github.com/deductfinder/backend/internal/model"
)

// Analyzer computes deduction analyses for one jurisdiction. It is stateless
// apart from its rule/rate configuration; Analyze is a pure function of its
// inputs and may be called on any snapshot.
type Analyzer struct {
	profile Profile
	conv    *Converter
	rules   *RuleTable
}

// NewAnalyzer builds an analyzer for a jurisdiction.
func NewAnalyzer(j model.Jurisdiction) (*Analyzer, error) {
	profile, err := ProfileFor(j)
	if err != nil {
		return nil, err
	}
	rules, err := NewRuleTable(j)
	if err != nil {
		return nil, err
	}
	return &Analyzer{profile: profile, conv: NewConverter(), rules: rules}, nil
}

// Profile returns the analyzer's jurisdiction profile.
func (a *Analyzer) Profile() Profile {
	return a.profile
}

// Rules returns the analyzer's rule table.
func (a *Analyzer) Rules() *RuleTable {
	return a.rules
}

// WithVariesMultiplier returns an analyzer applying a method-specific ratio
// for "varies" categories.
func (a *Analyzer) WithVariesMultiplier(mult float64) *Analyzer {
	cp := *a
	cp.rules = a.rules.WithVariesMultiplier(mult)
	return &cp
}

// Analyze produces the full deduction analysis for a snapshot of records.
// Amounts are normalized to the reporting currency before rules apply.
// Input slices are never mutated; recomputation over the same snapshot
// yields an identical result.
func (a *Analyzer) Analyze(expenses []model.Expense, mileage []model.Mileage, clients []model.Client) (*model.Analysis, error) {
	type bucket struct {
		count         int
		raw           float64
		deductible    float64
		nonDeductible float64
	}
	buckets := make(map[model.Category]*bucket)
	normalized := make(map[string]float64, len(expenses)) // expense ID -> reporting-currency amount

	var totalExpenses, totalDeductible float64
	for _, e := range expenses {
		amount, err := a.conv.Convert(e.Amount, e.Currency, a.profile.ReportingCurrency)
		if err != nil {
			return nil, err
		}
		rule, err := a.rules.Lookup(e.Category)
		if err != nil {
			return nil, err
		}
		deductible := a.rules.DeductibleAmount(rule, amount)

		b := buckets[e.Category]
		if b == nil {
			b = &bucket{}
			buckets[e.Category] = b
		}
		b.count++
		b.raw += amount
		b.deductible += deductible
		b.nonDeductible += amount - deductible

		normalized[e.ID] = amount
		totalExpenses += amount
		totalDeductible += deductible
	}

	mileageByID := make(map[string]float64, len(mileage))
	var mileageTotal float64
	for _, m := range mileage {
		deduction, err := MileageDeduction(m.Distance, m.Unit, a.profile)
		if err != nil {
			return nil, err
		}
		mileageByID[m.ID] = deduction
		mileageTotal += deduction
	}
	totalDeductible += mileageTotal

	analysis := &model.Analysis{
		Jurisdiction:      a.profile.Jurisdiction,
		ReportingCurrency: a.profile.ReportingCurrency,
		TotalExpenses:     totalExpenses,
		MileageDeduction:  mileageTotal,
		MileageEntries:    len(mileage),
		TotalDeductible:   totalDeductible,
		PotentialSavings:  totalDeductible * a.profile.SavingsRate,
	}

	// Category and ledger-line breakdowns in canonical category order.
	lineIndex := make(map[string]int)
	for _, cat := range model.Categories() {
		b, ok := buckets[cat]
		if !ok {
			continue
		}
		rule, _ := a.rules.Lookup(cat)
		analysis.Categories = append(analysis.Categories, model.CategoryTotal{
			Category:           cat,
			Count:              b.count,
			RawTotal:           b.raw,
			DeductibleTotal:    b.deductible,
			NonDeductibleTotal: b.nonDeductible,
			ReviewRequired:     rule.Policy == PolicyReview,
			LedgerLine:         rule.LedgerLine,
			Citation:           rule.Citation,
		})
		if idx, ok := lineIndex[rule.LedgerLine]; ok {
			analysis.LedgerLines[idx].Total += b.deductible
		} else {
			lineIndex[rule.LedgerLine] = len(analysis.LedgerLines)
			analysis.LedgerLines = append(analysis.LedgerLines, model.LedgerLineTotal{
				Line:     rule.LedgerLine,
				Category: cat,
				Total:    b.deductible,
			})
		}
	}

	// Per-client rollup in client input order, matching by name.
	for _, c := range clients {
		ct := model.ClientTotal{Name: c.Name}
		for _, e := range expenses {
			if e.Client == c.Name {
				ct.ExpenseCount++
				ct.ExpenseTotal += normalized[e.ID]
			}
		}
		for _, m := range mileage {
			if m.Client == c.Name {
				ct.MileageCount++
				ct.MileageDeduction += mileageByID[m.ID]
			}
		}
		ct.Total = ct.ExpenseTotal + ct.MileageDeduction
		analysis.Clients = append(analysis.Clients, ct)
	}

	// Per-tax-year rollup, most recent year first.
	yearTotals := make(map[int]*model.YearTotal)
	yearOf := func(year int) *model.YearTotal {
		yt := yearTotals[year]
		if yt == nil {
			yt = &model.YearTotal{Year: year}
			yearTotals[year] = yt
		}
		return yt
	}
	for _, e := range expenses {
		yt := yearOf(e.CreatedAt.Year())
		yt.ExpenseCount++
		yt.ExpenseTotal += normalized[e.ID]
	}
	for _, m := range mileage {
		yt := yearOf(m.Date.Year())
		yt.MileageCount++
		yt.MileageDeduction += mileageByID[m.ID]
	}
	years := make([]int, 0, len(yearTotals))
	for y := range yearTotals {
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	for _, y := range years {
		yt := yearTotals[y]
		yt.Total = yt.ExpenseTotal + yt.MileageDeduction
		analysis.Years = append(analysis.Years, *yt)
	}

	return analysis, nil
}
