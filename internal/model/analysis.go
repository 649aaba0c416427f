package model

// CategoryTotal is the per-category bucket of an Analysis.
type CategoryTotal struct {
	Category           Category `json:"category"`
	Count              int      `json:"count"`
	RawTotal           float64  `json:"rawTotal"`
	DeductibleTotal    float64  `json:"deductibleTotal"`
	NonDeductibleTotal float64  `json:"nonDeductibleTotal"`
	// ReviewRequired marks categories whose rule demands manual review.
	// Their amounts are counted as 0% deductible, never silently included.
	ReviewRequired bool   `json:"reviewRequired"`
	LedgerLine     string `json:"ledgerLine"`
	Citation       string `json:"citation"`
}

// LedgerLineTotal aggregates deductible amounts onto a jurisdiction ledger
// line (Schedule C line for the US, ATO item label for AU).
type LedgerLineTotal struct {
	Line     string   `json:"line"`
	Category Category `json:"category"`
	Total    float64  `json:"total"`
}

// ClientTotal is the optional per-client rollup.
type ClientTotal struct {
	Name             string  `json:"name"`
	ExpenseCount     int     `json:"expenseCount"`
	ExpenseTotal     float64 `json:"expenseTotal"`
	MileageCount     int     `json:"mileageCount"`
	MileageDeduction float64 `json:"mileageDeduction"`
	Total            float64 `json:"total"`
}

// YearTotal is the optional per-tax-year rollup.
type YearTotal struct {
	Year             int     `json:"year"`
	ExpenseCount     int     `json:"expenseCount"`
	ExpenseTotal     float64 `json:"expenseTotal"`
	MileageCount     int     `json:"mileageCount"`
	MileageDeduction float64 `json:"mileageDeduction"`
	Total            float64 `json:"total"`
}

// Analysis is the full deduction analysis for one snapshot of records. It is
// recomputed on demand and must be discarded whenever the underlying
// expense, mileage or client collections change.
type Analysis struct {
	Jurisdiction      Jurisdiction `json:"jurisdiction"`
	ReportingCurrency Currency     `json:"reportingCurrency"`

	TotalExpenses    float64 `json:"totalExpenses"`
	MileageDeduction float64 `json:"mileageDeduction"`
	MileageEntries   int     `json:"mileageEntries"`
	TotalDeductible  float64 `json:"totalDeductible"`
	PotentialSavings float64 `json:"potentialSavings"`

	Categories  []CategoryTotal   `json:"categories"`
	LedgerLines []LedgerLineTotal `json:"ledgerLines"`
	Clients     []ClientTotal     `json:"clients,omitempty"`
	Years       []YearTotal       `json:"years,omitempty"`
}

// TaxEstimate is the derived tax-liability figure set for one estimate call.
type TaxEstimate struct {
	Jurisdiction Jurisdiction `json:"jurisdiction"`
	FilingStatus FilingStatus `json:"filingStatus"`
	// FilingStatusFallback is set when the requested filing status was not
	// present in the schedule and the jurisdiction default was used instead.
	FilingStatusFallback bool `json:"filingStatusFallback,omitempty"`

	TotalIncome        float64 `json:"totalIncome"`
	TaxableIncome      float64 `json:"taxableIncome"`
	TotalDeductions    float64 `json:"totalDeductions"`
	BusinessDeductions float64 `json:"businessDeductions"`

	IncomeTax         float64 `json:"incomeTax"`
	Surtax            float64 `json:"surtax"`
	TotalLiability    float64 `json:"totalLiability"`
	EffectiveRate     float64 `json:"effectiveRate"`
	MarginalRate      float64 `json:"marginalRate"`
	TaxSavings        float64 `json:"taxSavings"`
	QuarterlyEstimate float64 `json:"quarterlyEstimate"`
}
