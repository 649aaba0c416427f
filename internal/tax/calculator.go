package tax

import (
	"log"
	"math"

	"github.com/deductfinder/backend/internal/model"
)

// Self-employment tax constants (IRS Schedule SE): net earnings factor and
// combined Social Security + Medicare rate.
const (
	SENetEarningsFactor = 0.9235
	SETaxRate           = 0.153
)

// bracketTax walks the brackets in ascending order and returns the tax owed
// on taxableIncome plus the marginal rate of the last bracket touched.
func bracketTax(taxableIncome float64, brackets []Bracket) (float64, float64) {
	var tax, marginal float64
	for _, b := range brackets {
		if taxableIncome <= b.Min {
			break
		}
		upper := taxableIncome
		if b.Max > 0 && upper > b.Max {
			upper = b.Max
		}
		tax += (upper - b.Min) * b.Rate
		marginal = b.Rate
	}
	return tax, marginal
}

// TaxOn computes progressive income tax on taxableIncome. A filing status
// absent from the jurisdiction's schedule resolves to the default status.
func TaxOn(taxableIncome float64, status model.FilingStatus, j model.Jurisdiction) (float64, error) {
	if math.IsNaN(taxableIncome) || math.IsInf(taxableIncome, 0) || taxableIncome < 0 {
		return 0, newError(ErrInvalidAmount, "taxable income must be finite and non-negative, got %v", taxableIncome)
	}
	brackets, fallback, err := scheduleFor(j, status)
	if err != nil {
		return 0, err
	}
	if fallback {
		log.Printf("[TaxCalc] unknown filing status %q for %s, using jurisdiction default", status, j)
	}
	tax, _ := bracketTax(taxableIncome, brackets)
	return tax, nil
}

// EstimateInput is the input to Estimate. BusinessDeductions is typically
// Analysis.TotalDeductible for the same jurisdiction.
type EstimateInput struct {
	Income               float64            `json:"income"`
	SelfEmploymentIncome float64            `json:"selfEmploymentIncome"`
	OtherDeductions      float64            `json:"otherDeductions"`
	BusinessDeductions   float64            `json:"businessDeductions"`
	FilingStatus         model.FilingStatus `json:"filingStatus"`
	Jurisdiction         model.Jurisdiction `json:"jurisdiction"`
}

// Estimate computes the full tax estimate: progressive income tax on taxable
// income, the jurisdiction surtax (self-employment tax or flat levy), the
// deduction savings estimate and the quarterly installment.
func Estimate(in EstimateInput) (*model.TaxEstimate, error) {
	profile, err := ProfileFor(in.Jurisdiction)
	if err != nil {
		return nil, err
	}
	for name, v := range map[string]float64{
		"income":               in.Income,
		"selfEmploymentIncome": in.SelfEmploymentIncome,
		"otherDeductions":      in.OtherDeductions,
		"businessDeductions":   in.BusinessDeductions,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return nil, newError(ErrInvalidAmount, "%s must be finite and non-negative, got %v", name, v)
		}
	}

	brackets, fallback, err := scheduleFor(in.Jurisdiction, in.FilingStatus)
	if err != nil {
		return nil, err
	}
	status := in.FilingStatus
	if fallback {
		status = profile.DefaultFilingStatus
		log.Printf("[TaxCalc] unknown filing status %q for %s, falling back to %q", in.FilingStatus, in.Jurisdiction, status)
	}

	totalIncome := in.Income + in.SelfEmploymentIncome
	totalDeductions := in.BusinessDeductions + in.OtherDeductions
	taxableIncome := math.Max(0, totalIncome-totalDeductions)

	incomeTax, marginalRate := bracketTax(taxableIncome, brackets)

	var surtax float64
	if profile.SelfEmploymentSurtax {
		if in.SelfEmploymentIncome > 0 {
			// The SE base is clamped at zero: deductions in excess of SE
			// income must not turn the surtax into a credit.
			base := math.Max(0, in.SelfEmploymentIncome-in.BusinessDeductions)
			surtax = base * SENetEarningsFactor * SETaxRate
		}
	} else {
		surtax = taxableIncome * profile.LevyRate
	}

	totalLiability := incomeTax + surtax

	var effectiveRate float64
	if totalIncome > 0 {
		effectiveRate = incomeTax / totalIncome
	}

	noDeductionTax, _ := bracketTax(totalIncome, brackets)
	taxSavings := noDeductionTax - incomeTax
	if profile.SelfEmploymentSurtax {
		taxSavings += in.BusinessDeductions * SETaxRate * SENetEarningsFactor
	}

	return &model.TaxEstimate{
		Jurisdiction:         in.Jurisdiction,
		FilingStatus:         status,
		FilingStatusFallback: fallback,
		TotalIncome:          totalIncome,
		TaxableIncome:        taxableIncome,
		TotalDeductions:      totalDeductions,
		BusinessDeductions:   in.BusinessDeductions,
		IncomeTax:            incomeTax,
		Surtax:               surtax,
		TotalLiability:       totalLiability,
		EffectiveRate:        effectiveRate,
		MarginalRate:         marginalRate,
		TaxSavings:           taxSavings,
		QuarterlyEstimate:    totalLiability / 4,
	}, nil
}
