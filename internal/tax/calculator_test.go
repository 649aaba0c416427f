package tax

import (
	"math"
	"math/rand"
	"testing"

	"github.com/deductfinder/backend/internal/model"
)

const epsilon = 1e-6

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

func TestTaxOn(t *testing.T) {
	tests := []struct {
		name    string
		income  float64
		status  model.FilingStatus
		j       model.Jurisdiction
		want    float64
		wantErr bool
	}{
		{
			name:   "zero income is zero tax",
			income: 0,
			status: model.FilingSingle,
			j:      model.JurisdictionUS,
			want:   0,
		},
		{
			name:   "US single 50000",
			income: 50000,
			status: model.FilingSingle,
			j:      model.JurisdictionUS,
			// 11600*0.10 + 35550*0.12 + 2850*0.22
			want: 6053,
		},
		{
			name:   "US single first bracket only",
			income: 10000,
			status: model.FilingSingle,
			j:      model.JurisdictionUS,
			want:   1000,
		},
		{
			name:   "US married uses wider brackets",
			income: 50000,
			status: model.FilingMarried,
			j:      model.JurisdictionUS,
			// 23200*0.10 + 26800*0.12
			want: 5536,
		},
		{
			name:   "AU tax-free threshold",
			income: 18200,
			status: model.FilingSingle,
			j:      model.JurisdictionAU,
			want:   0,
		},
		{
			name:   "AU 50000",
			income: 50000,
			status: model.FilingSingle,
			j:      model.JurisdictionAU,
			// 26800*0.16 + 5000*0.30
			want: 5788,
		},
		{
			name:   "AU top bracket",
			income: 200000,
			status: model.FilingSingle,
			j:      model.JurisdictionAU,
			// 26800*0.16 + 90000*0.30 + 55000*0.37 + 10000*0.45
			want: 56138,
		},
		{
			name:    "negative income rejected",
			income:  -1,
			status:  model.FilingSingle,
			j:       model.JurisdictionUS,
			wantErr: true,
		},
		{
			name:    "NaN rejected",
			income:  math.NaN(),
			status:  model.FilingSingle,
			j:       model.JurisdictionUS,
			wantErr: true,
		},
		{
			name:    "unknown jurisdiction rejected",
			income:  1000,
			status:  model.FilingSingle,
			j:       model.Jurisdiction("NZ"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := TaxOn(tt.income, tt.status, tt.j)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got tax %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !almostEqual(got, tt.want) {
				t.Errorf("TaxOn(%v) = %v, want %v", tt.income, got, tt.want)
			}
		})
	}
}

// closedFormTax is the sum-over-brackets formulation: for each bracket the
// contribution is max(0, min(income, max)-min)*rate. The walk in bracketTax
// must agree with it for every income.
func closedFormTax(income float64, brackets []Bracket) float64 {
	var tax float64
	for _, b := range brackets {
		upper := income
		if b.Max > 0 && upper > b.Max {
			upper = b.Max
		}
		if portion := upper - b.Min; portion > 0 {
			tax += portion * b.Rate
		}
	}
	return tax
}

func TestBracketWalkMatchesClosedForm(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	schedules := map[string][]Bracket{
		"US single":  usBrackets[model.FilingSingle],
		"US married": usBrackets[model.FilingMarried],
		"US head":    usBrackets[model.FilingHead],
		"AU":         auBrackets[model.FilingSingle],
	}
	for name, brackets := range schedules {
		t.Run(name, func(t *testing.T) {
			for i := 0; i < 500; i++ {
				income := rng.Float64() * 1_000_000
				walked, _ := bracketTax(income, brackets)
				closed := closedFormTax(income, brackets)
				if math.Abs(walked-closed) > 1e-6 {
					t.Fatalf("income %v: walk %v != closed form %v", income, walked, closed)
				}
			}
		})
	}
}

func TestBracketTaxMonotonic(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for _, j := range Jurisdictions() {
		t.Run(string(j), func(t *testing.T) {
			prevIncome, prevTax := 0.0, 0.0
			for i := 0; i < 200; i++ {
				income := prevIncome + rng.Float64()*10000
				tax, err := TaxOn(income, model.FilingSingle, j)
				if err != nil {
					t.Fatalf("TaxOn(%v): %v", income, err)
				}
				if tax < prevTax-epsilon {
					t.Fatalf("tax decreased: %v at %v after %v at %v", tax, income, prevTax, prevIncome)
				}
				prevIncome, prevTax = income, tax
			}
		})
	}
}

func TestBracketTaxMarginalRate(t *testing.T) {
	tests := []struct {
		name   string
		income float64
		want   float64
	}{
		{"first bracket", 5000, 0.10},
		{"second bracket", 20000, 0.12},
		{"third bracket", 50000, 0.22},
		{"top bracket", 700000, 0.37},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, marginal := bracketTax(tt.income, usBrackets[model.FilingSingle])
			if marginal != tt.want {
				t.Errorf("marginal rate at %v = %v, want %v", tt.income, marginal, tt.want)
			}
		})
	}
}

func TestEstimateUS(t *testing.T) {
	got, err := Estimate(EstimateInput{
		Income:             60000,
		BusinessDeductions: 10000,
		FilingStatus:       model.FilingSingle,
		Jurisdiction:       model.JurisdictionUS,
	})
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if !almostEqual(got.TaxableIncome, 50000) {
		t.Errorf("TaxableIncome = %v, want 50000", got.TaxableIncome)
	}
	if !almostEqual(got.IncomeTax, 6053) {
		t.Errorf("IncomeTax = %v, want 6053", got.IncomeTax)
	}
	// No SE income, so no SE surtax even though the jurisdiction has one.
	if got.Surtax != 0 {
		t.Errorf("Surtax = %v, want 0", got.Surtax)
	}
	if !almostEqual(got.TotalLiability, 6053) {
		t.Errorf("TotalLiability = %v, want 6053", got.TotalLiability)
	}
	if !almostEqual(got.QuarterlyEstimate, 6053.0/4) {
		t.Errorf("QuarterlyEstimate = %v, want %v", got.QuarterlyEstimate, 6053.0/4)
	}
	if got.MarginalRate != 0.22 {
		t.Errorf("MarginalRate = %v, want 0.22", got.MarginalRate)
	}
	if !almostEqual(got.EffectiveRate, 6053.0/60000) {
		t.Errorf("EffectiveRate = %v, want %v", got.EffectiveRate, 6053.0/60000)
	}
	if got.FilingStatusFallback {
		t.Error("FilingStatusFallback set for a known status")
	}
}

func TestEstimateSelfEmploymentSurtax(t *testing.T) {
	got, err := Estimate(EstimateInput{
		SelfEmploymentIncome: 50000,
		BusinessDeductions:   10000,
		FilingStatus:         model.FilingSingle,
		Jurisdiction:         model.JurisdictionUS,
	})
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	want := 40000 * SENetEarningsFactor * SETaxRate
	if !almostEqual(got.Surtax, want) {
		t.Errorf("Surtax = %v, want %v", got.Surtax, want)
	}
	if !almostEqual(got.TotalLiability, got.IncomeTax+got.Surtax) {
		t.Errorf("TotalLiability = %v, want income tax + surtax", got.TotalLiability)
	}
}

func TestEstimateSurtaxBaseClampedAtZero(t *testing.T) {
	// Deductions exceeding SE income must not produce a negative surtax.
	got, err := Estimate(EstimateInput{
		Income:               80000,
		SelfEmploymentIncome: 5000,
		BusinessDeductions:   20000,
		FilingStatus:         model.FilingSingle,
		Jurisdiction:         model.JurisdictionUS,
	})
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if got.Surtax != 0 {
		t.Errorf("Surtax = %v, want 0 when deductions exceed SE income", got.Surtax)
	}
}

func TestEstimateAULevy(t *testing.T) {
	got, err := Estimate(EstimateInput{
		Income:       100000,
		FilingStatus: model.FilingSingle,
		Jurisdiction: model.JurisdictionAU,
	})
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if !almostEqual(got.Surtax, 100000*0.02) {
		t.Errorf("Surtax = %v, want 2%% levy %v", got.Surtax, 100000*0.02)
	}
}

func TestEstimateFilingStatusFallback(t *testing.T) {
	// AU has no married schedule; the default status applies and the
	// fallback is reported.
	got, err := Estimate(EstimateInput{
		Income:       50000,
		FilingStatus: model.FilingMarried,
		Jurisdiction: model.JurisdictionAU,
	})
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if !got.FilingStatusFallback {
		t.Error("FilingStatusFallback not set for unknown status")
	}
	if got.FilingStatus != model.FilingSingle {
		t.Errorf("FilingStatus = %q, want default %q", got.FilingStatus, model.FilingSingle)
	}

	asDefault, err := Estimate(EstimateInput{
		Income:       50000,
		FilingStatus: model.FilingSingle,
		Jurisdiction: model.JurisdictionAU,
	})
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if !almostEqual(got.IncomeTax, asDefault.IncomeTax) {
		t.Errorf("fallback tax %v != default-status tax %v", got.IncomeTax, asDefault.IncomeTax)
	}
}

func TestEstimateDeductionsCannotGoNegative(t *testing.T) {
	got, err := Estimate(EstimateInput{
		Income:             10000,
		BusinessDeductions: 25000,
		FilingStatus:       model.FilingSingle,
		Jurisdiction:       model.JurisdictionUS,
	})
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if got.TaxableIncome != 0 {
		t.Errorf("TaxableIncome = %v, want 0", got.TaxableIncome)
	}
	if got.IncomeTax != 0 {
		t.Errorf("IncomeTax = %v, want 0", got.IncomeTax)
	}
}

func TestEstimateTaxSavingsNeverNegative(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	for _, j := range Jurisdictions() {
		for i := 0; i < 100; i++ {
			in := EstimateInput{
				Income:             rng.Float64() * 300000,
				BusinessDeductions: rng.Float64() * 50000,
				FilingStatus:       model.FilingSingle,
				Jurisdiction:       j,
			}
			got, err := Estimate(in)
			if err != nil {
				t.Fatalf("Estimate(%+v): %v", in, err)
			}
			if got.TaxSavings < -epsilon {
				t.Fatalf("TaxSavings = %v for %+v, want >= 0", got.TaxSavings, in)
			}
		}
	}
}

func TestEstimateRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		in   EstimateInput
	}{
		{"negative income", EstimateInput{Income: -1, FilingStatus: model.FilingSingle, Jurisdiction: model.JurisdictionUS}},
		{"NaN deductions", EstimateInput{OtherDeductions: math.NaN(), FilingStatus: model.FilingSingle, Jurisdiction: model.JurisdictionUS}},
		{"infinite SE income", EstimateInput{SelfEmploymentIncome: math.Inf(1), FilingStatus: model.FilingSingle, Jurisdiction: model.JurisdictionUS}},
		{"unknown jurisdiction", EstimateInput{Income: 100, FilingStatus: model.FilingSingle, Jurisdiction: "DE"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Estimate(tt.in); err == nil {
				t.Error("expected error")
			}
		})
	}
}
