package tax

import "github.com/deductfinder/backend/internal/model"

// Bracket is one progressive tax bracket. Max == 0 means unbounded (the top
// bracket). Brackets are contiguous and non-overlapping.
type Bracket struct {
	Min  float64
	Max  float64
	Rate float64 // marginal rate as a decimal
}

// 2024 US federal brackets per filing status.
// Source: IRS Rev. Proc. 2023-34.
var usBrackets = map[model.FilingStatus][]Bracket{
	model.FilingSingle: {
		{Min: 0, Max: 11600, Rate: 0.10},
		{Min: 11600, Max: 47150, Rate: 0.12},
		{Min: 47150, Max: 100525, Rate: 0.22},
		{Min: 100525, Max: 191950, Rate: 0.24},
		{Min: 191950, Max: 243725, Rate: 0.32},
		{Min: 243725, Max: 609350, Rate: 0.35},
		{Min: 609350, Max: 0, Rate: 0.37},
	},
	model.FilingMarried: {
		{Min: 0, Max: 23200, Rate: 0.10},
		{Min: 23200, Max: 94300, Rate: 0.12},
		{Min: 94300, Max: 201050, Rate: 0.22},
		{Min: 201050, Max: 383900, Rate: 0.24},
		{Min: 383900, Max: 487450, Rate: 0.32},
		{Min: 487450, Max: 731200, Rate: 0.35},
		{Min: 731200, Max: 0, Rate: 0.37},
	},
	model.FilingHead: {
		{Min: 0, Max: 16550, Rate: 0.10},
		{Min: 16550, Max: 63100, Rate: 0.12},
		{Min: 63100, Max: 100500, Rate: 0.22},
		{Min: 100500, Max: 191950, Rate: 0.24},
		{Min: 191950, Max: 243700, Rate: 0.32},
		{Min: 243700, Max: 609350, Rate: 0.35},
		{Min: 609350, Max: 0, Rate: 0.37},
	},
}

// 2024-25 Australian resident brackets (Stage 3). The ATO schedule does not
// vary by filing status, so every status resolves to the same list.
// Source: https://www.ato.gov.au/tax-rates-and-codes/tax-rates-australian-residents
var auBrackets = map[model.FilingStatus][]Bracket{
	model.FilingSingle: {
		{Min: 0, Max: 18200, Rate: 0},
		{Min: 18200, Max: 45000, Rate: 0.16},
		{Min: 45000, Max: 135000, Rate: 0.30},
		{Min: 135000, Max: 190000, Rate: 0.37},
		{Min: 190000, Max: 0, Rate: 0.45},
	},
}

func bracketSchedules(j model.Jurisdiction) (map[model.FilingStatus][]Bracket, error) {
	switch j {
	case model.JurisdictionUS:
		return usBrackets, nil
	case model.JurisdictionAU:
		return auBrackets, nil
	default:
		return nil, newError(ErrUnknownJurisdiction, "no bracket schedule for jurisdiction %q", j)
	}
}

// scheduleFor resolves the bracket list for a filing status, falling back to
// the jurisdiction's default status when the requested one is absent. The
// second return reports whether the fallback was taken.
func scheduleFor(j model.Jurisdiction, status model.FilingStatus) ([]Bracket, bool, error) {
	schedules, err := bracketSchedules(j)
	if err != nil {
		return nil, false, err
	}
	if brackets, ok := schedules[status]; ok {
		return brackets, false, nil
	}
	profile, err := ProfileFor(j)
	if err != nil {
		return nil, false, err
	}
	brackets, ok := schedules[profile.DefaultFilingStatus]
	if !ok {
		return nil, false, newError(ErrUnknownFilingStatus, "no default schedule for jurisdiction %q", j)
	}
	return brackets, true, nil
}
