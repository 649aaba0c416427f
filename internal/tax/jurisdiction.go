package tax

import "github.com/deductfinder/backend/internal/model"

// Profile bundles everything jurisdiction-specific: reporting currency,
// mileage method, surtax formula and the flat savings heuristic used by the
// analyzer. The heuristic is a presentation estimate and is allowed to
// disagree with the marginal rate the calculator derives.
type Profile struct {
	Jurisdiction      model.Jurisdiction
	Authority         string
	ReportingCurrency model.Currency

	MileageRate float64
	MileageUnit model.DistanceUnit

	SavingsRate         float64
	DefaultFilingStatus model.FilingStatus

	// SelfEmploymentSurtax selects the SE-tax formula; otherwise LevyRate
	// applies as a flat levy on taxable income.
	SelfEmploymentSurtax bool
	LevyRate             float64
}

var profiles = map[model.Jurisdiction]Profile{
	model.JurisdictionUS: {
		Jurisdiction:         model.JurisdictionUS,
		Authority:            "IRS",
		ReportingCurrency:    model.CurrencyUSD,
		MileageRate:          0.67, // 2024 standard mileage rate, $/mile
		MileageUnit:          model.UnitMiles,
		SavingsRate:          0.25,
		DefaultFilingStatus:  model.FilingSingle,
		SelfEmploymentSurtax: true,
	},
	model.JurisdictionAU: {
		Jurisdiction:        model.JurisdictionAU,
		Authority:           "ATO",
		ReportingCurrency:   model.CurrencyAUD,
		MileageRate:         0.85, // cents-per-km method 2024-25, $/km
		MileageUnit:         model.UnitKilometers,
		SavingsRate:         0.325,
		DefaultFilingStatus: model.FilingSingle,
		LevyRate:            0.02, // Medicare levy
	},
}

// ProfileFor returns the jurisdiction profile.
func ProfileFor(j model.Jurisdiction) (Profile, error) {
	p, ok := profiles[j]
	if !ok {
		return Profile{}, newError(ErrUnknownJurisdiction, "unknown jurisdiction %q", j)
	}
	return p, nil
}

// Jurisdictions lists the built-in jurisdictions.
func Jurisdictions() []model.Jurisdiction {
	return []model.Jurisdiction{model.JurisdictionUS, model.JurisdictionAU}
}
