package tax

import (
	"math"
	"testing"

	"github.com/deductfinder/backend/internal/model"
)

func TestMileageDeduction(t *testing.T) {
	us, _ := ProfileFor(model.JurisdictionUS)
	au, _ := ProfileFor(model.JurisdictionAU)

	tests := []struct {
		name     string
		distance float64
		unit     model.DistanceUnit
		profile  Profile
		want     float64
	}{
		{"US native miles", 100, model.UnitMiles, us, 67},
		{"US kilometers converted", 100, model.UnitKilometers, us, 100 / MilesPerKilometer * 0.67},
		{"AU native kilometers", 100, model.UnitKilometers, au, 85},
		{"AU miles converted", 100, model.UnitMiles, au, 100 * MilesPerKilometer * 0.85},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MileageDeduction(tt.distance, tt.unit, tt.profile)
			if err != nil {
				t.Fatalf("MileageDeduction: %v", err)
			}
			if !almostEqual(got, tt.want) {
				t.Errorf("MileageDeduction(%v %s) = %v, want %v", tt.distance, tt.unit, got, tt.want)
			}
		})
	}
}

func TestMileageDeductionLinear(t *testing.T) {
	us, _ := ProfileFor(model.JurisdictionUS)
	for _, d := range []float64{1, 12.5, 480.25} {
		single, err := MileageDeduction(d, model.UnitMiles, us)
		if err != nil {
			t.Fatalf("MileageDeduction(%v): %v", d, err)
		}
		double, err := MileageDeduction(2*d, model.UnitMiles, us)
		if err != nil {
			t.Fatalf("MileageDeduction(%v): %v", 2*d, err)
		}
		if math.Abs(double-2*single) > 1e-9 {
			t.Errorf("deduction not linear at %v: 2x=%v, want %v", d, double, 2*single)
		}
	}
}

func TestMileageDeductionErrors(t *testing.T) {
	us, _ := ProfileFor(model.JurisdictionUS)
	tests := []struct {
		name     string
		distance float64
		unit     model.DistanceUnit
	}{
		{"zero distance", 0, model.UnitMiles},
		{"negative distance", -10, model.UnitMiles},
		{"NaN distance", math.NaN(), model.UnitMiles},
		{"unknown unit", 10, "furlong"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := MileageDeduction(tt.distance, tt.unit, us)
			if err == nil {
				t.Fatal("expected error")
			}
			if !IsCode(err, ErrInvalidAmount) {
				t.Errorf("error code = %q, want %q", CodeOf(err), ErrInvalidAmount)
			}
		})
	}
}

func TestConvertDistanceRoundTrip(t *testing.T) {
	d := 42.195
	km := convertDistance(d, model.UnitMiles, model.UnitKilometers)
	back := convertDistance(km, model.UnitKilometers, model.UnitMiles)
	if math.Abs(back-d) > 1e-9 {
		t.Errorf("round trip = %v, want %v", back, d)
	}
}
