package tax

import (
	"math"

	"github.com/deductfinder/backend/internal/model"
)

// MilesPerKilometer converts between distance units. 1 mile = 1.609344 km.
const MilesPerKilometer = 1.609344

// convertDistance converts a distance into the target unit.
func convertDistance(distance float64, from, to model.DistanceUnit) float64 {
	if from == to {
		return distance
	}
	if from == model.UnitMiles && to == model.UnitKilometers {
		return distance * MilesPerKilometer
	}
	return distance / MilesPerKilometer
}

// MileageDeduction converts a logged distance into the jurisdiction's native
// unit and applies its per-unit rate.
func MileageDeduction(distance float64, unit model.DistanceUnit, profile Profile) (float64, error) {
	if math.IsNaN(distance) || math.IsInf(distance, 0) || distance <= 0 {
		return 0, newError(ErrInvalidAmount, "distance must be finite and positive, got %v", distance)
	}
	if unit != model.UnitMiles && unit != model.UnitKilometers {
		return 0, newError(ErrInvalidAmount, "unknown distance unit %q", unit)
	}
	return convertDistance(distance, unit, profile.MileageUnit) * profile.MileageRate, nil
}
