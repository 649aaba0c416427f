package tax

import (
	"time"

	"github.com/deductfinder/backend/internal/model"
)

// NextDue projects the next due date for a recurring expense from an anchor
// date. An unrecognized frequency falls back to monthly.
func NextDue(anchor time.Time, frequency model.Frequency) time.Time {
	switch frequency {
	case model.FrequencyWeekly:
		return anchor.AddDate(0, 0, 7)
	case model.FrequencyBiweekly:
		return anchor.AddDate(0, 0, 14)
	case model.FrequencyQuarterly:
		return addMonthsClamped(anchor, 3)
	case model.FrequencyYearly:
		return addMonthsClamped(anchor, 12)
	default:
		return addMonthsClamped(anchor, 1)
	}
}

// addMonthsClamped adds calendar months, clamping to the last valid day of
// the resulting month instead of letting time.AddDate overflow (Jan 31 + 1
// month must be the last day of February, not March 2/3).
func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	firstOfTarget := time.Date(year, month+time.Month(months), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}
