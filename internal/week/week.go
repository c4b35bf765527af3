package week

import "time"

// Clock provides the current time. The catalog service takes a Clock instead
// of reading the wall clock so tests can pin "now" to a fixed instant.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock backed by time.Now.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// Of returns the ISO-8601 week number (1-53) and week-based year for t.
//
// The computation is Thursday-anchored: the date is normalized to UTC
// midnight and shifted to the Thursday of its own week. That Thursday's
// calendar year is the ISO year, and the week number is the 1-based count of
// seven-day blocks since January 1 of that year. Offers are scheduled by this
// key, so the result must match standard ISO week numbering exactly,
// including around year boundaries where late-December dates can fall in week
// 1 of the next year and early-January dates in week 52/53 of the previous.
func Of(t time.Time) (weekNumber, year int) {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)

	// Monday=1 .. Sunday=7.
	weekday := int(day.Weekday())
	if weekday == 0 {
		weekday = 7
	}

	thursday := day.AddDate(0, 0, 4-weekday)
	year = thursday.Year()

	jan1 := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
	daysSinceJan1 := int(thursday.Sub(jan1).Hours()/24) + 1
	weekNumber = (daysSinceJan1 + 6) / 7

	return weekNumber, year
}
