package krx

import "time"

// CD91Fixings is a bundled snapshot of KOFR CD91 fixings (date -> rate, percent),
// covering recent quarterly reset dates for KRX CD91 IRS curves. Callers pricing
// trades against dates outside this snapshot should supply their own feed via
// NewMapReferenceRateFeed.
var CD91Fixings = map[string]float64{
	"2024-01-25": 3.65,
	"2024-04-25": 3.62,
	"2024-07-25": 3.58,
	"2024-10-25": 3.40,
	"2025-01-27": 3.02,
	"2025-04-25": 2.78,
	"2025-07-25": 2.62,
	"2025-10-27": 2.58,
}

// DefaultReferenceFeed builds a map-backed feed using the bundled CD91 fixings.
func DefaultReferenceFeed() ReferenceRateFeed {
	return &MapReferenceRateFeed{rates: CD91Fixings}
}

// RateOnDate is a convenience helper when you don't want to wire a feed.
func RateOnDate(feed ReferenceRateFeed, date time.Time) (float64, bool) {
	return feed.RateOn(date)
}
