package utils

import (
	"time"

	"github.com/meenmo/ficclib/daycount"
)

// YearFraction computes the year fraction between two dates under a named
// day-count convention, delegating to the daycount registry. An unknown
// convention name falls back to ACT/365F, matching this package's historical
// default, rather than propagating an error to every legacy call site.
func YearFraction(start, end time.Time, convention string) float64 {
	if v, err := daycount.YearFraction(start, end, convention); err == nil {
		return v
	}
	return daycount.Act365F.YearFraction(start, end)
}
