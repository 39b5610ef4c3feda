package curve_test

import (
	"math"
	"testing"
	"time"

	"github.com/meenmo/ficclib/calendar"
	"github.com/meenmo/ficclib/swap/curve"
)

// TestBuildCurveFlatQuotesReprice is scenario S4: an OIS curve bootstrapped
// from a flat set of par quotes must reprice to (approximately) that same
// flat zero rate on every grid date up to the last quoted (10Y) pillar, and
// discount factors must decay monotonically from 1 at settlement. Grid dates
// past the last pillar carry a flat discount factor, so their zero rate falls
// below the input level and is not checked.
func TestBuildCurveFlatQuotesReprice(t *testing.T) {
	settlement := time.Date(2025, 10, 31, 0, 0, 0, 0, time.UTC)
	quotes := map[string]float64{
		"1Y":  3.0,
		"2Y":  3.0,
		"5Y":  3.0,
		"10Y": 3.0,
	}

	c, err := curve.BuildCurve(settlement, quotes, calendar.FD, calendar.FromID(calendar.FD), 3)
	if err != nil {
		t.Fatalf("BuildCurve: %v", err)
	}

	if df := c.DF(settlement); math.Abs(df-1.0) > 1e-9 {
		t.Fatalf("DF(settlement) = %.10f, want 1.0", df)
	}

	dates := c.PaymentDates()
	prevDF := 1.0
	for _, d := range dates {
		if !d.After(settlement) {
			continue
		}
		df := c.DF(d)
		if df > prevDF {
			t.Fatalf("DF at %s = %.8f is greater than previous DF %.8f; curve is not monotone", d.Format("2006-01-02"), df, prevDF)
		}
		prevDF = df

		if d.After(settlement.AddDate(10, 0, 0)) {
			continue
		}
		z := c.ZeroRateAt(d)
		if math.Abs(z-3.0) > 0.25 {
			t.Fatalf("zero rate at %s = %.4f, want ~3.0 (flat input curve, tol 25bp)", d.Format("2006-01-02"), z)
		}
	}
}

func TestBuildCurvePropagatesBootstrapFailure(t *testing.T) {
	settlement := time.Date(2025, 10, 31, 0, 0, 0, 0, time.UTC)
	// An absurdly negative par rate leaves the bootstrap equation negative at
	// both ends of the [0.01, 1.5] bracket and at every auto-bracket
	// expansion (interpolated discount factors are floored at
	// MinDiscountFactor), so the solve can never find a sign change.
	// BuildCurve must surface this as an error rather than panicking or
	// returning a corrupt curve.
	quotes := map[string]float64{
		"1Y": -1_000_000.0,
	}

	if _, err := curve.BuildCurve(settlement, quotes, calendar.FD, calendar.FromID(calendar.FD), 3); err == nil {
		t.Fatal("expected BuildCurve to fail for an unreachable par rate")
	}
}
