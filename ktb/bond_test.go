package ktb_test

import (
	"math"
	"testing"
	"time"

	"github.com/meenmo/ficclib/ktb"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}

func sampleBond(t *testing.T) ktb.Bond {
	return ktb.Bond{
		Issue:     mustDate(t, "2020-03-10"),
		Maturity:  mustDate(t, "2030-03-10"),
		CouponPct: 2.75,
	}
}

func TestDirtyPriceAtParYieldsFace(t *testing.T) {
	b := sampleBond(t)
	valuation := mustDate(t, "2025-03-10")
	price := b.DirtyPrice(b.CouponPct, valuation)
	if math.Abs(price-10000.0) > 1.0 {
		t.Fatalf("dirty price at coupon-rate yield = %.4f, want ~10000", price)
	}
}

func TestCleanPriceIsDirtyMinusAccrued(t *testing.T) {
	b := sampleBond(t)
	valuation := mustDate(t, "2025-06-15")
	dirty := b.DirtyPrice(3.0, valuation)
	clean := b.CleanPrice(3.0, valuation)
	accrued := b.AccruedInterest(valuation)
	if math.Abs((clean+accrued)-dirty) > 1e-6 {
		t.Fatalf("clean+accrued = %.8f, want dirty %.8f", clean+accrued, dirty)
	}
}

// TestYieldRoundTrip is scenario S2: pricing a bond at a yield, then
// re-inverting the resulting dirty price, must recover that yield.
func TestYieldRoundTrip(t *testing.T) {
	b := sampleBond(t)
	valuation := mustDate(t, "2025-03-10")

	for _, yPct := range []float64{0.5, 1.5, 2.75, 4.2, 8.0} {
		dirty := b.DirtyPrice(yPct, valuation)
		got, err := b.YTMFromPrice(dirty, valuation)
		if err != nil {
			t.Fatalf("YTMFromPrice(%v): %v", yPct, err)
		}
		if math.Abs(got-yPct) > 1e-4 {
			t.Fatalf("yield round trip: in=%.6f out=%.6f", yPct, got)
		}
	}
}

func TestForwardPriceAtSpotEqualsSpotPrice(t *testing.T) {
	b := sampleBond(t)
	valuation := mustDate(t, "2025-03-10")

	nodes := []ktb.DiscountNode{
		{YearsFromValuation: 0.0, DiscountFactor: 1.0},
		{YearsFromValuation: 1.0, DiscountFactor: 0.97},
		{YearsFromValuation: 5.0, DiscountFactor: 0.85},
		{YearsFromValuation: 10.0, DiscountFactor: 0.70},
	}

	spot := b.PriceFromCurve(valuation, nodes)
	fwd := b.ForwardPrice(valuation, valuation, nodes)
	if math.Abs(spot-fwd) > 1e-6 {
		t.Fatalf("forward price at spot = %.6f, want spot price %.6f", fwd, spot)
	}
}

func TestModifiedDurationAndConvexityPositive(t *testing.T) {
	b := sampleBond(t)
	valuation := mustDate(t, "2025-03-10")
	dirty := b.DirtyPrice(3.0, valuation)

	dur := b.ModifiedDuration(3.0, valuation, dirty)
	if dur <= 0 {
		t.Fatalf("modified duration = %.6f, want positive", dur)
	}
	if dur > 10 {
		t.Fatalf("modified duration = %.6f implausibly large for a 5Y-remaining bond", dur)
	}

	conv := b.Convexity(3.0, valuation, dirty)
	if conv <= 0 {
		t.Fatalf("convexity = %.6f, want positive", conv)
	}
}
