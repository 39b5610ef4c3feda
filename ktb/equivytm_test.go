package ktb_test

import (
	"math"
	"testing"

	"github.com/meenmo/ficclib/ktb"
)

// TestEquivYTMShiftMatchesAnalyticalDuration is scenario S7: the yield shift
// implied by a 1bp key-rate bump, re-bootstrapped and re-inverted through
// YTM, should reconcile with the bond's analytical modified duration
// (ΔPrice ≈ -ModifiedDuration * Price * Δy for small Δy).
func TestEquivYTMShiftMatchesAnalyticalDuration(t *testing.T) {
	curveDate := mustDate(t, "2025-10-29")
	par := sampleParCurve()

	zc, err := ktb.ZeroCurveFromPar(curveDate, par, 2)
	if err != nil {
		t.Fatalf("ZeroCurveFromPar: %v", err)
	}

	b := ktb.Bond{
		Issue:     curveDate,
		Maturity:  curveDate.AddDate(10, 0, 0),
		CouponPct: 2.90,
	}

	shift, err := ktb.ComputeEquivYTMShift(b, curveDate, zc, par, 10.0, 1.0, false)
	if err != nil {
		t.Fatalf("ComputeEquivYTMShift: %v", err)
	}

	basePrice := b.DirtyPrice(shift.BaseYield, curveDate)
	duration := b.ModifiedDuration(shift.BaseYield, curveDate, basePrice)

	deltaYieldDecimal := shift.DeltaYield / 100.0
	analyticalDeltaPrice := -duration * basePrice * deltaYieldDecimal

	// Both deltas are driven by the same ~1bp curve move; they should agree
	// to within 25% of the (small) price move itself, or 0.5 absolute.
	tol := math.Max(0.5, math.Abs(analyticalDeltaPrice)*0.25)
	if math.Abs(shift.DeltaPrice-analyticalDeltaPrice) > tol {
		t.Fatalf("KRD ΔPrice=%.6f vs analytical duration estimate=%.6f (tol %.6f)",
			shift.DeltaPrice, analyticalDeltaPrice, tol)
	}

	if shift.DeltaYield >= 0 {
		t.Fatalf("DeltaYield = %.6f, want negative for a +1bp discount-rate bump", shift.DeltaYield)
	}
}

func TestEquivYTMShiftZeroBumpIsNoop(t *testing.T) {
	curveDate := mustDate(t, "2025-10-29")
	par := sampleParCurve()

	zc, err := ktb.ZeroCurveFromPar(curveDate, par, 2)
	if err != nil {
		t.Fatalf("ZeroCurveFromPar: %v", err)
	}

	b := ktb.Bond{
		Issue:     curveDate,
		Maturity:  curveDate.AddDate(5, 0, 0),
		CouponPct: 3.0,
	}

	shift, err := ktb.ComputeEquivYTMShift(b, curveDate, zc, par, 5.0, 0.0, false)
	if err != nil {
		t.Fatalf("ComputeEquivYTMShift: %v", err)
	}
	if math.Abs(shift.DeltaYield) > 1e-6 {
		t.Fatalf("zero bump should leave yield unchanged, got Δy=%.8f", shift.DeltaYield)
	}
}
