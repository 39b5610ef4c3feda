package ktb

import (
	"fmt"
	"time"
)

// EquivYTMShift re-bootstraps the zero curve with the par node at tenor
// bumped by bumpBP, reprices the bond off the bumped curve, and re-inverts
// the bumped price back to a yield. The result is the yield shift Δy (in
// percentage points) that the key-rate bump implies for this bond, following
// original_source/ktb/krd.py's re-bootstrap -> re-invert construction.
type EquivYTMShift struct {
	BaseYield    float64 // percent
	ShiftedYield float64 // percent
	DeltaYield   float64 // percentage points, ShiftedYield - BaseYield
	DeltaPrice   float64 // ShiftedPrice - BasePrice
}

// ComputeEquivYTMShift implements component L: given a bond's base clean (or
// dirty, per asClean) price on the base curve, it re-bootstraps the zero
// curve with the par node at tenor bumped by bumpBP, reprices the bond, and
// re-inverts both prices to yields via YTMFromPrice.
func ComputeEquivYTMShift(b Bond, valuationDate time.Time, base *ZeroCurve, parNodesPct map[float64]float64, tenor, bumpBP float64, asClean bool) (EquivYTMShift, error) {
	basePrice := b.PriceFromCurve(valuationDate, base.DiscountNodesToBond())

	bumped, err := base.CloneWithShiftedNode(parNodesPct, tenor, bumpBP)
	if err != nil {
		return EquivYTMShift{}, fmt.Errorf("ComputeEquivYTMShift: %w", err)
	}
	bumpedPrice := b.PriceFromCurve(valuationDate, bumped.DiscountNodesToBond())

	baseTarget, bumpedTarget := basePrice, bumpedPrice
	if asClean {
		accrued := b.AccruedInterest(valuationDate)
		baseTarget -= accrued
		bumpedTarget -= accrued
	}

	baseYield, err := b.YTMFromPrice(baseTarget, valuationDate)
	if err != nil {
		return EquivYTMShift{}, fmt.Errorf("ComputeEquivYTMShift: base yield: %w", err)
	}
	shiftedYield, err := b.YTMFromPrice(bumpedTarget, valuationDate)
	if err != nil {
		return EquivYTMShift{}, fmt.Errorf("ComputeEquivYTMShift: shifted yield: %w", err)
	}

	return EquivYTMShift{
		BaseYield:    baseYield,
		ShiftedYield: shiftedYield,
		DeltaYield:   shiftedYield - baseYield,
		DeltaPrice:   bumpedPrice - basePrice,
	}, nil
}
