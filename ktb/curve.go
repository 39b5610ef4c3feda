package ktb

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/meenmo/ficclib/rootfind"
)

// ZeroCurve is a piecewise zero-rate curve bootstrapped from KTB par yields.
// Discount factors from cash bond dirty prices are produced separately by
// DiscountFactorsFromCashBonds and are not folded into a ZeroCurve. Zero
// rates are stored continuously compounded, decimal, keyed by tenor in years.
type ZeroCurve struct {
	CurveDate time.Time
	Frequency int // coupon payments per year assumed by the par-curve grid; 0 defaults to 2
	nodes     map[float64]float64
	tenors    []float64
}

func (c *ZeroCurve) frequency() int {
	if c.Frequency <= 0 {
		return 2
	}
	return c.Frequency
}

// ZeroCurveFromPar bootstraps a continuous zero curve from par-yield nodes
// (tenor in years -> yield in percent), per §4.G: short anchors at 0.25/0.5Y
// are closed-form; every subsequent quoted tenor introduces a log-linear DF
// parameterization over the unknown pillar and solves by bisection on
// (1e-12, 1), ≤80 iterations, tolerance 1e-12.
func ZeroCurveFromPar(curveDate time.Time, parNodesPct map[float64]float64, frequency int) (*ZeroCurve, error) {
	if len(parNodesPct) == 0 {
		return nil, fmt.Errorf("ZeroCurveFromPar: par nodes must not be empty")
	}
	if frequency <= 0 {
		frequency = 2
	}

	ytmDecimal := make(map[float64]float64, len(parNodesPct))
	for tenor, pct := range parNodesPct {
		if tenor <= 0 {
			return nil, fmt.Errorf("ZeroCurveFromPar: tenor must be positive, got %v", tenor)
		}
		ytmDecimal[tenor] = pct / 100.0
	}

	zeroSimple := make(map[float64]float64)
	if y, ok := ytmDecimal[0.25]; ok {
		zeroSimple[0.25] = y
	}
	if c, ok := ytmDecimal[0.5]; ok {
		zeroSimple[0.5] = math.Pow(1.0+c/2.0, 2) - 1.0
	}

	const tiny = 1e-9
	tenors := make([]float64, 0, len(ytmDecimal))
	for t := range ytmDecimal {
		tenors = append(tenors, t)
	}
	sort.Float64s(tenors)

	for _, tenor := range tenors {
		if tenor <= 0.5+tiny {
			continue
		}

		couponRate := ytmDecimal[tenor]
		couponPayment := couponRate / float64(frequency)

		knownTs := sortedKeys(zeroSimple)
		if len(knownTs) == 0 {
			return nil, fmt.Errorf("ZeroCurveFromPar: bootstrap requires short-end anchors (0.25Y and/or 0.5Y)")
		}
		tLo := -1.0
		for _, t := range knownTs {
			if t < tenor && t > tLo {
				tLo = t
			}
		}
		if tLo < 0 {
			return nil, fmt.Errorf("ZeroCurveFromPar: no known pillar below tenor %v", tenor)
		}
		dfLo := 1.0 / math.Pow(1.0+zeroSimple[tLo], tLo)

		constPV := 0.0
		type term struct {
			K, w float64
		}
		var coeffs []term

		periods := int((tenor - tiny) * float64(frequency))
		for period := 1; period <= periods; period++ {
			t := float64(period) / float64(frequency)
			if t >= tenor-tiny {
				break
			}
			if t <= tLo+tiny {
				z, ok := zeroSimple[t]
				if !ok {
					z = interpolateSimpleZero(t, zeroSimple)
				}
				dfT := 1.0 / math.Pow(1.0+z, t)
				constPV += couponPayment * dfT
			} else {
				w := (t - tLo) / (tenor - tLo)
				K := couponPayment * math.Pow(dfLo, 1.0-w)
				coeffs = append(coeffs, term{K: K, w: w})
			}
		}

		deltaLast := tenor - float64(periods)/float64(frequency)
		if periods == 0 {
			deltaLast = tenor
		}
		if deltaLast <= tiny {
			deltaLast = 1.0 / float64(frequency)
		}
		finalPayment := couponPayment*(deltaLast*float64(frequency)) + 1.0

		f := func(dfT float64) float64 {
			s := constPV + finalPayment*dfT
			for _, cf := range coeffs {
				s += cf.K * math.Pow(dfT, cf.w)
			}
			return s - 1.0
		}

		dfT, err := solveBoundedBisection(f, 1e-12, 1.0, 1e-12, 80)
		if err != nil {
			return nil, fmt.Errorf("ZeroCurveFromPar: tenor %v: %w", tenor, err)
		}

		zeroSimple[tenor] = math.Pow(dfT, -1.0/tenor) - 1.0
	}

	zeroCont := make(map[float64]float64, len(zeroSimple))
	for tenor, rate := range zeroSimple {
		zeroCont[tenor] = -math.Log(1.0/math.Pow(1.0+rate, tenor)) / tenor
	}

	return newZeroCurve(curveDate, zeroCont, frequency), nil
}

func newZeroCurve(curveDate time.Time, nodes map[float64]float64, frequency int) *ZeroCurve {
	c := &ZeroCurve{CurveDate: curveDate, Frequency: frequency, nodes: nodes}
	c.tenors = sortedKeys(nodes)
	return c
}

// solveBoundedBisection implements the "same-sign endpoints pick the
// minimizing one, else bisect" rule used throughout §4.G/§4.H: the function
// is expected to change sign over [lo, hi], but market inputs occasionally
// leave both endpoints on the same side (e.g. a tenor shorter than any
// coupon), in which case the endpoint closer to the root is reported rather
// than raising.
func solveBoundedBisection(f rootfind.Func, lo, hi, tol float64, maxIter int) (float64, error) {
	fLo, fHi := f(lo), f(hi)
	if fLo > 0 && fHi > 0 {
		if fLo < fHi {
			return lo, nil
		}
		return hi, nil
	}
	if fLo < 0 && fHi < 0 {
		if math.Abs(fLo) < math.Abs(fHi) {
			return lo, nil
		}
		return hi, nil
	}
	res, err := rootfind.Bisect(f, lo, hi, tol, maxIter)
	if err != nil {
		return 0, err
	}
	return res.Root, nil
}

func interpolateSimpleZero(tenor float64, zeroRates map[float64]float64) float64 {
	keys := sortedKeys(zeroRates)
	if len(keys) == 0 {
		return 0
	}
	if tenor <= keys[0] {
		return zeroRates[keys[0]]
	}
	if tenor >= keys[len(keys)-1] {
		return zeroRates[keys[len(keys)-1]]
	}
	for i := 1; i < len(keys); i++ {
		t0, t1 := keys[i-1], keys[i]
		if t0 <= tenor && tenor <= t1 {
			z0, z1 := zeroRates[t0], zeroRates[t1]
			w := (tenor - t0) / (t1 - t0)
			return z0 + w*(z1-z0)
		}
	}
	return zeroRates[keys[len(keys)-1]]
}

func sortedKeys(m map[float64]float64) []float64 {
	keys := make([]float64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Float64s(keys)
	return keys
}

// Zero returns the interpolated continuous zero rate (decimal) at tenor t,
// flat-extrapolated beyond the outer pillars.
func (c *ZeroCurve) Zero(t float64) float64 {
	if len(c.tenors) == 0 {
		return 0
	}
	if t <= c.tenors[0] {
		return c.nodes[c.tenors[0]]
	}
	last := c.tenors[len(c.tenors)-1]
	if t >= last {
		return c.nodes[last]
	}
	for i := 1; i < len(c.tenors); i++ {
		if t <= c.tenors[i] {
			t0, t1 := c.tenors[i-1], c.tenors[i]
			z0, z1 := c.nodes[t0], c.nodes[t1]
			if t1 == t0 {
				return z0
			}
			w := (t - t0) / (t1 - t0)
			return z0 + w*(z1-z0)
		}
	}
	return c.nodes[last]
}

// DF returns the continuously-compounded discount factor at tenor t.
func (c *ZeroCurve) DF(t float64) float64 {
	return math.Exp(-c.Zero(t) * t)
}

// DiscountNodesToBond converts this curve into a sorted DiscountNode slice,
// one node per pillar tenor of the curve, for Bond.PriceFromCurve/ForwardPrice.
func (c *ZeroCurve) DiscountNodesToBond() []DiscountNode {
	nodes := make([]DiscountNode, len(c.tenors))
	for i, t := range c.tenors {
		nodes[i] = DiscountNode{YearsFromValuation: t, DiscountFactor: c.DF(t)}
	}
	return nodes
}

// CloneWithShiftedNode returns a new curve with the par yield at the given
// tenor shifted by shiftBP basis points, then re-bootstrapped. Used for
// key-rate delta.
func (c *ZeroCurve) CloneWithShiftedNode(parNodesPct map[float64]float64, tenor, shiftBP float64) (*ZeroCurve, error) {
	shifted := make(map[float64]float64, len(parNodesPct))
	for k, v := range parNodesPct {
		shifted[k] = v
	}
	base, ok := shifted[tenor]
	if !ok {
		base = interpolateSimpleZero(tenor, parNodesPct) // best-effort for off-grid tenors
	}
	shifted[tenor] = base + shiftBP/100.0
	return ZeroCurveFromPar(c.CurveDate, shifted, c.frequency())
}

// KeyRateDelta re-bootstraps the par curve with node tenor shifted by bumpBP
// basis points and reports the bond's ΔPrice. Both prices use the curves'
// pillar discount nodes from DiscountNodesToBond (log-linear in DF on an
// ACT/365F-equivalent years-from-valuation axis); no half-year DF grid is built.
func KeyRateDelta(b Bond, valuationDate time.Time, base *ZeroCurve, parNodesPct map[float64]float64, tenor, bumpBP float64) (float64, error) {
	basePrice := b.PriceFromCurve(valuationDate, base.DiscountNodesToBond())

	bumped, err := base.CloneWithShiftedNode(parNodesPct, tenor, bumpBP)
	if err != nil {
		return 0, fmt.Errorf("KeyRateDelta: %w", err)
	}
	bumpedPrice := b.PriceFromCurve(valuationDate, bumped.DiscountNodesToBond())

	return bumpedPrice - basePrice, nil
}
