// Package interpolation implements the curve interpolation kernels shared by
// every bootstrapper and pricer in this module: linear discount-factor,
// log-linear zero rate, piecewise-constant, and step-forward-continuous. All
// kernels operate on sorted, deduplicated pillar times and flat-extrapolate
// beyond the outer pillars, except step-forward-continuous which continues
// the implied zero/forward rate per §4.C.
package interpolation

import "math"

func bracket(times []float64, t float64) (lo, hi int, w float64, belowFirst, aboveLast bool) {
	n := len(times)
	if n == 0 {
		return 0, 0, 0, false, false
	}
	if t <= times[0] {
		return 0, 0, 0, true, false
	}
	if t >= times[n-1] {
		return n - 1, n - 1, 0, false, true
	}
	for i := 0; i < n-1; i++ {
		if t >= times[i] && t <= times[i+1] {
			span := times[i+1] - times[i]
			if span == 0 {
				return i, i + 1, 0, false, false
			}
			return i, i + 1, (t - times[i]) / span, false, false
		}
	}
	return n - 1, n - 1, 0, false, true
}

// LinearDF interpolates linearly in discount-factor space, flat-extrapolated
// beyond the outer pillars.
func LinearDF(times, dfs []float64, t float64) float64 {
	lo, hi, w, below, above := bracket(times, t)
	if below {
		return dfs[0]
	}
	if above {
		return dfs[len(dfs)-1]
	}
	return (1-w)*dfs[lo] + w*dfs[hi]
}

// LogLinearZero interpolates linearly in log-DF (equivalently, linearly in
// z*t) given continuously-compounded zero rates, flat-extrapolated beyond
// the outer pillars.
func LogLinearZero(times, zeros []float64, t float64) float64 {
	lo, hi, w, below, above := bracket(times, t)
	if below {
		return zeros[0]
	}
	if above {
		return zeros[len(zeros)-1]
	}
	ztLo := zeros[lo] * times[lo]
	ztHi := zeros[hi] * times[hi]
	zt := (1-w)*ztLo + w*ztHi
	if t == 0 {
		return zeros[lo]
	}
	return zt / t
}

// LogLinearDF interpolates DF(t) via log-linear interpolation of the zero
// rates implied by dfs, returning the discount factor directly.
func LogLinearDF(times, dfs []float64, t float64) float64 {
	zeros := make([]float64, len(times))
	for i, ti := range times {
		if ti == 0 {
			zeros[i] = 0
			continue
		}
		zeros[i] = -math.Log(dfs[i]) / ti
	}
	z := LogLinearZero(times, zeros, t)
	return math.Exp(-z * t)
}

// PiecewiseConstant returns the left-endpoint value for t within a span, and
// flat-extrapolates beyond the outer pillars.
func PiecewiseConstant(times, values []float64, t float64) float64 {
	lo, _, _, below, above := bracket(times, t)
	if below {
		return values[0]
	}
	if above {
		return values[len(values)-1]
	}
	return values[lo]
}

// StepForwardContinuousDF interpolates DF(t) using a piecewise-constant
// instantaneous forward rate between pillars. Below the first pillar it
// continues the zero rate implied by the first pillar back to t=0; above the
// last pillar it extends the last interior forward rate.
func StepForwardContinuousDF(times, dfs []float64, t float64) float64 {
	n := len(times)
	if n == 0 {
		return 1
	}
	if n == 1 {
		if times[0] == 0 {
			return dfs[0]
		}
		z0 := -math.Log(dfs[0]) / times[0]
		return math.Exp(-z0 * t)
	}
	if t <= times[0] {
		if times[0] == 0 {
			return dfs[0]
		}
		z0 := -math.Log(dfs[0]) / times[0]
		return math.Exp(-z0 * t)
	}
	if t >= times[n-1] {
		fLast := math.Log(dfs[n-2]/dfs[n-1]) / (times[n-1] - times[n-2])
		return dfs[n-1] * math.Exp(-fLast*(t-times[n-1]))
	}
	for i := 0; i < n-1; i++ {
		if t >= times[i] && t <= times[i+1] {
			fi := math.Log(dfs[i]/dfs[i+1]) / (times[i+1] - times[i])
			return dfs[i] * math.Exp(-fi*(t-times[i]))
		}
	}
	return dfs[n-1]
}
