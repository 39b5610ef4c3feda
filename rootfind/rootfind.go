// Package rootfind implements Newton-Raphson with a bisection fallback and a
// standalone bracketed bisection solver, following the exact iteration
// counts, clamps, and bracket-expansion policy the curve bootstrappers and
// bond pricer rely on for reproducible results.
package rootfind

import (
	"fmt"
	"math"
)

// Result is the outcome of a root-finding call.
type Result struct {
	Root       float64
	Iterations int
	Method     string
}

// ConvergenceError is returned when neither Newton iteration nor its
// bisection fallback converges within budget.
type ConvergenceError struct {
	Op      string
	Iters   int
	Message string
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("rootfind: %s failed to converge after %d iterations: %s", e.Op, e.Iters, e.Message)
}

// BracketError is returned when a sign-changing bracket cannot be found.
type BracketError struct {
	Op string
}

func (e *BracketError) Error() string {
	return fmt.Sprintf("rootfind: %s: failed to bracket the root", e.Op)
}

// FuncDeriv evaluates a function and its derivative at x.
type FuncDeriv func(x float64) (value, deriv float64)

// Func evaluates a function at x.
type Func func(x float64) float64

// Bisect requires func(lower) and func(upper) to have opposite sign (or one
// of them to be exactly zero). It iterates until |f(mid)| <= tol or the
// bracket width collapses to <= tol, up to maxIter iterations.
func Bisect(f Func, lower, upper, tol float64, maxIter int) (Result, error) {
	fLower := f(lower)
	fUpper := f(upper)
	if fLower == 0 {
		return Result{Root: lower, Iterations: 0, Method: "bisect"}, nil
	}
	if fUpper == 0 {
		return Result{Root: upper, Iterations: 0, Method: "bisect"}, nil
	}
	if fLower*fUpper > 0 {
		return Result{}, &BracketError{Op: "bisect"}
	}

	for iter := 1; iter <= maxIter; iter++ {
		mid := 0.5 * (lower + upper)
		fMid := f(mid)
		if math.Abs(fMid) <= tol || math.Abs(upper-lower) <= tol {
			return Result{Root: mid, Iterations: iter, Method: "bisect"}, nil
		}
		if fLower*fMid < 0 {
			upper, fUpper = mid, fMid
		} else {
			lower, fLower = mid, fMid
		}
	}
	return Result{}, &ConvergenceError{Op: "bisect", Iters: maxIter, Message: "tolerance not met"}
}

// AutoBracket expands symmetrically around guess by expansion (default 1.8
// when <= 1) up to maxIter attempts, returning the first sign-changing (or
// exactly-zero) pair found.
func AutoBracket(f Func, guess, lower, upper, expansion float64, maxIter int) (float64, float64, error) {
	if expansion <= 1 {
		expansion = 1.8
	}
	a, b := lower, upper
	fa := f(a)
	fb := f(b)
	for i := 0; i < maxIter; i++ {
		if fa == 0 {
			return a, a, nil
		}
		if fb == 0 {
			return b, b, nil
		}
		if fa*fb < 0 {
			return a, b, nil
		}
		a = guess - (guess-a)*expansion
		b = guess + (b-guess)*expansion
		fa = f(a)
		fb = f(b)
	}
	return 0, 0, &BracketError{Op: "auto-bracket"}
}

// NewtonOptions configures NewtonWithBisection.
type NewtonOptions struct {
	TolValue float64 // default 1e-6
	TolStep  float64 // default 1e-10
	MaxIter  int     // default 50
	Clamp    float64 // default 0.01 (100bp)
	Lower    float64 // default -0.02
	Upper    float64 // default 0.30
	// Bracket, if non-nil, is used directly for the bisection fallback
	// instead of auto-bracketing around the last Newton iterate.
	Bracket *[2]float64
}

func (o NewtonOptions) withDefaults() NewtonOptions {
	if o.TolValue == 0 {
		o.TolValue = 1e-6
	}
	if o.TolStep == 0 {
		o.TolStep = 1e-10
	}
	if o.MaxIter == 0 {
		o.MaxIter = 50
	}
	if o.Clamp == 0 {
		o.Clamp = 0.01
	}
	if o.Lower == 0 && o.Upper == 0 {
		o.Lower, o.Upper = -0.02, 0.30
	}
	return o
}

// NewtonWithBisection runs clamped Newton-Raphson from initialGuess; on zero
// derivative or exhausted iterations it falls back to bracketed bisection,
// auto-bracketing around the last iterate when no explicit bracket is given.
func NewtonWithBisection(fd FuncDeriv, initialGuess float64, opts NewtonOptions) (Result, error) {
	o := opts.withDefaults()
	x := initialGuess
	lower, upper := o.Lower, o.Upper
	if o.Bracket != nil {
		lower, upper = o.Bracket[0], o.Bracket[1]
	}

	iter := 0
	for iter = 1; iter <= o.MaxIter; iter++ {
		value, deriv := fd(x)
		if math.Abs(value) <= o.TolValue {
			return Result{Root: x, Iterations: iter, Method: "newton"}, nil
		}
		if deriv == 0 {
			break
		}
		step := value / deriv
		if math.Abs(step) > o.Clamp {
			if step > 0 {
				step = o.Clamp
			} else {
				step = -o.Clamp
			}
		}
		xNew := x - step
		if xNew < lower {
			xNew = lower
		}
		if xNew > upper {
			xNew = upper
		}
		if math.Abs(xNew-x) <= o.TolStep {
			return Result{Root: xNew, Iterations: iter, Method: "newton"}, nil
		}
		x = xNew
	}

	funcOnly := func(v float64) float64 {
		value, _ := fd(v)
		return value
	}

	bLower, bUpper := lower, upper
	if o.Bracket == nil {
		if a, b, err := AutoBracket(funcOnly, x, lower, upper, 1.8, 12); err == nil {
			bLower, bUpper = a, b
		}
	}
	res, err := Bisect(funcOnly, bLower, bUpper, o.TolValue, 100)
	if err != nil {
		return Result{}, &ConvergenceError{Op: "newton-with-bisection", Iters: o.MaxIter, Message: err.Error()}
	}
	res.Method = "bisect"
	return res, nil
}
