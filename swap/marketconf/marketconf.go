// Package marketconf holds solver and curve construction parameters that
// were previously hardcoded magic numbers scattered through the bootstrap
// and spread-solving code.
package marketconf

// Config bundles the tolerances, iteration caps, and safety floors used by
// the OIS/IBOR bootstrappers and the par-spread solver. A Config is passed
// explicitly at construction time; there is no package-level mutable state
// to set or get.
type Config struct {
	// ConvergenceTolerance is the tolerance for the bisection solves during
	// OIS and IBOR curve bootstrap.
	ConvergenceTolerance float64

	// MaxBootstrapIterations is the maximum iterations for curve bootstrap.
	MaxBootstrapIterations int

	// MaxSpreadIterations is the maximum iterations for par spread solving.
	MaxSpreadIterations int

	// DampingFactor is a Newton step-size limit (DampingFactor * currentGuess).
	// No solver in this module reads it.
	DampingFactor float64

	// MaxPaymentDates is a cap on the number of payment dates (600 covers 50Y
	// monthly). Payment-date generation does not read it.
	MaxPaymentDates int

	// MinDiscountFactor is the floor for discount factors to prevent
	// numerical instability (division by near-zero).
	MinDiscountFactor float64

	// DerivativeThreshold is a minimum derivative magnitude for Newton
	// iteration. No solver in this module reads it.
	DerivativeThreshold float64

	// PVToleranceMultiplier scales the notional to compute PV tolerance.
	// PV tolerance = PVToleranceMultiplier * max(1.0, abs(notional))
	PVToleranceMultiplier float64
}

// DefaultConfig provides production-ready default values, grounded in the
// constants used throughout the bootstrap and spread-solving routines.
var DefaultConfig = Config{
	ConvergenceTolerance:   1e-12,
	MaxBootstrapIterations: 100,
	MaxSpreadIterations:    10,
	DampingFactor:          0.5,
	MaxPaymentDates:        600,
	MinDiscountFactor:      1e-9,
	DerivativeThreshold:    1e-15,
	PVToleranceMultiplier:  1e-10,
}
