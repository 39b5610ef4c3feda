package ktb

import (
	"fmt"
	"math"
	"time"

	"github.com/meenmo/ficclib/calendar"
	"github.com/meenmo/ficclib/marketdata/krx"
	"github.com/meenmo/ficclib/rootfind"
	"github.com/meenmo/ficclib/utils"
)

// Underlying is one cheapest-to-deliver candidate bond behind a KTB futures
// contract, quoted at its market yield (percent, street convention).
type Underlying struct {
	Bond        Bond
	MarketYield float64 // percent
}

// ForwardYieldResult reports the solved forward yield and the intermediate
// carry figures that produced it.
type ForwardYieldResult struct {
	ForwardYield      float64 // percent
	MarketPrice       float64
	CleanPrice        float64
	ForwardDirtyPrice float64
	FuturesExpiry     time.Time
	Iterations        int
}

// ForwardYield computes the forward yield of underlying delivered into a
// futures contract expiring at the next quarterly IMM date, per §4.H:
// price the bond at its market yield, carry forward any coupons paid before
// expiry at the CD91 money-market rate (read off feed as of valuationDate),
// then invert the expiry-date pricing formula for the yield that reprices
// to the forward dirty price.
func ForwardYield(cal calendar.Calendar, valuationDate time.Time, u Underlying, feed krx.ReferenceRateFeed) (ForwardYieldResult, error) {
	b := u.Bond
	flows := b.CashFlows()
	if len(flows) == 0 {
		return ForwardYieldResult{}, fmt.Errorf("ForwardYield: bond has no cashflows")
	}

	cd91Pct, ok := feed.RateOn(valuationDate)
	if !ok {
		return ForwardYieldResult{}, fmt.Errorf("ForwardYield: no CD91 fixing for %s", valuationDate.Format("2006-01-02"))
	}

	marketPrice := b.DirtyPrice(u.MarketYield, valuationDate)

	expiry, _ := calendar.FuturesExpiries(cal, valuationDate)

	cd91 := cd91Pct / 100.0

	couponBeforeExpiry := 0.0
	for _, cf := range flows {
		if cf.Date.After(valuationDate) && !cf.Date.After(expiry) {
			couponBeforeExpiry += cf.Amount
		}
	}

	if couponBeforeExpiry != 0 {
		prevPmt, _ := b.AdjacentPaymentDates(expiry)
		daysUntilPmt := utils.Days(valuationDate, prevPmt)
		couponBeforeExpiry /= 1.0 + cd91*daysUntilPmt/daysInYear
	}

	cleanPrice := marketPrice - couponBeforeExpiry
	daysUntilExpiry := utils.Days(valuationDate, expiry)
	fwdDirtyPrice := cleanPrice * (1.0 + cd91*daysUntilExpiry/daysInYear)

	prevPmt, nextPmt := b.AdjacentPaymentDates(expiry)

	numAtExpiry := 0
	for _, cf := range flows {
		if !cf.Date.Before(expiry) {
			numAtExpiry++
		}
	}

	priceAtYield := func(yPct float64) float64 {
		return bondPriceAtYield(b, yPct, prevPmt, nextPmt, expiry, numAtExpiry)
	}

	yield, iterations, err := solveImpliedYield(priceAtYield, fwdDirtyPrice)
	if err != nil {
		return ForwardYieldResult{}, fmt.Errorf("ForwardYield: %w", err)
	}

	return ForwardYieldResult{
		ForwardYield:      yield,
		MarketPrice:       marketPrice,
		CleanPrice:        cleanPrice,
		ForwardDirtyPrice: fwdDirtyPrice,
		FuturesExpiry:     expiry,
		Iterations:        iterations,
	}, nil
}

// bondPriceAtYield reprices a bond's remaining numPmt payments for an annual
// yield yPct (percent), anchored at pricingDate between (pymtDate1, pymtDate2).
func bondPriceAtYield(b Bond, yPct float64, pymtDate1, pymtDate2, pricingDate time.Time, numPmt int) float64 {
	y := yPct / 100.0
	coupon := b.CouponAmount()
	face := b.faceValue()

	price := 0.0
	disc := 1.0
	discountRate := 1.0 + y/2.0
	for k := 0; k < numPmt; k++ {
		price += coupon / disc
		disc *= discountRate
	}
	lastIdx := numPmt - 1
	if lastIdx < 0 {
		lastIdx = 0
	}
	price += face / math.Pow(discountRate, float64(lastIdx))

	d := utils.Days(pricingDate, pymtDate2)
	t := utils.Days(pymtDate1, pymtDate2)
	if t < 1 {
		t = 1
	}
	return price / (1.0 + (d/t)*(y/2.0))
}

// solveImpliedYield replaces the teacher's symbolic cascade with a purely
// numeric one, following §4.H/§9: seed near 2.8%, bracket (2%, 4%), then an
// expanding auto-bracket, then a cascade of fallback seeds.
func solveImpliedYield(priceAtYield func(yPct float64) float64, target float64) (float64, int, error) {
	f := func(yPct float64) float64 {
		return priceAtYield(yPct) - target
	}

	// 1) Newton from a single good seed.
	fd := func(yPct float64) (float64, float64) {
		const h = 1e-4
		v := f(yPct)
		vPlus := f(yPct + h)
		return v, (vPlus - v) / h
	}
	if res, err := rootfind.NewtonWithBisection(fd, 2.8, rootfind.NewtonOptions{
		TolValue: 1e-10,
		TolStep:  1e-12,
		MaxIter:  100,
		Clamp:    2.0,
		Lower:    -2.0,
		Upper:    30.0,
		Bracket:  &[2]float64{2.0, 4.0},
	}); err == nil {
		return res.Root, res.Iterations, nil
	}

	// 2) Direct bracketed bisection over (2%, 4%).
	if res, err := rootfind.Bisect(f, 2.0, 4.0, 1e-10, 200); err == nil {
		return res.Root, res.Iterations, nil
	}

	// 3) Auto-bracket expansion around the seed.
	if lo, hi, err := rootfind.AutoBracket(f, 2.8, 0.0, 10.0, 1.8, 30); err == nil {
		if res, err := rootfind.Bisect(f, lo, hi, 1e-10, 200); err == nil {
			return res.Root, res.Iterations, nil
		}
	}

	// 4) Fallback seeds across the plausible yield range.
	for _, seed := range []float64{0.5, 1.0, 2.0, 3.0, 5.0, 8.0, 12.0} {
		if lo, hi, err := rootfind.AutoBracket(f, seed, seed-1, seed+1, 1.8, 20); err == nil {
			if res, err := rootfind.Bisect(f, lo, hi, 1e-10, 200); err == nil {
				return res.Root, res.Iterations, nil
			}
		}
	}

	return 0, 0, fmt.Errorf("failed to solve for forward yield")
}

// FairValue prices a notional semiannual 2.5%-coupon bond over 2*tenorYears
// periods at par 100, using the average forward yield across up to three
// cheapest-to-deliver candidates.
func FairValue(cal calendar.Calendar, valuationDate time.Time, tenorYears int, feed krx.ReferenceRateFeed, basket []Underlying) (float64, error) {
	if len(basket) == 0 {
		return 0, fmt.Errorf("FairValue: basket must not be empty")
	}

	var sumYield float64
	var n int
	for _, u := range basket {
		res, err := ForwardYield(cal, valuationDate, u, feed)
		if err != nil {
			return 0, fmt.Errorf("FairValue: %w", err)
		}
		sumYield += res.ForwardYield
		n++
	}
	avgYieldPct := sumYield / float64(n)
	avgYield := avgYieldPct / 100.0

	pvCoupons := 0.0
	disc := 1.0 + avgYield/2.0
	d := disc
	for i := 1; i <= 2*tenorYears; i++ {
		pvCoupons += 2.5 / d
		d *= disc
	}
	pvRedemption := 100.0 / math.Pow(disc, float64(2*tenorYears))

	return pvCoupons + pvRedemption, nil
}
