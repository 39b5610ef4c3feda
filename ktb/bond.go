// Package ktb prices Korean Treasury Bonds and their futures: dirty price
// from yield, yield from price, duration/convexity, par-yield curve
// bootstrap, discount factors from cash bond prices, key-rate delta, and
// futures fair value off a cheapest-to-deliver basket.
package ktb

import (
	"fmt"
	"math"
	"time"

	"github.com/meenmo/ficclib/rootfind"
	"github.com/meenmo/ficclib/utils"
)

const daysInYear = 365.0

// Bond is a Korean Treasury Bond: semiannual (by default) coupon, bullet
// redemption at face value.
type Bond struct {
	Issue      time.Time
	Maturity   time.Time
	CouponPct  float64 // annual coupon rate, in percent (e.g. 2.75)
	PymtFreq   int     // months between coupons; 0 defaults to 6
	FaceValue  float64 // 0 defaults to 10000
}

func (b Bond) pymtFreq() int {
	if b.PymtFreq <= 0 {
		return 6
	}
	return b.PymtFreq
}

func (b Bond) faceValue() float64 {
	if b.FaceValue == 0 {
		return 10000.0
	}
	return b.FaceValue
}

// CouponsPerYear returns payments per year implied by PymtFreq.
func (b Bond) CouponsPerYear() float64 {
	return 12.0 / float64(b.pymtFreq())
}

// CouponAmount is the per-period coupon payment.
func (b Bond) CouponAmount() float64 {
	return b.faceValue() * (b.CouponPct / 100.0) / b.CouponsPerYear()
}

// PaymentSchedule lists coupon payment dates from issue to maturity.
func (b Bond) PaymentSchedule() []time.Time {
	var dates []time.Time
	current := utils.AddMonth(b.Issue, b.pymtFreq())
	for !current.After(b.Maturity) {
		dates = append(dates, current)
		current = utils.AddMonth(current, b.pymtFreq())
	}
	if len(dates) == 0 {
		dates = []time.Time{b.Maturity}
	}
	return dates
}

// Cashflow is a single dated payment; the final one includes redemption.
type Cashflow struct {
	Date   time.Time
	Amount float64
}

// CashFlows returns the full coupon-plus-redemption schedule.
func (b Bond) CashFlows() []Cashflow {
	dates := b.PaymentSchedule()
	coupon := b.CouponAmount()
	flows := make([]Cashflow, len(dates))
	for i, d := range dates {
		flows[i] = Cashflow{Date: d, Amount: coupon}
	}
	flows[len(flows)-1].Amount += b.faceValue()
	return flows
}

// AdjacentPaymentDates returns the (previous, next) coupon dates bracketing asOf.
func (b Bond) AdjacentPaymentDates(asOf time.Time) (time.Time, time.Time) {
	dates := b.PaymentSchedule()
	if asOf.Before(dates[0]) {
		return b.Issue, dates[0]
	}
	prev := dates[0]
	for _, d := range dates {
		if !d.After(asOf) {
			prev = d
		} else {
			return prev, d
		}
	}
	return dates[len(dates)-1], dates[len(dates)-1]
}

// DirtyPrice computes the dirty price for a semiannual-street-convention
// yield ytmPct (percent), per-100-face terms scaled to FaceValue.
func (b Bond) DirtyPrice(ytmPct float64, valuationDate time.Time) float64 {
	p := b.CouponsPerYear()
	y := ytmPct / 100.0 / p
	flows := b.CashFlows()
	if len(flows) == 0 || !valuationDate.Before(flows[len(flows)-1].Date) {
		return 0.0
	}

	prevPmt, nextPmt := b.AdjacentPaymentDates(valuationDate)
	remaining := 0
	for _, cf := range flows {
		if !cf.Date.Before(nextPmt) {
			remaining++
		}
	}

	discountRate := 1.0 + y
	coupon := b.CouponAmount()

	priceAtNext := 0.0
	disc := 1.0
	for i := 0; i < remaining; i++ {
		priceAtNext += coupon / disc
		disc *= discountRate
	}
	// disc now equals discountRate^remaining; undo the last multiply to get
	// discountRate^(remaining-1) for the redemption term.
	if remaining > 0 {
		disc /= discountRate
	}
	priceAtNext += b.faceValue() / disc

	daysToNext := utils.Days(valuationDate, nextPmt)
	daysInPeriod := utils.Days(prevPmt, nextPmt)
	if daysInPeriod < 1 {
		daysInPeriod = 1
	}
	accrualFactor := daysToNext / daysInPeriod

	return priceAtNext / (1.0 + accrualFactor*y)
}

// AccruedInterest is the coupon accrued since the previous payment date,
// using ACT/365F within the active coupon period.
func (b Bond) AccruedInterest(valuationDate time.Time) float64 {
	prevPmt, nextPmt := b.AdjacentPaymentDates(valuationDate)
	if prevPmt.Equal(nextPmt) {
		return 0.0
	}
	accrual := utils.YearFraction(prevPmt, nextPmt, "ACT/365F")
	elapsed := utils.YearFraction(prevPmt, valuationDate, "ACT/365F")
	if accrual == 0 {
		return 0.0
	}
	return b.CouponAmount() * elapsed / accrual
}

// CleanPrice returns dirty minus accrued; clean + accrued == dirty always.
func (b Bond) CleanPrice(ytmPct float64, valuationDate time.Time) float64 {
	return b.DirtyPrice(ytmPct, valuationDate) - b.AccruedInterest(valuationDate)
}

// YTMFromPrice inverts DirtyPrice for the yield (percent) that reprices to
// target, via Newton-with-bisection-fallback: bracket (-2%, 30%), step clamp
// 100bp, tol_value 1e-6, max_iter 50.
func (b Bond) YTMFromPrice(target float64, valuationDate time.Time) (float64, error) {
	flows := b.CashFlows()
	if len(flows) == 0 || !valuationDate.Before(flows[len(flows)-1].Date) {
		return 0.0, nil
	}

	seed := b.CouponPct / 100.0
	if seed < 0.02 {
		seed = 0.02
	}

	fd := func(yPct float64) (float64, float64) {
		const h = 1e-6
		f := b.DirtyPrice(yPct, valuationDate) - target
		fPlus := b.DirtyPrice(yPct+h, valuationDate) - target
		deriv := (fPlus - f) / h
		return f, deriv
	}

	res, err := rootfind.NewtonWithBisection(fd, seed*100.0, rootfind.NewtonOptions{
		TolValue: 1e-6,
		TolStep:  1e-10,
		MaxIter:  50,
		Clamp:    1.0, // 100bp, expressed in percent units here
		Lower:    -2.0,
		Upper:    30.0,
	})
	if err != nil {
		return 0, fmt.Errorf("YTMFromPrice: %w", err)
	}
	return res.Root, nil
}

// DiscountNode is one point of a continuous discount-factor curve, expressed
// as years-from-valuation and the discount factor at that tenor.
type DiscountNode struct {
	YearsFromValuation float64
	DiscountFactor     float64
}

// PriceFromCurve prices future cash flows by log-linear interpolation on the
// supplied discount-factor nodes (sorted by tenor).
func (b Bond) PriceFromCurve(valuationDate time.Time, nodes []DiscountNode) float64 {
	price := 0.0
	for _, cf := range b.CashFlows() {
		if cf.Date.After(valuationDate) {
			t := utils.Days(valuationDate, cf.Date) / daysInYear
			df := logLinearInterp(nodes, t)
			price += cf.Amount * df
		}
	}
	return price
}

func logLinearInterp(nodes []DiscountNode, t float64) float64 {
	if len(nodes) == 0 {
		return 1.0
	}
	if len(nodes) == 1 || t <= nodes[0].YearsFromValuation {
		return nodes[0].DiscountFactor
	}
	last := nodes[len(nodes)-1]
	if t >= last.YearsFromValuation {
		return last.DiscountFactor
	}
	for i := 1; i < len(nodes); i++ {
		if t <= nodes[i].YearsFromValuation {
			t0, t1 := nodes[i-1].YearsFromValuation, nodes[i].YearsFromValuation
			df0, df1 := nodes[i-1].DiscountFactor, nodes[i].DiscountFactor
			if t1 == t0 {
				return df0
			}
			w := (t - t0) / (t1 - t0)
			logDf := (1-w)*math.Log(df0) + w*math.Log(df1)
			return math.Exp(logDf)
		}
	}
	return last.DiscountFactor
}

// ForwardPrice returns the forward dirty price for delivery at forwardDate,
// given the spot discount curve: spot_price minus the PV of intervening
// coupons (each discounted to valuation), divided by df(valuation->forward).
func (b Bond) ForwardPrice(valuationDate, forwardDate time.Time, nodes []DiscountNode) float64 {
	spotPrice := b.PriceFromCurve(valuationDate, nodes)

	intermediate := 0.0
	flows := b.CashFlows()
	for _, cf := range flows {
		if cf.Date.After(valuationDate) && !cf.Date.After(forwardDate) {
			t := utils.Days(valuationDate, cf.Date) / daysInYear
			df := logLinearInterp(nodes, t)
			intermediate += cf.Amount * df
		}
	}

	tFwd := utils.Days(valuationDate, forwardDate) / daysInYear
	fwdDF := logLinearInterp(nodes, tFwd)
	if fwdDF == 0 {
		return 0
	}
	return (spotPrice - intermediate) / fwdDF
}

// ModifiedDuration computes semiannual-convention modified duration. If
// dirtyPrice is zero, it is derived from ytmPct.
func (b Bond) ModifiedDuration(ytmPct float64, valuationDate time.Time, dirtyPrice float64) float64 {
	duration, _ := b.durationAndConvexity(ytmPct, valuationDate, dirtyPrice)
	return duration
}

// Convexity computes semiannual-convention convexity.
func (b Bond) Convexity(ytmPct float64, valuationDate time.Time, dirtyPrice float64) float64 {
	_, convexity := b.durationAndConvexity(ytmPct, valuationDate, dirtyPrice)
	return convexity
}

func (b Bond) durationAndConvexity(ytmPct float64, valuationDate time.Time, dirtyPrice float64) (float64, float64) {
	p := b.CouponsPerYear()
	y := ytmPct / 100.0

	if dirtyPrice == 0 {
		dirtyPrice = b.DirtyPrice(ytmPct, valuationDate)
	}
	if dirtyPrice == 0 {
		return 0, 0
	}

	prevPmt, nextPmt := b.AdjacentPaymentDates(valuationDate)
	termToNext := 0.0
	if !prevPmt.Equal(nextPmt) {
		termToNext = utils.Days(valuationDate, nextPmt) / utils.Days(prevPmt, nextPmt)
	}

	dates := b.PaymentSchedule()
	coupon := b.CouponAmount()
	face := b.faceValue()

	duration, convexity := 0.0, 0.0
	power := 0
	for i, d := range dates {
		if !d.After(valuationDate) {
			continue
		}
		discFactor := math.Pow(1.0+y/p, float64(power))
		pv := coupon / discFactor
		if i == len(dates)-1 {
			pv += face / discFactor
		}
		pv /= 1.0 + (y/p)*termToNext

		weight := pv / dirtyPrice
		t := utils.Days(valuationDate, d) / daysInYear
		duration += weight * t
		convexity += weight * t * (t + 1.0/p)
		power++
	}

	denom := 1.0 + y/p
	return duration / denom, convexity / (denom * denom)
}
