package curve

import (
	"fmt"
	"time"

	"github.com/meenmo/ficclib/calendar"
	"github.com/meenmo/ficclib/swap/market"
	"github.com/meenmo/ficclib/swap/marketconf"
)

// BuildProjectionCurve returns a projection curve for the given leg.
//
// For overnight indices (e.g., TONAR/ESTR/SOFR), the discount curve is also the projection curve.
// For IBOR indices, it builds a dual curve bootstrapped using OIS discounting.
func BuildProjectionCurve(curveDate time.Time, leg market.LegConvention, legQuotes map[string]float64, discount *Curve) (*Curve, error) {
	if market.IsOvernight(leg.ReferenceRate) {
		return discount, nil
	}
	if discount == nil {
		return nil, fmt.Errorf("BuildProjectionCurve: nil discount curve")
	}
	if legQuotes == nil {
		return nil, fmt.Errorf("BuildProjectionCurve: nil quotes for %s", leg.ReferenceRate)
	}
	// Use the leg's pay frequency for the floating leg periods in bootstrap,
	// but use monthly grid for pillar interpolation (matches OIS curve precision).
	return BuildDualCurveWithFreq(curveDate, legQuotes, discount, leg.Market, leg.Calendar, int(leg.PayFrequency), 1)
}

// BuildDualCurveWithFreq creates an IBOR projection curve with separate control over
// the floating leg frequency (for bootstrap) and the pillar grid frequency (for interpolation).
func BuildDualCurveWithFreq(settlement time.Time, iborQuotes map[string]float64, oisCurve *Curve, market calendar.CalendarID, cal calendar.Calendar, floatFreqMonths, gridFreqMonths int) (*Curve, error) {
	parsed := make(map[float64]float64)
	for k, v := range iborQuotes {
		parsed[tenorToYears(k)] = v
	}
	c := &Curve{
		settlement:    settlement,
		parQuotes:     parsed,
		market:        market,
		cal:           cal,
		freqMonths:    gridFreqMonths, // Use finer grid for interpolation
		curveDayCount: oisCurve.curveDayCount,
		config:        marketconf.DefaultConfig,
	}
	c.paymentDates = c.generatePaymentDates()
	c.parRates = c.buildParCurve()
	df, err := c.bootstrapDualCurveDiscountFactorsWithFloatFreq(oisCurve, floatFreqMonths)
	if err != nil {
		return nil, fmt.Errorf("BuildDualCurveWithFreq: %w", err)
	}
	c.discountFactors = df
	c.zeros = c.buildZero()
	return c, nil
}
