package swap

import (
	"fmt"
	"time"

	"github.com/meenmo/ficclib/swap/market"
	"github.com/meenmo/ficclib/utils"
)

// Fixing is one period's forward rate, reported with its schedule context.
type Fixing struct {
	FixingDate      time.Time
	AccrualStart    time.Time
	AccrualEnd      time.Time
	ForwardRatePct  float64
	AccrualFraction float64
}

// ForwardFixings builds a leg's schedule and reports the projected forward
// rate for every non-degenerate period, alongside its accrual fraction and
// fixing date (IN_ADVANCE: add_business_days(reset_date, -fixing_lag_days)).
func ForwardFixings(projCurve ProjectionCurve, effective, maturity time.Time, leg market.LegConvention) ([]Fixing, error) {
	if isNilInterface(projCurve) {
		return nil, ErrNilCurve
	}
	if leg.LegType != market.LegFloating {
		return nil, fmt.Errorf("ForwardFixings: leg must be floating, got %s", leg.LegType)
	}

	periods, err := GenerateSchedule(effective, maturity, leg)
	if err != nil {
		return nil, err
	}

	out := make([]Fixing, 0, len(periods))
	for _, p := range periods {
		if !p.EndDate.After(p.StartDate) {
			continue
		}
		alpha := utils.YearFraction(p.StartDate, p.EndDate, string(leg.DayCount))
		rate := forwardRate(projCurve, p.StartDate, p.EndDate, string(leg.DayCount))
		out = append(out, Fixing{
			FixingDate:      p.FixingDate,
			AccrualStart:    p.StartDate,
			AccrualEnd:      p.EndDate,
			ForwardRatePct:  rate * 100,
			AccrualFraction: alpha,
		})
	}
	return out, nil
}
