package swaps

import (
	"github.com/meenmo/ficclib/calendar"
	"github.com/meenmo/ficclib/swap/market"
)

// BasisPreset groups pay, receive, and discounting leg conventions
// for common basis swap structures (e.g., EUR 3M/6M vs ESTR, JPY TIBOR vs TONAR).
type BasisPreset struct {
	PayLeg      market.LegConvention
	RecLeg      market.LegConvention
	DiscountOIS market.LegConvention
}

// IRSPreset groups fixed, floating, and discounting leg conventions
// for a vanilla fixed-vs-floating IRS (e.g., EUR fixed vs EURIBOR3M, disc. ESTR).
type IRSPreset struct {
	FixedLeg    market.LegConvention
	FloatLeg    market.LegConvention
	DiscountOIS market.LegConvention
}

// OISPreset groups fixed and overnight leg conventions for an OIS swap.
// Discounting is typically on the overnight curve itself.
type OISPreset struct {
	FixedLeg market.LegConvention
	FloatLeg market.LegConvention
}

// Preset floating leg conventions for EUR, JPY, USD, and KRW reference rates.
var (
	ESTRFloating = market.LegConvention{
		LegType:                 market.LegFloating,
		ReferenceRate:           market.ESTR,
		DayCount:                market.Act365F,
		ResetFrequency:          market.FreqDaily,
		PayFrequency:            market.FreqAnnual,
		FixingLagDays:           0,
		PayDelayDays:            1,
		BusinessDayAdjustment:   market.ModifiedFollowing,
		RollConvention:          market.BackwardEOM,
		Market:                 calendar.TARGET,
		Calendar:                 calendar.FromID(calendar.TARGET),
		ResetPosition:           market.ResetInArrears,
		RateCutoffDays:          1,
		IncludeInitialPrincipal: true,
		IncludeFinalPrincipal:   true,
	}

	EURIBOR3MFloating = market.LegConvention{
		LegType:                 market.LegFloating,
		ReferenceRate:           market.EURIBOR3M,
		DayCount:                market.Act360,
		ResetFrequency:          market.FreqQuarterly,
		PayFrequency:            market.FreqQuarterly,
		FixingLagDays:           2,
		PayDelayDays:            0,
		BusinessDayAdjustment:   market.ModifiedFollowing,
		RollConvention:          market.BackwardEOM,
		Market:                 calendar.TARGET,
		Calendar:                 calendar.FromID(calendar.TARGET),
		ResetPosition:           market.ResetInAdvance,
		IncludeInitialPrincipal: true,
		IncludeFinalPrincipal:   true,
		ScheduleDirection:       market.ScheduleBackward,
	}

	EURIBOR6MFloating = market.LegConvention{
		LegType:                 market.LegFloating,
		ReferenceRate:           market.EURIBOR6M,
		DayCount:                market.Act360,
		ResetFrequency:          market.FreqSemi,
		PayFrequency:            market.FreqSemi,
		FixingLagDays:           2,
		PayDelayDays:            0,
		BusinessDayAdjustment:   market.ModifiedFollowing,
		RollConvention:          market.BackwardEOM,
		Market:                 calendar.TARGET,
		Calendar:                 calendar.FromID(calendar.TARGET),
		ResetPosition:           market.ResetInAdvance,
		IncludeInitialPrincipal: true,
		IncludeFinalPrincipal:   true,
		ScheduleDirection:       market.ScheduleBackward,
	}

	TONARFloating = market.LegConvention{
		LegType:                 market.LegFloating,
		ReferenceRate:           market.TONAR,
		DayCount:                market.Act365F,
		ResetFrequency:          market.FreqDaily,
		PayFrequency:            market.FreqAnnual,
		FixingLagDays:           2,
		PayDelayDays:            0,
		BusinessDayAdjustment:   market.ModifiedFollowing,
		RollConvention:          market.BackwardEOM,
		Market:                 calendar.JPN,
		Calendar:                 calendar.FromID(calendar.JPN),
		ResetPosition:           market.ResetInArrears,
		RateCutoffDays:          1,
		IncludeInitialPrincipal: true,
		IncludeFinalPrincipal:   true,
	}

	TIBOR3MFloating = market.LegConvention{
		LegType:                 market.LegFloating,
		ReferenceRate:           market.TIBOR3M,
		DayCount:                market.Act365F,
		ResetFrequency:          market.FreqQuarterly,
		PayFrequency:            market.FreqQuarterly,
		FixingLagDays:           2,
		PayDelayDays:            2,
		BusinessDayAdjustment:   market.ModifiedFollowing,
		RollConvention:          market.BackwardEOM,
		Market:                 calendar.JPN,
		Calendar:                 calendar.FromID(calendar.JPN),
		ResetPosition:           market.ResetInAdvance,
		IncludeInitialPrincipal: true,
		IncludeFinalPrincipal:   true,
	}

	TIBOR6MFloating = market.LegConvention{
		LegType:                 market.LegFloating,
		ReferenceRate:           market.TIBOR6M,
		DayCount:                market.Act365F,
		ResetFrequency:          market.FreqSemi,
		PayFrequency:            market.FreqSemi,
		FixingLagDays:           2,
		PayDelayDays:            2,
		BusinessDayAdjustment:   market.ModifiedFollowing,
		RollConvention:          market.BackwardEOM,
		Market:                 calendar.JPN,
		Calendar:                 calendar.FromID(calendar.JPN),
		ResetPosition:           market.ResetInAdvance,
		IncludeInitialPrincipal: true,
		IncludeFinalPrincipal:   true,
	}

	// SOFRFloating is the USD overnight leg: daily compounding in arrears,
	// ACT/360, annual payment, Fedwire-style calendar.
	SOFRFloating = market.LegConvention{
		LegType:                 market.LegFloating,
		ReferenceRate:           market.SOFR,
		DayCount:                market.Act360,
		ResetFrequency:          market.FreqDaily,
		PayFrequency:            market.FreqAnnual,
		FixingLagDays:           2,
		PayDelayDays:            2,
		BusinessDayAdjustment:   market.ModifiedFollowing,
		RollConvention:          market.BackwardEOM,
		Market:                 calendar.FD,
		Calendar:                 calendar.FromID(calendar.FD),
		ResetPosition:           market.ResetInArrears,
		RateCutoffDays:          2,
		IncludeInitialPrincipal: true,
		IncludeFinalPrincipal:   true,
	}

	// KRXCD91DFloating is the KRW CD91 floating leg cleared on KRX: quarterly
	// reset/pay on the 91-day CD fixing, KOR calendar.
	KRXCD91DFloating = market.LegConvention{
		LegType:                 market.LegFloating,
		ReferenceRate:           market.CD91D,
		DayCount:                market.Act365F,
		ResetFrequency:          market.FreqQuarterly,
		PayFrequency:            market.FreqQuarterly,
		FixingLagDays:           1,
		PayDelayDays:            0,
		BusinessDayAdjustment:   market.ModifiedFollowing,
		RollConvention:          market.BackwardEOM,
		Market:                 calendar.KR,
		Calendar:                 calendar.FromID(calendar.KR),
		ResetPosition:           market.ResetInAdvance,
		IncludeInitialPrincipal: true,
		IncludeFinalPrincipal:   true,
	}

	// EURIBORFixed is the EUR IBOR IRS fixed leg: annual payments, 30/360,
	// TARGET calendar, schedule rolled backward from maturity.
	EURIBORFixed = market.LegConvention{
		LegType:               market.LegFixed,
		DayCount:              market.Dc30360,
		PayFrequency:          market.FreqAnnual,
		FixingLagDays:         0,
		PayDelayDays:          2,
		BusinessDayAdjustment: market.ModifiedFollowing,
		RollConvention:        market.BackwardEOM,
		Market:                 calendar.TARGET,
		Calendar:                 calendar.FromID(calendar.TARGET),
		ScheduleDirection:     market.ScheduleBackward,
	}

	// TIBORFixed is the JPY TIBOR IRS fixed leg: semiannual payments,
	// ACT/365F, JPN calendar.
	TIBORFixed = market.LegConvention{
		LegType:               market.LegFixed,
		DayCount:              market.Act365F,
		PayFrequency:          market.FreqSemi,
		FixingLagDays:         0,
		PayDelayDays:          0,
		BusinessDayAdjustment: market.ModifiedFollowing,
		RollConvention:        market.BackwardEOM,
		Market:                 calendar.JPN,
		Calendar:                 calendar.FromID(calendar.JPN),
	}

	// ESTRFixed is the EUR OIS fixed leg: annual payments, ACT/360, TARGET calendar.
	ESTRFixed = market.LegConvention{
		LegType:               market.LegFixed,
		ReferenceRate:         market.ESTR,
		DayCount:              market.Act360,
		PayFrequency:          market.FreqAnnual,
		FixingLagDays:         0,
		PayDelayDays:          1,
		BusinessDayAdjustment: market.ModifiedFollowing,
		RollConvention:        market.BackwardEOM,
		Market:                 calendar.TARGET,
		Calendar:                 calendar.FromID(calendar.TARGET),
	}

	// TONARFixed is the JPY OIS fixed leg: annual payments, ACT/365F, JPN calendar.
	TONARFixed = market.LegConvention{
		LegType:               market.LegFixed,
		ReferenceRate:         market.TONAR,
		DayCount:              market.Act365F,
		PayFrequency:          market.FreqAnnual,
		FixingLagDays:         0,
		PayDelayDays:          2,
		BusinessDayAdjustment: market.ModifiedFollowing,
		RollConvention:        market.BackwardEOM,
		Market:                 calendar.JPN,
		Calendar:                 calendar.FromID(calendar.JPN),
	}

	// SOFRFixed is the USD OIS fixed leg: annual payments, ACT/360, Fedwire calendar.
	SOFRFixed = market.LegConvention{
		LegType:               market.LegFixed,
		ReferenceRate:         market.SOFR,
		DayCount:              market.Act360,
		PayFrequency:          market.FreqAnnual,
		FixingLagDays:         0,
		PayDelayDays:          2,
		BusinessDayAdjustment: market.ModifiedFollowing,
		RollConvention:        market.BackwardEOM,
		Market:                 calendar.FD,
		Calendar:                 calendar.FromID(calendar.FD),
	}
)

// Preset basis structures for common EUR and JPY basis trades.
var (
	// EUR IRS-style basis: pay EURIBOR 6M, receive EURIBOR 3M, discount on ESTR OIS.
	// Naming omits redundant currency prefixes: the EUR nature is clear
	// from the EURIBOR / ESTR indices themselves.
	BasisEuribor3M6MEstr = BasisPreset{
		PayLeg:      EURIBOR6MFloating,
		RecLeg:      EURIBOR3MFloating,
		DiscountOIS: ESTRFloating,
	}

	// JPY basis: pay TIBOR 6M, receive TIBOR 3M, discount on TONAR OIS.
	// Likewise, the currency is implied by the TIBOR / TONAR indices,
	// so the name focuses only on the indices.
	BasisTibor3M6MTonar = BasisPreset{
		PayLeg:      TIBOR6MFloating,
		RecLeg:      TIBOR3MFloating,
		DiscountOIS: TONARFloating,
	}

	// EUR IRS: fixed vs EURIBOR 3M, discounted on ESTR OIS.
	IrsEuribor3MEstr = IRSPreset{
		FixedLeg:    EURIBORFixed,
		FloatLeg:    EURIBOR3MFloating,
		DiscountOIS: ESTRFloating,
	}

	// EUR IRS: fixed vs EURIBOR 6M, discounted on ESTR OIS.
	IrsEuribor6MEstr = IRSPreset{
		FixedLeg:    EURIBORFixed,
		FloatLeg:    EURIBOR6MFloating,
		DiscountOIS: ESTRFloating,
	}

	// JPY IRS: fixed vs TIBOR 3M, discounted on TONAR OIS.
	IrsTibor3MTonar = IRSPreset{
		FixedLeg:    TIBORFixed,
		FloatLeg:    TIBOR3MFloating,
		DiscountOIS: TONARFloating,
	}

	// JPY IRS: fixed vs TIBOR 6M, discounted on TONAR OIS.
	IrsTibor6MTonar = IRSPreset{
		FixedLeg:    TIBORFixed,
		FloatLeg:    TIBOR6MFloating,
		DiscountOIS: TONARFloating,
	}

	// EUR OIS: fixed vs ESTR.
	OisEstr = OISPreset{
		FixedLeg: ESTRFixed,
		FloatLeg: ESTRFloating,
	}

	// JPY OIS: fixed vs TONAR.
	OisTonar = OISPreset{
		FixedLeg: TONARFixed,
		FloatLeg: TONARFloating,
	}
)
