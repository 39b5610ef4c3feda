package market

import (
	"time"

	"github.com/meenmo/ficclib/calendar"
)

// LegType distinguishes floating vs fixed.
type LegType string

const (
	LegFloating LegType = "FLOATING"
	LegFixed    LegType = "FIXED"
)

// Frequency enumerates payment/reset frequencies in months.
type Frequency int

const (
	FreqAnnual    Frequency = 12
	FreqSemi      Frequency = 6
	FreqQuarterly Frequency = 3
	FreqMonthly   Frequency = 1
	FreqDaily     Frequency = 0
)

// BusinessDayAdjustment roll convention; re-exports calendar.BDAConvention
// so leg conventions and schedule generation share one enum.
type BusinessDayAdjustment = calendar.BDAConvention

const (
	NoAdjustment      = calendar.NoAdjustment
	Following         = calendar.Following
	ModifiedFollowing = calendar.ModifiedFollowing
	Preceding         = calendar.Preceding
	ModifiedPreceding = calendar.ModifiedPreceding
)

// StubType classifies the irregular period produced when effective/maturity
// do not land exactly on the regular payment grid.
type StubType string

const (
	StubNone         StubType = "NO_STUB"
	StubShortInitial StubType = "SHORT_INITIAL"
	StubLongInitial  StubType = "LONG_INITIAL"
	StubShortFinal   StubType = "SHORT_FINAL"
	StubLongFinal    StubType = "LONG_FINAL"
)

// RollConvention for month-end handling.
type RollConvention string

const (
	Backward    RollConvention = "BACKWARD"
	BackwardEOM RollConvention = "BACKWARD_EOM"
)

// ResetPosition indicates fixing timing.
type ResetPosition string

const (
	ResetInAdvance ResetPosition = "IN_ADVANCE"
	ResetInArrears ResetPosition = "IN_ARREARS"
)

// ScheduleDirection indicates whether periods are generated forward from effective
// or backward from maturity (Bloomberg SWPM convention for IBOR swaps).
type ScheduleDirection string

const (
	ScheduleForward  ScheduleDirection = "FORWARD"  // Roll from effective date (default)
	ScheduleBackward ScheduleDirection = "BACKWARD" // Roll from maturity date (Bloomberg convention)
)

// DayCount names a day-count convention; values are looked up in the
// daycount registry (package daycount), keeping one canonical
// implementation per convention instead of re-deriving year fractions here.
type DayCount string

const (
	Act360    DayCount = "ACT/360"
	Act365    DayCount = "ACT/365F"
	Act365F   DayCount = "ACT/365F"
	Act360A   DayCount = "ACT/360A"
	Dc30360   DayCount = "30U/360"
	Dc30E360  DayCount = "30E/360"
	Dc30U360  DayCount = "30U/360"
	ActActISDA DayCount = "ACT/ACT-ISDA"
)

// LegConvention captures standard swap leg settings.
type LegConvention struct {
	LegType                 LegType
	ReferenceRate           ReferenceIndex
	DayCount                DayCount
	ResetFrequency          Frequency
	PayFrequency            Frequency
	FixingLagDays           int
	PayDelayDays            int
	BusinessDayAdjustment   BusinessDayAdjustment
	RollConvention          RollConvention
	// Market tags the currency/convention this leg belongs to (used to select
	// day-count and pay-delay rules during curve bootstrap). It carries no
	// holiday data; Calendar is the injected business-day capability.
	Market                  calendar.CalendarID
	Calendar                calendar.Calendar
	FixingCalendar          calendar.Calendar
	ResetPosition           ResetPosition
	RateCutoffDays          int
	IncludeInitialPrincipal bool
	IncludeFinalPrincipal   bool
	ScheduleDirection       ScheduleDirection // FORWARD (default) or BACKWARD (Bloomberg convention)
	Stub                    StubType
}

// SwapSpec describes a two-leg interest rate swap trade.
type SwapSpec struct {
	Notional       float64
	EffectiveDate  time.Time
	MaturityDate   time.Time
	PayLeg         LegConvention
	RecLeg         LegConvention
	DiscountingOIS LegConvention
	PayLegSpreadBP float64
	RecLegSpreadBP float64
	// DiscountCouponsFromSpot divides every future coupon's discount factor
	// by DF(ref->effective_date) before computing PV, used alongside
	// IncludeInitialPrincipal/IncludeFinalPrincipal for a spot-based NPV
	// presentation.
	DiscountCouponsFromSpot bool
}
