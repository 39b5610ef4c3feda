package calendar

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestSetWeekendIsNotBusinessDay(t *testing.T) {
	cal := NewSet(nil)
	if cal.IsBusinessDay(date(2026, 8, 1)) { // Saturday
		t.Fatal("Saturday should not be a business day")
	}
}

func TestSetHolidayIsNotBusinessDay(t *testing.T) {
	cal := NewSet([]time.Time{date(2026, 7, 30)})
	if cal.IsBusinessDay(date(2026, 7, 30)) {
		t.Fatal("injected holiday should not be a business day")
	}
	if !cal.IsBusinessDay(date(2026, 7, 29)) {
		t.Fatal("non-holiday weekday should be a business day")
	}
}

func TestAddBusinessDaysSkipsWeekend(t *testing.T) {
	cal := NewSet(nil)
	got := cal.AddBusinessDays(date(2026, 7, 30), 1) // Thursday -> Friday
	want := date(2026, 7, 31)
	if !got.Equal(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	got = cal.AddBusinessDays(date(2026, 7, 31), 1) // Friday -> Monday
	want = date(2026, 8, 3)
	if !got.Equal(want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestAdjustBDAModifiedFollowingRollsBack(t *testing.T) {
	cal := NewSet(nil)
	// 2026-10-31 is a Saturday, and month-end; following would cross into November.
	got := AdjustBDA(cal, date(2026, 10, 31), ModifiedFollowing)
	want := date(2026, 10, 30) // Friday
	if !got.Equal(want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestAdjustBDAFollowing(t *testing.T) {
	cal := NewSet(nil)
	got := AdjustBDA(cal, date(2026, 8, 29), Following)
	want := date(2026, 8, 31) // Monday
	if !got.Equal(want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestThirdTuesday(t *testing.T) {
	cal := NewSet(nil)
	got := ThirdTuesday(cal, 2026, time.March)
	if got.Weekday() != time.Tuesday || got.Day() < 15 || got.Day() > 21 {
		t.Fatalf("got %v, want a Tuesday in [15,21]", got)
	}
}

func TestFuturesExpiriesSkipsToNextTwoQuarters(t *testing.T) {
	cal := NewSet(nil)
	current, next := FuturesExpiries(cal, date(2026, 1, 15))
	if current.Month() != time.March {
		t.Fatalf("current month = %v, want March", current.Month())
	}
	if next.Month() != time.June {
		t.Fatalf("next month = %v, want June", next.Month())
	}
}
