package calendar

import "time"

// ThirdTuesday finds the first Tuesday on or after the 15th of (year, month),
// rolling back to the previous business day if that Tuesday is not one.
func ThirdTuesday(cal Calendar, year int, month time.Month) time.Time {
	t := time.Date(year, month, 15, 0, 0, 0, 0, time.UTC)
	for t.Weekday() != time.Tuesday {
		t = t.AddDate(0, 0, 1)
	}
	if !cal.IsBusinessDay(t) {
		return AdjustBDA(cal, t, Preceding)
	}
	return t
}

var quarterMonths = []time.Month{time.March, time.June, time.September, time.December}

func nextQuarterMonth(m time.Month) time.Month {
	for _, qm := range quarterMonths {
		if qm > m {
			return qm
		}
	}
	return quarterMonths[0]
}

func isQuarterMonth(m time.Month) bool {
	for _, qm := range quarterMonths {
		if qm == m {
			return true
		}
	}
	return false
}

// FuturesExpiries returns the (current, next) KTB-futures-style quarterly
// expiry dates (third Tuesday of Mar/Jun/Sep/Dec) relative to tradeDate. If
// tradeDate falls in a non-quarter month, or strictly after the current
// quarter's expiry, both returned expiries advance to the next two quarter
// months.
func FuturesExpiries(cal Calendar, tradeDate time.Time) (current, next time.Time) {
	year := tradeDate.Year()
	month := tradeDate.Month()

	var curMonth time.Month
	if isQuarterMonth(month) {
		curMonth = month
	} else {
		curMonth = nextQuarterMonth(month)
		if curMonth < month {
			year++
		}
	}
	current = ThirdTuesday(cal, year, curMonth)

	if isQuarterMonth(month) && tradeDate.After(current) {
		curMonth = nextQuarterMonth(month)
		curYear := year
		if curMonth < month {
			curYear++
		}
		current = ThirdTuesday(cal, curYear, curMonth)
		year = curYear
		month = curMonth
	}

	nextMonth := nextQuarterMonth(curMonth + 1)
	nextYear := year
	if nextMonth <= curMonth {
		nextYear++
	}
	next = ThirdTuesday(cal, nextYear, nextMonth)
	return current, next
}
