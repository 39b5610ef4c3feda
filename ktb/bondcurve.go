package ktb

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/meenmo/ficclib/rootfind"
	"github.com/meenmo/ficclib/utils"
)

// CashBondQuote pairs a bond with its observed dirty price, used as input to
// DiscountFactorsFromCashBonds.
type CashBondQuote struct {
	Bond       Bond
	DirtyPrice float64
}

// DiscountFactorsFromCashBonds bootstraps discount factors directly off a
// set of cash bond dirty prices, per §4.G: for each bond sorted by its last
// cashflow date, PV = const_pv_from_known_dfs + last_flow·df_T +
// Σ intermediate_contributions (log-linear in df_T between the nearest known
// df below and the unknown df_T). Solves df_T ∈ (1e-10, 1) by bisection.
// Bonds whose cashflows have no known earlier df are deferred and retried in
// the next pass; an error is raised if a full pass makes no progress.
func DiscountFactorsFromCashBonds(valuationDate time.Time, quotes []CashBondQuote) (map[time.Time]float64, error) {
	if len(quotes) == 0 {
		return nil, fmt.Errorf("DiscountFactorsFromCashBonds: quotes must not be empty")
	}

	df := make(map[time.Time]float64)
	df[valuationDate] = 1.0

	pending := make([]CashBondQuote, len(quotes))
	copy(pending, quotes)
	sort.SliceStable(pending, func(i, j int) bool {
		fi, fj := pending[i].Bond.CashFlows(), pending[j].Bond.CashFlows()
		if len(fi) == 0 || len(fj) == 0 {
			return len(fi) < len(fj)
		}
		return fi[len(fi)-1].Date.Before(fj[len(fj)-1].Date)
	})

	for len(pending) > 0 {
		progressed := false
		var stillPending []CashBondQuote

		for _, q := range pending {
			flows := q.Bond.CashFlows()
			var future []Cashflow
			for _, cf := range flows {
				if cf.Date.After(valuationDate) {
					future = append(future, cf)
				}
			}
			if len(future) == 0 {
				progressed = true
				continue
			}

			lastDate := future[len(future)-1].Date
			lastAmount := future[len(future)-1].Amount

			constPV := 0.0
			type term struct {
				amount  float64
				dateT   time.Time
				knownLo time.Time
			}
			var unresolved []term
			missingKnown := false

			for _, cf := range future[:len(future)-1] {
				if d, ok := df[cf.Date]; ok {
					constPV += cf.Amount * d
					continue
				}
				lo, haveLo := nearestKnownBelow(df, cf.Date)
				if !haveLo {
					missingKnown = true
					break
				}
				unresolved = append(unresolved, term{amount: cf.Amount, dateT: cf.Date, knownLo: lo})
			}

			if missingKnown {
				stillPending = append(stillPending, q)
				continue
			}

			if _, haveLoForLast := nearestKnownBelow(df, lastDate); !haveLoForLast {
				stillPending = append(stillPending, q)
				continue
			}

			f := func(dfT float64) float64 {
				pv := constPV
				for _, u := range unresolved {
					pv += u.amount * logLinearDFBetween(valuationDate, u.knownLo, df[u.knownLo], lastDate, dfT, u.dateT)
				}
				pv += lastAmount * dfT
				return pv - q.DirtyPrice
			}

			res, err := rootfind.Bisect(f, 1e-10, 1.0, 1e-10, 100)
			if err != nil {
				return nil, fmt.Errorf("DiscountFactorsFromCashBonds: maturity %s: %w", lastDate.Format("2006-01-02"), err)
			}
			df[lastDate] = res.Root
			progressed = true
		}

		if !progressed && len(stillPending) > 0 {
			return nil, fmt.Errorf("DiscountFactorsFromCashBonds: no progress on %d bond(s), missing earlier pillars", len(stillPending))
		}
		pending = stillPending
	}

	return df, nil
}

func nearestKnownBelow(df map[time.Time]float64, t time.Time) (time.Time, bool) {
	var best time.Time
	found := false
	for d := range df {
		if d.Before(t) && (!found || d.After(best)) {
			best = d
			found = true
		}
	}
	return best, found
}

// logLinearDFBetween interpolates the discount factor at target, given a
// known df at lo and an unknown df (dfHiVal) at hi, log-linear in time.
func logLinearDFBetween(settlement, lo time.Time, dfLo float64, hi time.Time, dfHiVal float64, target time.Time) float64 {
	tLo := utils.Days(settlement, lo) / daysInYear
	tHi := utils.Days(settlement, hi) / daysInYear
	tTarget := utils.Days(settlement, target) / daysInYear
	if tHi == tLo {
		return dfLo
	}
	w := (tTarget - tLo) / (tHi - tLo)
	return dfLo * math.Pow(dfHiVal/dfLo, w)
}
