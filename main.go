package main

import (
	"fmt"
	"time"

	"github.com/meenmo/ficclib/calendar"
	"github.com/meenmo/ficclib/instruments/swaps"
	"github.com/meenmo/ficclib/ktb"
	"github.com/meenmo/ficclib/marketdata/krx"
	"github.com/meenmo/ficclib/swap"
)

func main() {
	runSwapDemo()
	runKTBFuturesDemo()
}

// runSwapDemo prices a receive-fixed, 20Y TONAR OIS trade and reports NPV by leg.
func runSwapDemo() {
	curveDate := time.Date(2025, 11, 19, 0, 0, 0, 0, time.UTC)

	oisQuotes := map[string]float64{
		"1W":  2.5524458035,
		"1M":  2.7600000000,
		"3M":  2.7225000000,
		"6M":  2.7225000000,
		"1Y":  2.7225000000,
		"2Y":  2.8075000000,
		"3Y":  2.8882142857,
		"5Y":  3.0189285714,
		"10Y": 3.1578571429,
		"20Y": 3.0946428571,
	}

	tonarFixed := swaps.TONARFixed
	tonarFixed.IncludeInitialPrincipal = false
	tonarFixed.IncludeFinalPrincipal = false

	tonarFloat := swaps.TONARFloating
	tonarFloat.IncludeInitialPrincipal = false
	tonarFloat.IncludeFinalPrincipal = false

	trade, err := swap.InterestRateSwap(swap.InterestRateSwapParams{
		DataSource:        swap.DataSourceBGN,
		ClearingHouse:     swap.ClearingHouseOTC,
		CurveDate:         curveDate,
		TradeDate:         curveDate,
		ValuationDate:     curveDate,
		SwapTenorYears:    20,
		Notional:          10_000_000_000,
		PayLeg:            tonarFloat,
		RecLeg:            tonarFixed,
		DiscountingOIS:    tonarFloat,
		OISQuotes:         oisQuotes,
		PayLegQuotes:      oisQuotes,
		PayLegSpreadBP:    0,
		RecLegSpreadBP:    324,
	})
	if err != nil {
		fmt.Printf("swap demo failed: %v\n", err)
		return
	}

	pv, err := trade.PVByLeg()
	if err != nil {
		fmt.Printf("swap pricing failed: %v\n", err)
		return
	}

	fmt.Printf("Fixed leg PV: %.2f\n", pv.RecLegPV)
	fmt.Printf("Floating leg PV: %.2f\n", pv.PayLegPV)
	fmt.Printf("NPV: %.2f\n", pv.TotalPV)
}

// runKTBFuturesDemo computes the forward yield and basket fair value for a
// notional 10Y KTB futures contract off a two-bond CTD basket.
func runKTBFuturesDemo() {
	cal := calendar.FromID(calendar.KR)
	valuationDate := time.Date(2025, 10, 27, 0, 0, 0, 0, time.UTC)
	feed := krx.DefaultReferenceFeed()

	basket := []ktb.Underlying{
		{
			Bond: ktb.Bond{
				Issue:     time.Date(2022, 9, 10, 0, 0, 0, 0, time.UTC),
				Maturity:  time.Date(2035, 9, 10, 0, 0, 0, 0, time.UTC),
				CouponPct: 3.125,
			},
			MarketYield: 2.90,
		},
		{
			Bond: ktb.Bond{
				Issue:     time.Date(2023, 3, 10, 0, 0, 0, 0, time.UTC),
				Maturity:  time.Date(2036, 3, 10, 0, 0, 0, 0, time.UTC),
				CouponPct: 3.25,
			},
			MarketYield: 2.95,
		},
	}

	fv, err := ktb.FairValue(cal, valuationDate, 10, feed, basket)
	if err != nil {
		fmt.Printf("KTB futures fair value failed: %v\n", err)
		return
	}
	fmt.Printf("10Y KTB futures fair value: %.3f\n", fv)

	for _, u := range basket {
		res, err := ktb.ForwardYield(cal, valuationDate, u, feed)
		if err != nil {
			fmt.Printf("forward yield failed for bond maturing %s: %v\n", u.Bond.Maturity.Format("2006-01-02"), err)
			continue
		}
		fmt.Printf("CTD maturing %s: forward yield %.4f%% (expiry %s)\n",
			u.Bond.Maturity.Format("2006-01-02"), res.ForwardYield, res.FuturesExpiry.Format("2006-01-02"))
	}
}
