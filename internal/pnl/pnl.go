// Package pnl derives profit-and-loss figures from raw holding and trade
// data. Everything here is a pure function over its arguments.
package pnl

import "github.com/mwaheed/tradepilot/internal/backend"

// HoldingPnl is the paper profit on one open position.
func HoldingPnl(h backend.Holding) float64 {
	return (h.CurrentPrice - h.AvgCost) * float64(h.Quantity)
}

func HoldingPnlPercent(h backend.Holding) float64 {
	if h.AvgCost <= 0 {
		return 0
	}
	return (h.CurrentPrice/h.AvgCost - 1) * 100
}

// Unrealized sums the paper profit across all open positions.
func Unrealized(holdings []backend.Holding) float64 {
	var total float64
	for _, h := range holdings {
		total += HoldingPnl(h)
	}
	return total
}

// Realized sums locked-in profit over closed trades. Entries with a nil Pnl
// are open or buy legs and do not count.
func Realized(trades []backend.Trade) float64 {
	var total float64
	for _, t := range trades {
		if t.Pnl != nil {
			total += *t.Pnl
		}
	}
	return total
}

func OverallReturnPercent(s backend.Summary) float64 {
	if s.InitialCapital <= 0 {
		return 0
	}
	return (s.TotalValue/s.InitialCapital - 1) * 100
}

// AllocationPercent is the holding's share of the total holdings value
// (cash excluded).
func AllocationPercent(h backend.Holding, holdingsValue float64) float64 {
	if holdingsValue <= 0 {
		return 0
	}
	return h.MarketValue / holdingsValue * 100
}
