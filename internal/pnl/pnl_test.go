package pnl

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mwaheed/tradepilot/internal/backend"
)

func f(v float64) *float64 { return &v }

func TestHoldingPnl(t *testing.T) {
	tests := []struct {
		name        string
		holding     backend.Holding
		wantPnl     float64
		wantPercent float64
	}{
		{
			name:        "gain",
			holding:     backend.Holding{Quantity: 10, AvgCost: 100, CurrentPrice: 120},
			wantPnl:     200,
			wantPercent: 20,
		},
		{
			name:        "loss",
			holding:     backend.Holding{Quantity: 5, AvgCost: 50, CurrentPrice: 40},
			wantPnl:     -50,
			wantPercent: -20,
		},
		{
			name:        "zero cost basis yields zero percent",
			holding:     backend.Holding{Quantity: 3, AvgCost: 0, CurrentPrice: 10},
			wantPnl:     30,
			wantPercent: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.wantPnl, HoldingPnl(tt.holding), 1e-9)
			assert.InDelta(t, tt.wantPercent, HoldingPnlPercent(tt.holding), 1e-9)
		})
	}
}

func TestUnrealizedMatchesPerHoldingSum(t *testing.T) {
	holdings := []backend.Holding{
		{Quantity: 10, AvgCost: 100, CurrentPrice: 120},
		{Quantity: 5, AvgCost: 50, CurrentPrice: 40},
		{Quantity: 7, AvgCost: 30, CurrentPrice: 30},
	}

	var sum float64
	for _, h := range holdings {
		sum += HoldingPnl(h)
	}
	assert.InDelta(t, sum, Unrealized(holdings), 1e-9)
}

func TestUnrealizedEmpty(t *testing.T) {
	assert.Zero(t, Unrealized(nil))
	assert.Zero(t, Unrealized([]backend.Holding{}))
}

func TestRealizedIgnoresOpenLegs(t *testing.T) {
	trades := []backend.Trade{
		{Symbol: "HBL", Pnl: f(100)},
		{Symbol: "OGDC", Pnl: nil},
		{Symbol: "TRG", Pnl: f(-30)},
	}
	assert.InDelta(t, 70, Realized(trades), 1e-9)
}

func TestRealizedEmpty(t *testing.T) {
	assert.Zero(t, Realized(nil))
}

func TestOverallReturnPercent(t *testing.T) {
	tests := []struct {
		name    string
		summary backend.Summary
		want    float64
	}{
		{"gain", backend.Summary{TotalValue: 110000, InitialCapital: 100000}, 10},
		{"loss", backend.Summary{TotalValue: 90000, InitialCapital: 100000}, -10},
		{"zero capital", backend.Summary{TotalValue: 5000, InitialCapital: 0}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, OverallReturnPercent(tt.summary), 1e-9)
		})
	}
}

func TestAllocationPercent(t *testing.T) {
	h := backend.Holding{MarketValue: 2500}
	assert.InDelta(t, 25, AllocationPercent(h, 10000), 1e-9)
	assert.Zero(t, AllocationPercent(h, 0))
}
