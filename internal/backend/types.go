package backend

import "time"

// Settings is the assistant configuration stored on the backend.
type Settings struct {
	PollingIntervalMinutes int     `json:"polling_interval"`
	AutonomousMode         bool    `json:"autonomous_mode"`
	CashBalance            float64 `json:"ai_cash_balance"`
	InitialCapital         float64 `json:"initial_ai_capital"`
	DailyTradeBudget       float64 `json:"daily_trade_budget"`
}

// SettingsUpdate is a partial settings mutation; nil fields are left untouched.
type SettingsUpdate struct {
	PollingIntervalMinutes *int     `json:"polling_interval,omitempty"`
	AutonomousMode         *bool    `json:"autonomous_mode,omitempty"`
	CashBalance            *float64 `json:"ai_cash_balance,omitempty"`
	DailyTradeBudget       *float64 `json:"daily_trade_budget,omitempty"`
}

type Holding struct {
	Symbol       string    `json:"symbol"`
	Quantity     int64     `json:"quantity"`
	AvgCost      float64   `json:"avg_cost"`
	CurrentPrice float64   `json:"current_price"`
	MarketValue  float64   `json:"market_value"`
	PurchasedAt  time.Time `json:"purchased_at"`
	LastDecision string    `json:"last_decision"` // NONE, HOLD, SELL, BUY_MORE
	LastReason   string    `json:"last_reason"`
	UserNotes    string    `json:"user_reasoning"`
}

type Summary struct {
	TotalValue     float64 `json:"total_value"`
	HoldingsValue  float64 `json:"holdings_value"`
	CashBalance    float64 `json:"cash_balance"`
	UnrealizedPnl  float64 `json:"total_pnl"`
	RealizedPnl    float64 `json:"realized_pnl"`
	InitialCapital float64 `json:"initial_capital"`
}

// Snapshot is a complete, internally consistent portfolio state. It is always
// replaced wholesale, never patched field by field, so the summary describes
// exactly the holdings it was computed with.
type Snapshot struct {
	Holdings []Holding `json:"holdings"`
	Summary  Summary   `json:"summary"`
}

type Recommendation struct {
	ID        int64     `json:"id"`
	Symbol    string    `json:"symbol"`
	Action    string    `json:"action"` // BUY or SELL
	Quantity  int64     `json:"quantity"`
	Price     float64   `json:"price"`
	Reason    string    `json:"reason"`
	Status    string    `json:"status"` // PENDING, APPROVED, DENIED
	CreatedAt time.Time `json:"timestamp"`
}

// Decision is the human verdict on a pending recommendation.
type Decision string

const (
	Approve Decision = "approve"
	Deny    Decision = "deny"
)

type Notification struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"` // TRADE, ALERT, INFO, SYSTEM
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Trade is one leg of the assistant's trade history. Pnl is nil for open/buy
// legs; only entries with a non-nil Pnl count toward realized P&L.
type Trade struct {
	Symbol    string    `json:"symbol"`
	Action    string    `json:"action"`
	Quantity  int64     `json:"quantity"`
	Price     float64   `json:"price"`
	Pnl       *float64  `json:"pnl"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

type AddHoldingRequest struct {
	Symbol      string    `json:"symbol"`
	Quantity    int64     `json:"quantity"`
	Price       float64   `json:"price"`
	PurchasedAt time.Time `json:"date"`
	Reasoning   string    `json:"reasoning"`
}

type SellRequest struct {
	Symbol   string  `json:"symbol"`
	Quantity int64   `json:"quantity"`
	Price    float64 `json:"price"`
	Reason   string  `json:"reason"`
}
