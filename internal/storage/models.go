package storage

import "time"

// CycleLog records one poll-scheduler cycle, whether it ran, and how it ended.
type CycleLog struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	Status string `gorm:"not null" json:"status"` // ok, skipped, error
	Detail string `json:"detail"`
	Error  string `json:"error"`
}

// SnapshotRecord is one applied portfolio snapshot, kept as local history for
// the value-over-time view.
type SnapshotRecord struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	TotalValue    float64 `json:"total_value"`
	CashBalance   float64 `json:"cash_balance"`
	HoldingsCount int     `json:"holdings_count"`
	Source        string  `json:"source"` // cached or live
	Sequence      uint64  `json:"sequence"`
}
