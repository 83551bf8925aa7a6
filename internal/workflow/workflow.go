// Package workflow carries the user-initiated actions: recommendation
// decisions, manual holding changes and settings updates. Every mutation is a
// backend call followed by one forced live-price reconciliation, so the view
// is always recomputed against the backend's state rather than patched from
// the mutation's return value. Failed mutations never trigger a refresh.
package workflow

import (
	"context"
	"fmt"

	"github.com/mwaheed/tradepilot/internal/backend"
	"github.com/mwaheed/tradepilot/internal/logger"
	"github.com/mwaheed/tradepilot/internal/portfolio"
	"github.com/mwaheed/tradepilot/internal/telegram"
)

// Backend is the mutating slice of the trading backend.
type Backend interface {
	DecideRecommendation(ctx context.Context, id int64, decision backend.Decision) error
	AddHolding(ctx context.Context, req backend.AddHoldingRequest) error
	SellHolding(ctx context.Context, req backend.SellRequest) error
	UpdateNotes(ctx context.Context, symbol, notes string) error
	UpdateSettings(ctx context.Context, update backend.SettingsUpdate) error
	TriggerTradingCycle(ctx context.Context) error
}

// Refresher is the reconciler surface the workflow drives.
type Refresher interface {
	Refresh(ctx context.Context, forceLive bool) (*portfolio.View, error)
	Current() *portfolio.View
}

type Workflow struct {
	backend    Backend
	reconciler Refresher
	notifier   *telegram.Notifier
	logger     *logger.Logger
}

func New(b Backend, rec Refresher, notifier *telegram.Notifier, log *logger.Logger) *Workflow {
	return &Workflow{
		backend:    b,
		reconciler: rec,
		notifier:   notifier,
		logger:     log,
	}
}

// Decide approves or denies a pending recommendation. The item is not removed
// locally: the backend owns recommendation state, and the follow-up refresh
// fetches whatever is still pending. A recommendation that was already
// actioned or never existed surfaces as backend.ErrNotFound, with no refresh
// and no local change.
func (w *Workflow) Decide(ctx context.Context, id int64, decision backend.Decision) error {
	if decision != backend.Approve && decision != backend.Deny {
		return fmt.Errorf("unknown decision %q: %w", decision, backend.ErrValidation)
	}

	rec, known := w.pendingByID(id)

	if err := w.backend.DecideRecommendation(ctx, id, decision); err != nil {
		return fmt.Errorf("decide recommendation %d: %w", id, err)
	}

	w.logger.Info("recommendation decided", "id", id, "decision", string(decision))
	if known {
		w.notifier.NotifyDecision(rec, decision)
	}

	w.refresh(ctx)
	return nil
}

func (w *Workflow) AddHolding(ctx context.Context, req backend.AddHoldingRequest) error {
	if req.Quantity <= 0 {
		return fmt.Errorf("quantity must be positive: %w", backend.ErrValidation)
	}
	if req.Price <= 0 {
		return fmt.Errorf("price must be positive: %w", backend.ErrValidation)
	}

	if err := w.backend.AddHolding(ctx, req); err != nil {
		return fmt.Errorf("add holding %s: %w", req.Symbol, err)
	}

	w.logger.Info("holding added manually", "symbol", req.Symbol, "quantity", req.Quantity, "price", req.Price)
	w.notifier.NotifyManualTrade("BUY", req.Symbol, req.Quantity, req.Price)

	w.refresh(ctx)
	return nil
}

func (w *Workflow) SellHolding(ctx context.Context, req backend.SellRequest) error {
	if req.Quantity <= 0 {
		return fmt.Errorf("quantity must be positive: %w", backend.ErrValidation)
	}
	if req.Price <= 0 {
		return fmt.Errorf("price must be positive: %w", backend.ErrValidation)
	}

	if err := w.backend.SellHolding(ctx, req); err != nil {
		return fmt.Errorf("sell holding %s: %w", req.Symbol, err)
	}

	w.logger.Info("holding sold manually", "symbol", req.Symbol, "quantity", req.Quantity, "price", req.Price)
	w.notifier.NotifyManualTrade("SELL", req.Symbol, req.Quantity, req.Price)

	w.refresh(ctx)
	return nil
}

func (w *Workflow) UpdateNotes(ctx context.Context, symbol, notes string) error {
	if err := w.backend.UpdateNotes(ctx, symbol, notes); err != nil {
		return fmt.Errorf("update notes for %s: %w", symbol, err)
	}

	w.refresh(ctx)
	return nil
}

func (w *Workflow) UpdateSettings(ctx context.Context, update backend.SettingsUpdate) error {
	if update.PollingIntervalMinutes != nil && *update.PollingIntervalMinutes <= 0 {
		return fmt.Errorf("polling interval must be positive: %w", backend.ErrValidation)
	}

	if err := w.backend.UpdateSettings(ctx, update); err != nil {
		return fmt.Errorf("update settings: %w", err)
	}

	w.refresh(ctx)
	return nil
}

// RunTradeCycleNow triggers an on-demand trading cycle and reconciles
// afterwards via the fast path, the same as the dashboard's manual button.
func (w *Workflow) RunTradeCycleNow(ctx context.Context) error {
	if err := w.backend.TriggerTradingCycle(ctx); err != nil {
		return fmt.Errorf("trigger trading cycle: %w", err)
	}

	if _, err := w.reconciler.Refresh(ctx, false); err != nil {
		w.logger.Error("refresh after trade cycle", "error", err)
	}
	return nil
}

// refresh runs the post-mutation reconciliation. The mutation has already
// succeeded at this point, so a refresh failure is logged rather than
// returned; the next poll or user action picks the state up again.
func (w *Workflow) refresh(ctx context.Context) {
	if _, err := w.reconciler.Refresh(ctx, true); err != nil {
		w.logger.Error("refresh after mutation", "error", err)
	}
}

// pendingByID looks the recommendation up in the current view so the
// notification can describe it; the decision itself never depends on local
// state.
func (w *Workflow) pendingByID(id int64) (backend.Recommendation, bool) {
	view := w.reconciler.Current()
	if view == nil {
		return backend.Recommendation{}, false
	}
	for _, rec := range view.Recommendations {
		if rec.ID == id {
			return rec, true
		}
	}
	return backend.Recommendation{}, false
}
