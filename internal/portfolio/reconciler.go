// Package portfolio owns the one in-memory portfolio view the rest of the
// system reads. The view is only ever replaced wholesale by the Reconciler;
// everything handed out is treated as read-only.
package portfolio

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mwaheed/tradepilot/internal/backend"
	"github.com/mwaheed/tradepilot/internal/logger"
	"github.com/mwaheed/tradepilot/internal/storage"
)

// Backend is the slice of the trading backend the reconciler reads from.
type Backend interface {
	Portfolio(ctx context.Context, refreshPrices bool) (*backend.Snapshot, error)
	Notifications(ctx context.Context) ([]backend.Notification, error)
	TradeHistory(ctx context.Context) ([]backend.Trade, error)
	Recommendations(ctx context.Context) ([]backend.Recommendation, error)
}

// ReadErrors carries the outcome of the three attachment reads. Each read
// fails independently; one failing never blocks the others.
type ReadErrors struct {
	Activity        error
	Trades          error
	Recommendations error
}

// View is the reconciled portfolio state plus its attachments.
type View struct {
	Snapshot        *backend.Snapshot
	Activity        []backend.Notification
	Trades          []backend.Trade
	Recommendations []backend.Recommendation
	ReadErrors      ReadErrors
	UpdatedAt       time.Time
}

const (
	sourceCached = "cached"
	sourceLive   = "live"
)

type Reconciler struct {
	backend Backend
	repo    *storage.Repository // optional audit trail, may be nil
	logger  *logger.Logger

	// seq is assigned to every portfolio fetch at issue time. A response is
	// only applied if its sequence is above the highest applied so far, so a
	// slow stale response can never overwrite fresher data.
	seq atomic.Uint64

	mu         sync.RWMutex
	view       *View
	appliedSeq uint64
}

func NewReconciler(b Backend, repo *storage.Repository, log *logger.Logger) *Reconciler {
	return &Reconciler{backend: b, repo: repo, logger: log}
}

// Current returns the latest view, or nil before the first successful
// refresh.
func (r *Reconciler) Current() *View {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.view
}

// Refresh fetches the portfolio and its attachments and replaces the view.
//
// With forceLive=false the snapshot is fetched with the backend's cached
// prices and returned immediately; a second fetch with live prices is then
// started in the background and applied when it completes. With
// forceLive=true only the live fetch happens, with no background phase; use
// it after any mutation, where the recomputed aggregates matter.
func (r *Reconciler) Refresh(ctx context.Context, forceLive bool) (*View, error) {
	seq := r.seq.Add(1)

	src := sourceCached
	if forceLive {
		src = sourceLive
	}

	snap, err := r.backend.Portfolio(ctx, forceLive)
	if err != nil {
		// The fast-path failure belongs to the caller, but the live refresh
		// is still attempted so the view can recover on its own.
		if !forceLive {
			go r.liveRefresh(context.WithoutCancel(ctx))
		}
		return nil, fmt.Errorf("portfolio fetch: %w", err)
	}

	notes, trades, recs, readErrs := r.fetchAttachments(ctx)
	view := r.applyView(snap, seq, src, notes, trades, recs, readErrs)

	if !forceLive {
		go r.liveRefresh(context.WithoutCancel(ctx))
	}
	return view, nil
}

// liveRefresh is the background second phase of a cached-path refresh. It
// replaces only the snapshot; attachments stay as the foreground fetch left
// them.
func (r *Reconciler) liveRefresh(ctx context.Context) {
	seq := r.seq.Add(1)
	snap, err := r.backend.Portfolio(ctx, true)
	if err != nil {
		r.logger.Error("background live-price refresh", "error", err)
		return
	}
	r.applySnapshot(snap, seq, sourceLive)
}

// fetchAttachments performs the three independent reads in parallel.
func (r *Reconciler) fetchAttachments(ctx context.Context) (notes []backend.Notification, trades []backend.Trade, recs []backend.Recommendation, readErrs ReadErrors) {
	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		notes, readErrs.Activity = r.backend.Notifications(ctx)
	}()
	go func() {
		defer wg.Done()
		trades, readErrs.Trades = r.backend.TradeHistory(ctx)
	}()
	go func() {
		defer wg.Done()
		recs, readErrs.Recommendations = r.backend.Recommendations(ctx)
	}()
	wg.Wait()

	if readErrs.Activity != nil {
		r.logger.Error("fetch notifications", "error", readErrs.Activity)
	}
	if readErrs.Trades != nil {
		r.logger.Error("fetch trade history", "error", readErrs.Trades)
	}
	if readErrs.Recommendations != nil {
		r.logger.Error("fetch recommendations", "error", readErrs.Recommendations)
	}
	return notes, trades, recs, readErrs
}

// applyView installs a full view. The attachments always replace the old
// ones; the snapshot is subject to the sequence guard, so if a later-issued
// fetch already applied, its fresher snapshot is kept.
func (r *Reconciler) applyView(snap *backend.Snapshot, seq uint64, src string, notes []backend.Notification, trades []backend.Trade, recs []backend.Recommendation, readErrs ReadErrors) *View {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := &View{
		Snapshot:        snap,
		Activity:        notes,
		Trades:          trades,
		Recommendations: recs,
		ReadErrors:      readErrs,
		UpdatedAt:       time.Now(),
	}

	if seq > r.appliedSeq {
		r.appliedSeq = seq
		r.record(snap, seq, src)
	} else if r.view != nil && r.view.Snapshot != nil {
		r.logger.Debug("discarding stale portfolio snapshot", "seq", seq, "applied", r.appliedSeq)
		next.Snapshot = r.view.Snapshot
	}

	r.view = next
	return next
}

// applySnapshot replaces only the snapshot of the current view, keeping the
// attachments. Stale responses are discarded.
func (r *Reconciler) applySnapshot(snap *backend.Snapshot, seq uint64, src string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if seq <= r.appliedSeq {
		r.logger.Debug("discarding stale portfolio snapshot", "seq", seq, "applied", r.appliedSeq)
		return false
	}
	r.appliedSeq = seq

	next := &View{
		Snapshot:  snap,
		UpdatedAt: time.Now(),
	}
	if r.view != nil {
		next.Activity = r.view.Activity
		next.Trades = r.view.Trades
		next.Recommendations = r.view.Recommendations
		next.ReadErrors = r.view.ReadErrors
	}
	r.view = next
	r.record(snap, seq, src)
	return true
}

func (r *Reconciler) record(snap *backend.Snapshot, seq uint64, src string) {
	if r.repo == nil {
		return
	}
	rec := &storage.SnapshotRecord{
		TotalValue:    snap.Summary.TotalValue,
		CashBalance:   snap.Summary.CashBalance,
		HoldingsCount: len(snap.Holdings),
		Source:        src,
		Sequence:      seq,
	}
	if err := r.repo.SaveSnapshotRecord(rec); err != nil {
		r.logger.Error("save snapshot record", "error", err)
	}
}
