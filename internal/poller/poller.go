// Package poller drives the autonomous analysis/trading cadence. It reads the
// backend settings once at startup and then ticks at the configured interval;
// a live settings change takes effect on the next daemon start.
package poller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mwaheed/tradepilot/internal/backend"
	"github.com/mwaheed/tradepilot/internal/logger"
	"github.com/mwaheed/tradepilot/internal/storage"
	"github.com/mwaheed/tradepilot/internal/telegram"
)

// ErrInitialization means the settings fetch failed at startup; no timer was
// armed and the poller is a no-op.
var ErrInitialization = errors.New("poller initialization failed")

// DefaultInterval applies when the configured polling interval is absent or
// non-positive.
const DefaultInterval = 5 * time.Minute

// Backend is the slice of the trading backend the poller drives.
type Backend interface {
	Settings(ctx context.Context) (*backend.Settings, error)
	TriggerNewsAnalysis(ctx context.Context) error
	TriggerTradingCycle(ctx context.Context) error
}

type Poller struct {
	backend  Backend
	repo     *storage.Repository // optional audit trail, may be nil
	notifier *telegram.Notifier
	logger   *logger.Logger

	settings *backend.Settings
}

func New(b Backend, repo *storage.Repository, notifier *telegram.Notifier, log *logger.Logger) *Poller {
	return &Poller{
		backend:  b,
		repo:     repo,
		notifier: notifier,
		logger:   log,
	}
}

// Run fetches the settings, runs one cycle immediately, then ticks until ctx
// is cancelled. If the settings fetch fails, nothing is armed and
// ErrInitialization is returned; the rest of the system keeps working without
// a scheduler. Cancellation suppresses further ticks but does not abort a
// cycle already in flight.
func (p *Poller) Run(ctx context.Context) error {
	settings, err := p.backend.Settings(ctx)
	if err != nil {
		return fmt.Errorf("%w: fetch settings: %v", ErrInitialization, err)
	}
	p.settings = settings

	interval := IntervalFor(settings)
	p.logger.Info("poller started",
		"interval", interval.String(),
		"autonomous_mode", settings.AutonomousMode)

	// Run immediately on start
	p.runCycle(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("poller stopped")
			return nil
		case <-ticker.C:
			p.runCycle(ctx)
		}
	}
}

// IntervalFor converts the configured cadence to a duration, falling back to
// DefaultInterval for absent or non-positive values.
func IntervalFor(s *backend.Settings) time.Duration {
	if s == nil || s.PollingIntervalMinutes <= 0 {
		return DefaultInterval
	}
	return time.Duration(s.PollingIntervalMinutes) * time.Minute
}

// runCycle performs one poll: news analysis, then the trading cycle. Errors
// are contained here; a failed cycle never stops the ticker, and nothing is
// retried until the next tick.
func (p *Poller) runCycle(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("panic in poll cycle", "panic", fmt.Sprint(r))
			p.notifier.NotifyCycleError("cycle", fmt.Errorf("%v", r))
		}
	}()

	if !p.settings.AutonomousMode {
		p.logger.Debug("autonomous mode disabled, skipping cycle")
		p.saveCycleLog("skipped", "autonomous mode disabled", nil)
		return
	}

	p.logger.Info("starting poll cycle")

	if err := p.backend.TriggerNewsAnalysis(ctx); err != nil {
		p.logger.Error("trigger news analysis", "error", err)
		p.notifier.NotifyCycleError("news analysis", err)
		p.saveCycleLog("error", "news analysis", err)
		return
	}

	if err := p.backend.TriggerTradingCycle(ctx); err != nil {
		p.logger.Error("trigger trading cycle", "error", err)
		p.notifier.NotifyCycleError("trading cycle", err)
		p.saveCycleLog("error", "trading cycle", err)
		return
	}

	p.saveCycleLog("ok", "analysis and trading cycle triggered", nil)
	p.logger.Info("poll cycle completed")
}

func (p *Poller) saveCycleLog(status, detail string, err error) {
	if p.repo == nil {
		return
	}
	log := &storage.CycleLog{
		Status: status,
		Detail: detail,
	}
	if err != nil {
		log.Error = err.Error()
	}
	if dbErr := p.repo.SaveCycleLog(log); dbErr != nil {
		p.logger.Error("save cycle log", "error", dbErr)
	}
}
