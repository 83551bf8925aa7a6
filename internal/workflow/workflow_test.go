package workflow

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwaheed/tradepilot/internal/backend"
	"github.com/mwaheed/tradepilot/internal/config"
	"github.com/mwaheed/tradepilot/internal/logger"
	"github.com/mwaheed/tradepilot/internal/portfolio"
	"github.com/mwaheed/tradepilot/internal/telegram"
)

type fakeBackend struct {
	decideErr error
	addErr    error
	sellErr   error
	notesErr  error
	settErr   error
	cycleErr  error

	decided []backend.Decision
	added   []backend.AddHoldingRequest
	sold    []backend.SellRequest
	cycles  int
}

func (f *fakeBackend) DecideRecommendation(_ context.Context, _ int64, d backend.Decision) error {
	if f.decideErr != nil {
		return f.decideErr
	}
	f.decided = append(f.decided, d)
	return nil
}

func (f *fakeBackend) AddHolding(_ context.Context, req backend.AddHoldingRequest) error {
	if f.addErr != nil {
		return f.addErr
	}
	f.added = append(f.added, req)
	return nil
}

func (f *fakeBackend) SellHolding(_ context.Context, req backend.SellRequest) error {
	if f.sellErr != nil {
		return f.sellErr
	}
	f.sold = append(f.sold, req)
	return nil
}

func (f *fakeBackend) UpdateNotes(_ context.Context, _, _ string) error {
	return f.notesErr
}

func (f *fakeBackend) UpdateSettings(_ context.Context, _ backend.SettingsUpdate) error {
	return f.settErr
}

func (f *fakeBackend) TriggerTradingCycle(_ context.Context) error {
	f.cycles++
	return f.cycleErr
}

type fakeRefresher struct {
	refreshes []bool // forceLive argument per Refresh call
	view      *portfolio.View
}

func (f *fakeRefresher) Refresh(_ context.Context, forceLive bool) (*portfolio.View, error) {
	f.refreshes = append(f.refreshes, forceLive)
	return f.view, nil
}

func (f *fakeRefresher) Current() *portfolio.View { return f.view }

func newTestWorkflow(fb *fakeBackend, fr *fakeRefresher) *Workflow {
	log := logger.New("error")
	return New(fb, fr, telegram.NewNotifier(&config.Config{}, log), log)
}

func pendingView() *portfolio.View {
	return &portfolio.View{
		Recommendations: []backend.Recommendation{
			{ID: 42, Symbol: "HBL", Action: "BUY", Quantity: 10, Price: 95.5, Status: "PENDING"},
		},
	}
}

func TestDecideApproveTriggersSingleForcedRefresh(t *testing.T) {
	fb := &fakeBackend{}
	fr := &fakeRefresher{view: pendingView()}
	w := newTestWorkflow(fb, fr)

	err := w.Decide(context.Background(), 42, backend.Approve)
	require.NoError(t, err)

	assert.Equal(t, []backend.Decision{backend.Approve}, fb.decided)
	assert.Equal(t, []bool{true}, fr.refreshes, "exactly one forced-live refresh per decision")
}

func TestDecideNotFoundLeavesQueueAndSkipsRefresh(t *testing.T) {
	fb := &fakeBackend{decideErr: backend.ErrNotFound}
	fr := &fakeRefresher{view: pendingView()}
	w := newTestWorkflow(fb, fr)

	err := w.Decide(context.Background(), 99, backend.Deny)
	require.Error(t, err)
	assert.ErrorIs(t, err, backend.ErrNotFound)

	assert.Empty(t, fr.refreshes, "a failed decision must not trigger a refresh")
	assert.Len(t, fr.Current().Recommendations, 1, "the pending queue is untouched on failure")
}

func TestDecideRejectsUnknownDecision(t *testing.T) {
	fb := &fakeBackend{}
	fr := &fakeRefresher{view: pendingView()}
	w := newTestWorkflow(fb, fr)

	err := w.Decide(context.Background(), 42, backend.Decision("maybe"))
	require.Error(t, err)
	assert.ErrorIs(t, err, backend.ErrValidation)
	assert.Empty(t, fb.decided)
	assert.Empty(t, fr.refreshes)
}

func TestAddHoldingValidation(t *testing.T) {
	tests := []struct {
		name string
		req  backend.AddHoldingRequest
	}{
		{"zero quantity", backend.AddHoldingRequest{Symbol: "TRG", Quantity: 0, Price: 50}},
		{"negative quantity", backend.AddHoldingRequest{Symbol: "TRG", Quantity: -5, Price: 50}},
		{"zero price", backend.AddHoldingRequest{Symbol: "TRG", Quantity: 5, Price: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := &fakeBackend{}
			fr := &fakeRefresher{}
			w := newTestWorkflow(fb, fr)

			err := w.AddHolding(context.Background(), tt.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, backend.ErrValidation)
			assert.Empty(t, fb.added)
			assert.Empty(t, fr.refreshes)
		})
	}
}

func TestAddHoldingSuccessRefreshesLive(t *testing.T) {
	fb := &fakeBackend{}
	fr := &fakeRefresher{}
	w := newTestWorkflow(fb, fr)

	req := backend.AddHoldingRequest{
		Symbol:      "TRG",
		Quantity:    10,
		Price:       54.2,
		PurchasedAt: time.Now(),
		Reasoning:   "strong earnings expected",
	}
	require.NoError(t, w.AddHolding(context.Background(), req))

	require.Len(t, fb.added, 1)
	assert.Equal(t, []bool{true}, fr.refreshes)
}

func TestSellHoldingFailureSkipsRefresh(t *testing.T) {
	fb := &fakeBackend{sellErr: backend.ErrUnavailable}
	fr := &fakeRefresher{}
	w := newTestWorkflow(fb, fr)

	err := w.SellHolding(context.Background(), backend.SellRequest{Symbol: "HBL", Quantity: 5, Price: 90})
	require.Error(t, err)
	assert.ErrorIs(t, err, backend.ErrUnavailable)
	assert.Empty(t, fr.refreshes)
}

func TestUpdateNotesRefreshesLive(t *testing.T) {
	fb := &fakeBackend{}
	fr := &fakeRefresher{}
	w := newTestWorkflow(fb, fr)

	require.NoError(t, w.UpdateNotes(context.Background(), "HBL", "hold until 30% profit"))
	assert.Equal(t, []bool{true}, fr.refreshes)
}

func TestUpdateSettingsRejectsNonPositiveInterval(t *testing.T) {
	fb := &fakeBackend{}
	fr := &fakeRefresher{}
	w := newTestWorkflow(fb, fr)

	interval := 0
	err := w.UpdateSettings(context.Background(), backend.SettingsUpdate{PollingIntervalMinutes: &interval})
	require.Error(t, err)
	assert.ErrorIs(t, err, backend.ErrValidation)
	assert.Empty(t, fr.refreshes)
}

func TestRunTradeCycleNow(t *testing.T) {
	fb := &fakeBackend{}
	fr := &fakeRefresher{}
	w := newTestWorkflow(fb, fr)

	require.NoError(t, w.RunTradeCycleNow(context.Background()))
	assert.Equal(t, 1, fb.cycles)
	assert.Equal(t, []bool{false}, fr.refreshes, "the on-demand cycle reconciles via the fast path")
}

func TestRunTradeCycleNowFailureSkipsRefresh(t *testing.T) {
	fb := &fakeBackend{cycleErr: backend.ErrUnavailable}
	fr := &fakeRefresher{}
	w := newTestWorkflow(fb, fr)

	err := w.RunTradeCycleNow(context.Background())
	require.Error(t, err)
	assert.Empty(t, fr.refreshes)
}
