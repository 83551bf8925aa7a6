package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mwaheed/tradepilot/internal/backend"
	"github.com/mwaheed/tradepilot/internal/config"
	"github.com/mwaheed/tradepilot/internal/logger"
	"github.com/mwaheed/tradepilot/internal/portfolio"
	"github.com/mwaheed/tradepilot/internal/storage"
)

// Reconciler is the read/refresh surface the handlers use.
type Reconciler interface {
	Refresh(ctx context.Context, forceLive bool) (*portfolio.View, error)
	Current() *portfolio.View
}

// Workflow is the mutating surface the handlers use.
type Workflow interface {
	Decide(ctx context.Context, id int64, decision backend.Decision) error
	AddHolding(ctx context.Context, req backend.AddHoldingRequest) error
	SellHolding(ctx context.Context, req backend.SellRequest) error
	UpdateNotes(ctx context.Context, symbol, notes string) error
	UpdateSettings(ctx context.Context, update backend.SettingsUpdate) error
	RunTradeCycleNow(ctx context.Context) error
}

type Server struct {
	httpServer *http.Server
	reconciler Reconciler
	workflow   Workflow
	repo       *storage.Repository
	config     *config.Config
	logger     *logger.Logger
}

func NewServer(rec Reconciler, wf Workflow, repo *storage.Repository, cfg *config.Config, log *logger.Logger) *Server {
	s := &Server{
		reconciler: rec,
		workflow:   wf,
		repo:       repo,
		config:     cfg,
		logger:     log,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/view", s.handleView)
	mux.HandleFunc("POST /api/refresh", s.handleRefresh)
	mux.HandleFunc("POST /api/trade-cycle", s.handleTradeCycle)
	mux.HandleFunc("POST /api/recommendations/{id}/{decision}", s.handleDecision)
	mux.HandleFunc("POST /api/holdings/add", s.handleAddHolding)
	mux.HandleFunc("POST /api/holdings/sell", s.handleSellHolding)
	mux.HandleFunc("POST /api/holdings/notes", s.handleUpdateNotes)
	mux.HandleFunc("POST /api/settings", s.handleUpdateSettings)
	mux.HandleFunc("GET /api/history", s.handleHistory)
	mux.HandleFunc("GET /api/health", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Web.Port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s
}

// Handler exposes the route table; the tests drive it directly.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) Start() error {
	s.logger.Info("web server starting", "port", s.config.Web.Port)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("web server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
