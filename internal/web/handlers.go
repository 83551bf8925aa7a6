package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/mwaheed/tradepilot/internal/activity"
	"github.com/mwaheed/tradepilot/internal/backend"
	"github.com/mwaheed/tradepilot/internal/pnl"
	"github.com/mwaheed/tradepilot/internal/portfolio"
)

type holdingResponse struct {
	backend.Holding
	Pnl               float64 `json:"pnl"`
	PnlPercent        float64 `json:"pnl_percent"`
	AllocationPercent float64 `json:"allocation_percent"`
}

type summaryResponse struct {
	TotalValue           float64 `json:"total_value"`
	HoldingsValue        float64 `json:"holdings_value"`
	CashBalance          float64 `json:"cash_balance"`
	UnrealizedPnl        float64 `json:"unrealized_pnl"`
	RealizedPnl          float64 `json:"realized_pnl"`
	InitialCapital       float64 `json:"initial_capital"`
	OverallReturnPercent float64 `json:"overall_return_percent"`
}

type viewResponse struct {
	Summary         summaryResponse          `json:"summary"`
	Holdings        []holdingResponse        `json:"holdings"`
	Recommendations []backend.Recommendation `json:"recommendations"`
	Activity        []backend.Notification   `json:"activity"`
	PnlTrades       []backend.Trade          `json:"pnl_trades"`
	ReadErrors      map[string]string        `json:"read_errors,omitempty"`
	UpdatedAt       time.Time                `json:"updated_at"`
}

// handleView serves the reconciled dashboard state. The activity log is
// filtered by the `filter` and `days` query parameters.
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	mode, err := activity.ParseMode(r.URL.Query().Get("filter"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))

	view := s.reconciler.Current()
	if view == nil {
		view, err = s.reconciler.Refresh(r.Context(), false)
		if err != nil || view == nil {
			s.logger.Error("initial refresh", "error", err)
			writeMessage(w, http.StatusBadGateway, "portfolio unavailable")
			return
		}
	}

	writeJSON(w, http.StatusOK, buildViewResponse(view, mode, days, time.Now()))
}

func buildViewResponse(view *portfolio.View, mode activity.Mode, days int, now time.Time) viewResponse {
	resp := viewResponse{
		Recommendations: view.Recommendations,
		Activity:        activity.Filter(view.Activity, mode, days, now),
		UpdatedAt:       view.UpdatedAt,
	}

	if snap := view.Snapshot; snap != nil {
		resp.Summary = summaryResponse{
			TotalValue:           snap.Summary.TotalValue,
			HoldingsValue:        snap.Summary.HoldingsValue,
			CashBalance:          snap.Summary.CashBalance,
			UnrealizedPnl:        pnl.Unrealized(snap.Holdings),
			RealizedPnl:          pnl.Realized(view.Trades),
			InitialCapital:       snap.Summary.InitialCapital,
			OverallReturnPercent: pnl.OverallReturnPercent(snap.Summary),
		}
		resp.Holdings = make([]holdingResponse, 0, len(snap.Holdings))
		for _, h := range snap.Holdings {
			resp.Holdings = append(resp.Holdings, holdingResponse{
				Holding:           h,
				Pnl:               pnl.HoldingPnl(h),
				PnlPercent:        pnl.HoldingPnlPercent(h),
				AllocationPercent: pnl.AllocationPercent(h, snap.Summary.HoldingsValue),
			})
		}
	}

	// Only closed legs carry a P&L figure.
	resp.PnlTrades = make([]backend.Trade, 0, len(view.Trades))
	for _, t := range view.Trades {
		if t.Pnl != nil {
			resp.PnlTrades = append(resp.PnlTrades, t)
		}
	}

	resp.ReadErrors = readErrorMap(view.ReadErrors)
	return resp
}

func readErrorMap(errs portfolio.ReadErrors) map[string]string {
	m := make(map[string]string)
	if errs.Activity != nil {
		m["activity"] = errs.Activity.Error()
	}
	if errs.Trades != nil {
		m["trades"] = errs.Trades.Error()
	}
	if errs.Recommendations != nil {
		m["recommendations"] = errs.Recommendations.Error()
	}
	if len(m) == 0 {
		return nil
	}
	return m
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if _, err := s.reconciler.Refresh(r.Context(), true); err != nil {
		s.writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "refreshed")
}

func (s *Server) handleTradeCycle(w http.ResponseWriter, r *http.Request) {
	if err := s.workflow.RunTradeCycleNow(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "trading cycle triggered")
}

func (s *Server) handleDecision(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid recommendation id")
		return
	}

	var decision backend.Decision
	switch r.PathValue("decision") {
	case "approve":
		decision = backend.Approve
	case "deny":
		decision = backend.Deny
	default:
		writeMessage(w, http.StatusBadRequest, "decision must be approve or deny")
		return
	}

	if err := s.workflow.Decide(r.Context(), id, decision); err != nil {
		s.writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "decision recorded")
}

func (s *Server) handleAddHolding(w http.ResponseWriter, r *http.Request) {
	var req backend.AddHoldingRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.workflow.AddHolding(r.Context(), req); err != nil {
		s.writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "holding added")
}

func (s *Server) handleSellHolding(w http.ResponseWriter, r *http.Request) {
	var req backend.SellRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.workflow.SellHolding(r.Context(), req); err != nil {
		s.writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "holding sold")
}

func (s *Server) handleUpdateNotes(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Symbol string `json:"symbol"`
		Notes  string `json:"notes"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.workflow.UpdateNotes(r.Context(), req.Symbol, req.Notes); err != nil {
		s.writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "notes updated")
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var update backend.SettingsUpdate
	if !decodeBody(w, r, &update) {
		return
	}
	if err := s.workflow.UpdateSettings(r.Context(), update); err != nil {
		s.writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "settings updated")
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.repo == nil {
		writeJSON(w, http.StatusOK, []struct{}{})
		return
	}
	records, err := s.repo.SnapshotHistory(200)
	if err != nil {
		s.logger.Error("snapshot history", "error", err)
		writeMessage(w, http.StatusInternalServerError, "history unavailable")
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeMessage(w, http.StatusOK, "ok")
}

// writeError maps the backend error taxonomy to HTTP statuses with a
// human-readable reason.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, backend.ErrNotFound):
		writeMessage(w, http.StatusNotFound, err.Error())
	case errors.Is(err, backend.ErrValidation):
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, backend.ErrUnavailable):
		writeMessage(w, http.StatusBadGateway, err.Error())
	default:
		s.logger.Error("request failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, err.Error())
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}
