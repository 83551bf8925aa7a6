package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/mwaheed/tradepilot/internal/config"
	"github.com/mwaheed/tradepilot/internal/logger"
)

var (
	// ErrUnavailable means the backend could not be reached at all.
	ErrUnavailable = errors.New("trading backend unavailable")
	// ErrNotFound means the referenced recommendation or holding does not
	// exist, or was already actioned.
	ErrNotFound = errors.New("not found")
	// ErrValidation means the backend rejected the mutation input.
	ErrValidation = errors.New("validation failed")
)

// Client talks to the remote trading backend. All analysis and trading logic
// lives on the backend side; this client only triggers it and reads state.
type Client struct {
	http   *resty.Client
	logger *logger.Logger
}

func NewClient(cfg *config.Config, log *logger.Logger) *Client {
	c := resty.New()
	c.SetBaseURL(cfg.Backend.BaseURL)
	c.SetTimeout(cfg.BackendTimeout())
	c.SetHeader("Accept", "application/json")

	return &Client{http: c, logger: log}
}

func (c *Client) Settings(ctx context.Context) (*Settings, error) {
	s := &Settings{}
	if err := c.get(ctx, "/settings", nil, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (c *Client) UpdateSettings(ctx context.Context, update SettingsUpdate) error {
	return c.post(ctx, "/settings", update)
}

func (c *Client) TriggerNewsAnalysis(ctx context.Context) error {
	return c.post(ctx, "/autonomous/analyze-news", nil)
}

func (c *Client) TriggerTradingCycle(ctx context.Context) error {
	return c.post(ctx, "/autonomous/trade", nil)
}

// Portfolio fetches the current snapshot. refreshPrices=false is the fast
// path using the backend's cached prices; refreshPrices=true forces a live
// market price lookup and is noticeably slower.
func (c *Client) Portfolio(ctx context.Context, refreshPrices bool) (*Snapshot, error) {
	snap := &Snapshot{}
	query := map[string]string{"refresh_prices": fmt.Sprintf("%t", refreshPrices)}
	if err := c.get(ctx, "/autonomous/portfolio", query, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

func (c *Client) Notifications(ctx context.Context) ([]Notification, error) {
	var notes []Notification
	if err := c.get(ctx, "/autonomous/notifications", nil, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

func (c *Client) TradeHistory(ctx context.Context) ([]Trade, error) {
	var trades []Trade
	if err := c.get(ctx, "/autonomous/trade-history", nil, &trades); err != nil {
		return nil, err
	}
	return trades, nil
}

// Recommendations returns the pending queue. The backend owns recommendation
// state: approved and denied items no longer appear here, so the client never
// has to remove actioned items itself.
func (c *Client) Recommendations(ctx context.Context) ([]Recommendation, error) {
	var recs []Recommendation
	if err := c.get(ctx, "/autonomous/recommendations", nil, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

func (c *Client) DecideRecommendation(ctx context.Context, id int64, decision Decision) error {
	return c.post(ctx, fmt.Sprintf("/autonomous/recommendations/%d/%s", id, decision), nil)
}

func (c *Client) AddHolding(ctx context.Context, req AddHoldingRequest) error {
	return c.post(ctx, "/autonomous/holdings/add", req)
}

func (c *Client) SellHolding(ctx context.Context, req SellRequest) error {
	return c.post(ctx, "/autonomous/holdings/sell", req)
}

func (c *Client) UpdateNotes(ctx context.Context, symbol, notes string) error {
	body := map[string]string{"symbol": symbol, "notes": notes}
	return c.post(ctx, "/autonomous/holdings/update-notes", body)
}

func (c *Client) get(ctx context.Context, path string, query map[string]string, out any) error {
	req := c.http.R().SetContext(ctx)
	if query != nil {
		req.SetQueryParams(query)
	}
	if out != nil {
		req.SetResult(out)
	}
	resp, err := req.Get(path)
	return c.check(path, resp, err)
}

func (c *Client) post(ctx context.Context, path string, body any) error {
	req := c.http.R().SetContext(ctx)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	resp, err := req.Post(path)
	return c.check(path, resp, err)
}

func (c *Client) check(path string, resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("%s: %w: %v", path, ErrUnavailable, err)
	}
	if resp.IsSuccess() {
		return nil
	}

	switch resp.StatusCode() {
	case http.StatusNotFound:
		return fmt.Errorf("%s: %w", path, ErrNotFound)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		detail := strings.TrimSpace(resp.String())
		if detail == "" {
			detail = resp.Status()
		}
		return fmt.Errorf("%s: %s: %w", path, detail, ErrValidation)
	default:
		return fmt.Errorf("%s: unexpected status %d", path, resp.StatusCode())
	}
}
