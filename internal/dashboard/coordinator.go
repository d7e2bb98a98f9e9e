package dashboard

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/oli5bo5/supabase-crypto-dashboard/internal/model"
)

// TableSource provides top-N snapshots of the watched table.
type TableSource interface {
	TopByMarketCap(ctx context.Context, limit int) ([]model.PriceRecord, error)
}

// FeedSource provides the polled live price list.
type FeedSource interface {
	TopMarkets(ctx context.Context) ([]model.PriceRecord, error)
}

// FeedSourceFunc is a function adapter for FeedSource.
type FeedSourceFunc func(ctx context.Context) ([]model.PriceRecord, error)

func (f FeedSourceFunc) TopMarkets(ctx context.Context) ([]model.PriceRecord, error) {
	return f(ctx)
}

// Config holds coordinator configuration.
type Config struct {
	PollInterval time.Duration // Feed poll period (default: 30s)
	PageSize     int           // Table snapshot size (default: 20)
	FetchTimeout time.Duration // Per-request timeout (default: 10s)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		PollInterval: 30 * time.Second,
		PageSize:     20,
		FetchTimeout: 10 * time.Second,
	}
}

// Coordinator owns the refresh state: it fetches table snapshots on demand,
// polls the price feed on a fixed interval, and resolves both into the single
// list handed to the rendering layer. Last write wins on both sources; the
// data is a read-only display cache, so that race is accepted.
type Coordinator struct {
	cfg    Config
	table  TableSource
	feed   FeedSource
	logger *slog.Logger

	mu    sync.RWMutex
	state model.RefreshState

	notify chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new Coordinator.
func New(cfg Config, table TableSource, feed FeedSource, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = DefaultConfig().PollInterval
	}
	if cfg.PageSize == 0 {
		cfg.PageSize = DefaultConfig().PageSize
	}
	if cfg.FetchTimeout == 0 {
		cfg.FetchTimeout = DefaultConfig().FetchTimeout
	}
	return &Coordinator{
		cfg:    cfg,
		table:  table,
		feed:   feed,
		logger: logger,
		notify: make(chan struct{}, 1),
	}
}

// Start triggers an immediate table fetch and begins the poll and
// notification loops.
func (c *Coordinator) Start(ctx context.Context) error {
	c.ctx, c.cancel = context.WithCancel(ctx)

	c.wg.Add(2)
	go c.pollLoop()
	go c.notifyLoop()

	// Immediate snapshot on startup.
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.RefreshTable()
	}()

	c.logger.Info("refresh coordinator started",
		"poll_interval", c.cfg.PollInterval,
		"page_size", c.cfg.PageSize,
	)

	return nil
}

// Stop shuts down the coordinator. In-flight requests are not interrupted
// mid-read but their results are discarded rather than applied.
func (c *Coordinator) Stop(ctx context.Context) error {
	if c.cancel != nil {
		c.cancel()
	}

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		c.logger.Info("refresh coordinator stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Notify requests a table re-fetch. Called for every change notification, no
// matter which row changed: the coordinator never diffs event payloads, it
// always re-pulls the full snapshot. Bursts collapse into one pending
// refresh, which observes all of their effects anyway.
func (c *Coordinator) Notify() {
	select {
	case c.notify <- struct{}{}:
	default:
	}
}

// State returns a copy of the current refresh state. The record slices are
// shared but treated as immutable: refreshes replace them, never mutate.
func (c *Coordinator) State() model.RefreshState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// DisplayList returns the resolved display list (live records when any poll
// has completed, table snapshot otherwise).
func (c *Coordinator) DisplayList() []model.PriceRecord {
	return c.State().DisplayList()
}

// RefreshTable fetches one table snapshot. On success the snapshot replaces
// the previous one and clears the last error; on failure the previous
// snapshot is kept and the error message is surfaced. The loading flag is
// cleared in all cases.
func (c *Coordinator) RefreshTable() {
	ctx, cancelReq := context.WithTimeout(c.ctx, c.cfg.FetchTimeout)
	defer cancelReq()

	c.mu.Lock()
	c.state.Loading = true
	c.mu.Unlock()

	records, err := c.table.TopByMarketCap(ctx, c.cfg.PageSize)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Loading = false

	// A response that completes after Stop must not touch state.
	if c.ctx.Err() != nil {
		return
	}

	if err != nil {
		c.state.LastError = err.Error()
		c.logger.Warn("table snapshot failed", "error", err)
		return
	}

	if records == nil {
		records = []model.PriceRecord{}
	}
	c.state.TableRecords = records
	c.state.LastError = ""

	c.logger.Debug("table snapshot applied", "rows", len(records))
}

// pollLoop polls the feed on a fixed interval, starting immediately.
func (c *Coordinator) pollLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	c.pollOnce()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.pollOnce()
		}
	}
}

// pollOnce issues one feed request. A failure keeps the previous live list
// and is retried silently on the next tick.
func (c *Coordinator) pollOnce() {
	ctx, cancelReq := context.WithTimeout(c.ctx, c.cfg.FetchTimeout)
	defer cancelReq()

	records, err := c.feed.TopMarkets(ctx)
	if err != nil {
		c.logger.Warn("feed poll failed, keeping last result", "error", err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ctx.Err() != nil {
		return
	}

	if records == nil {
		records = []model.PriceRecord{}
	}
	c.state.LiveRecords = records
	c.state.LivePresent = true

	c.logger.Debug("feed poll applied", "rows", len(records))
}

// notifyLoop serializes notification-driven refreshes.
func (c *Coordinator) notifyLoop() {
	defer c.wg.Done()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-c.notify:
			c.RefreshTable()
		}
	}
}
