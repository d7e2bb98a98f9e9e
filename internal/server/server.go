// Package server exposes the resolved dashboard over HTTP for rendering
// clients. It is a pure read of the coordinator's state plus one manual
// refresh affordance.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/oli5bo5/supabase-crypto-dashboard/internal/display"
	"github.com/oli5bo5/supabase-crypto-dashboard/internal/model"
	"github.com/oli5bo5/supabase-crypto-dashboard/internal/version"
)

// Dashboard is the coordinator surface the server reads from.
type Dashboard interface {
	State() model.RefreshState
	Notify()
}

// Config holds HTTP server configuration.
type Config struct {
	Port         int
	AllowOrigins []string
}

// Server serves the dashboard API.
type Server struct {
	cfg        Config
	dash       Dashboard
	subscribed func() bool
	logger     *slog.Logger

	engine *gin.Engine
	http   *http.Server
}

// New creates a Server. subscribed reports realtime subscription health and
// may be nil when no subscription was established.
func New(cfg Config, dash Dashboard, subscribed func() bool, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		cfg:        cfg,
		dash:       dash,
		subscribed: subscribed,
		logger:     logger,
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowOrigins = cfg.AllowOrigins
	corsCfg.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	engine.Use(cors.New(corsCfg))

	engine.GET("/api/dashboard", s.handleDashboard)
	engine.POST("/api/refresh", s.handleRefresh)
	engine.GET("/healthz", s.handleHealth)

	s.engine = engine
	s.http = &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: engine,
	}

	return s
}

// Handler returns the underlying HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until the listener fails or Shutdown is called.
func (s *Server) Run() error {
	s.logger.Info("dashboard server listening", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// rowView is one rendered dashboard row.
type rowView struct {
	Rank             int           `json:"rank"`
	ID               string        `json:"id"`
	Name             string        `json:"name"`
	Symbol           string        `json:"symbol"`
	ImageURL         string        `json:"image_url,omitempty"`
	Price            float64       `json:"price"`
	PriceDisplay     string        `json:"price_display"`
	MarketCap        float64       `json:"market_cap"`
	MarketCapDisplay string        `json:"market_cap_display"`
	Change24h        float64       `json:"change_24h"`
	Change           display.Badge `json:"change"`
}

// dashboardResponse is the payload of GET /api/dashboard.
type dashboardResponse struct {
	Status string    `json:"status"` // "ok", "loading" or "error"
	Error  string    `json:"error,omitempty"`
	Source string    `json:"source"` // "live" or "table"
	Rows   []rowView `json:"rows"`
}

// handleDashboard returns the resolved display list plus status. An error
// takes precedence over data: the client renders a dedicated error panel
// instead of the table. The loading status only shows while there is nothing
// to display yet.
func (s *Server) handleDashboard(c *gin.Context) {
	state := s.dash.State()
	list := state.DisplayList()

	resp := dashboardResponse{
		Status: "ok",
		Source: "table",
		Rows:   make([]rowView, 0, len(list)),
	}
	if state.LivePresent {
		resp.Source = "live"
	}

	switch {
	case state.LastError != "":
		resp.Status = "error"
		resp.Error = state.LastError
		c.JSON(http.StatusOK, resp)
		return
	case state.Loading && len(list) == 0:
		resp.Status = "loading"
	}

	for i, rec := range list {
		resp.Rows = append(resp.Rows, rowView{
			Rank:             i + 1,
			ID:               rec.ID,
			Name:             rec.Name,
			Symbol:           rec.Symbol,
			ImageURL:         rec.ImageURL,
			Price:            rec.Price,
			PriceDisplay:     display.Price(rec.Price),
			MarketCap:        rec.MarketCap,
			MarketCapDisplay: display.MarketCap(rec.MarketCap),
			Change24h:        rec.Change24h,
			Change:           display.Change(rec.Change24h),
		})
	}

	c.JSON(http.StatusOK, resp)
}

// handleRefresh requests a table re-fetch, same as a change notification.
func (s *Server) handleRefresh(c *gin.Context) {
	s.dash.Notify()
	c.JSON(http.StatusAccepted, gin.H{"status": "refresh requested"})
}

// handleHealth reports component health. A dead realtime subscription
// degrades the status but does not fail it: the poll path still works.
func (s *Server) handleHealth(c *gin.Context) {
	state := s.dash.State()

	status := "healthy"
	subscription := "connected"
	if s.subscribed == nil || !s.subscribed() {
		status = "degraded"
		subscription = "disconnected"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  status,
		"version": version.Version,
		"components": gin.H{
			"subscription": subscription,
			"table_rows":   len(state.TableRecords),
			"live_present": state.LivePresent,
		},
	})
}
