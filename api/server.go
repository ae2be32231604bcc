// Package api serves the sentiment dashboard over HTTP.
//
// HTML routes follow post/redirect/get: forms post to /upload, /select,
// /feed and /reset, which update the caller's session and redirect back to
// the page. The same state is exposed as JSON under /api/v1, and a
// WebSocket at /ws tells other tabs of the session to refresh.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/seenimoa/sentidash/internal/config"
	"github.com/seenimoa/sentidash/internal/dashboard"
	"github.com/seenimoa/sentidash/internal/feed"
	"github.com/seenimoa/sentidash/internal/logging"
	"github.com/seenimoa/sentidash/internal/report"
	"github.com/seenimoa/sentidash/internal/sentiment"
	"github.com/seenimoa/sentidash/internal/session"
	"github.com/seenimoa/sentidash/pkg/utils"
	"github.com/seenimoa/sentidash/web"
)

// Server is the dashboard HTTP server.
type Server struct {
	router   chi.Router
	cfg      *config.Config
	log      *zap.Logger
	store    *session.Store
	renderer *report.Renderer
	report   report.ReportConfig
	fetcher  *feed.Fetcher
	wsHub    *WSHub
	upgrader *websocket.Upgrader
	version  string
	now      func() time.Time

	stopHub context.CancelFunc
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger; the default discards everything.
func WithLogger(l *zap.Logger) Option { return func(s *Server) { s.log = l } }

// WithFetcher replaces the feed fetcher built from config.
func WithFetcher(f *feed.Fetcher) Option { return func(s *Server) { s.fetcher = f } }

// WithClock replaces the time source used for report timestamps.
func WithClock(now func() time.Time) Option { return func(s *Server) { s.now = now } }

// WithVersion sets the version reported by /health.
func WithVersion(v string) Option { return func(s *Server) { s.version = v } }

// NewServer creates a configured server with all routes and middleware.
// Close releases the session janitor and the WebSocket hub.
func NewServer(cfg *config.Config, opts ...Option) (*Server, error) {
	s := &Server{
		cfg:     cfg,
		log:     zap.NewNop(),
		version: "dev",
		now:     time.Now,
		wsHub:   NewWSHub(),
	}
	for _, o := range opts {
		o(s)
	}

	s.report = report.ReportConfig{
		Title:    cfg.Dashboard.Title,
		Footer:   report.DefaultFooter,
		ChartCfg: report.DefaultChartConfig().Sized(cfg.Dashboard.ChartWidth, cfg.Dashboard.ChartHeight),
	}
	renderer, err := report.NewRenderer(s.report)
	if err != nil {
		return nil, fmt.Errorf("page template: %w", err)
	}
	s.renderer = renderer

	if s.fetcher == nil {
		s.fetcher = NewFeedFetcher(cfg.Feed, s.log)
	}

	s.store = session.NewStore(cfg.SessionTTL(), cfg.SweepInterval(),
		session.WithExpiryHook(func(id string) {
			s.log.Debug("session expired", zap.String("session", id))
			s.wsHub.Drop(id)
		}))

	ctx, cancel := context.WithCancel(context.Background())
	s.stopHub = cancel
	go s.wsHub.Run(ctx)

	s.upgrader = s.newUpgrader()
	s.router = s.buildRouter()
	return s, nil
}

// NewFeedFetcher builds a fetcher from the feed section of the config.
func NewFeedFetcher(cfg config.FeedConfig, log *zap.Logger) *feed.Fetcher {
	sources := make([]feed.Source, len(cfg.Sources))
	for i, src := range cfg.Sources {
		sources[i] = feed.Source{Name: src.Name, URL: src.URL}
	}
	opts := []feed.Option{
		feed.WithLogger(log),
		feed.WithCacheTTL(time.Duration(cfg.CacheTTLSec) * time.Second),
		feed.WithScorer(sentiment.NewScorer().WithThreshold(cfg.SentimentThreshold)),
	}
	if cfg.TimeoutSec > 0 {
		opts = append(opts, feed.WithTimeout(time.Duration(cfg.TimeoutSec)*time.Second))
	}
	if cfg.RatePerSec > 0 {
		opts = append(opts, feed.WithRateLimit(cfg.RatePerSec, time.Second))
	}
	if loc, err := utils.LoadLocation(cfg.Timezone); err == nil {
		opts = append(opts, feed.WithLocation(loc))
	}
	return feed.NewFetcher(sources, opts...)
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// Sessions exposes the session store, for tests and status reporting.
func (s *Server) Sessions() *session.Store {
	return s.store
}

// Close stops background goroutines.
func (s *Server) Close() {
	s.stopHub()
	<-s.wsHub.done
	s.store.Close()
}

// ListenAndServe starts the HTTP server and shuts it down gracefully on
// SIGINT or SIGTERM.
func (s *Server) ListenAndServe(addr string) error {
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       time.Duration(s.cfg.Server.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Server.WriteTimeoutSec) * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("dashboard listening", zap.String("addr", addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.Middleware(s.log))
	r.Use(middleware.Recoverer)

	// CORS
	origins := []string{"*"}
	if len(s.cfg.Server.CORSOrigins) > 0 {
		origins = s.cfg.Server.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", s.handleHealth)

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(web.StaticFS())))

	r.Group(func(r chi.Router) {
		r.Use(s.withSession)

		// Page
		r.Get("/", s.handleIndex)
		r.Post("/upload", s.handleUpload)
		r.Post("/select", s.handleSelect)
		r.Post("/reset", s.handleReset)
		r.Post("/feed", s.handleFeed)

		// Files
		r.Get("/download", s.handleDownload)
		r.Get("/report", s.handleReport)
		r.Get("/charts/pie.png", s.handlePieChart)
		r.Get("/charts/trend.png", s.handleTrendChart)

		r.Get("/ws", s.handleWebSocket)

		// API v1 routes
		r.Route("/api/v1", func(r chi.Router) {
			r.Get("/health", s.handleHealth)
			r.Get("/view", s.handleGetView)
			r.Post("/upload", s.handleAPIUpload)
			r.Post("/select", s.handleAPISelect)
			r.Post("/reset", s.handleAPIReset)
			r.Get("/config", s.handleGetConfig)
		})
	})

	return r
}

// ════════════════════════════════════════════════════════════════════
// Sessions
// ════════════════════════════════════════════════════════════════════

type ctxKey struct{}

// withSession attaches the visitor's session id to the request context,
// starting a new session when the cookie is missing or has expired.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id string
		if c, err := r.Cookie(s.cfg.Session.CookieName); err == nil {
			if _, err := s.store.Get(c.Value); err == nil {
				id = c.Value
			}
		}
		if id == "" {
			id = s.store.Create()
			http.SetCookie(w, &http.Cookie{
				Name:     s.cfg.Session.CookieName,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

func sessionID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// state returns the caller's session. A session that expired mid-request
// reads as empty.
func (s *Server) state(r *http.Request) session.State {
	st, err := s.store.Get(sessionID(r.Context()))
	if err != nil {
		return session.State{}
	}
	return st
}

// view renders the dashboard for a session state.
func (s *Server) view(st session.State) (*dashboard.View, error) {
	return dashboard.Render(dashboard.State{
		Table:     st.Table,
		FileName:  st.FileName,
		Selection: st.Selection,
	}, dashboard.Options{PreviewRows: s.cfg.Dashboard.PreviewRows})
}

// changed tells the session's other tabs to reload.
func (s *Server) changed(r *http.Request) {
	s.wsHub.Notify(sessionID(r.Context()), WSMessage{Type: MsgViewChanged})
}

// ════════════════════════════════════════════════════════════════════
// Response helpers
// ════════════════════════════════════════════════════════════════════

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}
