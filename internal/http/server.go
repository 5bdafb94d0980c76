package http

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"ledger/internal/cache"
	"ledger/internal/core"
	"ledger/internal/ledger"
	"ledger/internal/log"
	"ledger/internal/middleware/ratelimit"
	"ledger/internal/middleware/security"
	"ledger/internal/middleware/trace"
	"ledger/internal/services"
	appweb "ledger/web"
)

// Pinger reports whether the store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the ledger components the handlers call.
type Deps struct {
	Ledger     *services.LedgerService
	Aggregator *ledger.Aggregator
	Feed       *ledger.Feed
	Categories *ledger.Categories
	Store      Pinger
	Logger     *log.Logger
}

// Options tune presentation and the HTTP infrastructure.
type Options struct {
	CurrencySymbol     string
	RecentLimit        int
	RateLimitPerMinute int
	ReportCacheSize    int
	ReportCacheTTL     time.Duration
}

func DefaultOptions() Options {
	return Options{
		CurrencySymbol:     "$",
		RecentLimit:        ledger.DefaultRecentLimit,
		RateLimitPerMinute: 60,
		ReportCacheSize:    100,
		ReportCacheTTL:     5 * time.Minute,
	}
}

type Server struct {
	http.Server
	templates *template.Template
	deps      Deps
	opts      Options
	logger    *log.Logger
	events    *log.StructuredLogger

	securityDetector *security.Detector
	rateLimiter      *ratelimit.Limiter
	traceMiddleware  *trace.Middleware

	caches       *cache.Manager
	monthlyCache cache.Cache[core.PeriodReport]
	annualCache  cache.Cache[core.AnnualReport]
	appMetrics   appMetrics
	shutdownOnce sync.Once
}

type appMetrics struct {
	movementsCreated int64
	movementsDeleted int64
	started          time.Time
}

// NewServer parses the embedded templates, mounts every route behind the
// middleware chain and hooks report cache invalidation into ledger writes.
func NewServer(addr string, deps Deps, opts Options) (*Server, error) {
	def := DefaultOptions()
	if opts.CurrencySymbol == "" {
		opts.CurrencySymbol = def.CurrencySymbol
	}
	if opts.RecentLimit <= 0 {
		opts.RecentLimit = def.RecentLimit
	}
	if opts.ReportCacheSize <= 0 {
		opts.ReportCacheSize = def.ReportCacheSize
	}
	if opts.ReportCacheTTL <= 0 {
		opts.ReportCacheTTL = def.ReportCacheTTL
	}
	if deps.Logger == nil {
		deps.Logger = log.New(log.DefaultConfig())
	}

	s := &Server{
		deps:             deps,
		opts:             opts,
		logger:           deps.Logger.WithComponent(log.ComponentHTTP),
		events:           log.NewStructuredLogger(deps.Logger),
		securityDetector: security.NewDetector(),
		rateLimiter:      ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		caches:           cache.NewManager(),
		monthlyCache:     cache.NewLRUCache[core.PeriodReport](opts.ReportCacheSize, opts.ReportCacheTTL),
		annualCache:      cache.NewLRUCache[core.AnnualReport](opts.ReportCacheSize, opts.ReportCacheTTL),
		appMetrics:       appMetrics{started: time.Now()},
	}
	s.traceMiddleware = trace.NewMiddleware(deps.Logger, s.securityDetector.ExtractClientIP)

	t, err := template.New("").Funcs(s.templateFuncs()).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		s.rateLimiter.Stop()
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	s.templates = t

	s.caches.Register(s.monthlyCache)
	s.caches.Register(s.annualCache)
	s.caches.StartCleanup(time.Minute)
	if deps.Ledger != nil {
		deps.Ledger.OnChange(s.caches.PurgeAll)
	}

	mux := http.NewServeMux()
	s.routes(mux)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	limit := s.rateLimiter.Middleware(s.securityDetector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(http.StatusTooManyRequests, "Too many requests, please try again later").Write(w)
	})

	var handler http.Handler = mux
	handler = limit(handler)
	handler = headers.Middleware(handler)
	handler = s.securityDetector.Middleware(handler)
	handler = s.traceMiddleware.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s, nil
}

func (s *Server) routes(mux *http.ServeMux) {
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("GET /{$}", s.handleDashboard)
	mux.HandleFunc("GET /statement", s.handleStatement)

	mux.HandleFunc("GET /movements/new", s.handleNewMovement)
	mux.HandleFunc("POST /movements", s.handleCreateMovement)
	mux.HandleFunc("POST /movements/{kind}/{id}/delete", s.handleDeleteMovement)

	mux.HandleFunc("GET /reports", s.handleReports)
	mux.HandleFunc("POST /reports/monthly", s.handleMonthlyReport)
	mux.HandleFunc("POST /reports/annual", s.handleAnnualReport)

	mux.HandleFunc("GET /ui/categories", s.handleCategoryOptions)
	mux.HandleFunc("POST /categories", s.handleCreateCategory)
}

// Shutdown stops the background sweepers and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.caches.Stop()
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) countCreated() { atomic.AddInt64(&s.appMetrics.movementsCreated, 1) }
func (s *Server) countDeleted() { atomic.AddInt64(&s.appMetrics.movementsDeleted, 1) }
