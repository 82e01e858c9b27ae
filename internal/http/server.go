package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"fintrack/internal/auth"
	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/services"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

const cacheCleanupInterval = 10 * time.Minute

// Services groups the application services the handlers call into.
type Services struct {
	Users        *services.UserService
	Categories   *services.CategoryService
	Transactions *services.TransactionService
	Budgets      *services.BudgetService
	Summaries    *services.SummaryService
}

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Options struct {
	Addr               string
	Tokens             *auth.TokenIssuer
	Store              Pinger
	Logger             *log.Logger
	CORSAllowedOrigins []string
	// AuthRateLimit is the per client budget of auth requests per minute.
	AuthRateLimit int
	SummaryCache  *cache.LRUCache[core.Summary]
}

type Server struct {
	http.Server

	svc       Services
	store     Pinger
	validator *requestValidator

	caches       *cache.Manager
	limiter      *ratelimit.Limiter
	detector     *security.Detector
	tracer       *trace.Middleware
	shutdownOnce sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run http.Server.
func NewServer(svc Services, opts Options) (*Server, error) {
	if opts.Tokens == nil {
		return nil, fmt.Errorf("new server: token issuer is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	rv, err := newRequestValidator()
	if err != nil {
		return nil, fmt.Errorf("new server: %w", err)
	}

	s := &Server{
		Server:    http.Server{Addr: opts.Addr, ReadHeaderTimeout: 10 * time.Second},
		svc:       svc,
		store:     opts.Store,
		validator: rv,
		caches:    cache.NewManager(),
		limiter:   ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.AuthRateLimit}),
		detector:  security.NewDetector(),
	}
	s.tracer = trace.NewMiddleware(s.detector.ExtractClientIP, logger)
	if opts.SummaryCache != nil {
		s.caches.Register("summary", opts.SummaryCache)
		s.caches.StartCleanup(cacheCleanupInterval)
	}

	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeDetail(w, http.StatusNotFound, detailNotFound)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusMethodNotAllowed, fmt.Sprintf("Method \"%s\" not allowed.", r.Method))
	})

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet)
	r.HandleFunc("/metrics", s.handleMetrics).Methods(http.MethodGet)
	route(r, "/api", s.handleRoot, http.MethodGet)

	limit := s.limiter.Middleware(s.detector.ExtractClientIP, s.throttled)
	route(r, "/api/auth/token", limit(http.HandlerFunc(s.handleToken)).ServeHTTP, http.MethodPost)
	route(r, "/api/auth/token/refresh", limit(http.HandlerFunc(s.handleRefresh)).ServeHTTP, http.MethodPost)
	route(r, "/api/register", limit(http.HandlerFunc(s.handleRegister)).ServeHTTP, http.MethodPost)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(auth.Middleware(opts.Tokens))
	route(api, "/categories", s.handleListCategories, http.MethodGet)
	route(api, "/categories", s.handleCreateCategory, http.MethodPost)
	route(api, "/categories/{id:[0-9]+}", s.handleGetCategory, http.MethodGet)
	route(api, "/categories/{id:[0-9]+}", s.handleUpdateCategory(true), http.MethodPut)
	route(api, "/categories/{id:[0-9]+}", s.handleUpdateCategory(false), http.MethodPatch)
	route(api, "/categories/{id:[0-9]+}", s.handleDeleteCategory, http.MethodDelete)

	route(api, "/transactions/stats", s.handleDailyStats, http.MethodGet)
	route(api, "/transactions", s.handleListTransactions, http.MethodGet)
	route(api, "/transactions", s.handleCreateTransaction, http.MethodPost)
	route(api, "/transactions/{id:[0-9]+}", s.handleGetTransaction, http.MethodGet)
	route(api, "/transactions/{id:[0-9]+}", s.handleUpdateTransaction(true), http.MethodPut)
	route(api, "/transactions/{id:[0-9]+}", s.handleUpdateTransaction(false), http.MethodPatch)
	route(api, "/transactions/{id:[0-9]+}", s.handleDeleteTransaction, http.MethodDelete)

	route(api, "/budgets", s.handleListBudgets, http.MethodGet)
	route(api, "/budgets", s.handleCreateBudget, http.MethodPost)
	route(api, "/budgets/{id:[0-9]+}", s.handleGetBudget, http.MethodGet)
	route(api, "/budgets/{id:[0-9]+}", s.handleUpdateBudget(true), http.MethodPut)
	route(api, "/budgets/{id:[0-9]+}", s.handleUpdateBudget(false), http.MethodPatch)
	route(api, "/budgets/{id:[0-9]+}", s.handleDeleteBudget, http.MethodDelete)

	route(api, "/summary", s.handleSummary, http.MethodGet)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   opts.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", trace.RequestIDHeader},
		ExposedHeaders:   []string{trace.RequestIDHeader},
		AllowCredentials: true,
	})
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())

	var h http.Handler = r
	h = corsHandler.Handler(h)
	h = headers.Middleware(h)
	h = log.RequestIDMiddleware(trace.RequestIDFromRequest)(h)
	h = log.Middleware(logger)(h)
	h = s.tracer.Middleware(h)
	h = s.detector.Middleware(h)
	s.Handler = h

	return s, nil
}

// route registers path with and without the trailing slash.
func route(r *mux.Router, path string, h http.HandlerFunc, method string) {
	r.HandleFunc(path, h).Methods(method)
	r.HandleFunc(path+"/", h).Methods(method)
}

func (s *Server) throttled(w http.ResponseWriter, r *http.Request) {
	slog.WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.detector.ExtractClientIP(r),
		log.FieldPath, r.URL.Path)
	writeDetail(w, http.StatusTooManyRequests, detailThrottled)
}

// Shutdown stops background cleanup and then the HTTP server. Safe to call
// more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.caches.Stop()
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
