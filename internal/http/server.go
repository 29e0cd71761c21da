package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"finvision/internal/core"
	"finvision/internal/log"
	"finvision/internal/middleware/ratelimit"
	"finvision/internal/middleware/security"
	"finvision/internal/middleware/trace"
	"finvision/internal/services"
	appweb "finvision/web"
)

// Options tunes the server hardening. Zero values take defaults.
type Options struct {
	RateLimitPerMinute int
	RateLimitBurst     int
	TrustedProxies     []string
}

type Server struct {
	http.Server
	templates   *template.Template
	svc         *services.LedgerService
	logger      *log.Logger
	rateLimiter *ratelimit.Limiter
	clientIP    *security.ClientIP
	tracer      *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(addr string, svc *services.LedgerService, logger *log.Logger, opts Options) *Server {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	clientIP := security.NewClientIP()
	for _, cidr := range opts.TrustedProxies {
		if err := clientIP.AddTrustedProxy(cidr); err != nil {
			logger.Warn("Ignoring trusted proxy", log.FieldError, err)
		}
	}

	s := &Server{
		svc:      svc,
		logger:   logger,
		clientIP: clientIP,
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RateLimitPerMinute,
			Burst:             opts.RateLimitBurst,
		}),
		tracer: trace.NewMiddleware(logger, clientIP.Extract),
	}

	t, err := template.New("").Funcs(templateFuncs()).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		logger.Warn("Failed parsing templates", log.FieldError, err)
	}
	s.templates = t

	mux := http.NewServeMux()

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		logger.Warn("Failed to mount embedded static FS", log.FieldError, err)
	}

	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/transactions", s.handleCreateTransaction)
	// UI partials
	mux.HandleFunc("/ui/metrics", s.handleMetrics)
	mux.HandleFunc("/ui/transactions", s.handleTransactions)
	// Chart feeds
	mux.HandleFunc("/api/summary", s.handleSummary)
	mux.HandleFunc("/api/charts/categories", s.handleCategoryChart)
	mux.HandleFunc("/api/charts/monthly", s.handleMonthlyChart)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	limit := s.rateLimiter.Middleware(clientIP.Extract, s.onRateLimited, http.MethodPost)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.tracer.Middleware(headers.Middleware(limit(mux))),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"dollars":     formatDollars,
		"amountClass": amountClass,
		"selected": func(values []core.Category, c core.Category) bool {
			for _, v := range values {
				if v == c {
					return true
				}
			}
			return false
		},
		"typeSelected": func(values []core.Type, t core.Type) bool {
			for _, v := range values {
				if v == t {
					return true
				}
			}
			return false
		},
	}
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	s.logger.WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.clientIP.Extract(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	ErrorResponse(http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.").
		TriggerErrorNotification("Too many submissions, slow down").
		Write(w)
}

// Shutdown stops the rate limiter janitor and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
