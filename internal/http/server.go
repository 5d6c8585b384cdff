// Package http serves the tip jar page and its JSON API.
package http

import (
	"context"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"tipjar/internal/analytics"
	"tipjar/internal/cache"
	"tipjar/internal/core"
	"tipjar/internal/price"
	"tipjar/internal/service"
	"tipjar/internal/stellar"
	appweb "tipjar/web"
)

// Site carries the page-level settings handed to the browser: where
// payments go and which network to sign for.
type Site struct {
	RecipientAddress  string
	HorizonURL        string
	NetworkPassphrase string
}

type Server struct {
	http.Server
	templates *template.Template
	tips      *service.TipService
	ledger    stellar.Ledger
	prices    *price.Feed
	site      Site

	rateLimiter *rateLimiter
	metrics     *securityMetrics

	// Derived-view caches, invalidated on every append or clear.
	analyticsCache *cache.LRUCache[analyticsView]
	streakCache    *cache.LRUCache[streakView]
	cacheManager   *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run server.
func NewServer(addr string, tips *service.TipService, ledger stellar.Ledger, prices *price.Feed, site Site) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		tips:        tips,
		ledger:      ledger,
		prices:      prices,
		site:        site,
		rateLimiter: newRateLimiter(),
		metrics:     &securityMetrics{},

		analyticsCache: cache.NewLRUCache[analyticsView](10, time.Minute),
		streakCache:    cache.NewLRUCache[streakView](2, time.Minute),
		cacheManager:   cache.NewManager(),
	}

	s.cacheManager.Register(s.analyticsCache)
	s.cacheManager.Register(s.streakCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	// Parse embedded templates at startup.
	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		slog.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600, immutable")
			static.ServeHTTP(w, r)
		}))
	} else {
		slog.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("/", s.withSecurityHeaders(s.handleIndex))
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	mux.HandleFunc("/api/tips", s.withSecurityHeaders(s.handleTips))
	mux.HandleFunc("/api/tips/", s.withSecurityHeaders(s.handleTipByID))
	mux.HandleFunc("/api/tips/export.csv", s.withSecurityHeaders(s.handleExportCSV))
	mux.HandleFunc("/api/tips/report", s.withSecurityHeaders(s.handleReport))
	mux.HandleFunc("/api/analytics", s.withSecurityHeaders(s.handleAnalytics))
	mux.HandleFunc("/api/streak", s.withSecurityHeaders(s.handleStreak))
	mux.HandleFunc("/api/balance", s.withSecurityHeaders(s.handleBalance))
	mux.HandleFunc("/api/price", s.withSecurityHeaders(s.handlePrice))
	mux.HandleFunc("/api/profile", s.withSecurityHeaders(s.handleProfile))
	mux.HandleFunc("/api/payments/build", s.withSecurityHeaders(s.handleBuildPayment))
	mux.HandleFunc("/api/payments/submit", s.withSecurityHeaders(s.handleSubmitPayment))

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// withSecurityHeaders adds security headers, rate limiting, and request
// logging to responses.
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := extractClientIP(r)
		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP,
			"user_agent", r.Header.Get("User-Agent"))

		if detectSuspiciousRequest(r, s.metrics) {
			slog.WarnContext(ctx, "Suspicious request pattern",
				"client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
		}

		// Rate-limit mutating requests only; reads are cheap.
		if isMutating(r.Method) && !s.rateLimiter.allow(clientIP, s.metrics) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			respondError(w, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self' https://unpkg.com https://cdnjs.cloudflare.com; style-src 'self' 'unsafe-inline'; img-src 'self' data: https:; connect-src 'self' https://horizon-testnet.stellar.org")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds(),
			"client_ip", clientIP)
	}
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", "url", r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	profile, err := s.tips.Profile(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Profile load error", "error", err)
		profile = core.DefaultProfile()
	}

	records, err := s.tips.ListTips(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Tip list error", "error", err)
	}
	streak := analytics.Streak(records, time.Now().UTC())

	data := struct {
		Profile           core.Profile
		Recipient         string
		RecipientShort    string
		HorizonURL        string
		NetworkPassphrase string
		Streak            int
		StreakMessage     string
		StreakLevel       string
	}{
		Profile:           profile,
		Recipient:         s.site.RecipientAddress,
		RecipientShort:    stellar.ShortenAddress(s.site.RecipientAddress),
		HorizonURL:        s.site.HorizonURL,
		NetworkPassphrase: s.site.NetworkPassphrase,
		Streak:            streak,
		StreakMessage:     analytics.StreakMessage(streak),
		StreakLevel:       analytics.StreakLevel(streak),
	}

	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Index template execution failed", "error", err, "template", "index.html")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// invalidateViews drops every cached derived view. Called after any
// history mutation.
func (s *Server) invalidateViews() {
	for _, p := range []analytics.Period{analytics.Period7d, analytics.Period30d, analytics.PeriodAll} {
		s.analyticsCache.Delete(string(p))
	}
	s.streakCache.Delete(streakCacheKey)
}
