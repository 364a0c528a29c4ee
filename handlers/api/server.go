package api

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sjlee-dev/vidbrief/config"
	"github.com/sjlee-dev/vidbrief/middleware"
	"github.com/sjlee-dev/vidbrief/services/auth"
	"github.com/sjlee-dev/vidbrief/services/summary"
	"github.com/sjlee-dev/vidbrief/summarizer"
	"github.com/sjlee-dev/vidbrief/transcript"
	"github.com/sjlee-dev/vidbrief/validation"
)

type Server struct {
	transcript *TranscriptHandler
	summary    *SummaryHandler
	auth       *AuthHandler
	profile    *ProfileHandler

	authService auth.Service
	config      *config.Config
	logger      *logrus.Logger
	server      *http.Server
	startTime   time.Time
}

type ServerOption func(*Server)

// NewServer creates a new API server with the provided services and options
func NewServer(cfg *config.Config, opts ...ServerOption) *Server {
	s := &Server{
		config:    cfg,
		logger:    logrus.StandardLogger(),
		startTime: time.Now(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.server = &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      s.routes(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// WithServices sets up the handlers with the provided services
func WithServices(
	authSvc auth.Service,
	summarySvc summary.Service,
	transcriptSvc transcript.Service,
	generatorSvc summarizer.Service,
	uploads ImageStore,
) ServerOption {
	return func(s *Server) {
		validator := validation.NewValidator()
		s.authService = authSvc
		s.transcript = NewTranscriptHandler(transcriptSvc, validator)
		s.summary = NewSummaryHandler(summarySvc, generatorSvc, authSvc, validator)
		s.auth = NewAuthHandler(authSvc, validator)
		s.profile = NewProfileHandler(authSvc, uploads, validator)
	}
}

// WithLogger sets a custom logger for the server
func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.WithField("port", s.config.ServerPort).Info("Starting server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	return s.server.Shutdown(ctx)
}

// routes sets up all the routes for the API
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	s.addV1Routes(mux)

	mux.HandleFunc("GET /health", s.handleHealth)

	return s.middleware(mux)
}

// addV1Routes adds all the v1 API routes
func (s *Server) addV1Routes(mux *http.ServeMux) {
	const v1Prefix = "/api/v1"

	// Session endpoints, no auth required
	mux.HandleFunc("POST "+v1Prefix+"/auth/register", s.auth.HandleRegister)
	mux.HandleFunc("POST "+v1Prefix+"/auth/login", s.auth.HandleLogin)

	// Everything below requires a resolved session user
	authed := middleware.Auth(s.authService, s.logger)
	protect := func(h http.HandlerFunc) http.Handler { return authed(h) }

	mux.Handle("POST "+v1Prefix+"/transcript", protect(s.transcript.HandleFetchTranscript))
	mux.Handle("POST "+v1Prefix+"/summarize", protect(s.summary.HandleSummarizeText))
	mux.Handle("POST "+v1Prefix+"/summaries/generate", protect(s.summary.HandleGenerate))

	mux.Handle("GET "+v1Prefix+"/summaries", protect(s.summary.HandleList))
	mux.Handle("POST "+v1Prefix+"/summaries", protect(s.summary.HandleCreate))
	mux.Handle("GET "+v1Prefix+"/summaries/{documentId}", protect(s.summary.HandleGet))
	mux.Handle("PUT "+v1Prefix+"/summaries/{documentId}", protect(s.summary.HandleUpdate))
	mux.Handle("DELETE "+v1Prefix+"/summaries/{documentId}", protect(s.summary.HandleDelete))

	mux.Handle("GET "+v1Prefix+"/users/me", protect(s.profile.HandleGetProfile))
	mux.Handle("PUT "+v1Prefix+"/users/me", protect(s.profile.HandleUpdateProfile))
	mux.Handle("POST "+v1Prefix+"/users/me/image", protect(s.profile.HandleUploadImage))
}

// middleware sets up the middleware chain
func (s *Server) middleware(handler http.Handler) http.Handler {
	var rateLimiter middleware.RateLimiter
	if s.config.RateLimit.Enabled {
		rateLimiter = middleware.NewRateLimiter(
			s.config.RateLimit.RequestsPerMinute,
			s.config.RateLimit.BurstSize,
		)
	}

	middlewares := []func(http.Handler) http.Handler{
		middleware.Recovery(s.logger),
		middleware.RequestID(),
		middleware.Logging(s.logger),
		middleware.CORS(s.config.CORS),
		middleware.Timeout(s.config.RequestTimeout),
	}

	if rateLimiter != nil {
		middlewares = append(middlewares, rateLimiter.Middleware)
	}

	return middleware.Chain(handler, middlewares...)
}

// handleHealth handles the health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
		"version":   s.config.Version,
		"uptime":    time.Since(s.startTime).String(),
	}

	if s.config.Debug {
		status["debug"] = true
		status["goroutines"] = runtime.NumGoroutine()
		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		status["memory"] = map[string]interface{}{
			"allocated": m.Alloc,
			"total":     m.TotalAlloc,
			"system":    m.Sys,
			"gc_cycles": m.NumGC,
		}
	}

	respondJSON(w, r, http.StatusOK, status)
}
