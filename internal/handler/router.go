package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/capitalize-ai/mock-thread-api/internal/analytics"
	"github.com/capitalize-ai/mock-thread-api/internal/config"
	"github.com/capitalize-ai/mock-thread-api/internal/middleware"
	"github.com/capitalize-ai/mock-thread-api/internal/responder"
	"github.com/capitalize-ai/mock-thread-api/internal/service"
	"github.com/capitalize-ai/mock-thread-api/pkg/delay"
	"github.com/capitalize-ai/mock-thread-api/pkg/logger"
)

// Deps are the collaborators the router dispatches to.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	Threads  *service.ThreadService
	Feedback *service.FeedbackService
	Users    *service.UserService
	Catalog  *responder.Catalog
	Tracker  *analytics.Tracker

	// NATS is nil when the server runs without NATS.
	NATS ConnectionChecker
	// Sleep overrides the fault simulation sleep.
	Sleep delay.Func
}

// NewRouter builds the HTTP routes and middleware chain.
func NewRouter(d Deps) http.Handler {
	cfg := d.Config

	healthHandler := NewHealthHandler(d.NATS)
	threadHandler := NewThreadHandler(d.Threads, d.Feedback, d.Logger)
	streamHandler := NewStreamHandler(d.Threads, d.Logger)
	feedbackHandler := NewFeedbackHandler(d.Feedback, d.Logger)
	userHandler := NewUserHandler(d.Users, d.Logger)
	mockHandler := NewMockHandler(cfg.MockConfig(), d.Catalog, d.Tracker)

	sim := middleware.Simulator{
		DefaultDelayMs: cfg.DefaultDelayMs,
		MaxDelayMs:     cfg.MaxDelayMs,
		Sleep:          d.Sleep,
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(d.Logger))
	r.Use(middleware.SecurityHeaders)
	r.Use(chimiddleware.Recoverer)
	if cfg.CORSEnabled {
		r.Use(middleware.CORS(cfg.CORSOrigins))
	}

	r.Get("/ready", healthHandler.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitRPM))

		r.Get("/health", healthHandler.Health)

		r.Route("/threads", func(r chi.Router) {
			r.With(sim.Handler).Post("/", threadHandler.Post)
			r.Get("/", threadHandler.List)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", threadHandler.Get)
				r.With(sim.Handler).Delete("/", threadHandler.Delete)
				r.Get("/feedback", threadHandler.Feedback)
				r.Get("/feedback/counts", threadHandler.FeedbackCounts)
				r.Get("/events", threadHandler.Events)
				r.Get("/stream", streamHandler.Stream)
			})
		})

		r.Route("/feedback", func(r chi.Router) {
			r.With(sim.Handler).Post("/", feedbackHandler.Create)
			r.Get("/", feedbackHandler.List)
			r.Get("/counts", feedbackHandler.Counts)
			r.Get("/{id}", feedbackHandler.Get)
			r.With(sim.Handler).Delete("/{id}", feedbackHandler.Delete)
		})

		r.Get("/entries/{entryId}/feedback", feedbackHandler.ListByEntry)

		r.Route("/user", func(r chi.Router) {
			r.Get("/", userHandler.List)
			r.With(sim.Handler).Post("/", userHandler.Create)
			r.Get("/{id}", userHandler.Get)
			r.With(sim.Handler).Delete("/{id}", userHandler.Delete)
		})

		r.Route("/mock", func(r chi.Router) {
			r.Get("/config", mockHandler.Config)
			r.Get("/scenarios", mockHandler.Scenarios)
			r.Get("/scenarios/{name}", mockHandler.Scenario)
			r.Get("/analytics", mockHandler.Analytics)
			r.With(sim.Handler).Delete("/analytics", mockHandler.ResetAnalytics)
		})
	})

	return r
}
