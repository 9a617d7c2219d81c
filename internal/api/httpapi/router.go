// Package httpapi exposes the scoring, leaderboard and report services over
// a JSON HTTP API. Every response uses the {success, data, error} envelope.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/application"
	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/platform/logger"
	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/ports"
)

// HealthChecker reports whether a dependency is ready.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Deps are the services behind the API. Detector, Metrics and
// MetricsHandler are optional.
type Deps struct {
	Analysis    *application.AnalysisService
	Leaderboard *application.LeaderboardService
	Reports     *application.ReportService
	Auth        *application.AuthService
	Classrooms  *application.ClassroomService
	Detector    HealthChecker
	Metrics     ports.MetricsCollector
	// MetricsHandler serves Prometheus metrics at Options.MetricsPath.
	MetricsHandler http.Handler
	Logger         *logger.Logger
}

// Options tunes the router.
type Options struct {
	AllowedOrigins []string
	MetricsPath    string
	// RequestTimeout cancels handlers that run longer. Zero disables it.
	RequestTimeout time.Duration
}

// Server holds the handler dependencies.
type Server struct {
	analysis    *application.AnalysisService
	leaderboard *application.LeaderboardService
	reports     *application.ReportService
	auth        *application.AuthService
	classrooms  *application.ClassroomService
	detector    HealthChecker
	metrics     ports.MetricsCollector
	log         *logger.Logger
	started     time.Time
}

// NewRouter builds the API router.
func NewRouter(deps Deps, opts Options) http.Handler {
	s := &Server{
		analysis:    deps.Analysis,
		leaderboard: deps.Leaderboard,
		reports:     deps.Reports,
		auth:        deps.Auth,
		classrooms:  deps.Classrooms,
		detector:    deps.Detector,
		metrics:     deps.Metrics,
		log:         deps.Logger,
		started:     time.Now(),
	}
	if s.log == nil {
		s.log = logger.NewNop()
	}
	s.log = s.log.With("component", "httpapi")

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, s.requestLogger, middleware.Recoverer)
	if opts.RequestTimeout > 0 {
		r.Use(middleware.Timeout(opts.RequestTimeout))
	}
	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	if opts.MetricsPath != "" && deps.MetricsHandler != nil {
		r.Method(http.MethodGet, opts.MetricsPath, deps.MetricsHandler)
	}

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", s.health)
		api.Post("/auth/login", s.login)

		api.Group(func(pr chi.Router) {
			pr.Use(s.authenticate)

			pr.Get("/auth/me", s.me)
			pr.Post("/users", s.createUser)

			pr.Get("/classrooms", s.listClassrooms)
			pr.Post("/classrooms", s.createClassroom)
			pr.Get("/classrooms/{id}", s.getClassroom)
			pr.Get("/classrooms/{id}/scores", s.classroomScores)

			pr.Post("/images/analyze", s.analyze)
			pr.Post("/images/batch-analyze", s.batchAnalyze)

			pr.Get("/leaderboard", s.getLeaderboard)

			pr.Route("/reports", func(rr chi.Router) {
				rr.Get("/statistics", s.statistics)
				rr.Get("/trends", s.trends)
				rr.Get("/improvement", s.improvement)
				rr.Get("/compare", s.compare)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, envelope{Error: "route not found"})
	})
	return r
}
