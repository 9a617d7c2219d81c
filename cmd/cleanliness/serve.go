package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/coffeescripttech-maker/classroom-cleanliness/infrastructure/middleware"
	"github.com/coffeescripttech-maker/classroom-cleanliness/infrastructure/storage"
	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/api/httpapi"
	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/application"
	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/platform/logger"
	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/platform/tracing"
)

const shutdownTimeout = 15 * time.Second

func newServeCommand(root *rootOptions) *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), root.configPath, watch)
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "Reload leaderboard settings when the config file changes")
	return cmd
}

func runServe(ctx context.Context, configPath string, watch bool) error {
	loader := application.NewViperConfigLoader(configPath)
	cfg := &application.AppConfig{}
	if err := loader.Load(ctx, cfg); err != nil {
		return err
	}

	log, err := logger.New(cfg.Logging.Mode)
	if err != nil {
		return err
	}
	defer log.Sync()

	shutdownTracing, err := tracing.Init(ctx, log, tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: application.TracingServiceName,
		Environment: cfg.Tracing.Environment,
		Endpoint:    cfg.Tracing.Endpoint,
		Insecure:    cfg.Tracing.Insecure,
		SampleRatio: cfg.Tracing.SampleRatio,
	})
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Warn("tracing shutdown failed", "error", err)
		}
	}()

	db, err := openDatabase(cfg.Database, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := storage.Close(db); err != nil {
			log.Warn("database close failed", "error", err)
		}
	}()
	scores := storage.NewScoreRepository(db)
	classrooms := storage.NewClassroomRepository(db)
	users := storage.NewUserRepository(db)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := middleware.NewPrometheusMetrics(registry)

	detector, err := application.NewDetectorClient(cfg.Detector, metrics)
	if err != nil {
		return err
	}
	engine, err := application.NewEngineFromConfig(cfg.Scoring, application.NewDefaultScorerRegistry())
	if err != nil {
		return err
	}
	analysis, err := application.NewAnalysisService(application.AnalysisDeps{
		Engine:            engine,
		Detector:          detector,
		Scores:            scores,
		Classrooms:        classrooms,
		Observer:          middleware.NewOTelAnalysisObserver(metrics),
		Logger:            log,
		UseOpenVocabulary: cfg.Detector.UseOpenVocabulary,
		MaxConcurrency:    cfg.Detector.MaxConcurrency,
	})
	if err != nil {
		return err
	}
	auth, err := application.NewAuthService(users, cfg.Auth, nil, log)
	if err != nil {
		return err
	}
	leaderboard := application.NewLeaderboardService(scores, classrooms, cfg.Leaderboard, nil)

	if watch {
		stop, err := loader.Watch(ctx, &application.AppConfig{}, func(v any) {
			next := v.(*application.AppConfig)
			leaderboard.SetConfig(next.Leaderboard)
			log.Info("configuration reloaded", "path", configPath)
		})
		if err != nil {
			return fmt.Errorf("watch config: %w", err)
		}
		defer stop()
	}

	handler := httpapi.NewRouter(httpapi.Deps{
		Analysis:       analysis,
		Leaderboard:    leaderboard,
		Reports:        application.NewReportService(scores, classrooms, nil, time.Local),
		Auth:           auth,
		Classrooms:     application.NewClassroomService(classrooms),
		Detector:       detector,
		Metrics:        metrics,
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
		Logger:         log,
	}, httpapi.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		MetricsPath:    cfg.Server.MetricsPath,
		RequestTimeout: cfg.Server.WriteTimeout,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}
	return serve(ctx, srv, log)
}

// serve runs srv until ctx is canceled, then drains in-flight requests.
func serve(ctx context.Context, srv *http.Server, log *logger.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down http server")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	log.Info("http server stopped")
	return nil
}
