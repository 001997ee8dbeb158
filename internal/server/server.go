package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/car-showroom/internal/handlers"
	"github.com/ukydev/car-showroom/internal/jobs"
	"github.com/ukydev/car-showroom/internal/storage"
)

const shutdownTimeout = 15 * time.Second

// Server wraps the HTTP server and the background job scheduler.
type Server struct {
	app        *App
	httpServer *http.Server
	scheduler  *jobs.Scheduler
}

// New prepares upload storage, ensures the admin account exists and builds
// the router. ctx bounds the startup work and the reconcile job.
func New(ctx context.Context, app *App) (*Server, error) {
	cfg := app.Config

	files, err := storage.New(cfg.Storage)
	if err != nil {
		return nil, err
	}
	if err := files.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("prepare upload storage: %w", err)
	}
	switch s := files.(type) {
	case *storage.DiskStorage:
		log.WithField("dir", s.Root()).Info("storing uploads on disk")
	case *storage.MinioClient:
		log.WithField("bucket", s.Bucket()).Info("storing uploads in MinIO")
	}

	created, err := app.Seeder.EnsureAdmin(ctx, cfg.Admin)
	if err != nil {
		return nil, fmt.Errorf("ensure admin: %w", err)
	}
	if created {
		log.WithField("email", cfg.Admin.Email).Info("admin account created")
	}

	scheduler := jobs.NewScheduler()
	if cfg.ReconcileSchedule != "" {
		if err := scheduler.AddJob(cfg.ReconcileSchedule, jobs.NewCarCountReconcileJob(ctx, app.Catalog)); err != nil {
			return nil, err
		}
	}

	router := handlers.NewRouter(handlers.Dependencies{
		Users:          app.Store.Users,
		Brands:         app.Store.Brands,
		Cars:           app.Store.Cars,
		Banners:        app.Store.Banners,
		Rentals:        app.Store.Rentals,
		Auth:           app.Auth,
		Catalog:        app.Catalog,
		Storage:        files,
		Ping:           func(ctx context.Context) error { return app.Store.Client.Ping(ctx, nil) },
		AllowedOrigins: cfg.AllowedOrigins,
		TrustProxy:     cfg.TrustProxy,
	})

	port := cfg.Port
	if port == 0 {
		port = 5000
	}

	return &Server{
		app:       app,
		scheduler: scheduler,
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       60 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
	}, nil
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.scheduler.Start()

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(log.Fields{"addr": s.httpServer.Addr, "env": s.app.Config.Env}).Info("HTTP server listening")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case serveErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("HTTP shutdown incomplete")
	}
	if err := s.scheduler.Stop(shutdownCtx); err != nil {
		log.WithError(err).Warn("background jobs still running at shutdown")
	}
	return serveErr
}
