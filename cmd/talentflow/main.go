package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"

	"github.com/mrcoldpotato/talentflow-v2/internal/config"
	"github.com/mrcoldpotato/talentflow-v2/internal/database"
	"github.com/mrcoldpotato/talentflow-v2/internal/logging"
	"github.com/mrcoldpotato/talentflow-v2/internal/pkg/workerpool"
	"github.com/mrcoldpotato/talentflow-v2/internal/router"
	"github.com/mrcoldpotato/talentflow-v2/internal/seed"
	"github.com/mrcoldpotato/talentflow-v2/internal/services"
)

func main() {
	root, err := os.Getwd()
	if err != nil {
		panic("failed to resolve working directory: " + err.Error())
	}

	store, v, err := config.Load(root)
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}
	cfg := store.Current()

	// Initialize Logger
	log, level, err := logging.Init(root, cfg.Logging)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	config.Watch(v, store, log, func(c config.Config) {
		level.SetLevel(logging.ParseLevel(c.Logging.Level))
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Database.Driver == "sqlite" && !filepath.IsAbs(cfg.Database.Path) {
		cfg.Database.Path = filepath.Join(root, cfg.Database.Path)
	}
	db, err := database.Open(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to open database", zap.Error(err))
	}
	defer db.Close()

	// Submissions are persisted by the pool; it outlives request contexts.
	poolCtx, cancelPool := context.WithCancel(context.Background())
	defer cancelPool()
	pool := workerpool.NewWorkerPool(poolCtx, log, cfg.Workers.Count, cfg.Workers.QueueSize)

	svc := router.Services{
		Jobs:       services.NewJobService(db, log),
		Candidates: services.NewCandidateService(db, log),
		Timeline:   services.NewTimelineService(db),
		Assessments: services.NewAssessmentService(db, services.NewFormEngine(), pool, services.SubmissionOptions{
			Retries:    cfg.Workers.Retries,
			RetryDelay: cfg.Workers.RetryDelay,
		}, log),
	}

	seedCfg := cfg.Seed
	if seedCfg.Fixtures != "" && !filepath.IsAbs(seedCfg.Fixtures) {
		seedCfg.Fixtures = filepath.Join(root, seedCfg.Fixtures)
	}
	if _, err := seed.NewSeeder(db, svc.Assessments, log, nil).SeedIfEmpty(ctx, seedCfg); err != nil {
		log.Fatal("Failed to seed database", zap.Error(err))
	}

	r := router.Setup(log, svc)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("Server listening on http://localhost" + srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to run server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", zap.Error(err))
	}
	pool.Shutdown(shutdownCtx)
	log.Info("Server stopped")
}
