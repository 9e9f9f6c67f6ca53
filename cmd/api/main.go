package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"floorcheck/api/internal/app"
	"floorcheck/api/internal/archive"
	"floorcheck/api/internal/config"
	"floorcheck/api/internal/ledger"
	"floorcheck/api/internal/reconcile"
	"floorcheck/api/internal/search"
	"floorcheck/api/internal/store"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	db, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	if err := store.ApplyMigrations(ctx, db, cfg.MigrationsDir); err != nil {
		log.Fatalf("migrations failed: %v", err)
	}

	dataStore := store.NewPostgresStore(db)

	// Slot-assignment ledger: Redis in production, in-process fallback so a
	// missing Redis never blocks reporting.
	var locks ledger.Store
	if strings.TrimSpace(cfg.RedisURL) != "" {
		redisLedger, err := ledger.NewRedisStore(cfg.RedisURL)
		if err != nil {
			log.Printf("WARNING: redis unavailable, slot assignments will not survive restarts: %v", err)
			locks = ledger.NewMemoryStore()
		} else {
			log.Printf("Using Redis for the slot-assignment ledger")
			defer redisLedger.Close()
			locks = redisLedger
		}
	} else {
		log.Printf("Using in-process slot-assignment ledger")
		locks = ledger.NewMemoryStore()
	}

	pgfts := search.NewPgFTS(db)
	var meiliClient *search.Meili
	if strings.TrimSpace(cfg.MeiliURL) != "" {
		meiliClient = search.NewMeili(cfg.MeiliURL, cfg.MeiliMasterKey)
	}
	searchService := search.NewService(meiliClient, pgfts)
	if meiliClient != nil {
		defer meiliClient.Close()
	}
	searchService.ReindexAllFromPG(ctx)

	var archiveService *archive.Service
	if strings.TrimSpace(cfg.MinioEndpoint) != "" {
		archiveService, err = archive.New(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
		if err != nil {
			log.Printf("WARNING: object store unavailable, report archiving disabled: %v", err)
			archiveService = nil
		}
	}

	reconciler := reconcile.New(
		app.NewSubmissionSource(dataStore),
		locks,
		reconcile.WithLateThreshold(cfg.LateThresholdHours),
	)

	service := app.NewService(dataStore, reconciler, searchService, archiveService, cfg.SyncToken)
	httpServer := app.NewHTTPServer(service, cfg.CORSOrigin)
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("Floorcheck API listening on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
