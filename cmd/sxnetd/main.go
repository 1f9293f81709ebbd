package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sxnet/internal/config"
	"sxnet/internal/handler"
	"sxnet/internal/hub"
	"sxnet/internal/loader"
	"sxnet/internal/metrics"
	"sxnet/internal/repository/sqlite"
	"sxnet/internal/service"
	"sxnet/internal/watcher"
)

func main() {
	// Command line flags
	addr := flag.String("addr", ":3000", "HTTP listen address")
	configPath := flag.String("config", "", "Config file path (default: search standard locations)")
	dbPath := flag.String("db", "", "SQLite snapshot database path (default: database.path from config)")
	spool := flag.String("watch", "", "Analyze and store every report dropped into this directory")
	verbose := flag.Bool("v", false, "Log every source read")
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting sxnet snapshot server...")

	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, _, err = config.LoadFromPath(*configPath)
	} else {
		cfg, _, err = config.Load()
	}
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}

	// Initialize SQLite repository
	repo, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer repo.Close()
	log.Printf("Database opened: %s", cfg.Database.Path)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect event bus to SSE hub
	eventBus := service.NewEventBus()
	sseHub := hub.New()
	go sseHub.Run(ctx)
	sseHub.Forward(ctx, eventBus)

	reg := metrics.DefaultRegistry()
	svc := service.NewAnalysisService(cfg.Sources, reg, repo, eventBus)
	svc.Verbose = *verbose

	if *spool != "" {
		w := watcher.New(*spool, func(path string) {
			ingest(ctx, svc, cfg, path)
		})
		go func() {
			if err := w.Watch(ctx, nil); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("Watcher stopped: %v", err)
			}
		}()
	}

	// Setup routes
	mux := http.NewServeMux()
	handler.NewSnapshotHandler(svc).Register(mux)
	mux.Handle("GET /events", sseHub)
	mux.Handle("GET /metrics", promhttp.HandlerFor(reg.Gatherer(), promhttp.HandlerOpts{}))

	finalHandler := handler.Chain(mux,
		handler.Recover,
		handler.CORS,
		handler.Logger,
	)

	// WriteTimeout stays zero so /events streams are not cut off
	server := &http.Server{
		Addr:        *addr,
		Handler:     finalHandler,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Printf("Server listening on %s", *addr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Stopping the hub ends the event streams so Shutdown can drain
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}

// ingest analyzes one dropped report and stores it as a snapshot
func ingest(ctx context.Context, svc *service.AnalysisService, cfg *config.Config, path string) {
	archive, err := loader.Open(path, loader.WithPaths(cfg.Sources.Paths()...))
	if err != nil {
		log.Printf("Failed to open %s: %v", path, err)
		return
	}

	if timeout := cfg.Analysis.Timeout.Duration(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	analysis, err := svc.Analyze(ctx, archive)
	if err != nil {
		log.Printf("Failed to analyze %s: %v", path, err)
		return
	}
	snap, err := svc.Save(ctx, analysis)
	if err != nil {
		log.Printf("Failed to save %s: %v", path, err)
		return
	}
	log.Printf("Stored snapshot %s for %s (%d interfaces)", snap.ID, snap.Host, snap.Interfaces)
}
