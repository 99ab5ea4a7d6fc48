package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/betaview-data/betaview/internal/api"
	"github.com/betaview-data/betaview/internal/config"
	"github.com/betaview-data/betaview/internal/db"
	"github.com/betaview-data/betaview/internal/pose"
	"github.com/betaview-data/betaview/internal/version"
)

var (
	listen        = flag.String("listen", ":8080", "Listen address")
	dbFile        = flag.String("db", "betaview.db", "Path to the sqlite database")
	migrationsDir = flag.String("migrations", "internal/db/migrations", "Path to the migrations directory")
	tuningFile    = flag.String("config", "", "Optional JSON tuning overrides for the engine")
)

func main() {
	flag.Parse()

	if *listen == "" {
		log.Fatal("Listen address is required")
	}

	cfg := pose.DefaultConfig()
	if *tuningFile != "" {
		tuning, err := config.LoadTuningConfig(*tuningFile)
		if err != nil {
			log.Fatalf("failed to load tuning config: %v", err)
		}
		cfg = tuning.Apply(cfg)
		log.Printf("loaded tuning overrides from %s", *tuningFile)
	}

	store, err := db.NewDB(*dbFile)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer store.Close()

	if err := store.MigrateUp(*migrationsDir); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	apiServer := api.NewServer(store, pose.NewAnalyzer(cfg))

	server := &http.Server{
		Addr:    *listen,
		Handler: api.LoggingMiddleware(apiServer.ServeMux()),
	}

	go func() {
		log.Printf("betaview %s (%s) listening on %s", version.Version, version.GitSHA, *listen)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	// Let in-flight analyses finish before the database closes.
	apiServer.Close()
}
