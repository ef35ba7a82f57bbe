package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"todoPlanManagement/internal/config"
	"todoPlanManagement/internal/db"
	"todoPlanManagement/internal/health"
	"todoPlanManagement/internal/httpapi"
	"todoPlanManagement/internal/service"
	"todoPlanManagement/repository"
)

func main() {
	// Load configuration
	config.LoadDotEnv()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	log.Printf("Configuration loaded: %v", cfg)

	// Open the in-memory store
	d, err := db.Open(cfg.Database.Name)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer func() {
		if err := d.Close(); err != nil {
			log.Printf("close db: %v", err)
		}
	}()

	svc := service.New(repository.NewUserRepository(d), repository.NewTodoRepository(d), cfg.Plan.FreeLimit)

	// Start HTTP
	httpAddr, stopHTTP, err := httpapi.Start(cfg.HTTP.Address, httpapi.NewHandler(svc, cfg.HTTP.AllowedOrigins))
	if err != nil {
		log.Fatalf("start http: %v", err)
	}
	log.Printf("HTTP server listening on %s", httpAddr)

	// Start gRPC health
	stopHealth := func(context.Context) error { return nil }
	if cfg.Health.Address != "" {
		healthAddr, stop, err := health.Start(cfg.Health.Address, svc)
		if err != nil {
			log.Fatalf("start health: %v", err)
		}
		stopHealth = stop
		log.Printf("gRPC health server listening on %s", healthAddr)
	}

	// Wait for signal
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := stopHealth(ctx); err != nil {
		log.Printf("health shutdown error: %v", err)
	}
	if err := stopHTTP(ctx); err != nil {
		log.Printf("http shutdown error: %v", err)
	}
}
