package main

import (
	"context"
	"log"

	"cardionote-be/internal/bootstrap"
	"cardionote-be/internal/config"
	"cardionote-be/internal/server"
	"cardionote-be/internal/tracer"
	"cardionote-be/pkg/database"
)

func main() {
	// 0. Initialize tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load configuration
	cfg := config.Load()

	// 2. Initialize database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Bootstrap dependencies
	container := bootstrap.NewContainer(gormDB, cfg)

	// 4. Start background services
	if container.RealtimeService != nil {
		go func() {
			log.Println("Background: Starting realtime push service...")
			if err := container.RealtimeService.Start(); err != nil {
				log.Printf("Background realtime error: %v", err)
			}
		}()
	}

	// 5. Run server
	srv := server.New(cfg, container)
	log.Fatal(srv.Run())
}
