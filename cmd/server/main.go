package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"claims_crm_go/config"
	"claims_crm_go/db"
	"claims_crm_go/handlers"
	"claims_crm_go/services"
	"claims_crm_go/services/jobs"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	conn, err := db.Initialize(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close(conn)

	// Run migrations
	if err := db.AutoMigrate(conn); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Seed lookups and the first admin
	if err := services.SeedStatuses(conn); err != nil {
		log.Fatalf("Failed to seed statuses: %v", err)
	}
	if err := services.SeedAdminFromConfig(conn, cfg); err != nil {
		log.Printf("[SEED] Failed to seed admin: %v", err)
	}

	// Initialize storage (R2 when configured, local otherwise)
	store := services.InitializeStorage(cfg)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(echomiddleware.RequestLogger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization, "X-Requested-With"},
		AllowCredentials: true,
	}))
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	}))
	// Uploads are capped at 10MB by the services; leave room for the multipart envelope
	e.Use(echomiddleware.BodyLimit("12M"))

	handlers.RegisterRoutes(e, handlers.New(conn, store, cfg))

	// Start background jobs (expired-session cleanup every hour)
	scheduler, err := jobs.StartScheduler(conn)
	if err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	// Start server
	go func() {
		log.Printf("Server starting on port %s", cfg.ServerPort)
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	<-scheduler.Stop().Done()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}
