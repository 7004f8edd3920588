package main

import (
	"alcyxob/fitness-planner/internal/api"
	"alcyxob/fitness-planner/internal/service"
	"alcyxob/fitness-planner/internal/storage"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

func runServe(cmd *cobra.Command, args []string) error {
	if cfg.JWT.Secret == "" {
		return errors.New("jwt.secret must be set")
	}
	be, err := openBackend(cfg.Database, log)
	if err != nil {
		return err
	}
	defer func() {
		log.Info("closing database")
		if err := be.close(); err != nil {
			log.Error("failed to close database", "error", err)
		}
	}()

	// --- Ensure Schema / Indexes ---
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := be.migrate(ctx); err != nil {
			log.Error("schema setup failed", "error", err)
			return
		}
		log.Info("schema setup completed")
	}()

	// --- Initialize Storage ---
	fileStorage, err := storage.NewS3Storage(cmd.Context(), cfg.S3, log)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 storage: %w", err)
	}

	// --- Initialize Services ---
	store := be.store
	clock := service.SystemClock()
	guard := service.NewPlanGuard(store, cfg.Plans.MaxNonArchivedPerUser)
	customizations := service.NewCustomizationService(store, clock, log)
	services := api.Services{
		Auth:           service.NewAuthService(store.Users, cfg.JWT.Secret, cfg.JWT.Expiration, log),
		Plans:          service.NewPlanService(store, guard, fileStorage, log),
		Customizations: customizations,
		Routines:       service.NewRoutineService(store, guard, log),
		History:        service.NewHistoryService(store, clock, log),
		Exports:        service.NewExportService(store, customizations, fileStorage, cfg.Export.URLExpiry, clock, log),
	}

	// --- Initialize Gin Engine ---
	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery(), api.RequestLogger(log))
	api.SetupRoutes(router, cfg.JWT.Secret, services, log)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("server starting", "address", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		return fmt.Errorf("listen failed: %w", err)
	case sig := <-quit:
		log.Info("shutting down server", "signal", sig.String())
	}

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(ctxShutdown); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Info("server exited")
	return nil
}
