package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"calmora/config"
	"calmora/cron"
	"calmora/database"
	ledgerRepo "calmora/database/repository/ledger"
	therapistRepo "calmora/database/repository/therapist"
	topicRepo "calmora/database/repository/topic"
	"calmora/handlers"
	"calmora/routes"
	"calmora/services/booking"
	"calmora/services/tasks"
	"calmora/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()
	utils.InitIdemCache()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	// repositories.
	sessionLedger := ledgerRepo.NewMongoLedgerRepo()
	therapists := therapistRepo.NewMongoTherapistRepo()
	topics := topicRepo.NewMongoTopicRepo()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := sessionLedger.EnsureIndexes(ctx); err != nil {
		cancel()
		logger.Sugar().Fatalf("main: failed to ensure ledger indexes: %v", err)
	}
	cancel()

	// services.
	availabilityCache := booking.NewAvailabilityCache(
		utils.GetCacheClient(),
		time.Duration(config.AppConfig.AvailabilityCacheTTLSec)*time.Second,
	)
	idempotencyStore := booking.NewIdempotencyStore(
		utils.GetIdemCacheClient(),
		time.Duration(config.AppConfig.IdempotencyTTLHours)*time.Hour,
	)
	taskClient := tasks.NewClient()
	defer taskClient.Close()

	availabilityService := &booking.DefaultAvailabilityService{
		Therapists: therapists,
		Ledger:     sessionLedger,
		Cache:      availabilityCache,
		StepMin:    config.AppConfig.DefaultStepMin,
	}

	coordinator := &booking.DefaultReservationCoordinator{
		Ledger:      sessionLedger,
		Therapists:  therapists,
		Idempotency: idempotencyStore,
		Expiry:      taskClient,
		Cache:       availabilityCache,
		StepMin:     config.AppConfig.DefaultStepMin,
		WindowWeeks: config.AppConfig.BookingWindowWeeks,
		PendingHold: time.Duration(config.AppConfig.PendingHoldMin) * time.Minute,
	}

	lifecycle := &booking.DefaultSessionLifecycle{
		Ledger:       sessionLedger,
		Cache:        availabilityCache,
		CancelCutoff: time.Duration(config.AppConfig.CancelCutoffHours) * time.Hour,
	}

	// handlers.
	topicHandler := handlers.NewTopicHandler(topics)
	therapistHandler := handlers.NewTherapistHandler(therapists, availabilityService)
	availabilityHandler := handlers.NewAvailabilityHandler(availabilityService)
	sessionHandler := handlers.NewSessionHandler(coordinator, lifecycle)

	routes.RegisterRoutes(router, topicHandler, therapistHandler, availabilityHandler, sessionHandler)

	// Background worker for releasing expired pending holds.
	cron.InitExpiryWorker(lifecycle)

	utils.StartHealthMonitor(utils.GetCacheClient(), utils.GetIdemCacheClient(), database.MongoClient)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
