package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-fanout-api/internal/application/event"
	"github.com/go-fanout-api/internal/application/fanout"
	"github.com/go-fanout-api/internal/application/notification"
	"github.com/go-fanout-api/internal/config"
	"github.com/go-fanout-api/internal/infrastructure/dynamo"
	s3infra "github.com/go-fanout-api/internal/infrastructure/s3"
	snsinfra "github.com/go-fanout-api/internal/infrastructure/sns"
	transporthttp "github.com/go-fanout-api/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	// Bootstrap DynamoDB tables (creates them and their TTLs if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	userRepo := dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users)
	eventRepo := dynamo.NewEventRepo(dynamoClient, cfg.DynamoTables.Events)
	notificationRepo := dynamo.NewNotificationRepo(dynamoClient, cfg.DynamoTables.Notifications)

	// SNS audit publisher (optional — graceful fallback).
	var audit snsinfra.AuditPublisher
	if pub, err := snsinfra.NewPublisher(cfg); err == nil {
		audit = pub
	} else {
		log.Printf("WARN: SNS audit publisher not available: %v", err)
	}

	// S3 retention archive (optional — graceful fallback).
	var archive *s3infra.Archive
	if cfg.S3ArchiveBucket != "" {
		archive = s3infra.NewArchive(s3infra.NewClient(cfg), cfg.S3ArchiveBucket)
	} else {
		log.Println("WARN: S3 archive bucket not configured, purged notifications are not archived")
	}

	processor := fanout.NewProcessor(fanout.ProcessorDeps{
		Users:         userRepo,
		Events:        eventRepo,
		Notifications: notificationRepo,
		Audit:         audit,
		DedupWindow:   cfg.DedupWindow,
		Retention:     cfg.RetentionHorizon,
	})

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	queue := fanout.NewQueue(processor, cfg.QueueSize)
	queue.Start(workerCtx)

	recovery := fanout.NewRecoverySweep(eventRepo, queue)
	retention := fanout.NewRetentionSweep(notificationRepo, nil, cfg.RetentionHorizon)
	if archive != nil {
		retention = fanout.NewRetentionSweep(notificationRepo, archive, cfg.RetentionHorizon)
	}

	// Startup pass: resubmit anything a previous process left unprocessed.
	startupCtx, cancel := context.WithTimeout(workerCtx, 30*time.Second)
	if n, err := recovery.Run(startupCtx); err != nil {
		log.Printf("WARN: startup recovery sweep failed: %v", err)
	} else if n > 0 {
		log.Printf("startup recovery sweep resubmitted %d events", n)
	}
	cancel()

	recovery.Start(workerCtx, cfg.RecoverySweepEvery)
	retention.Start(workerCtx, cfg.RetentionRunEvery)

	deps := &transporthttp.Deps{
		EventSvc: event.NewService(event.ServiceDeps{
			EventRepo: eventRepo,
			Queue:     queue,
			Retention: cfg.EventRetention,
		}),
		NotificationSvc: notification.NewService(notificationRepo),
		Recovery:        recovery,
		Retention:       retention,
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}

	// Let the in-flight fan-out finish; buffered events stay durable for the
	// next startup recovery pass.
	queue.Stop()
	stopWorkers()
	log.Println("Server stopped")
}
