// Command server runs the TaxSync API: accountant auth, client and tax year
// management, document intake, and the completeness rules engine. main wires
// dependencies and owns the process lifecycle; business logic lives in the
// internal services.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	authhandler "taxsync/internal/auth/handler"
	"taxsync/internal/auth/lockout"
	authmetrics "taxsync/internal/auth/metrics"
	"taxsync/internal/auth/revocation"
	authservice "taxsync/internal/auth/service"
	authstore "taxsync/internal/auth/store"
	"taxsync/internal/auth/token"
	clienthandler "taxsync/internal/client/handler"
	clientmetrics "taxsync/internal/client/metrics"
	clientservice "taxsync/internal/client/service"
	clientstore "taxsync/internal/client/store"
	documentadapters "taxsync/internal/document/adapters"
	documenthandler "taxsync/internal/document/handler"
	documentmetrics "taxsync/internal/document/metrics"
	documentservice "taxsync/internal/document/service"
	documentstore "taxsync/internal/document/store"
	httpapi "taxsync/internal/http"
	"taxsync/internal/platform/config"
	"taxsync/internal/platform/httpserver"
	"taxsync/internal/platform/logger"
	"taxsync/internal/platform/postgres"
	platformredis "taxsync/internal/platform/redis"
	taxyearadapters "taxsync/internal/taxyear/adapters"
	taxyearhandler "taxsync/internal/taxyear/handler"
	taxyearmetrics "taxsync/internal/taxyear/metrics"
	taxyearservice "taxsync/internal/taxyear/service"
	taxyearstore "taxsync/internal/taxyear/store"
	"taxsync/internal/validation"
	validationhandler "taxsync/internal/validation/handler"
	validationmetrics "taxsync/internal/validation/metrics"
	validationstore "taxsync/internal/validation/store"
	auditpublisher "taxsync/pkg/platform/audit/publisher"
	auditpostgres "taxsync/pkg/platform/audit/store/postgres"
	auditworker "taxsync/pkg/platform/audit/worker"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New(logger.ParseLevel(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.Postgres)
	if err != nil {
		log.Error("postgres connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := postgres.ApplySchema(ctx, db); err != nil {
		log.Error("schema migration failed", "error", err)
		os.Exit(1)
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Audit pipeline: services write to the outbox table through the
	// publisher; the worker drains it into Kafka when brokers are set.
	auditStore := auditpostgres.New(db)
	auditor := auditpublisher.NewPublisher(auditStore)
	defer auditor.Close()

	if len(cfg.Kafka.Brokers) > 0 {
		worker, err := auditworker.New(auditStore, cfg.Kafka.Brokers, cfg.Kafka.AuditTopic, log)
		if err != nil {
			log.Error("audit worker setup failed", "error", err)
			os.Exit(1)
		}
		if err := worker.EnsureTopic(ctx); err != nil {
			log.Error("audit topic setup failed", "error", err)
			os.Exit(1)
		}
		go func() {
			if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("audit worker stopped", "error", err)
			}
		}()
	}

	var revocations revocation.List = revocation.NewInMemory()
	if redisClient != nil {
		revocations = revocation.NewFailover(
			revocation.NewRedis(redisClient.Client),
			revocation.NewInMemory(),
			log,
		)
	}

	blobs, err := documentadapters.NewFSBlobStore(cfg.DocumentsDir)
	if err != nil {
		log.Error("blob store setup failed", "error", err)
		os.Exit(1)
	}

	// Validation engine.
	validationService := validation.NewService(
		validationstore.NewPostgres(db),
		validationstore.NewPostgres(db),
		validation.DefaultCatalog(),
		log,
		validationmetrics.New(),
		auditor,
	)

	// Domain services.
	clientService := clientservice.New(clientstore.NewPostgres(db),
		clientservice.WithLogger(log),
		clientservice.WithAuditor(auditor),
		clientservice.WithMetrics(clientmetrics.New()),
	)
	taxYearService := taxyearservice.New(
		taxyearstore.NewPostgres(db),
		clientService,
		validationService,
		validationstore.NewPostgres(db),
		taxyearservice.WithLogger(log),
		taxyearservice.WithAuditor(auditor),
		taxyearservice.WithMetrics(taxyearmetrics.New()),
		taxyearservice.WithNotifier(taxyearadapters.NewLogNotifier(log)),
	)
	documentService := documentservice.New(
		documentstore.NewPostgres(db),
		blobs,
		taxYearService,
		documentservice.WithLogger(log),
		documentservice.WithAuditor(auditor),
		documentservice.WithMetrics(documentmetrics.New()),
	)
	authService := authservice.New(
		authstore.NewPostgres(db),
		token.NewIssuer(cfg.JWTSigningKey, cfg.AccessTokenTTL),
		revocations,
		lockout.NewPostgres(db),
		authservice.WithLogger(log),
		authservice.WithAuditor(auditor),
		authservice.WithMetrics(authmetrics.New()),
	)

	health := map[string]httpapi.HealthChecker{
		"postgres": db.PingContext,
	}
	if redisClient != nil {
		health["redis"] = redisClient.Health
	}

	router := httpapi.New(httpapi.Config{
		Auth:          authhandler.New(authService, log),
		Authenticator: authService,
		Clients:       clienthandler.New(clientService, log),
		TaxYears:      taxyearhandler.New(taxYearService, log),
		Documents:     documenthandler.New(documentService, log),
		Validations:   validationhandler.New(validationService, taxYearService, log),
		Health:        health,
	})

	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("taxsync listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}
