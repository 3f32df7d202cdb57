package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	inboxrepo "github.com/ozmsg/gateway/internal/inbox_service/repository/postgres"
	outboxapp "github.com/ozmsg/gateway/internal/outbox_service/app"
	outboxrepo "github.com/ozmsg/gateway/internal/outbox_service/repository/postgres"
	phonebookrepo "github.com/ozmsg/gateway/internal/phonebook_service/repository/postgres"
	"github.com/ozmsg/gateway/internal/phonenumber"
	"github.com/ozmsg/gateway/internal/platform/config"
	"github.com/ozmsg/gateway/internal/platform/database"
	"github.com/ozmsg/gateway/internal/platform/logger"
	"github.com/ozmsg/gateway/internal/provider"
	"github.com/ozmsg/gateway/internal/provider/telstra"
	"github.com/ozmsg/gateway/internal/reconcile"
	httptransport "github.com/ozmsg/gateway/internal/transport/http"
	userapp "github.com/ozmsg/gateway/internal/user_service/app"
	userrepo "github.com/ozmsg/gateway/internal/user_service/repository/postgres"
)

const serviceName = "gateway"

func main() {
	cfg, err := config.Load(serviceName)
	if err != nil {
		slog.Error("Failed to load configuration", "service", serviceName, "error", err)
		os.Exit(1)
	}

	appLogger := logger.New(cfg.LogLevel)
	appLogger.Info("Gateway starting...", "port", cfg.ServerPort)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbPool, err := database.NewDBPool(ctx, cfg.PostgresDSN)
	if err != nil {
		appLogger.Error("Failed to connect to PostgreSQL", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()
	appLogger.Info("Connected to PostgreSQL database")

	norm := phonenumber.New(phonenumber.CountryProfile{
		CallingCode:    cfg.CountryCallingCode,
		NationalDigits: cfg.NationalNumberDigits,
		TailDigits:     cfg.NationalNumberDigits,
	})

	userRepo := userrepo.NewPgUserRepository(dbPool, norm, appLogger)
	contactRepo := phonebookrepo.NewPgContactRepository(dbPool, norm, appLogger)
	inboxRepo := inboxrepo.NewPgInboxRepository(dbPool, appLogger)
	ruleRepo := inboxrepo.NewPgRuleRepository(dbPool, appLogger)
	messageRepo := outboxrepo.NewPgMessageRepository(dbPool, appLogger)
	templateRepo := outboxrepo.NewPgTemplateRepository(dbPool, appLogger)

	var providerClient provider.Client
	switch cfg.ProviderDriver {
	case "mock":
		providerClient = provider.NewMock(appLogger, cfg.ProviderPageSize)
		appLogger.Warn("Using mock provider; no messages will leave this process")
	default:
		providerClient = telstra.New(telstra.Config{
			BaseURL:      cfg.ProviderBaseURL,
			ClientID:     cfg.ProviderClientID,
			ClientSecret: cfg.ProviderClientSecret,
			DefaultFrom:  cfg.ProviderDefaultFrom,
		}, nil, appLogger)
	}

	authService := userapp.NewAuthService(userRepo, appLogger, cfg.JWTSecret,
		time.Duration(cfg.JWTExpiryHours)*time.Hour)
	sendService := outboxapp.NewSendService(messageRepo, userRepo, providerClient, appLogger)

	paginator := reconcile.NewPaginator(providerClient, reconcile.PaginatorConfig{
		PageSize:         cfg.ProviderPageSize,
		MaxPages:         cfg.ReconcileMaxPages,
		RateLimitBackoff: cfg.RateLimitBackoff,
	}, appLogger)
	resolver := reconcile.NewOwnerResolver(userRepo, contactRepo, norm, appLogger)
	merger := reconcile.NewMerger(inboxRepo, appLogger)
	evaluator := reconcile.NewRuleEvaluator(providerClient, appLogger)
	reconciler := reconcile.NewReconciler(paginator, resolver, merger, evaluator,
		userRepo, inboxRepo, ruleRepo, appLogger)

	validate := httptransport.NewValidator()
	router := httptransport.NewRouter(httptransport.RouterDeps{
		Auth:      httptransport.NewAuthHandler(authService, appLogger, validate),
		Users:     httptransport.NewUserHandler(userRepo, appLogger, validate),
		Contacts:  httptransport.NewContactHandler(contactRepo, appLogger, validate),
		Rules:     httptransport.NewRuleHandler(ruleRepo, appLogger, validate),
		Templates: httptransport.NewTemplateHandler(templateRepo, appLogger, validate),
		Messages:  httptransport.NewMessageHandler(sendService, messageRepo, inboxRepo, appLogger, validate),
		Webhooks:  httptransport.NewWebhookHandler(reconciler, cfg.SyncDefaultLimit, appLogger, validate),
	}, authService, appLogger)

	apiServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.MetricsPort),
		Handler: metricsMux,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		appLogger.Info("HTTP API server listening", "address", apiServer.Addr)
		if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		appLogger.Info("Metrics server listening", "address", metricsServer.Addr)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		appLogger.Info("Shutdown signal received, shutting down HTTP servers...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			appLogger.Error("API server shutdown error", "error", err)
		}
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			appLogger.Error("Metrics server shutdown error", "error", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		appLogger.Error("Gateway exited with error", "error", err)
		os.Exit(1)
	}
	appLogger.Info("Gateway stopped")
}
