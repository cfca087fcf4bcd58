package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/movewidget/api/internal/di"
	"github.com/movewidget/api/internal/geo"
	"github.com/movewidget/api/internal/handlers"
	"github.com/movewidget/api/internal/notify"
	"github.com/movewidget/api/internal/platform/config"
	pfirestore "github.com/movewidget/api/internal/platform/firestore"
	"github.com/movewidget/api/internal/platform/idempotency"
	"github.com/movewidget/api/internal/platform/jobs"
	"github.com/movewidget/api/internal/platform/observability"
	firestoreRepo "github.com/movewidget/api/internal/repositories/firestore"
	"github.com/movewidget/api/internal/services"
	"github.com/movewidget/api/internal/wizard"
)

const (
	geoRateLimit  = 60
	geoRateWindow = time.Minute
)

func main() {
	ctx := context.Background()
	startedAt := time.Now().UTC()

	baseLogger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()

	logger := baseLogger.Named("api")
	ctx = observability.WithLogger(ctx, logger)

	cfg, err := config.Load()
	if err != nil {
		var invalid *config.ValidationError
		if errors.As(err, &invalid) {
			logger.Fatal("invalid configuration", zap.Strings("fields", invalid.Fields()))
		}
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	firestoreProvider := pfirestore.NewProvider(cfg.Firestore)
	firestoreClient, err := firestoreProvider.Client(ctx)
	if err != nil {
		logger.Fatal("failed to initialise firestore client", zap.Error(err))
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := firestoreProvider.Close(closeCtx); err != nil {
			logger.Warn("firestore close error", zap.Error(err))
		}
	}()

	registry, err := firestoreRepo.NewRegistry(firestoreProvider)
	if err != nil {
		logger.Fatal("failed to initialise repositories", zap.Error(err))
	}

	eventLogger := zapEventLogger(logger.Named("services"))

	notifiers, closeNotifiers, err := buildBookingNotifiers(ctx, logger.Named("notify"), cfg)
	if err != nil {
		logger.Fatal("failed to initialise booking notifiers", zap.Error(err))
	}
	defer closeNotifiers()

	container, err := di.NewContainer(ctx, cfg, registry,
		di.WithBookingNotifiers(notifiers...),
		di.WithLogger(eventLogger),
	)
	if err != nil {
		logger.Fatal("failed to initialise services", zap.Error(err))
	}

	var suggestions wizard.SuggestionClient
	var distances wizard.DistanceClient
	if strings.TrimSpace(cfg.Maps.APIKey) != "" {
		mapsClient, err := geo.NewGoogleClient(geo.GoogleClientConfig{
			APIKey: cfg.Maps.APIKey,
			Logger: geo.Logger(zapEventLogger(logger.Named("geo"))),
		})
		if err != nil {
			logger.Fatal("failed to initialise maps client", zap.Error(err))
		}
		suggestions = mapsClient
		distances = mapsClient
	} else {
		logger.Warn("maps api key not configured; address suggestions and distance lookups are disabled")
	}

	var promotions services.PromotionService
	if cfg.Features.EnablePromotions {
		promotions = container.Services.Promotions
	} else {
		logger.Info("promotions disabled by feature flag")
	}

	sessionManager, err := wizard.NewManager(wizard.ManagerDeps{
		Widgets:            container.Services.Widgets,
		Suggestions:        suggestions,
		Distances:          distances,
		Promotions:         promotions,
		Contacts:           container.Services.Contacts,
		Bookings:           container.Services.Bookings,
		SuggestionDebounce: cfg.Wizard.SuggestionDebounce,
		DistanceDebounce:   cfg.Wizard.DistanceDebounce,
		IDGen: func() string {
			return ulid.Make().String()
		},
		Clock:  time.Now,
		Logger: zapEventLogger(logger.Named("wizard")),
	})
	if err != nil {
		logger.Fatal("failed to initialise session manager", zap.Error(err))
	}

	idempotencyStore := idempotency.NewFirestoreStore(firestoreClient)
	idempotencyMiddleware := idempotency.Middleware(
		idempotencyStore,
		idempotency.WithHeader(cfg.Idempotency.Header),
		idempotency.WithTTL(cfg.Idempotency.TTL),
		idempotency.WithLogger(observability.NewPrintfAdapter(logger.Named("idempotency"))),
	)

	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	var cleanupWG sync.WaitGroup
	var cleanupTicker *time.Ticker
	if cfg.Idempotency.CleanupInterval > 0 {
		cleanupTicker = time.NewTicker(cfg.Idempotency.CleanupInterval)
		cleanupWG.Add(1)
		go func() {
			defer cleanupWG.Done()
			cleanupLogger := logger.Named("idempotency")
			for {
				select {
				case <-cleanupTicker.C:
					runCtx, cancel := context.WithTimeout(cleanupCtx, time.Minute)
					removed, err := idempotencyStore.CleanupExpired(runCtx, time.Now().UTC(), cfg.Idempotency.CleanupBatchSize)
					cancel()
					if err != nil {
						cleanupLogger.Error("idempotency cleanup error", zap.Error(err))
						continue
					}
					if removed > 0 {
						cleanupLogger.Info("idempotency cleanup removed records", zap.Int("count", removed))
					}
				case <-cleanupCtx.Done():
					return
				}
			}
		}()
	}

	buildInfo := buildInfoFromEnv(cfg, startedAt)
	healthHandlers := handlers.NewHealthHandlers(
		handlers.WithHealthBuildInfo(buildInfo),
		handlers.WithHealthSystemService(container.Services.System),
	)

	middlewares := []func(http.Handler) http.Handler{
		observability.InjectLoggerMiddleware(logger.Named("http")),
		observability.TraceMiddleware(cfg.Firestore.ProjectID),
		observability.RecoveryMiddleware(logger.Named("http")),
		observability.RequestLoggerMiddleware(cfg.Firestore.ProjectID),
	}

	opts := []handlers.Option{
		handlers.WithMiddlewares(middlewares...),
		handlers.WithHealthHandlers(healthHandlers),
		handlers.WithWidgetRoutes(handlers.NewWidgetHandlers(container.Services.Widgets).Routes),
		handlers.WithContactRoutes(handlers.NewContactHandlers(container.Services.Contacts).Routes),
		handlers.WithBookingRoutes(handlers.NewBookingHandlers(container.Services.Bookings).Routes),
		handlers.WithBookingMiddlewares(idempotencyMiddleware),
		handlers.WithSessionRoutes(handlers.NewSessionHandlers(sessionManager).Routes),
	}
	if suggestions != nil || distances != nil {
		geoHandlers := handlers.NewGeoHandlers(suggestions, distances,
			handlers.WithGeoRateLimit(geoRateLimit, geoRateWindow),
		)
		opts = append(opts, handlers.WithGeoRoutes(geoHandlers.Routes))
	}
	if promotions != nil {
		opts = append(opts, handlers.WithPromoRoutes(handlers.NewPromoHandlers(promotions).Routes))
	}

	router := handlers.NewRouter(opts...)
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverLogger := logger.Named("http").With(zap.String("addr", server.Addr))
	go func() {
		serverLogger.Info("movewidget api listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverLogger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-shutdown
	logger.Info("shutdown signal received; draining requests")

	if cleanupTicker != nil {
		cleanupTicker.Stop()
	}
	cleanupCancel()
	cleanupWG.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// zapEventLogger adapts the services' event logging contract onto zap.
func zapEventLogger(logger *zap.Logger) func(context.Context, string, map[string]any) {
	return func(_ context.Context, event string, fields map[string]any) {
		zFields := make([]zap.Field, 0, len(fields))
		for k, v := range fields {
			zFields = append(zFields, zap.Any(k, v))
		}
		logger.Debug(event, zFields...)
	}
}

// buildBookingNotifiers assembles the best-effort channels fired after a
// booking persists. A missing email key or topic skips that channel with a
// warning instead of blocking startup.
func buildBookingNotifiers(ctx context.Context, logger *zap.Logger, cfg config.Config) ([]services.BookingNotifier, func(), error) {
	closers := make([]func(), 0, 1)
	closeAll := func() {
		for _, closer := range closers {
			closer()
		}
	}

	if !cfg.Features.EnableNotifications {
		logger.Info("booking notifications disabled by feature flag")
		return nil, closeAll, nil
	}

	var notifiers []services.BookingNotifier

	if strings.TrimSpace(cfg.Email.ResendAPIKey) != "" {
		emailNotifier, err := notify.NewResendNotifier(notify.ResendNotifierConfig{
			APIKey:  cfg.Email.ResendAPIKey,
			From:    cfg.Email.From,
			To:      cfg.Email.To,
			ReplyTo: cfg.Email.ReplyTo,
			Logger:  notify.Logger(zapEventLogger(logger.Named("resend"))),
		})
		if err != nil {
			closeAll()
			return nil, func() {}, fmt.Errorf("resend notifier: %w", err)
		}
		notifiers = append(notifiers, emailNotifier)
	} else {
		logger.Warn("resend api key not configured; booking emails are disabled")
	}

	if strings.TrimSpace(cfg.PubSub.Topic) != "" {
		pubsubClient, err := pubsub.NewClient(ctx, cfg.PubSub.ProjectID)
		if err != nil {
			closeAll()
			return nil, func() {}, fmt.Errorf("pubsub client: %w", err)
		}
		closers = append(closers, func() {
			if err := pubsubClient.Close(); err != nil {
				logger.Warn("pubsub close error", zap.Error(err))
			}
		})

		publisher, err := jobs.NewPubSubBookingPublisher(pubsubClient.Topic(cfg.PubSub.Topic))
		if err != nil {
			closeAll()
			return nil, func() {}, fmt.Errorf("pubsub booking publisher: %w", err)
		}
		notifiers = append(notifiers, publisher)
	} else {
		logger.Info("pubsub booking topic not configured; event publishing is disabled")
	}

	return notifiers, closeAll, nil
}

func buildInfoFromEnv(cfg config.Config, started time.Time) handlers.BuildInfo {
	version := strings.TrimSpace(os.Getenv("API_BUILD_VERSION"))
	if version == "" {
		version = "dev"
	}
	commit := strings.TrimSpace(os.Getenv("API_BUILD_COMMIT_SHA"))
	if commit == "" {
		commit = "unknown"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "local"
	}
	return handlers.BuildInfo{
		Version:     version,
		CommitSHA:   commit,
		Environment: environment,
		StartedAt:   started,
	}
}
