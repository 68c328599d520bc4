package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"cloud.google.com/go/firestore"
	fbapp "firebase.google.com/go/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"google.golang.org/api/option"

	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/internal/adapter/api"
	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/internal/adapter/api/handler"
	apimiddleware "github.com/MOODMNKY-LLC/mood-mnky-command-sub005/internal/adapter/api/middleware"
	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/internal/adapter/api/router"
	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/internal/adapter/repository"
	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/internal/domain/entity"
	domainrepo "github.com/MOODMNKY-LLC/mood-mnky-command-sub005/internal/domain/repository"
	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/internal/domain/service"
	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/internal/infrastructure/firebase"
	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/internal/infrastructure/jobs"
	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/internal/infrastructure/postgres"
	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/internal/infrastructure/ratelimit"
	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/internal/infrastructure/storage"
	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/internal/infrastructure/supabase"
	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/internal/infrastructure/websocket"
	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/internal/usecase"
	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/pkg/config"
	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/pkg/logger"
)

// stores is the set of repositories one backend provides.
type stores struct {
	xp      domainrepo.XPRepository
	facts   domainrepo.FactRepository
	quests  domainrepo.QuestRepository
	rewards domainrepo.RewardRepository
	checks  map[string]handler.HealthCheck
	close   func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration: %v", err)
	}
	logger.Configure(cfg.LogLevel, cfg.Environment)
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	curve := entity.DefaultLevelCurve()

	var firebaseApp *fbapp.App
	if cfg.StoreDriver == config.StoreDriverFirestore || cfg.AuthProvider == config.AuthProviderFirebase {
		firebaseApp, err = fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, firebaseCredentials(cfg)...)
		if err != nil {
			logger.Fatal("Failed to initialize Firebase: %v", err)
		}
	}

	st, err := openStores(ctx, cfg, curve, firebaseApp)
	if err != nil {
		logger.Fatal("Failed to open %s store: %v", cfg.StoreDriver, err)
	}
	defer st.close()

	verifier, closeVerifier, err := newVerifier(ctx, cfg, firebaseApp)
	if err != nil {
		logger.Fatal("Failed to initialize %s auth: %v", cfg.AuthProvider, err)
	}
	defer closeVerifier()

	var discounts service.DiscountService
	if cfg.ShopifyEnabled() {
		discounts = service.NewShopifyDiscountService(cfg.ShopifyStoreDomain, cfg.ShopifyAdminToken, cfg.ShopifyAPIVersion, cfg.ShopifyRPS, log)
	} else {
		logger.Warn("Shopify credentials not set, discount codes will not reach the store")
		discounts = service.NewOfflineDiscountService(log)
	}

	var archive *storage.IncidentArchive
	if cfg.IncidentBucket != "" {
		archive, err = storage.NewIncidentArchive(ctx, cfg.IncidentBucket, cfg.FirebaseServiceAccountPath, log)
		if err != nil {
			logger.Fatal("Failed to initialize incident archive: %v", err)
		}
	} else {
		archive = storage.NewLogOnlyArchive(log)
	}
	defer archive.Close()

	wsManager := websocket.NewManager(log)
	wsManager.Start(ctx)

	xpUseCase := usecase.NewXPUseCase(st.xp, curve, wsManager, archive, log)
	questUseCase := usecase.NewQuestUseCase(st.quests, usecase.NewRequirementEvaluator(st.facts), xpUseCase, log)
	rewardUseCase := usecase.NewRewardUseCase(st.rewards, st.xp, xpUseCase, discounts, archive, usecase.RedeemConfig{
		CodePrefix:       cfg.DiscountCodePrefix,
		DiscountValidity: cfg.DiscountValidity(),
	}, log)

	scheduler := jobs.NewScheduler(xpUseCase, cfg.LedgerAuditSchedule, log)
	if err := scheduler.Start(ctx); err != nil {
		logger.Fatal("Failed to start scheduler: %v", err)
	}
	defer scheduler.Stop()

	limiter := ratelimit.NewRateLimiter(ratelimit.Limit{PerMinute: 60}, map[string]ratelimit.Limit{
		ratelimit.ActionRedeem:     {PerMinute: cfg.RedeemRatePerMinute},
		ratelimit.ActionQuestClaim: {PerMinute: 30, Burst: 10},
	})
	limiter.StartCleanupRoutine(ctx)

	handler.Setup(questUseCase, xpUseCase, rewardUseCase, log)

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: []string{
			echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization,
			handler.IdempotencyKeyHeader, apimiddleware.ServiceKeyHeader,
		},
	}))

	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.NewErrorHandler(log, router.RedeemPath)

	authMiddleware := apimiddleware.NewAuthMiddleware(verifier, log)
	adminMiddleware := apimiddleware.NewAdminMiddleware(authMiddleware, cfg.AdminRole, cfg.ServiceKeyHash)

	healthHandler := handler.NewHealthHandler(st.checks)
	wsHandler := handler.NewWebSocketHandler(wsManager, cfg.CORSOrigins, log)

	router.Setup(e, authMiddleware, adminMiddleware, limiter, healthHandler, wsHandler, log)

	go func() {
		logger.Info("Starting server on port %s (store=%s, auth=%s)", cfg.ServerPort, cfg.StoreDriver, cfg.AuthProvider)
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server stopped: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGracePeriod)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed: %v", err)
	}
}

func firebaseCredentials(cfg *config.Config) []option.ClientOption {
	switch {
	case cfg.FirebaseServiceAccountJSON != "":
		return []option.ClientOption{option.WithCredentialsJSON([]byte(cfg.FirebaseServiceAccountJSON))}
	case cfg.FirebaseServiceAccountPath != "":
		return []option.ClientOption{option.WithCredentialsFile(cfg.FirebaseServiceAccountPath)}
	}
	// Application default credentials.
	return nil
}

func openStores(ctx context.Context, cfg *config.Config, curve entity.LevelCurve, app *fbapp.App) (*stores, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		pool, err := postgres.NewPool(ctx, postgres.PoolConfig{
			DatabaseURL: cfg.DatabaseURL,
			MaxConns:    cfg.DBMaxConns,
			MinConns:    cfg.DBMinConns,
		})
		if err != nil {
			return nil, err
		}
		if err := postgres.RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		return &stores{
			xp:      repository.NewPostgresXPRepository(pool, curve),
			facts:   repository.NewPostgresFactRepository(pool),
			quests:  repository.NewPostgresQuestRepository(pool),
			rewards: repository.NewPostgresRewardRepository(pool),
			checks:  map[string]handler.HealthCheck{"postgres": pool.Ping},
			close:   pool.Close,
		}, nil

	case config.StoreDriverFirestore:
		client, err := app.Firestore(ctx)
		if err != nil {
			return nil, err
		}
		return &stores{
			xp:      repository.NewFirestoreXPRepository(client, curve),
			facts:   repository.NewFirestoreFactRepository(client),
			quests:  repository.NewFirestoreQuestRepository(client),
			rewards: repository.NewFirestoreRewardRepository(client),
			checks:  map[string]handler.HealthCheck{"firestore": firestorePing(client)},
			close:   func() { _ = client.Close() },
		}, nil
	}

	logger.Warn("Using the in-memory store, data is lost on restart")
	store := repository.NewMemoryStore(curve)
	return &stores{
		xp:      store,
		facts:   store,
		quests:  store,
		rewards: store,
		close:   func() {},
	}, nil
}

func firestorePing(client *firestore.Client) handler.HealthCheck {
	return func(ctx context.Context) error {
		_, err := client.Collection("xp_state").Limit(1).Documents(ctx).GetAll()
		return err
	}
}

func newVerifier(ctx context.Context, cfg *config.Config, app *fbapp.App) (apimiddleware.TokenVerifier, func(), error) {
	if cfg.AuthProvider == config.AuthProviderFirebase {
		authClient, err := app.Auth(ctx)
		if err != nil {
			return nil, nil, err
		}
		return firebase.NewFirebaseAuthClient(authClient), func() {}, nil
	}

	if cfg.SupabaseJWKSURL != "" {
		v, err := supabase.NewJWKSVerifier(cfg.SupabaseJWKSURL)
		if err != nil {
			return nil, nil, err
		}
		return v, v.Close, nil
	}
	v := supabase.NewSecretVerifier(cfg.SupabaseJWTSecret)
	return v, v.Close, nil
}
