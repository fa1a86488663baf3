package main

import (
	"context"
	"fmt"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rabbitmq/amqp091-go"
	redis "github.com/redis/go-redis/v9"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"

	"crm-voice-server/internal/ai"
	"crm-voice-server/internal/config"
	"crm-voice-server/internal/handler"
	"crm-voice-server/internal/logger"
	"crm-voice-server/internal/messaging"
	"crm-voice-server/internal/repository"
	"crm-voice-server/internal/service"
	"crm-voice-server/migrations"
	"crm-voice-server/pkg/migration"
)

func main() {
	_ = godotenv.Load()

	log, err := logger.New(logger.Config{Level: os.Getenv("LOG_LEVEL")})
	if err != nil {
		stdlog.Fatalf("Failed to initialize logger: %v", err)
	}
	defer log.Sync()

	cfg, err := config.LoadConfig(log)
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- PostgreSQL ---
	dbPool, err := setupPostgres(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer dbPool.Close()
	log.Info("Connected to PostgreSQL")

	migrator := migration.NewMigrator(migration.Config{
		MigrationsPath: ".",
		MigrationsFS:   migrations.Files(),
	}, dbPool)
	if err := migrator.Up(ctx); err != nil {
		log.Fatal("Failed to apply database migrations", zap.Error(err))
	}

	// --- Repositories ---
	var leadRepo repository.LeadRepository = repository.NewPgLeadRepository(dbPool, log)
	eventRepo := repository.NewPgCalendarEventRepository(dbPool, log)
	followUpRepo := repository.NewPgFollowUpRepository(dbPool, log)

	// --- Redis lead cache (optional) ---
	if !cfg.RedisDisabled {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn("Redis unavailable, lead cache disabled", zap.Error(err))
		} else {
			leadRepo = repository.NewCachedLeadRepository(leadRepo, redisClient, cfg.LeadCacheTTL, log)
			log.Info("Lead list cache enabled", zap.String("addr", cfg.RedisAddr))
		}
	}

	// --- RabbitMQ report publisher (optional) ---
	var publisher service.ReportPublisher
	if !cfg.RabbitMQDisabled {
		rabbitConn, err := amqp091.Dial(cfg.RabbitMQURL)
		if err != nil {
			log.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
		}
		defer rabbitConn.Close()

		reportPublisher, err := messaging.NewRabbitMQReportPublisher(rabbitConn)
		if err != nil {
			log.Fatal("Failed to create report publisher", zap.Error(err))
		}
		defer reportPublisher.Close()
		publisher = reportPublisher
		log.Info("Execution report publisher enabled")
	}

	// --- External clients and services ---
	contactClient := repository.NewContactClient(repository.ContactClientConfig{
		BaseURL: cfg.ContactAPIBaseURL,
		APIKey:  cfg.ContactAPIKey,
		Timeout: cfg.ContactAPITimeout,
	}, log)

	aiClient, err := ai.NewClient(cfg, log)
	if err != nil {
		log.Fatal("Failed to create AI client", zap.Error(err))
	}

	prompts := service.NewPromptProvider(cfg.PromptsDir, log)
	planner := service.NewPlannerService(aiClient, prompts, log)
	executor := service.NewExecutorService(leadRepo, eventRepo, followUpRepo, contactClient, publisher, log)
	voiceService := service.NewVoiceService(aiClient, planner, executor, log)

	verifier, err := handler.NewJWTVerifier(cfg.JWTSecret, log)
	if err != nil {
		log.Fatal("Failed to create JWT verifier", zap.Error(err))
	}
	voiceHandler := handler.NewVoiceHandler(voiceService, executor, leadRepo, eventRepo, followUpRepo, verifier, log)

	// --- HTTP server ---
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.RedirectTrailingSlash = true
	router.Use(handler.ZapLoggingMiddleware(log))
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	router.GET("/health", healthHandler)
	router.HEAD("/health", healthHandler)

	voiceHandler.RegisterRoutes(router)

	p := ginprometheus.NewPrometheus("gin")
	p.Use(router)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
		// Voice notes go through a synchronous model round trip; write
		// timeout must outlive the AI timeout.
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.AITimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Starting HTTP server", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server listen error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exiting")
}

// setupPostgres initializes the PostgreSQL connection pool with retry logic:
// on a fresh compose stack the database may come up after the service.
func setupPostgres(ctx context.Context, cfg *config.Config, log *zap.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	poolConfig.MaxConns = cfg.DBMaxConns
	poolConfig.MaxConnIdleTime = cfg.DBIdleTimeout

	var pool *pgxpool.Pool
	for attempt := 1; attempt <= 5; attempt++ {
		pool, err = pgxpool.NewWithConfig(ctx, poolConfig)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				return pool, nil
			}
			pool.Close()
		}
		log.Warn("PostgreSQL not ready, retrying",
			zap.Int("attempt", attempt), zap.Error(err))
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * time.Second):
		}
	}
	return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
}
