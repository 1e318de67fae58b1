package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"

	"github.com/sbilibin2017/gw-wallet-ledger/internal/handlers"
	"github.com/sbilibin2017/gw-wallet-ledger/internal/logger"
	"github.com/sbilibin2017/gw-wallet-ledger/internal/middlewares"
	"github.com/sbilibin2017/gw-wallet-ledger/internal/repositories"
	"github.com/sbilibin2017/gw-wallet-ledger/internal/services"

	_ "github.com/jackc/pgx/v5/stdlib"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Build info variables, set via ldflags at build time.
var (
	buildVersion = "N/A" // Version of the service
	buildDate    = "N/A" // Build date
	buildCommit  = "N/A" // Git commit hash
)

// config holds the application, database, Redis, Kafka, cache, and
// idempotency configuration.
type config struct {
	AppHost  string
	AppPort  string
	LogLevel string

	PgHost         string
	PgPort         int
	PgUser         string
	PgPassword     string
	PgDB           string
	PgMaxOpenConns int
	PgMaxIdleConns int

	RedisHost         string
	RedisPort         int
	RedisDB           int
	RedisPassword     string
	RedisPoolSize     int
	RedisMinIdleConns int

	KafkaBrokers []string
	KafkaTopic   string

	CacheBalanceTTL    time.Duration
	CacheWalletTTL     time.Duration
	CacheHistoricalTTL time.Duration

	IdempotencyRecordTTL   time.Duration
	IdempotencyLockLease   time.Duration
	IdempotencyMaxAttempts int
	IdempotencyBackoffBase time.Duration
}

// @title gw-wallet-ledger API
// @version 1.0.0
// @description Microservice for managing wallets: deposits, withdrawals, transfers, and balance history
// @host localhost:8080
// @BasePath /api/v1
// @schemes http
func main() {
	printBuildInfo()
	configPath := parseFlags()

	cfg, err := parseConfig(configPath)
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}

	if err := run(context.Background(), cfg); err != nil {
		log.Fatalf("application stopped with error: %v", err)
	}
}

// printBuildInfo prints the build version, commit hash, and build date.
func printBuildInfo() {
	fmt.Printf("Starting service version %s, commit %s, build %s\n", buildVersion, buildCommit, buildDate)
}

// parseFlags parses command-line flags and returns the config file path.
func parseFlags() string {
	c := flag.String("c", "config.env", "Path to configuration file")
	flag.Parse()
	return *c
}

// parseConfig loads environment variables from a file and returns the
// application configuration.
func parseConfig(path string) (cfg config, err error) {
	_ = godotenv.Load(path)

	getEnv := func(key, defaultValue string) string {
		if val, ok := os.LookupEnv(key); ok && val != "" {
			return val
		}
		return defaultValue
	}
	getEnvInt := func(key, defaultValue string) (int, error) {
		return strconv.Atoi(getEnv(key, defaultValue))
	}
	getEnvDuration := func(key, defaultValue string) (time.Duration, error) {
		return time.ParseDuration(getEnv(key, defaultValue))
	}

	// Application config
	cfg.AppHost = getEnv("APP_HOST", "localhost")
	cfg.AppPort = getEnv("APP_PORT", "8080")
	cfg.LogLevel = getEnv("APP_LOG_LEVEL", "info")

	// PostgreSQL config
	cfg.PgHost = getEnv("POSTGRES_HOST", "localhost")
	cfg.PgUser = getEnv("POSTGRES_USER", "user")
	cfg.PgPassword = getEnv("POSTGRES_PASSWORD", "password")
	cfg.PgDB = getEnv("POSTGRES_DB", "database")
	if cfg.PgPort, err = getEnvInt("POSTGRES_PORT", "5432"); err != nil {
		return
	}
	if cfg.PgMaxOpenConns, err = getEnvInt("POSTGRES_MAX_OPEN_CONNS", "16"); err != nil {
		return
	}
	if cfg.PgMaxIdleConns, err = getEnvInt("POSTGRES_MAX_IDLE_CONNS", "8"); err != nil {
		return
	}

	// Redis config
	cfg.RedisHost = getEnv("REDIS_HOST", "localhost")
	if cfg.RedisPort, err = getEnvInt("REDIS_PORT", "6379"); err != nil {
		return
	}
	if cfg.RedisDB, err = getEnvInt("REDIS_DB", "0"); err != nil {
		return
	}
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	if cfg.RedisPoolSize, err = getEnvInt("REDIS_POOL_SIZE", "10"); err != nil {
		return
	}
	if cfg.RedisMinIdleConns, err = getEnvInt("REDIS_MIN_IDLE_CONNS", "2"); err != nil {
		return
	}

	// Kafka config; empty brokers disable event publishing
	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}
	cfg.KafkaTopic = getEnv("KAFKA_TOPIC", "wallet-transactions")

	// Cache config
	if cfg.CacheBalanceTTL, err = getEnvDuration("CACHE_BALANCE_TTL", "1m"); err != nil {
		return
	}
	if cfg.CacheWalletTTL, err = getEnvDuration("CACHE_WALLET_TTL", "5m"); err != nil {
		return
	}
	if cfg.CacheHistoricalTTL, err = getEnvDuration("CACHE_HISTORICAL_TTL", "10m"); err != nil {
		return
	}

	// Idempotency config
	if cfg.IdempotencyRecordTTL, err = getEnvDuration("IDEMPOTENCY_RECORD_TTL", "24h"); err != nil {
		return
	}
	if cfg.IdempotencyLockLease, err = getEnvDuration("IDEMPOTENCY_LOCK_LEASE", "10s"); err != nil {
		return
	}
	if cfg.IdempotencyMaxAttempts, err = getEnvInt("IDEMPOTENCY_MAX_ATTEMPTS", "3"); err != nil {
		return
	}
	if cfg.IdempotencyBackoffBase, err = getEnvDuration("IDEMPOTENCY_BACKOFF_BASE", "100ms"); err != nil {
		return
	}

	return cfg, nil
}

// run initializes the logger, database, Redis, Kafka writer, and HTTP server.
// It sets up routes, applies middleware, and handles graceful shutdown.
func run(ctx context.Context, cfg config) error {
	if err := logger.Initialize(cfg.LogLevel); err != nil {
		fmt.Println("failed to initialize logger:", err)
		return err
	}
	defer logger.Log.Sync()
	logger.Log.Infof("Logger initialized with level %s", cfg.LogLevel)

	// Connect to PostgreSQL
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		cfg.PgUser, cfg.PgPassword, cfg.PgHost, cfg.PgPort, cfg.PgDB)
	logger.Log.Infof("Connecting to PostgreSQL: %s", dsn)

	db, err := sqlx.ConnectContext(ctx, "pgx", dsn)
	if err != nil {
		return fmt.Errorf("PostgreSQL connection error: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.PgMaxOpenConns)
	db.SetMaxIdleConns(cfg.PgMaxIdleConns)
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("PostgreSQL ping failed: %w", err)
	}

	// Connect to Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.RedisHost, cfg.RedisPort),
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		PoolSize:     cfg.RedisPoolSize,
		MinIdleConns: cfg.RedisMinIdleConns,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("Redis connection error: %w", err)
	}
	defer rdb.Close()

	// Kafka writer, optional
	var kafkaWriter services.KafkaWriter
	if len(cfg.KafkaBrokers) > 0 {
		w := &kafka.Writer{
			Addr:     kafka.TCP(cfg.KafkaBrokers...),
			Topic:    cfg.KafkaTopic,
			Balancer: &kafka.LeastBytes{},
		}
		defer w.Close()
		kafkaWriter = w
		logger.Log.Infof("Kafka writer configured for topic %s", cfg.KafkaTopic)
	} else {
		logger.Log.Warn("Kafka brokers not configured, transaction events disabled")
	}

	// Initialize repositories
	walletReadRepo := repositories.NewWalletReadRepository(db)
	walletWriteRepo := repositories.NewWalletWriteRepository(db, middlewares.GetTxFromContext)
	txnReadRepo := repositories.NewTransactionReadRepository(db)
	txnWriteRepo := repositories.NewTransactionWriteRepository(db, middlewares.GetTxFromContext)
	userReadRepo := repositories.NewUserReadRepository(db)
	cacheRepo := repositories.NewWalletCacheRepository(rdb, repositories.CacheConfig{
		BalanceTTL:    cfg.CacheBalanceTTL,
		WalletTTL:     cfg.CacheWalletTTL,
		HistoricalTTL: cfg.CacheHistoricalTTL,
	})
	idempotencyRepo := repositories.NewIdempotencyRepository(rdb)

	// Initialize services
	coordinator := services.NewIdempotencyCoordinator(idempotencyRepo, services.IdempotencyConfig{
		RecordTTL:   cfg.IdempotencyRecordTTL,
		LockLease:   cfg.IdempotencyLockLease,
		MaxAttempts: cfg.IdempotencyMaxAttempts,
		BackoffBase: cfg.IdempotencyBackoffBase,
	})
	fallbackHandler := services.NewWalletFallbackHandler()
	walletService := services.NewWalletService(
		walletReadRepo, walletWriteRepo, userReadRepo,
		txnWriteRepo, txnReadRepo,
		cacheRepo, coordinator, fallbackHandler, kafkaWriter,
	)

	// Initialize handlers
	createWalletHandler := handlers.NewCreateWalletHandler(walletService)
	getWalletHandler := handlers.NewGetWalletHandler(walletService)
	getBalanceHandler := handlers.NewGetBalanceHandler(walletService)
	getHistoricalBalanceHandler := handlers.NewGetHistoricalBalanceHandler(walletService)
	getTransactionsHandler := handlers.NewGetTransactionsHandler(walletService)
	depositHandler := handlers.NewDepositHandler(walletService)
	withdrawHandler := handlers.NewWithdrawHandler(walletService)
	transferHandler := handlers.NewTransferHandler(walletService)

	// Setup router
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middlewares.LoggingMiddleware)

	r.Route("/api/v1/wallets", func(r chi.Router) {
		// Read routes
		r.Get("/{walletId}", getWalletHandler)
		r.Get("/{walletId}/balance", getBalanceHandler)
		r.Get("/{walletId}/balance/historical", getHistoricalBalanceHandler)
		r.Get("/{walletId}/transactions", getTransactionsHandler)

		// Mutating routes run inside a per-request database transaction
		r.Group(func(r chi.Router) {
			r.Use(middlewares.TxMiddleware(db))
			r.Post("/", createWalletHandler)
			r.Post("/{walletId}/deposit", depositHandler)
			r.Post("/{walletId}/withdraw", withdrawHandler)
			r.Post("/transfer", transferHandler)
		})
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://%s:%s/swagger/doc.json", cfg.AppHost, cfg.AppPort)),
	))

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", cfg.AppHost, cfg.AppPort),
		Handler: r,
	}

	// Graceful shutdown
	errChan := make(chan error, 1)
	ctxShutdown, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	go func() {
		logger.Log.Infof("HTTP server listening on %s:%s", cfg.AppHost, cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	select {
	case <-ctxShutdown.Done():
		logger.Log.Info("Shutdown signal received, stopping HTTP server...")
	case serveErr := <-errChan:
		return serveErr
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorw("HTTP server shutdown error", "error", err)
	}

	logger.Log.Info("HTTP server stopped gracefully")
	return nil
}
