package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
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

	_ "github.com/sbilibin2017/gw-ledger/docs"
	"github.com/sbilibin2017/gw-ledger/internal/handlers"
	"github.com/sbilibin2017/gw-ledger/internal/logger"
	"github.com/sbilibin2017/gw-ledger/internal/middlewares"
	"github.com/sbilibin2017/gw-ledger/internal/repositories"
	"github.com/sbilibin2017/gw-ledger/internal/services"

	_ "github.com/jackc/pgx/v5/stdlib"
	httpSwagger "github.com/swaggo/http-swagger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// Build info variables, set via ldflags at build time.
var (
	buildVersion = "N/A" // Version of the service
	buildDate    = "N/A" // Build date
	buildCommit  = "N/A" // Git commit hash
)

// Supported LEDGER_STORE values.
const (
	storePostgres = "postgres"
	storeMemory   = "memory"
)

// @title gw-ledger API
// @version 1.0.0
// @description Account ledger: balances, idempotent debits and credits
// @host localhost:8080
// @BasePath /api/v1
// @schemes http
func main() {
	printBuildInfo()
	configPath := parseFlags()

	appHost, appPort, appGRPCPort, logLevel,
		ledgerStore, ledgerMaxAttempts, ledgerReconcileInterval,
		pgHost, pgPort, pgUser, pgPassword, pgDB,
		pgMaxOpenConns, pgMaxIdleConns,
		redisHost, redisPort, redisDB, redisPassword,
		redisPoolSize, redisMinIdleConns, redisExpSecond,
		kafkaBrokers, kafkaTopic,
		err := parseConfig(configPath)
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}

	if err := run(context.Background(),
		appHost, appPort, appGRPCPort, logLevel,
		ledgerStore, ledgerMaxAttempts, ledgerReconcileInterval,
		pgHost, pgPort, pgUser, pgPassword, pgDB,
		pgMaxOpenConns, pgMaxIdleConns,
		redisHost, redisPort, redisDB, redisPassword,
		redisPoolSize, redisMinIdleConns, redisExpSecond,
		kafkaBrokers, kafkaTopic,
	); err != nil {
		log.Fatalf("application stopped with error: %v", err)
	}
}

// printBuildInfo prints the build version, commit hash, and build date.
func printBuildInfo() {
	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}

// parseFlags parses command-line flags and returns the config file path.
func parseFlags() string {
	c := flag.String("c", "config.env", "Path to configuration file")
	flag.Parse()
	return *c
}

// parseConfig loads environment variables from a file and returns the
// application, ledger, database, Redis, and Kafka configuration.
// An empty REDIS_HOST disables the cache and empty KAFKA_BROKERS disables events.
func parseConfig(path string) (
	appHost, appPort, appGRPCPort, logLevel string,
	ledgerStore string, ledgerMaxAttempts, ledgerReconcileInterval int,
	pgHost string, pgPort int, pgUser, pgPassword, pgDB string,
	pgMaxOpenConns, pgMaxIdleConns int,
	redisHost string, redisPort, redisDB int, redisPassword string,
	redisPoolSize, redisMinIdleConns, redisExpSecond int,
	kafkaBrokers []string, kafkaTopic string,
	err error,
) {
	_ = godotenv.Load(path)

	getEnv := func(key, defaultValue string) string {
		if val, ok := os.LookupEnv(key); ok && val != "" {
			return val
		}
		return defaultValue
	}

	// Application config
	appHost = getEnv("APP_HOST", "localhost")
	appPort = getEnv("APP_PORT", "8080")
	appGRPCPort = getEnv("APP_GRPC_PORT", "9090")
	logLevel = getEnv("APP_LOG_LEVEL", "info")

	// Ledger config
	ledgerStore = getEnv("LEDGER_STORE", storePostgres)
	if ledgerStore != storePostgres && ledgerStore != storeMemory {
		err = fmt.Errorf("LEDGER_STORE must be %q or %q, got %q", storePostgres, storeMemory, ledgerStore)
		return
	}
	if ledgerMaxAttempts, err = strconv.Atoi(getEnv("LEDGER_MAX_ATTEMPTS", strconv.Itoa(services.DefaultMaxAttempts))); err != nil {
		return
	}
	if ledgerReconcileInterval, err = strconv.Atoi(getEnv("LEDGER_RECONCILE_INTERVAL", "60")); err != nil {
		return
	}

	// PostgreSQL config
	pgHost = getEnv("POSTGRES_HOST", "localhost")
	pgUser = getEnv("POSTGRES_USER", "user")
	pgPassword = getEnv("POSTGRES_PASSWORD", "password")
	pgDB = getEnv("POSTGRES_DB", "database")
	if pgPort, err = strconv.Atoi(getEnv("POSTGRES_PORT", "5432")); err != nil {
		return
	}
	if pgMaxOpenConns, err = strconv.Atoi(getEnv("POSTGRES_MAX_OPEN_CONNS", "16")); err != nil {
		return
	}
	if pgMaxIdleConns, err = strconv.Atoi(getEnv("POSTGRES_MAX_IDLE_CONNS", "8")); err != nil {
		return
	}

	// Redis config
	redisHost = getEnv("REDIS_HOST", "")
	if redisPort, err = strconv.Atoi(getEnv("REDIS_PORT", "6379")); err != nil {
		return
	}
	if redisDB, err = strconv.Atoi(getEnv("REDIS_DB", "0")); err != nil {
		return
	}
	redisPassword = getEnv("REDIS_PASSWORD", "")
	if redisPoolSize, err = strconv.Atoi(getEnv("REDIS_POOL_SIZE", "10")); err != nil {
		return
	}
	if redisMinIdleConns, err = strconv.Atoi(getEnv("REDIS_MIN_IDLE_CONNS", "2")); err != nil {
		return
	}
	if redisExpSecond, err = strconv.Atoi(getEnv("REDIS_EXP_SECOND", "3600")); err != nil {
		return
	}

	// Kafka config
	for _, b := range strings.Split(getEnv("KAFKA_BROKERS", ""), ",") {
		if b = strings.TrimSpace(b); b != "" {
			kafkaBrokers = append(kafkaBrokers, b)
		}
	}
	kafkaTopic = getEnv("KAFKA_TOPIC", "ledger.transactions")

	return
}

// run initializes the logger, store, cache, event writer, and the HTTP and
// gRPC servers, then blocks until ctx is cancelled or a signal arrives.
func run(ctx context.Context,
	appHost, appPort, appGRPCPort, logLevel string,
	ledgerStore string, ledgerMaxAttempts, ledgerReconcileInterval int,
	pgHost string, pgPort int, pgUser, pgPassword, pgDB string,
	pgMaxOpenConns, pgMaxIdleConns int,
	redisHost string, redisPort, redisDB int, redisPassword string,
	redisPoolSize, redisMinIdleConns, redisExpSecond int,
	kafkaBrokers []string, kafkaTopic string,
) error {
	// Initialize logger
	if err := logger.Initialize(logLevel); err != nil {
		fmt.Println("failed to initialize logger:", err)
		return err
	}
	defer logger.Sync()
	logger.Log.Infof("Logger initialized with level %s", logLevel)

	// Initialize stores
	var (
		accounts   services.AccountStore
		txnLog     services.TransactionLog
		transactor services.Transactor
	)
	switch ledgerStore {
	case storeMemory:
		store := repositories.NewMemoryStore()
		accounts, txnLog, transactor = store.Accounts(), store.Transactions(), store
		logger.Log.Warn("Using in-memory store, balances are lost on restart")
	default:
		dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
			pgUser, pgPassword, pgHost, pgPort, pgDB)
		logger.Log.Infof("Connecting to PostgreSQL at %s:%d/%s", pgHost, pgPort, pgDB)

		db, err := sqlx.ConnectContext(ctx, "pgx", dsn)
		if err != nil {
			return fmt.Errorf("PostgreSQL connection error: %w", err)
		}
		defer db.Close()
		db.SetMaxOpenConns(pgMaxOpenConns)
		db.SetMaxIdleConns(pgMaxIdleConns)

		if err := repositories.EnsureSchema(ctx, db); err != nil {
			return fmt.Errorf("PostgreSQL schema error: %w", err)
		}

		accounts = repositories.NewAccountRepository(db)
		txnLog = repositories.NewTransactionRepository(db)
		transactor = repositories.NewTransactor(db)
	}

	// Connect to Redis
	var cache services.TransactionCache
	if redisHost != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:         fmt.Sprintf("%s:%d", redisHost, redisPort),
			Password:     redisPassword,
			DB:           redisDB,
			PoolSize:     redisPoolSize,
			MinIdleConns: redisMinIdleConns,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("Redis connection error: %w", err)
		}
		defer rdb.Close()
		cache = repositories.NewTransactionCacheRepository(rdb, time.Duration(redisExpSecond)*time.Second)
	}

	// Initialize Kafka writer
	var kafkaWriter services.KafkaWriter
	if len(kafkaBrokers) > 0 {
		w := &kafka.Writer{
			Addr:         kafka.TCP(kafkaBrokers...),
			Topic:        kafkaTopic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
		}
		defer w.Close()
		kafkaWriter = w
		logger.Log.Infof("Publishing transactions to Kafka topic %s", kafkaTopic)
	}

	// Initialize services
	ledgerService := services.NewLedgerService(accounts, txnLog, transactor, cache, kafkaWriter, ledgerMaxAttempts)
	accountService := services.NewAccountService(accounts)

	ctxShutdown, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	if ledgerReconcileInterval > 0 {
		reconciler := services.NewReconciler(accounts, txnLog, transactor)
		go reconciler.Run(ctxShutdown, time.Duration(ledgerReconcileInterval)*time.Second)
	}

	// Setup router
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middlewares.LoggingMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/users/{userID}/balance", handlers.NewGetBalanceHandler(accountService))
		r.Put("/users", handlers.NewCreateAccountHandler(accountService))
		r.Get("/users", handlers.NewListAccountsHandler(accountService))
		r.Post("/transactions", handlers.NewApplyTransactionHandler(ledgerService))
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://%s:%s/swagger/doc.json", appHost, appPort)),
	))

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", appHost, appPort),
		Handler: r,
	}

	// Setup gRPC health server
	grpcAddr := fmt.Sprintf("%s:%s", appHost, appGRPCPort)
	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		return fmt.Errorf("gRPC listen failed: %w", err)
	}
	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	// Graceful shutdown
	errChan := make(chan error, 2)

	go func() {
		logger.Log.Infof("gRPC health server listening on %s", grpcAddr)
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errChan <- fmt.Errorf("gRPC server failed: %w", err)
		}
	}()

	go func() {
		logger.Log.Infof("HTTP server listening on %s:%s", appHost, appPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	var serveErr error
	select {
	case <-ctxShutdown.Done():
		logger.Log.Info("Shutdown signal received, stopping servers...")
	case serveErr = <-errChan:
	}

	healthServer.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorw("HTTP server shutdown error", "error", err)
	}
	grpcServer.GracefulStop()

	if serveErr != nil {
		return serveErr
	}
	logger.Log.Info("Servers stopped gracefully")
	return nil
}
