package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/petalmart/storefront/internal/auth"
	"github.com/petalmart/storefront/internal/cache"
	h "github.com/petalmart/storefront/internal/http"
	"github.com/petalmart/storefront/internal/publisher"
	"github.com/petalmart/storefront/internal/repository"
	"github.com/petalmart/storefront/internal/service"
	"github.com/petalmart/storefront/internal/telemetry"
)

type Config struct {
	HTTPPort        string
	DB              repository.Credentials
	RedisAddr       string
	KafkaBrokers    []string
	JWTSecret       string
	TokenTTL        time.Duration
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		slog.Error("invalid DB_PORT", "error", err)
		os.Exit(1)
	}

	return &Config{
		HTTPPort: getEnv("HTTP_PORT", "8080"),
		DB: repository.Credentials{
			Host:              getEnv("DB_HOST", "localhost"),
			Port:              dbPort,
			User:              getEnv("DB_USER", "postgres"),
			Password:          getEnv("DB_PASSWORD", "postgres"),
			DBName:            getEnv("DB_NAME", "storefront"),
			MigrationsDirPath: getEnv("MIGRATIONS_DIR", "./migrations"),
		},
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		KafkaBrokers:    strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
		JWTSecret:       getEnv("JWT_SECRET", "dev-secret"),
		TokenTTL:        7 * 24 * time.Hour,
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	_ = godotenv.Load()
	telemetry.InitLogger()

	cfg := loadConfig()

	db, err := repository.Connect(&cfg.DB)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := repository.RunMigrations(db, &cfg.DB); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()

	cartRepo := repository.NewCartRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	productRepo := repository.NewProductRepository(db)
	customerRepo := repository.NewCustomerRepository(db)

	cartService := service.NewCartService(cartRepo, cache.NewRedisCache(redisClient))
	orderService := service.NewOrderService(orderRepo)
	tokenService := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)

	handlers := h.Handlers{
		Auth:    h.NewAuthHandler(customerRepo, tokenService, cfg.RequestTimeout),
		Profile: h.NewProfileHandler(customerRepo, cfg.RequestTimeout),
		Catalog: h.NewCatalogHandler(productRepo, cfg.RequestTimeout),
		Cart:    h.NewCartHandler(cartService, cfg.RequestTimeout),
		Order:   h.NewOrderHandler(orderService, cfg.RequestTimeout),
	}

	router := h.NewRouter(handlers, tokenService, cfg.RequestTimeout)

	pollerCtx, stopPoller := context.WithCancel(context.Background())
	defer stopPoller()
	poller := publisher.NewOutboxPoller(orderRepo, cfg.KafkaBrokers...)
	go poller.Run(pollerCtx)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "storefront"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("storefront listening", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")
	stopPoller()
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server exited")
}
