package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/savichev/kickora/config"
	"github.com/savichev/kickora/internal/bootstrap"
	"github.com/savichev/kickora/internal/cache"
	"github.com/savichev/kickora/internal/kafka"
	"github.com/savichev/kickora/internal/metrics"
	"github.com/savichev/kickora/internal/repository"
	"github.com/savichev/kickora/internal/service/booking"
	"github.com/savichev/kickora/internal/service/matches"
	"github.com/savichev/kickora/internal/service/payments"
	"go.uber.org/zap"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		logger.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.MatchesCacheTTL)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	registry := prometheus.NewRegistry()
	recorder := metrics.NewRecorder(registry)

	matchRepo := repository.NewMatchRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	paymentRepo := repository.NewPaymentRepository(pool)

	matchService := matches.NewMatchService(matchRepo, redisCache, logger)
	bookingService := booking.NewBookingService(
		bookingRepo,
		matchRepo,
		redisCache,
		producer,
		cfg.Kafka.BookingEventsTopic,
		time.Duration(cfg.Booking.RefundWindowHours)*time.Hour,
		logger,
		booking.WithMetrics(recorder),
		booking.WithConflictRetries(cfg.Booking.ConflictRetries),
	)
	paymentService := payments.NewPaymentService(paymentRepo, bookingRepo)

	if err := bootstrap.Run(ctx, cfg, registry, matchService, bookingService, paymentService); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
