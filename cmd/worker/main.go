package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/savichev/kickora/config"
	"github.com/savichev/kickora/internal/email"
	"github.com/savichev/kickora/internal/kafka"
	"github.com/savichev/kickora/internal/repository"
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		logger.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	matchRepo := repository.NewMatchRepository(pool)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	emailSender := email.NewSender(logger)

	go func() {
		if err := consumer.ConsumeBookingEvents(ctx, emailSender.Send); err != nil {
			logger.Warn("consumer stopped", zap.Error(err))
		}
	}()

	sweep := cfg.Worker.CapacityAuditMinutes
	if sweep <= 0 {
		sweep = 10
	}
	auditTicker := time.NewTicker(time.Duration(sweep) * time.Minute)
	defer auditTicker.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-auditTicker.C:
			drift, err := matchRepo.CapacityDrift(ctx)
			if err != nil {
				logger.Error("capacity audit failed", zap.Error(err))
				continue
			}
			for _, d := range drift {
				logger.Error("capacity counter out of sync",
					zap.String("match_id", d.MatchID),
					zap.Int("max_players", d.MaxPlayers),
					zap.Int("players_left", d.PlayersLeft),
					zap.Int("active_bookings", d.ActiveBookings),
				)
			}
			if len(drift) == 0 {
				logger.Info("capacity audit clean")
			}
		case s := <-sig:
			logger.Info("received signal, shutting down", zap.Stringer("signal", s))
			return
		}
	}
}
