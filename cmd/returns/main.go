package main

import (
	"context"
	"errors"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"gitlab.ozon.dev/pupkingeorgij/returns/internal/carrier"
	"gitlab.ozon.dev/pupkingeorgij/returns/internal/config"
	"gitlab.ozon.dev/pupkingeorgij/returns/internal/db"
	"gitlab.ozon.dev/pupkingeorgij/returns/internal/domain"
	"gitlab.ozon.dev/pupkingeorgij/returns/internal/grpcserver"
	"gitlab.ozon.dev/pupkingeorgij/returns/internal/kafka"
	"gitlab.ozon.dev/pupkingeorgij/returns/internal/lock"
	"gitlab.ozon.dev/pupkingeorgij/returns/internal/logger"
	"gitlab.ozon.dev/pupkingeorgij/returns/internal/payment"
	"gitlab.ozon.dev/pupkingeorgij/returns/internal/repository/postgresql"
	"gitlab.ozon.dev/pupkingeorgij/returns/internal/server"
	"gitlab.ozon.dev/pupkingeorgij/returns/internal/service"
	"gitlab.ozon.dev/pupkingeorgij/returns/internal/storage"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("info", "").Fatal("Invalid configuration", zap.Error(err))
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Error("Returns service stopped with error", zap.Error(err))
		os.Exit(1)
	}
	log.Info("Returns service stopped")
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	database, err := db.NewDb(ctx, cfg.DSN())
	if err != nil {
		return err
	}
	defer database.Close()

	if err := db.EnsureAdmin(ctx, database, cfg.AdminUsername, cfg.AdminPassword, log); err != nil {
		return err
	}

	outboxRepo := postgresql.NewOutboxTaskRepo(cfg.OutboxMaxAttempts)
	stg := storage.NewStorage(
		database,
		postgresql.NewReturnRepo(database),
		postgresql.NewHistoryRepo(database),
		postgresql.NewMessageRepo(database),
		postgresql.NewOrderRepo(database),
		outboxRepo,
		cfg.KafkaTopic,
	)

	var carrierClient service.Carrier
	if cfg.CarrierEnabled() {
		carrierClient = carrier.NewClient(carrier.Config{
			BaseURL:          cfg.CarrierBaseURL,
			Token:            cfg.CarrierToken,
			WarehousePincode: cfg.CarrierWarehousePincode,
			Timeout:          cfg.CarrierTimeout,
		}, log)
	} else {
		log.Warn("Carrier not configured, pickups will be scheduled manually")
	}

	var gateway service.PaymentGateway
	if cfg.PaymentEnabled() {
		gateway = payment.NewGateway(payment.Config{
			BaseURL:   cfg.PaymentBaseURL,
			KeyID:     cfg.PaymentKeyID,
			KeySecret: cfg.PaymentKeySecret,
			Timeout:   cfg.PaymentTimeout,
		}, log)
	} else {
		log.Warn("Payment gateway not configured, refunds will be recorded without a gateway call")
	}

	var locker service.Locker
	if cfg.RedisAddr == "" {
		log.Warn("Redis not configured, return locks are held in process memory")
		locker = lock.NewLocalLocker()
	} else {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return err
		}
		locker = lock.NewRedisLocker(rdb, cfg.ReturnLockTTL)
	}

	svc := service.New(stg, carrierClient, gateway, locker, service.Options{
		Policy: domain.ReturnPolicy{
			WindowDays:     cfg.ReturnWindowDays,
			CategoryWindow: cfg.ReturnCategoryWindows,
			MinOrderAmount: cfg.ReturnMinOrderAmount,
		},
		FallbackDays: cfg.PickupFallbackDays,
		FallbackSlot: cfg.PickupFallbackSlot,
	}, log)

	var producer kafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = kafka.NewKafkaProducer(cfg.KafkaBrokers, log)
	} else {
		log.Warn("Kafka brokers not configured, return events go to the log")
		producer = kafka.NewConsoleProducer(log)
	}
	publisher := kafka.NewPublisher(database, outboxRepo, producer, kafka.PublisherConfig{
		PollInterval: cfg.OutboxPollInterval,
		BatchSize:    cfg.OutboxBatchSize,
		MaxAttempts:  cfg.OutboxMaxAttempts,
		StuckAfter:   cfg.OutboxStuckAfter,
	}, log)

	httpServer := server.New(svc, postgresql.NewUserRepo(database), log)
	health := grpcserver.NewServer(database, 5*time.Second, log)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return httpServer.Run(gctx, cfg.HTTPAddr)
	})
	g.Go(func() error {
		return health.Serve(lis)
	})
	g.Go(func() error {
		health.Watch(gctx)
		return nil
	})
	g.Go(func() error {
		publisher.Run(gctx)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()

		health.Stop()
		publisher.Shutdown()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
