package main

import (
	"context"
	"encoding/json"
	"os/signal"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"gitlab.ozon.dev/pupkingeorgij/returns/internal/config"
	"gitlab.ozon.dev/pupkingeorgij/returns/internal/logger"
	"gitlab.ozon.dev/pupkingeorgij/returns/internal/repository"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		logger.New("info", "").Fatal("Invalid configuration", zap.Error(err))
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat).Named("consumer")
	defer func() { _ = log.Sync() }()

	if len(cfg.KafkaBrokers) == 0 {
		log.Fatal("KAFKA_BROKERS is required for the consumer")
	}

	log.Info("Starting Kafka consumer")

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.KafkaBrokers,
		GroupID:        cfg.KafkaGroupID,
		Topic:          cfg.KafkaTopic,
		MinBytes:       10e3,
		MaxBytes:       10e6,
		CommitInterval: time.Second,
		MaxWait:        3 * time.Second,
	})
	defer func() {
		log.Info("Closing Kafka reader")
		if err := r.Close(); err != nil {
			log.Error("Error closing Kafka reader", zap.Error(err))
		}
	}()

	log.Info("Consumer connected",
		zap.String("topic", cfg.KafkaTopic),
		zap.Strings("brokers", cfg.KafkaBrokers),
		zap.String("group_id", cfg.KafkaGroupID))

	for {
		m, err := r.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("Shutdown signal received, stopping consumer")
				return
			}
			log.Error("Error reading message", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(5 * time.Second):
			}
			continue
		}

		fields := []zap.Field{
			zap.Int("partition", m.Partition),
			zap.Int64("offset", m.Offset),
			zap.String("key", string(m.Key)),
			zap.Time("timestamp", m.Time),
		}

		var event repository.ReturnEvent
		if err := json.Unmarshal(m.Value, &event); err != nil {
			log.Warn("Skipping undecodable message", append(fields, zap.Error(err), zap.ByteString("value", m.Value))...)
			continue
		}

		log.Info("Return event",
			append(fields,
				zap.String("event_id", event.EventID),
				zap.String("return_number", event.ReturnNumber),
				zap.String("order_id", event.OrderID),
				zap.String("previous_status", event.PreviousStatus),
				zap.String("status", event.Status),
				zap.String("changed_by", event.ChangedBy),
				zap.String("note", event.Note),
				zap.Time("occurred_at", event.OccurredAt),
			)...)
	}
}
