package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/resale-ops/internal/config"
	"github.com/segmentio/kafka-go"
)

// ImportRequestProducer publishes supplier import requests for the worker.
// Writes are synchronous so the API can fail the job when the broker rejects
// the message.
type ImportRequestProducer struct {
	logger *slog.Logger
	writer KafkaWriter // Interface for testability
	topic  string
}

// NewImportRequestProducer ensures the import topic exists and opens a writer on it.
func NewImportRequestProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*ImportRequestProducer, error) {
	if cfg.ImportTopic == "" {
		return nil, fmt.Errorf("kafka import topic is not configured")
	}

	if err := ensureTopic(cfg, cfg.ImportTopic, logger); err != nil {
		return nil, fmt.Errorf("failed to ensure import topic %s exists: %w", cfg.ImportTopic, err)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.BrokerList()...),
		Topic:        cfg.ImportTopic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		WriteTimeout: cfg.MaxWait,
	}

	return &ImportRequestProducer{
		logger: logger,
		writer: writer,
		topic:  cfg.ImportTopic,
	}, nil
}

// Publish writes value as JSON. Messages for one supplier share a key and so
// land on one partition in order.
func (p *ImportRequestProducer) Publish(ctx context.Context, key string, value interface{}) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal import request: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: jsonValue,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish import request",
			"topic", p.topic,
			"key", key,
			"error", err,
		)
		return fmt.Errorf("failed to publish import request to %s: %w", p.topic, err)
	}

	p.logger.Debug("Published import request",
		"topic", p.topic,
		"key", key,
	)
	return nil
}

func (p *ImportRequestProducer) Close() error {
	p.logger.Info("Closing import request producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}
