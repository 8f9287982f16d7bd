package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/fatality-map-service/internal/config"
	"github.com/couchcryptid/fatality-map-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

const publishBatchTimeout = 10 * time.Millisecond

// Writer publishes built symbol layers to a Kafka topic.
// It implements mapview.LayerSink.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured layer topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaLayerTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		// Layers are published one per request; flush each immediately.
		BatchSize:    1,
		BatchTimeout: publishBatchTimeout,
	}
	return &Writer{writer: w, logger: logger}
}

// PublishLayer serializes one layer and writes it keyed by year, so every
// layer for a year lands on the same partition.
func (w *Writer) PublishLayer(ctx context.Context, layer domain.SymbolLayer) error {
	msg, err := serializeToMessage(layer)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish layer %s: %w", layer.ID, err)
	}
	w.logger.Debug("layer published", "layer_id", layer.ID, "topic", w.writer.Topic)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a SymbolLayer into a Kafka message.
func serializeToMessage(layer domain.SymbolLayer) (kafkago.Message, error) {
	data, err := json.Marshal(layer)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize symbol layer: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(layer.Year),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "year", Value: []byte(layer.Year)},
			{Key: "built_at", Value: []byte(layer.BuiltAt.Format(time.RFC3339))},
		},
	}, nil
}
