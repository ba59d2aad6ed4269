package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/couchcryptid/festival-map/internal/config"
	"github.com/couchcryptid/festival-map/internal/domain"
)

// messageWriter is the subset of *kafkago.Writer used by Writer.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer publishes every map feature as one Kafka message.
// It implements pipeline.Loader.
type Writer struct {
	writer messageWriter
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured feature topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger}
}

// Load serializes all features and publishes them in a single
// WriteMessages call. Messages are keyed by feature id, so a rerun lands
// each festival on the same partition.
func (w *Writer) Load(ctx context.Context, art domain.Artifacts) error {
	if art.Collection == nil || len(art.Collection.Features) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(art.Collection.Features))
	for i, f := range art.Collection.Features {
		msg, err := serializeToMessage(f)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish features: %w", err)
	}
	w.logger.Info("features published", "messages", len(msgs))
	return nil
}

// Close flushes pending messages and closes the producer.
func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a feature into a Kafka message with its
// continent and size as headers.
func serializeToMessage(f *geojson.Feature) (kafkago.Message, error) {
	data, err := json.Marshal(f)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize feature %s: %w", f.ID, err)
	}
	return kafkago.Message{
		Key:   []byte(f.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "continent", Value: []byte(stringProperty(f, "continent"))},
			{Key: "size", Value: []byte(stringProperty(f, "size"))},
		},
	}, nil
}

func stringProperty(f *geojson.Feature, key string) string {
	s, _ := f.Properties[key].(string)
	return s
}
