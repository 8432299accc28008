package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/crime-zone-api/internal/config"
	"github.com/couchcryptid/crime-zone-api/internal/domain"
)

// Writer publishes normalized crime records to the sink topic for downstream
// consumers (guardian and SOS services). It implements
// pipeline.RecordPublisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// PublishRecords serializes and publishes a pass's records in a single
// WriteMessages call. Record keys are deterministic, so replayed passes
// compact away downstream.
func (w *Writer) PublishRecords(ctx context.Context, records []domain.CrimeRecord) error {
	if len(records) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(records))
	for i := range records {
		msg, err := serializeToMessage(records[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return w.writer.WriteMessages(ctx, msgs...)
}

// Close shuts down the underlying producer.
func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a CrimeRecord into a Kafka message.
func serializeToMessage(record domain.CrimeRecord) (kafkago.Message, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize crime record: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(record.ID()),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "city", Value: []byte(record.City)},
			{Key: "year", Value: []byte(strconv.Itoa(record.Year))},
			{Key: "ingested_at", Value: []byte(domain.Now().Format(time.RFC3339))},
		},
	}, nil
}
