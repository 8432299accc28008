// Package kafka adapts the ingestion pipeline to Kafka: raw export blobs in
// on the source topic, normalized crime records out on the sink topic.
package kafka

import (
	"context"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/crime-zone-api/internal/config"
	"github.com/couchcryptid/crime-zone-api/internal/domain"
)

// Reader consumes raw export blobs from the source topic. One message value
// is one complete export block. It implements pipeline.ExportExtractor.
type Reader struct {
	reader        *kafkago.Reader
	flushInterval time.Duration
	logger        *slog.Logger
}

// NewReader creates a consumer-group reader for the configured source topic.
func NewReader(cfg *config.Config, logger *slog.Logger) *Reader {
	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     cfg.KafkaBrokers,
		Topic:       cfg.KafkaSourceTopic,
		GroupID:     cfg.KafkaGroupID,
		StartOffset: kafkago.FirstOffset,
	})
	return &Reader{
		reader:        r,
		flushInterval: cfg.BatchFlushInterval,
		logger:        logger,
	}
}

// ExtractBatch blocks for the first export, then drains up to max-1 more
// until the flush interval elapses. Returns an empty batch without error
// when the context ends while waiting.
func (r *Reader) ExtractBatch(ctx context.Context, max int) ([]domain.RawExport, error) {
	first, err := r.reader.FetchMessage(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, nil
		}
		return nil, err
	}

	batch := []domain.RawExport{r.mapMessage(first)}
	for len(batch) < max {
		fetchCtx, cancel := context.WithTimeout(ctx, r.flushInterval)
		msg, err := r.reader.FetchMessage(fetchCtx)
		cancel()
		if err != nil {
			break
		}
		batch = append(batch, r.mapMessage(msg))
	}
	return batch, nil
}

// Close shuts down the underlying consumer.
func (r *Reader) Close() error {
	return r.reader.Close()
}

// mapMessage converts a Kafka message into a RawExport with a commit
// callback bound to the message's offset.
func (r *Reader) mapMessage(msg kafkago.Message) domain.RawExport {
	return domain.RawExport{
		Source:    string(msg.Key),
		Body:      msg.Value,
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
		Timestamp: msg.Time,
		Commit: func(ctx context.Context) error {
			return r.reader.CommitMessages(ctx, msg)
		},
	}
}
