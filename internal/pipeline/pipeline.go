// Package pipeline orchestrates ingestion: extract a raw export, parse it
// into normalized records, swap the store, persist the snapshot, and publish
// the pass's records to the sink. Every ingestion entry point (source topic,
// admin endpoint, one-shot CLI) funnels through the same pass so idempotence
// holds everywhere.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/crime-zone-api/internal/domain"
	"github.com/couchcryptid/crime-zone-api/internal/observability"
	"github.com/couchcryptid/crime-zone-api/internal/store"
)

// ExportExtractor reads up to max raw exports from the source.
type ExportExtractor interface {
	ExtractBatch(ctx context.Context, max int) ([]domain.RawExport, error)
}

// RecordPublisher forwards a pass's normalized records to downstream
// consumers.
type RecordPublisher interface {
	PublishRecords(ctx context.Context, records []domain.CrimeRecord) error
}

// Pipeline runs ingestion passes against the normalized store.
type Pipeline struct {
	store       *store.Store
	extractor   ExportExtractor // nil when no source topic is configured
	publisher   RecordPublisher // nil when no sink topic is configured
	logger      *slog.Logger
	metrics     *observability.Metrics
	persistPath string
	batchSize   int
	ready       atomic.Bool
}

// New creates a Pipeline. A store preloaded from a snapshot makes the
// service ready immediately; otherwise readiness waits for the first pass.
func New(st *store.Store, extractor ExportExtractor, publisher RecordPublisher, logger *slog.Logger, metrics *observability.Metrics, persistPath string, batchSize int) *Pipeline {
	if batchSize <= 0 {
		batchSize = 10
	}
	p := &Pipeline{
		store:       st,
		extractor:   extractor,
		publisher:   publisher,
		logger:      logger,
		metrics:     metrics,
		persistPath: persistPath,
		batchSize:   batchSize,
	}
	if st.Len() > 0 {
		p.ready.Store(true)
		metrics.StoreRecords.Set(float64(st.Len()))
	}
	return p
}

// CheckReadiness returns nil once the store holds data from a snapshot or a
// completed pass.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no ingestion pass has completed yet")
	}
	return nil
}

// IngestBlock runs one full pass over a raw export: parse, upsert-and-swap,
// persist, publish. Malformed input degrades by omission; the only error
// paths are persistence and publishing. A pass that produces zero records
// leaves the previously swapped store untouched and is reported as a
// data-quality warning.
func (p *Pipeline) IngestBlock(ctx context.Context, source string, body []byte) (domain.ParseResult, error) {
	start := time.Now()
	result := domain.ParseExport(string(body))

	p.metrics.LinesDropped.Add(float64(result.DroppedLines))

	if len(result.Records) == 0 {
		p.metrics.EmptyPasses.Inc()
		p.logger.Warn("ingestion pass produced zero records",
			"source", source,
			"dropped_lines", result.DroppedLines,
		)
		return result, nil
	}

	p.store.Apply(result.Records, store.Meta{
		IngestedAt:   domain.Now(),
		DroppedLines: result.DroppedLines,
	})

	if p.persistPath != "" {
		if err := p.store.SaveFile(p.persistPath); err != nil {
			p.metrics.IngestErrors.Inc()
			return result, err
		}
	}

	if p.publisher != nil {
		if err := p.publisher.PublishRecords(ctx, result.Records); err != nil {
			p.metrics.IngestErrors.Inc()
			return result, err
		}
	}

	p.metrics.PassesTotal.Inc()
	p.metrics.RecordsIngested.Add(float64(len(result.Records)))
	p.metrics.StoreRecords.Set(float64(p.store.Len()))
	p.metrics.PassDuration.Observe(time.Since(start).Seconds())
	p.ready.Store(true)

	p.logger.Info("ingestion pass complete",
		"source", source,
		"records", len(result.Records),
		"cities", len(result.Cities),
		"dropped_lines", result.DroppedLines,
		"store_records", p.store.Len(),
	)
	return result, nil
}

// Run consumes raw exports from the source until the context is cancelled.
// Extraction and publish failures back off exponentially; parse problems
// never stop the loop.
func (p *Pipeline) Run(ctx context.Context) error {
	if p.extractor == nil {
		return errors.New("no export source configured")
	}

	p.logger.Info("ingestion loop started", "batch_size", p.batchSize)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	// Exponential backoff: start at 200ms, double each retry, cap at 5s.
	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("ingestion loop stopping", "reason", ctx.Err())
			return nil
		default:
		}

		if !p.processBatch(ctx, &backoff, maxBackoff) {
			return nil
		}
	}
}

// processBatch runs one extract-parse-swap cycle. Returns false if the loop
// should stop.
func (p *Pipeline) processBatch(ctx context.Context, backoff *time.Duration, maxBackoff time.Duration) bool {
	batch, err := p.extractor.ExtractBatch(ctx, p.batchSize)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		p.logger.Error("extract batch failed", "error", err)
		p.metrics.IngestErrors.Inc()
		return p.backoffOrStop(ctx, backoff, maxBackoff)
	}

	if len(batch) == 0 {
		return ctx.Err() == nil
	}
	*backoff = 200 * time.Millisecond

	for _, export := range batch {
		if _, err := p.IngestBlock(ctx, export.Source, export.Body); err != nil {
			p.logger.Error("ingestion pass failed", "source", export.Source, "error", err)
			if !p.backoffOrStop(ctx, backoff, maxBackoff) {
				return false
			}
			// Leave the offset uncommitted so the export is redelivered;
			// replaying a pass is safe because upserts are idempotent.
			continue
		}
		p.commitExport(ctx, export)
	}
	return true
}

// backoffOrStop sleeps with the current backoff and advances it. Returns
// false if the loop should stop.
func (p *Pipeline) backoffOrStop(ctx context.Context, backoff *time.Duration, maxBackoff time.Duration) bool {
	if ctx.Err() != nil {
		return false
	}
	if !sleepWithContext(ctx, *backoff) {
		return false
	}
	*backoff = nextBackoff(*backoff, maxBackoff)
	return true
}

// commitExport commits the export's offset if a commit function is available.
func (p *Pipeline) commitExport(ctx context.Context, export domain.RawExport) {
	if export.Commit == nil {
		return
	}
	if err := export.Commit(ctx); err != nil {
		p.logger.Warn("commit offset failed", "error", err,
			"topic", export.Topic, "partition", export.Partition, "offset", export.Offset)
	}
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
