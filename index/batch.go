package index

import (
	"context"
	"log/slog"
	"time"

	"github.com/caselight/retrieval/core"
)

// Batching and retry defaults for index writes.
const (
	DefaultBatchSize   = 100
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = 200 * time.Millisecond
)

// Batcher splits large upserts into fixed-size batches and retries each
// batch with exponential backoff. Delivery is at-least-once: a batch that
// failed mid-write is retried whole, and already-landed points are simply
// overwritten with identical content.
type Batcher struct {
	store       Store
	batchSize   int
	maxAttempts int
	baseDelay   time.Duration
	logger      *slog.Logger
}

// BatcherOption configures a Batcher.
type BatcherOption func(*Batcher) error

// WithBatchSize sets the number of points per upsert batch.
func WithBatchSize(size int) BatcherOption {
	return func(b *Batcher) error {
		if size <= 0 {
			return ErrInvalidBatchSize
		}
		b.batchSize = size
		return nil
	}
}

// WithMaxAttempts sets the retry attempt limit per batch.
func WithMaxAttempts(attempts int) BatcherOption {
	return func(b *Batcher) error {
		if attempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		b.maxAttempts = attempts
		return nil
	}
}

// WithBaseDelay sets the initial retry delay.
func WithBaseDelay(delay time.Duration) BatcherOption {
	return func(b *Batcher) error {
		b.baseDelay = delay
		return nil
	}
}

// WithBatcherLogger sets a custom logger.
// Default is slog.Default().
func WithBatcherLogger(logger *slog.Logger) BatcherOption {
	return func(b *Batcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		b.logger = logger
		return nil
	}
}

// NewBatcher creates a batching writer over the store.
func NewBatcher(store Store, opts ...BatcherOption) (*Batcher, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	b := &Batcher{
		store:       store,
		batchSize:   DefaultBatchSize,
		maxAttempts: DefaultMaxAttempts,
		baseDelay:   DefaultBaseDelay,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Upsert writes all points in batches. It stops at the first batch that
// exhausts its retries; earlier batches stay written.
func (b *Batcher) Upsert(ctx context.Context, points []core.IndexedPoint) error {
	for start := 0; start < len(points); start += b.batchSize {
		end := start + b.batchSize
		if end > len(points) {
			end = len(points)
		}
		batch := points[start:end]

		err := RetryWithBackoff(ctx, func() error {
			return b.store.Upsert(ctx, batch)
		}, b.maxAttempts, b.baseDelay)
		if err != nil {
			b.logger.Error("batch upsert failed",
				"offset", start, "size", len(batch), "err", err)
			return err
		}
		b.logger.Debug("batch upserted", "offset", start, "size", len(batch))
	}
	return nil
}

// UpdateSparse pushes sparse-vector rewrites in batches under the same
// retry policy as Upsert.
func (b *Batcher) UpdateSparse(ctx context.Context, updates []SparseUpdate) error {
	for start := 0; start < len(updates); start += b.batchSize {
		end := start + b.batchSize
		if end > len(updates) {
			end = len(updates)
		}
		batch := updates[start:end]

		err := RetryWithBackoff(ctx, func() error {
			return b.store.UpdateSparse(ctx, batch)
		}, b.maxAttempts, b.baseDelay)
		if err != nil {
			b.logger.Error("sparse update batch failed",
				"offset", start, "size", len(batch), "err", err)
			return err
		}
		b.logger.Debug("sparse batch updated", "offset", start, "size", len(batch))
	}
	return nil
}
