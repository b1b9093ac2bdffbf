package index

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/caselight/retrieval/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingStore struct {
	mu            sync.Mutex
	batches       [][]core.IndexedPoint
	sparseBatches [][]SparseUpdate
	failFor       int // number of initial Upsert calls that fail
	calls         int
}

func (r *recordingStore) Upsert(_ context.Context, points []core.IndexedPoint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.calls <= r.failFor {
		return errors.New("transient write failure")
	}
	batch := make([]core.IndexedPoint, len(points))
	copy(batch, points)
	r.batches = append(r.batches, batch)
	return nil
}

func (r *recordingStore) UpdateSparse(_ context.Context, updates []SparseUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	batch := make([]SparseUpdate, len(updates))
	copy(batch, updates)
	r.sparseBatches = append(r.sparseBatches, batch)
	return nil
}

func (r *recordingStore) Query(context.Context, QueryRequest) ([]core.RankedHit, error) {
	return nil, nil
}

func (r *recordingStore) DeleteByDocument(context.Context, string) error { return nil }
func (r *recordingStore) Close() error                                   { return nil }

func makePoints(n int) []core.IndexedPoint {
	points := make([]core.IndexedPoint, n)
	for i := range points {
		points[i] = core.IndexedPoint{ChunkID: core.ID(i + 1)}
	}
	return points
}

func TestNewBatcher(t *testing.T) {
	t.Run("nil store", func(t *testing.T) {
		_, err := NewBatcher(nil)
		assert.ErrorIs(t, err, ErrStoreRequired)
	})

	t.Run("invalid batch size", func(t *testing.T) {
		_, err := NewBatcher(&recordingStore{}, WithBatchSize(0))
		assert.ErrorIs(t, err, ErrInvalidBatchSize)
	})
}

func TestBatcherSplitsBatches(t *testing.T) {
	store := &recordingStore{}
	b, err := NewBatcher(store, WithBatchSize(10), WithBaseDelay(time.Millisecond))
	require.NoError(t, err)

	require.NoError(t, b.Upsert(context.Background(), makePoints(25)))

	require.Len(t, store.batches, 3)
	assert.Len(t, store.batches[0], 10)
	assert.Len(t, store.batches[1], 10)
	assert.Len(t, store.batches[2], 5)
	// Order is preserved across batches.
	assert.Equal(t, core.ID(1), store.batches[0][0].ChunkID)
	assert.Equal(t, core.ID(21), store.batches[2][0].ChunkID)
}

func TestBatcherRetriesTransientFailures(t *testing.T) {
	store := &recordingStore{failFor: 2}
	b, err := NewBatcher(store, WithBatchSize(10),
		WithMaxAttempts(3), WithBaseDelay(time.Millisecond))
	require.NoError(t, err)

	require.NoError(t, b.Upsert(context.Background(), makePoints(5)))
	assert.Equal(t, 3, store.calls)
	assert.Len(t, store.batches, 1)
}

func TestBatcherStopsAfterExhaustedRetries(t *testing.T) {
	store := &recordingStore{failFor: 100}
	b, err := NewBatcher(store, WithBatchSize(10),
		WithMaxAttempts(2), WithBaseDelay(time.Millisecond))
	require.NoError(t, err)

	err = b.Upsert(context.Background(), makePoints(25))
	require.Error(t, err)
	// First batch exhausted both attempts; later batches never started.
	assert.Equal(t, 2, store.calls)
	assert.Empty(t, store.batches)
}

func TestBatcherUpdateSparseSplitsBatches(t *testing.T) {
	store := &recordingStore{}
	b, err := NewBatcher(store, WithBatchSize(10), WithBaseDelay(time.Millisecond))
	require.NoError(t, err)

	updates := make([]SparseUpdate, 15)
	for i := range updates {
		updates[i] = SparseUpdate{
			PointID: core.ID(i + 1),
			Sparse:  core.SparseVector{0: 1.0},
		}
	}
	require.NoError(t, b.UpdateSparse(context.Background(), updates))

	require.Len(t, store.sparseBatches, 2)
	assert.Len(t, store.sparseBatches[0], 10)
	assert.Len(t, store.sparseBatches[1], 5)
	assert.Equal(t, core.ID(11), store.sparseBatches[1][0].PointID)
}

func TestBatcherEmptyInput(t *testing.T) {
	store := &recordingStore{}
	b, err := NewBatcher(store)
	require.NoError(t, err)

	require.NoError(t, b.Upsert(context.Background(), nil))
	assert.Zero(t, store.calls)
}
