package storage

import (
	"context"

	"github.com/caselight/retrieval/core"
)

// ChunkRepository provides operations for managing chunk records.
// Implementations must be thread-safe and support concurrent access.
type ChunkRepository interface {
	// PutChunks stores chunk records. Chunk IDs are content-addressed, so
	// re-putting an unchanged chunk overwrites it in place.
	PutChunks(ctx context.Context, chunks ...*core.Chunk) error

	// GetChunk retrieves a single chunk by ID.
	// Returns ErrNotFound if the chunk doesn't exist.
	GetChunk(ctx context.Context, id core.ID) (*core.Chunk, error)

	// GetChunks retrieves multiple chunks by their IDs.
	// Returns only the chunks that exist (no error for missing chunks).
	GetChunks(ctx context.Context, ids ...core.ID) ([]*core.Chunk, error)

	// GetChunksByDocument retrieves all chunks of a document, ordered by
	// granularity then position.
	GetChunksByDocument(ctx context.Context, documentID string) ([]*core.Chunk, error)

	// DeleteByDocument removes all chunks of a document and returns the
	// number removed. Deleting an unknown document returns 0, nil.
	DeleteByDocument(ctx context.Context, documentID string) (int, error)

	// AllTexts streams the text of every stored chunk at the given
	// granularity, for vocabulary refits.
	AllTexts(ctx context.Context, granularity core.Granularity) ([]string, error)

	// AllChunks retrieves every stored chunk across all documents and
	// granularities, for re-encoding sparse vectors after a refit.
	AllChunks(ctx context.Context) ([]*core.Chunk, error)

	// Close closes the repository and releases resources.
	Close() error
}

// VocabularyRepository persists the sparse-encoding vocabulary snapshot.
type VocabularyRepository interface {
	// SaveVocabulary stores the snapshot, replacing any previous one.
	SaveVocabulary(ctx context.Context, vocab *core.Vocabulary) error

	// LoadVocabulary retrieves the stored snapshot.
	// Returns ErrNotFound if no snapshot has been saved.
	LoadVocabulary(ctx context.Context) (*core.Vocabulary, error)

	// Close closes the repository and releases resources.
	Close() error
}
