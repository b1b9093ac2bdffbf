package badger

import (
	"context"
	"errors"
	"sort"

	"github.com/caselight/retrieval/core"
	"github.com/caselight/retrieval/storage"
	"github.com/dgraph-io/badger/v4"
)

// ChunkRepository implements storage.ChunkRepository for BadgerDB.
type ChunkRepository struct {
	backend *Backend
}

var _ storage.ChunkRepository = (*ChunkRepository)(nil)

// NewChunkRepository creates a new ChunkRepository.
func NewChunkRepository(backend *Backend) (*ChunkRepository, error) {
	if backend == nil {
		return nil, errors.New("backend required")
	}
	return &ChunkRepository{backend: backend}, nil
}

// Close is a no-op; the backend owns the database handle.
func (r *ChunkRepository) Close() error {
	return nil
}

// PutChunks stores chunk records and their document-index entries.
func (r *ChunkRepository) PutChunks(ctx context.Context, chunks ...*core.Chunk) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, chunk := range chunks {
			key := makeChunkKey(chunk.Id)
			if err := tx.Set(key, storage.MarshalChunk(chunk)); err != nil {
				return err
			}
			docKey := makeChunkDocumentKey(chunk.DocumentID, chunk.Id)
			if err := tx.Set(docKey, storage.MarshalID(chunk.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetChunk retrieves a single chunk by ID.
func (r *ChunkRepository) GetChunk(ctx context.Context, id core.ID) (*core.Chunk, error) {
	var chunk *core.Chunk
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		chunk, err = readChunk(tx, makeChunkKey(id))
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	if chunk == nil {
		return nil, storage.ErrNotFound
	}
	return chunk, nil
}

// GetChunks retrieves multiple chunks by their IDs. Missing IDs are
// skipped, not errors.
func (r *ChunkRepository) GetChunks(ctx context.Context, ids ...core.ID) ([]*core.Chunk, error) {
	chunks := make([]*core.Chunk, 0, len(ids))
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			chunk, err := readChunk(tx, makeChunkKey(id))
			if err != nil {
				return err
			}
			if chunk != nil {
				chunks = append(chunks, chunk)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return chunks, nil
}

// GetChunksByDocument retrieves all chunks of a document via the document
// index, ordered by granularity then position.
func (r *ChunkRepository) GetChunksByDocument(ctx context.Context, documentID string) ([]*core.Chunk, error) {
	var chunks []*core.Chunk
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		ids, err := documentChunkIDs(tx, documentID)
		if err != nil {
			return err
		}
		for _, id := range ids {
			chunk, err := readChunk(tx, makeChunkKey(id))
			if err != nil {
				return err
			}
			if chunk != nil {
				chunks = append(chunks, chunk)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	sort.Slice(chunks, func(i, j int) bool {
		if chunks[i].Granularity != chunks[j].Granularity {
			return chunks[i].Granularity < chunks[j].Granularity
		}
		return chunks[i].Position < chunks[j].Position
	})
	return chunks, nil
}

// DeleteByDocument removes all chunks of a document and returns the number
// removed. Unknown documents remove nothing and return 0, nil.
func (r *ChunkRepository) DeleteByDocument(ctx context.Context, documentID string) (int, error) {
	deleted := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		ids, err := documentChunkIDs(tx, documentID)
		if err != nil {
			return err
		}
		for _, id := range ids {
			if err := tx.Delete(makeChunkKey(id)); err != nil {
				return err
			}
			if err := tx.Delete(makeChunkDocumentKey(documentID, id)); err != nil {
				return err
			}
			deleted++
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

// AllTexts returns the text of every stored chunk at the given granularity.
func (r *ChunkRepository) AllTexts(ctx context.Context, granularity core.Granularity) ([]string, error) {
	var texts []string
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(chunkRecordPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				chunk, err := storage.UnmarshalChunk(val)
				if err != nil {
					return err
				}
				if chunk.Granularity == granularity {
					texts = append(texts, chunk.Text)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return texts, nil
}

// AllChunks returns every stored chunk record.
func (r *ChunkRepository) AllChunks(ctx context.Context) ([]*core.Chunk, error) {
	var chunks []*core.Chunk
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(chunkRecordPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				chunk, err := storage.UnmarshalChunk(val)
				if err != nil {
					return err
				}
				chunks = append(chunks, chunk)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return chunks, nil
}

// readChunk reads a chunk by key, returning nil when absent.
func readChunk(tx *badger.Txn, key []byte) (*core.Chunk, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}
	var chunk *core.Chunk
	err = item.Value(func(val []byte) error {
		var err error
		chunk, err = storage.UnmarshalChunk(val)
		return err
	})
	return chunk, err
}

// documentChunkIDs collects the IDs in the document index for documentID.
func documentChunkIDs(tx *badger.Txn, documentID string) ([]core.ID, error) {
	var ids []core.ID
	opts := badger.DefaultIteratorOptions
	opts.Prefix = makePartialChunkDocumentKey(documentID)
	iter := tx.NewIterator(opts)
	defer iter.Close()

	for iter.Rewind(); iter.Valid(); iter.Next() {
		err := iter.Item().Value(func(val []byte) error {
			id, err := storage.UnmarshalID(val)
			if err != nil {
				return err
			}
			ids = append(ids, id)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return ids, nil
}
