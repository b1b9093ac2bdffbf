package badger

import (
	"context"
	"errors"

	"github.com/caselight/retrieval/core"
	"github.com/caselight/retrieval/storage"
	"github.com/dgraph-io/badger/v4"
)

// VocabularyRepository implements storage.VocabularyRepository for BadgerDB.
// A single key holds the latest snapshot; saves replace it whole.
type VocabularyRepository struct {
	backend *Backend
}

var _ storage.VocabularyRepository = (*VocabularyRepository)(nil)

// NewVocabularyRepository creates a new VocabularyRepository.
func NewVocabularyRepository(backend *Backend) (*VocabularyRepository, error) {
	if backend == nil {
		return nil, errors.New("backend required")
	}
	return &VocabularyRepository{backend: backend}, nil
}

// Close is a no-op; the backend owns the database handle.
func (r *VocabularyRepository) Close() error {
	return nil
}

// SaveVocabulary stores the snapshot, replacing any previous one.
func (r *VocabularyRepository) SaveVocabulary(ctx context.Context, vocab *core.Vocabulary) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeVocabularyKey(), storage.MarshalVocabulary(vocab)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// LoadVocabulary retrieves the stored snapshot.
func (r *VocabularyRepository) LoadVocabulary(ctx context.Context) (*core.Vocabulary, error) {
	var vocab *core.Vocabulary
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeVocabularyKey())
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			vocab, err = storage.UnmarshalVocabulary(val)
			return err
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return vocab, nil
}
