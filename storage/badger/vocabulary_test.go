package badger

import (
	"context"
	"testing"

	"github.com/caselight/retrieval/core"
	"github.com/caselight/retrieval/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupVocabRepo(t *testing.T) storage.VocabularyRepository {
	t.Helper()
	chunkRepo, vocabRepo, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		chunkRepo.Close()
		vocabRepo.Close()
		backend.Close()
	})
	return vocabRepo
}

func TestSaveLoadVocabulary(t *testing.T) {
	repo := setupVocabRepo(t)
	ctx := context.Background()

	vocab := &core.Vocabulary{
		Terms:     map[string]uint32{"breach": 0, "lease": 1},
		DocFreq:   []uint32{2, 1},
		DocCount:  5,
		AvgDocLen: 42.5,
	}
	require.NoError(t, repo.SaveVocabulary(ctx, vocab))

	got, err := repo.LoadVocabulary(ctx)
	require.NoError(t, err)
	assert.Equal(t, vocab, got)
}

func TestSaveVocabularyReplaces(t *testing.T) {
	repo := setupVocabRepo(t)
	ctx := context.Background()

	first := &core.Vocabulary{
		Terms:    map[string]uint32{"breach": 0},
		DocFreq:  []uint32{1},
		DocCount: 1,
	}
	second := &core.Vocabulary{
		Terms:    map[string]uint32{"arbitration": 0, "breach": 1},
		DocFreq:  []uint32{1, 2},
		DocCount: 3,
	}
	require.NoError(t, repo.SaveVocabulary(ctx, first))
	require.NoError(t, repo.SaveVocabulary(ctx, second))

	got, err := repo.LoadVocabulary(ctx)
	require.NoError(t, err)
	assert.Equal(t, second, got)
}

func TestLoadVocabularyNotFound(t *testing.T) {
	repo := setupVocabRepo(t)

	_, err := repo.LoadVocabulary(context.Background())
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
