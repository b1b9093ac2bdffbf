package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/caselight/retrieval/ai"
	"github.com/caselight/retrieval/ai/mock"
	"github.com/caselight/retrieval/chunk"
	"github.com/caselight/retrieval/core"
	idx "github.com/caselight/retrieval/index"
	"github.com/caselight/retrieval/index/memory"
	"github.com/caselight/retrieval/sparse"
	"github.com/caselight/retrieval/storage"
	badgerstore "github.com/caselight/retrieval/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const contractText = `ARTICLE I. DEFINITIONS

The tenant agrees to pay rent on the first day of each month. Failure to
pay constitutes a material breach of this lease agreement.

ARTICLE II. REMEDIES

Upon breach of contract the landlord may recover damages including lost
rent and reasonable attorney fees under 11 U.S.C. § 362.`

type pipelineFixture struct {
	pipeline *Pipeline
	embedder *mock.MockEmbedder
	store    *memory.Store
	repo     storage.ChunkRepository
	encoder  *sparse.Encoder
}

func setupPipeline(t *testing.T, opts ...Option) *pipelineFixture {
	t.Helper()

	chunkRepo, vocabRepo, backend, err := badgerstore.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		chunkRepo.Close()
		vocabRepo.Close()
		backend.Close()
	})

	chunker, err := chunk.NewChunker()
	require.NoError(t, err)

	encoder, err := sparse.NewEncoder()
	require.NoError(t, err)

	embedder := mock.NewMockEmbedder()
	denseEnc, err := ai.NewDenseEncoder(embedder, mock.DefaultDimensions)
	require.NoError(t, err)

	store := memory.NewStore()
	pipeline, err := NewPipeline(chunker, encoder, denseEnc, chunkRepo, store, opts...)
	require.NoError(t, err)
	t.Cleanup(pipeline.Release)

	return &pipelineFixture{
		pipeline: pipeline,
		embedder: embedder,
		store:    store,
		repo:     chunkRepo,
		encoder:  encoder,
	}
}

func TestIndexDocument(t *testing.T) {
	f := setupPipeline(t)
	ctx := context.Background()

	receipt, err := f.pipeline.IndexDocument(ctx, Document{
		DocumentID: "doc-a",
		CaseID:     "case-1",
		Text:       contractText,
		Template:   chunk.TemplateContract,
	})
	require.NoError(t, err)

	assert.Equal(t, "doc-a", receipt.DocumentID)
	assert.Greater(t, receipt.ChunksIndexed, 0)
	assert.Zero(t, receipt.ChunksSkipped)
	assert.Equal(t, receipt.ChunksIndexed, f.store.Len())

	chunks, err := f.repo.GetChunksByDocument(ctx, "doc-a")
	require.NoError(t, err)
	assert.Len(t, chunks, receipt.ChunksIndexed)

	// Every granularity is represented for a document of this size.
	seen := map[core.Granularity]bool{}
	for _, c := range chunks {
		seen[c.Granularity] = true
	}
	assert.True(t, seen[core.GranularitySummary])
	assert.True(t, seen[core.GranularitySection])
	assert.True(t, seen[core.GranularityMicroblock])
}

func TestIndexDocumentIdempotent(t *testing.T) {
	f := setupPipeline(t)
	ctx := context.Background()

	doc := Document{DocumentID: "doc-a", CaseID: "case-1", Text: contractText}
	first, err := f.pipeline.IndexDocument(ctx, doc)
	require.NoError(t, err)
	second, err := f.pipeline.IndexDocument(ctx, doc)
	require.NoError(t, err)

	assert.Equal(t, first.ChunksIndexed, second.ChunksIndexed)
	// Re-indexing overwrites points in place instead of duplicating.
	assert.Equal(t, first.ChunksIndexed, f.store.Len())

	chunks, err := f.repo.GetChunksByDocument(ctx, "doc-a")
	require.NoError(t, err)
	assert.Len(t, chunks, first.ChunksIndexed)
}

func TestIndexDocumentValidation(t *testing.T) {
	f := setupPipeline(t)
	ctx := context.Background()

	tests := []struct {
		name string
		doc  Document
		want error
	}{
		{"missing document ID", Document{CaseID: "case-1", Text: "text"}, ErrMissingDocumentID},
		{"missing case ID", Document{DocumentID: "doc-a", Text: "text"}, ErrMissingCaseID},
		{"empty text", Document{DocumentID: "doc-a", CaseID: "case-1", Text: "   \n"}, ErrEmptyDocument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.pipeline.IndexDocument(ctx, tt.doc)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestIndexDocumentBatchFallback(t *testing.T) {
	f := setupPipeline(t)
	ctx := context.Background()

	// Batch calls fail; per-chunk calls succeed, so nothing is lost.
	f.embedder.EmbedTextsFunc = func(_ context.Context, _ []string) ([][]float32, error) {
		return nil, errors.New("batch endpoint down")
	}

	receipt, err := f.pipeline.IndexDocument(ctx, Document{
		DocumentID: "doc-a", CaseID: "case-1", Text: contractText,
	})
	require.NoError(t, err)
	assert.Greater(t, receipt.ChunksIndexed, 0)
	assert.Zero(t, receipt.ChunksSkipped)
}

func TestIndexDocumentSkipsFailedChunks(t *testing.T) {
	f := setupPipeline(t)
	ctx := context.Background()

	failing := errors.New("embedding service down")
	f.embedder.EmbedTextsFunc = func(_ context.Context, _ []string) ([][]float32, error) {
		return nil, failing
	}
	f.embedder.EmbedTextFunc = func(_ context.Context, text string) ([]float32, error) {
		if strings.Contains(text, "breach") {
			return nil, failing
		}
		return mock.DeterministicVector(text, mock.DefaultDimensions), nil
	}

	receipt, err := f.pipeline.IndexDocument(ctx, Document{
		DocumentID: "doc-a", CaseID: "case-1", Text: contractText,
	})
	require.NoError(t, err)
	assert.Greater(t, receipt.ChunksSkipped, 0)
	assert.Equal(t, receipt.ChunksIndexed, f.store.Len())

	chunks, err := f.repo.GetChunksByDocument(ctx, "doc-a")
	require.NoError(t, err)
	assert.Len(t, chunks, receipt.ChunksIndexed)
}

func TestIndexDocumentSparseVectors(t *testing.T) {
	f := setupPipeline(t)
	ctx := context.Background()

	t.Run("dense-only before fit", func(t *testing.T) {
		receipt, err := f.pipeline.IndexDocument(ctx, Document{
			DocumentID: "doc-a", CaseID: "case-1", Text: contractText,
		})
		require.NoError(t, err)
		assert.Greater(t, receipt.ChunksIndexed, 0)
	})

	t.Run("sparse after fit", func(t *testing.T) {
		f.encoder.Fit([]string{contractText})

		_, err := f.pipeline.IndexDocument(ctx, Document{
			DocumentID: "doc-b", CaseID: "case-1", Text: contractText,
		})
		require.NoError(t, err)

		query, err := f.encoder.Encode("breach of contract damages")
		require.NoError(t, err)
		require.NotEmpty(t, query)

		hits, err := f.store.Query(ctx, idx.QueryRequest{
			VectorType: core.VectorTypeSparse,
			Sparse:     query,
			Filter:     idx.Filter{DocumentID: "doc-b"},
			TopK:       10,
		})
		require.NoError(t, err)
		assert.NotEmpty(t, hits)
	})
}

func TestResyncSparse(t *testing.T) {
	f := setupPipeline(t)
	ctx := context.Background()

	// Indexed before any fit: the points carry no sparse vectors.
	receipt, err := f.pipeline.IndexDocument(ctx, Document{
		DocumentID: "doc-a", CaseID: "case-1", Text: contractText,
	})
	require.NoError(t, err)
	require.Greater(t, receipt.ChunksIndexed, 0)

	query := func() []core.RankedHit {
		vec, err := f.encoder.Encode("breach of contract damages")
		require.NoError(t, err)
		require.NotEmpty(t, vec)
		hits, err := f.store.Query(ctx, idx.QueryRequest{
			VectorType: core.VectorTypeSparse,
			Sparse:     vec,
			TopK:       10,
		})
		require.NoError(t, err)
		return hits
	}

	f.encoder.Fit([]string{contractText})
	assert.Empty(t, query())

	updated, err := f.pipeline.ResyncSparse(ctx)
	require.NoError(t, err)
	assert.Greater(t, updated, 0)
	assert.LessOrEqual(t, updated, receipt.ChunksIndexed)

	// The backfilled vectors now match queries against the new snapshot.
	assert.NotEmpty(t, query())
}

type stubChunker struct {
	chunks []core.Chunk
}

func (s *stubChunker) Chunk(_, _, _, _ string) []core.Chunk {
	return s.chunks
}

func TestIndexDocumentSkipsInvalidChunks(t *testing.T) {
	ctx := context.Background()

	chunkRepo, vocabRepo, backend, err := badgerstore.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		chunkRepo.Close()
		vocabRepo.Close()
		backend.Close()
	})

	encoder, err := sparse.NewEncoder()
	require.NoError(t, err)
	denseEnc, err := ai.NewDenseEncoder(mock.NewMockEmbedder(), mock.DefaultDimensions)
	require.NoError(t, err)
	store := memory.NewStore()

	chunker := &stubChunker{chunks: []core.Chunk{
		{
			Id:          1,
			DocumentID:  "doc-a",
			CaseID:      "case-1",
			Granularity: core.GranularitySection,
			Text:        "The tenant breached the lease.",
			TokenCount:  5,
		},
		{
			Id:          2,
			DocumentID:  "doc-a",
			CaseID:      "case-1",
			Granularity: core.GranularitySection,
			TokenCount:  5,
			// no text
		},
		{
			Id:          3,
			DocumentID:  "doc-a",
			CaseID:      "case-1",
			Granularity: "paragraph",
			Text:        "Unknown granularity.",
			TokenCount:  3,
		},
	}}

	pipeline, err := NewPipeline(chunker, encoder, denseEnc, chunkRepo, store)
	require.NoError(t, err)
	t.Cleanup(pipeline.Release)

	receipt, err := pipeline.IndexDocument(ctx, Document{
		DocumentID: "doc-a", CaseID: "case-1", Text: "whatever",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, receipt.ChunksIndexed)
	assert.Equal(t, 2, receipt.ChunksSkipped)
	assert.Equal(t, 1, store.Len())
}

func TestDeleteDocument(t *testing.T) {
	f := setupPipeline(t)
	ctx := context.Background()

	receipt, err := f.pipeline.IndexDocument(ctx, Document{
		DocumentID: "doc-a", CaseID: "case-1", Text: contractText,
	})
	require.NoError(t, err)

	deleted, err := f.pipeline.DeleteDocument(ctx, "doc-a")
	require.NoError(t, err)
	assert.Equal(t, receipt.ChunksIndexed, deleted)
	assert.Zero(t, f.store.Len())

	t.Run("unknown document is a no-op", func(t *testing.T) {
		deleted, err := f.pipeline.DeleteDocument(ctx, "doc-missing")
		require.NoError(t, err)
		assert.Zero(t, deleted)
	})

	t.Run("missing document ID", func(t *testing.T) {
		_, err := f.pipeline.DeleteDocument(ctx, "")
		assert.ErrorIs(t, err, ErrMissingDocumentID)
	})
}
