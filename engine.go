// Copyright 2025 Caselight Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package retrieval assembles the hybrid retrieval engine: chunking,
// sparse and dense encoding, vector indexing, fusion search and score
// calibration behind one facade.
package retrieval

import (
	"context"
	"errors"
	"log/slog"

	"github.com/caselight/retrieval/ai"
	"github.com/caselight/retrieval/ai/openai"
	"github.com/caselight/retrieval/chunk"
	"github.com/caselight/retrieval/core"
	"github.com/caselight/retrieval/index"
	"github.com/caselight/retrieval/index/memory"
	"github.com/caselight/retrieval/ingest"
	"github.com/caselight/retrieval/search"
	"github.com/caselight/retrieval/sparse"
	"github.com/caselight/retrieval/storage"
	"github.com/caselight/retrieval/storage/badger"
)

// Engine wires the full retrieval stack over one metadata store and one
// vector index. It owns the background vocabulary fitter.
type Engine struct {
	backend      *badger.Backend
	chunkRepo    storage.ChunkRepository
	vocabRepo    storage.VocabularyRepository
	provider     ai.Provider
	sparseEnc    *sparse.Encoder
	denseEnc     *ai.DenseEncoder
	fitter       *sparse.Fitter
	fitterCancel context.CancelFunc
	store        index.Store
	pipeline     *ingest.Pipeline
	searcher     *search.Searcher
	logger       *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	aiConfig   *ai.Config
	provider   ai.Provider
	store      index.Store
	chunker    ingest.Chunker
	ingestOpts []ingest.Option
	searchOpts []search.Option
}

// WithAIConfig sets the embedding service configuration.
func WithAIConfig(cfg *ai.Config) EngineOption {
	return func(o *engineOptions) {
		o.aiConfig = cfg
	}
}

// WithProvider injects an embedding provider, bypassing the OpenAI
// default. Used with ai/mock in tests.
func WithProvider(provider ai.Provider) EngineOption {
	return func(o *engineOptions) {
		o.provider = provider
	}
}

// WithIndexStore injects a vector index. Default is the in-process
// memory store; production deployments pass an index/qdrant store.
func WithIndexStore(store index.Store) EngineOption {
	return func(o *engineOptions) {
		o.store = store
	}
}

// WithChunker replaces the default chunker.
func WithChunker(chunker ingest.Chunker) EngineOption {
	return func(o *engineOptions) {
		o.chunker = chunker
	}
}

// WithIngestOptions forwards options to the ingestion pipeline.
func WithIngestOptions(opts ...ingest.Option) EngineOption {
	return func(o *engineOptions) {
		o.ingestOpts = append(o.ingestOpts, opts...)
	}
}

// WithSearchOptions forwards options to the searcher.
func WithSearchOptions(opts ...search.Option) EngineOption {
	return func(o *engineOptions) {
		o.searchOpts = append(o.searchOpts, opts...)
	}
}

// NewEngine opens the metadata store at filePath (empty for in-memory)
// and assembles the retrieval stack. A previously persisted vocabulary
// snapshot is restored so sparse retrieval works immediately after
// restart.
func NewEngine(filePath string, opts ...EngineOption) (*Engine, error) {
	options := &engineOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, filePath == "")
	if err != nil {
		return nil, err
	}

	chunkRepo, err := badger.NewChunkRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	vocabRepo, err := badger.NewVocabularyRepository(backend)
	if err != nil {
		chunkRepo.Close()
		backend.Close()
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			vocabRepo.Close()
			chunkRepo.Close()
			backend.Close()
			return nil, err
		}
	}

	e := &Engine{
		backend:   backend,
		chunkRepo: chunkRepo,
		vocabRepo: vocabRepo,
		provider:  provider,
		logger:    slog.Default(),
	}

	e.denseEnc, err = ai.NewDenseEncoder(provider.Embedder(), options.aiConfig.Dimensions)
	if err != nil {
		e.closePartial()
		return nil, err
	}

	e.sparseEnc, err = sparse.NewEncoder()
	if err != nil {
		e.closePartial()
		return nil, err
	}
	if vocab, loadErr := vocabRepo.LoadVocabulary(context.Background()); loadErr == nil {
		e.sparseEnc.Restore(vocab)
		e.logger.Info("vocabulary snapshot restored", "terms", len(vocab.Terms))
	} else if !errors.Is(loadErr, storage.ErrNotFound) {
		e.closePartial()
		return nil, loadErr
	}

	e.store = options.store
	if e.store == nil {
		e.store = memory.NewStore()
	}

	e.fitter, err = sparse.NewFitter(e.sparseEnc, vocabRepo,
		sparse.WithRefitHook(func(ctx context.Context) error {
			_, resyncErr := e.pipeline.ResyncSparse(ctx)
			return resyncErr
		}))
	if err != nil {
		e.closePartial()
		return nil, err
	}

	chunker := options.chunker
	if chunker == nil {
		chunker, err = chunk.NewChunker()
		if err != nil {
			e.closePartial()
			return nil, err
		}
	}

	ingestOpts := append([]ingest.Option{ingest.WithFitter(e.fitter)}, options.ingestOpts...)
	e.pipeline, err = ingest.NewPipeline(chunker, e.sparseEnc, e.denseEnc, chunkRepo, e.store, ingestOpts...)
	if err != nil {
		e.closePartial()
		return nil, err
	}

	e.searcher, err = search.NewSearcher(e.store, e.sparseEnc, e.denseEnc, chunkRepo, options.searchOpts...)
	if err != nil {
		e.closePartial()
		return nil, err
	}

	// Started only after the pipeline exists: the refit hook reads
	// e.pipeline from the fitter goroutine.
	fitterCtx, cancel := context.WithCancel(context.Background())
	e.fitterCancel = cancel
	go e.fitter.Run(fitterCtx)

	return e, nil
}

// IndexDocument chunks, encodes and indexes one document.
func (e *Engine) IndexDocument(ctx context.Context, doc ingest.Document) (*ingest.Receipt, error) {
	return e.pipeline.IndexDocument(ctx, doc)
}

// Search runs hybrid retrieval and returns calibrated results with
// threshold accounting.
func (e *Engine) Search(ctx context.Context, req search.Request) (*search.Response, error) {
	return e.searcher.Search(ctx, req)
}

// DeleteDocument removes a document from the index and metadata store,
// returning the number of chunks removed.
func (e *Engine) DeleteDocument(ctx context.Context, documentID string) (int, error) {
	return e.pipeline.DeleteDocument(ctx, documentID)
}

// RefitVocabulary rebuilds the sparse vocabulary synchronously from the
// stored corpus and persists the snapshot.
func (e *Engine) RefitVocabulary(ctx context.Context) error {
	corpus, err := e.chunkRepo.AllTexts(ctx, core.GranularitySection)
	if err != nil {
		return err
	}
	vocab := e.sparseEnc.Fit(corpus)
	if err := e.vocabRepo.SaveVocabulary(ctx, vocab); err != nil {
		return err
	}
	// The fit reassigned term IDs; stored sparse vectors must follow.
	_, err = e.pipeline.ResyncSparse(ctx)
	return err
}

// ChunkRepository exposes the metadata store.
func (e *Engine) ChunkRepository() storage.ChunkRepository {
	return e.chunkRepo
}

// IndexStore exposes the vector index.
func (e *Engine) IndexStore() index.Store {
	return e.store
}

// Close stops the background fitter and releases every component.
func (e *Engine) Close() error {
	if e.fitterCancel != nil {
		e.fitterCancel()
	}
	if e.pipeline != nil {
		e.pipeline.Release()
	}
	if err := e.provider.Close(); err != nil {
		e.logger.Error("error closing AI provider", "err", err)
	}
	if err := e.store.Close(); err != nil {
		e.logger.Error("error closing vector index", "err", err)
	}
	if err := e.vocabRepo.Close(); err != nil {
		e.logger.Error("error closing vocabulary repository", "err", err)
		return err
	}
	if err := e.chunkRepo.Close(); err != nil {
		e.logger.Error("error closing chunk repository", "err", err)
		return err
	}
	if err := e.backend.Close(); err != nil {
		e.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// closePartial tears down whatever was initialized before a constructor
// failure.
func (e *Engine) closePartial() {
	if e.fitterCancel != nil {
		e.fitterCancel()
	}
	if e.pipeline != nil {
		e.pipeline.Release()
	}
	if e.provider != nil {
		e.provider.Close()
	}
	e.vocabRepo.Close()
	e.chunkRepo.Close()
	e.backend.Close()
}
