package ingest

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"strings"
	"sync"

	"github.com/caselight/retrieval/ai"
	"github.com/caselight/retrieval/core"
	"github.com/caselight/retrieval/index"
	"github.com/caselight/retrieval/sparse"
	"github.com/caselight/retrieval/storage"
	"github.com/panjf2000/ants/v2"
)

// Chunker splits a document into chunks at every configured granularity.
// *chunk.Chunker is the production implementation.
type Chunker interface {
	Chunk(documentID, caseID, text, template string) []core.Chunk
}

// Document is a single document submitted for indexing.
type Document struct {
	DocumentID string
	CaseID     string
	Text       string
	Template   string // structural template name; empty means generic
}

// Receipt reports the outcome of indexing one document.
type Receipt struct {
	DocumentID    string
	ChunksIndexed int
	ChunksSkipped int
}

// Pipeline orchestrates document indexing. It chunks a document at every
// configured granularity, encodes sparse and dense vectors, persists chunk
// metadata and writes points to the vector index in batches.
type Pipeline struct {
	chunker   Chunker
	sparseEnc *sparse.Encoder
	denseEnc  *ai.DenseEncoder
	chunkRepo storage.ChunkRepository
	store     index.Store
	batcher   *index.Batcher
	fitter    *sparse.Fitter
	pool      *ants.Pool
	logger    *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent embedding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		if p.pool != nil {
			p.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithFitter attaches a background vocabulary fitter. After each document
// is indexed, the full section-level corpus is submitted for a refit.
func WithFitter(fitter *sparse.Fitter) Option {
	return func(p *Pipeline) error {
		p.fitter = fitter
		return nil
	}
}

// WithBatcherOptions configures the index write batcher.
func WithBatcherOptions(opts ...index.BatcherOption) Option {
	return func(p *Pipeline) error {
		batcher, err := index.NewBatcher(p.store, opts...)
		if err != nil {
			return err
		}
		p.batcher = batcher
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	chunker Chunker,
	sparseEnc *sparse.Encoder,
	denseEnc *ai.DenseEncoder,
	chunkRepo storage.ChunkRepository,
	store index.Store,
	opts ...Option,
) (*Pipeline, error) {
	if chunker == nil {
		return nil, ErrChunkerRequired
	}
	if sparseEnc == nil {
		return nil, ErrSparseEncoderRequired
	}
	if denseEnc == nil {
		return nil, ErrDenseEncoderRequired
	}
	if chunkRepo == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if store == nil {
		return nil, ErrIndexRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	batcher, err := index.NewBatcher(store)
	if err != nil {
		pool.Release()
		return nil, err
	}

	p := &Pipeline{
		chunker:   chunker,
		sparseEnc: sparseEnc,
		denseEnc:  denseEnc,
		chunkRepo: chunkRepo,
		store:     store,
		batcher:   batcher,
		pool:      pool,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// Release frees the worker pool. The pipeline must not be used afterwards.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}

// IndexDocument chunks, encodes and indexes one document. Chunk IDs are
// content-addressed from (document, granularity, position), so re-indexing
// an unchanged document overwrites its points in place.
//
// Chunks whose dense embedding fails are skipped and counted in the
// receipt; persistence or index failures fail the whole call.
func (p *Pipeline) IndexDocument(ctx context.Context, doc Document) (*Receipt, error) {
	if doc.DocumentID == "" {
		return nil, ErrMissingDocumentID
	}
	if doc.CaseID == "" {
		return nil, ErrMissingCaseID
	}
	if strings.TrimSpace(doc.Text) == "" {
		return nil, ErrEmptyDocument
	}

	chunks := p.chunker.Chunk(doc.DocumentID, doc.CaseID, doc.Text, doc.Template)

	invalid := 0
	valid := chunks[:0]
	for i := range chunks {
		if err := core.ValidateChunk(&chunks[i]); err != nil {
			invalid++
			p.logger.Warn("invalid chunk skipped",
				"documentID", doc.DocumentID, "position", chunks[i].Position, "err", err)
			continue
		}
		valid = append(valid, chunks[i])
	}
	if len(valid) == 0 {
		return &Receipt{DocumentID: doc.DocumentID, ChunksSkipped: invalid}, nil
	}

	groups := make(map[core.Granularity][]core.Chunk)
	for _, c := range valid {
		groups[c.Granularity] = append(groups[c.Granularity], c)
	}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		points  []core.IndexedPoint
		kept    []*core.Chunk
		skipped = invalid
	)

	for granularity, group := range groups {
		granularity, group := granularity, group
		wg.Add(1)
		err := p.pool.Submit(func() {
			defer wg.Done()
			embedded, failed := p.embedGroup(ctx, granularity, group)
			mu.Lock()
			defer mu.Unlock()
			skipped += failed
			for i := range embedded {
				points = append(points, embedded[i].point)
				kept = append(kept, embedded[i].chunk)
			}
		})
		if err != nil {
			wg.Done()
			return nil, err
		}
	}
	wg.Wait()

	if len(kept) > 0 {
		if err := p.chunkRepo.PutChunks(ctx, kept...); err != nil {
			return nil, err
		}
		if err := p.batcher.Upsert(ctx, points); err != nil {
			return nil, err
		}
	}

	p.submitRefit(ctx)

	p.logger.Info("document indexed",
		"documentID", doc.DocumentID, "caseID", doc.CaseID,
		"indexed", len(kept), "skipped", skipped)

	return &Receipt{
		DocumentID:    doc.DocumentID,
		ChunksIndexed: len(kept),
		ChunksSkipped: skipped,
	}, nil
}

// DeleteDocument removes a document's points from the index and its chunks
// from storage. Returns the number of chunks removed; deleting an unknown
// document is a no-op returning 0, nil.
func (p *Pipeline) DeleteDocument(ctx context.Context, documentID string) (int, error) {
	if documentID == "" {
		return 0, ErrMissingDocumentID
	}

	if err := p.store.DeleteByDocument(ctx, documentID); err != nil {
		return 0, err
	}
	deleted, err := p.chunkRepo.DeleteByDocument(ctx, documentID)
	if err != nil {
		return 0, err
	}

	if deleted > 0 {
		p.submitRefit(ctx)
	}

	p.logger.Info("document deleted", "documentID", documentID, "chunks", deleted)
	return deleted, nil
}

type embeddedChunk struct {
	chunk *core.Chunk
	point core.IndexedPoint
}

// embedGroup embeds one granularity group, batch first with a per-chunk
// fallback so a single bad chunk cannot sink its whole group.
func (p *Pipeline) embedGroup(ctx context.Context, granularity core.Granularity, group []core.Chunk) ([]embeddedChunk, int) {
	texts := make([]string, len(group))
	for i, c := range group {
		texts[i] = c.Text
	}

	vecs, err := p.denseEnc.EncodeBatch(ctx, texts)
	if err != nil {
		p.logger.Warn("batch embedding failed, falling back to per-chunk",
			"granularity", granularity, "count", len(group), "err", err)
		vecs = make([]core.DenseVector, len(group))
		for i, text := range texts {
			vec, encErr := p.denseEnc.Encode(ctx, text)
			if encErr != nil {
				p.logger.Warn("chunk embedding failed, skipping",
					"granularity", granularity, "position", group[i].Position, "err", encErr)
				continue
			}
			vecs[i] = vec
		}
	}

	var (
		out     []embeddedChunk
		skipped int
	)
	for i := range group {
		if vecs[i] == nil {
			skipped++
			continue
		}
		c := group[i]
		payload := core.PayloadFromChunk(&c)
		if err := core.ValidatePayload(&payload); err != nil {
			p.logger.Warn("invalid payload, skipping chunk",
				"granularity", granularity, "position", c.Position, "err", err)
			skipped++
			continue
		}
		out = append(out, embeddedChunk{
			chunk: &c,
			point: core.IndexedPoint{
				ChunkID: c.Id,
				Dense:   map[core.Granularity]core.DenseVector{granularity: vecs[i]},
				Sparse:  p.encodeSparse(c.Text),
				Payload: payload,
			},
		})
	}
	return out, skipped
}

// encodeSparse produces the chunk's sparse vector. Before the first
// vocabulary fit there is no sparse signal; that degrades the point to
// dense-only rather than failing ingestion.
func (p *Pipeline) encodeSparse(text string) core.SparseVector {
	vec, err := p.sparseEnc.Encode(text)
	if err != nil {
		if !errors.Is(err, sparse.ErrVocabularyNotFit) {
			p.logger.Warn("sparse encoding failed", "err", err)
		}
		return nil
	}
	return vec
}

// ResyncSparse re-encodes the sparse vector of every stored chunk against
// the encoder's current vocabulary snapshot and pushes the updates to the
// index. Term IDs are reassigned on every fit, so stored sparse vectors
// must be rewritten after each refit or queries encoded against the new
// snapshot cannot match them. Returns the number of points updated.
func (p *Pipeline) ResyncSparse(ctx context.Context) (int, error) {
	chunks, err := p.chunkRepo.AllChunks(ctx)
	if err != nil {
		return 0, err
	}

	updates := make([]index.SparseUpdate, 0, len(chunks))
	for _, c := range chunks {
		vec := p.encodeSparse(c.Text)
		if vec == nil {
			continue
		}
		updates = append(updates, index.SparseUpdate{PointID: c.Id, Sparse: vec})
	}
	if len(updates) == 0 {
		return 0, nil
	}

	if err := p.batcher.UpdateSparse(ctx, updates); err != nil {
		return 0, err
	}
	p.logger.Info("sparse vectors resynced", "points", len(updates))
	return len(updates), nil
}

// submitRefit hands the current section-level corpus to the background
// fitter, if one is attached.
func (p *Pipeline) submitRefit(ctx context.Context) {
	if p.fitter == nil {
		return
	}
	corpus, err := p.chunkRepo.AllTexts(ctx, core.GranularitySection)
	if err != nil {
		p.logger.Warn("corpus read for refit failed", "err", err)
		return
	}
	p.fitter.Submit(corpus)
}
