package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caselight/retrieval/ai"
	"github.com/caselight/retrieval/core"
	"github.com/caselight/retrieval/index"
	"github.com/caselight/retrieval/sparse"
	"github.com/caselight/retrieval/storage"
	"golang.org/x/sync/errgroup"
)

// Request is a hybrid search request.
type Request struct {
	Query   string
	CaseIDs []string

	// Granularities restricts the dense legs. Empty means all three.
	Granularities []core.Granularity

	// TopK is the maximum number of results. Zero uses the default.
	TopK int

	// MinScore is the calibrated score threshold. nil applies the
	// configured default; an explicit zero disables filtering.
	MinScore *float64
}

// Response carries the calibrated results of one search together with
// threshold accounting.
type Response struct {
	// Results are the calibrated hits in descending confidence order.
	Results []core.FusedResult

	// TotalBeforeFilter is the size of the calibrated top-K batch before
	// the MinScore threshold was applied.
	TotalBeforeFilter int

	// FilteredCount is how many of those the threshold removed.
	FilteredCount int
}

// Searcher runs hybrid retrieval: one query per vector space in parallel,
// reciprocal-rank fusion, payload hydration and score calibration.
type Searcher struct {
	store     index.Store
	sparseEnc *sparse.Encoder
	denseEnc  *ai.DenseEncoder
	chunkRepo storage.ChunkRepository
	cfg       Config
	monitor   Monitor
	logger    *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithConfig replaces the default configuration.
func WithConfig(cfg Config) Option {
	return func(s *Searcher) error {
		s.cfg = cfg
		return nil
	}
}

// WithMonitor attaches a monitor for leg and search outcomes.
func WithMonitor(m Monitor) Option {
	return func(s *Searcher) error {
		if m == nil {
			m = noopMonitor{}
		}
		s.monitor = m
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewSearcher creates a hybrid searcher.
func NewSearcher(
	store index.Store,
	sparseEnc *sparse.Encoder,
	denseEnc *ai.DenseEncoder,
	chunkRepo storage.ChunkRepository,
	opts ...Option,
) (*Searcher, error) {
	if store == nil {
		return nil, ErrIndexRequired
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

	s := &Searcher{
		store:     store,
		sparseEnc: sparseEnc,
		denseEnc:  denseEnc,
		chunkRepo: chunkRepo,
		cfg:       DefaultConfig(),
		monitor:   noopMonitor{},
		logger:    slog.Default().With("component", "searcher"),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Search runs the full hybrid retrieval pipeline and returns calibrated
// results in descending confidence order.
//
// Legs degrade independently: a failed or timed-out leg is dropped and the
// rest fuse without it. The call fails only when the query is empty, the
// caller's context is done, every leg failed, or hydration from the chunk
// store failed.
func (s *Searcher) Search(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	if strings.TrimSpace(req.Query) == "" {
		return nil, ErrEmptyQuery
	}

	topK := req.TopK
	if topK <= 0 {
		topK = s.cfg.DefaultTopK
	}
	granularities := req.Granularities
	if len(granularities) == 0 {
		granularities = []core.Granularity{
			core.GranularitySummary, core.GranularitySection, core.GranularityMicroblock,
		}
	}

	legs, encodeErrs := s.buildLegs(ctx, req, granularities, topK*s.cfg.OverFetch)
	if len(legs) == 0 {
		return nil, errors.Join(ErrSearchUnavailable, errors.Join(encodeErrs...))
	}

	lists := make([][]core.RankedHit, len(legs))
	legErrs := make([]error, len(legs))

	var g errgroup.Group
	for i, leg := range legs {
		i, leg := i, leg
		g.Go(func() error {
			legCtx, cancel := context.WithTimeout(ctx, s.cfg.SubQueryTimeout)
			defer cancel()

			attempts := s.cfg.LegMaxAttempts
			if attempts <= 0 {
				attempts = 1
			}

			legStart := time.Now()
			var hits []core.RankedHit
			err := index.RetryWithBackoff(legCtx, func() error {
				var qErr error
				hits, qErr = s.store.Query(legCtx, leg)
				return qErr
			}, attempts, s.cfg.LegRetryDelay)
			s.monitor.LegCompleted(leg.VectorType, len(hits), time.Since(legStart), err)
			if err != nil {
				legErrs[i] = fmt.Errorf("%s leg: %w", leg.VectorType, err)
				s.logger.Warn("retrieval leg dropped",
					"vectorType", leg.VectorType, "err", err)
				return nil
			}
			lists[i] = hits
			return nil
		})
	}
	g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dropped := 0
	for _, err := range legErrs {
		if err != nil {
			dropped++
		}
	}
	if dropped == len(legs) {
		return nil, errors.Join(ErrSearchUnavailable, errors.Join(legErrs...))
	}

	sparseRaw := make(map[core.ID]float64)
	for i, leg := range legs {
		if leg.VectorType != core.VectorTypeSparse {
			continue
		}
		for _, hit := range lists[i] {
			sparseRaw[hit.PointID] = float64(hit.RawScore)
		}
	}

	fused := fuse(lists, s.cfg.RRFK)
	if err := s.hydrate(ctx, fused); err != nil {
		return nil, err
	}
	sortFused(fused)

	// Truncate to the requested size before calibration so the min-max
	// normalization sees only the batch the caller will receive. The
	// weakest returned result then normalizes to zero instead of
	// inheriting the spread of over-fetched candidates.
	if len(fused) > topK {
		fused = fused[:topK]
	}
	calibrate(fused, sparseRaw, s.cfg.Calibration)

	minScore := s.cfg.DefaultMinScore
	if req.MinScore != nil {
		minScore = *req.MinScore
	}
	results := make([]core.FusedResult, 0, len(fused))
	for _, r := range fused {
		if r.CalibratedScore < minScore {
			continue
		}
		results = append(results, r)
	}

	resp := &Response{
		Results:           results,
		TotalBeforeFilter: len(fused),
		FilteredCount:     len(fused) - len(results),
	}

	s.monitor.SearchCompleted(len(results), dropped, time.Since(start))
	s.logger.Debug("search completed",
		"legs", len(legs), "dropped", dropped,
		"fused", resp.TotalBeforeFilter, "returned", len(results),
		"filtered", resp.FilteredCount)
	return resp, nil
}

// buildLegs encodes the query once per encoder and assembles one
// QueryRequest per available vector space. Encoders that cannot produce a
// vector drop their legs rather than failing the search; their errors are
// returned for the all-legs-failed diagnostic.
func (s *Searcher) buildLegs(ctx context.Context, req Request, granularities []core.Granularity, fetch int) ([]index.QueryRequest, []error) {
	var (
		legs []index.QueryRequest
		errs []error
	)
	filter := index.Filter{CaseIDs: req.CaseIDs, Granularities: req.Granularities}

	denseVec, err := s.denseEnc.Encode(ctx, req.Query)
	if err != nil {
		errs = append(errs, fmt.Errorf("query embedding: %w", err))
		s.logger.Warn("query embedding failed, dense legs dropped", "err", err)
	} else {
		for _, g := range granularities {
			legs = append(legs, index.QueryRequest{
				VectorType: string(g),
				Dense:      denseVec,
				Filter:     filter,
				TopK:       fetch,
			})
		}
	}

	sparseVec, err := s.sparseEnc.Encode(req.Query)
	switch {
	case errors.Is(err, sparse.ErrVocabularyNotFit):
		s.logger.Debug("vocabulary not fit, sparse leg dropped")
	case err != nil:
		errs = append(errs, fmt.Errorf("sparse encoding: %w", err))
		s.logger.Warn("sparse encoding failed, sparse leg dropped", "err", err)
	case len(sparseVec) == 0:
		s.logger.Debug("no vocabulary terms in query, sparse leg dropped")
	default:
		legs = append(legs, index.QueryRequest{
			VectorType: core.VectorTypeSparse,
			Sparse:     sparseVec,
			Filter:     filter,
			TopK:       fetch,
		})
	}

	return legs, errs
}

// hydrate fills result payloads from the chunk store. Points without a
// stored chunk keep a zero payload; the index can briefly run ahead of the
// metadata store during deletes.
func (s *Searcher) hydrate(ctx context.Context, fused []core.FusedResult) error {
	if len(fused) == 0 {
		return nil
	}
	ids := make([]core.ID, len(fused))
	for i, r := range fused {
		ids[i] = r.PointID
	}
	chunks, err := s.chunkRepo.GetChunks(ctx, ids...)
	if err != nil {
		return fmt.Errorf("hydrating results: %w", err)
	}
	byID := make(map[core.ID]*core.Chunk, len(chunks))
	for _, c := range chunks {
		byID[c.Id] = c
	}
	for i := range fused {
		if c, ok := byID[fused[i].PointID]; ok {
			fused[i].Payload = core.PayloadFromChunk(c)
		} else {
			s.logger.Debug("point missing from chunk store", "pointID", fused[i].PointID)
		}
	}
	return nil
}
