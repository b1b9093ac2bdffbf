package sparse

import (
	"log/slog"
	"math"
	"sort"
	"sync/atomic"

	"github.com/caselight/retrieval/core"
)

// BM25 parameter defaults, tuned against the reference corpus. They are
// configuration, not invariants.
const (
	DefaultK1 = 1.5
	DefaultB  = 0.75
)

// Encoder turns text into BM25-weighted sparse vectors against a fitted
// vocabulary snapshot. Encode is lock-free; Fit and Restore swap the
// snapshot atomically, so concurrent encodes always see either the old or
// the new vocabulary in full.
type Encoder struct {
	k1        float64
	b         float64
	stopWords map[string]bool
	snapshot  atomic.Pointer[core.Vocabulary]
	logger    *slog.Logger
}

// Option configures an Encoder.
type Option func(*Encoder) error

// WithK1 sets the BM25 k1 parameter (term-frequency saturation).
func WithK1(k1 float64) Option {
	return func(e *Encoder) error {
		if k1 <= 0 {
			return ErrInvalidParameter
		}
		e.k1 = k1
		return nil
	}
}

// WithB sets the BM25 b parameter (length normalization), in [0,1].
func WithB(b float64) Option {
	return func(e *Encoder) error {
		if b < 0 || b > 1 {
			return ErrInvalidParameter
		}
		e.b = b
		return nil
	}
}

// WithStopwords extends the default stop-word list.
func WithStopwords(words ...string) Option {
	return func(e *Encoder) error {
		for _, w := range words {
			e.stopWords[w] = true
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Encoder) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// NewEncoder creates an unfitted encoder with default BM25 parameters.
func NewEncoder(opts ...Option) (*Encoder, error) {
	e := &Encoder{
		k1:        DefaultK1,
		b:         DefaultB,
		stopWords: make(map[string]bool, len(defaultStopWords)),
		logger:    slog.Default(),
	}
	for w := range defaultStopWords {
		e.stopWords[w] = true
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Fit builds a fresh vocabulary from a full corpus pass and publishes it
// as the new snapshot. Term IDs are assigned in sorted term order so the
// same corpus always fits to the same vocabulary. Fit must be re-run, not
// patched, when the corpus changes materially: document frequency and
// average document length are corpus-global.
func (e *Encoder) Fit(corpus []string) *core.Vocabulary {
	df := make(map[string]int)
	totalLen := 0
	docs := 0

	for _, text := range corpus {
		terms := tokenize(text, e.stopWords)
		if len(terms) == 0 {
			continue
		}
		docs++
		totalLen += len(terms)
		seen := make(map[string]struct{}, len(terms))
		for _, term := range terms {
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			df[term]++
		}
	}

	vocab := &core.Vocabulary{
		Terms:    make(map[string]uint32, len(df)),
		DocFreq:  make([]uint32, len(df)),
		DocCount: docs,
	}
	if docs > 0 {
		vocab.AvgDocLen = float64(totalLen) / float64(docs)
	}

	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	for i, term := range terms {
		vocab.Terms[term] = uint32(i)
		vocab.DocFreq[i] = uint32(df[term])
	}

	e.snapshot.Store(vocab)
	e.logger.Info("vocabulary fitted",
		"documents", docs, "terms", len(terms), "avgDocLen", vocab.AvgDocLen)
	return vocab
}

// Restore installs a previously persisted vocabulary snapshot.
func (e *Encoder) Restore(vocab *core.Vocabulary) {
	if vocab == nil {
		return
	}
	e.snapshot.Store(vocab)
}

// Snapshot returns the current vocabulary snapshot, or nil before any fit.
func (e *Encoder) Snapshot() *core.Vocabulary {
	return e.snapshot.Load()
}

// Fitted reports whether a vocabulary snapshot is available.
func (e *Encoder) Fitted() bool {
	return e.snapshot.Load() != nil
}

// Encode produces the BM25 sparse vector for text against the current
// snapshot. Terms absent from the vocabulary are dropped, never an error.
// Returns ErrVocabularyNotFit when no snapshot has been published yet;
// callers treat that as zero sparse signal, not a failure.
func (e *Encoder) Encode(text string) (core.SparseVector, error) {
	vocab := e.snapshot.Load()
	if vocab == nil {
		return nil, ErrVocabularyNotFit
	}

	terms := tokenize(text, e.stopWords)
	if len(terms) == 0 {
		return core.SparseVector{}, nil
	}

	tf := make(map[uint32]int)
	for _, term := range terms {
		if id, ok := vocab.Terms[term]; ok {
			tf[id]++
		}
	}

	docLen := float64(len(terms))
	avgdl := vocab.AvgDocLen
	if avgdl <= 0 {
		avgdl = docLen
	}
	n := float64(vocab.DocCount)

	vec := make(core.SparseVector, len(tf))
	for id, freq := range tf {
		dfT := float64(vocab.DocFreq[id])
		idf := math.Log(1 + (n-dfT+0.5)/(dfT+0.5))
		f := float64(freq)
		weight := idf * (f * (e.k1 + 1)) / (f + e.k1*(1-e.b+e.b*docLen/avgdl))
		if weight > 0 {
			vec[id] = float32(weight)
		}
	}
	return vec, nil
}
