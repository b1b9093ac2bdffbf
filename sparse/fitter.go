package sparse

import (
	"context"
	"log/slog"

	"github.com/caselight/retrieval/core"
)

// VocabularyStore persists vocabulary snapshots across restarts.
// Implemented by storage.VocabularyRepository.
type VocabularyStore interface {
	SaveVocabulary(ctx context.Context, vocab *core.Vocabulary) error
}

// Fitter refits the vocabulary in the background. Corpus snapshots arrive
// over a single-slot, latest-wins channel: submitting while a refit is
// pending replaces the pending corpus instead of queueing. The fitter is
// the single writer of the encoder's snapshot; readers keep encoding
// against the old snapshot until the swap.
type Fitter struct {
	encoder  *Encoder
	store    VocabularyStore
	resync   func(context.Context) error
	requests chan []string
	logger   *slog.Logger
}

// FitterOption configures a Fitter.
type FitterOption func(*Fitter) error

// WithFitterLogger sets a custom logger.
// Default is slog.Default().
func WithFitterLogger(logger *slog.Logger) FitterOption {
	return func(f *Fitter) error {
		if logger == nil {
			logger = slog.Default()
		}
		f.logger = logger
		return nil
	}
}

// WithRefitHook registers a callback that runs after each refit is
// published and persisted. Used to re-encode stored sparse vectors against
// the new snapshot.
func WithRefitHook(hook func(context.Context) error) FitterOption {
	return func(f *Fitter) error {
		f.resync = hook
		return nil
	}
}

// NewFitter creates a background fitter for the encoder. store may be nil
// when snapshots do not need to survive restarts.
func NewFitter(encoder *Encoder, store VocabularyStore, opts ...FitterOption) (*Fitter, error) {
	if encoder == nil {
		return nil, ErrEncoderRequired
	}
	f := &Fitter{
		encoder:  encoder,
		store:    store,
		requests: make(chan []string, 1),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(f); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// Submit schedules a refit over the given corpus snapshot. If a refit is
// already pending, the pending corpus is replaced.
func (f *Fitter) Submit(corpus []string) {
	for {
		select {
		case f.requests <- corpus:
			return
		default:
			// Drop the stale pending request and try again.
			select {
			case <-f.requests:
			default:
			}
		}
	}
}

// Run processes refit requests until ctx is cancelled. It is intended to
// run in its own goroutine.
func (f *Fitter) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case corpus := <-f.requests:
			vocab := f.encoder.Fit(corpus)
			if f.store != nil {
				if err := f.store.SaveVocabulary(ctx, vocab); err != nil {
					f.logger.Error("error persisting vocabulary snapshot", "err", err)
				}
			}
			if f.resync != nil {
				if err := f.resync(ctx); err != nil {
					f.logger.Error("error resyncing sparse vectors after refit", "err", err)
				}
			}
		}
	}
}
