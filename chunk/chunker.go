package chunk

import (
	"log/slog"
	"regexp"

	"github.com/caselight/retrieval/core"
)

// SizeSpec binds one granularity to its maximum window size in tokens.
type SizeSpec struct {
	Granularity core.Granularity
	MaxTokens   int
}

// DefaultSizes returns the standard three-granularity configuration.
func DefaultSizes() []SizeSpec {
	return []SizeSpec{
		{Granularity: core.GranularitySummary, MaxTokens: 1600},
		{Granularity: core.GranularitySection, MaxTokens: 512},
		{Granularity: core.GranularityMicroblock, MaxTokens: 128},
	}
}

const defaultOverlap = 32

// Chunker splits document text into multi-granularity chunks.
type Chunker struct {
	tokenizer Tokenizer
	sizes     []SizeSpec
	overlap   int
	templates map[string]Template
	logger    *slog.Logger
}

// Option configures a Chunker.
type Option func(*Chunker) error

// WithTokenizer sets the tokenizer. Default is WordTokenizer.
func WithTokenizer(t Tokenizer) Option {
	return func(c *Chunker) error {
		if t == nil {
			return ErrTokenizerRequired
		}
		c.tokenizer = t
		return nil
	}
}

// WithSizes sets the granularity size configuration.
func WithSizes(sizes []SizeSpec) Option {
	return func(c *Chunker) error {
		if len(sizes) == 0 {
			return ErrNoSizes
		}
		for _, s := range sizes {
			if s.MaxTokens <= 0 {
				return ErrInvalidSize
			}
			if !core.KnownGranularity(s.Granularity) {
				return core.ErrUnknownGranularity
			}
		}
		c.sizes = sizes
		return nil
	}
}

// WithOverlap sets the token overlap between consecutive windows of the
// same granularity. Default is 32.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) error {
		if overlap < 0 {
			return ErrInvalidOverlap
		}
		c.overlap = overlap
		return nil
	}
}

// WithTemplate registers a custom structural template, replacing any
// builtin of the same name.
func WithTemplate(t Template) Option {
	return func(c *Chunker) error {
		c.templates[t.Name()] = t
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Chunker) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// NewChunker creates a chunker with the default word tokenizer, default
// sizes and the builtin templates.
func NewChunker(opts ...Option) (*Chunker, error) {
	c := &Chunker{
		tokenizer: WordTokenizer{},
		sizes:     DefaultSizes(),
		overlap:   defaultOverlap,
		templates: builtinTemplates(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	// Overlap must leave the window room to advance at the smallest size.
	for _, s := range c.sizes {
		if c.overlap >= s.MaxTokens {
			return nil, ErrInvalidOverlap
		}
	}
	return c, nil
}

// Chunk splits text into chunks for every configured granularity.
//
// The template name selects the structural segmentation strategy; an
// unknown name falls back to the generic paragraph strategy rather than
// erroring. Window overlap applies only between windows of the same size
// within one structural segment, never across segment boundaries. A
// segment shorter than the smallest size still yields exactly one chunk.
func (c *Chunker) Chunk(documentID, caseID, text, template string) []core.Chunk {
	tmpl, ok := c.templates[template]
	if !ok {
		c.logger.Debug("unknown chunking template, using generic fallback",
			"template", template, "document", documentID)
		tmpl = c.templates[TemplateGeneric]
	}

	segments := tmpl.Segment(text)
	if len(segments) == 0 {
		return nil
	}

	var chunks []core.Chunk
	for _, spec := range c.sizes {
		position := 0
		for _, seg := range segments {
			for _, window := range c.tokenizer.Windows(seg.Text, spec.MaxTokens, c.overlap) {
				chunks = append(chunks, core.Chunk{
					Id:              core.ChunkID(documentID, spec.Granularity, position),
					DocumentID:      documentID,
					CaseID:          caseID,
					Granularity:     spec.Granularity,
					Position:        position,
					Text:            window,
					TokenCount:      c.tokenizer.Count(window),
					StructuralLabel: seg.Label,
					Citations:       extractCitations(window),
				})
				position++
			}
		}
	}
	return chunks
}

// Sizes returns the configured granularity sizes.
func (c *Chunker) Sizes() []SizeSpec {
	out := make([]SizeSpec, len(c.sizes))
	copy(out, c.sizes)
	return out
}

var citationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b\d+\s+U\.S\.C\.\s*§+\s*\d+[a-z]?(\([a-z0-9]+\))*`),
	regexp.MustCompile(`§+\s*\d+(\.\d+)*`),
	regexp.MustCompile(`\b[A-Z][A-Za-z]+\s+v\.\s+[A-Z][A-Za-z]+\b`),
}

// extractCitations pulls statute and case references out of a chunk so
// downstream consumers can link them without re-parsing text.
func extractCitations(text string) []string {
	var (
		out  []string
		seen map[string]bool
	)
	for _, re := range citationPatterns {
		for _, m := range re.FindAllString(text, -1) {
			if seen == nil {
				seen = make(map[string]bool)
			}
			if seen[m] {
				continue
			}
			seen[m] = true
			out = append(out, m)
		}
	}
	return out
}
