package ai

import (
	"context"
	"fmt"
	"math"

	"github.com/caselight/retrieval/core"
)

// DenseEncoder wraps an Embedder and enforces the index's vector geometry:
// every embedding it returns has the configured width and unit L2 norm, so
// cosine similarity reduces to a dot product downstream.
type DenseEncoder struct {
	embedder   Embedder
	dimensions int
}

// NewDenseEncoder creates a dense encoder over the given embedder.
func NewDenseEncoder(embedder Embedder, dimensions int) (*DenseEncoder, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if dimensions <= 0 {
		return nil, fmt.Errorf("%w: dimensions %d", ErrDimensionMismatch, dimensions)
	}
	return &DenseEncoder{embedder: embedder, dimensions: dimensions}, nil
}

// Dimensions returns the enforced vector width.
func (d *DenseEncoder) Dimensions() int {
	return d.dimensions
}

// Encode embeds a single text and normalizes the result.
func (d *DenseEncoder) Encode(ctx context.Context, text string) (core.DenseVector, error) {
	raw, err := d.embedder.EmbedText(ctx, text)
	if err != nil {
		return nil, err
	}
	return d.normalize(raw)
}

// EncodeBatch embeds multiple texts and normalizes each result. The output
// preserves input order.
func (d *DenseEncoder) EncodeBatch(ctx context.Context, texts []string) ([]core.DenseVector, error) {
	raws, err := d.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(raws) != len(texts) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d texts",
			ErrEmbeddingMismatch, len(raws), len(texts))
	}
	vecs := make([]core.DenseVector, len(raws))
	for i, raw := range raws {
		vec, err := d.normalize(raw)
		if err != nil {
			return nil, err
		}
		vecs[i] = vec
	}
	return vecs, nil
}

func (d *DenseEncoder) normalize(raw []float32) (core.DenseVector, error) {
	if len(raw) != d.dimensions {
		return nil, fmt.Errorf("%w: got %d, want %d",
			ErrDimensionMismatch, len(raw), d.dimensions)
	}
	var sumSquares float64
	for _, v := range raw {
		sumSquares += float64(v) * float64(v)
	}
	if sumSquares == 0 {
		return nil, ErrZeroVector
	}
	norm := float32(1.0 / math.Sqrt(sumSquares))
	vec := make(core.DenseVector, len(raw))
	for i, v := range raw {
		vec[i] = v * norm
	}
	return vec, nil
}
