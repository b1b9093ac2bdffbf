package ai

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEmbedder struct {
	vec  []float32
	vecs [][]float32
	err  error
}

func (s *stubEmbedder) EmbedText(_ context.Context, _ string) ([]float32, error) {
	return s.vec, s.err
}

func (s *stubEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.vecs != nil {
		return s.vecs, nil
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = s.vec
	}
	return out, nil
}

func l2Norm(vec []float32) float64 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum)
}

func TestNewDenseEncoder(t *testing.T) {
	t.Run("nil embedder", func(t *testing.T) {
		_, err := NewDenseEncoder(nil, 4)
		assert.ErrorIs(t, err, ErrEmbedderRequired)
	})

	t.Run("invalid dimensions", func(t *testing.T) {
		_, err := NewDenseEncoder(&stubEmbedder{}, 0)
		assert.ErrorIs(t, err, ErrDimensionMismatch)
	})
}

func TestDenseEncode(t *testing.T) {
	ctx := context.Background()

	t.Run("normalizes to unit length", func(t *testing.T) {
		enc, err := NewDenseEncoder(&stubEmbedder{vec: []float32{3, 0, 4, 0}}, 4)
		require.NoError(t, err)

		vec, err := enc.Encode(ctx, "some text")
		require.NoError(t, err)
		assert.InDelta(t, 1.0, l2Norm(vec), 1e-6)
		assert.InDelta(t, 0.6, float64(vec[0]), 1e-6)
		assert.InDelta(t, 0.8, float64(vec[2]), 1e-6)
	})

	t.Run("rejects wrong width", func(t *testing.T) {
		enc, err := NewDenseEncoder(&stubEmbedder{vec: []float32{1, 2}}, 4)
		require.NoError(t, err)

		_, err = enc.Encode(ctx, "some text")
		assert.ErrorIs(t, err, ErrDimensionMismatch)
	})

	t.Run("rejects zero vector", func(t *testing.T) {
		enc, err := NewDenseEncoder(&stubEmbedder{vec: []float32{0, 0, 0, 0}}, 4)
		require.NoError(t, err)

		_, err = enc.Encode(ctx, "some text")
		assert.ErrorIs(t, err, ErrZeroVector)
	})

	t.Run("propagates embedder error", func(t *testing.T) {
		boom := errors.New("service down")
		enc, err := NewDenseEncoder(&stubEmbedder{err: boom}, 4)
		require.NoError(t, err)

		_, err = enc.Encode(ctx, "some text")
		assert.ErrorIs(t, err, boom)
	})
}

func TestDenseEncodeBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("preserves order", func(t *testing.T) {
		stub := &stubEmbedder{vecs: [][]float32{{1, 0}, {0, 2}}}
		enc, err := NewDenseEncoder(stub, 2)
		require.NoError(t, err)

		vecs, err := enc.EncodeBatch(ctx, []string{"first", "second"})
		require.NoError(t, err)
		require.Len(t, vecs, 2)
		assert.InDelta(t, 1.0, float64(vecs[0][0]), 1e-6)
		assert.InDelta(t, 1.0, float64(vecs[1][1]), 1e-6)
	})

	t.Run("count mismatch", func(t *testing.T) {
		stub := &stubEmbedder{vecs: [][]float32{{1, 0}}}
		enc, err := NewDenseEncoder(stub, 2)
		require.NoError(t, err)

		_, err = enc.EncodeBatch(ctx, []string{"first", "second"})
		assert.ErrorIs(t, err, ErrEmbeddingMismatch)
	})
}
