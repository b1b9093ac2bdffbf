package search

import (
	"testing"

	"github.com/caselight/retrieval/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hit(id core.ID, vectorType string, rank int, raw float32) core.RankedHit {
	return core.RankedHit{PointID: id, VectorType: vectorType, Rank: rank, RawScore: raw}
}

func TestFuse(t *testing.T) {
	lists := [][]core.RankedHit{
		{
			hit(1, "section", 1, 0.9),
			hit(2, "section", 2, 0.8),
		},
		{
			hit(2, "sparse", 1, 7.5),
			hit(3, "sparse", 2, 3.0),
		},
	}

	results := fuse(lists, 60)
	require.Len(t, results, 3)

	byID := make(map[core.ID]core.FusedResult)
	for _, r := range results {
		byID[r.PointID] = r
	}

	// Point 2 appears in both lists: 1/(60+2) + 1/(60+1).
	assert.InDelta(t, 1.0/62+1.0/61, byID[2].RRFScore, 1e-12)
	assert.Len(t, byID[2].Contributing, 2)

	assert.InDelta(t, 1.0/61, byID[1].RRFScore, 1e-12)
	assert.InDelta(t, 1.0/62, byID[3].RRFScore, 1e-12)
}

func TestFuseDeterministic(t *testing.T) {
	lists := [][]core.RankedHit{
		{hit(5, "section", 1, 0.9), hit(6, "section", 2, 0.8)},
		{hit(6, "sparse", 1, 5.0), hit(5, "sparse", 2, 4.0)},
	}

	first := fuse(lists, 60)
	sortFused(first)
	second := fuse(lists, 60)
	sortFused(second)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].PointID, second[i].PointID)
		assert.Equal(t, first[i].RRFScore, second[i].RRFScore)
	}
}

func TestSortFused(t *testing.T) {
	t.Run("by score", func(t *testing.T) {
		results := []core.FusedResult{
			{PointID: 1, RRFScore: 0.01},
			{PointID: 2, RRFScore: 0.05},
		}
		sortFused(results)
		assert.Equal(t, core.ID(2), results[0].PointID)
	})

	t.Run("tie broken by contributor count", func(t *testing.T) {
		results := []core.FusedResult{
			{PointID: 1, RRFScore: 0.05, Contributing: []core.RankedHit{
				hit(1, "section", 1, 0.9),
			}},
			{PointID: 2, RRFScore: 0.05, Contributing: []core.RankedHit{
				hit(2, "section", 3, 0.5), hit(2, "sparse", 4, 2.0),
			}},
		}
		sortFused(results)
		assert.Equal(t, core.ID(2), results[0].PointID)
	})

	t.Run("tie broken by best raw score", func(t *testing.T) {
		results := []core.FusedResult{
			{PointID: 1, RRFScore: 0.05, Contributing: []core.RankedHit{
				hit(1, "section", 1, 0.7),
			}},
			{PointID: 2, RRFScore: 0.05, Contributing: []core.RankedHit{
				hit(2, "section", 1, 0.9),
			}},
		}
		sortFused(results)
		assert.Equal(t, core.ID(2), results[0].PointID)
	})

	t.Run("tie broken by document then point ID", func(t *testing.T) {
		results := []core.FusedResult{
			{PointID: 9, RRFScore: 0.05, Payload: core.Payload{DocumentID: "doc-b"}},
			{PointID: 7, RRFScore: 0.05, Payload: core.Payload{DocumentID: "doc-a"}},
			{PointID: 3, RRFScore: 0.05, Payload: core.Payload{DocumentID: "doc-b"}},
		}
		sortFused(results)
		assert.Equal(t, core.ID(7), results[0].PointID)
		assert.Equal(t, core.ID(3), results[1].PointID)
		assert.Equal(t, core.ID(9), results[2].PointID)
	})
}
