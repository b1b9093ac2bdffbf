package search

import (
	"sort"

	"github.com/caselight/retrieval/core"
)

// fuse merges per-leg ranked lists by reciprocal rank: each hit contributes
// 1/(k+rank) to its point's fused score. Only ranks matter, so cosine and
// BM25 lists mix without scale normalization.
func fuse(lists [][]core.RankedHit, k int) []core.FusedResult {
	byPoint := make(map[core.ID]*core.FusedResult)
	for _, list := range lists {
		for _, hit := range list {
			fused, ok := byPoint[hit.PointID]
			if !ok {
				fused = &core.FusedResult{PointID: hit.PointID}
				byPoint[hit.PointID] = fused
			}
			fused.RRFScore += 1.0 / float64(k+hit.Rank)
			fused.Contributing = append(fused.Contributing, hit)
		}
	}

	results := make([]core.FusedResult, 0, len(byPoint))
	for _, fused := range byPoint {
		results = append(results, *fused)
	}
	return results
}

// sortFused orders fused results by RRF score descending. Exact score ties
// break deterministically: more contributing vector types first, then the
// better single raw score, then document ID, then point ID.
func sortFused(results []core.FusedResult) {
	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.RRFScore != b.RRFScore {
			return a.RRFScore > b.RRFScore
		}
		if ca, cb := len(a.Contributing), len(b.Contributing); ca != cb {
			return ca > cb
		}
		if ra, rb := bestRawScore(a), bestRawScore(b); ra != rb {
			return ra > rb
		}
		if a.Payload.DocumentID != b.Payload.DocumentID {
			return a.Payload.DocumentID < b.Payload.DocumentID
		}
		return a.PointID < b.PointID
	})
}

func bestRawScore(r core.FusedResult) float32 {
	var best float32
	for i, hit := range r.Contributing {
		if i == 0 || hit.RawScore > best {
			best = hit.RawScore
		}
	}
	return best
}
