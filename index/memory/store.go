package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/caselight/retrieval/core"
	"github.com/caselight/retrieval/index"
)

// Store is an in-memory index.Store. Safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	points map[core.ID]core.IndexedPoint
}

// NewStore creates an empty in-memory store.
// Note: Returns concrete type so tests can inspect store contents.
func NewStore() *Store {
	return &Store{points: make(map[core.ID]core.IndexedPoint)}
}

// Upsert writes points, replacing any existing points with the same IDs.
func (s *Store) Upsert(_ context.Context, points []core.IndexedPoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range points {
		s.points[p.ChunkID] = p
	}
	return nil
}

// UpdateSparse rewrites the sparse vectors of existing points in place.
// Unknown point IDs are ignored.
func (s *Store) UpdateSparse(_ context.Context, updates []index.SparseUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range updates {
		p, ok := s.points[u.PointID]
		if !ok {
			continue
		}
		p.Sparse = u.Sparse
		s.points[u.PointID] = p
	}
	return nil
}

// Query brute-force scores every matching point in the requested vector
// space and returns the top K in descending score order.
func (s *Store) Query(_ context.Context, req index.QueryRequest) ([]core.RankedHit, error) {
	sparse := req.VectorType == core.VectorTypeSparse
	if sparse && req.Sparse == nil {
		return nil, index.ErrInvalidQuery
	}
	if !sparse && req.Dense == nil {
		return nil, index.ErrInvalidQuery
	}

	s.mu.RLock()
	scored := make([]core.RankedHit, 0, len(s.points))
	for id, p := range s.points {
		if !matches(p.Payload, req.Filter) {
			continue
		}
		var score float32
		if sparse {
			if len(p.Sparse) == 0 {
				continue
			}
			score = p.Sparse.Dot(req.Sparse)
			if score <= 0 {
				continue
			}
		} else {
			vec, ok := p.Dense[core.Granularity(req.VectorType)]
			if !ok {
				continue
			}
			score = vec.Dot(req.Dense)
		}
		scored = append(scored, core.RankedHit{
			PointID:    id,
			VectorType: req.VectorType,
			RawScore:   score,
		})
	}
	s.mu.RUnlock()

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].RawScore != scored[j].RawScore {
			return scored[i].RawScore > scored[j].RawScore
		}
		return scored[i].PointID < scored[j].PointID
	})

	if req.TopK > 0 && len(scored) > req.TopK {
		scored = scored[:req.TopK]
	}
	for i := range scored {
		scored[i].Rank = i + 1
	}
	return scored, nil
}

// DeleteByDocument removes every point of the document. Unknown documents
// delete nothing and return nil.
func (s *Store) DeleteByDocument(_ context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, p := range s.points {
		if p.Payload.DocumentID == documentID {
			delete(s.points, id)
		}
	}
	return nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error {
	return nil
}

// Len returns the number of stored points.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.points)
}

func matches(p core.Payload, f index.Filter) bool {
	if f.DocumentID != "" && p.DocumentID != f.DocumentID {
		return false
	}
	if len(f.CaseIDs) > 0 {
		found := false
		for _, id := range f.CaseIDs {
			if p.CaseID == id {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(f.Granularities) > 0 {
		found := false
		for _, g := range f.Granularities {
			if p.Granularity == g {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
