package index

import (
	"context"

	"github.com/caselight/retrieval/core"
)

// Filter narrows a query or delete to matching payloads. Zero-value fields
// are ignored.
type Filter struct {
	// CaseIDs restricts results to the given case identifiers.
	CaseIDs []string

	// DocumentID restricts results to chunks of a single document.
	DocumentID string

	// Granularities restricts results to the given chunk granularities.
	Granularities []core.Granularity
}

// QueryRequest describes one retrieval leg against a single vector space.
// Exactly one of Dense or Sparse must be set, matching VectorType: a
// granularity name selects that named dense space, core.VectorTypeSparse
// selects the sparse space.
type QueryRequest struct {
	VectorType string
	Dense      core.DenseVector
	Sparse     core.SparseVector
	Filter     Filter
	TopK       int
}

// SparseUpdate rewrites the sparse vector of one existing point.
type SparseUpdate struct {
	PointID core.ID
	Sparse  core.SparseVector
}

// Store is the vector index gateway. Implementations must be safe for
// concurrent use.
type Store interface {
	// Upsert writes points to the index, replacing any existing points
	// with the same IDs. The call is atomic per point, not per batch.
	Upsert(ctx context.Context, points []core.IndexedPoint) error

	// UpdateSparse replaces the sparse vectors of existing points,
	// leaving dense vectors and payloads untouched. Unknown point IDs
	// are ignored.
	UpdateSparse(ctx context.Context, updates []SparseUpdate) error

	// Query runs a similarity search in the vector space named by
	// req.VectorType and returns hits in descending raw-score order with
	// 1-based ranks assigned.
	Query(ctx context.Context, req QueryRequest) ([]core.RankedHit, error)

	// DeleteByDocument removes every point belonging to the document.
	// Deleting an unknown document is not an error.
	DeleteByDocument(ctx context.Context, documentID string) error

	// Close releases resources held by the store.
	Close() error
}
