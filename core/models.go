package core

import (
	"encoding/binary"
	"fmt"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// Chunk IDs are content-addressed so re-ingesting the same document
// produces the same IDs.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// ChunkID derives the ID for a chunk from its document, granularity and
// position. The document text is not part of the key, so re-chunking an
// unchanged document yields the same IDs and upserts replace in place.
func ChunkID(documentID string, granularity Granularity, position int) ID {
	return IDFromContent(fmt.Sprintf("%s/%s/%d", documentID, granularity, position))
}

// Granularity is the chunk size level at which a document is independently
// embedded and indexed.
type Granularity string

const (
	// GranularitySummary covers large, document-level windows.
	GranularitySummary Granularity = "summary"
	// GranularitySection covers structural-section-sized windows.
	GranularitySection Granularity = "section"
	// GranularityMicroblock covers small, clause-sized windows.
	GranularityMicroblock Granularity = "microblock"
)

// VectorTypeSparse is the vector type name of the lexical (BM25) index.
// Dense vector types are named after their granularity.
const VectorTypeSparse = "sparse"

// Chunk is a searchable unit of a document at one granularity.
// Chunks are immutable once indexed and are deleted in bulk when the
// parent document is deleted.
type Chunk struct {
	Id              ID
	DocumentID      string
	CaseID          string
	Granularity     Granularity
	Position        int // sequence position within the document, per granularity
	Text            string
	TokenCount      int
	StructuralLabel string // optional section/heading label
	Citations       []string
}

// SparseVector maps vocabulary term IDs to non-negative BM25 weights.
// Terms absent from the map carry zero weight.
type SparseVector map[uint32]float32

// Dot returns the dot product of two sparse vectors.
func (v SparseVector) Dot(other SparseVector) float32 {
	a, b := v, other
	if len(b) < len(a) {
		a, b = b, a
	}
	var sum float32
	for term, w := range a {
		sum += w * b[term]
	}
	return sum
}

// DenseVector is a fixed-length unit-norm embedding. Cosine similarity
// between two dense vectors is their dot product.
type DenseVector []float32

// Dot returns the dot product of two dense vectors. Mismatched lengths
// are truncated to the shorter vector.
func (v DenseVector) Dot(other DenseVector) float32 {
	n := len(v)
	if len(other) < n {
		n = len(other)
	}
	var sum float32
	for i := 0; i < n; i++ {
		sum += v[i] * other[i]
	}
	return sum
}

// Vocabulary is the corpus-relative term-weighting model behind sparse
// encoding. It is produced by a full corpus fit and is immutable afterwards;
// refits publish a fresh snapshot rather than mutating in place.
type Vocabulary struct {
	Terms     map[string]uint32 // term -> term ID
	DocFreq   []uint32          // document frequency, indexed by term ID
	DocCount  int               // N: documents seen during fit
	AvgDocLen float64           // average token count per document
}

// Payload is the metadata carried alongside every indexed point. It is a
// typed struct rather than an untyped bag; fields are validated at the
// ingestion boundary.
type Payload struct {
	CaseID          string
	DocumentID      string
	Granularity     Granularity
	Position        int
	Text            string
	StructuralLabel string
	Citations       []string
}

// PayloadFromChunk builds the index payload for a chunk.
func PayloadFromChunk(c *Chunk) Payload {
	return Payload{
		CaseID:          c.CaseID,
		DocumentID:      c.DocumentID,
		Granularity:     c.Granularity,
		Position:        c.Position,
		Text:            c.Text,
		StructuralLabel: c.StructuralLabel,
		Citations:       c.Citations,
	}
}

// IndexedPoint is the unit stored in the external vector/keyword index,
// keyed by chunk identity. A point is queryable only once all of its
// configured vector types are present.
type IndexedPoint struct {
	ChunkID ID
	Dense   map[Granularity]DenseVector
	Sparse  SparseVector
	Payload Payload
}

// RankedHit is the atomic unit produced by one single-vector-type query,
// before fusion.
type RankedHit struct {
	PointID    ID
	VectorType string // granularity name, or VectorTypeSparse
	Rank       int    // 1-based rank within its list
	RawScore   float32
}

// CalibrationDebug records every intermediate value of the calibration
// decision for one hit, so relevance-tuning changes stay auditable.
type CalibrationDebug struct {
	RawRRFScore float64
	Normalized  float64
	BM25Raw     float64
	Boost       float64
	Calibrated  float64
}

// FusedResult is the externally visible search result: one point with its
// fused rank score, the per-list hits that contributed to it, and the
// calibrated confidence.
type FusedResult struct {
	PointID         ID
	RRFScore        float64
	Contributing    []RankedHit
	CalibratedScore float64
	Payload         Payload
	Debug           CalibrationDebug
}
