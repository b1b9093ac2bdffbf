package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/caselight/retrieval/core"
	"github.com/caselight/retrieval/index"
)

// Config holds connection settings for a Qdrant instance.
type Config struct {
	URL        string
	APIKey     string
	Collection string
	Dimensions int
	Timeout    time.Duration
}

// Store is a REST client to Qdrant implementing index.Store.
type Store struct {
	cfg    Config
	client *http.Client
	logger *slog.Logger
}

// NewStore creates a Qdrant-backed store and ensures the collection exists
// with the expected vector schema.
//
// Returns index.Store interface to enforce abstraction.
func NewStore(ctx context.Context, cfg Config) (index.Store, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	s := &Store{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: slog.Default().With("component", "qdrant-store"),
	}
	if err := s.ensureCollection(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// ensureCollection creates the collection if missing. Qdrant returns 200
// when the collection already exists with the same schema.
func (s *Store) ensureCollection(ctx context.Context) error {
	vectors := make(map[string]any)
	for _, g := range []core.Granularity{
		core.GranularitySummary, core.GranularitySection, core.GranularityMicroblock,
	} {
		vectors[string(g)] = map[string]any{
			"size":     s.cfg.Dimensions,
			"distance": "Cosine",
		}
	}
	body := map[string]any{
		"vectors": vectors,
		"sparse_vectors": map[string]any{
			core.VectorTypeSparse: map[string]any{},
		},
	}
	return s.putJSON(ctx, fmt.Sprintf("%s/collections/%s", s.cfg.URL, s.cfg.Collection), body, nil)
}

// Upsert writes points with wait=true so reads after the call see them.
func (s *Store) Upsert(ctx context.Context, points []core.IndexedPoint) error {
	if len(points) == 0 {
		return nil
	}
	out := make([]map[string]any, len(points))
	for i, p := range points {
		vector := make(map[string]any, len(p.Dense)+1)
		for g, vec := range p.Dense {
			vector[string(g)] = vec
		}
		if len(p.Sparse) > 0 {
			indices := make([]uint32, 0, len(p.Sparse))
			values := make([]float32, 0, len(p.Sparse))
			for term, w := range p.Sparse {
				indices = append(indices, term)
				values = append(values, w)
			}
			vector[core.VectorTypeSparse] = map[string]any{
				"indices": indices,
				"values":  values,
			}
		}
		out[i] = map[string]any{
			"id":     uint64(p.ChunkID),
			"vector": vector,
			"payload": map[string]any{
				"case_id":          p.Payload.CaseID,
				"document_id":      p.Payload.DocumentID,
				"granularity":      string(p.Payload.Granularity),
				"position":         p.Payload.Position,
				"text":             p.Payload.Text,
				"structural_label": p.Payload.StructuralLabel,
				"citations":        p.Payload.Citations,
			},
		}
	}
	body := map[string]any{"points": out}
	url := fmt.Sprintf("%s/collections/%s/points?wait=true", s.cfg.URL, s.cfg.Collection)
	return s.putJSON(ctx, url, body, nil)
}

// UpdateSparse rewrites sparse vectors through the update-vectors API,
// leaving the named dense vectors and payloads untouched.
func (s *Store) UpdateSparse(ctx context.Context, updates []index.SparseUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	out := make([]map[string]any, len(updates))
	for i, u := range updates {
		indices := make([]uint32, 0, len(u.Sparse))
		values := make([]float32, 0, len(u.Sparse))
		for term, w := range u.Sparse {
			indices = append(indices, term)
			values = append(values, w)
		}
		out[i] = map[string]any{
			"id": uint64(u.PointID),
			"vector": map[string]any{
				core.VectorTypeSparse: map[string]any{
					"indices": indices,
					"values":  values,
				},
			},
		}
	}
	body := map[string]any{"points": out}
	url := fmt.Sprintf("%s/collections/%s/points/vectors?wait=true", s.cfg.URL, s.cfg.Collection)
	return s.putJSON(ctx, url, body, nil)
}

// Query runs one similarity search in the vector space named by
// req.VectorType.
func (s *Store) Query(ctx context.Context, req index.QueryRequest) ([]core.RankedHit, error) {
	var query any
	if req.VectorType == core.VectorTypeSparse {
		if req.Sparse == nil {
			return nil, index.ErrInvalidQuery
		}
		indices := make([]uint32, 0, len(req.Sparse))
		values := make([]float32, 0, len(req.Sparse))
		for term, w := range req.Sparse {
			indices = append(indices, term)
			values = append(values, w)
		}
		query = map[string]any{"indices": indices, "values": values}
	} else {
		if req.Dense == nil {
			return nil, index.ErrInvalidQuery
		}
		query = req.Dense
	}

	body := map[string]any{
		"query":        query,
		"using":        req.VectorType,
		"limit":        req.TopK,
		"with_payload": false,
	}
	if filter := buildFilter(req.Filter); filter != nil {
		body["filter"] = filter
	}

	var resp struct {
		Result struct {
			Points []struct {
				ID    uint64  `json:"id"`
				Score float32 `json:"score"`
			} `json:"points"`
		} `json:"result"`
	}
	url := fmt.Sprintf("%s/collections/%s/points/query", s.cfg.URL, s.cfg.Collection)
	if err := s.postJSON(ctx, url, body, &resp); err != nil {
		return nil, err
	}

	hits := make([]core.RankedHit, len(resp.Result.Points))
	for i, p := range resp.Result.Points {
		hits[i] = core.RankedHit{
			PointID:    core.ID(p.ID),
			VectorType: req.VectorType,
			Rank:       i + 1,
			RawScore:   p.Score,
		}
	}
	return hits, nil
}

// DeleteByDocument removes every point of the document by payload filter.
func (s *Store) DeleteByDocument(ctx context.Context, documentID string) error {
	body := map[string]any{
		"filter": map[string]any{
			"must": []any{
				map[string]any{
					"key":   "document_id",
					"match": map[string]any{"value": documentID},
				},
			},
		},
	}
	url := fmt.Sprintf("%s/collections/%s/points/delete?wait=true", s.cfg.URL, s.cfg.Collection)
	return s.postJSON(ctx, url, body, nil)
}

// Close is a no-op; the HTTP client holds no persistent connections worth
// tearing down explicitly.
func (s *Store) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

func buildFilter(f index.Filter) map[string]any {
	var must []any
	if f.DocumentID != "" {
		must = append(must, map[string]any{
			"key":   "document_id",
			"match": map[string]any{"value": f.DocumentID},
		})
	}
	if len(f.CaseIDs) > 0 {
		must = append(must, map[string]any{
			"key":   "case_id",
			"match": map[string]any{"any": f.CaseIDs},
		})
	}
	if len(f.Granularities) > 0 {
		gs := make([]string, len(f.Granularities))
		for i, g := range f.Granularities {
			gs[i] = string(g)
		}
		must = append(must, map[string]any{
			"key":   "granularity",
			"match": map[string]any{"any": gs},
		})
	}
	if must == nil {
		return nil
	}
	return map[string]any{"must": must}
}

func (s *Store) putJSON(ctx context.Context, url string, body, out any) error {
	return s.doJSON(ctx, http.MethodPut, url, body, out)
}

func (s *Store) postJSON(ctx context.Context, url string, body, out any) error {
	return s.doJSON(ctx, http.MethodPost, url, body, out)
}

func (s *Store) doJSON(ctx context.Context, method, url string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.cfg.APIKey != "" {
		req.Header.Set("api-key", s.cfg.APIKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", index.ErrIndexUnavailable, method, url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %s %s: %s", index.ErrIndexUnavailable, method, url, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
