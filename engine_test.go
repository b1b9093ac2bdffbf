// Copyright 2025 Caselight Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package retrieval

import (
	"context"
	"testing"

	"github.com/caselight/retrieval/ai/mock"
	"github.com/caselight/retrieval/ingest"
	"github.com/caselight/retrieval/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := NewEngine("", WithProvider(mock.NewMockProvider()))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, engine.Close())
	})
	return engine
}

func TestEngineRoundTrip(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	receipt, err := engine.IndexDocument(ctx, ingest.Document{
		DocumentID: "doc-lease",
		CaseID:     "case-1",
		Text: `The tenant agrees to pay rent on the first of each month.
Failure to pay constitutes a material breach of this lease agreement.
The landlord may recover damages upon breach including lost rent.`,
	})
	require.NoError(t, err)
	assert.Greater(t, receipt.ChunksIndexed, 0)

	// Make the sparse leg live for the query below.
	require.NoError(t, engine.RefitVocabulary(ctx))

	noMin := 0.0
	resp, err := engine.Search(ctx, search.Request{
		Query:    "breach of lease agreement",
		CaseIDs:  []string{"case-1"},
		MinScore: &noMin,
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Results)
	assert.Equal(t, "doc-lease", resp.Results[0].Payload.DocumentID)
	assert.Greater(t, resp.Results[0].CalibratedScore, 0.0)

	deleted, err := engine.DeleteDocument(ctx, "doc-lease")
	require.NoError(t, err)
	assert.Equal(t, receipt.ChunksIndexed, deleted)

	resp, err = engine.Search(ctx, search.Request{
		Query:    "breach of lease agreement",
		MinScore: &noMin,
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Results)
}

func TestEngineKeywordScenario(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	docs := map[string]string{
		"doc-1": "The parties exchanged interrogatories during discovery and agreed on a deposition schedule.",
		"doc-2": "Severance pay depends on years of continuous service with the employer.",
		"doc-3": "The vendor's breach of contract voided the warranty. A second breach of contract followed in May. The final breach of contract ended the relationship.",
		"doc-4": "The settlement amount remains confidential under the protective order.",
		"doc-5": "Arbitration clauses are enforceable under the federal act.",
	}
	for id, text := range docs {
		_, err := engine.IndexDocument(ctx, ingest.Document{
			DocumentID: id, CaseID: "case-1", Text: text,
		})
		require.NoError(t, err)
	}

	// All five documents were indexed before the first fit, so their
	// points went in dense-only. The refit must backfill the sparse
	// vectors or the keyword leg below has nothing to match.
	require.NoError(t, engine.RefitVocabulary(ctx))

	noMin := 0.0
	resp, err := engine.Search(ctx, search.Request{
		Query:    "contract breach",
		MinScore: &noMin,
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Results)

	top := resp.Results[0]
	assert.Equal(t, "doc-3", top.Payload.DocumentID)
	assert.Greater(t, top.Debug.BM25Raw, 5.0)
	assert.GreaterOrEqual(t, top.CalibratedScore, 0.85)
	assert.LessOrEqual(t, top.CalibratedScore, 1.0)
}

func TestEngineDeleteUnknownDocument(t *testing.T) {
	engine := newTestEngine(t)

	deleted, err := engine.DeleteDocument(context.Background(), "doc-missing")
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestEngineVocabularyPersistence(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	_, err := engine.IndexDocument(ctx, ingest.Document{
		DocumentID: "doc-a",
		CaseID:     "case-1",
		Text:       "Arbitration clauses are enforceable under the federal act.",
	})
	require.NoError(t, err)
	require.NoError(t, engine.RefitVocabulary(ctx))

	vocab, err := engine.vocabRepo.LoadVocabulary(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, vocab.Terms)
}
