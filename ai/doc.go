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


// Package ai provides abstractions for the embedding services used by the
// retrieval engine.
//
// The package defines interfaces for text embedding and follows the
// dependency inversion principle: ingestion and search depend on these
// abstractions rather than on a concrete embedding backend.
//
// # Implementation Packages
//
//   - ai/openai: Production implementation using OpenAI-compatible APIs
//   - ai/mock: Test doubles for unit testing without external services
//
// # Constructor Return Type Pattern
//
// Public constructors (openai.NewProvider, openai.NewEmbedder) return
// INTERFACE types to enforce abstraction and keep callers decoupled from
// the backend. Test utility constructors (mock.NewMockEmbedder) return
// CONCRETE types so tests can inject behavior and assert call counts.
//
// # Usage Example
//
//	config := ai.NewConfig(ai.WithEmbeddingModel("text-embedding-3-small"))
//	provider, err := openai.NewProvider(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vec, err := provider.Embedder().EmbedText(ctx, "breach of contract")
package ai
