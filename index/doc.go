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


// Package index defines the vector store contract used by ingestion and
// search, plus a batching writer with retry.
//
// A Store holds indexed points. Each point carries one named dense vector
// (keyed by its chunk's granularity) and one sparse vector, so a single
// query leg addresses exactly one vector space via QueryRequest.VectorType.
//
// Implementations:
//
//   - index/qdrant: production client over the Qdrant REST API
//   - index/memory: in-process store for tests and small corpora
//
// Writes go through the Batcher, which splits large upserts into fixed-size
// batches and retries each batch with exponential backoff. Retried batches
// may re-apply points that already landed; upserts are idempotent by point
// ID, so replays converge instead of duplicating.
package index
