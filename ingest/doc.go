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


// Package ingest orchestrates document indexing: chunking at every
// granularity, sparse and dense encoding, metadata persistence and batched
// index writes.
//
// Embedding failures are contained per chunk: a chunk whose embedding
// cannot be produced is skipped and counted in the receipt, never failing
// the whole document. Granularity groups are embedded concurrently on a
// worker pool.
package ingest
