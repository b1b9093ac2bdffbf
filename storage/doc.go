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


// Package storage defines the metadata persistence contracts for the
// retrieval engine: chunk records keyed by content-addressed ID, plus the
// vocabulary snapshot that survives restarts.
//
// The vector index is NOT behind these interfaces; it lives behind
// index.Store. This package holds the source of truth the engine hydrates
// search results from and rebuilds the index out of.
//
// # Implementation Packages
//
//   - storage/badger: production implementation on BadgerDB
//
// Serialization uses hand-written MUS codecs from the core package; the
// Marshal*/Unmarshal* helpers here wrap them with byte-slice allocation.
package storage
