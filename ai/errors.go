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


package ai

import "errors"

var (
	// ErrEmbedderRequired is returned when a nil embedder is provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrDimensionMismatch is returned when an embedding does not match
	// the configured vector width.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrEmbeddingMismatch is returned when a batch call returns a
	// different number of embeddings than texts submitted.
	ErrEmbeddingMismatch = errors.New("embedding count mismatch")

	// ErrZeroVector is returned when the embedding service produces an
	// all-zero vector, which cannot be normalized.
	ErrZeroVector = errors.New("zero embedding vector")
)
