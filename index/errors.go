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


package index

import "errors"

var (
	// ErrIndexUnavailable wraps transport-level failures talking to the
	// vector store.
	ErrIndexUnavailable = errors.New("vector index unavailable")

	// ErrStoreRequired is returned when a nil store is provided.
	ErrStoreRequired = errors.New("store required")

	// ErrInvalidBatchSize is returned for non-positive batch sizes.
	ErrInvalidBatchSize = errors.New("batch size must be positive")

	// ErrInvalidMaxAttempts is returned when maxAttempts is not positive.
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrInvalidQuery is returned when a QueryRequest names a vector type
	// without carrying the matching vector.
	ErrInvalidQuery = errors.New("query vector does not match vector type")
)
