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


package search

import "errors"

var (
	// ErrEmptyQuery is returned when the query text is empty.
	ErrEmptyQuery = errors.New("query text is empty")

	// ErrSearchUnavailable is returned when every retrieval leg failed.
	ErrSearchUnavailable = errors.New("search unavailable: all retrieval legs failed")

	// ErrIndexRequired is returned when a nil index store is provided.
	ErrIndexRequired = errors.New("index store required")

	// ErrDenseEncoderRequired is returned when a nil dense encoder is provided.
	ErrDenseEncoderRequired = errors.New("dense encoder required")

	// ErrSparseEncoderRequired is returned when a nil sparse encoder is provided.
	ErrSparseEncoderRequired = errors.New("sparse encoder required")

	// ErrChunkRepositoryRequired is returned when a nil chunk repository is provided.
	ErrChunkRepositoryRequired = errors.New("chunk repository required")
)
