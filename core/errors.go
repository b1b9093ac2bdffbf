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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidChunk indicates a Chunk failed validation.
	ErrInvalidChunk = errors.New("invalid chunk")

	// ErrEmptyText indicates the Text field is empty.
	ErrEmptyText = errors.New("text cannot be empty")

	// ErrMissingDocumentID indicates the DocumentID field is empty.
	ErrMissingDocumentID = errors.New("document id cannot be empty")

	// ErrMissingCaseID indicates the CaseID field is empty.
	ErrMissingCaseID = errors.New("case id cannot be empty")

	// ErrUnknownGranularity indicates a Granularity value outside the
	// configured set.
	ErrUnknownGranularity = errors.New("unknown granularity")

	// ErrInvalidTokenCount indicates a non-positive token count.
	ErrInvalidTokenCount = errors.New("token count must be positive")
)
