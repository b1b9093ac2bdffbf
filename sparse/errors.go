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


package sparse

import "errors"

var (
	// ErrVocabularyNotFit is returned by Encode before any vocabulary has
	// been fitted or restored. Callers degrade to dense-only retrieval.
	ErrVocabularyNotFit = errors.New("vocabulary not fit")

	// ErrInvalidParameter is returned for out-of-range BM25 parameters.
	ErrInvalidParameter = errors.New("invalid BM25 parameter")

	// ErrEncoderRequired is returned when a nil encoder is provided.
	ErrEncoderRequired = errors.New("encoder required")
)
