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


package chunk

import "errors"

var (
	// ErrTokenizerRequired is returned when a nil tokenizer is provided.
	ErrTokenizerRequired = errors.New("tokenizer required")

	// ErrNoSizes is returned when the size configuration is empty.
	ErrNoSizes = errors.New("at least one granularity size required")

	// ErrInvalidSize is returned for a non-positive window size.
	ErrInvalidSize = errors.New("window size must be positive")

	// ErrInvalidOverlap is returned when the overlap is negative or does
	// not leave the window room to advance.
	ErrInvalidOverlap = errors.New("overlap must be non-negative and smaller than every window size")
)
