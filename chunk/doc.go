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


// Package chunk splits document text into indexable units.
//
// Splitting happens in two stages: a document-template-specific structural
// pass (contract articles, brief headings, transcript speaker turns, or a
// generic paragraph fallback), then a token-window pass that re-splits each
// structural segment into every configured granularity size with a sliding
// overlap. Windows never span a structural boundary.
package chunk
