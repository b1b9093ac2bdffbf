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


// Package search implements hybrid retrieval: a parallel fan-out of one
// similarity query per vector space, reciprocal-rank fusion of the ranked
// lists, and score calibration into a stable [0,1] confidence scale.
//
// Legs degrade independently. A leg that times out or fails is dropped
// from fusion and logged; the search only fails when every leg failed or
// the caller's context was cancelled.
//
// Fusion is rank-based (RRF), which makes mixing cosine similarities with
// BM25 dot products safe: only positions matter. Raw BM25 scores re-enter
// afterwards as a calibration boost so exact keyword matches keep their
// edge over purely semantic neighbors.
package search
