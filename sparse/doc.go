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


// Package sparse implements BM25 term weighting for lexical retrieval.
//
// The Encoder holds an immutable Vocabulary snapshot behind an atomic
// pointer: encoding never takes a lock, and refitting publishes a complete
// new snapshot in one swap so readers never observe a partial vocabulary.
// The Fitter runs refits off the hot path, fed by a latest-wins channel.
package sparse
