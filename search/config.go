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

import "time"

// CalibrationConfig holds the tuning constants that map raw RRF scores to
// the external [0,1] confidence scale. These are product-tuned values, not
// invariants; change them deliberately and watch the calibration tests.
type CalibrationConfig struct {
	// BM25NormCeiling is the raw BM25 score treated as full keyword
	// strength. Raw scores are divided by it and capped at 1.
	BM25NormCeiling float64

	// BoostCap is the maximum additive boost a perfect keyword match
	// contributes.
	BoostCap float64

	// Exponent spreads the normalized scores before boosting. Values
	// below 1 lift the mid-range, keeping decent matches visible.
	Exponent float64

	// StrongKeyword is the raw BM25 score above which a hit counts as an
	// exact keyword match for the floor guarantee.
	StrongKeyword float64

	// GuaranteeDepth is how many top fused positions are eligible for the
	// strong-keyword floor.
	GuaranteeDepth int

	// GuaranteeBase is the calibrated floor for strong keyword matches in
	// the guarantee window.
	GuaranteeBase float64

	// GuaranteeSlope scales the normalized BM25 score on top of the floor.
	GuaranteeSlope float64
}

// Config holds searcher tuning parameters.
type Config struct {
	// SubQueryTimeout bounds each retrieval leg independently.
	SubQueryTimeout time.Duration

	// OverFetch multiplies the requested TopK on each leg so fusion has
	// enough candidates to reorder.
	OverFetch int

	// RRFK is the reciprocal-rank-fusion constant. Larger values flatten
	// the difference between adjacent ranks.
	RRFK int

	// DefaultTopK is used when a request does not set TopK.
	DefaultTopK int

	// DefaultMinScore is the calibrated score threshold applied when a
	// request does not set MinScore.
	DefaultMinScore float64

	// LegMaxAttempts is the number of query attempts per retrieval leg
	// before it is dropped. The default of 2 allows one retry on the
	// search path.
	LegMaxAttempts int

	// LegRetryDelay is the backoff before a leg retry.
	LegRetryDelay time.Duration

	Calibration CalibrationConfig
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		SubQueryTimeout: 2 * time.Second,
		OverFetch:       2,
		RRFK:            60,
		DefaultTopK:     10,
		DefaultMinScore: 0.3,
		LegMaxAttempts:  2,
		LegRetryDelay:   100 * time.Millisecond,
		Calibration: CalibrationConfig{
			BM25NormCeiling: 10.0,
			BoostCap:        0.3,
			Exponent:        0.7,
			StrongKeyword:   5.0,
			GuaranteeDepth:  5,
			GuaranteeBase:   0.85,
			GuaranteeSlope:  0.1,
		},
	}
}
