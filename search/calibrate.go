package search

import (
	"math"

	"github.com/caselight/retrieval/core"
)

// calibrate maps raw RRF scores onto the external [0,1] confidence scale,
// in place. results must already be in fused-rank order; positions within
// the guarantee window are eligible for the strong-keyword floor.
//
// The steps per result:
//
//  1. min-max normalize the RRF score within this batch
//  2. add a keyword boost proportional to the hit's raw BM25 score
//  3. floor strong keyword matches near the top of the list
//  4. clamp to [0,1]
//
// When every score in the batch is identical, normalization would divide
// by zero; all results get norm 1.0 instead, which also covers the
// single-result batch.
func calibrate(results []core.FusedResult, sparseRaw map[core.ID]float64, cfg CalibrationConfig) {
	if len(results) == 0 {
		return
	}

	minScore, maxScore := results[0].RRFScore, results[0].RRFScore
	for _, r := range results[1:] {
		if r.RRFScore < minScore {
			minScore = r.RRFScore
		}
		if r.RRFScore > maxScore {
			maxScore = r.RRFScore
		}
	}
	spread := maxScore - minScore

	for i := range results {
		r := &results[i]

		norm := 1.0
		if spread > 0 {
			norm = (r.RRFScore - minScore) / spread
		}

		bm25Raw := sparseRaw[r.PointID]
		bm25Norm := math.Min(bm25Raw/cfg.BM25NormCeiling, 1.0)
		boost := bm25Norm * cfg.BoostCap

		calibrated := math.Pow(norm, cfg.Exponent) + boost

		if i < cfg.GuaranteeDepth && bm25Raw > cfg.StrongKeyword {
			floor := cfg.GuaranteeBase + bm25Norm*cfg.GuaranteeSlope
			if calibrated < floor {
				calibrated = floor
			}
		}

		if calibrated > 1.0 {
			calibrated = 1.0
		}
		if calibrated < 0.0 {
			calibrated = 0.0
		}

		r.CalibratedScore = calibrated
		r.Debug = core.CalibrationDebug{
			RawRRFScore: r.RRFScore,
			Normalized:  norm,
			BM25Raw:     bm25Raw,
			Boost:       boost,
			Calibrated:  calibrated,
		}
	}
}
