package search

import (
	"testing"

	"github.com/caselight/retrieval/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func calCfg() CalibrationConfig {
	return DefaultConfig().Calibration
}

func fusedBatch(scores ...float64) []core.FusedResult {
	results := make([]core.FusedResult, len(scores))
	for i, s := range scores {
		results[i] = core.FusedResult{PointID: core.ID(i + 1), RRFScore: s}
	}
	return results
}

func TestCalibrateBounded(t *testing.T) {
	results := fusedBatch(0.08, 0.05, 0.03, 0.01)
	sparseRaw := map[core.ID]float64{1: 25.0, 2: 9.0, 3: 0.5}

	calibrate(results, sparseRaw, calCfg())

	for _, r := range results {
		assert.GreaterOrEqual(t, r.CalibratedScore, 0.0)
		assert.LessOrEqual(t, r.CalibratedScore, 1.0)
	}
}

func TestCalibrateMonotonic(t *testing.T) {
	// Same keyword evidence everywhere, so fused order must survive
	// calibration unchanged.
	results := fusedBatch(0.09, 0.07, 0.05, 0.03, 0.01)
	calibrate(results, nil, calCfg())

	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].CalibratedScore, results[i].CalibratedScore)
	}
}

func TestCalibrateTopResult(t *testing.T) {
	results := fusedBatch(0.09, 0.05, 0.01)
	calibrate(results, nil, calCfg())

	// Min-max puts the best result at norm 1.0; with no boost that
	// calibrates to exactly 1.0.
	assert.InDelta(t, 1.0, results[0].CalibratedScore, 1e-12)
	assert.InDelta(t, 1.0, results[0].Debug.Normalized, 1e-12)
	assert.InDelta(t, 0.0, results[len(results)-1].Debug.Normalized, 1e-12)
}

func TestCalibrateDegenerateBatch(t *testing.T) {
	t.Run("identical scores", func(t *testing.T) {
		results := fusedBatch(0.05, 0.05, 0.05)
		calibrate(results, nil, calCfg())
		for _, r := range results {
			assert.InDelta(t, 1.0, r.Debug.Normalized, 1e-12)
			assert.InDelta(t, 1.0, r.CalibratedScore, 1e-12)
		}
	})

	t.Run("single result", func(t *testing.T) {
		results := fusedBatch(0.02)
		calibrate(results, nil, calCfg())
		assert.InDelta(t, 1.0, results[0].CalibratedScore, 1e-12)
	})

	t.Run("empty batch", func(t *testing.T) {
		calibrate(nil, nil, calCfg())
	})
}

func TestCalibrateKeywordBoost(t *testing.T) {
	withBoost := fusedBatch(0.08, 0.05, 0.01)
	without := fusedBatch(0.08, 0.05, 0.01)

	calibrate(withBoost, map[core.ID]float64{2: 8.0}, calCfg())
	calibrate(without, nil, calCfg())

	assert.Greater(t, withBoost[1].CalibratedScore, without[1].CalibratedScore)
	assert.InDelta(t, 0.8*0.3, withBoost[1].Debug.Boost, 1e-12)

	t.Run("boost saturates at ceiling", func(t *testing.T) {
		results := fusedBatch(0.08, 0.05, 0.01)
		calibrate(results, map[core.ID]float64{2: 500.0}, calCfg())
		assert.InDelta(t, 0.3, results[1].Debug.Boost, 1e-12)
	})
}

func TestCalibrateStrongKeywordGuarantee(t *testing.T) {
	cfg := calCfg()

	t.Run("floors strong matches in the window", func(t *testing.T) {
		// Last place in a 5-deep window, weak fused score, strong keywords.
		results := fusedBatch(0.09, 0.08, 0.07, 0.06, 0.001)
		calibrate(results, map[core.ID]float64{5: 9.5}, cfg)

		got := results[4].CalibratedScore
		assert.GreaterOrEqual(t, got, 0.85)
		assert.LessOrEqual(t, got, 1.0)
	})

	t.Run("no floor below the window", func(t *testing.T) {
		results := fusedBatch(0.09, 0.08, 0.07, 0.06, 0.05, 0.001)
		calibrate(results, map[core.ID]float64{6: 9.5}, cfg)

		// Position 6 is outside GuaranteeDepth 5; only the boost applies.
		assert.Less(t, results[5].CalibratedScore, 0.85)
	})

	t.Run("no floor for weak keywords", func(t *testing.T) {
		results := fusedBatch(0.09, 0.001)
		calibrate(results, map[core.ID]float64{2: 4.9}, cfg)
		assert.Less(t, results[1].CalibratedScore, 0.85)
	})
}

func TestCalibrateDebugTrace(t *testing.T) {
	results := fusedBatch(0.08, 0.02)
	calibrate(results, map[core.ID]float64{1: 6.0}, calCfg())

	d := results[0].Debug
	require.InDelta(t, 0.08, d.RawRRFScore, 1e-12)
	assert.InDelta(t, 1.0, d.Normalized, 1e-12)
	assert.InDelta(t, 6.0, d.BM25Raw, 1e-12)
	assert.InDelta(t, 0.6*0.3, d.Boost, 1e-12)
	assert.Equal(t, results[0].CalibratedScore, d.Calibrated)
}
