package consensus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name      string
		threshold float64
		total     int
		valid     int
		achieved  bool
		percent   float64
	}{
		{"zero total never reaches consensus", DefaultThreshold, 0, 0, false, 0},
		{"negative total never reaches consensus", DefaultThreshold, -1, 0, false, 0},
		{"seven of ten meets 0.67", 0.67, 10, 7, true, 70},
		{"six of ten misses 0.67", 0.67, 10, 6, false, 60},
		{"exact threshold counts as consensus", 0.5, 4, 2, true, 50},
		{"all valid", DefaultThreshold, 5, 5, true, 100},
		{"none valid", DefaultThreshold, 5, 0, false, 0},
		{"two thirds boundary", DefaultThreshold, 3, 2, true, 100.0 * 2 / 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := NewThresholdEvaluator(tt.threshold).Evaluate(tt.total, tt.valid)
			assert.Equal(t, tt.achieved, decision.Achieved)
			assert.InDelta(t, tt.percent, decision.Percent, 1e-9)
		})
	}
}

func TestPercentMonotonicInValidCount(t *testing.T) {
	evaluator := NewThresholdEvaluator(DefaultThreshold)
	const total = 50

	previous := -1.0
	for valid := 0; valid <= total; valid++ {
		decision := evaluator.Evaluate(total, valid)
		assert.GreaterOrEqual(t, decision.Percent, previous, "valid=%d", valid)
		previous = decision.Percent
	}
}

func TestNewThresholdEvaluatorClampsInvalid(t *testing.T) {
	assert.InDelta(t, DefaultThreshold, NewThresholdEvaluator(0).Threshold(), 1e-9)
	assert.InDelta(t, DefaultThreshold, NewThresholdEvaluator(-0.5).Threshold(), 1e-9)
	assert.InDelta(t, DefaultThreshold, NewThresholdEvaluator(1.5).Threshold(), 1e-9)
	assert.InDelta(t, 0.75, NewThresholdEvaluator(0.75).Threshold(), 1e-9)
}
