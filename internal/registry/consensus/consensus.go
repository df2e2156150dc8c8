// Package consensus decides whether a validated registry has reached network
// consensus. Pure computation: no I/O, no mutation, safe to call from any
// goroutine.
package consensus

// DefaultThreshold is the fraction of valid entries required for consensus
// when the registry's sync policy does not set one.
const DefaultThreshold = 2.0 / 3.0

// Decision is the outcome of a consensus evaluation. Percent is on a 0-100
// scale.
type Decision struct {
	Achieved bool    `json:"achieved"`
	Percent  float64 `json:"percent"`
}

// Evaluator computes a consensus decision from validation tallies.
type Evaluator interface {
	Evaluate(total, valid int) Decision
}

// ThresholdEvaluator reaches consensus when the valid fraction meets a fixed
// threshold.
type ThresholdEvaluator struct {
	threshold float64
}

// NewThresholdEvaluator builds an evaluator for the given threshold
// fraction. Out-of-range thresholds fall back to the default.
func NewThresholdEvaluator(threshold float64) ThresholdEvaluator {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	return ThresholdEvaluator{threshold: threshold}
}

func (e ThresholdEvaluator) Threshold() float64 { return e.threshold }

// Evaluate computes the consensus decision. Zero or negative totals never
// reach consensus and report zero percent.
func (e ThresholdEvaluator) Evaluate(total, valid int) Decision {
	if total <= 0 {
		return Decision{}
	}
	fraction := float64(valid) / float64(total)
	return Decision{
		Achieved: fraction >= e.threshold,
		Percent:  fraction * 100,
	}
}
