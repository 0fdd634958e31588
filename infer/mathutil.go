package infer

import "math"

// Softmax converts logits into probabilities. Inputs that already sum to
// one are returned unchanged up to rounding.
func Softmax(logits []float32) []float32 {
	if len(logits) == 0 {
		return nil
	}
	max := logits[0]
	for _, v := range logits[1:] {
		if v > max {
			max = v
		}
	}
	out := make([]float32, len(logits))
	var sum float64
	for i, v := range logits {
		e := math.Exp(float64(v - max))
		out[i] = float32(e)
		sum += e
	}
	for i := range out {
		out[i] = float32(float64(out[i]) / sum)
	}
	return out
}

// Argmax returns the index of the largest value, or -1 for an empty slice.
// Ties resolve to the lowest index.
func Argmax(values []float32) int {
	best := -1
	for i, v := range values {
		if best < 0 || v > values[best] {
			best = i
		}
	}
	return best
}

// ExpectedIndex returns sum(i * p[i]), the mean bucket of a distribution.
func ExpectedIndex(probs []float32) float64 {
	var total float64
	for i, p := range probs {
		total += float64(i) * float64(p)
	}
	return total
}

// isDistribution reports whether values are non-negative and sum to ~1.
func isDistribution(values []float32) bool {
	var sum float64
	for _, v := range values {
		if v < 0 {
			return false
		}
		sum += float64(v)
	}
	return math.Abs(sum-1) < 1e-3
}
