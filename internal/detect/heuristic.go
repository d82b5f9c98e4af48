package detect

import "math"

// zeroStdEpsilon replaces an exactly-zero population standard deviation so
// the z-score division stays defined. With a constant feature column any
// deviating value scores astronomically high; if every value matches the
// constant, all z-scores for that column are zero.
const zeroStdEpsilon = 1e-8

// HeuristicStrategy flags a row when any single feature deviates from the
// column mean by more than NSigma population standard deviations. The
// per-feature OR is deliberate; this is not a joint distance.
type HeuristicStrategy struct {
	NSigma float64
}

func (h *HeuristicStrategy) Name() string { return "zscore" }

// Mask is deterministic: the same matrix and NSigma always produce the
// same result. NaN cells mark missing values and are skipped, both in the
// column statistics and in the per-row check.
func (h *HeuristicStrategy) Mask(features [][]float64) ([]bool, error) {
	mask := make([]bool, len(features))
	if len(features) == 0 {
		return mask, nil
	}
	width := len(features[0])
	means := make([]float64, width)
	stds := make([]float64, width)
	for col := 0; col < width; col++ {
		means[col], stds[col] = columnStats(features, col)
		if stds[col] == 0 {
			stds[col] = zeroStdEpsilon
		}
	}
	for i, row := range features {
		for col, v := range row {
			if math.IsNaN(v) {
				continue
			}
			z := math.Abs(v-means[col]) / stds[col]
			if z > h.NSigma {
				mask[i] = true
				break
			}
		}
	}
	return mask, nil
}

// columnStats returns the population mean and standard deviation of one
// column, ignoring NaN cells. Division is by n, not n-1.
func columnStats(features [][]float64, col int) (mean, std float64) {
	var sum float64
	var n int
	for _, row := range features {
		if col >= len(row) || math.IsNaN(row[col]) {
			continue
		}
		sum += row[col]
		n++
	}
	if n == 0 {
		return 0, 0
	}
	mean = sum / float64(n)
	var sq float64
	for _, row := range features {
		if col >= len(row) || math.IsNaN(row[col]) {
			continue
		}
		d := row[col] - mean
		sq += d * d
	}
	std = math.Sqrt(sq / float64(n))
	return mean, std
}
