package lambdatree

// Histogram holds cumulative (count, sum, sum-of-squares) statistics
// per bucket of a ThresholdMap, accumulated over a node's target
// values (always the current lambdas, except in tests that exercise
// the histogram directly against other targets such as feature values).
type Histogram struct {
	Thresholds []float64
	Count      []int
	Sum        []float64
	SumSq      []float64
}

// Histogram builds the node-local histogram for this feature: for
// each instance index in indices, bucket its target value (indexed by
// dataset id, i.e. target[id]) according to this ThresholdMap's
// precomputed bucket assignment, then prefix-sums across buckets so
// every entry is cumulative from bucket 0.
func (tm *ThresholdMap) Histogram(indices []int, target []float64) *Histogram {
	n := len(tm.Thresholds)
	h := &Histogram{
		Thresholds: tm.Thresholds,
		Count:      make([]int, n),
		Sum:        make([]float64, n),
		SumSq:      make([]float64, n),
	}

	for _, id := range indices {
		j := tm.Bin[id]
		v := target[id]
		h.Count[j]++
		h.Sum[j] += v
		h.SumSq[j] += v * v
	}

	for j := 1; j < n; j++ {
		h.Count[j] += h.Count[j-1]
		h.Sum[j] += h.Sum[j-1]
		h.SumSq[j] += h.SumSq[j-1]
	}

	return h
}

// BestSplit scans every candidate bucket boundary (excluding the
// final +Inf sentinel bucket) and returns the threshold and score of
// the split that maximizes sL^2/cL + sR^2/cR, subject to both sides
// having at least minLeafCount instances. ok is false when no
// candidate bucket satisfies the leaf-count constraint.
func (h *Histogram) BestSplit(minLeafCount int) (threshold, score float64, ok bool) {
	last := len(h.Count) - 1
	total, totalSum := h.Count[last], h.Sum[last]

	bestScore := 0.0
	bestJ := -1

	for j := 0; j < last; j++ {
		cL, sL := h.Count[j], h.Sum[j]
		cR, sR := total-cL, totalSum-sL

		if cL < minLeafCount || cR < minLeafCount {
			continue
		}

		s := sL*sL/float64(cL) + sR*sR/float64(cR)
		if bestJ < 0 || s > bestScore {
			bestScore = s
			bestJ = j
		}
	}

	if bestJ < 0 {
		return 0, 0, false
	}
	return h.Thresholds[bestJ], bestScore, true
}
