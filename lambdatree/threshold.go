// Package lambdatree implements the histogram-based split search and
// best-first regression tree growth that LambdaMART boosts: per-
// feature ThresholdMap discretization, cumulative Histogram bin
// statistics, the mutable TrainingSet of per-instance model scores /
// lambdas / weights, TrainingSample node views, and RegressionTree
// itself.
package lambdatree

import (
	"math"
)

// ThresholdMap discretizes one feature into at most Bins+1 buckets: a
// sorted set of cut values (deduplicated, or an evenly spaced grid
// when there are more distinct values than bins), terminated by a
// +Inf sentinel bucket, plus a per-instance bucket assignment.
type ThresholdMap struct {
	Thresholds []float64
	Bin        []int // Bin[i] is the bucket index for dataset instance i
}

// NewThresholdMap builds a ThresholdMap over values (one entry per
// dataset instance, in dataset order) using at most bins cut values
// plus the +Inf sentinel bucket.
func NewThresholdMap(values []float64, bins int) *ThresholdMap {
	n := len(values)
	order := make([]int, n)
	sorted := make([]float64, n)
	for i := range order {
		order[i] = i
		sorted[i] = values[i]
	}
	sortPaired(sorted, order)

	uniq := dedupeSorted(sorted)

	var thresholds []float64
	if len(uniq) > bins {
		min, max := uniq[0], uniq[len(uniq)-1]
		step := (max - min) / float64(bins)
		thresholds = make([]float64, bins)
		for k := 0; k < bins; k++ {
			thresholds[k] = min + float64(k)*step
		}
	} else {
		thresholds = uniq
	}
	thresholds = append(thresholds, math.Inf(1))

	bin := make([]int, n)
	for i, v := range values {
		bin[i] = firstThresholdAtLeast(thresholds, v)
	}

	return &ThresholdMap{Thresholds: thresholds, Bin: bin}
}

// lessTotal orders floats ascending, treating NaN as equal to
// everything so every sort in this package has a total order.
func lessTotal(a, b float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return false
	}
	return a < b
}

// dedupeSorted collapses adjacent equal values in a sorted slice.
func dedupeSorted(sorted []float64) []float64 {
	uniq := make([]float64, 0, len(sorted))
	for i, v := range sorted {
		if i == 0 || v != uniq[len(uniq)-1] {
			uniq = append(uniq, v)
		}
	}
	return uniq
}

func firstThresholdAtLeast(thresholds []float64, v float64) int {
	for j, t := range thresholds {
		if v <= t {
			return j
		}
	}
	// unreachable: the final threshold is +Inf
	return len(thresholds) - 1
}
