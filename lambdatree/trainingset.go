package lambdatree

import (
	"math"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/lbsx/rforests/dataset"
	"github.com/lbsx/rforests/metric"
)

// TrainingSet holds the mutable per-instance state a boosting
// iteration reads and writes: running model scores, the current
// lambda/weight pseudo-gradients, and one precomputed ThresholdMap
// per feature. It borrows the underlying DataSet for the duration of
// training.
type TrainingSet struct {
	Data          *dataset.DataSet
	ModelScores   []float64
	Lambdas       []float64
	Weights       []float64
	ThresholdMaps []*ThresholdMap

	// Workers bounds the goroutine pool used to fan the per-feature
	// split scan of Split out concurrently; values < 1 are treated as 1.
	Workers int
	Logger  logrus.FieldLogger
}

// NewTrainingSet builds one ThresholdMap per feature (using bins
// buckets each) and zeroes the model score/lambda/weight buffers.
func NewTrainingSet(data *dataset.DataSet, bins, workers int, logger logrus.FieldLogger) *TrainingSet {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	ts := &TrainingSet{
		Data:        data,
		ModelScores: make([]float64, data.Len()),
		Lambdas:     make([]float64, data.Len()),
		Weights:     make([]float64, data.Len()),
		Workers:     workers,
		Logger:      logger,
	}

	ts.ThresholdMaps = make([]*ThresholdMap, data.NFeatures)
	for _, fid := range data.FidIter() {
		ts.ThresholdMaps[fid-1] = NewThresholdMap(data.FeatureValueIter(fid), bins)
	}

	return ts
}

// RankByScore returns a copy of indices sorted by descending
// scores[id], stable so that equal (including NaN, treated as equal)
// scores keep their original relative order.
func RankByScore(indices []int, scores []float64) []int {
	ranked := make([]int, len(indices))
	copy(ranked, indices)

	sort.SliceStable(ranked, func(a, b int) bool {
		sa, sb := scores[ranked[a]], scores[ranked[b]]
		if math.IsNaN(sa) || math.IsNaN(sb) {
			return false
		}
		return sa > sb
	})

	return ranked
}

// UpdateLambdasWeights recomputes every instance's lambda and weight
// from the current model scores and the metric's pairwise swap
// deltas. This is the gradient step of LambdaMART: it must run once
// at the start of every boosting iteration, before a tree is grown.
func (ts *TrainingSet) UpdateLambdasWeights(m metric.Measure) {
	for i := range ts.Lambdas {
		ts.Lambdas[i] = 0
		ts.Weights[i] = 0
	}

	k := m.K()

	for _, q := range ts.Data.QueryIter() {
		ranked := RankByScore(q.Indices, ts.ModelScores)

		labels := make([]float64, len(ranked))
		scores := make([]float64, len(ranked))
		for i, id := range ranked {
			labels[i] = ts.Data.At(id).Label
			scores[i] = ts.ModelScores[id]
		}

		ts.Logger.WithField("qid", q.QID).WithField("n", len(ranked)).Debug("updating lambdas/weights for query")

		delta := m.Delta(labels)

		for i := range ranked {
			for j := range ranked {
				if !(labels[i] > labels[j]) {
					continue
				}
				if k > 0 && i > k && j > k {
					continue
				}

				absDelta := math.Abs(delta[i][j])
				rho := 1.0 / (1.0 + math.Exp(scores[i]-scores[j]))
				lambda := absDelta * rho
				weight := rho * (1 - rho) * absDelta

				ts.Lambdas[ranked[i]] += lambda
				ts.Weights[ranked[i]] += weight
				ts.Lambdas[ranked[j]] -= lambda
				ts.Weights[ranked[j]] += weight
			}
		}
	}
}

// UpdateResult adds delta to the model score of every instance in
// indices. Called exactly once per finalized leaf.
func (ts *TrainingSet) UpdateResult(indices []int, delta float64) {
	for _, id := range indices {
		ts.ModelScores[id] += delta
	}
}

// FeatureHistogram builds the histogram of current lambdas for
// feature fid, restricted to indices.
func (ts *TrainingSet) FeatureHistogram(fid int, indices []int) *Histogram {
	return ts.ThresholdMaps[fid-1].Histogram(indices, ts.Lambdas)
}

// Evaluate measures the metric over every query's instances ranked by
// current model score, averaged across queries.
func (ts *TrainingSet) Evaluate(m metric.Measure) float64 {
	queries := ts.Data.QueryIter()
	if len(queries) == 0 {
		return 0
	}

	var sum float64
	for _, q := range queries {
		ranked := RankByScore(q.Indices, ts.ModelScores)
		labels := make([]float64, len(ranked))
		for i, id := range ranked {
			labels[i] = ts.Data.At(id).Label
		}
		sum += m.Score(labels)
	}

	return sum / float64(len(queries))
}
