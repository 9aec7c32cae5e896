package lambdatree

import "sync"

// unsplitableVariance is the threshold below which a node's lambdas
// are considered constant and splitting is pointless.
const unsplitableVariance = 1e-6

// TrainingSample is a node-local view into a TrainingSet: the subset
// of instance indices that reached this node. Indices are disjoint
// across a tree's leaves and together partition the root sample.
type TrainingSample struct {
	Training *TrainingSet
	Indices  []int
}

// NewRootSample returns a TrainingSample covering every instance in
// the training set, the starting point of a new tree.
func NewRootSample(ts *TrainingSet) *TrainingSample {
	indices := make([]int, ts.Data.Len())
	for i := range indices {
		indices[i] = i
	}
	return &TrainingSample{Training: ts, Indices: indices}
}

// Variance returns the variance of this node's current lambdas.
func (s *TrainingSample) Variance() float64 {
	var sum, sumSq float64
	for _, id := range s.Indices {
		l := s.Training.Lambdas[id]
		sum += l
		sumSq += l * l
	}
	n := float64(len(s.Indices))
	if n == 0 {
		return 0
	}
	return sumSq - sum*sum/n
}

// Split is a node's chosen split: the feature and threshold that
// maximize the split score, and the two child samples it produces.
type Split struct {
	Fid       int
	Threshold float64
	Score     float64
	Left      *TrainingSample
	Right     *TrainingSample
}

type featureResult struct {
	fid       int
	threshold float64
	score     float64
	ok        bool
}

// Split finds this node's best split, fanning the per-feature
// histogram-and-scan out across a small worker pool: each worker only
// reads Training.Lambdas/Weights (frozen for the duration of a tree)
// and writes to its own result slot, so no locking is required, the
// same shape as the teacher's per-tree worker pool adapted here to
// per-feature work within a single node.
func (s *TrainingSample) Split(minLeafCount int) (*Split, bool) {
	if s.Variance() <= unsplitableVariance {
		return nil, false
	}

	fids := s.Training.Data.FidIter()
	results := make([]featureResult, len(fids))

	workers := s.Training.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(fids) {
		workers = len(fids)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				fid := fids[idx]
				hist := s.Training.FeatureHistogram(fid, s.Indices)
				threshold, score, ok := hist.BestSplit(minLeafCount)
				results[idx] = featureResult{fid: fid, threshold: threshold, score: score, ok: ok}
			}
		}()
	}
	for idx := range fids {
		jobs <- idx
	}
	close(jobs)
	wg.Wait()

	best := -1
	for i, r := range results {
		if !r.ok {
			continue
		}
		if best < 0 || r.score > results[best].score {
			best = i
		}
	}
	if best < 0 {
		return nil, false
	}

	winner := results[best]
	s.Training.Logger.WithField("fid", winner.fid).WithField("score", winner.score).Debug("split search chose feature")

	var left, right []int
	for _, id := range s.Indices {
		if s.Training.Data.At(id).Value(winner.fid) <= winner.threshold {
			left = append(left, id)
		} else {
			right = append(right, id)
		}
	}

	return &Split{
		Fid:       winner.fid,
		Threshold: winner.threshold,
		Score:     winner.score,
		Left:      &TrainingSample{Training: s.Training, Indices: left},
		Right:     &TrainingSample{Training: s.Training, Indices: right},
	}, true
}

// NewtonOutput is the Newton step for this node's leaf value, Sum(lambda)/Sum(weight),
// clamped to 0 when the weight sum is 0.
func (s *TrainingSample) NewtonOutput() float64 {
	var sumLambda, sumWeight float64
	for _, id := range s.Indices {
		sumLambda += s.Training.Lambdas[id]
		sumWeight += s.Training.Weights[id]
	}
	if sumWeight == 0 {
		return 0
	}
	return sumLambda / sumWeight
}

// Finalize commits this node as a leaf: it computes the
// learning-rate-scaled Newton output and immediately mirrors it into
// the training set's model scores, so later leaves in the same tree
// see the update.
func (s *TrainingSample) Finalize(learningRate float64) float64 {
	output := learningRate * s.NewtonOutput()
	s.Training.UpdateResult(s.Indices, output)
	return output
}
