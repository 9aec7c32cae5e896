package lambdatree

import (
	"testing"

	"github.com/lbsx/rforests/metric"
)

func TestTreeFitPartitionsLeaves(t *testing.T) {
	ds := nineInstanceFixture()
	ts := NewTrainingSet(ds, 256, 2, quietLogger())
	ndcg := metric.NewNDCGScorer(10)
	ts.UpdateLambdasWeights(ndcg)

	tree := NewTree(0.1, ds.NFeatures)
	tree.Fit(ts, 4, 1)

	seen := make(map[int]bool)
	// every instance must reach exactly one leaf
	for i := 0; i < ds.Len(); i++ {
		n := tree.Root
		for !n.Leaf {
			if ds.At(i).Value(n.Fid) <= n.Threshold {
				n = n.Left
			} else {
				n = n.Right
			}
		}
		seen[i] = true
	}
	if len(seen) != ds.Len() {
		t.Errorf("only %d of %d instances reached a leaf", len(seen), ds.Len())
	}
}

func TestTreePredictDeterministic(t *testing.T) {
	ds := nineInstanceFixture()
	ts := NewTrainingSet(ds, 256, 1, quietLogger())
	ndcg := metric.NewNDCGScorer(10)
	ts.UpdateLambdasWeights(ndcg)

	tree := NewTree(0.1, ds.NFeatures)
	tree.Fit(ts, 10, 1)

	for i := 0; i < ds.Len(); i++ {
		a := tree.Predict(ds.At(i))
		b := tree.Predict(ds.At(i))
		if a != b {
			t.Errorf("Predict not deterministic for instance %d: %v != %v", i, a, b)
		}
	}
}

func TestTreeSingleLeafWhenMaxLeavesOne(t *testing.T) {
	ds := nineInstanceFixture()
	ts := NewTrainingSet(ds, 256, 1, quietLogger())
	ndcg := metric.NewNDCGScorer(10)
	ts.UpdateLambdasWeights(ndcg)

	tree := NewTree(0.1, ds.NFeatures)
	tree.Fit(ts, 1, 1)

	if !tree.Root.Leaf {
		t.Error("expected a single-leaf tree when maxLeaves=1")
	}
}
