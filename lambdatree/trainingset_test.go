package lambdatree

import (
	"math"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/lbsx/rforests/dataset"
	"github.com/lbsx/rforests/metric"
)

func nineInstanceFixture() *dataset.DataSet {
	values := []float64{5, 7, 3, 2, 1, 8, 9, 4, 6}
	labels := []float64{3, 2, 3, 1, 0, 2, 4, 1, 0}

	ds := &dataset.DataSet{NFeatures: 1, Instances: make([]dataset.Instance, len(values))}
	for i := range values {
		ds.Instances[i] = dataset.Instance{Label: labels[i], QID: 1, Values: []float64{values[i]}}
	}
	return ds
}

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

func TestUpdateLambdasWeightsPinned(t *testing.T) {
	ds := nineInstanceFixture()
	ts := NewTrainingSet(ds, 256, 1, quietLogger())
	ndcg := metric.NewNDCGScorer(10)

	ts.UpdateLambdasWeights(ndcg)

	wantLambdas := []float64{
		0.2959880583703105, -0.05406635038708441, 0.06664831928002701,
		-0.10688704271796713, -0.1309783051272036, -0.056352467003334426,
		0.2573545140200802, -0.11687432957979353, -0.15483239685503464,
	}
	wantWeights := []float64{
		0.2503273430028968, 0.07986338018045583, 0.05890748809444887,
		0.056771982359676655, 0.0654891525636018, 0.037537655576830996,
		0.1286772570100401, 0.06008388967286634, 0.07741619842751732,
	}

	for i := range wantLambdas {
		if math.Abs(ts.Lambdas[i]-wantLambdas[i]) > 1e-9 {
			t.Errorf("lambdas[%d] = %v, want %v", i, ts.Lambdas[i], wantLambdas[i])
		}
		if math.Abs(ts.Weights[i]-wantWeights[i]) > 1e-9 {
			t.Errorf("weights[%d] = %v, want %v", i, ts.Weights[i], wantWeights[i])
		}
	}
}

func TestSampleSplitPinned(t *testing.T) {
	ds := nineInstanceFixture()
	ts := NewTrainingSet(ds, 256, 1, quietLogger())
	ndcg := metric.NewNDCGScorer(10)
	ts.UpdateLambdasWeights(ndcg)

	root := NewRootSample(ts)
	split, ok := root.Split(1)
	if !ok {
		t.Fatal("expected root to be splitable")
	}

	if split.Fid != 1 {
		t.Errorf("fid = %d, want 1", split.Fid)
	}
	if math.Abs(split.Threshold-1.0) > 1e-9 {
		t.Errorf("threshold = %v, want 1.0", split.Threshold)
	}
	if split.Score <= 0 {
		t.Errorf("score = %v, want > 0", split.Score)
	}
}

func TestSampleSplitNonSplitable(t *testing.T) {
	ds := nineInstanceFixture()
	ts := NewTrainingSet(ds, 256, 1, quietLogger())
	ndcg := metric.NewNDCGScorer(10)
	ts.UpdateLambdasWeights(ndcg)

	root := NewRootSample(ts)
	if _, ok := root.Split(9); ok {
		t.Error("expected Split(9) to fail: not enough instances for both sides")
	}
	if _, ok := root.Split(5); ok {
		t.Error("expected Split(5) to fail: 9 instances can't give both sides >= 5")
	}
}

func TestEvaluateAveragesOverQueries(t *testing.T) {
	ds := nineInstanceFixture()
	ts := NewTrainingSet(ds, 256, 1, quietLogger())
	ndcg := metric.NewNDCGScorer(10)

	score := ts.Evaluate(ndcg)
	if score < 0 || score > 1+1e-9 {
		t.Errorf("evaluate() = %v, want in [0,1] for NDCG", score)
	}
}
