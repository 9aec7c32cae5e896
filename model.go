package main

import (
	"encoding/csv"
	"encoding/gob"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/lbsx/rforests/boost"
	"github.com/lbsx/rforests/dataset"
)

// Model wraps a trained boost.LambdaMART ensemble together with the
// bookkeeping (fit time, sample count, configuration) needed for the
// console report, mirroring how this project's earlier random-forest
// trainer wrapped forest.Classifier/Regressor.
type Model struct {
	Ensemble *boost.Ensemble
	NFeature int

	fitTime     time.Duration
	nSample     int
	opt         modelOptions
	trainScores []float64
}

func (m *Model) Fit(train *dataset.DataSet, opt modelOptions) error {
	start := time.Now()

	options := []boost.Option{
		boost.Trees(opt.nTree),
		boost.MaxLeaves(opt.maxLeaves),
		boost.LearningRate(opt.learningRate),
		boost.Thresholds(opt.thresholds),
		boost.MinLeafSamples(opt.minLeafSamples),
		boost.EarlyStop(opt.earlyStop),
		boost.Workers(opt.nWorkers),
	}
	if opt.validate != nil {
		options = append(options, boost.Validate(opt.validate))
	}

	lm, err := boost.New(train, options...)
	if err != nil {
		return errors.Wrap(err, "configuring LambdaMART")
	}
	lm.SetOutput(opt.metricOut)

	if err := lm.Learn(); err != nil {
		return errors.Wrap(err, "fitting ensemble")
	}

	m.Ensemble = lm.Ensemble()
	m.NFeature = train.NFeatures
	m.fitTime = time.Since(start)
	m.nSample = train.Len()
	m.opt = opt
	m.trainScores = lm.TrainScores()

	return nil
}

// Predict formats one prediction string per instance, in dataset
// order, for a plain-text predictions file.
func (m *Model) Predict(data *dataset.DataSet) []string {
	pred := make([]string, data.Len())
	for i := 0; i < data.Len(); i++ {
		pred[i] = strconv.FormatFloat(m.Ensemble.Predict(data.At(i)), 'f', -1, 64)
	}
	return pred
}

func (m *Model) Report(w io.Writer) {
	fmt.Fprintf(w, "Fit %d trees using %d examples in %.2f seconds\n",
		len(m.Ensemble.Trees), m.nSample, m.fitTime.Seconds())
	fmt.Fprintf(w, "\n")

	if len(m.trainScores) > 0 {
		mean := stat.Mean(m.trainScores, nil)
		variance := stat.Variance(m.trainScores, nil)
		fmt.Fprintf(w, "Training metric across iterations: mean %.4f, variance %.6f\n\n", mean, variance)
	}

	m.ReportVarImp(w, 20)
}

// VarImp returns each feature's accumulated split-gain importance,
// normalized by gonum/floats to sum to 1 so scores are comparable
// across models with different tree counts or learning rates.
func (m *Model) VarImp() []float64 {
	imp := m.Ensemble.VarImp(m.NFeature)

	sum := floats.Sum(imp)
	if sum > 0 {
		floats.Scale(1/sum, imp)
	}

	return imp
}

func (m *Model) SaveVarImp(w io.Writer) error {
	writer := csv.NewWriter(w)

	for i, score := range m.VarImp() {
		name := strconv.Itoa(i + 1)
		if err := writer.Write([]string{name, strconv.FormatFloat(score, 'f', -1, 64)}); err != nil {
			return errors.Wrap(err, "writing variable importance row")
		}
	}

	writer.Flush()
	return writer.Error()
}

func (m *Model) ReportVarImp(w io.Writer, maxVars int) {
	fmt.Fprintf(w, "Variable Importance\n")
	fmt.Fprintf(w, "-------------------\n")

	varImp := m.VarImp()
	fids := make([]int, len(varImp))
	for i := range fids {
		fids[i] = i + 1
	}
	sortByImportance(varImp, fids)

	if maxVars > len(varImp) {
		maxVars = len(varImp)
	}

	for i, imp := range varImp[:maxVars] {
		fmt.Fprintf(w, "feature %-6d: %-10.2f\n", fids[i], imp)
	}

	fmt.Fprintf(w, "\n")
}

// modelFile is the gob-encoded shape written to disk: the ensemble
// itself plus the feature count needed to size variable-importance
// reports after a fresh process loads the model back in.
type modelFile struct {
	Ensemble *boost.Ensemble
	NFeature int
}

func (m *Model) Load(r io.Reader) error {
	var mf modelFile
	if err := gob.NewDecoder(r).Decode(&mf); err != nil {
		return errors.Wrap(err, "decoding model")
	}
	m.Ensemble = mf.Ensemble
	m.NFeature = mf.NFeature
	return nil
}

func (m *Model) Save(w io.Writer) error {
	mf := modelFile{Ensemble: m.Ensemble, NFeature: m.NFeature}
	return errors.Wrap(gob.NewEncoder(w).Encode(mf), "encoding model")
}

type varImpSort struct {
	fid []int
	imp []float64
}

func (v varImpSort) Len() int      { return len(v.imp) }
func (v varImpSort) Less(i, j int) bool {
	return v.imp[i] < v.imp[j]
}
func (v varImpSort) Swap(i, j int) {
	v.imp[i], v.imp[j] = v.imp[j], v.imp[i]
	v.fid[i], v.fid[j] = v.fid[j], v.fid[i]
}

func sortByImportance(imp []float64, fids []int) {
	sort.Sort(sort.Reverse(varImpSort{imp: imp, fid: fids}))
}
