// Package boost implements the LambdaMART boosting loop: per-
// iteration gradient computation, regression-tree fitting, model
// score bookkeeping, validation tracking, and early stopping.
package boost

import (
	"fmt"
	"io"
	"runtime"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/lbsx/rforests/dataset"
	"github.com/lbsx/rforests/lambdatree"
	"github.com/lbsx/rforests/metric"
)

// Config holds every tunable of a LambdaMART run.
type Config struct {
	Trees          int
	MaxLeaves      int
	LearningRate   float64
	Thresholds     int
	MinLeafSamples int
	EarlyStop      int
	Metric         metric.Measure
	Validate       *dataset.DataSet
	PrintMetric    bool
	Workers        int
	Logger         logrus.FieldLogger
}

// configer is implemented by *Config; Option values close over it the
// way this project's earlier random-forest trainer configures
// tree.Classifier/forest.Regressor through small setter interfaces.
type configer interface {
	setTrees(int)
	setMaxLeaves(int)
	setLearningRate(float64)
	setThresholds(int)
	setMinLeafSamples(int)
	setEarlyStop(int)
	setMetric(metric.Measure)
	setValidate(*dataset.DataSet)
	setPrintMetric(bool)
	setWorkers(int)
	setLogger(logrus.FieldLogger)
}

func (c *Config) setTrees(n int)                 { c.Trees = n }
func (c *Config) setMaxLeaves(n int)             { c.MaxLeaves = n }
func (c *Config) setLearningRate(f float64)      { c.LearningRate = f }
func (c *Config) setThresholds(n int)            { c.Thresholds = n }
func (c *Config) setMinLeafSamples(n int)        { c.MinLeafSamples = n }
func (c *Config) setEarlyStop(n int)             { c.EarlyStop = n }
func (c *Config) setMetric(m metric.Measure)     { c.Metric = m }
func (c *Config) setValidate(d *dataset.DataSet) { c.Validate = d }
func (c *Config) setPrintMetric(b bool)          { c.PrintMetric = b }
func (c *Config) setWorkers(n int)               { c.Workers = n }
func (c *Config) setLogger(l logrus.FieldLogger) { c.Logger = l }

// Option configures a Config when constructing a LambdaMART.
type Option func(configer)

func Trees(n int) Option                 { return func(c configer) { c.setTrees(n) } }
func MaxLeaves(n int) Option             { return func(c configer) { c.setMaxLeaves(n) } }
func LearningRate(f float64) Option      { return func(c configer) { c.setLearningRate(f) } }
func Thresholds(n int) Option            { return func(c configer) { c.setThresholds(n) } }
func MinLeafSamples(n int) Option        { return func(c configer) { c.setMinLeafSamples(n) } }
func EarlyStop(n int) Option             { return func(c configer) { c.setEarlyStop(n) } }
func Metric(m metric.Measure) Option     { return func(c configer) { c.setMetric(m) } }
func Validate(d *dataset.DataSet) Option { return func(c configer) { c.setValidate(d) } }
func PrintMetric(b bool) Option          { return func(c configer) { c.setPrintMetric(b) } }
func Workers(n int) Option               { return func(c configer) { c.setWorkers(n) } }
func Logger(l logrus.FieldLogger) Option { return func(c configer) { c.setLogger(l) } }

// ErrInvalidConfig marks a Config that fails validation: a nonsensical
// hyperparameter, not a numeric degeneracy encountered during
// training.
var ErrInvalidConfig = errors.New("invalid config")

// LambdaMART trains an additive ensemble of regression trees against
// a ranking metric's pairwise gradient.
type LambdaMART struct {
	config      Config
	train       *dataset.DataSet
	ensemble    *Ensemble
	out         io.Writer
	trainScores []float64
}

// New validates options against sensible defaults and returns a
// LambdaMART ready to Learn from train.
//
//	reg, err := boost.New(train, boost.Trees(1000), boost.MaxLeaves(10),
//		boost.LearningRate(0.1), boost.Thresholds(256),
//		boost.Validate(validateSet), boost.EarlyStop(100))
func New(train *dataset.DataSet, opts ...Option) (*LambdaMART, error) {
	c := Config{
		Trees:          10,
		MaxLeaves:      10,
		LearningRate:   0.1,
		Thresholds:     256,
		MinLeafSamples: 1,
		EarlyStop:      0,
		PrintMetric:    true,
		Workers:        runtime.GOMAXPROCS(0),
	}

	for _, opt := range opts {
		opt(&c)
	}

	if c.Metric == nil {
		c.Metric = metric.NewNDCGScorer(10)
	}
	if c.Logger == nil {
		c.Logger = logrus.StandardLogger()
	}

	if c.MaxLeaves < 1 {
		return nil, errors.Wrap(ErrInvalidConfig, "max-leaves must be >= 1")
	}
	if c.Thresholds < 2 {
		return nil, errors.Wrap(ErrInvalidConfig, "thresholds must be >= 2")
	}
	if c.MinLeafSamples < 1 {
		return nil, errors.Wrap(ErrInvalidConfig, "min-leaf-samples must be >= 1")
	}
	if c.Trees < 1 {
		return nil, errors.Wrap(ErrInvalidConfig, "trees must be >= 1")
	}

	return &LambdaMART{config: c, train: train, ensemble: &Ensemble{}, out: io.Discard}, nil
}

// SetOutput directs console-protocol output (the #iter table and the
// best-score summary) to w instead of the default (discarded unless
// set, so library callers aren't forced into printing to stdout).
func (lm *LambdaMART) SetOutput(w io.Writer) { lm.out = w }

// Ensemble returns the trained ensemble, valid after Learn returns.
func (lm *LambdaMART) Ensemble() *Ensemble { return lm.ensemble }

// TrainScores returns the training-metric value measured after each
// boosting iteration actually run, in order. Truncated trees (from an
// early stop) truncate this history the same way.
func (lm *LambdaMART) TrainScores() []float64 { return lm.trainScores }

// validateSet tracks running model scores for a held-out data set as
// trees are added to the ensemble, mirroring TrainingSet's evaluation
// path without needing lambdas/weights (validation never trains).
type validateSet struct {
	data   *dataset.DataSet
	scores []float64
}

func newValidateSet(d *dataset.DataSet) *validateSet {
	return &validateSet{data: d, scores: make([]float64, d.Len())}
}

func (v *validateSet) update(t *lambdatree.Tree) {
	for i := range v.scores {
		v.scores[i] += t.Predict(v.data.At(i))
	}
}

func (v *validateSet) measure(m metric.Measure) float64 {
	queries := v.data.QueryIter()
	if len(queries) == 0 {
		return 0
	}

	var sum float64
	for _, q := range queries {
		ranked := lambdatree.RankByScore(q.Indices, v.scores)
		labels := make([]float64, len(ranked))
		for i, id := range ranked {
			labels[i] = v.data.At(id).Label
		}
		sum += m.Score(labels)
	}
	return sum / float64(len(queries))
}

// Learn fits Config.Trees regression trees in sequence, recomputing
// lambdas/weights before each, and stops early once the best
// validation score is Config.EarlyStop iterations behind, provided a
// validation set was configured.
func (lm *LambdaMART) Learn() error {
	training := lambdatree.NewTrainingSet(lm.train, lm.config.Thresholds, lm.config.Workers, lm.config.Logger)

	var validate *validateSet
	if lm.config.Validate != nil {
		validate = newValidateSet(lm.config.Validate)
	}

	best := newBestScore(lm.config.Metric.Name())

	lm.printMetricHeader()
	for i := 0; i < lm.config.Trees; i++ {
		training.UpdateLambdasWeights(lm.config.Metric)

		tree := lambdatree.NewTree(lm.config.LearningRate, lm.train.NFeatures)
		tree.Fit(training, lm.config.MaxLeaves, lm.config.MinLeafSamples)

		trainScore := training.Evaluate(lm.config.Metric)

		var validateScore *float64
		if validate != nil {
			validate.update(tree)
			v := validate.measure(lm.config.Metric)
			validateScore = &v
		}

		lm.ensemble.Push(tree)
		lm.trainScores = append(lm.trainScores, trainScore)
		lm.config.Logger.WithField("iter", i).WithField("train", trainScore).Info("boosting iteration complete")
		lm.printMetric(i, trainScore, validateScore)

		best.update(i, trainScore, validateScore)

		if bestIter, ok := best.bestIter(); ok && bestIter+lm.config.EarlyStop < i {
			lm.ensemble.Truncate(bestIter + 1)
			lm.trainScores = lm.trainScores[:bestIter+1]
			break
		}
	}

	if lm.config.PrintMetric {
		fmt.Fprint(lm.out, best.String())
	}

	return nil
}

// Evaluate scores the trained ensemble against data: for each query,
// instances ranked by summed tree prediction, metric-scored, averaged
// across queries.
func (lm *LambdaMART) Evaluate(data *dataset.DataSet) float64 {
	scores := make([]float64, data.Len())
	for i := range scores {
		scores[i] = lm.ensemble.Predict(data.At(i))
	}

	queries := data.QueryIter()
	if len(queries) == 0 {
		return 0
	}

	var sum float64
	for _, q := range queries {
		ranked := lambdatree.RankByScore(q.Indices, scores)
		labels := make([]float64, len(ranked))
		for i, id := range ranked {
			labels[i] = data.At(id).Label
		}
		sum += lm.config.Metric.Score(labels)
	}
	return sum / float64(len(queries))
}

func (lm *LambdaMART) printMetricHeader() {
	if !lm.config.PrintMetric {
		return
	}
	name := lm.config.Metric.Name()
	fmt.Fprintf(lm.out, "%-7s | %9s | %9s\n", "#iter", name+"-T", name+"-V")
}

func (lm *LambdaMART) printMetric(iter int, train float64, validate *float64) {
	if !lm.config.PrintMetric {
		return
	}
	v := ""
	if validate != nil {
		v = fmt.Sprintf("%9.4f", *validate)
	}
	fmt.Fprintf(lm.out, "%-7d | %9.4f | %s\n", iter, train, v)
}
