package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/davecheney/profile"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/lbsx/rforests/dataset"
)

// modelOptions mirrors the hyperparameters this project's earlier
// random-forest trainer collected from flags before fitting, adapted
// to boost.Config's knobs.
type modelOptions struct {
	nTree          int
	maxLeaves      int
	learningRate   float64
	thresholds     int
	minLeafSamples int
	earlyStop      int
	nWorkers       int
	validate       *dataset.DataSet
	metricOut      io.Writer
}

func main() {
	root := &cobra.Command{
		Use:   "rforests",
		Short: "Train and apply LambdaMART ranking models",
	}

	root.AddCommand(newTrainCmd(), newPredictCmd())

	if err := root.Execute(); err != nil {
		fatal(err.Error())
	}
}

func newTrainCmd() *cobra.Command {
	var (
		dataFile     string
		validateFile string
		modelOut     string
		impOut       string
		nTree        int
		maxLeaves    int
		learningRate float64
		thresholds   int
		minLeaf      int
		earlyStop    int
		nWorkers     int
		runProfile   bool
	)

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Fit a LambdaMART model from SVMlight/RankLib formatted data",
		RunE: func(cmd *cobra.Command, args []string) error {
			if runProfile {
				defer profile.Start(profile.CPUProfile).Stop()
			}

			f, err := os.Open(dataFile)
			if err != nil {
				return wrapf(err, "opening data file")
			}
			defer f.Close()

			train, err := dataset.Load(f)
			if err != nil {
				return wrapf(err, "parsing training data")
			}

			opt := modelOptions{
				nTree:          nTree,
				maxLeaves:      maxLeaves,
				learningRate:   learningRate,
				thresholds:     thresholds,
				minLeafSamples: minLeaf,
				earlyStop:      earlyStop,
				nWorkers:       nWorkers,
				metricOut:      cmd.OutOrStdout(),
			}

			if validateFile != "" {
				vf, err := os.Open(validateFile)
				if err != nil {
					return wrapf(err, "opening validation file")
				}
				defer vf.Close()

				validate, err := dataset.Load(vf)
				if err != nil {
					return wrapf(err, "parsing validation data")
				}
				opt.validate = validate
			}

			m := new(Model)
			if err := m.Fit(train, opt); err != nil {
				return err
			}

			o, err := os.Create(modelOut)
			if err != nil {
				return wrapf(err, "creating model file")
			}
			defer o.Close()

			if err := m.Save(o); err != nil {
				return err
			}

			if impOut != "" {
				impF, err := os.Create(impOut)
				if err != nil {
					return wrapf(err, "creating variable importance file")
				}
				defer impF.Close()

				if err := m.SaveVarImp(impF); err != nil {
					return err
				}
			}

			best := color.New(color.FgGreen, color.Bold)
			best.Fprint(cmd.ErrOrStderr(), "\nTraining complete.\n")
			m.Report(cmd.ErrOrStderr())

			return nil
		},
	}

	cmd.Flags().StringVarP(&dataFile, "data", "d", "", "training data (SVMlight/RankLib format)")
	cmd.Flags().StringVar(&validateFile, "validate", "", "held-out validation data, enables early stopping")
	cmd.Flags().StringVarP(&modelOut, "model-out", "m", "rforests.model", "file to write the fitted model")
	cmd.Flags().StringVar(&impOut, "var-importance-out", "", "file to write per-feature variable importance (csv)")
	cmd.Flags().IntVar(&nTree, "trees", 10, "number of boosting iterations")
	cmd.Flags().IntVar(&maxLeaves, "max-leaves", 10, "maximum leaves per regression tree")
	cmd.Flags().Float64Var(&learningRate, "learning-rate", 0.1, "shrinkage applied to each tree's leaf output")
	cmd.Flags().IntVar(&thresholds, "thresholds", 256, "maximum histogram bins per feature")
	cmd.Flags().IntVar(&minLeaf, "min-leaf-samples", 1, "minimum instances required in a leaf")
	cmd.Flags().IntVar(&earlyStop, "early-stop", 0, "stop once more than this many iterations pass without validation improvement (only with --validate)")
	cmd.Flags().IntVar(&nWorkers, "workers", 1, "goroutines used to search per-feature splits")
	cmd.Flags().BoolVar(&runProfile, "profile", false, "cpu profile")
	cmd.MarkFlagRequired("data")

	return cmd
}

func newPredictCmd() *cobra.Command {
	var (
		dataFile string
		modelIn  string
		predOut  string
	)

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Score data with a previously trained model",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadModel(modelIn)
			if err != nil {
				return wrapf(err, "loading model")
			}

			f, err := os.Open(dataFile)
			if err != nil {
				return wrapf(err, "opening data file")
			}
			defer f.Close()

			data, err := dataset.Load(f)
			if err != nil {
				return wrapf(err, "parsing data")
			}

			pred := m.Predict(data)

			o, err := os.Create(predOut)
			if err != nil {
				return wrapf(err, "creating predictions file")
			}
			defer o.Close()

			return writePred(o, pred)
		},
	}

	cmd.Flags().StringVarP(&dataFile, "data", "d", "", "data to score (SVMlight/RankLib format)")
	cmd.Flags().StringVarP(&modelIn, "model", "m", "rforests.model", "fitted model file")
	cmd.Flags().StringVarP(&predOut, "predictions-out", "p", "", "file to write predicted scores")
	cmd.MarkFlagRequired("data")
	cmd.MarkFlagRequired("predictions-out")

	return cmd
}

func loadModel(fName string) (*Model, error) {
	f, err := os.Open(fName)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m := new(Model)
	err = m.Load(f)
	return m, err
}

func fatal(a ...interface{}) {
	fmt.Fprintln(os.Stderr, a...)
	os.Exit(1)
}

func writePred(w io.Writer, prediction []string) error {
	wtr := bufio.NewWriter(w)

	for _, pred := range prediction {
		if _, err := wtr.WriteString(pred); err != nil {
			return err
		}
		if err := wtr.WriteByte('\n'); err != nil {
			return err
		}
	}

	return wtr.Flush()
}
