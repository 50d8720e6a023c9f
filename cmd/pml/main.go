// Command pml runs the full activity-classification workflow: it cleans the
// labeled sensor data, trains four classifiers under a shared stratified
// cross-validation scheme, compares them, and applies the winner to the
// held-out testing subset and (optionally) an unlabeled evaluation file.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/jhsdatascience/pml-project/experiment"
	"github.com/jhsdatascience/pml-project/pkg/log"
	"github.com/jhsdatascience/pml-project/preprocessing"
	"github.com/jhsdatascience/pml-project/report"
)

func main() {
	trainPath := flag.String("train", "data/pml-training.csv", "Labeled training CSV")
	evalPath := flag.String("eval", "", "Optional unlabeled evaluation CSV")
	label := flag.String("label", "classe", "Label column name")
	seed := flag.Uint64("seed", 1234, "Seed for every randomized operation")
	folds := flag.Int("folds", 10, "Cross-validation fold count")
	trainFrac := flag.Float64("train_frac", 0.8, "Stratified train/test split fraction")
	pairwiseConf := flag.Float64("confidence", 0.995, "Confidence level for pairwise comparisons")
	accConf := flag.Float64("acc_confidence", 0.95, "Confidence level for the holdout accuracy interval")
	workers := flag.Int("workers", 0, "Model-training workers (0 = CPU count)")
	scale := flag.Bool("scale", false, "Center and scale features inside each fold")
	outPlot := flag.String("out_plot", "pairwise_ci.png", "PNG for the pairwise CI plot ('' to skip)")
	logLevel := flag.String("log_level", "info", "Log level: debug|info|warn|error")
	flag.Parse()

	log.SetupLogger(*logLevel)

	cfg := experiment.Config{
		TrainPath:          *trainPath,
		EvalPath:           *evalPath,
		LabelColumn:        *label,
		Seed:               *seed,
		Folds:              *folds,
		TrainFraction:      *trainFrac,
		PairwiseConfidence: *pairwiseConf,
		AccuracyConfidence: *accConf,
		Workers:            *workers,
	}
	if *scale {
		cfg.Preprocess = []preprocessing.Spec{
			func() preprocessing.Transformer { return preprocessing.NewStandardScaler() },
		}
	}

	outcome, err := experiment.Run(cfg)
	if err != nil {
		slog.Error("pipeline failed", log.ErrAttr(err))
		os.Exit(1)
	}

	if err := report.WriteComparison(os.Stdout, outcome.Report); err != nil {
		slog.Error("rendering comparison failed", log.ErrAttr(err))
		os.Exit(1)
	}
	fmt.Println()
	if err := report.WriteEvaluation(os.Stdout, outcome.Evaluation); err != nil {
		slog.Error("rendering evaluation failed", log.ErrAttr(err))
		os.Exit(1)
	}

	if *outPlot != "" {
		if err := report.PlotPairwise(*outPlot, outcome.Report); err != nil {
			slog.Error("plotting pairwise intervals failed", log.ErrAttr(err))
			os.Exit(1)
		}
		slog.Info("wrote pairwise CI plot", "path", *outPlot)
	}

	if len(outcome.EvalPredictions) > 0 {
		fmt.Println()
		fmt.Println("evaluation-set predictions:")
		for i, p := range outcome.EvalPredictions {
			fmt.Printf("%d: %s\n", i+1, p)
		}
	}
}
