// Package experiment wires the full workflow together: clean, partition,
// cross-validated training of every method, comparison, and holdout
// evaluation. The flow is a strict linear pipeline; the only decision point
// is the model selection inside the comparison.
package experiment

import (
	"log/slog"
	"sync"

	"github.com/jhsdatascience/pml-project/compare"
	"github.com/jhsdatascience/pml-project/core/model"
	"github.com/jhsdatascience/pml-project/core/parallel"
	"github.com/jhsdatascience/pml-project/dataset"
	"github.com/jhsdatascience/pml-project/discriminant"
	"github.com/jhsdatascience/pml-project/ensemble"
	"github.com/jhsdatascience/pml-project/evaluate"
	"github.com/jhsdatascience/pml-project/modelselection"
	"github.com/jhsdatascience/pml-project/pkg/errors"
	pkglog "github.com/jhsdatascience/pml-project/pkg/log"
	"github.com/jhsdatascience/pml-project/preprocessing"
	"github.com/jhsdatascience/pml-project/tree"
)

// Config is the explicit parameter surface of the pipeline.
type Config struct {
	// TrainPath is the labeled training CSV.
	TrainPath string

	// EvalPath is an optional unlabeled evaluation CSV sharing the training
	// schema minus the label.
	EvalPath string

	// LabelColumn names the categorical label column.
	LabelColumn string

	// Seed drives every randomized operation.
	Seed uint64

	// Folds is the cross-validation fold count.
	Folds int

	// TrainFraction is the stratified train/test split fraction.
	TrainFraction float64

	// PairwiseConfidence is the level for pairwise difference intervals.
	PairwiseConfidence float64

	// AccuracyConfidence is the level for the holdout accuracy interval.
	AccuracyConfidence float64

	// Workers bounds the model-training worker pool; 0 uses the CPU count.
	Workers int

	// Specs lists the methods to compare; nil uses DefaultSpecs.
	Specs []modelselection.ModelSpec

	// Preprocess is applied within each fold, fitted on training data only.
	Preprocess []preprocessing.Spec
}

func (c Config) withDefaults() Config {
	if c.LabelColumn == "" {
		c.LabelColumn = "classe"
	}
	if c.Seed == 0 {
		c.Seed = 1234
	}
	if c.Folds == 0 {
		c.Folds = 10
	}
	if c.TrainFraction == 0 {
		c.TrainFraction = 0.8
	}
	if c.PairwiseConfidence == 0 {
		c.PairwiseConfidence = compare.DefaultConfidenceLevel
	}
	if c.AccuracyConfidence == 0 {
		c.AccuracyConfidence = 0.95
	}
	if c.Specs == nil {
		c.Specs = DefaultSpecs()
	}
	return c
}

// DefaultSpecs returns the four methods under comparison.
func DefaultSpecs() []modelselection.ModelSpec {
	return []modelselection.ModelSpec{
		{Name: "DecisionTree", New: func(seed uint64) model.Classifier {
			return tree.NewClassifier(seed)
		}},
		{Name: "RandomForest", New: func(seed uint64) model.Classifier {
			return ensemble.NewRandomForest(seed)
		}},
		{Name: "GradientBoosting", New: func(seed uint64) model.Classifier {
			return ensemble.NewGradientBoosting()
		}},
		{Name: "LinearDiscriminant", New: func(seed uint64) model.Classifier {
			return discriminant.NewLinearDiscriminant()
		}},
	}
}

// Outcome carries every artifact of a pipeline run.
type Outcome struct {
	Train, Test *dataset.Dataset

	// Models maps method name to its final refitted model.
	Models map[string]*modelselection.TrainedModel

	// Report is the immutable comparison report.
	Report *compare.Report

	// Evaluation scores the selected model on the held-out testing subset.
	Evaluation *evaluate.Evaluation

	// EvalPredictions holds the selected model's predictions for the
	// unlabeled evaluation file, when one was configured.
	EvalPredictions []string
}

// Run executes the pipeline end to end.
func Run(cfg Config) (*Outcome, error) {
	cfg = cfg.withDefaults()

	slog.Info("loading training data", "path", cfg.TrainPath)
	raw, err := dataset.ReadTable(cfg.TrainPath)
	if err != nil {
		return nil, err
	}

	cleaner := dataset.NewCleaner(cfg.LabelColumn)
	cleaned, err := cleaner.Clean(raw)
	if err != nil {
		return nil, err
	}
	slog.Info("cleaned training data",
		"records", cleaned.NumRows(),
		"features", cleaned.NumFeatures(),
		"classes", len(cleaned.Classes))

	train, test, err := dataset.StratifiedSplit(cleaned, cfg.TrainFraction, cfg.Seed)
	if err != nil {
		return nil, err
	}
	slog.Info("partitioned data", "train", train.NumRows(), "test", test.NumRows())

	// Train every method on its own worker; the pool joins before the
	// comparison and is torn down on every path.
	var mu sync.Mutex
	models := make(map[string]*modelselection.TrainedModel)
	results := make(map[string]*modelselection.CVResult)
	failures := make(map[string]error)

	opts := modelselection.Options{
		Folds:      cfg.Folds,
		Seed:       cfg.Seed,
		Preprocess: cfg.Preprocess,
	}
	tasks := make([]func(), 0, len(cfg.Specs))
	for _, spec := range cfg.Specs {
		spec := spec
		tasks = append(tasks, func() {
			trained, res, err := modelselection.CrossValidate(spec, train, opts)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				slog.Error("training failed", "model", spec.Name, pkglog.ErrAttr(err))
				failures[spec.Name] = err
				return
			}
			slog.Info("trained model", "model", spec.Name,
				"mean_accuracy", res.Mean, "std", res.Std, "total_time", res.TotalTime)
			models[spec.Name] = trained
			results[spec.Name] = res
		})
	}
	parallel.RunTasks(cfg.Workers, tasks)

	if len(results) == 0 {
		return nil, errors.New("experiment: every model failed to train")
	}

	report, err := compare.Compare(results, failures, cfg.PairwiseConfidence)
	if err != nil {
		return nil, err
	}
	slog.Info("compared models", "selected", report.Selected, "incomplete", report.Incomplete())

	best := models[report.Selected]
	evaluation, err := evaluate.Evaluate(best, test, cfg.AccuracyConfidence)
	if err != nil {
		return nil, err
	}
	slog.Info("evaluated selected model",
		"model", report.Selected,
		"accuracy", evaluation.Accuracy,
		"misclassified", evaluation.Confusion.Misclassified())

	outcome := &Outcome{
		Train:      train,
		Test:       test,
		Models:     models,
		Report:     report,
		Evaluation: evaluation,
	}

	if cfg.EvalPath != "" {
		slog.Info("predicting evaluation data", "path", cfg.EvalPath)
		evalRaw, err := dataset.ReadTable(cfg.EvalPath)
		if err != nil {
			return nil, err
		}
		evalDS, err := cleaner.Propagate(cleaned, evalRaw)
		if err != nil {
			return nil, err
		}
		preds, err := evaluate.Predict(best, evalDS)
		if err != nil {
			return nil, err
		}
		outcome.EvalPredictions = preds
	}

	return outcome, nil
}
