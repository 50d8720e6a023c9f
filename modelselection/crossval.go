package modelselection

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/jhsdatascience/pml-project/core/model"
	"github.com/jhsdatascience/pml-project/dataset"
	"github.com/jhsdatascience/pml-project/metrics"
	"github.com/jhsdatascience/pml-project/pkg/errors"
	"github.com/jhsdatascience/pml-project/preprocessing"
)

// ModelSpec constructs fresh classifier instances for a named method. The
// trainer needs a new instance per fold plus one for the final refit.
type ModelSpec struct {
	Name string
	New  func(seed uint64) model.Classifier
}

// Options configures a cross-validated training run.
type Options struct {
	// Folds is the cross-validation fold count (default 10).
	Folds int

	// Seed drives fold assignment and model-internal randomness (default 1234).
	Seed uint64

	// Preprocess is an optional transformation sequence. Each fold fits its
	// own instances on the fold's training portion only.
	Preprocess []preprocessing.Spec
}

func (o Options) withDefaults() Options {
	if o.Folds == 0 {
		o.Folds = 10
	}
	if o.Seed == 0 {
		o.Seed = 1234
	}
	return o
}

// CVResult holds per-fold accuracies and timing for one trained model.
type CVResult struct {
	ModelName      string
	FoldAccuracies []float64
	Mean           float64
	Std            float64
	FitTimes       []time.Duration
	TotalTime      time.Duration
	FinalFitTime   time.Duration
}

// TrainedModel bundles the final refitted classifier with the preprocessing
// chain fitted alongside it, plus the feature schema it expects.
type TrainedModel struct {
	Name string

	chain    *preprocessing.Chain
	clf      model.Classifier
	features []string
	classes  []string
}

// Features returns the feature columns, in order, the model was trained on.
func (tm *TrainedModel) Features() []string { return tm.features }

// ClassNames returns the canonical class names.
func (tm *TrainedModel) ClassNames() []string { return tm.classes }

// Predict applies the fitted preprocessing chain and the classifier.
func (tm *TrainedModel) Predict(X mat.Matrix) (mat.Matrix, error) {
	Xt, err := tm.chain.Transform(X)
	if err != nil {
		return nil, err
	}
	return tm.clf.Predict(Xt)
}

// Classifier exposes the underlying fitted classifier.
func (tm *TrainedModel) Classifier() model.Classifier { return tm.clf }

// CrossValidate trains spec on ds under stratified k-fold cross-validation
// and then refits on the full data to produce the returned model.
//
// Per-fold model randomness comes from a PCG substream keyed by (seed,
// fold+1) and the final refit uses substream (seed, 0). Folds run on their
// own goroutines, but since every random stream is pre-derived the result is
// identical to a sequential execution.
func CrossValidate(spec ModelSpec, ds *dataset.Dataset, opts Options) (*TrainedModel, *CVResult, error) {
	opts = opts.withDefaults()
	if !ds.IsLabeled() {
		return nil, nil, errors.NewValueError("CrossValidate", "dataset has no labels")
	}
	if opts.Folds < 2 {
		return nil, nil, errors.NewValidationError("Folds", "must be at least 2", opts.Folds)
	}

	started := time.Now()
	folds := NewStratifiedKFold(opts.Folds, opts.Seed).Split(ds.Labels, len(ds.Classes))

	// Too few records leave some folds with nothing to hold out, which would
	// blow up as a matrix-construction panic inside a fold goroutine.
	for _, fold := range folds {
		if len(fold.TestIndices) == 0 {
			return nil, nil, errors.NewValidationError("Folds",
				"produces an empty held-out fold; reduce the fold count or add records", opts.Folds)
		}
	}

	result := &CVResult{
		ModelName:      spec.Name,
		FoldAccuracies: make([]float64, len(folds)),
		FitTimes:       make([]time.Duration, len(folds)),
	}
	foldErrs := make([]error, len(folds))

	var wg sync.WaitGroup
	for foldIdx := range folds {
		wg.Add(1)
		go func(f int) {
			defer wg.Done()
			acc, took, err := runFold(spec, ds, folds[f], opts, f)
			if err != nil {
				foldErrs[f] = errors.NewTrainingError(spec.Name, f, err)
				return
			}
			result.FoldAccuracies[f] = acc
			result.FitTimes[f] = took
		}(foldIdx)
	}
	wg.Wait()

	for _, err := range foldErrs {
		if err != nil {
			return nil, nil, err
		}
	}

	result.Mean = stat.Mean(result.FoldAccuracies, nil)
	result.Std = stat.StdDev(result.FoldAccuracies, nil)

	// Final refit on the entire training data; the per-fold models were
	// diagnostic only.
	finalStart := time.Now()
	chain := preprocessing.NewChain(opts.Preprocess)
	Xt, err := chain.FitTransform(ds.X)
	if err != nil {
		return nil, nil, errors.NewTrainingError(spec.Name, -1, err)
	}
	clf := spec.New(rand.New(rand.NewPCG(opts.Seed, 0)).Uint64())
	if err := clf.Fit(Xt, ds.LabelMatrix()); err != nil {
		return nil, nil, errors.NewTrainingError(spec.Name, -1, err)
	}
	result.FinalFitTime = time.Since(finalStart)
	result.TotalTime = time.Since(started)

	trained := &TrainedModel{
		Name:     spec.Name,
		chain:    chain,
		clf:      clf,
		features: ds.Features,
		classes:  ds.Classes,
	}
	return trained, result, nil
}

func runFold(spec ModelSpec, ds *dataset.Dataset, fold Fold, opts Options, foldIdx int) (float64, time.Duration, error) {
	train := ds.Subset(fold.TrainIndices)
	val := ds.Subset(fold.TestIndices)

	// A class missing from the training partition makes the fit unsound for
	// several methods; fail fast instead of surfacing a numeric error.
	counts := train.ClassCounts()
	for c, n := range counts {
		if n == 0 {
			return 0, 0, errors.Newf("class %q absent from training partition", ds.Classes[c])
		}
	}

	chain := preprocessing.NewChain(opts.Preprocess)
	Xtrain, err := chain.FitTransform(train.X)
	if err != nil {
		return 0, 0, err
	}
	Xval, err := chain.Transform(val.X)
	if err != nil {
		return 0, 0, err
	}

	clf := spec.New(rand.New(rand.NewPCG(opts.Seed, uint64(foldIdx)+1)).Uint64())

	fitStart := time.Now()
	if err := clf.Fit(Xtrain, train.LabelMatrix()); err != nil {
		return 0, 0, err
	}
	took := time.Since(fitStart)

	pred, err := clf.Predict(Xval)
	if err != nil {
		return 0, 0, err
	}
	acc, err := metrics.Accuracy(val.LabelMatrix(), pred)
	if err != nil {
		return 0, 0, err
	}
	return acc, took, nil
}

// String summarizes the result for logs.
func (cv *CVResult) String() string {
	return fmt.Sprintf("%s: mean=%.4f std=%.4f folds=%d total=%s",
		cv.ModelName, cv.Mean, cv.Std, len(cv.FoldAccuracies), cv.TotalTime)
}
