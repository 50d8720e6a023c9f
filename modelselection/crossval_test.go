package modelselection

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/jhsdatascience/pml-project/core/model"
	"github.com/jhsdatascience/pml-project/dataset"
	"github.com/jhsdatascience/pml-project/pkg/errors"
	"github.com/jhsdatascience/pml-project/tree"
)

// separableDataset builds a labeled dataset whose single feature fully
// determines the class, so any sane classifier scores perfectly.
func separableDataset(perClass, nClasses int) *dataset.Dataset {
	total := perClass * nClasses
	ds := &dataset.Dataset{
		Features: []string{"value"},
		X:        mat.NewDense(total, 1, nil),
		Labels:   make([]int, total),
		Classes:  make([]string, nClasses),
	}
	for c := 0; c < nClasses; c++ {
		ds.Classes[c] = string(rune('A' + c))
		for k := 0; k < perClass; k++ {
			i := c*perClass + k
			ds.X.Set(i, 0, float64(c)*10+float64(k)*0.1)
			ds.Labels[i] = c
		}
	}
	return ds
}

func treeSpec() ModelSpec {
	return ModelSpec{
		Name: "DecisionTree",
		New: func(seed uint64) model.Classifier {
			return tree.NewClassifier(seed)
		},
	}
}

func TestCrossValidateSeparableData(t *testing.T) {
	ds := separableDataset(20, 3)
	trained, result, err := CrossValidate(treeSpec(), ds, Options{Folds: 5, Seed: 1234})
	if err != nil {
		t.Fatalf("CrossValidate() error = %v", err)
	}

	if len(result.FoldAccuracies) != 5 {
		t.Fatalf("fold count = %d, want 5", len(result.FoldAccuracies))
	}
	if result.Mean < 0.99 {
		t.Errorf("mean accuracy = %v, want ~1 on separable data", result.Mean)
	}
	if len(result.FitTimes) != 5 {
		t.Errorf("fit time count = %d, want 5", len(result.FitTimes))
	}

	pred, err := trained.Predict(ds.X)
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	for i := 0; i < ds.NumRows(); i++ {
		if int(pred.At(i, 0)) != ds.Labels[i] {
			t.Fatalf("final model misclassifies separable record %d", i)
		}
	}

	if got := trained.ClassNames(); len(got) != 3 || got[0] != "A" {
		t.Errorf("ClassNames() = %v, want [A B C]", got)
	}
}

func TestCrossValidateReproducible(t *testing.T) {
	ds := separableDataset(15, 3)

	run := func() []float64 {
		_, result, err := CrossValidate(treeSpec(), ds, Options{Folds: 5, Seed: 42})
		if err != nil {
			t.Fatalf("CrossValidate() error = %v", err)
		}
		return result.FoldAccuracies
	}

	a, b := run(), run()
	for i := range a {
		if math.Abs(a[i]-b[i]) > 1e-12 {
			t.Fatalf("fold %d accuracy differs between identical runs: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestCrossValidateMissingClassInFold(t *testing.T) {
	// One class with a single record: whichever fold holds that record out
	// leaves the training partition without the class.
	ds := separableDataset(10, 2)
	ds.Features = []string{"value"}
	rows := ds.NumRows()
	X := mat.NewDense(rows+1, 1, nil)
	for i := 0; i < rows; i++ {
		X.Set(i, 0, ds.X.At(i, 0))
	}
	X.Set(rows, 0, 99)
	ds.X = X
	ds.Labels = append(ds.Labels, 2)
	ds.Classes = append(ds.Classes, "C")

	_, _, err := CrossValidate(treeSpec(), ds, Options{Folds: 5, Seed: 1})
	var trainErr *errors.TrainingError
	if !errors.As(err, &trainErr) {
		t.Fatalf("CrossValidate() error = %v, want TrainingError", err)
	}
}

func TestCrossValidateMoreFoldsThanRecords(t *testing.T) {
	// Six records cannot fill ten held-out folds; this must surface as a
	// typed error, not a panic inside a fold goroutine.
	ds := separableDataset(2, 3)
	_, _, err := CrossValidate(treeSpec(), ds, Options{Folds: 10, Seed: 1})
	var valErr *errors.ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("CrossValidate() error = %v, want ValidationError", err)
	}
}

func TestCrossValidateValidation(t *testing.T) {
	ds := separableDataset(10, 2)
	if _, _, err := CrossValidate(treeSpec(), ds, Options{Folds: 1, Seed: 1}); err == nil {
		t.Error("want error for fewer than 2 folds")
	}
	unlabeled := &dataset.Dataset{Features: ds.Features, X: ds.X}
	if _, _, err := CrossValidate(treeSpec(), unlabeled, Options{Folds: 5, Seed: 1}); err == nil {
		t.Error("want error for unlabeled dataset")
	}
}
