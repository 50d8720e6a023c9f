package evaluate

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/jhsdatascience/pml-project/core/model"
	"github.com/jhsdatascience/pml-project/dataset"
	"github.com/jhsdatascience/pml-project/modelselection"
	"github.com/jhsdatascience/pml-project/pkg/errors"
	"github.com/jhsdatascience/pml-project/tree"
)

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

func trainModel(t *testing.T, ds *dataset.Dataset) *modelselection.TrainedModel {
	t.Helper()
	spec := modelselection.ModelSpec{
		Name: "DecisionTree",
		New: func(seed uint64) model.Classifier {
			return tree.NewClassifier(seed)
		},
	}
	trained, _, err := modelselection.CrossValidate(spec, ds, modelselection.Options{Folds: 5, Seed: 1234})
	if err != nil {
		t.Fatalf("CrossValidate() error = %v", err)
	}
	return trained
}

func TestEvaluate(t *testing.T) {
	train := separableDataset(20, 3)
	tm := trainModel(t, train)

	test := separableDataset(5, 3)
	ev, err := Evaluate(tm, test, 0.95)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	if ev.ModelName != "DecisionTree" {
		t.Errorf("ModelName = %s, want DecisionTree", ev.ModelName)
	}
	if len(ev.Predictions) != test.NumRows() {
		t.Fatalf("prediction count = %d, want %d", len(ev.Predictions), test.NumRows())
	}
	if math.Abs(ev.Accuracy-ev.Confusion.Accuracy()) > 1e-12 {
		t.Errorf("Accuracy %v disagrees with confusion matrix %v", ev.Accuracy, ev.Confusion.Accuracy())
	}
	if ev.Accuracy < 0.99 {
		t.Errorf("accuracy = %v, want ~1 on separable data", ev.Accuracy)
	}
	if ev.CILower > ev.Accuracy || ev.CIUpper < ev.Accuracy {
		t.Errorf("accuracy %v outside interval [%v, %v]", ev.Accuracy, ev.CILower, ev.CIUpper)
	}
	if ev.Confusion.Total() != test.NumRows() {
		t.Errorf("confusion total = %d, want %d", ev.Confusion.Total(), test.NumRows())
	}
}

func TestEvaluateSchemaMismatch(t *testing.T) {
	train := separableDataset(20, 2)
	tm := trainModel(t, train)

	test := separableDataset(5, 2)
	test.Features = []string{"other"}

	_, err := Evaluate(tm, test, 0.95)
	var schemaErr *errors.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("Evaluate() error = %v, want SchemaError", err)
	}
}

func TestEvaluateUnlabeled(t *testing.T) {
	train := separableDataset(20, 2)
	tm := trainModel(t, train)

	eval := separableDataset(5, 2)
	eval.Labels = nil
	eval.Classes = nil

	if _, err := Evaluate(tm, eval, 0.95); err == nil {
		t.Error("Evaluate() on unlabeled data should error")
	}
}

func TestPredict(t *testing.T) {
	train := separableDataset(20, 3)
	tm := trainModel(t, train)

	eval := &dataset.Dataset{
		Features: []string{"value"},
		X:        mat.NewDense(3, 1, []float64{0.5, 10.5, 20.5}),
	}
	names, err := Predict(tm, eval)
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	want := []string{"A", "B", "C"}
	for i, w := range want {
		if names[i] != w {
			t.Errorf("Predictions[%d] = %s, want %s", i, names[i], w)
		}
	}
}

func TestPredictSchemaMismatch(t *testing.T) {
	train := separableDataset(20, 2)
	tm := trainModel(t, train)

	eval := &dataset.Dataset{
		Features: []string{"other"},
		X:        mat.NewDense(1, 1, []float64{0.5}),
	}
	_, err := Predict(tm, eval)
	var schemaErr *errors.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("Predict() error = %v, want SchemaError", err)
	}
}
