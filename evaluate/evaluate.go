// Package evaluate applies a selected model to held-out data and scores it.
package evaluate

import (
	"github.com/jhsdatascience/pml-project/dataset"
	"github.com/jhsdatascience/pml-project/metrics"
	"github.com/jhsdatascience/pml-project/modelselection"
	"github.com/jhsdatascience/pml-project/pkg/errors"
)

// Evaluation is the outcome of scoring one model on a labeled testing
// subset.
type Evaluation struct {
	ModelName   string
	Predictions []string
	Confusion   *metrics.ConfusionMatrix
	Accuracy    float64
	CILower     float64
	CIUpper     float64
	Confidence  float64
}

// Evaluate scores a trained model on a labeled testing subset: predictions,
// confusion matrix in canonical class order, accuracy and its exact
// Clopper-Pearson interval at the given confidence level. The feature schema
// is validated before any prediction runs.
func Evaluate(tm *modelselection.TrainedModel, test *dataset.Dataset, confidence float64) (*Evaluation, error) {
	if err := dataset.ValidateFeatures("Evaluate", tm.Features(), test.Features); err != nil {
		return nil, err
	}
	if !test.IsLabeled() {
		return nil, errors.NewValueError("Evaluate", "testing subset has no labels")
	}

	pred, err := tm.Predict(test.X)
	if err != nil {
		return nil, err
	}

	classes := tm.ClassNames()
	cm, err := metrics.NewConfusionMatrix(test.LabelMatrix(), pred, classes)
	if err != nil {
		return nil, err
	}

	lower, upper, err := metrics.ClopperPearson(cm.Correct(), cm.Total(), confidence)
	if err != nil {
		return nil, err
	}

	names := make([]string, test.NumRows())
	for i := range names {
		names[i] = classes[int(pred.At(i, 0))]
	}

	return &Evaluation{
		ModelName:   tm.Name,
		Predictions: names,
		Confusion:   cm,
		Accuracy:    cm.Accuracy(),
		CILower:     lower,
		CIUpper:     upper,
		Confidence:  confidence,
	}, nil
}

// Predict applies a trained model to an unlabeled evaluation dataset and
// returns the predicted class names, after the same schema validation.
func Predict(tm *modelselection.TrainedModel, eval *dataset.Dataset) ([]string, error) {
	if err := dataset.ValidateFeatures("Predict", tm.Features(), eval.Features); err != nil {
		return nil, err
	}

	pred, err := tm.Predict(eval.X)
	if err != nil {
		return nil, err
	}

	classes := tm.ClassNames()
	names := make([]string, eval.NumRows())
	for i := range names {
		names[i] = classes[int(pred.At(i, 0))]
	}
	return names, nil
}
