// Package model defines the interfaces shared by every classifier in the
// pipeline. Models are always accessed through these interfaces so that the
// trainer, comparator and evaluator never branch on a concrete method name.
package model

import "gonum.org/v1/gonum/mat"

// Fitter is a model that can be trained.
type Fitter interface {
	// Fit trains the model. y is an n×1 matrix of class indices.
	Fit(X, y mat.Matrix) error
}

// Predictor is a model that can predict labels for new samples.
type Predictor interface {
	// Predict returns an n×1 matrix of predicted class indices.
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Classifier is the uniform contract every classification method satisfies.
type Classifier interface {
	Fitter
	Predictor

	// Classes returns the class indices seen during fitting, ascending.
	Classes() []int
}

// FeatureImporter is implemented by models that can report per-feature
// importance scores, indexed like the training columns.
type FeatureImporter interface {
	FeatureImportance() []float64
}
