// Package discriminant implements linear discriminant analysis: a linear
// decision rule from per-class means, a pooled within-class covariance and
// class priors.
package discriminant

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/jhsdatascience/pml-project/core/model"
	"github.com/jhsdatascience/pml-project/pkg/errors"
)

// LinearDiscriminant is a multiclass LDA classifier.
type LinearDiscriminant struct {
	model.BaseEstimator

	// Ridge is added to the pooled covariance diagonal so that near-
	// collinear features do not make the solve fail outright.
	Ridge float64

	classes   []int
	nFeatures int
	weights   *mat.Dense // one row of discriminant coefficients per class
	offsets   []float64  // per-class -0.5*mu'Sigma^-1 mu + log prior
}

// NewLinearDiscriminant returns an LDA classifier with a small default ridge.
func NewLinearDiscriminant() *LinearDiscriminant {
	return &LinearDiscriminant{Ridge: 1e-6}
}

// Name identifies the method in reports.
func (ld *LinearDiscriminant) Name() string { return "LinearDiscriminant" }

// Classes returns the class indices seen during fitting, ascending.
func (ld *LinearDiscriminant) Classes() []int { return ld.classes }

// Fit estimates class means, the pooled within-class covariance and priors.
// A covariance that cannot be factorized is a training failure for this
// model (surfaced, not retried).
func (ld *LinearDiscriminant) Fit(X, y mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("LinearDiscriminant.Fit", "empty data", errors.ErrEmptyData)
	}

	labels := make([]int, r)
	classSet := make(map[int]bool)
	for i := 0; i < r; i++ {
		labels[i] = int(y.At(i, 0))
		classSet[labels[i]] = true
	}
	ld.classes = make([]int, 0, len(classSet))
	for cls := range classSet {
		ld.classes = append(ld.classes, cls)
	}
	sort.Ints(ld.classes)
	ld.nFeatures = c

	if r <= len(ld.classes) {
		return errors.NewModelError("LinearDiscriminant.Fit", "fewer records than classes", nil)
	}

	classPos := make(map[int]int, len(ld.classes))
	for i, cls := range ld.classes {
		classPos[cls] = i
	}

	// Per-class means and counts.
	counts := make([]int, len(ld.classes))
	means := mat.NewDense(len(ld.classes), c, nil)
	for i := 0; i < r; i++ {
		p := classPos[labels[i]]
		counts[p]++
		for j := 0; j < c; j++ {
			means.Set(p, j, means.At(p, j)+X.At(i, j))
		}
	}
	for p := range ld.classes {
		if counts[p] == 0 {
			continue
		}
		for j := 0; j < c; j++ {
			means.Set(p, j, means.At(p, j)/float64(counts[p]))
		}
	}

	// Pooled within-class covariance.
	cov := mat.NewSymDense(c, nil)
	centered := make([]float64, c)
	for i := 0; i < r; i++ {
		p := classPos[labels[i]]
		for j := 0; j < c; j++ {
			centered[j] = X.At(i, j) - means.At(p, j)
		}
		for a := 0; a < c; a++ {
			for b := a; b < c; b++ {
				cov.SetSym(a, b, cov.At(a, b)+centered[a]*centered[b])
			}
		}
	}
	denom := float64(r - len(ld.classes))
	for a := 0; a < c; a++ {
		for b := a; b < c; b++ {
			cov.SetSym(a, b, cov.At(a, b)/denom)
		}
		cov.SetSym(a, a, cov.At(a, a)+ld.Ridge)
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(cov); !ok {
		return errors.NewModelError("LinearDiscriminant.Fit", "covariance not positive definite", errors.ErrSingularMatrix)
	}

	ld.weights = mat.NewDense(len(ld.classes), c, nil)
	ld.offsets = make([]float64, len(ld.classes))
	mu := mat.NewVecDense(c, nil)
	var w mat.VecDense
	for p := range ld.classes {
		for j := 0; j < c; j++ {
			mu.SetVec(j, means.At(p, j))
		}
		if err := chol.SolveVecTo(&w, mu); err != nil {
			return errors.NewModelError("LinearDiscriminant.Fit", "covariance solve failed", err)
		}
		for j := 0; j < c; j++ {
			ld.weights.Set(p, j, w.AtVec(j))
		}
		prior := float64(counts[p]) / float64(r)
		ld.offsets[p] = -0.5*mat.Dot(mu, &w) + math.Log(prior)
	}

	ld.SetFitted()
	return nil
}

// Predict assigns each record to the class with the highest discriminant
// score.
func (ld *LinearDiscriminant) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !ld.IsFitted() {
		return nil, errors.NewNotFittedError("LinearDiscriminant", "Predict")
	}
	r, c := X.Dims()
	if c != ld.nFeatures {
		return nil, errors.NewDimensionError("LinearDiscriminant.Predict", ld.nFeatures, c, 1)
	}

	out := mat.NewDense(r, 1, nil)
	for i := 0; i < r; i++ {
		best := 0
		bestScore := math.Inf(-1)
		for p := range ld.classes {
			score := ld.offsets[p]
			for j := 0; j < c; j++ {
				score += ld.weights.At(p, j) * X.At(i, j)
			}
			if score > bestScore {
				bestScore = score
				best = p
			}
		}
		out.Set(i, 0, float64(ld.classes[best]))
	}
	return out, nil
}
