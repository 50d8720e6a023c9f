// Package ensemble implements the tree-ensemble classifiers: bootstrap-
// aggregated random forests and one-vs-rest gradient boosting.
package ensemble

import (
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/jhsdatascience/pml-project/core/model"
	"github.com/jhsdatascience/pml-project/core/parallel"
	"github.com/jhsdatascience/pml-project/pkg/errors"
	"github.com/jhsdatascience/pml-project/tree"
)

// RandomForest is a bootstrap ensemble of decision trees voting by majority.
type RandomForest struct {
	model.BaseEstimator

	// NEstimators is the number of trees.
	NEstimators int

	// MaxDepth limits each tree's depth.
	MaxDepth int

	// MinSamplesSplit is the per-tree minimum records to split.
	MinSamplesSplit int

	// MaxThresholds caps candidate thresholds per feature per split.
	MaxThresholds int

	// MaxFeatures is the features sampled per split; 0 means sqrt(features).
	MaxFeatures int

	// Seed derives one independent random stream per tree, so fitting is
	// reproducible regardless of how trees are scheduled.
	Seed uint64

	trees     []*tree.Classifier
	classes   []int
	nClassIdx int
	nFeatures int
}

// NewRandomForest returns a forest with the default ensemble size.
func NewRandomForest(seed uint64) *RandomForest {
	return &RandomForest{
		NEstimators:     50,
		MaxDepth:        12,
		MinSamplesSplit: 2,
		MaxThresholds:   32,
		Seed:            seed,
	}
}

// Name identifies the method in reports.
func (rf *RandomForest) Name() string { return "RandomForest" }

// Classes returns the class indices seen during fitting, ascending.
func (rf *RandomForest) Classes() []int { return rf.classes }

// Fit grows NEstimators trees, each on a bootstrap resample of the data.
func (rf *RandomForest) Fit(X, y mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("RandomForest.Fit", "empty data", errors.ErrEmptyData)
	}
	if rf.NEstimators <= 0 {
		return errors.NewValidationError("NEstimators", "must be positive", rf.NEstimators)
	}

	labels := make([]int, r)
	for i := 0; i < r; i++ {
		labels[i] = int(y.At(i, 0))
	}
	rf.classes = distinct(labels)
	rf.nClassIdx = rf.classes[len(rf.classes)-1] + 1
	rf.nFeatures = c

	maxFeatures := rf.MaxFeatures
	if maxFeatures <= 0 {
		maxFeatures = int(math.Max(1, math.Sqrt(float64(c))))
	}

	rf.trees = make([]*tree.Classifier, rf.NEstimators)
	errs := make([]error, rf.NEstimators)

	// One tree per item; each tree owns a PCG stream keyed by its index, so
	// the fit is bit-identical to a sequential run.
	parallel.Parallelize(rf.NEstimators, func(start, end int) {
		for k := start; k < end; k++ {
			rng := rand.New(rand.NewPCG(rf.Seed, uint64(k)+1))

			Xb := mat.NewDense(r, c, nil)
			yb := mat.NewDense(r, 1, nil)
			for i := 0; i < r; i++ {
				src := rng.IntN(r)
				Xb.SetRow(i, mat.Row(nil, src, X))
				yb.Set(i, 0, float64(labels[src]))
			}

			dt := tree.NewClassifier(rf.Seed + uint64(k)*7919)
			dt.MaxDepth = rf.MaxDepth
			dt.MinSamplesSplit = rf.MinSamplesSplit
			dt.MaxThresholds = rf.MaxThresholds
			dt.MaxFeatures = maxFeatures
			if err := dt.Fit(Xb, yb); err != nil {
				errs[k] = errors.Wrapf(err, "RandomForest.Fit: tree %d", k)
				continue
			}
			rf.trees[k] = dt
		}
	})

	for _, err := range errs {
		if err != nil {
			return err
		}
	}

	rf.SetFitted()
	return nil
}

// Predict returns the majority vote across trees for each record.
func (rf *RandomForest) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !rf.IsFitted() {
		return nil, errors.NewNotFittedError("RandomForest", "Predict")
	}
	r, c := X.Dims()
	if c != rf.nFeatures {
		return nil, errors.NewDimensionError("RandomForest.Predict", rf.nFeatures, c, 1)
	}

	votes := make([][]int, r)
	for i := range votes {
		votes[i] = make([]int, rf.nClassIdx)
	}
	for _, dt := range rf.trees {
		pred, err := dt.Predict(X)
		if err != nil {
			return nil, err
		}
		for i := 0; i < r; i++ {
			votes[i][int(pred.At(i, 0))]++
		}
	}

	out := mat.NewDense(r, 1, nil)
	for i := 0; i < r; i++ {
		best := 0
		for cls, v := range votes[i] {
			if v > votes[i][best] {
				best = cls
			}
		}
		out.Set(i, 0, float64(best))
	}
	return out, nil
}

// FeatureImportance averages the impurity-decrease importances of the trees.
func (rf *RandomForest) FeatureImportance() []float64 {
	if len(rf.trees) == 0 {
		return nil
	}
	total := make([]float64, rf.nFeatures)
	for _, dt := range rf.trees {
		for j, v := range dt.FeatureImportance() {
			total[j] += v
		}
	}
	for j := range total {
		total[j] /= float64(len(rf.trees))
	}
	return total
}

func distinct(labels []int) []int {
	seen := make(map[int]bool)
	for _, c := range labels {
		seen[c] = true
	}
	out := make([]int, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Ints(out)
	return out
}
