// Package tree implements a CART-style decision tree classifier: binary
// splits on numeric features chosen by Gini impurity.
package tree

import (
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/jhsdatascience/pml-project/core/model"
	"github.com/jhsdatascience/pml-project/pkg/errors"
)

type node struct {
	isLeaf    bool
	class     int
	feature   int
	threshold float64
	left      *node
	right     *node
}

// Classifier is a multiclass decision tree.
type Classifier struct {
	model.BaseEstimator

	// MaxDepth limits tree depth.
	MaxDepth int

	// MinSamplesSplit is the minimum number of records required to split.
	MinSamplesSplit int

	// MaxThresholds caps the candidate thresholds evaluated per feature,
	// taken at quantiles of the feature's values.
	MaxThresholds int

	// MaxFeatures is the number of features sampled per split; 0 uses all.
	MaxFeatures int

	// Seed drives feature subsampling when MaxFeatures is set.
	Seed uint64

	root       *node
	classes    []int
	nClassIdx  int // 1 + highest class index, sizes count buckets
	nFeatures  int
	importance []float64
	rng        *rand.Rand
}

// NewClassifier returns a tree with the default depth and split limits.
func NewClassifier(seed uint64) *Classifier {
	return &Classifier{
		MaxDepth:        16,
		MinSamplesSplit: 2,
		MaxThresholds:   64,
		Seed:            seed,
	}
}

// Name identifies the method in reports.
func (t *Classifier) Name() string { return "DecisionTree" }

// Classes returns the class indices seen during fitting, ascending.
func (t *Classifier) Classes() []int { return t.classes }

// FeatureImportance returns normalized impurity-decrease totals per feature.
func (t *Classifier) FeatureImportance() []float64 { return t.importance }

// Fit grows the tree on X with class-index labels y (n×1).
func (t *Classifier) Fit(X, y mat.Matrix) error {
	r, c := X.Dims()
	yr, _ := y.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("DecisionTree.Fit", "empty data", errors.ErrEmptyData)
	}
	if yr != r {
		return errors.NewDimensionError("DecisionTree.Fit", r, yr, 0)
	}

	labels := make([]int, r)
	for i := 0; i < r; i++ {
		labels[i] = int(y.At(i, 0))
	}
	t.classes = distinctClasses(labels)
	t.nClassIdx = t.classes[len(t.classes)-1] + 1
	t.nFeatures = c
	t.importance = make([]float64, c)
	t.rng = rand.New(rand.NewPCG(t.Seed, 1))

	idx := make([]int, r)
	for i := range idx {
		idx[i] = i
	}
	t.root = t.build(X, labels, idx, 0)

	normalize(t.importance)
	t.SetFitted()
	return nil
}

// Predict returns an n×1 matrix of predicted class indices.
func (t *Classifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !t.IsFitted() {
		return nil, errors.NewNotFittedError("DecisionTree", "Predict")
	}
	r, c := X.Dims()
	if c != t.nFeatures {
		return nil, errors.NewDimensionError("DecisionTree.Predict", t.nFeatures, c, 1)
	}

	out := mat.NewDense(r, 1, nil)
	for i := 0; i < r; i++ {
		n := t.root
		for !n.isLeaf {
			if X.At(i, n.feature) <= n.threshold {
				n = n.left
			} else {
				n = n.right
			}
		}
		out.Set(i, 0, float64(n.class))
	}
	return out, nil
}

func (t *Classifier) build(X mat.Matrix, labels, idx []int, depth int) *node {
	counts := classCounts(labels, idx, t.nClassIdx)
	majority := argmax(counts)
	if depth >= t.MaxDepth || len(idx) < t.MinSamplesSplit || counts[majority] == len(idx) {
		return &node{isLeaf: true, class: majority}
	}

	parentGini := gini(counts, len(idx))

	bestFeature := -1
	bestThr := 0.0
	bestDecrease := 0.0
	var bestLeft, bestRight []int

	for _, f := range t.pickFeatures() {
		for _, thr := range t.candidateThresholds(X, idx, f) {
			left, right := partition(X, idx, f, thr)
			if len(left) == 0 || len(right) == 0 {
				continue
			}
			lGini := gini(classCounts(labels, left, t.nClassIdx), len(left))
			rGini := gini(classCounts(labels, right, t.nClassIdx), len(right))
			weighted := (float64(len(left))*lGini + float64(len(right))*rGini) / float64(len(idx))
			decrease := parentGini - weighted
			if decrease > bestDecrease {
				bestDecrease = decrease
				bestFeature = f
				bestThr = thr
				bestLeft = left
				bestRight = right
			}
		}
	}

	if bestFeature < 0 {
		return &node{isLeaf: true, class: majority}
	}

	t.importance[bestFeature] += bestDecrease * float64(len(idx))

	return &node{
		feature:   bestFeature,
		threshold: bestThr,
		left:      t.build(X, labels, bestLeft, depth+1),
		right:     t.build(X, labels, bestRight, depth+1),
	}
}

func (t *Classifier) pickFeatures() []int {
	if t.MaxFeatures <= 0 || t.MaxFeatures >= t.nFeatures {
		all := make([]int, t.nFeatures)
		for i := range all {
			all[i] = i
		}
		return all
	}
	perm := t.rng.Perm(t.nFeatures)
	return perm[:t.MaxFeatures]
}

// candidateThresholds returns up to MaxThresholds quantile cut points for
// feature f over the records in idx.
func (t *Classifier) candidateThresholds(X mat.Matrix, idx []int, f int) []float64 {
	vals := make([]float64, len(idx))
	for i, id := range idx {
		vals[i] = X.At(id, f)
	}
	sort.Float64s(vals)

	nCand := t.MaxThresholds
	if nCand <= 0 {
		nCand = 16
	}
	out := make([]float64, 0, nCand)
	for k := 1; k < nCand; k++ {
		i := int(math.Round(float64(k) / float64(nCand) * float64(len(vals)-1)))
		if i <= 0 || i >= len(vals) {
			continue
		}
		thr := vals[i]
		if len(out) == 0 || thr != out[len(out)-1] {
			out = append(out, thr)
		}
	}
	return out
}

func partition(X mat.Matrix, idx []int, f int, thr float64) (left, right []int) {
	for _, id := range idx {
		if X.At(id, f) <= thr {
			left = append(left, id)
		} else {
			right = append(right, id)
		}
	}
	return left, right
}

func classCounts(labels, idx []int, nClasses int) []int {
	counts := make([]int, nClasses)
	for _, id := range idx {
		counts[labels[id]]++
	}
	return counts
}

func gini(counts []int, total int) float64 {
	if total == 0 {
		return 0
	}
	g := 1.0
	for _, c := range counts {
		p := float64(c) / float64(total)
		g -= p * p
	}
	return g
}

func argmax(counts []int) int {
	best := 0
	for i, c := range counts {
		if c > counts[best] {
			best = i
		}
	}
	return best
}

func distinctClasses(labels []int) []int {
	seen := make(map[int]bool)
	for _, c := range labels {
		seen[c] = true
	}
	classes := make([]int, 0, len(seen))
	for c := range seen {
		classes = append(classes, c)
	}
	sort.Ints(classes)
	return classes
}

func normalize(xs []float64) {
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	if sum == 0 {
		return
	}
	for i := range xs {
		xs[i] /= sum
	}
}
