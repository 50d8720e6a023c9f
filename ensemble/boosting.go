package ensemble

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/jhsdatascience/pml-project/core/model"
	"github.com/jhsdatascience/pml-project/core/parallel"
	"github.com/jhsdatascience/pml-project/pkg/errors"
)

// stump is a depth-1 regression tree on the logit residuals.
type stump struct {
	feature   int
	threshold float64
	leftVal   float64
	rightVal  float64
}

// GradientBoosting is a boosted-trees classifier. Multiclass problems are
// handled one-vs-rest: one boosted logit-stump ensemble per class, with the
// prediction going to the class with the highest score.
type GradientBoosting struct {
	model.BaseEstimator

	// NEstimators is the number of boosting rounds per class.
	NEstimators int

	// LearningRate shrinks each round's contribution.
	LearningRate float64

	// MaxThresholds caps candidate split thresholds per feature.
	MaxThresholds int

	// MinSamplesLeaf is the minimum records on each side of a split.
	MinSamplesLeaf int

	classes   []int
	nClassIdx int
	nFeatures int
	rounds    [][]stump // indexed by class index
	initscore []float64 // per-class initial logit
}

// NewGradientBoosting returns a boosting classifier with the default number
// of rounds.
func NewGradientBoosting() *GradientBoosting {
	return &GradientBoosting{
		NEstimators:    100,
		LearningRate:   0.1,
		MaxThresholds:  32,
		MinSamplesLeaf: 1,
	}
}

// Name identifies the method in reports.
func (gb *GradientBoosting) Name() string { return "GradientBoosting" }

// Classes returns the class indices seen during fitting, ascending.
func (gb *GradientBoosting) Classes() []int { return gb.classes }

func sigmoid(z float64) float64 { return 1.0 / (1.0 + math.Exp(-z)) }

// Fit trains one boosted ensemble per class. The procedure is fully
// deterministic: thresholds come from quantiles, not sampling.
func (gb *GradientBoosting) Fit(X, y mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("GradientBoosting.Fit", "empty data", errors.ErrEmptyData)
	}

	labels := make([]int, r)
	for i := 0; i < r; i++ {
		labels[i] = int(y.At(i, 0))
	}
	gb.classes = distinct(labels)
	gb.nClassIdx = gb.classes[len(gb.classes)-1] + 1
	gb.nFeatures = c
	gb.rounds = make([][]stump, gb.nClassIdx)
	gb.initscore = make([]float64, gb.nClassIdx)

	candidates := make([][]float64, c)
	for j := 0; j < c; j++ {
		candidates[j] = quantileThresholds(X, j, gb.MaxThresholds)
	}

	// Class ensembles are independent; one item per class.
	errs := make([]error, len(gb.classes))
	parallel.Parallelize(len(gb.classes), func(start, end int) {
		for ci := start; ci < end; ci++ {
			cls := gb.classes[ci]
			if err := gb.fitClass(X, labels, cls, candidates); err != nil {
				errs[ci] = err
			}
		}
	})
	for _, err := range errs {
		if err != nil {
			return err
		}
	}

	gb.SetFitted()
	return nil
}

func (gb *GradientBoosting) fitClass(X mat.Matrix, labels []int, cls int, candidates [][]float64) error {
	r, c := X.Dims()

	target := make([]float64, r)
	pos := 0
	for i, l := range labels {
		if l == cls {
			target[i] = 1
			pos++
		}
	}
	base := float64(pos) / float64(r)
	if base < 1e-3 {
		base = 1e-3
	}
	if base > 1-1e-3 {
		base = 1 - 1e-3
	}
	gb.initscore[cls] = math.Log(base / (1 - base))

	score := make([]float64, r)
	for i := range score {
		score[i] = gb.initscore[cls]
	}

	residual := make([]float64, r)
	for m := 0; m < gb.NEstimators; m++ {
		for i := 0; i < r; i++ {
			residual[i] = target[i] - sigmoid(score[i])
		}

		best := stump{feature: -1}
		bestSSE := math.MaxFloat64
		for j := 0; j < c; j++ {
			for _, thr := range candidates[j] {
				leftSum, rightSum := 0.0, 0.0
				leftN, rightN := 0, 0
				for i := 0; i < r; i++ {
					if X.At(i, j) <= thr {
						leftSum += residual[i]
						leftN++
					} else {
						rightSum += residual[i]
						rightN++
					}
				}
				if leftN < gb.MinSamplesLeaf || rightN < gb.MinSamplesLeaf {
					continue
				}
				leftAvg := leftSum / float64(leftN)
				rightAvg := rightSum / float64(rightN)

				sse := 0.0
				for i := 0; i < r; i++ {
					var d float64
					if X.At(i, j) <= thr {
						d = residual[i] - leftAvg
					} else {
						d = residual[i] - rightAvg
					}
					sse += d * d
				}
				if sse < bestSSE {
					bestSSE = sse
					best = stump{feature: j, threshold: thr, leftVal: leftAvg, rightVal: rightAvg}
				}
			}
		}
		if best.feature < 0 {
			break
		}

		gb.rounds[cls] = append(gb.rounds[cls], best)
		for i := 0; i < r; i++ {
			if X.At(i, best.feature) <= best.threshold {
				score[i] += gb.LearningRate * best.leftVal
			} else {
				score[i] += gb.LearningRate * best.rightVal
			}
		}
	}

	if len(gb.rounds[cls]) == 0 {
		return errors.NewModelError("GradientBoosting.Fit", "no usable split found", nil)
	}
	return nil
}

// Predict assigns each record to the class with the highest boosted score.
func (gb *GradientBoosting) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !gb.IsFitted() {
		return nil, errors.NewNotFittedError("GradientBoosting", "Predict")
	}
	r, c := X.Dims()
	if c != gb.nFeatures {
		return nil, errors.NewDimensionError("GradientBoosting.Predict", gb.nFeatures, c, 1)
	}

	out := mat.NewDense(r, 1, nil)
	for i := 0; i < r; i++ {
		bestClass := gb.classes[0]
		bestScore := math.Inf(-1)
		for _, cls := range gb.classes {
			s := gb.initscore[cls]
			for _, st := range gb.rounds[cls] {
				if X.At(i, st.feature) <= st.threshold {
					s += gb.LearningRate * st.leftVal
				} else {
					s += gb.LearningRate * st.rightVal
				}
			}
			if s > bestScore {
				bestScore = s
				bestClass = cls
			}
		}
		out.Set(i, 0, float64(bestClass))
	}
	return out, nil
}

// quantileThresholds returns up to n cut points at quantiles of column j.
func quantileThresholds(X mat.Matrix, j, n int) []float64 {
	if n <= 0 {
		n = 16
	}
	r, _ := X.Dims()
	vals := make([]float64, r)
	for i := 0; i < r; i++ {
		vals[i] = X.At(i, j)
	}
	sort.Float64s(vals)

	out := make([]float64, 0, n)
	for k := 1; k < n; k++ {
		i := int(math.Round(float64(k) / float64(n) * float64(r-1)))
		if i <= 0 || i >= r {
			continue
		}
		thr := vals[i]
		if len(out) == 0 || thr != out[len(out)-1] {
			out = append(out, thr)
		}
	}
	return out
}
