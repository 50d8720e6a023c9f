// Package compare aggregates cross-validation results across models, ranks
// them and tests whether accuracy differences are statistically meaningful.
// All pairwise statistics are paired by fold index, which is valid because
// every model was trained under the identical fold assignment.
package compare

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/jhsdatascience/pml-project/modelselection"
	"github.com/jhsdatascience/pml-project/pkg/errors"
)

// DefaultConfidenceLevel is the confidence level for pairwise accuracy-
// difference intervals.
const DefaultConfidenceLevel = 0.995

// Pairwise holds the paired accuracy-difference statistics for one model
// pair (A minus B).
type Pairwise struct {
	ModelA, ModelB string
	MeanDiff       float64
	Lower, Upper   float64
	TStatistic     float64
	PValue         float64

	// Computable is false when the paired differences have zero variance,
	// in which case the interval and test are reported as not computable
	// instead of a misleading number.
	Computable bool
}

// Report is the immutable outcome of a model comparison.
type Report struct {
	// Ranking lists model names by descending mean accuracy. Ties break by
	// lower standard deviation, then lower total training time.
	Ranking []string

	// Results maps model name to its cross-validation result.
	Results map[string]*modelselection.CVResult

	// Failures maps model name to its training error. A non-empty map marks
	// the comparison as incomplete.
	Failures map[string]error

	// Pairwise holds one entry per unordered model pair, A ranked above B.
	Pairwise []Pairwise

	// TopPair is the paired t-test between the two top-ranked models, nil
	// when fewer than two models trained successfully.
	TopPair *Pairwise

	// Selected is the top-ranked model.
	Selected string

	// ConfidenceLevel is the level used for the pairwise intervals.
	ConfidenceLevel float64
}

// Incomplete reports whether any model failed to train.
func (r *Report) Incomplete() bool {
	return len(r.Failures) > 0
}

// Compare ranks the successfully trained models and computes pairwise
// paired-difference confidence intervals. failures may be nil.
func Compare(results map[string]*modelselection.CVResult, failures map[string]error, confidenceLevel float64) (*Report, error) {
	if len(results) == 0 {
		return nil, errors.NewValueError("Compare", "no cross-validation results")
	}
	if confidenceLevel == 0 {
		confidenceLevel = DefaultConfidenceLevel
	}
	if confidenceLevel <= 0 || confidenceLevel >= 1 {
		return nil, errors.NewValidationError("confidenceLevel", "must be in (0, 1)", confidenceLevel)
	}

	nFolds := -1
	for name, res := range results {
		if nFolds < 0 {
			nFolds = len(res.FoldAccuracies)
		} else if len(res.FoldAccuracies) != nFolds {
			return nil, errors.NewDimensionError("Compare: "+name, nFolds, len(res.FoldAccuracies), 0)
		}
	}

	report := &Report{
		Results:         results,
		Failures:        failures,
		ConfidenceLevel: confidenceLevel,
	}

	report.Ranking = make([]string, 0, len(results))
	for name := range results {
		report.Ranking = append(report.Ranking, name)
	}
	sort.Slice(report.Ranking, func(i, j int) bool {
		a := results[report.Ranking[i]]
		b := results[report.Ranking[j]]
		if a.Mean != b.Mean {
			return a.Mean > b.Mean
		}
		if a.Std != b.Std {
			return a.Std < b.Std
		}
		if a.TotalTime != b.TotalTime {
			return a.TotalTime < b.TotalTime
		}
		return report.Ranking[i] < report.Ranking[j]
	})
	report.Selected = report.Ranking[0]

	for i := 0; i < len(report.Ranking); i++ {
		for j := i + 1; j < len(report.Ranking); j++ {
			nameA, nameB := report.Ranking[i], report.Ranking[j]
			pw := pairedComparison(nameA, nameB,
				results[nameA].FoldAccuracies, results[nameB].FoldAccuracies,
				confidenceLevel)
			report.Pairwise = append(report.Pairwise, pw)
			if i == 0 && j == 1 {
				top := pw
				report.TopPair = &top
			}
		}
	}

	return report, nil
}

// pairedComparison computes the mean fold-accuracy difference A-B, its
// confidence interval and a paired Student's t-test.
func pairedComparison(nameA, nameB string, accA, accB []float64, confidenceLevel float64) Pairwise {
	n := len(accA)
	diffs := make([]float64, n)
	for i := range diffs {
		diffs[i] = accA[i] - accB[i]
	}

	meanDiff := stat.Mean(diffs, nil)
	sd := stat.StdDev(diffs, nil)

	pw := Pairwise{
		ModelA:   nameA,
		ModelB:   nameB,
		MeanDiff: meanDiff,
	}

	if sd == 0 || n < 2 {
		errors.Warn(errors.NewDegenerateVarianceWarning(nameA, nameB))
		return pw
	}

	df := float64(n - 1)
	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	alpha := 1 - confidenceLevel
	tCritical := tDist.Quantile(1 - alpha/2)

	se := sd / math.Sqrt(float64(n))
	pw.Lower = meanDiff - tCritical*se
	pw.Upper = meanDiff + tCritical*se
	pw.TStatistic = meanDiff / se
	pw.PValue = 2 * (1 - tDist.CDF(math.Abs(pw.TStatistic)))
	pw.Computable = true
	return pw
}
