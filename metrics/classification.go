// Package metrics provides the classification metrics used for fold scoring
// and holdout evaluation.
package metrics

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/jhsdatascience/pml-project/pkg/errors"
)

// Accuracy returns the fraction of matching entries in two n×1 matrices of
// class indices.
func Accuracy(yTrue, yPred mat.Matrix) (float64, error) {
	r, _ := yTrue.Dims()
	rp, _ := yPred.Dims()
	if r == 0 {
		return 0, errors.NewValueError("Accuracy", "empty input")
	}
	if rp != r {
		return 0, errors.NewDimensionError("Accuracy", r, rp, 0)
	}

	correct := 0
	for i := 0; i < r; i++ {
		if int(yTrue.At(i, 0)) == int(yPred.At(i, 0)) {
			correct++
		}
	}
	return float64(correct) / float64(r), nil
}

// ConfusionMatrix is a class × class count table. Rows are actual classes,
// columns are predicted classes, both in the canonical class order.
type ConfusionMatrix struct {
	Classes []string
	Counts  [][]int
}

// NewConfusionMatrix tallies predictions against true labels. Class indices
// outside [0, len(classes)) are a dimension error.
func NewConfusionMatrix(yTrue, yPred mat.Matrix, classes []string) (*ConfusionMatrix, error) {
	r, _ := yTrue.Dims()
	rp, _ := yPred.Dims()
	if r == 0 {
		return nil, errors.NewValueError("NewConfusionMatrix", "empty input")
	}
	if rp != r {
		return nil, errors.NewDimensionError("NewConfusionMatrix", r, rp, 0)
	}

	k := len(classes)
	counts := make([][]int, k)
	for i := range counts {
		counts[i] = make([]int, k)
	}
	for i := 0; i < r; i++ {
		actual := int(yTrue.At(i, 0))
		predicted := int(yPred.At(i, 0))
		if actual < 0 || actual >= k || predicted < 0 || predicted >= k {
			return nil, errors.NewValueError("NewConfusionMatrix",
				fmt.Sprintf("class index out of range at row %d", i))
		}
		counts[actual][predicted]++
	}
	return &ConfusionMatrix{Classes: classes, Counts: counts}, nil
}

// Total returns the number of scored records.
func (cm *ConfusionMatrix) Total() int {
	total := 0
	for _, row := range cm.Counts {
		for _, v := range row {
			total += v
		}
	}
	return total
}

// Correct returns the diagonal sum.
func (cm *ConfusionMatrix) Correct() int {
	correct := 0
	for i := range cm.Counts {
		correct += cm.Counts[i][i]
	}
	return correct
}

// Accuracy returns the diagonal sum over the total.
func (cm *ConfusionMatrix) Accuracy() float64 {
	total := cm.Total()
	if total == 0 {
		return 0
	}
	return float64(cm.Correct()) / float64(total)
}

// Misclassified returns the off-diagonal sum.
func (cm *ConfusionMatrix) Misclassified() int {
	return cm.Total() - cm.Correct()
}

// RowSums returns per-actual-class counts.
func (cm *ConfusionMatrix) RowSums() []int {
	sums := make([]int, len(cm.Counts))
	for i, row := range cm.Counts {
		for _, v := range row {
			sums[i] += v
		}
	}
	return sums
}

// ColSums returns per-predicted-class counts.
func (cm *ConfusionMatrix) ColSums() []int {
	sums := make([]int, len(cm.Counts))
	for _, row := range cm.Counts {
		for j, v := range row {
			sums[j] += v
		}
	}
	return sums
}

// String renders the matrix as an aligned text table with a Predicted/Actual
// header.
func (cm *ConfusionMatrix) String() string {
	var b strings.Builder
	b.WriteString("actual\\predicted")
	for _, c := range cm.Classes {
		fmt.Fprintf(&b, "\t%s", c)
	}
	b.WriteByte('\n')
	for i, row := range cm.Counts {
		b.WriteString(cm.Classes[i])
		for _, v := range row {
			fmt.Fprintf(&b, "\t%d", v)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// ClopperPearson returns the exact binomial confidence interval for
// successes out of trials at the given confidence level, via Beta quantiles.
func ClopperPearson(successes, trials int, confidence float64) (lower, upper float64, err error) {
	if trials <= 0 {
		return 0, 0, errors.NewValueError("ClopperPearson", "trials must be positive")
	}
	if successes < 0 || successes > trials {
		return 0, 0, errors.NewValidationError("successes", "must be in [0, trials]", successes)
	}
	if confidence <= 0 || confidence >= 1 {
		return 0, 0, errors.NewValidationError("confidence", "must be in (0, 1)", confidence)
	}

	alpha := 1 - confidence
	x := float64(successes)
	n := float64(trials)

	if successes == 0 {
		lower = 0
	} else {
		lower = distuv.Beta{Alpha: x, Beta: n - x + 1}.Quantile(alpha / 2)
	}
	if successes == trials {
		upper = 1
	} else {
		upper = distuv.Beta{Alpha: x + 1, Beta: n - x}.Quantile(1 - alpha/2)
	}
	return lower, upper, nil
}
