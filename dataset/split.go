package dataset

import (
	"math/rand/v2"

	"github.com/jhsdatascience/pml-project/pkg/errors"
)

// StratifiedSplit partitions a labeled dataset into train and test subsets
// using stratified sampling on the label: each class contributes trainFrac of
// its records (to within one record) to the training side.
//
// The split is deterministic for a given seed. Each class shuffles its own
// record indices with a PCG stream derived from the seed and the class index,
// so the result does not depend on iteration order.
func StratifiedSplit(d *Dataset, trainFrac float64, seed uint64) (train, test *Dataset, err error) {
	if !d.IsLabeled() {
		return nil, nil, errors.NewValueError("StratifiedSplit", "dataset has no labels")
	}
	if trainFrac <= 0 || trainFrac >= 1 {
		return nil, nil, errors.NewValidationError("trainFrac", "must be in (0, 1)", trainFrac)
	}

	byClass := make([][]int, len(d.Classes))
	for i, c := range d.Labels {
		byClass[c] = append(byClass[c], i)
	}

	var trainIdx, testIdx []int
	for c, indices := range byClass {
		r := rand.New(rand.NewPCG(seed, uint64(c)+1))
		shuffled := make([]int, len(indices))
		copy(shuffled, indices)
		r.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		nTrain := int(trainFrac * float64(len(shuffled)))
		trainIdx = append(trainIdx, shuffled[:nTrain]...)
		testIdx = append(testIdx, shuffled[nTrain:]...)
	}

	return d.Subset(trainIdx), d.Subset(testIdx), nil
}
