// Package modelselection provides the stratified k-fold splitter and the
// cross-validating trainer shared by every modeling method. Fold assignment
// is derived from the seed and the labels alone, so two methods trained with
// the same seed see identical folds and their per-fold accuracies can be
// compared pairwise.
package modelselection

import (
	"math/rand/v2"
	"sort"
)

// Fold holds the record indices for one cross-validation round.
type Fold struct {
	TrainIndices []int
	TestIndices  []int
}

// StratifiedKFold splits labeled data into k label-stratified folds.
type StratifiedKFold struct {
	NSplits int
	Seed    uint64
}

// NewStratifiedKFold creates a stratified k-fold splitter.
func NewStratifiedKFold(nSplits int, seed uint64) *StratifiedKFold {
	if nSplits < 2 {
		nSplits = 10
	}
	return &StratifiedKFold{NSplits: nSplits, Seed: seed}
}

// Split assigns each record to exactly one held-out fold, keeping class
// proportions. Each class shuffles its indices with a PCG stream keyed by
// (Seed, class), so the assignment does not depend on anything but the seed
// and the labels.
func (skf *StratifiedKFold) Split(labels []int, nClasses int) []Fold {
	byClass := make([][]int, nClasses)
	for i, c := range labels {
		byClass[c] = append(byClass[c], i)
	}

	folds := make([]Fold, skf.NSplits)
	for c, indices := range byClass {
		r := rand.New(rand.NewPCG(skf.Seed, uint64(c)+1))
		shuffled := make([]int, len(indices))
		copy(shuffled, indices)
		r.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		foldSize := len(shuffled) / skf.NSplits
		remainder := len(shuffled) % skf.NSplits
		cur := 0
		for f := 0; f < skf.NSplits; f++ {
			take := foldSize
			if f < remainder {
				take++
			}
			folds[f].TestIndices = append(folds[f].TestIndices, shuffled[cur:cur+take]...)
			cur += take
		}
	}

	n := len(labels)
	for f := range folds {
		sort.Ints(folds[f].TestIndices)
		inTest := make(map[int]bool, len(folds[f].TestIndices))
		for _, idx := range folds[f].TestIndices {
			inTest[idx] = true
		}
		folds[f].TrainIndices = make([]int, 0, n-len(folds[f].TestIndices))
		for i := 0; i < n; i++ {
			if !inTest[i] {
				folds[f].TrainIndices = append(folds[f].TrainIndices, i)
			}
		}
	}

	return folds
}
