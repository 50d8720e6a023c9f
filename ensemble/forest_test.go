package ensemble

import (
	"math/rand/v2"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// blobs generates three well-separated clusters, one per class.
func blobs(n int, seed uint64) (*mat.Dense, *mat.Dense) {
	r := rand.New(rand.NewPCG(seed, 0))
	X := mat.NewDense(3*n, 2, nil)
	y := mat.NewDense(3*n, 1, nil)
	centers := [][2]float64{{0, 0}, {10, 0}, {0, 10}}
	for c := 0; c < 3; c++ {
		for k := 0; k < n; k++ {
			i := c*n + k
			X.Set(i, 0, centers[c][0]+r.NormFloat64())
			X.Set(i, 1, centers[c][1]+r.NormFloat64())
			y.Set(i, 0, float64(c))
		}
	}
	return X, y
}

func trainAccuracy(t *testing.T, pred mat.Matrix, y *mat.Dense) float64 {
	t.Helper()
	r, _ := y.Dims()
	correct := 0
	for i := 0; i < r; i++ {
		if pred.At(i, 0) == y.At(i, 0) {
			correct++
		}
	}
	return float64(correct) / float64(r)
}

func TestRandomForestSeparableData(t *testing.T) {
	X, y := blobs(30, 1)
	rf := NewRandomForest(42)
	rf.NEstimators = 20
	if err := rf.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	pred, err := rf.Predict(X)
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if acc := trainAccuracy(t, pred, y); acc < 0.95 {
		t.Errorf("training accuracy = %v, want >= 0.95", acc)
	}
	if got := rf.Classes(); len(got) != 3 {
		t.Errorf("Classes() = %v, want 3 classes", got)
	}
}

func TestRandomForestReproducible(t *testing.T) {
	X, y := blobs(20, 2)

	fit := func() []float64 {
		rf := NewRandomForest(99)
		rf.NEstimators = 15
		if err := rf.Fit(X, y); err != nil {
			t.Fatalf("Fit() error = %v", err)
		}
		pred, err := rf.Predict(X)
		if err != nil {
			t.Fatalf("Predict() error = %v", err)
		}
		r, _ := pred.Dims()
		out := make([]float64, r)
		for i := range out {
			out[i] = pred.At(i, 0)
		}
		return out
	}

	a, b := fit(), fit()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("prediction %d differs between identical runs", i)
		}
	}
}

func TestRandomForestErrors(t *testing.T) {
	rf := NewRandomForest(1)
	if _, err := rf.Predict(mat.NewDense(1, 2, nil)); err == nil {
		t.Error("Predict() before Fit() should error")
	}
	if err := rf.Fit(&mat.Dense{}, &mat.Dense{}); err == nil {
		t.Error("Fit() with empty data should error")
	}

	rf.NEstimators = 0
	X, y := blobs(5, 3)
	if err := rf.Fit(X, y); err == nil {
		t.Error("Fit() with zero estimators should error")
	}
}

func TestRandomForestFeatureImportance(t *testing.T) {
	X, y := blobs(20, 4)
	rf := NewRandomForest(7)
	rf.NEstimators = 10
	if err := rf.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	imp := rf.FeatureImportance()
	if len(imp) != 2 {
		t.Fatalf("FeatureImportance() length = %d, want 2", len(imp))
	}
	for j, v := range imp {
		if v < 0 {
			t.Errorf("importance[%d] = %v, want >= 0", j, v)
		}
	}
}
