package ensemble

import (
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestGradientBoostingSeparableData(t *testing.T) {
	X, y := blobs(30, 5)
	gb := NewGradientBoosting()
	gb.NEstimators = 30
	if err := gb.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	pred, err := gb.Predict(X)
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if acc := trainAccuracy(t, pred, y); acc < 0.95 {
		t.Errorf("training accuracy = %v, want >= 0.95", acc)
	}
	if got := gb.Classes(); len(got) != 3 {
		t.Errorf("Classes() = %v, want 3 classes", got)
	}
}

func TestGradientBoostingDeterministic(t *testing.T) {
	X, y := blobs(15, 6)

	fit := func() []float64 {
		gb := NewGradientBoosting()
		gb.NEstimators = 10
		if err := gb.Fit(X, y); err != nil {
			t.Fatalf("Fit() error = %v", err)
		}
		pred, err := gb.Predict(X)
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

func TestGradientBoostingErrors(t *testing.T) {
	gb := NewGradientBoosting()
	if _, err := gb.Predict(mat.NewDense(1, 2, nil)); err == nil {
		t.Error("Predict() before Fit() should error")
	}
	if err := gb.Fit(&mat.Dense{}, &mat.Dense{}); err == nil {
		t.Error("Fit() with empty data should error")
	}

	X, y := blobs(10, 7)
	if err := gb.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	if _, err := gb.Predict(mat.NewDense(1, 4, nil)); err == nil {
		t.Error("Predict() with wrong feature count should error")
	}
}

func TestQuantileThresholds(t *testing.T) {
	X := mat.NewDense(8, 1, []float64{1, 1, 2, 2, 3, 3, 4, 4})
	thr := quantileThresholds(X, 0, 4)
	if len(thr) == 0 {
		t.Fatal("no thresholds produced")
	}
	for i := 1; i < len(thr); i++ {
		if thr[i] <= thr[i-1] {
			t.Errorf("thresholds not strictly increasing: %v", thr)
		}
	}
	for _, v := range thr {
		if v < 1 || v > 4 {
			t.Errorf("threshold %v outside data range", v)
		}
	}
}
