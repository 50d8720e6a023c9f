package discriminant

import (
	"math/rand/v2"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/jhsdatascience/pml-project/pkg/errors"
)

func gaussians(n int, seed uint64) (*mat.Dense, *mat.Dense) {
	r := rand.New(rand.NewPCG(seed, 0))
	X := mat.NewDense(3*n, 2, nil)
	y := mat.NewDense(3*n, 1, nil)
	centers := [][2]float64{{0, 0}, {8, 0}, {0, 8}}
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

func TestLinearDiscriminantSeparableData(t *testing.T) {
	X, y := gaussians(40, 1)
	ld := NewLinearDiscriminant()
	if err := ld.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	pred, err := ld.Predict(X)
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	r, _ := X.Dims()
	correct := 0
	for i := 0; i < r; i++ {
		if pred.At(i, 0) == y.At(i, 0) {
			correct++
		}
	}
	if acc := float64(correct) / float64(r); acc < 0.95 {
		t.Errorf("training accuracy = %v, want >= 0.95", acc)
	}
	if got := ld.Classes(); len(got) != 3 {
		t.Errorf("Classes() = %v, want 3 classes", got)
	}
}

func TestLinearDiscriminantDeterministic(t *testing.T) {
	X, y := gaussians(20, 2)

	fit := func() []float64 {
		ld := NewLinearDiscriminant()
		if err := ld.Fit(X, y); err != nil {
			t.Fatalf("Fit() error = %v", err)
		}
		pred, err := ld.Predict(X)
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

func TestLinearDiscriminantErrors(t *testing.T) {
	ld := NewLinearDiscriminant()
	if _, err := ld.Predict(mat.NewDense(1, 2, nil)); err == nil {
		t.Error("Predict() before Fit() should error")
	}
	if err := ld.Fit(&mat.Dense{}, &mat.Dense{}); err == nil {
		t.Error("Fit() with empty data should error")
	}

	// Two records, two classes: no residual degrees of freedom.
	X := mat.NewDense(2, 1, []float64{0, 1})
	y := mat.NewDense(2, 1, []float64{0, 1})
	if err := ld.Fit(X, y); err == nil {
		t.Error("Fit() with fewer records than classes+1 should error")
	}
}

func TestLinearDiscriminantSingularCovariance(t *testing.T) {
	// Duplicate columns: without the ridge the pooled covariance is singular.
	X := mat.NewDense(6, 2, []float64{
		1, 1, 2, 2, 3, 3,
		4, 4, 5, 5, 6, 6,
	})
	y := mat.NewDense(6, 1, []float64{0, 0, 0, 1, 1, 1})

	ld := NewLinearDiscriminant()
	ld.Ridge = 0
	err := ld.Fit(X, y)
	if err == nil {
		t.Skip("factorization tolerated exactly singular covariance")
	}
	if !errors.Is(err, errors.ErrSingularMatrix) {
		t.Errorf("Fit() error = %v, want ErrSingularMatrix", err)
	}

	// With the default ridge the same data must fit.
	ld2 := NewLinearDiscriminant()
	if err := ld2.Fit(X, y); err != nil {
		t.Errorf("Fit() with ridge error = %v", err)
	}
}
