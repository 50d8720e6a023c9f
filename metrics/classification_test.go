package metrics

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestAccuracy(t *testing.T) {
	tests := []struct {
		name    string
		yTrue   []float64
		yPred   []float64
		want    float64
		wantErr bool
	}{
		{name: "all correct", yTrue: []float64{0, 1, 2}, yPred: []float64{0, 1, 2}, want: 1},
		{name: "half correct", yTrue: []float64{0, 1, 0, 1}, yPred: []float64{0, 0, 1, 1}, want: 0.5},
		{name: "none correct", yTrue: []float64{0, 0}, yPred: []float64{1, 1}, want: 0},
		{name: "empty", yTrue: nil, yPred: nil, wantErr: true},
		{name: "length mismatch", yTrue: []float64{0, 1}, yPred: []float64{0}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Accuracy(column(tt.yTrue), column(tt.yPred))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Accuracy() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Accuracy() = %v, want %v", got, tt.want)
			}
		})
	}
}

func column(v []float64) mat.Matrix {
	if len(v) == 0 {
		return &mat.Dense{}
	}
	return mat.NewDense(len(v), 1, v)
}

func TestConfusionMatrix(t *testing.T) {
	yTrue := mat.NewDense(6, 1, []float64{0, 0, 1, 1, 2, 2})
	yPred := mat.NewDense(6, 1, []float64{0, 1, 1, 1, 2, 0})
	classes := []string{"A", "B", "C"}

	cm, err := NewConfusionMatrix(yTrue, yPred, classes)
	if err != nil {
		t.Fatalf("NewConfusionMatrix() error = %v", err)
	}

	wantCounts := [][]int{
		{1, 1, 0},
		{0, 2, 0},
		{1, 0, 1},
	}
	for i := range wantCounts {
		for j := range wantCounts[i] {
			if cm.Counts[i][j] != wantCounts[i][j] {
				t.Errorf("Counts[%d][%d] = %d, want %d", i, j, cm.Counts[i][j], wantCounts[i][j])
			}
		}
	}

	if got := cm.Total(); got != 6 {
		t.Errorf("Total() = %d, want 6", got)
	}
	if got := cm.Correct(); got != 4 {
		t.Errorf("Correct() = %d, want 4", got)
	}
	if got := cm.Misclassified(); got != 2 {
		t.Errorf("Misclassified() = %d, want 2", got)
	}
	if got := cm.Accuracy(); math.Abs(got-4.0/6.0) > 1e-12 {
		t.Errorf("Accuracy() = %v, want %v", got, 4.0/6.0)
	}

	rows := cm.RowSums()
	for i, want := range []int{2, 2, 2} {
		if rows[i] != want {
			t.Errorf("RowSums()[%d] = %d, want %d", i, rows[i], want)
		}
	}
	cols := cm.ColSums()
	for j, want := range []int{2, 3, 1} {
		if cols[j] != want {
			t.Errorf("ColSums()[%d] = %d, want %d", j, cols[j], want)
		}
	}
}

func TestConfusionMatrixOutOfRange(t *testing.T) {
	yTrue := mat.NewDense(1, 1, []float64{5})
	yPred := mat.NewDense(1, 1, []float64{0})
	if _, err := NewConfusionMatrix(yTrue, yPred, []string{"A", "B"}); err == nil {
		t.Error("want error for class index out of range")
	}
}

func TestClopperPearson(t *testing.T) {
	tests := []struct {
		name      string
		successes int
		trials    int
		conf      float64
		wantErr   bool
	}{
		{name: "typical", successes: 80, trials: 100, conf: 0.95},
		{name: "all successes", successes: 10, trials: 10, conf: 0.95},
		{name: "no successes", successes: 0, trials: 10, conf: 0.95},
		{name: "zero trials", trials: 0, conf: 0.95, wantErr: true},
		{name: "successes above trials", successes: 11, trials: 10, conf: 0.95, wantErr: true},
		{name: "bad confidence", successes: 1, trials: 10, conf: 1.5, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lower, upper, err := ClopperPearson(tt.successes, tt.trials, tt.conf)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ClopperPearson() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			p := float64(tt.successes) / float64(tt.trials)
			if lower < 0 || upper > 1 || lower > upper {
				t.Errorf("interval [%v, %v] malformed", lower, upper)
			}
			if p < lower-1e-9 || p > upper+1e-9 {
				t.Errorf("point estimate %v outside interval [%v, %v]", p, lower, upper)
			}
			if tt.successes == 0 && lower != 0 {
				t.Errorf("lower = %v, want 0 for zero successes", lower)
			}
			if tt.successes == tt.trials && upper != 1 {
				t.Errorf("upper = %v, want 1 for all successes", upper)
			}
		})
	}
}

func TestClopperPearsonWidensWithConfidence(t *testing.T) {
	l95, u95, err := ClopperPearson(80, 100, 0.95)
	if err != nil {
		t.Fatalf("ClopperPearson() error = %v", err)
	}
	l99, u99, err := ClopperPearson(80, 100, 0.99)
	if err != nil {
		t.Fatalf("ClopperPearson() error = %v", err)
	}
	if u99-l99 <= u95-l95 {
		t.Errorf("99%% interval [%v, %v] not wider than 95%% [%v, %v]", l99, u99, l95, u95)
	}
}
