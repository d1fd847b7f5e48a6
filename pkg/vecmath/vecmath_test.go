package vecmath

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"identical direction", []float64{1, 2, 3}, []float64{2, 4, 6}, 1},
		{"opposite direction", []float64{1, 0}, []float64{-1, 0}, -1},
		{"orthogonal", []float64{1, 0}, []float64{0, 1}, 0},
		{"zero left vector", []float64{0, 0}, []float64{1, 2}, 0},
		{"zero right vector", []float64{1, 2}, []float64{0, 0}, 0},
		{"both zero", []float64{0, 0}, []float64{0, 0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Cosine(tt.a, tt.b); !almostEqual(got, tt.want) {
				t.Errorf("Cosine(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestCosine_Range(t *testing.T) {
	a := []float64{0.3, -1.7, 2.2, 0.01}
	b := []float64{-0.9, 0.4, 1.1, 3.5}

	got := Cosine(a, b)
	if got < -1 || got > 1 {
		t.Errorf("Cosine() = %v, outside [-1, 1]", got)
	}
}

func TestDot(t *testing.T) {
	if got := Dot([]float64{1, 2, 3}, []float64{4, 5, 6}); !almostEqual(got, 32) {
		t.Errorf("Dot() = %v, want 32", got)
	}
}

func TestNorm(t *testing.T) {
	if got := Norm([]float64{3, 4}); !almostEqual(got, 5) {
		t.Errorf("Norm() = %v, want 5", got)
	}
}
