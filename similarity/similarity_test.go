package similarity

import (
	"math"
	"testing"
)

func TestSimilarityFunctions(t *testing.T) {
	vec1 := []float32{1, 0, 0}
	vec2 := []float32{0, 1, 0}
	vec3 := []float32{1, 0, 0} // Same as vec1

	t.Run("CosineSimilarity", func(t *testing.T) {
		// Orthogonal vectors should score 0
		sim := CosineSimilarity(vec1, vec2)
		if sim != 0 {
			t.Errorf("Expected 0, got %f", sim)
		}

		// Identical vectors should score 1
		sim = CosineSimilarity(vec1, vec3)
		if math.Abs(float64(sim-1)) > 0.001 {
			t.Errorf("Expected 1, got %f", sim)
		}

		sim = CosineSimilarity([]float32{}, []float32{})
		if sim != 0 {
			t.Errorf("Expected 0 for empty vectors, got %f", sim)
		}

		sim = CosineSimilarity(vec1, []float32{1, 0})
		if sim != 0 {
			t.Errorf("Expected 0 for different length vectors, got %f", sim)
		}
	})

	t.Run("DotProductSimilarity", func(t *testing.T) {
		sim := DotProductSimilarity(vec1, vec2)
		if sim != 0 {
			t.Errorf("Expected 0, got %f", sim)
		}

		sim = DotProductSimilarity([]float32{2, 3}, []float32{4, 5})
		if sim != 23 {
			t.Errorf("Expected 23, got %f", sim)
		}
	})

	t.Run("EuclideanSimilarity", func(t *testing.T) {
		sim := EuclideanSimilarity(vec1, vec3)
		if sim != 1 {
			t.Errorf("Expected 1, got %f", sim)
		}

		sim = EuclideanSimilarity(vec1, vec2)
		if sim >= 1 {
			t.Errorf("Expected < 1, got %f", sim)
		}

		sim = EuclideanSimilarity([]float32{}, []float32{})
		if sim != 0 {
			t.Errorf("Expected 0 for empty vectors, got %f", sim)
		}
	})

	t.Run("ManhattanSimilarity", func(t *testing.T) {
		sim := ManhattanSimilarity(vec1, vec3)
		if sim != 1 {
			t.Errorf("Expected 1, got %f", sim)
		}

		// Distance 2 between unit vectors on different axes
		sim = ManhattanSimilarity(vec1, vec2)
		if math.Abs(float64(sim)-1.0/3.0) > 0.001 {
			t.Errorf("Expected 1/3, got %f", sim)
		}
	})

	t.Run("PearsonCorrelationSimilarity", func(t *testing.T) {
		a := []float32{1, 2, 3, 4}
		b := []float32{2, 4, 6, 8} // Perfectly correlated with a

		sim := PearsonCorrelationSimilarity(a, b)
		if math.Abs(float64(sim-1)) > 0.001 {
			t.Errorf("Expected 1, got %f", sim)
		}

		c := []float32{4, 3, 2, 1} // Perfectly anti-correlated
		sim = PearsonCorrelationSimilarity(a, c)
		if math.Abs(float64(sim+1)) > 0.001 {
			t.Errorf("Expected -1, got %f", sim)
		}

		// Constant vector has zero variance
		sim = PearsonCorrelationSimilarity(a, []float32{5, 5, 5, 5})
		if sim != 0 {
			t.Errorf("Expected 0 for constant vector, got %f", sim)
		}
	})
}
