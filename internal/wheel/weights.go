package wheel

import "github.com/chrisdamba/whattoeat/internal/models"

// BuildPool lists each section index once per unit of its category weight.
// Categories missing from weights, or weighted below the minimum, count once.
func BuildPool(sections []models.WheelSection, weights models.CategoryWeights) []int {
	pool := make([]int, 0, len(sections)*models.MaxWeight)
	for i, section := range sections {
		w := weights[section.Category]
		if w < models.MinWeight {
			w = models.MinWeight
		}
		if w > models.MaxWeight {
			w = models.MaxWeight
		}
		for j := 0; j < w; j++ {
			pool = append(pool, i)
		}
	}
	return pool
}

// Probabilities is the chance of each section under weights, in section
// order.
func Probabilities(sections []models.WheelSection, weights models.CategoryWeights) []float64 {
	pool := BuildPool(sections, weights)
	probs := make([]float64, len(sections))
	for _, idx := range pool {
		probs[idx]++
	}
	for i := range probs {
		probs[i] /= float64(len(pool))
	}
	return probs
}
