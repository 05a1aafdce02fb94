package vectordb

// Float32s converts a []float64 query vector to the []float32 most indexes expect
func Float32s(v []float64) []float32 {
	result := make([]float32, len(v))
	for i, val := range v {
		result[i] = float32(val)
	}
	return result
}
