package embeddings

// fitDimensions pads a vector with zeros or truncates it so every provider's
// output compares in the same space. Zero padding does not change cosine
// similarity between vectors from the same provider.
func fitDimensions(vec []float32, target int) []float32 {
	switch {
	case len(vec) == target:
		return vec
	case len(vec) > target:
		return vec[:target]
	default:
		padded := make([]float32, target)
		copy(padded, vec)

		return padded
	}
}
