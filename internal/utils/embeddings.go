package utils

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrEmptyVector        = errors.New("vectors cannot be empty")
	ErrDimensionsMismatch = errors.New("vectors must have the same dimension")
)

// CosineSimilarity returns the cosine of the angle between two vectors.
// A zero-magnitude vector has similarity 0 with everything.
func CosineSimilarity(vec1, vec2 []float32) (float64, error) {
	if len(vec1) == 0 || len(vec2) == 0 {
		return 0, ErrEmptyVector
	}
	if len(vec1) != len(vec2) {
		return 0, fmt.Errorf("%w: %d != %d", ErrDimensionsMismatch, len(vec1), len(vec2))
	}

	var dot, sq1, sq2 float64
	for i := range vec1 {
		a, b := float64(vec1[i]), float64(vec2[i])
		dot += a * b
		sq1 += a * a
		sq2 += b * b
	}
	if sq1 == 0 || sq2 == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(sq1) * math.Sqrt(sq2)), nil
}

// CosineDistance is 1 - CosineSimilarity, the same measure pgvector's <=>
// operator orders by.
func CosineDistance(vec1, vec2 []float32) (float64, error) {
	sim, err := CosineSimilarity(vec1, vec2)
	if err != nil {
		return 0, err
	}
	return 1 - sim, nil
}
