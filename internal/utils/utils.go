package utils

import (
	"errors"
	"fmt"
	"slices"

	"golang.org/x/exp/constraints"
)

var ErrShapeMismatch = errors.New("shape mismatch")

type Number interface {
	constraints.Float | constraints.Integer
}

func Average[T Number](s []T) (mean float64) {
	for i := range s {
		mean += float64(s[i])
	}
	mean /= float64(len(s))
	return
}

func MeanAndVariance[T Number](s []T, unbiased bool) (mean, variance float64) {
	mean = Average(s)
	for i := range s {
		variance += (float64(s[i]) - mean) * (float64(s[i]) - mean)
	}
	if unbiased {
		variance /= float64(len(s) - 1)
	} else {
		variance /= float64(len(s))
	}
	return
}

// RepeatSingletons brings every column to a common length. Columns of length
// one are replicated; any other disagreement is ErrShapeMismatch.
func RepeatSingletons(cols ...[]float64) ([][]float64, error) {
	n := 0
	for i := range cols {
		n = max(n, len(cols[i]))
	}
	out := make([][]float64, len(cols))
	for i := range cols {
		switch len(cols[i]) {
		case n:
			out[i] = slices.Clone(cols[i])
		case 1:
			out[i] = make([]float64, n)
			for j := range n {
				out[i][j] = cols[i][0]
			}
		default:
			return nil, fmt.Errorf("column %d has length %d, want %d or 1: %w", i, len(cols[i]), n, ErrShapeMismatch)
		}
	}
	return out, nil
}

func Intersect(a, b []string) *string {
	for i := range a {
		if slices.Contains(b, a[i]) {
			return &a[i]
		}
	}
	return nil
}

func IntAbs(a int) int {
	if a < 0 {
		return -a
	}
	return a
}
