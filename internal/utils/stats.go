package utils

import "gonum.org/v1/gonum/stat"

// ChiSq is the per-point chi-squared between a model and data:
// (1/N) * sum((fit - data)^2).
func ChiSq[T Number](fit, data []T) float64 {
	var sum float64
	for i := range fit {
		d := float64(fit[i]) - float64(data[i])
		sum += d * d
	}
	return sum / float64(len(fit))
}

// RSq is 1 - sum((data - fit)^2) / sum((data - mean(data))^2). Constant data
// gives a zero denominator and a non-finite result.
func RSq[T Number](fit, data []T) float64 {
	values := make([]float64, len(data))
	for i := range data {
		values[i] = float64(data[i])
	}
	mean := stat.Mean(values, nil)
	var residual, total float64
	for i := range values {
		d := values[i] - float64(fit[i])
		residual += d * d
		total += (values[i] - mean) * (values[i] - mean)
	}
	return 1 - residual/total
}
