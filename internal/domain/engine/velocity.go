package engine

import "gonum.org/v1/gonum/stat"

// linearSlope returns the unweighted least-squares slope of ys over xs.
func linearSlope(xs, ys []float64) float64 {
	_, beta := stat.LinearRegression(xs, ys, nil, false)
	return beta
}
