package summary

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// MeanRow averages every numeric column over rows.
func MeanRow(rows []Row) Row {
	mean := Row{Label: MeanLabel, Values: make([]float64, len(Schema))}
	if len(rows) == 0 {
		return mean
	}
	col := make([]float64, len(rows))
	for c := range Schema {
		for r, row := range rows {
			col[r] = row.Values[c]
		}
		mean.Values[c] = stat.Mean(col, nil)
	}
	return mean
}

// Distances returns each row's L1 distance to mean.
func Distances(rows []Row, mean Row) []float64 {
	out := make([]float64, len(rows))
	for i, row := range rows {
		var d float64
		for c, v := range row.Values {
			d += math.Abs(v - mean.Values[c])
		}
		out[i] = d
	}
	return out
}

// SelectRepresentative returns every index achieving the minimum distance,
// in ascending order.
func SelectRepresentative(distances []float64) []int {
	if len(distances) == 0 {
		return nil
	}
	min := math.Inf(1)
	for _, d := range distances {
		if d < min {
			min = d
		}
	}
	var idx []int
	for i, d := range distances {
		if d == min {
			idx = append(idx, i)
		}
	}
	return idx
}
