// Package metrics accumulates trip records of one randomized run and
// reduces them to per-vehicle-type statistics.
package metrics

import (
	"strconv"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/signalnine/trafficlab/internal/tripinfo"
)

type Metric int

const (
	TimeLoss Metric = iota
	TravelTime
	WaitingTime
	RouteLength
	Delay
	Speed
)

var AllMetrics = []Metric{TimeLoss, TravelTime, WaitingTime, RouteLength, Delay, Speed}

func (m Metric) String() string {
	switch m {
	case TimeLoss:
		return "time_loss"
	case TravelTime:
		return "travel_time"
	case WaitingTime:
		return "waiting_time"
	case RouteLength:
		return "route_length"
	case Delay:
		return "delay"
	case Speed:
		return "speed"
	default:
		return "unknown"
	}
}

// value extracts the metric from a record in its reporting unit: minutes for
// times, kilometers for length, km/h for speed.
func (m Metric) value(r tripinfo.TripRecord) float64 {
	switch m {
	case TimeLoss:
		return r.TimeLossMinutes()
	case TravelTime:
		return r.TravelTimeMinutes()
	case WaitingTime:
		return r.WaitingTimeMinutes()
	case RouteLength:
		return r.RouteLengthKm()
	case Delay:
		return r.DelayMinutes()
	case Speed:
		return r.SpeedKmh()
	}
	return 0
}

// PerType maps a normalized vehicle type to its samples in arrival order.
type PerType map[string][]float64

// IDSet is a set of vehicle ids.
type IDSet map[string]struct{}

func (s IDSet) Add(ids map[string]struct{}) {
	for id := range ids {
		s[id] = struct{}{}
	}
}

// Minus returns how many ids of s are not in other.
func (s IDSet) Minus(other IDSet) int {
	left, _ := lo.Difference(lo.Keys(s), lo.Keys(other))
	return len(left)
}

// RunMetrics is everything collected for one run of one group. Id sets
// deduplicate across constituent files while metric samples are pooled.
type RunMetrics struct {
	Inserted        IDSet
	Completed       IDSet
	CompletedByType map[string]IDSet
	Samples         map[Metric]PerType
}

func NewRunMetrics() *RunMetrics {
	rm := &RunMetrics{
		Inserted:        IDSet{},
		Completed:       IDSet{},
		CompletedByType: map[string]IDSet{},
		Samples:         make(map[Metric]PerType, len(AllMetrics)),
	}
	for _, m := range AllMetrics {
		rm.Samples[m] = PerType{}
	}
	return rm
}

func (rm *RunMetrics) AddInserted(ids map[string]struct{}) {
	rm.Inserted.Add(ids)
}

// AddTrips folds the usable entries and ignores skipped ones.
func (rm *RunMetrics) AddTrips(entries []tripinfo.Entry) (folded, skipped int) {
	for _, e := range entries {
		if e.Skipped() {
			skipped++
			continue
		}
		r := e.Record
		rm.Completed[r.ID] = struct{}{}
		rm.completedOf(r.Type)[r.ID] = struct{}{}
		for _, m := range AllMetrics {
			rm.Samples[m][r.Type] = append(rm.Samples[m][r.Type], m.value(r))
		}
		folded++
	}
	return folded, skipped
}

// Merge unions other's id sets into rm and appends its samples.
func (rm *RunMetrics) Merge(other *RunMetrics) {
	rm.Inserted.Add(other.Inserted)
	rm.Completed.Add(other.Completed)
	for vt, ids := range other.CompletedByType {
		rm.completedOf(vt).Add(ids)
	}
	for _, m := range AllMetrics {
		for vt, vals := range other.Samples[m] {
			rm.Samples[m][vt] = append(rm.Samples[m][vt], vals...)
		}
	}
}

func (rm *RunMetrics) completedOf(vtype string) IDSet {
	s, ok := rm.CompletedByType[vtype]
	if !ok {
		s = IDSet{}
		rm.CompletedByType[vtype] = s
	}
	return s
}

// Round2 rounds to two decimals, ties resolved on the exact binary value
// (round-half-even), matching how the reference workbooks were produced.
func Round2(x float64) float64 {
	v, _ := strconv.ParseFloat(strconv.FormatFloat(x, 'f', 2, 64), 64)
	return v
}

// Average returns each type's mean rounded to two decimals; empty lists
// average to zero.
func Average(values PerType) map[string]float64 {
	out := make(map[string]float64, len(values))
	for vt, vals := range values {
		if len(vals) == 0 {
			out[vt] = 0
			continue
		}
		out[vt] = Round2(stat.Mean(vals, nil))
	}
	return out
}

// WeightedAverageTimeLoss combines per-type means weighted by their sample
// counts.
func WeightedAverageTimeLoss(timeLoss PerType) float64 {
	var weighted float64
	var total int
	for _, vals := range timeLoss {
		n := len(vals)
		if n == 0 {
			continue
		}
		weighted += stat.Mean(vals, nil) * float64(n)
		total += n
	}
	if total == 0 {
		return 0
	}
	return Round2(weighted / float64(total))
}

// TotalKilometers sums each type's route lengths.
func TotalKilometers(routeKm PerType) map[string]float64 {
	out := make(map[string]float64, len(routeKm))
	for vt, vals := range routeKm {
		out[vt] = Round2(floats.Sum(vals))
	}
	return out
}

// WeightedAverageSpeed is total distance over total travel time, in km/h.
// travelMin holds durations in minutes.
func WeightedAverageSpeed(routeKm, travelMin PerType) float64 {
	var km, minutes float64
	for _, vals := range routeKm {
		km += floats.Sum(vals)
	}
	for _, vals := range travelMin {
		minutes += floats.Sum(vals)
	}
	hours := minutes / 60
	if hours <= 0 {
		return 0
	}
	return Round2(km / hours)
}
