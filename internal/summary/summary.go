// Package summary turns the raw outputs of an experiment group's randomized
// runs into one summary row per run, a mean row and the representative run.
package summary

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/floats"

	"github.com/signalnine/trafficlab/internal/metrics"
	"github.com/signalnine/trafficlab/internal/tripinfo"
)

// GroupSeparator joins the sub-groups of a compound group, e.g.
// "dynamicpoststep2+dynamicsposttep2".
const GroupSeparator = "+"

// Row is one summary line. Values align with Schema.
type Row struct {
	Label  string    `json:"label"`
	Values []float64 `json:"values"`
}

// Value returns the row's value for the named column.
func (r Row) Value(column string) float64 {
	i := ColumnIndex(column)
	if i < 0 || i >= len(r.Values) {
		return 0
	}
	return r.Values[i]
}

// GroupReport is the finished table of one experiment group. The last row
// is the mean row; Representative indexes the runs closest to it.
type GroupReport struct {
	Group          string `json:"group"`
	Sheet          string `json:"sheet"`
	Rows           []Row  `json:"rows"`
	Representative []int  `json:"representative"`
}

// Runs returns the per-run rows, without the mean row.
func (g *GroupReport) Runs() []Row {
	if len(g.Rows) == 0 {
		return nil
	}
	return g.Rows[:len(g.Rows)-1]
}

// Mean returns the mean row.
func (g *GroupReport) Mean() Row {
	if len(g.Rows) == 0 {
		return Row{Label: MeanLabel}
	}
	return g.Rows[len(g.Rows)-1]
}

// IsRepresentative reports whether row i was selected.
func (g *GroupReport) IsRepresentative(i int) bool {
	return lo.Contains(g.Representative, i)
}

// RepresentativeLabels returns the labels of the selected rows.
func (g *GroupReport) RepresentativeLabels() []string {
	return lo.Map(g.Representative, func(i int, _ int) string { return g.Rows[i].Label })
}

// SubGroups splits a group name on GroupSeparator.
func SubGroups(group string) []string {
	return strings.Split(group, GroupSeparator)
}

// SheetName names a group's worksheet after its first sub-group.
func SheetName(group string) string {
	return SubGroups(group)[0] + "_Summary"
}

// RunLabel labels the i-th run (1-based).
func RunLabel(run int) string {
	return fmt.Sprintf("Sim_%d", run)
}

// BuildRow reduces one run's metrics against the expected vehicle set.
func BuildRow(label string, expected *tripinfo.ExpectedSet, rm *metrics.RunMetrics) Row {
	exp := metrics.IDSet(expected.IDs)
	avg := make(map[metrics.Metric]map[string]float64, len(metrics.AllMetrics))
	for _, m := range metrics.AllMetrics {
		avg[m] = metrics.Average(rm.Samples[m])
	}
	totalKm := metrics.TotalKilometers(rm.Samples[metrics.RouteLength])

	values := make([]float64, len(Schema))
	for i, col := range Schema {
		vt := string(col.Type)
		var v float64
		switch col.Kind {
		case TotalExpected:
			v = float64(len(exp))
		case TotalInserted:
			v = float64(len(rm.Inserted))
		case TotalCompleted:
			v = float64(len(rm.Completed))
		case TotalMissing:
			v = float64(exp.Minus(rm.Inserted))
		case TotalInsertedNotCompleted:
			v = float64(rm.Inserted.Minus(rm.Completed))
		case WeightedTimeLoss:
			v = metrics.WeightedAverageTimeLoss(rm.Samples[metrics.TimeLoss])
		case OverallSpeed:
			v = metrics.WeightedAverageSpeed(rm.Samples[metrics.RouteLength], rm.Samples[metrics.TravelTime])
		case TotalKilometersAll:
			v = totalKilometersAll(totalKm)
		case TypeExpected:
			v = float64(expected.Count(vt))
		case TypeCompleted:
			v = float64(len(rm.CompletedByType[vt]))
		case TypeMissing:
			v = float64(metrics.IDSet(expected.ByType[vt]).Minus(rm.CompletedByType[vt]))
		case TypeAvgTimeLoss:
			v = avg[metrics.TimeLoss][vt]
		case TypeAvgTravelTime:
			v = avg[metrics.TravelTime][vt]
		case TypeAvgWaitingTime:
			v = avg[metrics.WaitingTime][vt]
		case TypeAvgRouteLength:
			v = avg[metrics.RouteLength][vt]
		case TypeAvgSpeed:
			v = avg[metrics.Speed][vt]
		case TypeAvgDelay:
			v = avg[metrics.Delay][vt]
		case TypeTotalKilometers:
			v = totalKm[vt]
		}
		values[i] = v
	}
	return Row{Label: label, Values: values}
}

// totalKilometersAll sums the per-type totals in type order so the result
// does not depend on map iteration.
func totalKilometersAll(totalKm map[string]float64) float64 {
	keys := slices.Sorted(maps.Keys(totalKm))
	return metrics.Round2(floats.Sum(lo.Map(keys, func(k string, _ int) float64 { return totalKm[k] })))
}

// Summarize builds the report of one group over runs randomized runs.
func Summarize(expected *tripinfo.ExpectedSet, group string, runs int, in Inputs) (*GroupReport, error) {
	rows := make([]Row, 0, runs+1)
	for run := 1; run <= runs; run++ {
		rm, err := in.CollectRun(group, run)
		if err != nil {
			return nil, fmt.Errorf("group %s run %d: %w", group, run, err)
		}
		rows = append(rows, BuildRow(RunLabel(run), expected, rm))
	}
	mean := MeanRow(rows)
	rep := &GroupReport{
		Group:          group,
		Sheet:          SheetName(group),
		Representative: SelectRepresentative(Distances(rows, mean)),
	}
	rep.Rows = append(rows, mean)
	return rep, nil
}
