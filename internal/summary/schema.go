package summary

import (
	"fmt"
	"strings"
)

// VehicleType is one of the vehicle classes that get their own columns.
type VehicleType string

const (
	Passenger VehicleType = "passenger"
	Truck     VehicleType = "truck"
	Bus       VehicleType = "bus"
)

var TrackedTypes = []VehicleType{Passenger, Truck, Bus}

func (v VehicleType) Title() string {
	if v == "" {
		return ""
	}
	return strings.ToUpper(string(v[:1])) + string(v[1:])
}

type ColumnKind int

const (
	TotalExpected ColumnKind = iota
	TotalInserted
	TotalCompleted
	TotalMissing
	TotalInsertedNotCompleted
	WeightedTimeLoss
	OverallSpeed
	TotalKilometersAll
	TypeExpected
	TypeCompleted
	TypeMissing
	TypeAvgTimeLoss
	TypeAvgTravelTime
	TypeAvgWaitingTime
	TypeAvgRouteLength
	TypeAvgSpeed
	TypeAvgDelay
	TypeTotalKilometers
)

var totalsLayout = []struct {
	kind ColumnKind
	name string
}{
	{TotalExpected, "Total Expected Vehicles"},
	{TotalInserted, "Total Inserted Vehicles"},
	{TotalCompleted, "Total Completed Vehicles"},
	{TotalMissing, "Total Missing Vehicles"},
	{TotalInsertedNotCompleted, "Total Inserted Not Completed"},
	{WeightedTimeLoss, "Weighted Avg TimeLoss (min)"},
	{OverallSpeed, "Overall Avg Speed (km/h)"},
	{TotalKilometersAll, "Total Kilometers Traveled (All)"},
}

// perTypeLayout holds name formats taking the vehicle type's title.
var perTypeLayout = []struct {
	kind   ColumnKind
	format string
}{
	{TypeExpected, "Expected %s"},
	{TypeCompleted, "Completed %s"},
	{TypeMissing, "Missing %s"},
	{TypeAvgTimeLoss, "Avg TimeLoss %s (min)"},
	{TypeAvgTravelTime, "Avg Travel Time %s (min)"},
	{TypeAvgWaitingTime, "Avg Waiting Time %s (min)"},
	{TypeAvgRouteLength, "Avg Route Length %s (km)"},
	{TypeAvgSpeed, "Avg Speed %s (km/h)"},
	{TypeAvgDelay, "Avg Delay %s (min)"},
	{TypeTotalKilometers, "Total Kilometers %s"},
}

// Column is one numeric column of a summary sheet. Type is empty for the
// all-vehicle totals.
type Column struct {
	Kind ColumnKind
	Type VehicleType
	Name string
}

// IsCount reports whether the column holds a vehicle count.
func (c Column) IsCount() bool {
	switch c.Kind {
	case TotalExpected, TotalInserted, TotalCompleted, TotalMissing, TotalInsertedNotCompleted,
		TypeExpected, TypeCompleted, TypeMissing:
		return true
	}
	return false
}

// LabelColumn heads the non-numeric run label column.
const LabelColumn = "Simulation"

// MeanLabel labels the synthetic across-run mean row.
const MeanLabel = "Mean"

// Schema lists every numeric column in sheet order.
var Schema = buildSchema()

func buildSchema() []Column {
	cols := make([]Column, 0, len(totalsLayout)+len(TrackedTypes)*len(perTypeLayout))
	for _, t := range totalsLayout {
		cols = append(cols, Column{Kind: t.kind, Name: t.name})
	}
	for _, vt := range TrackedTypes {
		for _, p := range perTypeLayout {
			cols = append(cols, Column{Kind: p.kind, Type: vt, Name: fmt.Sprintf(p.format, vt.Title())})
		}
	}
	return cols
}

// Header returns the sheet header: the label column then every schema column.
func Header() []string {
	h := make([]string, 0, len(Schema)+1)
	h = append(h, LabelColumn)
	for _, c := range Schema {
		h = append(h, c.Name)
	}
	return h
}

// ColumnIndex returns the schema position of the named column, or -1.
func ColumnIndex(name string) int {
	for i, c := range Schema {
		if c.Name == name {
			return i
		}
	}
	return -1
}
