package summary_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalnine/trafficlab/internal/monitoring"
	"github.com/signalnine/trafficlab/internal/summary"
	"github.com/signalnine/trafficlab/internal/tripinfo"
)

func init() {
	monitoring.SetLogger(nil)
}

func write(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
}

func expectedABC() *tripinfo.ExpectedSet {
	return &tripinfo.ExpectedSet{
		IDs: map[string]struct{}{"A": {}, "B": {}, "C": {}},
		ByType: map[string]map[string]struct{}{
			"passenger": {"A": {}, "B": {}},
			"truck":     {"C": {}},
		},
	}
}

func TestSchemaLayout(t *testing.T) {
	header := summary.Header()
	require.Len(t, header, 1+8+3*10)
	assert.Equal(t, "Simulation", header[0])
	assert.Equal(t, "Total Expected Vehicles", header[1])
	assert.Equal(t, "Expected Passenger", header[9])
	assert.Equal(t, "Total Kilometers Bus", header[len(header)-1])
	assert.Equal(t, 7, summary.ColumnIndex("Total Kilometers Traveled (All)"))
	assert.Equal(t, -1, summary.ColumnIndex("Nope"))
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "dynamicinitial_Summary", summary.SheetName("dynamicinitial"))
	assert.Equal(t, "dynamicpoststep2_Summary", summary.SheetName("dynamicpoststep2+dynamicsposttep2"))
	assert.Equal(t, []string{"a", "b"}, summary.SubGroups("a+b"))
}

func TestPatterns(t *testing.T) {
	p := summary.DefaultPatterns
	assert.Equal(t, "step1VehRou_3.xml", p.VehRouteFile("step1", 3))
	assert.Equal(t, "step1TripInfo_10.xml", p.TripInfoFile("step1", 10))
}

func TestCollectRunMissingAndCompleted(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "gVehRou_1.xml", `<routes><vehicle id="A"/><vehicle id="B"/></routes>`)
	write(t, dir, "gTripInfo_1.xml", `<tripinfos>
  <tripinfo id="A" vType="passenger" duration="600" waitingTime="60" routeLength="5000" timeLoss="180"/>
</tripinfos>`)

	in := summary.Inputs{Dir: dir, Patterns: summary.DefaultPatterns}
	rm, err := in.CollectRun("g", 1)
	require.NoError(t, err)

	row := summary.BuildRow("Sim_1", expectedABC(), rm)
	assert.Equal(t, 3.0, row.Value("Total Expected Vehicles"))
	assert.Equal(t, 2.0, row.Value("Total Inserted Vehicles"))
	assert.Equal(t, 1.0, row.Value("Total Completed Vehicles"))
	assert.Equal(t, 1.0, row.Value("Total Missing Vehicles"))
	assert.Equal(t, 1.0, row.Value("Total Inserted Not Completed"))
	assert.Equal(t, 2.0, row.Value("Expected Passenger"))
	assert.Equal(t, 1.0, row.Value("Completed Passenger"))
	assert.Equal(t, 1.0, row.Value("Missing Passenger"))
	assert.Equal(t, 1.0, row.Value("Missing Truck"))
	assert.Equal(t, 3.0, row.Value("Avg TimeLoss Passenger (min)"))
	assert.Equal(t, 2.0, row.Value("Avg Delay Passenger (min)"))
	assert.Equal(t, 30.0, row.Value("Avg Speed Passenger (km/h)"))
	assert.Equal(t, 30.0, row.Value("Overall Avg Speed (km/h)"))
	assert.Equal(t, 5.0, row.Value("Total Kilometers Traveled (All)"))
	assert.Equal(t, 0.0, row.Value("Avg TimeLoss Bus (min)"))
}

func TestCollectRunAllFilesMissing(t *testing.T) {
	in := summary.Inputs{Dir: t.TempDir(), Patterns: summary.DefaultPatterns}
	rm, err := in.CollectRun("g", 1)
	require.NoError(t, err)

	row := summary.BuildRow("Sim_1", expectedABC(), rm)
	assert.Equal(t, 3.0, row.Value("Total Missing Vehicles"))
	assert.Equal(t, 0.0, row.Value("Weighted Avg TimeLoss (min)"))
	assert.Equal(t, 0.0, row.Value("Overall Avg Speed (km/h)"))
}

func TestCollectRunMalformedFile(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "gTripInfo_1.xml", `<tripinfos><tripinfo`)
	in := summary.Inputs{Dir: dir, Patterns: summary.DefaultPatterns}
	_, err := in.CollectRun("g", 1)
	assert.Error(t, err)
}

func TestCollectRunCompoundGroup(t *testing.T) {
	dir := t.TempDir()
	trip := `<tripinfos><tripinfo id="A" vType="passenger" duration="60" routeLength="1000" timeLoss="%d"/></tripinfos>`
	write(t, dir, "xVehRou_1.xml", `<routes><vehicle id="A"/></routes>`)
	write(t, dir, "yVehRou_1.xml", `<routes><vehicle id="A"/><vehicle id="B"/></routes>`)
	write(t, dir, "xTripInfo_1.xml", fmt.Sprintf(trip, 60))
	write(t, dir, "yTripInfo_1.xml", fmt.Sprintf(trip, 120))

	in := summary.Inputs{Dir: dir, Patterns: summary.DefaultPatterns}
	rm, err := in.CollectRun("x+y", 1)
	require.NoError(t, err)

	row := summary.BuildRow("Sim_1", expectedABC(), rm)
	// A completes in both sub-groups: counted once, sampled twice.
	assert.Equal(t, 2.0, row.Value("Total Inserted Vehicles"))
	assert.Equal(t, 1.0, row.Value("Completed Passenger"))
	assert.Equal(t, 1.5, row.Value("Avg TimeLoss Passenger (min)"))
	assert.Equal(t, 2.0, row.Value("Total Kilometers Passenger"))
}

func TestMeanRow(t *testing.T) {
	n := len(summary.Schema)
	rows := []summary.Row{
		{Label: "Sim_1", Values: make([]float64, n)},
		{Label: "Sim_2", Values: make([]float64, n)},
		{Label: "Sim_3", Values: make([]float64, n)},
	}
	for i := range rows {
		for c := 0; c < n; c++ {
			rows[i].Values[c] = float64((i + 1) * (c + 1))
		}
	}
	mean := summary.MeanRow(rows)
	assert.Equal(t, "Mean", mean.Label)
	want := make([]float64, n)
	for c := range want {
		want[c] = 2 * float64(c+1)
	}
	if diff := cmp.Diff(want, mean.Values); diff != "" {
		t.Errorf("mean values mismatch (-want +got):\n%s", diff)
	}
}

func TestSelectRepresentativeTies(t *testing.T) {
	assert.Equal(t, []int{1, 2}, summary.SelectRepresentative([]float64{3, 1, 1, 5}))
	assert.Equal(t, []int{0}, summary.SelectRepresentative([]float64{0}))
	assert.Nil(t, summary.SelectRepresentative(nil))
}

func TestDistances(t *testing.T) {
	n := len(summary.Schema)
	mean := summary.Row{Values: make([]float64, n)}
	row := summary.Row{Values: make([]float64, n)}
	row.Values[0] = 2
	row.Values[1] = -3
	assert.Equal(t, []float64{5}, summary.Distances([]summary.Row{row}, mean))
}

func TestSummarize(t *testing.T) {
	dir := t.TempDir()
	for run, loss := range map[int]int{1: 60, 2: 120, 3: 180} {
		write(t, dir, fmt.Sprintf("gVehRou_%d.xml", run), `<routes><vehicle id="A"/><vehicle id="B"/></routes>`)
		write(t, dir, fmt.Sprintf("gTripInfo_%d.xml", run), fmt.Sprintf(
			`<tripinfos><tripinfo id="A" vType="passenger" duration="600" routeLength="5000" timeLoss="%d"/></tripinfos>`, loss))
	}

	in := summary.Inputs{Dir: dir, Patterns: summary.DefaultPatterns}
	rep, err := summary.Summarize(expectedABC(), "g", 3, in)
	require.NoError(t, err)

	require.Len(t, rep.Rows, 4)
	assert.Equal(t, "g_Summary", rep.Sheet)
	assert.Equal(t, []string{"Sim_1", "Sim_2", "Sim_3", "Mean"}, []string{rep.Rows[0].Label, rep.Rows[1].Label, rep.Rows[2].Label, rep.Rows[3].Label})
	assert.Equal(t, 2.0, rep.Mean().Value("Weighted Avg TimeLoss (min)"))
	assert.Equal(t, []int{1}, rep.Representative)
	assert.Equal(t, []string{"Sim_2"}, rep.RepresentativeLabels())
	assert.True(t, rep.IsRepresentative(1))
	assert.Len(t, rep.Runs(), 3)
}
