package summary

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/signalnine/trafficlab/internal/metrics"
	"github.com/signalnine/trafficlab/internal/monitoring"
	"github.com/signalnine/trafficlab/internal/tripinfo"
)

// Placeholders understood by file name patterns.
const (
	GroupPlaceholder = "{group}"
	RunPlaceholder   = "{run}"
)

// Patterns name the per-run files of a sub-group.
type Patterns struct {
	VehRoute string
	TripInfo string
}

// DefaultPatterns match the names the simulation batches already produce.
var DefaultPatterns = Patterns{
	VehRoute: "{group}VehRou_{run}.xml",
	TripInfo: "{group}TripInfo_{run}.xml",
}

func expand(pattern, sub string, run int) string {
	return strings.NewReplacer(GroupPlaceholder, sub, RunPlaceholder, strconv.Itoa(run)).Replace(pattern)
}

func (p Patterns) VehRouteFile(sub string, run int) string { return expand(p.VehRoute, sub, run) }
func (p Patterns) TripInfoFile(sub string, run int) string { return expand(p.TripInfo, sub, run) }

// Inputs locates per-run files on disk.
type Inputs struct {
	Dir      string
	Patterns Patterns
}

// RunFile describes one expected input file of a run.
type RunFile struct {
	SubGroup string
	Kind     string // "vehroute" or "tripinfo"
	Path     string
	Exists   bool
}

// Files lists the vehicle-route and trip-info files of every sub-group of
// group for one run, and whether each exists.
func (in Inputs) Files(group string, run int) []RunFile {
	var files []RunFile
	for _, sub := range SubGroups(group) {
		for _, f := range []RunFile{
			{SubGroup: sub, Kind: "vehroute", Path: filepath.Join(in.Dir, in.Patterns.VehRouteFile(sub, run))},
			{SubGroup: sub, Kind: "tripinfo", Path: filepath.Join(in.Dir, in.Patterns.TripInfoFile(sub, run))},
		} {
			_, err := os.Stat(f.Path)
			f.Exists = err == nil
			files = append(files, f)
		}
	}
	return files
}

// CollectRun parses every present file of one run and merges the sub-groups.
// Missing files are skipped; an unreadable or malformed file is an error.
func (in Inputs) CollectRun(group string, run int) (*metrics.RunMetrics, error) {
	total := metrics.NewRunMetrics()
	byGroup := map[string]*metrics.RunMetrics{}
	var order []string
	for _, f := range in.Files(group, run) {
		if !f.Exists {
			monitoring.Logf("warning: %s not found, skipping", f.Path)
			continue
		}
		rm, ok := byGroup[f.SubGroup]
		if !ok {
			rm = metrics.NewRunMetrics()
			byGroup[f.SubGroup] = rm
			order = append(order, f.SubGroup)
		}
		switch f.Kind {
		case "vehroute":
			ids, err := tripinfo.ParseVehicleIDs(f.Path)
			if err != nil {
				return nil, err
			}
			rm.AddInserted(ids)
		case "tripinfo":
			entries, err := tripinfo.ParseTripInfo(f.Path)
			if err != nil {
				return nil, err
			}
			if _, skipped := rm.AddTrips(entries); skipped > 0 {
				monitoring.Logf("warning: %s: skipped %d unusable trip records", f.Path, skipped)
			}
		}
	}
	for _, sub := range order {
		total.Merge(byGroup[sub])
	}
	return total, nil
}
