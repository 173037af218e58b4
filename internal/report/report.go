package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/signalnine/trafficlab/internal/summary"
)

// tableColumns are the all-vehicle totals shown by the compact table view.
var tableColumns = []string{
	"Total Expected Vehicles",
	"Total Inserted Vehicles",
	"Total Completed Vehicles",
	"Total Missing Vehicles",
	"Total Inserted Not Completed",
	"Weighted Avg TimeLoss (min)",
	"Overall Avg Speed (km/h)",
	"Total Kilometers Traveled (All)",
}

// GroupJSON is the json rendering of one group report.
type GroupJSON struct {
	Group          string               `json:"group"`
	Sheet          string               `json:"sheet"`
	Representative []string             `json:"representative"`
	Rows           []map[string]float64 `json:"rows"`
	Labels         []string             `json:"labels"`
}

// Generate renders reports to w as table, markdown or json.
func Generate(reports []*summary.GroupReport, format string, w io.Writer) error {
	switch format {
	case "markdown":
		return writeMarkdown(reports, w)
	case "json":
		return writeJSON(reports, w)
	case "table", "":
		return writeTable(reports, w)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func marker(rep *summary.GroupReport, i int) string {
	if rep.IsRepresentative(i) {
		return "*"
	}
	return ""
}

func writeTable(reports []*summary.GroupReport, w io.Writer) error {
	for gi, rep := range reports {
		if gi > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s (%s)\n", rep.Group, rep.Sheet)
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, " \tSIMULATION\tEXPECTED\tINSERTED\tCOMPLETED\tMISSING\tNOT COMPLETED\tTIMELOSS (MIN)\tSPEED (KM/H)\tKM")
		fmt.Fprintln(tw, strings.Repeat("-", 100))
		for i, row := range rep.Rows {
			fmt.Fprintf(tw, "%s\t%s", marker(rep, i), row.Label)
			for _, name := range tableColumns {
				fmt.Fprintf(tw, "\t%s", formatValue(row.Value(name)))
			}
			fmt.Fprintln(tw)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	return nil
}

func writeMarkdown(reports []*summary.GroupReport, w io.Writer) error {
	header := summary.Header()
	for gi, rep := range reports {
		if gi > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "### %s\n\n", rep.Sheet)
		fmt.Fprintf(w, "| %s |\n", strings.Join(header, " | "))
		fmt.Fprintf(w, "|%s\n", strings.Repeat("---|", len(header)))
		for i, row := range rep.Rows {
			cells := make([]string, 0, len(header))
			label := row.Label
			if rep.IsRepresentative(i) {
				label = "**" + label + "**"
			}
			cells = append(cells, label)
			for _, v := range row.Values {
				cells = append(cells, formatValue(v))
			}
			fmt.Fprintf(w, "| %s |\n", strings.Join(cells, " | "))
		}
	}
	return nil
}

func writeJSON(reports []*summary.GroupReport, w io.Writer) error {
	out := make([]GroupJSON, 0, len(reports))
	for _, rep := range reports {
		g := GroupJSON{
			Group:          rep.Group,
			Sheet:          rep.Sheet,
			Representative: rep.RepresentativeLabels(),
		}
		for _, row := range rep.Rows {
			values := make(map[string]float64, len(summary.Schema))
			for c, col := range summary.Schema {
				values[col.Name] = row.Values[c]
			}
			g.Labels = append(g.Labels, row.Label)
			g.Rows = append(g.Rows, values)
		}
		out = append(out, g)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func formatValue(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}
