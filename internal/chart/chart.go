// Package chart renders group reports as an HTML page of go-echarts bar
// charts, one chart per experiment group.
package chart

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/signalnine/trafficlab/internal/summary"
)

// Series lists the columns plotted for each group.
var Series = []string{
	"Weighted Avg TimeLoss (min)",
	"Overall Avg Speed (km/h)",
}

// Page collects group reports for rendering.
type Page struct {
	Title   string
	reports []*summary.GroupReport
}

func NewPage(title string) *Page {
	return &Page{Title: title}
}

// WriteGroup adds rep to the page, replacing an earlier report of the same
// group.
func (p *Page) WriteGroup(rep *summary.GroupReport) error {
	for i, r := range p.reports {
		if r.Group == rep.Group {
			p.reports[i] = rep
			return nil
		}
	}
	p.reports = append(p.reports, rep)
	return nil
}

func (p *Page) Len() int { return len(p.reports) }

func groupChart(rep *summary.GroupReport) *charts.Bar {
	labels := make([]string, len(rep.Rows))
	for i, row := range rep.Rows {
		labels[i] = row.Label
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    rep.Sheet,
			Subtitle: fmt.Sprintf("representative: %s", strings.Join(rep.RepresentativeLabels(), ", ")),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
	)
	bar.SetXAxis(labels)
	for _, name := range Series {
		data := make([]opts.BarData, len(rep.Rows))
		for i, row := range rep.Rows {
			data[i] = opts.BarData{Value: row.Value(name)}
		}
		bar.AddSeries(name, data)
	}
	return bar
}

// Render writes the page as standalone HTML.
func (p *Page) Render(w io.Writer) error {
	page := components.NewPage()
	page.PageTitle = p.Title
	for _, rep := range p.reports {
		page.AddCharts(groupChart(rep))
	}
	return page.Render(w)
}

// WriteFile renders the page into path.
func (p *Page) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating chart file: %w", err)
	}
	if err := p.Render(f); err != nil {
		f.Close()
		return fmt.Errorf("rendering chart: %w", err)
	}
	return f.Close()
}
