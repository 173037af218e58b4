// Package workbook writes group summaries into a shared .xlsx file, one
// sheet per experiment group.
package workbook

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/signalnine/trafficlab/internal/summary"
)

// HighlightColor fills the rows of the representative runs.
const HighlightColor = "CCFFCC"

const scratchSheet = "__trafficlab_scratch"

// Writer writes group reports into the workbook at Path.
type Writer struct {
	Path string
}

func NewWriter(path string) *Writer {
	return &Writer{Path: path}
}

// WriteGroup writes rep to its sheet, replacing that sheet if it already
// exists. Other sheets are left as they are.
func (w *Writer) WriteGroup(rep *summary.GroupReport) error {
	return WriteGroup(w.Path, rep)
}

// WriteGroup opens or creates the workbook at path and writes rep.
func WriteGroup(path string, rep *summary.GroupReport) error {
	f, created, err := open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := replaceSheet(f, rep.Sheet); err != nil {
		return fmt.Errorf("preparing sheet %s: %w", rep.Sheet, err)
	}
	if created {
		// A fresh workbook starts with a default sheet we never use.
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return fmt.Errorf("dropping default sheet: %w", err)
		}
	}
	if err := fill(f, rep); err != nil {
		return fmt.Errorf("writing sheet %s: %w", rep.Sheet, err)
	}
	if idx, err := f.GetSheetIndex(rep.Sheet); err == nil && idx >= 0 {
		f.SetActiveSheet(idx)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook %s: %w", path, err)
	}
	return nil
}

func open(path string) (*excelize.File, bool, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return excelize.NewFile(), true, nil
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("opening workbook %s: %w", path, err)
	}
	return f, false, nil
}

// replaceSheet leaves an empty sheet named name in f. An existing sheet of
// that name is dropped first; a scratch sheet keeps the workbook non-empty
// while it is.
func replaceSheet(f *excelize.File, name string) error {
	idx, err := f.GetSheetIndex(name)
	if err != nil {
		return err
	}
	if idx < 0 {
		_, err := f.NewSheet(name)
		return err
	}
	if _, err := f.NewSheet(scratchSheet); err != nil {
		return err
	}
	if err := f.DeleteSheet(name); err != nil {
		return err
	}
	if _, err := f.NewSheet(name); err != nil {
		return err
	}
	return f.DeleteSheet(scratchSheet)
}

func fill(f *excelize.File, rep *summary.GroupReport) error {
	header := summary.Header()
	if err := f.SetSheetRow(rep.Sheet, "A1", &header); err != nil {
		return err
	}
	for i, row := range rep.Rows {
		cells := make([]interface{}, 0, len(row.Values)+1)
		cells = append(cells, row.Label)
		for c, v := range row.Values {
			if summary.Schema[c].IsCount() && row.Label != summary.MeanLabel {
				cells = append(cells, int(v))
				continue
			}
			cells = append(cells, v)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(rep.Sheet, cell, &cells); err != nil {
			return err
		}
	}
	if len(rep.Representative) == 0 {
		return nil
	}
	style, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{HighlightColor}},
	})
	if err != nil {
		return err
	}
	for _, r := range rep.Representative {
		first, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		last, err := excelize.CoordinatesToCellName(len(header), r+2)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(rep.Sheet, first, last, style); err != nil {
			return err
		}
	}
	return nil
}

// ReadSheet returns the cell text of a sheet, row by row.
func ReadSheet(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook %s: %w", path, err)
	}
	defer f.Close()
	return f.GetRows(sheet)
}

// Sheets lists the sheet names of the workbook at path.
func Sheets(path string) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook %s: %w", path, err)
	}
	defer f.Close()
	return f.GetSheetList(), nil
}
