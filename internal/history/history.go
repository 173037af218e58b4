// Package history keeps every written group summary in a SQLite database so
// reports can be printed and compared without reopening the workbook.
package history

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/signalnine/trafficlab/internal/summary"
)

type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history %s: %w", path, err)
	}
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS group_summaries (
			group_name      TEXT NOT NULL,
			sheet           TEXT NOT NULL,
			row_index       INTEGER NOT NULL,
			label           TEXT NOT NULL,
			column_index    INTEGER NOT NULL,
			column_name     TEXT NOT NULL,
			value           DOUBLE NOT NULL,
			representative  INTEGER NOT NULL DEFAULT 0,
			recorded_at     TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (group_name, row_index, column_index)
		);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating history schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// WriteGroup replaces everything stored for rep.Group with rep.
func (s *Store) WriteGroup(rep *summary.GroupReport) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM group_summaries WHERE group_name = ?`, rep.Group); err != nil {
		return fmt.Errorf("clearing group %s: %w", rep.Group, err)
	}
	stmt, err := tx.Prepare(`
		INSERT INTO group_summaries
			(group_name, sheet, row_index, label, column_index, column_name, value, representative, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for r, row := range rep.Rows {
		selected := 0
		if rep.IsRepresentative(r) {
			selected = 1
		}
		for c, v := range row.Values {
			if _, err := stmt.Exec(rep.Group, rep.Sheet, r, row.Label, c, summary.Schema[c].Name, v, selected, now); err != nil {
				return fmt.Errorf("storing %s/%s: %w", rep.Group, row.Label, err)
			}
		}
	}
	return tx.Commit()
}

// Groups lists stored group names, least recently written first.
func (s *Store) Groups() ([]string, error) {
	rows, err := s.db.Query(`
		SELECT group_name FROM group_summaries
		GROUP BY group_name
		ORDER BY MIN(rowid)`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []string
	for rows.Next() {
		var g string
		if err := rows.Scan(&g); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// Load rebuilds the stored report of group. It returns nil, nil when the
// group was never written.
func (s *Store) Load(group string) (*summary.GroupReport, error) {
	rows, err := s.db.Query(`
		SELECT sheet, row_index, label, column_index, value, representative
		FROM group_summaries
		WHERE group_name = ?
		ORDER BY row_index, column_index`, group)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rep *summary.GroupReport
	for rows.Next() {
		var (
			sheet, label   string
			rowIdx, colIdx int
			value          float64
			representative int
		)
		if err := rows.Scan(&sheet, &rowIdx, &label, &colIdx, &value, &representative); err != nil {
			return nil, err
		}
		if rep == nil {
			rep = &summary.GroupReport{Group: group, Sheet: sheet}
		}
		for len(rep.Rows) <= rowIdx {
			rep.Rows = append(rep.Rows, summary.Row{Values: make([]float64, len(summary.Schema))})
		}
		row := &rep.Rows[rowIdx]
		if row.Label == "" {
			row.Label = label
			if representative != 0 {
				rep.Representative = append(rep.Representative, rowIdx)
			}
		}
		if colIdx < len(row.Values) {
			row.Values[colIdx] = value
		}
	}
	return rep, rows.Err()
}
