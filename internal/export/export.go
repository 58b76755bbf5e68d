// Package export writes progress and attempt history to spreadsheets.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/verte-zerg/keycamp/internal/model"
	"github.com/verte-zerg/keycamp/internal/trainer"
)

// Sheet names in exported workbooks.
const (
	ProgressSheet = "Progress"
	AttemptsSheet = "Attempts"
)

const timeLayout = "2006-01-02 15:04:05"

var (
	progressHeaders = []any{"Chapter", "Title", "Phase", "Locked", "Stars", "Best WPM", "Accuracy", "Completed At"}
	attemptHeaders  = []any{"Attempt", "Chapter", "Ended At", "WPM", "Accuracy", "Stars", "Errors"}
)

// WriteXLSX writes a workbook with a progress sheet and an attempts sheet.
func WriteXLSX(w io.Writer, statuses []trainer.ChapterStatus, attempts []model.AttemptAggregate) error {
	f, err := build(statuses, attempts)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			// Best-effort close of the in-memory workbook.
			_ = cerr
		}
	}()
	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// SaveXLSX writes the workbook to path, creating parent directories.
func SaveXLSX(path string, statuses []trainer.ChapterStatus, attempts []model.AttemptAggregate) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteXLSX(out, statuses, attempts); err != nil {
		if cerr := out.Close(); cerr != nil {
			// Best-effort close after a failed write.
			_ = cerr
		}
		return err
	}
	return out.Close()
}

func build(statuses []trainer.ChapterStatus, attempts []model.AttemptAggregate) (*excelize.File, error) {
	f := excelize.NewFile()
	ok := false
	defer func() {
		if !ok {
			if cerr := f.Close(); cerr != nil {
				_ = cerr
			}
		}
	}()

	if err := f.SetSheetName("Sheet1", ProgressSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(AttemptsSheet); err != nil {
		return nil, err
	}
	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	progressRows := make([][]any, 0, len(statuses))
	for _, st := range statuses {
		completed := ""
		wpm, acc := any(""), any("")
		if st.Attempted {
			wpm, acc = st.Entry.WPM, st.Entry.Accuracy
			if !st.Entry.CompletedAt.IsZero() {
				completed = st.Entry.CompletedAt.Format(timeLayout)
			}
		}
		progressRows = append(progressRows, []any{
			st.Chapter.ID,
			st.Chapter.Title,
			st.Chapter.Phase,
			yesNo(st.Locked),
			st.Entry.Stars,
			wpm,
			acc,
			completed,
		})
	}
	if err := writeSheet(f, ProgressSheet, header, progressHeaders, progressRows); err != nil {
		return nil, err
	}

	attemptRows := make([][]any, 0, len(attempts))
	for _, a := range attempts {
		attemptRows = append(attemptRows, []any{
			a.AttemptID,
			a.ChapterID,
			a.EndedAt.Format(timeLayout),
			a.WPM,
			a.Accuracy,
			a.Stars,
			a.Errors,
		})
	}
	if err := writeSheet(f, AttemptsSheet, header, attemptHeaders, attemptRows); err != nil {
		return nil, err
	}

	ok = true
	return f, nil
}

func writeSheet(f *excelize.File, sheet string, headerStyle int, headers []any, rows [][]any) error {
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return err
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("%s row %d: %w", sheet, i+2, err)
		}
	}
	lastCol, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", lastCol, 14)
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
