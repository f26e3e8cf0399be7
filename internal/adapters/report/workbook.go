// Package report renders the leaderboard and history for download.
package report

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/okian/liao/internal/domain/model"
)

// Sheet names of the exported workbook.
const (
	LeaderboardSheet = "Leaderboard"
	HistorySheet     = "History"
)

var (
	leaderboardHeader = []any{"Rank", "Team", "Total"}
	historyHeader     = []any{"Time", "Game", "Team", "Points", "Submission"}
)

// Workbook builds an xlsx file with the current standings and every event.
func Workbook(entries []model.LeaderboardEntry, history []model.HistoryRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", LeaderboardSheet); err != nil {
		return nil, fmt.Errorf("report.Workbook: %w", err)
	}
	if _, err := f.NewSheet(HistorySheet); err != nil {
		return nil, fmt.Errorf("report.Workbook: %w", err)
	}

	if err := writeRows(f, LeaderboardSheet, leaderboardHeader, len(entries), func(i int) []any {
		e := entries[i]
		return []any{e.Rank, e.Team.Name, e.TotalScore}
	}); err != nil {
		return nil, err
	}

	if err := writeRows(f, HistorySheet, historyHeader, len(history), func(i int) []any {
		h := history[i]
		return []any{
			h.CreatedAt.UTC().Format(time.RFC3339),
			h.Game.DisplayName(),
			h.TeamName,
			h.Points,
			h.SubmissionID.String(),
		}
	}); err != nil {
		return nil, err
	}

	if err := f.SetPanes(LeaderboardSheet, frozenHeader()); err != nil {
		return nil, fmt.Errorf("report.Workbook: %w", err)
	}
	if err := f.SetPanes(HistorySheet, frozenHeader()); err != nil {
		return nil, fmt.Errorf("report.Workbook: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("report.Workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRows(f *excelize.File, sheet string, header []any, n int, row func(int) []any) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("report.writeRows %s: %w", sheet, err)
	}
	for i := 0; i < n; i++ {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("report.writeRows %s: %w", sheet, err)
		}
		values := row(i)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("report.writeRows %s: %w", sheet, err)
		}
	}
	return nil
}

func frozenHeader() *excelize.Panes {
	return &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}
}
