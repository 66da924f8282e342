// Package report exports mastery states and the review queue as an XLSX
// workbook.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/abhisek/studyloop/internal/mastery"
	"github.com/abhisek/studyloop/internal/spacedrep"
)

// Sheet names in the generated workbook.
const (
	MasterySheet = "Mastery"
	QueueSheet   = "Queue"
)

const timeLayout = "2006-01-02 15:04"

var masteryHeader = []any{
	"Brick", "Kind", "Score", "Mastered", "Stability", "Avg Accuracy",
	"Trend", "Attempts", "Variants", "Streak", "Cram Sessions",
	"Median Time (s)", "Last Practiced", "Mastered At", "Interval (days)",
}

var queueHeader = []any{
	"Item", "Exercise", "Concepts", "Scheduled For", "Reason",
	"Mode", "Priority", "Overdue",
}

// Write renders states and items into a two-sheet workbook and writes it to w.
func Write(w io.Writer, states []mastery.State, items []spacedrep.Item, now time.Time) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", MasterySheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(QueueSheet); err != nil {
		return fmt.Errorf("create queue sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDEBF7"}},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	if err := writeSheet(f, MasterySheet, masteryHeader, masteryRows(states), headerStyle); err != nil {
		return err
	}
	if err := writeSheet(f, QueueSheet, queueHeader, queueRows(items, now), headerStyle); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, header []any, rows [][]any, style int) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("%s header: %w", sheet, err)
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return fmt.Errorf("%s header style: %w", sheet, err)
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
	if err := f.SetColWidth(sheet, "A", "A", 28); err != nil {
		return err
	}
	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("%s panes: %w", sheet, err)
	}
	return nil
}

func masteryRows(states []mastery.State) [][]any {
	rows := make([][]any, 0, len(states))
	for _, st := range states {
		m := st.Mastery
		rows = append(rows, []any{
			st.Brick.ID,
			string(st.Brick.Kind),
			m.MasteryScore,
			yesNo(m.Mastered()),
			m.StabilityScore,
			m.AvgAccuracy,
			string(m.Trend),
			m.TotalAttempts,
			m.TotalVariants,
			m.CorrectStreak,
			m.CramSessionsCount,
			m.MedianTime.Seconds(),
			formatTime(m.LastPracticedAt),
			formatTime(m.MasteredAt),
			st.LastIntervalDays,
		})
	}
	return rows
}

func queueRows(items []spacedrep.Item, now time.Time) [][]any {
	rows := make([][]any, 0, len(items))
	for _, it := range items {
		concepts := make([]string, len(it.ConceptIDs))
		for i, c := range it.ConceptIDs {
			concepts[i] = string(c)
		}
		rows = append(rows, []any{
			string(it.ID),
			string(it.TemplateID),
			strings.Join(concepts, ", "),
			it.ScheduledFor.Local().Format(timeLayout),
			string(it.Reason),
			string(it.RecommendedMode),
			it.Priority,
			yesNo(!it.Completed && it.ScheduledFor.Before(now)),
		})
	}
	return rows
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Local().Format(timeLayout)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
