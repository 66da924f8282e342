package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyloop/internal/ui/theme"
)

// ScoreBar renders a 0-100 score as a horizontal bar.
type ScoreBar struct {
	Label     string
	Score     int
	Threshold int
	Width     int
}

// NewScoreBar creates a score bar. A positive threshold colors scores at or
// above it as passing.
func NewScoreBar(label string, score, threshold, width int) ScoreBar {
	return ScoreBar{
		Label:     label,
		Score:     score,
		Threshold: threshold,
		Width:     width,
	}
}

// View renders the bar.
func (b ScoreBar) View() string {
	var result string

	if b.Label != "" {
		result += lipgloss.NewStyle().Foreground(theme.Text).Render(b.Label) + "  "
	}

	labelWidth := lipgloss.Width(result)
	const scoreWidth = 5 // " 100"

	barWidth := b.Width - labelWidth - scoreWidth
	if barWidth < 4 {
		barWidth = 4
	}

	filled := barWidth * min(max(b.Score, 0), 100) / 100
	empty := barWidth - filled

	fill := theme.Secondary
	if b.Threshold > 0 && b.Score >= b.Threshold {
		fill = theme.Success
	}

	result += lipgloss.NewStyle().Foreground(fill).Render(strings.Repeat("█", filled))
	result += lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("░", empty))
	result += lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Render(fmt.Sprintf(" %3d", b.Score))

	return result
}
