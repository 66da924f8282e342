package cmd

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/abhisek/studyloop/internal/ids"
	"github.com/abhisek/studyloop/internal/mastery"
)

// parseOutcomes turns "c,p,i,s" style lists into subtask results. Full
// outcome names are accepted too.
func parseOutcomes(s string) ([]mastery.SubtaskResult, error) {
	var out []mastery.SubtaskResult
	for i, tok := range splitList(s) {
		var o mastery.Outcome
		switch strings.ToLower(tok) {
		case "c", "correct":
			o = mastery.OutcomeCorrect
		case "p", "partial", "partially-correct":
			o = mastery.OutcomePartiallyCorrect
		case "i", "x", "incorrect":
			o = mastery.OutcomeIncorrect
		case "s", "skip", "skipped":
			o = mastery.OutcomeSkipped
		default:
			return nil, fmt.Errorf("unknown outcome %q (want correct, partial, incorrect or skipped)", tok)
		}
		out = append(out, mastery.SubtaskResult{
			SubtaskID: strconv.Itoa(i + 1),
			Outcome:   o,
		})
	}
	return out, nil
}

// parseMode validates an attempt mode name.
func parseMode(s string) (mastery.Mode, error) {
	switch m := mastery.Mode(strings.ToLower(s)); m {
	case mastery.ModeNormal, mastery.ModeCram, mastery.ModeGuided, mastery.ModeExam:
		return m, nil
	case "":
		return mastery.ModeNormal, nil
	default:
		return "", fmt.Errorf("unknown mode %q (want normal, cram, guided or exam)", s)
	}
}

// parseOffset parses a duration that may use a "d" suffix for days, e.g.
// "3d", "36h" or "90m".
func parseOffset(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, fmt.Errorf("invalid day count %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid offset %q: %w", s, err)
	}
	return d, nil
}

// conceptIDs splits a comma-separated list, dropping repeats.
func conceptIDs(s string) []ids.ConceptID {
	var out []ids.ConceptID
	for _, tok := range splitList(s) {
		if id := ids.ConceptID(tok); !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

func splitList(s string) []string {
	var out []string
	for _, tok := range strings.Split(s, ",") {
		if tok = strings.TrimSpace(tok); tok != "" {
			out = append(out, tok)
		}
	}
	return out
}
