package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/studyloop/internal/ids"
	"github.com/abhisek/studyloop/internal/mastery"
	"github.com/abhisek/studyloop/internal/ui/components"
	"github.com/abhisek/studyloop/internal/ui/theme"
)

var attemptsCmd = &cobra.Command{
	Use:   "attempts",
	Short: "Record and inspect exercise attempts",
}

var attemptsRecordCmd = &cobra.Command{
	Use:   "record <exercise>",
	Short: "Record a finished attempt and reschedule reviews",
	Long: `Record a finished attempt. Subtask outcomes are given in order as a
comma-separated list of correct (c), partial (p), incorrect (i) or skipped (s).`,
	Example: "  studyloop attempts record limits-1 --outcomes c,c,p,i --took 4m",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		outcomes, _ := cmd.Flags().GetString("outcomes")
		modeName, _ := cmd.Flags().GetString("mode")
		session, _ := cmd.Flags().GetString("session")
		variant, _ := cmd.Flags().GetString("variant")
		took, _ := cmd.Flags().GetDuration("took")
		abandoned, _ := cmd.Flags().GetBool("abandoned")

		subtasks, err := parseOutcomes(outcomes)
		if err != nil {
			return err
		}
		if len(subtasks) == 0 {
			return errors.New("--outcomes is required")
		}
		mode, err := parseMode(modeName)
		if err != nil {
			return err
		}
		status := mastery.StatusCompleted
		if abandoned {
			status = mastery.StatusAbandoned
		}

		return withEnv(cmd, func(ctx context.Context, e *env) error {
			now := time.Now()
			res, err := e.svc.RecordAttempt(ctx, mastery.Attempt{
				UserID:     e.user,
				TemplateID: ids.ExerciseTemplateID(args[0]),
				VariantID:  ids.ExerciseVariantID(variant),
				SessionID:  ids.SessionID(session),
				Mode:       mode,
				StartedAt:  now.Add(-took),
				EndedAt:    &now,
				Subtasks:   subtasks,
				Status:     status,
			})
			if err != nil {
				return err
			}
			printAttemptResult(res.Attempt, res.Exercise, res.Concepts, res.NewlyMastered)
			for _, it := range res.Scheduled {
				fmt.Printf("  %s %-15s %s\n", theme.Heading.Render("→"), it.Reason,
					it.ScheduledFor.Local().Format("Mon 2006-01-02 15:04"))
			}
			return nil
		})
	},
}

var attemptsListCmd = &cobra.Command{
	Use:   "list [exercise]",
	Short: "List recorded attempts",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(ctx context.Context, e *env) error {
			repo := e.store.Repos().Attempts
			var list []mastery.Attempt
			var err error
			if len(args) == 1 {
				list, err = repo.ListByTemplate(ctx, e.user, ids.ExerciseTemplateID(args[0]))
			} else {
				list, err = repo.ListByUser(ctx, e.user)
			}
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Println("No attempts found.")
				return nil
			}

			fmt.Printf("%-19s  %-24s  %-7s  %-10s  %8s  %s\n", "Ended", "Exercise", "Mode", "Status", "Accuracy", "Took")
			for _, a := range list {
				took := "-"
				if d, ok := a.Duration(); ok {
					took = d.Round(time.Second).String()
				}
				fmt.Printf("%-19s  %-24s  %-7s  %-10s  %7.0f%%  %s\n",
					a.EndTime().Local().Format("2006-01-02 15:04:05"),
					a.TemplateID, a.Mode, a.Status, a.AccuracyValue()*100, took)
			}
			return nil
		})
	},
}

func init() {
	attemptsRecordCmd.Flags().String("outcomes", "", "Subtask outcomes in order, e.g. c,c,p,i")
	attemptsRecordCmd.Flags().String("mode", "normal", "Practice mode (normal, cram, guided, exam)")
	attemptsRecordCmd.Flags().String("session", "", "Study session id")
	attemptsRecordCmd.Flags().String("variant", "", "Exercise variant id")
	attemptsRecordCmd.Flags().Duration("took", 0, "How long the attempt took, e.g. 3m30s")
	attemptsRecordCmd.Flags().Bool("abandoned", false, "The attempt was given up")

	attemptsCmd.AddCommand(attemptsRecordCmd)
	attemptsCmd.AddCommand(attemptsListCmd)
}

func printAttemptResult(a mastery.Attempt, ex mastery.State, concepts []mastery.State, newly []ids.BrickRef) {
	fmt.Println(theme.Title.Render(fmt.Sprintf("%s  %d/%d correct  (%.0f%%)",
		a.TemplateID, a.CorrectCount, a.SubtaskCount, a.AccuracyValue()*100)))
	fmt.Println(components.NewScoreBar(fmt.Sprintf("%-24s", ex.Brick.ID), ex.Mastery.MasteryScore, mastery.MasteryThreshold, 60).View())
	for _, st := range concepts {
		fmt.Println(components.NewScoreBar(fmt.Sprintf("%-24s", st.Brick.ID), st.Mastery.MasteryScore, mastery.MasteryThreshold, 60).View())
	}
	for _, b := range newly {
		fmt.Println(theme.Good.Render("★ mastered"), b.String())
	}
}
