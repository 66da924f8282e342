package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/studyloop/internal/ids"
	"github.com/abhisek/studyloop/internal/progress"
	"github.com/abhisek/studyloop/internal/ui/theme"
)

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Show the review queue",
	RunE: func(cmd *cobra.Command, args []string) error {
		windowName, _ := cmd.Flags().GetString("window")
		limit, _ := cmd.Flags().GetInt("limit")

		window, err := progress.ParseWindow(windowName)
		if err != nil {
			return err
		}

		return withEnv(cmd, func(ctx context.Context, e *env) error {
			q, err := e.svc.ReviewQueue(ctx, e.user, window, limit)
			if err != nil {
				return err
			}
			if len(q.Items) == 0 {
				fmt.Println("Nothing to review.", theme.Hint.Render("("+string(window)+")"))
				return nil
			}

			now := time.Now()
			fmt.Printf("%-36s  %-24s  %-16s  %-8s  %4s  %s\n", "Item", "Exercise", "Due", "Mode", "Pri", "Reason")
			fmt.Println(strings.Repeat("─", 110))
			for _, it := range q.Items {
				due := it.ScheduledFor.Local().Format("Mon 01-02 15:04")
				if it.ScheduledFor.Before(now) {
					due = theme.Bad.Render(fmt.Sprintf("%-16s", due))
				} else {
					due = fmt.Sprintf("%-16s", due)
				}
				fmt.Printf("%-36s  %-24s  %s  %-8s  %4d  %s\n",
					it.ID, it.TemplateID, due, it.RecommendedMode, it.Priority, it.Reason)
			}

			summary := fmt.Sprintf("\n%d shown of %d", len(q.Items), q.Total)
			if q.Overdue > 0 {
				summary += ", " + theme.Warn.Render(fmt.Sprintf("%d overdue", q.Overdue))
			}
			fmt.Println(summary)
			return nil
		})
	},
}

var queueRescheduleCmd = &cobra.Command{
	Use:   "reschedule <item>",
	Short: "Move a pending review",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in, _ := cmd.Flags().GetString("in")
		at, _ := cmd.Flags().GetString("at")

		var when time.Time
		switch {
		case in != "" && at != "":
			return errors.New("use --in or --at, not both")
		case in != "":
			d, err := parseOffset(in)
			if err != nil {
				return err
			}
			when = time.Now().Add(d)
		case at != "":
			t, err := time.ParseInLocation("2006-01-02 15:04", at, time.Local)
			if err != nil {
				return fmt.Errorf("invalid --at %q (want YYYY-MM-DD HH:MM): %w", at, err)
			}
			when = t
		default:
			return errors.New("one of --in or --at is required")
		}

		return withEnv(cmd, func(ctx context.Context, e *env) error {
			it, err := e.svc.Reschedule(ctx, ids.SchedulerItemID(args[0]), when)
			if err != nil {
				return err
			}
			fmt.Println(theme.Good.Render("✓"), it.ID, "due", it.ScheduledFor.Local().Format("Mon 2006-01-02 15:04"))
			return nil
		})
	},
}

var queueRemoveCmd = &cobra.Command{
	Use:   "remove <item>",
	Short: "Drop a review from the queue",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(ctx context.Context, e *env) error {
			if err := e.svc.RemoveItem(ctx, ids.SchedulerItemID(args[0])); err != nil {
				return err
			}
			fmt.Println(theme.Good.Render("✓"), "removed", args[0])
			return nil
		})
	},
}

func init() {
	queueCmd.Flags().String("window", "today", "Which reviews to show (due, today, week, all)")
	queueCmd.Flags().Int("limit", 0, "Maximum items to show (default from config)")

	queueRescheduleCmd.Flags().String("in", "", "Offset from now, e.g. 2d or 36h")
	queueRescheduleCmd.Flags().String("at", "", "Local time, e.g. \"2026-03-09 09:00\"")

	queueCmd.AddCommand(queueRescheduleCmd)
	queueCmd.AddCommand(queueRemoveCmd)
}
