package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/studyloop/internal/report"
	"github.com/abhisek/studyloop/internal/ui/theme"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Export mastery and the review queue to an XLSX workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")

		return withEnv(cmd, func(ctx context.Context, e *env) error {
			states, err := e.svc.States(ctx, e.user)
			if err != nil {
				return err
			}
			items, err := e.svc.PendingItems(ctx, e.user)
			if err != nil {
				return err
			}

			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := report.Write(f, states, items, time.Now()); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Println(theme.Good.Render("✓"), fmt.Sprintf("wrote %s (%d bricks, %d reviews)", out, len(states), len(items)))
			return nil
		})
	},
}

func init() {
	reportCmd.Flags().StringP("out", "o", "studyloop-report.xlsx", "Output file")
}
