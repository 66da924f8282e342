package cmd

import (
	"context"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/abhisek/studyloop/internal/ids"
	"github.com/abhisek/studyloop/internal/mastery"
	"github.com/abhisek/studyloop/internal/ui/components"
	"github.com/abhisek/studyloop/internal/ui/theme"
)

var masteryCmd = &cobra.Command{
	Use:   "mastery",
	Short: "Show mastery of concepts and exercises",
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, _ := cmd.Flags().GetString("kind")

		return withEnv(cmd, func(ctx context.Context, e *env) error {
			states, err := e.svc.States(ctx, e.user)
			if err != nil {
				return err
			}
			if kind != "" {
				states = slices.DeleteFunc(states, func(st mastery.State) bool {
					return st.Brick.Kind != ids.BrickKind(kind)
				})
			}
			if len(states) == 0 {
				fmt.Println("No practice recorded yet.")
				return nil
			}

			mastered := 0
			var current ids.BrickKind
			for _, st := range states {
				if st.Brick.Kind != current {
					current = st.Brick.Kind
					fmt.Println(theme.Heading.Render(string(current)))
				}
				m := st.Mastery
				fmt.Printf("  %s  %s\n",
					components.NewScoreBar(fmt.Sprintf("%-24s", st.Brick.ID), m.MasteryScore, mastery.MasteryThreshold, 60).View(),
					theme.Hint.Render(fmt.Sprintf("%s, %d attempts, streak %d", m.Trend, m.TotalAttempts, m.CorrectStreak)))
				if m.Mastered() {
					mastered++
				}
			}
			fmt.Printf("\n%d of %d mastered\n", mastered, len(states))
			return nil
		})
	},
}

func init() {
	masteryCmd.Flags().String("kind", "", "Only show concept or exercise bricks")
}
