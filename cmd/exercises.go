package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/studyloop/internal/ids"
	"github.com/abhisek/studyloop/internal/store"
	"github.com/abhisek/studyloop/internal/ui/theme"
)

var exercisesCmd = &cobra.Command{
	Use:   "exercises",
	Short: "Manage exercise templates",
}

var exercisesAddCmd = &cobra.Command{
	Use:   "add <id>",
	Short: "Add an exercise and schedule its first practice",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		title, _ := cmd.Flags().GetString("title")
		concepts, _ := cmd.Flags().GetString("concepts")
		difficulty, _ := cmd.Flags().GetInt("difficulty")

		if title == "" {
			title = args[0]
		}

		return withEnv(cmd, func(ctx context.Context, e *env) error {
			it, err := e.svc.EnrollExercise(ctx, e.user, store.ExerciseTemplate{
				ID:         ids.ExerciseTemplateID(args[0]),
				Title:      title,
				ConceptIDs: conceptIDs(concepts),
				Difficulty: difficulty,
			})
			if err != nil {
				return err
			}
			fmt.Println(theme.Good.Render("✓"), "enrolled", args[0],
				theme.Hint.Render("first practice due "+it.ScheduledFor.Local().Format("2006-01-02 15:04")))
			return nil
		})
	},
}

var exercisesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List exercise templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		concept, _ := cmd.Flags().GetString("concept")

		return withEnv(cmd, func(ctx context.Context, e *env) error {
			repo := e.store.Repos().Exercises
			var list []store.ExerciseTemplate
			var err error
			if concept != "" {
				list, err = repo.ListByConcept(ctx, ids.ConceptID(concept))
			} else {
				list, err = repo.List(ctx)
			}
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Println("No exercises found.")
				return nil
			}

			fmt.Printf("%-24s  %-40s  %4s  %s\n", "ID", "Title", "Diff", "Concepts")
			fmt.Println(strings.Repeat("─", 100))
			for _, t := range list {
				fmt.Printf("%-24s  %-40s  %4d  %s\n", t.ID, truncate(t.Title, 40), t.Difficulty, joinIDs(t.ConceptIDs))
			}
			fmt.Printf("\n%d exercises\n", len(list))
			return nil
		})
	},
}

func init() {
	exercisesAddCmd.Flags().String("title", "", "Display title (defaults to the id)")
	exercisesAddCmd.Flags().String("concepts", "", "Comma-separated concept ids the exercise practices")
	exercisesAddCmd.Flags().Int("difficulty", 0, "Difficulty 1-5")

	exercisesListCmd.Flags().String("concept", "", "Only exercises linked to this concept")

	exercisesCmd.AddCommand(exercisesAddCmd)
	exercisesCmd.AddCommand(exercisesListCmd)
}
