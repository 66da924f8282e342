package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/studyloop/internal/conceptgraph"
	"github.com/abhisek/studyloop/internal/ids"
	"github.com/abhisek/studyloop/internal/progress"
	"github.com/abhisek/studyloop/internal/ui/theme"
)

var conceptsCmd = &cobra.Command{
	Use:   "concepts",
	Short: "Manage the concept graph",
}

var conceptsImportCmd = &cobra.Command{
	Use:   "import <catalog.yaml>",
	Short: "Import a YAML concept catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		return withEnv(cmd, func(ctx context.Context, e *env) error {
			res, err := e.svc.ImportCatalog(ctx, f)
			var verr *progress.ValidationError
			if errors.As(err, &verr) {
				printIssues(verr.Issues)
				return fmt.Errorf("catalog not imported: %d issue(s)", len(verr.Issues))
			}
			if err != nil {
				return err
			}
			fmt.Println(theme.Good.Render("✓"), fmt.Sprintf("%d created, %d updated", res.Created, res.Updated))
			return nil
		})
	},
}

var conceptsValidateCmd = &cobra.Command{
	Use:   "validate <catalog.yaml>",
	Short: "Check a YAML concept catalog without importing it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		nodes, res, err := progress.ValidateCatalog(f)
		if err != nil {
			return err
		}
		if !res.Valid {
			printIssues(res.Issues)
			return fmt.Errorf("catalog invalid: %d issue(s)", len(res.Issues))
		}
		fmt.Println(theme.Good.Render("✓"), fmt.Sprintf("%d concepts, graph is valid", len(nodes)))
		return nil
	},
}

var conceptsAddCmd = &cobra.Command{
	Use:   "add <id>",
	Short: "Add a single concept",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		domain, _ := cmd.Flags().GetString("domain")
		kind, _ := cmd.Flags().GetString("kind")
		requires, _ := cmd.Flags().GetString("requires")
		difficulty, _ := cmd.Flags().GetInt("difficulty")
		importance, _ := cmd.Flags().GetInt("importance")

		if name == "" {
			name = args[0]
		}
		if kind != "" && !slices.Contains(conceptgraph.AllKinds(), conceptgraph.ConceptKind(kind)) {
			return fmt.Errorf("unknown kind %q", kind)
		}
		if domain != "" {
			if _, ok := conceptgraph.ParseDomain(ids.DomainID(domain)).(conceptgraph.UnknownDomain); ok {
				return fmt.Errorf("domain %q is not of the form discipline.area.subarea", domain)
			}
		}

		return withEnv(cmd, func(ctx context.Context, e *env) error {
			n, err := e.svc.AddConcept(ctx, conceptgraph.ConceptNode{
				ID:            ids.ConceptID(args[0]),
				DomainID:      ids.DomainID(strings.ToLower(domain)),
				Name:          name,
				Kind:          conceptgraph.ConceptKind(kind),
				Difficulty:    difficulty,
				Importance:    importance,
				Prerequisites: conceptIDs(requires),
			})
			var verr *progress.ValidationError
			if errors.As(err, &verr) {
				printIssues(verr.Issues)
				return errors.New("concept not added")
			}
			if err != nil {
				return err
			}
			fmt.Println(theme.Good.Render("✓"), "added", n.ID, theme.Hint.Render("("+n.Slug+")"))
			return nil
		})
	},
}

var conceptsRequireCmd = &cobra.Command{
	Use:   "require <concept> <prerequisite>",
	Short: "Record that a concept requires another",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(ctx context.Context, e *env) error {
			from, to := ids.ConceptID(args[0]), ids.ConceptID(args[1])
			if err := e.svc.AddPrerequisite(ctx, from, to); err != nil {
				if errors.Is(err, progress.ErrWouldCreateCycle) {
					return fmt.Errorf("%s already leads to %s; adding this edge would create a cycle", to, from)
				}
				return err
			}
			fmt.Println(theme.Good.Render("✓"), from, "requires", to)
			return nil
		})
	},
}

var conceptsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List concepts (optionally filtered by domain prefix)",
	RunE: func(cmd *cobra.Command, args []string) error {
		domain, _ := cmd.Flags().GetString("domain")

		return withEnv(cmd, func(ctx context.Context, e *env) error {
			var nodes []conceptgraph.ConceptNode
			var err error
			if domain != "" {
				nodes, err = e.store.Repos().Concepts.ListByDomain(ctx, ids.DomainID(domain))
			} else {
				nodes, err = e.store.Repos().Concepts.List(ctx)
			}
			if err != nil {
				return err
			}
			if len(nodes) == 0 {
				fmt.Println("No concepts found.")
				return nil
			}

			fmt.Printf("%-24s  %-32s  %-12s  %-36s  %s\n", "ID", "Name", "Kind", "Domain", "Requires")
			fmt.Println(strings.Repeat("─", 120))
			for _, n := range nodes {
				fmt.Printf("%-24s  %-32s  %-12s  %-36s  %s\n",
					n.ID, truncate(n.Name, 32), conceptgraph.KindDisplayName(n.Kind),
					n.DomainID, joinIDs(n.Prerequisites))
			}
			fmt.Printf("\n%d concepts\n", len(nodes))
			return nil
		})
	},
}

var conceptsLevelsCmd = &cobra.Command{
	Use:   "levels",
	Short: "Show concepts in study order, grouped by depth",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(ctx context.Context, e *env) error {
			g, err := e.svc.Graph(ctx)
			if err != nil {
				return err
			}
			order, err := g.TopologicalSort()
			var cerr *conceptgraph.CycleError
			if errors.As(err, &cerr) {
				return fmt.Errorf("graph has a cycle: %s", strings.Join(idStrings(cerr.Cycle), " -> "))
			}
			if err != nil {
				return err
			}
			levels, err := g.Levels()
			if err != nil {
				return err
			}

			current := -1
			for _, n := range order {
				if l := levels[n.ID]; l != current {
					current = l
					fmt.Println(theme.Heading.Render(fmt.Sprintf("Level %d", l)))
				}
				fmt.Printf("  %-24s  %s\n", n.ID, n.Name)
			}
			return nil
		})
	},
}

var conceptsNeighborhoodCmd = &cobra.Command{
	Use:   "neighborhood <id>",
	Short: "Show a concept with nearby prerequisites and dependents",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		up, _ := cmd.Flags().GetInt("up")
		down, _ := cmd.Flags().GetInt("down")

		return withEnv(cmd, func(ctx context.Context, e *env) error {
			g, err := e.svc.Graph(ctx)
			if err != nil {
				return err
			}
			nb, err := g.Neighborhood(ids.ConceptID(args[0]), up, down)
			if err != nil {
				return err
			}

			fmt.Println(theme.Title.Render(string(nb.Center)))
			ancestors := g.Ancestors(nb.Center)
			for _, n := range nb.Nodes {
				var marker string
				switch {
				case n.ID == nb.Center:
					marker = "●"
				case ancestors.Has(n.ID):
					marker = "↑"
				default:
					marker = "↓"
				}
				fmt.Printf("  %s %-24s  %s\n", marker, n.ID, n.Name)
			}
			if len(nb.Edges) > 0 {
				fmt.Println()
				fmt.Println(theme.Heading.Render("Edges"))
				for _, edge := range nb.Edges {
					fmt.Printf("  %s → %s\n", edge.From, edge.To)
				}
			}
			return nil
		})
	},
}

var conceptsPathCmd = &cobra.Command{
	Use:   "path <id>",
	Short: "Show what to master next on the way to a concept",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(ctx context.Context, e *env) error {
			target := ids.ConceptID(args[0])
			path, err := e.svc.LearningPath(ctx, e.user, target)
			if err != nil {
				return err
			}
			if len(path) == 0 {
				fmt.Println(theme.Good.Render("✓"), target, "is already mastered")
				return nil
			}
			for i, n := range path {
				fmt.Printf("%3d. %-24s  %s\n", i+1, n.ID, n.Name)
			}
			return nil
		})
	},
}

var conceptsAvailableCmd = &cobra.Command{
	Use:   "available",
	Short: "List concepts whose prerequisites are mastered",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(ctx context.Context, e *env) error {
			nodes, err := e.svc.AvailableConcepts(ctx, e.user)
			if err != nil {
				return err
			}
			if len(nodes) == 0 {
				fmt.Println("Nothing unlocked right now.")
				return nil
			}
			for _, n := range nodes {
				fmt.Printf("  %-24s  %s\n", n.ID, n.Name)
			}
			return nil
		})
	},
}

func init() {
	conceptsAddCmd.Flags().String("name", "", "Display name (defaults to the id)")
	conceptsAddCmd.Flags().String("domain", "", "Domain id, e.g. mathematics.calculus.limits")
	conceptsAddCmd.Flags().String("kind", "", "Concept kind (definition, theorem, technique, principle, fact, skill)")
	conceptsAddCmd.Flags().String("requires", "", "Comma-separated prerequisite ids")
	conceptsAddCmd.Flags().Int("difficulty", 0, "Difficulty 1-5")
	conceptsAddCmd.Flags().Int("importance", 0, "Importance 1-5")

	conceptsListCmd.Flags().String("domain", "", "Domain prefix, e.g. mathematics or mathematics.calculus")

	conceptsNeighborhoodCmd.Flags().Int("up", 1, "Prerequisite hops to include")
	conceptsNeighborhoodCmd.Flags().Int("down", 1, "Dependent hops to include")

	conceptsCmd.AddCommand(conceptsImportCmd)
	conceptsCmd.AddCommand(conceptsValidateCmd)
	conceptsCmd.AddCommand(conceptsAddCmd)
	conceptsCmd.AddCommand(conceptsRequireCmd)
	conceptsCmd.AddCommand(conceptsListCmd)
	conceptsCmd.AddCommand(conceptsLevelsCmd)
	conceptsCmd.AddCommand(conceptsNeighborhoodCmd)
	conceptsCmd.AddCommand(conceptsPathCmd)
	conceptsCmd.AddCommand(conceptsAvailableCmd)
}

func printIssues(issues []string) {
	for _, issue := range issues {
		fmt.Println(theme.Bad.Render("✗"), issue)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func joinIDs(list []ids.ConceptID) string {
	return strings.Join(idStrings(list), ", ")
}

func idStrings(list []ids.ConceptID) []string {
	out := make([]string, len(list))
	for i, id := range list {
		out[i] = string(id)
	}
	return out
}
