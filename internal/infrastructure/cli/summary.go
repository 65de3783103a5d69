package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/storycurator/curator/internal/domain"
	"github.com/storycurator/curator/internal/infrastructure/config"
	"github.com/storycurator/curator/internal/infrastructure/storage"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print the latest review results",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(rootDir)
		if err != nil {
			return err
		}
		results := storage.NewResultRepository(resolveDir(cfg.OutputDir))
		run, err := results.LoadLatestRun()
		if err != nil {
			return fmt.Errorf("no results found, run \"curator review\" first: %w", err)
		}
		printRunSummary(run)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(summaryCmd)
}

func printRunSummary(run *domain.ReviewRun) {
	fmt.Println(headerStyle.Render(" Review run " + run.RunID + " "))
	fmt.Println()

	ids := make([]string, 0, len(run.Results))
	for id := range run.Results {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	critical := 0
	for _, id := range ids {
		result := run.Results[id]
		printDocumentSummary(result)
		if result.HasCritical {
			critical++
		}
	}

	fmt.Printf("%d stories reviewed", len(ids))
	if critical > 0 {
		fmt.Printf(", %s", severityCritical.Render(fmt.Sprintf("%d with critical findings", critical)))
	}
	fmt.Println()
}

func printDocumentSummary(result domain.DocumentResult) {
	marker := cleanStyle.Render("clean")
	if len(result.Flags) > 0 {
		marker = fmt.Sprintf("%d flagged spans", len(result.Flags))
	}
	if result.HasCritical {
		marker = severityCritical.Render("CRITICAL")
	}
	fmt.Printf("%s (%s) %s\n", result.Title, domain.GradeName(result.GradeLevel), marker)

	for _, span := range result.Flags {
		style := severityStyle(span.Severity)
		fmt.Printf("  [%d-%d] %s %s  %s\n",
			span.StartID, span.EndID,
			style.Render(span.Severity.String()),
			span.Label,
			dimStyle.Render(span.Rationale))
	}
	for _, span := range result.Skills {
		fmt.Printf("  [%d-%d] %s (%s)\n",
			span.StartID, span.EndID,
			span.Label,
			domain.DisplayCategory(span.SkillID))
	}
	if degraded := result.DegradedCategories(); len(degraded) > 0 {
		fmt.Printf("  %s\n", degradedStyle.Render(fmt.Sprintf("coverage degraded: %v", degraded)))
	}
	fmt.Println()
}
