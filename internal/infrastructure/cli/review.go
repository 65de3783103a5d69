package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/storycurator/curator/internal/application"
	"github.com/storycurator/curator/internal/domain"
	"github.com/storycurator/curator/internal/infrastructure/config"
	"github.com/storycurator/curator/internal/infrastructure/logging"
	"github.com/storycurator/curator/internal/infrastructure/oracle"
	"github.com/storycurator/curator/internal/infrastructure/storage"
)

var (
	reviewProvider string
	reviewModel    string
	reviewJSON     bool
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Review the story dataset and write the results",
	Long: `Review every story in the dataset against the content rubric and
the skill taxonomy, then write results.json and a per-run archive to the
output directory.

The oracle provider comes from curator.yaml, overridable with --provider
and --model or the CURATOR_AI_PROVIDER / CURATOR_AI_MODEL environment
variables. Use "--provider mock" for a dry run without network access.`,
	RunE: runReviewCmd,
}

func init() {
	reviewCmd.Flags().StringVar(&reviewProvider, "provider", "", "oracle provider (openai, gemini, ollama, mock)")
	reviewCmd.Flags().StringVar(&reviewModel, "model", "", "oracle model name")
	reviewCmd.Flags().BoolVar(&reviewJSON, "json", false, "print the full run as JSON instead of the summary")
	RootCmd.AddCommand(reviewCmd)
}

func runReviewCmd(cmd *cobra.Command, args []string) error {
	logger := logging.New(verbose)
	defer func() { _ = logger.Sync() }()

	rt, err := newRuntime(logger)
	if err != nil {
		return err
	}

	run, err := rt.reviewOnce(cmd.Context())
	if err != nil {
		return err
	}

	if reviewJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(run)
	}
	printRunSummary(run)
	return nil
}

// runtime bundles the wired pipeline for the commands that execute reviews.
// Repositories are held as the domain ports; only construction names the
// filesystem implementations.
type runtime struct {
	cfg     *config.Config
	logger  *zap.Logger
	dataset domain.DatasetRepository
	results domain.ResultRepository
	svc     *application.ReviewService
}

func newRuntime(logger *zap.Logger) (*runtime, error) {
	cfg, err := config.Load(rootDir)
	if err != nil {
		return nil, err
	}
	if reviewProvider != "" {
		cfg.Provider = reviewProvider
	}
	if reviewModel != "" {
		cfg.Model = reviewModel
	}

	provider, err := oracle.GetDefaultProvider(cfg.Provider, cfg.Model)
	if err != nil {
		return nil, err
	}

	svc := application.NewReviewService(provider, logger, application.ReviewOptions{
		DocumentWorkers: cfg.DocumentWorkers,
		CategoryWorkers: cfg.CategoryWorkers,
	})

	return &runtime{
		cfg:     cfg,
		logger:  logger,
		dataset: storage.NewDatasetRepository(resolveDir(cfg.DatasetDir)),
		results: storage.NewResultRepository(resolveDir(cfg.OutputDir)),
		svc:     svc,
	}, nil
}

// reviewOnce loads the dataset fresh, runs the full review, and persists the
// run. Reloading each time lets the watch and serve commands pick up dataset
// edits without restarting.
func (rt *runtime) reviewOnce(ctx context.Context) (*domain.ReviewRun, error) {
	docs, err := rt.dataset.LoadDocuments()
	if err != nil {
		return nil, err
	}
	taxonomy, err := rt.dataset.LoadTaxonomy()
	if err != nil {
		return nil, err
	}
	rubric, err := rt.dataset.LoadRubric()
	if err != nil {
		return nil, err
	}

	rt.logger.Info("starting review run",
		zap.Int("documents", len(docs)),
		zap.Int("skills", taxonomy.Len()),
		zap.String("provider", rt.cfg.Provider))

	run, err := rt.svc.ReviewAll(ctx, docs, rubric, taxonomy)
	if err != nil {
		return nil, err
	}
	if err := rt.results.SaveRun(run); err != nil {
		return nil, fmt.Errorf("save run: %w", err)
	}
	rt.logger.Info("review run complete", zap.String("run_id", run.RunID))
	return run, nil
}

func resolveDir(dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(rootDir, dir)
}
