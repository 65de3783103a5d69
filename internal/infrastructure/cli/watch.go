package cli

import (
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/storycurator/curator/internal/infrastructure/logging"
	"github.com/storycurator/curator/internal/infrastructure/watch"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-review the dataset whenever it changes on disk",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := logging.New(verbose)
		defer func() { _ = logger.Sync() }()

		rt, err := newRuntime(logger)
		if err != nil {
			return err
		}

		// Reviews are serialized: a change arriving mid-run queues exactly
		// one follow-up run instead of stacking them.
		var mu sync.Mutex
		runReview := func() {
			mu.Lock()
			defer mu.Unlock()
			run, err := rt.reviewOnce(cmd.Context())
			if err != nil {
				logger.Error("review run failed", zap.Error(err))
				return
			}
			printRunSummary(run)
		}

		watcher, err := watch.NewDatasetWatcher(watchDebounce, logger, runReview)
		if err != nil {
			return err
		}
		datasetDir := resolveDir(rt.cfg.DatasetDir)
		if err := watcher.Watch(datasetDir); err != nil {
			return err
		}

		runReview()
		fmt.Printf("Watching %s for dataset changes...\n", datasetDir)
		return watcher.Run(cmd.Context())
	},
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 2*time.Second, "quiet period before a change triggers a run")
	RootCmd.AddCommand(watchCmd)
}
