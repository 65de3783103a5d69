package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/felixgeelhaar/fortify/retry"

	"github.com/storycurator/curator/internal/domain"
)

const ResultsFile = "results.json"
const RunsDir = "runs"

// ResultRepository persists review runs under an output directory: each run
// is archived as runs/<run_id>.json and results.json always mirrors the
// latest run.
type ResultRepository struct {
	root        string
	retryConfig retry.Config
}

func NewResultRepository(root string) *ResultRepository {
	return &ResultRepository{
		root: root,
		retryConfig: retry.Config{
			MaxAttempts:   3,
			InitialDelay:  10 * time.Millisecond,
			BackoffPolicy: retry.BackoffExponential,
		},
	}
}

func (r *ResultRepository) SaveRun(run *domain.ReviewRun) error {
	if run == nil || run.RunID == "" {
		return fmt.Errorf("cannot save run without an ID")
	}

	if err := os.MkdirAll(filepath.Join(r.root, RunsDir), 0700); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal run: %w", err)
	}

	archive := filepath.Join(r.root, RunsDir, run.RunID+".json")
	if err := os.WriteFile(archive, data, 0600); err != nil {
		return fmt.Errorf("write run archive: %w", err)
	}
	if err := os.WriteFile(filepath.Join(r.root, ResultsFile), data, 0600); err != nil {
		return fmt.Errorf("write latest results: %w", err)
	}
	return nil
}

// LoadLatestRun reads results.json. Reads are retried briefly because a
// concurrent SaveRun may be mid-write.
func (r *ResultRepository) LoadLatestRun() (*domain.ReviewRun, error) {
	retryer := retry.New[*domain.ReviewRun](r.retryConfig)

	return retryer.Do(context.Background(), func(ctx context.Context) (*domain.ReviewRun, error) {
		path := filepath.Join(r.root, ResultsFile)
		data, err := os.ReadFile(path) // #nosec G304 -- output root is operator-provided config
		if err != nil {
			return nil, fmt.Errorf("read results: %w", err)
		}

		var run domain.ReviewRun
		if err := json.Unmarshal(data, &run); err != nil {
			return nil, fmt.Errorf("parse results: %w", err)
		}
		return &run, nil
	})
}
