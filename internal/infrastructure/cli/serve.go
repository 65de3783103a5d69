package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/storycurator/curator/internal/infrastructure/logging"
	"github.com/storycurator/curator/internal/infrastructure/stream"
	"github.com/storycurator/curator/internal/infrastructure/watch"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Stream review results over websockets while watching the dataset",
	Long: `Run an initial review, then keep watching the dataset and re-review
on every change. Each finished story is pushed to connected websocket
clients at /stream as soon as its aggregation completes, so dashboards
render results in completion order rather than after the whole batch.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := logging.New(verbose)
		defer func() { _ = logger.Sync() }()

		rt, err := newRuntime(logger)
		if err != nil {
			return err
		}

		hub := stream.NewHub(logger)
		rt.svc.OnDocument(hub.Publish)

		addr := serveAddr
		if addr == "" {
			addr = rt.cfg.StreamAddr
		}

		mux := http.NewServeMux()
		mux.Handle("/stream", hub)
		server := &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}

		var mu sync.Mutex
		runReview := func() {
			mu.Lock()
			defer mu.Unlock()
			if _, err := rt.reviewOnce(cmd.Context()); err != nil {
				logger.Error("review run failed", zap.Error(err))
			}
		}

		watcher, err := watch.NewDatasetWatcher(0, logger, runReview)
		if err != nil {
			return err
		}
		if err := watcher.Watch(resolveDir(rt.cfg.DatasetDir)); err != nil {
			return err
		}

		g, ctx := errgroup.WithContext(cmd.Context())
		g.Go(func() error {
			if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			return watcher.Run(ctx)
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		})

		fmt.Printf("Streaming results on ws://%s/stream\n", addr)
		runReview()
		return g.Wait()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (defaults to stream_addr from curator.yaml)")
	RootCmd.AddCommand(serveCmd)
}
