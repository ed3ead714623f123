package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Nomadcxx/videolabels/internal/api"
	"github.com/Nomadcxx/videolabels/internal/watcher"
)

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch [source] [target]",
		Short: "Watch the source directory and organize automatically",
		Long: `Watch the source tree for new video files and run a batch once
activity settles. Ambiguous files are skipped rather than prompted for,
since watch mode runs unattended. A local status endpoint reports the
last run, cache statistics, and recent operations.`,
		Args: cobra.MaximumNArgs(2),
		RunE: runWatch,
	}
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	source, target, err := resolvePaths(cfg, args)
	if err != nil {
		return err
	}

	deps, err := buildRuntime(cfg, source, target, false)
	if err != nil {
		return err
	}
	defer deps.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var status *api.Server
	if cfg.Watch.StatusAddr != "" {
		status = api.New(cfg.Watch.StatusAddr, deps.Cache, deps.Ops, deps.Log)
		go func() {
			if err := status.Start(); err != nil {
				deps.Log.Error("api", "status endpoint failed", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			status.Shutdown(shutdownCtx)
		}()
	}

	trigger := func(ctx context.Context) error {
		summary, err := deps.Organizer.Execute(ctx)
		if err != nil {
			return err
		}
		if status != nil {
			status.SetSummary(summary)
		}
		printSummary(cmd, summary)
		return nil
	}

	settle := time.Duration(cfg.Watch.SettleSeconds) * time.Second
	w, err := watcher.New(source, settle, trigger, deps.Log)
	if err != nil {
		return err
	}
	defer w.Close()

	// Organize whatever is already there before settling into watch mode.
	if err := trigger(ctx); err != nil {
		return err
	}

	if err := w.Run(ctx); err != nil && err != context.Canceled {
		return err
	}
	return nil
}
