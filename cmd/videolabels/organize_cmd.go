package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Nomadcxx/videolabels/internal/organizer"
)

func newOrganizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "organize [source] [target]",
		Short: "Organize video files into the media library",
		Long: `Scan the source directory, classify every video in one batched AI
request, and move files into the target library layout.

Existing files at a computed destination are resolved by content hash,
then quality: identical sources are dropped, better sources replace the
destination, worse sources are dropped. Every move and deletion lands in
the operations log.

Examples:
  videolabels organize /downloads /media
  videolabels organize --dry-run`,
		Args: cobra.MaximumNArgs(2),
		RunE: runOrganize,
	}
	return cmd
}

func newPreviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "preview [source] [target]",
		Short: "Show the organization plan without moving anything",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dryRun = true
			return runOrganize(cmd, args)
		},
	}
}

func runOrganize(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	source, target, err := resolvePaths(cfg, args)
	if err != nil {
		return err
	}

	preview := dryRun || cfg.Options.DryRun

	deps, err := buildRuntime(cfg, source, target, !preview)
	if err != nil {
		return err
	}
	defer deps.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var summary *organizer.Summary
	if preview {
		summary, err = deps.Organizer.Preview(ctx)
	} else {
		summary, err = deps.Organizer.Execute(ctx)
	}
	if err != nil {
		return err
	}

	printSummary(cmd, summary)
	return nil
}
