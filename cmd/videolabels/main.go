package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev" // Set by build flags: -ldflags="-X main.version=1.0.0"
	cfgFile string
	verbose bool
	dryRun  bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "videolabels",
		Short: "AI-assisted video organizer for media-server libraries",
		Long: `videolabels sorts downloaded video files into a media-server layout
(Movies / TV Shows / Extras) by combining filename pattern matching,
folder-location heuristics, and a single batched AI classification call
per run.

Features:
  - One AI request per batch, with pattern fallback when the AI abstains
  - Extras detection by keyword, folder location, duration, and AI
  - Duplicate resolution by content hash, then quality and playability
  - Append-only operation log covering every move and deletion`,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/videolabels/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&dryRun, "dry-run", "n", false, "preview changes without moving files")

	rootCmd.AddCommand(newOrganizeCmd())
	rootCmd.AddCommand(newPreviewCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newCacheCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newLogCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("videolabels %s\n", version)
		},
	}
}
