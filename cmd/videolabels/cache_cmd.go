package main

import (
	"github.com/spf13/cobra"

	"github.com/Nomadcxx/videolabels/internal/metacache"
	"github.com/Nomadcxx/videolabels/internal/paths"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and maintain the metadata cache",
	}
	cmd.AddCommand(newCacheStatsCmd())
	cmd.AddCommand(newCachePruneCmd())
	cmd.AddCommand(newCacheClearCmd())
	return cmd
}

func openCache() (*metacache.Cache, error) {
	cachePath, err := paths.CachePath()
	if err != nil {
		return nil, err
	}
	return metacache.Open(cachePath, nil)
}

func newCacheStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cache entry counts and usage",
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := openCache()
			if err != nil {
				return err
			}
			defer cache.Close()

			stats, err := cache.GetStats()
			if err != nil {
				return err
			}

			cmd.Printf("Cache: %s\n", cache.Path())
			cmd.Printf("Entries: %d (hits: %d)\n", stats.Entries, stats.Hits)
			for kind, count := range stats.Kinds {
				cmd.Printf("  %-10s %d\n", kind, count)
			}
			return nil
		},
	}
}

func newCachePruneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Remove expired and least recently used entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			cache, err := openCache()
			if err != nil {
				return err
			}
			defer cache.Close()

			removed := cache.Prune(cfg.Cache.MaxEntries)
			cmd.Printf("Removed %d entries\n", removed)
			return nil
		},
	}
}

func newCacheClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cache entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := openCache()
			if err != nil {
				return err
			}
			defer cache.Close()

			if err := cache.Clear(); err != nil {
				return err
			}
			cmd.Println("Cache cleared")
			return nil
		},
	}
}
