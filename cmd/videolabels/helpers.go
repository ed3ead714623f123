package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Nomadcxx/videolabels/internal/classify"
	"github.com/Nomadcxx/videolabels/internal/config"
	"github.com/Nomadcxx/videolabels/internal/extras"
	"github.com/Nomadcxx/videolabels/internal/logging"
	"github.com/Nomadcxx/videolabels/internal/metacache"
	"github.com/Nomadcxx/videolabels/internal/oplog"
	"github.com/Nomadcxx/videolabels/internal/organizer"
	"github.com/Nomadcxx/videolabels/internal/paths"
	"github.com/Nomadcxx/videolabels/internal/probe"
	"github.com/Nomadcxx/videolabels/internal/resolver"
	"github.com/Nomadcxx/videolabels/internal/transfer"
)

func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		return config.LoadPath(cfgFile)
	}
	return config.Load()
}

func newLogger(cfg *config.Config) (*logging.Logger, error) {
	logCfg := cfg.Logging
	if verbose {
		logCfg.Level = "debug"
	}
	return logging.New(logCfg)
}

// runtimeDeps bundles everything a batch run needs besides the organizer
// itself, so callers can close resources and surface status.
type runtimeDeps struct {
	Organizer *organizer.Organizer
	Cache     *metacache.Cache
	Ops       *oplog.Log
	Log       *logging.Logger
}

func (d *runtimeDeps) Close() {
	if d.Ops != nil {
		d.Ops.Close()
	}
	if d.Cache != nil {
		d.Cache.Close()
	}
	if d.Log != nil {
		d.Log.Close()
	}
}

// buildRuntime assembles the full pipeline from configuration. interactive
// controls whether ambiguous files prompt on stdin or are skipped.
func buildRuntime(cfg *config.Config, source, target string, interactive bool) (*runtimeDeps, error) {
	log, err := newLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}

	var cache *metacache.Cache
	if cfg.Cache.Enabled {
		cachePath, err := paths.CachePath()
		if err != nil {
			log.Close()
			return nil, err
		}
		cache, err = metacache.Open(cachePath, log)
		if err != nil {
			log.Close()
			return nil, err
		}
	}

	opsPath, err := paths.OperationsLogPath()
	if err != nil {
		cache.Close()
		log.Close()
		return nil, err
	}
	ops, err := oplog.Open(opsPath, log)
	if err != nil {
		cache.Close()
		log.Close()
		return nil, err
	}

	cacheTTL := time.Duration(cfg.Cache.TTLHours) * time.Hour

	prober := probe.NewProber(log, probe.WithCache(cache, cacheTTL))

	var batcher organizer.Batcher
	var identifier extras.Identifier
	if cfg.AI.Enabled {
		client, err := classify.NewClient(cfg.AI.ClientConfig(), log)
		if err != nil {
			ops.Close()
			cache.Close()
			log.Close()
			return nil, fmt.Errorf("invalid AI configuration: %w", err)
		}
		batcher = client
		identifier = client
	}

	res := resolver.New(prober, ops, log,
		resolver.WithCache(cache, cacheTTL),
		resolver.WithExtrasPolicy(cfg.ExtrasPolicy()))

	mover := transfer.NewMover(log, transfer.WithChecksumVerify(cfg.Options.VerifyChecksums))

	opts := []organizer.Option{
		organizer.WithWorkers(cfg.Options.Workers),
		organizer.WithOperationsLog(ops),
		organizer.WithProgress(printProgress),
	}
	if interactive {
		opts = append(opts, organizer.WithDisambiguation(promptMediaType))
	}

	org := organizer.New(source, target, batcher,
		extras.NewClassifier(identifier, log), prober, res, mover, log, opts...)

	return &runtimeDeps{Organizer: org, Cache: cache, Ops: ops, Log: log}, nil
}

// promptMediaType asks the user to classify a file the engine could not.
func promptMediaType(path string) (string, bool) {
	fmt.Printf("\nCannot classify: %s\n", filepath.Base(path))
	fmt.Print("Type [t]v, [m]ovie, or [s]kip: ")

	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return "", false
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "t", "tv":
		return "tv", true
	case "m", "movie":
		return "movie", true
	default:
		return "", false
	}
}

func printProgress(percent int) {
	fmt.Printf("\r%3d%%", percent)
	if percent >= 100 {
		fmt.Println()
	}
}

// resolvePaths applies CLI args over config, requiring both ends.
func resolvePaths(cfg *config.Config, args []string) (source, target string, err error) {
	source = cfg.Source
	target = cfg.Target
	if len(args) > 0 {
		source = args[0]
	}
	if len(args) > 1 {
		target = args[1]
	}
	if source == "" {
		return "", "", fmt.Errorf("no source directory (pass as argument or set in config)")
	}
	if target == "" {
		return "", "", fmt.Errorf("no target library (pass as argument or set in config)")
	}
	return source, target, nil
}
