// Package organizer drives a batch run end to end: scan, one batched AI
// classification, concurrent probing, then a serial per-file routing pass
// that reconciles signals, classifies extras, builds destinations, and
// either reports the plan (preview) or resolves duplicates and moves files
// (execute).
package organizer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Nomadcxx/videolabels/internal/classify"
	"github.com/Nomadcxx/videolabels/internal/extras"
	"github.com/Nomadcxx/videolabels/internal/logging"
	"github.com/Nomadcxx/videolabels/internal/oplog"
	"github.com/Nomadcxx/videolabels/internal/patterns"
	"github.com/Nomadcxx/videolabels/internal/planner"
	"github.com/Nomadcxx/videolabels/internal/probe"
	"github.com/Nomadcxx/videolabels/internal/quality"
	"github.com/Nomadcxx/videolabels/internal/resolver"
	"github.com/Nomadcxx/videolabels/internal/scanner"
)

// Batcher classifies a whole batch of filenames in one external call.
type Batcher interface {
	ClassifyBatch(ctx context.Context, filenames []string) []classify.Metadata
}

// Prober supplies per-file playback metadata.
type Prober interface {
	Probe(ctx context.Context, path string) (probe.Info, error)
}

// Mover places a file at its destination.
type Mover interface {
	Move(src, dst string) error
}

// Resolver decides occupied-destination conflicts.
type Resolver interface {
	Resolve(ctx context.Context, src, dst string, isExtra bool) (resolver.Outcome, error)
}

// DisambiguateFunc is invoked for files the engine cannot classify. It
// returns "tv" or "movie" to force a type, or ok=false to skip the file for
// this run.
type DisambiguateFunc func(path string) (mediaType string, ok bool)

// ProgressFunc receives percentages from 0 to 100.
type ProgressFunc func(percent int)

// Organizer runs batches over a source tree into a target library.
type Organizer struct {
	source string
	target string

	batcher      Batcher
	extras       *extras.Classifier
	prober       Prober
	resolver     Resolver
	mover        Mover
	ops          *oplog.Log
	workers      int
	disambiguate DisambiguateFunc
	progress     ProgressFunc
	log          *logging.Logger
}

// Option configures an Organizer.
type Option func(*Organizer)

// WithWorkers bounds the probing pool. Zero or negative means one worker
// per CPU core.
func WithWorkers(n int) Option {
	return func(o *Organizer) { o.workers = n }
}

// WithDisambiguation installs the human-in-the-loop callback.
func WithDisambiguation(fn DisambiguateFunc) Option {
	return func(o *Organizer) { o.disambiguate = fn }
}

// WithProgress installs a progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(o *Organizer) { o.progress = fn }
}

// WithOperationsLog records moves and deletions to the audit log.
func WithOperationsLog(ops *oplog.Log) Option {
	return func(o *Organizer) { o.ops = ops }
}

// New assembles an Organizer. batcher may be nil, in which case every file
// classifies as unknown and only pattern/location signals route files.
func New(source, target string, batcher Batcher, extrasClassifier *extras.Classifier,
	prober Prober, res Resolver, mover Mover, log *logging.Logger, opts ...Option) *Organizer {
	if log == nil {
		log = logging.Nop()
	}
	o := &Organizer{
		source:   source,
		target:   target,
		batcher:  batcher,
		extras:   extrasClassifier,
		prober:   prober,
		resolver: res,
		mover:    mover,
		log:      log,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.workers <= 0 {
		o.workers = runtime.NumCPU()
	}
	return o
}

// Preview computes the full plan without touching the filesystem.
func (o *Organizer) Preview(ctx context.Context) (*Summary, error) {
	return o.run(ctx, false)
}

// Execute performs the plan: duplicate resolution, moves, operation log
// entries, and empty-directory cleanup under the source tree.
func (o *Organizer) Execute(ctx context.Context) (*Summary, error) {
	return o.run(ctx, true)
}

func (o *Organizer) run(ctx context.Context, execute bool) (*Summary, error) {
	summary := &Summary{
		Source:    o.source,
		Target:    o.target,
		Executed:  execute,
		StartedAt: time.Now(),
	}

	files, err := scanner.ScanVideos(o.source)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		o.log.Info("organizer", "no videos found", logging.F("source", o.source))
		summary.FinishedAt = time.Now()
		return summary, nil
	}
	o.report(10)

	filenames := make([]string, len(files))
	for i, f := range files {
		filenames[i] = filepath.Base(f)
	}

	o.log.Info("organizer", "classifying batch", logging.F("files", len(files)))
	metas := o.classifyBatch(ctx, filenames)

	infos := o.probeAll(ctx, files)
	o.report(50)

	counter := planner.NewExtrasCounter()
	for i, file := range files {
		result := o.routeFile(ctx, file, metas[i], infos[i], counter, execute)
		summary.Results = append(summary.Results, result)
		o.report(50 + (i+1)*50/len(files))
	}

	if execute {
		o.cleanupEmptyDirs(o.source)
	}

	summary.FinishedAt = time.Now()
	return summary, nil
}

// classifyBatch issues the single external classification call per run.
func (o *Organizer) classifyBatch(ctx context.Context, filenames []string) []classify.Metadata {
	if o.batcher == nil {
		metas := make([]classify.Metadata, len(filenames))
		for i := range metas {
			metas[i] = classify.Unknown()
		}
		return metas
	}
	return o.batcher.ClassifyBatch(ctx, filenames)
}

// probeAll fans probing out across the worker pool. Results stay aligned
// with the input order; only the I/O is parallel, never the routing.
func (o *Organizer) probeAll(ctx context.Context, files []string) []probe.Info {
	infos := make([]probe.Info, len(files))
	if o.prober == nil {
		return infos
	}

	sem := make(chan struct{}, o.workers)
	var wg sync.WaitGroup
	for i, file := range files {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, file string) {
			defer wg.Done()
			defer func() { <-sem }()
			info, err := o.prober.Probe(ctx, file)
			if err != nil {
				o.log.Debug("organizer", "probe failed", logging.F("file", file), logging.F("reason", err))
				return
			}
			infos[i] = info
		}(i, file)
	}
	wg.Wait()
	return infos
}

func (o *Organizer) routeFile(ctx context.Context, file string, meta classify.Metadata,
	info probe.Info, counter planner.ExtrasCounter, execute bool) Result {

	result := Result{
		Source:  file,
		Quality: quality.Parse(file).String(),
	}

	var extraCls *extras.Classification
	if o.extras != nil {
		extraCls = o.extras.Classify(ctx, file, info.Duration)
	}

	signals := patterns.Match(filepath.Base(file), filepath.Base(filepath.Dir(file)))
	rec := planner.Reconcile(meta, signals, o.log, file)

	// Extras route on location and filename alone; even an unclassified
	// file in an Extras folder has a home.
	if extraCls == nil {
		if rec.NeedsUserInput {
			forced, ok := o.askUser(file)
			if !ok {
				result.Status = StatusSkippedAmbiguous
				result.Detail = "needs user input"
				return result
			}
			rec.Meta.Type = forced
		}
		// At this point only tv and movie can be routed; an AI "extra"
		// verdict that the extras classifier could not confirm has no
		// destination of its own.
		if rec.Meta.Type != classify.TypeTV && rec.Meta.Type != classify.TypeMovie {
			result.Status = StatusSkippedUnknown
			result.Detail = "unclassifiable"
			return result
		}
	}

	identity := planner.BuildIdentity(rec.Meta, extraCls, file)
	result.Kind = identity.Kind.String()

	dest, err := planner.BuildDestination(identity, filepath.Ext(file), counter)
	if err != nil {
		result.Status = StatusError
		result.Err = err
		return result
	}
	result.Destination = filepath.Join(o.target, dest.RelPath)
	result.Label = dest.Label
	result.Show = showName(identity)

	if !execute {
		result.Status = StatusPreview
		return result
	}

	return o.apply(ctx, result, identity.Kind == planner.KindExtra)
}

// apply performs duplicate resolution and the move for one file.
func (o *Organizer) apply(ctx context.Context, result Result, isExtra bool) Result {
	outcome := resolver.OutcomeClear
	if o.resolver != nil {
		var err error
		outcome, err = o.resolver.Resolve(ctx, result.Source, result.Destination, isExtra)
		if err != nil {
			result.Status = StatusError
			result.Err = err
			return result
		}
	}

	switch outcome {
	case resolver.OutcomeSkipIdentical, resolver.OutcomeSkipInferior, resolver.OutcomeKeepBoth:
		result.Status = StatusSkippedDuplicate
		result.Detail = outcome.String()
		return result
	}

	if err := o.mover.Move(result.Source, result.Destination); err != nil {
		result.Status = StatusError
		result.Err = fmt.Errorf("failed to move: %w", err)
		return result
	}
	o.ops.Move(result.Source, result.Destination)
	o.log.Info("organizer", "moved",
		logging.F("from", result.Source), logging.F("to", result.Destination))

	result.Status = StatusApplied
	return result
}

func (o *Organizer) askUser(file string) (string, bool) {
	if o.disambiguate == nil {
		return "", false
	}
	forced, ok := o.disambiguate(file)
	if !ok {
		return "", false
	}
	switch strings.ToLower(strings.TrimSpace(forced)) {
	case classify.TypeTV:
		return classify.TypeTV, true
	case classify.TypeMovie:
		return classify.TypeMovie, true
	default:
		return "", false
	}
}

// cleanupEmptyDirs removes directories left empty by the run, deepest
// first, preserving any directory named "Extras" and the source root.
func (o *Organizer) cleanupEmptyDirs(root string) {
	var dirs []string
	filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() && path != root {
			dirs = append(dirs, path)
		}
		return nil
	})

	sort.Slice(dirs, func(i, j int) bool { return len(dirs[i]) > len(dirs[j]) })

	for _, dir := range dirs {
		if filepath.Base(dir) == "Extras" {
			continue
		}
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			continue
		}
		if err := os.Remove(dir); err != nil {
			o.log.Warn("organizer", "failed to remove empty directory",
				logging.F("dir", dir), logging.F("reason", err))
			continue
		}
		o.log.Info("organizer", "removed empty directory", logging.F("dir", dir))
	}
}

func (o *Organizer) report(percent int) {
	if o.progress != nil {
		o.progress(percent)
	}
}

func showName(id planner.Identity) string {
	switch id.Kind {
	case planner.KindMovie:
		return planner.CleanName(id.Movie.Name)
	case planner.KindEpisode, planner.KindSpecial:
		return planner.CleanName(id.Episode.Show)
	case planner.KindExtra:
		return planner.CleanName(id.Extra.Show)
	default:
		return ""
	}
}
