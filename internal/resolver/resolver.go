// Package resolver decides what happens when a computed destination path is
// already occupied. Identical files collapse to one; otherwise the better
// copy wins by playability, then quality score. The loser is deleted, never
// archived, so every deletion goes to the operations log with the file's
// content hash.
package resolver

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Nomadcxx/videolabels/internal/logging"
	"github.com/Nomadcxx/videolabels/internal/metacache"
	"github.com/Nomadcxx/videolabels/internal/oplog"
	"github.com/Nomadcxx/videolabels/internal/probe"
)

// Outcome is the resolver's verdict for an occupied destination.
type Outcome int

const (
	// OutcomeClear means the destination is free; the caller just moves.
	OutcomeClear Outcome = iota
	// OutcomeSkipIdentical means source and destination were byte-identical;
	// the source was deleted.
	OutcomeSkipIdentical
	// OutcomeReplace means the destination was deleted; the caller moves the
	// source into its place.
	OutcomeReplace
	// OutcomeSkipInferior means the destination is better; the source was
	// deleted.
	OutcomeSkipInferior
	// OutcomeKeepBoth means a differing extra was left in place alongside
	// the existing one (keep-both policy); nothing was deleted or moved.
	OutcomeKeepBoth
)

func (o Outcome) String() string {
	switch o {
	case OutcomeClear:
		return "clear"
	case OutcomeSkipIdentical:
		return "skip-identical"
	case OutcomeReplace:
		return "replace"
	case OutcomeSkipInferior:
		return "skip-inferior"
	case OutcomeKeepBoth:
		return "keep-both"
	default:
		return "unknown"
	}
}

// ExtrasPolicy selects how differing duplicate extras are handled.
type ExtrasPolicy string

const (
	// ExtrasKeepBoth leaves both copies in place when hashes differ.
	ExtrasKeepBoth ExtrasPolicy = "keep-both"
	// ExtrasEscalate applies the main-content quality resolution to extras.
	ExtrasEscalate ExtrasPolicy = "escalate"
)

// Prober supplies playback metadata for quality comparison.
type Prober interface {
	Probe(ctx context.Context, path string) (probe.Info, error)
}

// Resolver applies duplicate and quality resolution.
type Resolver struct {
	prober   Prober
	ops      *oplog.Log
	cache    *metacache.Cache
	cacheTTL time.Duration
	policy   ExtrasPolicy
	log      *logging.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithCache caches content hashes keyed by file signature.
func WithCache(cache *metacache.Cache, ttl time.Duration) Option {
	return func(r *Resolver) {
		r.cache = cache
		r.cacheTTL = ttl
	}
}

// WithExtrasPolicy overrides the default keep-both handling for extras.
func WithExtrasPolicy(policy ExtrasPolicy) Option {
	return func(r *Resolver) { r.policy = policy }
}

// New returns a Resolver. ops may be nil, in which case deletions are
// performed but not recorded.
func New(prober Prober, ops *oplog.Log, log *logging.Logger, opts ...Option) *Resolver {
	if log == nil {
		log = logging.Nop()
	}
	r := &Resolver{
		prober: prober,
		ops:    ops,
		policy: ExtrasKeepBoth,
		log:    log,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve decides the fate of src given that dst may already exist. It
// performs any deletions itself; the caller is responsible for the move
// when the outcome is OutcomeClear or OutcomeReplace.
func (r *Resolver) Resolve(ctx context.Context, src, dst string, isExtra bool) (Outcome, error) {
	if _, err := os.Stat(dst); os.IsNotExist(err) {
		return OutcomeClear, nil
	} else if err != nil {
		return OutcomeClear, fmt.Errorf("failed to stat destination %s: %w", dst, err)
	}

	srcHash, err := r.FileHash(src)
	if err != nil {
		return OutcomeClear, fmt.Errorf("failed to hash source: %w", err)
	}
	dstHash, err := r.FileHash(dst)
	if err != nil {
		return OutcomeClear, fmt.Errorf("failed to hash destination: %w", err)
	}

	if srcHash == dstHash {
		r.log.Info("resolver", "identical duplicate, removing source",
			logging.F("src", src), logging.F("dst", dst))
		if err := r.remove(src, srcHash, "identical to destination"); err != nil {
			return OutcomeClear, err
		}
		return OutcomeSkipIdentical, nil
	}

	if isExtra && r.policy == ExtrasKeepBoth {
		r.log.Warn("resolver", "differing duplicate extra, keeping both",
			logging.F("src", src), logging.F("dst", dst))
		return OutcomeKeepBoth, nil
	}

	return r.escalate(ctx, src, dst, srcHash, dstHash)
}

// escalate compares playability first, then quality score: a playable
// source beats an unplayable destination outright, otherwise the higher
// score wins and ties go to the incumbent.
func (r *Resolver) escalate(ctx context.Context, src, dst, srcHash, dstHash string) (Outcome, error) {
	srcInfo, err := r.prober.Probe(ctx, src)
	if err != nil {
		return OutcomeClear, fmt.Errorf("failed to probe source: %w", err)
	}
	dstInfo, err := r.prober.Probe(ctx, dst)
	if err != nil {
		return OutcomeClear, fmt.Errorf("failed to probe destination: %w", err)
	}

	if (srcInfo.Playable() && !dstInfo.Playable()) || srcInfo.QualityScore() > dstInfo.QualityScore() {
		r.log.Info("resolver", "replacing lower quality or unplayable destination",
			logging.F("dst", dst),
			logging.F("src_score", srcInfo.QualityScore()),
			logging.F("dst_score", dstInfo.QualityScore()))
		if err := r.remove(dst, dstHash, "replaced by higher quality source"); err != nil {
			return OutcomeClear, err
		}
		return OutcomeReplace, nil
	}

	r.log.Info("resolver", "better or equal copy already at destination, removing source",
		logging.F("src", src),
		logging.F("src_score", srcInfo.QualityScore()),
		logging.F("dst_score", dstInfo.QualityScore()))
	if err := r.remove(src, srcHash, "inferior to existing destination"); err != nil {
		return OutcomeClear, err
	}
	return OutcomeSkipInferior, nil
}

func (r *Resolver) remove(path, hash, reason string) error {
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	r.ops.Delete(path, hash, reason)
	r.cache.Invalidate(path)
	return nil
}

// FileHash returns the hex SHA-256 of the file contents, read in chunks.
// Hashes are cached by file signature when a cache is attached.
func (r *Resolver) FileHash(path string) (string, error) {
	var cached string
	if r.cache.Get(path, metacache.KindHash, &cached) {
		return cached, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	hasher := sha256.New()
	if _, err := io.CopyBuffer(hasher, f, make([]byte, 64*1024)); err != nil {
		return "", err
	}

	sum := hex.EncodeToString(hasher.Sum(nil))
	r.cache.Set(path, metacache.KindHash, sum, r.cacheTTL)
	return sum, nil
}
