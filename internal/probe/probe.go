// Package probe extracts playback metadata (duration, resolution, size)
// from video files via ffprobe, with graceful degradation when probing
// fails: an unprobeable file still gets a byte-size quality score rather
// than sinking the batch.
package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/Nomadcxx/videolabels/internal/logging"
	"github.com/Nomadcxx/videolabels/internal/metacache"
)

// Info holds the probe result for one file.
type Info struct {
	Duration float64 `json:"duration"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	ByteSize int64   `json:"byte_size"`
}

// Playable reports whether the file decoded to a positive duration.
func (i Info) Playable() bool {
	return i.Duration > 0
}

// QualityScore returns a comparable fidelity proxy: stream pixel area when
// resolution is known, file byte size otherwise.
func (i Info) QualityScore() int64 {
	if i.Width > 0 && i.Height > 0 {
		return int64(i.Width) * int64(i.Height)
	}
	return i.ByteSize
}

// Prober runs ffprobe with a per-call timeout and caches results.
type Prober struct {
	ffprobePath string
	timeout     time.Duration
	cacheTTL    time.Duration
	cache       *metacache.Cache
	log         *logging.Logger
}

// Option configures a Prober.
type Option func(*Prober)

// WithFFprobePath overrides the ffprobe binary path.
func WithFFprobePath(path string) Option {
	return func(p *Prober) { p.ffprobePath = path }
}

// WithTimeout overrides the per-file probe timeout.
func WithTimeout(d time.Duration) Option {
	return func(p *Prober) { p.timeout = d }
}

// WithCache attaches a metadata cache. A nil cache disables caching.
func WithCache(cache *metacache.Cache, ttl time.Duration) Option {
	return func(p *Prober) {
		p.cache = cache
		p.cacheTTL = ttl
	}
}

// NewProber returns a Prober with defaults: "ffprobe" from PATH, a 30 second
// timeout, and no cache.
func NewProber(log *logging.Logger, opts ...Option) *Prober {
	if log == nil {
		log = logging.Nop()
	}
	p := &Prober{
		ffprobePath: "ffprobe",
		timeout:     30 * time.Second,
		cacheTTL:    7 * 24 * time.Hour,
		log:         log,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Probe returns metadata for path. It never returns an error for a probe
// failure; the degraded Info simply carries byte size and zero duration.
// The returned error is reserved for the file itself being inaccessible.
func (p *Prober) Probe(ctx context.Context, path string) (Info, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return Info{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	var cached Info
	if p.cache.Get(path, metacache.KindProbe, &cached) {
		return cached, nil
	}

	info := Info{ByteSize: stat.Size()}

	probed, err := p.runFFprobe(ctx, path)
	if err != nil {
		p.log.Debug("probe", "ffprobe failed, degrading to byte size",
			logging.F("file", path), logging.F("reason", err))
		return info, nil
	}

	info.Duration = probed.Duration
	info.Width = probed.Width
	info.Height = probed.Height
	if probed.ByteSize > 0 {
		info.ByteSize = probed.ByteSize
	}

	p.cache.Set(path, metacache.KindProbe, info, p.cacheTTL)
	return info, nil
}

type ffprobeOutput struct {
	Streams []struct {
		Width    int    `json:"width"`
		Height   int    `json:"height"`
		Duration string `json:"duration"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
		Size     string `json:"size"`
	} `json:"format"`
}

func (p *Prober) runFFprobe(ctx context.Context, path string) (Info, error) {
	probeCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	// One comprehensive call per file: stream geometry plus container
	// duration and size.
	cmd := exec.CommandContext(probeCtx, p.ffprobePath,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height,duration",
		"-show_entries", "format=duration,size",
		"-of", "json",
		path,
	)

	output, err := cmd.Output()
	if err != nil {
		if probeCtx.Err() == context.DeadlineExceeded {
			return Info{}, fmt.Errorf("ffprobe timed out after %s", p.timeout)
		}
		return Info{}, fmt.Errorf("ffprobe failed: %w", err)
	}

	var parsed ffprobeOutput
	if err := json.Unmarshal(output, &parsed); err != nil {
		return Info{}, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	var info Info
	if len(parsed.Streams) > 0 {
		s := parsed.Streams[0]
		info.Width = s.Width
		info.Height = s.Height
		info.Duration = parseFloat(s.Duration)
	}
	if info.Duration <= 0 {
		info.Duration = parseFloat(parsed.Format.Duration)
	}
	if size, err := strconv.ParseInt(parsed.Format.Size, 10, 64); err == nil {
		info.ByteSize = size
	}

	return info, nil
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
