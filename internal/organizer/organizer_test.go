package organizer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nomadcxx/videolabels/internal/classify"
	"github.com/Nomadcxx/videolabels/internal/extras"
	"github.com/Nomadcxx/videolabels/internal/oplog"
	"github.com/Nomadcxx/videolabels/internal/probe"
	"github.com/Nomadcxx/videolabels/internal/resolver"
	"github.com/Nomadcxx/videolabels/internal/transfer"
)

// fakeBatcher answers per filename from a canned table; anything absent
// classifies as unknown.
type fakeBatcher struct {
	byName map[string]classify.Metadata
}

func (f fakeBatcher) ClassifyBatch(ctx context.Context, filenames []string) []classify.Metadata {
	metas := make([]classify.Metadata, len(filenames))
	for i, name := range filenames {
		if meta, ok := f.byName[name]; ok {
			metas[i] = meta
		} else {
			metas[i] = classify.Unknown()
		}
	}
	return metas
}

// fakeProber returns canned infos by filename, zero Info otherwise.
type fakeProber struct {
	byName map[string]probe.Info
}

func (f fakeProber) Probe(ctx context.Context, path string) (probe.Info, error) {
	return f.byName[filepath.Base(path)], nil
}

func intp(n int) *int { return &n }

func writeFile(t *testing.T, dir string, parts ...string) string {
	t.Helper()
	path := filepath.Join(append([]string{dir}, parts...)...)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("content of "+filepath.Base(path)), 0644))
	return path
}

func newOrganizer(t *testing.T, source, target string, batcher Batcher, prober Prober, opts ...Option) *Organizer {
	t.Helper()
	if prober == nil {
		prober = fakeProber{}
	}
	res := resolver.New(prober, nil, nil)
	mover := transfer.NewMover(nil)
	extrasClassifier := extras.NewClassifier(nil, nil)
	return New(source, target, batcher, extrasClassifier, prober, res, mover, nil, opts...)
}

func resultFor(t *testing.T, summary *Summary, source string) Result {
	t.Helper()
	for _, r := range summary.Results {
		if r.Source == source {
			return r
		}
	}
	t.Fatalf("no result for %s in %+v", source, summary.Results)
	return Result{}
}

func TestPreviewComputesPlanWithoutMoving(t *testing.T) {
	source := t.TempDir()
	target := t.TempDir()
	episode := writeFile(t, source, "Breaking.Bad.S01E05.mkv")
	movie := writeFile(t, source, "The.Matrix.1999.1080p.BluRay.mkv")

	batcher := fakeBatcher{byName: map[string]classify.Metadata{
		"Breaking.Bad.S01E05.mkv": {
			Type: classify.TypeTV, Name: "Breaking Bad",
			Season: intp(1), Episode: intp(5), EpisodeTitle: "Gray Matter",
		},
		"The.Matrix.1999.1080p.BluRay.mkv": {
			Type: classify.TypeMovie, Name: "The Matrix", Year: intp(1999),
		},
	}}

	o := newOrganizer(t, source, target, batcher, nil)
	summary, err := o.Preview(context.Background())
	require.NoError(t, err)
	require.Len(t, summary.Results, 2)
	assert.False(t, summary.Executed)

	epResult := resultFor(t, summary, episode)
	assert.Equal(t, StatusPreview, epResult.Status)
	assert.Equal(t, filepath.Join(target, "TV Shows", "Breaking Bad", "Season 01",
		"Breaking Bad - S01E05 - Gray Matter.mkv"), epResult.Destination)
	assert.Equal(t, "Breaking Bad", epResult.Show)

	movieResult := resultFor(t, summary, movie)
	assert.Equal(t, StatusPreview, movieResult.Status)
	assert.Equal(t, filepath.Join(target, "Movies", "The Matrix (1999)",
		"The Matrix (1999).mkv"), movieResult.Destination)
	assert.Equal(t, "1080p BluRay", movieResult.Quality)

	// Nothing moved.
	assert.FileExists(t, episode)
	assert.FileExists(t, movie)
	entries, err := os.ReadDir(target)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestExecuteMovesAndLogs(t *testing.T) {
	source := t.TempDir()
	target := t.TempDir()
	episode := writeFile(t, source, "downloads", "Breaking.Bad.S01E05.mkv")

	batcher := fakeBatcher{byName: map[string]classify.Metadata{
		"Breaking.Bad.S01E05.mkv": {
			Type: classify.TypeTV, Name: "Breaking Bad", Season: intp(1), Episode: intp(5),
		},
	}}

	ops, err := oplog.Open(filepath.Join(t.TempDir(), "ops.jsonl"), nil)
	require.NoError(t, err)
	defer ops.Close()

	o := newOrganizer(t, source, target, batcher, nil, WithOperationsLog(ops))
	summary, err := o.Execute(context.Background())
	require.NoError(t, err)

	result := resultFor(t, summary, episode)
	assert.Equal(t, StatusApplied, result.Status)
	assert.FileExists(t, result.Destination)
	assert.NoFileExists(t, episode)

	records, err := ops.Recent(10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, oplog.OpMove, records[0].Op)
	assert.Equal(t, episode, records[0].Original)

	// The emptied downloads folder is cleaned up.
	assert.NoDirExists(t, filepath.Join(source, "downloads"))
}

func TestExecuteSkipsIdenticalDuplicate(t *testing.T) {
	source := t.TempDir()
	target := t.TempDir()
	src := writeFile(t, source, "Breaking.Bad.S01E05.mkv")

	// Pre-place an identical file at the destination.
	dst := filepath.Join(target, "TV Shows", "Breaking Bad", "Season 01", "Breaking Bad - S01E05.mkv")
	require.NoError(t, os.MkdirAll(filepath.Dir(dst), 0755))
	content, err := os.ReadFile(src)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(dst, content, 0644))

	batcher := fakeBatcher{byName: map[string]classify.Metadata{
		"Breaking.Bad.S01E05.mkv": {
			Type: classify.TypeTV, Name: "Breaking Bad", Season: intp(1), Episode: intp(5),
		},
	}}

	o := newOrganizer(t, source, target, batcher, nil)
	summary, err := o.Execute(context.Background())
	require.NoError(t, err)

	result := resultFor(t, summary, src)
	assert.Equal(t, StatusSkippedDuplicate, result.Status)
	assert.NoFileExists(t, src, "identical source must be removed")
	assert.FileExists(t, dst)
}

func TestAmbiguousFileSkippedWithoutCallback(t *testing.T) {
	source := t.TempDir()
	target := t.TempDir()
	blob := writeFile(t, source, "randomfile.mkv")

	o := newOrganizer(t, source, target, fakeBatcher{}, nil)
	summary, err := o.Execute(context.Background())
	require.NoError(t, err)

	result := resultFor(t, summary, blob)
	assert.Equal(t, StatusSkippedAmbiguous, result.Status)
	assert.FileExists(t, blob, "skipped file stays put")
}

func TestDisambiguationCallbackForcesType(t *testing.T) {
	source := t.TempDir()
	target := t.TempDir()
	blob := writeFile(t, source, "randomfile.mkv")

	var asked []string
	disambiguate := func(path string) (string, bool) {
		asked = append(asked, path)
		return "movie", true
	}

	batcher := fakeBatcher{byName: map[string]classify.Metadata{
		// Type unknown but the AI still extracted a name.
		"randomfile.mkv": {Type: classify.TypeUnknown, Name: "Mystery Film"},
	}}

	o := newOrganizer(t, source, target, batcher, nil, WithDisambiguation(disambiguate))
	summary, err := o.Preview(context.Background())
	require.NoError(t, err)

	require.Len(t, asked, 1)
	assert.Equal(t, blob, asked[0])

	result := resultFor(t, summary, blob)
	assert.Equal(t, StatusPreview, result.Status)
	assert.Equal(t, "movie", result.Kind)
	assert.Contains(t, result.Destination, filepath.Join(target, "Movies", "Mystery Film"))
}

func TestForcedTypeWithoutNameUsesShowFolder(t *testing.T) {
	source := t.TempDir()
	target := t.TempDir()
	blob := writeFile(t, source, "Wanderlust", "episode four.mkv")

	disambiguate := func(path string) (string, bool) { return "tv", true }

	// The AI abstained entirely, so the forced classification has no name.
	o := newOrganizer(t, source, target, fakeBatcher{}, nil, WithDisambiguation(disambiguate))
	summary, err := o.Preview(context.Background())
	require.NoError(t, err)

	result := resultFor(t, summary, blob)
	assert.Equal(t, StatusPreview, result.Status)
	assert.Equal(t, "Wanderlust", result.Show)
	assert.Equal(t, filepath.Join(target, "TV Shows", "Wanderlust", "Season 01",
		"Wanderlust - S00E00.mkv"), result.Destination)
}

func TestExtrasRoutedAndNumbered(t *testing.T) {
	source := t.TempDir()
	target := t.TempDir()
	trailer1 := writeFile(t, source, "Breaking Bad", "Stuff", "Trailer One.mkv")
	trailer2 := writeFile(t, source, "Breaking Bad", "Stuff", "Trailer Two.mkv")

	batcher := fakeBatcher{byName: map[string]classify.Metadata{
		"Trailer One.mkv": {Type: classify.TypeTV, Name: "Breaking Bad", Season: intp(1)},
		"Trailer Two.mkv": {Type: classify.TypeTV, Name: "Breaking Bad", Season: intp(1)},
	}}

	o := newOrganizer(t, source, target, batcher, nil)
	summary, err := o.Execute(context.Background())
	require.NoError(t, err)

	r1 := resultFor(t, summary, trailer1)
	r2 := resultFor(t, summary, trailer2)
	assert.Equal(t, "extra", r1.Kind)
	assert.Equal(t, StatusApplied, r1.Status)

	extrasDir := filepath.Join(target, "TV Shows", "Breaking Bad", "Season 01", "Extras")
	assert.Equal(t, filepath.Join(extrasDir, "Breaking Bad - S01 - Trailer.mkv"), r1.Destination)
	assert.Equal(t, filepath.Join(extrasDir, "Breaking Bad - S01 - Trailer 2.mkv"), r2.Destination)
	assert.FileExists(t, r1.Destination)
	assert.FileExists(t, r2.Destination)
}

func TestExtrasByLocationWithoutAI(t *testing.T) {
	source := t.TempDir()
	target := t.TempDir()
	clip := writeFile(t, source, "The Wire", "Extras", "on location.mkv")

	o := newOrganizer(t, source, target, fakeBatcher{}, nil)
	summary, err := o.Preview(context.Background())
	require.NoError(t, err)

	result := resultFor(t, summary, clip)
	assert.Equal(t, StatusPreview, result.Status)
	assert.Equal(t, "extra", result.Kind)
	// Show name falls back to the folder above Extras.
	assert.Equal(t, filepath.Join(target, "TV Shows", "The Wire", "Extras",
		"The Wire - Extras.mkv"), result.Destination)
}

func TestShortDurationClassifiedAsExtra(t *testing.T) {
	source := t.TempDir()
	target := t.TempDir()
	clip := writeFile(t, source, "Breaking Bad", "Season 01", "clip.mkv")

	batcher := fakeBatcher{byName: map[string]classify.Metadata{
		"clip.mkv": {Type: classify.TypeTV, Name: "Breaking Bad", Season: intp(1)},
	}}
	prober := fakeProber{byName: map[string]probe.Info{
		"clip.mkv": {Duration: 120, ByteSize: 100},
	}}

	o := newOrganizer(t, source, target, batcher, prober)
	summary, err := o.Preview(context.Background())
	require.NoError(t, err)

	result := resultFor(t, summary, clip)
	assert.Equal(t, "extra", result.Kind)
	assert.Contains(t, result.Destination, filepath.Join("Extras", "Breaking Bad - S01 - Short.mkv"))
}

func TestEveryInputFileGetsAResult(t *testing.T) {
	source := t.TempDir()
	target := t.TempDir()
	writeFile(t, source, "Breaking.Bad.S01E05.mkv")
	writeFile(t, source, "randomfile.mkv")
	writeFile(t, source, "Show", "Extras", "thing.mkv")

	batcher := fakeBatcher{byName: map[string]classify.Metadata{
		"Breaking.Bad.S01E05.mkv": {Type: classify.TypeTV, Name: "Breaking Bad", Season: intp(1), Episode: intp(5)},
	}}

	o := newOrganizer(t, source, target, batcher, nil)
	summary, err := o.Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Total())
	counts := summary.Counts()
	assert.Equal(t, 2, counts[StatusApplied])
	assert.Equal(t, 1, counts[StatusSkippedAmbiguous])
}

func TestProgressReachesCompletion(t *testing.T) {
	source := t.TempDir()
	target := t.TempDir()
	writeFile(t, source, "Breaking.Bad.S01E05.mkv")

	batcher := fakeBatcher{byName: map[string]classify.Metadata{
		"Breaking.Bad.S01E05.mkv": {Type: classify.TypeTV, Name: "Breaking Bad", Season: intp(1), Episode: intp(5)},
	}}

	var percents []int
	o := newOrganizer(t, source, target, batcher, nil, WithProgress(func(p int) {
		percents = append(percents, p)
	}))
	_, err := o.Preview(context.Background())
	require.NoError(t, err)

	require.NotEmpty(t, percents)
	assert.Equal(t, 10, percents[0])
	assert.Equal(t, 100, percents[len(percents)-1])
	for i := 1; i < len(percents); i++ {
		assert.GreaterOrEqual(t, percents[i], percents[i-1], "progress must be monotonic")
	}
}

func TestCleanupPreservesExtrasDirs(t *testing.T) {
	source := t.TempDir()
	target := t.TempDir()
	writeFile(t, source, "downloads", "nested", "Breaking.Bad.S01E05.mkv")
	require.NoError(t, os.MkdirAll(filepath.Join(source, "Extras"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(source, "old", "empty"), 0755))

	batcher := fakeBatcher{byName: map[string]classify.Metadata{
		"Breaking.Bad.S01E05.mkv": {Type: classify.TypeTV, Name: "Breaking Bad", Season: intp(1), Episode: intp(5)},
	}}

	o := newOrganizer(t, source, target, batcher, nil)
	_, err := o.Execute(context.Background())
	require.NoError(t, err)

	assert.DirExists(t, filepath.Join(source, "Extras"))
	assert.NoDirExists(t, filepath.Join(source, "downloads"))
	assert.NoDirExists(t, filepath.Join(source, "old"))
}

func TestEmptySourceIsQuietSuccess(t *testing.T) {
	o := newOrganizer(t, t.TempDir(), t.TempDir(), fakeBatcher{}, nil)
	summary, err := o.Execute(context.Background())
	require.NoError(t, err)
	assert.Zero(t, summary.Total())
}

func TestInvalidSourceAborts(t *testing.T) {
	o := newOrganizer(t, filepath.Join(t.TempDir(), "missing"), t.TempDir(), fakeBatcher{}, nil)
	_, err := o.Execute(context.Background())
	assert.Error(t, err)
}
