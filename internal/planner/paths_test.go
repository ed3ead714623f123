package planner

import (
	"path/filepath"
	"testing"
)

func mustDestination(t *testing.T, id Identity, ext string, counter ExtrasCounter) Destination {
	t.Helper()
	dst, err := BuildDestination(id, ext, counter)
	if err != nil {
		t.Fatalf("BuildDestination: %v", err)
	}
	return dst
}

func TestCleanName(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Bad:Name?*", "Bad-Name--"},
		{"bad:name?*", "bad-name--"},
		{`a<b>c"d|e`, "a-b-c-d-e"},
		{"  spaced  ", "spaced"},
		{"Breaking Bad", "Breaking Bad"},
		{"AC/DC Live", "AC-DC Live"},
	}
	for _, tt := range tests {
		if got := CleanName(tt.in); got != tt.want {
			t.Errorf("CleanName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMovieDestination(t *testing.T) {
	withYear := Identity{Kind: KindMovie, Movie: &Movie{Name: "The Matrix", Year: intp(1999)}}
	dst := mustDestination(t, withYear, ".mkv", nil)
	want := filepath.Join("Movies", "The Matrix (1999)", "The Matrix (1999).mkv")
	if dst.RelPath != want {
		t.Errorf("RelPath = %q, want %q", dst.RelPath, want)
	}

	noYear := Identity{Kind: KindMovie, Movie: &Movie{Name: "Obscure Film"}}
	dst = mustDestination(t, noYear, ".mp4", nil)
	want = filepath.Join("Movies", "Obscure Film", "Obscure Film.mp4")
	if dst.RelPath != want {
		t.Errorf("RelPath = %q, want %q", dst.RelPath, want)
	}
}

func TestEpisodeDestination(t *testing.T) {
	id := Identity{Kind: KindEpisode, Episode: &Episode{
		Show: "Breaking Bad", Season: intp(1), Episode: intp(5), Title: "Gray Matter",
	}}
	dst := mustDestination(t, id, ".mkv", nil)
	want := filepath.Join("TV Shows", "Breaking Bad", "Season 01", "Breaking Bad - S01E05 - Gray Matter.mkv")
	if dst.RelPath != want {
		t.Errorf("RelPath = %q, want %q", dst.RelPath, want)
	}
}

func TestEpisodeDestinationNoTitle(t *testing.T) {
	id := Identity{Kind: KindEpisode, Episode: &Episode{
		Show: "The Wire", Season: intp(2), Episode: intp(4), Title: "   ",
	}}
	dst := mustDestination(t, id, ".mkv", nil)
	want := filepath.Join("TV Shows", "The Wire", "Season 02", "The Wire - S02E04.mkv")
	if dst.RelPath != want {
		t.Errorf("RelPath = %q, want %q", dst.RelPath, want)
	}
}

func TestEpisodeSeasonDefaultsDiverge(t *testing.T) {
	// With no season: the episode code defaults to 00, the folder to 01.
	id := Identity{Kind: KindEpisode, Episode: &Episode{Show: "Mystery Show", Episode: intp(3)}}
	dst := mustDestination(t, id, ".mkv", nil)
	want := filepath.Join("TV Shows", "Mystery Show", "Season 01", "Mystery Show - S00E03.mkv")
	if dst.RelPath != want {
		t.Errorf("RelPath = %q, want %q", dst.RelPath, want)
	}
}

func TestSpecialDestination(t *testing.T) {
	id := Identity{Kind: KindSpecial, Episode: &Episode{
		Show: "Doctor Who", Season: intp(0), Episode: intp(3), Title: "The Snowmen",
	}}
	dst := mustDestination(t, id, ".mkv", nil)
	want := filepath.Join("TV Shows", "Specials", "Doctor Who - S00E03 - The Snowmen.mkv")
	if dst.RelPath != want {
		t.Errorf("RelPath = %q, want %q", dst.RelPath, want)
	}
	if dst.Label != "Special S00E03" {
		t.Errorf("Label = %q", dst.Label)
	}
}

func TestExtraDestinationWithSeason(t *testing.T) {
	counter := NewExtrasCounter()
	id := Identity{Kind: KindExtra, Extra: &Extra{
		Show: "Breaking Bad", Season: intp(1), Type: "Trailer", OutputBase: "Trailer",
	}}
	dst := mustDestination(t, id, ".mkv", counter)
	want := filepath.Join("TV Shows", "Breaking Bad", "Season 01", "Extras", "Breaking Bad - S01 - Trailer.mkv")
	if dst.RelPath != want {
		t.Errorf("RelPath = %q, want %q", dst.RelPath, want)
	}
}

func TestExtraDestinationWithoutSeason(t *testing.T) {
	counter := NewExtrasCounter()
	id := Identity{Kind: KindExtra, Extra: &Extra{
		Show: "Breaking Bad", Type: "Featurette", Group: "Featurette", OutputBase: "Making Magic",
	}}
	dst := mustDestination(t, id, ".mkv", counter)
	want := filepath.Join("TV Shows", "Breaking Bad", "Extras", "Breaking Bad - Making Magic.mkv")
	if dst.RelPath != want {
		t.Errorf("RelPath = %q, want %q", dst.RelPath, want)
	}
}

func TestExtraSeasonZeroRoutesToShowLevel(t *testing.T) {
	counter := NewExtrasCounter()
	id := Identity{Kind: KindExtra, Extra: &Extra{
		Show: "Doctor Who", Season: intp(0), Type: "Recap", OutputBase: "Recap",
	}}
	dst := mustDestination(t, id, ".mkv", counter)
	want := filepath.Join("TV Shows", "Doctor Who", "Extras", "Doctor Who - Recap.mkv")
	if dst.RelPath != want {
		t.Errorf("RelPath = %q, want %q", dst.RelPath, want)
	}
}

func TestExtrasNumberingInProcessingOrder(t *testing.T) {
	counter := NewExtrasCounter()
	id := Identity{Kind: KindExtra, Extra: &Extra{
		Show: "Breaking Bad", Season: intp(1), Type: "Trailer", OutputBase: "Trailer",
	}}

	wantFiles := []string{
		"Breaking Bad - S01 - Trailer.mkv",
		"Breaking Bad - S01 - Trailer 2.mkv",
		"Breaking Bad - S01 - Trailer 3.mkv",
	}
	for i, wantFile := range wantFiles {
		dst := mustDestination(t, id, ".mkv", counter)
		if got := filepath.Base(dst.RelPath); got != wantFile {
			t.Errorf("extra %d: filename = %q, want %q", i+1, got, wantFile)
		}
	}
}

func TestExtrasCounterScopedPerKey(t *testing.T) {
	counter := NewExtrasCounter()

	s1 := Identity{Kind: KindExtra, Extra: &Extra{Show: "Show", Season: intp(1), Type: "Trailer", OutputBase: "Trailer"}}
	s2 := Identity{Kind: KindExtra, Extra: &Extra{Show: "Show", Season: intp(2), Type: "Trailer", OutputBase: "Trailer"}}
	other := Identity{Kind: KindExtra, Extra: &Extra{Show: "Show", Season: intp(1), Type: "Recap", OutputBase: "Recap"}}

	mustDestination(t, s1, ".mkv", counter)

	// A different season or type starts its own count.
	dst := mustDestination(t, s2, ".mkv", counter)
	if got := filepath.Base(dst.RelPath); got != "Show - S02 - Trailer.mkv" {
		t.Errorf("season 2 first trailer = %q", got)
	}
	dst = mustDestination(t, other, ".mkv", counter)
	if got := filepath.Base(dst.RelPath); got != "Show - S01 - Recap.mkv" {
		t.Errorf("first recap = %q", got)
	}

	dst = mustDestination(t, s1, ".mkv", counter)
	if got := filepath.Base(dst.RelPath); got != "Show - S01 - Trailer 2.mkv" {
		t.Errorf("second season 1 trailer = %q", got)
	}
}

func TestUnknownDestinationErrors(t *testing.T) {
	if _, err := BuildDestination(Identity{Kind: KindUnknown}, ".mkv", nil); err == nil {
		t.Error("expected error for unknown identity")
	}
}
