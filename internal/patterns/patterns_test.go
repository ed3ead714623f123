package patterns

import "testing"

func TestMatchTV(t *testing.T) {
	tests := []struct {
		filename string
		folder   string
		want     bool
	}{
		{"Breaking.Bad.S01E01.mkv", "", true},
		{"breaking.bad.s01e01.mkv", "", true},
		{"Show.1x05.mkv", "", true},
		{"Episode 3.mkv", "", true},
		{"random.mkv", "Season 02", true},
		{"random.mkv", "Season.2", true},
		{"The.Matrix.1999.mkv", "", false},
		{"randomfile.mkv", "downloads", false},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			got := Match(tt.filename, tt.folder)
			if got.LooksLikeTV != tt.want {
				t.Errorf("Match(%q, %q).LooksLikeTV = %v, want %v", tt.filename, tt.folder, got.LooksLikeTV, tt.want)
			}
		})
	}
}

func TestMatchMovie(t *testing.T) {
	tests := []struct {
		filename string
		folder   string
		want     bool
	}{
		{"The Matrix (1999).mkv", "", true},
		{"Inception.2010.1080p.mkv", "", true},
		{"Inception.2010 720p.mkv", "", true},
		{"random.mkv", "Dune (2021)", true},
		{"Breaking.Bad.S01E01.mkv", "", false},
		{"randomfile.mkv", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			got := Match(tt.filename, tt.folder)
			if got.LooksLikeMovie != tt.want {
				t.Errorf("Match(%q, %q).LooksLikeMovie = %v, want %v", tt.filename, tt.folder, got.LooksLikeMovie, tt.want)
			}
		})
	}
}

func TestHasEpisodeCode(t *testing.T) {
	tests := []struct {
		filename string
		want     bool
	}{
		{"Show.Name.S01E05.Trailer.mkv", true},
		{"show.name.s1e5.mkv", true},
		{"Show.Name.Trailer.mkv", false},
		{"Season 1 Recap.mkv", false},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			if got := HasEpisodeCode(tt.filename); got != tt.want {
				t.Errorf("HasEpisodeCode(%q) = %v, want %v", tt.filename, got, tt.want)
			}
		})
	}
}
