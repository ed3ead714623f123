package planner

import (
	"testing"

	"github.com/Nomadcxx/videolabels/internal/classify"
	"github.com/Nomadcxx/videolabels/internal/patterns"
)

func TestReconcileUnknownWithTVPattern(t *testing.T) {
	meta := classify.Unknown()
	signals := patterns.Match("Breaking.Bad.S01E01.mkv", "")

	rec := Reconcile(meta, signals, nil, "Breaking.Bad.S01E01.mkv")

	if rec.Meta.Type != classify.TypeTV {
		t.Errorf("type = %q, want tv", rec.Meta.Type)
	}
	if rec.NeedsUserInput {
		t.Error("pattern override should not need user input")
	}
	if !rec.Overridden {
		t.Error("expected Overridden to be set")
	}
}

func TestReconcileUnknownWithMoviePattern(t *testing.T) {
	meta := classify.Unknown()
	signals := patterns.Match("The Matrix (1999).mkv", "")

	rec := Reconcile(meta, signals, nil, "The Matrix (1999).mkv")

	if rec.Meta.Type != classify.TypeMovie {
		t.Errorf("type = %q, want movie", rec.Meta.Type)
	}
	if rec.NeedsUserInput {
		t.Error("pattern override should not need user input")
	}
}

func TestReconcileUnknownNoPattern(t *testing.T) {
	meta := classify.Unknown()
	signals := patterns.Match("randomfile.mkv", "downloads")

	rec := Reconcile(meta, signals, nil, "randomfile.mkv")

	if rec.Meta.Type != classify.TypeUnknown {
		t.Errorf("type = %q, want unknown (no guessing)", rec.Meta.Type)
	}
	if !rec.NeedsUserInput {
		t.Error("expected NeedsUserInput for patternless unknown")
	}
}

func TestReconcileAIAuthoritative(t *testing.T) {
	// TV pattern present, but the AI committed to movie. The AI wins and
	// the disagreement is only noted.
	meta := classify.Metadata{Type: classify.TypeMovie, Name: "Some Film"}
	signals := patterns.Signals{LooksLikeTV: true}

	rec := Reconcile(meta, signals, nil, "some.film.s01e01.style.mkv")

	if rec.Meta.Type != classify.TypeMovie {
		t.Errorf("type = %q, AI verdict must be kept", rec.Meta.Type)
	}
	if rec.NeedsUserInput {
		t.Error("committed AI verdict never needs user input")
	}
	if !rec.Ambiguous {
		t.Error("expected disagreement to be flagged as ambiguous")
	}
}

func TestReconcileAgreementIsQuiet(t *testing.T) {
	meta := classify.Metadata{Type: classify.TypeTV, Name: "Breaking Bad"}
	signals := patterns.Signals{LooksLikeTV: true}

	rec := Reconcile(meta, signals, nil, "Breaking.Bad.S01E01.mkv")

	if rec.Ambiguous || rec.Overridden || rec.NeedsUserInput {
		t.Errorf("agreeing signals should pass through untouched: %+v", rec)
	}
}
