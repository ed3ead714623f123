package planner

import (
	"github.com/Nomadcxx/videolabels/internal/classify"
	"github.com/Nomadcxx/videolabels/internal/logging"
	"github.com/Nomadcxx/videolabels/internal/patterns"
)

// Reconciliation is the merged verdict for one file.
type Reconciliation struct {
	Meta           classify.Metadata
	NeedsUserInput bool
	Overridden     bool // pattern signals replaced an AI abstention
	Ambiguous      bool // AI and patterns disagree; AI kept
}

// Reconcile merges the AI metadata with pattern signals. The AI result is
// authoritative unless it abstained with "unknown": then a TV pattern forces
// tv, a movie pattern forces movie, and with no pattern at all the file is
// flagged for human disambiguation rather than guessed at. When the AI did
// commit to a type, a disagreeing pattern only produces a warning.
func Reconcile(meta classify.Metadata, signals patterns.Signals, log *logging.Logger, path string) Reconciliation {
	if log == nil {
		log = logging.Nop()
	}

	rec := Reconciliation{Meta: meta}

	if meta.Type == classify.TypeUnknown {
		switch {
		case signals.LooksLikeTV:
			rec.Meta.Type = classify.TypeTV
			rec.Overridden = true
			log.Info("planner", "pattern override: classified as TV (AI said unknown)",
				logging.F("file", path))
		case signals.LooksLikeMovie:
			rec.Meta.Type = classify.TypeMovie
			rec.Overridden = true
			log.Info("planner", "pattern override: classified as movie (AI said unknown)",
				logging.F("file", path))
		default:
			rec.NeedsUserInput = true
			log.Warn("planner", "ambiguous file needs user input", logging.F("file", path))
		}
		return rec
	}

	if signals.LooksLikeTV && meta.Type != classify.TypeTV {
		rec.Ambiguous = true
		log.Warn("planner", "pattern looks like TV but AI disagrees",
			logging.F("file", path), logging.F("ai_type", meta.Type))
	}
	if signals.LooksLikeMovie && meta.Type != classify.TypeMovie {
		rec.Ambiguous = true
		log.Warn("planner", "pattern looks like movie but AI disagrees",
			logging.F("file", path), logging.F("ai_type", meta.Type))
	}

	return rec
}
