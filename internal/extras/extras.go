// Package extras decides whether a video file is bonus content rather than a
// main episode or movie, and assigns it a type, an optional group, and the
// name fragment used when building its destination filename.
package extras

import (
	"context"
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Nomadcxx/videolabels/internal/classify"
	"github.com/Nomadcxx/videolabels/internal/logging"
	"github.com/Nomadcxx/videolabels/internal/patterns"
)

// Detection methods, in the order the checks run.
const (
	MethodKeyword  = "keyword"
	MethodLocation = "location"
	MethodDuration = "duration"
	MethodAI       = "ai"
)

// keywordEntry pairs a lowercase search term with its display label. The
// slice order is the tie-break for filenames containing several terms, so it
// is a contract: "featurette" must win over the generic "special", and
// "season recap" is unreachable behind "recap" but kept for documentation of
// the label set.
type keywordEntry struct {
	keyword string
	label   string
}

var extraKeywords = []keywordEntry{
	{"behind the scenes", "Behind the Scenes"},
	{"featurette", "Featurette"},
	{"deleted scene", "Deleted Scene"},
	{"interview", "Interview"},
	{"bloopers", "Bloopers"},
	{"trailer", "Trailer"},
	{"recap", "Recap"},
	{"preview", "Preview"},
	{"promo", "Promo"},
	{"gag reel", "Gag Reel"},
	{"making of", "Making Of"},
	{"outtakes", "Outtakes"},
	{"short", "Short"},
	{"special", "Special"},
	{"music video", "Music Video"},
	{"documentary", "Documentary"},
	{"webisode", "Webisode"},
	{"mini-episode", "Mini-Episode"},
	{"series overview", "Series Overview"},
	{"season recap", "Season Recap"},
	{"newsreel", "Newsreels"},
}

// extraFolders are directory names whose contents are treated as extras.
var extraFolders = map[string]bool{
	"extras":            true,
	"bonus":             true,
	"specials":          true,
	"behind the scenes": true,
	"featurettes":       true,
	"newsreels":         true,
}

// Classification describes a file identified as bonus content. A nil
// Classification means the file is main content.
type Classification struct {
	ExtraType  string
	Group      string // set only for Featurette/Newsreels family types
	OutputBase string
	Method     string
}

// Identifier is the AI fallback consulted when no local signal fires.
type Identifier interface {
	Identify(ctx context.Context, filename string) classify.Metadata
}

// Classifier runs the extras decision chain. The AI identifier is optional;
// without one the chain simply ends after the duration check.
type Classifier struct {
	ai  Identifier
	log *logging.Logger
}

func NewClassifier(ai Identifier, log *logging.Logger) *Classifier {
	if log == nil {
		log = logging.Nop()
	}
	return &Classifier{ai: ai, log: log}
}

var titleCaser = cases.Title(language.English)

// Classify runs the ordered checks against path. Checks short-circuit: the
// first one that fires decides the classification. A duration of zero or
// less means the duration is unknown and the duration check is skipped.
// Only the final AI fallback may touch the network.
func (c *Classifier) Classify(ctx context.Context, path string, duration float64) *Classification {
	filename := filepath.Base(path)
	stem := strings.TrimSuffix(filename, filepath.Ext(filename))

	// A numbered episode is never an extra, whatever else the name says.
	if patterns.HasEpisodeCode(filename) {
		return nil
	}

	if cls := classifyByKeyword(filename, stem); cls != nil {
		return cls
	}

	if cls := classifyByLocation(path, stem); cls != nil {
		return cls
	}

	if duration > 0 && duration < 300 {
		return &Classification{
			ExtraType:  "Short",
			OutputBase: "Short",
			Method:     MethodDuration,
		}
	}

	if c.ai != nil {
		if cls := c.classifyByAI(ctx, filename, stem); cls != nil {
			return cls
		}
	}

	return nil
}

func classifyByKeyword(filename, stem string) *Classification {
	name := strings.ToLower(filename)
	for _, entry := range extraKeywords {
		if !strings.Contains(name, entry.keyword) {
			continue
		}
		if isGroupType(entry.label) {
			return &Classification{
				ExtraType:  entry.label,
				Group:      entry.label,
				OutputBase: stem,
				Method:     MethodKeyword,
			}
		}
		return &Classification{
			ExtraType:  entry.label,
			OutputBase: entry.label,
			Method:     MethodKeyword,
		}
	}
	return nil
}

func classifyByLocation(path, stem string) *Classification {
	segments := splitPath(path)
	if len(segments) == 0 {
		return nil
	}
	// The last segment is the filename and cannot be an extras folder or a
	// subfolder label.
	dirs := segments[:len(segments)-1]

	for i, dir := range dirs {
		if !extraFolders[strings.ToLower(dir)] {
			continue
		}
		folderType := capitalizeFirst(dir)
		if !isGroupFolder(folderType) {
			return &Classification{
				ExtraType:  folderType,
				OutputBase: folderType,
				Method:     MethodLocation,
			}
		}

		outputBase := folderType + " - " + stem
		if i+1 < len(dirs) && !extraFolders[strings.ToLower(dirs[i+1])] {
			outputBase = folderType + " - " + capitalizeFirst(dirs[i+1]) + " - " + stem
		}
		return &Classification{
			ExtraType:  folderType,
			Group:      folderType,
			OutputBase: outputBase,
			Method:     MethodLocation,
		}
	}
	return nil
}

func (c *Classifier) classifyByAI(ctx context.Context, filename, stem string) *Classification {
	meta := c.ai.Identify(ctx, filename)
	if meta.Type != classify.TypeExtra && !meta.IsSpecial {
		return nil
	}

	label := meta.ExtraType
	if label == "" {
		label = "Special"
	} else {
		label = titleCaser.String(label)
	}

	c.log.Debug("extras", "AI classified file as extra",
		logging.F("file", filename), logging.F("extra_type", label))

	if isGroupType(label) {
		return &Classification{
			ExtraType:  label,
			Group:      label,
			OutputBase: stem,
			Method:     MethodAI,
		}
	}
	return &Classification{
		ExtraType:  label,
		OutputBase: label,
		Method:     MethodAI,
	}
}

func isGroupType(label string) bool {
	l := strings.ToLower(label)
	return l == "featurette" || l == "newsreels"
}

func isGroupFolder(label string) bool {
	l := strings.ToLower(label)
	return l == "featurettes" || l == "newsreels"
}

func splitPath(path string) []string {
	clean := filepath.ToSlash(filepath.Clean(path))
	clean = strings.Trim(clean, "/")
	if clean == "" || clean == "." {
		return nil
	}
	return strings.Split(clean, "/")
}

// capitalizeFirst upper-cases the first letter and lower-cases the rest,
// so "behind the scenes" becomes "Behind the scenes".
func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(strings.ToLower(s))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
