package planner

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// Top-level library folders under the target root.
const (
	moviesDir  = "Movies"
	tvShowsDir = "TV Shows"
	extrasDir  = "Extras"
)

var forbiddenChars = regexp.MustCompile(`[<>:"|?*/]`)

// CleanName replaces filesystem-hostile characters with "-" one-for-one and
// trims surrounding whitespace.
func CleanName(name string) string {
	return strings.TrimSpace(forbiddenChars.ReplaceAllString(name, "-"))
}

// Destination is a computed target for one file.
type Destination struct {
	RelPath string // relative to the target root
	Label   string // human-readable description for reports
}

type extrasKey struct {
	show      string
	season    int // -1 when no season applies
	extraType string
}

// ExtrasCounter numbers same-typed extras within one batch run so siblings
// get distinct filenames. Counts are assigned in file-processing order and
// the counter must not be shared across concurrent goroutines.
type ExtrasCounter map[extrasKey]int

func NewExtrasCounter() ExtrasCounter {
	return make(ExtrasCounter)
}

func (c ExtrasCounter) next(show string, season *int, extraType string) int {
	key := extrasKey{show: show, season: -1, extraType: extraType}
	if season != nil {
		key.season = *season
	}
	c[key]++
	return c[key]
}

// BuildDestination computes the relative destination path for an identity.
// ext is the file extension including the leading dot. The counter is
// consulted only for extras and mutated on each call.
func BuildDestination(id Identity, ext string, counter ExtrasCounter) (Destination, error) {
	switch id.Kind {
	case KindMovie:
		return movieDestination(id.Movie, ext), nil
	case KindEpisode:
		return episodeDestination(id.Episode, ext, false), nil
	case KindSpecial:
		return episodeDestination(id.Episode, ext, true), nil
	case KindExtra:
		return extraDestination(id.Extra, ext, counter), nil
	default:
		return Destination{}, fmt.Errorf("cannot build destination for unknown media")
	}
}

func movieDestination(m *Movie, ext string) Destination {
	name := CleanName(m.Name)
	label := "Movie"
	if m.Year != nil {
		name = fmt.Sprintf("%s (%d)", name, *m.Year)
		label = fmt.Sprintf("Movie (%d)", *m.Year)
	}
	return Destination{
		RelPath: filepath.Join(moviesDir, name, name+ext),
		Label:   label,
	}
}

func episodeDestination(e *Episode, ext string, special bool) Destination {
	show := CleanName(e.Show)

	// The episode code defaults a missing season to 0, while the season
	// folder defaults it to 1. Only files with no season at all see the
	// difference.
	epStr := fmt.Sprintf("S%02dE%02d", seasonOr(e, 0), episodeOr(e, 0))

	title := ""
	if strings.TrimSpace(e.Title) != "" {
		title = " - " + CleanName(e.Title)
	}
	filename := fmt.Sprintf("%s - %s%s%s", show, epStr, title, ext)

	if special {
		return Destination{
			RelPath: filepath.Join(tvShowsDir, "Specials", filename),
			Label:   "Special " + epStr,
		}
	}

	label := fmt.Sprintf("Season %d Episode %d", seasonOr(e, 1), episodeOr(e, 0))
	if strings.TrimSpace(e.Title) != "" {
		label += " - " + e.Title
	}
	return Destination{
		RelPath: filepath.Join(tvShowsDir, show, fmt.Sprintf("Season %02d", seasonOr(e, 1)), filename),
		Label:   label,
	}
}

func extraDestination(x *Extra, ext string, counter ExtrasCounter) Destination {
	show := CleanName(x.Show)
	extraType := CleanName(x.Type)
	outputBase := CleanName(x.OutputBase)
	if outputBase == "" {
		outputBase = extraType
	}

	number := counter.next(show, x.Season, extraType)

	var dir, baseName string
	if x.Season != nil && *x.Season != 0 {
		seasonStr := fmt.Sprintf("Season %02d", *x.Season)
		dir = filepath.Join(tvShowsDir, show, seasonStr, extrasDir)
		baseName = fmt.Sprintf("%s - S%02d - %s", show, *x.Season, outputBase)
	} else {
		dir = filepath.Join(tvShowsDir, show, extrasDir)
		baseName = fmt.Sprintf("%s - %s", show, outputBase)
	}
	if number > 1 {
		baseName = fmt.Sprintf("%s %d", baseName, number)
	}

	return Destination{
		RelPath: filepath.Join(dir, baseName+ext),
		Label:   "Extra - " + extraType,
	}
}

func seasonOr(e *Episode, def int) int {
	if e.Season != nil {
		return *e.Season
	}
	return def
}

func episodeOr(e *Episode, def int) int {
	if e.Episode != nil {
		return *e.Episode
	}
	return def
}
