// Package patterns detects TV and movie naming conventions in filenames.
// It is the regex counterpart to the AI classifier: a pure function of the
// filename and its immediate parent folder, with no filesystem access.
package patterns

import "regexp"

var tvPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)S\d{1,2}E\d{1,2}`),
	regexp.MustCompile(`(?i)Season[ ._-]?\d{1,2}`),
	regexp.MustCompile(`(?i)Episode[ ._-]?\d{1,2}`),
	regexp.MustCompile(`(?i)\d{1,2}x\d{1,2}`),
}

var moviePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\(\d{4}\)`),
	regexp.MustCompile(`(?i)\d{4}[ ._-]1080p`),
	regexp.MustCompile(`(?i)\d{4}[ ._-]720p`),
}

var episodeCode = regexp.MustCompile(`(?i)S\d{1,2}E\d{1,2}`)

// Signals holds the independent TV/movie hints derived from naming alone.
type Signals struct {
	LooksLikeTV    bool
	LooksLikeMovie bool
}

// Match inspects a filename and its parent folder name and reports whether
// either looks like a TV episode or a movie release.
func Match(filename, parentFolder string) Signals {
	return Signals{
		LooksLikeTV:    matchAny(tvPatterns, filename, parentFolder),
		LooksLikeMovie: matchAny(moviePatterns, filename, parentFolder),
	}
}

// HasEpisodeCode reports whether the filename contains an SxxExx episode
// code. Files carrying an episode code are never treated as extras.
func HasEpisodeCode(filename string) bool {
	return episodeCode.MatchString(filename)
}

func matchAny(res []*regexp.Regexp, filename, parentFolder string) bool {
	for _, re := range res {
		if re.MatchString(filename) || re.MatchString(parentFolder) {
			return true
		}
	}
	return false
}
