package planner

import (
	"path/filepath"
	"regexp"

	"github.com/Nomadcxx/videolabels/internal/classify"
	"github.com/Nomadcxx/videolabels/internal/extras"
)

// BuildIdentity folds reconciled metadata and an optional extras
// classification into one identity. Extras take strict precedence: a file
// classified as an extra is never routed as an episode or special, even
// when the AI flagged it special.
func BuildIdentity(meta classify.Metadata, extra *extras.Classification, path string) Identity {
	if extra != nil {
		show := meta.Name
		if show == "" {
			show = grandparentName(path)
		}
		return Identity{
			Kind: KindExtra,
			Extra: &Extra{
				Show:       show,
				Season:     meta.Season,
				Type:       extra.ExtraType,
				Group:      extra.Group,
				OutputBase: extra.OutputBase,
			},
		}
	}

	name := meta.Name
	if name == "" {
		// Forced classifications and abstaining AI results often carry no
		// name; the containing folder is the best remaining signal.
		name = containingFolderName(path)
	}

	switch meta.Type {
	case classify.TypeMovie:
		return Identity{
			Kind:  KindMovie,
			Movie: &Movie{Name: name, Year: meta.Year},
		}
	case classify.TypeTV:
		ep := &Episode{
			Show:    name,
			Season:  meta.Season,
			Episode: meta.Episode,
			Title:   meta.EpisodeTitle,
		}
		if meta.IsSpecial {
			return Identity{Kind: KindSpecial, Episode: ep}
		}
		return Identity{Kind: KindEpisode, Episode: ep}
	default:
		return Identity{Kind: KindUnknown}
	}
}

// grandparentName names the show for extras found without AI metadata,
// assuming the common layout Show/Extras/file or Show/Season/file.
func grandparentName(path string) string {
	return filepath.Base(filepath.Dir(filepath.Dir(path)))
}

var seasonFolder = regexp.MustCompile(`(?i)^season[ ._-]?\d{1,2}$`)

// containingFolderName names a file after its parent folder, stepping over a
// season folder to the show folder above it.
func containingFolderName(path string) string {
	parent := filepath.Base(filepath.Dir(path))
	if seasonFolder.MatchString(parent) {
		return grandparentName(path)
	}
	return parent
}
