package classify

// Metadata is one classification result from the AI, aligned by index with
// the batch of filenames submitted.
type Metadata struct {
	Type         string `json:"type"` // "tv", "movie", "extra" or "unknown"
	Name         string `json:"name,omitempty"`
	Year         *int   `json:"year,omitempty"`
	Season       *int   `json:"season,omitempty"`
	Episode      *int   `json:"episode,omitempty"`
	EpisodeTitle string `json:"episode_title,omitempty"`
	IsSpecial    bool   `json:"is_special,omitempty"`
	ExtraType    string `json:"extra_type,omitempty"`
}

// Unknown returns the metadata used when the classifier abstains or fails.
func Unknown() Metadata {
	return Metadata{Type: TypeUnknown}
}

const (
	TypeTV      = "tv"
	TypeMovie   = "movie"
	TypeExtra   = "extra"
	TypeUnknown = "unknown"
)

// SeasonOr returns the season number or def when the AI omitted it.
func (m Metadata) SeasonOr(def int) int {
	if m.Season != nil {
		return *m.Season
	}
	return def
}

// EpisodeOr returns the episode number or def when the AI omitted it.
func (m Metadata) EpisodeOr(def int) int {
	if m.Episode != nil {
		return *m.Episode
	}
	return def
}
