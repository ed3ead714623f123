// Package planner turns classification signals into a single media identity
// per file and computes the destination path that identity maps to. All
// decisions here are pure; the orchestrator supplies the inputs and acts on
// the outputs.
package planner

// Kind is the routed media category of a file.
type Kind int

const (
	KindUnknown Kind = iota
	KindMovie
	KindEpisode
	KindSpecial
	KindExtra
)

func (k Kind) String() string {
	switch k {
	case KindMovie:
		return "movie"
	case KindEpisode:
		return "tv"
	case KindSpecial:
		return "special"
	case KindExtra:
		return "extra"
	default:
		return "unknown"
	}
}

// Movie identifies a film. Year is nil when the classifier could not
// determine one; the year suffix is then dropped from paths entirely.
type Movie struct {
	Name string
	Year *int
}

// Episode identifies a numbered TV episode or an AI-flagged special.
// Season and Episode are nil when the classifier omitted them.
type Episode struct {
	Show    string
	Season  *int
	Episode *int
	Title   string
}

// Extra identifies bonus content attached to a show. Season nil or zero
// routes it to the show-level Extras folder.
type Extra struct {
	Show       string
	Season     *int
	Type       string
	Group      string
	OutputBase string
}

// Identity is the closed variant type produced per file. Exactly the field
// matching Kind is set; KindSpecial shares the Episode payload.
type Identity struct {
	Kind    Kind
	Movie   *Movie
	Episode *Episode
	Extra   *Extra
}
