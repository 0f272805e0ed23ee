package identity

import "fmt"

// Identity carries everything downstream consumers need to address a
// media item by external identifiers. Zero values mean the
// corresponding lookup failed or was never attempted; callers must
// tolerate either identifier being absent.
type Identity struct {
	RawTitle string
	ShowName string
	Season   int
	Episode  int
	Year     int

	ImdbID string
	MalID  int
}

// HasImdb reports whether an IMDB identifier was resolved.
func (id Identity) HasImdb() bool {
	return id.ImdbID != ""
}

// HasMal reports whether a MyAnimeList identifier was resolved.
func (id Identity) HasMal() bool {
	return id.MalID > 0
}

// EpisodeName returns the synthetic episode title used by providers
// that key on episode names rather than numbers.
func (id Identity) EpisodeName() string {
	return fmt.Sprintf("Episode %d", id.Episode)
}

// CacheKey uniquely addresses the episode for segment caching. It
// prefers the IMDB identity and falls back to the normalized show
// name when no identifier resolved.
func (id Identity) CacheKey() string {
	switch {
	case id.HasImdb():
		return fmt.Sprintf("%s:%d:%d", id.ImdbID, id.Season, id.Episode)
	case id.HasMal():
		return fmt.Sprintf("mal%d:%d:%d", id.MalID, id.Season, id.Episode)
	default:
		return fmt.Sprintf("%s:%d:%d", id.ShowName, id.Season, id.Episode)
	}
}
