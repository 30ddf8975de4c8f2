package core

import "context"

// MediaServer defines the read side of a media server used by the exporters.
type MediaServer interface {
	// ListItems returns the direct children of parentID. An empty parentID
	// means the server's configured default (TV) library.
	ListItems(ctx context.Context, parentID string) ([]MediaItem, error)

	// Name returns the server name (e.g., "jellyfin")
	Name() string
}

// MediaItem is one library entry, show, season or episode as reported by the
// media server.
type MediaItem struct {
	ID          string      // Server-specific ID
	Name        string      // Display name
	ProviderIDs ProviderIDs // External catalog ids
	IndexNumber *int        // Season number on seasons, episode number on episodes
	Played      bool        // Absent playback state counts as not played
}

// ProviderIDs holds external catalog ids. An empty string means absent.
type ProviderIDs struct {
	Tvdb string
	Imdb string
	Tmdb string
}

// TMDbID returns the TMDb id and whether the item has one.
func (i MediaItem) TMDbID() (string, bool) {
	return i.ProviderIDs.Tmdb, i.ProviderIDs.Tmdb != ""
}

// Index returns the ordinal index and whether it is set.
func (i MediaItem) Index() (int, bool) {
	if i.IndexNumber == nil {
		return 0, false
	}
	return *i.IndexNumber, true
}
