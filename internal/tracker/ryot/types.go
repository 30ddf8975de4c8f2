package ryot

import (
	"encoding/json"
	"fmt"
	"io"
)

// Lot is Ryot's media classification.
type Lot string

const (
	LotShow  Lot = "Show"
	LotMovie Lot = "Movie"
)

// SourceTmdb tags records identified by a TMDb id.
const SourceTmdb = "Tmdb"

// Item is one media entry of a Ryot import. Field order is part of the
// import format.
type Item struct {
	Identifier  string        `json:"identifier"`
	Collections []string      `json:"collections"`
	Lot         Lot           `json:"lot"`
	Reviews     []string      `json:"reviews"`
	SeenHistory []SeenHistory `json:"seenHistory"`
	Source      string        `json:"source"`
	SourceID    string        `json:"sourceId"`
}

// SeenHistory is one watch event. Movies leave both numbers null.
type SeenHistory struct {
	ShowEpisodeNumber *int `json:"showEpisodeNumber"`
	ShowSeasonNumber  *int `json:"showSeasonNumber"`
}

// NewShow builds a show record from a TMDb id, the media server id and the
// watched episodes.
func NewShow(tmdbID, sourceID string, history []SeenHistory) Item {
	return newItem(LotShow, tmdbID, sourceID, history)
}

// NewMovie builds a watched movie record with its single positionless entry.
func NewMovie(tmdbID, sourceID string) Item {
	return newItem(LotMovie, tmdbID, sourceID, []SeenHistory{{}})
}

// Episode returns the seen entry for one episode of a season.
func Episode(season, episode int) SeenHistory {
	return SeenHistory{ShowEpisodeNumber: &episode, ShowSeasonNumber: &season}
}

func newItem(lot Lot, tmdbID, sourceID string, history []SeenHistory) Item {
	if history == nil {
		history = []SeenHistory{}
	}
	return Item{
		Identifier:  tmdbID,
		Collections: []string{},
		Lot:         lot,
		Reviews:     []string{},
		SeenHistory: history,
		Source:      SourceTmdb,
		SourceID:    sourceID,
	}
}

// Encode writes items as a single-line JSON array followed by a newline.
// A nil slice is written as [].
func Encode(w io.Writer, items []Item) error {
	if items == nil {
		items = []Item{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal ryot items: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write ryot items: %w", err)
	}
	return nil
}
