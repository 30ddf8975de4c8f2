package jellyfin

// itemsResponse represents the response from Jellyfin's /Users/{id}/Items endpoint.
type itemsResponse struct {
	Items []item `json:"Items"`
}

// item represents a single library entry, show, season or episode.
// Everything except Name and Id may be missing depending on the item kind.
type item struct {
	Name        string       `json:"Name"`
	ID          string       `json:"Id"`
	ProviderIDs *providerIDs `json:"ProviderIds,omitempty"`
	IndexNumber *int         `json:"IndexNumber,omitempty"`
	UserData    *userData    `json:"UserData,omitempty"`
}

type providerIDs struct {
	Tvdb *string `json:"Tvdb,omitempty"`
	Imdb *string `json:"Imdb,omitempty"`
	Tmdb *string `json:"Tmdb,omitempty"`
}

type userData struct {
	Played bool `json:"Played"`
}
