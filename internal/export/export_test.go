package export

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	"github.com/vadimtrunov/jfryot/internal/core"
	"github.com/vadimtrunov/jfryot/internal/tracker/ryot"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// fakeServer implements core.MediaServer from a parent id → children table.
// The empty parent id is the TV library.
type fakeServer struct {
	children map[string][]core.MediaItem
	failOn   map[string]bool
	calls    []string
}

func (f *fakeServer) ListItems(_ context.Context, parentID string) ([]core.MediaItem, error) {
	f.calls = append(f.calls, parentID)
	if f.failOn[parentID] {
		return nil, errors.New("connection reset")
	}
	return f.children[parentID], nil
}

func (f *fakeServer) Name() string { return "fake" }

func idx(n int) *int { return &n }

func withTMDb(item core.MediaItem, id string) core.MediaItem {
	item.ProviderIDs.Tmdb = id
	return item
}

func TestParseOperation(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"shows", "movies"} {
		op, err := ParseOperation(s)
		if err != nil {
			t.Fatalf("ParseOperation(%q): %v", s, err)
		}
		if string(op) != s {
			t.Errorf("expected %q, got %q", s, op)
		}
	}

	for _, s := range []string{"foo", "", "Shows", "movie"} {
		if _, err := ParseOperation(s); err == nil || !strings.Contains(err.Error(), "invalid query") {
			t.Errorf("ParseOperation(%q) should fail, got %v", s, err)
		}
	}
}

func TestShows_EndToEnd(t *testing.T) {
	t.Parallel()

	srv := &fakeServer{children: map[string][]core.MediaItem{
		"":    {withTMDb(core.MediaItem{ID: "s1", Name: "Show"}, "10")},
		"s1":  {{ID: "se1", IndexNumber: idx(1)}},
		"se1": {{ID: "e1", IndexNumber: idx(3), Played: true}},
	}}

	items, err := New(srv, discardLogger).Shows(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []ryot.Item{ryot.NewShow("10", "s1", []ryot.SeenHistory{ryot.Episode(1, 3)})}
	if !reflect.DeepEqual(items, want) {
		t.Errorf("unexpected items:\n got: %+v\nwant: %+v", items, want)
	}
}

func TestShows_Filtering(t *testing.T) {
	t.Parallel()

	srv := &fakeServer{children: map[string][]core.MediaItem{
		"": {
			{ID: "no-tmdb", ProviderIDs: core.ProviderIDs{Tvdb: "1", Imdb: "tt1"}},
			withTMDb(core.MediaItem{ID: "s1"}, "10"),
			withTMDb(core.MediaItem{ID: "s2"}, "20"),
		},
		"s1": {
			{ID: "specials"}, // no index
			{ID: "se1", IndexNumber: idx(1)},
			{ID: "se2", IndexNumber: idx(2)},
		},
		"se1": {
			{ID: "e1", IndexNumber: idx(1), Played: true},
			{ID: "e2", IndexNumber: idx(2), Played: false},
			{ID: "e3", Played: true}, // no index
			{ID: "e4", IndexNumber: idx(4), Played: true},
		},
		"se2": {
			{ID: "e5", IndexNumber: idx(1), Played: true},
		},
		"specials": {
			{ID: "x1", IndexNumber: idx(1), Played: true},
		},
		"s2": {
			{ID: "se3", IndexNumber: idx(1)},
		},
		"se3": {
			{ID: "e6", IndexNumber: idx(1)},
		},
	}}

	items, err := New(srv, discardLogger).Shows(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 shows, got %d: %+v", len(items), items)
	}

	first := items[0]
	if first.Identifier != "10" || first.SourceID != "s1" || first.Lot != ryot.LotShow {
		t.Errorf("unexpected first show: %+v", first)
	}
	wantHistory := []ryot.SeenHistory{ryot.Episode(1, 1), ryot.Episode(1, 4), ryot.Episode(2, 1)}
	if !reflect.DeepEqual(first.SeenHistory, wantHistory) {
		t.Errorf("unexpected history: %+v", first.SeenHistory)
	}

	second := items[1]
	if second.Identifier != "20" || second.SourceID != "s2" {
		t.Errorf("unexpected second show: %+v", second)
	}
	if second.SeenHistory == nil || len(second.SeenHistory) != 0 {
		t.Errorf("expected empty non-nil history, got %#v", second.SeenHistory)
	}

	// 1 library + 2 eligible shows + 3 indexed seasons; the show without a
	// tmdb id and the unindexed season are never fetched.
	wantCalls := []string{"", "s1", "se1", "se2", "s2", "se3"}
	if !reflect.DeepEqual(srv.calls, wantCalls) {
		t.Errorf("unexpected request order: %v", srv.calls)
	}
}

func TestShows_EmptyLibrary(t *testing.T) {
	t.Parallel()

	items, err := New(&fakeServer{}, discardLogger).Shows(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected no items, got %+v", items)
	}
}

func TestShows_ErrorAborts(t *testing.T) {
	t.Parallel()

	for _, failOn := range []string{"", "s2", "se1"} {
		srv := &fakeServer{
			failOn: map[string]bool{failOn: true},
			children: map[string][]core.MediaItem{
				"":   {withTMDb(core.MediaItem{ID: "s1"}, "1"), withTMDb(core.MediaItem{ID: "s2"}, "2")},
				"s1": {{ID: "se1", IndexNumber: idx(1)}},
			},
		}

		items, err := New(srv, discardLogger).Shows(context.Background())
		if err == nil {
			t.Fatalf("failOn=%q: expected error", failOn)
		}
		if items != nil {
			t.Errorf("failOn=%q: expected no partial result, got %+v", failOn, items)
		}
		if !strings.Contains(err.Error(), "connection reset") {
			t.Errorf("failOn=%q: cause not wrapped: %v", failOn, err)
		}
	}
}

func TestMovies_EndToEnd(t *testing.T) {
	t.Parallel()

	srv := &fakeServer{children: map[string][]core.MediaItem{
		"movies": {withTMDb(core.MediaItem{ID: "m1", Played: true}, "500")},
	}}

	items, err := New(srv, discardLogger).Movies(context.Background(), "movies")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []ryot.Item{ryot.NewMovie("500", "m1")}
	if !reflect.DeepEqual(items, want) {
		t.Errorf("unexpected items:\n got: %+v\nwant: %+v", items, want)
	}
	if h := items[0].SeenHistory; len(h) != 1 || h[0].ShowEpisodeNumber != nil || h[0].ShowSeasonNumber != nil {
		t.Errorf("expected one positionless entry, got %+v", h)
	}
	if !reflect.DeepEqual(srv.calls, []string{"movies"}) {
		t.Errorf("expected one request for the movie library, got %v", srv.calls)
	}
}

func TestMovies_Filtering(t *testing.T) {
	t.Parallel()

	srv := &fakeServer{children: map[string][]core.MediaItem{
		"movies": {
			{ID: "no-tmdb", Played: true, ProviderIDs: core.ProviderIDs{Imdb: "tt1"}},
			withTMDb(core.MediaItem{ID: "unwatched"}, "1"),
			withTMDb(core.MediaItem{ID: "m2", Played: true}, "2"),
			withTMDb(core.MediaItem{ID: "m3", Played: true, IndexNumber: idx(7)}, "3"),
		},
	}}

	items, err := New(srv, discardLogger).Movies(context.Background(), "movies")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var ids []string
	for _, it := range items {
		if it.Lot != ryot.LotMovie || it.Source != ryot.SourceTmdb {
			t.Errorf("unexpected record: %+v", it)
		}
		ids = append(ids, it.SourceID+"="+it.Identifier)
	}
	if !reflect.DeepEqual(ids, []string{"m2=2", "m3=3"}) {
		t.Errorf("unexpected movies: %v", ids)
	}
}

func TestMovies_RequiresLibrary(t *testing.T) {
	t.Parallel()

	srv := &fakeServer{}
	if _, err := New(srv, discardLogger).Movies(context.Background(), ""); err == nil {
		t.Fatal("expected error without library id")
	}
	if len(srv.calls) != 0 {
		t.Errorf("expected no requests, got %v", srv.calls)
	}
}

func TestMovies_ErrorAborts(t *testing.T) {
	t.Parallel()

	srv := &fakeServer{failOn: map[string]bool{"movies": true}}
	items, err := New(srv, nil).Movies(context.Background(), "movies")
	if err == nil {
		t.Fatal("expected error")
	}
	if items != nil {
		t.Errorf("expected no result, got %+v", items)
	}
}

func TestEmptyTMDbIDSkipped(t *testing.T) {
	t.Parallel()

	srv := &fakeServer{children: map[string][]core.MediaItem{
		"":       {withTMDb(core.MediaItem{ID: "s1"}, ""), withTMDb(core.MediaItem{ID: "s2"}, "20")},
		"movies": {withTMDb(core.MediaItem{ID: "m1", Played: true}, "")},
	}}
	exp := New(srv, discardLogger)

	shows, err := exp.Shows(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(shows) != 1 || shows[0].SourceID != "s2" {
		t.Errorf("show with empty tmdb id should be skipped, got %+v", shows)
	}
	for _, c := range srv.calls {
		if c == "s1" {
			t.Error("seasons of a show with empty tmdb id were fetched")
		}
	}

	movies, err := exp.Movies(context.Background(), "movies")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(movies) != 0 {
		t.Errorf("movie with empty tmdb id should be skipped, got %+v", movies)
	}
}
