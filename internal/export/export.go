// Package export walks a media server library and builds Ryot import records
// from the watch state it finds.
package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/samber/lo"

	"github.com/vadimtrunov/jfryot/internal/core"
	"github.com/vadimtrunov/jfryot/internal/tracker/ryot"
)

// Operation names one export run.
type Operation string

const (
	OpShows  Operation = "shows"
	OpMovies Operation = "movies"
)

// ParseOperation validates a user supplied operation name.
func ParseOperation(s string) (Operation, error) {
	switch op := Operation(s); op {
	case OpShows, OpMovies:
		return op, nil
	}
	return "", fmt.Errorf("invalid query %q", s)
}

// Exporter converts media server items into Ryot records. Requests are made
// one at a time, in source listing order.
type Exporter struct {
	server core.MediaServer
	logger *slog.Logger
}

// New creates an Exporter reading from server.
func New(server core.MediaServer, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{server: server, logger: logger}
}

// Shows exports every show of the default TV library that has a TMDb id.
// Shows without a single watched episode are still exported.
func (e *Exporter) Shows(ctx context.Context) ([]ryot.Item, error) {
	shows, err := e.server.ListItems(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list shows: %w", err)
	}

	var items []ryot.Item
	for _, show := range shows {
		tmdbID, ok := show.TMDbID()
		if !ok {
			e.logger.Debug("skipping show without tmdb id", slog.String("id", show.ID), slog.String("name", show.Name))
			continue
		}

		history, err := e.showHistory(ctx, show)
		if err != nil {
			return nil, err
		}
		items = append(items, ryot.NewShow(tmdbID, show.ID, history))
	}

	e.logger.Info("shows exported", slog.Int("listed", len(shows)), slog.Int("exported", len(items)))
	return items, nil
}

func (e *Exporter) showHistory(ctx context.Context, show core.MediaItem) ([]ryot.SeenHistory, error) {
	seasons, err := e.server.ListItems(ctx, show.ID)
	if err != nil {
		return nil, fmt.Errorf("list seasons of %s: %w", show.ID, err)
	}

	var history []ryot.SeenHistory
	for _, season := range seasons {
		seasonNumber, ok := season.Index()
		if !ok {
			e.logger.Debug("skipping season without index", slog.String("show", show.ID), slog.String("id", season.ID))
			continue
		}

		episodes, err := e.server.ListItems(ctx, season.ID)
		if err != nil {
			return nil, fmt.Errorf("list episodes of %s: %w", season.ID, err)
		}

		history = append(history, lo.FilterMap(episodes, func(ep core.MediaItem, _ int) (ryot.SeenHistory, bool) {
			if !ep.Played {
				return ryot.SeenHistory{}, false
			}
			episodeNumber, ok := ep.Index()
			if !ok {
				return ryot.SeenHistory{}, false
			}
			return ryot.Episode(seasonNumber, episodeNumber), true
		})...)
	}
	return history, nil
}

// Movies exports every watched movie of libraryID that has a TMDb id.
func (e *Exporter) Movies(ctx context.Context, libraryID string) ([]ryot.Item, error) {
	if libraryID == "" {
		return nil, errors.New("movie library id is required")
	}

	movies, err := e.server.ListItems(ctx, libraryID)
	if err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}

	items := lo.FilterMap(movies, func(m core.MediaItem, _ int) (ryot.Item, bool) {
		tmdbID, ok := m.TMDbID()
		if !ok || !m.Played {
			return ryot.Item{}, false
		}
		return ryot.NewMovie(tmdbID, m.ID), true
	})

	e.logger.Info("movies exported", slog.Int("listed", len(movies)), slog.Int("exported", len(items)))
	return items, nil
}
