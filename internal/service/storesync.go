package service

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"gameshelf-sync-api/internal/client"
	"gameshelf-sync-api/internal/config"
	"gameshelf-sync-api/internal/model"
)

// StoreSyncService pulls the account library from the store API, converts
// each owned title into a destination record, and reconciles the batch.
type StoreSyncService struct {
	store     *client.StoreClient
	reconcile *ReconcileService
	cfg       config.StoreAPIConfig
}

// NewStoreSyncService creates a new store sync service.
func NewStoreSyncService(store *client.StoreClient, reconcile *ReconcileService, cfg config.StoreAPIConfig) *StoreSyncService {
	return &StoreSyncService{store: store, reconcile: reconcile, cfg: cfg}
}

// SyncStore fetches the owned library and reconciles it into the target
// store. Detail lookups are best-effort: a title whose storefront detail
// cannot be fetched still lands with the library-level fields.
func (s *StoreSyncService) SyncStore(ctx context.Context) (*model.SyncReport, error) {
	games, err := s.store.GetOwnedGames(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch owned games: %w", err)
	}

	records := make([]*model.GameRecord, 0, len(games))
	for _, g := range games {
		details, err := s.store.GetAppDetails(ctx, g.AppID)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Printf("[StoreSyncService] Details unavailable for app %d (%s): %v", g.AppID, g.Name, err)
			details = nil
		}
		records = append(records, s.buildRecord(&g, details))
	}

	return s.reconcile.ReconcileRecords(ctx, records)
}

// buildRecord maps one owned title plus its optional storefront detail to
// the destination shape. The game id is namespaced with the platform tag so
// store titles never collide with vendor cache title groups.
func (s *StoreSyncService) buildRecord(g *model.StoreGame, details *model.StoreAppDetails) *model.GameRecord {
	appID := strconv.FormatInt(g.AppID, 10)
	rec := &model.GameRecord{
		GameID:           s.cfg.PlatformTag + "_" + appID,
		Title:            g.Name,
		Platform:         s.cfg.PlatformTag,
		OwnedReleaseKeys: []string{s.cfg.PlatformTag + "_" + appID},
		Stats: &model.GameStats{
			Playtime:      g.PlaytimeForever,
			TimesLaunched: g.TimesLaunched,
		},
	}
	if g.RTimeLastPlayed > 0 {
		rec.Stats.LastPlayed = strconv.FormatInt(g.RTimeLastPlayed, 10)
	}

	if details == nil {
		return rec
	}

	rec.Summary = details.ShortDescription
	rec.ReleaseDate = details.ReleaseDate.Date
	rec.Logo = details.HeaderImage
	rec.Background = details.HeaderImage
	rec.Support = details.Website
	rec.Developers = details.Developers
	rec.Publishers = details.Publishers
	rec.SupportedPlatforms = details.SupportedPlatforms()

	for _, genre := range details.Genres {
		if genre.Description != "" {
			rec.Genres = append(rec.Genres, genre.Description)
		}
	}
	for _, category := range details.Categories {
		if category.Description != "" {
			rec.Features = append(rec.Features, category.Description)
		}
	}
	for _, shot := range details.Screenshots {
		if shot.PathFull != "" {
			rec.Screenshots = append(rec.Screenshots, shot.PathFull)
		}
	}

	if details.Metacritic != nil {
		rec.CriticsScore = float64(details.Metacritic.Score)
		rec.Score = &model.Score{Metacritic: float64(details.Metacritic.Score)}
	}

	return rec
}
