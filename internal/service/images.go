package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"gameshelf-sync-api/internal/config"
	"gameshelf-sync-api/internal/model"
	"gameshelf-sync-api/internal/repository"
	"gameshelf-sync-api/pkg/uid"
)

// ImageService refreshes image columns of already-stored games from the
// vendor cache. It only updates existing rows; a title not present in the
// target store is counted and left alone.
type ImageService struct {
	vendorCache repository.VendorCacheRepository
	games       repository.GameRepository
	cfg         config.SyncConfig
}

// NewImageService creates a new image refresh service.
func NewImageService(vendorCache repository.VendorCacheRepository, games repository.GameRepository, cfg config.SyncConfig) *ImageService {
	return &ImageService{vendorCache: vendorCache, games: games, cfg: cfg}
}

// RefreshImages walks the vendor cache image blobs and writes the extracted
// logo URL into the matching target rows.
func (s *ImageService) RefreshImages(ctx context.Context) (*model.ImageReport, error) {
	report := &model.ImageReport{
		RunID:     uid.New(),
		StartedAt: time.Now().UTC(),
	}

	images, err := s.vendorCache.ReadGameImages(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read vendor cache images: %w", err)
	}
	log.Printf("[ImageService] Run %s started: %d image rows", report.RunID, len(images))

	for _, img := range images {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		logo := model.Logo2x(img.Images)
		if logo == "" {
			continue
		}
		report.Extracted++

		updated, err := s.games.UpdateGameImages(ctx, repository.ImageUpdate{
			GameID:                img.GameID,
			Logo:                  logo,
			MirrorHorizontalCover: s.cfg.MirrorHorizontalCover,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to update images for game %s: %w", img.GameID, err)
		}
		if updated {
			report.Updated++
		} else {
			report.NotFound++
		}
	}

	report.FinishedAt = time.Now().UTC()
	log.Printf("[ImageService] Run %s finished: %d extracted, %d updated, %d not in store",
		report.RunID, report.Extracted, report.Updated, report.NotFound)
	return report, nil
}
