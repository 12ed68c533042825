package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"gameshelf-sync-api/internal/config"
	"gameshelf-sync-api/internal/model"
	"gameshelf-sync-api/internal/repository"
)

// ExportService reads the vendor cache and merges piece rows into canonical
// title records, optionally writing them to the interchange file.
type ExportService struct {
	vendorCache repository.VendorCacheRepository
	cfg         config.SyncConfig
}

// NewExportService creates a new export service.
func NewExportService(vendorCache repository.VendorCacheRepository, cfg config.SyncConfig) *ExportService {
	return &ExportService{vendorCache: vendorCache, cfg: cfg}
}

// BuildTitles reads every piece row and folds them into one canonical title
// per title group. Group order follows first appearance in the source, which
// the read query keeps sorted by game id.
func (s *ExportService) BuildTitles(ctx context.Context) ([]*model.CanonicalTitle, model.PlatformCounts, error) {
	pieces, err := s.vendorCache.ReadPieces(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read vendor cache: %w", err)
	}

	byGame := make(map[string]*model.CanonicalTitle)
	var order []string

	for _, piece := range pieces {
		title, ok := byGame[piece.GameID]
		if !ok {
			title = model.NewCanonicalTitle(piece.GameID, piece.ReleaseKey)
			byGame[piece.GameID] = title
			order = append(order, piece.GameID)
		}

		title.AddReleaseKey(piece.ReleaseKey)
		title.SetImageIfEmpty(model.Logo2x(piece.Images))
		title.MergeBody(piece.PieceType, model.DecodePieceBody(piece.PieceValue))
	}

	titles := make([]*model.CanonicalTitle, 0, len(order))
	counts := make(model.PlatformCounts)
	for _, gameID := range order {
		title := byGame[gameID]
		titles = append(titles, title)
		counts[title.Platform]++
	}

	log.Printf("[ExportService] Merged %d pieces into %d titles", len(pieces), len(titles))
	return titles, counts, nil
}

// Export builds the canonical titles and writes them to the interchange
// file as one JSON array. The write goes through a temp file and rename so
// a crash never leaves a truncated export behind.
func (s *ExportService) Export(ctx context.Context) (model.PlatformCounts, error) {
	titles, counts, err := s.BuildTitles(ctx)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(s.cfg.InterchangePath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}

	data, err := json.MarshalIndent(titles, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode export: %w", err)
	}

	tmp := s.cfg.InterchangePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write export: %w", err)
	}
	if err := os.Rename(tmp, s.cfg.InterchangePath); err != nil {
		return nil, fmt.Errorf("failed to finalize export: %w", err)
	}

	for _, platform := range counts.Sorted() {
		log.Printf("[ExportService] %s: %d titles", platform, counts[platform])
	}
	log.Printf("[ExportService] Wrote %d titles to %s", counts.Total(), s.cfg.InterchangePath)
	return counts, nil
}
