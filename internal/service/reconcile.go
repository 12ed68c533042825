package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"gameshelf-sync-api/internal/model"
	"gameshelf-sync-api/internal/normalize"
	"gameshelf-sync-api/internal/repository"
	"gameshelf-sync-api/pkg/uid"
)

// ReconcileService writes canonical title records into the target store.
// Each record is handled independently: a record without a game id is
// counted and dropped, an already-present game id is skipped, an insert
// failure rolls back that record alone and the run continues.
type ReconcileService struct {
	games repository.GameRepository
}

// NewReconcileService creates a new reconcile service.
func NewReconcileService(games repository.GameRepository) *ReconcileService {
	return &ReconcileService{games: games}
}

// ReconcileFile loads the interchange file and reconciles every record in it.
func (s *ReconcileService) ReconcileFile(ctx context.Context, path string) (*model.SyncReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read interchange file %s: %w", path, err)
	}

	var records []map[string]interface{}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode interchange file %s: %w", path, err)
	}

	return s.ReconcileMaps(ctx, records)
}

// ReconcileMaps normalizes and reconciles flat interchange mappings.
func (s *ReconcileService) ReconcileMaps(ctx context.Context, records []map[string]interface{}) (*model.SyncReport, error) {
	typed := make([]*model.GameRecord, 0, len(records))
	for _, raw := range records {
		typed = append(typed, normalize.GameRecordFromMap(raw))
	}
	return s.ReconcileRecords(ctx, typed)
}

// ReconcileRecords runs the per-record insert state machine over typed
// records and returns the run report. Only a context cancellation or a
// failure of the duplicate pre-check aborts the run as a whole.
func (s *ReconcileService) ReconcileRecords(ctx context.Context, records []*model.GameRecord) (*model.SyncReport, error) {
	report := &model.SyncReport{
		RunID:     uid.New(),
		StartedAt: time.Now().UTC(),
		Total:     len(records),
	}
	log.Printf("[ReconcileService] Run %s started: %d records", report.RunID, report.Total)

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if rec.GameID == "" {
			report.MissingGameID++
			log.Printf("[ReconcileService] Record without game id dropped (title %q)", rec.Title)
			continue
		}

		exists, err := s.games.ExistsByGameID(ctx, rec.GameID)
		if err != nil {
			return nil, fmt.Errorf("failed to check game %s: %w", rec.GameID, err)
		}
		if exists {
			report.Skipped++
			continue
		}

		if err := s.games.InsertGame(ctx, rec); err != nil {
			report.Failed++
			log.Printf("[ReconcileService] Failed to insert game %s: %v", rec.GameID, err)
			continue
		}
		report.Inserted++
	}

	report.FinishedAt = time.Now().UTC()
	log.Printf("[ReconcileService] Run %s finished: %d inserted, %d skipped, %d missing id, %d failed",
		report.RunID, report.Inserted, report.Skipped, report.MissingGameID, report.Failed)
	return report, nil
}
