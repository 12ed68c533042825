package service

import (
	"context"
	"errors"
	"sort"

	"gameshelf-sync-api/internal/model"
	"gameshelf-sync-api/internal/repository"
)

// fakeVendorCache serves canned rows in place of the vendor database.
type fakeVendorCache struct {
	pieces []model.RawPiece
	images []model.GameImage
	err    error
}

func (f *fakeVendorCache) ReadPieces(ctx context.Context) ([]model.RawPiece, error) {
	return f.pieces, f.err
}

func (f *fakeVendorCache) ReadGameImages(ctx context.Context) ([]model.GameImage, error) {
	return f.images, f.err
}

func (f *fakeVendorCache) Close() error { return nil }

var _ repository.VendorCacheRepository = (*fakeVendorCache)(nil)

// fakeGameRepo keeps records in a map and can be told to fail specific
// game ids, for exercising per-record rollback behavior.
type fakeGameRepo struct {
	records    map[string]*model.GameRecord
	failInsert map[string]bool
	updates    []repository.ImageUpdate
}

func newFakeGameRepo() *fakeGameRepo {
	return &fakeGameRepo{
		records:    make(map[string]*model.GameRecord),
		failInsert: make(map[string]bool),
	}
}

func (f *fakeGameRepo) ExistsByGameID(ctx context.Context, gameID string) (bool, error) {
	_, ok := f.records[gameID]
	return ok, nil
}

func (f *fakeGameRepo) InsertGame(ctx context.Context, rec *model.GameRecord) error {
	if f.failInsert[rec.GameID] {
		return errors.New("simulated insert failure")
	}
	f.records[rec.GameID] = rec
	return nil
}

func (f *fakeGameRepo) UpdateGameImages(ctx context.Context, upd repository.ImageUpdate) (bool, error) {
	f.updates = append(f.updates, upd)
	rec, ok := f.records[upd.GameID]
	if !ok {
		return false, nil
	}
	rec.Logo = upd.Logo
	if upd.MirrorHorizontalCover {
		rec.HorizontalCover = upd.Logo
	}
	return true, nil
}

func (f *fakeGameRepo) ListGames(ctx context.Context, page, limit int) ([]model.GameSummary, error) {
	ids := make([]string, 0, len(f.records))
	for id := range f.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var out []model.GameSummary
	for _, id := range ids {
		rec := f.records[id]
		out = append(out, model.GameSummary{GameID: rec.GameID, Title: rec.Title, Platform: rec.Platform})
	}
	return out, nil
}

func (f *fakeGameRepo) GetGameByGameID(ctx context.Context, gameID string) (*model.GameRecord, error) {
	return f.records[gameID], nil
}

func (f *fakeGameRepo) CountGames(ctx context.Context) (int64, error) {
	return int64(len(f.records)), nil
}

func (f *fakeGameRepo) Close() error { return nil }

var _ repository.GameRepository = (*fakeGameRepo)(nil)
