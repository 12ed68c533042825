package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gameshelf-sync-api/internal/handler"
	"gameshelf-sync-api/internal/middleware"
	"gameshelf-sync-api/internal/model"
	"gameshelf-sync-api/internal/repository"
)

// stubGameRepo serves a fixed set of games for route tests.
type stubGameRepo struct {
	games map[string]*model.GameRecord
}

func (s *stubGameRepo) ExistsByGameID(ctx context.Context, gameID string) (bool, error) {
	_, ok := s.games[gameID]
	return ok, nil
}

func (s *stubGameRepo) InsertGame(ctx context.Context, rec *model.GameRecord) error {
	s.games[rec.GameID] = rec
	return nil
}

func (s *stubGameRepo) UpdateGameImages(ctx context.Context, upd repository.ImageUpdate) (bool, error) {
	return false, nil
}

func (s *stubGameRepo) ListGames(ctx context.Context, page, limit int) ([]model.GameSummary, error) {
	var out []model.GameSummary
	for _, rec := range s.games {
		out = append(out, model.GameSummary{GameID: rec.GameID, Title: rec.Title})
	}
	return out, nil
}

func (s *stubGameRepo) GetGameByGameID(ctx context.Context, gameID string) (*model.GameRecord, error) {
	return s.games[gameID], nil
}

func (s *stubGameRepo) CountGames(ctx context.Context) (int64, error) {
	return int64(len(s.games)), nil
}

func (s *stubGameRepo) Close() error { return nil }

var _ repository.GameRepository = (*stubGameRepo)(nil)

func newTestServer(t *testing.T) (*httptest.Server, *stubGameRepo) {
	t.Helper()
	repo := &stubGameRepo{games: map[string]*model.GameRecord{
		"g1": {GameID: "g1", Title: "Celeste", Platform: "gog"},
	}}

	r := New(Config{
		Handler:            handler.New("1.0.0", repo),
		GamesHandler:       handler.NewGamesHandler(repo),
		SyncHandler:        handler.NewSyncHandler(nil, nil, nil, nil, repo, ""),
		AdminKeyMiddleware: middleware.NewAdminKeyMiddleware("secret"),
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, repo
}

func TestHealthRoute(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestGamesRoutes(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/games/")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Success bool                `json:"success"`
		Data    []model.GameSummary `json:"data"`
		Meta    struct {
			Total int64 `json:"total"`
		} `json:"meta"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Success)
	require.Len(t, body.Data, 1)
	assert.Equal(t, "Celeste", body.Data[0].Title)
	assert.Equal(t, int64(1), body.Meta.Total)

	resp, err = http.Get(srv.URL + "/api/v1/games/ghost")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAdminRoutesRequireKey(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/admin/stats")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/v1/admin/stats", nil)
	require.NoError(t, err)
	req.Header.Set("X-Admin-Key", "wrong")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req.Header.Set("X-Admin-Key", "secret")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Data struct {
			Games int64 `json:"games"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, int64(1), body.Data.Games)
}
