package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gameshelf-sync-api/internal/model"
)

func newGameRepo(t *testing.T) *SQLiteGameRepository {
	t.Helper()
	repo, err := NewSQLiteGameRepository(filepath.Join(t.TempDir(), "library.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func sampleRecord() *model.GameRecord {
	return &model.GameRecord{
		GameID:           "g1",
		Title:            "Celeste",
		Summary:          "Climb the mountain.",
		Platform:         "gog",
		ReleaseDate:      "2018-01-25",
		CriticsScore:     92.5,
		Logo:             "logo.png",
		Genres:           []string{"Platformer", "Indie"},
		Developers:       []string{"Maddy Makes Games"},
		Publishers:       []string{"Maddy Makes Games"},
		OwnedReleaseKeys: []string{"gog_100", "steam_504230"},
		Screenshots:      []string{"s1.png"},
		Score:            &model.Score{Critics: 92.5, Users: 90, Metacritic: 94},
		Stats:            &model.GameStats{Playtime: 1200, LastPlayed: "2024-03-01", TimesLaunched: 40},
	}
}

func TestInsertAndGetGame(t *testing.T) {
	repo := newGameRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.InsertGame(ctx, sampleRecord()))

	got, err := repo.GetGameByGameID(ctx, "g1")
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, "Celeste", got.Title)
	assert.Equal(t, "gog", got.Platform)
	assert.Equal(t, 92.5, got.CriticsScore)
	assert.Equal(t, []string{"Platformer", "Indie"}, got.Genres)
	assert.Equal(t, []string{"gog_100", "steam_504230"}, got.OwnedReleaseKeys)
	require.NotNil(t, got.Score)
	assert.Equal(t, 94.0, got.Score.Metacritic)
	require.NotNil(t, got.Stats)
	assert.Equal(t, int64(1200), got.Stats.Playtime)
}

func TestGetGameMissing(t *testing.T) {
	repo := newGameRepo(t)

	got, err := repo.GetGameByGameID(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestExistsByGameID(t *testing.T) {
	repo := newGameRepo(t)
	ctx := context.Background()

	exists, err := repo.ExistsByGameID(ctx, "g1")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, repo.InsertGame(ctx, sampleRecord()))

	exists, err = repo.ExistsByGameID(ctx, "g1")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestInsertGameDuplicateFails(t *testing.T) {
	repo := newGameRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.InsertGame(ctx, sampleRecord()))
	err := repo.InsertGame(ctx, sampleRecord())
	require.Error(t, err)

	// The failed insert must not leave partial children behind.
	count, err := repo.CountGames(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestUpdateGameImages(t *testing.T) {
	repo := newGameRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.InsertGame(ctx, sampleRecord()))

	t.Run("mirrors horizontal cover when enabled", func(t *testing.T) {
		updated, err := repo.UpdateGameImages(ctx, ImageUpdate{
			GameID: "g1", Logo: "new-logo.png", MirrorHorizontalCover: true,
		})
		require.NoError(t, err)
		assert.True(t, updated)

		got, err := repo.GetGameByGameID(ctx, "g1")
		require.NoError(t, err)
		assert.Equal(t, "new-logo.png", got.Logo)
		assert.Equal(t, "new-logo.png", got.HorizontalCover)
	})

	t.Run("logo only when mirroring disabled", func(t *testing.T) {
		updated, err := repo.UpdateGameImages(ctx, ImageUpdate{
			GameID: "g1", Logo: "third.png",
		})
		require.NoError(t, err)
		assert.True(t, updated)

		got, err := repo.GetGameByGameID(ctx, "g1")
		require.NoError(t, err)
		assert.Equal(t, "third.png", got.Logo)
		assert.Equal(t, "new-logo.png", got.HorizontalCover)
	})

	t.Run("never inserts missing games", func(t *testing.T) {
		updated, err := repo.UpdateGameImages(ctx, ImageUpdate{
			GameID: "ghost", Logo: "x.png", MirrorHorizontalCover: true,
		})
		require.NoError(t, err)
		assert.False(t, updated)

		exists, err := repo.ExistsByGameID(ctx, "ghost")
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestListAndCountGames(t *testing.T) {
	repo := newGameRepo(t)
	ctx := context.Background()

	for _, rec := range []*model.GameRecord{
		{GameID: "b1", Title: "Bastion", Platform: "steam"},
		{GameID: "a1", Title: "Anodyne", Platform: "gog"},
		{GameID: "c1", Title: "Control", Platform: "epic"},
	} {
		require.NoError(t, repo.InsertGame(ctx, rec))
	}

	count, err := repo.CountGames(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	games, err := repo.ListGames(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, games, 2)
	assert.Equal(t, "Anodyne", games[0].Title)
	assert.Equal(t, "Bastion", games[1].Title)

	games, err = repo.ListGames(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, "Control", games[0].Title)
}
