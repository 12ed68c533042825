package normalize

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw string) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(raw), &m))
	return m
}

func TestGameRecordFromMapFull(t *testing.T) {
	rec := GameRecordFromMap(decode(t, `{
		"gameId": "g1",
		"platform": "gog",
		"title": "Celeste",
		"summary": "Climb the mountain.",
		"releaseDate": "2018-01-25",
		"criticsScore": 92.5,
		"myRating": 5,
		"isFromProductsApi": true,
		"isModifiedByUser": false,
		"image": "logo2x.png",
		"verticalCover": "vc.png",
		"genres": [{"name": "Platformer"}, {"name": "Indie"}],
		"developers": [{"name": "Maddy Makes Games"}],
		"publishers": ["Maddy Makes Games"],
		"tags": [],
		"supported": [{"platform": "windows"}, {"platform": "linux"}],
		"ownedReleaseKeys": ["gog_100", "steam_504230"],
		"screenshots": [{"url": "s1.png"}, {"url": "s2.png"}],
		"videos": ["v1.mp4"],
		"score": {"critics": 92.5, "users": 90, "metacritic": 94},
		"gameStats": {"playtime": 1200, "lastPlayed": "2024-03-01", "timesLaunched": 40}
	}`))

	assert.Equal(t, "g1", rec.GameID)
	assert.Equal(t, "gog", rec.Platform)
	assert.Equal(t, "Celeste", rec.Title)
	assert.Equal(t, 92.5, rec.CriticsScore)
	assert.Equal(t, 5.0, rec.MyRating)
	assert.True(t, rec.IsFromProductsAPI)
	assert.False(t, rec.IsModifiedByUser)
	assert.Equal(t, "logo2x.png", rec.Logo)
	assert.Equal(t, "vc.png", rec.VerticalCover)

	assert.Equal(t, []string{"Platformer", "Indie"}, rec.Genres)
	assert.Equal(t, []string{"Maddy Makes Games"}, rec.Developers)
	assert.Equal(t, []string{"Maddy Makes Games"}, rec.Publishers)
	assert.Nil(t, rec.Tags)
	assert.Equal(t, []string{"windows", "linux"}, rec.SupportedPlatforms)
	assert.Equal(t, []string{"gog_100", "steam_504230"}, rec.OwnedReleaseKeys)
	assert.Equal(t, []string{"s1.png", "s2.png"}, rec.Screenshots)
	assert.Equal(t, []string{"v1.mp4"}, rec.Videos)

	require.NotNil(t, rec.Score)
	assert.Equal(t, 94.0, rec.Score.Metacritic)
	require.NotNil(t, rec.Stats)
	assert.Equal(t, int64(1200), rec.Stats.Playtime)
	assert.Equal(t, "2024-03-01", rec.Stats.LastPlayed)
}

func TestGameRecordFromMapDefaults(t *testing.T) {
	rec := GameRecordFromMap(map[string]interface{}{})

	assert.Equal(t, "", rec.GameID)
	assert.Equal(t, "", rec.Title)
	assert.Equal(t, 0.0, rec.CriticsScore)
	assert.False(t, rec.IsFromProductsAPI)
	assert.Nil(t, rec.Genres)
	assert.Nil(t, rec.Score)
	assert.Nil(t, rec.Stats)
}

func TestGameRecordFromMapMalformedFields(t *testing.T) {
	rec := GameRecordFromMap(decode(t, `{
		"gameId": "g2",
		"title": 12345,
		"criticsScore": "88.5",
		"isModifiedByUser": 1,
		"genres": "not a list",
		"developers": [null, {"wrong": "key"}, {"name": "Real Dev"}, 7],
		"score": "broken",
		"gameStats": {}
	}`))

	assert.Equal(t, "g2", rec.GameID)
	assert.Equal(t, "12345", rec.Title)
	assert.Equal(t, 88.5, rec.CriticsScore)
	assert.True(t, rec.IsModifiedByUser)
	assert.Nil(t, rec.Genres)
	assert.Equal(t, []string{"Real Dev", "7"}, rec.Developers)
	assert.Nil(t, rec.Score)
	assert.Nil(t, rec.Stats)
}

func TestGameRecordFromMapLogoFallback(t *testing.T) {
	rec := GameRecordFromMap(map[string]interface{}{"logo": "direct.png"})
	assert.Equal(t, "direct.png", rec.Logo)

	rec = GameRecordFromMap(map[string]interface{}{"image": "img.png", "logo": "direct.png"})
	assert.Equal(t, "img.png", rec.Logo)
}

func TestStringListShapes(t *testing.T) {
	t.Run("string slice passthrough", func(t *testing.T) {
		assert.Equal(t, []string{"a", "b"}, StringList("g", "tags", []string{"a", "b"}, "name"))
	})

	t.Run("mapping elements", func(t *testing.T) {
		in := []interface{}{
			map[string]interface{}{"name": "RPG"},
			map[string]interface{}{"name": ""},
		}
		assert.Equal(t, []string{"RPG"}, StringList("g", "genres", in, "name"))
	})

	t.Run("empty and nil collapse to nil", func(t *testing.T) {
		assert.Nil(t, StringList("g", "tags", []interface{}{}, "name"))
		assert.Nil(t, StringList("g", "tags", nil, "name"))
		assert.Nil(t, StringList("g", "tags", []interface{}{nil, ""}, "name"))
	})
}

func TestCoercions(t *testing.T) {
	assert.Equal(t, "7", Str(float64(7)))
	assert.Equal(t, "7.5", Str(7.5))
	assert.Equal(t, "true", Str(true))
	assert.Equal(t, "", Str(nil))

	assert.Equal(t, 3.5, F64("3.5"))
	assert.Equal(t, 0.0, F64("abc"))
	assert.Equal(t, int64(9), I64(float64(9)))
	assert.Equal(t, int64(0), I64("x"))

	assert.True(t, Bool("yes"))
	assert.True(t, Bool(float64(1)))
	assert.False(t, Bool("0"))
	assert.False(t, Bool(nil))
}
