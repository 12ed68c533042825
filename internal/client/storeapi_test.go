package client

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gameshelf-sync-api/internal/cache"
	"gameshelf-sync-api/internal/config"
)

func testConfig(baseURL string) config.StoreAPIConfig {
	return config.StoreAPIConfig{
		APIKey:           "test-key",
		BaseURL:          baseURL,
		StoreBaseURL:     baseURL,
		Timeout:          5 * time.Second,
		RetryMaxAttempts: 3,
		RetryDelay:       time.Millisecond,
		DefaultLanguage:  "english",
		DefaultCountry:   "US",
		AccountID:        "76561198000000000",
		PlatformTag:      "steam",
	}
}

func TestNewStoreClientRequiresKey(t *testing.T) {
	_, err := NewStoreClient(config.StoreAPIConfig{}, nil, 0)
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestGetOwnedGames(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/IPlayerService/GetOwnedGames/v0001/", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.Equal(t, "1", r.URL.Query().Get("include_appinfo"))
		fmt.Fprint(w, `{"response":{"game_count":2,"games":[
			{"appid":400,"name":"Portal","playtime_forever":120},
			{"appid":620,"name":"Portal 2","playtime_forever":300}
		]}}`)
	}))
	defer srv.Close()

	c, err := NewStoreClient(testConfig(srv.URL), nil, 0)
	require.NoError(t, err)

	games, err := c.GetOwnedGames(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, games, 2)
	assert.Equal(t, int64(400), games[0].AppID)
	assert.Equal(t, "Portal 2", games[1].Name)
}

func TestGetRetriesTransientFailures(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `{"response":{"game_count":0,"games":[]}}`)
	}))
	defer srv.Close()

	c, err := NewStoreClient(testConfig(srv.URL), nil, 0)
	require.NoError(t, err)

	_, err = c.GetOwnedGames(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestGetExhaustsRetries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c, err := NewStoreClient(testConfig(srv.URL), nil, 0)
	require.NoError(t, err)

	_, err = c.GetOwnedGames(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestGetDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c, err := NewStoreClient(testConfig(srv.URL), nil, 0)
	require.NoError(t, err)

	_, err = c.GetOwnedGames(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
}

func TestGetPlayerSummariesBatchLimit(t *testing.T) {
	c, err := NewStoreClient(testConfig("http://unused"), nil, 0)
	require.NoError(t, err)

	ids := make([]string, 101)
	for i := range ids {
		ids[i] = fmt.Sprintf("id%d", i)
	}
	_, err = c.GetPlayerSummaries(context.Background(), ids)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "limit 100")

	players, err := c.GetPlayerSummaries(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, players)
}

func TestGetAppDetailsCached(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "/api/appdetails", r.URL.Path)
		assert.Equal(t, "400", r.URL.Query().Get("appids"))
		// The key-less storefront endpoint must not leak the API key.
		assert.Empty(t, r.URL.Query().Get("key"))
		fmt.Fprint(w, `{"400":{"success":true,"data":{
			"steam_appid":400,"name":"Portal","short_description":"Now you're thinking.",
			"platforms":{"windows":true,"mac":true,"linux":false},
			"metacritic":{"score":90,"url":"u"}
		}}}`)
	}))
	defer srv.Close()

	mem := cache.NewMemoryCache()
	defer mem.Stop()

	c, err := NewStoreClient(testConfig(srv.URL), mem, time.Minute)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		details, err := c.GetAppDetails(context.Background(), 400)
		require.NoError(t, err)
		require.NotNil(t, details)
		assert.Equal(t, "Portal", details.Name)
		assert.Equal(t, []string{"windows", "mac"}, details.SupportedPlatforms())
		assert.Equal(t, 90, details.Metacritic.Score)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "repeated lookups served from cache")
}

func TestGetAppDetailsUnavailableApp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"999":{"success":false}}`)
	}))
	defer srv.Close()

	c, err := NewStoreClient(testConfig(srv.URL), nil, 0)
	require.NoError(t, err)

	details, err := c.GetAppDetails(context.Background(), 999)
	require.NoError(t, err)
	assert.Nil(t, details)
}
