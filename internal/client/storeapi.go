// Package client implements the game-store REST API client. All endpoints
// go through a shared request helper with bounded fixed-delay retry; the
// storefront detail endpoint is additionally cached because it is the one
// the store rate-limits aggressively.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"gameshelf-sync-api/internal/cache"
	"gameshelf-sync-api/internal/config"
	"gameshelf-sync-api/internal/model"
)

// ErrMissingAPIKey is returned by NewStoreClient when no API key is
// configured. Key-less endpoints are not enough to run a sync.
var ErrMissingAPIKey = errors.New("store API key is not configured")

// APIError carries the HTTP status of a failed store API call.
type APIError struct {
	StatusCode int
	Endpoint   string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("store API %s returned status %d", e.Endpoint, e.StatusCode)
}

// retryable reports whether another attempt can change the outcome.
// Client errors other than 429 are permanent.
func (e *APIError) retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// StoreClient talks to the store's Web API and storefront API.
type StoreClient struct {
	cfg        config.StoreAPIConfig
	httpClient *http.Client
	cache      cache.Cache
	cacheTTL   time.Duration
}

// NewStoreClient builds a client from configuration. The cache may be nil,
// in which case detail lookups always hit the network.
func NewStoreClient(cfg config.StoreAPIConfig, c cache.Cache, cacheTTL time.Duration) (*StoreClient, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	return &StoreClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cache:      c,
		cacheTTL:   cacheTTL,
	}, nil
}

// get performs one GET with bounded retry. Permanent failures (4xx other
// than 429, decode errors) abort immediately; transient ones are retried
// after a fixed delay until attempts run out.
func (c *StoreClient) get(ctx context.Context, rawURL, endpoint string, out interface{}) error {
	attempts := c.cfg.RetryMaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			log.Printf("[StoreClient] Retrying %s (attempt %d/%d)", endpoint, attempt, attempts)
			select {
			case <-time.After(c.cfg.RetryDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		lastErr = c.doOnce(ctx, rawURL, endpoint, out)
		if lastErr == nil {
			return nil
		}

		var apiErr *APIError
		if errors.As(lastErr, &apiErr) && !apiErr.retryable() {
			return lastErr
		}
		if errors.Is(lastErr, context.Canceled) || errors.Is(lastErr, context.DeadlineExceeded) {
			return lastErr
		}
	}
	return fmt.Errorf("store API %s failed after %d attempts: %w", endpoint, attempts, lastErr)
}

func (c *StoreClient) doOnce(ctx context.Context, rawURL, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode, Endpoint: endpoint, Body: string(body)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}
	return nil
}

// GetOwnedGames fetches the account's full library with app info included.
func (c *StoreClient) GetOwnedGames(ctx context.Context, accountID string) ([]model.StoreGame, error) {
	if accountID == "" {
		accountID = c.cfg.AccountID
	}
	if accountID == "" {
		return nil, errors.New("no store account id configured")
	}

	q := url.Values{}
	q.Set("key", c.cfg.APIKey)
	q.Set("steamid", accountID)
	q.Set("include_appinfo", "1")
	q.Set("include_played_free_games", "1")
	q.Set("format", "json")

	var payload struct {
		Response struct {
			GameCount int               `json:"game_count"`
			Games     []model.StoreGame `json:"games"`
		} `json:"response"`
	}
	u := c.cfg.BaseURL + "/IPlayerService/GetOwnedGames/v0001/?" + q.Encode()
	if err := c.get(ctx, u, "GetOwnedGames", &payload); err != nil {
		return nil, err
	}

	log.Printf("[StoreClient] Fetched %d owned games for account %s", payload.Response.GameCount, accountID)
	return payload.Response.Games, nil
}

// GetPlayerSummaries fetches player profiles. The API caps one call at 100
// ids; larger batches are rejected rather than silently truncated.
func (c *StoreClient) GetPlayerSummaries(ctx context.Context, accountIDs []string) ([]model.StorePlayerSummary, error) {
	if len(accountIDs) == 0 {
		return nil, nil
	}
	if len(accountIDs) > 100 {
		return nil, fmt.Errorf("too many account ids: %d (limit 100)", len(accountIDs))
	}

	q := url.Values{}
	q.Set("key", c.cfg.APIKey)
	q.Set("steamids", strings.Join(accountIDs, ","))
	q.Set("format", "json")

	var payload struct {
		Response struct {
			Players []model.StorePlayerSummary `json:"players"`
		} `json:"response"`
	}
	u := c.cfg.BaseURL + "/ISteamUser/GetPlayerSummaries/v0002/?" + q.Encode()
	if err := c.get(ctx, u, "GetPlayerSummaries", &payload); err != nil {
		return nil, err
	}
	return payload.Response.Players, nil
}

// GetAppDetails fetches storefront detail for one application. This endpoint
// needs no API key but is rate-limited, so successful responses are cached.
// Returns nil without error when the store has no data for the app.
func (c *StoreClient) GetAppDetails(ctx context.Context, appID int64) (*model.StoreAppDetails, error) {
	key := fmt.Sprintf("appdetails:%d:%s:%s", appID, c.cfg.DefaultCountry, c.cfg.DefaultLanguage)

	fetch := func() ([]byte, error) {
		q := url.Values{}
		q.Set("appids", strconv.FormatInt(appID, 10))
		q.Set("cc", c.cfg.DefaultCountry)
		q.Set("l", c.cfg.DefaultLanguage)

		var payload map[string]struct {
			Success bool            `json:"success"`
			Data    json.RawMessage `json:"data"`
		}
		u := c.cfg.StoreBaseURL + "/api/appdetails?" + q.Encode()
		if err := c.get(ctx, u, "GetAppDetails", &payload); err != nil {
			return nil, err
		}

		entry, ok := payload[strconv.FormatInt(appID, 10)]
		if !ok || !entry.Success {
			// Cached as an explicit null so repeated syncs do not
			// re-hit the store for delisted apps.
			return []byte("null"), nil
		}
		return entry.Data, nil
	}

	var raw []byte
	var err error
	if c.cache != nil {
		raw, err = c.cache.GetOrSet(ctx, key, c.cacheTTL, fetch)
	} else {
		raw, err = fetch()
	}
	if err != nil {
		return nil, err
	}

	var details *model.StoreAppDetails
	if err := json.Unmarshal(raw, &details); err != nil {
		return nil, fmt.Errorf("failed to decode cached app details for %d: %w", appID, err)
	}
	return details, nil
}

// GetAppList fetches the store's full appid-to-name index.
func (c *StoreClient) GetAppList(ctx context.Context) (map[int64]string, error) {
	var payload struct {
		AppList struct {
			Apps []struct {
				AppID int64  `json:"appid"`
				Name  string `json:"name"`
			} `json:"apps"`
		} `json:"applist"`
	}
	u := c.cfg.BaseURL + "/ISteamApps/GetAppList/v2/?format=json"
	if err := c.get(ctx, u, "GetAppList", &payload); err != nil {
		return nil, err
	}

	out := make(map[int64]string, len(payload.AppList.Apps))
	for _, app := range payload.AppList.Apps {
		out[app.AppID] = app.Name
	}
	return out, nil
}
