package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/blazesportsintel/forecast/internal/config"
	"github.com/blazesportsintel/forecast/internal/metrics"
	"github.com/blazesportsintel/forecast/internal/models"
)

// GameStateProvider returns live game state and realized outcomes.
type GameStateProvider interface {
	FetchGameState(ctx context.Context, gameID string) (*models.GameState, error)
	FetchOutcome(ctx context.Context, gameID string) (*models.GameOutcome, error)
}

// TeamDataProvider returns team/season metadata used to seed simulations.
type TeamDataProvider interface {
	FetchTeamRecords(ctx context.Context, league string) ([]*models.TeamRecord, error)
	FetchRoster(ctx context.Context, sport, team string) ([]string, error)
}

// Client talks to the upstream sports data provider. Slow-moving responses
// (standings, rosters, static metadata) are memoized in-process with TTLs
// sized to their volatility; live game state is never memoized here.
type Client struct {
	http   *RateLimitedHTTPClient
	cfg    *config.ProvidersConfig
	memo   *gocache.Cache
	logger *logrus.Logger
}

// NewClient creates a provider client.
func NewClient(cfg *config.ProvidersConfig, logger *logrus.Logger) *Client {
	httpCfg := DefaultHTTPClientConfig()
	if cfg.TimeoutSeconds > 0 {
		httpCfg.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	httpCfg.MaxRetries = cfg.MaxRetries
	if cfg.RateLimit > 0 {
		httpCfg.RateLimit = cfg.RateLimit
	}

	return &Client{
		http:   NewRateLimitedHTTPClient(httpCfg, logger),
		cfg:    cfg,
		memo:   gocache.New(config.TTLStandings, 10*config.TTLStandings),
		logger: logger,
	}
}

// Close releases the underlying HTTP client.
func (c *Client) Close() error {
	return c.http.Close()
}

// FetchGameState pulls the current live state for a game.
func (c *Client) FetchGameState(ctx context.Context, gameID string) (*models.GameState, error) {
	endpoint := fmt.Sprintf("%s/games/%s/state", c.cfg.GameStateURL, url.PathEscape(gameID))

	state := &models.GameState{}
	if err := c.getJSON(ctx, "game_state", endpoint, state); err != nil {
		return nil, err
	}
	return state, nil
}

// FetchOutcome pulls the realized result of a finished game.
func (c *Client) FetchOutcome(ctx context.Context, gameID string) (*models.GameOutcome, error) {
	endpoint := fmt.Sprintf("%s/games/%s/outcome", c.cfg.GameStateURL, url.PathEscape(gameID))

	outcome := &models.GameOutcome{}
	if err := c.getJSON(ctx, "game_state", endpoint, outcome); err != nil {
		return nil, err
	}
	return outcome, nil
}

// FetchTeamRecords pulls current standings for a league, memoized at the
// standings TTL.
func (c *Client) FetchTeamRecords(ctx context.Context, league string) ([]*models.TeamRecord, error) {
	memoKey := "standings:" + league
	if cached, found := c.memo.Get(memoKey); found {
		return cached.([]*models.TeamRecord), nil
	}

	endpoint := fmt.Sprintf("%s/leagues/%s/standings", c.cfg.TeamDataURL, url.PathEscape(league))
	var records []*models.TeamRecord
	if err := c.getJSON(ctx, "team_data", endpoint, &records); err != nil {
		return nil, err
	}

	c.memo.Set(memoKey, records, config.TTLStandings)
	return records, nil
}

// FetchRoster pulls a team roster, memoized at the roster TTL.
func (c *Client) FetchRoster(ctx context.Context, sport, team string) ([]string, error) {
	memoKey := "roster:" + sport + ":" + team
	if cached, found := c.memo.Get(memoKey); found {
		return cached.([]string), nil
	}

	endpoint := fmt.Sprintf("%s/sports/%s/teams/%s/roster", c.cfg.TeamDataURL, url.PathEscape(sport), url.PathEscape(team))
	var roster []string
	if err := c.getJSON(ctx, "team_data", endpoint, &roster); err != nil {
		return nil, err
	}

	c.memo.Set(memoKey, roster, config.TTLRosters)
	return roster, nil
}

// FetchLeagueMetadata pulls static league metadata (schedule lengths, team
// lists), memoized for a day.
func (c *Client) FetchLeagueMetadata(ctx context.Context, league string) (map[string]interface{}, error) {
	memoKey := "metadata:" + league
	if cached, found := c.memo.Get(memoKey); found {
		return cached.(map[string]interface{}), nil
	}

	endpoint := fmt.Sprintf("%s/leagues/%s/metadata", c.cfg.TeamDataURL, url.PathEscape(league))
	metadata := map[string]interface{}{}
	if err := c.getJSON(ctx, "team_data", endpoint, &metadata); err != nil {
		return nil, err
	}

	c.memo.Set(memoKey, metadata, config.TTLStaticMetadata)
	return metadata, nil
}

func (c *Client) getJSON(ctx context.Context, providerLabel, endpoint string, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", models.ErrUpstreamUnavailable, err)
	}
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		metrics.ProviderFailuresTotal.WithLabelValues(providerLabel).Inc()
		return fmt.Errorf("%w: %v", models.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", models.ErrNotFound, endpoint)
	case resp.StatusCode != http.StatusOK:
		metrics.ProviderFailuresTotal.WithLabelValues(providerLabel).Inc()
		return fmt.Errorf("%w: status %d from %s", models.ErrUpstreamUnavailable, resp.StatusCode, endpoint)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		metrics.ProviderFailuresTotal.WithLabelValues(providerLabel).Inc()
		return fmt.Errorf("%w: decode response: %v", models.ErrUpstreamUnavailable, err)
	}
	return nil
}
