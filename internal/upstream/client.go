// Package upstream fetches the pre-computed analytics payloads from the
// analytics backend.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/andresuchdata/bookstock-insights/internal/config"
	"github.com/andresuchdata/bookstock-insights/internal/domain"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2/clientcredentials"
)

// StatusError is returned when the backend answers with a non-2xx status.
type StatusError struct {
	Path   string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream %s: status=%d body=%s", e.Path, e.Status, e.Body)
}

type Client struct {
	cfg        config.UpstreamConfig
	httpClient *http.Client
	maxBytes   int64
}

// NewClient builds a client for cfg. When client credentials are configured
// every request carries a bearer token from the token endpoint.
func NewClient(ctx context.Context, cfg config.UpstreamConfig) *Client {
	httpClient := &http.Client{Timeout: cfg.Timeout()}

	if cfg.ClientID != "" && cfg.TokenURL != "" {
		cc := clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
			Scopes:       cfg.Scopes,
		}
		httpClient = cc.Client(ctx)
		httpClient.Timeout = cfg.Timeout()
		log.Info().Str("token_url", cfg.TokenURL).Msg("upstream client using client credentials")
	}

	return NewClientWithHTTP(cfg, httpClient)
}

func NewClientWithHTTP(cfg config.UpstreamConfig, httpClient *http.Client) *Client {
	maxMiB := cfg.MaxResponseSizeMiB
	if maxMiB <= 0 {
		maxMiB = 16
	}
	return &Client{
		cfg:        cfg,
		httpClient: httpClient,
		maxBytes:   int64(maxMiB) << 20,
	}
}

// Name identifies the source in logs and cache keys.
func (c *Client) Name() string {
	return c.cfg.BaseURL
}

func (c *Client) FetchPredictions(ctx context.Context) (domain.PredictionData, error) {
	var out domain.PredictionData
	err := c.getJSON(ctx, c.cfg.PredictionsPath, &out)
	return out, err
}

func (c *Client) FetchSuggestions(ctx context.Context) ([]domain.OrderSuggestion, error) {
	var out []domain.OrderSuggestion
	err := c.getJSON(ctx, c.cfg.SuggestionsPath, &out)
	return out, err
}

func (c *Client) FetchProfitability(ctx context.Context) ([]domain.ProfitabilityItem, error) {
	var out []domain.ProfitabilityItem
	err := c.getJSON(ctx, c.cfg.ProfitabilityPath, &out)
	return out, err
}

func (c *Client) FetchDashboard(ctx context.Context) (domain.DashboardMetrics, error) {
	var out domain.DashboardMetrics
	err := c.getJSON(ctx, c.cfg.DashboardPath, &out)
	return out, err
}

func (c *Client) getJSON(ctx context.Context, path string, dst any) error {
	endpoint := c.cfg.BaseURL + "/" + strings.TrimLeft(path, "/")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Path: path, Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, c.maxBytes)).Decode(dst); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
