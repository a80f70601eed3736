// Package platform talks to the ad platform's reporting and control
// endpoints: it fetches hourly performance windows and pushes margin
// updates. Both endpoints are optional; an unset URL switches that side
// of the client into mock mode so the optimizer loop can run before
// platform access is provisioned.
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/OrtalNisim/PX-OMS/internal/models"
)

// defaultTimeout bounds platform calls when no timeout is configured
const defaultTimeout = 10 * time.Second

// Client is the HTTP client for the platform reporting and margin APIs
type Client struct {
	httpClient *http.Client
	metricsURL string
	updateURL  string
	apiKey     string
	logger     zerolog.Logger
}

// ClientConfig holds platform client configuration
type ClientConfig struct {
	MetricsURL string        // e.g., "https://api.example.com/metrics"; empty serves mock windows
	UpdateURL  string        // e.g., "https://api.example.com/margin"; empty makes updates a logged no-op
	APIKey     string        // sent as a bearer token when set
	Timeout    time.Duration // per-request timeout
}

// NewClient creates a new platform client
func NewClient(config ClientConfig, logger zerolog.Logger) *Client {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		metricsURL: config.MetricsURL,
		updateURL:  config.UpdateURL,
		apiKey:     config.APIKey,
		logger:     logger.With().Str("component", "platform_client").Logger(),
	}
}

// FetchHourlyWindow retrieves the latest hourly performance window for
// the optimized arm. Fields the platform omits decode as zero; a
// non-numeric value in a numeric field is surfaced as an error.
func (c *Client) FetchHourlyWindow(ctx context.Context) (*models.PerformanceWindow, error) {
	if c.metricsURL == "" {
		c.logger.Debug().Msg("metrics url not configured, serving mock window")
		w := mockWindow()
		return &w, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.metricsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build metrics request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch hourly metrics: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("metrics endpoint returned status %d", resp.StatusCode)
	}

	var window models.PerformanceWindow
	if err := json.NewDecoder(resp.Body).Decode(&window); err != nil {
		return nil, fmt.Errorf("failed to decode hourly metrics: %w", err)
	}

	c.logger.Debug().
		Float64("margin", window.Margin).
		Float64("impressions", window.Impressions).
		Float64("revenue", window.Revenue).
		Msg("fetched hourly window")

	return &window, nil
}

// ApplyMargin pushes the proposed margin (percent) to the platform.
// The caller decides whether to retry on failure.
func (c *Client) ApplyMargin(ctx context.Context, margin float64) error {
	if c.updateURL == "" {
		c.logger.Info().
			Float64("margin", margin).
			Msg("update url not configured, margin update skipped")
		return nil
	}

	body, err := json.Marshal(map[string]float64{"margin": margin})
	if err != nil {
		return fmt.Errorf("failed to marshal margin update: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.updateURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build margin update request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to update margin: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("margin update returned status %d", resp.StatusCode)
	}

	c.logger.Info().
		Float64("margin", margin).
		Msg("margin update applied")

	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

// mockWindow mirrors the canned reporting payload used in tests and
// before platform access exists
func mockWindow() models.PerformanceWindow {
	return models.PerformanceWindow{
		Margin:      35,
		Impressions: 55000,
		Revenue:     25.0,
		Cost:        16.0,
		BidRate:     1.5,
		Responses:   28000,
	}
}
