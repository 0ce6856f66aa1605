package climate

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/spacefarm/agrorisk/internal/observability"
)

// DefaultBaseURL is the NASA POWER daily point endpoint.
const DefaultBaseURL = "https://power.larc.nasa.gov/api/temporal/daily/point"

const dateLayout = "20060102"

// Client fetches daily precipitation series from the NASA POWER API. The
// underlying http.Client is created lazily, shared for the client's lifetime,
// and safe for concurrent requests.
type Client struct {
	baseURL   string
	parameter string
	community string
	timeout   time.Duration
	logger    *slog.Logger
	metrics   *observability.Metrics

	mu         sync.Mutex
	httpClient *http.Client
}

func NewClient(baseURL, parameter, community string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:   baseURL,
		parameter: parameter,
		community: community,
		timeout:   timeout,
		logger:    logger,
		metrics:   metrics,
	}
}

func (c *Client) client() *http.Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}
	return c.httpClient
}

// Close releases the shared connection resource. The client remains usable; a
// later call recreates it.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.httpClient != nil {
		c.httpClient.CloseIdleConnections()
		c.httpClient = nil
	}
}

// powerResponse mirrors the nesting of the POWER API payload down to the
// per-parameter date series.
type powerResponse struct {
	Properties struct {
		Parameter map[string]map[string]*float64 `json:"parameter"`
	} `json:"properties"`
}

// DailyPrecip returns the date -> mm/day series for the coordinate and
// inclusive date range. Dates with null values are dropped, not zeroed.
// Transport, status, and decode failures are returned to the caller so it can
// distinguish "no precipitation recorded" from "fetch failed".
func (c *Client) DailyPrecip(ctx context.Context, latitude, longitude float64, start, end time.Time) (map[string]float64, error) {
	params := url.Values{
		"parameters": {c.parameter},
		"community":  {c.community},
		"latitude":   {fmt.Sprintf("%.4f", latitude)},
		"longitude":  {fmt.Sprintf("%.4f", longitude)},
		"start":      {start.Format(dateLayout)},
		"end":        {end.Format(dateLayout)},
		"format":     {"JSON"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	startedAt := time.Now()
	resp, err := c.client().Do(req)
	if err != nil {
		c.observe("error", startedAt)
		return nil, fmt.Errorf("power request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.observe("error", startedAt)
		return nil, fmt.Errorf("unexpected status code: %d - status: %s", resp.StatusCode, resp.Status)
	}

	var data powerResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		c.observe("error", startedAt)
		return nil, fmt.Errorf("decode response: %w", err)
	}

	raw := data.Properties.Parameter[c.parameter]
	series := make(map[string]float64, len(raw))
	for date, v := range raw {
		if v == nil {
			continue
		}
		series[date] = *v
	}

	if len(series) == 0 {
		c.observe("empty", startedAt)
	} else {
		c.observe("success", startedAt)
	}
	return series, nil
}

// PrecipSumMM sums the daily series over the range, absorbing any fetch
// failure as a zero sum so a flaky upstream degrades a cycle instead of
// aborting it.
func (c *Client) PrecipSumMM(ctx context.Context, latitude, longitude float64, start, end time.Time) float64 {
	series, err := c.DailyPrecip(ctx, latitude, longitude, start, end)
	if err != nil {
		c.logger.Error("precipitation fetch failed, assuming 0mm",
			"latitude", latitude, "longitude", longitude, "error", err)
		return 0
	}

	var sum float64
	for _, v := range series {
		sum += v
	}
	return sum
}

func (c *Client) observe(outcome string, startedAt time.Time) {
	if c.metrics == nil {
		return
	}
	c.metrics.FetchRequests.WithLabelValues(outcome).Inc()
	c.metrics.FetchDuration.Observe(time.Since(startedAt).Seconds())
}
