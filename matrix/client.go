// Package matrix provides travel-estimate providers for the planning
// engine: an HTTP client for the external routing service, a redis
// cache decorator and a deterministic haversine fallback.
package matrix

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Oslicek/Sazinka-sub005/planning"
)

const (
	// distance matrix (many-to-many)
	tableURL = "/ws/matrix/v1/table/"

	defaultHTTPTimeout = 10 * time.Second
)

// Client talks to the external routing engine's table endpoint. The
// service is a black box; only distances and durations come back.
type Client struct {
	baseURL    string
	key        string
	httpClient *http.Client
}

// NewClient creates a routing matrix client.
func NewClient(baseURL, key string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		key:     key,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// ==================== API response shapes ====================

type apiResponse struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

type tableAPIResult struct {
	Rows []struct {
		Elements []struct {
			Distance int `json:"distance"` // meters
			Duration int `json:"duration"` // seconds
		} `json:"elements"`
	} `json:"rows"`
}

// Matrix queries the table endpoint for all origin/destination pairs.
func (c *Client) Matrix(ctx context.Context, origins, destinations []planning.Location) ([][]planning.Leg, error) {
	if len(origins) == 0 || len(destinations) == 0 {
		return nil, fmt.Errorf("matrix: origins and destinations must be non-empty")
	}

	params := url.Values{}
	params.Set("from", joinLocations(origins))
	params.Set("to", joinLocations(destinations))
	params.Set("key", c.key)

	reqURL := c.baseURL + tableURL + "?" + params.Encode()

	body, err := c.doRequest(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	var result tableAPIResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("unmarshal result: %w", err)
	}

	if len(result.Rows) != len(origins) {
		return nil, fmt.Errorf("matrix: got %d rows for %d origins", len(result.Rows), len(origins))
	}

	legs := make([][]planning.Leg, len(result.Rows))
	for i, row := range result.Rows {
		if len(row.Elements) != len(destinations) {
			return nil, fmt.Errorf("matrix: row %d has %d elements for %d destinations", i, len(row.Elements), len(destinations))
		}
		legs[i] = make([]planning.Leg, len(row.Elements))
		for j, elem := range row.Elements {
			legs[i][j] = planning.Leg{
				DistanceKm:  float64(elem.Distance) / 1000,
				DurationMin: float64(elem.Duration) / 60,
			}
		}
	}

	return legs, nil
}

func joinLocations(locs []planning.Location) string {
	parts := make([]string, len(locs))
	for i, loc := range locs {
		parts[i] = loc.String()
	}
	return strings.Join(parts, ";")
}

func (c *Client) doRequest(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var apiResp apiResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	if apiResp.Status != 0 {
		return nil, fmt.Errorf("API error: %s (status=%d)", apiResp.Message, apiResp.Status)
	}

	return apiResp.Result, nil
}

// ensure the interface is implemented
var _ planning.MatrixProvider = (*Client)(nil)
