// Package chef is the HTTP client for the external AI menu-generation
// service. The service is an opaque collaborator: requests carry the user's
// profile, responses are JSON documents stored and served verbatim.
package chef

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cocinafacil/tcf/internal/domain"
	"github.com/cocinafacil/tcf/internal/infra/metrics"
)

// Client talks to the chef service. Implements domain.ChefService.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the chef service at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second // Menu generation is slow
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// GenerateMenu requests a full weekly menu.
func (c *Client) GenerateMenu(ctx context.Context, req domain.MenuRequest) (json.RawMessage, error) {
	return c.post(ctx, "/menu/generate", req)
}

// SwapMeal requests a replacement for one meal in an existing menu.
func (c *Client) SwapMeal(ctx context.Context, req domain.SwapRequest) (json.RawMessage, error) {
	return c.post(ctx, "/menu/swap", req)
}

// Substitutions requests alternatives for a single ingredient.
func (c *Client) Substitutions(ctx context.Context, req domain.SubstitutionRequest) (json.RawMessage, error) {
	return c.post(ctx, "/substitutions", req)
}

// Ping checks chef service reachability (used by the health checker).
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrChefUnavailable, err)
	}
	resp.Body.Close()
	return nil
}

func (c *Client) post(ctx context.Context, endpoint string, payload any) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.ChefRequestLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ChefRequestErrors.WithLabelValues(endpoint).Inc()
		return nil, fmt.Errorf("%w: %v", domain.ErrChefUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.ChefRequestErrors.WithLabelValues(endpoint).Inc()
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.ChefRequestErrors.WithLabelValues(endpoint).Inc()
		msg := strings.TrimSpace(string(raw))
		if msg == "" {
			msg = resp.Status
		}
		return nil, fmt.Errorf("%w: %s: %s", domain.ErrChefRejected, endpoint, msg)
	}

	if !json.Valid(raw) {
		metrics.ChefRequestErrors.WithLabelValues(endpoint).Inc()
		return nil, fmt.Errorf("%w: %s: invalid JSON response", domain.ErrChefRejected, endpoint)
	}
	return json.RawMessage(raw), nil
}
