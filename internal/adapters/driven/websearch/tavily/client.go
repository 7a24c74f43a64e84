// Package tavily provides a web search adapter using the Tavily API.
package tavily

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/paperlens/paperlens-cli/internal/core/domain"
	"github.com/paperlens/paperlens-cli/internal/core/ports/driven"
)

// Ensure Client implements the interface.
var _ driven.WebSearcher = (*Client)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.tavily.com"
	DefaultTimeout = 30 * time.Second

	// Tavily's free tier allows roughly one request per second
	// sustained; the limiter smooths agent bursts below that.
	requestsPerSecond = 1
	burstSize         = 3
)

// Config holds configuration for the Tavily client.
type Config struct {
	// APIKey is the Tavily API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.tavily.com).
	BaseURL string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration
}

// Client searches the web through the Tavily /search endpoint.
type Client struct {
	client  *http.Client
	baseURL string
	apiKey  string
	limiter *rate.Limiter
}

// searchRequest is the Tavily API request format.
type searchRequest struct {
	Query      string `json:"query"`
	MaxResults int    `json:"max_results,omitempty"`
}

// searchResponse is the Tavily API response format.
type searchResponse struct {
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
}

// NewClient creates a new Tavily web search client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("tavily: API key: %w", domain.ErrMissingCredential)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Client{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burstSize),
	}, nil
}

// Search runs a web search and returns up to maxResults results.
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]driven.WebResult, error) {
	if query == "" {
		return nil, fmt.Errorf("tavily: empty query: %w", domain.ErrInvalidInput)
	}
	if maxResults <= 0 {
		maxResults = 5
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("tavily: rate limit wait: %w", err)
	}

	reqBody := searchRequest{
		Query:      query,
		MaxResults: maxResults,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+"/search",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("tavily error (status %d): failed to read response", resp.StatusCode)
		}
		return nil, fmt.Errorf("tavily error (status %d): %s", resp.StatusCode, string(body))
	}

	var searchResp searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	results := make([]driven.WebResult, 0, len(searchResp.Results))
	for _, r := range searchResp.Results {
		results = append(results, driven.WebResult{
			Title:   r.Title,
			URL:     r.URL,
			Snippet: r.Content,
		})
		if len(results) == maxResults {
			break
		}
	}

	return results, nil
}
