// internal/agents/verifier/search.go
package verifier

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	commonerrors "scam-analyzer/internal/common/errors"
	"scam-analyzer/internal/common/config"
)

// SearchResult is one hit from the public-web reputation search.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"link"`
	Snippet string `json:"snippet"`
}

// SearchClient queries the public web for a subject's reputation footprint.
type SearchClient interface {
	Search(ctx context.Context, query string) ([]SearchResult, error)
}

// HTTPSearchClient talks to a Custom Search-style JSON API.
type HTTPSearchClient struct {
	config config.VerifierConfig
	client *http.Client
}

func NewHTTPSearchClient(cfg config.VerifierConfig) *HTTPSearchClient {
	return &HTTPSearchClient{
		config: cfg,
		client: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Millisecond,
		},
	}
}

func (c *HTTPSearchClient) Search(ctx context.Context, query string) ([]SearchResult, error) {
	endpoint, err := c.buildSearchURL(query)
	if err != nil {
		return nil, commonerrors.NewReputationUnavailableError(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, commonerrors.NewReputationUnavailableError(err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded ||
			strings.Contains(err.Error(), "timeout") ||
			strings.Contains(err.Error(), "deadline") ||
			strings.Contains(err.Error(), "Client.Timeout") {
			return nil, commonerrors.NewReputationLookupTimeoutError()
		}
		return nil, commonerrors.NewReputationUnavailableError(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, commonerrors.NewReputationQuotaExceededError(resp.Status)
	case resp.StatusCode != http.StatusOK:
		return nil, commonerrors.NewReputationUnavailableError(
			fmt.Errorf("search API returned %d", resp.StatusCode))
	}

	var apiResponse struct {
		Items []SearchResult `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return nil, commonerrors.NewReputationUnavailableError(err)
	}
	return apiResponse.Items, nil
}

func (c *HTTPSearchClient) buildSearchURL(query string) (string, error) {
	baseURL, err := url.Parse(c.config.SearchURL)
	if err != nil {
		return "", fmt.Errorf("invalid search URL %q: %w", c.config.SearchURL, err)
	}
	params := url.Values{}
	params.Add("key", c.config.SearchAPIKey)
	params.Add("q", query)
	params.Add("num", fmt.Sprintf("%d", c.config.MaxResults))
	baseURL.RawQuery = params.Encode()
	return baseURL.String(), nil
}
