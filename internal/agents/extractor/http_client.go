// internal/agents/extractor/http_client.go
package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"scam-analyzer/internal/common/config"
	commonerrors "scam-analyzer/internal/common/errors"
)

// HTTPReasoningClient talks to a hosted reasoning endpoint. The endpoint is
// expected to return the extracted entities as a JSON object; validation
// against the entity schema happens in the extractor, not here.
type HTTPReasoningClient struct {
	endpoint string
	apiKey   string
	model    string
	client   *http.Client
}

func NewHTTPReasoningClient(cfg config.ExtractorConfig) *HTTPReasoningClient {
	return &HTTPReasoningClient{
		endpoint: cfg.LLMEndpoint,
		apiKey:   cfg.LLMAPIKey,
		model:    cfg.LLMModel,
		client: &http.Client{
			Timeout: time.Duration(cfg.LLMTimeout) * time.Millisecond,
		},
	}
}

const extractionPrompt = "Extract the hiring company name, job role, contact emails and URLs from the following message. Respond with a single JSON object with keys companyName, jobRole, emails, urls and nothing else."

func (c *HTTPReasoningClient) ExtractEntities(ctx context.Context, text string) ([]byte, error) {
	requestBody := map[string]interface{}{
		"model":       c.model,
		"prompt":      extractionPrompt,
		"input":       text,
		"temperature": 0,
	}
	body, _ := json.Marshal(requestBody)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, commonerrors.NewExtractionTimeoutError()
		}
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reasoning endpoint returned status %d", resp.StatusCode)
	}

	var apiResponse struct {
		Entities json.RawMessage `json:"entities"`
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &apiResponse); err != nil || len(apiResponse.Entities) == 0 {
		// Some deployments return the entity object directly.
		return raw, nil
	}
	return apiResponse.Entities, nil
}
