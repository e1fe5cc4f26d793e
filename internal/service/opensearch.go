package service

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"immosearch/internal/config"
	"immosearch/internal/model"
)

// OpenSearchClient executes compiled query plans against the listing index.
// Unlike the model adapter this client does not degrade: a failed search
// makes a meaningful response impossible, so errors propagate.
type OpenSearchClient struct {
	config     *config.OpenSearchConfig
	httpClient *http.Client
}

// NewOpenSearchClient creates a new search engine client
func NewOpenSearchClient(cfg *config.OpenSearchConfig) *OpenSearchClient {
	transport := &http.Transport{}
	if !cfg.VerifySSL {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	return &OpenSearchClient{
		config: cfg,
		httpClient: &http.Client{
			Timeout:   time.Duration(cfg.Timeout) * time.Second,
			Transport: transport,
		},
	}
}

// Search runs one query plan against the configured index pattern.
func (c *OpenSearchClient) Search(ctx context.Context, plan *model.QueryPlan) (*model.EngineResponse, error) {
	reqBody, err := json.Marshal(plan)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query plan: %w", err)
	}

	url := fmt.Sprintf("%s/%s/_search", c.config.URL, c.config.Index)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.SetBasicAuth(c.config.User, c.config.Password)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search engine returned status %d: %s", resp.StatusCode, truncateBody(body))
	}

	var result model.EngineResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return &result, nil
}

func truncateBody(body []byte) string {
	if len(body) > 200 {
		return string(body[:200])
	}
	return string(body)
}
