// Package broker is an HTTP client for the market data and order provider
package broker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultBaseURL = "https://api.dhan.co/v2"
	defaultTimeout = 10 * time.Second
)

// ErrNotConfigured is returned by every method of a nil client, so callers
// without credentials degrade instead of panicking
var ErrNotConfigured = errors.New("broker client not configured")

// Client talks to the provider REST API
type Client struct {
	baseURL     string
	clientID    string
	accessToken string
	httpClient  *http.Client
}

// New creates a new broker client
func New(clientID, accessToken string) *Client {
	return NewWithBaseURL(clientID, accessToken, defaultBaseURL)
}

// NewWithBaseURL creates a new broker client against a specific base URL
func NewWithBaseURL(clientID, accessToken, baseURL string) *Client {
	return &Client{
		baseURL:     baseURL,
		clientID:    clientID,
		accessToken: accessToken,
		httpClient:  &http.Client{Timeout: defaultTimeout},
	}
}

// doJSON performs a request with JSON request and response bodies
func (c *Client) doJSON(ctx context.Context, method, path string, body, out interface{}) error {
	if c == nil {
		return ErrNotConfigured
	}

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %v", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("access-token", c.accessToken)
	req.Header.Set("client-id", c.clientID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("%s %s returned %d: %s", method, path, resp.StatusCode, string(respBody))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode response of %s %s: %v", method, path, err)
	}
	return nil
}
