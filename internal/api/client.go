package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/threateye/threateye-cli/internal/errors"
	"github.com/threateye/threateye-cli/internal/log"
)

// Client is the ThreatEye API client
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Token      string

	logger *log.Logger
}

// NewClient creates a new API client
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: log.DefaultLogger().WithGroup("api"),
	}
}

// SetToken sets the bearer token attached to authenticated requests
func (c *Client) SetToken(token string) {
	c.Token = token
}

// doRequest performs an HTTP request with authentication and a request id
// for log correlation.
func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	c.logger.Debug("request", "method", method, "path", path, "request_id", requestID)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		c.logger.Debug("transport failure", "path", path, "request_id", requestID, "cause", err.Error())
		return nil, errors.NewNetworkError(err)
	}

	return resp, nil
}

// decodeBody reads a response body into target, tolerating empty bodies.
func decodeBody(resp *http.Response, target interface{}) error {
	defer resp.Body.Close()

	if target == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(errors.ErrCodeNetBadResponse, "reading response body", err)
	}
	if len(data) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, target); err != nil {
		return errors.Wrap(errors.ErrCodeNetBadResponse, "decoding response body", err)
	}
	return nil
}

// readErrorBody parses a non-2xx body into the generic {error} envelope and
// returns the server's message, or fallback when none is present. Raw bodies
// are never surfaced to the user.
func readErrorBody(resp *http.Response, fallback string) string {
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil || len(data) == 0 {
		return fallback
	}

	var envelope struct {
		Error   string `json:"error"`
		Details string `json:"details"`
	}
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.Error != "" {
		return envelope.Error
	}

	return fallback
}

func isSuccess(resp *http.Response) bool {
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}
