package daemonctl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"stanza/internal/api"
	"stanza/internal/config"
)

const statusTimeout = 2 * time.Second

// Client talks to a running server's HTTP API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient builds a client for the configured bind address.
func NewClient(cfg *config.Config) *Client {
	base := strings.TrimSpace(cfg.Paths.APIBind)
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}
	return &Client{
		baseURL: strings.TrimRight(base, "/"),
		token:   strings.TrimSpace(cfg.Paths.APIToken),
		http:    &http.Client{Timeout: statusTimeout},
	}
}

// Status fetches /api/status.
func (c *Client) Status(ctx context.Context) (*api.StatusResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/status", nil)
	if err != nil {
		return nil, fmt.Errorf("build status request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDaemonNotRunning, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read status response: %w", err)
	}
	var envelope struct {
		OK    bool                `json:"ok"`
		Data  *api.StatusResponse `json:"data"`
		Error string              `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode status response (HTTP %d): %w", resp.StatusCode, err)
	}
	if !envelope.OK || envelope.Data == nil {
		msg := envelope.Error
		if msg == "" {
			msg = resp.Status
		}
		return nil, errors.New("status request failed: " + msg)
	}
	return envelope.Data, nil
}
