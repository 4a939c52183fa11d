package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Stats mirrors the server's GET /api/stats body.
type Stats struct {
	Version     string `json:"version"`
	Rooms       int    `json:"rooms"`
	Active      int    `json:"active"`
	Hibernating int    `json:"hibernating"`
	Connections int    `json:"connections"`
}

// StatsURL builds the stats endpoint for server. ws and wss URLs are
// mapped to http and https.
func StatsURL(server string) (string, error) {
	u, err := url.Parse(server)
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}
	switch u.Scheme {
	case "http", "https":
	case "ws":
		u.Scheme = "http"
	case "wss":
		u.Scheme = "https"
	default:
		return "", fmt.Errorf("invalid server URL: unsupported scheme %q", u.Scheme)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/api/stats"
	return u.String(), nil
}

// FetchStats asks server for its room and connection counts.
func FetchStats(ctx context.Context, server string) (*Stats, error) {
	target, err := StatsURL(server)
	if err != nil {
		return nil, newError("fetch stats", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, newError("fetch stats", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, newError("fetch stats", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, wrapError("fetch stats", ErrBadRequest, resp.Status)
	}

	var stats Stats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return nil, newError("decode stats", err)
	}
	return &stats, nil
}
