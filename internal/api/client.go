// Package api provides a client for the Radioplayer widget endpoints:
// the init/cookie service, the station list and the search service.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"
)

// ErrNotFound is returned when an endpoint has nothing for the request.
var ErrNotFound = errors.New("not found")

const (
	userAgent      = "rpconsole/1.0 (https://github.com/llehouerou/rpconsole)"
	defaultTimeout = 10 * time.Second
	maxBodySize    = 1 << 20
)

// Endpoints holds the base URLs of the widget services.
type Endpoints struct {
	Init        string // cookie/init service, must end with a slash
	StationList string
	OnDemand    string
	OnAir       string
}

// DefaultEndpoints returns the production service URLs.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Init:        "http://cookie.radioplayer.de/cm/",
		StationList: "http://static.radioplayer.de/v1/json/StationList.js",
		OnDemand:    "http://search.radioplayer.de/qp/v3/oditem",
		OnAir:       "http://search.radioplayer.de/qp/v3/onair",
	}
}

// Client talks to the widget endpoints. Cookies set by any endpoint are kept
// in the client's jar for later requests.
type Client struct {
	httpClient *http.Client
	endpoints  Endpoints
}

// New creates a client. A zero timeout uses the default.
func New(endpoints Endpoints, timeout time.Duration) (*Client, error) {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	if endpoints.Init != "" && !strings.HasSuffix(endpoints.Init, "/") {
		endpoints.Init += "/"
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout, Jar: jar},
		endpoints:  endpoints,
	}, nil
}

// Endpoints returns the configured endpoints.
func (c *Client) Endpoints() Endpoints {
	return c.endpoints
}

// getJSON fetches reqURL and decodes its (optionally JSONP-wrapped) body.
func (c *Client) getJSON(ctx context.Context, reqURL string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json, application/javascript")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if err := json.Unmarshal(unwrapJSONP(body), v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// unwrapJSONP strips a "callback(...);" wrapper if present. Plain JSON is
// returned unchanged.
func unwrapJSONP(body []byte) []byte {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] == '{' || trimmed[0] == '[' {
		return trimmed
	}
	open := bytes.IndexByte(trimmed, '(')
	end := bytes.LastIndexByte(trimmed, ')')
	if open < 0 || end <= open {
		return trimmed
	}
	return bytes.TrimSpace(trimmed[open+1 : end])
}

func withQuery(base string, params url.Values) string {
	if len(params) == 0 {
		return base
	}
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + params.Encode()
}
