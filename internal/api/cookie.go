package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

// ErrCookieNotSet is returned when the priming round trip completed but the
// cookie was not stored, i.e. cross-domain cookies are not honoured.
var ErrCookieNotSet = errors.New("primed cookie not set")

const (
	primeCookieName  = "primed"
	primeCookieValue = "true"
)

// PrimeCookie asks the init service to set a test cookie and checks that the
// jar kept it. It makes a single attempt bounded by the client timeout.
func (c *Client) PrimeCookie(ctx context.Context) error {
	base := c.endpoints.Init
	params := url.Values{}
	params.Set("name", primeCookieName)
	params.Set("value", primeCookieValue)
	reqURL := withQuery(base+"primed/s", params)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("unexpected status: %s", resp.Status)
	}

	if !c.HasPrimedCookie() {
		return ErrCookieNotSet
	}
	return nil
}

// HasPrimedCookie reports whether the jar holds the primed cookie for the
// init service.
func (c *Client) HasPrimedCookie() bool {
	u, err := url.Parse(c.endpoints.Init)
	if err != nil || c.httpClient.Jar == nil {
		return false
	}
	for _, ck := range c.httpClient.Jar.Cookies(u) {
		if ck.Name == primeCookieName && ck.Value == primeCookieValue {
			return true
		}
	}
	return false
}
