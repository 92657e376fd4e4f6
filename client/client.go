// Package client is a Go client for the shortlink HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 10 * time.Second

// ErrNoLocation is returned by Redirect when the server answers 302 without
// a Location header.
var ErrNoLocation = errors.New("shortlink: redirect location header not found")

// Link is a stored short link.
type Link struct {
	Code      string `json:"code"`
	URL       string `json:"url"`
	CreatedAt int64  `json:"created_at,omitempty"`
}

// ResponseError is returned for any non-2xx response.
type ResponseError struct {
	StatusCode int
	Code       string `json:"error"`
	Message    string `json:"message"`
}

func (e *ResponseError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.Code != "" {
		return fmt.Sprintf("shortlink: %d %s: %s", e.StatusCode, e.Code, msg)
	}
	return fmt.Sprintf("shortlink: %d: %s", e.StatusCode, msg)
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	var re *ResponseError
	return errors.As(err, &re) && re.StatusCode == http.StatusNotFound
}

// Client talks to one shortlink server.
type Client struct {
	baseURL *url.URL
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Redirects are never
// followed regardless of its CheckRedirect.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		clone := *hc
		c.http = &clone
	}
}

// New returns a client for the server at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q: scheme and host required", baseURL)
	}

	c := &Client{
		baseURL: u,
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.http.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return c, nil
}

// CreateLink shortens rawURL. Shortening the same URL twice yields the same code.
func (c *Client) CreateLink(ctx context.Context, rawURL string) (Link, error) {
	body, err := json.Marshal(map[string]string{"url": rawURL})
	if err != nil {
		return Link{}, err
	}

	var link Link
	if err := c.do(ctx, http.MethodPost, "/api/create", bytes.NewReader(body), nil, &link); err != nil {
		return Link{}, err
	}
	return link, nil
}

// GetLinkInfo returns the stored link for code.
func (c *Client) GetLinkInfo(ctx context.Context, code string) (Link, error) {
	var link Link
	if err := c.do(ctx, http.MethodGet, "/api/info/"+url.PathEscape(code), nil, nil, &link); err != nil {
		return Link{}, err
	}
	return link, nil
}

// Redirect resolves code and returns the redirect target without following it.
func (c *Client) Redirect(ctx context.Context, code string) (string, error) {
	resp, err := c.send(ctx, http.MethodGet, "/"+url.PathEscape(code), nil, nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusFound {
		return "", responseError(resp)
	}
	location := resp.Header.Get("Location")
	if location == "" {
		return "", ErrNoLocation
	}
	return location, nil
}

// DeleteLink removes code using the server's bearer token.
func (c *Client) DeleteLink(ctx context.Context, code, token string) error {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)
	return c.do(ctx, http.MethodDelete, "/"+url.PathEscape(code), nil, header, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, header http.Header, out any) error {
	resp, err := c.send(ctx, method, path, body, header)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return responseError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, body io.Reader, header http.Header) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, body)
	if err != nil {
		return nil, err
	}
	for k, v := range header {
		req.Header[k] = v
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

func responseError(resp *http.Response) error {
	re := &ResponseError{StatusCode: resp.StatusCode}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	_ = json.Unmarshal(data, re)
	return re
}
