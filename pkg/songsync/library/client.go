package library

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tendant/simple-song-sync/pkg/songsync"
)

// SongPath is the library endpoint for storage driven song updates.
const SongPath = "/api/os/s3/song"

// Config options for the library client
type Config struct {
	BaseURL   string        // Library base URL, e.g. https://koel.example.com
	AppKey    string        // Shared application key sent as appKey
	Timeout   time.Duration // Request timeout (default: 30s)
	UserAgent string        // Optional User-Agent header
}

// Client sends song upserts and removals to the library.
type Client struct {
	httpClient *http.Client
	endpoint   string
	appKey     string
	userAgent  string
}

// New creates a library client. A nil httpClient gets a pooled client with
// the configured timeout.
func New(config Config, httpClient *http.Client) (*Client, error) {
	if config.AppKey == "" {
		return nil, errors.New("app key is required")
	}
	base, err := url.Parse(config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid library URL: %w", err)
	}
	if (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, fmt.Errorf("invalid library URL %q: scheme and host are required", config.BaseURL)
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if httpClient == nil {
		httpClient = NewHTTPClient(config.Timeout)
	}

	return &Client{
		httpClient: httpClient,
		endpoint:   strings.TrimRight(config.BaseURL, "/") + SongPath,
		appKey:     config.AppKey,
		userAgent:  config.UserAgent,
	}, nil
}

// NewHTTPClient returns an http.Client with bounded dial and TLS timeouts.
func NewHTTPClient(timeout time.Duration) *http.Client {
	tr := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 60 * time.Second}).DialContext,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &http.Client{Timeout: timeout, Transport: tr}
}

// Endpoint returns the song endpoint URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Upsert POSTs the song and its tags.
func (c *Client) Upsert(ctx context.Context, req songsync.LibraryRequest) error {
	form, err := UpsertForm(c.appKey, req)
	if err != nil {
		return err
	}
	return c.send(ctx, http.MethodPost, form)
}

// Remove DELETEs the song.
func (c *Client) Remove(ctx context.Context, req songsync.LibraryRequest) error {
	return c.send(ctx, http.MethodDelete, RemoveForm(c.appKey, req))
}

func (c *Client) send(ctx context.Context, method string, form url.Values) error {
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if id := songsync.InvocationID(ctx); id != "" {
		req.Header.Set("X-Request-Id", id)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &songsync.TransportError{Method: method, URL: c.endpoint, Err: err}
	}
	defer resp.Body.Close()
	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &songsync.TransportError{Method: method, URL: c.endpoint, StatusCode: resp.StatusCode}
	}
	return nil
}
