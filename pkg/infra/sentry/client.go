package sentry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/bonniernews/sentry-sync/pkg/domain/interfaces"
	"github.com/bonniernews/sentry-sync/pkg/domain/types"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// DefaultTimeout bounds every single request, response body included
const DefaultTimeout = 8 * time.Second

// errorBodyLimit caps how much of a failed response is kept for diagnostics
const errorBodyLimit = 4096

// config holds internal client configuration
type config struct {
	httpClient *http.Client
	timeout    time.Duration
	userAgent  string
}

// Option is a functional option for Client configuration
type Option func(*config)

// WithTimeout overrides the per request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// WithHTTPClient sets the underlying HTTP client. Its Timeout and
// CheckRedirect are replaced by the client's own settings.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *config) {
		c.httpClient = hc
	}
}

// WithUserAgent overrides the client identifier header
func WithUserAgent(ua string) Option {
	return func(c *config) {
		c.userAgent = ua
	}
}

// Client is the HTTP transport of the release API
type Client struct {
	httpClient *http.Client
	userAgent  string
}

var _ interfaces.Transport = (*Client)(nil)

// NewClient creates a new release API transport
func NewClient(opts ...Option) *Client {
	cfg := &config{
		timeout:   DefaultTimeout,
		userAgent: types.UserAgent(),
	}

	for _, opt := range opts {
		opt(cfg)
	}

	httpClient := &http.Client{}
	if cfg.httpClient != nil {
		copied := *cfg.httpClient
		httpClient = &copied
	}
	httpClient.Timeout = cfg.timeout
	// Redirects are reported to the caller as failures
	httpClient.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	return &Client{
		httpClient: httpClient,
		userAgent:  cfg.userAgent,
	}
}

// Post sends body to url. A *Form is sent as multipart/form-data, anything
// else is encoded as JSON. Any status outside [200, 300) fails with
// *types.RequestError. On success the JSON response is decoded into out
// unless out is nil.
func (c *Client) Post(ctx context.Context, url string, body any, out any, opts interfaces.PostOptions) error {
	logger := ctxlog.From(ctx)

	reader, contentType, err := encodeBody(body)
	if err != nil {
		return goerr.Wrap(err, "failed to encode request body", goerr.V("url", url))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, reader)
	if err != nil {
		return goerr.Wrap(err, "failed to create request", goerr.V("url", url))
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if opts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+opts.Token)
	}
	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &types.RequestError{
			URL:     url,
			Timeout: isTimeout(err),
			Err: goerr.Wrap(err, "failed to send request",
				goerr.V("url", url),
				goerr.T(types.ErrTagRequest),
			),
		}
	}
	defer resp.Body.Close()

	logger.Debug("Release API responded",
		"url", url,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return &types.RequestError{
			URL:        url,
			StatusCode: resp.StatusCode,
			Err: goerr.New("unexpected status code",
				goerr.V("url", url),
				goerr.V("status", resp.StatusCode),
				goerr.V("location", resp.Header.Get("Location")),
				goerr.V("body", string(respBody)),
				goerr.T(types.ErrTagRequest),
			),
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &types.RequestError{
			URL:        url,
			StatusCode: resp.StatusCode,
			Timeout:    isTimeout(err),
			Err: goerr.Wrap(err, "failed to read response body",
				goerr.V("url", url),
				goerr.T(types.ErrTagRequest),
			),
		}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return goerr.Wrap(err, "failed to decode response body",
			goerr.V("url", url),
			goerr.V("status", resp.StatusCode),
		)
	}

	return nil
}

func encodeBody(body any) (io.Reader, string, error) {
	switch v := body.(type) {
	case *Form:
		return v.Reader(), v.ContentType(), nil
	case nil:
		return http.NoBody, "application/json", nil
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(raw), "application/json", nil
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
