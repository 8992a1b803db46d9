// Package client calls the remote SN search API: result search, autocomplete and the
// generative chat answer for a site.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/snfront/internal/models"
	"github.com/hyperjump/snfront/internal/query"
)

const (
	defaultTimeout   = 15 * time.Second
	defaultUserAgent = "snfront"
	maxErrorBody     = 512

	// HeaderRequestID carries the correlation id to the search API.
	HeaderRequestID = "X-Request-ID"
)

// ErrUpstream is matched by every error that comes from the search API itself (bad status or
// undecodable body), as opposed to transport errors.
var ErrUpstream = errors.New("search api error")

// StatusError is returned for a non-2xx response.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: server returned %d: %s", e.Op, e.StatusCode, e.Body)
}

// Is makes errors.Is(err, ErrUpstream) true.
func (e *StatusError) Is(target error) bool {
	return target == ErrUpstream
}

type decodeError struct {
	op  string
	err error
}

func (e *decodeError) Error() string        { return fmt.Sprintf("decode %s response: %v", e.op, e.err) }
func (e *decodeError) Unwrap() error        { return e.err }
func (e *decodeError) Is(target error) bool { return target == ErrUpstream }

// Client talks to one search API base URL. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
	logger     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithLogger sets a logger for request tracing.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a client for the API at baseURL (scheme and host, optionally a path prefix).
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		userAgent:  defaultUserAgent,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Search runs the primary result search.
func (c *Client) Search(ctx context.Context, site string, state models.QueryState) (*models.SearchResult, error) {
	var res models.SearchResult
	if err := c.get(ctx, "search", site, query.Build(state), &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// AutoComplete returns query suggestions. Callers only ask for queries longer than two
// characters; the client itself does not enforce that.
func (c *Client) AutoComplete(ctx context.Context, site string, state models.QueryState) ([]string, error) {
	var out []string
	if err := c.get(ctx, "ac", site, query.Build(state), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Chat requests the generative answer for q. Callers skip the match-all query.
func (c *Client) Chat(ctx context.Context, site, q, locale string) (*models.ChatAnswer, error) {
	var out models.ChatAnswer
	if err := c.get(ctx, "chat", site, query.BuildChat(q, locale), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Endpoint returns the URL for op on site with the given raw query.
func (c *Client) Endpoint(op, site, rawQuery string) string {
	u := c.baseURL + "/sn/" + url.PathEscape(site) + "/" + op
	if rawQuery != "" {
		u += "?" + rawQuery
	}
	return u
}

func (c *Client) get(ctx context.Context, op, site, rawQuery string, out interface{}) error {
	endpoint := c.Endpoint(op, site, rawQuery)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	reqID := RequestIDFromContext(ctx)
	if reqID == "" {
		reqID = uuid.NewString()
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(HeaderRequestID, reqID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: request failed: %w", op, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("search api call",
		zap.String("op", op),
		zap.String("site", site),
		zap.String("request_id", reqID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Op: op, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &decodeError{op: op, err: err}
	}
	return nil
}
