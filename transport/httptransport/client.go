// Package httptransport implements the transport contract over a JSON REST
// API: resources at /plural_snake_resource/{id}, collections at
// /plural_snake_owner/{id}/{field}.
package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	ustrings "github.com/restbound/restbound/internal/util/strings"
	"github.com/restbound/restbound/relation"
)

// ErrMissingID is returned when a fetch is attempted for an identity with
// no id to address
var ErrMissingID = errors.New("identity has no id")

// StatusError is a non-2xx response from the API, propagated to the
// resolving caller untouched
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.StatusCode, e.URL)
}

// Client is a REST transport
type Client struct {
	baseURL   string
	http      *http.Client
	logger    *zap.Logger
	auth      AuthProvider
	requestID func() string
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client (timeouts and
// cancellation policy belong there, not to the transport)
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets the request logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithAuth attaches an auth provider applied to every request
func WithAuth(auth AuthProvider) Option {
	return func(c *Client) {
		c.auth = auth
	}
}

// WithRequestID replaces the X-Request-ID generator
func WithRequestID(gen func() string) Option {
	return func(c *Client) {
		if gen != nil {
			c.requestID = gen
		}
	}
}

// New creates a client for the API at baseURL
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{Timeout: 30 * time.Second},
		logger:    zap.NewNop(),
		requestID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchResource implements relation.Transport
func (c *Client) FetchResource(ctx context.Context, resource string, identity relation.Identity) (map[string]any, error) {
	id := identity.ID()
	if id == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingID, resource)
	}

	url := fmt.Sprintf("%s/%s/%v", c.baseURL, resourcePath(resource), id)

	var record map[string]any
	if err := c.getJSON(ctx, url, &record); err != nil {
		return nil, err
	}
	return record, nil
}

// FetchCollection implements relation.Transport. A 404 means the remote
// side has no such collection, which materializes as empty.
func (c *Client) FetchCollection(ctx context.Context, ownerResource string, owner relation.Identity, field string) ([]map[string]any, error) {
	id := owner.ID()
	if id == nil {
		return nil, fmt.Errorf("%w: %s.%s", ErrMissingID, ownerResource, field)
	}

	url := fmt.Sprintf("%s/%s/%v/%s", c.baseURL, resourcePath(ownerResource), id, ustrings.ToSnakeCase(field))

	var records []map[string]any
	err := c.getJSON(ctx, url, &records)
	var statusErr *StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return records, nil
}

// getJSON performs an authenticated GET and decodes the body into out
func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", c.requestID())

	if c.auth != nil {
		if err := c.auth.Apply(req); err != nil {
			return fmt.Errorf("applying auth: %w", err)
		}
	}

	c.logger.Debug("GET", zap.String("url", url))

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return &StatusError{StatusCode: resp.StatusCode, URL: url}
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func resourcePath(resource string) string {
	return ustrings.Pluralize(ustrings.ToSnakeCase(resource))
}

var _ relation.Transport = (*Client)(nil)
