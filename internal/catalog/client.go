package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
)

const (
	// DefaultEndpoint is the public free-to-play games listing.
	DefaultEndpoint = "https://www.freetogame.com/api/games"
	// DefaultProxyPrefix is the CORS relay the endpoint is routed through when the direct call fails.
	DefaultProxyPrefix = "https://corsproxy.io/?"

	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 16 << 20
)

var tracer = otel.Tracer("github.com/hocine1592/offlinesteamweb/internal/catalog")

// Transport names the path a fetch attempt took.
type Transport string

const (
	TransportDirect Transport = "direct"
	TransportProxy  Transport = "proxy"
)

// Attempt records why a single fetch attempt failed.
type Attempt struct {
	Transport Transport
	Err       error
}

// FetchError is returned by Load when the catalog could not be obtained.
type FetchError struct {
	Endpoint string
	Attempts []Attempt
}

func (e *FetchError) Error() string {
	if e == nil {
		return "catalog: fetch failed"
	}
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, fmt.Sprintf("%s: %v", a.Transport, a.Err))
	}
	return fmt.Sprintf("catalog: fetch %s failed (%s)", e.Endpoint, strings.Join(parts, "; "))
}

// Unwrap exposes every attempt error to errors.Is / errors.As.
func (e *FetchError) Unwrap() []error {
	if e == nil {
		return nil
	}
	out := make([]error, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		out = append(out, a.Err)
	}
	return out
}

// StatusError reports a non-success HTTP status from the catalog endpoint.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.Code)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

// ErrMalformed marks a response body that is not a list of games.
var ErrMalformed = errors.New("catalog: malformed response")

// Source loads the full game list.
type Source interface {
	Load(ctx context.Context) ([]Game, error)
}

// Client fetches the game list directly and, once, through a relay.
type Client struct {
	endpoint    string
	proxyPrefix string
	http        *http.Client
	logger      *zap.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client used for both attempts.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithProxyPrefix sets the relay prefix. An empty prefix disables the second attempt.
func WithProxyPrefix(prefix string) Option {
	return func(c *Client) {
		c.proxyPrefix = strings.TrimSpace(prefix)
	}
}

// WithTimeout sets the per-attempt timeout on the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithLogger attaches a logger for attempt-level diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient constructs a Client for endpoint. An empty endpoint uses DefaultEndpoint.
func NewClient(endpoint string, opts ...Option) *Client {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	c := &Client{
		endpoint:    endpoint,
		proxyPrefix: DefaultProxyPrefix,
		http:        &http.Client{Timeout: defaultTimeout},
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the configured catalog URL.
func (c *Client) Endpoint() string { return c.endpoint }

// Load fetches the catalog. A transport failure or non-success status on the
// direct call triggers exactly one attempt through the relay. A body that does
// not decode fails immediately.
func (c *Client) Load(ctx context.Context) ([]Game, error) {
	games, err := c.fetch(ctx, TransportDirect, c.endpoint)
	if err == nil {
		return games, nil
	}
	fetchErr := &FetchError{Endpoint: c.endpoint}
	fetchErr.Attempts = append(fetchErr.Attempts, Attempt{Transport: TransportDirect, Err: err})
	c.logger.Debug("catalog direct fetch failed", zap.String("endpoint", c.endpoint), zap.Error(err))

	if errors.Is(err, ErrMalformed) || c.proxyPrefix == "" || ctx.Err() != nil {
		return nil, fetchErr
	}

	games, err = c.fetch(ctx, TransportProxy, c.proxyPrefix+url.QueryEscape(c.endpoint))
	if err == nil {
		return games, nil
	}
	fetchErr.Attempts = append(fetchErr.Attempts, Attempt{Transport: TransportProxy, Err: err})
	c.logger.Debug("catalog proxy fetch failed", zap.String("proxy", c.proxyPrefix), zap.Error(err))
	return nil, fetchErr
}

func (c *Client) fetch(ctx context.Context, transport Transport, target string) ([]Game, error) {
	ctx, span := tracer.Start(ctx, "catalog.fetch",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("catalog.transport", string(transport))),
	)
	defer span.End()

	games, err := c.do(ctx, target)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "catalog fetch failed")
		return nil, err
	}
	span.SetAttributes(attribute.Int("catalog.games", len(games)))
	span.SetStatus(codes.Ok, "")
	return games, nil
}

func (c *Client) do(ctx context.Context, target string) ([]Game, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Body: drainError(resp.Body)}
	}
	return decodeGames(resp.Body, resp.Header.Get("Content-Type"))
}

func decodeGames(body io.Reader, contentType string) ([]Game, error) {
	r, err := bodyReader(io.LimitReader(body, maxBodyBytes), contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	var raw []Game
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	games := make([]Game, 0, len(raw))
	for _, g := range raw {
		g.Title = strings.TrimSpace(g.Title)
		if g.Title == "" {
			continue
		}
		games = append(games, g)
	}
	if len(games) == 0 {
		return nil, fmt.Errorf("%w: no titled games in response", ErrMalformed)
	}
	return games, nil
}

// bodyReader transcodes bodies that declare a non-UTF-8 charset. Some relays
// rewrite the Content-Type of what they forward.
func bodyReader(body io.Reader, contentType string) (io.Reader, error) {
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return body, nil
	}
	cs := strings.ToLower(strings.TrimSpace(params["charset"]))
	if cs == "" || cs == "utf-8" || cs == "utf8" {
		return body, nil
	}
	return charset.NewReaderLabel(cs, body)
}

func drainError(r io.Reader) string {
	if r == nil {
		return ""
	}
	b, _ := io.ReadAll(io.LimitReader(r, 256))
	return strings.TrimSpace(string(b))
}
