// Package assistant talks to whatever answers the user's questions: the
// recommendation endpoint over HTTP, or an OpenAI model directly.
package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"mumz-advisor/internal/profile"
	"mumz-advisor/internal/types"
)

var ErrMalformedResponse = errors.New("malformed assistant response")

// StatusError is returned for non-2xx answers.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("assistant api returned %d: %s", e.Code, e.Body)
}

// HTTPClient posts {query, user} to {baseURL}/chat.
type HTTPClient struct {
	httpClient *http.Client
	baseURL    string
	breaker    *gobreaker.CircuitBreaker
	log        *zap.Logger
}

type HTTPOption func(*httpOptions)

type httpOptions struct {
	timeout     time.Duration
	base        *http.Client
	credentials *clientcredentials.Config
	breaker     gobreaker.Settings
	log         *zap.Logger
}

func WithTimeout(d time.Duration) HTTPOption {
	return func(o *httpOptions) { o.timeout = d }
}

// WithHTTPClient replaces the underlying client (tests, custom transports).
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(o *httpOptions) { o.base = c }
}

// WithClientCredentials attaches an OAuth2 client-credentials bearer token
// to every call.
func WithClientCredentials(cc *clientcredentials.Config) HTTPOption {
	return func(o *httpOptions) { o.credentials = cc }
}

func WithBreakerSettings(s gobreaker.Settings) HTTPOption {
	return func(o *httpOptions) { o.breaker = s }
}

func WithLogger(l *zap.Logger) HTTPOption {
	return func(o *httpOptions) { o.log = l }
}

// DefaultBreakerSettings trips after five consecutive failures and probes
// again after thirty seconds.
func DefaultBreakerSettings() gobreaker.Settings {
	return gobreaker.Settings{
		Name:        "assistant-api",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			// A caller giving up is not the endpoint's fault.
			return err == nil || errors.Is(err, context.Canceled)
		},
	}
}

func NewHTTPClient(baseURL string, opts ...HTTPOption) *HTTPClient {
	o := httpOptions{timeout: 30 * time.Second, breaker: DefaultBreakerSettings(), log: zap.NewNop()}
	for _, fn := range opts {
		fn(&o)
	}
	base := o.base
	if base == nil {
		base = &http.Client{Timeout: o.timeout}
	}
	hc := base
	if o.credentials != nil {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
		hc = o.credentials.Client(ctx)
		hc.Timeout = base.Timeout
	}
	log := o.log
	settings := o.breaker
	settings.OnStateChange = func(name string, from, to gobreaker.State) {
		log.Warn("circuit breaker state changed", zap.String("name", name), zap.Stringer("from", from), zap.Stringer("to", to))
	}
	return &HTTPClient{
		httpClient: hc,
		baseURL:    strings.TrimRight(baseURL, "/"),
		breaker:    gobreaker.NewCircuitBreaker(settings),
		log:        log,
	}
}

// Ask sends one question. Transport errors, non-2xx statuses, bodies that
// are not JSON and an open breaker all come back as errors; nothing is
// retried.
func (c *HTTPClient) Ask(ctx context.Context, query string, user profile.UserProfile) (*types.ChatResponse, error) {
	res, err := c.breaker.Execute(func() (any, error) {
		var out types.ChatResponse
		if err := c.postJSON(ctx, "/chat", types.ChatRequest{Query: query, User: user}, &out); err != nil {
			return nil, err
		}
		return &out, nil
	})
	if err != nil {
		return nil, err
	}
	return res.(*types.ChatResponse), nil
}

func (c *HTTPClient) postJSON(ctx context.Context, path string, body, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	c.log.Debug("assistant api call",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bb, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(bb))}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}
