// Package http sends resolved requests over HTTP using resty.
package http

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/artpar/reqtabs/internal/core"
	"github.com/go-resty/resty/v2"
	"golang.org/x/net/publicsuffix"
)

// DefaultTimeout bounds a single request when no timeout is configured.
const DefaultTimeout = 30 * time.Second

// Client sends core requests and converts the replies into core responses.
type Client struct {
	rest   *resty.Client
	config Config
}

// Config holds HTTP client configuration.
type Config struct {
	Timeout         time.Duration
	FollowRedirects bool
	Insecure        bool
}

// Option is a function that configures the Client.
type Option func(*Client)

// NewClient creates a new HTTP client with the given options.
func NewClient(opts ...Option) *Client {
	client := &Client{
		rest: resty.New(),
		config: Config{
			Timeout:         DefaultTimeout,
			FollowRedirects: true,
		},
	}

	for _, opt := range opts {
		opt(client)
	}

	client.rest.SetTimeout(client.config.Timeout)
	if !client.config.FollowRedirects {
		client.rest.SetRedirectPolicy(resty.RedirectPolicyFunc(func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}))
	}
	if client.config.Insecure {
		client.rest.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true}) //nolint:gosec // opt-in via config
	}

	return client
}

// NewCookieJar returns a jar that scopes cookies by public suffix.
func NewCookieJar() http.CookieJar {
	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	return jar
}

// WithConfig applies a full configuration.
func WithConfig(cfg Config) Option {
	return func(c *Client) {
		if cfg.Timeout <= 0 {
			cfg.Timeout = DefaultTimeout
		}
		c.config = cfg
	}
}

// WithTimeout sets the request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.config.Timeout = timeout
	}
}

// WithNoRedirects disables automatic redirect following.
func WithNoRedirects() Option {
	return func(c *Client) {
		c.config.FollowRedirects = false
	}
}

// WithCookieJar shares a cookie jar across requests.
func WithCookieJar(jar http.CookieJar) Option {
	return func(c *Client) {
		c.rest.SetCookieJar(jar)
	}
}

// Config returns the effective configuration.
func (c *Client) Config() Config {
	return c.config
}

// Send executes an HTTP request and returns the response.
func (c *Client) Send(ctx context.Context, req *core.Request) (*core.Response, error) {
	r := c.rest.R().SetContext(ctx)
	for _, key := range req.Headers().Keys() {
		for _, value := range req.Headers().GetAll(key) {
			r.Header.Add(key, value)
		}
	}
	if !req.Body().IsEmpty() {
		r.SetBody(req.Body().Bytes())
	}

	start := time.Now()
	resp, err := r.Execute(req.Method(), req.Endpoint())
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method(), req.Endpoint(), err)
	}
	end := time.Now()

	return fromRestyResponse(req, resp, start, end), nil
}

func fromRestyResponse(req *core.Request, resp *resty.Response, start, end time.Time) *core.Response {
	headers := core.NewHeaders()
	for key, values := range resp.Header() {
		for _, value := range values {
			headers.Add(key, value)
		}
	}

	body := core.NewEmptyBody()
	if raw := resp.Body(); len(raw) > 0 {
		body = core.NewRawBody(raw, resp.Header().Get("Content-Type"))
	}

	return core.NewResponse(req.ID(), core.NewStatus(resp.StatusCode(), resp.Status())).
		WithHeaders(headers).
		WithBody(body).
		WithTiming(core.NewTiming(start, end))
}
