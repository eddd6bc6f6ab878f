// Package runner turns a tab's record into an HTTP exchange.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/artpar/reqtabs/internal/core"
	"github.com/artpar/reqtabs/internal/interpolate"
	httpclient "github.com/artpar/reqtabs/internal/protocol/http"
)

// Requester sends a resolved request.
type Requester interface {
	Send(ctx context.Context, req *core.Request) (*core.Response, error)
}

// Runner resolves records against an environment and sends them.
type Runner struct {
	requester Requester
	timeout   time.Duration
	logger    *slog.Logger
}

// Option configures the Runner.
type Option func(*Runner)

// WithRequester replaces the HTTP client.
func WithRequester(requester Requester) Option {
	return func(r *Runner) {
		r.requester = requester
	}
}

// WithTimeout bounds each Execute call; zero disables the extra bound.
func WithTimeout(timeout time.Duration) Option {
	return func(r *Runner) {
		r.timeout = timeout
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// New creates a runner backed by an HTTP client with a shared cookie jar.
func New(opts ...Option) *Runner {
	r := &Runner{
		timeout: httpclient.DefaultTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.requester == nil {
		r.requester = httpclient.NewClient(
			httpclient.WithTimeout(r.timeout),
			httpclient.WithCookieJar(httpclient.NewCookieJar()),
		)
	}
	return r
}

// Execute sends rec, expanding placeholders from env when it is non-nil.
func (r *Runner) Execute(ctx context.Context, rec *core.Record, env *core.Environment) (*core.Response, error) {
	engine := interpolate.NewEngine()
	if env != nil {
		engine.SetVariables(env.ExportAll())
	}

	req, err := rec.ToRequest(engine)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	logger := r.logger.With("record", req.RecordID(), "method", req.Method(), "url", req.Endpoint())
	if env != nil {
		// Secret values never reach the log, only their names.
		logger = logger.With("env", env.Name(), "secrets", env.SecretNames())
	}
	logger.Debug("sending request")

	resp, err := r.requester.Send(ctx, req)
	if err != nil {
		logger.Warn("request failed", "error", err)
		return nil, fmt.Errorf("request failed: %w", err)
	}

	logger.Info("request completed",
		"status", resp.Status().Code(),
		"duration", resp.Timing().Total,
		"size", resp.Body().Size(),
	)
	return resp, nil
}
