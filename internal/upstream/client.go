// Package upstream is the shared HTTP layer for every remote boundary:
// retries, a per-call deadline, a circuit breaker and the response cache.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/bilgisen/cyberpress/internal/cache"
)

const maxErrorBody = 200

type Options struct {
	Name       string
	BaseURL    string
	Timeout    time.Duration
	RetryCount int
	RetryWait  time.Duration
	Headers    map[string]string
	Cache      cache.Cache
	CacheTTL   time.Duration
	Logger     zerolog.Logger

	// Breaker tuning. Zero values select the defaults below.
	BreakerMinRequests uint32
	BreakerRatio       float64
	BreakerCooldown    time.Duration
}

type Client struct {
	name    string
	http    *resty.Client
	breaker *gobreaker.CircuitBreaker
	timeout time.Duration
	cache   cache.Cache
	ttl     time.Duration
	log     zerolog.Logger
}

func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.RetryWait <= 0 {
		opts.RetryWait = 500 * time.Millisecond
	}
	if opts.BreakerMinRequests == 0 {
		opts.BreakerMinRequests = 5
	}
	if opts.BreakerRatio == 0 {
		opts.BreakerRatio = 0.6
	}
	if opts.BreakerCooldown == 0 {
		opts.BreakerCooldown = 30 * time.Second
	}

	log := opts.Logger.With().Str("boundary", opts.Name).Logger()

	httpClient := resty.New().
		SetBaseURL(opts.BaseURL).
		SetTimeout(opts.Timeout).
		SetRetryCount(opts.RetryCount).
		SetRetryWaitTime(opts.RetryWait).
		SetRetryMaxWaitTime(4 * opts.RetryWait).
		SetHeaders(opts.Headers).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if r == nil {
				return false
			}
			return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= 500
		})

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        opts.Name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     opts.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < opts.BreakerMinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= opts.BreakerRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state changed")
		},
	})

	return &Client{
		name:    opts.Name,
		http:    httpClient,
		breaker: breaker,
		timeout: opts.Timeout,
		cache:   opts.Cache,
		ttl:     opts.CacheTTL,
		log:     log,
	}
}

// Name is the boundary name used in errors, logs and cache keys.
func (c *Client) Name() string {
	return c.name
}

// GetJSON decodes the JSON body of GET path into out.
func (c *Client) GetJSON(ctx context.Context, path string, query map[string]string, out any) error {
	resp, err := c.do(ctx, func(r *resty.Request) (*resty.Response, error) {
		return r.SetQueryParams(query).SetHeader("Accept", "application/json").Get(path)
	})
	if err != nil {
		return err
	}
	return c.decode(resp, out)
}

// PostJSON sends body as JSON and decodes the JSON reply into out.
func (c *Client) PostJSON(ctx context.Context, path string, body, out any) error {
	resp, err := c.do(ctx, func(r *resty.Request) (*resty.Response, error) {
		return r.SetHeader("Content-Type", "application/json").SetBody(body).Post(path)
	})
	if err != nil {
		return err
	}
	return c.decode(resp, out)
}

// GetRaw returns the body of GET url. Absolute URLs bypass the base URL.
func (c *Client) GetRaw(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.do(ctx, func(r *resty.Request) (*resty.Response, error) {
		return r.Get(url)
	})
	if err != nil {
		return nil, err
	}
	return resp.Body(), nil
}

// Guard runs fn, a call made through another SDK, under the deadline and
// circuit breaker of the boundary. Errors that are not already *Error are
// wrapped as transport failures.
func (c *Client) Guard(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	_, err := c.breaker.Execute(func() (any, error) {
		err := fn(ctx)
		if err == nil {
			return nil, nil
		}
		var ue *Error
		if errors.As(err, &ue) {
			return nil, err
		}
		return nil, &Error{Boundary: c.name, Message: err.Error(), Err: err}
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = &Error{Boundary: c.name, Message: "circuit open", Err: err}
		}
		c.log.Error().Err(err).Msg("Boundary call failed")
	}
	return err
}

// Cached serves fn through the client's response cache under key.
func Cached[T any](ctx context.Context, c *Client, key string, fn func(context.Context) (T, error)) (T, error) {
	return cache.Remember(ctx, c.cache, c.name+":"+key, c.ttl, fn)
}

// do runs one request under the per-call deadline and the circuit breaker.
// Transport failures and non-2xx replies come back as *Error.
func (c *Client) do(ctx context.Context, send func(*resty.Request) (*resty.Response, error)) (*resty.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	out, err := c.breaker.Execute(func() (any, error) {
		resp, err := send(c.http.R().SetContext(ctx))
		if err != nil {
			return nil, &Error{Boundary: c.name, Message: err.Error(), Err: err}
		}
		if resp.IsError() {
			return nil, &Error{Boundary: c.name, Status: resp.StatusCode(), Message: truncate(resp.String())}
		}
		return resp, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = &Error{Boundary: c.name, Message: "circuit open", Err: err}
		}
		c.log.Error().Err(err).Dur("duration", time.Since(start)).Msg("Boundary call failed")
		return nil, err
	}

	resp := out.(*resty.Response)
	c.log.Debug().
		Str("url", resp.Request.URL).
		Int("status", resp.StatusCode()).
		Dur("duration", time.Since(start)).
		Msg("Boundary call")
	return resp, nil
}

func (c *Client) decode(resp *resty.Response, out any) error {
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return &Error{Boundary: c.name, Status: resp.StatusCode(), Message: "invalid JSON response", Err: err}
	}
	return nil
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) <= maxErrorBody {
		return s
	}
	return string(r[:maxErrorBody]) + "..."
}
