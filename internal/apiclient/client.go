// Package apiclient is the typed HTTP client of the news backend REST API.
package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/bilgisen/khobor/internal/config"
	"github.com/bilgisen/khobor/internal/logger"
	"github.com/bilgisen/khobor/internal/metrics"
)

// Options configures a Client.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	RetryCount int

	BreakerFailRatio   float64
	BreakerMinRequests uint32
	BreakerTimeout     time.Duration
}

// OptionsFromConfig returns the options for server-side calls.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		BaseURL:            cfg.InternalAPIURL,
		Timeout:            cfg.APITimeout,
		RetryCount:         cfg.APIRetryCount,
		BreakerFailRatio:   cfg.BreakerFailRatio,
		BreakerMinRequests: cfg.BreakerMinReqs,
		BreakerTimeout:     cfg.BreakerTimeout,
	}
}

// Client talks to the backend. It is safe for concurrent use.
type Client struct {
	http    *resty.Client
	breaker *gobreaker.CircuitBreaker
	log     zerolog.Logger
}

func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.BreakerFailRatio <= 0 {
		opts.BreakerFailRatio = 0.6
	}
	if opts.BreakerTimeout <= 0 {
		opts.BreakerTimeout = 30 * time.Second
	}

	log := logger.Component("apiclient")

	httpClient := resty.New().
		SetBaseURL(opts.BaseURL).
		SetTimeout(opts.Timeout).
		SetHeader("Accept", "application/json").
		SetRetryCount(opts.RetryCount).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		AddRetryCondition(retryReads)

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "news-backend",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     opts.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < opts.BreakerMinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= opts.BreakerFailRatio
		},
		// Client errors are the caller's fault, not the backend's.
		IsSuccessful: func(err error) bool {
			s := StatusOf(err)
			return err == nil || (s >= 400 && s < 500)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("circuit", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	})

	return &Client{
		http:    httpClient,
		breaker: breaker,
		log:     log,
	}
}

// retryReads retries GET requests that failed in transport or with a 5xx.
// Mutations are never retried.
func retryReads(resp *resty.Response, err error) bool {
	if resp == nil || resp.Request == nil || resp.Request.Method != http.MethodGet {
		return false
	}
	return err != nil || resp.StatusCode() >= http.StatusInternalServerError
}

// call describes one backend request.
type call struct {
	method   string
	endpoint string // route template, e.g. /news/{slug}
	token    string
	prepare  func(r *resty.Request)
	out      any
}

func (c *Client) do(ctx context.Context, cl call) error {
	start := time.Now()

	_, err := c.breaker.Execute(func() (interface{}, error) {
		r := c.http.R().SetContext(ctx)
		if cl.token != "" {
			r.SetAuthToken(cl.token)
		}
		if cl.prepare != nil {
			cl.prepare(r)
		}

		resp, err := r.Execute(cl.method, cl.endpoint)
		if err != nil {
			return nil, &Error{Message: err.Error(), Err: err}
		}
		if resp.IsError() {
			return nil, &Error{
				Status:  resp.StatusCode(),
				Message: messageFromBody(resp.Body(), resp.StatusCode()),
			}
		}
		if cl.out != nil && len(resp.Body()) > 0 {
			if err := json.Unmarshal(resp.Body(), cl.out); err != nil {
				return nil, &Error{
					Status:  resp.StatusCode(),
					Message: "malformed response body",
					Err:     err,
				}
			}
		}
		return nil, nil
	})

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		err = &Error{Message: "backend temporarily unavailable", Err: err}
	}

	status := "ok"
	if err != nil {
		status = strconv.Itoa(StatusOf(err))
		c.log.Debug().
			Err(err).
			Str("method", cl.method).
			Str("endpoint", cl.endpoint).
			Dur("latency", time.Since(start)).
			Msg("backend call failed")
	}
	metrics.BackendRequestDuration.
		WithLabelValues(cl.method, cl.endpoint, status).
		Observe(time.Since(start).Seconds())

	if err != nil {
		return fmt.Errorf("%s %s: %w", cl.method, cl.endpoint, err)
	}
	return nil
}
