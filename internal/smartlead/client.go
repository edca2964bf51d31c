package smartlead

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mixelka/disconnectmon/internal/parser"
)

// ListPath is the email account listing endpoint
const ListPath = "/api/email-account/get-total-email-accounts"

const maxBackoff = 30 * time.Second

// Client is a Smartlead API client for the email account listing
type Client struct {
	baseURL        string
	httpClient     *http.Client
	requestTimeout time.Duration
	probeTimeout   time.Duration
	maxRetries     int
	backoffBase    time.Duration
	pageDelay      time.Duration
	summarizer     *parser.BodySummarizer
	logger         *slog.Logger
	sleep          func(ctx context.Context, d time.Duration) error
}

// Config for Smartlead client
type Config struct {
	BaseURL             string        // e.g., https://server.smartlead.ai
	RequestTimeout      time.Duration // per data page
	ProbeTimeout        time.Duration // per auth probe
	MaxRateLimitRetries int
	BackoffBase         time.Duration
	PageDelay           time.Duration
	HTTPClient          *http.Client // optional
}

// NewClient creates a new Smartlead API client
func NewClient(cfg Config, logger *slog.Logger) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		// Deadlines are applied per request through the context
		httpClient = &http.Client{}
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = 12 * time.Second
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = 1500 * time.Millisecond
	}

	return &Client{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		httpClient:     httpClient,
		requestTimeout: cfg.RequestTimeout,
		probeTimeout:   cfg.ProbeTimeout,
		maxRetries:     cfg.MaxRateLimitRetries,
		backoffBase:    cfg.BackoffBase,
		pageDelay:      cfg.PageDelay,
		summarizer:     parser.NewBodySummarizer(400),
		logger:         logger.With("component", "smartlead"),
		sleep:          sleepContext,
	}
}

// Probe requests the smallest possible page with h and reports whether the
// endpoint accepted it.
func (c *Client) Probe(ctx context.Context, h AuthHeader) error {
	c.logger.Info("probing auth style", "style", h.Scheme)
	_, err := c.get(ctx, h, Filter{}, 0, 1, c.probeTimeout)
	if err != nil {
		c.logger.Warn("auth style rejected", "style", h.Scheme, "error", err)
		return err
	}
	c.logger.Info("auth style works", "style", h.Scheme)
	return nil
}

// NegotiateAuth determines which Authorization encoding the endpoint accepts
func (c *Client) NegotiateAuth(ctx context.Context, credential string) (AuthHeader, error) {
	return Negotiate(ctx, credential, c)
}

// FetchPage fetches a single page of the listing
func (c *Client) FetchPage(ctx context.Context, h AuthHeader, filter Filter, offset, limit int) (*Page, error) {
	return c.get(ctx, h, filter, offset, limit, c.requestTimeout)
}

// get performs one logical page request, retrying the same offset on 429
func (c *Client) get(ctx context.Context, h AuthHeader, filter Filter, offset, limit int, timeout time.Duration) (*Page, error) {
	q := url.Values{}
	q.Set("offset", strconv.Itoa(offset))
	q.Set("limit", strconv.Itoa(limit))
	filter.apply(q)
	endpoint := c.baseURL + ListPath + "?" + q.Encode()

	rateLimited := 0
	for {
		status, header, body, err := c.do(ctx, h, endpoint, timeout)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("request at offset %d: %w", offset, ctx.Err())
			}
			return nil, &APIError{Kind: ErrUpstreamUnavailable, Offset: offset, Message: err.Error()}
		}

		if status == http.StatusTooManyRequests {
			rateLimited++
			if rateLimited > c.maxRetries {
				return nil, &APIError{
					Kind:       ErrRateLimitExhausted,
					StatusCode: status,
					Offset:     offset,
					Message:    fmt.Sprintf("%d consecutive 429 responses", rateLimited),
				}
			}
			wait, ok := parseRetryAfter(header)
			if !ok {
				wait = c.backoff(rateLimited)
			}
			c.logger.Info("rate limited, retrying", "offset", offset, "attempt", rateLimited, "wait", wait)
			if err := c.sleep(ctx, wait); err != nil {
				return nil, fmt.Errorf("waiting out rate limit at offset %d: %w", offset, err)
			}
			continue
		}

		return c.decode(status, body, offset)
	}
}

// do sends a single HTTP request bounded by timeout
func (c *Client) do(ctx context.Context, h AuthHeader, endpoint string, timeout time.Duration) (int, http.Header, []byte, error) {
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	h.Apply(req)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.Debug("upstream response", "status", resp.StatusCode, "duration", time.Since(start), "bytes", len(body))
	return resp.StatusCode, resp.Header, body, nil
}

// decode classifies a non-429 response and parses the envelope
func (c *Client) decode(status int, body []byte, offset int) (*Page, error) {
	fail := func(kind error, msg string) (*Page, error) {
		return nil, &APIError{
			Kind:       kind,
			StatusCode: status,
			Offset:     offset,
			Message:    msg,
			Body:       c.summarizer.Summarize(body),
		}
	}

	var env envelope
	parseErr := json.Unmarshal(body, &env)
	ok := status >= 200 && status < 300
	accepted := ok && parseErr == nil && env.success()

	// Token errors can come with any status, including 200
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fail(ErrAuthRejected, "credential refused")
	case !accepted && signalsAuthFailure(string(body)):
		return fail(ErrAuthRejected, "credential refused")
	case status >= 500 && status <= 599:
		return fail(ErrUpstreamUnavailable, "server error")
	case !ok:
		return fail(ErrMalformedResponse, "unexpected status")
	case parseErr != nil:
		return fail(ErrMalformedResponse, fmt.Sprintf("failed to parse response: %v", parseErr))
	case !env.success():
		msg := env.Message
		if msg == "" {
			msg = "unsuccessful envelope"
		}
		return fail(ErrMalformedResponse, msg)
	}

	page := &Page{}
	if env.Data != nil {
		page.Accounts = env.Data.EmailAccounts
		page.LastSeenID = env.Data.LastSeenID
	}
	return page, nil
}

// backoff returns the exponential delay for the given 1-based attempt
func (c *Client) backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := c.backoffBase
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	if d > maxBackoff {
		d = maxBackoff
	}
	return d
}

// parseRetryAfter reads Retry-After as (fractional) seconds or an HTTP-date
func parseRetryAfter(h http.Header) (time.Duration, bool) {
	v := strings.TrimSpace(h.Get("Retry-After"))
	if v == "" {
		return 0, false
	}
	if secs, err := strconv.ParseFloat(v, 64); err == nil && secs >= 0 && secs < 1e6 {
		return time.Duration(secs * float64(time.Second)), true
	}
	if t, err := http.ParseTime(v); err == nil {
		d := time.Until(t)
		if d < 0 {
			d = 0
		}
		return d, true
	}
	return 0, false
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
