package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"nyc-apartments/utils"
)

// FetchError wraps a failed fetch with the URL that caused it. A FetchError
// is non-fatal at the pipeline level: the provider that hit it contributes
// zero listings for the run.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Options configures the shared client.
type Options struct {
	UserAgent   string
	Proxy       string
	Timeout     time.Duration
	MaxRetries  int // total attempts, counting the first
	BackoffBase time.Duration
	Logger      *utils.Logger
}

// Client is a shared JSON-over-HTTP client with retry and exponential
// backoff. It is safe for concurrent use across providers.
type Client struct {
	http      *retryablehttp.Client
	userAgent string
	logger    *utils.Logger
}

// New builds a Client from the given options. Transport-level errors and
// non-2xx statuses are retried with backoffBase * 2^(attempt-1) delays;
// a malformed body on a successful response is never retried.
func New(opts Options) *Client {
	if opts.MaxRetries < 1 {
		opts.MaxRetries = 1
	}
	if opts.BackoffBase <= 0 {
		opts.BackoffBase = 500 * time.Millisecond
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = opts.MaxRetries - 1
	rc.HTTPClient.Timeout = opts.Timeout
	rc.Logger = nil

	base := opts.BackoffBase
	rc.Backoff = func(min, max time.Duration, attemptNum int, resp *http.Response) time.Duration {
		return base * (1 << attemptNum)
	}

	rc.CheckRetry = func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		if err != nil {
			return true, nil
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return true, nil
		}
		return false, nil
	}

	if opts.Proxy != "" {
		proxyURL, err := url.Parse(opts.Proxy)
		if err != nil {
			if opts.Logger != nil {
				opts.Logger.Warn("[http] Ignoring invalid proxy %q: %v", opts.Proxy, err)
			}
		} else {
			rc.HTTPClient.Transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
		}
	}

	ua := opts.UserAgent
	if ua == "" {
		ua = "nyc-apartments-search/0.1"
	}

	return &Client{http: rc, userAgent: ua, logger: opts.Logger}
}

// FetchJSON performs a GET against rawURL with the given query parameters
// and headers, then decodes the body into target. The request is retried
// per the client policy; after exhausting retries the last error is
// returned as a *FetchError carrying the URL.
func (c *Client) FetchJSON(ctx context.Context, rawURL string, params url.Values, headers map[string]string, target any) error {
	u := rawURL
	if len(params) > 0 {
		u = rawURL + "?" + params.Encode()
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return &FetchError{URL: u, Err: err}
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &FetchError{URL: u, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &FetchError{URL: u, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &FetchError{URL: u, Err: fmt.Errorf("read body: %w", err)}
	}

	// A 200 with a body we cannot decode is surfaced immediately; retrying
	// a malformed-but-successful response will not help.
	if err := json.Unmarshal(body, target); err != nil {
		return &FetchError{URL: u, Err: fmt.Errorf("decode json: %w", err)}
	}

	return nil
}
