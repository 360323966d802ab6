// Package catalog fetches and parses Meteoritical Bulletin result pages.
package catalog

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// FailureKind classifies a page fetch failure for the orchestrator.
type FailureKind string

const (
	KindTimeout FailureKind = "timeout"
	KindHTTP    FailureKind = "http"
	KindNetwork FailureKind = "network"
)

// FetchError is a classified page fetch failure. The client never lets a
// transport problem escape as a panic or an unclassified error; the
// orchestrator decides whether to skip the page or abort the session.
type FetchError struct {
	Kind   FailureKind
	Page   int
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	return "catalog: fetch page " + strconv.Itoa(e.Page) + " (" + string(e.Kind) + "): " + e.Err.Error()
}

func (e *FetchError) Unwrap() error { return e.Err }

// ClientOptions configures the Bulletin client.
type ClientOptions struct {
	BaseURL   string
	UserAgent string
	PageSize  int
	Timeout   time.Duration
	// Delay is the inter-page politeness pause. It is the only
	// backpressure against the Bulletin server; there is no adaptive
	// backoff and no retry of a failed page.
	Delay time.Duration
	// RenderHint is passed through as the pnt query parameter when set.
	// The plain render strips the anchor links the extractor needs, so
	// it stays empty for reconciliation runs.
	RenderHint string
}

// Client issues one bounded request per Bulletin result page.
type Client struct {
	client  *http.Client
	opts    ClientOptions
	limiter *rate.Limiter
}

// NewClient creates a Bulletin client.
//
// Certificate verification is disabled on the transport: the Bulletin host
// serves an incomplete certificate chain and every upstream consumer of this
// origin does the same. The exception is scoped to this client, which only
// ever talks to that one host.
func NewClient(opts ClientOptions) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://www.lpi.usra.edu/meteor/metbull.php"
	}
	if opts.PageSize == 0 {
		opts.PageSize = 500
	}
	if opts.Timeout == 0 {
		opts.Timeout = 45 * time.Second
	}
	if opts.Delay == 0 {
		opts.Delay = time.Second
	}
	if opts.UserAgent == "" {
		// Anonymous requests are rejected by the origin.
		opts.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64)"
	}

	transport := &http.Transport{
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     90 * time.Second,
		TLSClientConfig:     &tls.Config{InsecureSkipVerify: true}, //nolint:gosec // see doc comment
	}

	return &Client{
		client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		opts: opts,
		// One token per delay interval, no burst beyond the first page.
		limiter: rate.NewLimiter(rate.Every(opts.Delay), 1),
	}
}

// pageURL builds the query for a zero-based page index: wildcard name
// search, sorted by year descending so newer records always precede older
// ones. The year-floor stop heuristic depends on that ordering.
func (c *Client) pageURL(page int) (string, error) {
	u, err := url.Parse(c.opts.BaseURL)
	if err != nil {
		return "", eris.Wrapf(err, "catalog: parse base url %s", c.opts.BaseURL)
	}

	q := u.Query()
	q.Set("sea", "*")
	q.Set("sfor", "names")
	q.Set("srt", "year")
	q.Set("dir", "desc")
	q.Set("lrec", strconv.Itoa(c.opts.PageSize))
	q.Set("page", strconv.Itoa(page))
	if c.opts.RenderHint != "" {
		q.Set("pnt", c.opts.RenderHint)
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// FetchPage retrieves the raw body of one result page. It blocks on the
// politeness limiter first, so callers can loop without sleeping. Any
// failure comes back as a *FetchError; it is never raised past the caller.
func (c *Client) FetchPage(ctx context.Context, page int) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", &FetchError{Kind: KindNetwork, Page: page, Err: err}
	}

	pageURL, err := c.pageURL(page)
	if err != nil {
		return "", &FetchError{Kind: KindNetwork, Page: page, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", &FetchError{Kind: KindNetwork, Page: page, Err: err}
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return "", &FetchError{Kind: classify(err), Page: page, Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return "", &FetchError{
			Kind:   KindHTTP,
			Page:   page,
			Status: resp.StatusCode,
			Err:    eris.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &FetchError{Kind: classify(err), Page: page, Err: err}
	}

	zap.L().Debug("catalog: fetched page",
		zap.Int("page", page),
		zap.Int("bytes", len(body)),
		zap.Duration("elapsed", time.Since(start)),
	)

	return string(body), nil
}

// classify maps a transport error onto a FailureKind.
func classify(err error) FailureKind {
	if os.IsTimeout(err) || errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var ne interface{ Timeout() bool }
	if errors.As(err, &ne) && ne.Timeout() {
		return KindTimeout
	}
	return KindNetwork
}
