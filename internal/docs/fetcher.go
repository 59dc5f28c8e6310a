package docs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/docside/docside/internal/log"
	"github.com/docside/docside/internal/security"
)

// ErrUnavailable marks a page that could not be retrieved: network failure,
// non-2xx status, or timeout. Per-page and non-fatal; the caller skips the
// page and continues with the rest of the batch.
var ErrUnavailable = errors.New("page unavailable")

const (
	// maxResponseSize bounds how much of a response body is read (10MB).
	maxResponseSize = 10 * 1024 * 1024

	userAgent = "Mozilla/5.0 (compatible; DocsideBot/1.0)"
)

// Fetcher retrieves raw HTML for documentation pages.
// One attempt per page with a fixed timeout budget; no retries.
// Requests are paced by a shared rate limiter so concurrent loads
// don't hammer a docs host.
type Fetcher struct {
	client  *http.Client
	guard   *security.URL
	limiter *rate.Limiter
	logger  log.Logger
}

// NewFetcher creates a Fetcher.
// timeout is the per-request budget; delay is the minimum spacing between
// requests (0 disables pacing). guard, when non-nil, blocks URLs and
// resolved addresses that target private networks.
func NewFetcher(timeout, delay time.Duration, guard *security.URL, logger log.Logger) *Fetcher {
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}

	client := &http.Client{Timeout: timeout}
	if guard != nil {
		client.Transport = guard.SafeTransport()
		client.CheckRedirect = guard.ValidateRedirect
	}

	return &Fetcher{
		client:  client,
		guard:   guard,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
	}
}

// Fetch retrieves the raw markup of one page.
// All failure modes collapse into ErrUnavailable (wrapped with detail);
// the distinction doesn't matter to the caller, only that the page
// contributed nothing this run.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if f.guard != nil {
		if err := f.guard.Validate(url); err != nil {
			return "", fmt.Errorf("%w: %s: %v", ErrUnavailable, url, err)
		}
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrUnavailable, url, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrUnavailable, url, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrUnavailable, url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: %s: status %d", ErrUnavailable, url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrUnavailable, url, err)
	}

	f.logger.Debug("fetched page", "url", url, "bytes", len(body))
	return string(body), nil
}
