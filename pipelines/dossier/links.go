package dossier

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/sync/errgroup"
)

const maxLinkChecks = 8

// LinkStatus is the verification outcome of one URL
type LinkStatus struct {
	URL   string
	Valid bool
}

// LinkChecker verifies that URLs resolve. 200, 301 and 302 count as valid.
type LinkChecker struct {
	Client   *http.Client
	MaxTries uint
}

func NewLinkChecker() *LinkChecker {
	return &LinkChecker{
		Client:   &http.Client{Timeout: 10 * time.Second},
		MaxTries: 2,
	}
}

func validStatus(code int) bool {
	return code == http.StatusOK || code == http.StatusMovedPermanently || code == http.StatusFound
}

// Validate issues a HEAD request. Server errors and timeouts are retried.
func (c *LinkChecker) Validate(ctx context.Context, url string) bool {
	if url == "" || url == "Not found" || url == "Not available" {
		return false
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return false
	}

	operation := func() (bool, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
		if err != nil {
			return false, backoff.Permanent(err)
		}
		resp, err := c.Client.Do(req)
		if err != nil {
			return false, err
		}
		resp.Body.Close()

		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return false, fmt.Errorf("status %d", resp.StatusCode)
		}
		return validStatus(resp.StatusCode), nil
	}

	tries := c.MaxTries
	if tries == 0 {
		tries = 1
	}
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 200 * time.Millisecond
	bo.MaxInterval = 2 * time.Second

	ok, err := backoff.Retry(ctx, operation, backoff.WithBackOff(bo), backoff.WithMaxTries(tries), backoff.WithMaxElapsedTime(20*time.Second))
	return err == nil && ok
}

// CheckAll validates urls concurrently; the result keeps input order
func (c *LinkChecker) CheckAll(ctx context.Context, urls []string) []LinkStatus {
	out := make([]LinkStatus, len(urls))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxLinkChecks)
	for i, u := range urls {
		g.Go(func() error {
			ok := c.Validate(gctx, u)
			mu.Lock()
			out[i] = LinkStatus{URL: u, Valid: ok}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return out
}
