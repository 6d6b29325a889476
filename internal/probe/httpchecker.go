package probe

import (
	"context"
	"io"
	"net/http"
	"time"
)

const DefaultTimeout = 10 * time.Second

// HTTPChecker issues one GET per check. A response only counts as
// available when the status is exactly 200.
type HTTPChecker struct {
	Client  *http.Client
	Timeout time.Duration
}

func NewHTTPChecker(timeout time.Duration) *HTTPChecker {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPChecker{
		Client:  &http.Client{Timeout: timeout},
		Timeout: timeout,
	}
}

func (h *HTTPChecker) Check(ctx context.Context, target string) Availability {
	if h.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return Availability{Err: err}
	}

	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return Availability{Err: err}
	}
	elapsed := time.Since(start) // headers received
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	return Availability{
		OK:         resp.StatusCode == http.StatusOK,
		StatusCode: resp.StatusCode,
		Elapsed:    &elapsed,
	}
}
