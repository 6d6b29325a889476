package probe

import (
	"context"
	"time"
)

// Availability holds the outcome of a single HTTP GET.
// Elapsed is nil when no response was received.
type Availability struct {
	OK         bool
	StatusCode int
	Elapsed    *time.Duration
	Err        error
}

// Certificate holds the outcome of a single TLS certificate probe.
// DaysRemaining is nil when the handshake or certificate lookup failed.
type Certificate struct {
	OK            bool
	DaysRemaining *int
	NotAfter      time.Time
	Err           error
}

// AvailabilityChecker is implemented by anything that can probe a URL over HTTP.
type AvailabilityChecker interface {
	Check(ctx context.Context, target string) Availability
}

// CertificateChecker is implemented by anything that can inspect a URL's TLS certificate.
type CertificateChecker interface {
	Check(ctx context.Context, target string) Certificate
}
