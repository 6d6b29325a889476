package probe

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
	"net/url"
	"strings"
	"time"
)

const DefaultTLSPort = "443"

// TLSChecker opens its own TCP connection to the target host, completes a
// verified handshake and reports how long the leaf certificate stays valid.
type TLSChecker struct {
	Timeout time.Duration
	Port    string
	RootCAs *x509.CertPool // nil uses the system trust store
	Now     func() time.Time
}

func NewTLSChecker(timeout time.Duration) *TLSChecker {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &TLSChecker{
		Timeout: timeout,
		Port:    DefaultTLSPort,
		Now:     time.Now,
	}
}

func (c *TLSChecker) Check(ctx context.Context, target string) Certificate {
	host := Hostname(target)
	if host == "" {
		return Certificate{Err: errors.New("no hostname in " + target)}
	}

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	port := c.Port
	if port == "" {
		port = DefaultTLSPort
	}

	d := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: c.Timeout},
		Config: &tls.Config{
			ServerName: host,
			RootCAs:    c.RootCAs,
			MinVersion: tls.VersionTLS12,
		},
	}
	conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(host, port))
	if err != nil {
		return Certificate{Err: err}
	}
	defer conn.Close()

	tc, ok := conn.(*tls.Conn)
	if !ok {
		return Certificate{Err: errors.New("unexpected connection type")}
	}
	certs := tc.ConnectionState().PeerCertificates
	if len(certs) == 0 {
		return Certificate{Err: errors.New("no peer certificate presented by " + host)}
	}

	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	notAfter := certs[0].NotAfter.UTC()
	days := DaysUntil(now().UTC(), notAfter)
	return Certificate{
		OK:            days > 0,
		DaysRemaining: &days,
		NotAfter:      notAfter,
	}
}

// DaysUntil returns the whole days from now until t, truncated toward zero.
func DaysUntil(now, t time.Time) int {
	return int(t.Sub(now) / (24 * time.Hour))
}

// Hostname returns the host part of a URL without port. Inputs that do not
// parse as URLs fall back to the text between "//" and the next "/".
func Hostname(raw string) string {
	u, err := url.Parse(raw)
	if err == nil && u.Hostname() != "" {
		return u.Hostname()
	}
	s := raw
	if i := strings.LastIndex(s, "//"); i >= 0 {
		s = s[i+2:]
	}
	if i := strings.Index(s, "/"); i >= 0 {
		s = s[:i]
	}
	if h, _, err := net.SplitHostPort(s); err == nil {
		return h
	}
	return s
}
