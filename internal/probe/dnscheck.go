package probe

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"
)

type DNSClass string

const (
	DNSResolves    DNSClass = "RESOLVES"
	DNSNXDomain    DNSClass = "NXDOMAIN"
	DNSNoARecord   DNSClass = "NO_A_RECORD"
	DNSServFail    DNSClass = "SERVFAIL_or_TIMEOUT"
	DNSInvalidName DNSClass = "INVALID_NAME"
)

const defaultDNSLimit = 3 * time.Second

// DNSStatus describes how a host resolved. It only feeds diagnostics.
type DNSStatus struct {
	Host          string
	IPs           []net.IP
	CNAME         string
	Nameservers   []string
	Class         DNSClass
	ResolverError string
}

// DNSChecker classifies host resolution after a failed availability check
// so logs can tell a dead domain from a dead server.
type DNSChecker struct {
	Resolver *net.Resolver
	Timeout  time.Duration
}

func NewDNSChecker() *DNSChecker {
	return &DNSChecker{Resolver: net.DefaultResolver, Timeout: defaultDNSLimit}
}

func (d *DNSChecker) Check(ctx context.Context, target string) DNSStatus {
	s := DNSStatus{Host: strings.TrimSpace(Hostname(target))}
	if s.Host == "" || strings.Contains(s.Host, "://") {
		s.Class = DNSInvalidName
		return s
	}

	if d.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}
	r := d.Resolver
	if r == nil {
		r = net.DefaultResolver
	}

	ips, err := r.LookupIP(ctx, "ip", s.Host)
	if err == nil && len(ips) > 0 {
		s.IPs = ips
		s.Class = DNSResolves
		return s
	}
	if err != nil {
		s.ResolverError = err.Error()
	}

	if cname, cerr := r.LookupCNAME(ctx, s.Host); cerr == nil && !strings.EqualFold(cname, s.Host+".") {
		s.CNAME = strings.TrimSuffix(cname, ".")
	}
	if ns, nerr := r.LookupNS(ctx, s.Host); nerr == nil {
		for _, n := range ns {
			s.Nameservers = append(s.Nameservers, strings.TrimSuffix(n.Host, "."))
		}
	}
	s.Class = classifyDNS(err, len(ips) > 0, len(s.Nameservers) > 0)
	return s
}

// classifyDNS maps the address lookup outcome to a class. A zone with name
// servers but no addresses is NO_A_RECORD; resolver failures other than
// "not found" are SERVFAIL_or_TIMEOUT regardless of NS.
func classifyDNS(lookupErr error, hasAddrs, hasNS bool) DNSClass {
	if lookupErr == nil && hasAddrs {
		return DNSResolves
	}
	if lookupErr != nil {
		var de *net.DNSError
		if !errors.As(lookupErr, &de) || !de.IsNotFound {
			return DNSServFail
		}
	}
	if hasNS {
		return DNSNoARecord
	}
	return DNSNXDomain
}
