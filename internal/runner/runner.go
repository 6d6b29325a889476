package runner

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hamed0406/sitecheck/internal/domain"
	"github.com/hamed0406/sitecheck/internal/probe"
)

const DefaultResponseThreshold = 5 * time.Second

// DNSDiagnoser is consulted after an availability error. Its answer is only logged.
type DNSDiagnoser interface {
	Check(ctx context.Context, target string) probe.DNSStatus
}

// Sink receives every finished pass.
type Sink func(ctx context.Context, run domain.Run)

type Runner struct {
	Logger            *zap.Logger
	Availability      probe.AvailabilityChecker
	Certificates      probe.CertificateChecker
	DNS               DNSDiagnoser
	ResponseThreshold time.Duration
	Concurrency       int
	Now               func() time.Time
}

func NewRunner(
	logger *zap.Logger,
	avail probe.AvailabilityChecker,
	certs probe.CertificateChecker,
	threshold time.Duration,
	concurrency int,
) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if threshold <= 0 {
		threshold = DefaultResponseThreshold
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &Runner{
		Logger:            logger,
		Availability:      avail,
		Certificates:      certs,
		ResponseThreshold: threshold,
		Concurrency:       concurrency,
		Now:               time.Now,
	}
}

// Run does one pass when interval is zero. Otherwise it does an immediate
// pass and then one per tick until ctx is cancelled. In interval mode a pass
// cut short by cancellation is dropped instead of handed to sink.
func (r *Runner) Run(ctx context.Context, urls []string, interval time.Duration, sink Sink) {
	if interval <= 0 {
		sink(ctx, r.RunOnce(ctx, urls))
		return
	}

	t := time.NewTicker(interval)
	defer t.Stop()

	pass := func() {
		if ctx.Err() != nil {
			return
		}
		run := r.RunOnce(ctx, urls)
		if ctx.Err() != nil {
			r.Logger.Info("run_dropped", zap.String("reason", "cancelled during pass"))
			return
		}
		sink(ctx, run)
	}

	pass()
	for {
		select {
		case <-ctx.Done():
			r.Logger.Info("runner_stopped")
			return
		case <-t.C:
			pass()
		}
	}
}

// RunOnce checks every URL and returns the results in input order. With
// Concurrency > 1 several URLs are checked at once; each URL still runs its
// availability check before its certificate check.
func (r *Runner) RunOnce(ctx context.Context, urls []string) domain.Run {
	run := domain.Run{
		StartedAt: r.now(),
		Results:   make([]domain.CheckResult, len(urls)),
	}

	var g errgroup.Group
	g.SetLimit(r.Concurrency)
	for i, u := range urls {
		i, u := i, u
		g.Go(func() error {
			run.Results[i] = r.checkURL(ctx, u)
			return nil
		})
	}
	_ = g.Wait()

	run.FinishedAt = r.now()
	r.Logger.Info("run_done",
		zap.Int("targets", len(urls)),
		zap.Duration("took", run.FinishedAt.Sub(run.StartedAt)),
	)
	return run
}

func (r *Runner) checkURL(ctx context.Context, url string) domain.CheckResult {
	res := domain.CheckResult{URL: url, CheckedAt: r.now()}

	a := r.Availability.Check(ctx, url)
	res.HTTPStatus = a.StatusCode
	if a.Err != nil {
		// response time has no measurement of its own when the request failed
		res.AvailabilityErr = errText(a.Err)
		res.ResponseTimeErr = res.AvailabilityErr
		r.diagnoseDNS(ctx, url)
	} else {
		res.AvailabilityOK = a.OK
		if a.Elapsed != nil {
			ms := float64(*a.Elapsed) / float64(time.Millisecond)
			res.LatencyMS = &ms
			res.ResponseTimeOK = *a.Elapsed < r.ResponseThreshold
		}
	}

	c := r.Certificates.Check(ctx, url)
	if c.Err != nil {
		res.SSLErr = errText(c.Err)
	} else {
		res.SSLOK = c.OK
		res.DaysRemaining = c.DaysRemaining
	}

	fields := []zap.Field{
		zap.String("url", url),
		zap.Bool("available", res.AvailabilityOK),
		zap.Int("status", res.HTTPStatus),
		zap.Bool("response_ok", res.ResponseTimeOK),
		zap.Bool("ssl_ok", res.SSLOK),
	}
	if res.LatencyMS != nil {
		fields = append(fields, zap.Float64("latency_ms", *res.LatencyMS))
	}
	if res.DaysRemaining != nil {
		fields = append(fields, zap.Int("days_remaining", *res.DaysRemaining))
	}
	if res.AvailabilityErr != "" {
		fields = append(fields, zap.String("availability_error", res.AvailabilityErr))
	}
	if res.SSLErr != "" {
		fields = append(fields, zap.String("ssl_error", res.SSLErr))
	}
	r.Logger.Info("check_done", fields...)

	return res
}

func (r *Runner) diagnoseDNS(ctx context.Context, url string) {
	if r.DNS == nil {
		return
	}
	dns := r.DNS.Check(ctx, url)
	r.Logger.Info("dns_check",
		zap.String("url", url),
		zap.String("host", dns.Host),
		zap.String("class", string(dns.Class)),
		zap.Strings("nameservers", dns.Nameservers),
		zap.String("cname", dns.CNAME),
		zap.String("resolver_error", dns.ResolverError),
	)
}

func (r *Runner) now() time.Time {
	if r.Now == nil {
		return time.Now().UTC()
	}
	return r.Now().UTC()
}

// errText never returns "" so an error always lands in EXCEPTION.
func errText(err error) string {
	if s := err.Error(); s != "" {
		return s
	}
	return fmt.Sprintf("%T", err)
}
