package runner

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hamed0406/sitecheck/internal/domain"
	"github.com/hamed0406/sitecheck/internal/probe"
	"github.com/hamed0406/sitecheck/internal/report"
)

// --- fakes ---

type fakeAvail struct {
	mu    sync.Mutex
	out   map[string]probe.Availability
	delay map[string]time.Duration
	calls []string
}

func (f *fakeAvail) Check(ctx context.Context, target string) probe.Availability {
	if d := f.delay[target]; d > 0 {
		time.Sleep(d)
	}
	f.mu.Lock()
	f.calls = append(f.calls, target)
	f.mu.Unlock()
	return f.out[target]
}

type fakeCerts struct {
	out   map[string]probe.Certificate
	order *[]string
	mu    *sync.Mutex
}

func (f *fakeCerts) Check(ctx context.Context, target string) probe.Certificate {
	if f.order != nil {
		f.mu.Lock()
		*f.order = append(*f.order, "cert:"+target)
		f.mu.Unlock()
	}
	return f.out[target]
}

type fakeDNS struct{ n int32 }

func (f *fakeDNS) Check(ctx context.Context, target string) probe.DNSStatus {
	atomic.AddInt32(&f.n, 1)
	return probe.DNSStatus{Host: probe.Hostname(target), Class: probe.DNSNXDomain}
}

func dur(d time.Duration) *time.Duration { return &d }
func days(n int) *int { return &n }

// --- tests ---

func TestRunOnce_Scenarios(t *testing.T) {
	avail := &fakeAvail{out: map[string]probe.Availability{
		"https://healthy":  {OK: true, StatusCode: 200, Elapsed: dur(1200 * time.Millisecond)},
		"https://timeout":  {Err: errors.New("timeout: dial tcp 10.0.0.1:443")},
		"https://degraded": {OK: false, StatusCode: 503, Elapsed: dur(300 * time.Millisecond)},
		"https://slow":     {OK: false, StatusCode: 500, Elapsed: dur(6 * time.Second)},
	}}
	certs := &fakeCerts{out: map[string]probe.Certificate{
		"https://healthy":  {OK: true, DaysRemaining: days(90)},
		"https://timeout":  {OK: true, DaysRemaining: days(30)},
		"https://degraded": {OK: false, DaysRemaining: days(-5)},
		"https://slow":     {Err: errors.New("x509: certificate signed by unknown authority")},
	}}
	dns := &fakeDNS{}

	r := NewRunner(zap.NewNop(), avail, certs, 0, 1)
	r.DNS = dns
	urls := []string{"https://healthy", "https://timeout", "https://degraded", "https://slow"}
	run := r.RunOnce(context.Background(), urls)
	require.Len(t, run.Results, 4)

	healthy := run.Results[0]
	require.True(t, healthy.AvailabilityOK)
	require.True(t, healthy.ResponseTimeOK)
	require.True(t, healthy.SSLOK)
	require.NotNil(t, healthy.LatencyMS)
	require.InDelta(t, 1200.0, *healthy.LatencyMS, 0.001)
	require.Equal(t, 90, *healthy.DaysRemaining)

	timeout := run.Results[1]
	require.False(t, timeout.AvailabilityOK)
	require.False(t, timeout.ResponseTimeOK)
	require.Equal(t, "timeout: dial tcp 10.0.0.1:443", timeout.AvailabilityErr)
	require.Equal(t, timeout.AvailabilityErr, timeout.ResponseTimeErr)
	require.Nil(t, timeout.LatencyMS)
	require.True(t, timeout.SSLOK)

	// latency alone decides response time when no error was raised
	degraded := run.Results[2]
	require.False(t, degraded.AvailabilityOK)
	require.True(t, degraded.ResponseTimeOK)
	require.False(t, degraded.SSLOK)
	require.Equal(t, 503, degraded.HTTPStatus)

	slow := run.Results[3]
	require.False(t, slow.AvailabilityOK)
	require.False(t, slow.ResponseTimeOK)
	require.Empty(t, slow.ResponseTimeErr)
	require.False(t, slow.SSLOK)
	require.Contains(t, slow.SSLErr, "unknown authority")
	require.Nil(t, slow.DaysRemaining)

	require.EqualValues(t, 1, atomic.LoadInt32(&dns.n), "dns diagnostics only after availability errors")

	b := report.Classify(run.Results)
	require.Equal(t, []report.Row{
		{URL: "https://healthy", Condition: "Availability"},
		{URL: "https://healthy", Condition: "Response Time"},
		{URL: "https://healthy", Condition: "SSL"},
		{URL: "https://timeout", Condition: "SSL"},
		{URL: "https://degraded", Condition: "Response Time"},
	}, b.Green)
	require.Equal(t, []report.Row{
		{URL: "https://degraded", Condition: "Availability"},
		{URL: "https://degraded", Condition: "SSL"},
		{URL: "https://slow", Condition: "Availability"},
		{URL: "https://slow", Condition: "Response Time"},
	}, b.Red)
	require.Len(t, b.Exception, 3)
}

func TestRunOnce_ThresholdIsExclusive(t *testing.T) {
	avail := &fakeAvail{out: map[string]probe.Availability{
		"https://edge": {OK: true, StatusCode: 200, Elapsed: dur(5 * time.Second)},
	}}
	certs := &fakeCerts{out: map[string]probe.Certificate{"https://edge": {OK: true, DaysRemaining: days(10)}}}

	run := NewRunner(zap.NewNop(), avail, certs, 5*time.Second, 1).RunOnce(context.Background(), []string{"https://edge"})
	require.True(t, run.Results[0].AvailabilityOK)
	require.False(t, run.Results[0].ResponseTimeOK)
}

func TestRunOnce_ParallelKeepsOrder(t *testing.T) {
	urls := []string{"https://1", "https://2", "https://3", "https://4", "https://5"}
	avail := &fakeAvail{out: map[string]probe.Availability{}, delay: map[string]time.Duration{}}
	certs := &fakeCerts{out: map[string]probe.Certificate{}}
	for i, u := range urls {
		avail.out[u] = probe.Availability{OK: true, StatusCode: 200, Elapsed: dur(time.Millisecond)}
		// first URL finishes last
		avail.delay[u] = time.Duration(len(urls)-i) * 10 * time.Millisecond
		certs.out[u] = probe.Certificate{OK: true, DaysRemaining: days(i + 1)}
	}

	run := NewRunner(zap.NewNop(), avail, certs, 0, len(urls)).RunOnce(context.Background(), urls)
	require.Len(t, run.Results, len(urls))
	for i, res := range run.Results {
		require.Equal(t, urls[i], res.URL)
		require.Equal(t, i+1, *res.DaysRemaining)
	}
	require.False(t, run.FinishedAt.Before(run.StartedAt))
}

func TestRunOnce_AvailabilityBeforeCertificate(t *testing.T) {
	var mu sync.Mutex
	var order []string
	avail := &orderedAvail{order: &order, mu: &mu}
	certs := &fakeCerts{out: map[string]probe.Certificate{}, order: &order, mu: &mu}

	NewRunner(zap.NewNop(), avail, certs, 0, 1).RunOnce(context.Background(), []string{"https://a", "https://b"})
	require.Equal(t, []string{"http:https://a", "cert:https://a", "http:https://b", "cert:https://b"}, order)
}

type orderedAvail struct {
	order *[]string
	mu    *sync.Mutex
}

func (o *orderedAvail) Check(ctx context.Context, target string) probe.Availability {
	o.mu.Lock()
	*o.order = append(*o.order, "http:"+target)
	o.mu.Unlock()
	return probe.Availability{Err: errors.New("refused")}
}

type emptyErr struct{}

func (emptyErr) Error() string { return "" }

func TestRunOnce_EmptyErrorTextStillException(t *testing.T) {
	avail := &fakeAvail{out: map[string]probe.Availability{"https://x": {Err: emptyErr{}}}}
	certs := &fakeCerts{out: map[string]probe.Certificate{"https://x": {Err: emptyErr{}}}}

	run := NewRunner(zap.NewNop(), avail, certs, 0, 1).RunOnce(context.Background(), []string{"https://x"})
	b := report.Classify(run.Results)
	require.Len(t, b.Exception, 3)
	require.Empty(t, b.Green)
	require.Empty(t, b.Red)
}

func TestRun_SinglePassWithoutInterval(t *testing.T) {
	avail := &fakeAvail{out: map[string]probe.Availability{}}
	certs := &fakeCerts{out: map[string]probe.Certificate{}}
	r := NewRunner(zap.NewNop(), avail, certs, 0, 1)

	var passes int
	r.Run(context.Background(), []string{"https://a"}, 0, func(ctx context.Context, run domain.Run) {
		passes++
	})
	require.Equal(t, 1, passes)
}

func TestRun_RepeatsUntilCancelled(t *testing.T) {
	avail := &fakeAvail{out: map[string]probe.Availability{}}
	certs := &fakeCerts{out: map[string]probe.Certificate{}}
	r := NewRunner(zap.NewNop(), avail, certs, 0, 1)

	ctx, cancel := context.WithCancel(context.Background())
	var passes int32
	done := make(chan struct{})
	go func() {
		defer close(done)
		r.Run(ctx, []string{"https://a"}, 5*time.Millisecond, func(ctx context.Context, run domain.Run) {
			if atomic.AddInt32(&passes, 1) == 3 {
				cancel()
			}
		})
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not stop after cancel")
	}
	require.GreaterOrEqual(t, atomic.LoadInt32(&passes), int32(3))
}

// ctxAvail blocks until the check's context ends, like a slow server would.
type ctxAvail struct{ started chan struct{} }

func (c *ctxAvail) Check(ctx context.Context, target string) probe.Availability {
	select {
	case c.started <- struct{}{}:
	default:
	}
	<-ctx.Done()
	return probe.Availability{Err: ctx.Err()}
}

func TestRun_CancelledPassIsDropped(t *testing.T) {
	avail := &ctxAvail{started: make(chan struct{}, 1)}
	certs := &fakeCerts{out: map[string]probe.Certificate{}}
	r := NewRunner(zap.NewNop(), avail, certs, 0, 1)

	ctx, cancel := context.WithCancel(context.Background())
	var passes int32
	done := make(chan struct{})
	go func() {
		defer close(done)
		r.Run(ctx, []string{"https://slow"}, time.Hour, func(ctx context.Context, run domain.Run) {
			atomic.AddInt32(&passes, 1)
		})
	}()

	select {
	case <-avail.started:
	case <-time.After(2 * time.Second):
		t.Fatal("pass never started")
	}
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not stop after cancel")
	}
	require.Zero(t, atomic.LoadInt32(&passes), "sink must not see a pass cut short by cancel")
}

func TestRun_NoPassOnCancelledContext(t *testing.T) {
	avail := &fakeAvail{out: map[string]probe.Availability{}}
	certs := &fakeCerts{out: map[string]probe.Certificate{}}
	r := NewRunner(zap.NewNop(), avail, certs, 0, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var passes int
	r.Run(ctx, []string{"https://a"}, time.Millisecond, func(ctx context.Context, run domain.Run) {
		passes++
	})
	require.Zero(t, passes)
	require.Empty(t, avail.calls)
}
