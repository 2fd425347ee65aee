package pipeline

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kbukum/armkit/config"
	"github.com/kbukum/armkit/credential"
	"github.com/kbukum/armkit/errors"
	"github.com/kbukum/armkit/logger"
	"github.com/kbukum/armkit/resilience"
)

func fastRetry(attempts int) resilience.RetryConfig {
	return resilience.RetryConfig{
		MaxAttempts:    attempts,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     50 * time.Millisecond,
		BackoffFactor:  1,
	}
}

func staticCred(token string) credential.TokenCredential {
	return credential.TokenCredentialFunc(func(context.Context, credential.TokenRequestOptions) (credential.AccessToken, error) {
		return credential.AccessToken{Token: token, ExpiresOn: time.Now().Add(time.Hour)}, nil
	})
}

func newTestPipeline(t *testing.T, srv *httptest.Server, cred credential.TokenCredential, opts Options) *Pipeline {
	t.Helper()
	opts.Transport = srv.Client()
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	if opts.Retry.MaxAttempts == 0 {
		opts.Retry = fastRetry(3)
	}
	p, err := New(cred, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return p
}

func mustRequest(t *testing.T, method Method, url string) *Request {
	t.Helper()
	req, err := NewRequest(method, url)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return req
}

func TestPipeline_SetsStandardHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("expected bearer token, got %q", got)
		}
		if got := r.Header.Get(HeaderClientRequestID); len(got) != 36 {
			t.Errorf("expected a UUID request id, got %q", got)
		}
		if ua := r.Header.Get("User-Agent"); !strings.HasPrefix(ua, "my/app armkit/") {
			t.Errorf("unexpected User-Agent %q", ua)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := newTestPipeline(t, srv, staticCred("tok"), Options{ApplicationID: "my app"})
	resp, err := p.Send(context.Background(), mustRequest(t, MethodGet, srv.URL+"/x"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

func TestPipeline_KeepsCallerRequestID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get(HeaderClientRequestID); got != "fixed-id" {
			t.Errorf("expected caller request id, got %q", got)
		}
	}))
	defer srv.Close()

	p := newTestPipeline(t, srv, nil, Options{})
	req := mustRequest(t, MethodGet, srv.URL)
	req.Header().Set(HeaderClientRequestID, "fixed-id")
	resp, err := p.Send(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_ = resp.Close()
}

func TestPipeline_NoCredentialNoAuthorization(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "" {
			t.Errorf("expected no Authorization header, got %q", got)
		}
	}))
	defer srv.Close()

	p := newTestPipeline(t, srv, nil, Options{})
	resp, err := p.Send(context.Background(), mustRequest(t, MethodGet, srv.URL))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_ = resp.Close()
}

func TestPipeline_RetryHonoursRetryAfter(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set(HeaderRetryAfterMS, "20")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = io.WriteString(w, "ok")
	}))
	defer srv.Close()

	var backoffs []time.Duration
	retry := fastRetry(3)
	retry.OnRetry = func(_ int, _ error, d time.Duration) { backoffs = append(backoffs, d) }

	p := newTestPipeline(t, srv, nil, Options{Retry: retry})
	resp, err := p.Send(context.Background(), mustRequest(t, MethodGet, srv.URL))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	body, err := resp.Bytes()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(body) != "ok" {
		t.Errorf("expected body ok, got %q", body)
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 attempts, got %d", calls.Load())
	}
	if len(backoffs) != 1 || backoffs[0] != 20*time.Millisecond {
		t.Errorf("expected one 20ms backoff, got %v", backoffs)
	}
}

func TestPipeline_RetryAfterCappedByMaxBackoff(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set(HeaderRetryAfter, "3600")
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}))
	defer srv.Close()

	var backoff time.Duration
	retry := fastRetry(2)
	retry.MaxBackoff = 5 * time.Millisecond
	retry.OnRetry = func(_ int, _ error, d time.Duration) { backoff = d }

	p := newTestPipeline(t, srv, nil, Options{Retry: retry})
	resp, err := p.Send(context.Background(), mustRequest(t, MethodGet, srv.URL))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_ = resp.Close()
	if backoff != 5*time.Millisecond {
		t.Errorf("expected backoff capped at 5ms, got %v", backoff)
	}
}

func TestPipeline_NonRetryableStatusStops(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusNotFound, http.StatusConflict, http.StatusNotImplemented} {
		t.Run(fmt.Sprint(status), func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(status)
			}))
			defer srv.Close()

			p := newTestPipeline(t, srv, nil, Options{})
			resp, err := p.Send(context.Background(), mustRequest(t, MethodGet, srv.URL))
			if err != nil {
				t.Fatalf("the pipeline must not judge statuses, got error %v", err)
			}
			_ = resp.Close()
			if resp.StatusCode != status {
				t.Errorf("expected %d, got %d", status, resp.StatusCode)
			}
			if calls.Load() != 1 {
				t.Errorf("expected a single attempt, got %d", calls.Load())
			}
		})
	}
}

func TestPipeline_ExhaustedRetriesReturnLastResponse(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprintf(w, "attempt %d", n)
	}))
	defer srv.Close()

	p := newTestPipeline(t, srv, nil, Options{Retry: fastRetry(3)})
	resp, err := p.Send(context.Background(), mustRequest(t, MethodGet, srv.URL))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	body, _ := resp.Bytes()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", resp.StatusCode)
	}
	if string(body) != "attempt 3" {
		t.Errorf("expected the last attempt's body, got %q", body)
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestPipeline_BearerOnEveryAttempt(t *testing.T) {
	var tokens atomic.Int32
	cred := credential.TokenCredentialFunc(func(_ context.Context, opts credential.TokenRequestOptions) (credential.AccessToken, error) {
		if len(opts.Scopes) != 1 || opts.Scopes[0] != "https://management.azure.com/" {
			t.Errorf("unexpected scopes %v", opts.Scopes)
		}
		return credential.AccessToken{Token: fmt.Sprintf("tok-%d", tokens.Add(1))}, nil
	})

	var mu sync.Mutex
	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, r.Header.Get("Authorization"))
		if len(seen) < 3 {
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer srv.Close()

	p := newTestPipeline(t, srv, cred, Options{Scopes: []string{"https://management.azure.com/"}})
	resp, err := p.Send(context.Background(), mustRequest(t, MethodGet, srv.URL))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_ = resp.Close()

	want := []string{"Bearer tok-1", "Bearer tok-2", "Bearer tok-3"}
	if len(seen) != len(want) {
		t.Fatalf("expected %d attempts, got %d", len(want), len(seen))
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("attempt %d: expected %q, got %q", i+1, want[i], seen[i])
		}
	}
}

func TestPipeline_CredentialFailureNotRetried(t *testing.T) {
	var tokenCalls, serverCalls atomic.Int32
	cred := credential.TokenCredentialFunc(func(context.Context, credential.TokenRequestOptions) (credential.AccessToken, error) {
		tokenCalls.Add(1)
		return credential.AccessToken{}, stderrors.New("no identity")
	})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		serverCalls.Add(1)
	}))
	defer srv.Close()

	p := newTestPipeline(t, srv, cred, Options{})
	_, err := p.Send(context.Background(), mustRequest(t, MethodGet, srv.URL))
	if !errors.HasCode(err, errors.ErrCodeCredentialUnavailable) {
		t.Fatalf("expected CREDENTIAL_UNAVAILABLE, got %v", err)
	}
	if tokenCalls.Load() != 1 {
		t.Errorf("expected one token attempt, got %d", tokenCalls.Load())
	}
	if serverCalls.Load() != 0 {
		t.Errorf("expected no request to reach the server, got %d", serverCalls.Load())
	}
}

func TestPipeline_BodyResentOnRetry(t *testing.T) {
	var mu sync.Mutex
	var bodies []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		data, _ := io.ReadAll(r.Body)
		bodies = append(bodies, string(data))
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected application/json, got %q", ct)
		}
		if len(bodies) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	p := newTestPipeline(t, srv, nil, Options{})
	req := mustRequest(t, MethodPut, srv.URL)
	if err := req.SetJSON(map[string]string{"location": "westeurope"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp, err := p.Send(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_ = resp.Close()

	if len(bodies) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(bodies))
	}
	want := `{"location":"westeurope"}`
	for i, b := range bodies {
		if b != want {
			t.Errorf("attempt %d: expected body %s, got %s", i+1, want, b)
		}
	}
}

func TestPipeline_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	client := srv.Client()
	srv.Close()

	var retries atomic.Int32
	retry := fastRetry(2)
	retry.OnRetry = func(int, error, time.Duration) { retries.Add(1) }
	p, err := New(nil, Options{Transport: client, Retry: retry, Logger: logger.Nop()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = p.Send(context.Background(), mustRequest(t, MethodGet, url))
	if !errors.HasCode(err, errors.ErrCodeTransport) {
		t.Fatalf("expected TRANSPORT_FAILURE, got %v", err)
	}
	if retries.Load() != 1 {
		t.Errorf("expected transport failures to be retried once, got %d", retries.Load())
	}
}

func TestPipeline_ContextCanceled(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { calls.Add(1) }))
	defer srv.Close()

	p := newTestPipeline(t, srv, nil, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Send(ctx, mustRequest(t, MethodGet, srv.URL))
	if !stderrors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls.Load() != 0 {
		t.Errorf("expected no attempt, got %d", calls.Load())
	}
}

func TestPipeline_DeadlineBecomesTimeout(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	p := newTestPipeline(t, srv, nil, Options{})
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err := p.Send(ctx, mustRequest(t, MethodGet, srv.URL))
	if !errors.HasCode(err, errors.ErrCodeTimeout) {
		t.Fatalf("expected TIMEOUT, got %v", err)
	}
	if !stderrors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected the deadline to be wrapped, got %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("expected no retry after the deadline, got %d attempts", calls.Load())
	}
}

func TestPipeline_CanceledAfterRetryableStatus(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cancelOn503 := func(next Handler) Handler {
		return HandlerFunc(func(ctx context.Context, req *Request) (*Response, error) {
			resp, err := next.Send(ctx, req)
			if err == nil && resp.StatusCode == http.StatusServiceUnavailable {
				cancel()
			}
			return resp, err
		})
	}
	p := newTestPipeline(t, srv, nil, Options{PerRetry: []Policy{cancelOn503}})

	_, err := p.Send(ctx, mustRequest(t, MethodGet, srv.URL))
	if !stderrors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %T %v", err, err)
	}
	var rs *retryableStatus
	if stderrors.As(err, &rs) {
		t.Errorf("internal retry marker leaked: %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("expected a single attempt, got %d", calls.Load())
	}
}

func TestPipeline_DeadlineAfterRetryableStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	short, cancelShort := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancelShort()
	waitOut := func(next Handler) Handler {
		return HandlerFunc(func(ctx context.Context, req *Request) (*Response, error) {
			resp, err := next.Send(ctx, req)
			<-short.Done()
			return resp, err
		})
	}
	p := newTestPipeline(t, srv, nil, Options{PerRetry: []Policy{waitOut}})

	_, err := p.Send(short, mustRequest(t, MethodGet, srv.URL))
	if !errors.HasCode(err, errors.ErrCodeTimeout) {
		t.Fatalf("expected TIMEOUT, got %T %v", err, err)
	}
}

func TestPipeline_CircuitBreakerOpens(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cb := resilience.DefaultCircuitBreakerConfig("test")
	cb.MaxFailures = 2
	cb.Timeout = time.Minute
	p := newTestPipeline(t, srv, nil, Options{Retry: fastRetry(1), CircuitBreaker: &cb})

	for i := 0; i < 2; i++ {
		resp, err := p.Send(context.Background(), mustRequest(t, MethodGet, srv.URL))
		if err != nil {
			t.Fatalf("call %d: unexpected error: %v", i+1, err)
		}
		if resp.StatusCode != http.StatusInternalServerError {
			t.Errorf("call %d: expected 500, got %d", i+1, resp.StatusCode)
		}
		_ = resp.Close()
	}

	_, err := p.Send(context.Background(), mustRequest(t, MethodGet, srv.URL))
	if !errors.HasCode(err, errors.ErrCodeCircuitOpen) {
		t.Fatalf("expected CIRCUIT_OPEN, got %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("expected the open circuit to stop traffic, got %d calls", calls.Load())
	}
}

func TestPipeline_ClientErrorsDoNotTripBreaker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	cb := resilience.DefaultCircuitBreakerConfig("test")
	cb.MaxFailures = 1
	p := newTestPipeline(t, srv, nil, Options{Retry: fastRetry(1), CircuitBreaker: &cb})
	for i := 0; i < 3; i++ {
		resp, err := p.Send(context.Background(), mustRequest(t, MethodGet, srv.URL))
		if err != nil {
			t.Fatalf("call %d: unexpected error: %v", i+1, err)
		}
		_ = resp.Close()
	}
}

func TestPipeline_PerCallAndPerRetryPolicies(t *testing.T) {
	var perCall, perRetry atomic.Int32
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Per-Retry") == "" {
			t.Error("expected per-retry header")
		}
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer srv.Close()

	counting := func(n *atomic.Int32, header string) Policy {
		return func(next Handler) Handler {
			return HandlerFunc(func(ctx context.Context, req *Request) (*Response, error) {
				n.Add(1)
				if header != "" {
					req.Header().Set(header, "1")
				}
				return next.Send(ctx, req)
			})
		}
	}
	p := newTestPipeline(t, srv, nil, Options{
		PerCall:  []Policy{counting(&perCall, "")},
		PerRetry: []Policy{counting(&perRetry, "X-Per-Retry")},
	})
	resp, err := p.Send(context.Background(), mustRequest(t, MethodGet, srv.URL))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_ = resp.Close()
	if perCall.Load() != 1 {
		t.Errorf("expected per-call policy to run once, got %d", perCall.Load())
	}
	if perRetry.Load() != 2 {
		t.Errorf("expected per-retry policy to run per attempt, got %d", perRetry.Load())
	}
}

func TestPipeline_LogsWithoutSecrets(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(HeaderServiceRequestID, "svc-1")
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	var buf bytes.Buffer
	log := logger.NewWithWriter(&logger.Config{Level: "debug", Format: logger.FormatJSON}, "test", &buf)
	p := newTestPipeline(t, srv, staticCred("very-secret-token"), Options{Retry: fastRetry(1), Logger: log})
	resp, err := p.Send(context.Background(), mustRequest(t, MethodGet, srv.URL+"/q?sig=sas-signature&comp=list"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_ = resp.Close()

	out := buf.String()
	for _, secret := range []string{"very-secret-token", "sas-signature"} {
		if strings.Contains(out, secret) {
			t.Errorf("log output leaked %q: %s", secret, out)
		}
	}
	for _, want := range []string{`"status_code":503`, "svc-1", "comp=list", `"level":"warn"`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected log output to contain %s, got %s", want, out)
		}
	}
}

func TestPipeline_DebugLogRedactsHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	var buf bytes.Buffer
	log := logger.NewWithWriter(&logger.Config{Level: "debug", Format: logger.FormatJSON}, "test", &buf)
	p := newTestPipeline(t, srv, staticCred("very-secret-token"), Options{Logger: log})
	req := mustRequest(t, MethodGet, srv.URL)
	req.Header().Set("Authorization", "Bearer caller-supplied")
	resp, err := p.Send(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_ = resp.Close()

	out := buf.String()
	for _, secret := range []string{"very-secret-token", "caller-supplied"} {
		if strings.Contains(out, secret) {
			t.Errorf("log output leaked %q: %s", secret, out)
		}
	}
	if !strings.Contains(out, `"headers":`) || !strings.Contains(out, "REDACTED") {
		t.Errorf("expected redacted request headers in debug output, got %s", out)
	}
}

func TestPipeline_DefaultTransport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	p, err := New(nil, Options{Logger: logger.Nop(), TransportConfig: TransportConfig{Timeout: 5 * time.Second}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp, err := p.Send(context.Background(), mustRequest(t, MethodDelete, srv.URL))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_ = resp.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("expected 204, got %d", resp.StatusCode)
	}
}

func TestNew_InvalidTLS(t *testing.T) {
	opts := Options{TransportConfig: TransportConfig{}}
	opts.TransportConfig.TLS.CAFile = "/does/not/exist.pem"
	if _, err := New(nil, opts); err == nil {
		t.Fatal("expected an error for an unreadable CA file")
	}
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := &config.ClientConfig{Name: "armctl"}
	cfg.RateLimit.Enabled = true
	cfg.CircuitBreaker.Enabled = true
	cfg.ApplyDefaults()

	opts := OptionsFromConfig(cfg)
	if len(opts.Scopes) != 1 || opts.Scopes[0] != "https://management.azure.com/" {
		t.Errorf("unexpected scopes %v", opts.Scopes)
	}
	if opts.ApplicationID != "armctl" {
		t.Errorf("expected application id armctl, got %q", opts.ApplicationID)
	}
	if opts.Retry.MaxAttempts != 4 {
		t.Errorf("expected 4 attempts, got %d", opts.Retry.MaxAttempts)
	}
	if opts.RateLimiter == nil || opts.RateLimiter.Rate != 10 {
		t.Errorf("expected rate limiter at 10/s, got %+v", opts.RateLimiter)
	}
	if opts.CircuitBreaker == nil || opts.CircuitBreaker.MaxFailures != 5 {
		t.Errorf("expected circuit breaker with 5 failures, got %+v", opts.CircuitBreaker)
	}
	if opts.Bulkhead == nil || opts.Bulkhead.MaxConcurrent != 16 {
		t.Errorf("expected bulkhead of 16, got %+v", opts.Bulkhead)
	}
	if opts.TransportConfig.Timeout != 60*time.Second {
		t.Errorf("expected 60s timeout, got %v", opts.TransportConfig.Timeout)
	}

	p, err := NewFromConfig(cfg, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := p.Scopes(); len(got) != 1 {
		t.Errorf("unexpected pipeline scopes %v", got)
	}
}
