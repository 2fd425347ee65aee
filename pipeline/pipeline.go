package pipeline

import (
	"context"

	"github.com/kbukum/armkit/config"
	"github.com/kbukum/armkit/credential"
	"github.com/kbukum/armkit/logger"
	"github.com/kbukum/armkit/observability"
	"github.com/kbukum/armkit/resilience"
)

// Options configures a Pipeline. Nil resilience configs disable the
// corresponding policy.
type Options struct {
	// Scopes are requested from the credential for every attempt.
	Scopes []string
	// ApplicationID is prefixed to the User-Agent.
	ApplicationID string

	// Retry configures the retry policy. A zero value uses the defaults.
	Retry          resilience.RetryConfig
	RateLimiter    *resilience.RateLimiterConfig
	CircuitBreaker *resilience.CircuitBreakerConfig
	Bulkhead       *resilience.BulkheadConfig

	// Transport sends the HTTP request. When nil a client is built from
	// TransportConfig.
	Transport       Doer
	TransportConfig TransportConfig

	// PerCall policies run once per logical request, outside the retry loop.
	PerCall []Policy
	// PerRetry policies run on every attempt, after the bearer token is set.
	PerRetry []Policy

	Logger  *logger.Logger
	Metrics *observability.HTTPMetrics
}

// Pipeline sends requests through the policy chain.
type Pipeline struct {
	handler Handler
	scopes  []string
	metrics *observability.HTTPMetrics
}

// New builds a pipeline. A nil credential sends requests without an
// Authorization header.
func New(cred credential.TokenCredential, opts Options) (*Pipeline, error) {
	log := opts.Logger
	if log == nil {
		log = logger.WithComponent("pipeline")
	}

	transport := opts.Transport
	if transport == nil {
		client, err := NewHTTPClient(opts.TransportConfig)
		if err != nil {
			return nil, err
		}
		transport = client
	}

	metrics := opts.Metrics
	if metrics == nil {
		m, err := observability.NewHTTPMetrics(observability.Meter())
		if err != nil {
			log.Warn("request metrics disabled", logger.ErrorFields("pipeline metrics", err))
		} else {
			metrics = m
		}
	}

	p := &Pipeline{scopes: append([]string(nil), opts.Scopes...), metrics: metrics}

	policies := []Policy{
		TracingPolicy(metrics),
		RequestIDPolicy(),
		TelemetryPolicy(opts.ApplicationID),
	}
	policies = append(policies, opts.PerCall...)
	policies = append(policies, RetryPolicy(opts.Retry, metrics, log))

	if opts.RateLimiter != nil {
		policies = append(policies, RateLimitPolicy(resilience.NewRateLimiter(*opts.RateLimiter)))
	}
	if opts.CircuitBreaker != nil {
		cb := *opts.CircuitBreaker
		if cb.IsFailure == nil {
			cb.IsFailure = IsBreakerFailure
		}
		if cb.OnStateChange == nil {
			cb.OnStateChange = func(name string, from, to resilience.State) {
				log.Info("circuit breaker state changed", logger.Fields(
					"host", name,
					"from", from.String(),
					"to", to.String(),
				))
			}
		}
		policies = append(policies, CircuitBreakerPolicy(resilience.NewCircuitBreakers(cb)))
	}
	if opts.Bulkhead != nil {
		policies = append(policies, BulkheadPolicy(resilience.NewBulkhead(*opts.Bulkhead)))
	}
	if cred != nil {
		policies = append(policies, BearerTokenPolicy(cred, p.scopes))
	}
	policies = append(policies, opts.PerRetry...)
	policies = append(policies, LoggingPolicy(log))

	p.handler = Chain(policies...)(TransportPolicy(transport)(nil))
	return p, nil
}

// Send runs req through the pipeline. The returned response is owned by the
// caller whatever its status code.
func (p *Pipeline) Send(ctx context.Context, req *Request) (*Response, error) {
	return p.handler.Send(ctx, req)
}

// Scopes returns a copy of the scopes the pipeline requests tokens for.
func (p *Pipeline) Scopes() []string {
	return append([]string(nil), p.scopes...)
}

// Metrics returns the instruments the pipeline records into, or nil when
// metrics are disabled.
func (p *Pipeline) Metrics() *observability.HTTPMetrics {
	return p.metrics
}

// OptionsFromConfig maps a loaded client config onto pipeline options.
// cfg must have had ApplyDefaults called.
func OptionsFromConfig(cfg *config.ClientConfig) Options {
	opts := Options{
		Scopes:        cfg.Scopes,
		ApplicationID: cfg.Name,
		Retry:         cfg.Retry,
		TransportConfig: TransportConfig{
			Timeout: cfg.Timeout,
			TLS:     cfg.TLS,
		},
		Logger: logger.WithComponent("pipeline"),
	}
	if cfg.RateLimit.Enabled {
		opts.RateLimiter = &resilience.RateLimiterConfig{
			Name:  cfg.Name,
			Rate:  cfg.RateLimit.Rate,
			Burst: cfg.RateLimit.Burst,
		}
	}
	if cfg.CircuitBreaker.Enabled {
		cb := resilience.DefaultCircuitBreakerConfig(cfg.Name)
		cb.MaxFailures = cfg.CircuitBreaker.MaxFailures
		cb.Timeout = cfg.CircuitBreaker.Timeout
		opts.CircuitBreaker = &cb
	}
	if cfg.Bulkhead.MaxConcurrent > 0 {
		bh := cfg.Bulkhead
		bh.Name = cfg.Name
		opts.Bulkhead = &bh
	}
	return opts
}

// NewFromConfig builds a pipeline from a loaded client config.
func NewFromConfig(cfg *config.ClientConfig, cred credential.TokenCredential) (*Pipeline, error) {
	return New(cred, OptionsFromConfig(cfg))
}
