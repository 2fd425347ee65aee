// Package resilience holds the fault-tolerance primitives the request
// pipeline is assembled from.
//
//   - Retry / RetryAttempts: exponential backoff that yields to server
//     supplied Retry-After hints (see RetryAfterHint)
//   - RateLimiter: token bucket, pausable after the server throttles
//   - CircuitBreaker / CircuitBreakers: fail fast per endpoint host
//   - Bulkhead: bounds the number of requests in flight
//
// The pipeline nests them as retry, then rate limiter, circuit breaker and
// bulkhead around every single attempt:
//
//	rl := resilience.NewRateLimiter(resilience.DefaultRateLimiterConfig("arm"))
//	cbs := resilience.NewCircuitBreakers(resilience.DefaultCircuitBreakerConfig(""))
//	bh := resilience.NewBulkhead(resilience.DefaultBulkheadConfig("arm"))
//
//	resp, err := resilience.Retry(ctx, resilience.DefaultRetryConfig(), func() (*http.Response, error) {
//	    if err := rl.Wait(ctx); err != nil {
//	        return nil, err
//	    }
//	    var resp *http.Response
//	    err := cbs.Get(req.URL.Host).Execute(func() error {
//	        return bh.Execute(ctx, func() (err error) {
//	            resp, err = http.DefaultClient.Do(req)
//	            return err
//	        })
//	    })
//	    return resp, err
//	})
package resilience
