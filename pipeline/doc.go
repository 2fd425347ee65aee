// Package pipeline sends management and storage API requests through an
// ordered chain of policies.
//
// A Pipeline is built once per client and shared by every operation:
//
//	p, err := pipeline.New(cred, pipeline.Options{
//	    Scopes: []string{"https://management.azure.com/"},
//	})
//	req, err := pipeline.NewRequest(pipeline.MethodGet, url)
//	resp, err := p.Send(ctx, req)
//	defer resp.Close()
//
// The policies run outermost first: tracing, request id, User-Agent,
// per-call policies, retry, rate limiter, circuit breaker, bulkhead, bearer
// token, per-retry policies, logging and finally the HTTP transport.
//
// The pipeline never judges a status code. Every response, including the
// last one of an exhausted retry loop, is handed to the caller, which maps
// it against the statuses its operation accepts.
package pipeline
