package arm

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/kbukum/armkit/config"
	"github.com/kbukum/armkit/credential"
	"github.com/kbukum/armkit/errors"
	"github.com/kbukum/armkit/pipeline"
	"github.com/kbukum/armkit/resilience"
)

// DefaultEndpoint is the public cloud management endpoint.
const DefaultEndpoint = "https://management.azure.com"

// APIVersionParam is the query parameter carrying the service version.
const APIVersionParam = "api-version"

// Client holds what every operation of a service shares: the endpoint, the
// scopes and the request pipeline. It is safe for concurrent use.
type Client struct {
	endpoint string
	scopes   []string
	pipeline *pipeline.Pipeline
}

// ClientBuilder configures a Client. It is a value type: every setter
// returns a modified copy.
type ClientBuilder struct {
	cred     credential.TokenCredential
	endpoint string
	scopes   []string
	opts     pipeline.Options
}

// NewClientBuilder starts a builder for cred. A nil cred sends
// unauthenticated requests.
func NewClientBuilder(cred credential.TokenCredential) ClientBuilder {
	return ClientBuilder{cred: cred}
}

// Endpoint sets the service endpoint. Defaults to DefaultEndpoint.
func (b ClientBuilder) Endpoint(endpoint string) ClientBuilder {
	b.endpoint = endpoint
	return b
}

// Scopes sets the token scopes. Defaults to the endpoint followed by "/".
func (b ClientBuilder) Scopes(scopes ...string) ClientBuilder {
	b.scopes = append([]string(nil), scopes...)
	return b
}

// Retry sets the retry policy configuration.
func (b ClientBuilder) Retry(cfg resilience.RetryConfig) ClientBuilder {
	b.opts.Retry = cfg
	return b
}

// Transport sets the HTTP client used to send requests.
func (b ClientBuilder) Transport(t pipeline.Doer) ClientBuilder {
	b.opts.Transport = t
	return b
}

// ApplicationID is prefixed to the User-Agent.
func (b ClientBuilder) ApplicationID(id string) ClientBuilder {
	b.opts.ApplicationID = id
	return b
}

// PerCallPolicies appends policies that run once per operation.
func (b ClientBuilder) PerCallPolicies(policies ...pipeline.Policy) ClientBuilder {
	b.opts.PerCall = append(append([]pipeline.Policy(nil), b.opts.PerCall...), policies...)
	return b
}

// PerRetryPolicies appends policies that run on every attempt.
func (b ClientBuilder) PerRetryPolicies(policies ...pipeline.Policy) ClientBuilder {
	b.opts.PerRetry = append(append([]pipeline.Policy(nil), b.opts.PerRetry...), policies...)
	return b
}

// Options replaces every pipeline option at once. Scopes set on the builder
// win over opts.Scopes.
func (b ClientBuilder) Options(opts pipeline.Options) ClientBuilder {
	b.opts = opts
	return b
}

// FromConfig applies a loaded client config: endpoint, scopes and every
// pipeline option it carries.
func (b ClientBuilder) FromConfig(cfg *config.ClientConfig) ClientBuilder {
	b.opts = pipeline.OptionsFromConfig(cfg)
	b.endpoint = cfg.Endpoint
	b.scopes = append([]string(nil), cfg.Scopes...)
	return b
}

// Build validates the endpoint and assembles the pipeline.
func (b ClientBuilder) Build() (*Client, error) {
	endpoint := strings.TrimRight(b.endpoint, "/")
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	u, err := url.Parse(endpoint)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return nil, errors.InvalidInput("endpoint", fmt.Sprintf("%q is not an absolute URL", b.endpoint))
	}

	scopes := b.scopes
	if len(scopes) == 0 {
		scopes = b.opts.Scopes
	}
	if len(scopes) == 0 {
		scopes = []string{endpoint + "/"}
	}
	opts := b.opts
	opts.Scopes = scopes

	p, err := pipeline.New(b.cred, opts)
	if err != nil {
		return nil, err
	}
	return &Client{endpoint: endpoint, scopes: append([]string(nil), scopes...), pipeline: p}, nil
}

// Endpoint returns the endpoint without a trailing slash.
func (c *Client) Endpoint() string { return c.endpoint }

// Scopes returns a copy of the token scopes.
func (c *Client) Scopes() []string { return append([]string(nil), c.scopes...) }

// Pipeline returns the request pipeline.
func (c *Client) Pipeline() *pipeline.Pipeline { return c.pipeline }

// NewRequest creates a request for path under the endpoint. path must be
// escaped already, see ResourcePath. apiVersion is set when non-empty.
func (c *Client) NewRequest(method pipeline.Method, path, apiVersion string) (*pipeline.Request, error) {
	req, err := pipeline.NewRequest(method, c.endpoint+path)
	if err != nil {
		return nil, err
	}
	if apiVersion != "" {
		req.SetQuery(APIVersionParam, apiVersion)
	}
	return req, nil
}

// NewContinuationRequest creates a GET for a page continuation token.
// The token is resolved against the endpoint and apiVersion is appended only
// when the resolved URL does not already carry one.
func (c *Client) NewContinuationRequest(nextLink, apiVersion string) (*pipeline.Request, error) {
	u, err := ContinuationURL(c.endpoint, nextLink)
	if err != nil {
		return nil, err
	}
	if apiVersion != "" {
		SetAPIVersion(u, apiVersion)
	}
	return pipeline.NewRequestFromURL(pipeline.MethodGet, u)
}

// Send sends req through the pipeline.
func (c *Client) Send(ctx context.Context, req *pipeline.Request) (*pipeline.Response, error) {
	return c.pipeline.Send(ctx, req)
}

// ResourcePath formats a path, escaping every parameter as one path segment.
//
//	arm.ResourcePath("/subscriptions/%s/resourceGroups/%s", sub, rg)
func ResourcePath(format string, params ...string) string {
	args := make([]any, len(params))
	for i, p := range params {
		args[i] = url.PathEscape(p)
	}
	return fmt.Sprintf(format, args...)
}
