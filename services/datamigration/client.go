package datamigration

import (
	"context"

	"github.com/kbukum/armkit/arm"
	"github.com/kbukum/armkit/config"
	"github.com/kbukum/armkit/credential"
	"github.com/kbukum/armkit/observability"
	"github.com/kbukum/armkit/pager"
	"github.com/kbukum/armkit/pipeline"
	"github.com/kbukum/armkit/resilience"
	"github.com/kbukum/armkit/util"
)

// APIVersion is sent as api-version on every request.
const APIVersion = "2021-10-30-preview"

// Client is the Microsoft.DataMigration management client. It is safe for
// concurrent use and should be built once.
type Client struct {
	arm *arm.Client
}

// ClientBuilder configures a Client.
type ClientBuilder struct {
	b arm.ClientBuilder
}

// NewClientBuilder starts a builder that authenticates with cred.
func NewClientBuilder(cred credential.TokenCredential) ClientBuilder {
	return ClientBuilder{b: arm.NewClientBuilder(cred)}
}

// Endpoint sets the management endpoint. Defaults to
// https://management.azure.com.
func (b ClientBuilder) Endpoint(endpoint string) ClientBuilder {
	b.b = b.b.Endpoint(endpoint)
	return b
}

// Scopes sets the token scopes. Defaults to the endpoint followed by "/".
func (b ClientBuilder) Scopes(scopes ...string) ClientBuilder {
	b.b = b.b.Scopes(scopes...)
	return b
}

// Retry sets the retry policy.
func (b ClientBuilder) Retry(cfg resilience.RetryConfig) ClientBuilder {
	b.b = b.b.Retry(cfg)
	return b
}

// Transport sets the HTTP client.
func (b ClientBuilder) Transport(t pipeline.Doer) ClientBuilder {
	b.b = b.b.Transport(t)
	return b
}

// FromConfig applies a loaded client config.
func (b ClientBuilder) FromConfig(cfg *config.ClientConfig) ClientBuilder {
	b.b = b.b.FromConfig(cfg)
	return b
}

// Build creates the Client.
func (b ClientBuilder) Build() (*Client, error) {
	c, err := b.b.Build()
	if err != nil {
		return nil, err
	}
	return &Client{arm: c}, nil
}

// NewClient builds a Client with default options.
func NewClient(cred credential.TokenCredential) (*Client, error) {
	return NewClientBuilder(cred).Build()
}

// Endpoint returns the management endpoint.
func (c *Client) Endpoint() string { return c.arm.Endpoint() }

// Scopes returns the token scopes.
func (c *Client) Scopes() []string { return c.arm.Scopes() }

// SQLMigrationServices returns the sqlMigrationServices operations.
func (c *Client) SQLMigrationServices() SQLMigrationServicesClient {
	return SQLMigrationServicesClient{c: c}
}

// Operations returns the provider operations listing.
func (c *Client) Operations() OperationsClient {
	return OperationsClient{c: c}
}

// DatabaseMigrationsSQLMI returns the managed instance migration operations.
func (c *Client) DatabaseMigrationsSQLMI() DatabaseMigrationsSQLMIClient {
	return DatabaseMigrationsSQLMIClient{c: c}
}

// call describes one request of a builder.
type call struct {
	op       string
	method   pipeline.Method
	path     string
	query    map[string]string
	body     any
	accepted []arm.Status
}

// send builds, sends and status-checks a request. On success the caller owns
// the response body.
func (c *Client) send(ctx context.Context, cl call) (*pipeline.Request, *pipeline.Response, arm.Status, error) {
	ctx = observability.WithOperation(ctx, cl.op)
	req, err := c.arm.NewRequest(cl.method, cl.path, APIVersion)
	if err != nil {
		return nil, nil, 0, err
	}
	for k, v := range cl.query {
		if v != "" {
			req.SetQuery(k, v)
		}
	}
	if cl.body != nil {
		if err := req.SetJSON(cl.body); err != nil {
			return nil, nil, 0, err
		}
	}
	resp, err := c.arm.Send(ctx, req)
	if err != nil {
		return nil, nil, 0, err
	}
	status, err := arm.ExpectStatus(resp, cl.accepted...)
	if err != nil {
		return nil, nil, 0, err
	}
	return req, resp, status, nil
}

// decode sends cl and decodes the JSON body into T.
func decode[T any](ctx context.Context, c *Client, cl call, model string) (T, arm.Status, error) {
	var out T
	_, resp, status, err := c.send(ctx, cl)
	if err != nil {
		return out, 0, err
	}
	if err := resp.JSON(&out, model); err != nil {
		return out, 0, err
	}
	return out, status, nil
}

// newPager pages through a collection at path. validate runs before the
// first request; a failure is the pager's first and only result.
func newPager[T any](c *Client, op, path string, validate func() error, nextLink func(T) *string) *pager.Pager[T] {
	return pager.New(pager.Handler[T]{
		Operation: op,
		Metrics:   c.arm.Pipeline().Metrics(),
		Fetcher: func(ctx context.Context, token *string) (T, error) {
			var page T
			if err := validate(); err != nil {
				return page, err
			}
			ctx = observability.WithOperation(ctx, op)

			var req *pipeline.Request
			var err error
			if token == nil {
				req, err = c.arm.NewRequest(pipeline.MethodGet, path, APIVersion)
			} else {
				req, err = c.arm.NewContinuationRequest(*token, APIVersion)
			}
			if err != nil {
				return page, err
			}
			resp, err := c.arm.Send(ctx, req)
			if err != nil {
				return page, err
			}
			if _, err := arm.ExpectStatus(resp, arm.StatusOK); err != nil {
				return page, err
			}
			err = resp.JSON(&page, op)
			return page, err
		},
		NextLink: func(page T) string { return util.Deref(nextLink(page)) },
	})
}
