package queuestorage

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/kbukum/armkit/arm"
	"github.com/kbukum/armkit/config"
	"github.com/kbukum/armkit/credential"
	"github.com/kbukum/armkit/errors"
	"github.com/kbukum/armkit/observability"
	"github.com/kbukum/armkit/pipeline"
	"github.com/kbukum/armkit/resilience"
	"github.com/kbukum/armkit/validation"
)

// APIVersion is sent as x-ms-version on every request.
const APIVersion = "2018-03-28"

// DefaultScope is the token scope of the storage data plane.
const DefaultScope = "https://storage.azure.com/.default"

// Header names used by the queue service.
const (
	HeaderVersion         = "x-ms-version"
	HeaderDate            = "Date"
	HeaderMetaPrefix      = "x-ms-meta-"
	HeaderMessageCount    = "x-ms-approximate-messages-count"
	HeaderPopReceipt      = "x-ms-popreceipt"
	HeaderTimeNextVisible = "x-ms-time-next-visible"
)

const (
	maxVisibilityTimeout = 7 * 24 * 60 * 60
	maxMessagesPerCall   = 32
	infiniteMessageTTL   = -1
	timeoutQueryParam    = "timeout"
)

// Client is the queue service client for one storage account. It is safe for
// concurrent use.
type Client struct {
	arm *arm.Client
}

// ClientBuilder configures a Client. The endpoint is required.
type ClientBuilder struct {
	b        arm.ClientBuilder
	endpoint string
	scopes   []string
}

// NewClientBuilder starts a builder that authenticates with cred.
func NewClientBuilder(cred credential.TokenCredential) ClientBuilder {
	return ClientBuilder{b: arm.NewClientBuilder(cred)}
}

// Endpoint sets the account queue endpoint, for example
// https://myaccount.queue.core.windows.net.
func (b ClientBuilder) Endpoint(endpoint string) ClientBuilder {
	b.endpoint = endpoint
	return b
}

// Scopes sets the token scopes. Defaults to DefaultScope.
func (b ClientBuilder) Scopes(scopes ...string) ClientBuilder {
	b.scopes = append([]string(nil), scopes...)
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

// FromConfig applies a loaded client config. The endpoint and scopes come
// from its storage section.
func (b ClientBuilder) FromConfig(cfg *config.ClientConfig) ClientBuilder {
	b.b = b.b.FromConfig(cfg)
	b.endpoint = cfg.Storage.QueueEndpoint
	b.scopes = append([]string(nil), cfg.Storage.Scopes...)
	return b
}

// Build creates the Client.
func (b ClientBuilder) Build() (*Client, error) {
	if strings.TrimSpace(b.endpoint) == "" {
		return nil, errors.MissingField("endpoint")
	}
	scopes := b.scopes
	if len(scopes) == 0 {
		scopes = []string{DefaultScope}
	}
	c, err := b.b.Endpoint(b.endpoint).Scopes(scopes...).PerCallPolicies(versionPolicy()).Build()
	if err != nil {
		return nil, err
	}
	return &Client{arm: c}, nil
}

// NewClient builds a Client for endpoint with default options.
func NewClient(endpoint string, cred credential.TokenCredential) (*Client, error) {
	return NewClientBuilder(cred).Endpoint(endpoint).Build()
}

// versionPolicy pins the service version unless the caller set one.
func versionPolicy() pipeline.Policy {
	return func(next pipeline.Handler) pipeline.Handler {
		return pipeline.HandlerFunc(func(ctx context.Context, req *pipeline.Request) (*pipeline.Response, error) {
			if req.Header().Get(HeaderVersion) == "" {
				req.Header().Set(HeaderVersion, APIVersion)
			}
			return next.Send(ctx, req)
		})
	}
}

// Endpoint returns the queue endpoint.
func (c *Client) Endpoint() string { return c.arm.Endpoint() }

// Scopes returns the token scopes.
func (c *Client) Scopes() []string { return c.arm.Scopes() }

// Service returns the account level operations.
func (c *Client) Service() ServiceClient { return ServiceClient{c: c} }

// Queue returns the operations on a queue.
func (c *Client) Queue() QueueClient { return QueueClient{c: c} }

// Messages returns the operations on the messages of a queue.
func (c *Client) Messages() MessagesClient { return MessagesClient{c: c} }

// MessageID returns the operations on a single message.
func (c *Client) MessageID() MessageIDClient { return MessageIDClient{c: c} }

// requestOptions are the optional parameters every operation shares.
type requestOptions struct {
	timeout         *int32
	clientRequestID string
}

func (o requestOptions) check(v *validation.Validator) *validation.Validator {
	if o.timeout != nil {
		v.Custom(*o.timeout >= 0, timeoutQueryParam, "must not be negative")
	}
	return v
}

// Headers are the response headers common to every operation.
type Headers struct {
	RequestID       string
	ClientRequestID string
	Version         string
	Date            time.Time
}

func headersOf(h http.Header) Headers {
	out := Headers{
		RequestID:       h.Get(pipeline.HeaderServiceRequestID),
		ClientRequestID: h.Get(pipeline.HeaderClientRequestID),
		Version:         h.Get(HeaderVersion),
	}
	if d, err := http.ParseTime(h.Get(HeaderDate)); err == nil {
		out.Date = d
	}
	return out
}

// Response is the result of an operation without a body.
type Response struct {
	Status arm.Status
	Headers
}

// call describes one request of a builder.
type call struct {
	op       string
	method   pipeline.Method
	path     string
	query    [][2]string
	header   http.Header
	body     any
	opts     requestOptions
	accepted []arm.Status
}

// send builds, sends and status-checks a request. On success the caller owns
// the response body.
func (c *Client) send(ctx context.Context, cl call) (*pipeline.Response, arm.Status, error) {
	ctx = observability.WithOperation(ctx, cl.op)
	req, err := c.arm.NewRequest(cl.method, cl.path, "")
	if err != nil {
		return nil, 0, err
	}
	for _, kv := range cl.query {
		if kv[1] != "" {
			req.SetQuery(kv[0], kv[1])
		}
	}
	if cl.opts.timeout != nil {
		req.SetQuery(timeoutQueryParam, strconv.FormatInt(int64(*cl.opts.timeout), 10))
	}
	for k, vs := range cl.header {
		for _, v := range vs {
			req.Header().Add(k, v)
		}
	}
	if cl.opts.clientRequestID != "" {
		req.Header().Set(pipeline.HeaderClientRequestID, cl.opts.clientRequestID)
	}
	if cl.body != nil {
		if err := req.SetXML(cl.body); err != nil {
			return nil, 0, err
		}
	}
	resp, err := c.arm.Send(ctx, req)
	if err != nil {
		return nil, 0, err
	}
	status, err := arm.ExpectStatus(resp, cl.accepted...)
	if err != nil {
		return nil, 0, err
	}
	return resp, status, nil
}

// exec sends cl and discards the body.
func (c *Client) exec(ctx context.Context, cl call) (Response, *pipeline.Response, error) {
	resp, status, err := c.send(ctx, cl)
	if err != nil {
		return Response{}, nil, err
	}
	_ = resp.Close()
	return Response{Status: status, Headers: headersOf(resp.Header)}, resp, nil
}

// decode sends cl and decodes the XML body into T.
func decode[T any](ctx context.Context, c *Client, cl call, model string) (T, Response, error) {
	var out T
	resp, status, err := c.send(ctx, cl)
	if err != nil {
		return out, Response{}, err
	}
	if err := resp.XML(&out, model); err != nil {
		return out, Response{}, err
	}
	return out, Response{Status: status, Headers: headersOf(resp.Header)}, nil
}

func itoa(v *int32) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(int64(*v), 10)
}

// metadataHeaders turns metadata into x-ms-meta-* headers.
func metadataHeaders(md map[string]string) http.Header {
	h := make(http.Header, len(md))
	for k, v := range md {
		h.Set(HeaderMetaPrefix+k, v)
	}
	return h
}

// metadataFrom collects x-ms-meta-* headers. Names come back lowercased.
func metadataFrom(h http.Header) map[string]string {
	md := map[string]string{}
	for k := range h {
		lk := strings.ToLower(k)
		if name, ok := strings.CutPrefix(lk, HeaderMetaPrefix); ok && name != "" {
			md[name] = h.Get(k)
		}
	}
	return md
}
