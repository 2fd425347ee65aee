package queuestorage

import (
	"context"
	"strings"

	"github.com/kbukum/armkit/arm"
	"github.com/kbukum/armkit/pager"
	"github.com/kbukum/armkit/pipeline"
	"github.com/kbukum/armkit/validation"
)

// IncludeMetadata asks ListQueues to return queue metadata.
const IncludeMetadata = "metadata"

// ServiceClient groups the account level operations.
type ServiceClient struct {
	c *Client
}

// ServicePropertiesResponse carries the account properties.
type ServicePropertiesResponse struct {
	Response
	Properties StorageServiceProperties
}

// GetPropertiesBuilder reads the analytics and CORS settings.
type GetPropertiesBuilder struct {
	c    *Client
	opts requestOptions
}

// GetProperties reads the account properties.
func (s ServiceClient) GetProperties() GetPropertiesBuilder {
	return GetPropertiesBuilder{c: s.c}
}

// Timeout sets the server side timeout in seconds.
func (b GetPropertiesBuilder) Timeout(seconds int32) GetPropertiesBuilder {
	b.opts.timeout = &seconds
	return b
}

// ClientRequestID sets x-ms-client-request-id.
func (b GetPropertiesBuilder) ClientRequestID(id string) GetPropertiesBuilder {
	b.opts.clientRequestID = id
	return b
}

// Send performs the request. Accepts 200.
func (b GetPropertiesBuilder) Send(ctx context.Context) (ServicePropertiesResponse, error) {
	if err := b.opts.check(validation.New()).Err(); err != nil {
		return ServicePropertiesResponse{}, err
	}
	props, resp, err := decode[StorageServiceProperties](ctx, b.c, call{
		op:       "Service.GetProperties",
		method:   pipeline.MethodGet,
		path:     "/",
		query:    [][2]string{{"restype", "service"}, {"comp", "properties"}},
		opts:     b.opts,
		accepted: []arm.Status{arm.StatusOK},
	}, "StorageServiceProperties")
	if err != nil {
		return ServicePropertiesResponse{}, err
	}
	return ServicePropertiesResponse{Response: resp, Properties: props}, nil
}

// SetPropertiesBuilder replaces the analytics and CORS settings.
type SetPropertiesBuilder struct {
	c     *Client
	props StorageServiceProperties
	opts  requestOptions
}

// SetProperties replaces the account properties. Sections left nil are not
// changed by the service.
func (s ServiceClient) SetProperties(props StorageServiceProperties) SetPropertiesBuilder {
	return SetPropertiesBuilder{c: s.c, props: props}
}

// Timeout sets the server side timeout in seconds.
func (b SetPropertiesBuilder) Timeout(seconds int32) SetPropertiesBuilder {
	b.opts.timeout = &seconds
	return b
}

// ClientRequestID sets x-ms-client-request-id.
func (b SetPropertiesBuilder) ClientRequestID(id string) SetPropertiesBuilder {
	b.opts.clientRequestID = id
	return b
}

// Send performs the request. Accepts 202.
func (b SetPropertiesBuilder) Send(ctx context.Context) (Response, error) {
	if err := b.opts.check(validation.New()).Err(); err != nil {
		return Response{}, err
	}
	out, _, err := b.c.exec(ctx, call{
		op:       "Service.SetProperties",
		method:   pipeline.MethodPut,
		path:     "/",
		query:    [][2]string{{"restype", "service"}, {"comp", "properties"}},
		body:     b.props,
		opts:     b.opts,
		accepted: []arm.Status{arm.StatusAccepted},
	})
	return out, err
}

// ServiceStatsResponse carries the replication statistics.
type ServiceStatsResponse struct {
	Response
	Stats StorageServiceStats
}

// GetStatisticsBuilder reads the secondary replication state. It only
// succeeds against the secondary endpoint of a read-access geo-redundant
// account.
type GetStatisticsBuilder struct {
	c    *Client
	opts requestOptions
}

// GetStatistics reads the replication statistics.
func (s ServiceClient) GetStatistics() GetStatisticsBuilder {
	return GetStatisticsBuilder{c: s.c}
}

// Timeout sets the server side timeout in seconds.
func (b GetStatisticsBuilder) Timeout(seconds int32) GetStatisticsBuilder {
	b.opts.timeout = &seconds
	return b
}

// ClientRequestID sets x-ms-client-request-id.
func (b GetStatisticsBuilder) ClientRequestID(id string) GetStatisticsBuilder {
	b.opts.clientRequestID = id
	return b
}

// Send performs the request. Accepts 200.
func (b GetStatisticsBuilder) Send(ctx context.Context) (ServiceStatsResponse, error) {
	if err := b.opts.check(validation.New()).Err(); err != nil {
		return ServiceStatsResponse{}, err
	}
	stats, resp, err := decode[StorageServiceStats](ctx, b.c, call{
		op:       "Service.GetStatistics",
		method:   pipeline.MethodGet,
		path:     "/",
		query:    [][2]string{{"restype", "service"}, {"comp", "stats"}},
		opts:     b.opts,
		accepted: []arm.Status{arm.StatusOK},
	}, "StorageServiceStats")
	if err != nil {
		return ServiceStatsResponse{}, err
	}
	return ServiceStatsResponse{Response: resp, Stats: stats}, nil
}

// ListQueuesBuilder lists the queues of the account.
type ListQueuesBuilder struct {
	c          *Client
	prefix     string
	marker     string
	maxResults *int32
	include    []string
	opts       requestOptions
}

// ListQueues lists queues, one segment per page.
func (s ServiceClient) ListQueues() ListQueuesBuilder {
	return ListQueuesBuilder{c: s.c}
}

// Prefix keeps only queues whose name starts with prefix.
func (b ListQueuesBuilder) Prefix(prefix string) ListQueuesBuilder {
	b.prefix = prefix
	return b
}

// Marker starts the listing at a NextMarker saved from an earlier segment.
func (b ListQueuesBuilder) Marker(marker string) ListQueuesBuilder {
	b.marker = marker
	return b
}

// MaxResults caps the queues per page. The service allows up to 5000.
func (b ListQueuesBuilder) MaxResults(n int32) ListQueuesBuilder {
	b.maxResults = &n
	return b
}

// Include asks for extra data on each queue, see IncludeMetadata.
func (b ListQueuesBuilder) Include(values ...string) ListQueuesBuilder {
	b.include = append(append([]string(nil), b.include...), values...)
	return b
}

// Timeout sets the server side timeout in seconds.
func (b ListQueuesBuilder) Timeout(seconds int32) ListQueuesBuilder {
	b.opts.timeout = &seconds
	return b
}

// ClientRequestID sets x-ms-client-request-id on every page request.
func (b ListQueuesBuilder) ClientRequestID(id string) ListQueuesBuilder {
	b.opts.clientRequestID = id
	return b
}

func (b ListQueuesBuilder) validate() error {
	v := b.opts.check(validation.New()).OptionalRange("maxresults", b.maxResults, 1, 5000)
	for _, inc := range b.include {
		v.OneOf("include", inc, []string{IncludeMetadata})
	}
	return v.Err()
}

// Pager returns a cursor over the segments. The first request sends the
// Marker, if any. The NextMarker of each segment is sent back as marker; an
// empty NextMarker ends the sequence.
func (b ListQueuesBuilder) Pager() *pager.Pager[ListQueuesSegmentResponse] {
	const op = "Service.ListQueues"
	return pager.New(pager.Handler[ListQueuesSegmentResponse]{
		Operation: op,
		Metrics:   b.c.arm.Pipeline().Metrics(),
		Fetcher: func(ctx context.Context, marker *string) (ListQueuesSegmentResponse, error) {
			if err := b.validate(); err != nil {
				return ListQueuesSegmentResponse{}, err
			}
			cl := call{
				op:     op,
				method: pipeline.MethodGet,
				path:   "/",
				query: [][2]string{
					{"comp", "list"},
					{"prefix", b.prefix},
					{"maxresults", itoa(b.maxResults)},
					{"include", strings.Join(b.include, ",")},
				},
				opts:     b.opts,
				accepted: []arm.Status{arm.StatusOK},
			}
			switch {
			case marker != nil:
				cl.query = append(cl.query, [2]string{"marker", *marker})
			case b.marker != "":
				cl.query = append(cl.query, [2]string{"marker", b.marker})
			}
			page, _, err := decode[ListQueuesSegmentResponse](ctx, b.c, cl, "ListQueuesSegmentResponse")
			return page, err
		},
		NextLink: func(page ListQueuesSegmentResponse) string { return page.NextMarker },
	})
}
