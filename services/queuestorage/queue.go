package queuestorage

import (
	"context"
	"maps"
	"strconv"

	"github.com/kbukum/armkit/arm"
	"github.com/kbukum/armkit/errors"
	"github.com/kbukum/armkit/pipeline"
	"github.com/kbukum/armkit/validation"
)

// QueueClient groups the operations on a queue.
type QueueClient struct {
	c *Client
}

func queuePath(queue string) string {
	return arm.ResourcePath("/%s", queue)
}

func checkQueue(queue string, opts requestOptions) *validation.Validator {
	return opts.check(validation.New().QueueName("queueName", queue))
}

// CreateQueueBuilder creates a queue.
type CreateQueueBuilder struct {
	c        *Client
	queue    string
	metadata map[string]string
	opts     requestOptions
}

// Create creates queue. Creating a queue that exists with the same metadata
// succeeds with NoContent.
func (q QueueClient) Create(queue string) CreateQueueBuilder {
	return CreateQueueBuilder{c: q.c, queue: queue}
}

// Metadata sets the name/value pairs stored with the queue.
func (b CreateQueueBuilder) Metadata(md map[string]string) CreateQueueBuilder {
	b.metadata = maps.Clone(md)
	return b
}

// Timeout sets the server side timeout in seconds.
func (b CreateQueueBuilder) Timeout(seconds int32) CreateQueueBuilder {
	b.opts.timeout = &seconds
	return b
}

// ClientRequestID sets x-ms-client-request-id.
func (b CreateQueueBuilder) ClientRequestID(id string) CreateQueueBuilder {
	b.opts.clientRequestID = id
	return b
}

// Send performs the request. Accepts 201 and 204.
func (b CreateQueueBuilder) Send(ctx context.Context) (Response, error) {
	if err := checkQueue(b.queue, b.opts).Err(); err != nil {
		return Response{}, err
	}
	out, _, err := b.c.exec(ctx, call{
		op:       "Queue.Create",
		method:   pipeline.MethodPut,
		path:     queuePath(b.queue),
		header:   metadataHeaders(b.metadata),
		opts:     b.opts,
		accepted: []arm.Status{arm.StatusCreated, arm.StatusNoContent},
	})
	return out, err
}

// DeleteQueueBuilder deletes a queue.
type DeleteQueueBuilder struct {
	c     *Client
	queue string
	opts  requestOptions
}

// Delete deletes queue and its messages.
func (q QueueClient) Delete(queue string) DeleteQueueBuilder {
	return DeleteQueueBuilder{c: q.c, queue: queue}
}

// Timeout sets the server side timeout in seconds.
func (b DeleteQueueBuilder) Timeout(seconds int32) DeleteQueueBuilder {
	b.opts.timeout = &seconds
	return b
}

// ClientRequestID sets x-ms-client-request-id.
func (b DeleteQueueBuilder) ClientRequestID(id string) DeleteQueueBuilder {
	b.opts.clientRequestID = id
	return b
}

// Send performs the request. Accepts 204.
func (b DeleteQueueBuilder) Send(ctx context.Context) (Response, error) {
	if err := checkQueue(b.queue, b.opts).Err(); err != nil {
		return Response{}, err
	}
	out, _, err := b.c.exec(ctx, call{
		op:       "Queue.Delete",
		method:   pipeline.MethodDelete,
		path:     queuePath(b.queue),
		opts:     b.opts,
		accepted: []arm.Status{arm.StatusNoContent},
	})
	return out, err
}

// QueuePropertiesResponse carries the metadata and approximate size of a
// queue.
type QueuePropertiesResponse struct {
	Response
	Metadata                 map[string]string
	ApproximateMessagesCount int64
}

// GetQueuePropertiesBuilder reads queue metadata.
type GetQueuePropertiesBuilder struct {
	c     *Client
	queue string
	opts  requestOptions
}

// GetProperties reads the metadata and approximate message count of queue.
func (q QueueClient) GetProperties(queue string) GetQueuePropertiesBuilder {
	return GetQueuePropertiesBuilder{c: q.c, queue: queue}
}

// Timeout sets the server side timeout in seconds.
func (b GetQueuePropertiesBuilder) Timeout(seconds int32) GetQueuePropertiesBuilder {
	b.opts.timeout = &seconds
	return b
}

// ClientRequestID sets x-ms-client-request-id.
func (b GetQueuePropertiesBuilder) ClientRequestID(id string) GetQueuePropertiesBuilder {
	b.opts.clientRequestID = id
	return b
}

// Send performs the request. Accepts 200.
func (b GetQueuePropertiesBuilder) Send(ctx context.Context) (QueuePropertiesResponse, error) {
	if err := checkQueue(b.queue, b.opts).Err(); err != nil {
		return QueuePropertiesResponse{}, err
	}
	out, resp, err := b.c.exec(ctx, call{
		op:       "Queue.GetProperties",
		method:   pipeline.MethodGet,
		path:     queuePath(b.queue),
		query:    [][2]string{{"comp", "metadata"}},
		opts:     b.opts,
		accepted: []arm.Status{arm.StatusOK},
	})
	if err != nil {
		return QueuePropertiesResponse{}, err
	}
	props := QueuePropertiesResponse{Response: out, Metadata: metadataFrom(resp.Header)}
	if raw := resp.Header.Get(HeaderMessageCount); raw != "" {
		n, perr := strconv.ParseInt(raw, 10, 64)
		if perr != nil {
			return QueuePropertiesResponse{}, errors.DataConversion(HeaderMessageCount, perr)
		}
		props.ApproximateMessagesCount = n
	}
	return props, nil
}

// SetMetadataBuilder replaces queue metadata.
type SetMetadataBuilder struct {
	c        *Client
	queue    string
	metadata map[string]string
	opts     requestOptions
}

// SetMetadata replaces the metadata of queue. No metadata clears it.
func (q QueueClient) SetMetadata(queue string) SetMetadataBuilder {
	return SetMetadataBuilder{c: q.c, queue: queue}
}

// Metadata sets the name/value pairs to store.
func (b SetMetadataBuilder) Metadata(md map[string]string) SetMetadataBuilder {
	b.metadata = maps.Clone(md)
	return b
}

// Timeout sets the server side timeout in seconds.
func (b SetMetadataBuilder) Timeout(seconds int32) SetMetadataBuilder {
	b.opts.timeout = &seconds
	return b
}

// ClientRequestID sets x-ms-client-request-id.
func (b SetMetadataBuilder) ClientRequestID(id string) SetMetadataBuilder {
	b.opts.clientRequestID = id
	return b
}

// Send performs the request. Accepts 204.
func (b SetMetadataBuilder) Send(ctx context.Context) (Response, error) {
	if err := checkQueue(b.queue, b.opts).Err(); err != nil {
		return Response{}, err
	}
	out, _, err := b.c.exec(ctx, call{
		op:       "Queue.SetMetadata",
		method:   pipeline.MethodPut,
		path:     queuePath(b.queue),
		query:    [][2]string{{"comp", "metadata"}},
		header:   metadataHeaders(b.metadata),
		opts:     b.opts,
		accepted: []arm.Status{arm.StatusNoContent},
	})
	return out, err
}

// AccessPolicyResponse carries the stored access policies of a queue.
type AccessPolicyResponse struct {
	Response
	Identifiers []SignedIdentifier
}

// GetAccessPolicyBuilder reads stored access policies.
type GetAccessPolicyBuilder struct {
	c     *Client
	queue string
	opts  requestOptions
}

// GetAccessPolicy reads the stored access policies of queue.
func (q QueueClient) GetAccessPolicy(queue string) GetAccessPolicyBuilder {
	return GetAccessPolicyBuilder{c: q.c, queue: queue}
}

// Timeout sets the server side timeout in seconds.
func (b GetAccessPolicyBuilder) Timeout(seconds int32) GetAccessPolicyBuilder {
	b.opts.timeout = &seconds
	return b
}

// ClientRequestID sets x-ms-client-request-id.
func (b GetAccessPolicyBuilder) ClientRequestID(id string) GetAccessPolicyBuilder {
	b.opts.clientRequestID = id
	return b
}

// Send performs the request. Accepts 200.
func (b GetAccessPolicyBuilder) Send(ctx context.Context) (AccessPolicyResponse, error) {
	if err := checkQueue(b.queue, b.opts).Err(); err != nil {
		return AccessPolicyResponse{}, err
	}
	ids, resp, err := decode[SignedIdentifiers](ctx, b.c, call{
		op:       "Queue.GetAccessPolicy",
		method:   pipeline.MethodGet,
		path:     queuePath(b.queue),
		query:    [][2]string{{"comp", "acl"}},
		opts:     b.opts,
		accepted: []arm.Status{arm.StatusOK},
	}, "SignedIdentifiers")
	if err != nil {
		return AccessPolicyResponse{}, err
	}
	return AccessPolicyResponse{Response: resp, Identifiers: ids.Items}, nil
}

// SetAccessPolicyBuilder replaces stored access policies.
type SetAccessPolicyBuilder struct {
	c           *Client
	queue       string
	identifiers []SignedIdentifier
	opts        requestOptions
}

// SetAccessPolicy replaces the stored access policies of queue. The service
// allows at most five.
func (q QueueClient) SetAccessPolicy(queue string, identifiers ...SignedIdentifier) SetAccessPolicyBuilder {
	return SetAccessPolicyBuilder{c: q.c, queue: queue, identifiers: append([]SignedIdentifier(nil), identifiers...)}
}

// Timeout sets the server side timeout in seconds.
func (b SetAccessPolicyBuilder) Timeout(seconds int32) SetAccessPolicyBuilder {
	b.opts.timeout = &seconds
	return b
}

// ClientRequestID sets x-ms-client-request-id.
func (b SetAccessPolicyBuilder) ClientRequestID(id string) SetAccessPolicyBuilder {
	b.opts.clientRequestID = id
	return b
}

// Send performs the request. Accepts 204.
func (b SetAccessPolicyBuilder) Send(ctx context.Context) (Response, error) {
	v := checkQueue(b.queue, b.opts).Range("signedIdentifiers", len(b.identifiers), 0, 5)
	for _, id := range b.identifiers {
		v.Required("signedIdentifier.id", id.ID).MaxLength("signedIdentifier.id", id.ID, 64)
	}
	if err := v.Err(); err != nil {
		return Response{}, err
	}
	out, _, err := b.c.exec(ctx, call{
		op:       "Queue.SetAccessPolicy",
		method:   pipeline.MethodPut,
		path:     queuePath(b.queue),
		query:    [][2]string{{"comp", "acl"}},
		body:     SignedIdentifiers{Items: b.identifiers},
		opts:     b.opts,
		accepted: []arm.Status{arm.StatusNoContent},
	})
	return out, err
}
