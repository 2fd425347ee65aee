package queuestorage

import (
	"context"
	"fmt"

	"github.com/kbukum/armkit/arm"
	"github.com/kbukum/armkit/pipeline"
	"github.com/kbukum/armkit/validation"
)

// MessagesClient groups the operations on the messages of a queue.
type MessagesClient struct {
	c *Client
}

func messagesPath(queue string) string {
	return arm.ResourcePath("/%s/messages", queue)
}

func checkCount(v *validation.Validator, n *int32) *validation.Validator {
	return v.OptionalRange("numofmessages", n, 1, maxMessagesPerCall)
}

func checkVisibility(v *validation.Validator, seconds *int32) *validation.Validator {
	return v.OptionalRange("visibilitytimeout", seconds, 0, maxVisibilityTimeout)
}

// DequeueResponse carries the retrieved messages.
type DequeueResponse struct {
	Response
	Messages []DequeuedMessage
}

// DequeueBuilder retrieves messages and hides them for a while.
type DequeueBuilder struct {
	c                 *Client
	queue             string
	numOfMessages     *int32
	visibilityTimeout *int32
	opts              requestOptions
}

// Dequeue retrieves messages from the front of queue. Each message stays
// invisible to other consumers until its TimeNextVisible.
func (m MessagesClient) Dequeue(queue string) DequeueBuilder {
	return DequeueBuilder{c: m.c, queue: queue}
}

// NumOfMessages sets how many messages to retrieve, 1 to 32. Defaults to 1.
func (b DequeueBuilder) NumOfMessages(n int32) DequeueBuilder {
	b.numOfMessages = &n
	return b
}

// VisibilityTimeout sets how long retrieved messages stay hidden, in seconds.
func (b DequeueBuilder) VisibilityTimeout(seconds int32) DequeueBuilder {
	b.visibilityTimeout = &seconds
	return b
}

// Timeout sets the server side timeout in seconds.
func (b DequeueBuilder) Timeout(seconds int32) DequeueBuilder {
	b.opts.timeout = &seconds
	return b
}

// ClientRequestID sets x-ms-client-request-id.
func (b DequeueBuilder) ClientRequestID(id string) DequeueBuilder {
	b.opts.clientRequestID = id
	return b
}

// Send performs the request. Accepts 200.
func (b DequeueBuilder) Send(ctx context.Context) (DequeueResponse, error) {
	v := checkQueue(b.queue, b.opts)
	checkVisibility(checkCount(v, b.numOfMessages), b.visibilityTimeout)
	if err := v.Err(); err != nil {
		return DequeueResponse{}, err
	}
	list, resp, err := decode[DequeuedMessagesList](ctx, b.c, call{
		op:     "Messages.Dequeue",
		method: pipeline.MethodGet,
		path:   messagesPath(b.queue),
		query: [][2]string{
			{"numofmessages", itoa(b.numOfMessages)},
			{"visibilitytimeout", itoa(b.visibilityTimeout)},
		},
		opts:     b.opts,
		accepted: []arm.Status{arm.StatusOK},
	}, "DequeuedMessagesList")
	if err != nil {
		return DequeueResponse{}, err
	}
	return DequeueResponse{Response: resp, Messages: list.Items}, nil
}

// EnqueueResponse identifies the added message.
type EnqueueResponse struct {
	Response
	Messages []EnqueuedMessage
}

// EnqueueBuilder adds a message.
type EnqueueBuilder struct {
	c                 *Client
	queue             string
	message           QueueMessage
	visibilityTimeout *int32
	messageTTL        *int32
	opts              requestOptions
}

// Enqueue adds a message with text to the back of queue.
func (m MessagesClient) Enqueue(queue, text string) EnqueueBuilder {
	return EnqueueBuilder{c: m.c, queue: queue, message: QueueMessage{MessageText: text}}
}

// VisibilityTimeout delays the first visibility of the message, in seconds.
func (b EnqueueBuilder) VisibilityTimeout(seconds int32) EnqueueBuilder {
	b.visibilityTimeout = &seconds
	return b
}

// MessageTTL sets the time to live in seconds. -1 never expires. Defaults to
// seven days.
func (b EnqueueBuilder) MessageTTL(seconds int32) EnqueueBuilder {
	b.messageTTL = &seconds
	return b
}

// Timeout sets the server side timeout in seconds.
func (b EnqueueBuilder) Timeout(seconds int32) EnqueueBuilder {
	b.opts.timeout = &seconds
	return b
}

// ClientRequestID sets x-ms-client-request-id.
func (b EnqueueBuilder) ClientRequestID(id string) EnqueueBuilder {
	b.opts.clientRequestID = id
	return b
}

func (b EnqueueBuilder) validate() error {
	v := checkVisibility(checkQueue(b.queue, b.opts), b.visibilityTimeout)
	if b.messageTTL != nil {
		ttl := *b.messageTTL
		v.Custom(ttl == infiniteMessageTTL || ttl >= 1, "messagettl", "must be -1 or at least 1")
		if b.visibilityTimeout != nil && ttl != infiniteMessageTTL {
			v.Custom(*b.visibilityTimeout < ttl, "visibilitytimeout", fmt.Sprintf("must be smaller than messagettl %d", ttl))
		}
	}
	return v.Err()
}

// Send performs the request. Accepts 201.
func (b EnqueueBuilder) Send(ctx context.Context) (EnqueueResponse, error) {
	if err := b.validate(); err != nil {
		return EnqueueResponse{}, err
	}
	list, resp, err := decode[EnqueuedMessageList](ctx, b.c, call{
		op:     "Messages.Enqueue",
		method: pipeline.MethodPost,
		path:   messagesPath(b.queue),
		query: [][2]string{
			{"visibilitytimeout", itoa(b.visibilityTimeout)},
			{"messagettl", itoa(b.messageTTL)},
		},
		body:     b.message,
		opts:     b.opts,
		accepted: []arm.Status{arm.StatusCreated},
	}, "EnqueuedMessageList")
	if err != nil {
		return EnqueueResponse{}, err
	}
	return EnqueueResponse{Response: resp, Messages: list.Items}, nil
}

// ClearBuilder deletes every message of a queue.
type ClearBuilder struct {
	c     *Client
	queue string
	opts  requestOptions
}

// Clear deletes all messages from queue.
func (m MessagesClient) Clear(queue string) ClearBuilder {
	return ClearBuilder{c: m.c, queue: queue}
}

// Timeout sets the server side timeout in seconds.
func (b ClearBuilder) Timeout(seconds int32) ClearBuilder {
	b.opts.timeout = &seconds
	return b
}

// ClientRequestID sets x-ms-client-request-id.
func (b ClearBuilder) ClientRequestID(id string) ClearBuilder {
	b.opts.clientRequestID = id
	return b
}

// Send performs the request. Accepts 204.
func (b ClearBuilder) Send(ctx context.Context) (Response, error) {
	if err := checkQueue(b.queue, b.opts).Err(); err != nil {
		return Response{}, err
	}
	out, _, err := b.c.exec(ctx, call{
		op:       "Messages.Clear",
		method:   pipeline.MethodDelete,
		path:     messagesPath(b.queue),
		opts:     b.opts,
		accepted: []arm.Status{arm.StatusNoContent},
	})
	return out, err
}

// PeekResponse carries the peeked messages.
type PeekResponse struct {
	Response
	Messages []PeekedMessage
}

// PeekBuilder reads messages without hiding them.
type PeekBuilder struct {
	c             *Client
	queue         string
	numOfMessages *int32
	opts          requestOptions
}

// Peek reads messages from the front of queue without changing their
// visibility.
func (m MessagesClient) Peek(queue string) PeekBuilder {
	return PeekBuilder{c: m.c, queue: queue}
}

// NumOfMessages sets how many messages to read, 1 to 32. Defaults to 1.
func (b PeekBuilder) NumOfMessages(n int32) PeekBuilder {
	b.numOfMessages = &n
	return b
}

// Timeout sets the server side timeout in seconds.
func (b PeekBuilder) Timeout(seconds int32) PeekBuilder {
	b.opts.timeout = &seconds
	return b
}

// ClientRequestID sets x-ms-client-request-id.
func (b PeekBuilder) ClientRequestID(id string) PeekBuilder {
	b.opts.clientRequestID = id
	return b
}

// Send performs the request. Accepts 200.
func (b PeekBuilder) Send(ctx context.Context) (PeekResponse, error) {
	if err := checkCount(checkQueue(b.queue, b.opts), b.numOfMessages).Err(); err != nil {
		return PeekResponse{}, err
	}
	list, resp, err := decode[PeekedMessagesList](ctx, b.c, call{
		op:     "Messages.Peek",
		method: pipeline.MethodGet,
		path:   messagesPath(b.queue),
		query: [][2]string{
			{"peekonly", "true"},
			{"numofmessages", itoa(b.numOfMessages)},
		},
		opts:     b.opts,
		accepted: []arm.Status{arm.StatusOK},
	}, "PeekedMessagesList")
	if err != nil {
		return PeekResponse{}, err
	}
	return PeekResponse{Response: resp, Messages: list.Items}, nil
}
