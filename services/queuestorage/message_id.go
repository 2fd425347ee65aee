package queuestorage

import (
	"context"
	"net/http"
	"time"

	"github.com/kbukum/armkit/arm"
	"github.com/kbukum/armkit/errors"
	"github.com/kbukum/armkit/pipeline"
	"github.com/kbukum/armkit/validation"
)

// MessageIDClient groups the operations on one message.
type MessageIDClient struct {
	c *Client
}

type messageRef struct {
	queue      string
	messageID  string
	popReceipt string
}

func (r messageRef) check(opts requestOptions) *validation.Validator {
	return checkQueue(r.queue, opts).
		Required("messageid", r.messageID).
		Required("popreceipt", r.popReceipt)
}

func (r messageRef) path() string {
	return arm.ResourcePath("/%s/messages/%s", r.queue, r.messageID)
}

// UpdateResponse carries the new pop receipt. Later updates and deletes of
// the message must use it.
type UpdateResponse struct {
	Response
	PopReceipt      string
	TimeNextVisible time.Time
}

// UpdateMessageBuilder changes the visibility and optionally the content of
// a message.
type UpdateMessageBuilder struct {
	c                 *Client
	ref               messageRef
	visibilityTimeout int32
	message           *QueueMessage
	opts              requestOptions
}

// Update hides the message for visibilityTimeout seconds from now.
// popReceipt comes from Dequeue or an earlier Update.
func (m MessageIDClient) Update(queue, messageID, popReceipt string, visibilityTimeout int32) UpdateMessageBuilder {
	return UpdateMessageBuilder{
		c:                 m.c,
		ref:               messageRef{queue: queue, messageID: messageID, popReceipt: popReceipt},
		visibilityTimeout: visibilityTimeout,
	}
}

// Message replaces the message text.
func (b UpdateMessageBuilder) Message(text string) UpdateMessageBuilder {
	b.message = &QueueMessage{MessageText: text}
	return b
}

// Timeout sets the server side timeout in seconds.
func (b UpdateMessageBuilder) Timeout(seconds int32) UpdateMessageBuilder {
	b.opts.timeout = &seconds
	return b
}

// ClientRequestID sets x-ms-client-request-id.
func (b UpdateMessageBuilder) ClientRequestID(id string) UpdateMessageBuilder {
	b.opts.clientRequestID = id
	return b
}

// Send performs the request. Accepts 204.
func (b UpdateMessageBuilder) Send(ctx context.Context) (UpdateResponse, error) {
	vt := b.visibilityTimeout
	if err := b.ref.check(b.opts).Range("visibilitytimeout", int(vt), 0, maxVisibilityTimeout).Err(); err != nil {
		return UpdateResponse{}, err
	}
	cl := call{
		op:     "MessageID.Update",
		method: pipeline.MethodPut,
		path:   b.ref.path(),
		query: [][2]string{
			{"popreceipt", b.ref.popReceipt},
			{"visibilitytimeout", itoa(&vt)},
		},
		opts:     b.opts,
		accepted: []arm.Status{arm.StatusNoContent},
	}
	if b.message != nil {
		cl.body = *b.message
	}
	out, resp, err := b.c.exec(ctx, cl)
	if err != nil {
		return UpdateResponse{}, err
	}
	upd := UpdateResponse{Response: out, PopReceipt: resp.Header.Get(HeaderPopReceipt)}
	if raw := resp.Header.Get(HeaderTimeNextVisible); raw != "" {
		t, perr := http.ParseTime(raw)
		if perr != nil {
			return UpdateResponse{}, errors.DataConversion(HeaderTimeNextVisible, perr)
		}
		upd.TimeNextVisible = t
	}
	return upd, nil
}

// DeleteMessageBuilder removes a message.
type DeleteMessageBuilder struct {
	c    *Client
	ref  messageRef
	opts requestOptions
}

// Delete removes the message. popReceipt comes from Dequeue or Update.
func (m MessageIDClient) Delete(queue, messageID, popReceipt string) DeleteMessageBuilder {
	return DeleteMessageBuilder{c: m.c, ref: messageRef{queue: queue, messageID: messageID, popReceipt: popReceipt}}
}

// Timeout sets the server side timeout in seconds.
func (b DeleteMessageBuilder) Timeout(seconds int32) DeleteMessageBuilder {
	b.opts.timeout = &seconds
	return b
}

// ClientRequestID sets x-ms-client-request-id.
func (b DeleteMessageBuilder) ClientRequestID(id string) DeleteMessageBuilder {
	b.opts.clientRequestID = id
	return b
}

// Send performs the request. Accepts 204.
func (b DeleteMessageBuilder) Send(ctx context.Context) (Response, error) {
	if err := b.ref.check(b.opts).Err(); err != nil {
		return Response{}, err
	}
	out, _, err := b.c.exec(ctx, call{
		op:       "MessageID.Delete",
		method:   pipeline.MethodDelete,
		path:     b.ref.path(),
		query:    [][2]string{{"popreceipt", b.ref.popReceipt}},
		opts:     b.opts,
		accepted: []arm.Status{arm.StatusNoContent},
	})
	return out, err
}
