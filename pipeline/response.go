package pipeline

import (
	"encoding/json"
	"encoding/xml"
	stderrors "errors"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/kbukum/armkit/errors"
)

// ErrBodyConsumed is returned when a response body is read a second time.
var ErrBodyConsumed = stderrors.New("pipeline: response body already consumed")

// drainLimit bounds how much of a discarded body is read to keep the
// connection reusable.
const drainLimit = 64 << 10

// Response is the raw result of Send. The caller owns it and must consume
// or Close the body.
type Response struct {
	StatusCode int
	Header     http.Header

	mu       sync.Mutex
	body     io.ReadCloser
	consumed bool
}

// NewResponse creates a response around body, which may be nil.
func NewResponse(status int, header http.Header, body io.ReadCloser) *Response {
	if header == nil {
		header = make(http.Header)
	}
	if body == nil {
		body = http.NoBody
	}
	return &Response{StatusCode: status, Header: header, body: body}
}

// Body hands over the body stream. It succeeds once.
func (r *Response) Body() (io.ReadCloser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.consumed {
		return nil, ErrBodyConsumed
	}
	r.consumed = true
	return r.body, nil
}

// Bytes reads and closes the body.
func (r *Response) Bytes() ([]byte, error) {
	body, err := r.Body()
	if err != nil {
		return nil, err
	}
	defer func() { _ = body.Close() }()
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, errors.Transport(err)
	}
	return data, nil
}

// JSON decodes the body into v. model names the target in errors.
func (r *Response) JSON(v any, model string) error {
	data, err := r.Bytes()
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.DataConversion(model, err)
	}
	return nil
}

// XML decodes the body into v. model names the target in errors.
func (r *Response) XML(v any, model string) error {
	data, err := r.Bytes()
	if err != nil {
		return err
	}
	// Storage responses may start with a UTF-8 byte order mark.
	data = []byte(strings.TrimPrefix(string(data), "\ufeff"))
	if err := xml.Unmarshal(data, v); err != nil {
		return errors.DataConversion(model, err)
	}
	return nil
}

// Close discards any unread body.
func (r *Response) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.consumed {
		return nil
	}
	r.consumed = true
	_, _ = io.Copy(io.Discard, io.LimitReader(r.body, drainLimit))
	return r.body.Close()
}
