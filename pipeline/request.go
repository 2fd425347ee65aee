package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/kbukum/armkit/errors"
)

// Method is an HTTP verb accepted by the management and storage APIs.
type Method string

// Supported methods.
const (
	MethodGet    Method = http.MethodGet
	MethodPut    Method = http.MethodPut
	MethodPost   Method = http.MethodPost
	MethodPatch  Method = http.MethodPatch
	MethodDelete Method = http.MethodDelete
)

// Valid reports whether m is one of the supported methods.
func (m Method) Valid() bool {
	switch m {
	case MethodGet, MethodPut, MethodPost, MethodPatch, MethodDelete:
		return true
	}
	return false
}

// ParseMethod returns the Method for s, case-insensitively.
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToUpper(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", errors.InvalidInput("method", fmt.Sprintf("unsupported method %q", s))
	}
	return m, nil
}

// Request is an outgoing call. The body is kept as bytes so every retry
// sends the same payload.
type Request struct {
	method Method
	url    *url.URL
	header http.Header
	body   []byte
}

// NewRequest creates a request for an absolute URL.
func NewRequest(method Method, rawURL string) (*Request, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.InvalidInput("url", err.Error())
	}
	return NewRequestFromURL(method, u)
}

// NewRequestFromURL creates a request for u. The URL is copied.
func NewRequestFromURL(method Method, u *url.URL) (*Request, error) {
	if !method.Valid() {
		return nil, errors.InvalidInput("method", fmt.Sprintf("unsupported method %q", method))
	}
	if u == nil || !u.IsAbs() || u.Host == "" {
		return nil, errors.InvalidInput("url", "an absolute URL is required")
	}
	c := *u
	return &Request{method: method, url: &c, header: make(http.Header)}, nil
}

// Method returns the request method.
func (r *Request) Method() Method { return r.method }

// URL returns the request URL. Callers may modify it before Send.
func (r *Request) URL() *url.URL { return r.url }

// Header returns the request headers.
func (r *Request) Header() http.Header { return r.header }

// Body returns the request payload, or nil.
func (r *Request) Body() []byte { return r.body }

// SetQuery sets one query parameter, replacing existing values.
func (r *Request) SetQuery(key, value string) {
	q := r.url.Query()
	q.Set(key, value)
	r.url.RawQuery = q.Encode()
}

// SetQueryInt sets key when value is non-nil.
func (r *Request) SetQueryInt(key string, value *int32) {
	if value != nil {
		r.SetQuery(key, strconv.FormatInt(int64(*value), 10))
	}
}

// SetBody sets a raw payload and its content type.
func (r *Request) SetBody(body []byte, contentType string) {
	r.body = body
	if contentType != "" {
		r.header.Set("Content-Type", contentType)
	}
}

// SetJSON encodes v as the JSON payload.
func (r *Request) SetJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.DataConversion(fmt.Sprintf("%T", v), err)
	}
	r.SetBody(data, "application/json")
	return nil
}

// SetXML encodes v as the XML payload.
func (r *Request) SetXML(v any) error {
	data, err := xml.Marshal(v)
	if err != nil {
		return errors.DataConversion(fmt.Sprintf("%T", v), err)
	}
	r.SetBody(append([]byte(xml.Header), data...), "application/xml")
	return nil
}

// Clone returns a deep copy of r.
func (r *Request) Clone() *Request {
	u := *r.url
	c := &Request{method: r.method, url: &u, header: r.header.Clone()}
	if r.body != nil {
		c.body = append([]byte(nil), r.body...)
	}
	return c
}

func (r *Request) toHTTP(ctx context.Context) (*http.Request, error) {
	var body io.Reader
	if r.body != nil {
		body = bytes.NewReader(r.body)
	}
	req, err := http.NewRequestWithContext(ctx, string(r.method), r.url.String(), body)
	if err != nil {
		return nil, errors.InvalidInput("url", err.Error())
	}
	req.Header = r.header.Clone()
	if r.body == nil && (r.method == MethodPut || r.method == MethodPost || r.method == MethodPatch) {
		req.Header.Set("Content-Length", "0")
	}
	return req, nil
}
