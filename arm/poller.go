package arm

import (
	"context"
	"encoding/base64"
	"encoding/json"
	stderrors "errors"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/kbukum/armkit/errors"
	"github.com/kbukum/armkit/logger"
	"github.com/kbukum/armkit/observability"
	"github.com/kbukum/armkit/pipeline"
	"github.com/kbukum/armkit/resilience"
)

// Long-running operation headers.
const (
	HeaderAzureAsyncOperation = "Azure-AsyncOperation"
	HeaderLocation            = "Location"
)

// DefaultPollFrequency is the delay between polls when the service sends no
// Retry-After.
const DefaultPollFrequency = 30 * time.Second

// Terminal operation states.
const (
	StateSucceeded = "Succeeded"
	StateFailed    = "Failed"
	StateCanceled  = "Canceled"
)

// ErrPollerInProgress is returned by Result before a terminal state.
var ErrPollerInProgress = stderrors.New("arm: operation has not reached a terminal state")

// ErrPollerDone is returned by ResumeToken once the operation finished.
var ErrPollerDone = stderrors.New("arm: operation already finished")

// PollerOptions tunes a Poller.
type PollerOptions struct {
	// Frequency is used when a response carries no Retry-After.
	// Defaults to DefaultPollFrequency.
	Frequency time.Duration
}

type pollKind string

const (
	pollAsync    pollKind = "async"
	pollLocation pollKind = "location"
)

// pollerState is everything needed to continue polling elsewhere.
type pollerState struct {
	Kind        pollKind        `json:"kind"`
	Method      pipeline.Method `json:"method"`
	ResourceURL string          `json:"resourceUrl"`
	PollURL     string          `json:"pollUrl"`
	FinalURL    string          `json:"finalUrl,omitempty"`
	Status      string          `json:"status"`
}

// Poller tracks a long-running operation until it reaches a terminal state.
// It is safe for concurrent use; polls are serialized.
type Poller[T any] struct {
	client *Client
	freq   time.Duration
	log    *logger.Logger

	mu         sync.Mutex
	state      pollerState
	retryAfter time.Duration
	lastBody   []byte
	done       bool
	result     T
	err        error
}

// NewPoller starts tracking the operation whose first response is resp.
// A response without Azure-AsyncOperation or Location is final: its body,
// if any, is decoded into T right away. resp is consumed either way.
func NewPoller[T any](c *Client, req *pipeline.Request, resp *pipeline.Response, opts *PollerOptions) (*Poller[T], error) {
	p := newPoller[T](c, opts)
	p.state = pollerState{
		Method:      req.Method(),
		ResourceURL: req.URL().String(),
		Status:      "InProgress",
	}

	async := resp.Header.Get(HeaderAzureAsyncOperation)
	location := resp.Header.Get(HeaderLocation)
	switch {
	case async != "":
		p.state.Kind = pollAsync
		p.state.PollURL = async
		p.state.FinalURL = location
	case location != "":
		p.state.Kind = pollLocation
		p.state.PollURL = location
	default:
		defer func() { _ = resp.Close() }()
		p.done = true
		p.state.Status = StateSucceeded
		if resp.StatusCode == int(StatusNoContent) {
			return p, nil
		}
		data, err := resp.Bytes()
		if err != nil {
			return nil, err
		}
		if err := decodeResult(data, &p.result); err != nil {
			return nil, err
		}
		return p, nil
	}

	if err := p.resolveURLs(); err != nil {
		_ = resp.Close()
		return nil, err
	}
	p.retryAfter = pipeline.RetryAfter(resp.Header, time.Now())
	_ = resp.Close()
	p.log.Debug("operation started", logger.Fields(
		logger.FieldMethod, string(p.state.Method),
		"poll_kind", string(p.state.Kind),
	))
	return p, nil
}

// NewPollerFromResumeToken rebuilds a Poller from ResumeToken output.
func NewPollerFromResumeToken[T any](c *Client, token string, opts *PollerOptions) (*Poller[T], error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, errors.InvalidInput("resume_token", "not a valid token")
	}
	var st pollerState
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, errors.InvalidInput("resume_token", "not a valid token")
	}
	if st.PollURL == "" || (st.Kind != pollAsync && st.Kind != pollLocation) {
		return nil, errors.InvalidInput("resume_token", "missing polling state")
	}
	p := newPoller[T](c, opts)
	p.state = st
	if err := p.resolveURLs(); err != nil {
		return nil, err
	}
	return p, nil
}

func newPoller[T any](c *Client, opts *PollerOptions) *Poller[T] {
	freq := DefaultPollFrequency
	if opts != nil && opts.Frequency > 0 {
		freq = opts.Frequency
	}
	return &Poller[T]{client: c, freq: freq, log: logger.WithComponent("lro")}
}

// resolveURLs makes relative polling URLs absolute against the endpoint.
func (p *Poller[T]) resolveURLs() error {
	for _, target := range []*string{&p.state.PollURL, &p.state.FinalURL} {
		if *target == "" {
			continue
		}
		u, err := url.Parse(*target)
		if err != nil {
			return errors.InvalidInput("polling_url", err.Error())
		}
		if !u.IsAbs() {
			base, _ := url.Parse(p.client.endpoint + "/")
			u = base.ResolveReference(u)
		}
		*target = u.String()
	}
	return nil
}

// Done reports whether the operation reached a terminal state.
func (p *Poller[T]) Done() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// Status returns the last status reported by the service.
func (p *Poller[T]) Status() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.Status
}

// Result returns the final value, the terminal error, or
// ErrPollerInProgress.
func (p *Poller[T]) Result() (T, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.done {
		var zero T
		return zero, ErrPollerInProgress
	}
	return p.result, p.err
}

// ResumeToken serializes the polling state of an unfinished operation.
func (p *Poller[T]) ResumeToken() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done {
		return "", ErrPollerDone
	}
	raw, err := json.Marshal(p.state)
	if err != nil {
		return "", errors.Internal(err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// Poll issues one status request. Transport and HTTP errors are returned
// without ending the operation so the caller may poll again. Once terminal,
// Poll returns the terminal error without another request.
func (p *Poller[T]) Poll(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done {
		return p.err
	}

	req, err := pipeline.NewRequest(pipeline.MethodGet, p.state.PollURL)
	if err != nil {
		return err
	}
	resp, err := p.client.Send(ctx, req)
	if err != nil {
		return err
	}
	p.retryAfter = pipeline.RetryAfter(resp.Header, time.Now())

	switch p.state.Kind {
	case pollAsync:
		if _, err := ExpectStatus(resp, StatusOK, StatusCreated, StatusAccepted); err != nil {
			return err
		}
		if h := resp.Header.Get(HeaderAzureAsyncOperation); h != "" {
			p.state.PollURL = h
			if err := p.resolveURLs(); err != nil {
				_ = resp.Close()
				return err
			}
		}
		data, err := resp.Bytes()
		if err != nil {
			return err
		}
		st, err := parseOperationStatus(data)
		if err != nil {
			return err
		}
		if st.state() == "" {
			return errors.DataConversion("OperationStatus", stderrors.New("status is missing"))
		}
		p.state.Status = st.state()
		return p.settle(ctx, st)

	default:
		s, err := ExpectStatus(resp, StatusOK, StatusCreated, StatusAccepted, StatusNoContent)
		if err != nil {
			return err
		}
		if s == StatusAccepted {
			if h := resp.Header.Get(HeaderLocation); h != "" {
				p.state.PollURL = h
			}
			_ = resp.Close()
			return p.resolveURLs()
		}
		data, err := resp.Bytes()
		if err != nil {
			return err
		}
		p.lastBody = data
		st, _ := parseOperationStatus(data)
		p.state.Status = st.state()
		if p.state.Status == "" {
			p.state.Status = StateSucceeded
		}
		return p.settle(ctx, st)
	}
}

// settle moves to a terminal state when the reported state is one.
func (p *Poller[T]) settle(ctx context.Context, st operationStatus) error {
	fields := logger.Fields(logger.FieldMethod, string(p.state.Method), "status", p.state.Status)
	switch {
	case strings.EqualFold(p.state.Status, StateSucceeded):
		if err := p.fetchResult(ctx); err != nil {
			return err
		}
		p.done = true
		p.log.Debug("operation succeeded", fields)
		return nil
	case strings.EqualFold(p.state.Status, StateFailed):
		code, msg := st.errorInfo()
		p.finish(errors.OperationFailed(code, msg))
		p.log.Warn("operation failed", logger.MergeWithError(fields, p.err))
		return p.err
	case strings.EqualFold(p.state.Status, StateCanceled), strings.EqualFold(p.state.Status, "Cancelled"):
		appErr := errors.OperationCanceled()
		if code, msg := st.errorInfo(); code != "" || msg != "" {
			appErr.ServerCode = code
			appErr = appErr.WithDetail("server_message", msg)
		}
		p.finish(appErr)
		p.log.Warn("operation canceled", fields)
		return p.err
	}
	return nil
}

func (p *Poller[T]) finish(err error) {
	p.done = true
	p.err = err
}

// fetchResult loads T once the operation succeeded. PUT and PATCH read the
// resource itself; POST reads the final body or the Location target; DELETE
// has no result.
func (p *Poller[T]) fetchResult(ctx context.Context) error {
	var target string
	switch p.state.Method {
	case pipeline.MethodPut, pipeline.MethodPatch:
		target = p.state.ResourceURL
	case pipeline.MethodPost:
		if p.state.Kind == pollLocation {
			return decodeResult(p.lastBody, &p.result)
		}
		target = p.state.FinalURL
	}
	if target == "" {
		return nil
	}

	req, err := pipeline.NewRequest(pipeline.MethodGet, target)
	if err != nil {
		return err
	}
	resp, err := p.client.Send(ctx, req)
	if err != nil {
		return err
	}
	if _, err := ExpectStatus(resp, StatusOK); err != nil {
		return err
	}
	data, err := resp.Bytes()
	if err != nil {
		return err
	}
	return decodeResult(data, &p.result)
}

// PollUntilDone polls until a terminal state, waiting Retry-After or the
// poll frequency between requests.
func (p *Poller[T]) PollUntilDone(ctx context.Context) (T, error) {
	p.mu.Lock()
	method := p.state.Method
	p.mu.Unlock()
	ctx, span := observability.StartSpan(ctx, "LRO "+string(method))
	defer span.End()

	var zero T
	for {
		if p.Done() {
			res, err := p.Result()
			observability.SetSpanError(ctx, err)
			return res, err
		}

		p.mu.Lock()
		delay := p.retryAfter
		p.mu.Unlock()
		if delay <= 0 {
			delay = p.freq
		}
		if err := resilience.Sleep(ctx, delay); err != nil {
			if stderrors.Is(err, context.DeadlineExceeded) {
				err = errors.Timeout("poll", err)
			}
			observability.SetSpanError(ctx, err)
			return zero, err
		}
		if err := p.Poll(ctx); err != nil && !p.Done() {
			observability.SetSpanError(ctx, err)
			return zero, err
		}
	}
}

// operationStatus covers both the async operation resource and a resource
// body carrying properties.provisioningState.
type operationStatus struct {
	Status     string `json:"status"`
	Properties *struct {
		ProvisioningState string `json:"provisioningState"`
	} `json:"properties"`
	Error *jsonError `json:"error"`
}

func (s operationStatus) state() string {
	if s.Status != "" {
		return s.Status
	}
	if s.Properties != nil {
		return s.Properties.ProvisioningState
	}
	return ""
}

func (s operationStatus) errorInfo() (code, message string) {
	if s.Error == nil {
		return "", ""
	}
	return s.Error.Code, s.Error.Message
}

func parseOperationStatus(data []byte) (operationStatus, error) {
	var st operationStatus
	if len(strings.TrimSpace(string(data))) == 0 {
		return st, nil
	}
	if err := json.Unmarshal(data, &st); err != nil {
		return st, errors.DataConversion("OperationStatus", err)
	}
	return st, nil
}

func decodeResult[T any](data []byte, v *T) error {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.DataConversion("result", err)
	}
	return nil
}
