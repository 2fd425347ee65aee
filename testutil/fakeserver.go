package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// Reply is one canned response.
type Reply struct {
	Status int
	Header http.Header
	Body   string
}

// JSONReply encodes v as a JSON reply.
func JSONReply(status int, v any) Reply {
	data, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("testutil: cannot encode reply: %v", err))
	}
	return Reply{Status: status, Header: http.Header{"Content-Type": {"application/json"}}, Body: string(data)}
}

// XMLReply wraps an XML document.
func XMLReply(status int, body string) Reply {
	return Reply{Status: status, Header: http.Header{"Content-Type": {"application/xml"}}, Body: body}
}

// StatusReply has no body.
func StatusReply(status int) Reply {
	return Reply{Status: status}
}

// WithHeader returns a copy of r with an extra header.
func (r Reply) WithHeader(key, value string) Reply {
	h := r.Header.Clone()
	if h == nil {
		h = make(http.Header)
	}
	h.Set(key, value)
	r.Header = h
	return r
}

// RecordedRequest is a request the server received.
type RecordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

type routeKey struct{ method, path string }

type fakeState struct {
	requests []RecordedRequest
	served   map[routeKey]int
}

// FakeServer is a scriptable HTTP service backed by a gin engine and an
// httptest.Server. Routes use gin path syntax; every request is recorded.
type FakeServer struct {
	mu      sync.RWMutex
	engine  *gin.Engine
	ts      *httptest.Server
	started bool
	state   fakeState
}

var _ TestComponent = (*FakeServer)(nil)

// NewFakeServer creates a stopped server. Register routes, then Start it.
func NewFakeServer() *FakeServer {
	s := &FakeServer{}
	s.engine = s.newEngine()
	s.state.served = map[routeKey]int{}
	return s
}

// StartFakeServer creates and starts a server that stops with t.
func StartFakeServer(t testing.TB) *FakeServer {
	t.Helper()
	s := NewFakeServer()
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("failed to start fake server: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Stop(context.Background()); err != nil {
			t.Errorf("failed to stop fake server: %v", err)
		}
	})
	return s
}

func (s *FakeServer) newEngine() *gin.Engine {
	e := gin.New()
	e.Use(gin.Recovery(), s.record)
	e.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{
			"code":    "NoRoute",
			"message": c.Request.Method + " " + c.Request.URL.Path + " is not scripted",
		}})
	})
	return e
}

func (s *FakeServer) record(c *gin.Context) {
	body, _ := io.ReadAll(c.Request.Body)
	s.mu.Lock()
	s.state.requests = append(s.state.requests, RecordedRequest{
		Method: c.Request.Method,
		Path:   c.Request.URL.Path,
		Query:  c.Request.URL.Query(),
		Header: c.Request.Header.Clone(),
		Body:   body,
	})
	s.mu.Unlock()
	c.Next()
}

// ServeHTTP dispatches to the current engine so Reset can swap it.
func (s *FakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	e := s.engine
	s.mu.RUnlock()
	e.ServeHTTP(w, r)
}

// Handle registers a gin handler.
func (s *FakeServer) Handle(method, path string, h gin.HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.Handle(method, path, h)
}

// Script serves replies in order for method and path; the last reply
// repeats once the script runs out.
func (s *FakeServer) Script(method, path string, replies ...Reply) {
	if len(replies) == 0 {
		panic("testutil: Script needs at least one reply")
	}
	key := routeKey{method, path}
	s.Handle(method, path, func(c *gin.Context) {
		s.mu.Lock()
		n := s.state.served[key]
		s.state.served[key] = n + 1
		s.mu.Unlock()
		if n >= len(replies) {
			n = len(replies) - 1
		}
		write(c, replies[n])
	})
}

func write(c *gin.Context, r Reply) {
	for k, vs := range r.Header {
		for _, v := range vs {
			c.Writer.Header().Add(k, v)
		}
	}
	status := r.Status
	if status == 0 {
		status = http.StatusOK
	}
	c.Status(status)
	if r.Body != "" {
		_, _ = c.Writer.WriteString(r.Body)
	}
}

// URL returns the base URL, or "" before Start.
func (s *FakeServer) URL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.ts == nil {
		return ""
	}
	return s.ts.URL
}

// Client returns an HTTP client wired to the server.
func (s *FakeServer) Client() *http.Client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.ts == nil {
		return http.DefaultClient
	}
	return s.ts.Client()
}

// Requests returns every recorded request in arrival order.
func (s *FakeServer) Requests() []RecordedRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]RecordedRequest(nil), s.state.requests...)
}

// LastRequest returns the most recent request.
func (s *FakeServer) LastRequest() (RecordedRequest, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.state.requests) == 0 {
		return RecordedRequest{}, false
	}
	return s.state.requests[len(s.state.requests)-1], true
}

// Count returns how many requests hit method and path.
func (s *FakeServer) Count(method, path string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, r := range s.state.requests {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

// Name implements TestComponent.
func (s *FakeServer) Name() string { return "fake-server" }

// Start implements TestComponent.
func (s *FakeServer) Start(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return fmt.Errorf("component already started")
	}
	s.ts = httptest.NewServer(s)
	s.started = true
	return nil
}

// Stop implements TestComponent.
func (s *FakeServer) Stop(_ context.Context) error {
	s.mu.Lock()
	ts := s.ts
	s.ts = nil
	s.started = false
	s.mu.Unlock()
	if ts != nil {
		ts.Close()
	}
	return nil
}

// Reset drops every route and recorded request. The URL stays the same.
func (s *FakeServer) Reset(_ context.Context) error {
	e := s.newEngine()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine = e
	s.state = fakeState{served: map[routeKey]int{}}
	return nil
}

// Snapshot captures the recorded requests and script positions.
func (s *FakeServer) Snapshot(_ context.Context) (any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	served := make(map[routeKey]int, len(s.state.served))
	for k, v := range s.state.served {
		served[k] = v
	}
	return fakeState{
		requests: append([]RecordedRequest(nil), s.state.requests...),
		served:   served,
	}, nil
}

// Restore rewinds to a Snapshot.
func (s *FakeServer) Restore(_ context.Context, snapshot any) error {
	st, ok := snapshot.(fakeState)
	if !ok {
		return fmt.Errorf("unexpected snapshot type %T", snapshot)
	}
	served := make(map[routeKey]int, len(st.served))
	for k, v := range st.served {
		served[k] = v
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = fakeState{requests: append([]RecordedRequest(nil), st.requests...), served: served}
	return nil
}
