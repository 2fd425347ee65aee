package queuestorage

import (
	"context"
	"net/http"
	"testing"

	"github.com/kbukum/armkit/arm"
	"github.com/kbukum/armkit/config"
	"github.com/kbukum/armkit/errors"
	"github.com/kbukum/armkit/resilience"
	"github.com/kbukum/armkit/testutil"
)

func newTestClient(t *testing.T, srv *testutil.FakeServer) *Client {
	t.Helper()
	c, err := NewClientBuilder(testutil.StaticCredential("tok")).
		Endpoint(srv.URL()).
		Transport(srv.Client()).
		Retry(resilience.RetryConfig{MaxAttempts: 1}).
		Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return c
}

func TestBuild_RequiresEndpoint(t *testing.T) {
	_, err := NewClientBuilder(nil).Build()
	if !errors.HasCode(err, errors.ErrCodeMissingField) {
		t.Fatalf("expected MISSING_FIELD, got %v", err)
	}
}

func TestBuild_DefaultScope(t *testing.T) {
	c, err := NewClient("https://acct.queue.core.windows.net/", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Endpoint() != "https://acct.queue.core.windows.net" {
		t.Errorf("unexpected endpoint %q", c.Endpoint())
	}
	if s := c.Scopes(); len(s) != 1 || s[0] != DefaultScope {
		t.Errorf("unexpected scopes %v", s)
	}
}

func TestBuild_FromConfig(t *testing.T) {
	cfg := &config.ClientConfig{}
	cfg.Storage.QueueEndpoint = "https://acct.queue.core.windows.net"
	cfg.ApplyDefaults()

	c, err := NewClientBuilder(nil).FromConfig(cfg).Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Endpoint() != cfg.Storage.QueueEndpoint {
		t.Errorf("expected storage endpoint, got %q", c.Endpoint())
	}
	if s := c.Scopes(); len(s) != 1 || s[0] != DefaultScope {
		t.Errorf("unexpected scopes %v", s)
	}
}

func TestRequest_CommonHeaders(t *testing.T) {
	srv := testutil.StartFakeServer(t)
	srv.Script(http.MethodDelete, "/orders", testutil.StatusReply(http.StatusNoContent).
		WithHeader("x-ms-request-id", "srv-1").
		WithHeader("x-ms-version", APIVersion).
		WithHeader("Date", "Wed, 09 Sep 2009 09:20:03 GMT"))
	c := newTestClient(t, srv)

	got, err := c.Queue().Delete("orders").Timeout(30).ClientRequestID("cli-1").Send(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != arm.StatusNoContent {
		t.Errorf("expected NoContent, got %v", got.Status)
	}
	if got.RequestID != "srv-1" || got.Version != APIVersion {
		t.Errorf("unexpected headers %+v", got.Headers)
	}
	if got.Date.Year() != 2009 {
		t.Errorf("unexpected date %v", got.Date)
	}

	last, _ := srv.LastRequest()
	if last.Header.Get(HeaderVersion) != APIVersion {
		t.Errorf("expected x-ms-version %s, got %q", APIVersion, last.Header.Get(HeaderVersion))
	}
	if last.Header.Get("x-ms-client-request-id") != "cli-1" {
		t.Errorf("expected caller request id, got %q", last.Header.Get("x-ms-client-request-id"))
	}
	if last.Query.Get("timeout") != "30" {
		t.Errorf("expected timeout=30, got %q", last.Query.Get("timeout"))
	}
	if _, ok := last.Query["api-version"]; ok {
		t.Error("queue requests must not carry api-version")
	}
	if last.Header.Get("Authorization") != "Bearer tok" {
		t.Errorf("unexpected authorization %q", last.Header.Get("Authorization"))
	}
}

func TestRequest_XMLError(t *testing.T) {
	srv := testutil.StartFakeServer(t)
	srv.Script(http.MethodGet, "/missing", testutil.XMLReply(http.StatusNotFound,
		"\ufeff<?xml version=\"1.0\" encoding=\"utf-8\"?><Error><Code>QueueNotFound</Code><Message>The specified queue does not exist.</Message></Error>"))
	c := newTestClient(t, srv)

	_, err := c.Queue().GetProperties("missing").Send(context.Background())
	if !errors.IsStatus(err, http.StatusNotFound) {
		t.Fatalf("expected 404, got %v", err)
	}
	if errors.ServerCode(err) != "QueueNotFound" {
		t.Errorf("expected QueueNotFound, got %q", errors.ServerCode(err))
	}
}

func TestRequest_NegativeTimeoutRejected(t *testing.T) {
	srv := testutil.StartFakeServer(t)
	c := newTestClient(t, srv)

	_, err := c.Service().GetProperties().Timeout(-1).Send(context.Background())
	if !errors.HasCode(err, errors.ErrCodeInvalidInput) {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
	if len(srv.Requests()) != 0 {
		t.Errorf("expected no traffic, got %d requests", len(srv.Requests()))
	}
}
