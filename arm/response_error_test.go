package arm

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/kbukum/armkit/errors"
	"github.com/kbukum/armkit/pipeline"
)

func response(status int, header http.Header, body string) *pipeline.Response {
	return pipeline.NewResponse(status, header, io.NopCloser(strings.NewReader(body)))
}

func TestExpectStatus(t *testing.T) {
	s, err := ExpectStatus(response(http.StatusCreated, nil, ""), StatusOK, StatusCreated)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s != StatusCreated || s.String() != "Created" {
		t.Errorf("expected Created, got %v", s)
	}

	_, err = ExpectStatus(response(http.StatusNotFound, nil, `{"error":{"code":"ResourceNotFound","message":"gone"}}`), StatusOK)
	if !errors.IsStatus(err, http.StatusNotFound) {
		t.Fatalf("expected a 404 error, got %v", err)
	}
	if errors.ServerCode(err) != "ResourceNotFound" {
		t.Errorf("expected server code, got %q", errors.ServerCode(err))
	}
	if !errors.HasCode(err, errors.ErrCodeHTTPResponse) {
		t.Errorf("expected HTTP_RESPONSE, got %v", err)
	}
}

func TestNewResponseError(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		header   http.Header
		body     string
		wantCode string
		wantMsg  string
	}{
		{"json envelope", 400, nil, `{"error":{"code":"InvalidParameter","message":"bad name"}}`, "InvalidParameter", "bad name"},
		{"json top level", 409, nil, `{"code":"Conflict","message":"exists"}`, "Conflict", "exists"},
		{"xml", 404, nil, "\ufeff<?xml version=\"1.0\"?><Error><Code>QueueNotFound</Code><Message>missing\n</Message></Error>", "QueueNotFound", "missing"},
		{"header wins", 403, http.Header{"X-Ms-Error-Code": {"AuthorizationFailure"}}, `{"error":{"code":"Other"}}`, "AuthorizationFailure", ""},
		{"empty body", 500, nil, "", "", ""},
		{"garbage", 502, nil, "<html>bad gateway", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewResponseError(response(tt.status, tt.header, tt.body))
			appErr, ok := errors.AsAppError(err)
			if !ok {
				t.Fatalf("expected an AppError, got %v", err)
			}
			if code, _ := errors.StatusCode(err); code != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, code)
			}
			if appErr.ServerCode != tt.wantCode {
				t.Errorf("expected server code %q, got %q", tt.wantCode, appErr.ServerCode)
			}
			if tt.wantMsg != "" && appErr.Message != tt.wantMsg {
				t.Errorf("expected message %q, got %q", tt.wantMsg, appErr.Message)
			}
		})
	}
}

func TestNewResponseError_RequestID(t *testing.T) {
	h := http.Header{}
	h.Set(pipeline.HeaderServiceRequestID, "svc-42")
	appErr, _ := errors.AsAppError(NewResponseError(response(500, h, "")))
	if appErr.Details["service_request_id"] != "svc-42" {
		t.Errorf("expected service request id detail, got %v", appErr.Details)
	}
}

func TestStatusString(t *testing.T) {
	if StatusNoContent.String() != "NoContent" || StatusAccepted.String() != "Accepted" || StatusOK.String() != "OK" {
		t.Error("unexpected variant names")
	}
	if Status(418).String() != "Status(418)" {
		t.Errorf("unexpected name %q", Status(418).String())
	}
}
