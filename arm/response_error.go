package arm

import (
	"encoding/json"
	"encoding/xml"
	"io"
	"slices"
	"strings"

	"github.com/kbukum/armkit/errors"
	"github.com/kbukum/armkit/pipeline"
)

// HeaderErrorCode carries the service error code on failed responses.
const HeaderErrorCode = "x-ms-error-code"

// errorBodyLimit bounds how much of an error body is read.
const errorBodyLimit = 64 << 10

// ExpectStatus returns the Status of resp when it is one of accepted.
// Otherwise resp is consumed into an HTTP_RESPONSE error.
func ExpectStatus(resp *pipeline.Response, accepted ...Status) (Status, error) {
	s := Status(resp.StatusCode)
	if slices.Contains(accepted, s) {
		return s, nil
	}
	return 0, NewResponseError(resp)
}

// NewResponseError consumes resp and builds the generic HTTP_RESPONSE error.
// The server error code comes from the x-ms-error-code header, a JSON
// {"error":{"code":...}} body or an XML <Error><Code> body, in that order.
func NewResponseError(resp *pipeline.Response) error {
	var data []byte
	if body, err := resp.Body(); err == nil {
		data, _ = io.ReadAll(io.LimitReader(body, errorBodyLimit))
		_ = body.Close()
	}

	code, message := parseErrorBody(data)
	if h := resp.Header.Get(HeaderErrorCode); h != "" {
		code = h
	}
	appErr := errors.HTTPResponse(resp.StatusCode, code, message)
	if id := resp.Header.Get(pipeline.HeaderServiceRequestID); id != "" {
		appErr = appErr.WithDetail("service_request_id", id)
	}
	return appErr
}

type jsonError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type jsonErrorEnvelope struct {
	Error *jsonError `json:"error"`
	jsonError
}

type xmlError struct {
	XMLName xml.Name `xml:"Error"`
	Code    string   `xml:"Code"`
	Message string   `xml:"Message"`
}

func parseErrorBody(data []byte) (code, message string) {
	trimmed := strings.TrimSpace(strings.TrimPrefix(string(data), "\ufeff"))
	switch {
	case trimmed == "":
		return "", ""
	case strings.HasPrefix(trimmed, "{"):
		var env jsonErrorEnvelope
		if err := json.Unmarshal([]byte(trimmed), &env); err != nil {
			return "", ""
		}
		if env.Error != nil {
			return env.Error.Code, env.Error.Message
		}
		return env.Code, env.Message
	case strings.HasPrefix(trimmed, "<"):
		var e xmlError
		if err := xml.Unmarshal([]byte(trimmed), &e); err != nil {
			return "", ""
		}
		return e.Code, strings.TrimSpace(e.Message)
	}
	return "", ""
}
