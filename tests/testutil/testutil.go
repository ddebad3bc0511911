// Package testutil drives a gin engine the way an API client would and
// decodes the response envelope. Integration suites use it against fully
// wired handlers and middleware.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

// Request describes one API call
type Request struct {
	Method  string
	Path    string
	Token   string
	Body    any
	Headers map[string]string
}

// TestContext holds the recorded response of a call
type TestContext struct {
	Recorder *httptest.ResponseRecorder
}

// Do serves r through handler. A non-nil Body is sent as JSON and a
// non-empty Token as a bearer token.
func Do(t *testing.T, handler http.Handler, r Request) *TestContext {
	t.Helper()

	method := r.Method
	if method == "" {
		method = http.MethodGet
	}
	var body io.Reader
	if r.Body != nil {
		body = ToJSONReader(t, r.Body)
	}
	req := httptest.NewRequest(method, r.Path, body)
	if r.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.Token != "" {
		req.Header.Set("Authorization", "Bearer "+r.Token)
	}
	for k, v := range r.Headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return &TestContext{Recorder: w}
}

// ResponseBody returns the response body as bytes.
func (tc *TestContext) ResponseBody() []byte {
	return tc.Recorder.Body.Bytes()
}

// ResponseCode returns the HTTP status code.
func (tc *TestContext) ResponseCode() int {
	return tc.Recorder.Code
}

// ToJSONReader converts a value to a JSON io.Reader.
func ToJSONReader(t *testing.T, v any) io.Reader {
	t.Helper()

	data, err := json.Marshal(v)
	require.NoError(t, err, "Failed to marshal to JSON")
	return bytes.NewReader(data)
}
