package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

type testHandler struct {
	method string
	params json.RawMessage
	err    error
}

func (h *testHandler) Handle(_ context.Context, method string, params json.RawMessage) (any, error) {
	h.method = method
	h.params = params
	if h.err != nil {
		return nil, h.err
	}
	return map[string]string{"method": method}, nil
}

type codedError struct {
	code string
}

func (e codedError) Error() string             { return e.code + ": failed" }
func (e codedError) CodeValue() string         { return e.code }
func (e codedError) MessageValue() string      { return "failed" }
func (e codedError) RecoveryHintValue() string { return "try again" }

func post(t *testing.T, url, body string) Response {
	t.Helper()
	resp, err := http.Post(url+"/rpc", "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestHTTPServer_RPC(t *testing.T) {
	handler := &testHandler{}
	server := httptest.NewServer(NewServer(handler, Options{}))
	t.Cleanup(server.Close)

	resp := post(t, server.URL, `{"jsonrpc":"2.0","method":"get_task","params":{"id":2},"id":1}`)
	require.Nil(t, resp.Error)
	require.Equal(t, "get_task", handler.method)
	require.JSONEq(t, `{"id":2}`, string(handler.params))
	require.Equal(t, map[string]any{"method": "get_task"}, resp.Result)
	require.EqualValues(t, 1, resp.ID)
}

func TestHTTPServer_RPCErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantData bool
	}{
		{name: "unknown method", err: codedError{code: codeMethodNotFound}, wantCode: ErrMethodNotFound, wantData: true},
		{name: "invalid input", err: codedError{code: codeInvalidInput}, wantCode: ErrInvalidParams, wantData: true},
		{name: "domain error", err: codedError{code: "TASK_NOT_FOUND"}, wantCode: ErrApplication, wantData: true},
		{name: "internal error", err: errors.New("disk full"), wantCode: ErrInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(NewServer(&testHandler{err: tt.err}, Options{}))
			t.Cleanup(server.Close)

			resp := post(t, server.URL, `{"jsonrpc":"2.0","method":"m","id":"a"}`)
			require.NotNil(t, resp.Error)
			require.Equal(t, tt.wantCode, resp.Error.Code)
			if tt.wantData {
				data, ok := resp.Error.Data.(map[string]any)
				require.True(t, ok)
				require.Equal(t, "try again", data["recovery_hint"])
			} else {
				require.Nil(t, resp.Error.Data)
			}
		})
	}
}

func TestHTTPServer_MalformedRequests(t *testing.T) {
	server := httptest.NewServer(NewServer(&testHandler{}, Options{}))
	t.Cleanup(server.Close)

	resp := post(t, server.URL, `{not json`)
	require.Equal(t, ErrParseCode, resp.Error.Code)

	resp = post(t, server.URL, `{"jsonrpc":"1.0","method":"m"}`)
	require.Equal(t, ErrInvalidReq, resp.Error.Code)
}

func TestHTTPServer_Notification(t *testing.T) {
	handler := &testHandler{}
	server := httptest.NewServer(NewServer(handler, Options{}))
	t.Cleanup(server.Close)

	resp, err := http.Post(server.URL+"/rpc", "application/json",
		bytes.NewBufferString(`{"jsonrpc":"2.0","method":"set_status","params":{"id":1,"status":"close"}}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.Equal(t, "set_status", handler.method)
}

func TestHTTPServer_Health(t *testing.T) {
	server := httptest.NewServer(NewServer(&testHandler{}, Options{}))
	t.Cleanup(server.Close)

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHTTPServer_MountsMCP(t *testing.T) {
	mcp := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})
	server := httptest.NewServer(NewServer(&testHandler{}, Options{MCP: mcp}))
	t.Cleanup(server.Close)

	resp, err := http.Post(server.URL+"/mcp", "application/json", bytes.NewBufferString(`{}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
}
