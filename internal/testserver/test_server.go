package testserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rpggio/tasktory/internal/domain/activity"
	"github.com/rpggio/tasktory/internal/domain/workspace"
	"github.com/rpggio/tasktory/internal/journal"
	"github.com/rpggio/tasktory/internal/mcp"
	"github.com/rpggio/tasktory/internal/sqlite"
	"github.com/rpggio/tasktory/internal/transport"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
)

// TestServer runs the full HTTP stack over an in-memory database.
type TestServer struct {
	Server    *httptest.Server
	DB        *sqlite.DB
	Workspace *workspace.Service
	nextID    int
}

// New starts a server whose journal dates are interpreted in UTC.
func New(t *testing.T) *TestServer {
	t.Helper()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	activityRepo := sqlite.NewActivityRepository(db)
	workspaceSvc := workspace.NewService(sqlite.NewTreeRepository(db), activityRepo, journal.Options{Location: time.UTC}, nil)
	activitySvc := activity.NewService(activityRepo, nil)

	services := mcp.Services{Tasks: workspaceSvc, Activity: activitySvc}
	mcpServer := mcp.NewServer(mcp.Config{Services: services})
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(*http.Request) *sdkmcp.Server { return mcpServer },
		&sdkmcp.StreamableHTTPOptions{Stateless: true},
	)

	handler := mcp.NewHandler(workspaceSvc, activitySvc)
	server := httptest.NewServer(transport.NewServer(handler, transport.Options{MCP: mcpHandler}))

	t.Cleanup(func() {
		server.Close()
		_ = db.Close()
	})

	return &TestServer{Server: server, DB: db, Workspace: workspaceSvc}
}

// Call posts a JSON-RPC request and decodes the response. When out is non-nil
// the result is decoded into it.
func (ts *TestServer) Call(t *testing.T, method string, params any, out any) *transport.Error {
	t.Helper()

	ts.nextID++
	body, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"method":  method,
		"params":  params,
		"id":      ts.nextID,
	})
	require.NoError(t, err)

	resp, err := http.Post(ts.Server.URL+"/rpc", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var rpcResp struct {
		Result json.RawMessage  `json:"result"`
		Error  *transport.Error `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rpcResp))
	if rpcResp.Error != nil {
		return rpcResp.Error
	}
	if out != nil {
		require.NoError(t, json.Unmarshal(rpcResp.Result, out))
	}
	return nil
}
