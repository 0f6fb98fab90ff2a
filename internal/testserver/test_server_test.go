package testserver_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/rpggio/tasktory/internal/domain/task"
	"github.com/rpggio/tasktory/internal/mcp"
	"github.com/rpggio/tasktory/internal/testserver"
	"github.com/rpggio/tasktory/internal/transport"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
)

func TestServer_JournalRoundTrip(t *testing.T) {
	ts := testserver.New(t)

	var work mcp.TaskResponse
	require.Nil(t, ts.Call(t, "create_task", mcp.CreateTaskParams{ParentID: 0, Name: "work"}, &work))
	var report mcp.TaskResponse
	require.Nil(t, ts.Call(t, "create_task", mcp.CreateTaskParams{ParentID: work.ID, Name: "report", Deadline: "2024-03-04"}, &report))
	require.Equal(t, "/work/report", report.Path)

	var rendered mcp.JournalResponse
	require.Nil(t, ts.Call(t, "render_journal", mcp.RenderJournalParams{Date: "2024-03-01", Memo: "remember"}, &rendered))
	require.Contains(t, rendered.Journal, "/work/report 2 @3")
	require.Contains(t, rendered.Journal, "remember")

	journal := "2024/03/01\n\n[OPEN]\n/work 1\n\n[CLOSE]\n/work/report 2 9:00-10:30\n/work/slides 7 13:00-13:15\n/home/taxes 8\n"
	var commit mcp.CommitJournalResponse
	require.Nil(t, ts.Call(t, "commit_journal", mcp.CommitJournalParams{Journal: journal}, &commit))
	require.ElementsMatch(t, []int{1, 2}, commit.Committed)
	require.Equal(t, []int{7}, commit.Created)
	require.Equal(t, []int{8}, commit.Missing)

	var got mcp.TaskResponse
	require.Nil(t, ts.Call(t, "get_task", mcp.GetTaskParams{Name: "report"}, &got))
	require.Equal(t, "close", got.Status)
	require.Equal(t, int64(5400), got.OwnTime)

	var tree mcp.TreeResponse
	require.Nil(t, ts.Call(t, "get_tree", nil, &tree))
	require.Len(t, tree.Tasks, 4)
	require.Equal(t, int64(6300), tree.Tasks[1].TreeTime)

	var open mcp.TreeResponse
	require.Nil(t, ts.Call(t, "clip", mcp.FilterParams{}, &open))
	require.Len(t, open.Tasks, 2)

	var found mcp.SearchTasksResponse
	require.Nil(t, ts.Call(t, "search_tasks", mcp.SearchTasksParams{Query: "slid", Statuses: []string{"close"}}, &found))
	require.Len(t, found.Tasks, 1)
	require.Equal(t, "/work/slides", found.Tasks[0].Path)

	var activity mcp.ActivityResponse
	require.Nil(t, ts.Call(t, "get_recent_activity", mcp.RecentActivityParams{ChangeSet: commit.ChangeSet}, &activity))
	require.NotEmpty(t, activity.Entries)
}

func TestServer_Errors(t *testing.T) {
	ts := testserver.New(t)

	rpcErr := ts.Call(t, "set_status", mcp.SetStatusParams{ID: 42, Status: "close"}, nil)
	require.NotNil(t, rpcErr)
	require.Equal(t, transport.ErrApplication, rpcErr.Code)
	require.Equal(t, mcp.CodeTaskNotFound, rpcErr.Data.(map[string]any)["code"])

	rpcErr = ts.Call(t, "create_task", mcp.CreateTaskParams{ParentID: 0, Name: "a/b"}, nil)
	require.NotNil(t, rpcErr)
	require.Equal(t, transport.ErrInvalidParams, rpcErr.Code)

	rpcErr = ts.Call(t, "commit_journal", mcp.CommitJournalParams{Journal: "not a date\n"}, nil)
	require.NotNil(t, rpcErr)
	require.Equal(t, transport.ErrInvalidParams, rpcErr.Code)

	rpcErr = ts.Call(t, "drop_tables", nil, nil)
	require.NotNil(t, rpcErr)
	require.Equal(t, transport.ErrMethodNotFound, rpcErr.Code)
}

func TestServer_StreamableMCP(t *testing.T) {
	ts := testserver.New(t)
	ctx := context.Background()

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, &sdkmcp.StreamableClientTransport{
		Endpoint:   ts.Server.URL + "/mcp",
		HTTPClient: http.DefaultClient,
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })

	res, err := session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      "create_task",
		Arguments: map[string]any{"parent_id": 0, "name": "inbox"},
	})
	require.NoError(t, err)
	require.False(t, res.IsError)

	n, err := ts.Workspace.Get(ctx, task.ByName("inbox"))
	require.NoError(t, err)
	require.Equal(t, 1, n.ID)
}
