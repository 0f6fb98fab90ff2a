package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerTools(server *sdkmcp.Server, h *Handler) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_tree",
		Description: "Return every task of the workspace in pre-order, with own and subtree time",
	}, tool(func(ctx context.Context, _ GetTreeParams) (*TreeResponse, error) {
		return h.GetTree(ctx)
	}))
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_task",
		Description: "Return one task by id, or by name when id is omitted",
	}, tool(h.GetTask))
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "create_task",
		Description: "Create a task below an existing parent. Names must be unique among siblings",
	}, tool(h.CreateTask))
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "log_time",
		Description: "Record a work session on a task",
	}, tool(h.LogTime))
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "set_status",
		Description: "Change the status of a task",
	}, tool(h.SetStatus))
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "set_comments",
		Description: "Replace the comments of a task",
	}, tool(h.SetComments))
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "commit_journal",
		Description: "Parse a journal and commit its tasks. Unknown ids are created below their parent path",
	}, tool(h.CommitJournal))
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "render_journal",
		Description: "Render the journal of open work for a day, ready to be edited and committed",
	}, tool(h.RenderJournal))
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "clip",
		Description: "Return the tasks matching a status and category filter together with their ancestors",
	}, tool(h.Clip))
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "report",
		Description: "Summarize time spent per task for the tasks matching a filter",
	}, tool(h.Report))
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "search_tasks",
		Description: "Find tasks whose name, comments or category contain a text, name matches first",
	}, tool(h.SearchTasks))
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_recent_activity",
		Description: "List recent workspace changes, newest first",
	}, tool(h.RecentActivity))
}

// tool adapts a handler method to the SDK's typed tool signature.
func tool[In, Out any](fn func(context.Context, In) (*Out, error)) sdkmcp.ToolHandlerFor[In, Out] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, in In) (*sdkmcp.CallToolResult, Out, error) {
		out, err := fn(ctx, in)
		if err != nil {
			var zero Out
			return nil, zero, err
		}
		return nil, *out, nil
	}
}
