package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rpggio/tasktory/internal/domain/activity"
	"github.com/rpggio/tasktory/internal/domain/task"
	"github.com/rpggio/tasktory/internal/domain/workspace"
)

// TaskService defines workspace operations needed by MCP.
type TaskService interface {
	Tree(ctx context.Context) (*task.Node, error)
	Get(ctx context.Context, key task.Key) (*task.Node, error)
	Create(ctx context.Context, req workspace.CreateRequest) (*task.Node, error)
	LogTime(ctx context.Context, id int, start time.Time, duration time.Duration) (*task.Node, error)
	SetStatus(ctx context.Context, id int, status task.Status) (*task.Node, error)
	SetComments(ctx context.Context, id int, comments string) (*task.Node, error)
	ImportJournal(ctx context.Context, r io.Reader) (*workspace.ImportResult, error)
	Journal(ctx context.Context, date time.Time, memo string, w io.Writer) error
	Clip(ctx context.Context, filter workspace.Filter) (*task.Node, error)
	Report(ctx context.Context, filter workspace.Filter) ([]workspace.ReportRow, error)
	Search(ctx context.Context, query string, filter workspace.Filter, limit int) ([]*task.Node, error)
}

// ActivityService defines activity operations needed by MCP.
type ActivityService interface {
	GetRecentActivity(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error)
}

// Handler dispatches MCP commands.
type Handler struct {
	tasks    TaskService
	activity ActivityService
	now      func() time.Time
}

// NewHandler creates a new MCP handler.
func NewHandler(tasks TaskService, activitySvc ActivityService) *Handler {
	return &Handler{
		tasks:    tasks,
		activity: activitySvc,
		now:      time.Now,
	}
}

// Handle dispatches a JSON-RPC method to the matching handler method.
func (h *Handler) Handle(ctx context.Context, method string, params json.RawMessage) (any, error) {
	switch method {
	case "get_tree":
		return h.GetTree(ctx)
	case "get_task":
		return dispatch(ctx, params, h.GetTask)
	case "create_task":
		return dispatch(ctx, params, h.CreateTask)
	case "log_time":
		return dispatch(ctx, params, h.LogTime)
	case "set_status":
		return dispatch(ctx, params, h.SetStatus)
	case "set_comments":
		return dispatch(ctx, params, h.SetComments)
	case "commit_journal":
		return dispatch(ctx, params, h.CommitJournal)
	case "render_journal":
		return dispatch(ctx, params, h.RenderJournal)
	case "clip":
		return dispatch(ctx, params, h.Clip)
	case "report":
		return dispatch(ctx, params, h.Report)
	case "search_tasks":
		return dispatch(ctx, params, h.SearchTasks)
	case "get_recent_activity":
		return dispatch(ctx, params, h.RecentActivity)
	default:
		return nil, MapError(fmt.Errorf("%w: %s", ErrUnknownMethod, method))
	}
}

func dispatch[P, R any](ctx context.Context, params json.RawMessage, fn func(context.Context, P) (R, error)) (any, error) {
	var req P
	if err := decodeParams(params, &req); err != nil {
		return nil, err
	}
	return fn(ctx, req)
}

func decodeParams(params json.RawMessage, out any) error {
	if len(params) == 0 {
		return nil
	}
	if err := json.Unmarshal(params, out); err != nil {
		return MapError(fmt.Errorf("%w: %w", ErrInvalidParams, err))
	}
	return nil
}

// GetTree returns the whole workspace tree.
func (h *Handler) GetTree(ctx context.Context) (*TreeResponse, error) {
	root, err := h.tasks.Tree(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	return toTreeResponse(root), nil
}

// GetTask returns one task by id, or by name when no id is given.
func (h *Handler) GetTask(ctx context.Context, req GetTaskParams) (*TaskResponse, error) {
	var key task.Key
	switch {
	case req.ID != nil:
		key = task.ByID(*req.ID)
	case req.Name != "":
		key = task.ByName(req.Name)
	default:
		return nil, MapError(fmt.Errorf("%w: id or name is required", ErrInvalidParams))
	}
	n, err := h.tasks.Get(ctx, key)
	if err != nil {
		return nil, mapError(err)
	}
	resp := toTaskResponse(n)
	return &resp, nil
}

func (h *Handler) CreateTask(ctx context.Context, req CreateTaskParams) (*TaskResponse, error) {
	deadline, err := parseDeadline(req.Deadline)
	if err != nil {
		return nil, err
	}
	status, err := parseOptionalStatus(req.Status)
	if err != nil {
		return nil, err
	}
	n, err := h.tasks.Create(ctx, workspace.CreateRequest{
		ParentID: req.ParentID,
		Name:     req.Name,
		Deadline: deadline,
		Category: req.Category,
		Status:   status,
	})
	if err != nil {
		return nil, mapError(err)
	}
	resp := toTaskResponse(n)
	return &resp, nil
}

func (h *Handler) LogTime(ctx context.Context, req LogTimeParams) (*TaskResponse, error) {
	if req.Minutes <= 0 {
		return nil, MapError(fmt.Errorf("%w: minutes must be positive", ErrInvalidParams))
	}
	duration := time.Duration(req.Minutes) * time.Minute
	start := h.now().Add(-duration)
	if req.Start != "" {
		var err error
		start, err = time.Parse(time.RFC3339, req.Start)
		if err != nil {
			return nil, MapError(fmt.Errorf("%w: start: %w", ErrInvalidParams, err))
		}
	}
	n, err := h.tasks.LogTime(ctx, req.ID, start, duration)
	if err != nil {
		return nil, mapError(err)
	}
	resp := toTaskResponse(n)
	return &resp, nil
}

func (h *Handler) SetStatus(ctx context.Context, req SetStatusParams) (*TaskResponse, error) {
	status, err := task.ParseStatus(req.Status)
	if err != nil {
		return nil, mapError(err)
	}
	n, err := h.tasks.SetStatus(ctx, req.ID, status)
	if err != nil {
		return nil, mapError(err)
	}
	resp := toTaskResponse(n)
	return &resp, nil
}

func (h *Handler) SetComments(ctx context.Context, req SetCommentsParams) (*TaskResponse, error) {
	n, err := h.tasks.SetComments(ctx, req.ID, req.Comments)
	if err != nil {
		return nil, mapError(err)
	}
	resp := toTaskResponse(n)
	return &resp, nil
}

// CommitJournal parses a journal and commits its tasks into the workspace.
func (h *Handler) CommitJournal(ctx context.Context, req CommitJournalParams) (*CommitJournalResponse, error) {
	if strings.TrimSpace(req.Journal) == "" {
		return nil, MapError(fmt.Errorf("%w: journal is empty", ErrInvalidParams))
	}
	result, err := h.tasks.ImportJournal(ctx, strings.NewReader(req.Journal))
	if err != nil {
		return nil, mapError(err)
	}
	return &CommitJournalResponse{
		ChangeSet: result.ChangeSet,
		Committed: nonNil(result.Committed),
		Created:   nonNil(result.Created),
		Missing:   nonNil(result.Missing),
		Memo:      result.Memo,
	}, nil
}

// RenderJournal writes the journal of open work for a day.
func (h *Handler) RenderJournal(ctx context.Context, req RenderJournalParams) (*JournalResponse, error) {
	date := h.now()
	if req.Date != "" {
		var err error
		date, err = time.ParseInLocation(dateLayout, req.Date, time.Local)
		if err != nil {
			return nil, MapError(fmt.Errorf("%w: date: %w", ErrInvalidParams, err))
		}
	}
	var sb strings.Builder
	if err := h.tasks.Journal(ctx, date, req.Memo, &sb); err != nil {
		return nil, mapError(err)
	}
	return &JournalResponse{Journal: sb.String()}, nil
}

// Clip returns the part of the tree whose tasks match the filter, with their ancestors.
func (h *Handler) Clip(ctx context.Context, req FilterParams) (*TreeResponse, error) {
	filter, err := toFilter(req)
	if err != nil {
		return nil, err
	}
	root, err := h.tasks.Clip(ctx, filter)
	if err != nil {
		return nil, mapError(err)
	}
	return toTreeResponse(root), nil
}

func (h *Handler) Report(ctx context.Context, req FilterParams) (*ReportResponse, error) {
	filter, err := toFilter(req)
	if err != nil {
		return nil, err
	}
	rows, err := h.tasks.Report(ctx, filter)
	if err != nil {
		return nil, mapError(err)
	}
	resp := &ReportResponse{Rows: make([]ReportRowResponse, 0, len(rows))}
	for _, row := range rows {
		resp.Rows = append(resp.Rows, toReportRow(row))
	}
	return resp, nil
}

// SearchTasks finds tasks by text in their name, comments or category.
func (h *Handler) SearchTasks(ctx context.Context, req SearchTasksParams) (*SearchTasksResponse, error) {
	filter, err := toFilter(FilterParams{Statuses: req.Statuses, Category: req.Category})
	if err != nil {
		return nil, err
	}
	nodes, err := h.tasks.Search(ctx, req.Query, filter, req.Limit)
	if err != nil {
		return nil, mapError(err)
	}
	resp := &SearchTasksResponse{Tasks: make([]TaskResponse, 0, len(nodes))}
	for _, n := range nodes {
		resp.Tasks = append(resp.Tasks, toTaskResponse(n))
	}
	return resp, nil
}

func (h *Handler) RecentActivity(ctx context.Context, req RecentActivityParams) (*ActivityResponse, error) {
	entries, err := h.activity.GetRecentActivity(ctx, activity.ListActivityOptions{
		ChangeSet: req.ChangeSet,
		TaskID:    req.TaskID,
		Limit:     req.Limit,
	})
	if err != nil {
		return nil, mapError(err)
	}
	return toActivityResponse(entries), nil
}

func parseDeadline(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	t, err := time.ParseInLocation(dateLayout, s, time.Local)
	if err != nil {
		return 0, MapError(fmt.Errorf("%w: deadline: %w", ErrInvalidParams, err))
	}
	return task.Ordinal(t), nil
}

func parseOptionalStatus(s string) (task.Status, error) {
	if s == "" {
		return "", nil
	}
	status, err := task.ParseStatus(s)
	if err != nil {
		return "", mapError(err)
	}
	return status, nil
}

func toFilter(req FilterParams) (workspace.Filter, error) {
	filter := workspace.Filter{Category: req.Category}
	for _, s := range req.Statuses {
		status, err := task.ParseStatus(s)
		if err != nil {
			return workspace.Filter{}, mapError(err)
		}
		filter.Statuses = append(filter.Statuses, status)
	}
	return filter, nil
}

func nonNil(ids []int) []int {
	if ids == nil {
		return []int{}
	}
	return ids
}
