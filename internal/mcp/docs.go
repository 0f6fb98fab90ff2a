package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `tasktory keeps a tree of tasks with deadlines, statuses and logged work sessions.

Core concepts:
- Task: a node with a unique integer id and a name unique among its siblings. The workspace root has id 0.
- Path: names from below the root joined by "/", e.g. /work/report. The root itself is "/".
- Status: open, wait, close or const. Closed tasks are hidden by default.
- Session: a start time and a duration in seconds. Own time sums a task's sessions; tree time adds every descendant.
- Journal: a plain-text daily view of open tasks. Edit it and commit it back to record work.

Typical workflow:
1) Orient with get_tree, clip (open work only), report (time per task) or search_tasks.
2) Add work with create_task (parent_id 0 for top level tasks).
3) Record time with log_time, or render_journal for a day, edit it, then commit_journal.
4) Review changes with get_recent_activity.

Docs:
- tasktory://docs/concepts
- tasktory://docs/journal
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "tasktory://docs/concepts",
		Name:        "docs_concepts",
		Title:       "Concepts and merge rules",
		Description: "Task tree model, statuses, time aggregation and how changes are merged.",
		Content: `# Concepts and merge rules

## Task tree

Every task has exactly one parent except the workspace root (id 0). Ids are unique across
the tree and names are unique among siblings, so a task can be found by id, by name or by path.

## Time

- **Own time**: sum of the task's session durations.
- **Tree time**: own time plus the own time of every descendant.
- **First/last seen**: earliest session start and latest session end in the subtree.

## Committing changes

A change to a task is merged into the stored task:

- The side with the most recent session wins name, status and comments.
  When both are equally recent the incoming change wins.
- Deadline and category fall back to the stored value when the change leaves them unset.
- Sessions from both sides are kept, so committing the same journal twice counts its time twice.
- Children are merged recursively by id; children present on one side only are kept.

The stored task keeps its id and its position in the tree.
`,
	},
	{
		URI:         "tasktory://docs/journal",
		Name:        "docs_journal",
		Title:       "Journal format",
		Description: "Syntax of the daily journal accepted by commit_journal and produced by render_journal.",
		Content: `# Journal format

` + "```" + `
2024/03/01

[OPEN]
/work 1
/work/report 2 @3 9:00-10:30,13:00-13:45

[WAIT]
/home/taxes 5 @4/15

[CLOSE]

[CONST]
/admin 7

[MEMO]
free text until the end of the journal
` + "```" + `

- The first line is the date, ` + "`YYYY/MM/DD`" + ` or ` + "`YYYY-MM-DD`" + `.
- Section headers set the status of the task lines below them.
- A task line is ` + "`path id [@deadline] [sessions]`" + `.
- Deadlines are a day count relative to the journal date (may be negative), ` + "`M/D`" + ` (next year if already past) or ` + "`Y/M/D`" + `.
- Sessions are ` + "`H:MM[:SS]-H:MM[:SS]`" + ` joined by commas, on the journal date.
- Tasks whose id is unknown are created below their parent path when it exists.
- Closed tasks and tasks due beyond the horizon are left out when rendering.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
