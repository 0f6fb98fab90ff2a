package main

import (
	"fmt"
	"io"
	"os"
	"path"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rpggio/tasktory/internal/domain/activity"
	"github.com/rpggio/tasktory/internal/domain/task"
	"github.com/rpggio/tasktory/internal/domain/workspace"
	"github.com/spf13/cobra"
)

// filterFlags binds the status and category flags shared by show and report.
type filterFlags struct {
	statuses []string
	category string
	all      bool
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVarP(&f.statuses, "status", "s", nil, "Statuses to list (open, wait, close, const)")
	cmd.Flags().StringVarP(&f.category, "category", "c", "", "Only list tasks of this category")
	cmd.Flags().BoolVarP(&f.all, "all", "a", false, "Include closed tasks")
}

func (f *filterFlags) filter() (workspace.Filter, error) {
	filter := workspace.Filter{Category: f.category}
	if f.all {
		filter.Statuses = task.Statuses
		return filter, nil
	}
	for _, s := range f.statuses {
		status, err := task.ParseStatus(s)
		if err != nil {
			return workspace.Filter{}, err
		}
		filter.Statuses = append(filter.Statuses, status)
	}
	return filter, nil
}

func showCmd(opts *rootOptions) *cobra.Command {
	var flags filterFlags
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the task tree, open tasks only by default",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := flags.filter()
			if err != nil {
				return err
			}
			a, err := openApp(opts, os.Stderr)
			if err != nil {
				return err
			}
			defer a.Close()

			rows, err := a.workspace.Report(cmd.Context(), filter)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(rows) <= 1 {
				fmt.Fprintln(out, "No matching tasks")
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TASK\tID\tSTATUS\tDUE\tTIME")
			for _, row := range rows[1:] {
				indent := strings.Repeat("  ", row.Level-1)
				fmt.Fprintf(tw, "%s%s\t%d\t%s\t%s\t%s\n",
					indent, path.Base(row.Path), row.ID, row.Status, formatDeadline(row.Deadline), formatSeconds(row.TreeTime))
			}
			return tw.Flush()
		},
	}
	flags.register(cmd)
	return cmd
}

func reportCmd(opts *rootOptions) *cobra.Command {
	var flags filterFlags
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Report time spent per task",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := flags.filter()
			if err != nil {
				return err
			}
			a, err := openApp(opts, os.Stderr)
			if err != nil {
				return err
			}
			defer a.Close()

			rows, err := a.workspace.Report(cmd.Context(), filter)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "PATH\tID\tSTATUS\tOWN\tTOTAL\tFIRST\tLAST")
			for _, row := range rows {
				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\t%s\n",
					row.Path, row.ID, row.Status, formatSeconds(row.OwnTime), formatSeconds(row.TreeTime),
					formatTimestamp(row.FirstTimestamp), formatTimestamp(row.LastTimestamp))
			}
			return tw.Flush()
		},
	}
	flags.register(cmd)
	return cmd
}

func findCmd(opts *rootOptions) *cobra.Command {
	var (
		flags filterFlags
		limit int
	)
	cmd := &cobra.Command{
		Use:   "find [text]",
		Short: "Find tasks by name, comments or category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := flags.filter()
			if err != nil {
				return err
			}
			a, err := openApp(opts, os.Stderr)
			if err != nil {
				return err
			}
			defer a.Close()

			nodes, err := a.workspace.Search(cmd.Context(), args[0], filter, limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(nodes) == 0 {
				fmt.Fprintln(out, "No matching tasks")
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "PATH\tID\tSTATUS\tCOMMENTS")
			for _, n := range nodes {
				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", workspace.PathOf(n), n.ID, n.Status, firstLine(n.Comments))
			}
			return tw.Flush()
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum results")
	return cmd
}

func addCmd(opts *rootOptions) *cobra.Command {
	var (
		parentID int
		deadline string
		category string
		status   string
	)
	cmd := &cobra.Command{
		Use:   "add [name]",
		Short: "Add a task below a parent task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := workspace.CreateRequest{ParentID: parentID, Name: args[0], Category: category}
			if deadline != "" {
				due, err := time.ParseInLocation(time.DateOnly, deadline, time.Local)
				if err != nil {
					return fmt.Errorf("invalid deadline: %w", err)
				}
				req.Deadline = task.Ordinal(due)
			}
			if status != "" {
				st, err := task.ParseStatus(status)
				if err != nil {
					return err
				}
				req.Status = st
			}

			a, err := openApp(opts, os.Stderr)
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.workspace.Create(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s (id %d)\n", workspace.PathOf(n), n.ID)
			return nil
		},
	}
	cmd.Flags().IntVarP(&parentID, "parent", "p", workspace.RootID, "Parent task id")
	cmd.Flags().StringVarP(&deadline, "deadline", "d", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&category, "category", "c", "", "Category")
	cmd.Flags().StringVarP(&status, "status", "s", "", "Initial status (default open)")
	return cmd
}

func logCmd(opts *rootOptions) *cobra.Command {
	var start string
	cmd := &cobra.Command{
		Use:   "log [id] [duration]",
		Short: "Log a work session, e.g. log 4 1h30m",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid task id %q", args[0])
			}
			duration, err := time.ParseDuration(args[1])
			if err != nil {
				return fmt.Errorf("invalid duration: %w", err)
			}
			now := time.Now()
			began := now.Add(-duration)
			if start != "" {
				if began, err = parseStart(start, now); err != nil {
					return err
				}
			}

			a, err := openApp(opts, os.Stderr)
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.workspace.LogTime(cmd.Context(), id, began, duration)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged %s on %s, total %s\n",
				formatSeconds(int64(duration/time.Second)), workspace.PathOf(n), formatSeconds(n.TotalTime()))
			return nil
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "Session start, RFC 3339 or HH:MM today (default now minus duration)")
	return cmd
}

// parseStart accepts an RFC 3339 timestamp or a wall clock time on the day of now.
func parseStart(s string, now time.Time) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	clock, err := time.Parse("15:04", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid start %q", s)
	}
	y, m, d := now.Date()
	return time.Date(y, m, d, clock.Hour(), clock.Minute(), 0, 0, now.Location()), nil
}

func statusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status [id] [open|wait|close|const]",
		Short: "Change the status of a task",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid task id %q", args[0])
			}
			status, err := task.ParseStatus(args[1])
			if err != nil {
				return err
			}

			a, err := openApp(opts, os.Stderr)
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.workspace.SetStatus(cmd.Context(), id, status)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", workspace.PathOf(n), n.Status)
			return nil
		},
	}
}

func commitCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "commit [journal-file]",
		Short: "Commit a journal file, or stdin when the file is - or omitted",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}

			a, err := openApp(opts, os.Stderr)
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.workspace.ImportJournal(cmd.Context(), r)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Committed %d, created %d, missing %d\n",
				len(result.Committed), len(result.Created), len(result.Missing))
			if len(result.Missing) > 0 {
				fmt.Fprintf(out, "Missing ids: %s\n", joinInts(result.Missing))
			}
			return nil
		},
	}
}

func journalCmd(opts *rootOptions) *cobra.Command {
	var (
		date string
		memo string
	)
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Print the journal of open tasks for a day",
		RunE: func(cmd *cobra.Command, args []string) error {
			day := time.Now()
			if date != "" {
				var err error
				day, err = time.ParseInLocation(time.DateOnly, date, time.Local)
				if err != nil {
					return fmt.Errorf("invalid date: %w", err)
				}
			}

			a, err := openApp(opts, os.Stderr)
			if err != nil {
				return err
			}
			defer a.Close()

			return a.workspace.Journal(cmd.Context(), day, memo, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Journal day (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&memo, "memo", "", "Text for the memo section")
	return cmd
}

func activityCmd(opts *rootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "activity",
		Short: "List recent workspace changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(opts, os.Stderr)
			if err != nil {
				return err
			}
			defer a.Close()

			entries, err := a.activity.GetRecentActivity(cmd.Context(), activity.ListActivityOptions{Limit: limit})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, entry := range entries {
				fmt.Fprintf(out, "%s  %-15s %s\n", entry.CreatedAt.Local().Format("2006-01-02 15:04"), entry.ActivityType, entry.Summary)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", activity.DefaultLimit, "Maximum entries")
	return cmd
}

func formatDeadline(ordinal int) string {
	if ordinal == 0 {
		return ""
	}
	return task.FromOrdinal(ordinal).Format(time.DateOnly)
}

func formatTimestamp(sec int64) string {
	if sec == 0 {
		return "-"
	}
	return time.Unix(sec, 0).Local().Format("2006-01-02 15:04")
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

func joinInts(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, " ")
}
