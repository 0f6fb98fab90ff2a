package journal

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rpggio/tasktory/internal/domain/task"
)

// Render writes the journal for the calendar date of date, in date's own
// location, for the tree below root. Closed tasks and tasks due beyond the
// horizon are left out, and only sessions starting on or after that day are
// listed. The root itself is not written.
func Render(w io.Writer, date time.Time, root *task.Node, memo string, opts Options) error {
	opts = opts.withDefaults()
	y, m, d := date.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, opts.Location)
	today := task.Ordinal(day)

	lines := make(map[task.Status][]string, len(task.Statuses))
	for n := range root.All() {
		if n == root || n.Status == task.StatusClose {
			continue
		}
		if n.Deadline != 0 && n.Deadline-today > opts.Horizon {
			continue
		}
		lines[n.Status] = append(lines[n.Status], taskLine(n, root, day, today, opts))
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, day.Format(dateLayout))
	for _, st := range task.Statuses {
		fmt.Fprintf(bw, "[%s]\n", sectionName(st))
		for _, l := range lines[st] {
			fmt.Fprintln(bw, l)
		}
	}
	fmt.Fprintf(bw, "[%s]\n", memoSection)
	if memo != "" {
		fmt.Fprintln(bw, memo)
	}
	return bw.Flush()
}

func taskLine(n, root *task.Node, day time.Time, today int, opts Options) string {
	hideRoot := func(m *task.Node) string {
		if m == root {
			return ""
		}
		return m.Name
	}

	var b strings.Builder
	b.WriteString(n.Path("/", hideRoot))
	b.WriteByte(' ')
	b.WriteString(strconv.Itoa(n.ID))
	if n.Deadline != 0 {
		b.WriteString(" @")
		b.WriteString(strconv.Itoa(n.Deadline - today))
	}

	var phrases []string
	for _, s := range n.Timetable {
		if s.Start < day.Unix() {
			continue
		}
		phrases = append(phrases, timePhrase(s, opts.Location))
	}
	if len(phrases) > 0 {
		b.WriteByte(' ')
		b.WriteString(strings.Join(phrases, opts.TimesDelimiter+" "))
	}
	return b.String()
}

func timePhrase(s task.Session, loc *time.Location) string {
	start := time.Unix(s.Start, 0).In(loc)
	end := time.Unix(s.End(), 0).In(loc)
	return clockString(start) + "-" + clockString(end)
}

func clockString(t time.Time) string {
	if t.Second() != 0 {
		return fmt.Sprintf("%d:%02d:%02d", t.Hour(), t.Minute(), t.Second())
	}
	return fmt.Sprintf("%d:%02d", t.Hour(), t.Minute())
}
