// Package journal converts between task trees and the daily plain-text
// journal a user edits by hand.
//
// A journal looks like this:
//
//	2024/05/01
//	[OPEN]
//	/Project/Design 12 @10 9:00-12:00, 13:00-14:30
//	[WAIT]
//	[CLOSE]
//	[CONST]
//	[MEMO]
//	free text
//
// Each task line carries the path of the task below the workspace root, its
// id, an optional deadline and the work sessions of the journal day.
package journal

import (
	"errors"
	"time"

	"github.com/rpggio/tasktory/internal/domain/task"
)

// ErrSyntax is wrapped by every parse error.
var ErrSyntax = errors.New("journal syntax error")

const (
	DefaultTimesDelimiter = ","
	DefaultHorizon        = 365
	dateLayout            = "2006/01/02"
	memoSection           = "MEMO"
)

// Options controls parsing and rendering.
type Options struct {
	// TimesDelimiter separates the work sessions of a task line.
	TimesDelimiter string
	// Horizon hides tasks whose deadline is more than this many days away.
	Horizon int
	// Location interprets dates and clock times. Defaults to time.Local.
	Location *time.Location
}

func (o Options) withDefaults() Options {
	if o.TimesDelimiter == "" {
		o.TimesDelimiter = DefaultTimesDelimiter
	}
	if o.Horizon <= 0 {
		o.Horizon = DefaultHorizon
	}
	if o.Location == nil {
		o.Location = time.Local
	}
	return o
}

// Entry is one parsed task line.
type Entry struct {
	Line int
	// Path is the slash separated location of the task below the root, starting with "/".
	Path  string
	Delta *task.Node
}

// Journal is the parsed content of one journal day.
type Journal struct {
	Date    time.Time
	Entries []Entry
	Memo    string
}

// Deltas returns the detached task of every entry in file order.
func (j *Journal) Deltas() []*task.Node {
	out := make([]*task.Node, 0, len(j.Entries))
	for _, e := range j.Entries {
		out = append(out, e.Delta)
	}
	return out
}

func sectionName(s task.Status) string {
	switch s {
	case task.StatusOpen:
		return "OPEN"
	case task.StatusWait:
		return "WAIT"
	case task.StatusClose:
		return "CLOSE"
	case task.StatusConst:
		return "CONST"
	}
	return ""
}
