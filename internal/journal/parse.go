package journal

import (
	"bufio"
	"fmt"
	"io"
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rpggio/tasktory/internal/domain/task"
)

var (
	dateRegex     = regexp.MustCompile(`^(\d{4})[/-](\d{1,2})[/-](\d{1,2})$`)
	sectionRegex  = regexp.MustCompile(`^\[([A-Za-z]+)\]$`)
	taskLineRegex = regexp.MustCompile(`^(/.*)\s+(\d+)(?:\s+@(\S+))?(?:\s+(\d.*))?$`)
	timeRegex     = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?::(\d{2}))?\s*-\s*(\d{1,2}):(\d{2})(?::(\d{2}))?$`)
	deadlineRegex = regexp.MustCompile(`^(?:(\d{4})/)?(\d{1,2})/(\d{1,2})$`)
	daysRegex     = regexp.MustCompile(`^-?\d+$`)
)

// Parse reads a journal and returns one detached delta per task line, with
// the status of the section the line appears in.
func Parse(r io.Reader, opts Options) (*Journal, error) {
	opts = opts.withDefaults()
	scanner := bufio.NewScanner(r)

	var (
		j       Journal
		lineNo  int
		status  task.Status
		inMemo  bool
		hasDate bool
		memo    []string
	)

	for scanner.Scan() {
		lineNo++
		raw := scanner.Text()
		if inMemo {
			memo = append(memo, raw)
			continue
		}

		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if !hasDate {
			date, err := parseDate(line, opts.Location)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			j.Date = date
			hasDate = true
			continue
		}

		if m := sectionRegex.FindStringSubmatch(line); m != nil {
			name := strings.ToUpper(m[1])
			if name == memoSection {
				inMemo = true
				continue
			}
			st, err := task.ParseStatus(name)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w: unknown section %q", lineNo, ErrSyntax, m[1])
			}
			status = st
			continue
		}

		if status == "" {
			return nil, fmt.Errorf("line %d: %w: task line outside a status section", lineNo, ErrSyntax)
		}
		entry, err := parseTaskLine(line, j.Date, status, opts)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		entry.Line = lineNo
		j.Entries = append(j.Entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read journal: %w", err)
	}
	if !hasDate {
		return nil, fmt.Errorf("%w: missing date", ErrSyntax)
	}

	j.Memo = strings.TrimRight(strings.Join(memo, "\n"), "\n")
	return &j, nil
}

func parseDate(s string, loc *time.Location) (time.Time, error) {
	m := dateRegex.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, fmt.Errorf("%w: expected a date, got %q", ErrSyntax, s)
	}
	y, _ := strconv.Atoi(m[1])
	mo, _ := strconv.Atoi(m[2])
	d, _ := strconv.Atoi(m[3])
	date, ok := makeDate(y, mo, d, loc)
	if !ok {
		return time.Time{}, fmt.Errorf("%w: invalid date %q", ErrSyntax, s)
	}
	return date, nil
}

// makeDate rejects dates that time.Date would normalize, such as February 30.
func makeDate(y, m, d int, loc *time.Location) (time.Time, bool) {
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, loc)
	return t, t.Year() == y && int(t.Month()) == m && t.Day() == d
}

func parseTaskLine(line string, date time.Time, status task.Status, opts Options) (Entry, error) {
	m := taskLineRegex.FindStringSubmatch(line)
	if m == nil {
		return Entry{}, fmt.Errorf("%w: malformed task line %q", ErrSyntax, line)
	}

	p := path.Clean(strings.TrimSpace(m[1]))
	name := path.Base(p)
	if err := task.ValidateName(name); err != nil || p == "/" {
		return Entry{}, fmt.Errorf("%w: bad task path %q", ErrSyntax, m[1])
	}

	id, err := strconv.Atoi(m[2])
	if err != nil {
		return Entry{}, fmt.Errorf("%w: bad task id %q", ErrSyntax, m[2])
	}

	deadline := 0
	if m[3] != "" {
		deadline, err = parseDeadline(m[3], date)
		if err != nil {
			return Entry{}, err
		}
	}

	delta := task.New(id, name, deadline)
	delta.Status = status
	if m[4] != "" {
		sessions, err := parseTimes(m[4], date, opts)
		if err != nil {
			return Entry{}, err
		}
		delta.Timetable = sessions
	}

	return Entry{Path: p, Delta: delta}, nil
}

// parseDeadline accepts a day count relative to date, M/D or Y/M/D. A M/D
// that already passed this year refers to next year.
func parseDeadline(s string, date time.Time) (int, error) {
	today := task.Ordinal(date)
	if daysRegex.MatchString(s) {
		days, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("%w: bad deadline %q", ErrSyntax, s)
		}
		return today + days, nil
	}

	m := deadlineRegex.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("%w: bad deadline %q", ErrSyntax, s)
	}
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])

	year := date.Year()
	if m[1] != "" {
		year, _ = strconv.Atoi(m[1])
	}
	d, ok := makeDate(year, month, day, date.Location())
	if !ok {
		return 0, fmt.Errorf("%w: bad deadline %q", ErrSyntax, s)
	}
	if m[1] == "" && task.Ordinal(d) < today {
		if d, ok = makeDate(year+1, month, day, date.Location()); !ok {
			return 0, fmt.Errorf("%w: bad deadline %q", ErrSyntax, s)
		}
	}
	return task.Ordinal(d), nil
}

func parseTimes(s string, date time.Time, opts Options) ([]task.Session, error) {
	var sessions []task.Session
	for _, phrase := range strings.Split(s, opts.TimesDelimiter) {
		phrase = strings.TrimSpace(phrase)
		if phrase == "" {
			continue
		}
		m := timeRegex.FindStringSubmatch(phrase)
		if m == nil {
			return nil, fmt.Errorf("%w: bad time range %q", ErrSyntax, phrase)
		}
		start, ok := clock(date, m[1], m[2], m[3])
		if !ok {
			return nil, fmt.Errorf("%w: bad time range %q", ErrSyntax, phrase)
		}
		end, ok := clock(date, m[4], m[5], m[6])
		if !ok || end.Before(start) {
			return nil, fmt.Errorf("%w: bad time range %q", ErrSyntax, phrase)
		}
		sessions = append(sessions, task.Session{
			Start:    start.Unix(),
			Duration: int64(end.Sub(start) / time.Second),
		})
	}
	return sessions, nil
}

func clock(date time.Time, h, m, s string) (time.Time, bool) {
	hour, _ := strconv.Atoi(h)
	minute, _ := strconv.Atoi(m)
	second := 0
	if s != "" {
		second, _ = strconv.Atoi(s)
	}
	if hour > 24 || minute > 59 || second > 59 || (hour == 24 && (minute > 0 || second > 0)) {
		return time.Time{}, false
	}
	y, mo, d := date.Date()
	return time.Date(y, mo, d, hour, minute, second, 0, date.Location()), true
}
