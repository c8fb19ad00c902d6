package dbbackup

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	datePlaceholderStart = "[["
	datePlaceholderEnd   = "]]"
)

var (
	// ErrMissingDateToken indicates the template contains no [[...]] date token.
	ErrMissingDateToken = errors.New("date format must be included in the filename template, enclosed by \"[[\" and \"]]\"")

	// ErrInvalidDateFormat indicates the embedded date layout is unusable.
	ErrInvalidDateFormat = errors.New("invalid date format")
)

// FilenameTemplate names backup files after the date they were created and
// recognizes such names again. A template is a literal filename with one
// embedded Go time layout between "[[" and "]]", e.g.
// "faturama.[[20060102]].bak.sql". Immutable once parsed.
type FilenameTemplate struct {
	raw        string
	prefix     string
	postfix    string
	dateFormat string
}

// ParseTemplate parses a filename template.
//
// The first occurrence of "[[" and the first occurrence of "]]" are located
// independently; there is no check that the closing marker comes after the
// opening one. A template with "]]" before "[[" therefore yields an empty
// date layout and fails with ErrInvalidDateFormat. The layout itself is only
// sanity-checked: formatting today's date with it must produce a non-empty
// string. That rejects "[[]]" but does not prove the layout round-trips.
func ParseTemplate(pattern string) (*FilenameTemplate, error) {
	start := strings.Index(pattern, datePlaceholderStart)
	end := strings.Index(pattern, datePlaceholderEnd)
	if start == -1 || end == -1 {
		return nil, fmt.Errorf("%w (got %q)", ErrMissingDateToken, pattern)
	}

	var dateFormat string
	if formatStart := start + len(datePlaceholderStart); end > formatStart {
		dateFormat = pattern[formatStart:end]
	}
	if time.Now().Format(dateFormat) == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDateFormat, dateFormat)
	}

	return &FilenameTemplate{
		raw:        pattern,
		prefix:     pattern[:start],
		postfix:    pattern[end+len(datePlaceholderEnd):],
		dateFormat: dateFormat,
	}, nil
}

// Render returns the backup filename for the given date.
func (t *FilenameTemplate) Render(date time.Time) string {
	return t.prefix + date.Format(t.dateFormat) + t.postfix
}

// Match reports whether filename was produced by this template and, if so,
// the calendar date embedded in it. Matching is a filter, not a validator:
// a middle segment that fails to parse against the date layout is simply
// not a match.
func (t *FilenameTemplate) Match(filename string) (time.Time, bool) {
	if !strings.HasPrefix(filename, t.prefix) || !strings.HasSuffix(filename, t.postfix) {
		return time.Time{}, false
	}
	// Guard against prefix and postfix overlapping in a too-short name.
	if len(filename) < len(t.prefix)+len(t.postfix) {
		return time.Time{}, false
	}

	middle := filename[len(t.prefix) : len(filename)-len(t.postfix)]
	parsed, err := time.Parse(t.dateFormat, middle)
	if err != nil {
		return time.Time{}, false
	}

	// Drop any time-of-day the layout may carry.
	year, month, day := parsed.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), true
}

// DateFormat returns the embedded Go time layout.
func (t *FilenameTemplate) DateFormat() string {
	return t.dateFormat
}

// String returns the original template string.
func (t *FilenameTemplate) String() string {
	return t.raw
}
