package dbbackup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTemplate(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		wantErr error
	}{
		{name: "default template", pattern: DefaultFileTemplate},
		{name: "token only", pattern: "[[20060102]]"},
		{name: "dashes in layout", pattern: "db.[[2006-01-02]].sql"},
		{name: "no markers", pattern: "backup.sql", wantErr: ErrMissingDateToken},
		{name: "missing closing marker", pattern: "db.[[20060102.sql", wantErr: ErrMissingDateToken},
		{name: "missing opening marker", pattern: "db.20060102]].sql", wantErr: ErrMissingDateToken},
		{name: "empty layout", pattern: "x[[]]y", wantErr: ErrInvalidDateFormat},
		{name: "closing marker before opening", pattern: "a]]b[[c", wantErr: ErrInvalidDateFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl, err := ParseTemplate(tt.pattern)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.pattern, tmpl.String())
		})
	}
}

func TestParseTemplateSplitsPattern(t *testing.T) {
	tmpl, err := ParseTemplate("db.[[20060102]].sql")
	require.NoError(t, err)

	assert.Equal(t, "20060102", tmpl.DateFormat())
	assert.Equal(t, "db.20230102.sql", tmpl.Render(time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)))
}

func TestRenderMatchRoundTrip(t *testing.T) {
	templates := []string{
		"db.[[20060102]].sql",
		"faturama.[[20060102]].bak.sql",
		"[[2006-01-02]]",
		"backup-[[02012006]].tar.gz",
	}
	dates := []time.Time{
		time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(1999, 12, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
	}

	for _, pattern := range templates {
		tmpl, err := ParseTemplate(pattern)
		require.NoError(t, err)

		for _, d := range dates {
			got, ok := tmpl.Match(tmpl.Render(d))
			require.True(t, ok, "rendered name must match its own template (%s, %s)", pattern, d)
			assert.Equal(t, d, got)
		}
	}
}

func TestMatchDiscardsTimeOfDay(t *testing.T) {
	tmpl, err := ParseTemplate("db.[[20060102]].sql")
	require.NoError(t, err)

	// Render with a clock-carrying time, match must return midnight UTC.
	name := tmpl.Render(time.Date(2023, 5, 6, 13, 37, 59, 0, time.Local))
	got, ok := tmpl.Match(name)
	require.True(t, ok)
	assert.Equal(t, time.Date(2023, 5, 6, 0, 0, 0, 0, time.UTC), got)
}

func TestMatchRejections(t *testing.T) {
	tmpl, err := ParseTemplate("db.[[20060102]].sql")
	require.NoError(t, err)

	tests := []struct {
		name     string
		filename string
	}{
		{name: "wrong prefix", filename: "xb.20230101.sql"},
		{name: "wrong suffix", filename: "db.20230101.txt"},
		{name: "unrelated file", filename: "notes.txt"},
		{name: "garbage date", filename: "db.notadate.sql"},
		{name: "month out of range", filename: "db.20231301.sql"},
		{name: "empty middle", filename: "db..sql"},
		{name: "empty string", filename: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := tmpl.Match(tt.filename)
			assert.False(t, ok)
		})
	}
}

func TestMatchOverlappingPrefixPostfix(t *testing.T) {
	// prefix "db." and postfix ".sql" overlap in a too-short candidate;
	// matching must reject it instead of panicking.
	tmpl, err := ParseTemplate("db.[[20060102]].sql")
	require.NoError(t, err)

	for _, filename := range []string{"db.sql", "db..sq"} {
		_, ok := tmpl.Match(filename)
		assert.False(t, ok, "filename %q", filename)
	}
}
