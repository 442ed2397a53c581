package main

import (
	"bufio"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scanAudit(t *testing.T, text string) parseResult {
	t.Helper()
	result, err := parseAudit(bufio.NewScanner(strings.NewReader(text)))
	require.NoError(t, err)
	return result
}

func TestParseAuditKeepsLineNumbersAndSkipsJunk(t *testing.T) {
	log := `{"session_id":"abc12345-6789","actor":"kaan@manrongroup.com","timestamp":"2026-08-20T10:15:00Z","event":"section.load","extra":{"section":"blogs","rows":12}}

not json at all
{"timestamp":"2026-08-20T10:16:00Z"}
{"session_id":"abc12345-6789","timestamp":"nonsense","event":"job.finished","extra":{"sent":10,"failed":0,"status":"succeeded"}}
`
	result := scanAudit(t, log)
	assert.Equal(t, 2, result.malformed)
	require.Len(t, result.records, 2)

	assert.Equal(t, 1, result.records[0].line)
	assert.Equal(t, "section.load", result.records[0].Event)
	assert.Equal(t, "2026-08-20T10:15:00Z", result.records[0].when.Format(time.RFC3339))

	// blank lines still count toward line numbers
	assert.Equal(t, 5, result.records[1].line)
	assert.True(t, result.records[1].when.IsZero())
}

func TestParseSinceAcceptsTimeAndDuration(t *testing.T) {
	none, err := parseSince("")
	require.NoError(t, err)
	assert.True(t, none.IsZero())

	exact, err := parseSince("2026-08-20T00:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, "2026-08-20T00:00:00Z", exact.Format(time.RFC3339))

	ago, err := parseSince("24h")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(-24*time.Hour), ago, time.Minute)

	_, err = parseSince("last tuesday")
	assert.Error(t, err)
}

func TestFilterRecordsByPrefixActorAndTime(t *testing.T) {
	base := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	records := []auditRecord{
		{Event: "login", Actor: "kaan@manrongroup.com", when: base},
		{Event: "job.started", Actor: "kaan@manrongroup.com", when: base.Add(time.Hour)},
		{Event: "job.finished", Actor: "mira@manrongroup.com", when: base.Add(2 * time.Hour)},
		{Event: "export.csv", Actor: "mira@manrongroup.com"},
	}

	jobs := filterRecords(records, "job.", "", time.Time{})
	require.Len(t, jobs, 2)
	assert.Equal(t, "job.started", jobs[0].Event)

	mira := filterRecords(records, "", "MIRA@manrongroup.com", time.Time{})
	assert.Len(t, mira, 2)

	// records without a parsed timestamp drop out once --since is set
	recent := filterRecords(records, "", "", base.Add(30*time.Minute))
	require.Len(t, recent, 2)
	assert.Equal(t, "job.started", recent[0].Event)

	assert.Empty(t, filterRecords(records, "login", "mira@manrongroup.com", time.Time{}))
}

func TestRenderRecordsShowsExtrasAndSummary(t *testing.T) {
	records := []auditRecord{
		{
			SessionID: "abcdefgh-1234",
			Actor:     "kaan@manrongroup.com",
			Event:     "login",
			Extra:     map[string]any{"role": "admin"},
			line:      3,
		},
		{SessionID: "abcdefgh-1234", Event: "session.end", line: 9},
	}
	out := renderRecords(records, 1)

	assert.Contains(t, out, "login (line 3)")
	assert.Contains(t, out, "actor: kaan@manrongroup.com")
	assert.Contains(t, out, "session: abcdefgh")
	assert.Contains(t, out, "role: admin")
	assert.Contains(t, out, "session.end (line 9)")
	assert.Contains(t, out, "2 events")
	assert.Contains(t, out, "skipped 1 malformed lines")
}

func TestFormatWhenFallsBackToRawTimestamp(t *testing.T) {
	raw := auditRecord{Timestamp: "whenever"}
	assert.Equal(t, "whenever", formatWhen(raw))
}

func TestFormatValueShapes(t *testing.T) {
	assert.Equal(t, "blogs", formatValue("blogs"))
	assert.Equal(t, "12", formatValue(float64(12)))
	assert.Equal(t, "2.5", formatValue(2.5))
	assert.Equal(t, "true", formatValue(true))
	assert.Equal(t, "", formatValue(nil))
	assert.Equal(t, `["a","b"]`, formatValue([]any{"a", "b"}))
}

func TestShortSession(t *testing.T) {
	assert.Equal(t, "abcdefgh", shortSession("abcdefgh-1234"))
	assert.Equal(t, "short", shortSession("short"))
}

func TestParseAuditFileMissing(t *testing.T) {
	_, err := parseAuditFile(filepath.Join(t.TempDir(), "absent.ndjson"))
	assert.Error(t, err)
}
