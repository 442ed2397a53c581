package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"
)

// auditRecord mirrors one line of the dashboard's audit log.
type auditRecord struct {
	SessionID string         `json:"session_id"`
	Actor     string         `json:"actor"`
	Timestamp string         `json:"timestamp"`
	Event     string         `json:"event"`
	Extra     map[string]any `json:"extra"`

	line int
	when time.Time
}

type parseResult struct {
	records   []auditRecord
	malformed int
}

func main() {
	var inputPath string
	var outputPath string
	var eventFilter string
	var actorFilter string
	var sinceFlag string
	flag.StringVar(&inputPath, "in", "", "audit log path (required)")
	flag.StringVar(&outputPath, "out", "", "output file path (optional, defaults to stdout)")
	flag.StringVar(&eventFilter, "event", "", "only events whose name starts with this prefix")
	flag.StringVar(&actorFilter, "actor", "", "only events stamped with this actor")
	flag.StringVar(&sinceFlag, "since", "", "only events after this RFC3339 time or within this duration (e.g. 24h)")
	flag.Parse()

	if inputPath == "" {
		exitWithError(errors.New("missing --in path"))
	}

	since, err := parseSince(sinceFlag)
	if err != nil {
		exitWithError(err)
	}

	result, err := parseAuditFile(inputPath)
	if err != nil {
		exitWithError(fmt.Errorf("parse audit log: %w", err))
	}

	kept := filterRecords(result.records, eventFilter, actorFilter, since)
	rendered := renderRecords(kept, result.malformed)

	if outputPath == "" {
		fmt.Println(rendered)
		return
	}
	if err := os.WriteFile(outputPath, []byte(rendered+"\n"), 0o644); err != nil {
		exitWithError(fmt.Errorf("write output: %w", err))
	}
}

func exitWithError(err error) {
	fmt.Fprintf(os.Stderr, "auditview: %v\n", err)
	os.Exit(1)
}

func parseSince(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts, nil
	}
	if d, err := time.ParseDuration(value); err == nil {
		return time.Now().Add(-d), nil
	}
	return time.Time{}, fmt.Errorf("cannot read --since %q: want RFC3339 time or duration", value)
}

func parseAuditFile(path string) (parseResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return parseResult{}, err
	}
	defer file.Close()
	return parseAudit(bufio.NewScanner(file))
}

func parseAudit(scanner *bufio.Scanner) (parseResult, error) {
	scanner.Buffer(make([]byte, 0, 256*1024), 16*1024*1024)

	var result parseResult
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var record auditRecord
		if err := json.Unmarshal([]byte(line), &record); err != nil || record.Event == "" {
			result.malformed++
			continue
		}
		record.line = lineNo
		record.when, _ = time.Parse(time.RFC3339, record.Timestamp)
		result.records = append(result.records, record)
	}
	if err := scanner.Err(); err != nil {
		return parseResult{}, err
	}
	return result, nil
}

func filterRecords(records []auditRecord, eventPrefix, actor string, since time.Time) []auditRecord {
	var kept []auditRecord
	for _, record := range records {
		if eventPrefix != "" && !strings.HasPrefix(record.Event, eventPrefix) {
			continue
		}
		if actor != "" && !strings.EqualFold(record.Actor, actor) {
			continue
		}
		if !since.IsZero() && (record.when.IsZero() || record.when.Before(since)) {
			continue
		}
		kept = append(kept, record)
	}
	return kept
}

func renderRecords(records []auditRecord, malformed int) string {
	var out []string
	for _, record := range records {
		out = append(out, renderRecord(record)...)
		out = append(out, "")
	}
	out = append(out, renderSummary(records, malformed)...)
	return strings.Join(out, "\n")
}

func renderRecord(record auditRecord) []string {
	var out []string
	out = append(out, "------------------")
	out = append(out, fmt.Sprintf("%s (line %d)", record.Event, record.line))
	out = append(out, "------------------")
	out = append(out, "time: "+formatWhen(record))
	if record.Actor != "" {
		out = append(out, "actor: "+record.Actor)
	}
	out = append(out, "session: "+shortSession(record.SessionID))
	for _, key := range sortedKeys(record.Extra) {
		out = append(out, fmt.Sprintf("%s: %s", key, formatValue(record.Extra[key])))
	}
	return out
}

func renderSummary(records []auditRecord, malformed int) []string {
	counts := map[string]int{}
	for _, record := range records {
		counts[record.Event]++
	}
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	out := []string{
		"==================",
		fmt.Sprintf("%d events", len(records)),
	}
	for _, name := range names {
		out = append(out, fmt.Sprintf("  %-24s %d", name, counts[name]))
	}
	if malformed > 0 {
		out = append(out, fmt.Sprintf("skipped %d malformed lines", malformed))
	}
	return out
}

func formatWhen(record auditRecord) string {
	if record.when.IsZero() {
		return record.Timestamp
	}
	return record.when.Local().Format("2006-01-02 15:04:05")
}

func shortSession(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func sortedKeys(extra map[string]any) []string {
	keys := make([]string, 0, len(extra))
	for key := range extra {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func formatValue(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%g", v)
	case bool:
		return fmt.Sprintf("%t", v)
	case nil:
		return ""
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(data)
	}
}
