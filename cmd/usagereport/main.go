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

type auditRecord struct {
	SessionID string         `json:"session_id"`
	Actor     string         `json:"actor"`
	Timestamp string         `json:"timestamp"`
	Event     string         `json:"event"`
	Extra     map[string]any `json:"extra"`
}

type dayUsage struct {
	Date     string `json:"date"`
	Events   int    `json:"events"`
	Failures int    `json:"failures"`
	Actors   int    `json:"actors"`
}

type namedCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type usageReport struct {
	Source       string       `json:"source"`
	FirstEvent   string       `json:"first_event,omitempty"`
	LastEvent    string       `json:"last_event,omitempty"`
	TotalEvents  int          `json:"total_events"`
	Sessions     int          `json:"sessions"`
	Failures     int          `json:"failures"`
	FailureRatio float64      `json:"failure_ratio"`
	BusiestHour  string       `json:"busiest_hour,omitempty"`
	Days         []dayUsage   `json:"days"`
	Events       []namedCount `json:"events"`
	Actors       []namedCount `json:"actors"`
	Malformed    int          `json:"malformed_lines,omitempty"`
}

func main() {
	var inputPath string
	var outputPath string
	var top int
	flag.StringVar(&inputPath, "in", "", "audit log path (required)")
	flag.StringVar(&outputPath, "out", "", "output JSON path (optional, defaults to stdout)")
	flag.IntVar(&top, "top", 20, "number of event names and actors listed")
	flag.Parse()

	if inputPath == "" {
		exit(errors.New("missing --in path"))
	}
	if top <= 0 {
		exit(errors.New("--top must be positive"))
	}

	records, malformed, err := parseAuditFile(inputPath)
	if err != nil {
		exit(fmt.Errorf("parse audit log: %w", err))
	}

	report := buildReport(inputPath, records, malformed, top)

	encoded, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		exit(fmt.Errorf("encode report: %w", err))
	}

	if outputPath == "" {
		fmt.Println(string(encoded))
		return
	}
	if err := os.WriteFile(outputPath, append(encoded, '\n'), 0o644); err != nil {
		exit(fmt.Errorf("write output: %w", err))
	}
}

func exit(err error) {
	fmt.Fprintf(os.Stderr, "usagereport: %v\n", err)
	os.Exit(1)
}

func parseAuditFile(path string) ([]auditRecord, int, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 256*1024), 16*1024*1024)

	var records []auditRecord
	malformed := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var record auditRecord
		if err := json.Unmarshal([]byte(line), &record); err != nil || record.Event == "" {
			malformed++
			continue
		}
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, err
	}
	return records, malformed, nil
}

// isFailure marks the events an operator reviews first: tripped render
// guards, expired sessions and anything that carried an error field.
func isFailure(record auditRecord) bool {
	switch record.Event {
	case "guard.trip", "session.expired":
		return true
	}
	if status, ok := record.Extra["status"].(string); ok && status == "failed" {
		return true
	}
	_, hasErr := record.Extra["error"]
	return hasErr
}

func buildReport(source string, records []auditRecord, malformed, top int) usageReport {
	report := usageReport{
		Source:      source,
		TotalEvents: len(records),
		Malformed:   malformed,
		Days:        []dayUsage{},
		Events:      []namedCount{},
		Actors:      []namedCount{},
	}

	sessions := map[string]bool{}
	eventCounts := map[string]int{}
	actorCounts := map[string]int{}
	hourCounts := map[string]int{}
	dayEvents := map[string]int{}
	dayFailures := map[string]int{}
	dayActors := map[string]map[string]bool{}
	var first, last time.Time

	for _, record := range records {
		sessions[record.SessionID] = true
		eventCounts[record.Event]++
		if record.Actor != "" {
			actorCounts[record.Actor]++
		}
		failed := isFailure(record)
		if failed {
			report.Failures++
		}

		when, err := time.Parse(time.RFC3339, record.Timestamp)
		if err != nil {
			continue
		}
		if first.IsZero() || when.Before(first) {
			first = when
		}
		if last.IsZero() || when.After(last) {
			last = when
		}
		day := when.Format("2006-01-02")
		hourCounts[when.Format("2006-01-02 15:00")]++
		dayEvents[day]++
		if failed {
			dayFailures[day]++
		}
		if record.Actor != "" {
			if dayActors[day] == nil {
				dayActors[day] = map[string]bool{}
			}
			dayActors[day][record.Actor] = true
		}
	}

	report.Sessions = len(sessions)
	if report.TotalEvents > 0 {
		report.FailureRatio = float64(report.Failures) / float64(report.TotalEvents)
	}
	if !first.IsZero() {
		report.FirstEvent = first.Format(time.RFC3339)
		report.LastEvent = last.Format(time.RFC3339)
	}

	busiest := ""
	busiestCount := 0
	for hour, count := range hourCounts {
		if count > busiestCount || (count == busiestCount && hour < busiest) {
			busiest, busiestCount = hour, count
		}
	}
	report.BusiestHour = busiest

	days := make([]string, 0, len(dayEvents))
	for day := range dayEvents {
		days = append(days, day)
	}
	sort.Strings(days)
	for _, day := range days {
		report.Days = append(report.Days, dayUsage{
			Date:     day,
			Events:   dayEvents[day],
			Failures: dayFailures[day],
			Actors:   len(dayActors[day]),
		})
	}

	report.Events = topCounts(eventCounts, top)
	report.Actors = topCounts(actorCounts, top)
	return report
}

func topCounts(counts map[string]int, limit int) []namedCount {
	out := make([]namedCount, 0, len(counts))
	for name, count := range counts {
		out = append(out, namedCount{Name: name, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
