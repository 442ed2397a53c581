package main

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type analyticsPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

type analyticsSummary struct {
	Visits      []analyticsPoint `json:"visits"`
	Leads       []analyticsPoint `json:"leads"`
	Subscribers []analyticsPoint `json:"subscribers"`
	Sales       []analyticsPoint `json:"sales"`
}

type analyticsRangeOption struct {
	key   string
	label string
	days  int
}

var analyticsRanges = []analyticsRangeOption{
	{key: "7d", label: "Last 7 days", days: 7},
	{key: "30d", label: "Last 30 days", days: 30},
	{key: "90d", label: "Last 90 days", days: 90},
	{key: "all", label: "All time", days: 0},
}

func fetchAnalyticsSummary(ctx context.Context, client *fallbackClient) (analyticsSummary, error) {
	var summary analyticsSummary
	if err := client.get(ctx, "/analytics/summary", &summary); err != nil {
		return analyticsSummary{}, err
	}
	return summary, nil
}

// filterPointsSince keeps points on or after cutoff; a zero cutoff
// keeps everything. Dates outside the known layouts are kept rather
// than silently dropped.
func filterPointsSince(points []analyticsPoint, cutoff time.Time) []analyticsPoint {
	if cutoff.IsZero() {
		return points
	}
	var kept []analyticsPoint
	for _, point := range points {
		ts, err := parsePointDate(point.Date)
		if err != nil || !ts.Before(cutoff) {
			kept = append(kept, point)
		}
	}
	return kept
}

func parsePointDate(value string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}

func sumPoints(points []analyticsPoint) float64 {
	var total float64
	for _, point := range points {
		total += point.Value
	}
	return total
}

// analyticsSeries pairs a label with its range-filtered points, the
// unit the aggregation tables work in.
type analyticsSeries struct {
	Label  string
	Points []analyticsPoint
}

func (s analyticsSummary) series(cutoff time.Time) []analyticsSeries {
	return []analyticsSeries{
		{Label: "Visits", Points: filterPointsSince(s.Visits, cutoff)},
		{Label: "Leads", Points: filterPointsSince(s.Leads, cutoff)},
		{Label: "Subscribers", Points: filterPointsSince(s.Subscribers, cutoff)},
		{Label: "Sales", Points: filterPointsSince(s.Sales, cutoff)},
	}
}

func formatCompact(value float64) string {
	switch {
	case value >= 1_000_000:
		return fmt.Sprintf("%.1fM", value/1_000_000)
	case value >= 10_000:
		return fmt.Sprintf("%.0fk", value/1_000)
	case value >= 1_000:
		return fmt.Sprintf("%.1fk", value/1_000)
	case value == float64(int64(value)):
		return fmt.Sprintf("%d", int64(value))
	default:
		return fmt.Sprintf("%.1f", value)
	}
}

type analyticsLoadedMsg struct {
	summary analyticsSummary
}

type analyticsErrorMsg struct {
	err error
}

// analyticsPane renders the aggregate dashboards. It is not a CRUD
// section: the rows pane shows totals, a per-series distribution bar,
// and the busiest days for the active range.
type analyticsPane struct {
	client   *fallbackClient
	summary  analyticsSummary
	loaded   bool
	loading  bool
	lastErr  error
	rangeIdx int
	width    int
	height   int
	now      func() time.Time
}

func newAnalyticsPane(client *fallbackClient) *analyticsPane {
	return &analyticsPane{client: client, rangeIdx: 1, now: time.Now}
}

func (p *analyticsPane) SetSize(width, height int) {
	p.width = width
	p.height = height
}

func (p *analyticsPane) Range() analyticsRangeOption {
	return analyticsRanges[p.rangeIdx]
}

func (p *analyticsPane) CycleRange() {
	p.rangeIdx = (p.rangeIdx + 1) % len(analyticsRanges)
}

func (p *analyticsPane) cutoff() time.Time {
	days := p.Range().days
	if days <= 0 {
		return time.Time{}
	}
	return p.now().AddDate(0, 0, -days)
}

func (p *analyticsPane) Load(ctx context.Context) tea.Cmd {
	client := p.client
	p.loading = true
	return func() tea.Msg {
		summary, err := fetchAnalyticsSummary(ctx, client)
		if err != nil {
			return analyticsErrorMsg{err: err}
		}
		return analyticsLoadedMsg{summary: summary}
	}
}

func (p *analyticsPane) ApplyLoad(msg analyticsLoadedMsg) {
	p.summary = msg.summary
	p.loaded = true
	p.loading = false
	p.lastErr = nil
}

func (p *analyticsPane) ApplyError(msg analyticsErrorMsg) {
	p.loading = false
	p.lastErr = msg.err
}

func (p *analyticsPane) View(st styles) string {
	if p.loading && !p.loaded {
		return st.statusHint.Render("loading analytics…")
	}
	if p.lastErr != nil && !p.loaded {
		return st.errorBanner.Render("analytics unavailable: " + p.lastErr.Error())
	}
	return renderAnalytics(p.summary, p.Range(), p.cutoff(), p.width, st)
}

// renderAnalytics builds the aligned text dashboard: one line per
// series with total, share bar and peak day.
func renderAnalytics(summary analyticsSummary, rng analyticsRangeOption, cutoff time.Time, width int, st styles) string {
	series := summary.series(cutoff)
	var grand float64
	totals := make([]float64, len(series))
	for i, s := range series {
		totals[i] = sumPoints(s.Points)
		grand += totals[i]
	}

	barWidth := width - 44
	if barWidth < 10 {
		barWidth = 10
	}
	if barWidth > 40 {
		barWidth = 40
	}

	var b strings.Builder
	b.WriteString(st.detailTitle.Render("Analytics · "+rng.label) + "\n\n")
	for i, s := range series {
		share := 0.0
		if grand > 0 {
			share = totals[i] / grand
		}
		filled := int(share*float64(barWidth) + 0.5)
		if filled > barWidth {
			filled = barWidth
		}
		bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
		b.WriteString(fmt.Sprintf("%-12s %8s  %s %3.0f%%\n", s.Label, formatCompact(totals[i]), bar, share*100))
	}

	b.WriteString("\n" + st.detailTitle.Render("Busiest days") + "\n")
	for _, s := range series {
		if peak, ok := peakPoint(s.Points); ok {
			b.WriteString(fmt.Sprintf("%-12s %s (%s)\n", s.Label, formatDate(peak.Date), formatCompact(peak.Value)))
		}
	}
	return b.String()
}

func peakPoint(points []analyticsPoint) (analyticsPoint, bool) {
	if len(points) == 0 {
		return analyticsPoint{}, false
	}
	peak := points[0]
	for _, point := range points[1:] {
		if point.Value > peak.Value {
			peak = point
		}
	}
	return peak, true
}

// exportRows flattens the range-filtered series into date-sorted CSV
// records.
func (p *analyticsPane) exportRows() [][]string {
	series := p.summary.series(p.cutoff())
	var records [][]string
	for _, s := range series {
		for _, point := range s.Points {
			records = append(records, []string{point.Date, s.Label, fmt.Sprintf("%g", point.Value)})
		}
	}
	sort.SliceStable(records, func(i, j int) bool {
		if records[i][0] != records[j][0] {
			return records[i][0] < records[j][0]
		}
		return records[i][1] < records[j][1]
	})
	return records
}

func (p *analyticsPane) ExportCSV(dir string) (string, error) {
	return writeCSVExport(dir, "analytics", []string{"date", "series", "value"}, p.exportRows())
}

func (p *analyticsPane) StatCards() []statCard {
	series := p.summary.series(p.cutoff())
	cards := make([]statCard, 0, len(series))
	for _, s := range series {
		cards = append(cards, statCard{Label: s.Label, Value: formatCompact(sumPoints(s.Points))})
	}
	return cards
}
