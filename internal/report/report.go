// Package report builds executive reports from an enriched dataset at daily,
// weekly, monthly and quarterly cadence. Reporting periods anchor at the most
// recent call date in the data rather than the wall clock, so a report over a
// historical dataset covers that dataset's own last day, week, month or
// quarter.
package report

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"vcon-insights/internal/insights"
	"vcon-insights/internal/types"
)

// Frequency selects the reporting period.
type Frequency string

const (
	Daily     Frequency = "daily"
	Weekly    Frequency = "weekly"
	Monthly   Frequency = "monthly"
	Quarterly Frequency = "quarterly"
)

// ParseFrequency maps a flag value onto a Frequency, case-insensitively.
func ParseFrequency(s string) (Frequency, error) {
	switch f := Frequency(strings.ToLower(strings.TrimSpace(s))); f {
	case Daily, Weekly, Monthly, Quarterly:
		return f, nil
	default:
		return "", fmt.Errorf("unknown report frequency %q", s)
	}
}

const (
	healthySatisfaction   = 7.0
	excellentSatisfaction = 8.0
	criticalSatisfaction  = 6.0

	wowSatisfactionDrop = -1.0
	wowCallDropPct      = -20.0

	retentionAlertPct    = 80.0
	retentionStrategyPct = 85.0
)

// KeyMetrics are the aggregates for one reporting period. AvgScriptAdherence
// is a 0..1 rate; ResolutionRate and RetentionRate are percentages.
type KeyMetrics struct {
	TotalCalls         int               `json:"total_calls"`
	UniqueCustomers    int               `json:"unique_customers"`
	AvgSatisfaction    float64           `json:"avg_satisfaction"`
	AvgQuality         float64           `json:"avg_quality"`
	AvgScriptAdherence float64           `json:"avg_script_adherence"`
	ResolutionRate     float64           `json:"resolution_rate"`
	AvgDurationMinutes float64           `json:"avg_duration_minutes"`
	SentimentCounts    map[string]int    `json:"sentiment_distribution,omitempty"`
	TopAgents          []insights.Metric `json:"top_agents,omitempty"`
	LocationCalls      []insights.Metric `json:"location_calls,omitempty"`
	RetentionRate      float64           `json:"customer_retention_rate"`
}

// WeekOverWeek compares the weekly period against the seven days before it.
type WeekOverWeek struct {
	CallsPct     float64 `json:"calls"`
	Satisfaction float64 `json:"satisfaction"`
	Quality      float64 `json:"quality"`
}

// Alert is one condition requiring leadership attention.
type Alert struct {
	Type           string `json:"type"`
	Title          string `json:"title"`
	Message        string `json:"message"`
	ActionRequired bool   `json:"action_required"`
}

// Report is one generated executive report.
type Report struct {
	ReportID        string        `json:"report_id"`
	GeneratedAt     string        `json:"generated_at"`
	Frequency       Frequency     `json:"frequency"`
	Period          string        `json:"report_period"`
	PeriodStart     string        `json:"period_start,omitempty"`
	PeriodEnd       string        `json:"period_end,omitempty"`
	Headline        string        `json:"headline"`
	KeyPoints       []string      `json:"key_points,omitempty"`
	Status          string        `json:"status"`
	Metrics         KeyMetrics    `json:"key_metrics"`
	WoW             *WeekOverWeek `json:"wow_changes,omitempty"`
	Insights        []string      `json:"performance_insights,omitempty"`
	Recommendations []string      `json:"recommendations,omitempty"`
	Alerts          []Alert       `json:"alerts,omitempty"`
}

// JSON renders the report as indented JSON for files and stdout.
func (r Report) JSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// Generate builds the report for one frequency over the given records.
// An empty dataset produces the no-data report rather than an error.
func Generate(records []types.EnrichedRecord, freq Frequency) Report {
	if len(records) == 0 {
		return emptyReport(freq)
	}
	anchor, err := time.Parse("2006-01-02", latestDate(records))
	if err != nil {
		return emptyReport(freq)
	}

	p := periodFor(freq, anchor)
	periodRecords := filterRange(records, p.start, p.end)
	if len(periodRecords) == 0 {
		return emptyReport(freq)
	}

	m := keyMetrics(periodRecords, topAgentLimit(freq))
	var wow *WeekOverWeek
	if freq == Weekly {
		wow = weekOverWeek(records, m, p.start)
	}

	r := Report{
		ReportID:    p.id,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Frequency:   freq,
		Period:      p.label,
		PeriodStart: p.start,
		PeriodEnd:   p.end,
		Metrics:     m,
		WoW:         wow,
		Insights:    insights.New(periodRecords).ExecutiveSummary().Insights,
	}
	r.Headline, r.KeyPoints, r.Status = executiveSummary(freq, m)
	r.Alerts = alerts(freq, m, wow)
	r.Recommendations = recommendations(freq, m, wow, records, periodRecords)
	return r
}

type period struct {
	id    string
	label string
	start string
	end   string
}

func periodFor(freq Frequency, anchor time.Time) period {
	switch freq {
	case Weekly:
		start := anchor.AddDate(0, 0, -6)
		return period{
			id:    fmt.Sprintf("weekly_%s_%s", start.Format("20060102"), anchor.Format("20060102")),
			label: fmt.Sprintf("Weekly Report - %s to %s", start.Format("January 2"), anchor.Format("January 2, 2006")),
			start: start.Format("2006-01-02"),
			end:   anchor.Format("2006-01-02"),
		}
	case Monthly:
		first := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, time.UTC)
		return period{
			id:    "monthly_" + first.Format("200601"),
			label: "Monthly Report - " + first.Format("January 2006"),
			start: first.Format("2006-01-02"),
			end:   first.AddDate(0, 1, -1).Format("2006-01-02"),
		}
	case Quarterly:
		q := (int(anchor.Month())-1)/3 + 1
		first := time.Date(anchor.Year(), time.Month(3*q-2), 1, 0, 0, 0, 0, time.UTC)
		return period{
			id:    fmt.Sprintf("quarterly_%dQ%d", anchor.Year(), q),
			label: fmt.Sprintf("Quarterly Report - Q%d %d", q, anchor.Year()),
			start: first.Format("2006-01-02"),
			end:   first.AddDate(0, 3, -1).Format("2006-01-02"),
		}
	default:
		day := anchor.Format("2006-01-02")
		return period{
			id:    "daily_" + anchor.Format("20060102"),
			label: "Daily Report - " + anchor.Format("January 2, 2006"),
			start: day,
			end:   day,
		}
	}
}

func topAgentLimit(freq Frequency) int {
	if freq == Monthly || freq == Quarterly {
		return 10
	}
	return 3
}

func latestDate(records []types.EnrichedRecord) string {
	latest := records[0].CallDate
	for i := range records {
		// ISO dates compare correctly as strings
		if records[i].CallDate > latest {
			latest = records[i].CallDate
		}
	}
	return latest
}

func filterRange(records []types.EnrichedRecord, start, end string) []types.EnrichedRecord {
	var out []types.EnrichedRecord
	for i := range records {
		if d := records[i].CallDate; d >= start && d <= end {
			out = append(out, records[i])
		}
	}
	return out
}

func keyMetrics(records []types.EnrichedRecord, topAgents int) KeyMetrics {
	var sat, quality, adherence, duration float64
	resolved := 0
	customers := make(map[string]int)
	sentiments := make(map[string]int)
	agentSums := make(map[string]float64)
	agentCalls := make(map[string]int)
	locations := make(map[string]float64)
	for i := range records {
		r := &records[i]
		sat += r.SatisfactionScore
		quality += r.CallQualityScore
		adherence += r.AdherenceRate
		duration += r.DurationSeconds
		if r.CallOutcome == "resolved" {
			resolved++
		}
		customers[r.CustomerName]++
		sentiments[r.Label]++
		agentSums[r.AgentName] += r.SatisfactionScore
		agentCalls[r.AgentName]++
		locations[r.Location]++
	}

	repeat := 0
	for _, n := range customers {
		if n > 1 {
			repeat++
		}
	}
	agentMeans := make(map[string]float64, len(agentSums))
	for name, sum := range agentSums {
		agentMeans[name] = round2(sum / float64(agentCalls[name]))
	}

	n := float64(len(records))
	return KeyMetrics{
		TotalCalls:         len(records),
		UniqueCustomers:    len(customers),
		AvgSatisfaction:    round2(sat / n),
		AvgQuality:         round2(quality / n),
		AvgScriptAdherence: round2(adherence / n),
		ResolutionRate:     round1(float64(resolved) / n * 100),
		AvgDurationMinutes: round2(duration / n / 60),
		SentimentCounts:    sentiments,
		TopAgents:          insights.TopMetrics(agentMeans, topAgents),
		LocationCalls:      insights.TopMetrics(locations, 0),
		RetentionRate:      round1(float64(repeat) / float64(len(customers)) * 100),
	}
}

// weekOverWeek compares the current weekly metrics against the seven days
// before the period start. Returns nil when the prior week holds no calls.
func weekOverWeek(all []types.EnrichedRecord, current KeyMetrics, periodStart string) *WeekOverWeek {
	start, err := time.Parse("2006-01-02", periodStart)
	if err != nil {
		return nil
	}
	prev := filterRange(all,
		start.AddDate(0, 0, -7).Format("2006-01-02"),
		start.AddDate(0, 0, -1).Format("2006-01-02"))
	if len(prev) == 0 {
		return nil
	}

	var sat, quality float64
	for i := range prev {
		sat += prev[i].SatisfactionScore
		quality += prev[i].CallQualityScore
	}
	n := float64(len(prev))
	return &WeekOverWeek{
		CallsPct:     round1(float64(current.TotalCalls-len(prev)) / n * 100),
		Satisfaction: round2(current.AvgSatisfaction - sat/n),
		Quality:      round2(current.AvgQuality - quality/n),
	}
}

func executiveSummary(freq Frequency, m KeyMetrics) (headline string, keyPoints []string, status string) {
	switch freq {
	case Weekly:
		headline = fmt.Sprintf("Weekly Performance: %d calls, %d customers", m.TotalCalls, m.UniqueCustomers)
		keyPoints = []string{
			fmt.Sprintf("Customer satisfaction: %.1f/10", m.AvgSatisfaction),
			fmt.Sprintf("Quality score: %.1f/10", m.AvgQuality),
			"Week-over-week changes tracked",
		}
		status = "needs_attention"
		if m.AvgSatisfaction >= healthySatisfaction {
			status = "healthy"
		}
	case Monthly:
		headline = fmt.Sprintf("Monthly Performance: %d interactions with %d customers", m.TotalCalls, m.UniqueCustomers)
		keyPoints = []string{
			fmt.Sprintf("Overall satisfaction: %.1f/10", m.AvgSatisfaction),
			fmt.Sprintf("Operational efficiency: %.0f%% resolution rate", m.ResolutionRate),
			"Location and agent performance analyzed",
		}
		switch {
		case m.AvgSatisfaction >= excellentSatisfaction:
			status = "excellent"
		case m.AvgSatisfaction >= healthySatisfaction:
			status = "good"
		default:
			status = "needs_improvement"
		}
	case Quarterly:
		headline = fmt.Sprintf("Quarterly Review: %d customer interactions", m.TotalCalls)
		keyPoints = []string{
			fmt.Sprintf("Customer retention: %.1f%%", m.RetentionRate),
			"Satisfaction trends analyzed",
			"Strategic recommendations provided",
		}
		switch {
		case m.AvgSatisfaction >= excellentSatisfaction:
			status = "strong"
		case m.AvgSatisfaction >= healthySatisfaction:
			status = "stable"
		default:
			status = "requires_attention"
		}
	default:
		headline = fmt.Sprintf("Daily Performance: %d customer interactions", m.TotalCalls)
		keyPoints = []string{
			fmt.Sprintf("Average satisfaction: %.1f/10", m.AvgSatisfaction),
			fmt.Sprintf("Call quality: %.1f/10", m.AvgQuality),
			fmt.Sprintf("Resolution rate: %.0f%%", m.ResolutionRate),
		}
		status = "attention_needed"
		if m.AvgSatisfaction >= healthySatisfaction {
			status = "healthy"
		}
	}
	return headline, keyPoints, status
}

func alerts(freq Frequency, m KeyMetrics, wow *WeekOverWeek) []Alert {
	var out []Alert
	switch freq {
	case Weekly:
		if wow == nil {
			return nil
		}
		if wow.Satisfaction < wowSatisfactionDrop {
			out = append(out, Alert{
				Type:           "warning",
				Title:          "Declining Satisfaction Trend",
				Message:        fmt.Sprintf("Customer satisfaction dropped by %.1f points this week", math.Abs(wow.Satisfaction)),
				ActionRequired: true,
			})
		}
		if wow.CallsPct < wowCallDropPct {
			out = append(out, Alert{
				Type:    "info",
				Title:   "Call Volume Decrease",
				Message: fmt.Sprintf("Call volume decreased by %.1f%% compared to last week", math.Abs(wow.CallsPct)),
			})
		}
	case Monthly:
		if m.AvgSatisfaction < healthySatisfaction {
			out = append(out, Alert{
				Type:           "critical",
				Title:          "Monthly Satisfaction Below Target",
				Message:        fmt.Sprintf("Monthly average satisfaction (%.1f) below target of 7.0", m.AvgSatisfaction),
				ActionRequired: true,
			})
		}
	case Quarterly:
		if m.RetentionRate < retentionAlertPct {
			out = append(out, Alert{
				Type:           "critical",
				Title:          "Customer Retention Risk",
				Message:        fmt.Sprintf("Quarterly retention rate (%.1f%%) below healthy threshold", m.RetentionRate),
				ActionRequired: true,
			})
		}
	default:
		if m.AvgSatisfaction < criticalSatisfaction {
			out = append(out, Alert{
				Type:           "critical",
				Title:          "Low Customer Satisfaction",
				Message:        fmt.Sprintf("Daily satisfaction score (%.1f) below critical threshold", m.AvgSatisfaction),
				ActionRequired: true,
			})
		}
	}
	return out
}

func recommendations(freq Frequency, m KeyMetrics, wow *WeekOverWeek, all, periodRecords []types.EnrichedRecord) []string {
	var out []string
	switch freq {
	case Weekly:
		if wow != nil && wow.Satisfaction < 0 {
			out = append(out, "Implement immediate satisfaction recovery initiatives")
		}
		if high := insights.New(periodRecords).RetentionRisk().HighRisk.Count; high > 0 {
			out = append(out, fmt.Sprintf("Prioritize retention efforts for %d high-risk customers", high))
		}
	case Monthly:
		if m.AvgSatisfaction < excellentSatisfaction {
			out = append(out, "Launch customer satisfaction improvement initiative")
		}
		// driver analysis runs over the full dataset for a stronger signal
		drivers := insights.New(all).SatisfactionDrivers().Recommendations
		if len(drivers) > 3 {
			drivers = drivers[:3]
		}
		out = append(out, drivers...)
	case Quarterly:
		if m.RetentionRate < retentionStrategyPct {
			out = append(out, "Develop comprehensive customer retention strategy")
		}
		if m.AvgSatisfaction < excellentSatisfaction {
			out = append(out, "Invest in customer experience transformation initiatives")
		}
		out = append(out, "Review and update service delivery protocols based on performance data")
	default:
		if m.AvgSatisfaction < healthySatisfaction {
			out = append(out, "Schedule immediate coaching session for underperforming agents")
		}
		if m.TotalCalls > 0 {
			out = append(out, "Review top-performing interactions for best practice sharing")
		}
	}
	return out
}

func emptyReport(freq Frequency) Report {
	now := time.Now().UTC()
	return Report{
		ReportID:        fmt.Sprintf("empty_%s_%s", freq, now.Format("20060102")),
		GeneratedAt:     now.Format(time.RFC3339),
		Frequency:       freq,
		Period:          fmt.Sprintf("No data available for %s report", freq),
		Headline:        "No data available",
		Status:          "no_data",
		Recommendations: []string{"Ensure data collection systems are operational"},
		Alerts: []Alert{{
			Type:           "critical",
			Title:          "No Data Available",
			Message:        "No conversation data found for reporting period",
			ActionRequired: true,
		}},
	}
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
