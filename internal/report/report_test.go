package report

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"vcon-insights/internal/insights"
	"vcon-insights/internal/types"
)

type callSpec struct {
	date      string
	hour      int
	agent     string
	location  string
	customer  string
	sat       float64
	quality   float64
	adherence float64
	duration  float64
	label     string
	outcome   string
}

func call(s callSpec) types.EnrichedRecord {
	return types.EnrichedRecord{
		CallDetails: types.CallDetails{
			ConversationID:  s.date + "/" + s.customer,
			AgentName:       s.agent,
			Location:        s.location,
			CustomerName:    s.customer,
			DurationSeconds: s.duration,
		},
		Sentiment:       types.Sentiment{Label: s.label, SatisfactionScore: s.sat},
		Quality:         types.Quality{CallQualityScore: s.quality},
		ScriptAdherence: types.ScriptAdherence{AdherenceRate: s.adherence},
		Temporal:        types.Temporal{CallDate: s.date, CallHour: s.hour},
		CallOutcome:     s.outcome,
	}
}

// fixture anchors at 2025-03-15: two calls that day, one earlier in the same
// week, two in the week before, one in February. Every period aggregate below
// is hand-checked.
func fixture() []types.EnrichedRecord {
	return []types.EnrichedRecord{
		call(callSpec{date: "2025-03-15", hour: 9, agent: "Amy", location: "Downtown", customer: "Pat",
			sat: 9, quality: 9, adherence: 0.9, duration: 300, label: "positive", outcome: "resolved"}),
		call(callSpec{date: "2025-03-15", hour: 14, agent: "Ben", location: "Uptown", customer: "Quinn",
			sat: 5, quality: 6, adherence: 0.6, duration: 600, label: "negative", outcome: "escalated"}),
		call(callSpec{date: "2025-03-10", hour: 10, agent: "Amy", location: "Downtown", customer: "Pat",
			sat: 8, quality: 8, adherence: 0.8, duration: 300, label: "positive", outcome: "resolved"}),
		call(callSpec{date: "2025-03-05", hour: 9, agent: "Amy", location: "Downtown", customer: "Sky",
			sat: 8, quality: 9, adherence: 0.9, duration: 300, label: "positive", outcome: "resolved"}),
		call(callSpec{date: "2025-03-03", hour: 10, agent: "Ben", location: "Uptown", customer: "Rae",
			sat: 9, quality: 8, adherence: 0.8, duration: 240, label: "positive", outcome: "resolved"}),
		call(callSpec{date: "2025-02-10", hour: 11, agent: "Amy", location: "Downtown", customer: "Pat",
			sat: 6, quality: 6, adherence: 0.6, duration: 300, label: "neutral", outcome: "completed"}),
	}
}

func TestGenerateDaily(t *testing.T) {
	got := Generate(fixture(), Daily)

	if got.ReportID != "daily_20250315" {
		t.Errorf("report id = %q", got.ReportID)
	}
	if got.Period != "Daily Report - March 15, 2025" {
		t.Errorf("period = %q", got.Period)
	}
	if got.PeriodStart != "2025-03-15" || got.PeriodEnd != "2025-03-15" {
		t.Errorf("period range = %s .. %s", got.PeriodStart, got.PeriodEnd)
	}
	if got.GeneratedAt == "" {
		t.Error("generated at is empty")
	}

	wantMetrics := KeyMetrics{
		TotalCalls:         2,
		UniqueCustomers:    2,
		AvgSatisfaction:    7,
		AvgQuality:         7.5,
		AvgScriptAdherence: 0.75,
		ResolutionRate:     50,
		AvgDurationMinutes: 7.5,
		SentimentCounts:    map[string]int{"positive": 1, "negative": 1},
		TopAgents:          []insights.Metric{{Name: "Amy", Value: 9}, {Name: "Ben", Value: 5}},
		LocationCalls:      []insights.Metric{{Name: "Downtown", Value: 1}, {Name: "Uptown", Value: 1}},
		RetentionRate:      0,
	}
	if diff := cmp.Diff(wantMetrics, got.Metrics); diff != "" {
		t.Errorf("metrics mismatch (-want +got):\n%s", diff)
	}

	if got.Headline != "Daily Performance: 2 customer interactions" {
		t.Errorf("headline = %q", got.Headline)
	}
	wantPoints := []string{
		"Average satisfaction: 7.0/10",
		"Call quality: 7.5/10",
		"Resolution rate: 50%",
	}
	if diff := cmp.Diff(wantPoints, got.KeyPoints); diff != "" {
		t.Errorf("key points mismatch (-want +got):\n%s", diff)
	}
	if got.Status != "healthy" {
		t.Errorf("status = %q", got.Status)
	}
	if got.Alerts != nil {
		t.Errorf("alerts = %+v, want none", got.Alerts)
	}
	if diff := cmp.Diff([]string{"Review top-performing interactions for best practice sharing"}, got.Recommendations); diff != "" {
		t.Errorf("recommendations mismatch (-want +got):\n%s", diff)
	}
	wantInsights := []string{
		"Call quality is meeting expectations but has room for improvement",
		"Average daily call volume: 2 calls",
		"Best performing location: Downtown",
	}
	if diff := cmp.Diff(wantInsights, got.Insights); diff != "" {
		t.Errorf("insights mismatch (-want +got):\n%s", diff)
	}
	if got.WoW != nil {
		t.Errorf("wow = %+v, want nil outside weekly reports", got.WoW)
	}
}

func TestGenerateDailyLowSatisfaction(t *testing.T) {
	records := []types.EnrichedRecord{
		call(callSpec{date: "2025-03-15", hour: 9, agent: "Amy", location: "Downtown", customer: "Pat",
			sat: 4, quality: 5, adherence: 0.5, duration: 300, label: "negative", outcome: "escalated"}),
		call(callSpec{date: "2025-03-15", hour: 10, agent: "Ben", location: "Uptown", customer: "Quinn",
			sat: 5, quality: 6, adherence: 0.6, duration: 240, label: "negative", outcome: "transferred"}),
	}
	got := Generate(records, Daily)

	if got.Status != "attention_needed" {
		t.Errorf("status = %q", got.Status)
	}
	wantAlerts := []Alert{{
		Type:           "critical",
		Title:          "Low Customer Satisfaction",
		Message:        "Daily satisfaction score (4.5) below critical threshold",
		ActionRequired: true,
	}}
	if diff := cmp.Diff(wantAlerts, got.Alerts); diff != "" {
		t.Errorf("alerts mismatch (-want +got):\n%s", diff)
	}
	wantRecs := []string{
		"Schedule immediate coaching session for underperforming agents",
		"Review top-performing interactions for best practice sharing",
	}
	if diff := cmp.Diff(wantRecs, got.Recommendations); diff != "" {
		t.Errorf("recommendations mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateWeekly(t *testing.T) {
	got := Generate(fixture(), Weekly)

	if got.ReportID != "weekly_20250309_20250315" {
		t.Errorf("report id = %q", got.ReportID)
	}
	if got.Period != "Weekly Report - March 9 to March 15, 2025" {
		t.Errorf("period = %q", got.Period)
	}
	if got.PeriodStart != "2025-03-09" || got.PeriodEnd != "2025-03-15" {
		t.Errorf("period range = %s .. %s", got.PeriodStart, got.PeriodEnd)
	}
	if got.Headline != "Weekly Performance: 3 calls, 2 customers" {
		t.Errorf("headline = %q", got.Headline)
	}
	if got.Status != "healthy" {
		t.Errorf("status = %q", got.Status)
	}

	m := got.Metrics
	if m.TotalCalls != 3 || m.UniqueCustomers != 2 || m.RetentionRate != 50 {
		t.Errorf("counts = %d calls, %d customers, retention %v", m.TotalCalls, m.UniqueCustomers, m.RetentionRate)
	}
	if m.AvgSatisfaction != 7.33 || m.AvgQuality != 7.67 || m.ResolutionRate != 66.7 {
		t.Errorf("averages = %+v", m)
	}

	wantWoW := &WeekOverWeek{CallsPct: 50, Satisfaction: -1.17, Quality: -0.83}
	if diff := cmp.Diff(wantWoW, got.WoW); diff != "" {
		t.Errorf("wow mismatch (-want +got):\n%s", diff)
	}

	wantAlerts := []Alert{{
		Type:           "warning",
		Title:          "Declining Satisfaction Trend",
		Message:        "Customer satisfaction dropped by 1.2 points this week",
		ActionRequired: true,
	}}
	if diff := cmp.Diff(wantAlerts, got.Alerts); diff != "" {
		t.Errorf("alerts mismatch (-want +got):\n%s", diff)
	}

	// Quinn's one bad call makes the week's single high-risk customer
	wantRecs := []string{
		"Implement immediate satisfaction recovery initiatives",
		"Prioritize retention efforts for 1 high-risk customers",
	}
	if diff := cmp.Diff(wantRecs, got.Recommendations); diff != "" {
		t.Errorf("recommendations mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateMonthly(t *testing.T) {
	got := Generate(fixture(), Monthly)

	if got.ReportID != "monthly_202503" {
		t.Errorf("report id = %q", got.ReportID)
	}
	if got.Period != "Monthly Report - March 2025" {
		t.Errorf("period = %q", got.Period)
	}
	if got.PeriodStart != "2025-03-01" || got.PeriodEnd != "2025-03-31" {
		t.Errorf("period range = %s .. %s", got.PeriodStart, got.PeriodEnd)
	}
	if got.Headline != "Monthly Performance: 5 interactions with 4 customers" {
		t.Errorf("headline = %q", got.Headline)
	}
	if got.Status != "good" {
		t.Errorf("status = %q", got.Status)
	}

	wantMetrics := KeyMetrics{
		TotalCalls:         5,
		UniqueCustomers:    4,
		AvgSatisfaction:    7.8,
		AvgQuality:         8,
		AvgScriptAdherence: 0.8,
		ResolutionRate:     80,
		AvgDurationMinutes: 5.8,
		SentimentCounts:    map[string]int{"positive": 4, "negative": 1},
		TopAgents:          []insights.Metric{{Name: "Amy", Value: 8.33}, {Name: "Ben", Value: 7}},
		LocationCalls:      []insights.Metric{{Name: "Downtown", Value: 3}, {Name: "Uptown", Value: 2}},
		RetentionRate:      25,
	}
	if diff := cmp.Diff(wantMetrics, got.Metrics); diff != "" {
		t.Errorf("metrics mismatch (-want +got):\n%s", diff)
	}

	wantPoints := []string{
		"Overall satisfaction: 7.8/10",
		"Operational efficiency: 80% resolution rate",
		"Location and agent performance analyzed",
	}
	if diff := cmp.Diff(wantPoints, got.KeyPoints); diff != "" {
		t.Errorf("key points mismatch (-want +got):\n%s", diff)
	}
	if got.Alerts != nil {
		t.Errorf("alerts = %+v, want none at 7.8 satisfaction", got.Alerts)
	}

	wantRecs := []string{
		"Launch customer satisfaction improvement initiative",
		"Focus on call quality training - strong correlation with satisfaction",
		"Improve script adherence through coaching - moderate satisfaction impact",
		"Schedule important calls during peak performance hours: 9:00, 10:00, 11:00",
	}
	if diff := cmp.Diff(wantRecs, got.Recommendations); diff != "" {
		t.Errorf("recommendations mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateMonthlySatisfactionAlert(t *testing.T) {
	records := []types.EnrichedRecord{
		call(callSpec{date: "2025-03-15", agent: "Amy", location: "Downtown", customer: "Pat",
			sat: 5, quality: 5, adherence: 0.5, duration: 300, label: "negative", outcome: "escalated"}),
		call(callSpec{date: "2025-03-01", agent: "Ben", location: "Uptown", customer: "Quinn",
			sat: 6, quality: 6, adherence: 0.6, duration: 240, label: "neutral", outcome: "completed"}),
	}
	got := Generate(records, Monthly)

	if got.Status != "needs_improvement" {
		t.Errorf("status = %q", got.Status)
	}
	if len(got.Alerts) != 1 || got.Alerts[0].Title != "Monthly Satisfaction Below Target" {
		t.Fatalf("alerts = %+v", got.Alerts)
	}
	if got.Alerts[0].Message != "Monthly average satisfaction (5.5) below target of 7.0" {
		t.Errorf("alert message = %q", got.Alerts[0].Message)
	}
}

func TestGenerateQuarterly(t *testing.T) {
	got := Generate(fixture(), Quarterly)

	if got.ReportID != "quarterly_2025Q1" {
		t.Errorf("report id = %q", got.ReportID)
	}
	if got.Period != "Quarterly Report - Q1 2025" {
		t.Errorf("period = %q", got.Period)
	}
	if got.PeriodStart != "2025-01-01" || got.PeriodEnd != "2025-03-31" {
		t.Errorf("period range = %s .. %s", got.PeriodStart, got.PeriodEnd)
	}
	if got.Headline != "Quarterly Review: 6 customer interactions" {
		t.Errorf("headline = %q", got.Headline)
	}
	if got.Status != "stable" {
		t.Errorf("status = %q", got.Status)
	}
	if got.Metrics.TotalCalls != 6 || got.Metrics.UniqueCustomers != 4 || got.Metrics.RetentionRate != 25 {
		t.Errorf("metrics = %+v", got.Metrics)
	}

	wantPoints := []string{
		"Customer retention: 25.0%",
		"Satisfaction trends analyzed",
		"Strategic recommendations provided",
	}
	if diff := cmp.Diff(wantPoints, got.KeyPoints); diff != "" {
		t.Errorf("key points mismatch (-want +got):\n%s", diff)
	}

	wantAlerts := []Alert{{
		Type:           "critical",
		Title:          "Customer Retention Risk",
		Message:        "Quarterly retention rate (25.0%) below healthy threshold",
		ActionRequired: true,
	}}
	if diff := cmp.Diff(wantAlerts, got.Alerts); diff != "" {
		t.Errorf("alerts mismatch (-want +got):\n%s", diff)
	}

	wantRecs := []string{
		"Develop comprehensive customer retention strategy",
		"Invest in customer experience transformation initiatives",
		"Review and update service delivery protocols based on performance data",
	}
	if diff := cmp.Diff(wantRecs, got.Recommendations); diff != "" {
		t.Errorf("recommendations mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateEmpty(t *testing.T) {
	got := Generate(nil, Daily)

	if !strings.HasPrefix(got.ReportID, "empty_daily_") {
		t.Errorf("report id = %q", got.ReportID)
	}
	if got.Period != "No data available for daily report" {
		t.Errorf("period = %q", got.Period)
	}
	if got.Headline != "No data available" || got.Status != "no_data" {
		t.Errorf("headline %q, status %q", got.Headline, got.Status)
	}
	if diff := cmp.Diff([]string{"Ensure data collection systems are operational"}, got.Recommendations); diff != "" {
		t.Errorf("recommendations mismatch (-want +got):\n%s", diff)
	}
	if len(got.Alerts) != 1 || got.Alerts[0].Title != "No Data Available" {
		t.Errorf("alerts = %+v", got.Alerts)
	}
}

func TestPeriodWindows(t *testing.T) {
	cases := []struct {
		freq   Frequency
		anchor time.Time
		want   period
	}{
		{Daily, time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), period{
			id: "daily_20250315", label: "Daily Report - March 15, 2025",
			start: "2025-03-15", end: "2025-03-15"}},
		{Weekly, time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC), period{
			id: "weekly_20241228_20250103", label: "Weekly Report - December 28 to January 3, 2025",
			start: "2024-12-28", end: "2025-01-03"}},
		{Monthly, time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC), period{
			id: "monthly_202502", label: "Monthly Report - February 2025",
			start: "2025-02-01", end: "2025-02-28"}},
		{Quarterly, time.Date(2025, 11, 5, 0, 0, 0, 0, time.UTC), period{
			id: "quarterly_2025Q4", label: "Quarterly Report - Q4 2025",
			start: "2025-10-01", end: "2025-12-31"}},
	}
	for _, tc := range cases {
		got := periodFor(tc.freq, tc.anchor)
		if diff := cmp.Diff(tc.want, got, cmp.AllowUnexported(period{})); diff != "" {
			t.Errorf("%s period mismatch (-want +got):\n%s", tc.freq, diff)
		}
	}
}

func TestParseFrequency(t *testing.T) {
	for in, want := range map[string]Frequency{
		"daily":     Daily,
		" Weekly ":  Weekly,
		"MONTHLY":   Monthly,
		"quarterly": Quarterly,
	} {
		got, err := ParseFrequency(in)
		if err != nil || got != want {
			t.Errorf("ParseFrequency(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseFrequency("hourly"); err == nil {
		t.Error("expected error for unknown frequency")
	}
}

func TestReportJSON(t *testing.T) {
	b, err := Generate(fixture(), Daily).JSON()
	if err != nil {
		t.Fatalf("JSON: %v", err)
	}
	if !strings.Contains(string(b), `"report_id": "daily_20250315"`) {
		t.Errorf("unexpected JSON:\n%s", b)
	}
}
