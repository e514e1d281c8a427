// Package insights computes business analytics over an enriched dataset:
// executive summaries, location and agent scorecards, coaching
// recommendations, trend and retention analytics, and free-text question
// answering. Everything is pure aggregation over records already enriched by
// the pipeline; an empty dataset degrades to zero values, never errors.
package insights

import (
	"fmt"
	"math"
	"sort"
	"time"

	"vcon-insights/internal/types"
)

const (
	lowQualityThreshold    = 5.0
	poorAdherenceThreshold = 0.5
	negativeShareAlert     = 0.2

	coachingQualityTarget      = 7.0
	coachingAdherenceTarget    = 0.7
	coachingSatisfactionTarget = 7.0
)

// Engine answers analytics queries over one loaded dataset.
type Engine struct {
	records []types.EnrichedRecord
}

func New(records []types.EnrichedRecord) *Engine {
	return &Engine{records: records}
}

// Records exposes the underlying rows for callers that slice the dataset
// further, such as period-filtered reports.
func (e *Engine) Records() []types.EnrichedRecord {
	return e.records
}

// Metric is one named value in a ranked result, ordered by the producer.
type Metric struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Overview is the headline block of the executive summary.
type Overview struct {
	TotalCalls         int     `json:"total_calls"`
	AvgQualityScore    float64 `json:"avg_quality_score"`
	AvgSatisfaction    float64 `json:"avg_satisfaction"`
	AvgScriptAdherence float64 `json:"avg_script_adherence"` // percent
	DateRangeStart     string  `json:"date_range_start"`
	DateRangeEnd       string  `json:"date_range_end"`
}

// SentimentShare is the sentiment distribution in percent of all calls.
type SentimentShare struct {
	PositivePct float64 `json:"positive_pct"`
	NeutralPct  float64 `json:"neutral_pct"`
	NegativePct float64 `json:"negative_pct"`
}

// TrendDelta compares the most recent seven days of data against the seven
// days before them.
type TrendDelta struct {
	QualityTrend      float64 `json:"quality_trend"`
	SatisfactionTrend float64 `json:"satisfaction_trend"`
	VolumeTrend       int     `json:"volume_trend"`
	Period            string  `json:"period"`
}

// LocationScore is one location ranked by average call quality.
type LocationScore struct {
	Location string  `json:"location"`
	Score    float64 `json:"score"`
}

// Issue is one condition that crossed an attention threshold.
type Issue struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
	Count       int    `json:"count"`
}

// ExecutiveSummary is the dashboard view of one dataset.
type ExecutiveSummary struct {
	Overview        Overview        `json:"overview"`
	Sentiment       SentimentShare  `json:"sentiment"`
	Trends          TrendDelta      `json:"trends"`
	TopLocations    []LocationScore `json:"top_locations"`
	BottomLocations []LocationScore `json:"bottom_locations"`
	CriticalIssues  []Issue         `json:"critical_issues"`
	Insights        []string        `json:"insights"`
}

// ExecutiveSummary aggregates the whole dataset into the dashboard view.
func (e *Engine) ExecutiveSummary() ExecutiveSummary {
	if len(e.records) == 0 {
		return ExecutiveSummary{
			Trends:   TrendDelta{Period: "No data available"},
			Insights: []string{"No data available for analysis"},
		}
	}

	var quality, satisfaction, adherence float64
	start, end := e.records[0].CallDate, e.records[0].CallDate
	for i := range e.records {
		r := &e.records[i]
		quality += r.CallQualityScore
		satisfaction += r.SatisfactionScore
		adherence += r.AdherenceRate
		// ISO dates compare correctly as strings
		if r.CallDate < start {
			start = r.CallDate
		}
		if r.CallDate > end {
			end = r.CallDate
		}
	}
	n := float64(len(e.records))

	top, bottom := e.locationRankings()
	return ExecutiveSummary{
		Overview: Overview{
			TotalCalls:         len(e.records),
			AvgQualityScore:    round1(quality / n),
			AvgSatisfaction:    round1(satisfaction / n),
			AvgScriptAdherence: round1(adherence / n * 100),
			DateRangeStart:     start,
			DateRangeEnd:       end,
		},
		Sentiment:       e.sentimentShare(),
		Trends:          e.recentTrends(end),
		TopLocations:    top,
		BottomLocations: bottom,
		CriticalIssues:  e.criticalIssues(),
		Insights:        e.executiveInsights(),
	}
}

func (e *Engine) sentimentShare() SentimentShare {
	counts := countByKey(e.records, func(r *types.EnrichedRecord) string { return r.Label })
	n := float64(len(e.records))
	pct := func(label string) float64 {
		return round1(float64(counts[label]) / n * 100)
	}
	return SentimentShare{
		PositivePct: pct("positive"),
		NeutralPct:  pct("neutral"),
		NegativePct: pct("negative"),
	}
}

// recentTrends splits the trailing fortnight at the latest call date into two
// seven-day windows and reports the deltas between them.
func (e *Engine) recentTrends(latest string) TrendDelta {
	anchor, err := time.Parse("2006-01-02", latest)
	if err != nil {
		return TrendDelta{Period: "No data available"}
	}
	recentStart := anchor.AddDate(0, 0, -6).Format("2006-01-02")
	previousStart := anchor.AddDate(0, 0, -13).Format("2006-01-02")

	type window struct {
		n                     int
		quality, satisfaction float64
	}
	var recent, previous window
	for i := range e.records {
		r := &e.records[i]
		switch {
		case r.CallDate >= recentStart:
			recent.n++
			recent.quality += r.CallQualityScore
			recent.satisfaction += r.SatisfactionScore
		case r.CallDate >= previousStart:
			previous.n++
			previous.quality += r.CallQualityScore
			previous.satisfaction += r.SatisfactionScore
		}
	}
	if recent.n == 0 || previous.n == 0 {
		return TrendDelta{Period: "Insufficient data for trend calculation"}
	}
	rn, pn := float64(recent.n), float64(previous.n)
	return TrendDelta{
		QualityTrend:      round2(recent.quality/rn - previous.quality/pn),
		SatisfactionTrend: round2(recent.satisfaction/rn - previous.satisfaction/pn),
		VolumeTrend:       recent.n - previous.n,
		Period:            "Last 7 days vs previous 7 days",
	}
}

func (e *Engine) locationRankings() (top, bottom []LocationScore) {
	scores := meanByKey(e.records,
		func(r *types.EnrichedRecord) string { return r.Location },
		func(r *types.EnrichedRecord) float64 { return r.CallQualityScore })
	ranked := TopMetrics(scores, 0)

	take := func(ms []Metric) []LocationScore {
		out := make([]LocationScore, 0, len(ms))
		for _, m := range ms {
			out = append(out, LocationScore{Location: m.Name, Score: round1(m.Value)})
		}
		return out
	}
	headN := 3
	if headN > len(ranked) {
		headN = len(ranked)
	}
	tailStart := len(ranked) - 3
	if tailStart < 0 {
		tailStart = 0
	}
	return take(ranked[:headN]), take(ranked[tailStart:])
}

func (e *Engine) criticalIssues() []Issue {
	var lowQuality, negative, poorAdherence int
	for i := range e.records {
		r := &e.records[i]
		if r.CallQualityScore < lowQualityThreshold {
			lowQuality++
		}
		if r.Label == "negative" {
			negative++
		}
		if r.AdherenceRate < poorAdherenceThreshold {
			poorAdherence++
		}
	}

	var issues []Issue
	if lowQuality > 0 {
		issues = append(issues, Issue{
			Type:        "quality",
			Description: fmt.Sprintf("%d calls with quality score below 5", lowQuality),
			Severity:    "high",
			Count:       lowQuality,
		})
	}
	if float64(negative) > float64(len(e.records))*negativeShareAlert {
		issues = append(issues, Issue{
			Type:        "sentiment",
			Description: fmt.Sprintf("%d calls with negative sentiment", negative),
			Severity:    "medium",
			Count:       negative,
		})
	}
	if poorAdherence > 0 {
		issues = append(issues, Issue{
			Type:        "script_adherence",
			Description: fmt.Sprintf("%d calls with poor script adherence", poorAdherence),
			Severity:    "medium",
			Count:       poorAdherence,
		})
	}
	return issues
}

func (e *Engine) executiveInsights() []string {
	var quality, satisfaction float64
	days := make(map[string]struct{})
	for i := range e.records {
		r := &e.records[i]
		quality += r.CallQualityScore
		satisfaction += r.SatisfactionScore
		days[r.CallDate] = struct{}{}
	}
	n := float64(len(e.records))
	avgQuality := quality / n
	avgSatisfaction := satisfaction / n

	var insights []string
	switch {
	case avgQuality >= 8:
		insights = append(insights, "Excellent call quality performance across the organization")
	case avgQuality < 6:
		insights = append(insights, "Call quality requires immediate attention and improvement")
	default:
		insights = append(insights, "Call quality is meeting expectations but has room for improvement")
	}
	if avgSatisfaction >= 8 {
		insights = append(insights, "High customer satisfaction levels maintained")
	} else if avgSatisfaction < 6 {
		insights = append(insights, "Customer satisfaction below target - review needed")
	}
	insights = append(insights, fmt.Sprintf("Average daily call volume: %.0f calls", n/float64(len(days))))

	if scores := e.locationQuality(); len(scores) > 0 {
		insights = append(insights, fmt.Sprintf("Best performing location: %s", TopMetrics(scores, 1)[0].Name))
	}
	return insights
}

func (e *Engine) locationQuality() map[string]float64 {
	return meanByKey(e.records,
		func(r *types.EnrichedRecord) string { return r.Location },
		func(r *types.EnrichedRecord) float64 { return r.CallQualityScore })
}

// LocationMetrics is the scorecard for one location.
type LocationMetrics struct {
	Location        string         `json:"location"`
	TotalCalls      int            `json:"total_calls"`
	AvgQualityScore float64        `json:"avg_quality_score"`
	AvgSatisfaction float64        `json:"avg_satisfaction"`
	AvgAdherence    float64        `json:"avg_adherence_rate"`
	AvgDurationSecs float64        `json:"avg_duration_seconds"`
	AvgPolarity     float64        `json:"avg_sentiment_polarity"`
	TopicCounts     map[string]int `json:"topic_counts"`
	PeakHour        int            `json:"peak_hour"`
}

// LocationAnalysis returns per-location scorecards sorted by location name.
// With a non-empty location only that location is returned; an unknown name
// is an error.
func (e *Engine) LocationAnalysis(location string) ([]LocationMetrics, error) {
	type acc struct {
		n                                                    int
		quality, satisfaction, adherence, duration, polarity float64
		topics                                               map[string]int
		hours                                                map[int]int
	}
	groups := make(map[string]*acc)
	for i := range e.records {
		r := &e.records[i]
		if location != "" && r.Location != location {
			continue
		}
		g := groups[r.Location]
		if g == nil {
			g = &acc{topics: make(map[string]int), hours: make(map[int]int)}
			groups[r.Location] = g
		}
		g.n++
		g.quality += r.CallQualityScore
		g.satisfaction += r.SatisfactionScore
		g.adherence += r.AdherenceRate
		g.duration += r.DurationSeconds
		g.polarity += r.Polarity
		g.topics[r.PrimaryTopic]++
		g.hours[r.CallHour]++
	}
	if len(groups) == 0 {
		if location != "" {
			return nil, fmt.Errorf("no data for location %q", location)
		}
		return nil, nil
	}

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]LocationMetrics, 0, len(names))
	for _, name := range names {
		g := groups[name]
		n := float64(g.n)
		out = append(out, LocationMetrics{
			Location:        name,
			TotalCalls:      g.n,
			AvgQualityScore: round2(g.quality / n),
			AvgSatisfaction: round2(g.satisfaction / n),
			AvgAdherence:    round2(g.adherence / n),
			AvgDurationSecs: round2(g.duration / n),
			AvgPolarity:     round2(g.polarity / n),
			TopicCounts:     g.topics,
			PeakHour:        modeHour(g.hours),
		})
	}
	return out, nil
}

// AgentMetrics is the scorecard for one agent.
type AgentMetrics struct {
	AgentName       string  `json:"agent_name"`
	Location        string  `json:"location"`
	TotalCalls      int     `json:"total_calls"`
	AvgQualityScore float64 `json:"avg_quality_score"`
	AvgSatisfaction float64 `json:"avg_satisfaction"`
	AvgAdherence    float64 `json:"avg_adherence_rate"`
	AvgDurationSecs float64 `json:"avg_duration_seconds"`
	AvgPolarity     float64 `json:"avg_sentiment_polarity"`
}

// AgentAnalysis returns per-agent scorecards sorted by agent name. With a
// non-empty agentName only that agent is returned; an unknown name is an
// error.
func (e *Engine) AgentAnalysis(agentName string) ([]AgentMetrics, error) {
	type acc struct {
		n                                                    int
		quality, satisfaction, adherence, duration, polarity float64
		location                                             string
	}
	groups := make(map[string]*acc)
	for i := range e.records {
		r := &e.records[i]
		if agentName != "" && r.AgentName != agentName {
			continue
		}
		g := groups[r.AgentName]
		if g == nil {
			g = &acc{location: r.Location}
			groups[r.AgentName] = g
		}
		g.n++
		g.quality += r.CallQualityScore
		g.satisfaction += r.SatisfactionScore
		g.adherence += r.AdherenceRate
		g.duration += r.DurationSeconds
		g.polarity += r.Polarity
	}
	if len(groups) == 0 {
		if agentName != "" {
			return nil, fmt.Errorf("no data for agent %q", agentName)
		}
		return nil, nil
	}

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]AgentMetrics, 0, len(names))
	for _, name := range names {
		g := groups[name]
		n := float64(g.n)
		out = append(out, AgentMetrics{
			AgentName:       name,
			Location:        g.location,
			TotalCalls:      g.n,
			AvgQualityScore: round2(g.quality / n),
			AvgSatisfaction: round2(g.satisfaction / n),
			AvgAdherence:    round2(g.adherence / n),
			AvgDurationSecs: round2(g.duration / n),
			AvgPolarity:     round2(g.polarity / n),
		})
	}
	return out, nil
}

// CoachingRecommendation is targeted guidance for one agent whose averages
// fall short of the coaching targets.
type CoachingRecommendation struct {
	AgentName       string   `json:"agent_name"`
	Recommendations []string `json:"recommendations"`
	Priority        string   `json:"priority"`
}

// CoachingRecommendations flags agents below the quality, adherence or
// satisfaction targets. Agents meeting every target are omitted.
func (e *Engine) CoachingRecommendations() []CoachingRecommendation {
	agents, err := e.AgentAnalysis("")
	if err != nil {
		return nil
	}

	var out []CoachingRecommendation
	for _, a := range agents {
		var recs []string
		if a.AvgQualityScore < coachingQualityTarget {
			recs = append(recs, "Focus on call quality improvement")
		}
		if a.AvgAdherence < coachingAdherenceTarget {
			recs = append(recs, "Improve script adherence")
		}
		if a.AvgSatisfaction < coachingSatisfactionTarget {
			recs = append(recs, "Enhance customer service skills")
		}
		if len(recs) == 0 {
			continue
		}
		priority := "medium"
		if len(recs) > 2 {
			priority = "high"
		}
		out = append(out, CoachingRecommendation{
			AgentName:       a.AgentName,
			Recommendations: recs,
			Priority:        priority,
		})
	}
	return out
}

// NPSScore maps satisfaction onto an NPS-style scale: promoters score 8 and
// above, detractors 6 and below, result is the promoter share minus the
// detractor share in percent.
func (e *Engine) NPSScore() float64 {
	if len(e.records) == 0 {
		return 0
	}
	promoters, detractors := 0, 0
	for i := range e.records {
		switch sat := e.records[i].SatisfactionScore; {
		case sat >= 8:
			promoters++
		case sat <= 6:
			detractors++
		}
	}
	return round1(float64(promoters-detractors) / float64(len(e.records)) * 100)
}

// meanByKey averages value over records grouped by key.
func meanByKey(records []types.EnrichedRecord, key func(*types.EnrichedRecord) string, value func(*types.EnrichedRecord) float64) map[string]float64 {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for i := range records {
		k := key(&records[i])
		sums[k] += value(&records[i])
		counts[k]++
	}
	out := make(map[string]float64, len(sums))
	for k, sum := range sums {
		out[k] = sum / float64(counts[k])
	}
	return out
}

func countByKey(records []types.EnrichedRecord, key func(*types.EnrichedRecord) string) map[string]int {
	counts := make(map[string]int)
	for i := range records {
		counts[key(&records[i])]++
	}
	return counts
}

// TopMetrics ranks a keyed map by value descending, name ascending on ties.
// n limits the result; n <= 0 returns everything.
func TopMetrics(m map[string]float64, n int) []Metric {
	out := make([]Metric, 0, len(m))
	for name, value := range m {
		out = append(out, Metric{Name: name, Value: value})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].Name < out[j].Name
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// modeHour is the most frequent hour, smallest hour on ties.
func modeHour(hours map[int]int) int {
	best, bestCount := 12, 0
	for hour, count := range hours {
		if count > bestCount || (count == bestCount && hour < best) {
			best, bestCount = hour, count
		}
	}
	return best
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
