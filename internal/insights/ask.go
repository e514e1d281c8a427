package insights

import (
	"fmt"
	"sort"
	"strings"

	"vcon-insights/internal/types"
)

// Intent is the closed set of business questions the engine can answer.
// Free text is classified onto one of these instead of being matched against
// ad hoc substring chains, so each answer path has exactly one trigger.
type Intent int

const (
	IntentUnknown Intent = iota
	IntentLocationVolume
	IntentLocationQuality
	IntentLocationSentiment
	IntentAgentQuality
	IntentAgentVolume
	IntentBusiestHours
	IntentSentimentShare
	IntentCommonTopics
)

var intentNames = map[Intent]string{
	IntentUnknown:           "unknown",
	IntentLocationVolume:    "location_volume",
	IntentLocationQuality:   "location_quality",
	IntentLocationSentiment: "location_sentiment",
	IntentAgentQuality:      "agent_quality",
	IntentAgentVolume:       "agent_volume",
	IntentBusiestHours:      "busiest_hours",
	IntentSentimentShare:    "sentiment_share",
	IntentCommonTopics:      "common_topics",
}

func (i Intent) String() string {
	if name, ok := intentNames[i]; ok {
		return name
	}
	return "unknown"
}

// intentRule triggers when any subject keyword and any aspect keyword both
// appear in the question. Rules are checked in order; first hit wins.
type intentRule struct {
	intent  Intent
	subject []string
	aspect  []string
}

var intentRules = []intentRule{
	{IntentLocationVolume, []string{"location"}, []string{"volume", "most calls", "busiest"}},
	{IntentLocationQuality, []string{"location"}, []string{"quality"}},
	{IntentLocationSentiment, []string{"location"}, []string{"sentiment"}},
	{IntentAgentQuality, []string{"agent"}, []string{"quality", "best"}},
	{IntentAgentVolume, []string{"agent"}, []string{"most calls", "volume"}},
	{IntentBusiestHours, []string{"busiest", "peak"}, []string{"time", "hour"}},
	{IntentSentimentShare, []string{"sentiment"}, []string{"percentage", "percent", "share"}},
	{IntentCommonTopics, []string{"topic", "complaint"}, []string{"common", "top", "most"}},
}

// Classify maps a free-text question onto a supported intent.
func Classify(question string) Intent {
	q := strings.ToLower(question)
	for _, rule := range intentRules {
		if containsAny(q, rule.subject) && containsAny(q, rule.aspect) {
			return rule.intent
		}
	}
	return IntentUnknown
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// Answer is the response to one business question.
type Answer struct {
	Question    string   `json:"question"`
	Intent      string   `json:"intent"`
	Text        string   `json:"answer"`
	Data        []Metric `json:"data,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

var askSuggestions = []string{
	"Which locations have the highest call volume?",
	"Which agents have the best quality scores?",
	"What percentage of calls have positive sentiment?",
	"What are the most common call topics?",
}

// Ask classifies the question and answers it from the dataset. Unrecognized
// questions come back with suggestions instead of an error.
func (e *Engine) Ask(question string) Answer {
	intent := Classify(question)
	answer := Answer{Question: question, Intent: intent.String()}

	if len(e.records) == 0 {
		answer.Text = "No data available to answer this question"
		return answer
	}

	switch intent {
	case IntentLocationVolume:
		counts := countByKey(e.records, func(r *types.EnrichedRecord) string { return r.Location })
		answer.Data = TopMetrics(countMetrics(counts), 5)
		answer.Text = fmt.Sprintf("Locations with highest call volume: %s", topNames(answer.Data, 3))

	case IntentLocationQuality:
		answer.Data = TopMetrics(e.locationQuality(), 5)
		answer.Text = fmt.Sprintf("Locations with highest quality scores: %s", topNames(answer.Data, 3))

	case IntentLocationSentiment:
		polarity := meanByKey(e.records,
			func(r *types.EnrichedRecord) string { return r.Location },
			func(r *types.EnrichedRecord) float64 { return r.Polarity })
		answer.Data = TopMetrics(polarity, 5)
		answer.Text = fmt.Sprintf("Locations with highest sentiment: %s", topNames(answer.Data, 3))

	case IntentAgentQuality:
		quality := meanByKey(e.records,
			func(r *types.EnrichedRecord) string { return r.AgentName },
			func(r *types.EnrichedRecord) float64 { return r.CallQualityScore })
		answer.Data = TopMetrics(quality, 5)
		answer.Text = fmt.Sprintf("Agents with highest quality scores: %s", topNames(answer.Data, 3))

	case IntentAgentVolume:
		counts := countByKey(e.records, func(r *types.EnrichedRecord) string { return r.AgentName })
		answer.Data = TopMetrics(countMetrics(counts), 5)
		answer.Text = fmt.Sprintf("Agents handling most calls: %s", topNames(answer.Data, 3))

	case IntentBusiestHours:
		answer.Data = e.busiestHours(5)
		answer.Text = fmt.Sprintf("Busiest call times: %s", topNames(answer.Data, 3))

	case IntentSentimentShare:
		share := e.sentimentShare()
		answer.Data = []Metric{
			{Name: "positive", Value: share.PositivePct},
			{Name: "neutral", Value: share.NeutralPct},
			{Name: "negative", Value: share.NegativePct},
		}
		if strings.Contains(strings.ToLower(question), "negative") {
			answer.Text = fmt.Sprintf("Negative sentiment: %.1f%% of calls", share.NegativePct)
		} else {
			answer.Text = fmt.Sprintf("Positive sentiment: %.1f%% of calls", share.PositivePct)
		}

	case IntentCommonTopics:
		counts := countByKey(e.records, func(r *types.EnrichedRecord) string { return r.PrimaryTopic })
		answer.Data = TopMetrics(countMetrics(counts), 5)
		answer.Text = fmt.Sprintf("Most common topics: %s", topNames(answer.Data, 3))

	default:
		answer.Text = "I can help you analyze call data. Try asking about locations, agents, sentiment, or topics."
		answer.Suggestions = askSuggestions
	}
	return answer
}

// busiestHours ranks call hours by volume, formatted as clock times. Ties
// resolve toward the earlier hour.
func (e *Engine) busiestHours(n int) []Metric {
	counts := make(map[int]int)
	for i := range e.records {
		counts[e.records[i].CallHour]++
	}
	type hourCount struct {
		hour, count int
	}
	ranked := make([]hourCount, 0, len(counts))
	for hour, count := range counts {
		ranked = append(ranked, hourCount{hour: hour, count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].hour < ranked[j].hour
	})
	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	out := make([]Metric, 0, len(ranked))
	for _, hc := range ranked {
		out = append(out, Metric{Name: fmt.Sprintf("%d:00", hc.hour), Value: float64(hc.count)})
	}
	return out
}

func countMetrics(counts map[string]int) map[string]float64 {
	out := make(map[string]float64, len(counts))
	for k, v := range counts {
		out[k] = float64(v)
	}
	return out
}

func topNames(metrics []Metric, n int) string {
	if n > len(metrics) {
		n = len(metrics)
	}
	names := make([]string, 0, n)
	for _, m := range metrics[:n] {
		names = append(names, m.Name)
	}
	return strings.Join(names, ", ")
}
