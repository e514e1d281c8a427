package pipeline

import (
	"time"

	"vcon-insights/internal/types"
)

// Summary is the run report: batch counters plus the dataset-level stats
// printed after a run and delivered to the CRM webhook.
type Summary struct {
	RunID          string `json:"run_id"`
	GeneratedAt    string `json:"generated_at"`
	OutputPath     string `json:"output_path"`
	FilesScanned   int    `json:"files_scanned"`
	FilesFailed    int    `json:"files_failed"`
	RecordsWritten int    `json:"records_written"`
	RecordsSkipped int    `json:"records_skipped"`
	DurationMs     int64  `json:"duration_ms"`

	DateRangeStart    string         `json:"date_range_start"`
	DateRangeEnd      string         `json:"date_range_end"`
	UniqueAgents      int            `json:"unique_agents"`
	UniqueLocations   int            `json:"unique_locations"`
	ConversationTypes map[string]int `json:"conversation_types"`
	Sentiments        map[string]int `json:"sentiment_distribution"`
	Outcomes          map[string]int `json:"call_outcomes"`
	AvgQualityScore   float64        `json:"avg_call_quality_score"`
	AvgAdherenceRate  float64        `json:"avg_script_adherence_rate"`
	AvgSatisfaction   float64        `json:"avg_customer_satisfaction"`
}

// Summarize computes the dataset-level stats for a batch of records. Batch
// counters (files scanned, skips, timing) are filled in by the caller.
func Summarize(records []types.EnrichedRecord) *Summary {
	s := &Summary{
		GeneratedAt:       time.Now().UTC().Format(time.RFC3339),
		RecordsWritten:    len(records),
		ConversationTypes: make(map[string]int),
		Sentiments:        make(map[string]int),
		Outcomes:          make(map[string]int),
	}
	if len(records) == 0 {
		return s
	}

	agents := make(map[string]struct{})
	locations := make(map[string]struct{})
	var quality, adherence, satisfaction float64
	for i := range records {
		r := &records[i]
		// ISO dates compare correctly as strings
		if s.DateRangeStart == "" || r.CallDate < s.DateRangeStart {
			s.DateRangeStart = r.CallDate
		}
		if r.CallDate > s.DateRangeEnd {
			s.DateRangeEnd = r.CallDate
		}
		agents[r.AgentName] = struct{}{}
		locations[r.Location] = struct{}{}
		s.ConversationTypes[r.ConversationType]++
		s.Sentiments[r.Label]++
		s.Outcomes[r.CallOutcome]++
		quality += r.CallQualityScore
		adherence += r.AdherenceRate
		satisfaction += r.SatisfactionScore
	}
	n := float64(len(records))
	s.UniqueAgents = len(agents)
	s.UniqueLocations = len(locations)
	s.AvgQualityScore = quality / n
	s.AvgAdherenceRate = adherence / n
	s.AvgSatisfaction = satisfaction / n
	return s
}
