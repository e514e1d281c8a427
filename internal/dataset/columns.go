package dataset

import (
	"fmt"
	"strconv"
	"strings"

	"vcon-insights/internal/types"
)

// column couples an interchange header name with a typed accessor pair. The
// extract side feeds writers with native values; the assign side rebuilds the
// typed record from cell text on read.
type column struct {
	name    string
	extract func(r *types.EnrichedRecord) any
	assign  func(r *types.EnrichedRecord, raw string) error
}

// columns is the external column contract: the 25 priority columns first,
// then the remaining derived columns in fixed order, conversation_text last.
// Downstream consumers read by position in places, so order changes are
// breaking changes.
var columns = []column{
	strCol("conversation_id", func(r *types.EnrichedRecord) *string { return &r.ConversationID }),
	strCol("subject", func(r *types.EnrichedRecord) *string { return &r.Subject }),
	strCol("created_at", func(r *types.EnrichedRecord) *string { return &r.CreatedAt }),
	strCol("call_date", func(r *types.EnrichedRecord) *string { return &r.CallDate }),
	strCol("call_time", func(r *types.EnrichedRecord) *string { return &r.CallTime }),
	strCol("agent_name", func(r *types.EnrichedRecord) *string { return &r.AgentName }),
	strCol("agent_email", func(r *types.EnrichedRecord) *string { return &r.AgentEmail }),
	strCol("customer_name", func(r *types.EnrichedRecord) *string { return &r.CustomerName }),
	strCol("customer_phone", func(r *types.EnrichedRecord) *string { return &r.CustomerPhone }),
	strCol("location", func(r *types.EnrichedRecord) *string { return &r.Location }),
	floatCol("duration_seconds", func(r *types.EnrichedRecord) *float64 { return &r.DurationSeconds }),
	intCol("message_count", func(r *types.EnrichedRecord) *int { return &r.MessageCount }),
	strCol("conversation_type", func(r *types.EnrichedRecord) *string { return &r.ConversationType }),
	strCol("primary_topic", func(r *types.EnrichedRecord) *string { return &r.PrimaryTopic }),
	strCol("call_outcome", func(r *types.EnrichedRecord) *string { return &r.CallOutcome }),
	strCol("urgency_level", func(r *types.EnrichedRecord) *string { return &r.UrgencyLevel }),
	floatCol("sentiment_polarity", func(r *types.EnrichedRecord) *float64 { return &r.Polarity }),
	strCol("sentiment_label", func(r *types.EnrichedRecord) *string { return &r.Label }),
	floatCol("customer_satisfaction_score", func(r *types.EnrichedRecord) *float64 { return &r.SatisfactionScore }),
	floatCol("call_quality_score", func(r *types.EnrichedRecord) *float64 { return &r.CallQualityScore }),
	floatCol("script_adherence_rate", func(r *types.EnrichedRecord) *float64 { return &r.AdherenceRate }),
	intCol("call_hour", func(r *types.EnrichedRecord) *int { return &r.CallHour }),
	strCol("call_day_of_week", func(r *types.EnrichedRecord) *string { return &r.CallDayOfWeek }),
	boolCol("is_weekend", func(r *types.EnrichedRecord) *bool { return &r.IsWeekend }),
	boolCol("is_business_hours", func(r *types.EnrichedRecord) *bool { return &r.IsBusinessHours }),

	floatCol("sentiment_subjectivity", func(r *types.EnrichedRecord) *float64 { return &r.Subjectivity }),
	floatCol("topic_confidence", func(r *types.EnrichedRecord) *float64 { return &r.TopicConfidence }),
	strCol("topic_scores", func(r *types.EnrichedRecord) *string { return &r.TopicScores }),
	intCol("positive_indicators_count", func(r *types.EnrichedRecord) *int { return &r.PositiveIndicatorsCount }),
	intCol("negative_indicators_count", func(r *types.EnrichedRecord) *int { return &r.NegativeIndicatorsCount }),
	intCol("script_elements_followed", func(r *types.EnrichedRecord) *int { return &r.ElementsFollowed }),
	intCol("script_elements_total", func(r *types.EnrichedRecord) *int { return &r.ElementsTotal }),
	strCol("script_details", func(r *types.EnrichedRecord) *string { return &r.Details }),
	intCol("customer_satisfaction_indicators", func(r *types.EnrichedRecord) *int { return &r.SatisfactionIndicators }),
	intCol("customer_dissatisfaction_indicators", func(r *types.EnrichedRecord) *int { return &r.DissatisfactionIndicators }),
	intCol("low_effort_indicators", func(r *types.EnrichedRecord) *int { return &r.LowEffortIndicators }),
	intCol("high_effort_indicators", func(r *types.EnrichedRecord) *int { return &r.HighEffortIndicators }),
	intCol("net_satisfaction_score", func(r *types.EnrichedRecord) *int { return &r.NetSatisfactionScore }),
	intCol("net_effort_score", func(r *types.EnrichedRecord) *int { return &r.NetEffortScore }),
	strCol("call_month", func(r *types.EnrichedRecord) *string { return &r.CallMonth }),
	intCol("call_year", func(r *types.EnrichedRecord) *int { return &r.CallYear }),
	strCol("call_quarter", func(r *types.EnrichedRecord) *string { return &r.CallQuarter }),
	boolCol("has_recording", func(r *types.EnrichedRecord) *bool { return &r.HasRecording }),
	strCol("conversation_text", func(r *types.EnrichedRecord) *string { return &r.ConversationText }),
}

// Columns returns the header names in interchange order.
func Columns() []string {
	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.name
	}
	return names
}

// NativeRow returns one record's values in column order with native types,
// for sinks that keep cell types (workbooks, SQL inserts).
func NativeRow(r *types.EnrichedRecord) []any {
	row := make([]any, len(columns))
	for i, col := range columns {
		row[i] = col.extract(r)
	}
	return row
}

func strCol(name string, field func(*types.EnrichedRecord) *string) column {
	return column{
		name:    name,
		extract: func(r *types.EnrichedRecord) any { return *field(r) },
		assign: func(r *types.EnrichedRecord, raw string) error {
			*field(r) = raw
			return nil
		},
	}
}

func floatCol(name string, field func(*types.EnrichedRecord) *float64) column {
	return column{
		name:    name,
		extract: func(r *types.EnrichedRecord) any { return *field(r) },
		assign: func(r *types.EnrichedRecord, raw string) error {
			v, err := parseFloat(raw)
			if err != nil {
				return err
			}
			*field(r) = v
			return nil
		},
	}
}

func intCol(name string, field func(*types.EnrichedRecord) *int) column {
	return column{
		name:    name,
		extract: func(r *types.EnrichedRecord) any { return *field(r) },
		assign: func(r *types.EnrichedRecord, raw string) error {
			v, err := parseInt(raw)
			if err != nil {
				return err
			}
			*field(r) = v
			return nil
		},
	}
}

func boolCol(name string, field func(*types.EnrichedRecord) *bool) column {
	return column{
		name:    name,
		extract: func(r *types.EnrichedRecord) any { return *field(r) },
		assign: func(r *types.EnrichedRecord, raw string) error {
			v, err := parseBool(raw)
			if err != nil {
				return err
			}
			*field(r) = v
			return nil
		},
	}
}

// cellText renders one extracted value the way CSV cells store it. Floats use
// the shortest exact representation so a write/read cycle is lossless.
func cellText(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

func parseFloat(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("bad number %q", raw)
	}
	return v, nil
}

func parseInt(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		// spreadsheet tools re-save integer cells as floats
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return 0, fmt.Errorf("bad integer %q", raw)
		}
		return int(f), nil
	}
	return v, nil
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1":
		return true, nil
	case "false", "0", "":
		return false, nil
	}
	return false, fmt.Errorf("bad boolean %q", raw)
}
