package store

import (
	"context"
	"database/sql"
	"fmt"
	"math"
)

// AgentPerformance is one agent+location aggregate row.
type AgentPerformance struct {
	AgentName          string  `json:"agent_name"`
	Location           string  `json:"location"`
	TotalCalls         int     `json:"total_calls"`
	AvgQualityScore    float64 `json:"avg_quality_score"`
	AvgScriptAdherence float64 `json:"avg_script_adherence"`
	AvgSatisfaction    float64 `json:"avg_customer_satisfaction"`
	ResolvedCalls      int     `json:"resolved_calls"`
	AvgDurationSeconds float64 `json:"avg_duration_seconds"`
}

// LocationPerformance is one location aggregate row.
type LocationPerformance struct {
	Location           string  `json:"location"`
	TotalCalls         int     `json:"total_calls"`
	AvgQualityScore    float64 `json:"avg_quality_score"`
	AvgSatisfaction    float64 `json:"avg_customer_satisfaction"`
	UniqueAgents       int     `json:"unique_agents"`
	PositiveCalls      int     `json:"positive_calls"`
	ResolvedCalls      int     `json:"resolved_calls"`
	AvgDurationSeconds float64 `json:"avg_duration_seconds"`
}

// DailyTrend is one call-date aggregate row.
type DailyTrend struct {
	CallDate        string  `json:"call_date"`
	TotalCalls      int     `json:"total_calls"`
	AvgQuality      float64 `json:"avg_quality"`
	AvgSatisfaction float64 `json:"avg_satisfaction"`
	PositiveCalls   int     `json:"positive_calls"`
	ResolvedCalls   int     `json:"resolved_calls"`
}

// Stats summarizes the whole warehouse.
type Stats struct {
	TotalConversations int     `json:"total_conversations"`
	MinDate            string  `json:"min_date"`
	MaxDate            string  `json:"max_date"`
	UniqueAgents       int     `json:"unique_agents"`
	UniqueLocations    int     `json:"unique_locations"`
	AvgQuality         float64 `json:"avg_quality"`
	AvgSatisfaction    float64 `json:"avg_satisfaction"`
	AvgPolarity        float64 `json:"avg_polarity"`
}

// AgentPerformance aggregates per agent and location, best quality first.
// An empty agentName returns every agent.
func (s *Store) AgentPerformance(ctx context.Context, agentName string) ([]AgentPerformance, error) {
	query := `
		SELECT agent_name, location,
		       COUNT(*) AS total_calls,
		       AVG(call_quality_score),
		       AVG(script_adherence_rate),
		       AVG(customer_satisfaction_score),
		       SUM(CASE WHEN call_outcome = 'resolved' THEN 1 ELSE 0 END),
		       AVG(duration_seconds)
		FROM conversations`
	args := []any{}
	if agentName != "" {
		query += " WHERE agent_name = ?"
		args = append(args, agentName)
	}
	query += " GROUP BY agent_name, location ORDER BY AVG(call_quality_score) DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("agent performance: %w", err)
	}
	defer rows.Close()

	var out []AgentPerformance
	for rows.Next() {
		var p AgentPerformance
		if err := rows.Scan(&p.AgentName, &p.Location, &p.TotalCalls, &p.AvgQualityScore,
			&p.AvgScriptAdherence, &p.AvgSatisfaction, &p.ResolvedCalls, &p.AvgDurationSeconds); err != nil {
			return nil, fmt.Errorf("scan agent row: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// LocationPerformance aggregates per location, busiest first. An empty
// location returns every location.
func (s *Store) LocationPerformance(ctx context.Context, location string) ([]LocationPerformance, error) {
	query := `
		SELECT location,
		       COUNT(*) AS total_calls,
		       AVG(call_quality_score),
		       AVG(customer_satisfaction_score),
		       COUNT(DISTINCT agent_name),
		       SUM(CASE WHEN sentiment_label = 'positive' THEN 1 ELSE 0 END),
		       SUM(CASE WHEN call_outcome = 'resolved' THEN 1 ELSE 0 END),
		       AVG(duration_seconds)
		FROM conversations`
	args := []any{}
	if location != "" {
		query += " WHERE location = ?"
		args = append(args, location)
	}
	query += " GROUP BY location ORDER BY total_calls DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("location performance: %w", err)
	}
	defer rows.Close()

	var out []LocationPerformance
	for rows.Next() {
		var p LocationPerformance
		if err := rows.Scan(&p.Location, &p.TotalCalls, &p.AvgQualityScore, &p.AvgSatisfaction,
			&p.UniqueAgents, &p.PositiveCalls, &p.ResolvedCalls, &p.AvgDurationSeconds); err != nil {
			return nil, fmt.Errorf("scan location row: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Trends aggregates the most recent days of the loaded data per call date,
// newest first. The window is anchored at the maximum call_date in the table
// rather than the wall clock so historical datasets stay queryable.
func (s *Store) Trends(ctx context.Context, days int) ([]DailyTrend, error) {
	if days < 1 {
		days = 7
	}
	query := `
		SELECT call_date,
		       COUNT(*) AS total_calls,
		       AVG(call_quality_score),
		       AVG(customer_satisfaction_score),
		       SUM(CASE WHEN sentiment_label = 'positive' THEN 1 ELSE 0 END),
		       SUM(CASE WHEN call_outcome = 'resolved' THEN 1 ELSE 0 END)
		FROM conversations
		WHERE call_date >= (SELECT DATE(MAX(call_date), ?) FROM conversations)
		GROUP BY call_date
		ORDER BY call_date DESC`

	rows, err := s.db.QueryContext(ctx, query, fmt.Sprintf("-%d days", days-1))
	if err != nil {
		return nil, fmt.Errorf("trends: %w", err)
	}
	defer rows.Close()

	var out []DailyTrend
	for rows.Next() {
		var t DailyTrend
		if err := rows.Scan(&t.CallDate, &t.TotalCalls, &t.AvgQuality, &t.AvgSatisfaction,
			&t.PositiveCalls, &t.ResolvedCalls); err != nil {
			return nil, fmt.Errorf("scan trend row: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Stats reports warehouse totals. An empty table yields zero values.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var (
		st               Stats
		minDate, maxDate sql.NullString
		avgQ, avgS, avgP sql.NullFloat64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       MIN(call_date), MAX(call_date),
		       COUNT(DISTINCT agent_name), COUNT(DISTINCT location),
		       AVG(call_quality_score), AVG(customer_satisfaction_score), AVG(sentiment_polarity)
		FROM conversations`).
		Scan(&st.TotalConversations, &minDate, &maxDate, &st.UniqueAgents, &st.UniqueLocations,
			&avgQ, &avgS, &avgP)
	if err != nil {
		return Stats{}, fmt.Errorf("stats: %w", err)
	}
	st.MinDate = minDate.String
	st.MaxDate = maxDate.String
	st.AvgQuality = round2(avgQ.Float64)
	st.AvgSatisfaction = round2(avgS.Float64)
	st.AvgPolarity = round2(avgP.Float64)
	return st, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
