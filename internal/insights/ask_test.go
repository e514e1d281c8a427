package insights

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		question string
		want     Intent
	}{
		{"Which locations have the highest call volume?", IntentLocationVolume},
		{"Which location is the busiest?", IntentLocationVolume},
		{"Which locations have the highest quality scores?", IntentLocationQuality},
		{"Which locations have the best sentiment?", IntentLocationSentiment},
		{"Which agents have the best quality scores?", IntentAgentQuality},
		{"Which agents handle the most calls?", IntentAgentVolume},
		{"What are the busiest call times?", IntentBusiestHours},
		{"What are our peak hours?", IntentBusiestHours},
		{"What percentage of calls have positive sentiment?", IntentSentimentShare},
		{"What share of calls are negative sentiment?", IntentSentimentShare},
		{"What are the most common call topics?", IntentCommonTopics},
		{"What are the top complaints?", IntentCommonTopics},
		{"How is the weather today?", IntentUnknown},
		{"", IntentUnknown},
	}
	for _, tc := range cases {
		if got := Classify(tc.question); got != tc.want {
			t.Errorf("Classify(%q) = %s, want %s", tc.question, got, tc.want)
		}
	}
}

func TestAskLocationVolume(t *testing.T) {
	got := New(fixture()).Ask("Which locations have the highest call volume?")

	if got.Intent != "location_volume" {
		t.Errorf("intent = %q", got.Intent)
	}
	if got.Text != "Locations with highest call volume: Downtown, Uptown" {
		t.Errorf("answer = %q", got.Text)
	}
	want := []Metric{{Name: "Downtown", Value: 4}, {Name: "Uptown", Value: 2}}
	if diff := cmp.Diff(want, got.Data); diff != "" {
		t.Errorf("data mismatch (-want +got):\n%s", diff)
	}
	if got.Suggestions != nil {
		t.Errorf("unexpected suggestions: %v", got.Suggestions)
	}
}

func TestAskAgentQuality(t *testing.T) {
	got := New(fixture()).Ask("Which agents have the best quality scores?")

	if got.Text != "Agents with highest quality scores: Amy Chen, Cara Diaz, Ben Ortiz" {
		t.Errorf("answer = %q", got.Text)
	}
	if len(got.Data) != 3 || got.Data[0].Name != "Amy Chen" || got.Data[0].Value != 8.5 {
		t.Errorf("data = %+v", got.Data)
	}
}

func TestAskSentimentShare(t *testing.T) {
	positive := New(fixture()).Ask("What percentage of calls have positive sentiment?")
	if positive.Text != "Positive sentiment: 50.0% of calls" {
		t.Errorf("positive answer = %q", positive.Text)
	}

	negative := New(fixture()).Ask("What percentage of calls have negative sentiment?")
	if negative.Text != "Negative sentiment: 16.7% of calls" {
		t.Errorf("negative answer = %q", negative.Text)
	}

	wantData := []Metric{
		{Name: "positive", Value: 50.0},
		{Name: "neutral", Value: 33.3},
		{Name: "negative", Value: 16.7},
	}
	if diff := cmp.Diff(wantData, negative.Data); diff != "" {
		t.Errorf("distribution mismatch (-want +got):\n%s", diff)
	}
}

func TestAskBusiestHours(t *testing.T) {
	got := New(fixture()).Ask("What are the busiest call times?")

	// 9, 10 and 14 each carry two calls; ties order by hour
	if got.Text != "Busiest call times: 9:00, 10:00, 14:00" {
		t.Errorf("answer = %q", got.Text)
	}
	want := []Metric{
		{Name: "9:00", Value: 2},
		{Name: "10:00", Value: 2},
		{Name: "14:00", Value: 2},
	}
	if diff := cmp.Diff(want, got.Data); diff != "" {
		t.Errorf("data mismatch (-want +got):\n%s", diff)
	}
}

func TestAskCommonTopics(t *testing.T) {
	got := New(fixture()).Ask("What are the most common call topics?")

	if !strings.HasPrefix(got.Text, "Most common topics: appointment_scheduling") {
		t.Errorf("answer = %q", got.Text)
	}
	if len(got.Data) != 4 || got.Data[0].Name != "appointment_scheduling" || got.Data[0].Value != 3 {
		t.Errorf("data = %+v", got.Data)
	}
}

func TestAskUnknown(t *testing.T) {
	got := New(fixture()).Ask("How is the weather today?")

	if got.Intent != "unknown" {
		t.Errorf("intent = %q", got.Intent)
	}
	if !strings.Contains(got.Text, "Try asking about locations, agents, sentiment, or topics") {
		t.Errorf("answer = %q", got.Text)
	}
	if diff := cmp.Diff(askSuggestions, got.Suggestions); diff != "" {
		t.Errorf("suggestions mismatch (-want +got):\n%s", diff)
	}
}

func TestAskEmptyDataset(t *testing.T) {
	got := New(nil).Ask("Which locations have the highest call volume?")
	if got.Text != "No data available to answer this question" {
		t.Errorf("answer = %q", got.Text)
	}
	if got.Data != nil {
		t.Errorf("unexpected data: %+v", got.Data)
	}
}
