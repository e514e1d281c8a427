package sentiment

import "testing"

func TestAnalyze(t *testing.T) {
	tests := []struct {
		name         string
		text         string
		wantLabel    string // positive / negative / neutral by the 0.1 bands
		wantPolarity func(p float64) bool
	}{
		{
			name:      "empty text",
			text:      "",
			wantLabel: "neutral",
		},
		{
			name:      "unknown vocabulary",
			text:      "the appointment is on tuesday at three",
			wantLabel: "neutral",
		},
		{
			name:      "positive call",
			text:      "I am very happy with the service, thank you!",
			wantLabel: "positive",
		},
		{
			name:      "negative call",
			text:      "This was terrible, the agent was rude and I am frustrated.",
			wantLabel: "negative",
		},
		{
			name:      "negated positive",
			text:      "I am not happy about this.",
			wantLabel: "negative",
		},
		{
			name:      "mixed leaning positive",
			text:      "There was a problem but the agent was excellent and very helpful.",
			wantLabel: "positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Analyze(tt.text)
			if got.Polarity < -1 || got.Polarity > 1 {
				t.Fatalf("polarity out of range: %v", got.Polarity)
			}
			if got.Subjectivity < 0 || got.Subjectivity > 1 {
				t.Fatalf("subjectivity out of range: %v", got.Subjectivity)
			}
			label := "neutral"
			if got.Polarity > 0.1 {
				label = "positive"
			} else if got.Polarity < -0.1 {
				label = "negative"
			}
			if label != tt.wantLabel {
				t.Errorf("label = %q (polarity %v), want %q", label, got.Polarity, tt.wantLabel)
			}
		})
	}
}

func TestAnalyzeEmptyIsZero(t *testing.T) {
	got := Analyze("")
	if got.Polarity != 0 || got.Subjectivity != 0 {
		t.Fatalf("expected zero score, got %+v", got)
	}
}

func TestIntensifierBoosts(t *testing.T) {
	plain := Analyze("I am happy")
	boosted := Analyze("I am very happy")
	if boosted.Polarity <= plain.Polarity {
		t.Fatalf("expected boost: plain %v, boosted %v", plain.Polarity, boosted.Polarity)
	}
}

func TestNegationFlips(t *testing.T) {
	plain := Analyze("good")
	negated := Analyze("not good")
	if negated.Polarity >= 0 {
		t.Fatalf("expected negative polarity, got %v", negated.Polarity)
	}
	if negated.Polarity <= -plain.Polarity {
		t.Fatalf("negation should dampen, not mirror: %v vs %v", negated.Polarity, plain.Polarity)
	}
}

func TestNegatorWindowExpires(t *testing.T) {
	// Three neutral words between the negator and the sentiment word.
	got := Analyze("not the one we wanted but great")
	if got.Polarity <= 0 {
		t.Fatalf("stale negator applied: %v", got.Polarity)
	}
}

// Appending a superlative must never lower the polarity of any text.
func TestStrongPositiveMonotonicity(t *testing.T) {
	bases := []string{
		"",
		"the appointment is on tuesday",
		"I am happy with the service",
		"this was terrible and the agent was rude",
		"excellent excellent excellent",
	}
	for _, base := range bases {
		before := Analyze(base)
		after := Analyze(base + " This is excellent.")
		if after.Polarity < before.Polarity {
			t.Errorf("polarity decreased for %q: %v -> %v", base, before.Polarity, after.Polarity)
		}
	}
}
