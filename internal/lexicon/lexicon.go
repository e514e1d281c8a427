// Package lexicon holds the keyword and phrase lists driving feature
// enrichment. The lists are configuration data, not code: they can be
// replaced wholesale from a YAML file without touching the enrichment
// algorithms. Bucket order is significant wherever first-match or
// first-checked tie-breaking applies.
package lexicon

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Version identifies the built-in lexicon revision. Override files carry
// their own version string so runs can report which lists produced a dataset.
const Version = "2025.1"

// Bucket is a named, ordered list of indicator phrases.
type Bucket struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// Lexicon carries every list used by the enricher. A zero value is not
// usable; construct with Default or Load.
type Lexicon struct {
	Version            string   `yaml:"version"`
	ConversationTypes  []Bucket `yaml:"conversation_types"`
	Topics             []Bucket `yaml:"topics"`
	PositiveIndicators []string `yaml:"positive_indicators"`
	NegativeIndicators []string `yaml:"negative_indicators"`
	ScriptElements     []Bucket `yaml:"script_elements"`
	Satisfaction       []string `yaml:"satisfaction"`
	Dissatisfaction    []string `yaml:"dissatisfaction"`
	LowEffort          []string `yaml:"low_effort"`
	HighEffort         []string `yaml:"high_effort"`
	Outcomes           []Bucket `yaml:"outcomes"`
	Urgency            []Bucket `yaml:"urgency"`
}

// Default returns the built-in lexicon. Callers may mutate the copy freely.
func Default() *Lexicon {
	return &Lexicon{
		Version: Version,
		ConversationTypes: []Bucket{
			{Name: "booking", Keywords: []string{"appointment", "booking", "schedule", "reserve", "book"}},
			{Name: "complaint", Keywords: []string{"complaint", "problem", "issue", "unhappy", "dissatisfied"}},
			{Name: "billing", Keywords: []string{"billing", "payment", "charge", "invoice", "refund"}},
			{Name: "service_inquiry", Keywords: []string{"service", "treatment", "massage", "facial", "spa"}},
		},
		Topics: []Bucket{
			{Name: "appointment_scheduling", Keywords: []string{"appointment", "schedule", "booking", "book", "reserve", "availability"}},
			{Name: "service_inquiry", Keywords: []string{"service", "treatment", "massage", "facial", "spa", "therapy", "package"}},
			{Name: "billing_payment", Keywords: []string{"billing", "payment", "charge", "invoice", "refund", "credit", "cost", "price"}},
			{Name: "complaint", Keywords: []string{"complaint", "problem", "issue", "unhappy", "dissatisfied", "disappointed", "terrible"}},
			{Name: "compliment", Keywords: []string{"great", "excellent", "amazing", "wonderful", "fantastic", "love", "satisfied"}},
			{Name: "cancellation", Keywords: []string{"cancel", "cancellation", "reschedule", "change", "modify"}},
			{Name: "technical_support", Keywords: []string{"website", "app", "technical", "login", "password", "system"}},
			{Name: "product_inquiry", Keywords: []string{"product", "gift card", "membership", "package", "voucher"}},
			{Name: "location_hours", Keywords: []string{"hours", "location", "address", "directions", "parking", "open", "closed"}},
		},
		PositiveIndicators: []string{
			"thank you", "please", "help", "understand", "sorry",
			"apologize", "certainly", "absolutely", "of course", "glad to help",
		},
		NegativeIndicators: []string{
			"rude", "unprofessional", "hang up", "transfer", "manager",
			"escalate", "frustrated", "angry", "upset",
		},
		ScriptElements: []Bucket{
			{Name: "greeting", Keywords: []string{"thank you for calling", "feel good spas", "how can i help", "this is"}},
			{Name: "identification", Keywords: []string{"my name is", "this is", "speaking"}},
			{Name: "problem_acknowledgment", Keywords: []string{"understand", "i see", "i hear", "let me help"}},
			{Name: "solution_offering", Keywords: []string{"i can help", "let me", "what i can do", "here's what"}},
			{Name: "follow_up", Keywords: []string{"anything else", "is there anything", "follow up", "contact us"}},
			{Name: "closing", Keywords: []string{"thank you", "have a great", "wonderful day", "goodbye"}},
		},
		Satisfaction: []string{
			"satisfied", "happy", "pleased", "great", "excellent",
			"wonderful", "amazing", "love", "perfect", "fantastic",
		},
		Dissatisfaction: []string{
			"dissatisfied", "unhappy", "upset", "angry", "frustrated",
			"terrible", "awful", "horrible", "worst", "hate",
		},
		LowEffort: []string{
			"easy", "simple", "quick", "fast", "convenient",
			"smooth", "efficient", "straightforward",
		},
		HighEffort: []string{
			"difficult", "hard", "complicated", "confusing",
			"slow", "long wait", "forever",
		},
		Outcomes: []Bucket{
			{Name: "resolved", Keywords: []string{"resolved", "fixed", "solved", "helped", "booked", "scheduled"}},
			{Name: "requires_followup", Keywords: []string{"follow up", "call back", "transfer", "escalate"}},
			{Name: "cancelled", Keywords: []string{"cancel", "cancelled", "no longer", "changed mind"}},
			{Name: "complaint", Keywords: []string{"complaint", "refund", "manager", "dissatisfied"}},
		},
		Urgency: []Bucket{
			{Name: "high", Keywords: []string{"urgent", "emergency", "asap", "immediately", "crisis", "critical"}},
			{Name: "medium", Keywords: []string{"soon", "today", "this week", "important", "need help"}},
		},
	}
}

// Load reads a YAML override file and merges it over the defaults. Sections
// present in the file replace the built-in section entirely; absent sections
// keep the defaults. An empty path returns the defaults.
func Load(path string) (*Lexicon, error) {
	base := Default()
	if path == "" {
		return base, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lexicon: %w", err)
	}

	var override Lexicon
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("parse lexicon: %w", err)
	}

	base.merge(&override)
	base.lowercase()
	if err := base.Validate(); err != nil {
		return nil, fmt.Errorf("lexicon %s: %w", path, err)
	}
	return base, nil
}

// lowercase folds every phrase so matching can stay case-insensitive with a
// single ToLower on the input text.
func (l *Lexicon) lowercase() {
	for _, buckets := range [][]Bucket{l.ConversationTypes, l.Topics, l.ScriptElements, l.Outcomes, l.Urgency} {
		for i := range buckets {
			for j, keyword := range buckets[i].Keywords {
				buckets[i].Keywords[j] = strings.ToLower(keyword)
			}
		}
	}
	for _, list := range [][]string{
		l.PositiveIndicators, l.NegativeIndicators,
		l.Satisfaction, l.Dissatisfaction, l.LowEffort, l.HighEffort,
	} {
		for i, phrase := range list {
			list[i] = strings.ToLower(phrase)
		}
	}
}

func (l *Lexicon) merge(override *Lexicon) {
	if override.Version != "" {
		l.Version = override.Version
	}
	if len(override.ConversationTypes) > 0 {
		l.ConversationTypes = override.ConversationTypes
	}
	if len(override.Topics) > 0 {
		l.Topics = override.Topics
	}
	if len(override.PositiveIndicators) > 0 {
		l.PositiveIndicators = override.PositiveIndicators
	}
	if len(override.NegativeIndicators) > 0 {
		l.NegativeIndicators = override.NegativeIndicators
	}
	if len(override.ScriptElements) > 0 {
		l.ScriptElements = override.ScriptElements
	}
	if len(override.Satisfaction) > 0 {
		l.Satisfaction = override.Satisfaction
	}
	if len(override.Dissatisfaction) > 0 {
		l.Dissatisfaction = override.Dissatisfaction
	}
	if len(override.LowEffort) > 0 {
		l.LowEffort = override.LowEffort
	}
	if len(override.HighEffort) > 0 {
		l.HighEffort = override.HighEffort
	}
	if len(override.Outcomes) > 0 {
		l.Outcomes = override.Outcomes
	}
	if len(override.Urgency) > 0 {
		l.Urgency = override.Urgency
	}
}

// Validate checks that every bucket is named and non-empty.
func (l *Lexicon) Validate() error {
	sections := map[string][]Bucket{
		"conversation_types": l.ConversationTypes,
		"topics":             l.Topics,
		"script_elements":    l.ScriptElements,
		"outcomes":           l.Outcomes,
		"urgency":            l.Urgency,
	}
	for section, buckets := range sections {
		if len(buckets) == 0 {
			return fmt.Errorf("%s: at least one bucket required", section)
		}
		for i, bucket := range buckets {
			if bucket.Name == "" {
				return fmt.Errorf("%s[%d]: bucket name required", section, i)
			}
			if len(bucket.Keywords) == 0 {
				return fmt.Errorf("%s[%d] (%s): keywords required", section, i, bucket.Name)
			}
		}
	}
	return nil
}
