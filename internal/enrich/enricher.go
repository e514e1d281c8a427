// Package enrich derives the business feature set for one conversation:
// sentiment, topic, quality, script adherence, customer-experience counts,
// outcome, urgency and temporal buckets. Enrichment is a pure function of
// the call details, so records can be enriched concurrently.
package enrich

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"vcon-insights/internal/lexicon"
	"vcon-insights/internal/sentiment"
	"vcon-insights/internal/types"
)

const (
	positiveWeight      = 0.3
	negativeWeight      = 0.5
	baseQualityScore    = 7.0
	sweetSpotBonus      = 0.5
	longCallPenalty     = 0.3
	sweetSpotMinSeconds = 120
	sweetSpotMaxSeconds = 600
	longCallSeconds     = 900
)

type Enricher struct {
	lex *lexicon.Lexicon
}

func New(lex *lexicon.Lexicon) *Enricher {
	return &Enricher{lex: lex}
}

// Enrich computes every feature for one conversation. Sub-features are
// independent: a degenerate input to one (empty text, bad timestamp) falls
// back to that feature's default without touching the others.
func (e *Enricher) Enrich(details types.CallDetails) types.EnrichedRecord {
	text := details.ConversationText
	rec := types.EnrichedRecord{CallDetails: details}
	rec.Sentiment = e.analyzeSentiment(text)
	rec.Topics = e.classifyTopics(text)
	rec.Quality = e.assessQuality(text, details.DurationSeconds)
	rec.ScriptAdherence = e.scriptAdherence(text)
	rec.Experience = e.customerExperience(text)
	rec.Temporal = temporalFeatures(details.CreatedAt)
	rec.CallOutcome = e.classifyOutcome(text)
	rec.UrgencyLevel = e.classifyUrgency(text)
	return rec
}

// analyzeSentiment maps polarity to a label (bands at ±0.1) and a 1-10
// satisfaction score centered at 5. Empty text is neutral with score 5.0.
func (e *Enricher) analyzeSentiment(text string) types.Sentiment {
	if text == "" {
		return types.Sentiment{Label: "neutral", SatisfactionScore: 5.0}
	}
	score := sentiment.Analyze(text)
	label := "neutral"
	switch {
	case score.Polarity > 0.1:
		label = "positive"
	case score.Polarity < -0.1:
		label = "negative"
	}
	satisfaction := clamp(5.0+score.Polarity*5.0, 1.0, 10.0)
	return types.Sentiment{
		Polarity:          round3(score.Polarity),
		Subjectivity:      round3(score.Subjectivity),
		Label:             label,
		SatisfactionScore: round1(satisfaction),
	}
}

// classifyTopics scores each topic bucket by keyword presence. The primary
// topic is the arg-max with ties going to the earlier bucket; zero hits
// everywhere yields "general" with confidence 0. Confidence is the primary
// bucket's share of all hits.
func (e *Enricher) classifyTopics(text string) types.Topics {
	lowered := strings.ToLower(text)

	scores := make([]int, len(e.lex.Topics))
	total := 0
	primary := "general"
	primaryScore := 0
	for i, bucket := range e.lex.Topics {
		scores[i] = countPresent(lowered, bucket.Keywords)
		total += scores[i]
		if scores[i] > primaryScore {
			primary = bucket.Name
			primaryScore = scores[i]
		}
	}

	denominator := total
	if denominator < 1 {
		denominator = 1
	}
	return types.Topics{
		PrimaryTopic:    primary,
		TopicConfidence: round3(float64(primaryScore) / float64(denominator)),
		TopicScores:     orderedCountsJSON(e.lex.Topics, scores),
	}
}

// assessQuality starts every call at 7.0, rewards courtesy phrases, punishes
// friction phrases, and nudges for duration: the 2-10 minute band is a good
// sign, beyond 15 minutes is not.
func (e *Enricher) assessQuality(text string, durationSeconds float64) types.Quality {
	lowered := strings.ToLower(text)
	positive := countPresent(lowered, e.lex.PositiveIndicators)
	negative := countPresent(lowered, e.lex.NegativeIndicators)

	score := baseQualityScore
	score += float64(positive) * positiveWeight
	score -= float64(negative) * negativeWeight
	if durationSeconds >= sweetSpotMinSeconds && durationSeconds <= sweetSpotMaxSeconds {
		score += sweetSpotBonus
	} else if durationSeconds > longCallSeconds {
		score -= longCallPenalty
	}

	return types.Quality{
		CallQualityScore:        round1(clamp(score, 1.0, 10.0)),
		PositiveIndicatorsCount: positive,
		NegativeIndicatorsCount: negative,
	}
}

// scriptAdherence checks each script element for any of its marker phrases.
func (e *Enricher) scriptAdherence(text string) types.ScriptAdherence {
	lowered := strings.ToLower(text)

	followed := 0
	flags := make([]int, len(e.lex.ScriptElements))
	for i, element := range e.lex.ScriptElements {
		if anyPresent(lowered, element.Keywords) {
			flags[i] = 1
			followed++
		}
	}
	total := len(e.lex.ScriptElements)

	return types.ScriptAdherence{
		AdherenceRate:    round3(float64(followed) / float64(total)),
		ElementsFollowed: followed,
		ElementsTotal:    total,
		Details:          orderedCountsJSON(e.lex.ScriptElements, flags),
	}
}

func (e *Enricher) customerExperience(text string) types.Experience {
	lowered := strings.ToLower(text)
	satisfaction := countPresent(lowered, e.lex.Satisfaction)
	dissatisfaction := countPresent(lowered, e.lex.Dissatisfaction)
	lowEffort := countPresent(lowered, e.lex.LowEffort)
	highEffort := countPresent(lowered, e.lex.HighEffort)

	return types.Experience{
		SatisfactionIndicators:    satisfaction,
		DissatisfactionIndicators: dissatisfaction,
		LowEffortIndicators:       lowEffort,
		HighEffortIndicators:      highEffort,
		NetSatisfactionScore:      satisfaction - dissatisfaction,
		NetEffortScore:            lowEffort - highEffort,
	}
}

// classifyOutcome is first-match-wins over the outcome buckets in order;
// nothing matching means the call simply completed.
func (e *Enricher) classifyOutcome(text string) string {
	lowered := strings.ToLower(text)
	for _, bucket := range e.lex.Outcomes {
		if anyPresent(lowered, bucket.Keywords) {
			return bucket.Name
		}
	}
	return "completed"
}

// classifyUrgency checks the urgency buckets in order, high before medium.
func (e *Enricher) classifyUrgency(text string) string {
	lowered := strings.ToLower(text)
	for _, bucket := range e.lex.Urgency {
		if anyPresent(lowered, bucket.Keywords) {
			return bucket.Name
		}
	}
	return "low"
}

// countPresent counts how many phrases appear at least once. Presence, not
// frequency: a phrase occurring five times still counts once.
func countPresent(lowered string, phrases []string) int {
	count := 0
	for _, phrase := range phrases {
		if strings.Contains(lowered, phrase) {
			count++
		}
	}
	return count
}

func anyPresent(lowered string, phrases []string) bool {
	for _, phrase := range phrases {
		if strings.Contains(lowered, phrase) {
			return true
		}
	}
	return false
}

// orderedCountsJSON renders bucket counts as a JSON object preserving bucket
// order, so exported score breakdowns read in the same order the buckets are
// configured.
func orderedCountsJSON(buckets []lexicon.Bucket, counts []int) string {
	var b strings.Builder
	b.WriteByte('{')
	for i, bucket := range buckets {
		if i > 0 {
			b.WriteString(", ")
		}
		name, _ := json.Marshal(bucket.Name)
		b.Write(name)
		b.WriteString(": ")
		b.WriteString(strconv.Itoa(counts[i]))
	}
	b.WriteByte('}')
	return b.String()
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
