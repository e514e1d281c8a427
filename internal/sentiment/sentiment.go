// Package sentiment scores free text with a lexicon model. Each known word
// carries a polarity in [-1,1] and a subjectivity in [0,1]; the text score is
// the mean over matched words, with negators flipping and intensifiers
// boosting the following sentiment word. Text with no matches scores zero.
package sentiment

import "strings"

const (
	boostFactor  = 1.3
	negateFactor = -0.5
	// Modifiers expire after this many non-sentiment words.
	modifierWindow = 2
)

// Score is the aggregate sentiment of one text.
type Score struct {
	Polarity     float64
	Subjectivity float64
}

// Analyze scores text. Empty or unknown-vocabulary text returns the zero
// Score, which callers treat as neutral.
func Analyze(text string) Score {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return Score{}
	}

	var polaritySum, subjectivitySum float64
	matched := 0
	negate, boost := false, false
	distance := 0

	for _, token := range tokens {
		if _, ok := negators[token]; ok {
			negate = true
			distance = 0
			continue
		}
		if _, ok := intensifiers[token]; ok {
			boost = true
			distance = 0
			continue
		}
		entry, ok := words[token]
		if !ok {
			distance++
			if distance > modifierWindow {
				negate, boost = false, false
			}
			continue
		}

		polarity := entry.polarity
		if boost {
			polarity *= boostFactor
		}
		if negate {
			polarity *= negateFactor
		}
		polaritySum += clamp(polarity, -1, 1)
		subjectivitySum += entry.subjectivity
		matched++
		negate, boost = false, false
		distance = 0
	}

	if matched == 0 {
		return Score{}
	}
	n := float64(matched)
	return Score{
		Polarity:     clamp(polaritySum/n, -1, 1),
		Subjectivity: clamp(subjectivitySum/n, 0, 1),
	}
}

func tokenize(text string) []string {
	lowered := strings.ToLower(text)
	return strings.FieldsFunc(lowered, func(r rune) bool {
		switch {
		case r >= 'a' && r <= 'z':
			return false
		case r >= '0' && r <= '9':
			return false
		case r == '\'':
			// Keep apostrophes so contractions collapse predictably below.
			return false
		}
		return true
	})
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
