// Package sentiment labels financial headlines as Positive, Negative or
// Neutral with a deterministic keyword scorer. It is used to label
// headlines pulled from news feeds, which arrive without a label.
package sentiment

import (
	"math"
	"strings"

	"github.com/seenimoa/sentidash/pkg/models"
)

// bullish / bearish keyword dictionaries (lowercase).
var bullishWords = map[string]float64{
	"bullish": 0.7, "rally": 0.6, "surge": 0.7, "upbeat": 0.5,
	"positive": 0.4, "growth": 0.4, "upgrade": 0.6, "outperform": 0.6,
	"buy": 0.5, "strong": 0.4, "recovery": 0.5, "breakout": 0.6,
	"record high": 0.7, "all-time high": 0.7, "beat": 0.5,
	"exceeds": 0.5, "expansion": 0.4, "gain": 0.4, "soar": 0.7,
	"profit": 0.3, "dividend": 0.4, "accumulate": 0.5, "jump": 0.5,
}

var bearishWords = map[string]float64{
	"bearish": 0.7, "crash": 0.8, "plunge": 0.7, "slump": 0.6,
	"negative": 0.4, "downgrade": 0.6, "underperform": 0.6,
	"sell": 0.5, "weak": 0.4, "decline": 0.5, "loss": 0.4,
	"selloff": 0.7, "fall": 0.4, "correction": 0.5, "tumble": 0.6,
	"default": 0.7, "fraud": 0.8, "scam": 0.8, "investigation": 0.5,
	"cut": 0.3, "miss": 0.5, "warning": 0.5, "concern": 0.3,
}

// DefaultThreshold is the absolute score a headline needs to leave Neutral.
const DefaultThreshold = 0.1

// Result is the outcome of scoring one piece of text.
type Result struct {
	Score      float64          // -1.0 (very bearish) .. +1.0 (very bullish)
	Confidence float64          // 0.1 with no keyword hits, up to 0.85
	Label      models.Sentiment // derived from Score and the threshold
	Matches    int
}

// Scorer assigns keyword-weighted scores and labels.
type Scorer struct {
	bullish   map[string]float64
	bearish   map[string]float64
	threshold float64
}

// NewScorer returns a scorer with the built-in dictionaries.
func NewScorer() *Scorer {
	return &Scorer{bullish: bullishWords, bearish: bearishWords, threshold: DefaultThreshold}
}

// WithThreshold returns a copy of s using a different neutral band.
func (s *Scorer) WithThreshold(threshold float64) *Scorer {
	cp := *s
	cp.threshold = math.Abs(threshold)
	return &cp
}

// Score scores text. The net score is normalised to -1..+1 and the
// confidence grows with the number of keyword hits.
func (s *Scorer) Score(text string) Result {
	lower := strings.ToLower(text)

	var bull, bear float64
	matches := 0
	for word, weight := range s.bullish {
		if strings.Contains(lower, word) {
			bull += weight
			matches++
		}
	}
	for word, weight := range s.bearish {
		if strings.Contains(lower, word) {
			bear += weight
			matches++
		}
	}

	total := bull + bear
	if matches == 0 || total == 0 {
		return Result{Confidence: 0.1, Label: models.SentimentNeutral}
	}

	score := (bull - bear) / total
	return Result{
		Score:      score,
		Confidence: math.Min(float64(matches)*0.15+0.2, 0.85),
		Label:      s.Label(score),
		Matches:    matches,
	}
}

// Label maps a score to a sentiment label.
func (s *Scorer) Label(score float64) models.Sentiment {
	switch {
	case score > s.threshold:
		return models.SentimentPositive
	case score < -s.threshold:
		return models.SentimentNegative
	default:
		return models.SentimentNeutral
	}
}

// Classify labels a headline in place from its title plus any extra text,
// such as the feed item's summary.
func (s *Scorer) Classify(h *models.Headline, extra string) {
	r := s.Score(strings.TrimSpace(h.Title + " " + extra))
	h.Score = r.Score
	h.Confidence = r.Confidence
	h.Sentiment = r.Label
}
