// Package models defines the shared domain types for sentidash.
package models

import "time"

// Sentiment is a categorical label attached to a headline.
type Sentiment string

const (
	SentimentPositive Sentiment = "Positive"
	SentimentNegative Sentiment = "Negative"
	SentimentNeutral  Sentiment = "Neutral"
)

// String returns the label as it appears in CSV files.
func (s Sentiment) String() string { return string(s) }

// Headline is a single labelled financial news headline.
type Headline struct {
	Date       time.Time `json:"date"`
	Sentiment  Sentiment `json:"sentiment"`
	Title      string    `json:"headline"`
	Source     string    `json:"source,omitempty"`
	URL        string    `json:"url,omitempty"`
	Score      float64   `json:"score"`      // -1.0 (bearish) .. +1.0 (bullish)
	Confidence float64   `json:"confidence"` // 0..1
}
