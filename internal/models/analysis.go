package models

type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "positive"
	SentimentNegative SentimentLabel = "negative"
	SentimentNeutral  SentimentLabel = "neutral"
	SentimentUnknown  SentimentLabel = "unknown"
)

// SentimentDetails holds the per-class scores reported by the analysis service
type SentimentDetails struct {
	Positive float64 `json:"positive"`
	Neutral  float64 `json:"neutral"`
	Negative float64 `json:"negative"`
}

type Sentiment struct {
	Label    SentimentLabel   `json:"label"`
	Score    float64          `json:"score"`              // Confidence in [0,1]
	Compound *float64         `json:"compound,omitempty"` // Raw polarity, when the service reports it
	Details  SentimentDetails `json:"details"`
}

type Emotion struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// AnalysisMetadata is passed through from the analysis service untouched
type AnalysisMetadata struct {
	TextLength int    `json:"text_length"`
	Model      string `json:"model"`
}

// AnalysisResult is one successful single-text analysis as stored in history.
// It is never modified after it has been stored.
type AnalysisResult struct {
	ID        string           `json:"id"`
	Timestamp string           `json:"timestamp"`
	UserID    string           `json:"userId"`
	Text      string           `json:"text"`
	Sentiment Sentiment        `json:"sentiment"`
	Emotions  []Emotion        `json:"emotions"`
	Metadata  AnalysisMetadata `json:"metadata"`
}

// LabelOrUnknown returns the sentiment label, or "unknown" when it is empty
func (r AnalysisResult) LabelOrUnknown() SentimentLabel {
	if r.Sentiment.Label == "" {
		return SentimentUnknown
	}
	return r.Sentiment.Label
}
