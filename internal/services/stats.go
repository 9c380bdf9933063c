package services

import (
	"math"

	"github.com/sentiment-gateway/backend/internal/models"
)

type Stats struct {
	TotalAnalyses         int            `json:"totalAnalyses"`
	SentimentDistribution map[string]int `json:"sentimentDistribution"`
	AverageConfidence     float64        `json:"averageConfidence"`
}

// ComputeStats summarises the given history entries. An empty input reports
// an average confidence of 0: the mean is taken over max(len, 1).
func ComputeStats(entries []models.AnalysisResult) Stats {
	distribution := make(map[string]int)
	var sum float64

	for _, entry := range entries {
		distribution[string(entry.LabelOrUnknown())]++
		sum += entry.Sentiment.Score
	}

	denominator := len(entries)
	if denominator == 0 {
		denominator = 1
	}

	return Stats{
		TotalAnalyses:         len(entries),
		SentimentDistribution: distribution,
		AverageConfidence:     roundTo(sum/float64(denominator), 4),
	}
}

func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
