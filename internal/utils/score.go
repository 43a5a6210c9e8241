package utils

import (
	"math"
	"time"
)

type ScoreConfig struct {
	Gravity        float64 // time gravity
	WeightBookmark float64
	WeightComment  float64
	WeightUpvote   float64
	WeightDownvote float64
	ScaleFactor    float64
}

var DefaultScoreConfig = ScoreConfig{
	Gravity:        1.5,
	WeightBookmark: 3.0,
	WeightComment:  2.0,
	WeightUpvote:   1.0,
	WeightDownvote: 1.5,
	ScaleFactor:    100.0, // keep scores roughly in 0-100
}

// TrendingScore ranks a place by community activity with time decay.
// Views are deliberately excluded: their magnitude swamps the log weighting.
func TrendingScore(createdAt time.Time, up, down, bookmarks, comments int) float64 {
	hours := time.Since(createdAt).Hours()

	weightedSum := (float64(up) * DefaultScoreConfig.WeightUpvote) +
		(float64(comments) * DefaultScoreConfig.WeightComment) +
		(float64(bookmarks) * DefaultScoreConfig.WeightBookmark) -
		(float64(down) * DefaultScoreConfig.WeightDownvote)

	if weightedSum < 0 {
		weightedSum = 0 // log of a negative is undefined
	}

	// log10(sum + 1) keeps sum=0 at exactly 0
	logScore := math.Log10(weightedSum + 1)

	numerator := logScore * DefaultScoreConfig.ScaleFactor

	decay := math.Pow(hours+2, DefaultScoreConfig.Gravity)

	return numerator / decay
}
