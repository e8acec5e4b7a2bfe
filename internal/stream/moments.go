package stream

import (
	"math"

	"github.com/blazesportsintel/forecast/internal/models"
)

// Swing thresholds in percentage points.
const (
	notableSwingPts     = 5.0
	significantSwingPts = 7.0
	majorSwingPts       = 10.0
)

// IdentifyKeyMoments scans consecutive snapshots for win-probability swings
// of at least five percentage points, graded notable/significant/major at the
// 5/7/10-point thresholds.
func IdentifyKeyMoments(history []models.PredictionSnapshot) []models.KeyMoment {
	var moments []models.KeyMoment
	for i := 1; i < len(history); i++ {
		from := history[i-1].WinProbability
		to := history[i].WinProbability
		swing := math.Abs(to-from) * 100
		if swing < notableSwingPts {
			continue
		}

		moments = append(moments, models.KeyMoment{
			GameID:    history[i].GameID,
			Timestamp: history[i].Timestamp,
			FromProb:  from,
			ToProb:    to,
			SwingPts:  swing,
			Severity:  gradeSwing(swing),
			GameState: history[i].GameState,
		})
	}
	return moments
}

func gradeSwing(swingPts float64) string {
	switch {
	case swingPts >= majorSwingPts:
		return models.MomentMajor
	case swingPts >= significantSwingPts:
		return models.MomentSignificant
	default:
		return models.MomentNotable
	}
}
