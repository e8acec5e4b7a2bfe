// Package winprob computes in-game home win probability from live game state.
package winprob

import (
	"math"

	"github.com/blazesportsintel/forecast/internal/models"
)

// In-progress probabilities stay inside this band; only a final score is
// allowed to reach 0 or 1.
const (
	MinProb = 0.02
	MaxProb = 0.98
)

// homeAdvantage is the pre-game home edge in win probability terms.
const homeAdvantage = 0.04

// sportShape holds per-sport game length and scoring scale.
type sportShape struct {
	periods          int
	secondsPerPeriod int
	// pointScale converts a score margin into logistic input; lower-scoring
	// sports weight each point more heavily.
	pointScale float64
	// possessionValue is the expected-points worth of having the ball
	// (or being at bat) right now.
	possessionValue float64
}

var sportShapes = map[string]sportShape{
	"baseball":   {periods: 9, secondsPerPeriod: 1200, pointScale: 0.55, possessionValue: 0.45},
	"football":   {periods: 4, secondsPerPeriod: 900, pointScale: 0.16, possessionValue: 2.0},
	"basketball": {periods: 4, secondsPerPeriod: 720, pointScale: 0.14, possessionValue: 1.0},
}

// Estimate returns the home side's win probability for a live game state.
// Finished games resolve to the realized result; everything else is a
// logistic transform of the score margin scaled by time remaining, with a
// possession adjustment, clamped to [0.02, 0.98].
func Estimate(state *models.GameState) float64 {
	margin := float64(state.HomeScore - state.AwayScore)

	if state.Final {
		switch {
		case margin > 0:
			return 1.0
		case margin < 0:
			return 0.0
		default:
			return 0.5
		}
	}

	shape, ok := sportShapes[state.Sport]
	if !ok {
		shape = sportShapes["basketball"]
	}

	remaining := fractionRemaining(state, shape)
	effective := margin
	if state.HomePossession {
		effective += shape.possessionValue
	} else {
		effective -= shape.possessionValue
	}

	// a lead matters more as the clock runs out
	leverage := shape.pointScale / math.Sqrt(remaining+0.05)
	prob := logistic(effective*leverage) + homeAdvantage*remaining

	return clamp(prob)
}

func fractionRemaining(state *models.GameState, shape sportShape) float64 {
	total := float64(shape.periods * shape.secondsPerPeriod)
	elapsed := float64((state.Period-1)*shape.secondsPerPeriod + (shape.secondsPerPeriod - state.ClockSeconds))
	if elapsed < 0 {
		elapsed = 0
	}
	remaining := (total - elapsed) / total
	if remaining < 0 {
		return 0
	}
	if remaining > 1 {
		return 1
	}
	return remaining
}

func logistic(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func clamp(p float64) float64 {
	if p < MinProb {
		return MinProb
	}
	if p > MaxProb {
		return MaxProb
	}
	return p
}
