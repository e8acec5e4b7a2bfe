// Package simulation implements the Monte Carlo season win-total engine.
package simulation

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/blazesportsintel/forecast/internal/models"
)

const (
	// DefaultIterations is the trial count when the caller does not override it.
	DefaultIterations = 10000
	// PerturbationStd is the standard deviation of the per-trial Gaussian
	// perturbation applied to the base win probability.
	PerturbationStd = 0.15
	// Per-game win probability clamp after perturbation.
	minGameProb = 0.10
	maxGameProb = 0.90
)

// Engine runs season simulations from one seeded source. One engine per
// invocation; no shared state across invocations.
type Engine struct {
	rng *rand.Rand
}

// NewEngine creates an engine with the given seed.
func NewEngine(seed int64) *Engine {
	return &Engine{rng: rand.New(rand.NewSource(seed))}
}

// SimulateSeason runs independent trials of a team's remaining schedule and
// returns one final win total per trial. Each trial perturbs the base win
// probability with a zero-mean Gaussian draw (Box-Muller, std 0.15), clamps
// to [0.10, 0.90], then plays each remaining game as a Bernoulli trial.
// A finished season (gamesRemaining = 0) is a point mass at currentWins.
func (e *Engine) SimulateSeason(team *models.TeamRecord, iterations int) ([]int, error) {
	if iterations <= 0 {
		iterations = DefaultIterations
	}
	if team.GamesRemaining < 0 {
		return nil, fmt.Errorf("%w: negative games remaining for %s", models.ErrInvalid, team.TeamName)
	}
	if team.BaseWinProb < 0 || team.BaseWinProb > 1 {
		return nil, fmt.Errorf("%w: base win probability %f out of range", models.ErrInvalid, team.BaseWinProb)
	}

	samples := make([]int, iterations)
	if team.GamesRemaining == 0 {
		for i := range samples {
			samples[i] = team.CurrentWins
		}
		return samples, nil
	}

	for i := 0; i < iterations; i++ {
		prob := team.BaseWinProb + e.gaussian()*PerturbationStd
		if prob < minGameProb {
			prob = minGameProb
		}
		if prob > maxGameProb {
			prob = maxGameProb
		}

		wins := team.CurrentWins
		for g := 0; g < team.GamesRemaining; g++ {
			if e.rng.Float64() < prob {
				wins++
			}
		}
		samples[i] = wins
	}
	return samples, nil
}

// gaussian draws one standard normal variate via Box-Muller from two
// uniform draws.
func (e *Engine) gaussian() float64 {
	u1 := e.rng.Float64()
	u2 := e.rng.Float64()
	for u1 == 0 {
		u1 = e.rng.Float64()
	}
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}

// Summarize reduces win-total samples to the distribution summary. Percentile
// indices are floor(n*0.05) and floor(n*0.95) over the ascending sort,
// clamped to [0, scheduleLength]. Mode ties break to the smallest win total.
func Summarize(team *models.TeamRecord, samples []int) (*models.SimulationResult, error) {
	n := len(samples)
	if n == 0 {
		return nil, fmt.Errorf("%w: no samples for %s", models.ErrDataInsufficient, team.TeamName)
	}

	sorted := append([]int{}, samples...)
	sort.Ints(sorted)

	sum := 0
	histogram := make(map[int]int, 32)
	for _, wins := range sorted {
		sum += wins
		histogram[wins]++
	}

	distribution := make(map[int]float64, len(histogram))
	mode := -1
	modeCount := -1
	for wins, count := range histogram {
		distribution[wins] = float64(count) / float64(n) * 100
		if count > modeCount || (count == modeCount && wins < mode) {
			mode = wins
			modeCount = count
		}
	}

	p5 := clampWins(sorted[n*5/100], team.ScheduleLength)
	p95 := clampWins(sorted[n*95/100], team.ScheduleLength)

	return &models.SimulationResult{
		TeamName:     team.TeamName,
		Iterations:   n,
		MeanWins:     float64(sum) / float64(n),
		ModeWins:     mode,
		P5:           p5,
		P95:          p95,
		Distribution: distribution,
	}, nil
}

func clampWins(wins, scheduleLength int) int {
	if wins < 0 {
		return 0
	}
	if scheduleLength > 0 && wins > scheduleLength {
		return scheduleLength
	}
	return wins
}
