package simulation

import (
	"github.com/blazesportsintel/forecast/internal/models"
)

// OddsDisclaimer accompanies every heuristic odds band.
const OddsDisclaimer = "Illustrative heuristic derived from projected win totals; not a calibrated probability."

// leagueBand anchors the heuristic mapping from mean projected wins to odds
// for one league: below floorWins playoff odds bottom out, above ceilWins
// they top out, linear in between.
type leagueBand struct {
	floorWins        float64
	ceilWins         float64
	minPlayoffOdds   float64
	maxPlayoffOdds   float64
	championshipsCap float64
}

var leagueBands = map[string]leagueBand{
	"mlb":  {floorWins: 75, ceilWins: 95, minPlayoffOdds: 0.02, maxPlayoffOdds: 0.95, championshipsCap: 0.25},
	"nfl":  {floorWins: 7, ceilWins: 12, minPlayoffOdds: 0.05, maxPlayoffOdds: 0.95, championshipsCap: 0.30},
	"nba":  {floorWins: 35, ceilWins: 55, minPlayoffOdds: 0.05, maxPlayoffOdds: 0.97, championshipsCap: 0.30},
	"ncaa": {floorWins: 6, ceilWins: 11, minPlayoffOdds: 0.02, maxPlayoffOdds: 0.90, championshipsCap: 0.20},
}

// HeuristicOddsBand maps a simulated mean win total to illustrative playoff
// and championship odds with small seeded jitter. The result is always
// flagged Heuristic and carries the disclaimer; it is never a fitted or
// calibrated estimate.
func (e *Engine) HeuristicOddsBand(team *models.TeamRecord, result *models.SimulationResult) *models.OddsBand {
	band, ok := leagueBands[team.League]
	if !ok {
		band = leagueBands["mlb"]
	}

	span := band.ceilWins - band.floorWins
	position := (result.MeanWins - band.floorWins) / span
	if position < 0 {
		position = 0
	}
	if position > 1 {
		position = 1
	}

	playoff := band.minPlayoffOdds + position*(band.maxPlayoffOdds-band.minPlayoffOdds)
	playoff += (e.rng.Float64() - 0.5) * 0.02
	playoff = clampProb(playoff, band.minPlayoffOdds, band.maxPlayoffOdds)

	// championship odds compress quadratically toward the top of the band
	championship := position * position * band.championshipsCap
	championship += (e.rng.Float64() - 0.5) * 0.01
	championship = clampProb(championship, 0, band.championshipsCap)

	return &models.OddsBand{
		TeamName:         team.TeamName,
		League:           team.League,
		MeanWins:         result.MeanWins,
		PlayoffOdds:      playoff,
		ChampionshipOdds: championship,
		Heuristic:        true,
		Disclaimer:       OddsDisclaimer,
	}
}

func clampProb(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
