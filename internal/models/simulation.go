package models

// SimulationResult summarizes one team's simulated win-total distribution.
// Ephemeral; recomputed on demand.
type SimulationResult struct {
	TeamName     string          `json:"team_name"`
	Iterations   int             `json:"iterations"`
	MeanWins     float64         `json:"mean_wins"`
	ModeWins     int             `json:"mode_wins"`
	P5           int             `json:"p5"`
	P95          int             `json:"p95"`
	Distribution map[int]float64 `json:"distribution"`
}

// OddsBand maps a projected mean win total to illustrative playoff and
// championship odds. These are jitter-based heuristics, not calibrated
// probabilities, and are labeled as such.
type OddsBand struct {
	TeamName         string  `json:"team_name"`
	League           string  `json:"league"`
	MeanWins         float64 `json:"mean_wins"`
	PlayoffOdds      float64 `json:"playoff_odds"`
	ChampionshipOdds float64 `json:"championship_odds"`
	Heuristic        bool    `json:"heuristic"`
	Disclaimer       string  `json:"disclaimer"`
}
