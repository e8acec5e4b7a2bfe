package models

import "time"

// Stream lifecycle states for a game's live prediction stream
const (
	StreamStateActive  = "active"
	StreamStateStopped = "stopped"
)

// PredictionSnapshot is one live forecast appended to a game's bounded history
type PredictionSnapshot struct {
	GameID         string       `json:"game_id"`
	Timestamp      time.Time    `json:"timestamp"`
	GameState      GameState    `json:"game_state"`
	WinProbability float64      `json:"win_probability"`
	BettingEdge    *BettingEdge `json:"betting_edge,omitempty"`
}

// StreamMeta is the per-game stream state persisted in the key-value store
type StreamMeta struct {
	GameID      string     `json:"game_id"`
	Sport       string     `json:"sport"`
	State       string     `json:"state"`
	UpdateCount int        `json:"update_count"`
	StartedAt   time.Time  `json:"started_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	StoppedAt   *time.Time `json:"stopped_at,omitempty"`
}

// BettingEdge is the model-versus-market analysis for a game
type BettingEdge struct {
	ModelHomeProb  float64 `json:"model_home_prob"`
	MarketHomeProb float64 `json:"market_home_prob"`
	MarketAwayProb float64 `json:"market_away_prob"`
	HomeEdge       float64 `json:"home_edge"`
	AwayEdge       float64 `json:"away_edge"`
	EVPerDollar    float64 `json:"ev_per_dollar"`
	Recommended    string  `json:"recommended"`
	Flagged        bool    `json:"flagged"`
}

// Key moment severities graded by swing size in percentage points
const (
	MomentNotable     = "notable"
	MomentSignificant = "significant"
	MomentMajor       = "major"
)

// KeyMoment flags a large win-probability swing between consecutive snapshots
type KeyMoment struct {
	GameID    string    `json:"game_id"`
	Timestamp time.Time `json:"timestamp"`
	FromProb  float64   `json:"from_prob"`
	ToProb    float64   `json:"to_prob"`
	SwingPts  float64   `json:"swing_pts"`
	Severity  string    `json:"severity"`
	GameState GameState `json:"game_state"`
}
