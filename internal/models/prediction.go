package models

import (
	"time"
)

// Confidence labels attached to game predictions
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// PredictionRecord tracks a pre-game forecast and its eventual reconciliation
// against the realized outcome. Outcome fields stay nil until the game settles
// and are written exactly once; the record is immutable afterwards.
type PredictionRecord struct {
	GameID               string     `db:"game_id" json:"game_id" validate:"required"`
	Sport                string     `db:"sport" json:"sport" validate:"required"`
	HomeTeam             string     `db:"home_team" json:"home_team" validate:"required"`
	AwayTeam             string     `db:"away_team" json:"away_team" validate:"required"`
	PredictedHomeWinProb float64    `db:"predicted_home_win_prob" json:"predicted_home_win_prob" validate:"gte=0,lte=1"`
	PredictedAwayWinProb float64    `db:"predicted_away_win_prob" json:"predicted_away_win_prob" validate:"gte=0,lte=1"`
	ConfidenceLabel      string     `db:"confidence_label" json:"confidence_label"`
	Timestamp            time.Time  `db:"timestamp" json:"timestamp"`
	ActualOutcome        *string    `db:"actual_outcome" json:"actual_outcome,omitempty"`
	ActualHomeWin        *bool      `db:"actual_home_win" json:"actual_home_win,omitempty"`
	BrierScore           *float64   `db:"brier_score" json:"brier_score,omitempty"`
	Correct              *bool      `db:"correct" json:"correct,omitempty"`
	ReconciledAt         *time.Time `db:"reconciled_at" json:"reconciled_at,omitempty"`
}

// IsReconciled reports whether the realized outcome has been recorded
func (p *PredictionRecord) IsReconciled() bool {
	return p.BrierScore != nil
}

// GamePrediction is the client-facing forecast for a single game
type GamePrediction struct {
	GameID          string   `json:"game_id"`
	Sport           string   `json:"sport"`
	Winner          string   `json:"winner"`
	WinProbability  float64  `json:"win_probability"`
	PredictedSpread float64  `json:"predicted_spread"`
	PredictedTotal  float64  `json:"predicted_total"`
	Confidence      string   `json:"confidence"`
	Factors         []string `json:"factors"`
}

// GameOutcome is the realized result used to reconcile a prediction
type GameOutcome struct {
	GameID    string `json:"game_id"`
	HomeScore int    `json:"home_score"`
	AwayScore int    `json:"away_score"`
	Winner    string `json:"winner"`
}

// HomeWon reports whether the home side won
func (o GameOutcome) HomeWon() bool {
	return o.HomeScore > o.AwayScore
}
