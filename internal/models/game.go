package models

import "time"

// GameState is the live game snapshot returned by the game-state provider
type GameState struct {
	GameID         string    `json:"game_id"`
	Sport          string    `json:"sport"`
	HomeTeam       string    `json:"home_team"`
	AwayTeam       string    `json:"away_team"`
	HomeScore      int       `json:"home_score"`
	AwayScore      int       `json:"away_score"`
	Period         int       `json:"period"`
	ClockSeconds   int       `json:"clock_seconds"`
	HomePossession bool      `json:"home_possession"`
	Final          bool      `json:"final"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// MarketLines holds the most recent market prices for a game.
// American moneylines; spread and total are home-relative points.
type MarketLines struct {
	GameID        string    `json:"game_id"`
	HomeMoneyline int       `json:"home_moneyline"`
	AwayMoneyline int       `json:"away_moneyline"`
	Spread        float64   `json:"spread"`
	Total         float64   `json:"total"`
	Book          string    `json:"book"`
	FetchedAt     time.Time `json:"fetched_at"`
}

// TeamRecord is the season metadata used to seed simulations
type TeamRecord struct {
	TeamName       string  `json:"team_name"`
	Sport          string  `json:"sport"`
	League         string  `json:"league"`
	CurrentWins    int     `json:"current_wins"`
	CurrentLosses  int     `json:"current_losses"`
	GamesRemaining int     `json:"games_remaining"`
	ScheduleLength int     `json:"schedule_length"`
	BaseWinProb    float64 `json:"base_win_prob"`
}

// HistoricalRow is one historical record from the read-only record store,
// covering game scores, player stats and draft/career outcome fields.
type HistoricalRow struct {
	ID               int64              `db:"id" json:"id"`
	Sport            string             `db:"sport" json:"sport"`
	PlayerName       string             `db:"player_name" json:"player_name"`
	Position         string             `db:"position" json:"position"`
	CompetitionLevel string             `db:"competition_level" json:"competition_level"`
	BirthDate        time.Time          `db:"birth_date" json:"birth_date"`
	EventDate        time.Time          `db:"event_date" json:"event_date"`
	Stats            map[string]float64 `db:"stats" json:"stats"`
	DraftRound       int                `db:"draft_round" json:"draft_round"`
}
