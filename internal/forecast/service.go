// Package forecast is the service facade: game predictions, season
// simulations, the performance dashboard, and the scheduled training and
// stream-update entry points.
package forecast

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/blazesportsintel/forecast/internal/calibration"
	"github.com/blazesportsintel/forecast/internal/config"
	"github.com/blazesportsintel/forecast/internal/kvstore"
	"github.com/blazesportsintel/forecast/internal/metrics"
	"github.com/blazesportsintel/forecast/internal/models"
	"github.com/blazesportsintel/forecast/internal/provider"
	"github.com/blazesportsintel/forecast/internal/registry"
	"github.com/blazesportsintel/forecast/internal/repository"
	"github.com/blazesportsintel/forecast/internal/simulation"
	"github.com/blazesportsintel/forecast/internal/stream"
	"github.com/blazesportsintel/forecast/internal/tracing"
	"github.com/blazesportsintel/forecast/internal/winprob"
)

// Service composes the forecasting subsystems behind the outbound API.
type Service struct {
	registry *registry.Manager
	tracker  *calibration.Tracker
	streams  *stream.Manager
	games    provider.GameStateProvider
	teams    provider.TeamDataProvider
	store    kvstore.Store
	simCfg   *config.SimulationConfig
	logger   *logrus.Logger
}

// NewService creates the forecasting service facade.
func NewService(
	registryManager *registry.Manager,
	tracker *calibration.Tracker,
	streamManager *stream.Manager,
	games provider.GameStateProvider,
	teams provider.TeamDataProvider,
	store kvstore.Store,
	simCfg *config.SimulationConfig,
	logger *logrus.Logger,
) *Service {
	return &Service{
		registry: registryManager,
		tracker:  tracker,
		streams:  streamManager,
		games:    games,
		teams:    teams,
		store:    store,
		simCfg:   simCfg,
		logger:   logger,
	}
}

// PredictGame produces a client-facing forecast for a game. A provider
// failure degrades to the cached broadcast snapshot, flagged with lower
// confidence, rather than a hard error.
func (s *Service) PredictGame(ctx context.Context, gameID, sport string) (*models.GamePrediction, error) {
	state, err := s.games.FetchGameState(ctx, gameID)
	stale := false
	if err != nil {
		cached := &models.PredictionSnapshot{}
		if !s.store.GetJSON(ctx, kvstore.BroadcastKey(gameID), cached) {
			return nil, err
		}
		state = &cached.GameState
		stale = true
		s.logger.WithField("game_id", gameID).Warn("Provider unavailable, serving cached game state")
	}

	homeProb := winprob.Estimate(state)
	prediction := buildPrediction(gameID, sport, state, homeProb, stale)

	record := &models.PredictionRecord{
		GameID:               gameID,
		Sport:                sport,
		HomeTeam:             state.HomeTeam,
		AwayTeam:             state.AwayTeam,
		PredictedHomeWinProb: homeProb,
		PredictedAwayWinProb: 1 - homeProb,
		ConfidenceLabel:      prediction.Confidence,
	}
	if err := s.tracker.RecordPrediction(ctx, record); err != nil && !isDuplicate(err) {
		s.logger.WithError(err).WithField("game_id", gameID).Warn("Failed to record prediction for calibration")
	}

	metrics.PredictionsServedTotal.WithLabelValues(sport).Inc()
	return prediction, nil
}

func buildPrediction(gameID, sport string, state *models.GameState, homeProb float64, stale bool) *models.GamePrediction {
	winner := state.HomeTeam
	winProb := homeProb
	if homeProb < 0.5 {
		winner = state.AwayTeam
		winProb = 1 - homeProb
	}

	margin := float64(state.HomeScore - state.AwayScore)
	factors := []string{
		fmt.Sprintf("score margin %+.0f", margin),
		fmt.Sprintf("period %d", state.Period),
	}
	if state.HomePossession {
		factors = append(factors, "home possession")
	}

	confidence := confidenceLabel(homeProb)
	if stale {
		confidence = models.ConfidenceLow
		factors = append(factors, "stale cached game state")
	}

	return &models.GamePrediction{
		GameID:          gameID,
		Sport:           sport,
		Winner:          winner,
		WinProbability:  winProb,
		PredictedSpread: margin,
		PredictedTotal:  float64(state.HomeScore + state.AwayScore),
		Confidence:      confidence,
		Factors:         factors,
	}
}

// confidenceLabel maps distance from the coin flip to a label.
func confidenceLabel(homeProb float64) string {
	distance := math.Abs(homeProb - 0.5)
	switch {
	case distance >= 0.25:
		return models.ConfidenceHigh
	case distance >= 0.10:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}

// RunSeasonSimulations simulates the remaining season for every team in a
// league and returns per-team summaries.
func (s *Service) RunSeasonSimulations(ctx context.Context, league string) (map[string]*models.SimulationResult, error) {
	started := time.Now()

	teams, err := s.teams.FetchTeamRecords(ctx, league)
	if err != nil {
		return nil, err
	}
	if len(teams) == 0 {
		return nil, fmt.Errorf("%w: no team records for league %s", models.ErrNotFound, league)
	}

	seed := s.simCfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	engine := simulation.NewEngine(seed)

	results := make(map[string]*models.SimulationResult, len(teams))
	for _, team := range teams {
		samples, err := engine.SimulateSeason(team, s.simCfg.Iterations)
		if err != nil {
			return nil, fmt.Errorf("simulate %s: %w", team.TeamName, err)
		}
		summary, err := simulation.Summarize(team, samples)
		if err != nil {
			return nil, fmt.Errorf("summarize %s: %w", team.TeamName, err)
		}
		results[team.TeamName] = summary
	}

	metrics.SimulationRunsTotal.Inc()
	metrics.SimulationDuration.Observe(time.Since(started).Seconds())
	return results, nil
}

// ProjectOddsBands maps simulation summaries to labeled heuristic odds bands.
func (s *Service) ProjectOddsBands(ctx context.Context, league string) ([]*models.OddsBand, error) {
	teams, err := s.teams.FetchTeamRecords(ctx, league)
	if err != nil {
		return nil, err
	}
	results, err := s.RunSeasonSimulations(ctx, league)
	if err != nil {
		return nil, err
	}

	seed := s.simCfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	engine := simulation.NewEngine(seed)

	bands := make([]*models.OddsBand, 0, len(teams))
	for _, team := range teams {
		if result, ok := results[team.TeamName]; ok {
			bands = append(bands, engine.HeuristicOddsBand(team, result))
		}
	}
	return bands, nil
}

// Dashboard is the performance report for the model-quality review surface.
type Dashboard struct {
	Accuracy    *calibration.AccuracyMetrics   `json:"accuracy"`
	Calibration *calibration.CalibrationReport `json:"calibration"`
	Trend       []calibration.TrendPoint       `json:"trend"`
	Comparison  []calibration.ModelComparison  `json:"comparison"`
}

// GetPerformanceDashboard aggregates accuracy, calibration, trend and
// cross-sport comparison. A calibration report with too little data is
// reported as absent rather than failing the dashboard.
func (s *Service) GetPerformanceDashboard(ctx context.Context, sport string) (*Dashboard, error) {
	accuracy, err := s.tracker.GetAccuracyMetrics(ctx, repository.PredictionFilters{Sport: sport})
	if err != nil {
		return nil, err
	}

	calReport, err := s.tracker.AnalyzeCalibration(ctx, sport)
	if err != nil && !isDataInsufficient(err) {
		return nil, err
	}

	trend, err := s.tracker.GetAccuracyTrend(ctx, sport, 30)
	if err != nil {
		return nil, err
	}

	comparison, err := s.tracker.CompareModelPerformance(ctx)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		Accuracy:    accuracy,
		Calibration: calReport,
		Trend:       trend,
		Comparison:  comparison,
	}, nil
}

// TrainModel runs one full training run for a sport. Invoked by the
// scheduler, not a synchronous request path.
func (s *Service) TrainModel(ctx context.Context, sport string) error {
	ctx, seg := tracing.StartSegment(ctx, "model-training")
	tracing.AddAnnotation(ctx, "sport", sport)

	_, err := s.registry.RunTraining(ctx, sport)
	seg.Close(err)
	return err
}

// StartStream initializes a live prediction stream and enrolls the game in
// the scheduled update cycle.
func (s *Service) StartStream(ctx context.Context, gameID, sport string) error {
	if err := s.streams.InitializeStream(ctx, gameID, sport); err != nil {
		return err
	}
	return s.enrollStream(ctx, gameID, true)
}

// StopStream stops a live prediction stream and removes the game from the
// update cycle.
func (s *Service) StopStream(ctx context.Context, gameID string) error {
	if err := s.streams.StopPredictionStream(ctx, gameID); err != nil {
		return err
	}
	return s.enrollStream(ctx, gameID, false)
}

// UpdateActiveStreams runs one update cycle over every enrolled game.
// Finished games are reconciled against their outcome and their streams
// stopped; one game's failure never blocks the rest of the cycle.
func (s *Service) UpdateActiveStreams(ctx context.Context) error {
	var active []string
	s.store.GetJSON(ctx, kvstore.ActiveStreamsKey(), &active)
	if len(active) == 0 {
		return nil
	}

	for _, gameID := range active {
		snapshot, err := s.streams.UpdateLivePredictions(ctx, gameID)
		if err != nil {
			s.logger.WithError(err).WithField("game_id", gameID).Warn("Stream update failed")
			continue
		}
		if snapshot.GameState.Final {
			s.finishGame(ctx, gameID)
		}
	}
	return nil
}

func (s *Service) finishGame(ctx context.Context, gameID string) {
	outcome, err := s.games.FetchOutcome(ctx, gameID)
	if err != nil {
		s.logger.WithError(err).WithField("game_id", gameID).Warn("Failed to fetch final outcome")
	} else if err := s.tracker.UpdateActualOutcome(ctx, gameID, *outcome); err != nil && !isAlreadyReconciled(err) {
		s.logger.WithError(err).WithField("game_id", gameID).Error("Failed to reconcile prediction")
	}

	if err := s.StopStream(ctx, gameID); err != nil {
		s.logger.WithError(err).WithField("game_id", gameID).Warn("Failed to stop finished stream")
	}
}

// enrollStream adds or removes a game in the active-streams set.
func (s *Service) enrollStream(ctx context.Context, gameID string, add bool) error {
	var active []string
	s.store.GetJSON(ctx, kvstore.ActiveStreamsKey(), &active)

	next := make([]string, 0, len(active)+1)
	for _, id := range active {
		if id != gameID {
			next = append(next, id)
		}
	}
	if add {
		next = append(next, gameID)
	}
	return s.store.SetJSON(ctx, kvstore.ActiveStreamsKey(), next, config.TTLStreamMeta)
}

func isDuplicate(err error) bool {
	return errors.Is(err, models.ErrDuplicateKey)
}

func isDataInsufficient(err error) bool {
	return errors.Is(err, models.ErrDataInsufficient)
}

func isAlreadyReconciled(err error) bool {
	return errors.Is(err, models.ErrAlreadyReconciled)
}
