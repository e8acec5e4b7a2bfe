// Package stream manages live per-game prediction streams: bounded snapshot
// history, a short-lived broadcast slot for polling consumers, and key-moment
// detection over probability swings.
package stream

import (
	"context"
	"fmt"
	"time"

	"github.com/blazesportsintel/forecast/internal/config"
	"github.com/blazesportsintel/forecast/internal/kvstore"
	"github.com/blazesportsintel/forecast/internal/logger"
	"github.com/blazesportsintel/forecast/internal/metrics"
	"github.com/blazesportsintel/forecast/internal/models"
	"github.com/blazesportsintel/forecast/internal/provider"
	"github.com/blazesportsintel/forecast/internal/winprob"
)

// Manager drives the per-game stream state machine. All cross-invocation
// state lives in the key-value store; the manager itself holds no counters
// or per-game maps.
type Manager struct {
	store  kvstore.Store
	games  provider.GameStateProvider
	cfg    *config.StreamConfig
	logger *logger.StreamLogger
	now    func() time.Time
}

// NewManager creates a stream manager.
func NewManager(store kvstore.Store, games provider.GameStateProvider, cfg *config.StreamConfig, streamLogger *logger.StreamLogger) *Manager {
	return &Manager{
		store:  store,
		games:  games,
		cfg:    cfg,
		logger: streamLogger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// InitializeStream seeds stream metadata and an empty bounded history for a
// game. Initializing a game whose stream is already active is rejected.
func (m *Manager) InitializeStream(ctx context.Context, gameID, sport string) error {
	meta := &models.StreamMeta{}
	if m.store.GetJSON(ctx, kvstore.StreamKey(gameID), meta) && meta.State == models.StreamStateActive {
		return fmt.Errorf("%w: stream for %s is already active", models.ErrInvalid, gameID)
	}

	now := m.now()
	meta = &models.StreamMeta{
		GameID:    gameID,
		Sport:     sport,
		State:     models.StreamStateActive,
		StartedAt: now,
		UpdatedAt: now,
	}
	if err := m.store.SetJSON(ctx, kvstore.StreamKey(gameID), meta, config.TTLStreamMeta); err != nil {
		return fmt.Errorf("seed stream metadata: %w", err)
	}
	if err := m.store.SetJSON(ctx, kvstore.HistoryKey(gameID), []models.PredictionSnapshot{}, config.TTLHistory); err != nil {
		return fmt.Errorf("seed stream history: %w", err)
	}

	metrics.ActiveStreams.Inc()
	m.logger.WithField("game_id", gameID).Info("Prediction stream initialized")
	return nil
}

// UpdateLivePredictions runs one update cycle: pull current game state,
// compute win probability and (when market lines are cached) betting edge,
// append to the bounded history, bump the stream counters, and publish the
// latest snapshot to the broadcast slot.
func (m *Manager) UpdateLivePredictions(ctx context.Context, gameID string) (*models.PredictionSnapshot, error) {
	started := time.Now()

	meta := &models.StreamMeta{}
	if !m.store.GetJSON(ctx, kvstore.StreamKey(gameID), meta) {
		return nil, fmt.Errorf("%w: no stream for %s", models.ErrNotFound, gameID)
	}
	if meta.State != models.StreamStateActive {
		return nil, fmt.Errorf("%w: stream for %s is %s", models.ErrInvalid, gameID, meta.State)
	}

	state, err := m.games.FetchGameState(ctx, gameID)
	if err != nil {
		return nil, err
	}

	snapshot := &models.PredictionSnapshot{
		GameID:         gameID,
		Timestamp:      m.now(),
		GameState:      *state,
		WinProbability: winprob.Estimate(state),
	}

	lines := &models.MarketLines{}
	edgeComputed := false
	if m.store.GetJSON(ctx, kvstore.LinesKey(gameID), lines) {
		edge, edgeErr := winprob.AnalyzeEdge(snapshot.WinProbability, lines, m.cfg.EdgeThreshold)
		if edgeErr == nil {
			snapshot.BettingEdge = edge
			edgeComputed = true
		} else {
			m.logger.WithError(edgeErr).WithField("game_id", gameID).Debug("Skipping edge analysis")
		}
	}

	history := m.appendHistory(ctx, gameID, snapshot)

	if err := m.store.SetJSON(ctx, kvstore.CurrentKey(gameID), snapshot, config.TTLLiveState); err != nil {
		return nil, fmt.Errorf("write current prediction: %w", err)
	}
	if err := m.store.SetJSON(ctx, kvstore.BroadcastKey(gameID), snapshot, config.TTLBroadcast); err != nil {
		return nil, fmt.Errorf("write broadcast slot: %w", err)
	}

	meta.UpdateCount++
	meta.UpdatedAt = m.now()
	if err := m.store.SetJSON(ctx, kvstore.StreamKey(gameID), meta, config.TTLStreamMeta); err != nil {
		return nil, fmt.Errorf("update stream metadata: %w", err)
	}

	metrics.StreamUpdatesTotal.Inc()
	metrics.StreamUpdateDuration.Observe(time.Since(started).Seconds())
	m.logger.LogStreamUpdate(gameID, snapshot.WinProbability, len(history), edgeComputed)
	return snapshot, nil
}

// appendHistory appends the snapshot with FIFO eviction at the history limit.
// A missing or unreadable history degrades to starting fresh.
func (m *Manager) appendHistory(ctx context.Context, gameID string, snapshot *models.PredictionSnapshot) []models.PredictionSnapshot {
	var history []models.PredictionSnapshot
	m.store.GetJSON(ctx, kvstore.HistoryKey(gameID), &history)

	history = append(history, *snapshot)
	if limit := m.cfg.HistoryLimit; limit > 0 && len(history) > limit {
		history = history[len(history)-limit:]
	}
	if err := m.store.SetJSON(ctx, kvstore.HistoryKey(gameID), history, config.TTLHistory); err != nil {
		m.logger.WithError(err).WithField("game_id", gameID).Warn("Failed to persist stream history")
	}
	return history
}

// StopPredictionStream transitions the stream to stopped. Metadata and
// history are retained for a one-hour grace period.
func (m *Manager) StopPredictionStream(ctx context.Context, gameID string) error {
	meta := &models.StreamMeta{}
	if !m.store.GetJSON(ctx, kvstore.StreamKey(gameID), meta) {
		return fmt.Errorf("%w: no stream for %s", models.ErrNotFound, gameID)
	}
	if meta.State == models.StreamStateStopped {
		return fmt.Errorf("%w: stream for %s already stopped", models.ErrInvalid, gameID)
	}

	now := m.now()
	meta.State = models.StreamStateStopped
	meta.StoppedAt = &now
	if err := m.store.SetJSON(ctx, kvstore.StreamKey(gameID), meta, config.TTLStopGrace); err != nil {
		return fmt.Errorf("stop stream: %w", err)
	}
	if err := m.store.Expire(ctx, kvstore.HistoryKey(gameID), config.TTLStopGrace); err != nil {
		m.logger.WithError(err).WithField("game_id", gameID).Warn("Failed to shorten history retention")
	}

	metrics.ActiveStreams.Dec()
	m.logger.WithFields(map[string]interface{}{
		"game_id": gameID,
		"updates": meta.UpdateCount,
	}).Info("Prediction stream stopped")
	return nil
}

// GetHistory returns the bounded snapshot history for a game.
func (m *Manager) GetHistory(ctx context.Context, gameID string) ([]models.PredictionSnapshot, error) {
	var history []models.PredictionSnapshot
	if !m.store.GetJSON(ctx, kvstore.HistoryKey(gameID), &history) {
		return nil, fmt.Errorf("%w: no history for %s", models.ErrNotFound, gameID)
	}
	return history, nil
}

// GetBroadcast returns the latest published snapshot, if the broadcast slot
// is still live.
func (m *Manager) GetBroadcast(ctx context.Context, gameID string) (*models.PredictionSnapshot, error) {
	snapshot := &models.PredictionSnapshot{}
	if !m.store.GetJSON(ctx, kvstore.BroadcastKey(gameID), snapshot) {
		return nil, fmt.Errorf("%w: no live broadcast for %s", models.ErrNotFound, gameID)
	}
	return snapshot, nil
}
