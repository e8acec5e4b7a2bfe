// Package calibration tracks prediction accuracy against realized outcomes
// and reports calibration quality across probability deciles.
package calibration

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/blazesportsintel/forecast/internal/metrics"
	"github.com/blazesportsintel/forecast/internal/models"
	"github.com/blazesportsintel/forecast/internal/repository"
)

// Tracker records predictions at forecast time and reconciles them once
// against realized outcomes.
type Tracker struct {
	records repository.PredictionRecordRepository
	logger  *logrus.Logger
}

// NewTracker creates a calibration tracker
func NewTracker(records repository.PredictionRecordRepository, logger *logrus.Logger) *Tracker {
	return &Tracker{records: records, logger: logger}
}

// RecordPrediction appends a prediction record with outcome fields unset.
func (t *Tracker) RecordPrediction(ctx context.Context, record *models.PredictionRecord) error {
	if record.PredictedHomeWinProb < 0 || record.PredictedHomeWinProb > 1 {
		return fmt.Errorf("%w: home win probability %f out of range", models.ErrInvalid, record.PredictedHomeWinProb)
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now().UTC()
	}

	if err := t.records.Create(ctx, record); err != nil {
		return err
	}

	metrics.PredictionsRecordedTotal.Inc()
	t.logger.WithFields(logrus.Fields{
		"game_id":       record.GameID,
		"sport":         record.Sport,
		"home_win_prob": record.PredictedHomeWinProb,
	}).Debug("Prediction recorded")
	return nil
}

// UpdateActualOutcome reconciles a prediction against the realized result.
// The Brier score is (predictedHomeWinProb - actualHomeWin)^2 and correctness
// is agreement between the >0.5 side and the realized winner. Reconciling a
// game with no prior record fails with NotFound; reconciling twice fails with
// AlreadyReconciled and leaves the record untouched.
func (t *Tracker) UpdateActualOutcome(ctx context.Context, gameID string, outcome models.GameOutcome) error {
	record, err := t.records.GetByGameID(ctx, gameID)
	if err != nil {
		return err
	}

	homeWin := 0.0
	if outcome.HomeWon() {
		homeWin = 1.0
	}
	brier := (record.PredictedHomeWinProb - homeWin) * (record.PredictedHomeWinProb - homeWin)
	correct := (record.PredictedHomeWinProb > 0.5) == outcome.HomeWon()

	if err := t.records.UpdateOutcome(ctx, gameID, outcome, brier, correct); err != nil {
		return err
	}

	metrics.OutcomesReconciledTotal.Inc()
	metrics.LastBrierScore.WithLabelValues(record.Sport).Set(brier)
	t.logger.WithFields(logrus.Fields{
		"game_id":     gameID,
		"brier_score": brier,
		"correct":     correct,
	}).Info("Prediction reconciled")
	return nil
}
