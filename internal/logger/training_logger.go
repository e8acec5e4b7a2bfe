// Package logger provides training-specific logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// TrainingLogger provides dedicated logging for model training runs.
type TrainingLogger struct {
	*logrus.Entry
}

// NewTrainingLogger creates a new training logger.
func NewTrainingLogger(baseLogger *logrus.Logger) *TrainingLogger {
	return &TrainingLogger{
		Entry: baseLogger.WithField("component", "training"),
	}
}

// LogTrainingStarted logs the start of a training run.
func (t *TrainingLogger) LogTrainingStarted(jobID, sport, modelType string, samples int) {
	t.WithFields(logrus.Fields{
		"job_id":     jobID,
		"sport":      sport,
		"model_type": modelType,
		"samples":    samples,
	}).Info("Model training started")
}

// LogTrainingCompleted logs a completed training run with evaluation metrics.
func (t *TrainingLogger) LogTrainingCompleted(jobID string, durationSeconds float64, accuracy, mae float64) {
	t.WithFields(logrus.Fields{
		"job_id":           jobID,
		"duration_seconds": durationSeconds,
		"accuracy":         accuracy,
		"mae":              mae,
	}).Info("Model training completed")
}

// LogTrainingFailed logs a failed training run.
func (t *TrainingLogger) LogTrainingFailed(jobID string, err error) {
	t.WithFields(logrus.Fields{
		"job_id": jobID,
	}).WithError(err).Error("Model training failed")
}

// LogModelActivated logs activation of a newly registered model.
func (t *TrainingLogger) LogModelActivated(modelID, sport, modelType string, deprecated int) {
	t.WithFields(logrus.Fields{
		"model_id":   modelID,
		"sport":      sport,
		"model_type": modelType,
		"deprecated": deprecated,
	}).Info("Model activated")
}

// StreamLogger provides dedicated logging for live prediction streams.
type StreamLogger struct {
	*logrus.Entry
}

// NewStreamLogger creates a new stream logger.
func NewStreamLogger(baseLogger *logrus.Logger) *StreamLogger {
	return &StreamLogger{
		Entry: baseLogger.WithField("component", "stream"),
	}
}

// LogStreamUpdate logs one live stream update cycle.
func (s *StreamLogger) LogStreamUpdate(gameID string, winProb float64, historyLen int, edgeComputed bool) {
	s.WithFields(logrus.Fields{
		"game_id":       gameID,
		"win_prob":      winProb,
		"history_len":   historyLen,
		"edge_computed": edgeComputed,
	}).Debug("Live prediction updated")
}
