// Package registry owns the model lifecycle: training runs bracketed by
// jobs, artifact persistence, registration and deprecation of superseded
// models.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/blazesportsintel/forecast/internal/artifacts"
	"github.com/blazesportsintel/forecast/internal/config"
	"github.com/blazesportsintel/forecast/internal/features"
	"github.com/blazesportsintel/forecast/internal/logger"
	"github.com/blazesportsintel/forecast/internal/metrics"
	"github.com/blazesportsintel/forecast/internal/models"
	"github.com/blazesportsintel/forecast/internal/repository"
	"github.com/blazesportsintel/forecast/internal/training"
)

// Manager orchestrates training runs and owns the model registry.
type Manager struct {
	models     repository.ModelRepository
	jobs       repository.TrainingJobRepository
	historical repository.HistoricalGameRepository
	artifacts  artifacts.Store
	cfg        *config.TrainingConfig
	logger     *logger.TrainingLogger
}

// NewManager creates a registry manager.
func NewManager(
	modelRepo repository.ModelRepository,
	jobRepo repository.TrainingJobRepository,
	historicalRepo repository.HistoricalGameRepository,
	artifactStore artifacts.Store,
	cfg *config.TrainingConfig,
	trainingLogger *logger.TrainingLogger,
) *Manager {
	return &Manager{
		models:     modelRepo,
		jobs:       jobRepo,
		historical: historicalRepo,
		artifacts:  artifactStore,
		cfg:        cfg,
		logger:     trainingLogger,
	}
}

// RunTraining executes one full training run for a sport: fetch rows, extract
// features, train, evaluate on the held-out split, persist the artifact,
// register the model and deprecate its predecessors. The run is bracketed by
// a TrainingJob that reaches a terminal state exactly once; insufficient data
// aborts before any partial model is registered.
func (m *Manager) RunTraining(ctx context.Context, sport string) (*models.TrainedModel, error) {
	count, err := m.historical.CountBySport(ctx, sport)
	if err != nil {
		return nil, fmt.Errorf("count training rows: %w", err)
	}
	if count < m.cfg.MinSamples {
		return nil, fmt.Errorf("%w: %d rows for %s, need %d", models.ErrDataInsufficient, count, sport, m.cfg.MinSamples)
	}

	job := &models.TrainingJob{
		ID:        uuid.New(),
		Sport:     sport,
		ModelType: models.ModelTypeDraftRound,
		Status:    models.JobStatusRunning,
		StartedAt: time.Now().UTC(),
	}
	if err := m.jobs.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("create training job: %w", err)
	}
	m.logger.LogTrainingStarted(job.ID.String(), sport, job.ModelType, count)

	model, err := m.train(ctx, job)
	if err != nil {
		m.failJob(ctx, job, err)
		metrics.TrainingRunsTotal.WithLabelValues(models.JobStatusFailed).Inc()
		return nil, err
	}

	job.Status = models.JobStatusCompleted
	job.Metrics = &model.Metrics
	now := time.Now().UTC()
	job.CompletedAt = &now
	job.DurationSeconds = now.Sub(job.StartedAt).Seconds()
	if err := m.jobs.Complete(ctx, job); err != nil {
		return nil, fmt.Errorf("complete training job: %w", err)
	}

	metrics.TrainingRunsTotal.WithLabelValues(models.JobStatusCompleted).Inc()
	metrics.TrainingDuration.Observe(job.DurationSeconds)
	m.logger.LogTrainingCompleted(job.ID.String(), job.DurationSeconds, model.Metrics.Accuracy, model.Metrics.MeanAbsoluteError)
	return model, nil
}

func (m *Manager) train(ctx context.Context, job *models.TrainingJob) (*models.TrainedModel, error) {
	rows, err := m.historical.GetTrainingRows(ctx, job.Sport, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch training rows: %w", err)
	}
	if len(rows) < m.cfg.MinSamples {
		return nil, fmt.Errorf("%w: %d labeled rows for %s, need %d", models.ErrDataInsufficient, len(rows), job.Sport, m.cfg.MinSamples)
	}

	dataset, err := features.Prepare(rows, job.Sport)
	if err != nil {
		return nil, err
	}

	seed := m.cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	split, err := training.TrainTestSplit(dataset.Features, dataset.Labels, seed)
	if err != nil {
		return nil, err
	}

	trained, err := training.Train(split.TrainFeatures, split.TrainLabels, seed)
	if err != nil {
		return nil, err
	}
	evaluation := training.Evaluate(trained, split.TestFeatures, split.TestLabels)

	if m.cfg.CrossValFolds >= 2 {
		foldMetrics, cvErr := training.CrossValidate(dataset.Features, dataset.Labels, m.cfg.CrossValFolds, seed)
		if cvErr != nil {
			m.logger.WithError(cvErr).WithField("folds", m.cfg.CrossValFolds).Warn("Cross-validation skipped")
		} else {
			var meanAccuracy float64
			for _, fm := range foldMetrics {
				meanAccuracy += fm.Accuracy
			}
			meanAccuracy /= float64(len(foldMetrics))
			m.logger.WithFields(logrus.Fields{
				"folds":         m.cfg.CrossValFolds,
				"mean_accuracy": meanAccuracy,
			}).Info("Cross-validation completed")
		}
	}

	params := models.TrainingParameters{
		LearningRate: training.LearningRate,
		Epochs:       training.Epochs,
		Seed:         seed,
		FeatureCount: len(dataset.Columns),
		TrainSamples: len(split.TrainFeatures),
	}

	artifactPath, err := m.StoreModelArtifact(ctx, job, trained, &dataset.Scaler, params)
	if err != nil {
		return nil, err
	}

	model := &models.TrainedModel{
		ID:           uuid.New(),
		Sport:        job.Sport,
		ModelType:    job.ModelType,
		Weights:      trained.Weights,
		Bias:         trained.Bias,
		Metrics:      *evaluation,
		ArtifactPath: artifactPath,
		Status:       models.ModelStatusActive,
		TrainedAt:    time.Now().UTC(),
	}
	model.TrainingParameters, err = json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("encode training parameters: %w", err)
	}

	if err := m.RegisterModel(ctx, model); err != nil {
		return nil, err
	}
	deprecated, err := m.DeprecateSupersededModels(ctx, model.ID, model.Sport, model.ModelType)
	if err != nil {
		return nil, err
	}
	m.logger.LogModelActivated(model.ID.String(), model.Sport, model.ModelType, deprecated)

	return model, nil
}

// StoreModelArtifact serializes weights, bias, parameters and scaler to
// object storage and returns the artifact path.
func (m *Manager) StoreModelArtifact(ctx context.Context, job *models.TrainingJob, trained *training.Model, scaler *features.Scaler, params models.TrainingParameters) (string, error) {
	artifact := &models.ModelArtifact{
		Weights:    trained.Weights,
		Bias:       trained.Bias,
		Parameters: params,
		ScalerMean: scaler.Mean,
		ScalerStd:  scaler.Std,
	}
	path, err := m.artifacts.Put(ctx, job.Sport, job.ModelType, job.ID, artifact)
	if err != nil {
		return "", fmt.Errorf("store model artifact: %w", err)
	}
	return path, nil
}

// RegisterModel inserts a new model with status active. Registration and the
// follow-up deprecation are two separate writes; readers resolve multiple
// active rows by taking the most recently trained one.
func (m *Manager) RegisterModel(ctx context.Context, model *models.TrainedModel) error {
	model.Status = models.ModelStatusActive
	if err := m.models.Create(ctx, model); err != nil {
		return fmt.Errorf("register model: %w", err)
	}
	metrics.ActiveModels.WithLabelValues(model.Sport, model.ModelType).Inc()
	return nil
}

// DeprecateSupersededModels marks every other active model of the same
// (sport, modelType) deprecated, returning how many were retired.
func (m *Manager) DeprecateSupersededModels(ctx context.Context, keepID uuid.UUID, sport, modelType string) (int, error) {
	deprecated, err := m.models.DeprecateOthers(ctx, keepID, sport, modelType)
	if err != nil {
		return 0, fmt.Errorf("deprecate superseded models: %w", err)
	}
	if deprecated > 0 {
		metrics.ActiveModels.WithLabelValues(sport, modelType).Sub(float64(deprecated))
	}
	return deprecated, nil
}

// GetActiveModel returns the authoritative active model for (sport,
// modelType): the most recently trained active row. A crash between register
// and deprecate can leave several active rows; recency wins.
func (m *Manager) GetActiveModel(ctx context.Context, sport, modelType string) (*models.TrainedModel, error) {
	active, err := m.models.GetActive(ctx, sport, modelType)
	if err != nil {
		return nil, err
	}
	if len(active) == 0 {
		return nil, fmt.Errorf("%w: no active %s model for %s", models.ErrNotFound, modelType, sport)
	}
	return active[0], nil
}

// LoadArtifact fetches the persisted artifact for a registered model.
func (m *Manager) LoadArtifact(ctx context.Context, model *models.TrainedModel) (*models.ModelArtifact, error) {
	return m.artifacts.Get(ctx, model.ArtifactPath)
}

func (m *Manager) failJob(ctx context.Context, job *models.TrainingJob, cause error) {
	job.Status = models.JobStatusFailed
	message := cause.Error()
	job.Error = &message
	now := time.Now().UTC()
	job.CompletedAt = &now
	job.DurationSeconds = now.Sub(job.StartedAt).Seconds()
	if err := m.jobs.Complete(ctx, job); err != nil {
		m.logger.WithError(err).WithField("job_id", job.ID).Error("Failed to record job failure")
	}
	m.logger.LogTrainingFailed(job.ID.String(), cause)
}
