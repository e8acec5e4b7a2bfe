package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Model lifecycle statuses. Exactly one model per (sport, model type) is intended
// to be active at a time; deprecated models are retained for audit and rollback.
const (
	ModelStatusActive     = "active"
	ModelStatusDeprecated = "deprecated"
)

// Training job statuses. A job transitions running -> completed|failed exactly once.
const (
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)

// Model types trained by the forecasting pipeline.
const (
	ModelTypeDraftRound = "draft_round"
	ModelTypeWinProb    = "win_probability"
)

// TrainedModel represents a registered regression model
type TrainedModel struct {
	ID                 uuid.UUID       `db:"id" json:"id" validate:"required,uuid4"`
	Sport              string          `db:"sport" json:"sport" validate:"required"`
	ModelType          string          `db:"model_type" json:"model_type" validate:"required"`
	Weights            []float64       `db:"weights" json:"weights" validate:"required"`
	Bias               float64         `db:"bias" json:"bias"`
	TrainingParameters json.RawMessage `db:"training_parameters" json:"training_parameters"`
	Metrics            ModelMetrics    `db:"metrics" json:"metrics"`
	ArtifactPath       string          `db:"artifact_path" json:"artifact_path"`
	Status             string          `db:"status" json:"status" validate:"required,oneof=active deprecated"`
	TrainedAt          time.Time       `db:"trained_at" json:"trained_at" validate:"required"`
	CreatedAt          time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time       `db:"updated_at" json:"updated_at"`
}

// IsActive checks if the model is currently active
func (m *TrainedModel) IsActive() bool {
	return m.Status == ModelStatusActive
}

// ModelMetrics holds held-out evaluation metrics for a trained model
type ModelMetrics struct {
	Accuracy             float64 `json:"accuracy"`
	Within1RoundAccuracy float64 `json:"within_1_round_accuracy"`
	MeanAbsoluteError    float64 `json:"mean_absolute_error"`
	SamplesTested        int     `json:"samples_tested"`
}

// TrainingParameters records the hyperparameters and seed used for a run
type TrainingParameters struct {
	LearningRate float64 `json:"learning_rate"`
	Epochs       int     `json:"epochs"`
	Seed         int64   `json:"seed"`
	FeatureCount int     `json:"feature_count"`
	TrainSamples int     `json:"train_samples"`
}

// TrainingJob brackets a single training run
type TrainingJob struct {
	ID              uuid.UUID     `db:"id" json:"id" validate:"required,uuid4"`
	Sport           string        `db:"sport" json:"sport" validate:"required"`
	ModelType       string        `db:"model_type" json:"model_type" validate:"required"`
	Status          string        `db:"status" json:"status" validate:"required,oneof=running completed failed"`
	Metrics         *ModelMetrics `db:"metrics" json:"metrics,omitempty"`
	Error           *string       `db:"error" json:"error,omitempty"`
	DurationSeconds float64       `db:"duration_seconds" json:"duration_seconds"`
	StartedAt       time.Time     `db:"started_at" json:"started_at"`
	CompletedAt     *time.Time    `db:"completed_at" json:"completed_at,omitempty"`
}

// IsTerminal reports whether the job has reached a terminal state
func (j *TrainingJob) IsTerminal() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}

// ModelArtifact is the JSON document persisted to object storage for a model
type ModelArtifact struct {
	Weights    []float64          `json:"weights"`
	Bias       float64            `json:"bias"`
	Parameters TrainingParameters `json:"parameters"`
	ScalerMean []float64          `json:"scaler_mean"`
	ScalerStd  []float64          `json:"scaler_std"`
}
